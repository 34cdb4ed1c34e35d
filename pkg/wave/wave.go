// Package wave wraps raw CD-DA sector data in a RIFF/WAVE container. The payload is never transcoded: disc audio
// is already 16-bit little-endian stereo PCM at 44.1 kHz.
package wave

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	HeaderSize    = 44
	Channels      = 2
	SampleRate    = 44100
	BitsPerSample = 16
	BlockAlign    = Channels * BitsPerSample / 8
	ByteRate      = SampleRate * BlockAlign

	// MaxPayload is the largest payload whose RIFF size (payload + 36) fits the 32-bit header field.
	MaxPayload = math.MaxUint32 - 36

	fmtChunkSize = 16
	formatPCM    = 1
)

var (
	// ErrTooLarge is returned when a payload cannot be described by a WAVE header.
	ErrTooLarge = errors.New("payload too large for a WAVE container")
	// ErrShortPayload is returned when fewer payload bytes were read than the track declares.
	ErrShortPayload = errors.New("payload shorter than declared")
)

// Header is the canonical 44 byte RIFF/WAVE header.
type Header [HeaderSize]byte

// NewHeader builds the header for a payload of size bytes.
func NewHeader(size uint32) Header {
	var h Header
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], size+36)
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(h[20:22], formatPCM)
	binary.LittleEndian.PutUint16(h[22:24], Channels)
	binary.LittleEndian.PutUint32(h[24:28], SampleRate)
	binary.LittleEndian.PutUint32(h[28:32], ByteRate)
	binary.LittleEndian.PutUint16(h[32:34], BlockAlign)
	binary.LittleEndian.PutUint16(h[34:36], BitsPerSample)
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], size)
	return h
}

// RIFFSize returns the overall size field (file size - 8).
func (h Header) RIFFSize() uint32 {
	return binary.LittleEndian.Uint32(h[4:8])
}

// DataSize returns the data chunk length field.
func (h Header) DataSize() uint32 {
	return binary.LittleEndian.Uint32(h[40:44])
}

// Container is a WAVE header followed by the raw payload chunks.
type Container struct {
	header Header
	chunks [][]byte
}

// Wrap checks that chunks hold exactly size bytes and wraps them under a header declaring that size.
func Wrap(size int64, chunks [][]byte) (*Container, error) {
	if size < 0 || size > MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	var got int64
	for _, c := range chunks {
		got += int64(len(c))
	}
	if got != size {
		return nil, fmt.Errorf("%w: expected %d bytes, but read %d bytes", ErrShortPayload, size, got)
	}
	return NewContainer(uint32(size), chunks), nil
}

// NewContainer wraps chunks under a header declaring size payload bytes.
func NewContainer(size uint32, chunks [][]byte) *Container {
	return &Container{header: NewHeader(size), chunks: chunks}
}

func (c *Container) Header() Header {
	return c.header
}

func (c *Container) Chunks() [][]byte {
	return c.chunks
}

// PayloadLen returns the number of payload bytes actually held.
func (c *Container) PayloadLen() int64 {
	var n int64
	for _, chunk := range c.chunks {
		n += int64(len(chunk))
	}
	return n
}

// Len returns the full container length including the header.
func (c *Container) Len() int64 {
	return HeaderSize + c.PayloadLen()
}

// Reader streams the header followed by the payload.
func (c *Container) Reader() io.Reader {
	readers := make([]io.Reader, 0, len(c.chunks)+1)
	readers = append(readers, bytes.NewReader(c.header[:]))
	for _, chunk := range c.chunks {
		readers = append(readers, bytes.NewReader(chunk))
	}
	return io.MultiReader(readers...)
}

// WriteTo writes the container to w.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.header[:])
	total := int64(n)
	if err != nil {
		return total, err
	}
	for _, chunk := range c.chunks {
		n, err = w.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

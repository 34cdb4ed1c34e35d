// Package sector defines the container-format independent view of a disc image that the ISO9660 layer reads
// through, plus the chunked sequential read shared by every reader variant.
package sector

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rstms/disc-kit/pkg/consts"
	"github.com/rstms/disc-kit/pkg/wave"
)

var (
	// ErrSectorOutOfRange is returned when a logical sector lies outside the data track or the image.
	ErrSectorOutOfRange = errors.New("sector out of range")
)

// Image is the large binary source of a disc image. *io.SectionReader satisfies it.
type Image interface {
	io.ReaderAt
	Size() int64
}

// Reader is implemented by every container format.
type Reader interface {
	// ReadSector returns the 2048 byte payload of logical sector n of track 1.
	ReadSector(n uint32) ([]byte, error)
	// ReadSequentialSectors returns length bytes starting at logical sector start, one chunk per sector.
	ReadSequentialSectors(start uint32, length uint32) ([][]byte, error)
	// MaxTrack returns the highest track number in the track table.
	MaxTrack() int
	// ExtractTrack returns the audio track wrapped in a WAVE container, or nil if the track is not audio.
	ExtractTrack(track int) (*wave.Container, error)
	// ResetImage swaps the binary source without rebuilding the track table.
	ResetImage(img Image)
}

// Base owns the image handle. The lock lets ResetImage run from another goroutine without racing in-flight reads.
type Base struct {
	mu    sync.RWMutex
	image Image
}

// Init sets the initial image.
func (b *Base) Init(img Image) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.image = img
}

// Image returns the current image.
func (b *Base) Image() Image {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.image
}

// ResetImage replaces the image handle.
func (b *Base) ResetImage(img Image) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.image = img
}

// ReadPayload reads one 2048 byte logical sector payload located at byte offset off.
func (b *Base) ReadPayload(off int64) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	buf := make([]byte, consts.ISO9660_SECTOR_SIZE)
	n, err := b.image.ReadAt(buf, off)
	if n == len(buf) {
		return buf, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read sector at offset %d: %w", off, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: offset %d beyond image size %d", ErrSectorOutOfRange, off, b.image.Size())
	}
	return nil, fmt.Errorf("short sector read at offset %d: got %d bytes: %w", off, n, io.ErrUnexpectedEOF)
}

// ReadRange reads size bytes at off as a single chunk. A truncated image yields a shorter chunk.
func (b *Base) ReadRange(off int64, size int64) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if avail := b.image.Size() - off; size > avail {
		size = max(avail, 0)
	}
	buf := make([]byte, size)
	n, err := b.image.ReadAt(buf, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read %d bytes at offset %d: %w", size, off, err)
	}
	return buf[:n], nil
}

// ReadSequential reads bytesToRead payload bytes from consecutive physical blocks starting at startOffset.
// Each block is blockSize bytes long and carries up to sectorSize payload bytes at sectorOffset. The returned
// chunks are views into one buffer. If the image is truncated fewer bytes are returned and no error is raised;
// callers compare the total against what they asked for.
func (b *Base) ReadSequential(startOffset int64, bytesToRead int64, blockSize, sectorSize, sectorOffset int) ([][]byte, error) {
	if bytesToRead <= 0 {
		return [][]byte{}, nil
	}
	sectors := (bytesToRead + int64(sectorSize) - 1) / int64(sectorSize)

	b.mu.RLock()
	defer b.mu.RUnlock()

	// Never allocate past the end of the image.
	want := sectors * int64(blockSize)
	if avail := b.image.Size() - startOffset; want > avail {
		if avail <= 0 {
			return [][]byte{}, nil
		}
		want = avail
	}

	buf := make([]byte, want)
	n, err := b.image.ReadAt(buf, startOffset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read %d sectors at offset %d: %w", sectors, startOffset, err)
	}
	buf = buf[:n]

	sectors = min(sectors, (int64(len(buf))+int64(blockSize)-1)/int64(blockSize))
	chunks := make([][]byte, 0, sectors)
	for i := int64(0); i < sectors; i++ {
		start := i*int64(blockSize) + int64(sectorOffset)
		if start >= int64(len(buf)) {
			break
		}
		end := start + min(bytesToRead, int64(sectorSize))
		if end > int64(len(buf)) {
			end = int64(len(buf))
		}
		chunks = append(chunks, buf[start:end])
		bytesToRead -= int64(sectorSize)
	}
	return chunks, nil
}

// Total returns the number of bytes held by chunks.
func Total(chunks [][]byte) int64 {
	var total int64
	for _, c := range chunks {
		total += int64(len(c))
	}
	return total
}

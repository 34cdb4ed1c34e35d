package directory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/rstms/disc-kit/pkg/consts"
	isoenc "github.com/rstms/disc-kit/pkg/iso9660/encoding"
	"golang.org/x/text/encoding"
)

const (
	SELF_IDENTIFIER   = "\x00"
	PARENT_IDENTIFIER = "\x01"

	offsetLocation   = 2
	offsetDataLength = 10
	offsetRecorded   = 18
	offsetFileFlags  = 25
	offsetNameLength = 32
	offsetName       = 33
)

var (
	// ErrRecordOverrun is returned when a record's length byte points past the end of its buffer.
	ErrRecordOverrun = errors.New("directory record overruns buffer")
)

// Record is a read-only view of one directory record inside a sector buffer. A zero length record is the padding
// marker at the end of a directory sector.
type Record struct {
	data []byte
	name string
}

// Parse reads the record at offset within buf. File identifiers are decoded with enc and, when stripVersion is set,
// lose their ";<digits>" suffix. The pseudo identifiers 0x00 and 0x01 are kept as they are.
func Parse(buf []byte, offset int, enc encoding.Encoding, stripVersion bool) (*Record, error) {
	if offset < 0 || offset >= len(buf) {
		return nil, fmt.Errorf("record offset %d outside buffer of %d bytes", offset, len(buf))
	}
	length := int(buf[offset])
	if length == 0 {
		return &Record{data: buf[offset : offset+1]}, nil
	}
	if offset+length > len(buf) {
		return nil, fmt.Errorf("%w: record at %d with length %d, buffer is %d bytes", ErrRecordOverrun, offset, length, len(buf))
	}
	data := buf[offset : offset+length]
	if length < consts.ISO9660_MIN_RECORD_SIZE {
		return nil, fmt.Errorf("insufficient data for directory record: length %d", length)
	}
	nameLen := int(data[offsetNameLength])
	if offsetName+nameLen > length {
		return nil, fmt.Errorf("insufficient data for File Identifier: need %d bytes, record is %d", offsetName+nameLen, length)
	}

	raw := data[offsetName : offsetName+nameLen]
	var name string
	if nameLen == 1 && (raw[0] == 0x00 || raw[0] == 0x01) {
		name = string(raw)
	} else {
		name = isoenc.DecodeIdentifier(raw, enc)
		if stripVersion {
			name = isoenc.StripVersion(name)
		}
	}
	return &Record{data: data, name: name}, nil
}

// Length returns the total record length, 0 for padding.
func (r *Record) Length() int {
	return int(r.data[0])
}

// IsPadding reports whether this is the zero length end-of-sector marker.
func (r *Record) IsPadding() bool {
	return r.Length() == 0
}

// Sector returns the location of the extent.
func (r *Record) Sector() uint32 {
	if r.IsPadding() {
		return 0
	}
	return binary.LittleEndian.Uint32(r.data[offsetLocation:])
}

// Size returns the data length in bytes.
func (r *Record) Size() uint32 {
	if r.IsPadding() {
		return 0
	}
	return binary.LittleEndian.Uint32(r.data[offsetDataLength:])
}

// CheckByteOrder verifies that the little-endian and big-endian copies of the extent location and data length
// agree. Sector and Size only read the little-endian copy.
func (r *Record) CheckByteOrder() error {
	if r.IsPadding() {
		return nil
	}
	if _, err := isoenc.UnmarshalUint32LSBMSB(r.data[offsetLocation : offsetLocation+8]); err != nil {
		return fmt.Errorf("extent location: %w", err)
	}
	if _, err := isoenc.UnmarshalUint32LSBMSB(r.data[offsetDataLength : offsetDataLength+8]); err != nil {
		return fmt.Errorf("data length: %w", err)
	}
	return nil
}

// RecordingTime returns the recording date, the zero time when the record leaves it unspecified.
func (r *Record) RecordingTime() (time.Time, error) {
	if r.IsPadding() {
		return time.Time{}, nil
	}
	return isoenc.DecodeRecordingTime(r.data[offsetRecorded : offsetRecorded+7])
}

func (r *Record) Flags() FileFlags {
	if r.IsPadding() {
		return FileFlags{}
	}
	return UnmarshalFileFlags(r.data[offsetFileFlags])
}

func (r *Record) IsDirectory() bool {
	return r.Flags().Directory
}

// Name returns the decoded file identifier.
func (r *Record) Name() string {
	return r.name
}

// IsSpecial checks for the "." (0x00) and ".." (0x01) pseudo-entries.
func (r *Record) IsSpecial() bool {
	return r.name == SELF_IDENTIFIER || r.name == PARENT_IDENTIFIER
}

func (r *Record) String() string {
	kind := "file"
	if r.IsDirectory() {
		kind = "dir"
	}
	return fmt.Sprintf("%s %q sector=%d size=%d", kind, r.name, r.Sector(), r.Size())
}

package encoding

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// UnmarshalUint32LSBMSB decodes a 32-bit value stored in both byte orders (ECMA-119 7.3.3).
func UnmarshalUint32LSBMSB(data []byte) (uint32, error) {
	if len(data) < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	lsb := binary.LittleEndian.Uint32(data[0:4])
	msb := binary.BigEndian.Uint32(data[4:8])
	if lsb != msb {
		return 0, fmt.Errorf("little-endian and big-endian value mismatch: %d != %d", lsb, msb)
	}
	return lsb, nil
}

// DecodeRecordingTime converts the 7 byte recording date of a directory record. An all-zero field means the
// date is not specified and yields the zero time.
func DecodeRecordingTime(data []byte) (time.Time, error) {
	if len(data) != 7 {
		return time.Time{}, fmt.Errorf("invalid data length: expected 7 bytes, got %d", len(data))
	}
	if data[0] == 0 && data[1] == 0 && data[2] == 0 {
		return time.Time{}, nil
	}

	month := time.Month(data[1])
	day, hour, minute, second := int(data[2]), int(data[3]), int(data[4]), int(data[5])
	offset := int8(data[6])

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month: %d", month)
	}
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid day: %d", day)
	}
	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, fmt.Errorf("invalid time of day: %02d:%02d:%02d", hour, minute, second)
	}
	if offset < -48 || offset > 52 {
		return time.Time{}, fmt.Errorf("invalid GMT offset: %d", offset)
	}

	// offset counts 15 minute intervals from GMT
	location := time.FixedZone("", int(offset)*15*60)
	return time.Date(int(data[0])+1900, month, day, hour, minute, second, 0, location), nil
}

package testing

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// PadIdentifier encodes s as a fixed-width field padded with spaces, truncating if it is too long.
func PadIdentifier(s string, length int) []byte {
	if len(s) > length {
		s = s[:length]
	}
	return []byte(s + strings.Repeat(" ", length-len(s)))
}

// PutUint32LSBMSB writes a 32-bit value in both byte orders (ECMA-119 7.3.3).
func PutUint32LSBMSB(dst []byte, value uint32) {
	_ = dst[7]
	binary.LittleEndian.PutUint32(dst[0:4], value)
	binary.BigEndian.PutUint32(dst[4:8], value)
}

// PutUint16LSBMSB writes a 16-bit value in both byte orders (ECMA-119 7.2.3).
func PutUint16LSBMSB(dst []byte, value uint16) {
	_ = dst[3]
	binary.LittleEndian.PutUint16(dst[0:2], value)
	binary.BigEndian.PutUint16(dst[2:4], value)
}

// EncodeRecordingTime converts t into the 7 byte directory record date.
func EncodeRecordingTime(t time.Time) ([]byte, error) {
	year := t.Year() - 1900
	if year < 0 || year > 255 {
		return nil, fmt.Errorf("year out of range: %d", t.Year())
	}
	_, offsetSeconds := t.Zone()
	offset := offsetSeconds / 60 / 15
	if offset < -48 || offset > 52 {
		return nil, fmt.Errorf("GMT offset out of range: %d", offset)
	}
	return []byte{
		byte(year),
		byte(t.Month()),
		byte(t.Day()),
		byte(t.Hour()),
		byte(t.Minute()),
		byte(t.Second()),
		byte(int8(offset)),
	}, nil
}

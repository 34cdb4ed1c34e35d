// Package mds reads disc images described by a binary media descriptor (.mds) next to a data file (.mdf).
package mds

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rstms/disc-kit/pkg/consts"
)

// Mode is the track mode byte of a track block.
type Mode uint8

const (
	MODE_AUDIO Mode = 0xA9
	MODE_MODE1 Mode = 0xAA
)

func (m Mode) String() string {
	switch m {
	case MODE_AUDIO:
		return "AUDIO"
	case MODE_MODE1:
		return "MODE1"
	default:
		return fmt.Sprintf("0x%02X", uint8(m))
	}
}

var (
	// ErrBadSignature is returned when the descriptor does not start with "MEDIA DESCRIPTOR".
	ErrBadSignature = errors.New("not a media descriptor")
	// ErrTruncated is returned when the descriptor is shorter than its entry count requires.
	ErrTruncated = errors.New("media descriptor is truncated")
	// ErrNoDataTrack is returned when track 1 is missing or not a Mode 1 track.
	ErrNoDataTrack = errors.New("track 1 is not mode1")
)

// Track is one track block of the descriptor together with its extra block.
type Track struct {
	Number int
	Mode   Mode
	// SectorSize is the physical sector size in the data file, 2352 or more.
	SectorSize uint16
	// Offset is the byte offset of the first sector in the data file. Offsets of 4 GiB and above are not supported.
	Offset uint32
	// Sectors is the track length in sectors.
	Sectors uint32
}

// IsAudio reports whether the track holds CD-DA audio.
func (t *Track) IsAudio() bool {
	return t.Mode == MODE_AUDIO
}

// Table is indexed by track number. Entry 0 and missing numbers are nil.
type Table []*Track

// Get returns track n or nil.
func (t Table) Get(n int) *Track {
	if n <= 0 || n >= len(t) {
		return nil
	}
	return t[n]
}

// IsDescriptor reports whether b starts with the media descriptor signature.
func IsDescriptor(b []byte) bool {
	return len(b) >= consts.MDS_SIGNATURE_SIZE && bytes.Equal(b[:consts.MDS_SIGNATURE_SIZE], []byte(consts.MDS_SIGNATURE))
}

// Parse decodes the track table of a media descriptor.
func Parse(b []byte) (Table, error) {
	if !IsDescriptor(b) {
		return nil, ErrBadSignature
	}
	if len(b) < consts.MDS_HEADER_SIZE {
		return nil, fmt.Errorf("%w: header needs %d bytes, got %d", ErrTruncated, consts.MDS_HEADER_SIZE, len(b))
	}

	entries := int(b[consts.MDS_ENTRY_COUNT_OFFSET])
	extraBase := consts.MDS_HEADER_SIZE + entries*consts.MDS_TRACK_BLOCK_SIZE
	if need := extraBase + entries*consts.MDS_EXTRA_BLOCK_SIZE; len(b) < need {
		return nil, fmt.Errorf("%w: %d entries need %d bytes, got %d", ErrTruncated, entries, need, len(b))
	}

	tracks := Table{}
	for i := 0; i < entries; i++ {
		block := b[consts.MDS_HEADER_SIZE+i*consts.MDS_TRACK_BLOCK_SIZE:][:consts.MDS_TRACK_BLOCK_SIZE]
		extra := b[extraBase+i*consts.MDS_EXTRA_BLOCK_SIZE:][:consts.MDS_EXTRA_BLOCK_SIZE]

		number := int(block[consts.MDS_TRACK_NUMBER_OFFSET])
		if number >= consts.CD_TRACK_LIMIT {
			continue
		}
		for len(tracks) <= number {
			tracks = append(tracks, nil)
		}
		tracks[number] = &Track{
			Number:     number,
			Mode:       Mode(block[consts.MDS_TRACK_MODE_OFFSET]),
			SectorSize: binary.LittleEndian.Uint16(block[consts.MDS_SECTOR_SIZE_OFFSET:]),
			Offset:     binary.LittleEndian.Uint32(block[consts.MDS_START_OFFSET_OFFSET:]),
			Sectors:    binary.LittleEndian.Uint32(extra[consts.MDS_EXTRA_LENGTH_OFFSET:]),
		}
	}

	if first := tracks.Get(1); first == nil || first.Mode != MODE_MODE1 {
		return nil, ErrNoDataTrack
	}
	return tracks, nil
}

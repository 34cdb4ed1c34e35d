// Package cue reads disc images described by a cue sheet: one monolithic image file with raw sectors and a
// text file listing TRACK and INDEX points.
package cue

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rstms/disc-kit/pkg/consts"
)

const TYPE_AUDIO = "AUDIO"

var (
	// ErrNoDataTrack is returned when track 1 is missing or is an audio track.
	ErrNoDataTrack = errors.New("track 1 is not a data track")
	// ErrUnsupportedTrackMode is returned when track 1 uses a sector layout this reader cannot address.
	ErrUnsupportedTrackMode = errors.New("unsupported data track mode")
	// ErrInvalidTimecode is returned for INDEX timecodes that are not mm:ss:ff.
	ErrInvalidTimecode = errors.New("invalid timecode")
)

// Track is one TRACK entry of a cue sheet.
type Track struct {
	Number int
	// Type is the raw track type, e.g. AUDIO or MODE1/2352.
	Type string
	// Indexes maps an index number to its mm:ss:ff timecode.
	Indexes map[int]string
}

// IsAudio reports whether the track holds CD-DA audio.
func (t *Track) IsAudio() bool {
	return t.Type == TYPE_AUDIO
}

// StartSector returns the sector of the first index point, preferring the pre-gap (index 0).
func (t *Track) StartSector() (uint32, error) {
	if tc, ok := t.Indexes[0]; ok {
		return IndexToSector(tc)
	}
	return t.IndexSector(1)
}

// IndexSector returns the sector of index point i.
func (t *Track) IndexSector(i int) (uint32, error) {
	tc, ok := t.Indexes[i]
	if !ok {
		return 0, fmt.Errorf("track %d has no INDEX %02d", t.Number, i)
	}
	return IndexToSector(tc)
}

// Table is indexed by track number. Entry 0 and numbers missing from the sheet are nil.
type Table []*Track

// Get returns track n or nil.
func (t Table) Get(n int) *Track {
	if n <= 0 || n >= len(t) {
		return nil
	}
	return t[n]
}

// Parse reads a cue sheet. Lines other than TRACK and INDEX are ignored, as are INDEX lines outside a track and
// track numbers of 100 and above.
func Parse(r io.Reader) (Table, error) {
	tracks := Table{}
	var current *Track

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToUpper(fields[0]) {
		case "TRACK":
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: malformed TRACK line", line)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid track number %q: %w", line, fields[1], err)
			}
			if n < 1 || n >= consts.CD_TRACK_LIMIT {
				current = nil
				continue
			}
			for len(tracks) <= n {
				tracks = append(tracks, nil)
			}
			current = &Track{Number: n, Type: strings.ToUpper(fields[2]), Indexes: map[int]string{}}
			tracks[n] = current
		case "INDEX":
			if current == nil {
				continue
			}
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: malformed INDEX line", line)
			}
			i, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid index number %q: %w", line, fields[1], err)
			}
			if _, err := IndexToSector(fields[2]); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			current.Indexes[i] = fields[2]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cue sheet: %w", err)
	}
	return tracks, nil
}

// IndexToSector converts an mm:ss:ff timecode to a sector number.
func IndexToSector(timecode string) (uint32, error) {
	parts := strings.Split(timecode, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimecode, timecode)
	}
	var msf [3]uint64
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimecode, timecode)
		}
		msf[i] = v
	}
	if msf[1] >= 60 || msf[2] >= consts.CD_FRAMES_PER_SECOND {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimecode, timecode)
	}
	return uint32(msf[0]*60*consts.CD_FRAMES_PER_SECOND + msf[1]*consts.CD_FRAMES_PER_SECOND + msf[2]), nil
}

// SectorToIndex formats a sector number as an mm:ss:ff timecode.
func SectorToIndex(sector uint32) string {
	frames := sector % consts.CD_FRAMES_PER_SECOND
	seconds := sector / consts.CD_FRAMES_PER_SECOND % 60
	minutes := sector / consts.CD_FRAMES_PER_SECOND / 60
	return fmt.Sprintf("%02d:%02d:%02d", minutes, seconds, frames)
}

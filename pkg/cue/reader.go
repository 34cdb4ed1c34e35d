package cue

import (
	"fmt"
	"io"

	"github.com/rstms/disc-kit/pkg/consts"
	"github.com/rstms/disc-kit/pkg/logging"
	"github.com/rstms/disc-kit/pkg/option"
	"github.com/rstms/disc-kit/pkg/sector"
	"github.com/rstms/disc-kit/pkg/wave"
)

// geometry maps a data track type to its physical sector size and payload offset.
var geometry = map[string][2]int{
	"MODE1/2048": {consts.ISO9660_SECTOR_SIZE, 0},
	"MODE1/2352": {consts.CD_SECTOR_SIZE, consts.CD_MODE1_DATA_OFFSET},
	"MODE2/2352": {consts.CD_SECTOR_SIZE, consts.CD_MODE2_DATA_OFFSET},
}

// Reader implements sector.Reader over an image described by a cue sheet.
type Reader struct {
	sector.Base
	tracks     Table
	sectorSize int
	dataOffset int
	// dataEnd is the byte offset where track 1 ends, 0 when it runs to the end of the image.
	dataEnd int64
	log     *logging.Logger
}

// NewReader parses the cue sheet and validates that track 1 is an addressable data track.
func NewReader(img sector.Image, sheet io.Reader, opts ...option.OpenOption) (*Reader, error) {
	o := option.NewOpenOptions(opts...)

	tracks, err := Parse(sheet)
	if err != nil {
		return nil, err
	}
	first := tracks.Get(1)
	if first == nil || first.IsAudio() {
		return nil, ErrNoDataTrack
	}
	geo, ok := geometry[first.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTrackMode, first.Type)
	}

	r := &Reader{
		tracks:     tracks,
		sectorSize: geo[0],
		dataOffset: geo[1],
		log:        o.Logger.WithName("cue"),
	}
	r.Init(img)

	if next := tracks.Get(2); next != nil {
		start, err := next.StartSector()
		if err != nil {
			return nil, err
		}
		r.dataEnd = int64(start) * consts.CD_SECTOR_SIZE
	}

	r.log.Debug("parsed cue sheet", "tracks", r.MaxTrack(), "mode", first.Type, "dataEnd", r.dataEnd)
	for _, t := range tracks {
		if t != nil {
			r.log.Trace("track", "number", t.Number, "type", t.Type, "indexes", t.Indexes)
		}
	}
	return r, nil
}

// Tracks returns the track table.
func (r *Reader) Tracks() Table {
	return r.tracks
}

func (r *Reader) MaxTrack() int {
	if len(r.tracks) == 0 {
		return 0
	}
	return len(r.tracks) - 1
}

func (r *Reader) ReadSector(n uint32) ([]byte, error) {
	off := int64(n)*int64(r.sectorSize) + int64(r.dataOffset)
	if r.dataEnd > 0 && off+consts.ISO9660_SECTOR_SIZE > r.dataEnd {
		return nil, fmt.Errorf("%w: sector %d is past the end of track 1", sector.ErrSectorOutOfRange, n)
	}
	r.log.Trace("read sector", "sector", n, "offset", off)
	return r.ReadPayload(off)
}

func (r *Reader) ReadSequentialSectors(start uint32, length uint32) ([][]byte, error) {
	return r.ReadSequential(int64(start)*int64(r.sectorSize), int64(length), r.sectorSize, consts.ISO9660_SECTOR_SIZE, r.dataOffset)
}

// Span returns the byte range of an audio track: from its INDEX 01 to the first index point of the next
// track, or to the end of the image for the last track.
func (r *Reader) Span(track int) (start int64, end int64, err error) {
	t := r.tracks.Get(track)
	if t == nil {
		return 0, 0, fmt.Errorf("track %d does not exist", track)
	}
	s, err := t.IndexSector(1)
	if err != nil {
		return 0, 0, err
	}
	start = int64(s) * consts.CD_SECTOR_SIZE

	if next := r.tracks.Get(track + 1); next != nil {
		e, err := next.StartSector()
		if err != nil {
			return 0, 0, err
		}
		end = int64(e) * consts.CD_SECTOR_SIZE
	} else {
		end = r.Image().Size()
	}
	if end < start {
		return 0, 0, fmt.Errorf("track %d ends at byte %d before it starts at byte %d", track, end, start)
	}
	return start, end, nil
}

func (r *Reader) ExtractTrack(track int) (*wave.Container, error) {
	t := r.tracks.Get(track)
	if t == nil || !t.IsAudio() {
		return nil, nil
	}
	start, end, err := r.Span(track)
	if err != nil {
		return nil, err
	}
	size := end - start
	if size > wave.MaxPayload {
		return nil, fmt.Errorf("track %d: %w: %d bytes", track, wave.ErrTooLarge, size)
	}
	r.log.Debug("extract track", "track", track, "start", start, "size", size)

	data, err := r.ReadRange(start, size)
	if err != nil {
		return nil, err
	}
	c, err := wave.Wrap(size, [][]byte{data})
	if err != nil {
		return nil, fmt.Errorf("track %d: %w", track, err)
	}
	return c, nil
}

package mds

import (
	"fmt"

	"github.com/rstms/disc-kit/pkg/consts"
	"github.com/rstms/disc-kit/pkg/logging"
	"github.com/rstms/disc-kit/pkg/option"
	"github.com/rstms/disc-kit/pkg/sector"
	"github.com/rstms/disc-kit/pkg/wave"
)

// Reader implements sector.Reader over an .mdf data file.
type Reader struct {
	sector.Base
	tracks     Table
	dataOffset int
	log        *logging.Logger
}

// NewReader parses the descriptor bytes and binds them to the data file.
func NewReader(img sector.Image, descriptor []byte, opts ...option.OpenOption) (*Reader, error) {
	o := option.NewOpenOptions(opts...)

	tracks, err := Parse(descriptor)
	if err != nil {
		return nil, err
	}

	// Cooked 2048 byte tracks carry no sync/header in front of the payload.
	first := tracks.Get(1)
	dataOffset := consts.CD_MODE1_DATA_OFFSET
	if first.SectorSize == consts.ISO9660_SECTOR_SIZE {
		dataOffset = 0
	}
	if int(first.SectorSize) < dataOffset+consts.ISO9660_SECTOR_SIZE {
		return nil, fmt.Errorf("%w: sector size %d", ErrNoDataTrack, first.SectorSize)
	}

	r := &Reader{
		tracks:     tracks,
		dataOffset: dataOffset,
		log:        o.Logger.WithName("mds"),
	}
	r.Init(img)

	r.log.Debug("parsed media descriptor", "tracks", r.MaxTrack(), "sectorSize", first.SectorSize, "sectors", first.Sectors)
	for _, t := range tracks {
		if t != nil {
			r.log.Trace("track", "number", t.Number, "mode", t.Mode, "sectorSize", t.SectorSize, "offset", t.Offset, "sectors", t.Sectors)
		}
	}
	return r, nil
}

// Tracks returns the track table.
func (r *Reader) Tracks() Table {
	return r.tracks
}

func (r *Reader) MaxTrack() int {
	return len(r.tracks) - 1
}

func (r *Reader) ReadSector(n uint32) ([]byte, error) {
	t := r.tracks[1]
	if t.Sectors > 0 && n >= t.Sectors {
		return nil, fmt.Errorf("%w: sector %d, track 1 has %d sectors", sector.ErrSectorOutOfRange, n, t.Sectors)
	}
	off := int64(t.Offset) + int64(n)*int64(t.SectorSize) + int64(r.dataOffset)
	r.log.Trace("read sector", "sector", n, "offset", off)
	return r.ReadPayload(off)
}

func (r *Reader) ReadSequentialSectors(start uint32, length uint32) ([][]byte, error) {
	t := r.tracks[1]
	off := int64(t.Offset) + int64(start)*int64(t.SectorSize)
	return r.ReadSequential(off, int64(length), int(t.SectorSize), consts.ISO9660_SECTOR_SIZE, r.dataOffset)
}

func (r *Reader) ExtractTrack(track int) (*wave.Container, error) {
	t := r.tracks.Get(track)
	if t == nil || !t.IsAudio() {
		return nil, nil
	}
	if t.SectorSize < consts.CD_SECTOR_SIZE {
		return nil, fmt.Errorf("track %d: audio sector size %d is smaller than %d", track, t.SectorSize, consts.CD_SECTOR_SIZE)
	}
	size := int64(t.Sectors) * consts.CD_SECTOR_SIZE
	if size > wave.MaxPayload {
		return nil, fmt.Errorf("track %d: %w: %d sectors", track, wave.ErrTooLarge, t.Sectors)
	}
	r.log.Debug("extract track", "track", track, "offset", t.Offset, "size", size)

	chunks, err := r.ReadSequential(int64(t.Offset), size, int(t.SectorSize), consts.CD_SECTOR_SIZE, 0)
	if err != nil {
		return nil, err
	}
	c, err := wave.Wrap(size, chunks)
	if err != nil {
		return nil, fmt.Errorf("track %d: %w", track, err)
	}
	return c, nil
}

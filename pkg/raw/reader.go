// Package raw reads a disc image supplied without a descriptor. The whole image is treated as one data track,
// either cooked (2048 byte sectors) or raw (2352 byte sectors starting with the CD sync pattern).
package raw

import (
	"bytes"
	"errors"
	"io"

	"github.com/rstms/disc-kit/pkg/consts"
	"github.com/rstms/disc-kit/pkg/logging"
	"github.com/rstms/disc-kit/pkg/option"
	"github.com/rstms/disc-kit/pkg/sector"
	"github.com/rstms/disc-kit/pkg/wave"
)

var syncPattern = []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}

// Reader implements sector.Reader for a single image file.
type Reader struct {
	sector.Base
	sectorSize int
	dataOffset int
	log        *logging.Logger
}

// NewReader inspects the first sector to pick the sector layout.
func NewReader(img sector.Image, opts ...option.OpenOption) (*Reader, error) {
	o := option.NewOpenOptions(opts...)
	r := &Reader{
		sectorSize: consts.ISO9660_SECTOR_SIZE,
		log:        o.Logger.WithName("raw"),
	}
	r.Init(img)

	head := make([]byte, consts.CD_MODE1_DATA_OFFSET)
	n, err := img.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if n == len(head) && bytes.Equal(head[:consts.CD_SYNC_SIZE], syncPattern) {
		r.sectorSize = consts.CD_SECTOR_SIZE
		r.dataOffset = consts.CD_MODE1_DATA_OFFSET
		if head[consts.CD_MODE1_DATA_OFFSET-1] == 2 {
			r.dataOffset = consts.CD_MODE2_DATA_OFFSET
		}
	}
	r.log.Debug("single image", "sectorSize", r.sectorSize, "dataOffset", r.dataOffset, "size", img.Size())
	return r, nil
}

// SectorSize returns the detected physical sector size.
func (r *Reader) SectorSize() int {
	return r.sectorSize
}

func (r *Reader) MaxTrack() int {
	return 1
}

func (r *Reader) ReadSector(n uint32) ([]byte, error) {
	off := int64(n)*int64(r.sectorSize) + int64(r.dataOffset)
	r.log.Trace("read sector", "sector", n, "offset", off)
	return r.ReadPayload(off)
}

func (r *Reader) ReadSequentialSectors(start uint32, length uint32) ([][]byte, error) {
	return r.ReadSequential(int64(start)*int64(r.sectorSize), int64(length), r.sectorSize, consts.ISO9660_SECTOR_SIZE, r.dataOffset)
}

// ExtractTrack always returns nil: the only track is the data track.
func (r *Reader) ExtractTrack(track int) (*wave.Container, error) {
	return nil, nil
}

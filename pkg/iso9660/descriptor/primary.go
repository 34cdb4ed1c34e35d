package descriptor

import (
	"errors"
	"fmt"

	"github.com/rstms/disc-kit/pkg/consts"
	"github.com/rstms/disc-kit/pkg/iso9660/directory"
	isoenc "github.com/rstms/disc-kit/pkg/iso9660/encoding"
	"golang.org/x/text/encoding"
)

var (
	// ErrNotPrimary is returned when sector 0x10 does not hold a primary volume descriptor.
	ErrNotPrimary = errors.New("PVD not found")
)

// PrimaryVolumeDescriptor is a view of the primary volume descriptor sector. Only the fields needed to mount the
// volume are decoded.
type PrimaryVolumeDescriptor struct {
	VolumeDescriptorHeader
	buf []byte
}

// UnmarshalPrimary validates a descriptor sector: the type byte must be 1 and the identifier "CD001".
func UnmarshalPrimary(buf []byte) (*PrimaryVolumeDescriptor, error) {
	if len(buf) != consts.ISO9660_SECTOR_SIZE {
		return nil, fmt.Errorf("data too short for primary volume descriptor: %d bytes", len(buf))
	}
	header, err := UnmarshalHeader(buf)
	if err != nil {
		return nil, err
	}
	if header.VolumeDescriptorType != TYPE_PRIMARY_DESCRIPTOR {
		return nil, fmt.Errorf("%w: descriptor type is %s", ErrNotPrimary, header.VolumeDescriptorType)
	}
	if !header.Valid() {
		return nil, fmt.Errorf("%w: invalid ISO9660 signature %q", ErrNotPrimary, header.StandardIdentifier)
	}
	return &PrimaryVolumeDescriptor{VolumeDescriptorHeader: header, buf: buf}, nil
}

// VolumeIdentifier returns the trimmed, decoded 32 byte volume label.
func (pvd *PrimaryVolumeDescriptor) VolumeIdentifier(enc encoding.Encoding) string {
	raw := pvd.buf[consts.ISO9660_VOLUME_ID_OFFSET : consts.ISO9660_VOLUME_ID_OFFSET+consts.ISO9660_VOLUME_ID_SIZE]
	return isoenc.TrimIdentifier(isoenc.DecodeIdentifier(raw, enc))
}

// RootDirectoryRecord returns the record embedded at byte 156.
func (pvd *PrimaryVolumeDescriptor) RootDirectoryRecord() (*directory.Record, error) {
	rec, err := directory.Parse(pvd.buf, consts.ISO9660_ROOT_RECORD_OFFSET, nil, false)
	if err != nil {
		return nil, fmt.Errorf("failed to parse root directory record: %w", err)
	}
	if rec.IsPadding() || !rec.IsDirectory() {
		return nil, fmt.Errorf("%w: root directory record is not a directory", ErrNotPrimary)
	}
	return rec, nil
}

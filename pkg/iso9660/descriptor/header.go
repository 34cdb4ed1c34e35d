package descriptor

import (
	"fmt"

	"github.com/rstms/disc-kit/pkg/consts"
)

// VolumeDescriptorType represents the type of volume descriptor in the ISO9660 standard.
//
//	| 0 = Boot Record
//	| 1 = Primary
//	| 2 = Supplementary
//	| 3 = Partition
//	| 255 = Terminator
type VolumeDescriptorType byte

const (
	TYPE_BOOT_RECORD              VolumeDescriptorType = 0x00
	TYPE_PRIMARY_DESCRIPTOR       VolumeDescriptorType = 0x01
	TYPE_SUPPLEMENTARY_DESCRIPTOR VolumeDescriptorType = 0x02
	TYPE_PARTITION_DESCRIPTOR     VolumeDescriptorType = 0x03
	TYPE_TERMINATOR_DESCRIPTOR    VolumeDescriptorType = 0xFF
)

func (t VolumeDescriptorType) String() string {
	switch t {
	case TYPE_BOOT_RECORD:
		return "boot record"
	case TYPE_PRIMARY_DESCRIPTOR:
		return "primary"
	case TYPE_SUPPLEMENTARY_DESCRIPTOR:
		return "supplementary"
	case TYPE_PARTITION_DESCRIPTOR:
		return "partition"
	case TYPE_TERMINATOR_DESCRIPTOR:
		return "terminator"
	default:
		return fmt.Sprintf("reserved(%d)", byte(t))
	}
}

// VolumeDescriptorHeader is the 7 byte prefix shared by every volume descriptor.
type VolumeDescriptorHeader struct {
	VolumeDescriptorType VolumeDescriptorType `json:"volume_descriptor_type"`
	// Standard Identifier should always be 'CD001'.
	StandardIdentifier      string `json:"standard_identifier"`
	VolumeDescriptorVersion uint8  `json:"volume_descriptor_version"`
}

// UnmarshalHeader decodes the header at the start of a descriptor sector.
func UnmarshalHeader(data []byte) (VolumeDescriptorHeader, error) {
	if len(data) < 7 {
		return VolumeDescriptorHeader{}, fmt.Errorf("data too short for volume descriptor header: %d bytes", len(data))
	}
	return VolumeDescriptorHeader{
		VolumeDescriptorType:    VolumeDescriptorType(data[0]),
		StandardIdentifier:      string(data[1:6]),
		VolumeDescriptorVersion: data[6],
	}, nil
}

// Valid reports whether the standard identifier is "CD001".
func (h VolumeDescriptorHeader) Valid() bool {
	return h.StandardIdentifier == consts.ISO9660_STD_IDENTIFIER
}

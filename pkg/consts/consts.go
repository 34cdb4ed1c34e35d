package consts

const (
	// Logical sector size used by the ISO9660 layer.
	ISO9660_SECTOR_SIZE = 2048

	// Number of system area sectors. The primary volume descriptor lives at the first sector after it (0x10).
	ISO9660_SYSTEM_AREA_SECTORS = 16

	// Standard ISO9660 identifier.
	ISO9660_STD_IDENTIFIER = "CD001"

	// Volume descriptor type of the primary volume descriptor.
	ISO9660_PRIMARY_DESCRIPTOR_TYPE = 1

	// Byte offset and size of the volume identifier inside the primary volume descriptor.
	ISO9660_VOLUME_ID_OFFSET = 40
	ISO9660_VOLUME_ID_SIZE   = 32

	// Byte offset of the root directory record inside the primary volume descriptor.
	ISO9660_ROOT_RECORD_OFFSET = 156

	// Minimum size of a directory record without its file identifier.
	ISO9660_MIN_RECORD_SIZE = 33

	// Separator between a file identifier and its version number.
	ISO9660_SEPARATOR_2 = ";"

	// Raw CD sector size. Audio tracks use the whole sector as payload.
	CD_SECTOR_SIZE = 2352

	// Raw CD sync pattern size. A data sector starts with 00 FF*10 00.
	CD_SYNC_SIZE = 12

	// Offset of the 2048 byte payload in a Mode 1 sector: sync(12) + header(4).
	CD_MODE1_DATA_OFFSET = 16

	// Offset of the 2048 byte payload in a Mode 2 Form 1 sector: sync(12) + header(4) + subheader(8).
	CD_MODE2_DATA_OFFSET = 24

	// Disc clock, sectors (frames) per second.
	CD_FRAMES_PER_SECOND = 75

	// Track numbers at or above this value are lead-in/lead-out markers, not tracks.
	CD_TRACK_LIMIT = 100

	// MDS (media descriptor) layout.
	MDS_SIGNATURE           = "MEDIA DESCRIPTOR"
	MDS_SIGNATURE_SIZE      = 16
	MDS_ENTRY_COUNT_OFFSET  = 0x62
	MDS_HEADER_SIZE         = 0x70
	MDS_TRACK_BLOCK_SIZE    = 0x50
	MDS_EXTRA_BLOCK_SIZE    = 0x08
	MDS_TRACK_MODE_OFFSET   = 0x00
	MDS_TRACK_NUMBER_OFFSET = 0x04
	MDS_SECTOR_SIZE_OFFSET  = 0x10
	MDS_START_OFFSET_OFFSET = 0x28
	MDS_EXTRA_LENGTH_OFFSET = 0x04
)

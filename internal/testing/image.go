package testing

import (
	"encoding/binary"
	"time"

	"github.com/rstms/disc-kit/pkg/consts"
	"github.com/rstms/disc-kit/pkg/iso9660/directory"
)

const sectorSize = consts.ISO9660_SECTOR_SIZE

// Recorded is the recording date written into every synthetic directory record.
var Recorded = time.Date(1998, time.March, 12, 10, 30, 0, 0, time.FixedZone("", 9*60*60))

// Node is a file or directory in a synthetic volume. Names are on-disc identifiers, e.g. "SYSTEM3.EXE;1".
type Node struct {
	Name     string
	Data     []byte
	Children []*Node

	sector uint32
	size   uint32
}

// Dir returns a directory node.
func Dir(name string, children ...*Node) *Node {
	return &Node{Name: name, Children: append([]*Node{}, children...)}
}

// File returns a file node.
func File(name string, data []byte) *Node {
	return &Node{Name: name, Data: data}
}

func (n *Node) IsDir() bool {
	return n.Children != nil
}

// Sector returns the extent assigned by BuildVolume.
func (n *Node) Sector() uint32 {
	return n.sector
}

// EncodeRecord builds a directory record the way mastering tools do: both-byte-order fields and a pad byte
// after an even length identifier.
func EncodeRecord(name []byte, extent uint32, size uint32, dir bool) []byte {
	length := consts.ISO9660_MIN_RECORD_SIZE + len(name)
	if len(name)%2 == 0 {
		length++
	}
	rec := make([]byte, length)
	rec[0] = byte(length)
	PutUint32LSBMSB(rec[2:], extent)
	PutUint32LSBMSB(rec[10:], size)
	recorded, _ := EncodeRecordingTime(Recorded)
	copy(rec[18:25], recorded)
	rec[25] = directory.FileFlags{Directory: dir}.Marshal()
	PutUint16LSBMSB(rec[28:], 1)
	rec[32] = byte(len(name))
	copy(rec[33:], name)
	return rec
}

// recordsFor returns the records of a directory in on-disc order: self, parent, children.
func recordsFor(dir *Node, parent *Node) [][]byte {
	recs := [][]byte{
		EncodeRecord([]byte{0x00}, dir.sector, dir.size, true),
		EncodeRecord([]byte{0x01}, parent.sector, parent.size, true),
	}
	for _, c := range dir.Children {
		if c.IsDir() {
			recs = append(recs, EncodeRecord([]byte(c.Name), c.sector, c.size, true))
		} else {
			recs = append(recs, EncodeRecord([]byte(c.Name), c.sector, uint32(len(c.Data)), false))
		}
	}
	return recs
}

// dirSectors counts the sectors needed when records may not cross a sector boundary.
func dirSectors(n *Node) uint32 {
	lengths := []int{34, 34}
	for _, c := range n.Children {
		l := consts.ISO9660_MIN_RECORD_SIZE + len(c.Name)
		if len(c.Name)%2 == 0 {
			l++
		}
		lengths = append(lengths, l)
	}
	sectors, pos := uint32(1), 0
	for _, l := range lengths {
		if pos+l > sectorSize {
			sectors++
			pos = 0
		}
		pos += l
	}
	return sectors
}

// BuildVolume lays out a cooked (2048 byte sector) ISO9660 image: system area, primary volume descriptor at
// sector 16, terminator at 17, directories, then file data.
func BuildVolume(label string, root *Node) []byte {
	next := uint32(consts.ISO9660_SYSTEM_AREA_SECTORS + 2)

	var dirs []*Node
	var files []*Node
	var assign func(n *Node)
	assign = func(n *Node) {
		sectors := dirSectors(n)
		n.sector = next
		n.size = sectors * sectorSize
		next += sectors
		dirs = append(dirs, n)
		for _, c := range n.Children {
			if c.IsDir() {
				assign(c)
			} else {
				files = append(files, c)
			}
		}
	}
	assign(root)
	for _, f := range files {
		f.sector = next
		next += (uint32(len(f.Data)) + sectorSize - 1) / sectorSize
	}

	img := make([]byte, int(next)*sectorSize)

	pvd := img[16*sectorSize : 17*sectorSize]
	pvd[0] = 1
	copy(pvd[1:6], consts.ISO9660_STD_IDENTIFIER)
	pvd[6] = 1
	copy(pvd[40:72], PadIdentifier(label, 32))
	PutUint32LSBMSB(pvd[80:], next)
	PutUint16LSBMSB(pvd[128:], sectorSize)
	copy(pvd[156:], EncodeRecord([]byte{0x00}, root.sector, root.size, true))

	term := img[17*sectorSize : 18*sectorSize]
	term[0] = 0xFF
	copy(term[1:6], consts.ISO9660_STD_IDENTIFIER)
	term[6] = 1

	parents := map[*Node]*Node{root: root}
	for _, d := range dirs {
		for _, c := range d.Children {
			parents[c] = d
		}
	}
	for _, d := range dirs {
		WriteDirectory(img, d.sector, recordsFor(d, parents[d]))
	}
	for _, f := range files {
		copy(img[int(f.sector)*sectorSize:], f.Data)
	}
	return img
}

// WriteDirectory packs records into the sectors starting at extent, zero padding the tail of each sector.
func WriteDirectory(img []byte, extent uint32, records [][]byte) {
	base := int(extent) * sectorSize
	pos := 0
	for _, rec := range records {
		if pos%sectorSize+len(rec) > sectorSize {
			pos += sectorSize - pos%sectorSize
		}
		copy(img[base+pos:], rec)
		pos += len(rec)
	}
}

// ToRaw converts a cooked image to 2352 byte sectors with sync pattern, BCD MSF header and mode byte.
// Mode 2 sectors get an 8 byte Form 1 subheader in front of the payload.
func ToRaw(cooked []byte, mode byte) []byte {
	count := len(cooked) / sectorSize
	raw := make([]byte, count*consts.CD_SECTOR_SIZE)
	for i := 0; i < count; i++ {
		s := raw[i*consts.CD_SECTOR_SIZE : (i+1)*consts.CD_SECTOR_SIZE]
		s[0] = 0x00
		for j := 1; j < 11; j++ {
			s[j] = 0xFF
		}
		s[11] = 0x00
		lba := i + 150
		s[12] = bcd(lba / (60 * 75))
		s[13] = bcd(lba / 75 % 60)
		s[14] = bcd(lba % 75)
		s[15] = mode
		offset := consts.CD_MODE1_DATA_OFFSET
		if mode == 2 {
			offset = consts.CD_MODE2_DATA_OFFSET
		}
		copy(s[offset:], cooked[i*sectorSize:(i+1)*sectorSize])
	}
	return raw
}

func bcd(v int) byte {
	return byte(v/10<<4 | v%10)
}

// Audio returns sectors*2352 bytes of a repeating pattern seeded by seed.
func Audio(sectors int, seed byte) []byte {
	buf := make([]byte, sectors*consts.CD_SECTOR_SIZE)
	for i := range buf {
		buf[i] = seed + byte(i%251)
	}
	return buf
}

// MDSTrack describes one track block of a synthetic media descriptor.
type MDSTrack struct {
	Number     byte
	Mode       byte
	SectorSize uint16
	Offset     uint32
	Sectors    uint32
}

// BuildMDS encodes a media descriptor with the given track blocks.
func BuildMDS(tracks ...MDSTrack) []byte {
	n := len(tracks)
	buf := make([]byte, consts.MDS_HEADER_SIZE+n*(consts.MDS_TRACK_BLOCK_SIZE+consts.MDS_EXTRA_BLOCK_SIZE))
	copy(buf, consts.MDS_SIGNATURE)
	buf[consts.MDS_ENTRY_COUNT_OFFSET] = byte(n)
	extraBase := consts.MDS_HEADER_SIZE + n*consts.MDS_TRACK_BLOCK_SIZE
	for i, t := range tracks {
		block := buf[consts.MDS_HEADER_SIZE+i*consts.MDS_TRACK_BLOCK_SIZE:]
		block[consts.MDS_TRACK_MODE_OFFSET] = t.Mode
		block[consts.MDS_TRACK_NUMBER_OFFSET] = t.Number
		binary.LittleEndian.PutUint16(block[consts.MDS_SECTOR_SIZE_OFFSET:], t.SectorSize)
		binary.LittleEndian.PutUint32(block[consts.MDS_START_OFFSET_OFFSET:], t.Offset)
		extra := buf[extraBase+i*consts.MDS_EXTRA_BLOCK_SIZE:]
		binary.LittleEndian.PutUint32(extra[consts.MDS_EXTRA_LENGTH_OFFSET:], t.Sectors)
	}
	return buf
}

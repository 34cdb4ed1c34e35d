package iso9660

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/rstms/disc-kit/pkg/consts"
	"github.com/rstms/disc-kit/pkg/iso9660/descriptor"
	"github.com/rstms/disc-kit/pkg/iso9660/directory"
	"github.com/rstms/disc-kit/pkg/logging"
	"github.com/rstms/disc-kit/pkg/option"
	"github.com/rstms/disc-kit/pkg/sector"
)

var (
	// ErrNoPrimaryDescriptor is returned when logical sector 0x10 is not a primary volume descriptor.
	ErrNoPrimaryDescriptor = descriptor.ErrNotPrimary
	// ErrRecordCrossesSector is returned when a directory record would extend past its sector.
	ErrRecordCrossesSector = errors.New("dirent across sector boundary")
	// ErrNotDirectory is returned when a directory operation is given a file record.
	ErrNotDirectory = errors.New("not a directory")
	// ErrSizeMismatch is wrapped by SizeMismatchError.
	ErrSizeMismatch = errors.New("extracted size does not match directory record")
)

// SizeMismatchError reports a file whose extracted byte count differs from its directory record.
type SizeMismatchError struct {
	Name     string
	Expected int64
	Actual   int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d bytes, but read %d bytes", e.Name, e.Expected, e.Actual)
}

func (e *SizeMismatchError) Unwrap() error {
	return ErrSizeMismatch
}

// FileSystem is a read-only ISO9660 filesystem on top of a sector.Reader. Nothing but the primary volume
// descriptor is cached; every listing reads the directory sectors again.
type FileSystem struct {
	reader  sector.Reader
	pvd     *descriptor.PrimaryVolumeDescriptor
	root    *directory.Record
	options *option.OpenOptions
	log     *logging.Logger
}

// Create reads the primary volume descriptor at logical sector 0x10.
func Create(reader sector.Reader, opts ...option.OpenOption) (*FileSystem, error) {
	o := option.NewOpenOptions(opts...)
	log := o.Logger.WithName("iso9660")

	buf, err := reader.ReadSector(consts.ISO9660_SYSTEM_AREA_SECTORS)
	if err != nil {
		return nil, fmt.Errorf("failed to read volume descriptor: %w", err)
	}
	pvd, err := descriptor.UnmarshalPrimary(buf)
	if err != nil {
		return nil, err
	}
	root, err := pvd.RootDirectoryRecord()
	if err != nil {
		return nil, err
	}

	fs := &FileSystem{
		reader:  reader,
		pvd:     pvd,
		root:    root,
		options: o,
		log:     log,
	}
	log.Debug("mounted volume", "label", fs.VolumeLabel(), "rootSector", root.Sector(), "rootSize", root.Size())
	return fs, nil
}

// Reader returns the sector reader the filesystem reads through.
func (fs *FileSystem) Reader() sector.Reader {
	return fs.reader
}

// VolumeLabel returns the trimmed volume identifier.
func (fs *FileSystem) VolumeLabel() string {
	return fs.pvd.VolumeIdentifier(fs.options.NameEncoding)
}

// RootDir returns the root directory record from the primary volume descriptor.
func (fs *FileSystem) RootDir() *directory.Record {
	return fs.root
}

// GetDirEnt returns the first entry of parent whose name matches name case-insensitively, or nil.
func (fs *FileSystem) GetDirEnt(name string, parent *directory.Record) (*directory.Record, error) {
	entries, err := fs.ReadDir(parent)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name(), name) {
			return e, nil
		}
	}
	return nil, nil
}

// ReadDir lists a directory, including the "\x00" and "\x01" pseudo-entries. Records never straddle a sector;
// a zero length record pads the rest of its sector.
func (fs *FileSystem) ReadDir(dir *directory.Record) ([]*directory.Record, error) {
	if dir == nil {
		return nil, fmt.Errorf("%w: nil record", ErrNotDirectory)
	}
	if !dir.IsDirectory() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir.Name())
	}

	const sectorSize = consts.ISO9660_SECTOR_SIZE
	sec := dir.Sector()
	position := 0
	length := int64(dir.Size())
	entries := make([]*directory.Record, 0)
	var buf []byte

	for int64(position) < length {
		if position == 0 {
			var err error
			if buf, err = fs.reader.ReadSector(sec); err != nil {
				return nil, fmt.Errorf("failed to read directory sector %d: %w", sec, err)
			}
		}

		if recLen := int(buf[position]); position+recLen > sectorSize {
			return nil, fmt.Errorf("%w: record at sector %d offset %d has length %d", ErrRecordCrossesSector, sec, position, recLen)
		}
		child, err := directory.Parse(buf, position, fs.options.NameEncoding, fs.options.StripVersionInfo)
		if err != nil {
			return nil, fmt.Errorf("failed to parse directory record at sector %d offset %d: %w", sec, position, err)
		}

		if child.IsPadding() {
			position = sectorSize
		} else {
			fs.log.Trace("directory record", "record", child.String())
			if err := child.CheckByteOrder(); err != nil {
				fs.log.Debug("directory record byte order mismatch", "sector", sec, "offset", position, "name", child.Name(), "error", err)
			}
			entries = append(entries, child)
			position += child.Length()
		}

		if position == sectorSize {
			sec++
			position = 0
			length -= sectorSize
		}
	}
	return entries, nil
}

// ReadFile returns the file's bytes as per-sector chunks. A truncated image yields fewer bytes than Size();
// ExtractFile checks for that.
func (fs *FileSystem) ReadFile(rec *directory.Record) ([][]byte, error) {
	return fs.reader.ReadSequentialSectors(rec.Sector(), rec.Size())
}

// ExtractFile returns the file as one contiguous buffer and fails if fewer bytes than declared were read.
func (fs *FileSystem) ExtractFile(rec *directory.Record) ([]byte, error) {
	chunks, err := fs.ReadFile(rec)
	if err != nil {
		return nil, err
	}
	total := sector.Total(chunks)
	if total != int64(rec.Size()) {
		return nil, &SizeMismatchError{Name: rec.Name(), Expected: int64(rec.Size()), Actual: total}
	}
	buf := make([]byte, 0, total)
	for _, chunk := range chunks {
		buf = append(buf, chunk...)
	}
	return buf, nil
}

// Lookup resolves a slash separated path from the root, matching each component case-insensitively.
// A missing component returns nil without an error.
func (fs *FileSystem) Lookup(p string) (*directory.Record, error) {
	current := fs.root
	for _, part := range strings.Split(strings.Trim(path.Clean("/"+p), "/"), "/") {
		if part == "" {
			continue
		}
		if !current.IsDirectory() {
			return nil, nil
		}
		next, err := fs.GetDirEnt(part, current)
		if err != nil || next == nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// WalkFunc is called for every entry below the walked directory. Returning SkipDir from a directory entry
// prevents descending into it.
type WalkFunc func(fullPath string, rec *directory.Record) error

// SkipDir can be returned by a WalkFunc to skip a directory.
var SkipDir = errors.New("skip this directory")

// Walk visits every entry below dir depth first, skipping the pseudo-entries. Directories already visited by
// sector are not entered twice.
func (fs *FileSystem) Walk(dir *directory.Record, fn WalkFunc) error {
	visited := make(map[uint32]bool)

	var walk func(d *directory.Record, parentPath string) error
	walk = func(d *directory.Record, parentPath string) error {
		if visited[d.Sector()] {
			return nil
		}
		visited[d.Sector()] = true

		entries, err := fs.ReadDir(d)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.IsSpecial() {
				continue
			}
			fullPath := parentPath + "/" + e.Name()
			if err := fn(fullPath, e); err != nil {
				if errors.Is(err, SkipDir) && e.IsDirectory() {
					continue
				}
				return err
			}
			if e.IsDirectory() {
				if err := walk(e, fullPath); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(dir, "")
}

// Package loader turns the files a user selected into a mounted disc: it decides which file is the image and
// which is the descriptor, builds the matching sector reader and mounts the ISO9660 filesystem on top of it.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rstms/disc-kit/pkg/cue"
	"github.com/rstms/disc-kit/pkg/iso9660"
	"github.com/rstms/disc-kit/pkg/mds"
	"github.com/rstms/disc-kit/pkg/option"
	"github.com/rstms/disc-kit/pkg/raw"
	"github.com/rstms/disc-kit/pkg/sector"
	"github.com/rstms/disc-kit/pkg/wave"
	"go.uber.org/multierr"
	"golang.org/x/exp/mmap"
)

var (
	// ErrUnknownInput is returned when the selected files cannot be told apart as image and descriptor.
	ErrUnknownInput = errors.New("unrecognized input file")
)

// Kind classifies a selected input file.
type Kind int

const (
	KIND_UNKNOWN Kind = iota
	KIND_IMAGE
	KIND_CUE
	KIND_MDS
)

func (k Kind) String() string {
	switch k {
	case KIND_IMAGE:
		return "image"
	case KIND_CUE:
		return "cue"
	case KIND_MDS:
		return "mds"
	default:
		return "unknown"
	}
}

// IsDescriptor reports whether the kind is one of the descriptor formats.
func (k Kind) IsDescriptor() bool {
	return k == KIND_CUE || k == KIND_MDS
}

var extensions = map[string]Kind{
	".img": KIND_IMAGE,
	".bin": KIND_IMAGE,
	".iso": KIND_IMAGE,
	".mdf": KIND_IMAGE,
	".cue": KIND_CUE,
	".mds": KIND_MDS,
}

// Classify returns the kind implied by the file extension.
func Classify(name string) Kind {
	return extensions[strings.ToLower(filepath.Ext(name))]
}

// Sniff decides the descriptor format from its contents.
func Sniff(b []byte) Kind {
	if mds.IsDescriptor(b) {
		return KIND_MDS
	}
	if bytes.Contains(bytes.ToUpper(b), []byte("TRACK")) {
		return KIND_CUE
	}
	return KIND_UNKNOWN
}

// Open loads a disc from an image and an optional descriptor. The two paths may be given in either order; an empty
// descriptor path means the image is a single whole-disc data track.
func Open(imagePath, descriptorPath string, opts ...option.OpenOption) (*Disc, error) {
	o := option.NewOpenOptions(opts...)
	log := o.Logger.WithName("loader")

	if descriptorPath != "" && Classify(imagePath).IsDescriptor() && !Classify(descriptorPath).IsDescriptor() {
		imagePath, descriptorPath = descriptorPath, imagePath
	}
	if Classify(imagePath).IsDescriptor() {
		return nil, fmt.Errorf("%w: %s is a descriptor, not an image", ErrUnknownInput, imagePath)
	}

	d := &Disc{
		imagePath:      imagePath,
		descriptorPath: descriptorPath,
		options:        o,
		log:            log,
		tracks:         make(map[int]*wave.Container),
	}

	img, closer, err := openImage(o, imagePath)
	if err != nil {
		return nil, err
	}
	d.closer = closer

	if err := d.build(img, opts); err != nil {
		return nil, multierr.Append(err, closer.Close())
	}
	log.Info("disc loaded", "label", d.fs.VolumeLabel(), "format", d.format, "tracks", d.reader.MaxTrack())
	return d, nil
}

func (d *Disc) build(img sector.Image, opts []option.OpenOption) error {
	var err error
	if d.descriptorPath == "" {
		d.format = KIND_IMAGE
		if d.reader, err = raw.NewReader(img, opts...); err != nil {
			return err
		}
	} else {
		desc, err := readDescriptor(d.options, d.descriptorPath)
		if err != nil {
			return err
		}
		d.format = Classify(d.descriptorPath)
		if !d.format.IsDescriptor() {
			d.format = Sniff(desc)
		}
		d.log.Debug("descriptor", "path", d.descriptorPath, "format", d.format.String())

		switch d.format {
		case KIND_CUE:
			d.reader, err = cue.NewReader(img, bytes.NewReader(desc), opts...)
		case KIND_MDS:
			d.reader, err = mds.NewReader(img, desc, opts...)
		default:
			return fmt.Errorf("%w: %s", ErrUnknownInput, d.descriptorPath)
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", d.descriptorPath, err)
		}
	}

	if d.fs, err = iso9660.Create(d.reader, opts...); err != nil {
		return fmt.Errorf("failed to mount %s: %w", d.imagePath, err)
	}
	return nil
}

func readDescriptor(o *option.OpenOptions, path string) ([]byte, error) {
	f, err := o.Fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open descriptor: %w", err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor %s: %w", path, err)
	}
	return b, nil
}

// openImage returns the image as a sized reader plus the handle to close. With UseMmap the path is mapped from the
// OS filesystem; otherwise it is opened through the configured afero filesystem.
func openImage(o *option.OpenOptions, path string) (sector.Image, io.Closer, error) {
	if o.UseMmap {
		m, err := mmap.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to map image: %w", err)
		}
		return io.NewSectionReader(m, 0, int64(m.Len())), m, nil
	}

	f, err := o.Fs.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, nil, multierr.Append(fmt.Errorf("failed to stat image: %w", err), f.Close())
	}
	if info.IsDir() {
		return nil, nil, multierr.Append(fmt.Errorf("%w: %s is a directory", ErrUnknownInput, path), f.Close())
	}
	return io.NewSectionReader(f, 0, info.Size()), f, nil
}

package loader

import (
	"fmt"
	"io"
	"sync"

	"github.com/rstms/disc-kit/pkg/iso9660"
	"github.com/rstms/disc-kit/pkg/logging"
	"github.com/rstms/disc-kit/pkg/option"
	"github.com/rstms/disc-kit/pkg/sector"
	"github.com/rstms/disc-kit/pkg/wave"
)

// Disc is one loaded image: the sector reader, the mounted filesystem and a cache of extracted audio tracks.
type Disc struct {
	mu             sync.Mutex
	imagePath      string
	descriptorPath string
	format         Kind
	reader         sector.Reader
	fs             *iso9660.FileSystem
	closer         io.Closer
	tracks         map[int]*wave.Container
	generation     int
	options        *option.OpenOptions
	log            *logging.Logger
}

// FileSystem returns the mounted ISO9660 filesystem.
func (d *Disc) FileSystem() *iso9660.FileSystem {
	return d.fs
}

// Reader returns the sector reader backing the disc.
func (d *Disc) Reader() sector.Reader {
	return d.reader
}

// Format returns the descriptor kind, or KIND_IMAGE for a single image.
func (d *Disc) Format() Kind {
	return d.format
}

func (d *Disc) ImagePath() string {
	return d.imagePath
}

func (d *Disc) DescriptorPath() string {
	return d.descriptorPath
}

// Generation counts completed reloads.
func (d *Disc) Generation() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation
}

// Track returns audio track n wrapped in a WAVE container, or nil if the track is missing or not audio. Extracted
// tracks are kept until FlushTracks or Reload.
func (d *Disc) Track(n int) (*wave.Container, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c, ok := d.tracks[n]; ok {
		d.log.Trace("track cache hit", "track", n)
		return c, nil
	}
	c, err := d.reader.ExtractTrack(n)
	if err != nil {
		return nil, fmt.Errorf("failed to extract track %d: %w", n, err)
	}
	if c != nil {
		d.tracks[n] = c
	}
	return c, nil
}

// FlushTracks drops every cached track.
func (d *Disc) FlushTracks() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flushLocked()
}

func (d *Disc) flushLocked() {
	if len(d.tracks) > 0 {
		d.log.Debug("flush track cache", "tracks", len(d.tracks))
	}
	d.tracks = make(map[int]*wave.Container)
}

// Reload opens the image path again and swaps it into the reader. The track table and the mounted volume are kept.
func (d *Disc) Reload() error {
	img, closer, err := openImage(d.options, d.imagePath)
	if err != nil {
		return err
	}

	d.mu.Lock()
	old := d.closer
	d.closer = closer
	d.reader.ResetImage(img)
	d.flushLocked()
	d.generation++
	d.mu.Unlock()

	d.log.Debug("image reloaded", "path", d.imagePath, "size", img.Size())
	if old != nil {
		if err := old.Close(); err != nil {
			return fmt.Errorf("failed to close previous image: %w", err)
		}
	}
	return nil
}

// Close releases the image handle.
func (d *Disc) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.flushLocked()
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	return err
}

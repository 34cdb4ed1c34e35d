package loader

import (
	"fmt"
	"time"

	"github.com/rstms/disc-kit/pkg/cue"
	"github.com/rstms/disc-kit/pkg/iso9660/directory"
	"github.com/rstms/disc-kit/pkg/mds"
	"gopkg.in/yaml.v3"
)

// Entry is one file or directory of the volume listing.
type Entry struct {
	Path      string              `yaml:"path"`
	Directory bool                `yaml:"directory,omitempty"`
	Size      uint32              `yaml:"size"`
	Sector    uint32              `yaml:"sector"`
	Flags     directory.FileFlags `yaml:"flags,omitempty"`
	Recorded  time.Time           `yaml:"recorded,omitempty"`
}

// TrackInfo describes one entry of the track table.
type TrackInfo struct {
	Number int    `yaml:"number"`
	Type   string `yaml:"type"`
	Audio  bool   `yaml:"audio"`
	// Sectors is the track length where the descriptor records it.
	Sectors uint32 `yaml:"sectors,omitempty"`
	// Start is the INDEX 01 timecode for cue sheets.
	Start string `yaml:"start,omitempty"`
}

// Manifest is the listing of a loaded disc.
type Manifest struct {
	Label      string      `yaml:"label"`
	Format     string      `yaml:"format"`
	Image      string      `yaml:"image"`
	Descriptor string      `yaml:"descriptor,omitempty"`
	MaxTrack   int         `yaml:"max_track"`
	Tracks     []TrackInfo `yaml:"tracks,omitempty"`
	Entries    []Entry     `yaml:"entries"`
}

// Manifest lists the track table and every entry of the volume.
func (d *Disc) Manifest() (*Manifest, error) {
	m := &Manifest{
		Label:      d.fs.VolumeLabel(),
		Format:     d.format.String(),
		Image:      d.imagePath,
		Descriptor: d.descriptorPath,
		MaxTrack:   d.reader.MaxTrack(),
		Entries:    []Entry{},
	}

	switch r := d.reader.(type) {
	case *cue.Reader:
		for _, t := range r.Tracks() {
			if t == nil {
				continue
			}
			m.Tracks = append(m.Tracks, TrackInfo{Number: t.Number, Type: t.Type, Audio: t.IsAudio(), Start: t.Indexes[1]})
		}
	case *mds.Reader:
		for _, t := range r.Tracks() {
			if t == nil {
				continue
			}
			m.Tracks = append(m.Tracks, TrackInfo{Number: t.Number, Type: t.Mode.String(), Audio: t.IsAudio(), Sectors: t.Sectors})
		}
	default:
		m.Tracks = append(m.Tracks, TrackInfo{Number: 1, Type: "DATA"})
	}

	err := d.fs.Walk(d.fs.RootDir(), func(p string, rec *directory.Record) error {
		recorded, err := rec.RecordingTime()
		if err != nil {
			d.log.Debug("bad recording time", "path", p, "error", err)
		}
		m.Entries = append(m.Entries, Entry{
			Path:      p,
			Directory: rec.IsDirectory(),
			Size:      rec.Size(),
			Sector:    rec.Sector(),
			Flags:     rec.Flags(),
			Recorded:  recorded,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list volume: %w", err)
	}
	return m, nil
}

// YAML renders the manifest.
func (m *Manifest) YAML() ([]byte, error) {
	return yaml.Marshal(m)
}

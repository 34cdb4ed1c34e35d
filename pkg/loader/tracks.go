package loader

import (
	"fmt"
	"os"
	"path/filepath"
)

// TrackFileName is the name an audio track is written under.
func TrackFileName(n int) string {
	return fmt.Sprintf("Track%02d.wav", n)
}

// ExtractTracks writes the audio tracks as WAVE files below dir on the configured filesystem and returns the
// written paths. A non-zero only limits the run to that track. Data tracks are skipped; the directory is created
// only when there is something to write.
func (d *Disc) ExtractTracks(dir string, only int) ([]string, error) {
	first, last := 1, d.reader.MaxTrack()
	if only > 0 {
		first, last = only, only
	}

	var written []string
	for n := first; n <= last; n++ {
		c, err := d.Track(n)
		if err != nil {
			return written, err
		}
		if c == nil {
			continue
		}
		if err := d.options.Fs.MkdirAll(dir, os.ModePerm); err != nil {
			return written, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		path := filepath.Join(dir, TrackFileName(n))
		d.log.Debug("writing track", "track", n, "path", path, "size", c.Len())

		f, err := d.options.Fs.Create(path)
		if err != nil {
			return written, fmt.Errorf("failed to create file %s: %w", path, err)
		}
		_, werr := c.WriteTo(f)
		cerr := f.Close()
		if werr != nil {
			return written, fmt.Errorf("failed to write to file %s: %w", path, werr)
		}
		if cerr != nil {
			return written, fmt.Errorf("failed to close file %s: %w", path, cerr)
		}
		written = append(written, path)
	}
	return written, nil
}

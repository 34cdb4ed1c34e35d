package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rstms/disc-kit/pkg/iso9660"
	"github.com/rstms/disc-kit/pkg/iso9660/directory"
)

// ErrUnsafePath is returned when an on-disc name would place a file outside the output directory.
var ErrUnsafePath = errors.New("entry escapes output directory")

// ExtractAll writes every directory and file of the volume below outputLocation on the configured filesystem,
// reporting progress after each sector chunk.
func (d *Disc) ExtractAll(outputLocation string) error {
	d.log.Debug("extracting files", "outputLocation", outputLocation)
	root := filepath.Clean(outputLocation)

	type item struct {
		path string
		rec  *directory.Record
	}
	var dirs, files []item
	err := d.fs.Walk(d.fs.RootDir(), func(p string, rec *directory.Record) error {
		if rec.IsDirectory() {
			dirs = append(dirs, item{p, rec})
		} else {
			files = append(files, item{p, rec})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to list volume: %w", err)
	}

	if err := d.options.Fs.MkdirAll(root, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", root, err)
	}
	for _, dir := range dirs {
		target, err := safeJoin(root, dir.path)
		if err != nil {
			return err
		}
		if err := d.options.Fs.MkdirAll(target, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", target, err)
		}
	}

	for i, file := range files {
		target, err := safeJoin(root, file.path)
		if err != nil {
			return err
		}
		if err := d.extractFile(file.rec, file.path, target, i+1, len(files)); err != nil {
			return fmt.Errorf("failed to extract file %s: %w", file.path, err)
		}
	}
	return nil
}

func (d *Disc) extractFile(rec *directory.Record, name, target string, current, total int) error {
	chunks, err := d.fs.ReadFile(rec)
	if err != nil {
		return err
	}

	out, err := d.options.Fs.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}
	defer out.Close()

	size := int64(rec.Size())
	var written int64
	for _, chunk := range chunks {
		n, err := out.Write(chunk)
		written += int64(n)
		if err != nil {
			return fmt.Errorf("failed to write to file %s: %w", target, err)
		}
		d.options.ExtractionProgressCallback(name, written, size, current, total)
	}
	if written != size {
		return &iso9660.SizeMismatchError{Name: rec.Name(), Expected: size, Actual: written}
	}
	if size == 0 {
		d.options.ExtractionProgressCallback(name, 0, 0, current, total)
	}
	return nil
}

func safeJoin(root, p string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(p))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, p)
	}
	return target, nil
}

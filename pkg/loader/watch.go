package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/multierr"
)

// Watch reloads the image whenever its file is rewritten or re-created, once the file has been quiet for the
// configured debounce interval. It blocks until ctx is done. The image path must be an OS path.
func (d *Disc) Watch(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create image watcher: %w", err)
	}
	defer func() {
		err = multierr.Append(err, watcher.Close())
	}()

	target := filepath.Clean(d.imagePath)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	d.log.Debug("watching image", "path", target, "debounce", d.options.WatchDebounce)

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			d.log.Trace("image changed", "op", event.Op.String())
			fire = time.After(d.options.WatchDebounce)
		case <-fire:
			fire = nil
			if err := d.Reload(); err != nil {
				d.log.Error(err, "reload failed", "path", target)
				continue
			}
			d.log.Info("image reloaded", "path", target)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.log.Error(werr, "watcher error")
		}
	}
}

package seed

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watch reloads the seed file at path whenever it changes and calls onChange
// with the new values, or with the load error. It blocks until ctx is done.
//
// The parent directory is watched rather than the file so that editors that
// replace the file on save keep being followed.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func(map[string]any, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	slog.Debug("seed: watching", "path", abs)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			values, err := Load(abs)
			if err != nil {
				slog.Warn("seed: reload failed", "path", abs, "error", err)
			}
			onChange(values, err)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("seed: watcher error", "path", abs, "error", err)
		}
	}
}

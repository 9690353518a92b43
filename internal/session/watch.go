package session

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sadopc/termsplit/internal/input"
)

// reloadDebounce collapses the burst of events an editor save produces.
const reloadDebounce = 100 * time.Millisecond

// WatchLedger returns a producer that emits input.Reload whenever the file
// at path is written or replaced, and the func that stops it. Register both
// with input.Source.Go.
func WatchLedger(path string, log *slog.Logger) (input.Producer, func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors and SaveFile replace the file by rename.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, nil, fmt.Errorf("watch directory: %w", err)
	}
	base := filepath.Base(path)

	produce := func(quit <-chan struct{}, emit func(input.Event) bool) {
		var debounce *time.Timer
		fire := make(chan struct{}, 1)
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()

		for {
			select {
			case <-quit:
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})

			case <-fire:
				if !emit(input.Event{Action: input.Reload}) {
					return
				}

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("splits file watcher", "err", err)
			}
		}
	}
	return produce, func() { w.Close() }, nil
}

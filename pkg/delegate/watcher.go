package delegate

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of file events (editors often write a
// file several times in quick succession) into one change notification.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a data file and invokes a callback when it changes,
// debounced. The callback runs on the watcher goroutine; hosts that need
// the change on their own loop forward it as a message (in a bubbletea
// host, via Program.Send).
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func()
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	lastEvent time.Time
}

// NewWatcher creates a watcher for path. Start must be called before any
// notifications fire.
func NewWatcher(path string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     path,
		watcher:  fw,
		onChange: onChange,
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching. The parent directory is watched rather than the
// file itself so that atomic rename-into-place saves are still seen.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	go w.loop()
	return nil
}

// Stop shuts the watcher down. Safe to call more than once.
func (w *Watcher) Stop() {
	w.cancel()
	w.watcher.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}

			// Debounce rapid changes
			now := time.Now()
			if now.Sub(w.lastEvent) < w.debounce {
				continue
			}
			w.lastEvent = now
			w.onChange()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Errors don't stop the watcher
			log.Warn("watcher error", "path", w.path, "err", err)
		}
	}
}

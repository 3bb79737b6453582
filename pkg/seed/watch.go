package seed

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/medstore/medstore/pkg/telemetry"
)

// DefaultDebounce is how long a Watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls a function whenever a file is written or replaced.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *telemetry.Logger
	onChange func(ctx context.Context) error

	mu    sync.Mutex
	timer *time.Timer

	// runMu keeps onChange calls from overlapping.
	runMu sync.Mutex

	// pending counts scheduled or running onChange calls.
	pending sync.WaitGroup
}

// NewWatcher creates a watcher for path. onChange runs on the watcher's own
// goroutine after each burst of changes; a returned error is logged and
// watching continues.
func NewWatcher(path string, debounce time.Duration, logger *telemetry.Logger, onChange func(ctx context.Context) error) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		logger:   logger.NewComponentLogger("watcher").WithField("file", path),
		onChange: onChange,
	}
}

// Run watches until ctx is done. The containing directory is watched so
// that editors which save by rename are still noticed. Run returns only
// after any onChange call in progress has finished.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	defer w.drain()

	w.logger.Info("watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			w.logger.WithField("op", event.Op.String()).Debug("file changed")
			w.schedule(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Error("watcher error")
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil && w.timer.Stop() {
		w.pending.Done()
	}

	w.pending.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.pending.Done()

		w.runMu.Lock()
		defer w.runMu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err := w.onChange(ctx); err != nil {
			w.logger.WithError(err).Error("failed to process change")
		}
	})
}

// drain cancels a scheduled call and waits for a running one.
func (w *Watcher) drain() {
	w.mu.Lock()
	if w.timer != nil && w.timer.Stop() {
		w.pending.Done()
	}
	w.timer = nil
	w.mu.Unlock()

	w.pending.Wait()
}

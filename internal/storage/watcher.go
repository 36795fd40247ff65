package storage

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"mindcanvas/internal/logging"
)

// watchDebounce coalesces bursts of file events into one change signal.
const watchDebounce = 100 * time.Millisecond

// Watcher signals when the collection file changes on disk, so external edits
// (another process, a sync tool) can be folded back into the running engine.
type Watcher struct {
	// Changes receives one signal per settled burst of file events.
	Changes <-chan struct{}

	changes chan struct{}
	done    chan struct{}
	watcher *fsnotify.Watcher
	path    string
	logger  logging.Logger
}

// NewWatcher creates a watcher for the collection file at path.
func NewWatcher(path string, logger logging.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNoop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	ch := make(chan struct{}, 1)
	return &Watcher{
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
		path:    path,
		logger:  logger,
	}, nil
}

// Start begins watching. The parent directory is watched rather than the file
// itself because atomic replacement (rename) would otherwise drop the watch.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch storage directory: %w", err)
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := false
	var last time.Time
	ticker := time.NewTicker(watchDebounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = true
				last = time.Now()
			}

		case <-ticker.C:
			if pending && time.Since(last) >= watchDebounce {
				pending = false
				w.emit()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// emit signals a change without blocking; a signal already queued covers this
// burst too.
func (w *Watcher) emit() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

package tape

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/calc/pkg/calc"
)

// Result is the outcome of one tape evaluation.
type Result struct {
	Path     string
	Snapshot calc.Snapshot
	Err      error
}

// Watcher re-runs a tape whenever the file changes.
type Watcher struct {
	path     string
	debounce time.Duration
	onResult func(Result)
	opts     []calc.Option
	logger   arbor.ILogger

	watcher *fsnotify.Watcher
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the file must be quiet before it is re-run.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithCalculatorOptions applies opts to every calculator the watcher creates.
func WithCalculatorOptions(opts ...calc.Option) WatcherOption {
	return func(w *Watcher) {
		w.opts = append(w.opts, opts...)
	}
}

// WithWatcherLogger sets the watcher's logger.
func WithWatcherLogger(logger arbor.ILogger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a watcher for the tape at path. onResult is called
// from the watcher's goroutine after every evaluation.
func NewWatcher(path string, onResult func(Result), opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve tape path: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		path:     abs,
		debounce: 200 * time.Millisecond,
		onResult: onResult,
		watcher:  fsWatcher,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start evaluates the tape once and then watches it for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	// Editors often replace files on save, so watch the directory.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.running = true
	w.mu.Unlock()

	w.evaluate()
	go w.processEvents()
	return nil
}

// Stop stops watching and waits for the event loop to exit. It releases
// the underlying watcher even if Start never ran.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	err := w.watcher.Close()
	<-w.doneCh
	return err
}

func (w *Watcher) processEvents() {
	defer close(w.doneCh)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn().Err(err).Str("tape", w.path).Msg("Tape watcher error")
			}

		case <-fire:
			fire = nil
			w.evaluate()
		}
	}
}

func (w *Watcher) evaluate() {
	snap, err := RunFile(w.path, w.opts...)
	if w.logger != nil {
		if err != nil {
			w.logger.Warn().Err(err).Str("tape", w.path).Msg("Tape evaluation failed")
		} else {
			w.logger.Debug().Str("tape", w.path).Str("display", snap.Display).Msg("Tape evaluated")
		}
	}
	if w.onResult != nil {
		w.onResult(Result{Path: w.path, Snapshot: snap, Err: err})
	}
}

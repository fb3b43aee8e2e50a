package keymap

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultReloadDelay coalesces bursts of writes to binding files.
const DefaultReloadDelay = 100 * time.Millisecond

// ErrWatcherClosed is returned when the watcher is used after Close.
var ErrWatcherClosed = errors.New("binding watcher is closed")

// Reload is a rebuilt binding table. Err holds the load errors of files that
// were skipped; Table is still usable.
type Reload struct {
	Table *Table
	Err   error
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithReloadDelay sets the debounce delay.
func WithReloadDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithWatcherLogger sets the watcher's logger.
func WithWatcherLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher rebuilds a binding table when binding files change. Each rebuild
// starts from a clone of the base table, so removed bindings disappear.
//
// Rebuilt tables are published on Reloads; only the latest unreceived one is
// kept. The consumer swaps tables between resolution attempts.
type Watcher struct {
	loader *Loader
	base   *Table
	files  map[string]bool
	paths  []string
	delay  time.Duration
	logger *zap.Logger

	fsw     *fsnotify.Watcher
	reloads chan Reload

	mu       sync.Mutex
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// NewWatcher watches the given binding files. The directories holding them
// are watched so that files replaced by editors are picked up.
func NewWatcher(loader *Loader, base *Table, paths []string, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		loader:  loader,
		base:    base.Clone(),
		files:   make(map[string]bool),
		delay:   DefaultReloadDelay,
		logger:  zap.NewNop(),
		fsw:     fsw,
		reloads: make(chan Reload, 1),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[abs] = true
		w.paths = append(w.paths, abs)
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Reloads returns the channel of rebuilt tables. It is closed by Close.
func (w *Watcher) Reloads() <-chan Reload {
	return w.reloads
}

// Reload rebuilds the table now, without waiting for a file event.
func (w *Watcher) Reload() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	w.publishLocked(w.build())
	return nil
}

// Bind adds b to the table every reload starts from, so a binding made at
// runtime outlives the next reload. It does not publish a reload.
func (w *Watcher) Bind(b Binding) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	return w.base.Add(b)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.closedWg.Wait()
	close(w.reloads)
	return w.fsw.Close()
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.files[filepath.Clean(ev.Name)] || ev.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("binding file changed",
				zap.String("path", ev.Name),
				zap.Stringer("op", ev.Op))
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("binding watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			w.mu.Lock()
			if !w.closed {
				w.publishLocked(w.build())
			}
			w.mu.Unlock()
		}
	}
}

func (w *Watcher) build() Reload {
	t := w.base.Clone()
	err := w.loader.LoadInto(t, w.paths...)
	w.logger.Info("bindings reloaded", zap.Int("bindings", t.Len()), zap.Error(err))
	return Reload{Table: t, Err: err}
}

// publishLocked replaces any unreceived reload with r.
func (w *Watcher) publishLocked(r Reload) {
	select {
	case <-w.reloads:
	default:
	}
	w.reloads <- r
}

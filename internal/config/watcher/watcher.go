// Package watcher provides file watching for settings live reload.
//
// The watcher subscribes to the parent directories of watched files
// through fsnotify, so editors that save by renaming a temp file over the
// original are still observed. Bursts of events for one file are
// coalesced and delivered once the file has been quiet for the debounce
// period.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tidwall/match"

	"github.com/dshills/editstate/internal/clock"
	"github.com/dshills/editstate/internal/logging"
)

// ErrClosed is returned when watching through a closed watcher.
var ErrClosed = errors.New("watcher closed")

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the last coalesced event occurred.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created.
	OpCreate

	// OpRemove indicates the file was deleted or renamed away.
	OpRemove
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// Watcher monitors settings and theme files for changes.
type Watcher struct {
	mu sync.RWMutex

	fsw *fsnotify.Watcher

	// Exact files being watched.
	files map[string]struct{}

	// Directory patterns: dir -> glob patterns matched against base names.
	patterns map[string][]string

	// Directories registered with fsnotify.
	dirs map[string]struct{}

	handlers []Handler

	clock    clock.Clock
	debounce time.Duration
	logger   *logging.Logger

	pendingMu sync.Mutex
	pending   map[string]*pendingEvent

	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

type pendingEvent struct {
	op    Operation
	time  time.Time
	timer clock.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes. Zero
// delivers every event immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithClock sets the clock used for debounce timers.
func WithClock(c clock.Clock) Option {
	return func(w *Watcher) {
		if c != nil {
			w.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// New creates a watcher and starts its event loop.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]struct{}),
		patterns: make(map[string][]string),
		dirs:     make(map[string]struct{}),
		clock:    clock.Real(),
		debounce: 100 * time.Millisecond,
		pending:  make(map[string]*pendingEvent),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.Or(w.logger).WithComponent("watcher")

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Watch adds a file to the watch list. The file need not exist yet; its
// creation is reported as OpCreate.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if err := w.addDirLocked(filepath.Dir(absPath)); err != nil {
		return err
	}
	w.files[absPath] = struct{}{}
	return nil
}

// WatchDir watches every file in dir whose base name matches pattern
// ("*.yaml").
func (w *Watcher) WatchDir(dir, pattern string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if err := w.addDirLocked(absDir); err != nil {
		return err
	}
	w.patterns[absDir] = append(w.patterns[absDir], pattern)
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, absPath)
	return nil
}

func (w *Watcher) addDirLocked(dir string) error {
	if _, ok := w.dirs[dir]; ok {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.dirs[dir] = struct{}{}
	return nil
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// WatchedFiles returns the watched files, sorted.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// Close stops the watcher and cancels pending events. It is safe to call
// Close multiple times.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()

	w.pendingMu.Lock()
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.pendingMu.Unlock()

	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("fsnotify error: %v", err)
		}
	}
}

// handleFSEvent filters an fsnotify event down to watched paths and queues
// it.
func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if !w.interested(path) {
		return
	}

	var op Operation
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		op = OpRemove
	case ev.Has(fsnotify.Create):
		op = OpCreate
	case ev.Has(fsnotify.Write):
		op = OpWrite
	default:
		return
	}

	event := Event{Path: path, Op: op, Time: w.clock.Now()}
	if w.debounce == 0 {
		w.emit(event)
		return
	}
	w.queue(event)
}

func (w *Watcher) interested(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if _, ok := w.files[path]; ok {
		return true
	}
	base := filepath.Base(path)
	for _, pattern := range w.patterns[filepath.Dir(path)] {
		if match.Match(base, pattern) {
			return true
		}
	}
	return false
}

// queue coalesces an event with any pending event for the same path and
// re-arms the path's debounce timer:
//   - remove wins over everything
//   - create wins over write
//   - remove followed by create (rename-over save) becomes write
func (w *Watcher) queue(event Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	p, ok := w.pending[event.Path]
	if !ok {
		p = &pendingEvent{op: event.Op, time: event.Time}
		path := event.Path
		p.timer = w.clock.AfterFunc(w.debounce, func() { w.flush(path) })
		w.pending[event.Path] = p
		return
	}

	switch {
	case p.op == OpRemove && event.Op == OpCreate:
		p.op = OpWrite
	case event.Op == OpRemove:
		p.op = OpRemove
	case event.Op == OpCreate:
		p.op = OpCreate
	}
	p.time = event.Time
	p.timer.Reset(w.debounce)
}

func (w *Watcher) flush(path string) {
	w.pendingMu.Lock()
	p, ok := w.pending[path]
	if ok {
		delete(w.pending, path)
	}
	w.pendingMu.Unlock()

	if ok {
		w.emit(Event{Path: path, Op: p.op, Time: p.time})
	}
}

// emit calls all handlers with the event. A panicking handler is logged
// and does not stop the others.
func (w *Watcher) emit(event Event) {
	w.mu.RLock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	w.logger.Debug("%s %s", event.Op, event.Path)
	for _, handler := range handlers {
		w.safeCall(handler, event)
	}
}

func (w *Watcher) safeCall(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("watch handler panicked on %s: %v", event.Path, r)
		}
	}()
	handler(event)
}

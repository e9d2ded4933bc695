// Package workspace wires the settings store, theme registry, projector,
// session debouncer, focus arbiter and pane layout into one workspace.
//
// All state changes run on a single timeline: external entry points post
// events to a queue drained by one goroutine, and settings notifications
// arriving from other goroutines (file reloads, persist completions) are
// posted to the same queue. Persists and settings file I/O run concurrently
// and report back through posted events.
package workspace

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/editstate/internal/clock"
	"github.com/dshills/editstate/internal/config"
	"github.com/dshills/editstate/internal/config/watcher"
	"github.com/dshills/editstate/internal/focus"
	"github.com/dshills/editstate/internal/layout"
	"github.com/dshills/editstate/internal/logging"
	"github.com/dshills/editstate/internal/projector"
	"github.com/dshills/editstate/internal/session"
	"github.com/dshills/editstate/internal/theme"
)

// DefaultQueueSize is the default event queue capacity.
const DefaultQueueSize = 256

// Options configures a Workspace.
type Options struct {
	// UserDir and WorkspaceDir are the settings directories. Empty
	// disables the layer.
	UserDir      string
	WorkspaceDir string

	// ThemesDir holds YAML theme files. Empty disables file themes.
	ThemesDir string

	// Watch enables live reload of settings and theme files.
	Watch bool

	// Appearance is the initial system appearance.
	Appearance theme.Appearance

	// Persister saves session content. Required to open sessions.
	Persister session.Persister

	// Clock drives debounce timers. Defaults to the real clock.
	Clock clock.Clock

	// QueueSize is the event queue capacity.
	QueueSize int

	// Logger is the root logger. The logging.level setting adjusts it.
	Logger *logging.Logger

	// ConfigOptions are passed to the settings store.
	ConfigOptions []config.Option

	// SessionOptions apply to every session.
	SessionOptions []session.Option
}

// Workspace owns the editor state of one window.
type Workspace struct {
	mu     sync.RWMutex
	closed bool

	config    *config.Config
	themes    *theme.Registry
	projector *projector.Projector
	sessions  *session.Manager
	focus     *focus.Arbiter
	layout    *layout.Controller
	watcher   *watcher.Watcher

	subs *subscriptions

	events   chan event
	wake     chan struct{}
	loopDone chan struct{}

	// applied is the store snapshot last forwarded to the projector. Owned
	// by the loop.
	applied         config.Snapshot
	settingsPending atomic.Bool
	pendingMu       sync.Mutex
	pendingThemes   map[string]watcher.Operation

	metrics Metrics
	logger  *logging.Logger
	root    *logging.Logger
	opts    Options
}

// New creates a workspace, loads settings and themes, and starts the event
// loop.
func New(ctx context.Context, opts Options) (*Workspace, error) {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}

	w := &Workspace{
		root:     logging.Or(opts.Logger),
		events:        make(chan event, opts.QueueSize),
		wake:          make(chan struct{}, 1),
		loopDone:      make(chan struct{}),
		pendingThemes: make(map[string]watcher.Operation),
		opts:          opts,
	}
	w.logger = w.root.WithComponent("workspace")
	w.subs = newSubscriptions()

	if err := newBootstrapper(w).bootstrap(ctx); err != nil {
		return nil, err
	}

	go w.loop()
	w.logger.Info("workspace ready: theme %s, %d themes", w.projector.Current().Theme.ID, w.themes.Len())
	return w, nil
}

// Close flushes every open session, stops watching files and shuts the
// event loop down. Events already queued run first.
func (w *Workspace) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.closed = true
	close(w.events)
	w.mu.Unlock()

	select {
	case <-w.loopDone:
	case <-ctx.Done():
		return ctx.Err()
	}

	var errs []error
	if err := w.sessions.CloseAll(ctx); err != nil {
		errs = append(errs, err)
	}
	w.subs.cancel()
	if w.watcher != nil {
		if err := w.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	w.config.Close()
	return errors.Join(errs...)
}

// Config returns the settings store.
func (w *Workspace) Config() *config.Config { return w.config }

// Themes returns the theme registry.
func (w *Workspace) Themes() *theme.Registry { return w.themes }

// Projector returns the derived configuration projector.
func (w *Workspace) Projector() *projector.Projector { return w.projector }

// Sessions returns the session manager.
func (w *Workspace) Sessions() *session.Manager { return w.sessions }

// Focus returns the focus arbiter.
func (w *Workspace) Focus() *focus.Arbiter { return w.focus }

// Layout returns the pane layout controller.
func (w *Workspace) Layout() *layout.Controller { return w.layout }

// Metrics returns event loop counters.
func (w *Workspace) Metrics() MetricsSnapshot { return w.metrics.Snapshot() }

// Derived returns the current derived editor configuration.
func (w *Workspace) Derived() projector.DerivedEditorConfig {
	return w.projector.Current()
}

// SubscribeDerived registers fn for every published configuration.
func (w *Workspace) SubscribeDerived(fn func(projector.DerivedEditorConfig)) (unsubscribe func()) {
	return w.projector.Subscribe(fn)
}

// OpenSession opens the session for the file at path.
func (w *Workspace) OpenSession(ctx context.Context, path string) (uuid.UUID, error) {
	var id uuid.UUID
	err := w.Do(ctx, "open session", func() error {
		id = w.sessions.Open(path).ID()
		return nil
	})
	return id, err
}

// ContentMutated records an edit in a session and returns its new revision.
func (w *Workspace) ContentMutated(ctx context.Context, id uuid.UUID) (uint64, error) {
	var rev uint64
	err := w.Do(ctx, "content mutated", func() error {
		var err error
		rev, err = w.sessions.ContentMutated(id)
		return err
	})
	return rev, err
}

// SetCursor passes a caret position through to the session.
func (w *Workspace) SetCursor(ctx context.Context, id uuid.UUID, c session.Cursor) error {
	return w.Do(ctx, "set cursor", func() error {
		s, ok := w.sessions.Get(id)
		if !ok {
			return session.ErrSessionNotFound
		}
		s.SetCursor(c)
		return nil
	})
}

// CloseSession persists pending changes and closes a session. It blocks
// until the persist finishes or ctx ends.
func (w *Workspace) CloseSession(ctx context.Context, id uuid.UUID) error {
	return w.sessions.Close(ctx, id)
}

// FocusChanged records that the widget moved keyboard focus to the surface
// of group. Invalid targets are logged and ignored.
func (w *Workspace) FocusChanged(ctx context.Context, group focus.GroupID) error {
	return w.Do(ctx, "focus changed", func() error {
		if err := w.focus.SetFocusedSurface(group); err != nil {
			w.logger.Debug("ignoring focus change: %v", err)
		}
		return nil
	})
}

// SelectGroup makes group the active group. Invalid targets are logged and
// ignored.
func (w *Workspace) SelectGroup(ctx context.Context, group focus.GroupID) error {
	return w.Do(ctx, "select group", func() error {
		if err := w.focus.SetActiveGroup(group); err != nil {
			w.logger.Debug("ignoring group selection: %v", err)
		}
		return nil
	})
}

// AddGroup adds a tab group pane to the editing region.
func (w *Workspace) AddGroup(ctx context.Context, group focus.GroupID) error {
	return w.Do(ctx, "add group", func() error {
		if err := w.focus.Register(group); err != nil {
			return err
		}
		if _, err := w.layout.AddGroup(string(group)); err != nil {
			_ = w.focus.Unregister(group)
			return err
		}
		return nil
	})
}

// RemoveGroup removes a tab group pane.
func (w *Workspace) RemoveGroup(ctx context.Context, group focus.GroupID) error {
	return w.Do(ctx, "remove group", func() error {
		if err := w.focus.Unregister(group); err != nil {
			return err
		}
		return w.layout.RemoveGroup(string(group))
	})
}

// SystemAppearanceChanged reports a change of the system light/dark
// appearance.
func (w *Workspace) SystemAppearanceChanged(a theme.Appearance) error {
	return w.Post("appearance changed", func() {
		w.projector.SystemAppearanceChanged(a)
	})
}

// ToggleAuxiliary collapses or expands the auxiliary region.
func (w *Workspace) ToggleAuxiliary(ctx context.Context) error {
	return w.Do(ctx, "toggle auxiliary", func() error {
		return w.layout.Toggle(layout.AuxiliaryRegion)
	})
}

// Resize lays the workspace out in r.
func (w *Workspace) Resize(r layout.Rect) error {
	return w.Post("resize", func() {
		w.layout.SetBounds(r)
	})
}

package workspace

import (
	"context"

	"github.com/dshills/editstate/internal/config"
	"github.com/dshills/editstate/internal/config/notify"
	"github.com/dshills/editstate/internal/config/watcher"
	"github.com/dshills/editstate/internal/focus"
	"github.com/dshills/editstate/internal/layout"
	"github.com/dshills/editstate/internal/logging"
	"github.com/dshills/editstate/internal/projector"
	"github.com/dshills/editstate/internal/session"
	"github.com/dshills/editstate/internal/theme"
)

// bootstrapper starts components in dependency order and tears the started
// ones down again if a later one fails.
type bootstrapper struct {
	w         *Workspace
	initOrder []string
}

func newBootstrapper(w *Workspace) *bootstrapper {
	return &bootstrapper{w: w, initOrder: make([]string, 0, 8)}
}

func (b *bootstrapper) bootstrap(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"config", b.initConfig},
		{"themes", b.initThemes},
		{"projector", b.initProjector},
		{"sessions", b.initSessions},
		{"focus", b.initFocus},
		{"layout", b.initLayout},
		{"watcher", b.initWatcher},
		{"subscriptions", b.initSubscriptions},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			b.cleanup()
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	return nil
}

func (b *bootstrapper) initConfig(ctx context.Context) error {
	w := b.w
	opts := []config.Option{
		config.WithUserDir(w.opts.UserDir),
		config.WithWorkspaceDir(w.opts.WorkspaceDir),
		config.WithWatcher(w.opts.Watch),
		config.WithLogger(w.root),
	}
	w.config = config.New(append(opts, w.opts.ConfigOptions...)...)
	if err := w.config.Load(ctx); err != nil {
		return err
	}
	if lvl, err := w.config.GetString(config.KeyLogLevel); err == nil {
		w.root.SetLevel(logging.ParseLevel(lvl))
	}
	return nil
}

func (b *bootstrapper) initThemes(context.Context) error {
	w := b.w
	w.themes = theme.NewRegistry(theme.WithBuiltins(), theme.WithLogger(w.root))
	if w.opts.ThemesDir == "" {
		return nil
	}
	n, err := w.themes.LoadDir(w.opts.ThemesDir)
	if err != nil {
		// Broken theme files are skipped, not fatal.
		w.logger.Warn("loading themes from %s: %v", w.opts.ThemesDir, err)
	}
	w.logger.Debug("loaded %d themes from %s", n, w.opts.ThemesDir)
	return nil
}

func (b *bootstrapper) initProjector(context.Context) error {
	w := b.w
	w.applied = w.config.Snapshot()
	w.projector = projector.New(w.themes,
		projector.WithSnapshot(w.applied),
		projector.WithAppearance(w.opts.Appearance),
		projector.WithThemeSelector(w.recordThemeSelection),
		projector.WithLogger(w.root),
	)
	return nil
}

func (b *bootstrapper) initSessions(context.Context) error {
	w := b.w
	p := w.opts.Persister
	if p == nil {
		p = session.PersistFunc(func(_ context.Context, req session.Request) error {
			w.logger.Debug("no persister: dropping %s revision %d", req.Path, req.Revision)
			return nil
		})
	}
	opts := []session.Option{
		session.WithClock(w.opts.Clock),
		session.WithQuietPeriod(w.config.Snapshot().AutoSaveDelay),
		session.WithLogger(w.root),
	}
	w.sessions = session.NewManager(p, append(opts, w.opts.SessionOptions...)...)
	return nil
}

func (b *bootstrapper) initFocus(context.Context) error {
	w := b.w
	w.focus = focus.New(focus.WithClock(w.opts.Clock), focus.WithLogger(w.root))
	return nil
}

func (b *bootstrapper) initLayout(context.Context) error {
	b.w.layout = layout.NewDefault(layout.WithLogger(b.w.root))
	return nil
}

func (b *bootstrapper) initWatcher(context.Context) error {
	w := b.w
	if !w.opts.Watch || w.opts.ThemesDir == "" {
		return nil
	}
	fw, err := watcher.New(watcher.WithLogger(w.root))
	if err != nil {
		return err
	}
	if err := fw.WatchDir(w.opts.ThemesDir, "*"+theme.ThemeExt); err != nil {
		_ = fw.Close()
		return err
	}
	fw.OnChange(w.themeFileChanged)
	w.watcher = fw
	return nil
}

func (b *bootstrapper) initSubscriptions(context.Context) error {
	w := b.w
	s := w.subs

	s.add(w.config.Subscribe(w.settingsChanged))
	// The store may have reloaded since the projector copied it.
	w.settingsPending.Store(true)
	s.add(w.config.SubscribePath(config.KeyLogLevel, func(ch notify.Change) {
		if lvl, ok := ch.NewValue.(string); ok {
			w.root.SetLevel(logging.ParseLevel(lvl))
		}
	}))

	w.themes.OnUpdate(func(t theme.Theme) {
		w.projector.ThemeUpdated(t)
	})
	w.focus.OnActiveGroupChanged(func(g focus.GroupID) {
		w.layout.SetActiveGroup(string(g))
	})
	w.sessions.OnPersistError(func(err *session.PersistError) {
		w.metrics.persistFailures.Add(1)
		w.logger.Warn("%v", err)
	})
	return nil
}

func (b *bootstrapper) cleanup() {
	w := b.w
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "config":
			w.config.Close()
		case "watcher":
			if w.watcher != nil {
				_ = w.watcher.Close()
			}
		case "subscriptions":
			w.subs.cancel()
		}
	}
}

// settingsChanged schedules a settings sync on the workspace timeline.
func (w *Workspace) settingsChanged(ch notify.Change) {
	w.metrics.configChanges.Add(uint64(len(ch.Flatten())))
	w.requestSettingsSync()
}

// recordThemeSelection stores a theme chosen by an appearance change in the
// session layer. The store's echo reaches the projector as an unchanged
// value.
func (w *Workspace) recordThemeSelection(id string) {
	if err := w.config.Set(config.KeyTheme, id); err != nil {
		w.logger.Warn("recording theme %s: %v", id, err)
	}
}

// themeFileChanged schedules a theme file reload on the timeline.
func (w *Workspace) themeFileChanged(ev watcher.Event) {
	w.requestThemeFile(ev)
}

package workspace

import (
	"path/filepath"
	"sort"

	"github.com/dshills/editstate/internal/config"
	"github.com/dshills/editstate/internal/config/watcher"
	"github.com/dshills/editstate/internal/projector"
)

// Settings and theme file notifications arrive on other goroutines and are
// never queued as events. They mark state pending and wake the loop, which
// reconciles the latest state before and after every event. Notifications
// therefore coalesce and are never lost to a full queue.

// requestSettingsSync marks the settings store as ahead of the projector.
func (w *Workspace) requestSettingsSync() {
	w.settingsPending.Store(true)
	w.wakeLoop()
}

// requestThemeFile records a change of a theme file. Only the latest
// operation per path is kept.
func (w *Workspace) requestThemeFile(ev watcher.Event) {
	w.pendingMu.Lock()
	w.pendingThemes[ev.Path] = ev.Op
	w.pendingMu.Unlock()
	w.wakeLoop()
}

func (w *Workspace) wakeLoop() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// runPending applies pending notifications. Runs on the loop only.
func (w *Workspace) runPending() {
	if w.settingsPending.Swap(false) {
		w.syncSettings()
	}

	w.pendingMu.Lock()
	if len(w.pendingThemes) == 0 {
		w.pendingMu.Unlock()
		return
	}
	themes := w.pendingThemes
	w.pendingThemes = make(map[string]watcher.Operation)
	w.pendingMu.Unlock()

	paths := make([]string, 0, len(themes))
	for p := range themes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		w.reloadThemeFile(p, themes[p])
	}
}

// syncSettings forwards every setting that differs between the store and
// the last forwarded snapshot to the projector in one pass.
func (w *Workspace) syncSettings() {
	next := w.config.Snapshot()
	prev := w.applied
	if next == prev {
		return
	}
	w.applied = next

	var changes []projector.Change
	for _, key := range config.Registry().Paths() {
		nv, ok := next.Value(key)
		if !ok {
			continue
		}
		if pv, _ := prev.Value(key); pv != nv {
			changes = append(changes, projector.Change{Key: key, Value: nv})
		}
	}
	w.projector.Apply(changes...)

	if next.AutoSaveDelay != prev.AutoSaveDelay {
		w.sessions.SetQuietPeriod(next.AutoSaveDelay)
	}
}

// reloadThemeFile reloads or forgets one theme file.
func (w *Workspace) reloadThemeFile(path string, op watcher.Operation) {
	if op == watcher.OpRemove {
		if w.themes.ForgetFile(path) {
			w.logger.Info("theme file removed: %s", filepath.Base(path))
		}
		return
	}
	t, err := w.themes.LoadFile(path)
	if err != nil {
		w.logger.Warn("reloading theme: %v", err)
		return
	}
	w.metrics.themeReloads.Add(1)
	// First registrations of the active theme do not fire OnUpdate.
	w.projector.ThemeUpdated(t)
}

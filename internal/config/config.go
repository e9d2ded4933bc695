package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dshills/editstate/internal/config/layer"
	"github.com/dshills/editstate/internal/config/loader"
	"github.com/dshills/editstate/internal/config/notify"
	"github.com/dshills/editstate/internal/config/registry"
	"github.com/dshills/editstate/internal/config/watcher"
	"github.com/dshills/editstate/internal/logging"
)

// Config provides unified access to editor settings. It manages loading,
// validation, live reloading and change notification.
type Config struct {
	mu sync.RWMutex

	// Layer manager for merged settings
	layers *layer.Manager

	// Setting definitions used for validation
	registry *registry.Registry

	// File watcher for live reload
	watcher *watcher.Watcher

	// Change notifier
	notifier *notify.Notifier

	fs     loader.FileSystem
	logger *logging.Logger

	// Settings directories; empty disables the layer.
	userDir      string
	workspaceDir string

	// Backing file of each file layer.
	files map[layer.Source]string

	enableWatcher bool
	watchDebounce time.Duration
	enableEnv     bool
	environ       func() []string
	notifyOpts    []notify.Option

	closed bool
}

// Option configures a Config instance.
type Option func(*Config)

// WithUserDir sets the user settings directory.
func WithUserDir(dir string) Option {
	return func(c *Config) {
		c.userDir = dir
	}
}

// WithWorkspaceDir sets the workspace settings directory.
func WithWorkspaceDir(dir string) Option {
	return func(c *Config) {
		c.workspaceDir = dir
	}
}

// WithWatcher enables file watching for live reload.
func WithWatcher(enable bool) Option {
	return func(c *Config) {
		c.enableWatcher = enable
	}
}

// WithWatchDebounce sets the quiet period before a changed settings file
// is reloaded.
func WithWatchDebounce(d time.Duration) Option {
	return func(c *Config) {
		c.watchDebounce = d
	}
}

// WithEnv enables EDITSTATE_* environment overrides.
func WithEnv(enable bool) Option {
	return func(c *Config) {
		c.enableEnv = enable
	}
}

// WithEnviron replaces the environment source.
func WithEnviron(environ func() []string) Option {
	return func(c *Config) {
		c.environ = environ
	}
}

// WithFS sets the file system used to read and write settings files.
func WithFS(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// WithNotifyOptions configures the change notifier.
func WithNotifyOptions(opts ...notify.Option) Option {
	return func(c *Config) {
		c.notifyOpts = append(c.notifyOpts, opts...)
	}
}

// New creates a Config holding the built-in defaults. Call Load to read
// settings files and the environment.
func New(opts ...Option) *Config {
	c := &Config{
		layers:        layer.NewManager(),
		registry:      builtin,
		fs:            loader.DefaultFS(),
		files:         make(map[layer.Source]string),
		enableWatcher: true,
		watchDebounce: 100 * time.Millisecond,
		enableEnv:     true,
		environ:       os.Environ,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = logging.Or(c.logger).WithComponent("config")
	c.notifier = notify.New(c.notifyOpts...)

	c.layers.Put(layer.NewWithData(layer.SourceBuiltin, c.registry.Defaults()))
	c.layers.Put(layer.New(layer.SourceUser))
	c.layers.Put(layer.New(layer.SourceWorkspace))
	c.layers.Put(layer.New(layer.SourceSession))

	return c
}

// Load loads settings from the user and workspace directories and the
// environment, then starts the file watcher if enabled.
func (c *Config) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	for _, src := range []layer.Source{layer.SourceUser, layer.SourceWorkspace} {
		if err := ctx.Err(); err != nil {
			c.mu.Unlock()
			return err
		}
		if err := c.loadFileLayerLocked(src); err != nil {
			c.mu.Unlock()
			return err
		}
	}

	if c.enableEnv {
		if err := c.loadEnvironmentLocked(); err != nil {
			c.mu.Unlock()
			return err
		}
	}

	merged := c.layers.Merge()
	c.mu.Unlock()

	_, errs := SnapshotOf(merged)
	for _, err := range errs {
		c.logger.Warn("ignoring setting: %v", err)
	}

	// Start the watcher outside the lock; its callbacks take the lock.
	if c.enableWatcher {
		if err := c.startWatcher(); err != nil {
			c.logger.Warn("live reload disabled: %v", err)
		}
	}

	return nil
}

// loadFileLayerLocked replaces the layer for src with the contents of its
// settings file. A missing file yields an empty layer.
func (c *Config) loadFileLayerLocked(src layer.Source) error {
	dir := c.dirFor(src)
	if dir == "" {
		return nil
	}

	path, ok := loader.FindSettings(c.fs, dir)
	if !ok {
		c.files[src] = filepath.Join(dir, "settings.toml")
		c.layers.Put(layer.New(src))
		return nil
	}

	fl, err := loader.ForPath(c.fs, path)
	if err != nil {
		return err
	}
	data, err := fl.Load()
	if err != nil {
		return fmt.Errorf("loading %s settings: %w", src, err)
	}
	if retired := migrateKeys(data); len(retired) > 0 {
		c.logger.Info("%s: migrated retired keys %v", path, retired)
	}

	l := layer.NewWithData(src, data)
	l.Path = path
	c.layers.Put(l)
	c.files[src] = path
	c.logger.Debug("loaded %s settings from %s", src, path)
	return nil
}

func (c *Config) loadEnvironmentLocked() error {
	envLoader := loader.NewEnvLoader(loader.EnvPrefix).
		WithKnownPaths(c.registry.Paths()).
		WithEnviron(c.environ)
	data, err := envLoader.Load()
	if err != nil {
		return err
	}
	if len(data) > 0 {
		c.layers.Put(layer.NewWithData(layer.SourceEnv, data))
	}
	return nil
}

func (c *Config) startWatcher() error {
	w, err := watcher.New(
		watcher.WithDebounce(c.watchDebounce),
		watcher.WithLogger(c.logger),
	)
	if err != nil {
		return err
	}
	w.OnChange(c.handleFileChange)

	for _, dir := range []string{c.userDir, c.workspaceDir} {
		if dir == "" {
			continue
		}
		for _, name := range []string{"settings.toml", "settings.json"} {
			if err := w.Watch(filepath.Join(dir, name)); err != nil {
				c.logger.Debug("not watching %s: %v", dir, err)
				break
			}
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return w.Close()
	}
	c.watcher = w
	c.mu.Unlock()
	return nil
}

// handleFileChange reloads the layer whose directory holds the changed
// file.
func (c *Config) handleFileChange(event watcher.Event) {
	dir := filepath.Dir(event.Path)
	for _, src := range []layer.Source{layer.SourceUser, layer.SourceWorkspace} {
		d := c.dirFor(src)
		if d == "" {
			continue
		}
		if abs, err := filepath.Abs(d); err == nil && abs == dir {
			if err := c.Reload(src); err != nil {
				c.logger.Warn("reloading %s settings: %v", src, err)
			}
			return
		}
	}
}

// Reload re-reads the settings file for src and notifies observers with
// the per-key differences in effective values. A file that fails to parse
// leaves the layer unchanged.
func (c *Config) Reload(src layer.Source) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	before := c.layers.Merge()
	if err := c.loadFileLayerLocked(src); err != nil {
		c.mu.Unlock()
		return err
	}
	after := c.layers.Merge()

	deltas := layer.Diff(before, after)
	if len(deltas) > 0 {
		changes := make([]notify.Change, 0, len(deltas))
		for _, d := range deltas {
			ch := notify.Change{
				Path:     d.Path,
				Type:     notify.ChangeSet,
				OldValue: d.Old,
				NewValue: d.New,
				Source:   src.String(),
			}
			if d.Removed {
				ch.Type = notify.ChangeDelete
			}
			changes = append(changes, ch)
		}
		c.notifier.Post(notify.Change{
			Type:   notify.ChangeReload,
			Source: c.files[src],
			Batch:  changes,
		})
	}
	c.mu.Unlock()

	c.notifier.Deliver()
	c.logger.Info("reloaded %s settings: %d changes", src, len(deltas))
	return nil
}

// Close shuts down the settings store.
func (c *Config) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	w := c.watcher
	c.mu.Unlock()

	if w != nil {
		_ = w.Close()
	}
	c.notifier.Close()
}

// Get returns the effective value at path.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layers.Get(path)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: v}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val == float64(int64(val)) {
			return int(val), nil
		}
	}
	return 0, &TypeError{Path: path, Expected: "int", Actual: v}
}

// GetFloat returns a float64 value at the given path.
func (c *Config) GetFloat(path string) (float64, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "float64", Actual: v}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: v}
	}
	return b, nil
}

// Snapshot returns the typed view of the effective settings. Invalid
// values fall back to their defaults.
func (c *Config) Snapshot() Snapshot {
	s, _ := SnapshotOf(c.Merged())
	return s
}

// Merged returns the fully merged settings.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layers.Merge()
}

// Which returns the name of the layer supplying the effective value of
// path.
func (c *Config) Which(path string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layers.Which(path)
}

// Layers returns the layer names in priority order.
func (c *Config) Layers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layers.Names()
}

// File returns the settings file backing src, if any.
func (c *Config) File(src layer.Source) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.files[src]
	return p, ok
}

// Registry returns the setting definitions used for validation.
func (c *Config) Registry() *registry.Registry {
	return c.registry
}

// Set sets a session override for path.
func (c *Config) Set(path string, value any) error {
	return c.SetIn(layer.SourceSession, path, value)
}

// SetIn sets path in the layer for src. Observers are notified only when
// the effective value changes.
func (c *Config) SetIn(src layer.Source, path string, value any) error {
	v, err := c.registry.Normalize(path, value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	oldValue, _ := c.layers.Get(path)
	if err := c.layers.Set(src.String(), path, v); err != nil {
		c.mu.Unlock()
		return err
	}
	newValue, _ := c.layers.Get(path)
	if !layer.ValuesEqual(oldValue, newValue) {
		c.notifier.Post(notify.Change{
			Path:     path,
			Type:     notify.ChangeSet,
			OldValue: oldValue,
			NewValue: newValue,
			Source:   src.String(),
		})
	}
	c.mu.Unlock()

	c.notifier.Deliver()
	return nil
}

// Update sets several session overrides and notifies observers with a
// single grouped change. Nothing is applied if any value is invalid.
func (c *Config) Update(values map[string]any) error {
	normalized := make(map[string]any, len(values))
	for path, value := range values {
		v, err := c.registry.Normalize(path, value)
		if err != nil {
			return err
		}
		normalized[path] = v
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	before := c.layers.Merge()
	for path, v := range normalized {
		if err := c.layers.Set(layer.SourceSession.String(), path, v); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	deltas := layer.Diff(before, c.layers.Merge())
	if len(deltas) > 0 {
		changes := make([]notify.Change, 0, len(deltas))
		for _, d := range deltas {
			changes = append(changes, notify.Change{
				Path:     d.Path,
				Type:     notify.ChangeSet,
				OldValue: d.Old,
				NewValue: d.New,
				Source:   layer.SourceSession.String(),
			})
		}
		c.notifier.Post(notify.Change{
			Type:   notify.ChangeBatch,
			Source: layer.SourceSession.String(),
			Batch:  changes,
		})
	}
	c.mu.Unlock()

	c.notifier.Deliver()
	return nil
}

// Reset removes the session override for path.
func (c *Config) Reset(path string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	oldValue, _ := c.layers.Get(path)
	if err := c.layers.Delete(layer.SourceSession.String(), path); err != nil {
		c.mu.Unlock()
		return err
	}
	newValue, exists := c.layers.Get(path)
	if !layer.ValuesEqual(oldValue, newValue) {
		ch := notify.Change{
			Path:     path,
			Type:     notify.ChangeSet,
			OldValue: oldValue,
			NewValue: newValue,
			Source:   layer.SourceSession.String(),
		}
		if !exists {
			ch.Type = notify.ChangeDelete
		}
		c.notifier.Post(ch)
	}
	c.mu.Unlock()

	c.notifier.Deliver()
	return nil
}

// Save writes the layer for src to its settings file. Keys present in
// the file but no longer in the layer are removed from it.
func (c *Config) Save(src layer.Source) error {
	c.mu.RLock()
	path, ok := c.files[src]
	l, _ := c.layers.Layer(src.String())
	c.mu.RUnlock()
	if !ok || l == nil {
		return fmt.Errorf("%w: %s", ErrNoSettingsFile, src)
	}

	fl, err := loader.ForPath(c.fs, path)
	if err != nil {
		return err
	}
	current, err := fl.Load()
	if err != nil {
		return err
	}

	values := layer.Flatten(l.Data)
	for k := range layer.Flatten(current) {
		if _, keep := values[k]; !keep {
			values[k] = nil
		}
	}
	if err := fl.Save(values); err != nil {
		return err
	}
	c.logger.Info("saved %s settings to %s", src, path)
	return nil
}

// Subscribe registers an observer for all settings changes.
func (c *Config) Subscribe(observer notify.Observer) *notify.Subscription {
	return c.notifier.Subscribe(observer)
}

// SubscribePath registers an observer for changes at or below path.
func (c *Config) SubscribePath(path string, observer notify.Observer) *notify.Subscription {
	return c.notifier.SubscribePath(path, observer)
}

func (c *Config) dirFor(src layer.Source) string {
	switch src {
	case layer.SourceUser:
		return c.userDir
	case layer.SourceWorkspace:
		return c.workspaceDir
	default:
		return ""
	}
}

// DefaultUserDir returns the default user settings directory.
func DefaultUserDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "editstate")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "editstate")
}

// WorkspaceDir returns the settings directory inside a workspace root.
func WorkspaceDir(root string) string {
	return filepath.Join(root, ".editstate")
}

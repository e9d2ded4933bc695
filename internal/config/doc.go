// Package config provides the settings store behind the editing surface.
//
// Settings are organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  5. Session overrides       │  ← Set() while running
//	├─────────────────────────────┤
//	│  4. Environment Variables   │  ← EDITSTATE_*
//	├─────────────────────────────┤
//	│  3. Workspace               │  ← <workspace>/.editstate/settings.{toml,json}
//	├─────────────────────────────┤
//	│  2. User Settings           │  ← ~/.config/editstate/settings.{toml,json}
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Every known key is declared in the settings registry with its type,
// default and validation rules. Keys use the dotted CodeEdit naming
// ("textEditing.font.size", "theme.selectedTheme").
//
// # Sub-packages
//
//   - loader: settings file loading (TOML, JSON, environment variables)
//   - registry: setting definitions and validation
//   - layer: layer management and merging
//   - watcher: file watching for live reload
//   - notify: change notification and observer pattern
//
// # Basic Usage
//
//	cfg := config.New(config.WithWorkspaceDir(root))
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	defer cfg.Close()
//
//	size, _ := cfg.GetFloat(config.KeyFontSize)
//	snap := cfg.Snapshot()
//
// Observers receive one notify.Change per Set, one grouped change per
// Update and one reload change, carrying the per-key differences, per
// file reload.
package config

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/editstate/internal/config"
	"github.com/dshills/editstate/internal/logging"
	"github.com/dshills/editstate/internal/theme"
	"github.com/dshills/editstate/internal/workspace"
)

var (
	userDir       string
	workspaceRoot string
	themesDir     string
	logLevel      string
	appearance    string
	noEnv         bool
)

var rootCmd = &cobra.Command{
	Use:   "editstate",
	Short: "Inspect editor settings, themes and derived configuration",
	Long: `editstate loads the same layered settings, themes and workspace state an
editor window uses and prints what the editor would see.

Settings are read from settings.toml or settings.json in the user directory
and in <workspace>/.editstate, then overridden by EDITSTATE_* environment
variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initLogging)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&userDir, "user-dir", config.DefaultUserDir(), "User settings directory")
	flags.StringVarP(&workspaceRoot, "workspace", "w", "", "Workspace root directory")
	flags.StringVar(&themesDir, "themes", "", "Theme directory (default <user-dir>/themes)")
	flags.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flags.StringVar(&appearance, "appearance", "", "System appearance (dark, light)")
	flags.BoolVar(&noEnv, "no-env", false, "Ignore EDITSTATE_* environment variables")
}

func initLogging() {
	logging.Set(logging.New(logging.Config{
		Level:  logging.ParseLevel(logLevel),
		Output: os.Stderr,
		Prefix: "editstate",
	}))
}

// Execute runs the root command.
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("editstate %s\n  commit: %s\n  built:  %s\n", version, commit, date))
	return rootCmd.ExecuteContext(context.Background())
}

func workspaceSettingsDir() string {
	if workspaceRoot == "" {
		return ""
	}
	return config.WorkspaceDir(workspaceRoot)
}

func themesPath() string {
	if themesDir != "" {
		return themesDir
	}
	if userDir == "" {
		return ""
	}
	return filepath.Join(userDir, "themes")
}

func configOptions(watch bool) []config.Option {
	return []config.Option{
		config.WithUserDir(userDir),
		config.WithWorkspaceDir(workspaceSettingsDir()),
		config.WithWatcher(watch),
		config.WithEnv(!noEnv),
	}
}

// loadConfig opens the settings store without starting a workspace.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg := config.New(configOptions(false)...)
	if err := cfg.Load(ctx); err != nil {
		cfg.Close()
		return nil, err
	}
	return cfg, nil
}

// openWorkspace starts a workspace with the command line settings.
func openWorkspace(ctx context.Context, watch bool, mutate ...func(*workspace.Options)) (*workspace.Workspace, error) {
	a, err := theme.ParseAppearance(appearance)
	if err != nil {
		return nil, err
	}
	opts := workspace.Options{
		UserDir:       userDir,
		WorkspaceDir:  workspaceSettingsDir(),
		ThemesDir:     themesPath(),
		Watch:         watch,
		Appearance:    a,
		ConfigOptions: []config.Option{config.WithEnv(!noEnv)},
	}
	for _, m := range mutate {
		m(&opts)
	}
	return workspace.New(ctx, opts)
}

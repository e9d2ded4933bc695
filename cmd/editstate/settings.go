package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/dshills/editstate/internal/config"
	"github.com/dshills/editstate/internal/config/layer"
	"github.com/dshills/editstate/internal/config/registry"
)

var (
	showLayers bool
	setLayer   string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the merged settings as JSON",
	RunE:  runConfig,
}

var getCmd = &cobra.Command{
	Use:   "get <pattern>",
	Short: "Print settings whose key matches a glob pattern",
	Long: `Print the effective value of every setting whose key matches the glob
pattern, together with the layer that supplies it.

  editstate get 'textEditing.bracketHighlight.*'
  editstate get 'theme.*Theme'`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a setting to the user or workspace settings file",
	Args:  cobra.ExactArgs(2),
	RunE:  runSet,
}

func init() {
	configCmd.Flags().BoolVar(&showLayers, "layers", false, "Print the layer names in priority order instead")
	setCmd.Flags().StringVar(&setLayer, "layer", "user", "Settings file to write (user, workspace)")
	rootCmd.AddCommand(configCmd, getCmd, setCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	defer cfg.Close()

	if showLayers {
		for _, name := range cfg.Layers() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	data, err := json.Marshal(cfg.Merged())
	if err != nil {
		return err
	}
	out := pretty.Pretty(data)
	if f, ok := cmd.OutOrStdout().(*os.File); ok && isTerminal(f) {
		out = pretty.Color(out, nil)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	defer cfg.Close()

	settings := cfg.Registry().Match(args[0])
	if len(settings) == 0 {
		return fmt.Errorf("no setting matches %q", args[0])
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, s := range settings {
		v, _ := cfg.Get(s.Path)
		fmt.Fprintf(tw, "%s\t%v\t%s\n", s.Path, v, cfg.Which(s.Path))
	}
	return tw.Flush()
}

func runSet(cmd *cobra.Command, args []string) error {
	var src layer.Source
	switch setLayer {
	case "user":
		src = layer.SourceUser
	case "workspace":
		if workspaceRoot == "" {
			return fmt.Errorf("--layer workspace needs --workspace")
		}
		src = layer.SourceWorkspace
	default:
		return fmt.Errorf("unknown layer %q", setLayer)
	}

	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	defer cfg.Close()

	def := cfg.Registry().Get(args[0])
	if def == nil {
		return fmt.Errorf("%w: %s", config.ErrSettingNotFound, args[0])
	}
	value, err := parseValue(def, args[1])
	if err != nil {
		return err
	}
	if err := cfg.SetIn(src, def.Path, value); err != nil {
		return err
	}
	if err := cfg.Save(src); err != nil {
		return err
	}
	path, _ := cfg.File(src)
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %v (%s)\n", def.Path, value, path)
	return nil
}

// parseValue converts a command line argument to the setting's type.
func parseValue(def *registry.Setting, s string) (any, error) {
	switch def.Type {
	case registry.TypeBool:
		return strconv.ParseBool(s)
	case registry.TypeInt:
		return strconv.Atoi(s)
	case registry.TypeFloat:
		return strconv.ParseFloat(s, 64)
	default:
		return strings.TrimSpace(s), nil
	}
}

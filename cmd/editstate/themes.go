package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/editstate/internal/theme"
)

var themesCmd = &cobra.Command{
	Use:   "themes [id]",
	Short: "List themes, or print one theme as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runThemes,
}

func init() {
	rootCmd.AddCommand(themesCmd)
}

func runThemes(cmd *cobra.Command, args []string) error {
	reg := theme.NewRegistry(theme.WithBuiltins())
	if dir := themesPath(); dir != "" {
		if _, err := reg.LoadDir(dir); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		}
	}

	if len(args) == 1 {
		t, err := reg.Lookup(args[0])
		if err != nil {
			return err
		}
		data, err := theme.MarshalYAML(t)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAPPEARANCE\tTEXT\tBACKGROUND")
	for _, id := range reg.IDs() {
		t, _ := reg.Get(id)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.DisplayName(), t.Appearance, t.Text.Hex(), t.Background.Hex())
	}
	return tw.Flush()
}

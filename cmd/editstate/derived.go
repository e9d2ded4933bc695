package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/editstate/internal/projector"
)

var derivedCmd = &cobra.Command{
	Use:   "derived",
	Short: "Print the derived editor configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		w, err := openWorkspace(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer w.Close(cmd.Context())

		return printDerived(cmd.OutOrStdout(), w.Derived())
	},
}

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Print the settings each derived field depends on",
	Run: func(cmd *cobra.Command, _ []string) {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for f := projector.Field(0); f < projector.FieldCount; f++ {
			fmt.Fprintf(tw, "%s\t%v\n", f, projector.Dependencies(f))
		}
		_ = tw.Flush()
	},
}

func init() {
	derivedCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(derivedCmd)
}

func printDerived(out io.Writer, cfg projector.DerivedEditorConfig) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "font\t%s %.1fpt\n", cfg.Font.Name, cfg.Font.Size)
	fmt.Fprintf(tw, "indent\t%s\n", cfg.Indent)
	fmt.Fprintf(tw, "tabWidth\t%d\n", cfg.TabWidth)
	fmt.Fprintf(tw, "lineHeight\t%.2f\n", cfg.LineHeight)
	fmt.Fprintf(tw, "letterSpacing\t%.2f\n", cfg.LetterSpacing)
	fmt.Fprintf(tw, "wrapLines\t%t\n", cfg.WrapLines)
	fmt.Fprintf(tw, "theme\t%s (%s)\n", cfg.Theme.DisplayName(), cfg.Theme.ID)
	fmt.Fprintf(tw, "colorScheme\t%s\n", cfg.ColorScheme)
	fmt.Fprintf(tw, "useThemeBackground\t%t\n", cfg.UseThemeBackground)
	if cfg.Bracket.HasColor {
		fmt.Fprintf(tw, "bracketHighlight\t%s %s\n", cfg.Bracket.Mode, cfg.Bracket.Color.Hex())
	} else {
		fmt.Fprintf(tw, "bracketHighlight\t%s\n", cfg.Bracket.Mode)
	}
	return tw.Flush()
}

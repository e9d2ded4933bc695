package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/editstate/internal/projector"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the derived configuration whenever settings or themes change",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := openWorkspace(ctx, true)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := printDerived(out, w.Derived()); err != nil {
		return err
	}
	unsubscribe := w.SubscribeDerived(func(cfg projector.DerivedEditorConfig) {
		fmt.Fprintf(out, "\n# %s generation %d\n", time.Now().Format(time.TimeOnly), w.Projector().Generation())
		_ = printDerived(out, cfg)
	})
	defer unsubscribe()

	<-ctx.Done()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return w.Close(closeCtx)
}

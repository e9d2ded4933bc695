package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dshills/editstate/internal/clock"
	"github.com/dshills/editstate/internal/logging"
	"github.com/dshills/editstate/internal/session"
)

type replayOptions struct {
	count    int
	interval time.Duration
	quiet    time.Duration
	failures int
}

var replayOpts replayOptions

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Simulate a burst of edits and print when autosave persists",
	Long: `Replay a burst of edits against a session on a simulated clock and print
the resulting autosave timeline. The session is closed at the end, which
persists anything still pending.

  editstate replay --count 5 --interval 50ms --quiet 250ms`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return replay(cmd.OutOrStdout(), replayOpts)
	},
}

func init() {
	f := replayCmd.Flags()
	f.IntVar(&replayOpts.count, "count", 5, "Number of edits")
	f.DurationVar(&replayOpts.interval, "interval", 50*time.Millisecond, "Time between edits")
	f.DurationVar(&replayOpts.quiet, "quiet", session.DefaultQuietPeriod, "Autosave quiet period")
	f.IntVar(&replayOpts.failures, "fail", 0, "Number of persist attempts that fail")
	rootCmd.AddCommand(replayCmd)
}

func replay(out io.Writer, opts replayOptions) error {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.NewManual(start)
	at := func() time.Duration { return clk.Now().Sub(start) }

	failures := opts.failures
	persister := session.PersistFunc(func(_ context.Context, req session.Request) error {
		if failures > 0 {
			failures--
			fmt.Fprintf(out, "%8v  persist revision %d failed (attempt %s)\n", at(), req.Revision, req.AttemptID)
			return errors.New("simulated failure")
		}
		fmt.Fprintf(out, "%8v  persist revision %d\n", at(), req.Revision)
		return nil
	})

	s := session.New("replay.txt", persister,
		session.WithClock(clk),
		session.WithQuietPeriod(opts.quiet),
		session.WithSpawn(func(fn func()) { fn() }),
		session.WithLogger(logging.Null),
	)
	s.OnDirty(func(_ uuid.UUID, dirty bool) {
		if !dirty {
			fmt.Fprintf(out, "%8v  clean\n", at())
		}
	})

	for i := 0; i < opts.count; i++ {
		if i > 0 {
			clk.Advance(opts.interval)
		}
		rev, err := s.ContentMutated()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%8v  edit -> revision %d (%s)\n", at(), rev, s.State())
	}
	clk.Advance(opts.quiet)

	err := s.Close(context.Background())
	fmt.Fprintf(out, "%8v  closed: persisted revision %d of %d\n", at(), s.PersistedRevision(), s.Revision())
	return err
}

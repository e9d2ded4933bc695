package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/editstate/internal/config"
	"github.com/dshills/editstate/internal/focus"
	"github.com/dshills/editstate/internal/layout"
	"github.com/dshills/editstate/internal/projector"
	"github.com/dshills/editstate/internal/theme"
	"github.com/dshills/editstate/internal/workspace"
)

var previewGroups int

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render sample panes in the terminal with the derived configuration",
	Long: `Render sample editor panes with the active theme, bracket highlight and
pane layout. Settings and theme files are watched while the preview runs.

Keys: tab next group, a toggle auxiliary, m maximize auxiliary,
d/l dark/light appearance, q quit.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntVar(&previewGroups, "groups", 2, "Number of tab groups")
	rootCmd.AddCommand(previewCmd)
}

const sampleSource = `// Package sample shows the preview colors.
package sample

func fib(n int) int {
	if n < 2 {
		return n
	}
	return fib(n-1) + fib(n-2)
}`

func runPreview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	w, err := openWorkspace(ctx, true)
	if err != nil {
		return err
	}
	defer w.Close(context.Background())

	groups := make([]focus.GroupID, max(previewGroups, 1))
	for i := range groups {
		groups[i] = focus.GroupID(fmt.Sprintf("%d", i+1))
		if err := w.AddGroup(ctx, groups[i]); err != nil {
			return err
		}
	}
	if err := w.SelectGroup(ctx, groups[0]); err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	redraw := func() {
		// Settings changes arrive from the watcher; wait for them to land.
		_ = w.Do(ctx, "preview sync", func() error { return nil })
		drawPreview(screen, w)
	}
	unsubscribe := w.SubscribeDerived(func(projector.DerivedEditorConfig) {
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer unsubscribe()

	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			width, height := ev.Size()
			_ = w.Resize(layout.Rect{W: width, H: height})
			redraw()
		case *tcell.EventInterrupt:
			redraw()
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q':
				return nil
			case ev.Key() == tcell.KeyTab:
				next := nextGroup(groups, w.Focus().ActiveGroup())
				_ = w.SelectGroup(ctx, next)
			case ev.Rune() == 'a':
				_ = w.ToggleAuxiliary(ctx)
			case ev.Rune() == 'm':
				_ = w.Do(ctx, "maximize auxiliary", func() error {
					if _, ok := w.Layout().Maximized(); ok {
						w.Layout().Unmaximize()
						return nil
					}
					return w.Layout().Maximize(layout.AuxiliaryRegion)
				})
			case ev.Rune() == 'd':
				_ = w.SystemAppearanceChanged(theme.AppearanceDark)
			case ev.Rune() == 'l':
				_ = w.SystemAppearanceChanged(theme.AppearanceLight)
			}
			redraw()
		}
	}
}

func nextGroup(groups []focus.GroupID, current focus.GroupID) focus.GroupID {
	for i, g := range groups {
		if g == current {
			return groups[(i+1)%len(groups)]
		}
	}
	return groups[0]
}

func drawPreview(screen tcell.Screen, w *workspace.Workspace) {
	cfg := w.Derived()
	th := cfg.Theme

	base := tcell.StyleDefault.Foreground(th.Text.TCell())
	if cfg.UseThemeBackground {
		base = base.Background(th.Background.TCell())
	}
	screen.SetStyle(base)
	screen.Clear()

	active := string(w.Focus().ActiveGroup())
	for _, n := range walkLeaves(w.Layout().View()) {
		frame, ok := w.Layout().Frame(n.ID)
		if !ok || frame.Empty() {
			continue
		}
		if n.ID == layout.AuxiliaryRegion {
			drawAuxiliary(screen, frame, base.Foreground(th.Comments.TCell()), w)
			continue
		}
		drawGroup(screen, frame, cfg, base, n.GroupID == active, n.GroupID)
	}
	screen.Show()
}

func walkLeaves(root *layout.Node) []*layout.Node {
	var leaves []*layout.Node
	root.Walk(func(n *layout.Node) {
		if !n.IsSplit() {
			leaves = append(leaves, n)
		}
	})
	return leaves
}

func drawGroup(screen tcell.Screen, r layout.Rect, cfg projector.DerivedEditorConfig, base tcell.Style, active bool, id string) {
	th := cfg.Theme
	title := " " + id + " "
	if active {
		title = "*" + id + " "
	}
	drawText(screen, r.X, r.Y, r.W, title, base.Foreground(th.Comments.TCell()).Bold(active))

	tab := strings.Repeat(" ", max(cfg.TabWidth, 1))
	for i, line := range strings.Split(sampleSource, "\n") {
		y := r.Y + 1 + i
		if y >= r.Y+r.H {
			break
		}
		style := base
		switch {
		case strings.HasPrefix(strings.TrimSpace(line), "//"):
			style = style.Foreground(th.Comments.TCell())
		case active && i == 3:
			style = style.Background(th.LineHighlight.TCell())
		}
		line = strings.ReplaceAll(line, "\t", tab)
		drawText(screen, r.X, y, r.W, line, style)

		// Highlight the first bracket pair on the highlighted line.
		if active && i == 3 {
			drawBrackets(screen, r, y, line, style, cfg)
		}
	}
}

func drawBrackets(screen tcell.Screen, r layout.Rect, y int, line string, style tcell.Style, cfg projector.DerivedEditorConfig) {
	if !cfg.Bracket.Enabled() {
		return
	}
	open := strings.IndexByte(line, '(')
	closing := strings.IndexByte(line, ')')
	if open < 0 || closing < 0 {
		return
	}

	bs := style
	switch cfg.Bracket.Mode {
	case config.BracketFlash:
		bs = bs.Reverse(true)
	case config.BracketUnderline:
		bs = bs.Underline(true)
	case config.BracketBordered:
		bs = bs.Bold(true)
	}
	if cfg.Bracket.HasColor {
		bg := cfg.Theme.Background
		if cfg.Bracket.Mode == config.BracketBordered {
			bs = bs.Background(cfg.Bracket.Color.TCell(bg))
		} else {
			bs = bs.Foreground(cfg.Bracket.Color.TCell(bg))
		}
	}
	for _, x := range []int{open, closing} {
		if x < r.W {
			screen.SetContent(r.X+x, y, rune(line[x]), nil, bs)
		}
	}
}

func drawAuxiliary(screen tcell.Screen, r layout.Rect, style tcell.Style, w *workspace.Workspace) {
	drawText(screen, r.X, r.Y, r.W, strings.Repeat("─", r.W), style)
	m := w.Metrics()
	cfg := w.Derived()
	lines := []string{
		fmt.Sprintf("theme %s  scheme %s  generation %d", cfg.Theme.ID, cfg.ColorScheme, w.Projector().Generation()),
		fmt.Sprintf("indent %s  bracket %s", cfg.Indent, cfg.Bracket.Mode),
		fmt.Sprintf("events %d  avg %v  settings changes %d  theme reloads %d", m.Events, m.AvgEvent, m.ConfigChanges, m.ThemeReloads),
	}
	for i, line := range lines {
		if 1+i >= r.H {
			break
		}
		drawText(screen, r.X+1, r.Y+1+i, r.W-1, line, style)
	}
}

func drawText(screen tcell.Screen, x, y, width int, s string, style tcell.Style) {
	col := 0
	for _, ch := range s {
		if col >= width {
			return
		}
		screen.SetContent(x+col, y, ch, nil, style)
		col++
	}
}

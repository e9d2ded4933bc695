package layout

import (
	"errors"
	"testing"
)

func newTestController(t *testing.T) *Controller {
	t.Helper()
	c := NewDefault()
	c.SetBounds(Rect{W: 1000, H: 800})
	return c
}

func mustSize(t *testing.T, c *Controller, id NodeID) int {
	t.Helper()
	s, ok := c.Size(id)
	if !ok {
		t.Fatalf("Size(%s) not found", id)
	}
	return s
}

func TestDefaultLayout(t *testing.T) {
	c := newTestController(t)

	if got := mustSize(t, c, EditorRegion); got != 800 {
		t.Errorf("editor size = %d, want 800", got)
	}
	if _, ok := c.Frame(AuxiliaryRegion); ok {
		t.Error("collapsed auxiliary region has a frame")
	}
	view := c.View()
	aux := view.Find(AuxiliaryRegion)
	if aux == nil || !aux.Collapsed || aux.RestoreSize() != AuxiliaryIdeal {
		t.Errorf("auxiliary = %+v, want collapsed with restore %d", aux, AuxiliaryIdeal)
	}
}

func TestCollapseExpandRoundTrip(t *testing.T) {
	c := newTestController(t)

	if err := c.Expand(AuxiliaryRegion); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := mustSize(t, c, AuxiliaryRegion); got != 260 {
		t.Errorf("auxiliary size = %d, want 260", got)
	}
	if got := mustSize(t, c, EditorRegion); got != 540 {
		t.Errorf("editor size = %d, want 540", got)
	}
	f, _ := c.Frame(AuxiliaryRegion)
	if f != (Rect{X: 0, Y: 540, W: 1000, H: 260}) {
		t.Errorf("auxiliary frame = %+v", f)
	}

	if err := c.Collapse(AuxiliaryRegion); err != nil {
		t.Fatalf("Collapse() error = %v", err)
	}
	if got := mustSize(t, c, EditorRegion); got != 800 {
		t.Errorf("editor size after collapse = %d, want 800", got)
	}

	if err := c.Expand(AuxiliaryRegion); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := mustSize(t, c, AuxiliaryRegion); got != 260 {
		t.Errorf("auxiliary size after re-expand = %d, want 260", got)
	}
}

func TestCollapseRemembersResizedSize(t *testing.T) {
	c := newTestController(t)
	_ = c.Expand(AuxiliaryRegion)
	if err := c.Resize(RootNode, []float64{0.6, 0.4}); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if got := mustSize(t, c, AuxiliaryRegion); got != 320 {
		t.Fatalf("auxiliary size = %d, want 320", got)
	}

	_ = c.Collapse(AuxiliaryRegion)
	_ = c.Expand(AuxiliaryRegion)
	if got := mustSize(t, c, AuxiliaryRegion); got != 320 {
		t.Errorf("auxiliary size after round trip = %d, want 320", got)
	}
}

func TestToggle(t *testing.T) {
	c := newTestController(t)

	_ = c.Toggle(AuxiliaryRegion)
	if got := mustSize(t, c, AuxiliaryRegion); got != 260 {
		t.Errorf("auxiliary size after toggle = %d, want 260", got)
	}
	_ = c.Toggle(AuxiliaryRegion)
	if _, ok := c.Frame(AuxiliaryRegion); ok {
		t.Error("auxiliary region visible after second toggle")
	}
}

func TestCollapseErrors(t *testing.T) {
	c := newTestController(t)

	if err := c.Collapse(EditorRegion); !errors.Is(err, ErrNotCollapsible) {
		t.Errorf("Collapse(editor) error = %v, want ErrNotCollapsible", err)
	}
	if err := c.Collapse("missing"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Collapse(missing) error = %v, want ErrNodeNotFound", err)
	}
	if err := c.Collapse(RootNode); !errors.Is(err, ErrRootNode) {
		t.Errorf("Collapse(root) error = %v, want ErrRootNode", err)
	}
}

func TestExpandClampsToAvailableSpace(t *testing.T) {
	c := NewDefault()
	c.SetBounds(Rect{W: 1000, H: 400})

	_ = c.Expand(AuxiliaryRegion)
	// The editor keeps its minimum; the auxiliary region gets the rest.
	if got := mustSize(t, c, EditorRegion); got != EditorMinSize {
		t.Errorf("editor size = %d, want %d", got, EditorMinSize)
	}
	if got := mustSize(t, c, AuxiliaryRegion); got != 400-EditorMinSize {
		t.Errorf("auxiliary size = %d, want %d", got, 400-EditorMinSize)
	}
}

func TestSetBounds_ShrinkTakesFromSlack(t *testing.T) {
	c := newTestController(t)
	_ = c.Expand(AuxiliaryRegion)

	c.SetBounds(Rect{W: 1000, H: 600})
	editor := mustSize(t, c, EditorRegion)
	aux := mustSize(t, c, AuxiliaryRegion)
	if editor+aux != 600 {
		t.Errorf("sizes %d+%d, want sum 600", editor, aux)
	}
	if editor < EditorMinSize || aux < AuxiliaryMinSize {
		t.Errorf("sizes %d, %d below minimum", editor, aux)
	}

	// Growing hands the surplus to the editor, which has priority.
	c.SetBounds(Rect{W: 1000, H: 900})
	if got := mustSize(t, c, AuxiliaryRegion); got != aux {
		t.Errorf("auxiliary size = %d, want unchanged %d", got, aux)
	}
}

func TestResize(t *testing.T) {
	c := newTestController(t)
	_ = c.Expand(AuxiliaryRegion)

	if err := c.Resize(RootNode, []float64{0.1, 0.9}); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if got := mustSize(t, c, EditorRegion); got != EditorMinSize {
		t.Errorf("editor size = %d, want clamped %d", got, EditorMinSize)
	}
	if got := mustSize(t, c, AuxiliaryRegion); got != 800-EditorMinSize {
		t.Errorf("auxiliary size = %d, want %d", got, 800-EditorMinSize)
	}

	if err := c.Resize(RootNode, []float64{1}); !errors.Is(err, ErrInvalidProportions) {
		t.Errorf("Resize() with wrong length error = %v", err)
	}
	if err := c.Resize(AuxiliaryRegion, []float64{1}); !errors.Is(err, ErrNotSplit) {
		t.Errorf("Resize(leaf) error = %v, want ErrNotSplit", err)
	}
}

func TestMaximize(t *testing.T) {
	c := newTestController(t)
	_ = c.Expand(AuxiliaryRegion)

	if err := c.Maximize(AuxiliaryRegion); err != nil {
		t.Fatalf("Maximize() error = %v", err)
	}
	if f, _ := c.Frame(AuxiliaryRegion); f.H != 800 {
		t.Errorf("maximized frame = %+v, want full height", f)
	}
	if _, ok := c.Frame(EditorRegion); ok {
		t.Error("editor visible while sibling maximized")
	}
	if id, ok := c.Maximized(); !ok || id != AuxiliaryRegion {
		t.Errorf("Maximized() = %s, %v", id, ok)
	}

	c.Unmaximize()
	if got := mustSize(t, c, AuxiliaryRegion); got != 260 {
		t.Errorf("auxiliary size after unmaximize = %d, want 260", got)
	}
	if got := mustSize(t, c, EditorRegion); got != 540 {
		t.Errorf("editor size after unmaximize = %d, want 540", got)
	}
}

func TestCollapseUnmaximizes(t *testing.T) {
	c := newTestController(t)

	// Maximizing a collapsed node expands it.
	if err := c.Maximize(AuxiliaryRegion); err != nil {
		t.Fatalf("Maximize() error = %v", err)
	}
	if err := c.Collapse(AuxiliaryRegion); err != nil {
		t.Fatalf("Collapse() error = %v", err)
	}
	if _, ok := c.Maximized(); ok {
		t.Error("collapsed node still maximized")
	}
	view := c.View().Find(AuxiliaryRegion)
	if view.Maximized || !view.Collapsed {
		t.Errorf("auxiliary = %+v, want collapsed and not maximized", view)
	}
	if got := mustSize(t, c, EditorRegion); got != 800 {
		t.Errorf("editor size = %d, want 800", got)
	}
}

func TestGroups(t *testing.T) {
	c := newTestController(t)

	a, err := c.AddGroup("a")
	if err != nil {
		t.Fatalf("AddGroup(a) error = %v", err)
	}
	if got := mustSize(t, c, a); got != 1000 {
		t.Errorf("first group size = %d, want 1000", got)
	}

	b, _ := c.AddGroup("b")
	if got := mustSize(t, c, a) + mustSize(t, c, b); got != 1000 {
		t.Errorf("group sizes sum to %d, want 1000", got)
	}
	if got := mustSize(t, c, b); got != 500 {
		t.Errorf("second group size = %d, want 500", got)
	}

	if _, err := c.AddGroup("a"); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("duplicate AddGroup error = %v", err)
	}

	// Surplus goes to the active group.
	c.SetActiveGroup("b")
	c.SetBounds(Rect{W: 1200, H: 800})
	if got := mustSize(t, c, b); got != 700 {
		t.Errorf("active group size = %d, want 700", got)
	}

	if err := c.RemoveGroup("b"); err != nil {
		t.Fatalf("RemoveGroup() error = %v", err)
	}
	if got := mustSize(t, c, a); got != 1200 {
		t.Errorf("remaining group size = %d, want 1200", got)
	}
	if c.ActiveGroup() != "" {
		t.Errorf("ActiveGroup() = %q after removing it", c.ActiveGroup())
	}
	if err := c.RemoveGroup("b"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("second RemoveGroup error = %v", err)
	}
}

func TestNew_DuplicateIDs(t *testing.T) {
	root := NewSplit("r", Vertical, NewLeaf("x", "", 10, 0, 0), NewLeaf("x", "", 10, 0, 0))
	if _, err := New(root); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("New() error = %v, want ErrDuplicateNode", err)
	}
}

func TestFramesTileBounds(t *testing.T) {
	c := newTestController(t)
	_ = c.Expand(AuxiliaryRegion)
	_, _ = c.AddGroup("a")
	_, _ = c.AddGroup("b")
	_, _ = c.AddGroup("c")

	frames := c.Frames()
	width := 0
	for _, id := range []NodeID{GroupNode("a"), GroupNode("b"), GroupNode("c")} {
		f, ok := frames[id]
		if !ok {
			t.Fatalf("no frame for %s", id)
		}
		if f.H != 540 {
			t.Errorf("%s height = %d, want 540", id, f.H)
		}
		width += f.W
	}
	if width != 1000 {
		t.Errorf("group widths sum to %d, want 1000", width)
	}
}

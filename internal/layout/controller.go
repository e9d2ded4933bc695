// Package layout maintains the workspace's tree of collapsible split panes.
//
// Every node has a size along its parent's axis. The controller keeps the
// sizes of each split's visible children summing to the split's extent:
// surplus goes to the highest priority child, deficits are taken from
// children in proportion to their slack above their minimum. Collapsing a
// node keeps its subtree and remembers its size so expanding restores it.
package layout

import (
	"fmt"
	"sync"

	"github.com/dshills/editstate/internal/logging"
)

// Default layout node ids.
const (
	RootNode        NodeID = "workspace"
	EditorRegion    NodeID = "editor"
	AuxiliaryRegion NodeID = "auxiliary"
)

// Default layout constraints.
const (
	EditorMinSize    = 228
	AuxiliaryMinSize = 100
	AuxiliaryIdeal   = 260
	GroupMinSize     = 80
)

// DefaultLayout returns the default pane tree: the editing region above a
// collapsible auxiliary region that starts collapsed.
func DefaultLayout() *Node {
	editor := NewSplit(EditorRegion, Horizontal)
	editor.MinSize = EditorMinSize
	editor.Priority = 1

	aux := NewLeaf(AuxiliaryRegion, "", AuxiliaryMinSize, AuxiliaryIdeal, 0)
	aux.Collapsible = true
	aux.Collapsed = true

	return NewSplit(RootNode, Vertical, editor, aux)
}

// GroupNode returns the id of the leaf holding a tab group.
func GroupNode(groupID string) NodeID {
	return NodeID("group:" + groupID)
}

// Controller owns a pane tree. Renderers read it through View and Frames.
type Controller struct {
	mu      sync.RWMutex
	root    *Node
	parents map[NodeID]*Node
	nodes   map[NodeID]*Node
	bounds  Rect
	frames  map[NodeID]Rect
	active  string

	maximized *Node
	premax    int

	logger *logging.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithBounds sets the initial bounds.
func WithBounds(r Rect) Option {
	return func(c *Controller) {
		c.bounds = r
	}
}

// New creates a controller for the tree rooted at root. The tree is owned
// by the controller from then on.
func New(root *Node, opts ...Option) (*Controller, error) {
	c := &Controller{
		root:    root,
		parents: make(map[NodeID]*Node),
		nodes:   make(map[NodeID]*Node),
		frames:  make(map[NodeID]Rect),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.Or(c.logger).WithComponent("layout")

	if err := c.index(root, nil); err != nil {
		return nil, err
	}
	root.Walk(func(n *Node) {
		c.initSize(n)
		if n.Maximized && n != root && c.maximized == nil {
			c.maximized = n
			c.premax = n.Size
		} else {
			n.Maximized = false
		}
	})
	c.relayoutLocked()
	return c, nil
}

// NewDefault creates a controller for DefaultLayout.
func NewDefault(opts ...Option) *Controller {
	c, err := New(DefaultLayout(), opts...)
	if err != nil {
		panic(fmt.Sprintf("layout: default layout: %v", err))
	}
	return c
}

func (c *Controller) index(n, parent *Node) error {
	if _, ok := c.nodes[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	c.nodes[n.ID] = n
	if parent != nil {
		c.parents[n.ID] = parent
	}
	for _, ch := range n.Children {
		if err := c.index(ch, n); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) initSize(n *Node) {
	preferred := max(n.IdealSize, n.MinSize)
	if n.Collapsed {
		if n.restore == 0 {
			n.restore = preferred
		}
		n.Size = 0
		return
	}
	if n.Size == 0 {
		n.Size = preferred
	}
}

// SetBounds sets the workspace rectangle and lays the tree out in it.
func (c *Controller) SetBounds(r Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bounds = r
	c.relayoutLocked()
}

// Bounds returns the workspace rectangle.
func (c *Controller) Bounds() Rect {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bounds
}

// Collapse hides a collapsible node, remembering its size. Its space goes
// to the highest priority sibling. Collapsing a maximized node
// unmaximizes it first.
func (c *Controller) Collapse(id NodeID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, parent, err := c.childLocked(id)
	if err != nil {
		return err
	}
	if !n.Collapsible {
		return fmt.Errorf("%w: %s", ErrNotCollapsible, id)
	}
	if c.maximized == n {
		c.unmaximizeLocked()
	}
	if n.Collapsed {
		return nil
	}

	freed := n.Size
	n.restore = n.Size
	n.Size = 0
	n.Collapsed = true
	if p := c.priorityChild(c.visibleChildren(parent)); p != nil {
		p.Size += freed
	}
	c.relayoutLocked()
	return nil
}

// Expand shows a collapsed node at its remembered size, taking the space
// from its siblings.
func (c *Controller) Expand(id NodeID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, parent, err := c.childLocked(id)
	if err != nil {
		return err
	}
	if !n.Collapsed {
		return nil
	}
	c.expandLocked(n, parent)
	c.relayoutLocked()
	return nil
}

func (c *Controller) expandLocked(n, parent *Node) {
	siblings := c.visibleChildren(parent)
	n.Collapsed = false

	want := n.restore
	if want <= 0 {
		want = max(n.IdealSize, n.MinSize)
	}
	if len(siblings) == 0 {
		n.Size = want
		return
	}

	slack := 0
	for _, s := range siblings {
		slack += s.Size - c.minSize(s, parent.Axis)
	}
	got := want
	if got > slack {
		got = max(slack, c.minSize(n, parent.Axis))
		c.logger.Debug("expand %s clamped to %d (wanted %d)", n.ID, got, want)
	}
	c.shrink(siblings, got, parent.Axis)
	n.Size = got
}

// Toggle collapses an expanded node or expands a collapsed one.
func (c *Controller) Toggle(id NodeID) error {
	c.mu.RLock()
	n, ok := c.nodes[id]
	collapsed := ok && n.Collapsed
	c.mu.RUnlock()

	if collapsed {
		return c.Expand(id)
	}
	return c.Collapse(id)
}

// Resize sets the sizes of a split's children from relative proportions,
// one per child. Entries for collapsed children are ignored. Proportions
// that would put a child below its minimum are clamped and the deficit is
// taken from the other children in proportion to their requested share.
func (c *Controller) Resize(splitID NodeID, proportions []float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	split, ok := c.nodes[splitID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, splitID)
	}
	if !split.IsSplit() {
		return fmt.Errorf("%w: %s", ErrNotSplit, splitID)
	}
	if len(proportions) != len(split.Children) {
		return fmt.Errorf("%w: %d proportions for %d children", ErrInvalidProportions, len(proportions), len(split.Children))
	}

	var (
		vis     []*Node
		weights []float64
		mins    []int
		total   int
	)
	for i, ch := range split.Children {
		if !c.visible(ch) {
			continue
		}
		vis = append(vis, ch)
		weights = append(weights, max(proportions[i], 0))
		mins = append(mins, c.minSize(ch, split.Axis))
		total += ch.Size
	}
	if frame, ok := c.frames[split.ID]; ok {
		total = frame.along(split.Axis)
	}
	if len(vis) == 0 {
		return nil
	}

	sizes, clamped := solve(total, weights, mins)
	if clamped {
		c.logger.Debug("resize %s clamped to minimum sizes", splitID)
	}
	for i, ch := range vis {
		ch.Size = sizes[i]
	}
	c.relayoutLocked()
	return nil
}

// solve distributes total by weight without putting any entry below its
// minimum. Entries that would fall below their minimum are pinned to it and
// the rest is redistributed among the others by weight, until no entry
// violates its minimum. It reports whether any entry was pinned.
func solve(total int, weights []float64, mins []int) ([]int, bool) {
	n := len(weights)
	pinned := make([]bool, n)
	exact := make([]float64, n)
	clamped := false

	for {
		remaining := total
		weightSum := 0.0
		free := 0
		for i := 0; i < n; i++ {
			if pinned[i] {
				remaining -= mins[i]
				continue
			}
			weightSum += weights[i]
			free++
		}
		if free == 0 || remaining < 0 {
			// Infeasible: everything at its minimum.
			out := make([]int, n)
			copy(out, mins)
			return out, true
		}

		violated := false
		for i := 0; i < n; i++ {
			if pinned[i] {
				exact[i] = float64(mins[i])
				continue
			}
			if weightSum > 0 {
				exact[i] = float64(remaining) * weights[i] / weightSum
			} else {
				exact[i] = float64(remaining) / float64(free)
			}
			if exact[i] < float64(mins[i]) {
				pinned[i] = true
				violated = true
			}
		}
		if !violated {
			break
		}
		clamped = true
	}
	return roundShares(exact, total), clamped
}

// Maximize gives a node its parent's whole extent, hiding its siblings. A
// collapsed node is expanded first. Only one node may be maximized.
func (c *Controller) Maximize(id NodeID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, parent, err := c.childLocked(id)
	if err != nil {
		return err
	}
	if c.maximized == n {
		return nil
	}
	if c.maximized != nil {
		c.unmaximizeLocked()
	}
	if n.Collapsed {
		c.expandLocked(n, parent)
	}
	c.maximized = n
	c.premax = n.Size
	n.Maximized = true
	c.relayoutLocked()
	return nil
}

// Unmaximize restores the maximized node and its siblings.
func (c *Controller) Unmaximize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maximized != nil {
		c.unmaximizeLocked()
		c.relayoutLocked()
	}
}

func (c *Controller) unmaximizeLocked() {
	c.maximized.Maximized = false
	c.maximized.Size = c.premax
	c.maximized = nil
	c.premax = 0
}

// Maximized returns the maximized node, if any.
func (c *Controller) Maximized() (NodeID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.maximized == nil {
		return "", false
	}
	return c.maximized.ID, true
}

// AddGroup adds a leaf for a tab group to the editing region. The new leaf
// gets an equal share of the region, taken from the other groups.
func (c *Controller) AddGroup(groupID string) (NodeID, error) {
	leaf := NewLeaf(GroupNode(groupID), groupID, GroupMinSize, 0, 0)
	if err := c.AddLeaf(EditorRegion, leaf); err != nil {
		return "", err
	}
	return leaf.ID, nil
}

// AddLeaf appends a leaf to a split.
func (c *Controller) AddLeaf(parentID NodeID, leaf *Node) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	parent, ok := c.nodes[parentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, parentID)
	}
	if !parent.IsSplit() {
		return fmt.Errorf("%w: %s", ErrNotSplit, parentID)
	}
	if _, ok := c.nodes[leaf.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, leaf.ID)
	}

	siblings := c.visibleChildren(parent)
	extent := 0
	for _, s := range siblings {
		extent += s.Size
	}
	if f, ok := c.frames[parent.ID]; ok {
		extent = f.along(parent.Axis)
	}

	leaf.Collapsed = false
	switch {
	case len(siblings) == 0:
		leaf.Size = max(extent, leaf.MinSize)
	default:
		share := max(extent/(len(siblings)+1), leaf.MinSize)
		slack := 0
		for _, s := range siblings {
			slack += s.Size - c.minSize(s, parent.Axis)
		}
		take := min(share, slack)
		c.shrink(siblings, take, parent.Axis)
		leaf.Size = max(take, leaf.MinSize)
	}

	parent.Children = append(parent.Children, leaf)
	c.nodes[leaf.ID] = leaf
	c.parents[leaf.ID] = parent
	c.relayoutLocked()
	return nil
}

// RemoveGroup removes a tab group's leaf. Its space goes to the highest
// priority remaining sibling.
func (c *Controller) RemoveGroup(groupID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := GroupNode(groupID)
	n, parent, err := c.childLocked(id)
	if err != nil {
		return err
	}
	if c.maximized == n {
		c.unmaximizeLocked()
	}

	for i, ch := range parent.Children {
		if ch == n {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			break
		}
	}
	n.Walk(func(d *Node) {
		delete(c.nodes, d.ID)
		delete(c.parents, d.ID)
		delete(c.frames, d.ID)
	})
	if c.active == groupID {
		c.active = ""
	}
	if p := c.priorityChild(c.visibleChildren(parent)); p != nil && !n.Collapsed {
		p.Size += n.Size
	}
	c.relayoutLocked()
	return nil
}

// SetActiveGroup marks the group whose leaf gets priority over its
// siblings when space is handed out.
func (c *Controller) SetActiveGroup(groupID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = groupID
}

// ActiveGroup returns the group holding layout priority.
func (c *Controller) ActiveGroup() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Size returns a node's size along its parent's axis.
func (c *Controller) Size(id NodeID) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.nodes[id]
	if !ok {
		return 0, false
	}
	return n.Size, true
}

// Frame returns a visible node's rectangle.
func (c *Controller) Frame(id NodeID) (Rect, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.frames[id]
	return r, ok
}

// Frames returns the rectangles of every visible node.
func (c *Controller) Frames() map[NodeID]Rect {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[NodeID]Rect, len(c.frames))
	for id, r := range c.frames {
		out[id] = r
	}
	return out
}

// View returns a deep copy of the pane tree.
func (c *Controller) View() *Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.root.Clone()
}

// childLocked returns a non-root node and its parent.
func (c *Controller) childLocked(id NodeID) (*Node, *Node, error) {
	n, ok := c.nodes[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	parent, ok := c.parents[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrRootNode, id)
	}
	return n, parent, nil
}

// visible reports whether n takes space in its parent.
func (c *Controller) visible(n *Node) bool {
	if n.Collapsed {
		return false
	}
	if c.maximized != nil && c.maximized != n && c.parents[c.maximized.ID] == c.parents[n.ID] {
		return false
	}
	return true
}

func (c *Controller) visibleChildren(parent *Node) []*Node {
	var out []*Node
	for _, ch := range parent.Children {
		if c.visible(ch) {
			out = append(out, ch)
		}
	}
	return out
}

// minSize returns the smallest extent of n along axis.
func (c *Controller) minSize(n *Node, axis Axis) int {
	if !n.IsSplit() {
		return n.MinSize
	}
	inner := 0
	for _, ch := range c.visibleChildren(n) {
		m := c.minSize(ch, n.Axis)
		if n.Axis == axis {
			inner += m
		} else {
			inner = max(inner, m)
		}
	}
	return max(n.MinSize, inner)
}

// priorityChild returns the child that receives surplus space: highest
// priority first, then the one containing the active group, then the
// earliest.
func (c *Controller) priorityChild(children []*Node) *Node {
	var best *Node
	bestActive := false
	for _, ch := range children {
		active := c.containsActive(ch)
		if best == nil || ch.Priority > best.Priority || (ch.Priority == best.Priority && active && !bestActive) {
			best, bestActive = ch, active
		}
	}
	return best
}

func (c *Controller) containsActive(n *Node) bool {
	if c.active == "" {
		return false
	}
	if n.Kind == KindLeaf {
		return n.GroupID == c.active
	}
	for _, ch := range n.Children {
		if c.containsActive(ch) {
			return true
		}
	}
	return false
}

// shrink takes amount from nodes in proportion to their slack. Nodes never
// go below their minimum; a shortfall is logged.
func (c *Controller) shrink(nodes []*Node, amount int, axis Axis) {
	if amount <= 0 {
		return
	}
	slacks := make([]int, len(nodes))
	total := 0
	for i, n := range nodes {
		slacks[i] = max(n.Size-c.minSize(n, axis), 0)
		total += slacks[i]
	}
	take := min(amount, total)
	if take < amount {
		c.logger.Debug("layout short by %d cells; children at minimum size", amount-take)
	}
	if take == 0 {
		return
	}
	for i, share := range distribute(take, slacks) {
		nodes[i].Size -= share
	}
}

// relayoutLocked fits the tree into the bounds and recomputes frames.
func (c *Controller) relayoutLocked() {
	c.frames = make(map[NodeID]Rect)
	if c.bounds.Empty() {
		return
	}
	c.fit(c.root, c.bounds)
}

func (c *Controller) fit(n *Node, r Rect) {
	c.frames[n.ID] = r
	if !n.IsSplit() {
		return
	}

	extent := r.along(n.Axis)
	vis := c.visibleChildren(n)
	if m := c.maximized; m != nil && c.parents[m.ID] == n {
		m.Size = extent
	} else {
		sum := 0
		for _, ch := range vis {
			sum += ch.Size
		}
		switch delta := extent - sum; {
		case delta > 0:
			if p := c.priorityChild(vis); p != nil {
				p.Size += delta
			}
		case delta < 0:
			c.shrink(vis, -delta, n.Axis)
		}
	}

	offset := 0
	for _, ch := range vis {
		c.fit(ch, r.slice(n.Axis, offset, ch.Size))
		offset += ch.Size
	}
}

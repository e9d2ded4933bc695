package layout

// Axis is the direction a split lays out its children.
type Axis int

const (
	// Vertical stacks children top to bottom.
	Vertical Axis = iota
	// Horizontal places children left to right.
	Horizontal
)

// String returns the axis name.
func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Kind distinguishes splits from leaves.
type Kind int

const (
	KindSplit Kind = iota
	KindLeaf
)

// NodeID identifies a node in the pane tree.
type NodeID string

// Node is a pane tree node: a split with ordered children, or a leaf
// holding one tab group.
type Node struct {
	ID   NodeID
	Kind Kind

	// Split fields.
	Axis     Axis
	Children []*Node

	// Leaf fields.
	GroupID string

	MinSize   int
	IdealSize int
	Priority  int

	Collapsible bool
	Collapsed   bool
	Maximized   bool

	// Size is the node's extent along its parent's axis.
	Size int

	// restore is the size to return to on expand.
	restore int
}

// NewSplit creates a split node.
func NewSplit(id NodeID, axis Axis, children ...*Node) *Node {
	return &Node{ID: id, Kind: KindSplit, Axis: axis, Children: children}
}

// NewLeaf creates a leaf node for a tab group.
func NewLeaf(id NodeID, groupID string, minSize, idealSize, priority int) *Node {
	return &Node{
		ID:        id,
		Kind:      KindLeaf,
		GroupID:   groupID,
		MinSize:   minSize,
		IdealSize: idealSize,
		Priority:  priority,
	}
}

// IsSplit reports whether n is a split.
func (n *Node) IsSplit() bool {
	return n.Kind == KindSplit
}

// RestoreSize returns the size the node returns to when expanded.
func (n *Node) RestoreSize() int {
	return n.restore
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

// Walk calls fn for n and every descendant, depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, ch := range n.Children {
		ch.Walk(fn)
	}
}

// Find returns the node with the given id in the subtree.
func (n *Node) Find(id NodeID) *Node {
	if n.ID == id {
		return n
	}
	for _, ch := range n.Children {
		if found := ch.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Rect is a rectangle in cells.
type Rect struct {
	X, Y, W, H int
}

// along returns the rectangle's extent along axis.
func (r Rect) along(axis Axis) int {
	if axis == Horizontal {
		return r.W
	}
	return r.H
}

// slice returns the band of r starting at offset with the given extent
// along axis.
func (r Rect) slice(axis Axis, offset, size int) Rect {
	size = max(min(size, r.along(axis)-offset), 0)
	if axis == Horizontal {
		return Rect{X: r.X + offset, Y: r.Y, W: size, H: r.H}
	}
	return Rect{X: r.X, Y: r.Y + offset, W: r.W, H: size}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

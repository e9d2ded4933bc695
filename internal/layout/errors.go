package layout

import "errors"

// Errors returned by layout operations. Size constraints that cannot be met
// are never errors; the layout is clamped instead.
var (
	ErrNodeNotFound       = errors.New("layout node not found")
	ErrDuplicateNode      = errors.New("duplicate layout node")
	ErrNotCollapsible     = errors.New("layout node is not collapsible")
	ErrNotSplit           = errors.New("layout node is not a split")
	ErrInvalidProportions = errors.New("invalid proportions")
	ErrRootNode           = errors.New("operation not allowed on the root node")
)

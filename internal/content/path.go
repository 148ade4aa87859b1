package content

import (
	"errors"
	"fmt"

	htmlparser "github.com/gompdf/pageflow/internal/parser/html"
)

// NodePath is the list of child indices leading from a unit root to a node.
// [0, 2] means root -> child[0] -> child[2].
type NodePath []int

// PointAt resolves a path and offset into a Point inside the unit
func (u *DOMUnit) PointAt(path NodePath, offset int) (Point, error) {
	current := u.root
	for step, index := range path {
		child := htmlparser.ChildAt(current, index)
		if child == nil {
			return Point{}, fmt.Errorf("node not found at path %v (failed at index %d, step %d)", path, index, step)
		}
		current = child
	}
	return Point{Node: domNode{n: current}, Offset: offset}, nil
}

// PathOf returns the path from the unit root to the node of p
func (u *DOMUnit) PathOf(p Point) (NodePath, error) {
	d, ok := p.Node.(domNode)
	if !ok {
		return nil, ErrForeignNode
	}

	var path NodePath
	for current := d.n; current != u.root; {
		parent := current.Parent
		if parent == nil {
			return nil, ErrOutsideUnit
		}
		index := htmlparser.ChildIndex(parent, current)
		if index < 0 {
			return nil, errors.New("integrity error: child not found in parent's list")
		}
		path = append(NodePath{index}, path...)
		current = parent
	}
	return path, nil
}

// End returns the point after the last child of the unit
func (u *DOMUnit) End() Point {
	return Point{Node: domNode{n: u.root}, Offset: u.ChildCount()}
}

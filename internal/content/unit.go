// Package content defines the measurable, mutable container that holds one
// page's rich content, and a DOM-backed implementation of it.
package content

import (
	"errors"
)

var (
	// ErrOutsideUnit is returned when a point does not belong to the unit
	ErrOutsideUnit = errors.New("point is outside the content unit")
	// ErrForeignNode is returned when a node or unit comes from another implementation
	ErrForeignNode = errors.New("node does not belong to this content unit")
)

// Node is one detachable child of a Unit
type Node interface {
	// IsText reports whether the node is a plain text run
	IsText() bool
	// Text returns the text content of the node and its descendants
	Text() string
}

// Unit is an ordered list of rich-content child nodes with a rendered height
type Unit interface {
	// HTML serializes the unit's children
	HTML() string
	// SetHTML replaces the unit's children with parsed markup
	SetHTML(markup string) error
	// Text returns the concatenated text of the unit
	Text() string
	// ChildCount returns the number of top-level child nodes
	ChildCount() int
	// LastMeaningful returns the last child that is not whitespace-only text
	LastMeaningful() (Node, bool)
	// MoveToFront detaches n and inserts it as the first child of dst
	MoveToFront(n Node, dst Unit) error
	// SplitText keeps the first byteOffset bytes of text node n and inserts
	// the rest as a new text node at the front of dst
	SplitText(n Node, byteOffset int, dst Unit) error
	// Contains reports whether p lies inside the unit
	Contains(p Point) bool
	// ExtractFrom removes everything from p to the end of the unit and returns it serialized
	ExtractFrom(p Point) (string, error)
}

// Measurer reports the rendered height of a unit's content region
type Measurer interface {
	MeasureHeight(u Unit) float64
}

// MeasureFunc adapts a function to Measurer
type MeasureFunc func(u Unit) float64

// MeasureHeight calls f(u)
func (f MeasureFunc) MeasureHeight(u Unit) float64 {
	return f(u)
}

// Point is a boundary inside a unit's tree: before child Offset of an element,
// or before character Offset of a text node. Text offsets count grapheme clusters.
type Point struct {
	Node   Node
	Offset int
}

// Range is a selection between two points
type Range struct {
	Start Point
	End   Point
}

// Collapsed returns a caret range at p
func Collapsed(p Point) *Range {
	return &Range{Start: p, End: p}
}

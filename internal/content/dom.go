package content

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	htmlparser "github.com/gompdf/pageflow/internal/parser/html"
	"github.com/gompdf/pageflow/internal/text"
)

// DOMUnit is a Unit backed by a golang.org/x/net/html tree. The root is a
// detached <div> standing in for the editable page body.
type DOMUnit struct {
	root   *html.Node
	parser *htmlparser.Parser
}

type domNode struct {
	n *html.Node
}

func (d domNode) IsText() bool { return d.n.Type == html.TextNode }

func (d domNode) Text() string { return htmlparser.TextContent(d.n) }

// HTMLNode returns the underlying node of a DOM-backed Node
func HTMLNode(n Node) (*html.Node, bool) {
	d, ok := n.(domNode)
	if !ok {
		return nil, false
	}
	return d.n, true
}

// WrapNode exposes an x/net/html node as a Node
func WrapNode(n *html.Node) Node {
	return domNode{n: n}
}

// NewDOMUnit creates an empty unit
func NewDOMUnit() *DOMUnit {
	return &DOMUnit{
		root:   &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div},
		parser: htmlparser.NewParser(),
	}
}

// NewDOMUnitFromHTML creates a unit holding the parsed markup
func NewDOMUnitFromHTML(markup string) (*DOMUnit, error) {
	u := NewDOMUnit()
	if err := u.SetHTML(markup); err != nil {
		return nil, err
	}
	return u, nil
}

// Root returns the unit's container element
func (u *DOMUnit) Root() *html.Node {
	return u.root
}

// HTML serializes the unit's children
func (u *DOMUnit) HTML() string {
	out, err := htmlparser.RenderChildren(u.root)
	if err != nil {
		return ""
	}
	return out
}

// SetHTML replaces the unit's children with parsed markup
func (u *DOMUnit) SetHTML(markup string) error {
	if err := u.parser.ParseInto(u.root, markup); err != nil {
		return fmt.Errorf("failed to parse unit content: %w", err)
	}
	return nil
}

// Text returns the concatenated text of the unit
func (u *DOMUnit) Text() string {
	return htmlparser.TextContent(u.root)
}

// ChildCount returns the number of top-level child nodes
func (u *DOMUnit) ChildCount() int {
	return htmlparser.ChildCount(u.root)
}

// LastMeaningful returns the last child that is not whitespace-only text
func (u *DOMUnit) LastMeaningful() (Node, bool) {
	c := u.root.LastChild
	for c != nil && htmlparser.IsBlankText(c) {
		c = c.PrevSibling
	}
	if c == nil {
		return nil, false
	}
	return domNode{n: c}, true
}

// MoveToFront detaches n and inserts it as the first child of dst
func (u *DOMUnit) MoveToFront(n Node, dst Unit) error {
	child, target, err := u.ownChild(n, dst)
	if err != nil {
		return err
	}
	u.root.RemoveChild(child)
	target.root.InsertBefore(child, target.root.FirstChild)
	return nil
}

// SplitText keeps n.Data[:byteOffset] in place and prepends the remainder to dst
func (u *DOMUnit) SplitText(n Node, byteOffset int, dst Unit) error {
	child, target, err := u.ownChild(n, dst)
	if err != nil {
		return err
	}
	if child.Type != html.TextNode {
		return fmt.Errorf("cannot split %q element as text", child.Data)
	}
	if byteOffset <= 0 || byteOffset >= len(child.Data) {
		return fmt.Errorf("split offset %d outside text of length %d", byteOffset, len(child.Data))
	}

	tail := &html.Node{Type: html.TextNode, Data: child.Data[byteOffset:]}
	child.Data = child.Data[:byteOffset]
	target.root.InsertBefore(tail, target.root.FirstChild)
	return nil
}

func (u *DOMUnit) ownChild(n Node, dst Unit) (*html.Node, *DOMUnit, error) {
	d, ok := n.(domNode)
	if !ok || d.n.Parent != u.root {
		return nil, nil, ErrForeignNode
	}
	target, ok := dst.(*DOMUnit)
	if !ok || target == nil {
		return nil, nil, ErrForeignNode
	}
	return d.n, target, nil
}

// Contains reports whether p lies inside the unit (the root itself included)
func (u *DOMUnit) Contains(p Point) bool {
	d, ok := p.Node.(domNode)
	if !ok || d.n == nil {
		return false
	}
	for n := d.n; n != nil; n = n.Parent {
		if n == u.root {
			return true
		}
	}
	return false
}

// ExtractFrom removes everything from p through the end of the unit. Ancestors of
// p that are only partly extracted stay in place and are cloned, without
// children, around the extracted part.
func (u *DOMUnit) ExtractFrom(p Point) (string, error) {
	if !u.Contains(p) {
		return "", ErrOutsideUnit
	}
	container, idx := u.boundary(p.Node.(domNode).n, p.Offset)

	var lifted *html.Node
	for cur := container; ; {
		var moved []*html.Node
		if lifted != nil {
			moved = append(moved, lifted)
		}
		for c := htmlparser.ChildAt(cur, idx); c != nil; {
			next := c.NextSibling
			cur.RemoveChild(c)
			moved = append(moved, c)
			c = next
		}

		if cur == u.root {
			out, err := htmlparser.RenderNodes(moved)
			if err != nil {
				return "", fmt.Errorf("failed to render extracted content: %w", err)
			}
			return out, nil
		}

		clone := htmlparser.ShallowClone(cur)
		for _, m := range moved {
			clone.AppendChild(m)
		}
		parent := cur.Parent
		idx = htmlparser.ChildIndex(parent, cur) + 1
		lifted = clone
		cur = parent
	}
}

// boundary turns a point into (element, child index). A point inside a text
// node splits the node so the boundary falls between two siblings.
func (u *DOMUnit) boundary(n *html.Node, offset int) (*html.Node, int) {
	if n.Type != html.TextNode {
		count := htmlparser.ChildCount(n)
		if offset < 0 {
			offset = 0
		}
		if offset > count {
			offset = count
		}
		return n, offset
	}

	parent := n.Parent
	index := htmlparser.ChildIndex(parent, n)
	off := text.ByteOffset(n.Data, offset)
	switch {
	case off <= 0:
		return parent, index
	case off >= len(n.Data):
		return parent, index + 1
	}

	tail := &html.Node{Type: html.TextNode, Data: n.Data[off:]}
	n.Data = n.Data[:off]
	parent.InsertBefore(tail, n.NextSibling)
	return parent, index + 1
}

// WithinList reports whether p lies inside a list or list item
func WithinList(p Point) bool {
	n, ok := HTMLNode(p.Node)
	if !ok {
		return false
	}
	for ; n != nil; n = n.Parent {
		switch n.DataAtom {
		case atom.Li, atom.Ul, atom.Ol:
			return true
		}
	}
	return false
}

package html

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parser parses rich markup fragments as they appear inside an editable page body
type Parser struct {
	// Context is the element the fragment is parsed into. Defaults to <body>.
	Context *html.Node
}

// NewParser creates a new fragment parser
func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) context() *html.Node {
	if p.Context != nil {
		return p.Context
	}
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

// ParseFragment parses markup into a detached list of top-level nodes
func (p *Parser) ParseFragment(content string) ([]*html.Node, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses a fragment from an io.Reader
func (p *Parser) Parse(r io.Reader) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(r, p.context())
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// ParseInto replaces the children of container with the parsed fragment
func (p *Parser) ParseInto(container *html.Node, content string) error {
	nodes, err := p.ParseFragment(content)
	if err != nil {
		return err
	}
	RemoveChildren(container)
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return nil
}

// ParseDocument parses a full document and returns its <body> element, or the
// document root when no body exists
func ParseDocument(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	if body := FindElement(doc, atom.Body); body != nil {
		return body, nil
	}
	return doc, nil
}

// RenderChildren serializes the children of n without n itself
func RenderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// RenderNodes serializes a detached node list
func RenderNodes(nodes []*html.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// RemoveChildren detaches every child of n
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// FindElement returns the first element below n with the given atom
func FindElement(n *html.Node, a atom.Atom) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// TextContent concatenates all text below n in document order
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// IsBlankText reports whether n is a text node made only of whitespace
func IsBlankText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode && strings.TrimSpace(n.Data) == ""
}

// ChildIndex returns the position of child within parent, or -1
func ChildIndex(parent, child *html.Node) int {
	i := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c == child {
			return i
		}
		i++
	}
	return -1
}

// ChildAt returns the child of parent at index, or nil
func ChildAt(parent *html.Node, index int) *html.Node {
	if index < 0 {
		return nil
	}
	i := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if i == index {
			return c
		}
		i++
	}
	return nil
}

// ChildCount returns the number of children of n
func ChildCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// ShallowClone copies a node's type, tag and attributes but none of its children
func ShallowClone(n *html.Node) *html.Node {
	attrs := make([]html.Attribute, len(n.Attr))
	copy(attrs, n.Attr)
	return &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      attrs,
	}
}

// Attr returns the value of the named attribute
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

package layout

import (
	"math"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	htmlparser "github.com/gompdf/pageflow/internal/parser/html"
	"github.com/gompdf/pageflow/internal/style"
)

// box is the vertical extent of a laid out block-level element
type box struct {
	height       float64
	marginTop    float64
	marginBottom float64
}

var blockTags = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true, atom.Fieldset: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.Form: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Tbody: true, atom.Thead: true, atom.Tfoot: true, atom.Tr: true, atom.Ul: true,
	atom.Caption: true,
}

// isBlock reports whether an element starts a new block formatting box
func isBlock(n *html.Node, cs style.ComputedStyle) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch cs.Get("display") {
	case "block", "list-item", "table", "table-row", "table-row-group", "flex", "grid":
		return true
	case "inline", "inline-block", "none":
		return false
	}
	return blockTags[n.DataAtom]
}

func isHidden(n *html.Node, cs style.ComputedStyle) bool {
	if n.Type == html.CommentNode {
		return true
	}
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Title, atom.Template:
		return true
	}
	return cs.Get("display") == "none"
}

// layoutBlockChildren stacks the children of n vertically. Runs of inline
// children form anonymous line boxes; adjacent vertical margins collapse.
func (e *Engine) layoutBlockChildren(n *html.Node, cs style.ComputedStyle, width float64) float64 {
	var (
		height      float64
		pendingDown float64 // bottom margin of the previous block, not yet placed
		inline      []*html.Node
	)

	flush := func() {
		if len(inline) == 0 {
			return
		}
		runs := e.collectRuns(inline, cs)
		inline = inline[:0]
		if h := e.layoutLines(runs, width); h > 0 {
			height += pendingDown + h
			pendingDown = 0
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		var childStyle style.ComputedStyle
		if c.Type == html.ElementNode {
			childStyle = e.styles.Compute(c, cs)
		}
		if isHidden(c, childStyle) {
			continue
		}
		if !isBlock(c, childStyle) {
			inline = append(inline, c)
			continue
		}
		flush()

		b := e.layoutBlock(c, childStyle, width)
		height += math.Max(pendingDown, b.marginTop) + b.height
		pendingDown = b.marginBottom
	}
	flush()

	return height + pendingDown
}

// layoutBlock lays out a block-level element and returns its border box height
// together with its vertical margins
func (e *Engine) layoutBlock(n *html.Node, cs style.ComputedStyle, width float64) box {
	fs := cs.FontSize()
	var b box
	var marginRight, marginLeft float64

	b.marginTop, marginRight, b.marginBottom, marginLeft = style.ParseBoxShorthand(cs.Get("margin"), width, fs, 0)
	if v := cs.Get("margin-top"); v != "" {
		b.marginTop = style.ParseLength(v, width, fs, 0)
	}
	if v := cs.Get("margin-bottom"); v != "" {
		b.marginBottom = style.ParseLength(v, width, fs, 0)
	}
	if v := cs.Get("margin-left"); v != "" {
		marginLeft = style.ParseLength(v, width, fs, 0)
	}
	if v := cs.Get("margin-right"); v != "" {
		marginRight = style.ParseLength(v, width, fs, 0)
	}

	pt, pr, pb, pl := style.ParseBoxShorthand(cs.Get("padding"), width, fs, 0)
	if v := cs.Get("padding-top"); v != "" {
		pt = style.ParseLength(v, width, fs, 0)
	}
	if v := cs.Get("padding-bottom"); v != "" {
		pb = style.ParseLength(v, width, fs, 0)
	}
	if v := cs.Get("padding-left"); v != "" {
		pl = style.ParseLength(v, width, fs, 0)
	}
	if v := cs.Get("padding-right"); v != "" {
		pr = style.ParseLength(v, width, fs, 0)
	}
	bt := borderWidth(cs, "top", width, fs)
	bb := borderWidth(cs, "bottom", width, fs)

	inner := math.Max(width-marginLeft-marginRight-pl-pr, 1)
	if v := cs.Get("width"); v != "" && v != "auto" {
		if w := style.ParseLength(v, width, fs, 0); w > 0 {
			inner = math.Min(w, inner)
		}
	}

	var contentHeight float64
	switch n.DataAtom {
	case atom.Tr:
		contentHeight = e.layoutRow(n, cs, inner)
	default:
		contentHeight = e.layoutBlockChildren(n, cs, inner)
	}
	if v := cs.Get("height"); v != "" && v != "auto" {
		if h := style.ParseLength(v, 0, fs, -1); h >= 0 {
			contentHeight = h
		}
	}
	if v := cs.Get("min-height"); v != "" {
		contentHeight = math.Max(contentHeight, style.ParseLength(v, 0, fs, 0))
	}

	b.height = bt + pt + contentHeight + pb + bb
	return b
}

// layoutRow returns the height of a table row: the tallest of its cells, which
// share the row width equally
func (e *Engine) layoutRow(tr *html.Node, cs style.ComputedStyle, width float64) float64 {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.DataAtom == atom.Td || c.DataAtom == atom.Th {
			cells = append(cells, c)
		}
	}
	if len(cells) == 0 {
		return 0
	}

	cellWidth := width / float64(len(cells))
	var tallest float64
	for _, cell := range cells {
		cellStyle := e.styles.Compute(cell, cs)
		fs := cellStyle.FontSize()
		pt, pr, pb, pl := style.ParseBoxShorthand(cellStyle.Get("padding"), cellWidth, fs, 1)
		h := pt + pb + e.layoutBlockChildren(cell, cellStyle, math.Max(cellWidth-pl-pr, 1))
		if v, ok := htmlparser.Attr(cell, "rowspan"); ok && strings.TrimSpace(v) != "1" {
			// spanning cells do not grow the first row they start in
			continue
		}
		tallest = math.Max(tallest, h)
	}
	return tallest
}

func borderWidth(cs style.ComputedStyle, side string, width, fs float64) float64 {
	if v := cs.Get("border-" + side + "-width"); v != "" {
		return style.ParseLength(v, width, fs, 0)
	}
	for _, name := range []string{"border-" + side, "border"} {
		v := cs.Get(name)
		if v == "" {
			continue
		}
		if strings.Contains(v, "none") {
			return 0
		}
		for _, part := range strings.Fields(v) {
			if w := style.ParseLength(part, width, fs, -1); w >= 0 {
				return w
			}
		}
	}
	return 0
}

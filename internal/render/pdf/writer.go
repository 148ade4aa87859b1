package pdf

import (
	"fmt"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/text"
)

// listContext represents an active list (ul/ol) while rendering
type listContext struct {
	ordered bool
	style   string // list-style-type
	counter int
}

// writer flows one fragment of rich markup into the current PDF page
type writer struct {
	pdf       *fpdf.Fpdf
	tr        func(string) string
	styles    *style.StyleEngine
	left      float64
	lists     []listContext
	lineStart bool
	// bottom margin of the last block, collapsed with the next block's top margin
	pendingGap float64
}

func (w *writer) walk(n *html.Node, parent style.ComputedStyle, underline bool) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data, parent, underline)
		return
	case html.ElementNode:
	default:
		return
	}

	cs := w.styles.Compute(n, parent)
	if cs.Get("display") == "none" {
		return
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Title, atom.Img:
		return
	case atom.Br:
		w.pdf.Ln(cs.LineHeight() * pxToPt)
		w.lineStart = true
		return
	case atom.Hr:
		w.newline(cs)
		y := w.pdf.GetY() + 4
		pageWidth, _ := w.pdf.GetPageSize()
		_, _, right, _ := w.pdf.GetMargins()
		w.pdf.SetDrawColor(160, 160, 160)
		w.pdf.Line(w.left, y, pageWidth-right, y)
		w.pdf.Ln(8)
		return
	}

	if strings.Contains(cs.Get("text-decoration"), "underline") {
		underline = true
	}

	block := isBlock(n)
	if !block {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c, cs, underline)
		}
		return
	}

	fs := cs.FontSize()
	mt, _, mb, _ := style.ParseBoxShorthand(cs.Get("margin"), 0, fs, 0)
	w.newline(cs)
	if gap := max(mt, w.pendingGap) * pxToPt; gap > 0 {
		w.pdf.Ln(gap)
	}
	w.pendingGap = 0

	indent := 0.0
	switch n.DataAtom {
	case atom.Ul, atom.Ol:
		indent = style.ParseLength(cs.Get("padding-left"), 0, fs, 40) * pxToPt
		w.lists = append(w.lists, listContext{
			ordered: n.DataAtom == atom.Ol,
			style:   cs.Get("list-style-type"),
		})
		defer func() { w.lists = w.lists[:len(w.lists)-1] }()
	case atom.Blockquote:
		indent = 30
	}
	if indent > 0 {
		w.left += indent
		w.pdf.SetLeftMargin(w.left)
		w.pdf.SetX(w.left)
		defer func() {
			w.left -= indent
			w.pdf.SetLeftMargin(w.left)
		}()
	}

	if n.DataAtom == atom.Li && len(w.lists) > 0 {
		w.marker(cs)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, cs, underline)
	}
	w.newline(cs)
	w.pendingGap = mb
}

// marker writes the bullet or number of a list item
func (w *writer) marker(cs style.ComputedStyle) {
	ctx := &w.lists[len(w.lists)-1]
	ctx.counter++

	var marker string
	switch {
	case ctx.style == "none":
		return
	case ctx.ordered && ctx.style == "lower-alpha":
		marker = toAlpha(ctx.counter, false) + "."
	case ctx.ordered && ctx.style == "upper-alpha":
		marker = toAlpha(ctx.counter, true) + "."
	case ctx.ordered:
		marker = fmt.Sprintf("%d.", ctx.counter)
	default:
		marker = "•"
	}

	size := cs.FontSize() * pxToPt
	w.pdf.SetFont("Helvetica", "", size)
	w.pdf.SetTextColor(0, 0, 0)
	width := w.pdf.GetStringWidth(w.tr(marker)) + size*0.4
	w.pdf.SetX(w.left - width)
	w.pdf.CellFormat(width, cs.LineHeight()*pxToPt, w.tr(marker), "", 0, "L", false, 0, "")
	w.pdf.SetX(w.left)
	w.lineStart = true
}

func (w *writer) text(s string, cs style.ComputedStyle, underline bool) {
	if !cs.PreservesWhitespace() {
		s = strings.Join(strings.Fields(s), " ") + trailingSpace(s)
		if strings.TrimSpace(s) != "" && startsWithSpace(s) {
			s = " " + s
		}
		if w.lineStart {
			s = strings.TrimLeft(s, " ")
		}
		if s == "" {
			return
		}
	}

	family, fontStyle := text.CoreFont(text.Font{
		Family: cs.Family(),
		Bold:   cs.Bold(),
		Italic: cs.Italic(),
	})
	if underline {
		fontStyle += "U"
	}
	w.pdf.SetFont(family, fontStyle, cs.FontSize()*pxToPt)
	c := parseColor(cs.Get("color"))
	w.pdf.SetTextColor(c[0], c[1], c[2])

	lh := cs.LineHeight() * pxToPt
	if cs.PreservesWhitespace() {
		for i, line := range strings.Split(s, "\n") {
			if i > 0 {
				w.pdf.Ln(lh)
			}
			w.pdf.Write(lh, w.tr(line))
		}
	} else {
		w.pdf.Write(lh, w.tr(s))
	}
	w.lineStart = false
}

// newline ends the current line if anything was written on it
func (w *writer) newline(cs style.ComputedStyle) {
	if w.lineStart {
		return
	}
	w.pdf.Ln(cs.LineHeight() * pxToPt)
	w.lineStart = true
}

func isBlock(n *html.Node) bool {
	switch n.DataAtom {
	case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Li, atom.Blockquote, atom.Pre, atom.Table, atom.Tr,
		atom.Section, atom.Article, atom.Header, atom.Footer:
		return true
	}
	return false
}

func startsWithSpace(s string) bool {
	return s != "" && strings.TrimLeft(s[:1], " \t\n\r\f") == ""
}

func trailingSpace(s string) string {
	if s != "" && strings.TrimRight(s[len(s)-1:], " \t\n\r\f") == "" && strings.TrimSpace(s) != "" {
		return " "
	}
	return ""
}

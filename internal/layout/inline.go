package layout

import (
	"math"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/text"
)

type runKind int

const (
	runText runKind = iota
	// runBreak is a <br>: it always ends the current line, even an empty one
	runBreak
	// runSoftBreak ends the current line only when it holds content
	runSoftBreak
	runImage
)

// inlineRun is a piece of inline content with the style it is drawn in
type inlineRun struct {
	kind   runKind
	text   string
	style  style.ComputedStyle
	width  float64
	height float64
}

// token is a measured word, space or break
type token struct {
	kind  runKind
	text  string
	font  text.Font
	width float64
	lh    float64
	space bool
}

// collectRuns flattens a sequence of inline siblings into styled runs
func (e *Engine) collectRuns(nodes []*html.Node, parent style.ComputedStyle) []inlineRun {
	var runs []inlineRun
	for _, n := range nodes {
		e.collectNode(n, parent, &runs)
	}
	return runs
}

func (e *Engine) collectNode(n *html.Node, parent style.ComputedStyle, out *[]inlineRun) {
	switch n.Type {
	case html.TextNode:
		if n.Data != "" {
			*out = append(*out, inlineRun{kind: runText, text: n.Data, style: parent})
		}
		return
	case html.ElementNode:
	default:
		return
	}

	cs := e.styles.Compute(n, parent)
	if isHidden(n, cs) {
		return
	}

	switch n.DataAtom {
	case atom.Br:
		*out = append(*out, inlineRun{kind: runBreak, style: cs})
		return
	case atom.Img:
		w, h := e.imageSize(n, cs)
		*out = append(*out, inlineRun{kind: runImage, style: cs, width: w, height: h})
		return
	}

	block := isBlock(n, cs)
	if block {
		*out = append(*out, inlineRun{kind: runSoftBreak, style: cs})
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.collectNode(c, cs, out)
	}
	if block {
		*out = append(*out, inlineRun{kind: runSoftBreak, style: cs})
	}
}

// isCollapsible reports whether r is white space that CSS collapses. NBSP is not.
func isCollapsible(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// tokenize splits runs into words and spaces and measures them
func (e *Engine) tokenize(runs []inlineRun) []token {
	var tokens []token
	for _, run := range runs {
		lh := run.style.LineHeight()
		font := text.Font{
			Family: run.style.Family(),
			Size:   run.style.FontSize(),
			Bold:   run.style.Bold(),
			Italic: run.style.Italic(),
		}

		switch run.kind {
		case runBreak, runSoftBreak:
			tokens = append(tokens, token{kind: run.kind, lh: lh})
			continue
		case runImage:
			tokens = append(tokens, token{kind: runImage, width: run.width, lh: math.Max(run.height, lh)})
			continue
		}

		if run.style.PreservesWhitespace() {
			lines := strings.Split(run.text, "\n")
			for i, line := range lines {
				if i > 0 {
					tokens = append(tokens, token{kind: runBreak, lh: lh})
				}
				for _, word := range splitWords(line, func(r rune) bool { return r == ' ' || r == '\t' }) {
					if word == "" {
						continue
					}
					tokens = append(tokens, e.word(word, font, lh, false))
				}
			}
			continue
		}

		for _, word := range splitWords(run.text, isCollapsible) {
			if strings.IndexFunc(word, func(r rune) bool { return !isCollapsible(r) }) < 0 {
				// adjacent spaces collapse across runs
				if len(tokens) > 0 && tokens[len(tokens)-1].space {
					continue
				}
				tokens = append(tokens, e.word(" ", font, lh, true))
				continue
			}
			tokens = append(tokens, e.word(word, font, lh, false))
		}
	}
	return tokens
}

func (e *Engine) word(s string, font text.Font, lh float64, space bool) token {
	return token{kind: runText, text: s, font: font, width: e.metrics.StringWidth(s, font), lh: lh, space: space}
}

// splitWords cuts s into alternating runs of separator and non-separator runes
func splitWords(s string, sep func(rune) bool) []string {
	var out []string
	start := 0
	inSep := false
	for i, r := range s {
		if i == 0 {
			inSep = sep(r)
			continue
		}
		if sep(r) != inSep {
			out = append(out, s[start:i])
			start = i
			inSep = !inSep
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// layoutLines breaks tokens greedily into lines of the given width and returns
// the summed line heights
func (e *Engine) layoutLines(runs []inlineRun, width float64) float64 {
	tokens := e.tokenize(runs)

	var (
		height     float64
		lineWidth  float64
		lineHeight float64
		hasContent bool
		spaceWidth float64
	)
	endLine := func(minHeight float64) {
		if lineHeight == 0 {
			lineHeight = minHeight
		}
		height += lineHeight
		lineWidth, lineHeight, spaceWidth = 0, 0, 0
		hasContent = false
	}
	place := func(w, lh float64) {
		if hasContent && lineWidth+spaceWidth+w > width {
			endLine(0)
		}
		if hasContent {
			lineWidth += spaceWidth
		}
		spaceWidth = 0
		lineWidth += w
		lineHeight = math.Max(lineHeight, lh)
		hasContent = true
	}

	for _, tk := range tokens {
		switch {
		case tk.kind == runBreak:
			endLine(tk.lh)
		case tk.kind == runSoftBreak:
			if hasContent {
				endLine(0)
			}
		case tk.space:
			if hasContent {
				spaceWidth = tk.width
			}
		case tk.kind == runImage:
			place(tk.width, tk.lh)
		case tk.width > width:
			for _, piece := range e.breakWord(tk, width) {
				place(piece.width, piece.lh)
			}
		default:
			place(tk.width, tk.lh)
		}
	}
	if hasContent {
		endLine(0)
	}
	return height
}

// breakWord cuts a word wider than the line into grapheme-aligned pieces that fit
func (e *Engine) breakWord(tk token, width float64) []token {
	var pieces []token
	var current strings.Builder
	var currentWidth float64

	g := uniseg.NewGraphemes(tk.text)
	for g.Next() {
		cluster := g.Str()
		w := e.metrics.StringWidth(cluster, tk.font)
		if current.Len() > 0 && currentWidth+w > width {
			pieces = append(pieces, token{kind: runText, text: current.String(), font: tk.font, width: currentWidth, lh: tk.lh})
			current.Reset()
			currentWidth = 0
		}
		current.WriteString(cluster)
		currentWidth += w
	}
	if current.Len() > 0 {
		pieces = append(pieces, token{kind: runText, text: current.String(), font: tk.font, width: currentWidth, lh: tk.lh})
	}
	return pieces
}

package style

import (
	"strconv"
	"strings"

	"github.com/gompdf/pageflow/internal/parser/css"
	xhtml "golang.org/x/net/html"
)

// Specificity represents the specificity of a CSS selector
type Specificity struct {
	ID      int
	Class   int
	Element int
}

// StyleProperty represents a computed style property
type StyleProperty struct {
	Name        string
	Value       string
	Important   bool
	Source      Source
	Specificity Specificity
}

// Source represents the origin of a style property
type Source int

const (
	SourceInherited Source = iota
	SourceUserAgent
	SourceAuthor
	SourceInline
)

// ComputedStyle represents the computed style for an element
type ComputedStyle map[string]StyleProperty

// Get returns the trimmed value of a property, or ""
func (s ComputedStyle) Get(name string) string {
	return strings.TrimSpace(s[name].Value)
}

// inherited lists the properties a child takes from its parent when it does not set them
var inherited = []string{
	"font-family", "font-size", "font-weight", "font-style",
	"line-height", "text-align", "color", "white-space", "list-style-type",
}

// StyleEngine handles the CSS cascade for editor markup
type StyleEngine struct {
	userAgentStyles *css.Stylesheet
	authorStyles    []*css.Stylesheet
	parser          *css.Parser
	root            ComputedStyle
}

// NewStyleEngine creates a new style engine with the editor's user-agent sheet
func NewStyleEngine() *StyleEngine {
	return &StyleEngine{
		userAgentStyles: defaultUserAgentStyles(),
		parser:          css.NewParser(),
		root:            DefaultRootStyle(16, "Arial"),
	}
}

// DefaultRootStyle is the style of an empty page body
func DefaultRootStyle(fontSize float64, family string) ComputedStyle {
	return ComputedStyle{
		"font-size":   {Name: "font-size", Value: formatPx(fontSize), Source: SourceUserAgent},
		"font-family": {Name: "font-family", Value: family, Source: SourceUserAgent},
		"line-height": {Name: "line-height", Value: "normal", Source: SourceUserAgent},
	}
}

// SetRootStyle replaces the style the unit root starts from
func (e *StyleEngine) SetRootStyle(root ComputedStyle) {
	e.root = root
}

// RootStyle returns the style of the unit root
func (e *StyleEngine) RootStyle() ComputedStyle {
	return e.root
}

// AddStylesheet adds an author stylesheet to the style engine
func (e *StyleEngine) AddStylesheet(stylesheet *css.Stylesheet) {
	e.authorStyles = append(e.authorStyles, stylesheet)
}

// ClearStylesheets removes every author stylesheet
func (e *StyleEngine) ClearStylesheets() {
	e.authorStyles = nil
}

// Compute returns the style of node given its parent's computed style.
// Font sizes are resolved to px so children can resolve em against them.
func (e *StyleEngine) Compute(node *xhtml.Node, parent ComputedStyle) ComputedStyle {
	if parent == nil {
		parent = e.root
	}
	style := make(ComputedStyle)
	for _, name := range inherited {
		if p, ok := parent[name]; ok {
			p.Source = SourceInherited
			p.Important = false
			p.Specificity = Specificity{}
			style[name] = p
		}
	}
	if node == nil || node.Type != xhtml.ElementNode {
		return style
	}

	e.applyStylesheet(style, node, e.userAgentStyles, SourceUserAgent)
	for _, sheet := range e.authorStyles {
		e.applyStylesheet(style, node, sheet, SourceAuthor)
	}
	e.applyPresentationalHints(style, node)
	e.applyInlineStyles(style, node)

	parentSize := parent.FontSize()
	if v := style.Get("font-size"); v != "" {
		size := ParseFontSize(v, parentSize)
		style["font-size"] = StyleProperty{Name: "font-size", Value: formatPx(size), Source: style["font-size"].Source}
	}
	return style
}

// applyStylesheet applies matching rules from a stylesheet to an element
func (e *StyleEngine) applyStylesheet(style ComputedStyle, node *xhtml.Node, sheet *css.Stylesheet, source Source) {
	if sheet == nil {
		return
	}
	for _, rule := range sheet.Rules {
		for _, selector := range rule.Selectors {
			if selectorMatches(node, selector) {
				e.applyDeclarations(style, rule.Declarations, calculateSpecificity(selector), source)
			}
		}
	}
}

// applyPresentationalHints maps legacy <font> attributes produced by execCommand-style editing
func (e *StyleEngine) applyPresentationalHints(style ComputedStyle, node *xhtml.Node) {
	if node.Data != "font" {
		return
	}
	var decls []*css.Declaration
	for _, a := range node.Attr {
		switch strings.ToLower(a.Key) {
		case "face":
			decls = append(decls, &css.Declaration{Property: "font-family", Value: a.Val})
		case "color":
			decls = append(decls, &css.Declaration{Property: "color", Value: a.Val})
		case "size":
			if px, ok := legacyFontSizes[strings.TrimSpace(a.Val)]; ok {
				decls = append(decls, &css.Declaration{Property: "font-size", Value: px})
			}
		}
	}
	e.applyDeclarations(style, decls, Specificity{}, SourceAuthor)
}

var legacyFontSizes = map[string]string{
	"1": "10px", "2": "13px", "3": "16px", "4": "18px", "5": "24px", "6": "32px", "7": "48px",
}

// applyInlineStyles applies the style attribute of an element
func (e *StyleEngine) applyInlineStyles(style ComputedStyle, node *xhtml.Node) {
	for _, attr := range node.Attr {
		if strings.EqualFold(attr.Key, "style") {
			e.applyDeclarations(style, e.parser.ParseInline(attr.Val), Specificity{ID: 1}, SourceInline)
		}
	}
}

// applyDeclarations applies declarations in order; a later one wins unless the
// existing one is important, more specific, or from a stronger origin
func (e *StyleEngine) applyDeclarations(style ComputedStyle, declarations []*css.Declaration, specificity Specificity, source Source) {
	for _, decl := range declarations {
		existing, exists := style[decl.Property]
		if exists && existing.Source != SourceInherited {
			if existing.Important && !decl.Important {
				continue
			}
			if existing.Important == decl.Important {
				if source < existing.Source {
					continue
				}
				if source == existing.Source && compareSpecificity(specificity, existing.Specificity) < 0 {
					continue
				}
			}
		}
		style[decl.Property] = StyleProperty{
			Name:        decl.Property,
			Value:       decl.Value,
			Important:   decl.Important,
			Source:      source,
			Specificity: specificity,
		}
	}
}

// selectorMatches checks descendant selectors made of compound parts
func selectorMatches(node *xhtml.Node, selector string) bool {
	parts := strings.Fields(selector)
	if len(parts) == 0 || node == nil {
		return false
	}
	if !matchCompoundSelector(node, parts[len(parts)-1]) {
		return false
	}

	current := node.Parent
	for i := len(parts) - 2; i >= 0; i-- {
		found := false
		for anc := current; anc != nil; anc = anc.Parent {
			if anc.Type == xhtml.ElementNode && matchCompoundSelector(anc, parts[i]) {
				found = true
				current = anc.Parent
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchCompoundSelector matches tag, #id and .class parts of one compound selector
func matchCompoundSelector(node *xhtml.Node, sel string) bool {
	if node == nil || node.Type != xhtml.ElementNode || sel == "" {
		return false
	}

	var wantTag, wantID string
	var wantClasses []string

	i := 0
	if sel[0] != '.' && sel[0] != '#' {
		j := strings.IndexAny(sel, "#.")
		if j < 0 {
			j = len(sel)
		}
		wantTag = sel[:j]
		i = j
	}
	for i < len(sel) {
		kind := sel[i]
		if kind != '#' && kind != '.' {
			return false
		}
		j := i + 1
		for j < len(sel) && sel[j] != '.' && sel[j] != '#' {
			j++
		}
		if kind == '#' {
			wantID = sel[i+1 : j]
		} else {
			wantClasses = append(wantClasses, sel[i+1:j])
		}
		i = j
	}

	if wantTag != "" && wantTag != "*" && !strings.EqualFold(wantTag, node.Data) {
		return false
	}

	var id, class string
	for _, attr := range node.Attr {
		switch attr.Key {
		case "id":
			id = attr.Val
		case "class":
			class = attr.Val
		}
	}
	if wantID != "" && wantID != id {
		return false
	}
	have := strings.Fields(class)
	for _, need := range wantClasses {
		found := false
		for _, c := range have {
			if c == need {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// calculateSpecificity calculates the specificity of a selector
func calculateSpecificity(selector string) Specificity {
	s := Specificity{
		ID:    strings.Count(selector, "#"),
		Class: strings.Count(selector, "."),
	}
	for _, part := range strings.Fields(selector) {
		if part[0] != '#' && part[0] != '.' && part[0] != '*' {
			s.Element++
		}
	}
	return s
}

func compareSpecificity(a, b Specificity) int {
	if a.ID != b.ID {
		return a.ID - b.ID
	}
	if a.Class != b.Class {
		return a.Class - b.Class
	}
	return a.Element - b.Element
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// defaultUserAgentStyles mirrors the browser defaults a rich-text editor body relies on
func defaultUserAgentStyles() *css.Stylesheet {
	sheet, _ := css.NewParser().ParseString(`
		h1 { font-size: 2em; font-weight: bold; margin: 0.67em 0; }
		h2 { font-size: 1.5em; font-weight: bold; margin: 0.83em 0; }
		h3 { font-size: 1.17em; font-weight: bold; margin: 1em 0; }
		h4 { font-weight: bold; margin: 1.33em 0; }
		h5 { font-size: 0.83em; font-weight: bold; margin: 1.67em 0; }
		h6 { font-size: 0.67em; font-weight: bold; margin: 2.33em 0; }
		p { margin: 1em 0; }
		ul, ol { margin: 1em 0; padding-left: 40px; }
		li ul, li ol { margin: 0; }
		blockquote { margin: 1em 40px; }
		b, strong { font-weight: bold; }
		i, em { font-style: italic; }
		u, ins { text-decoration: underline; }
		a { text-decoration: underline; color: #0000ee; }
		s, strike, del { text-decoration: line-through; }
		pre { font-family: monospace; white-space: pre; margin: 1em 0; }
		code { font-family: monospace; }
		hr { margin: 0.5em 0; border-top-width: 1px; }
	`)
	return sheet
}

// Package importer turns HTML, Markdown and plain-text documents into one
// stream of page markup. The stream is placed on the first page and the
// pagination engine cascades it over as many pages as it needs.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"log"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	htmlparser "github.com/gompdf/pageflow/internal/parser/html"
	"github.com/gompdf/pageflow/internal/res"
)

// ErrUnsupported is returned for resources the importer cannot turn into markup
var ErrUnsupported = errors.New("unsupported document kind")

// Document is an imported document
type Document struct {
	Title   string
	Header  string
	Footer  string
	Content string
	// Author stylesheets in source order
	Stylesheets []string
}

// Frontmatter is the optional YAML block at the top of a Markdown document
type Frontmatter struct {
	Title  string `yaml:"title"`
	Header string `yaml:"header"`
	Footer string `yaml:"footer"`
}

// Import converts a loaded resource according to its kind. loader resolves
// stylesheets linked from HTML and may be nil.
func Import(r *res.Resource, loader *res.Loader) (*Document, error) {
	switch r.Kind {
	case res.KindHTML:
		return HTML(r.Reader(), loader)
	case res.KindMarkdown:
		return Markdown(r.Data)
	case res.KindText:
		return Text(r.String()), nil
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupported, r.Kind, r.URL)
	}
}

// HTML imports a full document or a fragment. The body becomes the content;
// top-level <header> and <footer> elements become the shared header and footer.
func HTML(r io.Reader, loader *res.Loader) (*Document, error) {
	doc, err := xhtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	out := &Document{Stylesheets: collectStylesheets(doc, loader)}
	if title := htmlparser.FindElement(doc, atom.Title); title != nil {
		out.Title = strings.TrimSpace(htmlparser.TextContent(title))
	}

	body := htmlparser.FindElement(doc, atom.Body)
	if body == nil {
		return out, nil
	}
	stripElements(body, atom.Script, atom.Style, atom.Noscript, atom.Template)

	for c := body.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.DataAtom {
		case atom.Header, atom.Footer:
			markup, err := htmlparser.RenderChildren(c)
			if err != nil {
				return nil, fmt.Errorf("failed to render %s: %w", c.Data, err)
			}
			if c.DataAtom == atom.Header {
				out.Header = normalize(markup)
			} else {
				out.Footer = normalize(markup)
			}
			body.RemoveChild(c)
		}
		c = next
	}

	markup, err := htmlparser.RenderChildren(body)
	if err != nil {
		return nil, fmt.Errorf("failed to render body: %w", err)
	}
	out.Content = normalize(markup)
	return out, nil
}

// collectStylesheets returns the <style> blocks and the linked stylesheets
// of a document in source order
func collectStylesheets(n *xhtml.Node, loader *res.Loader) []string {
	var styles []string

	var walk func(*xhtml.Node)
	walk = func(cur *xhtml.Node) {
		if cur.Type == xhtml.ElementNode {
			switch cur.DataAtom {
			case atom.Link:
				rel, _ := htmlparser.Attr(cur, "rel")
				href, _ := htmlparser.Attr(cur, "href")
				if href == "" || loader == nil || !strings.Contains(strings.ToLower(rel), "stylesheet") {
					break
				}
				if sheet, err := loader.LoadCSS(href); err == nil {
					styles = append(styles, sheet.String())
				} else {
					log.Printf("[Import] failed to load stylesheet %s: %v", href, err)
				}
			case atom.Style:
				if css := strings.TrimSpace(htmlparser.TextContent(cur)); css != "" {
					styles = append(styles, css)
				}
			}
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return styles
}

func stripElements(n *xhtml.Node, atoms ...atom.Atom) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		drop := false
		for _, a := range atoms {
			if c.DataAtom == a {
				drop = true
				break
			}
		}
		if drop {
			n.RemoveChild(c)
		} else {
			stripElements(c, atoms...)
		}
		c = next
	}
}

// Markdown imports a GitHub-flavored Markdown document with optional YAML
// frontmatter naming the title, header and footer
func Markdown(src []byte) (*Document, error) {
	fm, body, err := extractFrontmatter(src)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(goldhtml.WithUnsafe()),
	)
	convert := func(s []byte) (string, error) {
		var buf bytes.Buffer
		if err := md.Convert(s, &buf); err != nil {
			return "", fmt.Errorf("failed to convert Markdown: %w", err)
		}
		return normalize(strings.TrimSpace(buf.String())), nil
	}

	out := &Document{Title: fm.Title}
	if out.Content, err = convert(body); err != nil {
		return nil, err
	}
	if fm.Header != "" {
		if out.Header, err = convert([]byte(fm.Header)); err != nil {
			return nil, err
		}
	}
	if fm.Footer != "" {
		if out.Footer, err = convert([]byte(fm.Footer)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func extractFrontmatter(content []byte) (*Frontmatter, []byte, error) {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return &Frontmatter{}, content, nil
	}

	end := bytes.Index(content[4:], []byte("\n---\n"))
	if end == -1 {
		return nil, nil, fmt.Errorf("unclosed frontmatter")
	}

	var fm Frontmatter
	if err := yaml.Unmarshal(content[4:4+end], &fm); err != nil {
		return nil, nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	return &fm, content[4+end+5:], nil
}

// Text imports plain text. Blank lines separate paragraphs and single
// newlines become line breaks.
func Text(s string) *Document {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var b strings.Builder
	for _, para := range strings.Split(s, "\n\n") {
		para = strings.Trim(para, "\n")
		if strings.TrimSpace(para) == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(line)
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>")
	}
	return &Document{Content: normalize(b.String())}
}

func normalize(s string) string {
	return norm.NFC.String(s)
}

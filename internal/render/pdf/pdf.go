package pdf

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gompdf/pageflow/internal/parser/css"
	htmlparser "github.com/gompdf/pageflow/internal/parser/html"
	"github.com/gompdf/pageflow/internal/pagestore"
	"github.com/gompdf/pageflow/internal/style"
)

// pxToPt converts CSS pixels at 96 DPI to PDF points
const pxToPt = 72.0 / 96.0

// PageSize represents a page size in points (1/72 inch)
type PageSize struct {
	Width  float64
	Height float64
	Name   string
}

// Standard page sizes in points
var (
	PageSizeA4     = PageSize{Width: 595.28, Height: 841.89, Name: "A4"}
	PageSizeLetter = PageSize{Width: 612.00, Height: 792.00, Name: "Letter"}
	PageSizeLegal  = PageSize{Width: 612.00, Height: 1008.00, Name: "Legal"}
	PageSizeA3     = PageSize{Width: 841.89, Height: 1190.55, Name: "A3"}
	PageSizeA5     = PageSize{Width: 419.53, Height: 595.28, Name: "A5"}
)

// Margins represents page margins in points
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Renderer exports a paginated document to PDF: one PDF page per document
// page, with the shared header and footer drawn on every page
type Renderer struct {
	PageSize PageSize
	Margins  Margins
	// Compress enables stream compression
	Compress bool
	// Debug enables verbose logging
	Debug bool

	styles *style.StyleEngine
}

// RenderOptions contains options for rendering
type RenderOptions struct {
	Title       string
	Author      string
	Subject     string
	Keywords    string
	Creator     string
	Producer    string
	Orientation string // "P" for portrait, "L" for landscape
}

// NewRenderer creates a renderer for A4 pages with the editor's 72px margins
func NewRenderer() *Renderer {
	return &Renderer{
		PageSize: PageSizeA4,
		Margins:  Margins{Top: 54, Right: 54, Bottom: 54, Left: 54},
		Compress: true,
		styles:   style.NewStyleEngine(),
	}
}

// AddStylesheet adds author CSS applied to page, header and footer markup
func (r *Renderer) AddStylesheet(source string) error {
	sheet, err := css.NewParser().ParseString(source)
	if err != nil {
		return fmt.Errorf("failed to parse stylesheet: %w", err)
	}
	r.styles.AddStylesheet(sheet)
	return nil
}

// SetRootFont sets the font unstyled markup is written in
func (r *Renderer) SetRootFont(size float64, family string) {
	r.styles.SetRootStyle(style.DefaultRootStyle(size, family))
}

// Render writes the pages as a PDF document to w
func (r *Renderer) Render(w io.Writer, pages []pagestore.Page, options RenderOptions) error {
	orient := options.Orientation
	if orient == "" {
		orient = "P"
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orient,
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: r.PageSize.Width, Ht: r.PageSize.Height},
	})
	pdf.SetCompression(r.Compress)
	pdf.SetMargins(r.Margins.Left, r.Margins.Top, r.Margins.Right)
	pdf.SetAutoPageBreak(true, r.Margins.Bottom)
	pdf.SetTitle(options.Title, true)
	pdf.SetAuthor(options.Author, true)
	pdf.SetSubject(options.Subject, true)
	pdf.SetKeywords(options.Keywords, true)
	pdf.SetCreator(options.Creator, true)
	pdf.SetProducer(options.Producer, true)
	pdf.SetFont("Helvetica", "", 12)

	var header, footer string
	if len(pages) > 0 {
		header, footer = pages[0].Header, pages[0].Footer
	}
	pdf.SetHeaderFuncMode(func() {
		if pagestore.IsEmptyContent(header) {
			return
		}
		pdf.SetY(r.Margins.Top / 3)
		r.writeMarkup(pdf, header)
	}, true)
	pdf.SetFooterFunc(func() {
		if pagestore.IsEmptyContent(footer) {
			return
		}
		pdf.SetY(-r.Margins.Bottom * 2 / 3)
		r.writeMarkup(pdf, footer)
	})

	if r.Debug {
		log.Printf("[PDF] rendering %d pages", len(pages))
	}
	for _, page := range pages {
		pdf.AddPage()
		r.writeMarkup(pdf, page.Content)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// RenderFile renders pages to a PDF file, creating its directory if needed
func (r *Renderer) RenderFile(pages []pagestore.Page, outputPath string, options RenderOptions) error {
	outputDir := filepath.Dir(outputPath)
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := r.Render(f, pages, options); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (r *Renderer) writeMarkup(pdf *fpdf.Fpdf, markup string) {
	if strings.TrimSpace(markup) == "" {
		return
	}
	nodes, err := htmlparser.NewParser().ParseFragment(markup)
	if err != nil {
		log.Printf("[PDF] failed to parse page content: %v", err)
		return
	}
	w := &writer{
		pdf:       pdf,
		tr:        pdf.UnicodeTranslatorFromDescriptor(""),
		styles:    r.styles,
		left:      r.Margins.Left,
		lineStart: true,
	}
	root := r.styles.RootStyle()
	for _, n := range nodes {
		w.walk(n, root, false)
	}
	w.newline(root)
}

// parseColor parses a CSS color value
func parseColor(value string) [3]int {
	value = strings.TrimSpace(strings.ToLower(value))
	if strings.HasPrefix(value, "#") {
		if r, g, b, ok := parseHexColor(value); ok {
			return [3]int{r, g, b}
		}
	}
	if c, ok := namedColors[value]; ok {
		return c
	}

	var r, g, b int
	if _, err := fmt.Sscanf(value, "rgb(%d,%d,%d)", &r, &g, &b); err == nil {
		return [3]int{r, g, b}
	}
	if _, err := fmt.Sscanf(value, "rgb(%d, %d, %d)", &r, &g, &b); err == nil {
		return [3]int{r, g, b}
	}

	return [3]int{0, 0, 0}
}

var namedColors = map[string][3]int{
	"black": {0, 0, 0}, "white": {255, 255, 255}, "red": {255, 0, 0},
	"green": {0, 128, 0}, "blue": {0, 0, 255}, "gray": {128, 128, 128},
	"grey": {128, 128, 128}, "orange": {255, 165, 0}, "purple": {128, 0, 128},
}

// parseHexColor parses #RRGGBB or #RGB into r,g,b
func parseHexColor(s string) (int, int, int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 6:
		if rv, err := strconv.ParseUint(s[0:2], 16, 8); err == nil {
			if gv, err := strconv.ParseUint(s[2:4], 16, 8); err == nil {
				if bv, err := strconv.ParseUint(s[4:6], 16, 8); err == nil {
					return int(rv), int(gv), int(bv), true
				}
			}
		}
	case 3:
		r := string([]byte{s[0], s[0]})
		g := string([]byte{s[1], s[1]})
		b := string([]byte{s[2], s[2]})
		if rv, err := strconv.ParseUint(r, 16, 8); err == nil {
			if gv, err := strconv.ParseUint(g, 16, 8); err == nil {
				if bv, err := strconv.ParseUint(b, 16, 8); err == nil {
					return int(rv), int(gv), int(bv), true
				}
			}
		}
	}
	return 0, 0, 0, false
}

// toAlpha converts 1-based index to alphabetic sequence (a..z, aa..zz, ...)
func toAlpha(n int, upper bool) string {
	if n <= 0 {
		return ""
	}
	letters := []rune{}
	for n > 0 {
		n--
		rem := n % 26
		ch := rune('a' + rem)
		if upper {
			ch = rune('A' + rem)
		}
		letters = append([]rune{ch}, letters...)
		n /= 26
	}
	return string(letters)
}

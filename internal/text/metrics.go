package text

import (
	"strings"
	"sync"

	"codeberg.org/go-pdf/fpdf"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/encoding/charmap"
)

// Font describes the face a run of text is measured with
type Font struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// Metrics measures the advance width of a string
type Metrics interface {
	StringWidth(s string, font Font) float64
}

// PDFMetrics measures text with the core PDF fonts' width tables.
// Non-core families fall back to Helvetica. Runes the core fonts' cp1252
// encoding cannot represent, such as CJK, are measured as cells.
type PDFMetrics struct {
	once      sync.Once
	mu        sync.Mutex
	pdf       *fpdf.Fpdf
	translate func(string) string
}

// NewPDFMetrics creates font metrics backed by fpdf
func NewPDFMetrics() *PDFMetrics {
	return &PDFMetrics{}
}

func (m *PDFMetrics) init() {
	m.pdf = fpdf.New("P", "pt", "", "")
	m.pdf.SetFont("Helvetica", "", 12)
	m.translate = m.pdf.UnicodeTranslatorFromDescriptor("")
}

// StringWidth returns the width of s in the same unit as font.Size
func (m *PDFMetrics) StringWidth(s string, font Font) float64 {
	if s == "" || font.Size <= 0 {
		return 0
	}
	m.once.Do(m.init)
	m.mu.Lock()
	defer m.mu.Unlock()

	family, style := CoreFont(font)
	m.pdf.SetFont(family, style, font.Size)

	var (
		width float64
		run   strings.Builder
	)
	flush := func() {
		if run.Len() > 0 {
			width += m.pdf.GetStringWidth(m.translate(run.String()))
			run.Reset()
		}
	}
	for _, r := range s {
		if _, ok := charmap.Windows1252.EncodeRune(r); ok {
			run.WriteRune(r)
			continue
		}
		flush()
		width += cellWidth(runewidth.RuneWidth(r), font)
	}
	flush()
	return width
}

// CoreFont maps a CSS family to one of the core PDF fonts plus an fpdf style string
func CoreFont(font Font) (string, string) {
	family := "Helvetica"
	switch strings.ToLower(font.Family) {
	case "times", "times new roman", "serif", "georgia", "garamond",
		"palatino linotype", "bookman old style", "merriweather",
		"playfair display", "crimson text":
		family = "Times"
	case "courier", "courier new", "monospace":
		family = "Courier"
	}
	style := ""
	if font.Bold {
		style += "B"
	}
	if font.Italic {
		style += "I"
	}
	return family, style
}

// CellMetrics approximates a monospace face: every terminal cell is 0.6em wide
// and East Asian wide runes take two cells
type CellMetrics struct{}

// StringWidth returns the width of s in the same unit as font.Size
func (CellMetrics) StringWidth(s string, font Font) float64 {
	return cellWidth(runewidth.StringWidth(s), font)
}

func cellWidth(cells int, font Font) float64 {
	return float64(cells) * font.Size * 0.6
}

package layout

import (
	"fmt"
	"log"
	"sync"

	"golang.org/x/net/html"

	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/parser/css"
	"github.com/gompdf/pageflow/internal/style"
	"github.com/gompdf/pageflow/internal/text"
)

// Options represents options for the layout engine
type Options struct {
	// Width of the page body's content box
	Width float64
	// Root font of an unstyled page body
	FontSize   float64
	FontFamily string
	LineHeight string
	Debug      bool
}

// DefaultOptions returns an A4 body at 96 DPI with 72px side padding
func DefaultOptions() Options {
	return Options{
		Width:      650,
		FontSize:   16,
		FontFamily: "Arial",
		LineHeight: "normal",
	}
}

// Engine lays out a content unit's tree to find how tall it renders
type Engine struct {
	options Options
	metrics text.Metrics
	styles  *style.StyleEngine

	imageMu    sync.Mutex
	images     ImageLoader
	intrinsics map[string]intrinsic
}

// NewEngine creates a new layout engine measuring text with metrics
func NewEngine(metrics text.Metrics) *Engine {
	if metrics == nil {
		metrics = text.NewPDFMetrics()
	}
	e := &Engine{
		metrics: metrics,
		styles:  style.NewStyleEngine(),
	}
	e.SetOptions(DefaultOptions())
	return e
}

// SetOptions sets the options for the layout engine
func (e *Engine) SetOptions(options Options) {
	if options.FontSize <= 0 {
		options.FontSize = 16
	}
	if options.FontFamily == "" {
		options.FontFamily = "Arial"
	}
	e.options = options

	root := style.DefaultRootStyle(options.FontSize, options.FontFamily)
	if options.LineHeight != "" {
		root["line-height"] = style.StyleProperty{Name: "line-height", Value: options.LineHeight, Source: style.SourceUserAgent}
	}
	e.styles.SetRootStyle(root)
}

// Options returns the current options
func (e *Engine) Options() Options {
	return e.options
}

// AddStylesheet adds author CSS that applies to every measured unit
func (e *Engine) AddStylesheet(source string) error {
	sheet, err := css.NewParser().ParseString(source)
	if err != nil {
		return fmt.Errorf("failed to parse stylesheet: %w", err)
	}
	e.styles.AddStylesheet(sheet)
	return nil
}

// ClearStylesheets removes all author CSS
func (e *Engine) ClearStylesheets() {
	e.styles.ClearStylesheets()
}

// MeasureHeight returns the height the unit's children occupy
func (e *Engine) MeasureHeight(u content.Unit) float64 {
	if d, ok := u.(*content.DOMUnit); ok {
		return e.MeasureNode(d.Root())
	}
	d, err := content.NewDOMUnitFromHTML(u.HTML())
	if err != nil {
		return 0
	}
	return e.MeasureNode(d.Root())
}

// MeasureNode returns the height of the children of root laid out in the body width
func (e *Engine) MeasureNode(root *html.Node) float64 {
	h := e.layoutBlockChildren(root, e.styles.RootStyle(), e.options.Width)
	if e.options.Debug {
		log.Printf("[Layout] measured %.2f at width %.2f", h, e.options.Width)
	}
	return h
}

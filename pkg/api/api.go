package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/importer"
	"github.com/gompdf/pageflow/internal/layout"
	"github.com/gompdf/pageflow/internal/pagestore"
	"github.com/gompdf/pageflow/internal/pagination"
	"github.com/gompdf/pageflow/internal/render/pdf"
	"github.com/gompdf/pageflow/internal/res"
	"github.com/gompdf/pageflow/internal/text"
)

// Domain types shared with the internal packages
type (
	Page        = pagestore.Page
	Region      = pagestore.Region
	State       = pagination.State
	Stats       = pagination.Stats
	Mode        = pagination.Mode
	Command     = pagination.Command
	CommandKind = pagination.CommandKind
	Formatter   = pagination.Formatter
	NodePath    = content.NodePath
)

const (
	RegionHeader = pagestore.RegionHeader
	RegionFooter = pagestore.RegionFooter
)

// pxToPt converts CSS pixels to PDF points
const pxToPt = 72.0 / 96.0

// ErrNotRendered is returned when a cursor names a page without a live unit
var ErrNotRendered = errors.New("page is not rendered")

// Document is a paginated rich-text document. It drives the pagination
// engine with a virtual-time queue: every mutating call runs the deferred
// passes it caused before returning, so callers always observe a settled
// page sequence. A Document is safe for concurrent use.
type Document struct {
	mu sync.Mutex

	options Options
	store   *pagestore.Store
	surface *pagination.DOMSurface
	queue   *pagination.Queue
	layout  *layout.Engine
	engine  *pagination.Engine
	loader  *res.Loader

	// stylesheets of the imported document
	stylesheets []string
	title       string
	now         func() time.Time
}

// New creates an empty document with default options
func New(opts ...Option) *Document {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return NewWithOptions(options)
}

// NewWithOptions creates an empty document with the specified options
func NewWithOptions(options Options) *Document {
	d := &Document{
		options: options,
		store:   pagestore.New(),
		surface: pagination.NewDOMSurface(),
		queue:   pagination.NewQueue(),
		loader:  res.NewLoader(""),
		now:     time.Now,
	}
	d.store.SetDebug(options.Debug)
	d.surface.Debug = options.Debug
	for _, path := range options.ResourcePaths {
		d.loader.AddSearchPath(path)
	}

	d.layout = layout.NewEngine(text.NewPDFMetrics())
	d.layout.SetOptions(layout.Options{
		Width:      options.BodyWidth(),
		FontSize:   options.FontSize,
		FontFamily: options.FontFamily,
		LineHeight: options.LineHeight,
		Debug:      options.Debug,
	})
	d.resetStyles()

	d.queue.OnLayout(func() { d.surface.Render(d.store.Pages()) })
	d.engine = pagination.NewEngine(d.store, d.surface, d.layout, d.queue, d.paginationOptions())
	return d
}

func (d *Document) paginationOptions() pagination.Options {
	o := pagination.DefaultOptions()
	o.ContentMaxHeight = d.options.ContentMaxHeight
	o.Tolerance = d.options.Tolerance
	o.MinSplitLength = d.options.MinSplitLength
	o.SplitRatio = d.options.SplitRatio
	o.MaxDepth = d.options.MaxDepth
	o.NewPageDelay = d.options.NewPageDelay
	o.CascadeDelay = d.options.CascadeDelay
	o.Debug = d.options.Debug
	return o
}

// Options returns the document options
func (d *Document) Options() Options {
	return d.options
}

// Pages returns a copy of the page sequence
func (d *Document) Pages() []Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Pages()
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Len()
}

// State returns the editing state
func (d *Document) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.State()
}

// Stats returns the pagination counters
func (d *Document) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.Stats()
}

// Title returns the configured title, or the title of the imported document
func (d *Document) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.options.Title != "" {
		return d.options.Title
	}
	return d.title
}

// SetContent replaces the content of a page as an edit would
func (d *Document) SetContent(pageIndex int, markup string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine.OnContentChanged(pageIndex, markup)
	d.settle()
}

// SetHeaderFooter replaces the shared header or footer of every page
func (d *Document) SetHeaderFooter(which Region, markup string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine.OnHeaderFooterChanged(which, markup)
}

// SetCurrentPage focuses a page
func (d *Document) SetCurrentPage(index int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.SetCurrentPage(index)
}

// InsertPageBreak splits a page at the caret given by a node path and offset
// inside the page and returns the index of the new page. A nil path inserts
// an empty page after pageIndex.
func (d *Document) InsertPageBreak(pageIndex int, path NodePath, offset int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var cursor *content.Range
	if path != nil {
		c, _, err := d.cursor(pageIndex, path, offset)
		if err != nil {
			return 0, err
		}
		cursor = c
	}
	at, ok := d.engine.InsertPageBreak(pageIndex, cursor)
	if !ok {
		return 0, fmt.Errorf("%w: page %d", ErrNotRendered, pageIndex+1)
	}
	d.settle()
	return at, nil
}

// DeletePage removes a page unless it is the only one
func (d *Document) DeletePage(index int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.DeletePage(index)
}

// OnEnter reports whether Enter at the caret started a new page
func (d *Document) OnEnter(pageIndex int, path NodePath, offset int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cursor, unit, err := d.cursor(pageIndex, path, offset)
	if err != nil {
		return false, err
	}
	bottom, err := d.caretBottom(unit, path, offset)
	if err != nil {
		return false, err
	}
	broke := d.engine.OnEnter(pageIndex, cursor, bottom)
	d.settle()
	return broke, nil
}

// OnTab indents (or outdents) the list item at the caret. It reports whether
// the caret was inside a list.
func (d *Document) OnTab(pageIndex int, path NodePath, offset int, outdent bool) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cursor, _, err := d.cursor(pageIndex, path, offset)
	if err != nil {
		return false, err
	}
	d.engine.SetCurrentPage(pageIndex)
	handled, err := d.engine.OnTab(cursor, outdent)
	d.settle()
	return handled, err
}

// SetFormatter attaches the collaborator executing formatting commands
func (d *Document) SetFormatter(f Formatter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine.SetFormatter(f)
}

// ApplyFormatting runs a formatting command on the focused page or region
func (d *Document) ApplyFormatting(cmd Command) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.surface.Render(d.store.Pages())
	err := d.engine.ApplyFormatting(cmd)
	d.settle()
	return err
}

// EnterHeaderFooter starts editing the shared header or footer. Pagination is
// suspended until ExitHeaderFooter.
func (d *Document) EnterHeaderFooter(which Region) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.EnterHeaderFooter(which)
}

// ExitHeaderFooter returns to page editing and resumes pagination
func (d *Document) ExitHeaderFooter() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine.ExitHeaderFooter()
	d.settle()
}

// LoadPages replaces the document with pages and paginates them
func (d *Document) LoadPages(pages []Page) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine.Load(pages)
	d.settle()
}

// LoadSnapshot replaces the document with a saved snapshot. A malformed
// snapshot leaves a single empty page and returns the error.
func (d *Document) LoadSnapshot(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.engine.LoadSnapshot(data)
	d.settle()
	return err
}

// Snapshot encodes the document with trailing empty pages trimmed
func (d *Document) Snapshot() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Snapshot(d.now()).Encode()
}

// SaveSnapshot writes the snapshot to a file
func (d *Document) SaveSnapshot(path string) error {
	data, err := d.Snapshot()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Reset replaces the document with a single empty page
func (d *Document) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine.Reset()
	d.resetStyles()
	d.title = ""
	d.settle()
}

// Import replaces the document with an HTML, Markdown, plain-text or
// snapshot resource given as a file path, http(s) URL or data: URI
func (d *Document) Import(ref string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.loader.BaseURL = ref
	d.loader.Forget(ref)
	r, err := d.loader.Load(ref)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", ref, err)
	}

	if r.Kind == res.KindSnapshot {
		err := d.engine.LoadSnapshot(r.Data)
		d.resetStyles()
		d.title = ""
		d.settle()
		return err
	}

	doc, err := importer.Import(r, d.loader)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", ref, err)
	}
	d.applyImport(doc)
	return nil
}

// ImportMarkup replaces the document with imported HTML
func (d *Document) ImportMarkup(markup string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, err := importer.HTML(bytes.NewReader([]byte(markup)), d.loader)
	if err != nil {
		return err
	}
	d.applyImport(doc)
	return nil
}

// resetStyles drops the stylesheets of a previous import
func (d *Document) resetStyles() {
	d.stylesheets = nil
	d.layout.ClearStylesheets()
	// image sources resolve against the loader's current base
	d.layout.SetImageLoader(d.loader)
	if d.options.Stylesheet == "" {
		return
	}
	if err := d.layout.AddStylesheet(d.options.Stylesheet); err != nil {
		log.Printf("[Document] %v", err)
	}
}

func (d *Document) applyImport(doc *importer.Document) {
	d.resetStyles()
	for _, sheet := range doc.Stylesheets {
		if err := d.layout.AddStylesheet(sheet); err != nil {
			log.Printf("[Document] %v", err)
		}
	}
	d.stylesheets = doc.Stylesheets
	d.title = doc.Title

	if d.options.Debug {
		log.Printf("[Document] imported %d bytes of markup", len(doc.Content))
	}
	d.engine.Load([]Page{{ID: 1, Content: doc.Content, Header: doc.Header, Footer: doc.Footer}})
	d.settle()
}

// ExportPDF writes the document as PDF, one PDF page per page
func (d *Document) ExportPDF(w io.Writer) error {
	d.mu.Lock()
	renderer, options := d.renderer()
	pages := d.store.Pages()
	d.mu.Unlock()

	if err := renderer.Render(w, pages, options); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

// ExportPDFFile writes the document as a PDF file
func (d *Document) ExportPDFFile(path string) error {
	d.mu.Lock()
	renderer, options := d.renderer()
	pages := d.store.Pages()
	d.mu.Unlock()

	if err := renderer.RenderFile(pages, path, options); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}

func (d *Document) renderer() (*pdf.Renderer, pdf.RenderOptions) {
	r := pdf.NewRenderer()
	r.Debug = d.options.Debug
	r.PageSize = pdf.PageSize{
		Width:  d.options.PageWidth * pxToPt,
		Height: d.options.PageHeight * pxToPt,
	}
	r.Margins = pdf.Margins{
		Top:    d.options.MarginTop * pxToPt,
		Right:  d.options.MarginRight * pxToPt,
		Bottom: d.options.MarginBottom * pxToPt,
		Left:   d.options.MarginLeft * pxToPt,
	}
	r.SetRootFont(d.options.FontSize, d.options.FontFamily)
	for _, sheet := range append([]string{d.options.Stylesheet}, d.stylesheets...) {
		if sheet == "" {
			continue
		}
		if err := r.AddStylesheet(sheet); err != nil {
			log.Printf("[Document] %v", err)
		}
	}

	orientation := "P"
	if d.options.PageOrientation == PageOrientationLandscape {
		orientation = "L"
	}
	title := d.options.Title
	if title == "" {
		title = d.title
	}
	return r, pdf.RenderOptions{
		Title:       title,
		Author:      d.options.Author,
		Subject:     d.options.Subject,
		Keywords:    d.options.Keywords,
		Creator:     "pageflow",
		Producer:    "pageflow",
		Orientation: orientation,
	}
}

// Settle runs every pending pass and returns the number of queue steps taken
func (d *Document) Settle() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settle()
}

// settle drains the queue. A chain that hit the depth ceiling leaves its
// overflow on the last page it reached; a new chain is started there as long
// as the page before it holds content. Overflow pushed across an empty page
// comes from a node taller than the budget and is left alone.
func (d *Document) settle() int {
	steps := d.queue.Drain(d.options.SettleStepLimit)
	for round := 0; round < d.options.MaxSettleRounds; round++ {
		if d.engine.State().Mode != pagination.ModeBody {
			break
		}
		first, ok := d.engine.FirstOverflowing()
		if !ok || first == 0 {
			break
		}
		if prev, _ := d.store.Page(first - 1); pagestore.IsEmptyContent(prev.Content) {
			break
		}
		if d.options.Debug {
			log.Printf("[Document] resuming pagination at page %d", first+1)
		}
		d.engine.Recheck(first)
		steps += d.queue.Drain(d.options.SettleStepLimit)
	}
	return steps
}

// cursor renders the surface and resolves a caret inside a page
func (d *Document) cursor(pageIndex int, path NodePath, offset int) (*content.Range, *content.DOMUnit, error) {
	d.surface.Render(d.store.Pages())
	u, ok := d.surface.Unit(pageIndex)
	if !ok {
		return nil, nil, fmt.Errorf("%w: page %d", ErrNotRendered, pageIndex+1)
	}
	unit, ok := u.(*content.DOMUnit)
	if !ok {
		return nil, nil, content.ErrForeignNode
	}
	p, err := unit.PointAt(path, offset)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve cursor: %w", err)
	}
	return content.Collapsed(p), unit, nil
}

// caretBottom measures the content before the caret on a copy of the unit
func (d *Document) caretBottom(unit *content.DOMUnit, path NodePath, offset int) (float64, error) {
	clone, err := content.NewDOMUnitFromHTML(unit.HTML())
	if err != nil {
		return 0, fmt.Errorf("failed to copy page: %w", err)
	}
	p, err := clone.PointAt(path, offset)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve cursor: %w", err)
	}
	if _, err := clone.ExtractFrom(p); err != nil {
		return 0, fmt.Errorf("failed to measure caret: %w", err)
	}
	return d.layout.MeasureHeight(clone), nil
}

// Package pagination keeps a continuously edited document partitioned into
// pages that each fit a fixed content height. Overflowing content is
// relocated to the following page, one trailing node at a time, and a page
// can be split in two at a cursor.
package pagination

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/pagestore"
)

// ErrNoFormatter is returned by ApplyFormatting when no formatter is attached
var ErrNoFormatter = errors.New("no formatter attached")

// Options represents options for the pagination engine
type Options struct {
	// Content height budget of a page body
	ContentMaxHeight float64
	// Measurement noise absorbed before a page counts as overflowing
	Tolerance float64
	// Lone text runs shorter than this many characters move whole instead of splitting
	MinSplitLength int
	// Share of a split text run kept on the overflowing page
	SplitRatio float64
	// Maximum length of a chain of deferred resolve passes
	MaxDepth int
	// Deferral before retrying a page whose next page was just created
	NewPageDelay time.Duration
	// Deferral before a cascade pass on the following page
	CascadeDelay time.Duration
	// Enter starts a new page when the caret is within BreakCaretMargin of the
	// bottom and the content is within BreakTallness of the budget
	BreakCaretMargin float64
	BreakTallness    float64
	Debug            bool
}

// DefaultOptions returns the reference pagination parameters
func DefaultOptions() Options {
	return Options{
		ContentMaxHeight: 950,
		Tolerance:        4,
		MinSplitLength:   40,
		SplitRatio:       0.6,
		MaxDepth:         20,
		NewPageDelay:     30 * time.Millisecond,
		CascadeDelay:     0,
		BreakCaretMargin: 32,
		BreakTallness:    24,
	}
}

// Mode is the editing mode of the document
type Mode int

const (
	// ModeBody edits page content
	ModeBody Mode = iota
	// ModeHeaderFooter edits the shared header or footer; pagination is suspended
	ModeHeaderFooter
)

func (m Mode) String() string {
	if m == ModeHeaderFooter {
		return "header-footer"
	}
	return "body"
}

// State is the editing state around the page sequence
type State struct {
	CurrentPage int
	Mode        Mode
	// Region being edited in ModeHeaderFooter
	Region pagestore.Region
}

// Stats counts what the engine has done
type Stats struct {
	Passes       int
	Relocations  int
	Splits       int
	PagesCreated int
	CeilingHits  int
}

// CommandKind names a formatting command
type CommandKind string

const (
	CommandBold          CommandKind = "bold"
	CommandItalic        CommandKind = "italic"
	CommandUnderline     CommandKind = "underline"
	CommandForeColor     CommandKind = "foreColor"
	CommandHiliteColor   CommandKind = "hiliteColor"
	CommandFontName      CommandKind = "fontName"
	CommandJustifyLeft   CommandKind = "justifyLeft"
	CommandJustifyCenter CommandKind = "justifyCenter"
	CommandJustifyRight  CommandKind = "justifyRight"
	CommandStyle         CommandKind = "style"
	CommandOrderedList   CommandKind = "insertOrderedList"
	CommandUnorderedList CommandKind = "insertUnorderedList"
	CommandIndent        CommandKind = "indent"
	CommandOutdent       CommandKind = "outdent"
)

// Command is one formatting mutation of the current selection
type Command struct {
	Kind  CommandKind
	Value string
}

// Formatter applies formatting commands to the focused content unit
type Formatter interface {
	Format(unit content.Unit, cmd Command) error
}

// FormatterFunc adapts a function to Formatter
type FormatterFunc func(unit content.Unit, cmd Command) error

// Format calls f(unit, cmd)
func (f FormatterFunc) Format(unit content.Unit, cmd Command) error {
	return f(unit, cmd)
}

// Engine is the pagination controller. It is single-threaded: every method
// and every deferred continuation must run on the goroutine that drives the
// scheduler.
type Engine struct {
	options   Options
	store     *pagestore.Store
	surface   Surface
	measurer  content.Measurer
	scheduler Scheduler
	formatter Formatter

	state State
	stats Stats

	// generation of the latest pass scheduled per page
	generations map[int]uint64
	// chain depth of passes suspended by header/footer mode
	parked map[int]int
}

// NewEngine creates a pagination engine over a store and its render surface
func NewEngine(store *pagestore.Store, surface Surface, measurer content.Measurer, scheduler Scheduler, options Options) *Engine {
	return &Engine{
		options:     options,
		store:       store,
		surface:     surface,
		measurer:    measurer,
		scheduler:   scheduler,
		generations: make(map[int]uint64),
		parked:      make(map[int]int),
	}
}

// SetFormatter attaches the collaborator that executes formatting commands
func (e *Engine) SetFormatter(f Formatter) {
	e.formatter = f
}

// Options returns the engine options
func (e *Engine) Options() Options {
	return e.options
}

// State returns the editing state
func (e *Engine) State() State {
	return e.state
}

// Stats returns the engine counters
func (e *Engine) Stats() Stats {
	return e.stats
}

// Pages returns a copy of the page sequence
func (e *Engine) Pages() []pagestore.Page {
	return e.store.Pages()
}

// SetCurrentPage focuses the page at index
func (e *Engine) SetCurrentPage(index int) bool {
	if _, ok := e.store.Page(index); !ok {
		return false
	}
	e.state.CurrentPage = index
	return true
}

// OnContentChanged persists edited page content, trims trailing empty pages
// and schedules one resolve pass for the page after the next layout
func (e *Engine) OnContentChanged(pageIndex int, markup string) {
	if !e.store.SetPageContent(pageIndex, markup) {
		if e.options.Debug {
			log.Printf("[Paginate] ignoring change to missing page %d", pageIndex+1)
		}
		return
	}
	e.store.Trim()
	e.clampCurrentPage()
	e.schedule(pageIndex, 0, e.options.CascadeDelay)
}

// OnHeaderFooterChanged broadcasts a shared region to every page. It never
// triggers pagination.
func (e *Engine) OnHeaderFooterChanged(which pagestore.Region, markup string) {
	if !e.store.SetSharedHeaderFooter(which, markup) {
		log.Printf("[Paginate] warning: unknown shared region %q", which)
		return
	}
	e.store.Trim()
	e.clampCurrentPage()
}

// InsertPageBreak splits the page at the cursor and focuses the new page.
// A cursor outside the page inserts an empty page.
func (e *Engine) InsertPageBreak(pageIndex int, cursor *content.Range) (int, bool) {
	at, ok := e.SplitAt(pageIndex, cursor)
	if !ok {
		return 0, false
	}
	e.state.CurrentPage = at
	return at, true
}

// DeletePage removes a page unless it is the only one
func (e *Engine) DeletePage(index int) bool {
	if !e.store.DeletePage(index) {
		return false
	}
	e.clampCurrentPage()
	return true
}

// Load replaces the document with pages and schedules a pass on every page
func (e *Engine) Load(pages []pagestore.Page) {
	e.store.Load(pages)
	e.afterLoad()
}

// LoadSnapshot replaces the document with a persisted snapshot. A malformed
// snapshot leaves an empty document and the error is returned as a notice.
func (e *Engine) LoadSnapshot(data []byte) error {
	err := e.store.LoadSnapshot(data)
	e.afterLoad()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	return nil
}

// Reset replaces the document with a single empty page
func (e *Engine) Reset() {
	e.store.Initialize()
	e.parked = make(map[int]int)
	e.state = State{}
	e.bumpAll()
}

func (e *Engine) afterLoad() {
	e.parked = make(map[int]int)
	e.state.CurrentPage = 0
	e.bumpAll()
	for i := 0; i < e.store.Len(); i++ {
		e.schedule(i, 0, e.options.CascadeDelay)
	}
}

// bumpAll invalidates every pending pass
func (e *Engine) bumpAll() {
	for i := range e.generations {
		e.generations[i]++
	}
}

// EnterHeaderFooter switches to editing a shared region and suspends pagination
func (e *Engine) EnterHeaderFooter(which pagestore.Region) bool {
	if !which.Valid() {
		return false
	}
	e.state.Mode = ModeHeaderFooter
	e.state.Region = which
	return true
}

// ExitHeaderFooter returns to page editing and resumes suspended passes
func (e *Engine) ExitHeaderFooter() {
	if e.state.Mode != ModeHeaderFooter {
		return
	}
	e.state.Mode = ModeBody
	e.state.Region = ""

	parked := e.parked
	e.parked = make(map[int]int)
	for i := 0; i < e.store.Len(); i++ {
		if depth, ok := parked[i]; ok {
			e.schedule(i, depth, e.options.CascadeDelay)
		}
	}
}

// OnEnter decides whether Enter at the cursor should start a new page: when
// the page already overflows, or when the caret sits near the bottom of a page
// that is close to full. caretBottom is measured from the top of the page
// body. It reports whether a page break was inserted.
func (e *Engine) OnEnter(pageIndex int, cursor *content.Range, caretBottom float64) bool {
	if e.state.Mode != ModeBody {
		return false
	}
	unit, ok := e.surface.Unit(pageIndex)
	if !ok {
		return false
	}

	height := e.measurer.MeasureHeight(unit)
	overflow := height-e.options.ContentMaxHeight > e.options.Tolerance
	tallEnough := height > e.options.ContentMaxHeight-e.options.BreakTallness
	nearBottom := caretBottom >= e.options.ContentMaxHeight-e.options.BreakCaretMargin
	if !overflow && !(tallEnough && nearBottom) {
		return false
	}

	_, ok = e.InsertPageBreak(pageIndex, cursor)
	return ok
}

// OnTab indents or outdents the list item at the cursor. It reports whether
// the cursor was inside a list.
func (e *Engine) OnTab(cursor *content.Range, outdent bool) (bool, error) {
	if cursor == nil || !content.WithinList(cursor.End) {
		return false, nil
	}
	cmd := Command{Kind: CommandIndent}
	if outdent {
		cmd.Kind = CommandOutdent
	}
	return true, e.ApplyFormatting(cmd)
}

// ApplyFormatting runs a formatting command on the focused unit and persists
// the result: the current page in body mode, the shared region otherwise
func (e *Engine) ApplyFormatting(cmd Command) error {
	if e.formatter == nil {
		return ErrNoFormatter
	}

	if e.state.Mode == ModeHeaderFooter {
		unit, ok := e.surface.Region(e.state.Region)
		if !ok {
			return fmt.Errorf("no unit for region %q", e.state.Region)
		}
		if err := e.formatter.Format(unit, cmd); err != nil {
			return fmt.Errorf("failed to apply %s: %w", cmd.Kind, err)
		}
		e.OnHeaderFooterChanged(e.state.Region, unit.HTML())
		return nil
	}

	unit, ok := e.surface.Unit(e.state.CurrentPage)
	if !ok {
		return fmt.Errorf("page %d is not rendered", e.state.CurrentPage+1)
	}
	if err := e.formatter.Format(unit, cmd); err != nil {
		return fmt.Errorf("failed to apply %s: %w", cmd.Kind, err)
	}
	e.OnContentChanged(e.state.CurrentPage, unit.HTML())
	return nil
}

func (e *Engine) clampCurrentPage() {
	if last := e.store.Len() - 1; e.state.CurrentPage > last {
		e.state.CurrentPage = last
	}
	if e.state.CurrentPage < 0 {
		e.state.CurrentPage = 0
	}
}

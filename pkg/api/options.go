package api

import "time"

// Options represents configuration options for a paginated document.
// Lengths are CSS pixels at 96 DPI.
type Options struct {
	// Page dimensions
	PageWidth  float64
	PageHeight float64
	// Page orientation: portrait or landscape
	PageOrientation PageOrientation

	// Page margins; the body is the page minus its margins
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64

	// Pagination parameters
	ContentMaxHeight float64
	Tolerance        float64
	MinSplitLength   int
	SplitRatio       float64
	MaxDepth         int
	NewPageDelay     time.Duration
	CascadeDelay     time.Duration

	// Upper bound on queue steps per settle round
	SettleStepLimit int
	// Upper bound on chains restarted after hitting the depth ceiling
	MaxSettleRounds int

	// Root font of unstyled page content
	FontSize   float64
	FontFamily string
	LineHeight string

	Debug bool

	// Resource paths searched by Import
	ResourcePaths []string

	// Document metadata
	Title    string
	Author   string
	Subject  string
	Keywords string

	// Author CSS applied when measuring and exporting
	Stylesheet string
}

// Option is a function that modifies Options
type Option func(*Options)

// PageOrientation represents page orientation
type PageOrientation string

const (
	// PageOrientationPortrait sets the page to portrait orientation
	PageOrientationPortrait PageOrientation = "portrait"
	// PageOrientationLandscape sets the page to landscape orientation
	PageOrientationLandscape PageOrientation = "landscape"
)

// Standard page sizes in CSS pixels at 96 DPI
const (
	PageSizeA3Width  = 1123
	PageSizeA3Height = 1587
	PageSizeA4Width  = 794
	PageSizeA4Height = 1123
	PageSizeA5Width  = 559
	PageSizeA5Height = 794

	PageSizeLetterWidth  = 816
	PageSizeLetterHeight = 1056
	PageSizeLegalWidth   = 816
	PageSizeLegalHeight  = 1344
)

// DefaultContentMaxHeight is the body height budget of an A4 page
const DefaultContentMaxHeight = 950

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		// A4 with one-inch margins
		PageWidth:       PageSizeA4Width,
		PageHeight:      PageSizeA4Height,
		PageOrientation: PageOrientationPortrait,
		MarginTop:       72,
		MarginRight:     72,
		MarginBottom:    72,
		MarginLeft:      72,

		ContentMaxHeight: DefaultContentMaxHeight,
		Tolerance:        4,
		MinSplitLength:   40,
		SplitRatio:       0.6,
		MaxDepth:         20,
		NewPageDelay:     30 * time.Millisecond,
		CascadeDelay:     0,

		SettleStepLimit: 10000,
		MaxSettleRounds: 100,

		FontSize:   16,
		FontFamily: "Arial",
		LineHeight: "normal",
	}
}

// BodyWidth returns the width available to page content
func (o Options) BodyWidth() float64 {
	w := o.PageWidth
	if o.PageOrientation == PageOrientationLandscape && o.PageHeight > w {
		w = o.PageHeight
	}
	return w - o.MarginLeft - o.MarginRight
}

// WithPageSize sets the page size
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.PageWidth = width
		o.PageHeight = height
	}
}

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(PageSizeA4Width, PageSizeA4Height)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(PageSizeLetterWidth, PageSizeLetterHeight)
}

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option {
	return WithPageSize(PageSizeLegalWidth, PageSizeLegalHeight)
}

// WithPageOrientation sets the page orientation
func WithPageOrientation(orientation PageOrientation) Option {
	return func(o *Options) {
		o.PageOrientation = orientation
	}
}

// WithMargins sets the page margins
func WithMargins(top, right, bottom, left float64) Option {
	return func(o *Options) {
		o.MarginTop = top
		o.MarginRight = right
		o.MarginBottom = bottom
		o.MarginLeft = left
	}
}

// WithContentMaxHeight sets the body height budget of a page
func WithContentMaxHeight(height float64) Option {
	return func(o *Options) {
		o.ContentMaxHeight = height
	}
}

// WithTolerance sets how far content may exceed the budget before it moves
func WithTolerance(tolerance float64) Option {
	return func(o *Options) {
		o.Tolerance = tolerance
	}
}

// WithTextSplit sets the shortest text run that is split instead of moved
// whole, and the share of it kept on the overflowing page
func WithTextSplit(minLength int, ratio float64) Option {
	return func(o *Options) {
		o.MinSplitLength = minLength
		o.SplitRatio = ratio
	}
}

// WithMaxDepth sets the longest chain of resolve passes
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		o.MaxDepth = depth
	}
}

// WithDelays sets the deferrals before retrying a freshly created page and
// before cascading to the next page
func WithDelays(newPage, cascade time.Duration) Option {
	return func(o *Options) {
		o.NewPageDelay = newPage
		o.CascadeDelay = cascade
	}
}

// WithFont sets the root font of unstyled content
func WithFont(size float64, family, lineHeight string) Option {
	return func(o *Options) {
		o.FontSize = size
		o.FontFamily = family
		o.LineHeight = lineHeight
	}
}

// WithDebug sets the debug mode
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

// WithResourcePath adds a path to search for imported documents
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// WithStylesheet sets author CSS for measuring and exporting page content
func WithStylesheet(stylesheet string) Option {
	return func(o *Options) {
		o.Stylesheet = stylesheet
	}
}

// Package pageflow keeps a continuously edited rich-text document split into
// fixed-height pages. Content that overflows a page moves to the next one,
// pages can be split at a caret, and the result can be saved as a snapshot
// or exported as PDF.
package pageflow

import (
	"github.com/gompdf/pageflow/pkg/api"
)

type Document = api.Document
type Options = api.Options
type Option = api.Option
type PageOrientation = api.PageOrientation

type Page = api.Page
type Region = api.Region
type State = api.State
type Stats = api.Stats
type Command = api.Command
type CommandKind = api.CommandKind
type Formatter = api.Formatter
type NodePath = api.NodePath

func New(opts ...Option) *Document               { return api.New(opts...) }
func NewWithOptions(options Options) *Document { return api.NewWithOptions(options) }
func DefaultOptions() Options                  { return api.DefaultOptions() }

var (
	WithPageSize         = api.WithPageSize
	WithPageSizeA4       = api.WithPageSizeA4
	WithPageSizeLetter   = api.WithPageSizeLetter
	WithPageSizeLegal    = api.WithPageSizeLegal
	WithPageOrientation  = api.WithPageOrientation
	WithMargins          = api.WithMargins
	WithContentMaxHeight = api.WithContentMaxHeight
	WithTolerance        = api.WithTolerance
	WithTextSplit        = api.WithTextSplit
	WithMaxDepth         = api.WithMaxDepth
	WithDelays           = api.WithDelays
	WithFont             = api.WithFont
	WithDebug            = api.WithDebug
	WithResourcePath     = api.WithResourcePath
	WithTitle            = api.WithTitle
	WithAuthor           = api.WithAuthor
	WithSubject          = api.WithSubject
	WithKeywords         = api.WithKeywords
	WithStylesheet       = api.WithStylesheet
)

var ErrNotRendered = api.ErrNotRendered

const (
	PageSizeA3Width  = api.PageSizeA3Width
	PageSizeA3Height = api.PageSizeA3Height
	PageSizeA4Width  = api.PageSizeA4Width
	PageSizeA4Height = api.PageSizeA4Height
	PageSizeA5Width  = api.PageSizeA5Width
	PageSizeA5Height = api.PageSizeA5Height

	PageSizeLetterWidth  = api.PageSizeLetterWidth
	PageSizeLetterHeight = api.PageSizeLetterHeight
	PageSizeLegalWidth   = api.PageSizeLegalWidth
	PageSizeLegalHeight  = api.PageSizeLegalHeight

	DefaultContentMaxHeight = api.DefaultContentMaxHeight

	PageOrientationPortrait  = api.PageOrientationPortrait
	PageOrientationLandscape = api.PageOrientationLandscape

	RegionHeader = api.RegionHeader
	RegionFooter = api.RegionFooter
)

package pagestore

import (
	"log"
)

// Store owns the page sequence. It is not safe for concurrent use; callers
// serialize access the way the pagination engine does.
type Store struct {
	pages []Page
	debug bool
}

// New creates a store holding a single empty page
func New() *Store {
	s := &Store{}
	s.Initialize()
	return s
}

// SetDebug enables logging of structural changes
func (s *Store) SetDebug(debug bool) {
	s.debug = debug
}

// Initialize resets the sequence to a single empty page
func (s *Store) Initialize() {
	s.pages = []Page{emptyPage()}
}

// Load replaces the sequence with pages. An empty list falls back to a single
// empty page. The header and footer of the first page are broadcast to all
// pages, ids are renumbered and trailing empty pages are trimmed.
func (s *Store) Load(pages []Page) {
	if len(pages) == 0 {
		s.Initialize()
		return
	}

	loaded := make([]Page, len(pages))
	copy(loaded, pages)
	for i := range loaded {
		loaded[i].Header = loaded[0].Header
		loaded[i].Footer = loaded[0].Footer
	}
	renumber(loaded)
	s.pages = Trim(loaded)

	if s.debug {
		log.Printf("[Store] loaded %d pages (%d after trim)", len(pages), len(s.pages))
	}
}

// Len returns the number of pages
func (s *Store) Len() int {
	return len(s.pages)
}

// Page returns the page at index
func (s *Store) Page(index int) (Page, bool) {
	if index < 0 || index >= len(s.pages) {
		return Page{}, false
	}
	return s.pages[index], true
}

// Pages returns a copy of the sequence
func (s *Store) Pages() []Page {
	out := make([]Page, len(s.pages))
	copy(out, s.pages)
	return out
}

// SetPageContent stores markup as the content of the page at index. An index
// out of range is ignored.
func (s *Store) SetPageContent(index int, markup string) bool {
	if index < 0 || index >= len(s.pages) {
		return false
	}
	s.pages[index].Content = markup
	return true
}

// Shared returns the current value of a shared region
func (s *Store) Shared(which Region) string {
	switch which {
	case RegionHeader:
		return s.pages[0].Header
	case RegionFooter:
		return s.pages[0].Footer
	}
	return ""
}

// SetSharedHeaderFooter writes markup to the named region of every page
func (s *Store) SetSharedHeaderFooter(which Region, markup string) bool {
	if !which.Valid() {
		return false
	}
	for i := range s.pages {
		if which == RegionHeader {
			s.pages[i].Header = markup
		} else {
			s.pages[i].Footer = markup
		}
	}
	return true
}

// InsertPageAfter inserts a page holding markup right after index. The new page
// inherits the shared header and footer. It returns the new page's index.
func (s *Store) InsertPageAfter(index int, markup string) (int, bool) {
	if index < 0 || index >= len(s.pages) {
		return 0, false
	}

	page := Page{
		Content: markup,
		Header:  s.pages[0].Header,
		Footer:  s.pages[0].Footer,
	}
	at := index + 1
	s.pages = append(s.pages, Page{})
	copy(s.pages[at+1:], s.pages[at:])
	s.pages[at] = page
	renumber(s.pages)

	if s.debug {
		log.Printf("[Store] inserted page %d (%d pages)", at+1, len(s.pages))
	}
	return at, true
}

// DeletePage removes the page at index unless it is the only page
func (s *Store) DeletePage(index int) bool {
	if len(s.pages) <= 1 || index < 0 || index >= len(s.pages) {
		return false
	}
	s.pages = append(s.pages[:index], s.pages[index+1:]...)
	renumber(s.pages)

	if s.debug {
		log.Printf("[Store] deleted page %d (%d pages)", index+1, len(s.pages))
	}
	return true
}

// Trim drops trailing empty pages from the sequence
func (s *Store) Trim() {
	s.pages = Trim(s.pages)
}

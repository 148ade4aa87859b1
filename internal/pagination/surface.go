package pagination

import (
	"log"

	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/pagestore"
)

// Surface is the set of live content units rendering the document. Units are
// ground truth for content while a resolve pass relocates nodes; the store is
// re-derived from them afterwards.
type Surface interface {
	// Unit returns the live unit of the page at index, if it has materialized
	Unit(index int) (content.Unit, bool)
	// Region returns the live unit of a shared header or footer
	Region(which pagestore.Region) (content.Unit, bool)
	// Render brings the units in line with the stored pages
	Render(pages []pagestore.Page)
}

// DOMSurface is an off-screen Surface holding one DOM unit per page
type DOMSurface struct {
	units    []*content.DOMUnit
	rendered []string
	header   *content.DOMUnit
	footer   *content.DOMUnit
	Debug    bool
}

// NewDOMSurface creates a surface with no materialized pages
func NewDOMSurface() *DOMSurface {
	return &DOMSurface{
		header: content.NewDOMUnit(),
		footer: content.NewDOMUnit(),
	}
}

// Unit returns the unit of the page at index
func (s *DOMSurface) Unit(index int) (content.Unit, bool) {
	if index < 0 || index >= len(s.units) {
		return nil, false
	}
	return s.units[index], true
}

// Region returns the header or footer unit
func (s *DOMSurface) Region(which pagestore.Region) (content.Unit, bool) {
	switch which {
	case pagestore.RegionHeader:
		return s.header, true
	case pagestore.RegionFooter:
		return s.footer, true
	}
	return nil, false
}

// Len returns the number of materialized pages
func (s *DOMSurface) Len() int {
	return len(s.units)
}

// Render materializes units for new pages, drops units of removed pages and
// reloads every unit whose markup differs from its page's content
func (s *DOMSurface) Render(pages []pagestore.Page) {
	for len(s.units) < len(pages) {
		s.units = append(s.units, content.NewDOMUnit())
		s.rendered = append(s.rendered, "")
	}
	s.units = s.units[:len(pages)]
	s.rendered = s.rendered[:len(pages)]

	reloaded := 0
	for i, page := range pages {
		if page.Content == s.rendered[i] {
			continue
		}
		if page.Content != s.units[i].HTML() {
			if err := s.units[i].SetHTML(page.Content); err != nil {
				log.Printf("[Surface] failed to render page %d: %v", i+1, err)
				continue
			}
			reloaded++
		}
		s.rendered[i] = page.Content
	}

	if len(pages) > 0 {
		s.renderRegion(s.header, pages[0].Header)
		s.renderRegion(s.footer, pages[0].Footer)
	}

	if s.Debug && reloaded > 0 {
		log.Printf("[Surface] rendered %d pages (%d reloaded)", len(pages), reloaded)
	}
}

func (s *DOMSurface) renderRegion(u *content.DOMUnit, markup string) {
	if u.HTML() == markup {
		return
	}
	if err := u.SetHTML(markup); err != nil {
		log.Printf("[Surface] failed to render shared region: %v", err)
	}
}

// Package pagestore holds the ordered page sequence of a document and keeps
// its invariants: never empty, dense 1-based ids, and one shared header and
// footer stored on every page.
package pagestore

// Page is one fixed-geometry sheet of the document
type Page struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	Header  string `json:"header"`
	Footer  string `json:"footer"`
}

// Region names one of the shared page regions
type Region string

const (
	RegionHeader Region = "header"
	RegionFooter Region = "footer"
)

// Valid reports whether r names a shared region
func (r Region) Valid() bool {
	return r == RegionHeader || r == RegionFooter
}

// renumber assigns ids 1..n in sequence order
func renumber(pages []Page) {
	for i := range pages {
		pages[i].ID = i + 1
	}
}

func emptyPage() Page {
	return Page{ID: 1}
}

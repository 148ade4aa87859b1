package pagination

import (
	"log"

	"github.com/gompdf/pageflow/internal/content"
)

// SplitAt moves everything after the cursor's end boundary on pageIndex to a
// new page inserted right after it. When the cursor is not inside the page,
// the new page is empty. Overflow is not re-checked here; the next edit of
// either page does that.
func (e *Engine) SplitAt(pageIndex int, cursor *content.Range) (int, bool) {
	if _, ok := e.store.Page(pageIndex); !ok {
		return 0, false
	}

	var after string
	unit, ok := e.surface.Unit(pageIndex)
	switch {
	case !ok || cursor == nil || !unit.Contains(cursor.End):
		if e.options.Debug {
			log.Printf("[Paginate] cursor is not on page %d; inserting an empty page", pageIndex+1)
		}
	default:
		extracted, err := unit.ExtractFrom(cursor.End)
		if err != nil {
			log.Printf("[Paginate] failed to split page %d at cursor: %v", pageIndex+1, err)
			break
		}
		after = extracted
		e.store.SetPageContent(pageIndex, unit.HTML())
	}

	at, ok := e.store.InsertPageAfter(pageIndex, after)
	if !ok {
		return 0, false
	}
	if e.options.Debug {
		log.Printf("[Paginate] split page %d; new page %d", pageIndex+1, at+1)
	}
	return at, true
}

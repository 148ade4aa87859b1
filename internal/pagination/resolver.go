package pagination

import (
	"log"
	"time"

	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/text"
)

// schedule queues a resolve pass for pageIndex. It supersedes any pass still
// pending for the same page.
func (e *Engine) schedule(pageIndex, depth int, delay time.Duration) {
	e.generations[pageIndex]++
	gen := e.generations[pageIndex]
	e.scheduler.AfterLayout(delay, func() {
		if e.generations[pageIndex] != gen {
			return
		}
		e.Resolve(pageIndex, depth)
	})
}

// Overflowing reports whether a unit is taller than the content budget plus
// the tolerance
func (e *Engine) Overflowing(unit content.Unit) bool {
	return e.measurer.MeasureHeight(unit) > e.options.ContentMaxHeight+e.options.Tolerance
}

// FirstOverflowing returns the index of the first rendered page that still
// overflows
func (e *Engine) FirstOverflowing() (int, bool) {
	for i := 0; i < e.store.Len(); i++ {
		if unit, ok := e.surface.Unit(i); ok && e.Overflowing(unit) {
			return i, true
		}
	}
	return 0, false
}

// Recheck starts a fresh chain of passes at pageIndex. Chains that hit the
// depth ceiling leave overflow behind; this resumes it.
func (e *Engine) Recheck(pageIndex int) bool {
	if _, ok := e.store.Page(pageIndex); !ok {
		return false
	}
	e.schedule(pageIndex, 0, e.options.CascadeDelay)
	return true
}

// Resolve moves content off pageIndex until it fits, creating the next page
// when there is none, and then cascades to the following page. depth is the
// length of the chain of passes that led here.
func (e *Engine) Resolve(pageIndex, depth int) {
	if depth > e.options.MaxDepth {
		e.stats.CeilingHits++
		log.Printf("[Paginate] warning: page %d still overflows after %d passes; giving up", pageIndex+1, e.options.MaxDepth)
		return
	}
	if e.state.Mode == ModeHeaderFooter {
		e.parked[pageIndex] = depth
		return
	}

	unit, ok := e.surface.Unit(pageIndex)
	if !ok {
		return
	}
	e.stats.Passes++
	if !e.Overflowing(unit) {
		return
	}

	if _, ok := e.store.Page(pageIndex + 1); !ok {
		if _, ok := e.store.InsertPageAfter(pageIndex, ""); !ok {
			return
		}
		e.stats.PagesCreated++
		if e.options.Debug {
			log.Printf("[Paginate] page %d overflows; created page %d", pageIndex+1, pageIndex+2)
		}
		e.schedule(pageIndex, depth+1, e.options.NewPageDelay)
		return
	}

	next, ok := e.surface.Unit(pageIndex + 1)
	if !ok {
		// the next page exists but has not been rendered yet
		e.schedule(pageIndex, depth+1, e.options.NewPageDelay)
		return
	}

	if e.relocate(pageIndex, unit, next) {
		e.sync()
	}
	e.schedule(pageIndex+1, depth+1, e.options.CascadeDelay)
}

// relocate moves trailing content of unit to the front of next while unit
// overflows. Every step shrinks unit, so the loop ends.
func (e *Engine) relocate(pageIndex int, unit, next content.Unit) bool {
	moved := false
	for e.Overflowing(unit) {
		node, ok := unit.LastMeaningful()
		if !ok {
			break
		}

		if node.IsText() && unit.ChildCount() == 1 {
			s := node.Text()
			if text.Length(s) >= e.options.MinSplitLength {
				offset := text.SplitOffset(s, e.options.SplitRatio)
				if err := unit.SplitText(node, offset, next); err != nil {
					log.Printf("[Paginate] failed to split text on page %d: %v", pageIndex+1, err)
					break
				}
				e.stats.Splits++
				moved = true
				continue
			}
		}

		if err := unit.MoveToFront(node, next); err != nil {
			log.Printf("[Paginate] failed to move content off page %d: %v", pageIndex+1, err)
			break
		}
		e.stats.Relocations++
		moved = true
	}

	if moved && e.options.Debug {
		log.Printf("[Paginate] relocated overflow of page %d", pageIndex+1)
	}
	return moved
}

// sync re-derives every page's content from its live unit and trims
func (e *Engine) sync() {
	for i := 0; i < e.store.Len(); i++ {
		if unit, ok := e.surface.Unit(i); ok {
			e.store.SetPageContent(i, unit.HTML())
		}
	}
	e.store.Trim()
	e.clampCurrentPage()
}

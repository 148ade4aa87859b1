package api

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/pagination"
)

func manyParagraphs(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "<p>Paragraph %d of the imported report.</p>", i)
	}
	return b.String()
}

func joined(pages []Page) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p.Content)
	}
	return b.String()
}

func TestNewDocumentHasOneEmptyPage(t *testing.T) {
	d := New()
	pages := d.Pages()
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].ID)
	assert.Empty(t, pages[0].Content)
	assert.Equal(t, pagination.ModeBody, d.State().Mode)
	assert.InDelta(t, 650, d.Options().BodyWidth(), 0.01)
}

func TestImportMarkupPaginatesEveryPageWithinBudget(t *testing.T) {
	d := New()
	markup := manyParagraphs(120)
	require.NoError(t, d.ImportMarkup(markup))

	pages := d.Pages()
	require.Greater(t, len(pages), 1)
	for i, p := range pages {
		assert.Equal(t, i+1, p.ID)
		u, err := content.NewDOMUnitFromHTML(p.Content)
		require.NoError(t, err)
		assert.LessOrEqual(t, d.layout.MeasureHeight(u), d.options.ContentMaxHeight+d.options.Tolerance, "page %d", i+1)
	}
	assert.Equal(t, markup, joined(pages))
	assert.Greater(t, d.Stats().Relocations, 0)
}

func TestSettleResumesChainsCutByTheCeiling(t *testing.T) {
	d := New(WithMaxDepth(2))
	markup := manyParagraphs(120)
	require.NoError(t, d.ImportMarkup(markup))

	pages := d.Pages()
	assert.Greater(t, len(pages), 2)
	assert.Equal(t, markup, joined(pages))
	assert.Greater(t, d.Stats().CeilingHits, 0)
	_, overflowing := d.engine.FirstOverflowing()
	assert.False(t, overflowing)
}

func TestBlockTallerThanAPageStopsAtTheCeiling(t *testing.T) {
	d := New()
	tall := `<div style="height:2000px">x</div>`
	d.SetContent(0, "<p>a</p>"+tall+"<p>b</p>")

	// each page the block crosses costs two passes: one to create the next
	// page and one to move the block onto it
	pages := d.Pages()
	require.Len(t, pages, 12)
	assert.Equal(t, "<p>a</p>", pages[0].Content)
	for i := 1; i <= 9; i++ {
		assert.Empty(t, pages[i].Content, "page %d", i+1)
	}
	assert.Equal(t, tall+"<p>b</p>", pages[10].Content)
	assert.Empty(t, pages[11].Content)
	assert.Equal(t, 1, d.Stats().CeilingHits)

	first, overflowing := d.engine.FirstOverflowing()
	require.True(t, overflowing)
	assert.Equal(t, 10, first)

	d.Settle()
	assert.Equal(t, 12, d.PageCount())
	assert.Equal(t, 1, d.Stats().CeilingHits)
}

func TestSetContentCascades(t *testing.T) {
	d := New()
	d.SetContent(0, manyParagraphs(60))
	assert.Greater(t, d.PageCount(), 1)

	d.SetContent(0, "<p>short</p>")
	pages := d.Pages()
	assert.Equal(t, "<p>short</p>", pages[0].Content)
}

func TestSnapshotRoundTrip(t *testing.T) {
	d := New()
	d.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	d.LoadPages([]Page{
		{ID: 1, Content: "<p>one</p>", Header: "<p>H</p>"},
		{ID: 2, Content: "<p>two</p>"},
		{ID: 3, Content: "<p><br></p>"},
	})

	data, err := d.Snapshot()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"lastModified": "2024-05-01T12:00:00Z"`)

	path := filepath.Join(t.TempDir(), "saved", "doc.json")
	require.NoError(t, d.SaveSnapshot(path))

	other := New()
	require.NoError(t, other.Import(path))
	pages := other.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, "<p>two</p>", pages[1].Content)
	assert.Equal(t, "<p>H</p>", pages[1].Header)
}

func TestLoadMalformedSnapshot(t *testing.T) {
	d := New()
	d.SetContent(0, "<p>keep?</p>")
	err := d.LoadSnapshot([]byte(`{"pages": 3}`))
	assert.Error(t, err)
	pages := d.Pages()
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Content)
}

func TestInsertPageBreakAtCaret(t *testing.T) {
	d := New()
	d.SetContent(0, "<p>onetwo</p><p>three</p>")
	d.SetHeaderFooter(RegionFooter, "<p>F</p>")

	at, err := d.InsertPageBreak(0, NodePath{0, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, at)
	assert.Equal(t, 1, d.State().CurrentPage)

	pages := d.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, "<p>one</p>", pages[0].Content)
	assert.Equal(t, "<p>two</p><p>three</p>", pages[1].Content)
	assert.Equal(t, "<p>F</p>", pages[1].Footer)

	_, err = d.InsertPageBreak(0, NodePath{9}, 0)
	assert.Error(t, err)
	_, err = d.InsertPageBreak(7, nil, 0)
	assert.ErrorIs(t, err, ErrNotRendered)
}

func TestHeaderFooterModeSuspendsPagination(t *testing.T) {
	d := New()
	require.True(t, d.EnterHeaderFooter(RegionHeader))
	d.SetContent(0, manyParagraphs(60))
	assert.Equal(t, 1, d.PageCount())

	d.ExitHeaderFooter()
	assert.Greater(t, d.PageCount(), 1)
}

func TestOnEnterOnShortPage(t *testing.T) {
	d := New()
	d.SetContent(0, "<p>hello</p>")
	broke, err := d.OnEnter(0, NodePath{0, 0}, 5)
	require.NoError(t, err)
	assert.False(t, broke)
	assert.Equal(t, 1, d.PageCount())

	_, err = d.OnEnter(3, NodePath{0}, 0)
	assert.ErrorIs(t, err, ErrNotRendered)
}

func TestOnEnterAtBottomOfFullPage(t *testing.T) {
	d := New()
	d.SetContent(0, manyParagraphs(60))
	first := d.Pages()[0].Content
	u, err := content.NewDOMUnitFromHTML(first)
	require.NoError(t, err)
	last := u.ChildCount() - 1

	broke, err := d.OnEnter(0, NodePath{last, 0}, 2)
	require.NoError(t, err)
	assert.True(t, broke)
	assert.Equal(t, 1, d.State().CurrentPage)
}

func TestOnTabAndFormatting(t *testing.T) {
	d := New()
	d.SetContent(0, "<ul><li>item</li></ul><p>text</p>")

	handled, err := d.OnTab(0, NodePath{0, 0, 0}, 1, false)
	assert.True(t, handled)
	assert.ErrorIs(t, err, pagination.ErrNoFormatter)

	var got []Command
	d.SetFormatter(pagination.FormatterFunc(func(unit content.Unit, cmd Command) error {
		got = append(got, cmd)
		if cmd.Kind == pagination.CommandIndent {
			return unit.SetHTML("<ul><li><ul><li>item</li></ul></li></ul><p>text</p>")
		}
		return nil
	}))

	handled, err = d.OnTab(0, NodePath{1, 0}, 0, false)
	require.NoError(t, err)
	assert.False(t, handled)

	handled, err = d.OnTab(0, NodePath{0, 0, 0}, 1, false)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "<ul><li><ul><li>item</li></ul></li></ul><p>text</p>", d.Pages()[0].Content)

	require.NoError(t, d.ApplyFormatting(Command{Kind: pagination.CommandBold}))
	assert.Equal(t, []Command{{Kind: pagination.CommandIndent}, {Kind: pagination.CommandBold}}, got)
}

func TestResetAndDelete(t *testing.T) {
	d := New()
	d.LoadPages([]Page{{Content: "<p>a</p>"}, {Content: "<p>b</p>"}, {Content: "<p>c</p>"}})
	require.True(t, d.SetCurrentPage(2))
	require.True(t, d.DeletePage(2))
	assert.Equal(t, 1, d.State().CurrentPage)

	d.Reset()
	pages := d.Pages()
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Content)
	assert.Equal(t, State{}, d.State())
	assert.False(t, d.DeletePage(0))
}

func TestImportMarkdownFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: Notes\nfooter: Page footer\n---\n# Heading\n\nBody text.\n"), 0644))

	d := New()
	require.NoError(t, d.Import(path))
	assert.Equal(t, "Notes", d.Title())
	pages := d.Pages()
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0].Content, "<h1>Heading</h1>")
	assert.Equal(t, "<p>Page footer</p>", pages[0].Footer)

	err := d.Import(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestImportUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.css")
	require.NoError(t, os.WriteFile(path, []byte("p{}"), 0644))
	assert.Error(t, New().Import(path))
}

func TestExportPDF(t *testing.T) {
	d := New(WithTitle("Report"), WithPageOrientation(PageOrientationLandscape))
	d.SetContent(0, "<p>Hello</p>")
	d.SetHeaderFooter(RegionHeader, "<p>Acme</p>")

	var buf bytes.Buffer
	require.NoError(t, d.ExportPDF(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	path := filepath.Join(t.TempDir(), "out", "doc.pdf")
	require.NoError(t, d.ExportPDFFile(path))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestOptions(t *testing.T) {
	o := DefaultOptions()
	for _, opt := range []Option{
		WithPageSizeLetter(),
		WithMargins(10, 20, 30, 40),
		WithContentMaxHeight(500),
		WithTolerance(2),
		WithTextSplit(10, 0.5),
		WithDelays(time.Millisecond, 2*time.Millisecond),
		WithFont(12, "Times", "1.5"),
		WithResourcePath("/a"),
		WithStylesheet("p{margin:0}"),
	} {
		opt(&o)
	}
	assert.Equal(t, float64(PageSizeLetterWidth), o.PageWidth)
	assert.InDelta(t, PageSizeLetterWidth-60, o.BodyWidth(), 0.01)
	assert.Equal(t, 500.0, o.ContentMaxHeight)
	assert.Equal(t, 2.0, o.Tolerance)
	assert.Equal(t, 10, o.MinSplitLength)
	assert.Equal(t, 0.5, o.SplitRatio)
	assert.Equal(t, time.Millisecond, o.NewPageDelay)
	assert.Equal(t, 2*time.Millisecond, o.CascadeDelay)
	assert.Equal(t, "Times", o.FontFamily)
	assert.Equal(t, []string{"/a"}, o.ResourcePaths)

	o.PageOrientation = PageOrientationLandscape
	assert.InDelta(t, PageSizeLetterHeight-60, o.BodyWidth(), 0.01)
}

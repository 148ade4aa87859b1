package pagestore

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDenseIDs(t *testing.T, pages []Page) {
	t.Helper()
	require.NotEmpty(t, pages)
	for i, p := range pages {
		assert.Equal(t, i+1, p.ID, "page at index %d", i)
	}
}

func TestNewStoreHasOneEmptyPage(t *testing.T) {
	s := New()
	assert.Equal(t, []Page{{ID: 1}}, s.Pages())
}

func TestLoad(t *testing.T) {
	t.Run("empty list falls back to default", func(t *testing.T) {
		s := New()
		s.Load(nil)
		assert.Equal(t, []Page{{ID: 1}}, s.Pages())
	})

	t.Run("renumbers and trims", func(t *testing.T) {
		s := New()
		s.Load([]Page{
			{ID: 7, Content: "<p>one</p>"},
			{ID: 3, Content: "<p>two</p>"},
			{ID: 9, Content: "<p><br></p>"},
		})
		pages := s.Pages()
		require.Len(t, pages, 2)
		assertDenseIDs(t, pages)
		assert.Equal(t, "<p>two</p>", pages[1].Content)
	})

	t.Run("broadcasts the first page's header and footer", func(t *testing.T) {
		s := New()
		s.Load([]Page{
			{Content: "a", Header: "H", Footer: "F"},
			{Content: "b", Header: "stale"},
		})
		for _, p := range s.Pages() {
			assert.Equal(t, "H", p.Header)
			assert.Equal(t, "F", p.Footer)
		}
	})

	t.Run("does not alias the caller's slice", func(t *testing.T) {
		in := []Page{{Content: "a"}, {Content: "b"}}
		s := New()
		s.Load(in)
		s.SetPageContent(0, "changed")
		assert.Equal(t, "a", in[0].Content)
	})
}

func TestSetPageContentOutOfRangeIsNoop(t *testing.T) {
	s := New()
	assert.True(t, s.SetPageContent(0, "x"))
	assert.False(t, s.SetPageContent(1, "y"))
	assert.False(t, s.SetPageContent(-1, "y"))
	assert.Equal(t, []Page{{ID: 1, Content: "x"}}, s.Pages())
}

func TestSetSharedHeaderFooterBroadcasts(t *testing.T) {
	s := New()
	s.Load([]Page{{Content: "a"}, {Content: "b"}, {Content: "c"}})

	require.True(t, s.SetSharedHeaderFooter(RegionHeader, "<b>Title</b>"))
	require.True(t, s.SetSharedHeaderFooter(RegionFooter, "page"))
	assert.False(t, s.SetSharedHeaderFooter(Region("margin"), "x"))

	for _, p := range s.Pages() {
		assert.Equal(t, "<b>Title</b>", p.Header)
		assert.Equal(t, "page", p.Footer)
	}
	assert.Equal(t, "<b>Title</b>", s.Shared(RegionHeader))
	assert.Equal(t, "page", s.Shared(RegionFooter))
}

func TestInsertPageAfter(t *testing.T) {
	s := New()
	s.Load([]Page{{Content: "a"}, {Content: "c"}})
	s.SetSharedHeaderFooter(RegionHeader, "H")

	at, ok := s.InsertPageAfter(0, "b")
	require.True(t, ok)
	assert.Equal(t, 1, at)

	pages := s.Pages()
	require.Len(t, pages, 3)
	assertDenseIDs(t, pages)
	assert.Equal(t, []string{"a", "b", "c"}, []string{pages[0].Content, pages[1].Content, pages[2].Content})
	assert.Equal(t, "H", pages[1].Header)

	_, ok = s.InsertPageAfter(5, "z")
	assert.False(t, ok)
	assert.Equal(t, 3, s.Len())
}

func TestDeletePage(t *testing.T) {
	s := New()
	assert.False(t, s.DeletePage(0), "the only page is never deleted")

	s.Load([]Page{{Content: "a"}, {Content: "b"}, {Content: "c"}})
	require.True(t, s.DeletePage(1))
	pages := s.Pages()
	require.Len(t, pages, 2)
	assertDenseIDs(t, pages)
	assert.Equal(t, "c", pages[1].Content)

	assert.False(t, s.DeletePage(2))
}

func TestIsEmptyContent(t *testing.T) {
	tests := []struct {
		markup string
		empty  bool
	}{
		{"", true},
		{"   ", true},
		{"<p><br></p>", true},
		{"<div>&nbsp;</div><BR/>", true},
		{" <br />", true},
		{"<p> </p>\n<p></p>", true},
		{"<p>x</p>", false},
		{"<img src=a.png>", true},
		{"&amp;", false},
	}
	for _, tt := range tests {
		t.Run(tt.markup, func(t *testing.T) {
			assert.Equal(t, tt.empty, IsEmptyContent(tt.markup))
		})
	}
}

func TestTrim(t *testing.T) {
	tests := []struct {
		name  string
		pages []Page
		want  []string
	}{
		{name: "nil", pages: nil, want: []string{""}},
		{name: "all empty keeps first", pages: []Page{{Content: ""}, {Content: "<br>"}}, want: []string{""}},
		{name: "drops trailing empties", pages: []Page{{Content: "a"}, {Content: "b"}, {Content: ""}, {Content: "&nbsp;"}}, want: []string{"a", "b"}},
		{name: "keeps inner empties", pages: []Page{{Content: "a"}, {Content: ""}, {Content: "c"}}, want: []string{"a", "", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Trim(tt.pages)
			assertDenseIDs(t, got)
			var contents []string
			for _, p := range got {
				contents = append(contents, p.Content)
			}
			assert.Equal(t, tt.want, contents)

			assert.Equal(t, got, Trim(got), "trim is idempotent")
		})
	}
}

func TestTrimEmptiedTrailingPages(t *testing.T) {
	s := New()
	s.Load([]Page{{Content: "<p>one</p>"}, {Content: "<p>two</p>"}, {Content: "<p>three</p>"}})
	require.Equal(t, 3, s.Len())

	s.SetPageContent(1, "<p><br></p>")
	s.SetPageContent(2, "")
	s.Trim()

	assert.Equal(t, []Page{{ID: 1, Content: "<p>one</p>"}}, s.Pages())
}

func TestSnapshot(t *testing.T) {
	s := New()
	s.Load([]Page{{Content: "a", Header: "H"}, {Content: "b"}})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	data, err := s.Snapshot(now).Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"lastModified": "2026-03-01T12:00:00Z"`)
	assert.Contains(t, string(data), `"pages": [`)

	other := New()
	require.NoError(t, other.LoadSnapshot(data))
	assert.Equal(t, s.Pages(), other.Pages())
}

func TestLoadSnapshotMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "{pages:"},
		{name: "missing pages", data: `{"lastModified":"2026-03-01T12:00:00Z"}`},
		{name: "pages of wrong type", data: `{"pages":"nope"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.Load([]Page{{Content: "a"}, {Content: "b"}})

			err := s.LoadSnapshot([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformedSnapshot)
			assert.Equal(t, []Page{{ID: 1}}, s.Pages())
		})
	}
}

func TestLoadSnapshotToleratesLooseFields(t *testing.T) {
	tests := []struct {
		name string
		data string
		when time.Time
	}{
		{name: "unparsable lastModified", data: `{"pages":[{"id":1,"content":"<p>keep me</p>"}],"lastModified":"yesterday"}`},
		{name: "empty lastModified", data: `{"pages":[{"id":1,"content":"<p>keep me</p>"}],"lastModified":""}`},
		{name: "string id", data: `{"pages":[{"id":"1","content":"<p>keep me</p>"}]}`},
		{name: "missing id", data: `{"pages":[{"content":"<p>keep me</p>"}],"lastModified":"2026-03-01T12:00:00Z"}`,
			when: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := DecodeSnapshot([]byte(tt.data))
			require.NoError(t, err)
			assert.True(t, tt.when.Equal(snap.LastModified))

			s := New()
			require.NoError(t, s.LoadSnapshot([]byte(tt.data)))
			assert.Equal(t, []Page{{ID: 1, Content: "<p>keep me</p>"}}, s.Pages())
		})
	}
}

func TestLoadSnapshotEmptyPages(t *testing.T) {
	s := New()
	require.NoError(t, s.LoadSnapshot([]byte(`{"pages":[]}`)))
	assert.Equal(t, []Page{{ID: 1}}, s.Pages())
}

func TestSnapshotKeepsNonASCII(t *testing.T) {
	s := New()
	s.Load([]Page{{Content: "<p>naïve 日本</p>"}})
	snap := s.Snapshot(time.Now())
	data, err := snap.Encode()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "日本"))
}

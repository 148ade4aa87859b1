package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/pageflow/internal/pagestore"
)

func render(t *testing.T, pages []pagestore.Page) string {
	t.Helper()
	r := NewRenderer()
	r.Compress = false
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, pages, RenderOptions{Title: "Report"}))
	return buf.String()
}

func TestRenderOnePDFPagePerDocumentPage(t *testing.T) {
	out := render(t, []pagestore.Page{
		{ID: 1, Content: "<p>Hello world</p>", Header: "<p>Acme Corp</p>", Footer: "<p>Confidential</p>"},
		{ID: 2, Content: "<ul><li>first</li><li><b>second</b></li></ul>", Header: "<p>Acme Corp</p>", Footer: "<p>Confidential</p>"},
	})

	assert.True(t, bytes.HasPrefix([]byte(out), []byte("%PDF-")))
	assert.Contains(t, out, "/Count 2")
	assert.Contains(t, out, "(Hello world)Tj")
	assert.Contains(t, out, "(first)Tj")
	assert.Contains(t, out, "(second)Tj")
	assert.Contains(t, out, "(Acme Corp)Tj")
	assert.Contains(t, out, "(Confidential)Tj")
}

func TestRenderSkipsEmptyHeaderAndFooter(t *testing.T) {
	out := render(t, []pagestore.Page{{ID: 1, Content: "<p>body</p>", Header: "<p><br></p>", Footer: ""}})
	assert.Contains(t, out, "/Count 1")
	assert.Contains(t, out, "(body)Tj")
}

func TestRenderOrderedListMarkers(t *testing.T) {
	out := render(t, []pagestore.Page{{ID: 1, Content: `<ol><li>a</li><li>b</li></ol><ol style="list-style-type: upper-alpha"><li>c</li></ol>`}})
	assert.Contains(t, out, "(1.)Tj")
	assert.Contains(t, out, "(2.)Tj")
	assert.Contains(t, out, "(A.)Tj")
}

func TestRenderFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.pdf")
	r := NewRenderer()
	require.NoError(t, r.RenderFile([]pagestore.Page{{ID: 1, Content: "<p>x</p>"}}, path, RenderOptions{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want [3]int
	}{
		{"#ff0000", [3]int{255, 0, 0}},
		{"#0f0", [3]int{0, 255, 0}},
		{"Blue", [3]int{0, 0, 255}},
		{"rgb(1, 2, 3)", [3]int{1, 2, 3}},
		{"rgb(4,5,6)", [3]int{4, 5, 6}},
		{"bogus", [3]int{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseColor(tt.in))
		})
	}
}

func TestToAlpha(t *testing.T) {
	assert.Equal(t, "a", toAlpha(1, false))
	assert.Equal(t, "z", toAlpha(26, false))
	assert.Equal(t, "AA", toAlpha(27, true))
	assert.Equal(t, "", toAlpha(0, false))
}

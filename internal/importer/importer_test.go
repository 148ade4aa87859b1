package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/pageflow/internal/res"
)

func TestHTML(t *testing.T) {
	doc, err := HTML(strings.NewReader(`<!DOCTYPE html>
<html><head><title> Quarterly </title><style>p{color:red}</style></head>
<body><header>Acme</header><h1>Report</h1><script>alert(1)</script><p>Body</p><footer><i>p. 1</i></footer></body></html>`), nil)
	require.NoError(t, err)

	assert.Equal(t, "Quarterly", doc.Title)
	assert.Equal(t, "Acme", doc.Header)
	assert.Equal(t, "<i>p. 1</i>", doc.Footer)
	assert.Equal(t, "<h1>Report</h1><p>Body</p>", doc.Content)
}

func TestHTMLCollectsStylesheets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.css"), []byte("p { margin: 0 }"), 0644))
	loader := res.NewLoader(filepath.Join(dir, "index.html"))

	doc, err := HTML(strings.NewReader(`<html><head>
<link rel="stylesheet" href="site.css">
<link rel="stylesheet" href="missing.css">
<style> h1 { font-size: 20px } </style>
</head><body><p>x</p></body></html>`), loader)
	require.NoError(t, err)
	assert.Equal(t, []string{"p { margin: 0 }", "h1 { font-size: 20px }"}, doc.Stylesheets)
	assert.Equal(t, "<p>x</p>", doc.Content)
}

func TestHTMLFragment(t *testing.T) {
	doc, err := HTML(strings.NewReader("<p>just a fragment</p>"), nil)
	require.NoError(t, err)
	assert.Equal(t, "<p>just a fragment</p>", doc.Content)
	assert.Empty(t, doc.Title)
}

func TestHTMLNormalizesToNFC(t *testing.T) {
	doc, err := HTML(strings.NewReader("<p>cafe\u0301</p>"), nil)
	require.NoError(t, err)
	assert.Equal(t, "<p>caf\u00e9</p>", doc.Content)
}

func TestMarkdown(t *testing.T) {
	src := "---\ntitle: Notes\nheader: \"**Acme**\"\n---\n# Heading\n\nSome *text*.\n\n- one\n- two\n"
	doc, err := Markdown([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "Notes", doc.Title)
	assert.Equal(t, "<p><strong>Acme</strong></p>", doc.Header)
	assert.Empty(t, doc.Footer)
	assert.Contains(t, doc.Content, "<h1>Heading</h1>")
	assert.Contains(t, doc.Content, "<p>Some <em>text</em>.</p>")
	assert.Contains(t, doc.Content, "<li>one</li>")
}

func TestMarkdownGFMTable(t *testing.T) {
	doc, err := Markdown([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"))
	require.NoError(t, err)
	assert.Contains(t, doc.Content, "<table>")
	assert.Contains(t, doc.Content, "<td>1</td>")
}

func TestMarkdownBadFrontmatter(t *testing.T) {
	_, err := Markdown([]byte("---\ntitle: x\n# never closed\n"))
	assert.Error(t, err)

	_, err = Markdown([]byte("---\ntitle: [x\n---\nbody\n"))
	assert.Error(t, err)
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraphs", "one\n\ntwo", "<p>one</p><p>two</p>"},
		{"line breaks", "a\nb", "<p>a<br>b</p>"},
		{"escaped", "x < y & z", "<p>x &lt; y &amp; z</p>"},
		{"crlf", "a\r\n\r\nb", "<p>a</p><p>b</p>"},
		{"blank", "\n\n  \n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in).Content)
		})
	}
}

func TestImportByKind(t *testing.T) {
	doc, err := Import(&res.Resource{Kind: res.KindText, Data: []byte("hi")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", doc.Content)

	doc, err = Import(&res.Resource{Kind: res.KindMarkdown, Data: []byte("*hi*")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "<p><em>hi</em></p>", doc.Content)

	_, err = Import(&res.Resource{Kind: res.KindCSS, URL: "a.css"}, nil)
	assert.ErrorIs(t, err, ErrUnsupported)
}

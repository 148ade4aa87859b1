package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	htmlparser "github.com/gompdf/pageflow/internal/parser/html"
)

func parseOne(t *testing.T, markup string) *html.Node {
	t.Helper()
	nodes, err := htmlparser.NewParser().ParseFragment(markup)
	require.NoError(t, err)
	require.NotEmpty(t, nodes)
	return nodes[0]
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		value string
		want  float64
	}{
		{"", 7},
		{"auto", 7},
		{"10px", 10},
		{"50%", 100},
		{"2em", 40},
		{"1.5rem", 24},
		{"12pt", 16},
		{"1in", 96},
		{"42", 42},
		{"garbage", 7},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseLength(tt.value, 200, 20, 7), 0.001)
		})
	}
}

func TestParseBoxShorthand(t *testing.T) {
	top, right, bottom, left := ParseBoxShorthand("1px 2px 3px", 0, 16, 0)
	assert.Equal(t, []float64{1, 2, 3, 2}, []float64{top, right, bottom, left})

	top, right, bottom, left = ParseBoxShorthand("1em 0", 0, 10, 0)
	assert.Equal(t, []float64{10, 0, 10, 0}, []float64{top, right, bottom, left})
}

func TestComputeHeadingUsesUserAgentSheet(t *testing.T) {
	e := NewStyleEngine()
	h1 := parseOne(t, "<h1>Title</h1>")

	cs := e.Compute(h1, nil)
	assert.InDelta(t, 32, cs.FontSize(), 0.001)
	assert.True(t, cs.Bold())
	assert.Equal(t, "0.67em 0", cs.Get("margin"))
}

func TestComputeInlineStyleOverridesSheet(t *testing.T) {
	e := NewStyleEngine()
	h1 := parseOne(t, `<h1 style="font-size: 19px; font-weight: normal">x</h1>`)

	cs := e.Compute(h1, nil)
	assert.InDelta(t, 19, cs.FontSize(), 0.001)
	assert.False(t, cs.Bold())
}

func TestComputeInheritsFromParent(t *testing.T) {
	e := NewStyleEngine()
	div := parseOne(t, `<div style="font-size: 20px; font-family: 'Times New Roman', serif"><span style="font-size: 1.5em">x</span></div>`)

	parent := e.Compute(div, nil)
	child := e.Compute(div.FirstChild, parent)

	assert.InDelta(t, 30, child.FontSize(), 0.001)
	assert.Equal(t, "Times New Roman", child.Family())
	assert.Equal(t, SourceInherited, child["font-family"].Source)
}

func TestComputeLegacyFontElement(t *testing.T) {
	e := NewStyleEngine()
	font := parseOne(t, `<font size="7" face="Courier New">x</font>`)

	cs := e.Compute(font, nil)
	assert.InDelta(t, 48, cs.FontSize(), 0.001)
	assert.Equal(t, "Courier New", cs.Family())
}

func TestDescendantSelector(t *testing.T) {
	e := NewStyleEngine()
	ul := parseOne(t, `<ul><li><ul><li>nested</li></ul></li></ul>`)
	inner := ul.FirstChild.FirstChild

	assert.Equal(t, "1em 0", e.Compute(ul, nil).Get("margin"))
	assert.Equal(t, "0", e.Compute(inner, nil).Get("margin"))
}

func TestLineHeight(t *testing.T) {
	tests := []struct {
		name string
		cs   ComputedStyle
		want float64
	}{
		{"normal", ComputedStyle{"font-size": {Value: "10px"}}, 12},
		{"multiplier", ComputedStyle{"font-size": {Value: "10px"}, "line-height": {Value: "1.5"}}, 15},
		{"px", ComputedStyle{"font-size": {Value: "10px"}, "line-height": {Value: "22px"}}, 22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.cs.LineHeight(), 0.001)
		})
	}
}

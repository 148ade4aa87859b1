package html

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func TestParseFragmentRoundTrip(t *testing.T) {
	p := NewParser()
	nodes, err := p.ParseFragment(`<div><b>Hello</b> world</div><p>second</p>`)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	out, err := RenderNodes(nodes)
	require.NoError(t, err)
	assert.Equal(t, `<div><b>Hello</b> world</div><p>second</p>`, out)
}

func TestParseIntoReplacesChildren(t *testing.T) {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	p := NewParser()
	require.NoError(t, p.ParseInto(container, "old"))
	require.NoError(t, p.ParseInto(container, "<i>new</i>"))

	out, err := RenderChildren(container)
	require.NoError(t, err)
	assert.Equal(t, "<i>new</i>", out)
	assert.Equal(t, 1, ChildCount(container))
}

func TestParseDocumentFindsBody(t *testing.T) {
	body, err := ParseDocument(strings.NewReader(`<html><head><title>x</title></head><body><p>hi</p></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "body", body.Data)
	assert.Equal(t, "hi", TextContent(body))
}

func TestChildHelpers(t *testing.T) {
	nodes, err := NewParser().ParseFragment(`<ul><li>a</li><li>b</li><li>c</li></ul>`)
	require.NoError(t, err)
	ul := nodes[0]

	assert.Equal(t, 3, ChildCount(ul))
	second := ChildAt(ul, 1)
	require.NotNil(t, second)
	assert.Equal(t, "b", TextContent(second))
	assert.Equal(t, 1, ChildIndex(ul, second))
	assert.Nil(t, ChildAt(ul, 3))
	assert.Nil(t, ChildAt(ul, -1))
}

func TestShallowCloneKeepsAttributes(t *testing.T) {
	nodes, err := NewParser().ParseFragment(`<span style="color: red">text</span>`)
	require.NoError(t, err)

	clone := ShallowClone(nodes[0])
	assert.Nil(t, clone.FirstChild)
	v, ok := Attr(clone, "style")
	assert.True(t, ok)
	assert.Equal(t, "color: red", v)

	clone.Attr[0].Val = "changed"
	v, _ = Attr(nodes[0], "style")
	assert.Equal(t, "color: red", v)
}

func TestIsBlankText(t *testing.T) {
	assert.True(t, IsBlankText(&html.Node{Type: html.TextNode, Data: " \n\t"}))
	assert.False(t, IsBlankText(&html.Node{Type: html.TextNode, Data: " x "}))
	assert.False(t, IsBlankText(&html.Node{Type: html.ElementNode, Data: "br"}))
	assert.False(t, IsBlankText(nil))
}

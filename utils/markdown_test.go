package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownBold(t *testing.T) {
	out, err := NewMarkdown(true).Render("**hi**")
	require.Nil(t, err)
	assert.Contains(t, out, "<strong>hi</strong>")
}

func TestMarkdownParagraph(t *testing.T) {
	out, err := NewMarkdown(true).Render("world")
	require.Nil(t, err)
	assert.Equal(t, "<p>world</p>", strings.TrimSpace(out))
}

func TestMarkdownSanitizesScripts(t *testing.T) {
	src := "hello\n\n<script>alert(1)</script>"

	safe, err := NewMarkdown(true).Render(src)
	require.Nil(t, err)
	assert.NotContains(t, safe, "<script>")

	raw, err := NewMarkdown(false).Render(src)
	require.Nil(t, err)
	assert.Contains(t, raw, "<script>")
}

func TestMarkdownEmptyInput(t *testing.T) {
	out, err := NewMarkdown(true).Render("")
	require.Nil(t, err)
	assert.Equal(t, "", out)
}

func TestMarkdownTables(t *testing.T) {
	out, err := NewMarkdown(true).Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.Nil(t, err)
	assert.Contains(t, out, "<table>")
}

func TestRenderSafe(t *testing.T) {
	out := RenderSafe(NewMarkdown(true), "1", "*x*")
	assert.Contains(t, string(out), "<em>x</em>")
}

func TestMarkdownKeepsCodeLanguageClass(t *testing.T) {
	out, err := NewMarkdown(true).Render("```go\nfmt.Println(1)\n```\n")
	require.Nil(t, err)
	assert.Contains(t, out, `class="language-go"`)
}

type failingRenderer struct{}

func (failingRenderer) Render(string) (string, error) {
	return "", errors.New("converter broke")
}

func TestRenderSafeFallsBackToEscapedSource(t *testing.T) {
	out := RenderSafe(failingRenderer{}, "1", "a <b> & **c**")
	assert.Equal(t, "<p>a &lt;b&gt; &amp; **c**</p>", string(out))
}

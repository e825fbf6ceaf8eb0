package utils

import (
	"bytes"
	"html"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// MarkdownRenderer converts markdown source to HTML.
type MarkdownRenderer interface {
	Render(src string) (string, error)
}

// Markdown converts post markdown to HTML. Raw HTML in the source is kept by
// the converter; Sanitize decides whether it survives.
type Markdown struct {
	md       goldmark.Markdown
	sanitize bool
}

// NewMarkdown returns a GFM renderer. With sanitize set, output goes through
// the UGC policy.
func NewMarkdown(sanitize bool) *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		sanitize: sanitize,
	}
}

// Render converts src to HTML.
func (m *Markdown) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	out := buf.String()
	if m.sanitize {
		out = Sanitize(out)
	}
	return out, nil
}

// RenderSafe never fails: on a conversion error it logs and falls back to the
// escaped source wrapped in a paragraph.
func RenderSafe(r MarkdownRenderer, id, src string) template.HTML {
	out, err := r.Render(src)
	if err != nil {
		Sugar.Warnw("markdown render failed", "post", id, "err", err)
		return template.HTML("<p>" + html.EscapeString(src) + "</p>")
	}
	return template.HTML(out)
}

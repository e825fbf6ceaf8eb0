// Package views holds the embedded page templates and stylesheet.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/cppla/mdblog/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names.
const (
	Index    = "index.html"
	Post     = "post.html"
	Create   = "create.html"
	NotFound = "notfound.html"
	Error    = "error.html"
)

// PageData is the single data shape every template receives.
type PageData struct {
	SiteTitle string
	Title     string
	Posts     []models.PostView
	Post      models.PostView
	Status    int
	Message   string
	RequestID string
}

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("could not parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// MustRenderer is NewRenderer for program start, where a parse error is fatal.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes the named page into a buffer, so a failing template never
// leaves a half-written response behind.
func (r *Renderer) Render(name string, data PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("could not render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Static returns the stylesheet directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer turns a named document template plus its context into the bytes
// that get uploaded as the document artifact. The implementation is
// synchronous; callers bound it with a context deadline at the call site.
type Renderer interface {
	Render(templateName string, data any) ([]byte, error)
}

// TemplateRenderer renders the embedded document templates. Output is
// deterministic for identical input, which the invoice regeneration
// short-circuit relies on.
type TemplateRenderer struct {
	tmpl *template.Template
}

// NewTemplateRenderer parses the embedded template set.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.New("documents").Funcs(template.FuncMap{
		"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse document templates: %w", err)
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

// Render executes the named template against data.
func (r *TemplateRenderer) Render(templateName string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, templateName, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", templateName, err)
	}
	return buf.Bytes(), nil
}

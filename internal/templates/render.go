// Package templates handles HTML template rendering for Datastar SSE responses.
package templates

import (
	"bytes"
	"html/template"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// funcMap provides common template functions.
var funcMap = template.FuncMap{
	// dict creates a map from key-value pairs, useful for passing multiple values to nested templates
	"dict": func(values ...any) map[string]any {
		if len(values)%2 != 0 {
			return nil
		}
		m := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				continue
			}
			m[key] = values[i+1]
		}
		return m
	},
	"coord":  Coord,
	"hrdate": HRDate,
}

// Coord formats a coordinate the way popups show it: the shortest decimal
// form cut to seven characters.
func Coord(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if len(s) > 7 {
		s = s[:7]
	}
	return s
}

// HRDate formats t as a Croatian short date, e.g. "18. 10. 2026.".
func HRDate(t time.Time) string {
	return t.Format("2. 1. 2006.")
}

// Renderer manages HTML fragment templates.
type Renderer struct {
	dir       string
	templates *template.Template
	mu        sync.RWMutex
}

// New creates a new template renderer.
// fragmentsDir should be the path to web/templates/fragments/
func New(fragmentsDir string) (*Renderer, error) {
	tmpl, err := parse(fragmentsDir)
	if err != nil {
		return nil, err
	}
	return &Renderer{dir: fragmentsDir, templates: tmpl}, nil
}

func parse(dir string) (*template.Template, error) {
	pattern := filepath.Join(dir, "*.html")
	return template.New("").Funcs(funcMap).ParseGlob(pattern)
}

// Dir returns the fragments directory.
func (r *Renderer) Dir() string { return r.dir }

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToBuffer(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer renders a named template to a buffer.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.templates.ExecuteTemplate(buf, name, data)
}

// MustRender renders a template and panics on error.
// Use only when you're certain the template exists.
func (r *Renderer) MustRender(name string, data any) string {
	s, err := r.Render(name, data)
	if err != nil {
		panic(err)
	}
	return s
}

// Reload reloads templates from disk (useful for dev hot-reload).
// A parse error keeps the previous templates.
func (r *Renderer) Reload() error {
	tmpl, err := parse(r.dir)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.templates = tmpl
	r.mu.Unlock()

	return nil
}

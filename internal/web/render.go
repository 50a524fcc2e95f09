package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/kailabs/kapsel/internal/capsule"
)

// Renderer wraps template rendering with the base layout.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer parses all templates against the shared layout.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	funcMap := template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
		"formatTime": formatTime,
		"formatPct":  formatPct,
		"safeHTML":   func(s string) template.HTML { return template.HTML(s) },
	}

	layout := template.Must(template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := []string{"list.html", "detail.html", "search.html", "collisions.html", "error.html"}
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		clone := template.Must(layout.Clone())
		templates[page] = template.Must(clone.ParseFS(templateFS, page))
	}

	return &Renderer{templates: templates, version: version}
}

type pageData struct {
	Title   string
	Version string
	Data    any
}

func (r *Renderer) renderPage(w http.ResponseWriter, page, title string, data any) {
	tmpl, ok := r.templates[page]
	if !ok {
		log.Printf("render: unknown template %q", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", pageData{
		Title:   title,
		Version: r.version,
		Data:    data,
	}); err != nil {
		log.Printf("render: execute %q: %v", page, err)
	}
}

type errorData struct {
	Status  int
	Message string
}

func (r *Renderer) renderError(w http.ResponseWriter, status int, message string) {
	tmpl, ok := r.templates["error.html"]
	if !ok {
		http.Error(w, message, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout.html", pageData{
		Title:   "Error",
		Version: r.version,
		Data:    errorData{Status: status, Message: message},
	}); err != nil {
		log.Printf("render: execute error page: %v", err)
	}
}

// renderMarkdown converts a capsule's markdown rendering to HTML.
// Falls back to escaped preformatted text if conversion fails.
func renderMarkdown(c *capsule.Capsule) template.HTML {
	md := c.ToMarkdown()
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		escaped := template.HTMLEscapeString(md)
		return template.HTML("<pre>" + escaped + "</pre>")
	}
	return template.HTML(buf.String())
}

func formatTime(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).Local().Format("Jan 2, 2006 15:04")
}

func formatPct(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

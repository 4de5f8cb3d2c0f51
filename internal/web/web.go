package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page template names
const (
	PageIndex = "index.html"
	PageInfo  = "info.html"
	PageAdmin = "admin.html"
)

// IndexView is rendered by PageIndex.
type IndexView struct {
	Jobs  []domain.Job
	Error string
}

// InfoView is rendered by PageInfo for listings without an apply link.
type InfoView struct {
	Job domain.Job
}

// Renderer executes the embedded page templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"formatDate": FormatDate,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(w io.Writer, page string, data any) error {
	return r.tmpl.ExecuteTemplate(w, page, data)
}

// Static returns the embedded static assets (logos, scripts) rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// FormatDate renders a YYYY-MM-DD date the Korean way ("2025년 1월 15일").
// Anything unparseable is returned as is.
func FormatDate(s string) string {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%d년 %d월 %d일", t.Year(), int(t.Month()), t.Day())
}

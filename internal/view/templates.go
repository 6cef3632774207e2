package view

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/almacen-console/almacen-console/internal/shared"
	"github.com/almacen-console/almacen-console/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	// Role is the unverified token role claim used to filter menu entries.
	// Display only; the backend authorises every call.
	Role string
	Data any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"money": func(v float64) string {
			return fmt.Sprintf("$%.2f", v)
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"mul": func(qty int, price float64) float64 { return float64(qty) * price },
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// RenderPage fills the shared TemplateData fields from the request session
// and executes the named template. Status zero means 200.
func (e *Engine) RenderPage(w http.ResponseWriter, r *http.Request, csrf *shared.CSRFManager, status int, name, title, role string, data any) error {
	sess := shared.SessionFromContext(r.Context())
	csrfToken := ""
	if csrf != nil {
		csrfToken, _ = csrf.EnsureToken(r.Context(), sess)
	}
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	if status != 0 && status != http.StatusOK {
		w.WriteHeader(status)
	}
	return e.Render(w, name, TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Role:        role,
		Data:        data,
	})
}

package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"billing-intelligence/internal/common/format"
	"billing-intelligence/internal/dashboard"
	copilotbridge "billing-intelligence/internal/panels/copilot-bridge"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"currency": format.Currency,
	"amount":   format.Amount,
	"score": func(v float64) string {
		return fmt.Sprintf("%.4f", v)
	},
}

// Renderer executes the page templates.
type Renderer struct {
	page  *template.Template
	error *template.Template
}

func NewRenderer() (*Renderer, error) {
	page, err := template.New("page.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	errPage, err := template.New("error.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/error.html")
	if err != nil {
		return nil, fmt.Errorf("parse error template: %w", err)
	}
	return &Renderer{page: page, error: errPage}, nil
}

type pageView struct {
	*dashboard.Page
	Chart          *AreaChart
	CopilotHeading string
}

type errorView struct {
	PageTitle string
	Title     string
	Code      string
	Message   string
	RequestID string
}

// Page writes the dashboard. Templates render into a buffer first so a
// template failure never produces a half-written 200.
func (rd *Renderer) Page(w http.ResponseWriter, page *dashboard.Page) error {
	view := pageView{
		Page:           page,
		Chart:          NewAreaChart(page.Billing.Records),
		CopilotHeading: copilotbridge.Subheader,
	}
	return rd.write(w, http.StatusOK, rd.page, view)
}

// Error writes the generic error surface.
func (rd *Renderer) Error(w http.ResponseWriter, status int, code, message, requestID string) error {
	view := errorView{
		PageTitle: dashboard.PageTitle,
		Title:     dashboard.Title,
		Code:      code,
		Message:   message,
		RequestID: requestID,
	}
	return rd.write(w, status, rd.error, view)
}

func (rd *Renderer) write(w http.ResponseWriter, status int, tmpl *template.Template, data interface{}) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

package web

import (
	"net/http"

	"billing-intelligence/internal/dashboard"
)

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, dashboard.Selection{
		Segment: r.URL.Query().Get("segment"),
	})
}

// handleSubmit is the copilot button: the page re-renders with the
// submitted question.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, errInvalidForm(err))
		return
	}
	s.renderPage(w, r, dashboard.Selection{
		Segment:   r.PostForm.Get("segment"),
		Question:  r.PostForm.Get("question"),
		Submitted: true,
	})
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, sel dashboard.Selection) {
	page, err := s.dashboard.Render(r.Context(), sel)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if err := s.renderer.Page(w, page); err != nil {
		s.renderError(w, r, err)
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr, status := s.errors.Classify(r, err)
	if rerr := s.renderer.Error(w, status, string(stdErr.Code), stdErr.Message, RequestID(r.Context())); rerr != nil {
		http.Error(w, http.StatusText(status), status)
	}
}

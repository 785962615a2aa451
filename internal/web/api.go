package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperrors "billing-intelligence/internal/common/errors"
	"billing-intelligence/internal/common/validation"
)

const maxBodyBytes = 64 << 10

var copilotRequestSchema = validation.MustCompile(`{
  "type": "object",
  "properties": {
    "question": {"type": "string", "maxLength": 4000},
    "segment":  {"type": ["string", "null"]}
  },
  "required": ["question"],
  "additionalProperties": false
}`)

type copilotRequest struct {
	Question string  `json:"question"`
	Segment  *string `json:"segment"`
}

func errInvalidForm(err error) error {
	return apperrors.NewInvalidRequestError(err.Error())
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	out, err := s.dashboard.Segments(r.Context(), r.URL.Query().Get("segment"))
	if err != nil {
		s.errors.HandleAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleBilling serves the series for ?segment=, or the default segment
// when the parameter is absent. Unlike the page, an unknown segment is an
// error here.
func (s *Server) handleBilling(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requested := r.URL.Query().Get("segment")

	segments, err := s.dashboard.Segments(ctx, requested)
	if err != nil {
		s.errors.HandleAPIError(w, r, err)
		return
	}
	if requested != "" && !segments.Allows(requested) {
		s.errors.HandleAPIError(w, r, apperrors.NewSegmentNotAllowedError(requested))
		return
	}

	out, err := s.dashboard.Billing(ctx, segments)
	if err != nil {
		s.errors.HandleAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	out, err := s.dashboard.Anomalies(r.Context())
	if err != nil {
		s.errors.HandleAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCopilot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errors.HandleAPIError(w, r, apperrors.NewInvalidRequestError(err.Error()))
		return
	}

	result, err := copilotRequestSchema.ValidateBytes(body)
	if err != nil {
		s.errors.HandleAPIError(w, r, apperrors.NewInvalidRequestError("request body is not valid JSON"))
		return
	}
	if !result.Valid {
		s.errors.HandleAPIError(w, r, apperrors.NewInvalidRequestError(result.String()))
		return
	}

	var req copilotRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.errors.HandleAPIError(w, r, apperrors.NewInvalidRequestError(err.Error()))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.errors.HandleAPIError(w, r, apperrors.NewEmptyQuestionError())
		return
	}

	requested := ""
	if req.Segment != nil {
		requested = *req.Segment
	}
	segments, err := s.dashboard.Segments(ctx, requested)
	if err != nil {
		s.errors.HandleAPIError(w, r, err)
		return
	}
	if requested != "" && !segments.Allows(requested) {
		s.errors.HandleAPIError(w, r, apperrors.NewSegmentNotAllowedError(requested))
		return
	}

	out, err := s.dashboard.Ask(ctx, req.Question, segments.Selected)
	if err != nil {
		s.errors.HandleAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

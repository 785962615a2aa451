// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorHandler turns request errors into logged, structured HTTP responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleAPIError writes err as a JSON error body and returns the status used.
func (h *ErrorHandler) HandleAPIError(w http.ResponseWriter, r *http.Request, err error) int {
	stdErr := Normalize(err)
	httpErr := ConvertToHTTPError(stdErr)

	h.logError(r, stdErr, httpErr.Status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": httpErr})
	return httpErr.Status
}

// Classify normalizes err and logs it, returning what a page renderer needs
// to show the default error surface.
func (h *ErrorHandler) Classify(r *http.Request, err error) (*StandardError, int) {
	stdErr := Normalize(err)
	status := HTTPStatus(stdErr.Code)
	h.logError(r, stdErr, status)
	return stdErr, status
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError, status int) {
	fields := map[string]interface{}{
		"method":        r.Method,
		"path":          r.URL.Path,
		"status":        status,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields)
		return
	}
	h.logger.Warn("request rejected", fields)
}

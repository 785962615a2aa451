// Package errors provides standardized error handling for the dashboard's
// HTTP surface.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeWarehouseConnectionFailed ErrorCode = "WAREHOUSE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed      ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout              ErrorCode = "QUERY_TIMEOUT"
	ErrCodeInvalidQueryType          ErrorCode = "INVALID_QUERY_TYPE"

	ErrCodeSegmentNotAllowed ErrorCode = "SEGMENT_NOT_ALLOWED"
	ErrCodeEmptyQuestion     ErrorCode = "EMPTY_QUESTION"
	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"

	ErrCodeCompletionFailed  ErrorCode = "COMPLETION_FAILED"
	ErrCodeCompletionTimeout ErrorCode = "COMPLETION_TIMEOUT"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Sentinel is a comparable error value that carries an ErrorCode. Packages
// declare their own sentinels and wrap them with %w.
type Sentinel struct {
	code ErrorCode
}

// NewSentinel returns a sentinel error for code.
func NewSentinel(code ErrorCode) *Sentinel {
	return &Sentinel{code: code}
}

func (s *Sentinel) Error() string { return string(s.code) }

// Code returns the sentinel's error code.
func (s *Sentinel) Code() ErrorCode { return s.code }

type coded interface {
	Code() ErrorCode
}

// ==========================
// 2. HTTP Error Integration
// ==========================

// HTTPError is the body returned by the JSON API for failed requests.
type HTTPError struct {
	Status    int       `json:"-"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTPError[%d %s]: %s", e.Status, e.Code, e.Message)
}

// ==========================
// 3. Error Constructors
// ==========================

// NewWarehouseConnectionFailedError creates a retryable connection error.
func NewWarehouseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWarehouseConnectionFailed,
		Message:   "Warehouse connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSegmentNotAllowedError reports a segment outside the selectable set.
func NewSegmentNotAllowedError(segment string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSegmentNotAllowed,
		Message:   "Segment is not one of the available options",
		Details:   fmt.Sprintf("segment: %s", segment),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyQuestionError reports a blank copilot question.
func NewEmptyQuestionError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyQuestion,
		Message:   "Enter a question first.",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError reports a malformed API request body.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Normalization
// ==========================

// Normalize converts any error into a StandardError. Wrapped sentinels keep
// their code and the full chain text becomes the details.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}

	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	var c coded
	if stderrors.As(err, &c) {
		code := c.Code()
		return &StandardError{
			Code:      code,
			Message:   messageFor(code),
			Details:   err.Error(),
			Retryable: IsRetryableErrorCode(code),
			Timestamp: time.Now().UTC(),
		}
	}

	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func messageFor(code ErrorCode) string {
	switch code {
	case ErrCodeWarehouseConnectionFailed:
		return "Warehouse connection error"
	case ErrCodeQueryExecutionFailed:
		return "Warehouse query execution error"
	case ErrCodeQueryTimeout:
		return "Warehouse query timeout"
	case ErrCodeInvalidQueryType:
		return "Unsupported query type"
	case ErrCodeSegmentNotAllowed:
		return "Segment is not one of the available options"
	case ErrCodeEmptyQuestion:
		return "Enter a question first."
	case ErrCodeInvalidRequest:
		return "Request validation failed"
	case ErrCodeCompletionFailed:
		return "Completion model error"
	case ErrCodeCompletionTimeout:
		return "Completion model timeout"
	default:
		return "Unexpected error"
	}
}

// HTTPStatusMapping maps internal error codes to HTTP status codes.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeWarehouseConnectionFailed: http.StatusServiceUnavailable,
	ErrCodeQueryExecutionFailed:      http.StatusBadGateway,
	ErrCodeQueryTimeout:              http.StatusGatewayTimeout,
	ErrCodeInvalidQueryType:          http.StatusInternalServerError,
	ErrCodeSegmentNotAllowed:         http.StatusBadRequest,
	ErrCodeEmptyQuestion:             http.StatusBadRequest,
	ErrCodeInvalidRequest:            http.StatusBadRequest,
	ErrCodeCompletionFailed:          http.StatusBadGateway,
	ErrCodeCompletionTimeout:         http.StatusGatewayTimeout,
}

// HTTPStatus returns the HTTP status for code, 500 when unmapped.
func HTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ConvertToHTTPError converts a StandardError to the JSON API error body.
func ConvertToHTTPError(stdErr *StandardError) *HTTPError {
	return &HTTPError{
		Status:    HTTPStatus(stdErr.Code),
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Timestamp: stdErr.Timestamp,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode reports whether a client may retry the request.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeWarehouseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeQueryTimeout,
		ErrCodeCompletionFailed,
		ErrCodeCompletionTimeout:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "WAREHOUSE") || strings.Contains(codeStr, "QUERY"):
		return "WAREHOUSE"
	case strings.Contains(codeStr, "COMPLETION"):
		return "AI"
	case strings.Contains(codeStr, "SEGMENT") || strings.Contains(codeStr, "QUESTION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

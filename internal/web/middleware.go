package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"billing-intelligence/internal/common/logger"
)

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the id assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// withRequestContext tags each request with an id and a request-scoped
// logger, logs the outcome, and turns panics into 500s.
func withRequestContext(log logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		reqLog := log.WithFields(map[string]interface{}{"requestId": id})
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = logger.IntoContext(ctx, reqLog)

		rec := &recorder{ResponseWriter: w}
		defer func() {
			if p := recover(); p != nil {
				reqLog.Error("panic serving request", map[string]interface{}{
					"panic": p,
					"path":  r.URL.Path,
				})
				if rec.status == 0 {
					http.Error(rec, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			reqLog.Info("request completed", map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     status,
				"bytes":      rec.bytes,
				"durationMs": time.Since(start).Milliseconds(),
			})
		}()

		next.ServeHTTP(rec, r.WithContext(ctx))
	})
}

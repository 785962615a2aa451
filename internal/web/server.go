// Package web serves the billing dashboard page, its JSON API and the
// operational endpoints.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"billing-intelligence/internal/common/config"
	apperrors "billing-intelligence/internal/common/errors"
	"billing-intelligence/internal/common/logger"
	"billing-intelligence/internal/common/observability"
	"billing-intelligence/internal/dashboard"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	config    config.ServerConfig
	dashboard *dashboard.Service
	renderer  *Renderer
	errors    *apperrors.ErrorHandler
	obs       *observability.Observability
	readiness map[string]Pinger
	logger    logger.Logger
	http      *http.Server
}

// NewServer wires the routes. obs may be nil; readiness lists the
// dependencies /ready pings.
func NewServer(cfg config.ServerConfig, svc *dashboard.Service, obs *observability.Observability, readiness map[string]Pinger, log logger.Logger) (*Server, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	if obs == nil {
		obs = &observability.Observability{}
	}

	s := &Server{
		config:    cfg,
		dashboard: svc,
		renderer:  renderer,
		errors:    apperrors.NewErrorHandler(log),
		obs:       obs,
		readiness: readiness,
		logger:    log,
	}
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s, nil
}

// Handler returns the fully wrapped route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	route := func(pattern, name string, h http.HandlerFunc) {
		mux.Handle(pattern, s.obs.Middleware(name, h))
	}

	route("GET /{$}", "/", s.handlePage)
	route("POST /{$}", "/", s.handleSubmit)

	route("GET /api/v1/segments", "/api/v1/segments", s.handleSegments)
	route("GET /api/v1/billing", "/api/v1/billing", s.handleBilling)
	route("GET /api/v1/anomalies", "/api/v1/anomalies", s.handleAnomalies)
	route("POST /api/v1/copilot", "/api/v1/copilot", s.handleCopilot)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return withRequestContext(s.logger, mux)
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("dashboard listening", map[string]interface{}{"addr": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.readiness))
	status := http.StatusOK
	for name, p := range s.readiness {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status": state,
		"checks": checks,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package api provides the HTTP server for mortgagewatch.
//
// It exposes the dashboard render cycle, the forecast dataset, labor
// statistics and an HTML dashboard page.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"github.com/seenimoa/mortgagewatch/internal/config"
	"github.com/seenimoa/mortgagewatch/internal/dashboard"
	"github.com/seenimoa/mortgagewatch/internal/infra"
	"github.com/seenimoa/mortgagewatch/internal/provider"
	"github.com/seenimoa/mortgagewatch/web"
)

// Version is reported by the health endpoint. Set by the CLI.
var Version = "dev"

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	dash     *dashboard.Dashboard
	registry *provider.Registry
	cache    *infra.Cache
	started  time.Time
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) (*Server, error) {
	dash, deps, err := dashboard.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return newServer(cfg, dash, deps), nil
}

func newServer(cfg *config.Config, dash *dashboard.Dashboard, deps dashboard.Deps) *Server {
	s := &Server{
		cfg:      cfg,
		dash:     dash,
		registry: deps.Registry,
		cache:    deps.Cache,
		started:  time.Now(),
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and the cache janitor, and shuts
// both down gracefully on SIGINT or SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	janitor, err := infra.NewJanitor(s.cache, s.cfg.Cache.CleanupSchedule)
	if err != nil {
		return err
	}
	janitor.Start()
	defer janitor.Stop()

	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-done:
	}
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Live market and guidance
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/guidance", s.handleGuidance)

		// Forecast dataset
		r.Get("/forecast", s.handleForecast)
		r.Get("/forecast/indicators", s.handleForecastIndicators)
		r.Get("/forecast/export.csv", s.handleForecastExport)
		r.Get("/forecast/chart.png", s.handleForecastChart)
		r.Get("/forecast/correlation", s.handleForecastCorrelation)
		r.Get("/forecast/correlation.png", s.handleForecastCorrelationChart)

		// Labor statistics
		r.Get("/labor/places", s.handleLaborPlaces)
		r.Get("/labor/counties", s.handleLaborCounties)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
		r.Get("/providers", s.handleProviders)
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.StaticFS())))
	r.Get("/", s.handleDashboardPage)

	return r
}

// requestLogger logs one line per request through logrus.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request served")
	})
}

// ════════════════════════════════════════════════════════════════════
// Response helpers
// ════════════════════════════════════════════════════════════════════

// APIResponse is the standard JSON envelope. Source names the section or
// provider an error came from.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Source  string `json:"source,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("failed to write JSON response")
	}
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, source, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
		Source:  source,
	})
}

func writeBytes(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.WithError(err).Debug("failed to write response body")
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"cledumemoire/internal/domain/ports/adapter"
	"cledumemoire/internal/infra/api/apiv1"
	"cledumemoire/internal/infra/logging"
	"cledumemoire/internal/infra/metrics"
)

type RouterConfig struct {
	ClientURL      string
	RequestTimeout time.Duration
	RateLimit      int
	RateWindow     time.Duration
	// UploadDir is served under /uploads when files are stored on disk.
	UploadDir string
}

// HealthCheck reports whether one dependency answers.
type HealthCheck func(ctx context.Context) error

// NewRouter mounts /health, /metrics and the v1 routes under /api.
// limiter may be nil to disable the per-IP limit.
func NewRouter(v1 *apiv1.Server, resp *apiv1.Responder, limiter adapter.RateLimiter, cfg RouterConfig, checks map[string]HealthCheck, logger *zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(TraceID(), RequestLog(logger), Recover(logger, resp.Internal), CORS(cfg.ClientURL))
	r.NotFound(resp.NotFound)

	r.Get("/health", healthHandler(checks))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	if cfg.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	r.Route("/api", func(r chi.Router) {
		if limiter != nil && cfg.RateLimit > 0 {
			r.Use(RateLimit(limiter, cfg.RateLimit, cfg.RateWindow, logger, resp.TooManyRequests))
		}
		if cfg.RequestTimeout > 0 {
			r.Use(Timeout(cfg.RequestTimeout))
		}
		v1.RegisterRoutes(r)
	})
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, code := "ok", http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": status, "checks": results})
	}
}

// Server owns the listening net/http server.
type Server struct {
	server *http.Server
	log    *zerolog.Logger
}

func NewServer(port int, handler http.Handler, logger *zerolog.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: logging.Component(logger, "HTTPServer"),
	}
}

// Start blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sowferyowman/BiomechFit-app/internal/analysis"
	"github.com/sowferyowman/BiomechFit-app/internal/metrics"
	"github.com/sowferyowman/BiomechFit-app/internal/session"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	sessions *session.Registry
	metrics  *metrics.Manager
	log      *slog.Logger
	apiKey   string
	router   chi.Router

	// Request body limits in bytes.
	maxBody        int64
	maxAnalyzeBody int64
}

const (
	defaultMaxBody        = 1 << 20
	defaultMaxAnalyzeBody = 32 << 20
)

// New creates a new Server with all routes configured. It takes over the
// registry's OnEvict and OnFrame hooks to keep m current.
func New(sessions *session.Registry, m *metrics.Manager, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		sessions: sessions,
		metrics:  m,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),

		maxBody:        defaultMaxBody,
		maxAnalyzeBody: defaultMaxAnalyzeBody,
	}
	sessions.OnFrame = func(e analysis.Exercise, res analysis.FrameResult) {
		m.ObserveFrame(e, res)
	}
	sessions.OnEvict = func(*session.Session) {
		m.CounterSessionsEvicted.Inc()
		m.GaugeActiveSessions.Set(float64(sessions.Len()))
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)

	// Catalog (no auth)
	s.router.Get("/api/v1/exercises", s.handleExercises)

	// Session endpoints (API key required)
	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleCreateSession)
		r.Get("/{id}", s.handleGetSession)
		r.Delete("/{id}", s.handleFinishSession)
		r.Post("/{id}/frames", s.handleFrame)
	})

	s.router.With(APIKeyAuth(s.apiKey)).Post("/api/v1/analyze", s.handleAnalyze)
}

// SetMetricsGatherer mounts the Prometheus exposition endpoint at /metrics.
func (s *Server) SetMetricsGatherer(g prometheus.Gatherer) {
	s.router.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// SetMCP mounts the MCP streamable HTTP handler at /mcp behind the same API
// key check as the session routes.
func (s *Server) SetMCP(h http.Handler) {
	s.router.With(APIKeyAuth(s.apiKey)).Handle("/mcp", h)
}

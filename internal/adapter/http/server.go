package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/neo-approach-etl/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NEOLookup resolves NEOs by primary designation. *catalog.Catalog satisfies it.
type NEOLookup interface {
	ByDesignation(designation string) *domain.NearEarthObject
	ApproachCount(neo *domain.NearEarthObject) int
}

// NEOResponse is the body of a successful NEO lookup.
type NEOResponse struct {
	domain.NEORecord
	Description   string `json:"description"`
	ApproachCount int    `json:"approach_count"`
}

// Server exposes health, readiness, metrics, and NEO lookup endpoints.
type Server struct {
	httpServer *http.Server
	neos       NEOLookup
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /neos/{designation} routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, neos NEOLookup, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		neos:   neos,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /neos/{designation}", s.handleNEO)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleNEO(w http.ResponseWriter, r *http.Request) {
	designation := r.PathValue("designation")
	neo := s.neos.ByDesignation(designation)
	if neo == nil {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{
			"error": "no NEO with designation " + designation,
		})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, NEOResponse{
		NEORecord:     neo.Serialize(),
		Description:   neo.String(),
		ApproachCount: s.neos.ApproachCount(neo),
	})
}

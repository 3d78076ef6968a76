// Package site serves the static front end behind Basic auth with a signed
// session cookie.
package site

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the static asset server
type Server struct {
	config     Config
	auth       *SessionAuth
	middleware *Middleware
	server     *http.Server
	logger     logr.Logger
	gatherer   prometheus.Gatherer
	now        func() time.Time
}

// NewServer creates a new static asset server. gatherer backs /metrics; nil
// uses the default Prometheus registry.
func NewServer(config Config, logger logr.Logger, gatherer prometheus.Gatherer) (*Server, error) {
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	auth, err := NewSessionAuth(config.User, config.Password, config.SessionSecret, config.SessionTTL)
	if err != nil {
		return nil, err
	}

	logger = logger.WithName("site")
	s := &Server{
		config:     config,
		auth:       auth,
		middleware: NewMiddleware(auth, logger),
		logger:     logger,
		gatherer:   gatherer,
		now:        time.Now,
	}

	s.server = &http.Server{
		Addr:           config.Addr,
		Handler:        s.Handler(),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	return s, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Serving assets", "addr", s.config.Addr, "root", s.config.Root)
	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the full middleware-wrapped route tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", s.middleware.AuthRequired(
		promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	mux.Handle("/", s.middleware.AuthRequired(s.traceAssets(NewFileHandler(s.config.Root))))

	return s.middleware.Recovery(
		s.middleware.Logging(
			s.middleware.RejectTraversal(mux)))
}

// traceAssets logs who asked for which asset under the request's ID.
func (s *Server) traceAssets(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.V(2).Info("Asset request",
			"user", GetUser(r), "path", r.URL.Path, "requestID", GetRequestID(r))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, HealthResponse{
		Status:    "healthy",
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

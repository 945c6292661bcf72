package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nao1215/riskscan/internal/database"
	"github.com/nao1215/riskscan/internal/pipeline"
)

// Limits for incoming requests.
const (
	DefaultMaxRequestBytes = 16 << 20
	MaxBatchSize           = 50
	requestTimeout         = 60 * time.Second
	shutdownTimeout        = 10 * time.Second
)

// Server serves the analysis API.
type Server struct {
	analyzer       pipeline.Analyzer
	history        *database.HistoryDB
	allowedOrigins []string
	maxBytes       int64
	batchSize      int
	version        string
	modelEnabled   bool
	trackerSource  string
	logger         *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHistory stores every successful analysis in db.
func WithHistory(db *database.HistoryDB) Option {
	return func(s *Server) {
		s.history = db
	}
}

// WithAllowedOrigins enables CORS for the given origins.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithMaxRequestBytes limits request bodies.
func WithMaxRequestBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithBatchConcurrency sets the concurrency of batch requests.
func WithBatchConcurrency(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithVersion is reported by /healthz.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithEngineInfo is reported by /healthz.
func WithEngineInfo(modelEnabled bool, trackerSource string) Option {
	return func(s *Server) {
		s.modelEnabled = modelEnabled
		s.trackerSource = trackerSource
	}
}

// New creates a Server around analyzer.
func New(analyzer pipeline.Analyzer, opts ...Option) *Server {
	s := &Server{
		analyzer:  analyzer,
		maxBytes:  DefaultMaxRequestBytes,
		batchSize: pipeline.DefaultConcurrency,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(s.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))

	if len(s.allowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	router.Get("/healthz", s.healthz)
	router.Route("/api/v1", func(api chi.Router) {
		api.Post("/analyze", s.analyze)
		api.Post("/analyze/batch", s.analyzeBatch)
	})
	return router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

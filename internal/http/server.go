// Package http exposes the reporting pipeline as a JSON and PDF API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"financas/internal/core"
	"financas/internal/document"
	"financas/internal/log"
	"financas/internal/middleware/ratelimit"
	"financas/internal/middleware/security"
	"financas/internal/middleware/trace"
	"financas/internal/services"
)

// ReportAPI is the slice of the report service the handlers call.
type ReportAPI interface {
	Snapshot(ctx context.Context, req services.ReportRequest) (*services.Snapshot, error)
	Export(ctx context.Context, req services.ReportRequest, opts document.Options) (*services.Export, error)
	RequestExport(ctx context.Context, req services.ReportRequest, opts document.Options) (string, error)
	Categories(ctx context.Context, userID string) ([]core.Category, error)
}

// ReadinessCheck probes a dependency; a nil error means ready.
type ReadinessCheck func(ctx context.Context) error

// Options tunes a Server. Zero values fall back to defaults.
type Options struct {
	RequestTimeout   time.Duration
	ExportsPerMinute int
	Logger           *log.Logger
	Ready            map[string]ReadinessCheck
}

type Server struct {
	http.Server
	api      ReportAPI
	logger   *log.Logger
	detector *security.Detector
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	ready    map[string]ReadinessCheck
	timeout  time.Duration
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer wires the routes and middleware. The caller starts it with
// ListenAndServe and stops it with Shutdown.
func NewServer(addr string, api ReportAPI, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	logger := opts.Logger.WithComponent(log.ComponentHTTP)
	detector := security.NewDetector()

	s := &Server{
		api:      api,
		logger:   logger,
		detector: detector,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.ExportsPerMinute}),
		tracer:   trace.NewMiddleware(logger, detector.ExtractClientIP, detector.DetectSuspiciousRequest),
		ready:    opts.Ready,
		timeout:  opts.RequestTimeout,
		started:  time.Now(),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// PDF rendering runs inside the request
		WriteTimeout: opts.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	// the subrouter answers its own misses
	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = http.HandlerFunc(notFound)
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	api.Use(requireUser)
	api.Use(s.withTimeout)
	api.HandleFunc("/transactions", s.handleTransactions).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/reports/summary", s.handleSummary).Methods(http.MethodGet)

	limited := s.limiter.Middleware(userKey, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Export rate limit exceeded",
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "too many export requests, try again later").Write(w)
	})
	api.Handle("/reports/export", limited(http.HandlerFunc(s.handleExport))).Methods(http.MethodPost)
	api.Handle("/reports/exports", limited(http.HandlerFunc(s.handleRequestExport))).Methods(http.MethodPost)

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	ErrorResponse(http.StatusNotFound, "not found").Write(w)
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
}

func (s *Server) withTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Shutdown stops the limiter cleanup loop and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.logger.Info("HTTP server shutting down",
			log.FieldOperation, log.OpShutdown,
			"total_requests", s.tracer.GetMetrics().TotalRequests,
			"rate_limited", s.limiter.GetMetrics().TotalHits)
	})
	return s.Server.Shutdown(ctx)
}

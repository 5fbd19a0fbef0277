package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/books-catalog-api/internal/auth"
	"github.com/JakeFAU/books-catalog-api/internal/catalog"
	"github.com/JakeFAU/books-catalog-api/internal/metrics"
	"github.com/JakeFAU/books-catalog-api/internal/policy/ratelimit"
	"github.com/JakeFAU/books-catalog-api/internal/supervisor"
)

const defaultRequestTimeout = 30 * time.Second

// Authenticator is the credential and token lifecycle used by the auth routes.
type Authenticator interface {
	Register(ctx context.Context, username, password string) (auth.Identity, error)
	Login(ctx context.Context, username, password string) (auth.Token, error)
	Refresh(header string) (auth.Token, error)
}

// ScrapeTrigger starts background scrape jobs.
type ScrapeTrigger interface {
	Trigger(ctx context.Context, subject string) (supervisor.Accepted, error)
}

// Catalog answers the read-only catalog routes.
type Catalog interface {
	List(ctx context.Context, limit, offset int) ([]catalog.Book, error)
	Get(ctx context.Context, id string) (catalog.Book, error)
	Search(ctx context.Context, title, category string) ([]catalog.Book, error)
	PriceRange(ctx context.Context, minPrice, maxPrice float64) ([]catalog.Book, error)
	TopRated(ctx context.Context, limit int) ([]catalog.Book, error)
	Categories(ctx context.Context) ([]string, error)
	Overview(ctx context.Context) (catalog.Overview, error)
	CategoryStats(ctx context.Context) ([]catalog.CategoryStats, error)
	Count(ctx context.Context) (int, error)
	Features(ctx context.Context) ([]catalog.FeatureRow, error)
	TrainingData(ctx context.Context) (catalog.TrainingSet, error)
	Ready(ctx context.Context) error
}

// JobLister reads back recorded scrape jobs.
type JobLister interface {
	Jobs(ctx context.Context) ([]catalog.ScrapeJob, error)
	Job(ctx context.Context, id string) (catalog.ScrapeJob, error)
}

// Predictions records and lists model outputs.
type Predictions interface {
	Record(ctx context.Context, subject string, items []json.RawMessage) (catalog.PredictionBatch, error)
	Recent(ctx context.Context, limit int) ([]catalog.Prediction, error)
}

// Deps are the collaborators a Server routes to.
type Deps struct {
	Auth     Authenticator
	Verifier auth.HeaderVerifier
	Scraper  ScrapeTrigger
	Catalog  Catalog
	Jobs     JobLister
	// Predictions backs the /api/v1/ml/predictions routes.
	Predictions Predictions
	// Limiter throttles the credential routes per client IP; nil disables it.
	Limiter *ratelimit.Limiter
	// RequestTimeout bounds each handler; zero means 30s.
	RequestTimeout time.Duration
}

// Server wires HTTP handlers to the auth, scraping, and catalog services.
type Server struct {
	router      chi.Router
	auth        Authenticator
	scraper     ScrapeTrigger
	catalog     Catalog
	jobs        JobLister
	predictions Predictions
	endpoints   []endpoint
	logger      *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(deps Deps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	metrics.Init()

	s := &Server{
		auth:        deps.Auth,
		scraper:     deps.Scraper,
		catalog:     deps.Catalog,
		jobs:        deps.Jobs,
		predictions: deps.Predictions,
		logger:      logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(timeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	throttle := deps.Limiter.Middleware(logger.Named("throttle"))
	r.With(throttle).Post("/add_user", s.register)

	guard := auth.Guard(deps.Verifier, logger.Named("guard"))
	r.Route("/api/v1", func(r chi.Router) {
		r.With(throttle).Post("/auth/login", s.login)
		r.Post("/auth/refresh", s.refresh)
		r.With(guard).Get("/scraping/trigger", s.triggerScrape)
		r.With(guard).Get("/scraping/jobs", s.listJobs)
		r.With(guard).Get("/scraping/jobs/{id}", s.getJob)
		r.Get("/health", s.health)
		r.Get("/endpoints", s.listEndpoints)

		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.listBooks)
			r.Get("/search", s.searchBooks)
			r.Get("/top-rated", s.topRated)
			r.Get("/price-range", s.priceRange)
			r.Get("/{id}", s.getBook)
		})
		r.Get("/categories", s.categories)
		r.Get("/stats/overview", s.statsOverview)
		r.Get("/stats/categories", s.statsCategories)

		r.Route("/ml", func(r chi.Router) {
			r.Get("/features", s.mlFeatures)
			r.Get("/training-data", s.mlTrainingData)
			r.With(guard).Post("/predictions", s.recordPredictions)
			r.With(guard).Get("/predictions", s.listPredictions)
		})
	})

	s.router = r
	endpoints, err := walkEndpoints(r)
	if err != nil {
		logger.Warn("route listing unavailable", zap.Error(err))
	}
	s.endpoints = endpoints
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Ready(r.Context()); err != nil {
		s.logger.Warn("readiness check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// writeDomainError maps service errors onto status codes. Anything unmapped
// is logged and reported as a bare 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *auth.ValidationError
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error())
	case errors.Is(err, auth.ErrDuplicateIdentity):
		writeError(w, http.StatusBadRequest, auth.ErrDuplicateIdentity.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		s.logger.Info("token rejected",
			zap.String("path", r.URL.Path),
			zap.String("reason", string(auth.FailureOf(err))),
		)
		metrics.ObserveAuthFailure(string(auth.FailureOf(err)))
		auth.RejectUnauthorized(w)
	case errors.Is(err, catalog.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrBookNotFound):
		writeError(w, http.StatusNotFound, catalog.ErrBookNotFound.Error())
	case errors.Is(err, catalog.ErrJobNotFound):
		writeError(w, http.StatusNotFound, catalog.ErrJobNotFound.Error())
	case errors.Is(err, supervisor.ErrLaunch):
		writeError(w, http.StatusServiceUnavailable, supervisor.ErrLaunch.Error())
	case errors.Is(err, supervisor.ErrShuttingDown):
		writeError(w, http.StatusServiceUnavailable, supervisor.ErrShuttingDown.Error())
	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			reqID, _ := r.Context().Value(requestIDKey{}).(string)
			logger.Info("request completed",
				zap.String("request_id", reqID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.Any("error", rec),
						zap.String("path", r.URL.Path),
						zap.Stack("stack"),
					)
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"error":"request timed out"}`)
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "cleverspend/internal/log"
	"cleverspend/internal/middleware/ratelimit"
	"cleverspend/internal/middleware/security"
	"cleverspend/internal/middleware/trace"
	"cleverspend/internal/services"
	"cleverspend/internal/stats"
)

// Options carries the optional collaborators of a Server.
type Options struct {
	Logger    *applog.Logger
	Location  *time.Location
	RateLimit ratelimit.Config
	// Exports enables POST /api/export when set.
	Exports *services.ExportService
	Now     func() time.Time
}

type Server struct {
	http.Server
	expenses *services.ExpenseService
	stats    *stats.Service
	exports  *services.ExportService
	limiter  *ratelimit.Limiter
	logger   *applog.Logger
	now      func() time.Time
	loc      *time.Location

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, expenses *services.ExpenseService, st *stats.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		expenses: expenses,
		stats:    st,
		exports:  opts.Exports,
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
		logger:   opts.Logger.WithComponent(applog.ComponentHTTP),
		now:      opts.Now,
		loc:      opts.Location,
	}

	detector := security.NewDetector()
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.logger, detector.ExtractClientIP)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/categories", s.handleListCategories)
	api.HandleFunc("POST /api/categories", s.handleCreateCategory)
	api.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)
	api.HandleFunc("GET /api/expenses", s.handleListExpenses)
	api.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	api.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	api.HandleFunc("GET /api/stats", s.handleStats)
	api.HandleFunc("GET /api/stats/overview", s.handleOverview)
	api.HandleFunc("POST /api/reset", s.handleReset)
	api.HandleFunc("POST /api/export", s.handleExport)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("/api/", s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, try again later").Write(w)
	})(api))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           tracer.Middleware(detector.Middleware(headers.Middleware(mux))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Shutdown stops the rate limiter and gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Payload(map[string]string{"status": "ok"}).Write(w)
}

// handleReady reports ready once the store answers a read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.expenses.Categories(ctx); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		ServiceUnavailableError("store unavailable").Write(w)
		return
	}
	NewJSONResponse().Payload(map[string]string{"status": "ready"}).Write(w)
}

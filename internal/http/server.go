package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "smartexpense/internal/log"
	"smartexpense/internal/middleware/ratelimit"
	"smartexpense/internal/middleware/security"
	"smartexpense/internal/middleware/trace"
	"smartexpense/internal/services"
)

// heartbeatInterval keeps idle event streams alive through proxies.
const heartbeatInterval = 25 * time.Second

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	Addr              string
	Logger            *applog.Logger
	RequestsPerMinute int
	ReportCache       *services.ReportCache
	Heartbeat         time.Duration
}

type Server struct {
	http.Server
	svc       *services.ExpenseService
	logger    *applog.Logger
	tracer    *trace.Middleware
	limiter   *ratelimit.Limiter
	ips       *security.ClientIPResolver
	reports   *services.ReportCache
	heartbeat time.Duration

	// done is closed on shutdown so long-lived event streams return
	done         chan struct{}
	shutdownOnce sync.Once
}

// NewServer wires the routes and the middleware chain around svc.
func NewServer(svc *services.ExpenseService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	heartbeat := opts.Heartbeat
	if heartbeat <= 0 {
		heartbeat = heartbeatInterval
	}

	ips := security.NewClientIPResolver()
	s := &Server{
		svc:       svc,
		logger:    logger,
		ips:       ips,
		tracer:    trace.NewMiddleware(logger, ips.ClientIP),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		reports:   opts.ReportCache,
		heartbeat: heartbeat,
		done:      make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /api/expenses", s.handleClearExpenses)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/totals/today", s.handleTodayTotal)
	mux.HandleFunc("GET /api/reports/weekly", s.handleWeeklyReport)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("PUT /api/status/online", s.handleSetOnline)
	mux.HandleFunc("POST /api/status/online/toggle", s.handleToggleOnline)
	mux.HandleFunc("GET /api/events", s.handleEvents)

	limited := s.limiter.Middleware(ips.ClientIP, ratelimit.MutatingOnly, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w)
	})(mux)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.tracer.Middleware(headers.Middleware(security.NoStore(limited))),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its background routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		close(s.done)
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

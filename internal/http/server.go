// Package http exposes the JSON API over net/http.
package http

import (
	"context"
	"net/http"
	"time"

	"pocketpal/internal/log"
	"pocketpal/internal/middleware/ratelimit"
	"pocketpal/internal/middleware/security"
	"pocketpal/internal/middleware/trace"
	"pocketpal/internal/services"
)

// Server wires the service layer to the HTTP routes.
type Server struct {
	http.Server

	sessions *services.SessionService
	ledger   *services.LedgerService
	insights *services.InsightsService
	logger   *log.Logger

	limiter *ratelimit.Limiter
	metrics *apiMetrics
}

// Config holds the server knobs the caller decides.
type Config struct {
	Addr               string
	RateLimitPerMinute int
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(cfg Config, sessions *services.SessionService, ledger *services.LedgerService, insights *services.InsightsService, logger *log.Logger) *Server {
	s := &Server{
		sessions: sessions,
		ledger:   ledger,
		insights: insights,
		logger:   logger.WithComponent(log.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}),
		metrics: newAPIMetrics(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.Handle("GET /metrics", s.metrics.handler())

	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.Handle("POST /api/auth/logout", s.authenticated(s.handleLogout))
	mux.Handle("GET /api/auth/session", s.authenticated(s.handleSessionRestore))
	mux.Handle("PUT /api/settings", s.authenticated(s.handleUpdateSettings))

	mux.Handle("GET /api/categories", s.authenticated(s.handleListCategories))
	mux.Handle("POST /api/categories", s.authenticated(s.handleCreateCategory))
	mux.Handle("GET /api/expenses", s.authenticated(s.handleListExpenses))
	mux.Handle("POST /api/expenses", s.authenticated(s.handleCreateExpense))

	mux.Handle("POST /api/rooms", s.authenticated(s.handleCreateRoom))
	mux.Handle("GET /api/rooms", s.authenticated(s.handleListRooms))
	mux.Handle("GET /api/rooms/{id}", s.authenticated(s.handleGetRoom))
	mux.Handle("POST /api/rooms/{id}/expenses", s.authenticated(s.handleAddRoomExpense))
	mux.Handle("POST /api/rooms/join", s.authenticated(s.handleJoinRoom))

	mux.Handle("GET /api/insights/budget", s.authenticated(s.handleBudget))
	mux.Handle("GET /api/insights/categories", s.authenticated(s.handleSpendByCategory))
	mux.Handle("GET /api/insights/months", s.authenticated(s.handleSpendByMonth))

	traced := trace.NewMiddleware(logger, clientIP)
	limited := s.limiter.Middleware(clientIP, s.onRateLimit)

	var handler http.Handler = mux
	handler = security.Headers(handler)
	handler = limited(handler)
	handler = s.metrics.instrument(mux, handler)
	handler = traced.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown drains in-flight requests and stops background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.metrics.rateLimited.Inc()
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, clientIP(r),
		log.FieldPath, r.URL.Path)
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
}

// clientIP resolves the caller address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

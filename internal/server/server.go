// Package server provides the HTTP API for the assistant gateway: the chat
// endpoint, league proxy endpoints, health, and the admin event feed.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DewclawArchery/teri-gateway/internal/chat"
	"github.com/DewclawArchery/teri-gateway/internal/otel"
	"github.com/DewclawArchery/teri-gateway/internal/telemetry"
	"github.com/DewclawArchery/teri-gateway/internal/wordpress"
)

const defaultTimeout = 30 * time.Second

// Server holds the dependencies for the HTTP API.
type Server struct {
	router      *chi.Mux
	pipeline    *chat.Pipeline
	wp          *wordpress.Client
	eventStore  *telemetry.Store
	rateLimiter *RateLimiter
	apiKeys     []string
	corsOrigins []string
	startTime   time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithWordPress enables the league proxy endpoints.
func WithWordPress(c *wordpress.Client) Option {
	return func(s *Server) { s.wp = c }
}

// WithEventStore enables the admin event feed.
func WithEventStore(store *telemetry.Store) Option {
	return func(s *Server) { s.eventStore = store }
}

// WithRateLimiter enables per-visitor rate limiting on the chat endpoint.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) { s.rateLimiter = rl }
}

// WithAdminKeys sets the API keys accepted on admin routes. Without keys the
// admin routes answer 401 unconditionally.
func WithAdminKeys(keys []string) Option {
	return func(s *Server) { s.apiKeys = keys }
}

// WithCORSOrigins sets allowed CORS origins (e.g. ["*"]).
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// NewServer builds a Server around the chat pipeline plus optional extras.
func NewServer(pipeline *chat.Pipeline, opts ...Option) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		pipeline:    pipeline,
		corsOrigins: []string{"*"},
		startTime:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the configured http.Handler.
func (s *Server) Routes() http.Handler {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(otel.Middleware())
	r.Use(CorrelationMiddleware)
	r.Use(CORSMiddleware(s.corsOrigins))
	r.Use(middleware.Timeout(defaultTimeout))

	r.Get("/health", s.handleHealth)

	// The widget's endpoint. Method checked in the handler so non-POST
	// gets the Allow header.
	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(s.rateLimiter))
		r.HandleFunc("/api/teri/chat", s.handleChat)
	})

	if s.wp != nil {
		r.Get("/api/leagues", s.handleLeagues)
		r.Post("/api/league-signup", s.handleLeagueSignup)
	}

	// Admin
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.apiKeys))
		r.Get("/api/teri/events", s.handleEventsList)
	})

	return r
}

// Package server exposes the computed dashboard tables over HTTP. It is the
// boundary at which the rendering collaborator (table, chart, choropleth)
// consumes results; no drawing happens here.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/sells-group/gfc-explorer/internal/geo"
	"github.com/sells-group/gfc-explorer/internal/hpi"
)

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	SessionTTL     time.Duration

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
}

// Server routes dashboard requests to the aggregation engine.
type Server struct {
	engine   *hpi.Engine
	counties *geo.CountySet
	sessions *sessionStore
	opts     Options
}

// New creates a Server. counties may be nil when no boundary dataset was
// configured; the boundaries endpoint then serves empty collections.
func New(engine *hpi.Engine, counties *geo.CountySet, opts Options) *Server {
	return &Server{
		engine:   engine,
		counties: counties,
		sessions: newSessionStore(opts.SessionTTL),
		opts:     opts,
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(logRequests)

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if s.opts.RateLimitRPS > 0 {
		burst := s.opts.RateLimitBurst
		if burst <= 0 {
			burst = int(s.opts.RateLimitRPS) + 1
		}
		r.Use(rateLimit(newClientLimiter(s.opts.RateLimitRPS, burst)))
	}

	r.Get("/health", s.handleHealth)
	if s.opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/cbsas", s.handleCBSAs)
		r.Get("/tracts", s.handleTracts)
		r.Get("/series", s.handleSeries)
		r.Get("/summary", s.handleSummary)
		r.Get("/boundaries", s.handleBoundaries)
		r.Get("/selection", s.handleSelectionGet)
		r.Post("/selection", s.handleSelectionSet)
	})

	return r
}

// StartSessionEviction runs session TTL teardown until ctx is cancelled.
func (s *Server) StartSessionEviction(ctx context.Context) {
	go s.sessions.evictLoop(ctx, time.Minute)
}

// Package server exposes the dose ledger and engine over a JSON HTTP API.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lazypower/neurodose/internal/alerts"
	"github.com/lazypower/neurodose/internal/domain"
	"github.com/lazypower/neurodose/internal/engine"
	"github.com/lazypower/neurodose/internal/ledger"
	"github.com/lazypower/neurodose/internal/metrics"
	"github.com/lazypower/neurodose/internal/store"
	"go.uber.org/zap"
)

// Server is the neurodose HTTP API server.
type Server struct {
	db       *store.DB
	engine   *engine.Engine
	doses    *ledger.Store
	settings store.Settings
	notifier *alerts.Notifier
	log      *zap.Logger
	metrics  *metrics.Collector
	origins  []string
	router   chi.Router
	version  string
	started  time.Time
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithNotifier exposes the notifier's feed at /api/notifications.
func WithNotifier(n *alerts.Notifier) Option {
	return func(s *Server) { s.notifier = n }
}

// WithLogger sets the request logger; the default discards.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithMetrics records request and dose metrics and serves /metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithCORS allows browser clients from the given origins.
func WithCORS(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithDefaultSleep sets the schedule used until one is stored.
func WithDefaultSleep(sleep domain.SleepSchedule) Option {
	return func(s *Server) { s.settings.DefaultSleep = sleep }
}

// WithClock replaces time.Now for requests that omit a time.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a Server. doses must hold the ledger loaded from db; every
// mutation is written to both.
func New(db *store.DB, eng *engine.Engine, doses *ledger.Store, version string, opts ...Option) *Server {
	s := &Server{
		db:       db,
		engine:   eng,
		doses:    doses,
		settings: store.Settings{DB: db, DefaultSleep: domain.DefaultSleepSchedule()},
		log:      zap.NewNop(),
		version:  version,
		started:  time.Now(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/compounds", s.handleListCompounds)
		r.Get("/compounds/{id}", s.handleGetCompound)

		r.Get("/doses", s.handleListDoses)
		r.Post("/doses", s.handleAddDose)
		r.Patch("/doses/{id}", s.handleUpdateDose)
		r.Delete("/doses/{id}", s.handleDeleteDose)

		r.Get("/concentrations", s.handleConcentrations)
		r.Get("/series", s.handleSeries)
		r.Get("/warnings", s.handleWarnings)
		r.Get("/interactions", s.handleInteractions)
		r.Get("/scores", s.handleScores)

		r.Get("/thresholds", s.handleListThresholds)
		r.Put("/thresholds/{compoundID}", s.handleSetThreshold)
		r.Delete("/thresholds/{compoundID}", s.handleDeleteThreshold)

		r.Get("/sleep", s.handleGetSleep)
		r.Put("/sleep", s.handleSetSleep)

		r.Get("/notifications", s.handleNotifications)
	})
	r.Handle("/metrics", s.metrics.Handler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	schema, err := s.db.SchemaVersion()
	dbOK := err == nil

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   s.version,
		"uptime":    time.Since(s.started).Seconds(),
		"db":        dbOK,
		"db_path":   s.db.Path,
		"schema":    schema,
		"doses":     s.doses.Snapshot().Len(),
		"compounds": s.engine.Catalog().Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

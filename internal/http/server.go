// Package http exposes the bookkeeping store and statistics engine as a
// JSON API. It stands in for the desktop UI: cards, tables and pie charts
// consume these endpoints.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"bookkeep/internal/cache"
	"bookkeep/internal/services"
	"bookkeep/internal/stats"
	"bookkeep/internal/storage"
)

// Options configures the API server.
type Options struct {
	Repo    *storage.SQLiteRepository
	Service *services.TransactionService
	Engine  *stats.Engine

	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	// StatsCache holds serialized stats responses; cleared on every write.
	StatsCache cache.Cache[[]byte]
}

// Server holds the handler dependencies.
type Server struct {
	repo           *storage.SQLiteRepository
	service        *services.TransactionService
	engine         *stats.Engine
	statsCache     cache.Cache[[]byte]
	allowedOrigins []string

	limiter *ipRateLimiter
}

// New builds the server and its router.
func New(opts Options) *Server {
	s := &Server{
		repo:           opts.Repo,
		service:        opts.Service,
		engine:         opts.Engine,
		statsCache:     opts.StatsCache,
		allowedOrigins: opts.AllowedOrigins,
	}
	if opts.RateLimitRPS > 0 {
		s.limiter = newIPRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
	}
	return s
}

// Handler assembles the chi router with the full middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
	if s.limiter != nil {
		r.Use(s.limiter.middleware)
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/stats", func(r chi.Router) {
			r.Get("/summary", s.handleStatsSummary)
			r.Get("/categories", s.handleStatsCategories)
			r.Get("/accounts", s.handleStatsAccounts)
			r.Get("/settlement", s.handleStatsSettlement)
			r.Get("/refunds", s.handleStatsRefunds)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", s.handleCreateTransaction)
			r.Get("/", s.handleListTransactions)
			r.Get("/{id}", s.handleGetTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})

		r.Route("/ledgers", func(r chi.Router) {
			r.Post("/", s.handleCreateLedger)
			r.Get("/", s.handleListLedgers)
			r.Delete("/{id}", s.handleDeleteLedger)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", s.handleCreateAccount)
			r.Get("/", s.handleListAccounts)
			r.Delete("/{id}", s.handleDeleteAccount)
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", s.handleCreateTransfer)
			r.Get("/", s.handleListTransfers)
			r.Delete("/{id}", s.handleDeleteTransfer)
		})

		r.Get("/categories", s.handleListCategories)
	})

	return r
}

// NewHTTPServer wraps the handler in an http.Server with sane timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DB().PingContext(r.Context()); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// invalidateStats drops all cached stats responses after a write.
func (s *Server) invalidateStats() {
	if s.statsCache != nil {
		s.statsCache.Clear()
	}
}

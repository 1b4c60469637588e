// Package server is the composition root: it wires stores, services and
// handlers together, mounts the routes and runs the HTTP server until a
// shutdown signal arrives.
//
// DEPENDENCY FLOW:
//
//	main.go:   config → logger → database.Open → server.New → Start
//	server.New: Store → services → handlers → chi routes
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/learninfive/internal/auth"
	"github.com/sakif/learninfive/internal/database"
	"github.com/sakif/learninfive/internal/explain"
	"github.com/sakif/learninfive/internal/handler"
	"github.com/sakif/learninfive/internal/metrics"
	"github.com/sakif/learninfive/internal/middleware"
	"github.com/sakif/learninfive/internal/service"
)

// DefaultShutdownTimeout is how long in-flight requests get to finish.
const DefaultShutdownTimeout = 30 * time.Second

type Config struct {
	Port            int
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// Deps are the long-lived objects the server is built from. main owns
// their lifecycle; the server never closes the store.
type Deps struct {
	Store     *database.Store
	Tokens    *auth.TokenService
	Passwords *auth.PasswordService
	// Generator may be nil, in which case /api/explain answers 503.
	Generator explain.Generator
	// Registry receives the server's collectors and backs /metrics.
	Registry *prometheus.Registry
}

type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
}

// New wires every service and handler and mounts the routes.
func New(cfg Config, logger *slog.Logger, deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Tokens == nil || deps.Passwords == nil {
		return nil, errors.New("server: store, token service and password service are required")
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	s.setupRoutes(deps)
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures middleware and routes.
//
// ROUTES:
//
//	GET    /health                 → database reachability
//	GET    /metrics                → prometheus exposition
//	POST   /api/auth/register      → create account, returns token
//	POST   /api/auth/login         → returns token
//	GET    /api/explain            → generated explanation
//	GET    /api/fallback-explain   → fixed explanation
//	GET    /api/auth/me            → current user            [bearer]
//	GET    /api/history            → list own entries        [bearer]
//	POST   /api/history            → save entry              [bearer]
//	GET    /api/history/{id}       → one own entry           [bearer]
//	DELETE /api/history/{id}       → delete own entry        [bearer]
//
// MIDDLEWARE ORDER MATTERS: RequestID must run before Logger so the id is
// in the log line, and Recoverer sits inside Logger/Metrics so a panic is
// still recorded as a 500.
func (s *Server) setupRoutes(deps Deps) {
	m := metrics.New(deps.Registry)
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(m))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authService := service.NewAuthService(deps.Store.Users, deps.Tokens, deps.Passwords, m, s.logger)
	historyService := service.NewHistoryService(deps.Store.History, m, s.logger)
	explainService := service.NewExplainService(deps.Generator, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	historyHandler := handler.NewHistoryHandler(historyService, s.logger)
	explainHandler := handler.NewExplainHandler(explainService)
	healthHandler := handler.NewHealthHandler(deps.Store, s.logger)

	s.router.Get("/health", healthHandler.HandleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/explain", explainHandler.HandleExplain)
		r.Get("/fallback-explain", explainHandler.HandleFallback)

		// Everything below needs a resolved session.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(authService))

			r.Get("/auth/me", authHandler.HandleMe)
			r.Get("/history", historyHandler.HandleList)
			r.Post("/history", historyHandler.HandleCreate)
			r.Get("/history/{id}", historyHandler.HandleGet)
			r.Delete("/history/{id}", historyHandler.HandleDelete)
		})
	})
}

// Start runs the server until SIGINT or SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled, then stops accepting connections and
// gives in-flight requests ShutdownTimeout to finish.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Generation can take most of GENERATION_TIMEOUT.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	}
}

// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root where the whole
// dependency chain is assembled in one place:
//
//	sqlite.DB → AuthService / LedgerService → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces (not the concrete *sqlite.DB), handlers get services (not
// repositories), and main.go just gets a Server it can Start().
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/points-ledger/internal/auth"
	"github.com/sakif/points-ledger/internal/handler"
	"github.com/sakif/points-ledger/internal/middleware"
	sqliteRepo "github.com/sakif/points-ledger/internal/repository/sqlite"
	"github.com/sakif/points-ledger/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port          int
	DBPath        string // path to the SQLite database file
	JWTSecret     string // HMAC secret for session tokens
	AdminPassword string // password for the seeded admin account
}

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection: when the server shuts down, the
// connection must be closed to flush the WAL and release the file lock.
// That happens in Start() after the graceful drain.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config.
//
// Besides opening the database, this is where first-boot bootstrap happens:
// the admin account is seeded (idempotently) with a bcrypt hash of the
// configured admin password.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	passwords := auth.NewPasswordService()

	adminHash, err := passwords.Hash(cfg.AdminPassword)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}
	if err := db.SeedAdmin(adminHash); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding admin account: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(passwords); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST /api/signup        → create account, set session cookie
//	POST /api/signin        → verify credentials, set session cookie
//	POST /api/signout       → clear session cookie
//	GET  /api/dashboard     → dashboard for the session user   (auth)
//	POST /api/transactions  → record a deposit or withdrawal   (auth)
//
// MIDDLEWARE ORDER MATTERS — middleware executes in the order it's added:
// RequestID → RealIP → Recoverer → request logging, then RequireAuth only
// on the protected group.
func (s *Server) setupRoutes(passwords *auth.PasswordService) error {
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500

	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	// s.db implements both repository interfaces; the services only ever
	// see the interface types.
	authService := service.NewAuthService(s.db, passwords, s.logger)
	ledgerService := service.NewLedgerService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, tokens, s.logger)
	ledgerHandler := handler.NewLedgerHandler(ledgerService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignUp)
		r.Post("/signin", authHandler.HandleSignIn)
		r.Post("/signout", authHandler.HandleSignOut)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/dashboard", ledgerHandler.HandleDashboard)
			r.Post("/transactions", ledgerHandler.HandleCreateTransaction)
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

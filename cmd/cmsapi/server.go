package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/aceconsult/cmsapi/internal/core/auth"
	"github.com/aceconsult/cmsapi/internal/core/domain"
	"github.com/aceconsult/cmsapi/internal/shell/api"
	mw "github.com/aceconsult/cmsapi/internal/shell/api/middleware"
	"github.com/aceconsult/cmsapi/internal/shell/media"
	"github.com/aceconsult/cmsapi/internal/shell/seed"
	"github.com/aceconsult/cmsapi/internal/shell/store"
	"github.com/aceconsult/cmsapi/internal/shell/workers"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitDatabaseError   = 2
	ExitHTTPServerError = 4
	ExitSeedError       = 6
)

// =============================================================================
// Server
// =============================================================================

// Server represents the CMS application server.
type Server struct {
	config     *Config
	httpServer *http.Server
	store      store.Store
	sweeper    *workers.StagingSweeper
	logger     *slog.Logger
}

// openStore opens the configured database, creating its directory first.
func openStore(cfg *Config) (*store.SQLiteStore, error) {
	dsn := cfg.Database.DSN
	if !strings.HasPrefix(dsn, ":") && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, &ServerError{Op: "openStore", Err: err, ExitCode: ExitDatabaseError}
		}
	}

	s, err := store.NewSQLiteStore(dsn)
	if err != nil {
		return nil, &ServerError{Op: "openStore", Err: err, ExitCode: ExitDatabaseError}
	}
	return s, nil
}

// NewServer creates a new server with the given config.
func NewServer(cfg *Config, logger *slog.Logger) (*Server, error) {
	// Connect to database
	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	fail := func(op string, err error, code int) (*Server, error) {
		s.Close()
		return nil, &ServerError{Op: op, Err: err, ExitCode: code}
	}

	// Image pipeline
	uploads, err := media.NewUploads(cfg.Uploads.StagingDir, cfg.Uploads.MaxFileSize)
	if err != nil {
		return fail("NewServer", err, ExitConfigError)
	}
	processor, err := media.NewProcessor(cfg.Uploads.Dir, logger)
	if err != nil {
		return fail("NewServer", err, ExitConfigError)
	}
	cleaner := media.NewCleaner(cfg.Uploads.Dir, logger)

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer, !cfg.IsDev())
	if err != nil {
		return fail("NewServer", err, ExitConfigError)
	}

	if cfg.Admin.Enabled() {
		if err := bootstrapAdmin(context.Background(), s, cfg.Admin, logger); err != nil {
			return fail("bootstrapAdmin", err, ExitDatabaseError)
		}
	}

	handler := api.NewHandler(s, uploads, processor, cleaner, issuer, logger, api.Config{
		MaxFiles:    cfg.Uploads.MaxFiles,
		MaxFileSize: cfg.Uploads.MaxFileSize,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		RateLimit: mw.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Burst:             cfg.RateLimit.Burst,
		},
		Version: Version,
	})

	sweeper := workers.NewStagingSweeper(uploads.StagingDir(), workers.StagingSweeperConfig{
		Interval: cfg.Uploads.SweepInterval,
		MaxAge:   cfg.Uploads.StagingMaxAge,
	}, logger)

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		store:      s,
		sweeper:    sweeper,
		logger:     logger,
	}, nil
}

// bootstrapAdmin creates the first admin from configuration. An existing
// admin is left alone.
func bootstrapAdmin(ctx context.Context, s store.Store, cfg AdminConfig, logger *slog.Logger) error {
	count, err := s.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Info("admin already exists, skipping bootstrap")
		return nil
	}

	hash, err := auth.HashPassword(cfg.BootstrapPassword)
	if err != nil {
		return err
	}
	admin := domain.NewAdmin(cfg.BootstrapEmail, hash, cfg.BootstrapName, time.Now().UTC())
	if err := s.CreateFirstAdmin(ctx, admin); err != nil {
		if errors.Is(err, store.ErrAdminExists) {
			logger.Info("admin already exists, skipping bootstrap")
			return nil
		}
		return err
	}
	logger.Info("bootstrap admin created", "email", admin.Email)
	return nil
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	s.sweeper.Start()

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server",
			"address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		s.Shutdown(context.Background())
		return &ServerError{
			Op:       "Start",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown HTTP server
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.sweeper.Stop()

	// Close database
	if err := s.store.Close(); err != nil {
		s.logger.Error("database close error", "error", err)
	}

	s.logger.Info("shutdown complete")
	return nil
}

// =============================================================================
// Seeding
// =============================================================================

// RunSeed applies the seed document at path to the configured database.
func RunSeed(ctx context.Context, cfg *Config, path string, logger *slog.Logger) error {
	doc, err := seed.Load(path)
	if err != nil {
		return &ServerError{Op: "RunSeed", Err: err, ExitCode: ExitSeedError}
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := seed.Apply(ctx, s, doc, time.Now().UTC(), logger)
	if err != nil {
		return &ServerError{Op: "RunSeed", Err: err, ExitCode: ExitSeedError}
	}
	logger.Info("seed complete",
		"categories_created", res.CategoriesCreated,
		"categories_skipped", res.CategoriesSkipped,
		"settings_created", res.SettingsCreated,
	)
	return nil
}

// =============================================================================
// Server Error
// =============================================================================

// ServerError represents an error during server operation.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

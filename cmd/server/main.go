/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave composer server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (file, environment, defaults)
  2. Build the logger
  3. Open the SQLite store
  4. Create the session registry and API handler
  5. Configure the router and serve until SIGINT/SIGTERM

COMMAND-LINE FLAGS:
  -config  Explicit config file (default: search ./config, ., /etc/leave-composer/)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # In-memory database, auth disabled
  LEAVE_DATABASE_PATH=":memory:" ./server

  # Production-like
  LEAVE_AUTH_JWT_SECRET=... LEAVE_LOGGER_MODE=production ./server -config=/etc/leave.yaml

SEE ALSO:
  - config/config.go: Settings and defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/leave-composer/api"
	"github.com/warp/leave-composer/config"
	"github.com/warp/leave-composer/logging"
	"github.com/warp/leave-composer/store/sqlite"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// 1. Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}

	// 2. Logger
	logger, err := logging.New(logging.Config{
		Level:    cfg.Logger.Level,
		Mode:     cfg.Logger.Mode,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	// 4. Handler
	sessions := api.NewSessionRegistry(cfg.Sessions.Max, cfg.Sessions.TTL, nil, logger)
	handler := api.NewHandler(store, sessions)

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("authentication disabled: auth.jwt_secret is empty")
	}

	// 5. Router and server
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
		RequestsPerMin: cfg.RateLimit.RequestsPerMin,
		MaxBodyBytes:   cfg.HTTPServer.MaxBodyBytes,
		TrustProxy:     cfg.HTTPServer.TrustProxy,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPServer.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.HTTPServer.Port),
			zap.String("database", cfg.Database.Path))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

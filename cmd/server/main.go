/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the nurse payroll API server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and NURSEPAY_* configuration, then command-line flags
  2. Initialize logger (zap)
  3. Initialize SQLite store
  4. Build calculator, pay periods and payroll service
  5. Start pay run scheduler
  6. Configure HTTP router and start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides NURSEPAY_PORT)
  -db      SQLite database path (overrides NURSEPAY_DB)
           Use ":memory:" for in-memory database
  -env     Path to a .env file (default: .env, skipped if missing)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/nursepay.db"

  # Run with in-memory database and demo scenarios
  ./server -db=":memory:"

  # Production
  NURSEPAY_ENV=production NURSEPAY_JWT_SECRET=... ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/nightwatch/nursepay/api"
	"github.com/nightwatch/nursepay/config"
	"github.com/nightwatch/nursepay/logging"
	"github.com/nightwatch/nursepay/payroll"
	"github.com/nightwatch/nursepay/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 0, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path")
	envFile := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Load()
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer store.Close()

	// Payroll service
	calc, err := cfg.Calculator()
	if err != nil {
		logger.Fatal("Failed to load rates", zap.String("file", cfg.RatesFile), zap.Error(err))
	}
	periods, err := cfg.Periods()
	if err != nil {
		logger.Fatal("Invalid pay period settings", zap.Error(err))
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Invalid timezone", zap.Error(err))
	}
	svc := payroll.NewService(store, calc, periods, loc, logger)

	// Scheduler
	scheduler := api.NewPayRunScheduler(svc, logger)
	scheduler.Enabled = cfg.SchedulerEnabled
	scheduler.CheckInterval = cfg.SchedulerInterval
	scheduler.Start()

	// Create router
	handler := api.NewHandler(svc, logger)
	router := api.NewRouter(handler, api.RouterOptions{
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
	})
	if cfg.JWTSecret == "" {
		logger.Warn("NURSEPAY_JWT_SECRET not set, every request is treated as admin")
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting",
			zap.Int("port", cfg.Port),
			zap.String("env", cfg.Environment),
			zap.String("frequency", string(periods.Frequency)),
			zap.String("timezone", loc.String()),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("Server stopped")
}

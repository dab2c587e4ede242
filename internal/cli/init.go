// Package cli provides the startup and shutdown steps shared by the
// expensebook command: env loading, logging, config and store wiring.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expensebook/internal/backend"
	"expensebook/internal/config"
	"expensebook/internal/log"
	"expensebook/internal/store"
)

// SetupLogger builds the application logger at the given level and makes it
// the process default. An unknown level falls back to info and is reported.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	parsed, err := log.ParseLevel(level)
	if err == nil {
		cfg.Level = parsed
	}

	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", "level", level)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it, logging every problem found.
func LoadAndValidateConfig(logger *log.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.ErrorTypeContext(context.Background(), "Configuration validation failed",
			log.ErrorTypeConfiguration, err)
		return nil, err
	}
	return cfg, nil
}

// OpenStore creates the configured backend and opens the expense store on
// it. The returned cleanup releases the backend and must run after the store
// has been flushed.
func OpenStore(ctx context.Context, logger *log.Logger, cfg *config.Config) (*store.Store, backend.CleanupFunc, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("backend config: %w", err)
	}

	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}

	st, err := store.Open(ctx, res.KV,
		store.WithStrictCategories(cfg.StrictCategories),
		store.WithLogger(logger),
	)
	if err != nil {
		if cerr := res.Cleanup(); cerr != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, cerr)
		}
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return st, res.Cleanup, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// Package cli provides common CLI initialization utilities shared by
// cmd/contribot, cmd/contribot-worker and cmd/contribot-report.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contribot/internal/config"
	"contribot/internal/log"
)

// SetupLogger builds the stdout logger at LOG_LEVEL and installs it as the
// slog default so packages logging through slog share the handler.
func SetupLogger(level string) *log.Logger {
	logger := log.NewForComponent(log.ComponentApp, level)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// Validator is one of the per-binary Config checks, e.g. (*Config).ValidateBot.
type Validator func(*config.Config) error

// LoadConfig loads configuration from the environment and applies the
// checks in order, returning the first failure.
func LoadConfig(checks ...Validator) (*config.Config, error) {
	cfg := config.Load()
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger, checks ...Validator) *config.Config {
	cfg, err := LoadConfig(checks...)
	if err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM.
func GracefulShutdown(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown requested", "reason", context.Cause(ctx))
	}()
	return ctx, stop
}

// Cleanup runs fns in order within timeout and joins their errors.
func Cleanup(logger *log.Logger, timeout time.Duration, fns ...func() error) error {
	done := make(chan error, 1)
	go func() {
		var errs []error
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			if err := fn(); err != nil {
				errs = append(errs, err)
			}
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("Cleanup failed", "error", err)
			return err
		}
		logger.Info("Shutdown complete")
		return nil
	case <-time.After(timeout):
		logger.Warn("Shutdown timeout reached")
		return fmt.Errorf("cleanup exceeded %s", timeout)
	}
}

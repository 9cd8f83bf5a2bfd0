// Package cli provides the initialization steps of cmd/fintrack: env file,
// logging, configuration, backend and interrupt handling.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
)

// InterruptExitCode is the status used when the process is stopped by a signal.
const InterruptExitCode = 130

// exit is replaced in tests.
var exit = os.Exit

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger initializes structured logging on stderr at the given level
// and sets it as the default logger. Unknown levels fall back to warn.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	if lvl, err := config.ParseLogLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig(logger *log.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithComponent(log.ComponentConfig).Error("Configuration validation failed",
			log.NewFields().WithOperation(log.OpValidate).WithError(err).ToSlice()...)
		return nil, err
	}
	return cfg, nil
}

// InitBackend builds the store and the transaction service described by cfg.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}

	blog := logger.WithComponent(log.ComponentBackend)
	res, err := backend.NewFactory(blog.Logger.With(log.FieldComponent, log.ComponentBackend)).CreateBackend(ctx, backendCfg)
	if err != nil {
		blog.Error("Failed to initialize backend",
			log.FieldBackend, cfg.DataBackend,
			log.FieldError, err)
		return nil, fmt.Errorf("initialize %s backend: %w", cfg.DataBackend, err)
	}
	return res, nil
}

// OnceCleanup wraps fn so that it runs at most once, logging its error.
// It is shared by the normal exit path and the interrupt handler.
func OnceCleanup(logger *log.Logger, fn backend.CleanupFunc) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			if fn == nil {
				return
			}
			if err := fn(); err != nil {
				logger.Error("Cleanup failed",
					log.NewFields().WithOperation(log.OpShutdown).WithError(err).ToSlice()...)
			}
		})
	}
}

// HandleInterrupt runs cleanup and exits with InterruptExitCode on SIGINT
// or SIGTERM. The returned function stops watching for signals.
func HandleInterrupt(logger *log.Logger, cleanup func()) (stop func()) {
	sigChan := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			if cleanup != nil {
				cleanup()
			}
			exit(InterruptExitCode)
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(done)
		})
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"equanima/internal/backend"
	"equanima/internal/cli"
	"equanima/internal/config"
	apphttp "equanima/internal/http"
	applog "equanima/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)
	cfg = cli.LoadAndValidateConfig((*config.Config).Validate)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid backend configuration: %w", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	res, err := backend.NewFactory(logger).CreateBackend(startupCtx, backendCfg)
	cancelStartup()
	if err != nil {
		return fmt.Errorf("initialize %s backend: %w", cfg.DataBackend, err)
	}
	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", applog.FieldError, err)
			}
		})
	}

	srv := apphttp.NewServer(":"+cfg.Port, res.Journal,
		apphttp.WithLogger(logger.WithComponent(applog.ComponentHTTP)),
		apphttp.WithReadiness(apphttp.ReadyFunc(res.Ready)),
	)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cleanup()
	})

	logger.Info("Starting equanima server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		applog.FieldKey, res.Journal.Key())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cleanup()
		return err
	}

	<-done
	return nil
}

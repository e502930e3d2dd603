package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"equanima/internal/amqp"
	"equanima/internal/cli"
	"equanima/internal/config"
	applog "equanima/internal/log"
	gsheet "equanima/internal/sheets/google"
	"equanima/internal/storage"
	"equanima/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat).WithComponent(applog.ComponentWorker)
	cfg = cli.LoadAndValidateConfig((*config.Config).ValidateExporter)

	if err := run(cfg, logger); err != nil {
		logger.Error("Exporter stopped", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Exporter stopped gracefully")
}

// run owns every resource the exporter opens so they are closed on all paths.
func run(cfg *config.Config, logger *applog.Logger) error {
	logger.Info("Starting equanima-exporter",
		applog.FieldKey, cfg.JournalKey,
		"interval", cfg.ExportInterval.String())

	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("initialize SQLite store at %s: %w", cfg.SQLiteDBPath, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close SQLite store", applog.FieldError, err)
		}
	}()

	sheetsClient, err := gsheet.New(context.Background(), gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return fmt.Errorf("initialize Google Sheets client: %w", err)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer func() {
		if err := amqpClient.Close(); err != nil {
			logger.Error("Failed to close AMQP client", applog.FieldError, err)
		}
	}()

	exporter := worker.NewExportWorker(store, sheetsClient, cfg.JournalKey)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Catch up on anything written while the exporter was down.
	if _, err := exporter.Sync(ctx); err != nil {
		logger.Error("Startup export failed", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeJournalChanges(gctx, exporter.HandleChange)
	})
	g.Go(func() error {
		return exporter.RunPeriodic(gctx, cfg.ExportInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	<-done
	return nil
}

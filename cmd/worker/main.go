// Standalone report generation worker. Run this when the API server has
// REPORT_WORKER_ENABLED=false and PDF rendering should happen on separate
// machines. Multiple instances coexist safely; the claim query uses
// FOR UPDATE SKIP LOCKED.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/inspekta-io/inspekta/internal"
	"github.com/inspekta-io/inspekta/internal/email"
	"github.com/inspekta-io/inspekta/internal/pdf"
	"github.com/inspekta-io/inspekta/internal/repository"
	"github.com/inspekta-io/inspekta/internal/service"
	"github.com/inspekta-io/inspekta/internal/storage"
	"github.com/inspekta-io/inspekta/internal/worker"
)

func run() error {
	ctx := context.Background()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// The API server owns migrations; the worker only assumes the schema
	// is present.
	queries := repository.New(db)

	var photos storage.Storage
	switch cfg.StorageProvider {
	case storage.ProviderR2:
		photos, err = storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
	default:
		photos, err = storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	}
	if err != nil {
		return fmt.Errorf("photo storage initialization failed: %w", err)
	}

	artifacts, err := storage.NewArtifactStore(cfg.ReportsPath, cfg.PDFBase64RepairMaxBytes, logger)
	if err != nil {
		return fmt.Errorf("artifact store initialization failed: %w", err)
	}

	engine := pdf.NewEngine(pdf.Options{
		Headless:       cfg.PDFHeadless,
		NoSandbox:      cfg.PDFNoSandbox,
		ExecutablePath: cfg.PDFExecutablePath,
		RenderTimeout:  cfg.PDFRenderTimeout,
	}, logger)
	defer engine.Close()

	sender := email.NewSMTPEmailService(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	}, logger)

	reportService := service.NewReportService(queries, artifacts, photos, engine, sender, cfg.PublicBaseURL, cfg.WorkerMaxAttempts, logger)

	workerCfg := worker.DefaultConfig()
	workerCfg.BatchSize = cfg.WorkerBatchSize
	workerCfg.PollInterval = cfg.WorkerPollInterval
	workerCfg.JobTimeout = cfg.WorkerJobTimeout

	w, err := worker.New(queries, reportService, workerCfg, logger)
	if err != nil {
		return fmt.Errorf("worker initialization failed: %w", err)
	}

	w.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutdown signal received, stopping worker...")
	w.Stop()
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

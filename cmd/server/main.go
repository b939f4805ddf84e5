package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/inspekta-io/inspekta/internal"
	"github.com/inspekta-io/inspekta/internal/auth"
	"github.com/inspekta-io/inspekta/internal/email"
	"github.com/inspekta-io/inspekta/internal/handler"
	"github.com/inspekta-io/inspekta/internal/metrics"
	"github.com/inspekta-io/inspekta/internal/middleware"
	"github.com/inspekta-io/inspekta/internal/pdf"
	"github.com/inspekta-io/inspekta/internal/repository"
	"github.com/inspekta-io/inspekta/internal/service"
	"github.com/inspekta-io/inspekta/internal/storage"
	"github.com/inspekta-io/inspekta/internal/worker"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	queries := repository.New(db)

	// Photo storage
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

	// Report artifact store
	artifacts, err := storage.NewArtifactStore(cfg.ReportsPath, cfg.PDFBase64RepairMaxBytes, logger)
	if err != nil {
		return fmt.Errorf("artifact store initialization failed: %w", err)
	}

	// PDF engine (shared headless browser)
	engine := pdf.NewEngine(pdf.Options{
		Headless:       cfg.PDFHeadless,
		NoSandbox:      cfg.PDFNoSandbox,
		ExecutablePath: cfg.PDFExecutablePath,
		RenderTimeout:  cfg.PDFRenderTimeout,
	}, logger)
	defer engine.Close()

	// Outbound email
	sender := email.NewSMTPEmailService(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	}, logger)

	// Services
	reportService := service.NewReportService(queries, artifacts, photos, engine, sender, cfg.PublicBaseURL, cfg.WorkerMaxAttempts, logger)
	inspectionService := service.NewInspectionService(queries, reportService, logger)

	// In-process worker (optional; disable when running cmd/worker separately)
	if cfg.WorkerEnabled {
		workerCfg := worker.DefaultConfig()
		workerCfg.BatchSize = cfg.WorkerBatchSize
		workerCfg.PollInterval = cfg.WorkerPollInterval
		workerCfg.JobTimeout = cfg.WorkerJobTimeout

		w, err := worker.New(queries, reportService, workerCfg, logger)
		if err != nil {
			return fmt.Errorf("worker initialization failed: %w", err)
		}
		w.Start(ctx)
		defer w.Stop()
	}

	// Middleware
	isSecure := cfg.Env != "development"
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authMw := middleware.NewAuthMiddleware(issuer, queries, logger)
	loginLimiter := middleware.NewLoginRateLimiter(logger)
	publicLimiter := middleware.NewRateLimitMiddleware(
		middleware.NewRateLimiter(60, time.Minute, logger), logger)
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	// Handlers
	authHandler := handler.NewAuthHandler(queries, issuer, loginLimiter, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	inspectionHandler := handler.NewInspectionHandler(inspectionService, logger)
	photoHandler := handler.NewPhotoHandler(inspectionService, photos, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics (basic auth when configured)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	// Auth
	mux.Handle("POST /auth/login", loginLimiter.Limit(http.HandlerFunc(authHandler.Login)))

	// Authenticated API
	requireTech := middleware.Stack(authMw.RequireTechnician)

	mux.Handle("POST /inspections", requireTech(http.HandlerFunc(inspectionHandler.Create)))
	mux.Handle("GET /inspections/{id}", requireTech(http.HandlerFunc(inspectionHandler.Get)))
	mux.Handle("PUT /inspections/{id}/data", requireTech(http.HandlerFunc(inspectionHandler.SaveData)))
	mux.Handle("POST /inspections/{id}/complete", requireTech(http.HandlerFunc(inspectionHandler.Complete)))
	mux.Handle("POST /inspections/{id}/photos", requireTech(http.HandlerFunc(photoHandler.Upload)))

	mux.Handle("GET /reports/{id}", requireTech(http.HandlerFunc(reportHandler.Get)))
	mux.Handle("POST /reports/{id}/prepare", requireTech(http.HandlerFunc(reportHandler.Prepare)))
	mux.Handle("POST /reports/{id}/prepare-async", requireTech(http.HandlerFunc(reportHandler.PrepareAsync)))
	mux.Handle("GET /reports/jobs/{jobId}", requireTech(http.HandlerFunc(reportHandler.JobStatus)))
	mux.Handle("GET /reports/{id}/download", requireTech(http.HandlerFunc(reportHandler.Download)))
	mux.Handle("GET /reports/{id}/signing-data", requireTech(http.HandlerFunc(reportHandler.SigningData)))
	mux.Handle("POST /reports/{id}/sign", requireTech(http.HandlerFunc(reportHandler.Sign)))
	mux.Handle("POST /reports/{id}/send", requireTech(http.HandlerFunc(reportHandler.Send)))
	mux.Handle("PATCH /reports/{id}/style", requireTech(http.HandlerFunc(reportHandler.UpdateStyle)))

	// Public QR verification (rate limited, unauthenticated)
	mux.Handle("GET /reports/public/{qrToken}", publicLimiter.Limit(http.HandlerFunc(reportHandler.PublicGet)))
	mux.Handle("GET /reports/public/{qrToken}/download", publicLimiter.Limit(http.HandlerFunc(reportHandler.PublicDownload)))

	// Outer middleware: security headers, request logging, metrics
	root := middleware.Stack(
		securityMw.Handler,
		loggingMw.Handler,
		metrics.Middleware,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

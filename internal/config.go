package internal

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	// Application base URL used when building public QR verification links
	PublicBaseURL string

	// Bearer token signing
	JWTSecret string
	TokenTTL  time.Duration

	// SMTP Configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// Report artifact storage (unsigned/signed PDFs live on the local disk
	// next to the renderer; photos may live on local disk or R2)
	ReportsPath             string
	PDFBase64RepairMaxBytes int64

	// Photo Storage Configuration
	StorageProvider string // "local" or "r2"

	// Local Storage (development)
	LocalStoragePath string // Base directory for local file storage
	LocalStorageURL  string // Base URL for accessing local files

	// R2 Storage (production)
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string // Optional custom domain URL

	// PDF engine configuration
	PDFHeadless       bool
	PDFNoSandbox      bool
	PDFExecutablePath string
	PDFRenderTimeout  time.Duration

	// Worker Configuration
	WorkerEnabled      bool
	WorkerBatchSize    int
	WorkerPollInterval time.Duration
	WorkerJobTimeout   time.Duration
	WorkerMaxAttempts  int

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		PublicBaseURL: getEnv("REPORT_PUBLIC_BASE_URL", "http://localhost:8080"),

		TokenTTL: getEnvDuration("TOKEN_TTL", 12*time.Hour),

		// SMTP defaults for Mailhog (development)
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@inspekta.io"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Inspekta"),

		// Report artifacts default next to the working directory
		ReportsPath:             getEnv("REPORTS_PATH", "./storage/reports"),
		PDFBase64RepairMaxBytes: getEnvInt64("PDF_BASE64_REPAIR_MAX_BYTES", 30*1024*1024),

		// Photo storage defaults to local filesystem for development
		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "./storage"),
		LocalStorageURL:  getEnv("LOCAL_STORAGE_URL", "http://localhost:8080/files"),

		// R2 configuration (production only)
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),

		// PDF engine defaults
		PDFHeadless:       getEnvBool("PDF_HEADLESS", true),
		PDFNoSandbox:      getEnvBool("PDF_NO_SANDBOX", true),
		PDFExecutablePath: getEnv("PDF_EXECUTABLE_PATH", ""),
		PDFRenderTimeout:  getEnvDuration("PDF_RENDER_TIMEOUT", 90*time.Second),

		// Worker defaults
		WorkerEnabled:      getEnvBool("REPORT_WORKER_ENABLED", true),
		WorkerBatchSize:    getEnvInt("REPORT_WORKER_BATCH", 3),
		WorkerPollInterval: getEnvDuration("REPORT_WORKER_DELAY",
			time.Duration(getEnvInt("REPORT_WORKER_DELAY_MS", 2000))*time.Millisecond),
		WorkerJobTimeout:   getEnvDuration("REPORT_WORKER_JOB_TIMEOUT", 5*time.Minute),
		WorkerMaxAttempts:  getEnvInt("REPORT_WORKER_MAX_ATTEMPTS", 3),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Required
	cfg.DatabaseUrl = os.Getenv("DATABASE_URL")
	if cfg.DatabaseUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		if cfg.Env != "development" {
			return nil, fmt.Errorf("JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = "dev-only-secret"
	}

	// Validate storage configuration
	if cfg.StorageProvider == "r2" {
		if cfg.R2AccountID == "" {
			return nil, fmt.Errorf("R2_ACCOUNT_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2AccessKeyID == "" {
			return nil, fmt.Errorf("R2_ACCESS_KEY_ID is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2SecretAccessKey == "" {
			return nil, fmt.Errorf("R2_SECRET_ACCESS_KEY is required when STORAGE_PROVIDER is 'r2'")
		}
		if cfg.R2BucketName == "" {
			return nil, fmt.Errorf("R2_BUCKET_NAME is required when STORAGE_PROVIDER is 'r2'")
		}
	} else if cfg.StorageProvider != "local" {
		return nil, fmt.Errorf("STORAGE_PROVIDER must be either 'local' or 'r2', got: %s", cfg.StorageProvider)
	}

	if cfg.PDFBase64RepairMaxBytes < 0 {
		return nil, fmt.Errorf("PDF_BASE64_REPAIR_MAX_BYTES must not be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

package internal

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     int
	LogLevel string

	// Lifecycle tracker backend: "memory" or "postgres".
	TrackerBackend string
	DatabaseURL    string

	// Zone registry
	ZonesFile           string
	DefaultScanInterval time.Duration

	// Scheduler
	AnalysisWorkers       int
	MaxConcurrentAnalyses int
	MaxRetries            int
	DrainTimeout          time.Duration

	// Executor backend: "openai" or "mock".
	ExecutorProvider   string
	OpenAIAPIKey       string
	OpenAIModel        string
	ExecutorMaxRetries int
	ExecutorRetryDelay time.Duration
	ExecutorTimeout    time.Duration

	// Snapshot source: "local" or "s3".
	SnapshotProvider string
	SnapshotDir      string

	// S3 snapshot source (production)
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Bucket          string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		// Tracker defaults to in-memory for development
		TrackerBackend: getEnv("TRACKER_BACKEND", "memory"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		// Zone registry
		ZonesFile:           getEnv("ZONES_FILE", "zones.yaml"),
		DefaultScanInterval: getEnvDuration("DEFAULT_SCAN_INTERVAL", 15*time.Minute),

		// Scheduler defaults
		AnalysisWorkers:       getEnvInt("ANALYSIS_WORKERS", 2),
		MaxConcurrentAnalyses: getEnvInt("MAX_CONCURRENT_ANALYSES", 2),
		MaxRetries:            getEnvInt("MAX_RETRIES", 2),
		DrainTimeout:          getEnvDuration("DRAIN_TIMEOUT", 30*time.Second),

		// Executor defaults to mock for development
		ExecutorProvider:   getEnv("EXECUTOR_PROVIDER", "mock"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o"),
		ExecutorMaxRetries: getEnvInt("EXECUTOR_MAX_RETRIES", 3),
		ExecutorRetryDelay: getEnvDuration("EXECUTOR_RETRY_DELAY", 1*time.Second),
		ExecutorTimeout:    getEnvDuration("EXECUTOR_TIMEOUT", 60*time.Second),

		// Snapshots default to local filesystem for development
		SnapshotProvider: getEnv("SNAPSHOT_PROVIDER", "local"),
		SnapshotDir:      getEnv("SNAPSHOT_DIR", "./snapshots"),

		// S3 configuration (production only)
		S3Region:          getEnv("S3_REGION", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
	}

	switch cfg.TrackerBackend {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when TRACKER_BACKEND is 'postgres'")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("TRACKER_BACKEND must be either 'memory' or 'postgres', got: %s", cfg.TrackerBackend)
	}

	switch cfg.ExecutorProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when EXECUTOR_PROVIDER is 'openai'")
		}
	case "mock":
	default:
		return nil, fmt.Errorf("EXECUTOR_PROVIDER must be either 'openai' or 'mock', got: %s", cfg.ExecutorProvider)
	}

	switch cfg.SnapshotProvider {
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when SNAPSHOT_PROVIDER is 's3'")
		}
		if cfg.S3AccessKeyID == "" {
			return nil, fmt.Errorf("S3_ACCESS_KEY_ID is required when SNAPSHOT_PROVIDER is 's3'")
		}
		if cfg.S3SecretAccessKey == "" {
			return nil, fmt.Errorf("S3_SECRET_ACCESS_KEY is required when SNAPSHOT_PROVIDER is 's3'")
		}
	case "local":
	default:
		return nil, fmt.Errorf("SNAPSHOT_PROVIDER must be either 'local' or 's3', got: %s", cfg.SnapshotProvider)
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

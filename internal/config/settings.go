// Package config provides environment-driven settings for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environments the service runs in. The environment selects the blob store
// and dispatcher implementations at startup.
const (
	EnvLocal      = "local"
	EnvProduction = "production"
)

// Settings holds everything the binaries read from the environment.
type Settings struct {
	Environment string // local or production
	Port        int    // API server port
	WorkerPort  int    // worker server port
	DatabaseURL string // PostgreSQL connection URL

	StoragePath   string // base directory for local blob storage
	StorageBucket string // GCS bucket for production blob storage

	WorkerURL string // worker base URL for the push dispatcher
	Workers   int    // local dispatcher pool size
	QueueSize int    // local dispatcher buffer size
}

// Load reads settings from the environment, applying defaults for optional
// fields, and validates the result.
func Load() (*Settings, error) {
	s := &Settings{
		Environment:   getEnv("ENVIRONMENT", EnvLocal),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		StoragePath:   getEnv("STORAGE_PATH", "./blob-data"),
		StorageBucket: os.Getenv("STORAGE_BUCKET"),
		WorkerURL:     os.Getenv("WORKER_URL"),
	}

	var err error
	if s.Port, err = getEnvInt("PORT", 8080); err != nil {
		return nil, err
	}
	if s.WorkerPort, err = getEnvInt("WORKER_PORT", 8081); err != nil {
		return nil, err
	}
	if s.Workers, err = getEnvInt("WORKERS", 4); err != nil {
		return nil, err
	}
	if s.QueueSize, err = getEnvInt("QUEUE_SIZE", 64); err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks cross-field requirements.
func (s *Settings) Validate() error {
	if s.Environment != EnvLocal && s.Environment != EnvProduction {
		return fmt.Errorf("config error: ENVIRONMENT must be %q or %q, got %q", EnvLocal, EnvProduction, s.Environment)
	}
	if s.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required")
	}
	if s.Environment == EnvProduction {
		if s.StorageBucket == "" {
			return fmt.Errorf("config error: STORAGE_BUCKET is required in production")
		}
		if s.WorkerURL == "" {
			return fmt.Errorf("config error: WORKER_URL is required in production")
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config error: %s must be an integer, got %q", key, v)
	}
	return n, nil
}

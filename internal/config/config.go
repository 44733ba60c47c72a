// Package config loads runtime settings from the environment, after reading
// a .env file when one is present.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/pable/go-hoop-metrics/internal/model"
	"github.com/pable/go-hoop-metrics/internal/parser"
)

// Config holds every environment-driven setting.
type Config struct {
	// Storage
	DBPath string

	// Ingestion
	SinceYear int
	Workers   int

	// Similarity defaults
	TopK     int
	Features model.FeatureSet

	// Logging
	LogLevel    string
	LogEncoding string
}

// Load reads .env (if present) and then the environment. Malformed numeric
// values fall back to defaults; a malformed feature list is an error.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	features := model.AllFeatures
	if v := os.Getenv("HOOPMETRICS_FEATURES"); v != "" {
		fs, err := model.ParseFeatures(v)
		if err != nil {
			return nil, err
		}
		if !fs.Empty() {
			features = fs
		}
	}

	return &Config{
		DBPath: envOr("HOOPMETRICS_DB", filepath.Join(userHome(), ".hoopmetrics", "shots.db")),

		SinceYear: envInt("HOOPMETRICS_SINCE_YEAR", parser.DefaultSinceYear),
		Workers:   envInt("HOOPMETRICS_WORKERS", 4),

		TopK:     envInt("HOOPMETRICS_TOP_K", 5),
		Features: features,

		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogEncoding: envOr("LOG_ENCODING", "console"),
	}, nil
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Document locations
	PlaybooksDir string
	ProgressDir  string

	// Auth
	APIKey string

	// Progress behavior
	Autosave bool

	// Search
	SearchTopK     int
	SearchIndexTTL time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Heuristic overrides (optional YAML file)
	HeuristicsFile string

	// Cache invalidation
	WatchPlaybooks bool

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		PlaybooksDir: envOr("PLAYBOOKS_DIR", "playbooks"),
		ProgressDir:  os.Getenv("PROGRESS_DIR"),

		APIKey: os.Getenv("PLAYTRACK_API_KEY"),

		Autosave: envBool("AUTOSAVE", true),

		SearchTopK:     envInt("SEARCH_TOP_K", 7),
		SearchIndexTTL: envDuration("SEARCH_INDEX_TTL", 10*time.Minute),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		HeuristicsFile: os.Getenv("HEURISTICS_FILE"),

		WatchPlaybooks: envBool("WATCH_PLAYBOOKS", true),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	// Progress records live next to the playbooks unless redirected.
	if cfg.ProgressDir == "" {
		cfg.ProgressDir = cfg.PlaybooksDir
	}
	if cfg.SearchTopK <= 0 {
		cfg.SearchTopK = 7
	}
	if cfg.SearchIndexTTL <= 0 {
		cfg.SearchIndexTTL = 10 * time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}

	return cfg
}

func (c Config) Validate() error {
	if c.PlaybooksDir == "" {
		return fmt.Errorf("PLAYBOOKS_DIR is required")
	}
	return nil
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

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

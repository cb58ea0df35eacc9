package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Documents
	DocsDir          string
	MaxDocumentBytes int64

	// Reader preference storage
	StoreBackend    string
	SQLitePath      string
	PathstoreURL    string
	PathstoreAPIKey string
	PrefsTimeout    time.Duration

	// Auth for the JSON API; empty disables it.
	APIKey string

	// View cache
	ViewTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	LogLevel string
}

// fileConfig is the optional YAML file named by DOCPAGER_CONFIG. Its values
// are defaults; environment variables win.
type fileConfig struct {
	Port             string `yaml:"port"`
	DocsDir          string `yaml:"docs_dir"`
	MaxDocumentBytes int64  `yaml:"max_document_bytes"`
	Store            struct {
		Backend         string `yaml:"backend"`
		SQLitePath      string `yaml:"sqlite_path"`
		PathstoreURL    string `yaml:"pathstore_url"`
		PathstoreAPIKey string `yaml:"pathstore_api_key"`
		PrefsTimeout    string `yaml:"prefs_timeout"`
	} `yaml:"store"`
	APIKey               string `yaml:"api_key"`
	ViewTTL              string `yaml:"view_ttl"`
	PDFFallbackPdftotext *bool  `yaml:"pdf_fallback_pdftotext"`
	LogLevel             string `yaml:"log_level"`
}

// Load reads configuration from the optional YAML file and the environment.
func Load() (Config, error) {
	var fc fileConfig
	if path := os.Getenv("DOCPAGER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	fileTTL := 30 * time.Minute
	if fc.ViewTTL != "" {
		d, err := time.ParseDuration(fc.ViewTTL)
		if err != nil {
			return Config{}, fmt.Errorf("config file view_ttl: %w", err)
		}
		fileTTL = d
	}
	filePrefsTimeout := 300 * time.Millisecond
	if fc.Store.PrefsTimeout != "" {
		d, err := time.ParseDuration(fc.Store.PrefsTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("config file store.prefs_timeout: %w", err)
		}
		filePrefsTimeout = d
	}
	pdfFallback := true
	if fc.PDFFallbackPdftotext != nil {
		pdfFallback = *fc.PDFFallbackPdftotext
	}

	cfg := Config{
		Port: envOr("PORT", or(fc.Port, "8090")),

		DocsDir:          envOr("DOCS_DIR", or(fc.DocsDir, "./docs")),
		MaxDocumentBytes: envInt64("MAX_DOCUMENT_BYTES", orInt64(fc.MaxDocumentBytes, 52428800)), // 50MB

		StoreBackend:    strings.ToLower(envOr("STORE_BACKEND", or(fc.Store.Backend, "memory"))),
		SQLitePath:      envOr("SQLITE_PATH", or(fc.Store.SQLitePath, "docpager.db")),
		PathstoreURL:    envOr("PATHSTORE_URL", or(fc.Store.PathstoreURL, "http://localhost:8080")),
		PathstoreAPIKey: envOr("PATHSTORE_API_KEY", fc.Store.PathstoreAPIKey),
		PrefsTimeout:    envDuration("PREFS_TIMEOUT", filePrefsTimeout),

		APIKey: envOr("DOCPAGER_API_KEY", fc.APIKey),

		ViewTTL: envDuration("VIEW_TTL", fileTTL),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", pdfFallback),

		LogLevel: strings.ToLower(envOr("LOG_LEVEL", or(fc.LogLevel, "info"))),
	}

	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = 52428800
	}
	if cfg.ViewTTL <= 0 {
		cfg.ViewTTL = 30 * time.Minute
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.DocsDir == "" {
		return fmt.Errorf("DOCS_DIR is required")
	}
	switch c.StoreBackend {
	case "memory":
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case "pathstore":
		if c.PathstoreAPIKey == "" {
			return fmt.Errorf("PATHSTORE_API_KEY is required for the pathstore store")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be memory, sqlite or pathstore, got %q", c.StoreBackend)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func orInt64(v, fallback int64) int64 {
	if v > 0 {
		return v
	}
	return fallback
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
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

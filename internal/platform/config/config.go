package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultIdleTimeout      = 120 * time.Second
	defaultStoreBackend     = "file"
	defaultStorePath        = "data"
	defaultStoreSlot        = "cartList"
	defaultCatalogPath      = "data/catalog.json"
	defaultReviewAPITimeout = 10 * time.Second
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Catalog   CatalogConfig
	ReviewAPI ReviewAPIConfig
	Currency  CurrencyConfig
	Features  FeatureFlags
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig selects and parameterises the cart slot store backend.
type StoreConfig struct {
	Backend string // "file", "sqlite", or "memory"
	Path    string // directory for file, database path for sqlite
	Slot    string
}

// CatalogConfig points at the product catalog snapshot.
type CatalogConfig struct {
	Path string
}

// ReviewAPIConfig addresses the external review-creation API.
type ReviewAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// CurrencyConfig supplies the static exchange-rate table keyed by ISO code.
type CurrencyConfig struct {
	Rates map[string]float64
}

// FeatureFlags toggle optional behaviour without redeploying.
type FeatureFlags struct {
	EnableBadgeStream bool
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides,
// and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "STORE_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "STORE_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "STORE_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "STORE_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(stringWithDefault(lookup, "STORE_SLOT_BACKEND", defaultStoreBackend)),
			Path:    stringWithDefault(lookup, "STORE_SLOT_PATH", defaultStorePath),
			Slot:    stringWithDefault(lookup, "STORE_SLOT_NAME", defaultStoreSlot),
		},
		Catalog: CatalogConfig{
			Path: stringWithDefault(lookup, "STORE_CATALOG_PATH", defaultCatalogPath),
		},
		ReviewAPI: ReviewAPIConfig{
			BaseURL: stringWithDefault(lookup, "STORE_REVIEW_API_BASE_URL", ""),
			Timeout: durationWithDefault(lookup, "STORE_REVIEW_API_TIMEOUT", defaultReviewAPITimeout),
		},
		Currency: CurrencyConfig{
			Rates: ratesWithDefault(lookup, "STORE_CURRENCY_RATES"),
		},
		Features: FeatureFlags{
			EnableBadgeStream: boolWithDefault(lookup, "STORE_FEATURE_BADGE_STREAM", true),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	switch cfg.Store.Backend {
	case "file", "sqlite", "memory":
	default:
		missing = append(missing, "Store.Backend")
	}
	if cfg.Store.Backend != "memory" && strings.TrimSpace(cfg.Store.Path) == "" {
		missing = append(missing, "Store.Path")
	}
	if strings.TrimSpace(cfg.Store.Slot) == "" {
		missing = append(missing, "Store.Slot")
	}
	if strings.TrimSpace(cfg.Catalog.Path) == "" {
		missing = append(missing, "Catalog.Path")
	}
	if cfg.ReviewAPI.BaseURL == "" {
		missing = append(missing, "ReviewAPI.BaseURL")
	}
	if cfg.ReviewAPI.Timeout <= 0 {
		missing = append(missing, "ReviewAPI.Timeout")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

// ratesWithDefault parses "EUR=0.9,JPY=145.2" style tables. Entries that do
// not parse as positive numbers are skipped.
func ratesWithDefault(lookup func(string) (string, bool), key string) map[string]float64 {
	values := make(map[string]float64)
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return values
	}
	entries := strings.Split(raw, ",")
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(parts[0]))
		rate, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || code == "" || rate <= 0 {
			continue
		}
		values[code] = rate
	}
	return values
}

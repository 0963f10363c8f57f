// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/talent-ranker/internal/analysis"
	"github.com/jonathan/talent-ranker/internal/cache"
	"github.com/jonathan/talent-ranker/internal/llm"
)

var configValidator = validator.New()

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Provider
	APIKey    string `json:"api_key,omitempty"`                                                      // Gemini API key
	ModelTier string `json:"model_tier,omitempty" validate:"omitempty,oneof=lite standard advanced"` // Model tier for analysis calls
	Heuristic bool   `json:"heuristic,omitempty"`                                                    // Skip the AI provider entirely

	// Pacing and retries
	RequestsPerMinute int `json:"requests_per_minute,omitempty" validate:"gte=0"` // Provider request ceiling
	MaxRetries        int `json:"max_retries,omitempty" validate:"gte=0"`         // Retry budget per candidate
	RequestTimeoutSec int `json:"request_timeout_sec,omitempty" validate:"gte=0"` // Per-call timeout in seconds

	// Dispatch
	MaxConcurrent int `json:"max_concurrent,omitempty" validate:"gte=0"` // Simultaneous in-flight analyses
	MaxBatchSize  int `json:"max_batch_size,omitempty" validate:"gte=0"` // Sub-batch size

	// Cache
	CacheMaxEntries int    `json:"cache_max_entries,omitempty" validate:"gte=0"` // In-memory entry cap
	CacheTTLHours   int    `json:"cache_ttl_hours,omitempty" validate:"gte=0"`   // Result freshness window
	DatabaseURL     string `json:"database_url,omitempty"`                       // PostgreSQL URL for the persistent cache

	// Output
	Verbose bool `json:"verbose,omitempty"` // Print detailed boxes for each stage
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are not checked here; the CLI enforces those after merging
// flags over the file values.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.ModelTier == "" {
		result.ModelTier = defaults.ModelTier
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	if result.RequestsPerMinute == 0 {
		result.RequestsPerMinute = defaults.RequestsPerMinute
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.RequestTimeoutSec == 0 {
		result.RequestTimeoutSec = defaults.RequestTimeoutSec
	}
	if result.MaxConcurrent == 0 {
		result.MaxConcurrent = defaults.MaxConcurrent
	}
	if result.MaxBatchSize == 0 {
		result.MaxBatchSize = defaults.MaxBatchSize
	}
	if result.CacheMaxEntries == 0 {
		result.CacheMaxEntries = defaults.CacheMaxEntries
	}
	if result.CacheTTLHours == 0 {
		result.CacheTTLHours = defaults.CacheTTLHours
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ClientConfig maps the file-level settings onto the analysis client's
// knobs. Zero values stay zero; the client applies its own defaults.
func (c *Config) ClientConfig() analysis.ClientConfig {
	return analysis.ClientConfig{
		RequestsPerMinute: c.RequestsPerMinute,
		MaxRetries:        c.MaxRetries,
		RequestTimeout:    time.Duration(c.RequestTimeoutSec) * time.Second,
		Tier:              llm.ModelTier(c.ModelTier),
	}
}

// OrchestratorOptions maps the file-level settings onto the dispatch knobs.
func (c *Config) OrchestratorOptions() analysis.Options {
	return analysis.Options{
		MaxConcurrent: c.MaxConcurrent,
		MaxBatchSize:  c.MaxBatchSize,
	}
}

// CacheSettings returns the cache bounds, zero meaning "use the default".
func (c *Config) CacheSettings() (maxEntries int, ttl time.Duration) {
	if c.CacheMaxEntries > 0 {
		maxEntries = c.CacheMaxEntries
	} else {
		maxEntries = cache.DefaultMaxEntries
	}
	if c.CacheTTLHours > 0 {
		ttl = time.Duration(c.CacheTTLHours) * time.Hour
	} else {
		ttl = cache.DefaultTTL
	}
	return maxEntries, ttl
}

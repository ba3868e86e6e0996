// Package config provides configuration loading and validation for the jobfit
// service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Usage store backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Duration is a time.Duration that reads from JSON as a Go duration string ("45s").
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("duration must be a string or number of seconds")
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// MarshalJSON writes the duration string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config represents the service configuration. It can be loaded from a JSON
// file and overlaid with environment variables.
type Config struct {
	// Generative-text provider
	LLMProvider string `json:"llm_provider,omitempty"` // "gemini" or "anthropic"
	APIKey      string `json:"api_key,omitempty"`      // Provider API key

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	UsageStore  string `json:"usage_store,omitempty"`  // memory, postgres or sqlite
	SQLitePath  string `json:"sqlite_path,omitempty"`  // Usage database file for the sqlite store
	PlansFile   string `json:"plans_file,omitempty"`   // YAML plan catalogue overriding the built-in tiers
	DefaultTier string `json:"default_tier,omitempty"` // Tier of accounts without an assignment
	ProfilesDir string `json:"profiles_dir,omitempty"` // Seeds the in-memory profile store from <account>.json files

	// Server
	Port int `json:"port,omitempty"` // Bearer token settings come from NewJWTConfig

	// Timeouts
	StageTimeout    Duration `json:"stage_timeout,omitempty"`    // Per tailoring stage
	ClassifyTimeout Duration `json:"classify_timeout,omitempty"` // Extended skill classification
	RenderTimeout   Duration `json:"render_timeout,omitempty"`   // Per PDF render

	// Rendering
	ChromePath string `json:"chrome_path,omitempty"`

	// Logging
	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LLMProvider:     "gemini",
		UsageStore:      StoreMemory,
		SQLitePath:      "jobfit-usage.db",
		Port:            8080,
		StageTimeout:    Duration(45 * time.Second),
		ClassifyTimeout: Duration(10 * time.Second),
		RenderTimeout:   Duration(60 * time.Second),
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

// FromEnv reads configuration from environment variables. Unset variables
// leave the corresponding field empty.
func FromEnv() (*Config, error) {
	cfg := &Config{
		LLMProvider: os.Getenv("LLM_PROVIDER"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		UsageStore:  os.Getenv("USAGE_STORE"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
		PlansFile:   os.Getenv("PLANS_FILE"),
		DefaultTier: os.Getenv("DEFAULT_TIER"),
		ProfilesDir: os.Getenv("PROFILES_DIR"),
		ChromePath:  os.Getenv("CHROME_PATH"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		LogFormat:   os.Getenv("LOG_FORMAT"),
	}

	switch strings.ToLower(cfg.LLMProvider) {
	case "anthropic":
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	default:
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = port
	}

	durations := []struct {
		key string
		dst *Duration
	}{
		{"STAGE_TIMEOUT", &cfg.StageTimeout},
		{"CLASSIFY_TIMEOUT", &cfg.ClassifyTimeout},
		{"RENDER_TIMEOUT", &cfg.RenderTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %v", d.key, err)
		}
		*d.dst = Duration(parsed)
	}

	return cfg, nil
}

// Load builds the effective configuration: environment over the optional JSON
// file over the built-in defaults.
func Load(path string) (*Config, error) {
	base := Defaults()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		base = fileCfg.MergeWithDefaults(base)
	}

	envCfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	merged := envCfg.MergeWithDefaults(base)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for API keys or database URLs since only some
// commands need them.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "", "gemini", "anthropic":
	default:
		return fmt.Errorf("config error: unknown llm_provider %q", c.LLMProvider)
	}

	switch c.UsageStore {
	case "", StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: usage_store 'postgres' requires database_url")
		}
	default:
		return fmt.Errorf("config error: unknown usage_store %q", c.UsageStore)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	if c.StageTimeout < 0 || c.ClassifyTimeout < 0 || c.RenderTimeout < 0 {
		return fmt.Errorf("config error: timeouts must be non-negative")
	}

	if c.PlansFile != "" {
		if _, err := os.Stat(c.PlansFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: plans file not found: %s", c.PlansFile)
		}
	}
	if c.ProfilesDir != "" {
		if info, err := os.Stat(c.ProfilesDir); err != nil || !info.IsDir() {
			return fmt.Errorf("config error: profiles directory not found: %s", c.ProfilesDir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&result.LLMProvider, defaults.LLMProvider)
	fill(&result.APIKey, defaults.APIKey)
	fill(&result.DatabaseURL, defaults.DatabaseURL)
	fill(&result.UsageStore, defaults.UsageStore)
	fill(&result.SQLitePath, defaults.SQLitePath)
	fill(&result.PlansFile, defaults.PlansFile)
	fill(&result.DefaultTier, defaults.DefaultTier)
	fill(&result.ProfilesDir, defaults.ProfilesDir)
	fill(&result.ChromePath, defaults.ChromePath)
	fill(&result.LogLevel, defaults.LogLevel)
	fill(&result.LogFormat, defaults.LogFormat)

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.StageTimeout == 0 {
		result.StageTimeout = defaults.StageTimeout
	}
	if result.ClassifyTimeout == 0 {
		result.ClassifyTimeout = defaults.ClassifyTimeout
	}
	if result.RenderTimeout == 0 {
		result.RenderTimeout = defaults.RenderTimeout
	}

	return result
}

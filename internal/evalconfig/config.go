// Package evalconfig resolves the top-level run configuration: which
// providers are configured, default sampling parameters, and retry/
// concurrency policy, with ${VAR}-style environment variable interpolation.
package evalconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
)

// ProviderConfig is one configured backend, selected by Type. BaseURL and
// OrgID are read only for the "openai" type; "gemini" uses APIKey alone.
type ProviderConfig struct {
	Type    string `toml:"type"` // "openai" | "gemini"
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	OrgID   string `toml:"org_id"`
}

// Config is the full run configuration: provider credentials plus the
// default sampling and concurrency policy an invocation falls back to when
// a case set doesn't override it.
type Config struct {
	Providers         map[string]ProviderConfig `toml:"providers"`
	DefaultProvider   string                    `toml:"default_provider"`
	DefaultModel      string                    `toml:"default_model"`
	DefaultTemperature float64                  `toml:"default_temperature"`
	MaxRetriesPerCase int                       `toml:"max_retries_per_case"`
	RetryDelayMs      int64                     `toml:"retry_delay_ms"`
	Parallelism       int                       `toml:"parallelism"`
	OutputDir         string                    `toml:"output_dir"`
}

// Default mirrors the zero-config run: no configured providers, openai /
// gpt-4.1-mini as the default provider and model, 3 retries, 1s initial
// backoff, 4-way parallelism.
func Default() Config {
	return Config{
		Providers:          make(map[string]ProviderConfig),
		DefaultProvider:    "openai",
		DefaultModel:       "gpt-4.1-mini",
		DefaultTemperature: 0.0,
		MaxRetriesPerCase:  3,
		RetryDelayMs:       1000,
		Parallelism:        4,
		OutputDir:          "./codecrucible-results",
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// resolveEnvVars replaces every ${VAR_NAME} reference with the named
// environment variable's value (empty string if unset).
func resolveEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}

// Load reads a Config from path, or returns Default() if path is empty and
// no well-known config file exists in the current directory.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat("codecrucible.toml"); err == nil {
			path = "codecrucible.toml"
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("evalconfig: read %s: %w", path, err)
		}
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("evalconfig: parse %s: %w", path, err)
		}
	}

	for name, pc := range cfg.Providers {
		pc.APIKey = resolveEnvVars(pc.APIKey)
		pc.BaseURL = resolveEnvVars(pc.BaseURL)
		pc.OrgID = resolveEnvVars(pc.OrgID)
		cfg.Providers[name] = pc
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// applyEnvOverrides lets CODECRUCIBLE_OPENAI_KEY / CODECRUCIBLE_GEMINI_KEY
// supply (or override) credentials without editing the config file, mainly
// for CI.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("CODECRUCIBLE_OPENAI_KEY"); key != "" {
		pc := cfg.Providers["openai"]
		pc.Type = "openai"
		pc.APIKey = key
		cfg.Providers["openai"] = pc
	}
	if key := os.Getenv("CODECRUCIBLE_GEMINI_KEY"); key != "" {
		pc := cfg.Providers["gemini"]
		pc.Type = "gemini"
		pc.APIKey = key
		cfg.Providers["gemini"] = pc
	}
}

// ResolveOutputPath joins the config's output directory with a relative
// report filename.
func ResolveOutputPath(cfg Config, filename string) string {
	return filepath.Join(cfg.OutputDir, filename)
}

// Package apikey resolves provider API keys with a clear precedence order
// and performs lightweight sanity checks on their shape, so a misconfigured
// key fails fast at startup rather than as an opaque 401 mid-run.
package apikey

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/codecrucible/codecrucible/internal/logutil"
	"github.com/codecrucible/codecrucible/internal/provider"
)

// Source records where a resolved key came from.
type Source int

const (
	SourceNone Source = iota
	SourceEnvironment
	SourceConfig
)

// Result is a resolved API key plus metadata about its origin.
type Result struct {
	Key                 string
	Source              Source
	EnvironmentVariable string
	Provider            string
}

// Resolver resolves API keys for configured providers. Environment
// variables always take precedence over a config file's api_key field,
// so a key committed to a config file never silently shadows a freshly
// rotated secret exported into the shell.
type Resolver struct {
	logger  logutil.LoggerInterface
	envVars map[string]string // provider -> env var name override
}

// New creates a Resolver using the default provider -> env var mapping.
func New(logger logutil.LoggerInterface) *Resolver {
	if logger == nil {
		logger = logutil.NewLogger(logutil.InfoLevel, nil, "[apikey] ")
	}
	return &Resolver{logger: logger, envVars: make(map[string]string)}
}

// NewWithEnvVars creates a Resolver with custom provider -> env var names.
func NewWithEnvVars(logger logutil.LoggerInterface, envVars map[string]string) *Resolver {
	r := New(logger)
	r.envVars = envVars
	return r
}

// Resolve returns the API key for providerName, preferring its environment
// variable over configKey. Returns a provider.Error with CategoryAuth when
// neither source has a key.
func (r *Resolver) Resolve(ctx context.Context, providerName, configKey string) (Result, error) {
	envVar := r.envVarFor(providerName)
	if envVar != "" {
		if v := os.Getenv(envVar); v != "" {
			r.logger.DebugContext(ctx, "apikey: using %s for provider %q", envVar, providerName)
			return Result{Key: v, Source: SourceEnvironment, EnvironmentVariable: envVar, Provider: providerName}, nil
		}
	}

	if configKey != "" {
		r.logger.DebugContext(ctx, "apikey: falling back to configured key for provider %q", providerName)
		return Result{Key: configKey, Source: SourceConfig, Provider: providerName}, nil
	}

	return Result{}, provider.Wrap(providerName, provider.CategoryAuth,
		fmt.Sprintf("no API key found; set %s or configure api_key for provider %q", envVar, providerName), nil)
}

// Validate performs a provider-specific format sanity check. It never
// rejects a key outright on format alone (providers rotate key formats)
// but logs a warning when a key looks obviously wrong.
func (r *Resolver) Validate(ctx context.Context, providerName, key string) error {
	if key == "" {
		return fmt.Errorf("apikey: key for provider %q is empty", providerName)
	}

	switch strings.ToLower(providerName) {
	case "openai":
		if !strings.HasPrefix(key, "sk-") {
			r.logger.WarnContext(ctx, "apikey: OpenAI key does not start with 'sk-'")
		}
	case "gemini":
		if len(key) < 20 {
			r.logger.WarnContext(ctx, "apikey: Gemini key looks unusually short")
		}
	}
	return nil
}

func (r *Resolver) envVarFor(providerName string) string {
	if v, ok := r.envVars[providerName]; ok && v != "" {
		return v
	}
	switch strings.ToLower(providerName) {
	case "openai":
		return "OPENAI_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return strings.ToUpper(providerName) + "_API_KEY"
	}
}

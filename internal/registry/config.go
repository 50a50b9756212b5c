// Package registry provides a configuration-driven registry
// for LLM providers and models, allowing for flexible configuration
// and easier addition of new models and providers.
package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/codecrucible/codecrucible/internal/logutil"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDirName is the name of the configuration directory
	ConfigDirName = ".config/codecrucible"
	// ModelsConfigFileName is the name of the models configuration file
	ModelsConfigFileName = "models.yaml"

	// Environment variable configuration
	// These environment variables can be used to override or supplement configuration
	// when models.yaml is missing or incomplete
	EnvConfigProvider      = "CODECRUCIBLE_CONFIG_PROVIDER"       // Default provider (e.g., "gemini", "openai")
	EnvConfigModel         = "CODECRUCIBLE_CONFIG_MODEL"          // Default model name
	EnvConfigAPIModelID    = "CODECRUCIBLE_CONFIG_API_MODEL_ID"   // API model ID for default model
	EnvConfigContextWindow = "CODECRUCIBLE_CONFIG_CONTEXT_WINDOW" // Context window for default model
	EnvConfigMaxOutput     = "CODECRUCIBLE_CONFIG_MAX_OUTPUT"     // Max output tokens for default model
	EnvConfigBaseURL       = "CODECRUCIBLE_CONFIG_BASE_URL"       // Custom base URL for provider
)

// getDefaultConfiguration returns a minimal default configuration
// that can be used when no configuration file is available and no environment variables are set.
// This ensures the application can run in containerized environments without external dependencies.
func getDefaultConfiguration() *ModelsConfig {
	return &ModelsConfig{
		APIKeySources: map[string]string{
			"openai":     "OPENAI_API_KEY",
			"gemini":     "GEMINI_API_KEY",
			"openrouter": "OPENROUTER_API_KEY",
		},
		Providers: []ProviderDefinition{
			{Name: "openai"},
			{Name: "gemini"},
			{Name: "openrouter"},
		},
		Models: []ModelDefinition{
			{
				Name:            "gemini-2.5-pro-preview-03-25",
				Provider:        "gemini",
				APIModelID:      "gemini-2.5-pro-preview-03-25",
				ContextWindow:   1000000,
				MaxOutputTokens: 65000,
				CostPer1kInput:  0.00125,
				CostPer1kOutput: 0.005,
			},
			{
				Name:            "gpt-4",
				Provider:        "openai",
				APIModelID:      "gpt-4",
				ContextWindow:   128000,
				MaxOutputTokens: 4096,
				CostPer1kInput:  0.03,
				CostPer1kOutput: 0.06,
			},
			{
				Name:            "gpt-4.1",
				Provider:        "openai",
				APIModelID:      "gpt-4.1",
				ContextWindow:   1000000,
				MaxOutputTokens: 200000,
				CostPer1kInput:  0.002,
				CostPer1kOutput: 0.008,
			},
		},
	}
}

// loadConfigurationFromEnvironment creates a configuration based on environment variables.
// This is used as a fallback when no configuration file is available.
func loadConfigurationFromEnvironment() (*ModelsConfig, bool) {
	provider := os.Getenv(EnvConfigProvider)
	model := os.Getenv(EnvConfigModel)
	apiModelID := os.Getenv(EnvConfigAPIModelID)

	// If key environment variables are not set, return false
	if provider == "" || model == "" || apiModelID == "" {
		return nil, false
	}

	// Parse numeric values with defaults
	contextWindow := int32(1000000) // Default 1M tokens
	if envContext := os.Getenv(EnvConfigContextWindow); envContext != "" {
		if parsed, err := strconv.ParseInt(envContext, 10, 32); err == nil {
			contextWindow = int32(parsed)
		}
	}

	maxOutput := int32(65000) // Default 65k tokens
	if envOutput := os.Getenv(EnvConfigMaxOutput); envOutput != "" {
		if parsed, err := strconv.ParseInt(envOutput, 10, 32); err == nil {
			maxOutput = int32(parsed)
		}
	}

	// Determine API key environment variable based on provider
	var apiKeyEnvVar string
	switch strings.ToLower(provider) {
	case "openai":
		apiKeyEnvVar = "OPENAI_API_KEY"
	case "gemini":
		apiKeyEnvVar = "GEMINI_API_KEY"
	case "openrouter":
		apiKeyEnvVar = "OPENROUTER_API_KEY"
	default:
		apiKeyEnvVar = "GEMINI_API_KEY" // Default fallback
	}

	// Create provider definition
	providerDef := ProviderDefinition{Name: provider}
	if baseURL := os.Getenv(EnvConfigBaseURL); baseURL != "" {
		providerDef.BaseURL = baseURL
	}

	return &ModelsConfig{
		APIKeySources: map[string]string{
			provider: apiKeyEnvVar,
		},
		Providers: []ProviderDefinition{providerDef},
		Models: []ModelDefinition{
			{
				Name:            model,
				Provider:        provider,
				APIModelID:      apiModelID,
				ContextWindow:   contextWindow,
				MaxOutputTokens: maxOutput,
			},
		},
	}, true
}

// ConfigLoader is responsible for loading the models configuration
type ConfigLoader struct {
	// GetConfigPath is a function that returns the path to the models.yaml configuration file
	// It can be replaced in tests to return a test file path
	GetConfigPath func() (string, error)
	// Logger is used for logging
	Logger logutil.LoggerInterface
}

// Compile-time check to ensure ConfigLoader implements ConfigLoaderInterface
var _ ConfigLoaderInterface = (*ConfigLoader)(nil)

// NewConfigLoader creates a new ConfigLoader
func NewConfigLoader(logger logutil.LoggerInterface) *ConfigLoader {
	// If no logger is provided, create a default one
	if logger == nil {
		logger = logutil.NewSlogLoggerFromLogLevel(os.Stderr, logutil.InfoLevel)
	}

	loader := &ConfigLoader{
		Logger: logger,
	}

	// Set the default implementation of GetConfigPath
	loader.GetConfigPath = func() (string, error) {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(homeDir, ConfigDirName)
		configPath := filepath.Join(configDir, ModelsConfigFileName)

		return configPath, nil
	}

	return loader
}

// Load reads and parses the models.yaml configuration file with fallback
// mechanisms: configuration file, then environment variables, then an
// embedded default, so a containerized run without a mounted config still
// has a usable catalogue.
func (c *ConfigLoader) Load() (*ModelsConfig, error) {
	ctx := context.Background()

	config, err := c.loadFromFile(ctx)
	if err == nil {
		c.Logger.InfoContext(ctx, "configuration loaded from file")
		return config, nil
	}
	c.Logger.WarnContext(ctx, "failed to load configuration from file: %v", err)

	config, loaded := loadConfigurationFromEnvironment()
	if loaded {
		if err := c.validate(config); err != nil {
			c.Logger.WarnContext(ctx, "environment-based configuration validation failed: %v", err)
		} else {
			c.Logger.InfoContext(ctx, "configuration loaded from environment variables: provider=%s, model=%s",
				config.Models[0].Provider, config.Models[0].Name)
			return config, nil
		}
	}

	c.Logger.InfoContext(ctx, "using embedded default configuration")
	config = getDefaultConfiguration()
	if err := c.validate(config); err != nil {
		return nil, fmt.Errorf("default configuration validation failed: %w", err)
	}
	return config, nil
}

// loadFromFile attempts to load configuration from the models.yaml file
func (c *ConfigLoader) loadFromFile(ctx context.Context) (*ModelsConfig, error) {
	configPath, err := c.GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to determine configuration path: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found at %s", configPath)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied reading configuration file at %s", configPath)
		}
		return nil, fmt.Errorf("error reading configuration file at %s: %w", configPath, err)
	}

	var config ModelsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid YAML in configuration file at %s: %w", configPath, err)
	}

	if err := c.validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	c.Logger.InfoContext(ctx, "configuration validated: %d providers, %d models", len(config.Providers), len(config.Models))
	return &config, nil
}

// validate checks structural integrity of the catalogue: unique provider and
// model names, and that every model references a defined provider.
func (c *ConfigLoader) validate(config *ModelsConfig) error {
	ctx := context.Background()

	if config == nil {
		return fmt.Errorf("configuration is nil")
	}

	var validationErrors []string

	if len(config.APIKeySources) == 0 {
		validationErrors = append(validationErrors, "configuration must include api_key_sources")
	}

	if len(config.Providers) == 0 {
		validationErrors = append(validationErrors, "configuration must include at least one provider")
	}

	providerNames := make(map[string]bool)
	for i, provider := range config.Providers {
		if provider.Name == "" {
			validationErrors = append(validationErrors, fmt.Sprintf("provider at index %d is missing name", i))
			continue
		}
		if providerNames[provider.Name] {
			validationErrors = append(validationErrors, fmt.Sprintf("duplicate provider name '%s' detected", provider.Name))
			continue
		}
		providerNames[provider.Name] = true
	}

	if len(config.Models) == 0 {
		validationErrors = append(validationErrors, "configuration must include at least one model")
	}

	modelNames := make(map[string]bool)
	for i, model := range config.Models {
		if model.Name == "" {
			validationErrors = append(validationErrors, fmt.Sprintf("model at index %d is missing name", i))
			continue
		}
		if modelNames[model.Name] {
			validationErrors = append(validationErrors, fmt.Sprintf("duplicate model name '%s' detected", model.Name))
			continue
		}
		modelNames[model.Name] = true

		if model.Provider == "" {
			validationErrors = append(validationErrors, fmt.Sprintf("model '%s' is missing provider", model.Name))
			continue
		}
		if !providerNames[model.Provider] {
			validationErrors = append(validationErrors, fmt.Sprintf("model '%s' references unknown provider '%s'", model.Name, model.Provider))
			continue
		}
		if model.APIModelID == "" {
			validationErrors = append(validationErrors, fmt.Sprintf("model '%s' is missing api_model_id", model.Name))
		}
	}

	if len(validationErrors) > 0 {
		c.Logger.WarnContext(ctx, "configuration validation failed with %d errors: %s",
			len(validationErrors), strings.Join(validationErrors, "; "))
		return fmt.Errorf("configuration validation failed with %d errors: %s",
			len(validationErrors), strings.Join(validationErrors, "; "))
	}

	return nil
}

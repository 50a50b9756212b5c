// Package registry provides a configuration-driven registry for providers
// and models, keyed by the same model names a case set's ModelSpec
// references, so a run can resolve cost, context-window, and output-limit
// metadata without hard-coding it alongside the provider clients.
package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/codecrucible/codecrucible/internal/logutil"
	"github.com/codecrucible/codecrucible/internal/provider"
)

// Registry holds loaded provider and model definitions and the provider
// implementations registered against them. Safe for concurrent use.
type Registry struct {
	models          map[string]ModelDefinition
	providers       map[string]ProviderDefinition
	implementations map[string]provider.Provider
	mu              sync.RWMutex
	logger          logutil.LoggerInterface
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger logutil.LoggerInterface) *Registry {
	if logger == nil {
		logger = logutil.NewLogger(logutil.InfoLevel, nil, "[registry] ")
	}
	return &Registry{
		models:          make(map[string]ModelDefinition),
		providers:       make(map[string]ProviderDefinition),
		implementations: make(map[string]provider.Provider),
		logger:          logger,
	}
}

// ConfigLoaderInterface is implemented by anything that can produce a
// ModelsConfig, so tests can substitute a fixture loader for ConfigLoader.
type ConfigLoaderInterface interface {
	Load() (*ModelsConfig, error)
}

// LoadConfig replaces the registry's provider and model definitions with
// whatever loader.Load() returns.
func (r *Registry) LoadConfig(ctx context.Context, loader ConfigLoaderInterface) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, err := loader.Load()
	if err != nil {
		r.logger.ErrorContext(ctx, "registry: failed to load configuration: %v", err)
		return fmt.Errorf("registry: load configuration: %w", err)
	}

	r.providers = make(map[string]ProviderDefinition, len(cfg.Providers))
	for _, p := range cfg.Providers {
		r.providers[p.Name] = p
	}

	r.models = make(map[string]ModelDefinition, len(cfg.Models))
	for _, m := range cfg.Models {
		r.models[m.Name] = m
	}

	r.logger.InfoContext(ctx, "registry: loaded %d providers, %d models", len(r.providers), len(r.models))
	return nil
}

// GetModel looks up a model definition by name.
func (r *Registry) GetModel(ctx context.Context, name string) (*ModelDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[name]
	if !ok {
		r.logger.WarnContext(ctx, "registry: model %q not found (available: %s)", name, r.availableModelsLocked())
		return nil, fmt.Errorf("registry: model %q not found", name)
	}
	return &m, nil
}

// GetAvailableModels returns every registered model name.
func (r *Registry) GetAvailableModels(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	return names, nil
}

func (r *Registry) availableModelsLocked() string {
	if len(r.models) == 0 {
		return "none"
	}
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	if len(names) > 5 {
		return fmt.Sprintf("%s and %d others", strings.Join(names[:5], ", "), len(names)-5)
	}
	return strings.Join(names, ", ")
}

// GetProvider looks up a provider definition by name.
func (r *Registry) GetProvider(ctx context.Context, name string) (*ProviderDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		r.logger.WarnContext(ctx, "registry: provider %q not found", name)
		return nil, fmt.Errorf("registry: provider %q not found", name)
	}
	return &p, nil
}

// RegisterProviderImplementation associates a live provider.Provider with a
// provider name already present in the loaded configuration.
func (r *Registry) RegisterProviderImplementation(ctx context.Context, name string, impl provider.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("registry: provider %q not defined in configuration", name)
	}
	r.implementations[name] = impl
	r.logger.DebugContext(ctx, "registry: registered implementation for provider %q", name)
	return nil
}

// GetProviderImplementation returns the provider.Provider registered for name.
func (r *Registry) GetProviderImplementation(ctx context.Context, name string) (provider.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	impl, ok := r.implementations[name]
	if !ok {
		return nil, fmt.Errorf("registry: no implementation registered for provider %q", name)
	}
	return impl, nil
}

// ResolveModel returns the live provider.Provider and the model's API
// identifier for a registered model name, bridging the static catalogue
// to the running set of provider clients an engine was built with.
func (r *Registry) ResolveModel(ctx context.Context, modelName string) (provider.Provider, string, error) {
	model, err := r.GetModel(ctx, modelName)
	if err != nil {
		return nil, "", err
	}
	impl, err := r.GetProviderImplementation(ctx, model.Provider)
	if err != nil {
		return nil, "", fmt.Errorf("registry: model %q: %w", modelName, err)
	}
	return impl, model.APIModelID, nil
}

// GetAllModelNames returns every registered model name.
func (r *Registry) GetAllModelNames(ctx context.Context) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	return names
}

// GetModelNamesByProvider returns model names registered under providerName.
func (r *Registry) GetModelNamesByProvider(ctx context.Context, providerName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, m := range r.models {
		if m.Provider == providerName {
			names = append(names, name)
		}
	}
	return names
}

package registry

import "github.com/codecrucible/codecrucible/internal/provider"

// ModelInfos converts every loaded ModelDefinition into the provider
// package's ModelInfo shape, for backends whose AvailableModels() should
// reflect the operator's configured catalogue rather than a hardcoded list.
func (r *Registry) ModelInfos() []provider.ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]provider.ModelInfo, 0, len(r.models))
	for _, m := range r.models {
		infos = append(infos, provider.ModelInfo{
			ID:              m.APIModelID,
			Name:            m.Name,
			Provider:        m.Provider,
			MaxContext:      int(m.ContextWindow),
			CostPer1kInput:  m.CostPer1kInput,
			CostPer1kOutput: m.CostPer1kOutput,
		})
	}
	return infos
}

// Package mock provides an in-memory Provider test double: it records the
// last request it received and returns a configured response, without
// making any network call.
package mock

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/codecrucible/codecrucible/internal/extractor"
	"github.com/codecrucible/codecrucible/internal/provider"
)

const defaultResponse = "fn placeholder() {}"

// Provider is a configurable, concurrency-safe Provider double.
type Provider struct {
	name      string
	responses map[string]string // substring of the prompt -> fixed response
	fixed     string            // if set, always returned regardless of prompt
	models    []provider.ModelInfo

	callCount   atomic.Int32
	mu          sync.Mutex
	lastRequest *provider.GenerateRequest
}

// New creates a Provider double that returns defaultResponse unless a
// substring match or fixed response is configured.
func New(name string) *Provider {
	return &Provider{name: name, responses: make(map[string]string)}
}

// WithFixedResponse makes every call return the same content.
func (p *Provider) WithFixedResponse(content string) *Provider {
	p.fixed = content
	return p
}

// WithResponse configures a response returned when promptSubstring appears
// in the request's prompt.
func (p *Provider) WithResponse(promptSubstring, content string) *Provider {
	p.responses[promptSubstring] = content
	return p
}

// WithModels sets the catalogue returned by AvailableModels.
func (p *Provider) WithModels(models ...provider.ModelInfo) *Provider {
	p.models = models
	return p
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) CallCount() int32 { return p.callCount.Load() }

// LastRequest returns the most recent request this provider received, or
// nil if Generate has not yet been called.
func (p *Provider) LastRequest() *provider.GenerateRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRequest
}

func (p *Provider) Generate(ctx context.Context, req provider.GenerateRequest) (provider.GenerateResponse, error) {
	p.callCount.Add(1)

	p.mu.Lock()
	reqCopy := req
	p.lastRequest = &reqCopy
	p.mu.Unlock()

	content := p.fixed
	if content == "" {
		content = defaultResponse
		for substr, resp := range p.responses {
			if strings.Contains(req.Prompt, substr) {
				content = resp
				break
			}
		}
	}

	estimatedTokens := len(content) / 4

	return provider.GenerateResponse{
		Content:       content,
		ExtractedCode: extractor.Extract(content, "", ""),
		Model:         req.Model,
		TokenUsage: provider.TokenUsage{
			PromptTokens:     len(req.Prompt) / 4,
			CompletionTokens: estimatedTokens,
			TotalTokens:      len(req.Prompt)/4 + estimatedTokens,
		},
	}, nil
}

func (p *Provider) AvailableModels() []provider.ModelInfo {
	return p.models
}

var _ provider.Provider = (*Provider)(nil)

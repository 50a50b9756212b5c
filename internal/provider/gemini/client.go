// Package gemini implements the provider.Provider capability interface
// against Google's Generative Language API.
package gemini

import (
	"context"
	"strings"
	"time"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/codecrucible/codecrucible/internal/extractor"
	"github.com/codecrucible/codecrucible/internal/provider"
)

var catalogue = []provider.ModelInfo{
	{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", Provider: "gemini", MaxContext: 1_000_000, CostPer1kInput: 0.00125, CostPer1kOutput: 0.005},
	{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Provider: "gemini", MaxContext: 1_000_000, CostPer1kInput: 0.00015, CostPer1kOutput: 0.0006},
}

// Client adapts the google/generative-ai-go SDK to provider.Provider. Each
// Generate call builds a fresh GenerativeModel for the requested model id
// since the SDK binds a model name at model-handle construction time.
type Client struct {
	client *genai.Client
	apiKey string
}

// New builds a Client bound to a single genai.Client for the process
// lifetime; callers should call Close when the provider is no longer needed.
func New(ctx context.Context, apiKey string) (*Client, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, provider.Wrap("gemini", provider.CategoryAuth, "failed to create Gemini client", err)
	}
	return &Client{client: c, apiKey: apiKey}, nil
}

func (c *Client) Close() error { return c.client.Close() }

func (c *Client) Name() string { return "gemini" }

func (c *Client) Generate(ctx context.Context, req provider.GenerateRequest) (provider.GenerateResponse, error) {
	start := time.Now()

	model := c.client.GenerativeModel(req.Model)
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	model.SystemInstruction = genai.NewUserContent(genai.Text(provider.ResolvedSystemPrompt(req)))

	prompt := provider.AssemblePrompt(req)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return provider.GenerateResponse{}, classifyError(err)
	}

	if len(resp.Candidates) == 0 {
		return provider.GenerateResponse{}, provider.Wrap("gemini", provider.CategoryAPIError, "no generation candidates returned", nil)
	}

	var content strings.Builder
	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content.WriteString(string(text))
			}
		}
	}

	var totalTokens int
	if resp.UsageMetadata != nil {
		totalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	usage := provider.TokenUsage{TotalTokens: totalTokens}
	usage.EstimatedCostUSD = estimateCost(req.Model, usage)

	return provider.GenerateResponse{
		Content:       content.String(),
		ExtractedCode: extractor.Extract(content.String(), "", ""),
		Model:         req.Model,
		TokenUsage:    usage,
		LatencyMS:     time.Since(start).Milliseconds(),
	}, nil
}

func (c *Client) AvailableModels() []provider.ModelInfo {
	return catalogue
}

func estimateCost(model string, usage provider.TokenUsage) float64 {
	for _, m := range catalogue {
		if m.ID == model {
			return float64(usage.TotalTokens) / 1000 * m.CostPer1kOutput
		}
	}
	return float64(usage.TotalTokens) / 1000 * catalogue[0].CostPer1kOutput
}

// classifyError maps a genai SDK error onto the shared provider error
// taxonomy using the same textual heuristics the teacher's FormatAPIError
// applied to gRPC status strings, since the SDK does not expose a typed
// status here.
func classifyError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unauthenticated") || strings.Contains(msg, "api key not valid") || strings.Contains(msg, "permission"):
		return provider.Wrap("gemini", provider.CategoryAuth, "authentication failed", err)
	case strings.Contains(msg, "not found"):
		return provider.Wrap("gemini", provider.CategoryModelNotFound, "model not found", err)
	case strings.Contains(msg, "resource exhausted") || strings.Contains(msg, "quota") || strings.Contains(msg, "rate"):
		return provider.WrapRateLimited("gemini", 5000)
	case strings.Contains(msg, "deadline exceeded") || strings.Contains(msg, "context deadline"):
		return provider.Wrap("gemini", provider.CategoryTimeout, "request timed out", err)
	case strings.Contains(msg, "unavailable") || strings.Contains(msg, "connection"):
		return provider.Wrap("gemini", provider.CategoryNetwork, "network error", err)
	default:
		return provider.Wrap("gemini", provider.CategoryAPIError, "API error", err)
	}
}

var _ provider.Provider = (*Client)(nil)

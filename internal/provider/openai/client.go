// Package openai implements the provider.Provider capability interface
// against OpenAI's chat-completions API.
package openai

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/codecrucible/codecrucible/internal/extractor"
	"github.com/codecrucible/codecrucible/internal/provider"
)

const defaultBaseURL = "https://api.openai.com/v1"

// catalogue is the static model list this backend advertises, including
// the per-1K token pricing estimateCost uses for each response's
// EstimatedCostUSD.
var catalogue = []provider.ModelInfo{
	{ID: "gpt-4.1", Name: "GPT-4.1", Provider: "openai", MaxContext: 1_000_000, CostPer1kInput: 0.002, CostPer1kOutput: 0.008},
	{ID: "gpt-4.1-mini", Name: "GPT-4.1 Mini", Provider: "openai", MaxContext: 1_000_000, CostPer1kInput: 0.0004, CostPer1kOutput: 0.0016},
	{ID: "gpt-4.1-nano", Name: "GPT-4.1 Nano", Provider: "openai", MaxContext: 1_000_000, CostPer1kInput: 0.0001, CostPer1kOutput: 0.0004},
}

// Client adapts the OpenAI Go SDK to provider.Provider.
type Client struct {
	client openai.Client
}

// New builds a Client. baseURL may be empty to use the public API.
func New(apiKey, baseURL, orgID string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if orgID != "" {
		opts = append(opts, option.WithOrganization(orgID))
	}
	return &Client{client: openai.NewClient(opts...)}
}

func (c *Client) Name() string { return "openai" }

func (c *Client) Generate(ctx context.Context, req provider.GenerateRequest) (provider.GenerateResponse, error) {
	start := time.Now()

	userMessage := provider.AssemblePrompt(req)

	params := openai.ChatCompletionNewParams{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(provider.ResolvedSystemPrompt(req)),
			openai.UserMessage(userMessage),
		},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if len(req.StopSequences) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: req.StopSequences}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return provider.GenerateResponse{}, classifyError(err)
	}

	var content string
	if len(completion.Choices) > 0 {
		content = completion.Choices[0].Message.Content
	}

	usage := provider.TokenUsage{
		PromptTokens:     int(completion.Usage.PromptTokens),
		CompletionTokens: int(completion.Usage.CompletionTokens),
		TotalTokens:      int(completion.Usage.TotalTokens),
	}
	usage.EstimatedCostUSD = estimateCost(completion.Model, usage)

	return provider.GenerateResponse{
		Content:       content,
		ExtractedCode: extractor.Extract(content, "", ""),
		Model:         completion.Model,
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
			return float64(usage.PromptTokens)/1000*m.CostPer1kInput + float64(usage.CompletionTokens)/1000*m.CostPer1kOutput
		}
	}
	// Unknown/custom model: fall back to the gpt-4.1 rate card rather than
	// reporting zero cost.
	return float64(usage.PromptTokens)/1000*catalogue[0].CostPer1kInput + float64(usage.CompletionTokens)/1000*catalogue[0].CostPer1kOutput
}

// classifyError maps an OpenAI SDK error onto the shared provider error
// taxonomy: 401 is permanent auth, 404 is permanent model-not-found, 429 is
// transient rate-limited carrying the Retry-After header's delay (5s when the
// header is absent or not a number of seconds), and any other >=400
// or a connect/timeout failure is transient.
func classifyError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401:
			return provider.Wrap("openai", provider.CategoryAuth, apiErr.Message, err)
		case 404:
			return provider.Wrap("openai", provider.CategoryModelNotFound, apiErr.Message, err)
		case 429:
			retryAfterMS := int64(5000)
			if apiErr.Response != nil {
				if secs, convErr := strconv.Atoi(apiErr.Response.Header.Get("Retry-After")); convErr == nil && secs >= 0 {
					retryAfterMS = int64(secs) * 1000
				}
			}
			return provider.WrapRateLimited("openai", retryAfterMS)
		default:
			return provider.Wrap("openai", provider.CategoryAPIError, apiErr.Message, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return provider.Wrap("openai", provider.CategoryTimeout, "request timed out", err)
	}
	return provider.Wrap("openai", provider.CategoryNetwork, "network error", err)
}

var _ provider.Provider = (*Client)(nil)

// Package provider defines the capability abstraction the engine schedules
// work against: a Provider turns a GenerateRequest into a GenerateResponse
// and enumerates the models it knows about. Concrete backends (OpenAI,
// Gemini, and an in-memory test double) live in subpackages.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/codecrucible/codecrucible/internal/eval"
)

// DefaultSystemPrompt instructs the model to emit only compilable code,
// used whenever a GenerateRequest doesn't override it.
const DefaultSystemPrompt = "You are a code generation assistant. Respond ONLY with code. Do not include explanations, comments about the code, or markdown formatting unless the code itself requires comments. Output valid, compilable code."

// GenerateRequest is one generation call: a model id, the main prompt, an
// optional system-prompt override, supporting context files, and sampling
// parameters.
type GenerateRequest struct {
	Model         string
	Prompt        string
	SystemPrompt  string // empty means use DefaultSystemPrompt
	ContextFiles  []eval.ContextFile
	MaxTokens     int
	Temperature   float64
	StopSequences []string
}

// TokenUsage reports token consumption and its estimated cost.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD float64
}

// GenerateResponse is the result of one generation call.
type GenerateResponse struct {
	Content       string
	ExtractedCode string
	Model         string
	TokenUsage    TokenUsage
	LatencyMS     int64
}

// ModelInfo describes one model a Provider knows about, including the
// cost/context metadata its backend's per-response cost estimate reads.
type ModelInfo struct {
	ID               string
	Name             string
	Provider         string
	MaxContext       int
	CostPer1kInput   float64
	CostPer1kOutput  float64
}

// Provider is the capability set the engine schedules work against. Every
// backend (OpenAI, Gemini, the in-memory test double) implements it
// identically so the engine never branches on provider identity.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	AvailableModels() []ModelInfo
}

// AssemblePrompt builds the full user message for a request: each context
// file is prepended in "File `<path>`:\n```\n<content>\n```\n\n" form,
// followed by the prompt itself. This contract is shared by every backend
// so that swapping providers never changes what the model actually sees.
func AssemblePrompt(req GenerateRequest) string {
	var b strings.Builder
	for _, f := range req.ContextFiles {
		fmt.Fprintf(&b, "File `%s`:\n```\n%s\n```\n\n", f.Path, f.Content)
	}
	b.WriteString(req.Prompt)
	return b.String()
}

// ResolvedSystemPrompt returns the request's system-prompt override if set,
// else DefaultSystemPrompt.
func ResolvedSystemPrompt(req GenerateRequest) string {
	if req.SystemPrompt != "" {
		return req.SystemPrompt
	}
	return DefaultSystemPrompt
}

// Package report defines the run-level data model — EvalResult, Report,
// and AggregateStats — and persists/compares reports across runs.
package report

import (
	"time"

	"github.com/codecrucible/codecrucible/internal/provider"
	"github.com/codecrucible/codecrucible/internal/scorer"
	"github.com/codecrucible/codecrucible/internal/stage"
)

// Timing breaks a single attempt's wall time down by stage.
type Timing struct {
	LLMMs     int64
	CompileMs int64
	TestMs    int64
	TotalMs   int64
}

// EvalResult is the outcome of one (case, model, attempt) task. Test and
// Lint are nil when that stage did not run for this attempt, per the
// engine's per-task state machine.
type EvalResult struct {
	CaseID   string
	Model    string
	Provider string
	Attempt  int
	RunID    string

	Source string

	Compilation stage.CompilationResult
	Test        *stage.TestResult
	Lint        *stage.LintResult

	Timing Timing
	Usage  provider.TokenUsage

	Components scorer.Components
	Score      float64
	Error      string // non-empty when the task ended FAILED rather than DONE
	Skipped    bool   // true when the model was requested but not registered
}

// ModelSummary names one model evaluated in a run, for the Report header.
type ModelSummary struct {
	Provider string
	Model    string
}

// SetSummary is the header recorded against the Set a Report was generated
// from.
type SetSummary struct {
	ID        string
	Name      string
	CaseCount int
}

// Report is the full persisted output of one run.
type Report struct {
	ID        string
	Name      string // human-readable adjective-noun alias for ID, e.g. "crimson-falcon"
	CreatedAt time.Time
	Set       SetSummary
	Models    []ModelSummary
	Results   []EvalResult
	Stats     AggregateStats
	TotalMs   int64
}

// ModelStats rolls up a single model's performance across every case it was
// evaluated against.
type ModelStats struct {
	PassAtK         map[int]float64
	AvgCompileRate  float64
	AvgTestPassRate float64
	AvgLintScore    float64
	TotalTokens     int
	TotalCostUSD    float64
	AvgLatencyMs    float64
}

// CaseStats rolls up a single case's pass rate across every model it was
// evaluated against.
type CaseStats struct {
	PerModelPassRate map[string]float64
}

// AggregateStats is the statistics layer's output, keyed by model identity
// string ("provider/model") and case id respectively.
type AggregateStats struct {
	PerModel map[string]ModelStats
	PerCase  map[string]CaseStats
}

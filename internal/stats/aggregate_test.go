package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecrucible/codecrucible/internal/report"
	"github.com/codecrucible/codecrucible/internal/scorer"
	"github.com/codecrucible/codecrucible/internal/stage"
)

func successResult(caseID, model string) report.EvalResult {
	return report.EvalResult{
		CaseID:      caseID,
		Model:       model,
		Compilation: stage.CompilationResult{Success: true},
		Components:  scorer.Components{Compilation: 1, Tests: 1, Lint: 1},
		Score:       1,
	}
}

func failureResult(caseID, model string) report.EvalResult {
	return report.EvalResult{
		CaseID:      caseID,
		Model:       model,
		Compilation: stage.CompilationResult{Success: false},
		Components:  scorer.Components{},
		Score:       0,
	}
}

func TestAggregatePassAtK(t *testing.T) {
	results := []report.EvalResult{
		successResult("fib", "openai/gpt-4.1"),
		successResult("fib", "openai/gpt-4.1"),
		failureResult("fib", "openai/gpt-4.1"),
	}

	agg := Aggregate(results, []int{1})
	ms, ok := agg.PerModel["openai/gpt-4.1"]
	require.True(t, ok)
	assert.InDelta(t, 2.0/3.0, ms.PassAtK[1], 1e-9)
	assert.InDelta(t, 2.0/3.0, ms.AvgCompileRate, 1e-9)
}

func TestAggregateSkipsSkippedResults(t *testing.T) {
	results := []report.EvalResult{
		{CaseID: "fib", Model: "openai/gpt-4.1", Skipped: true},
	}
	agg := Aggregate(results, []int{1})
	assert.Empty(t, agg.PerModel)
}

func TestAggregatePerCasePassRate(t *testing.T) {
	results := []report.EvalResult{
		successResult("fib", "openai/gpt-4.1"),
		failureResult("fib", "openai/gpt-4.1"),
	}
	agg := Aggregate(results, []int{1})
	cs, ok := agg.PerCase["fib"]
	require.True(t, ok)
	assert.InDelta(t, 0.5, cs.PerModelPassRate["openai/gpt-4.1"], 1e-9)
}

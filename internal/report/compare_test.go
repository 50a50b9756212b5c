package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func resultWithScore(caseID, model string, score float64) EvalResult {
	return EvalResult{CaseID: caseID, Model: model, Score: score}
}

func TestCompareRegression(t *testing.T) {
	baseline := Report{Results: []EvalResult{resultWithScore("fib", "model-a", 0.9)}}
	current := Report{Results: []EvalResult{resultWithScore("fib", "model-a", 0.0)}}

	rr := Compare(baseline, current, 0.05)
	assert.True(t, rr.HasRegressions())
	assert.Len(t, rr.Regressions, 1)
	assert.Equal(t, "fib", rr.Regressions[0].CaseID)
	assert.InDelta(t, -0.9, rr.Regressions[0].Delta, 1e-9)
}

func TestCompareImprovement(t *testing.T) {
	baseline := Report{Results: []EvalResult{resultWithScore("fib", "model-a", 0.4)}}
	current := Report{Results: []EvalResult{resultWithScore("fib", "model-a", 0.9)}}

	rr := Compare(baseline, current, 0.05)
	assert.False(t, rr.HasRegressions())
	assert.Len(t, rr.Improvements, 1)
}

func TestCompareUnchangedWithinThreshold(t *testing.T) {
	baseline := Report{Results: []EvalResult{resultWithScore("fib", "model-a", 0.80)}}
	current := Report{Results: []EvalResult{resultWithScore("fib", "model-a", 0.82)}}

	rr := Compare(baseline, current, 0.05)
	assert.Equal(t, 1, rr.Unchanged)
	assert.Empty(t, rr.Regressions)
	assert.Empty(t, rr.Improvements)
}

func TestCompareNewAndRemovedCases(t *testing.T) {
	baseline := Report{Results: []EvalResult{resultWithScore("old-case", "model-a", 0.5)}}
	current := Report{Results: []EvalResult{resultWithScore("new-case", "model-a", 0.5)}}

	rr := Compare(baseline, current, 0.05)
	assert.Equal(t, 1, rr.NewCases)
	assert.Equal(t, 1, rr.RemovedCases)
}

func TestCompareUsesBestScorePerAttempt(t *testing.T) {
	baseline := Report{Results: []EvalResult{resultWithScore("fib", "model-a", 0.5)}}
	current := Report{Results: []EvalResult{
		resultWithScore("fib", "model-a", 0.2),
		resultWithScore("fib", "model-a", 0.9),
	}}

	rr := Compare(baseline, current, 0.05)
	assert.Len(t, rr.Improvements, 1)
	assert.InDelta(t, 0.9, rr.Improvements[0].CurrentScore, 1e-9)
}

func TestMarkdownContainsRegressionSection(t *testing.T) {
	baseline := Report{Results: []EvalResult{resultWithScore("fib", "model-a", 0.9)}}
	current := Report{Results: []EvalResult{resultWithScore("fib", "model-a", 0.0)}}

	rr := Compare(baseline, current, 0.05)
	md := rr.Markdown()
	assert.Contains(t, md, "Regressions")
	assert.Contains(t, md, "fib")
}

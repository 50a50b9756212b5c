package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codecrucible/codecrucible/internal/stage"
)

func TestScoreCompileFailureIsAlwaysZero(t *testing.T) {
	compilation := stage.CompilationResult{Success: false}
	_, overall := Score(compilation, nil, nil, true)
	assert.Equal(t, 0.0, overall)
}

func TestScoreFullPass(t *testing.T) {
	compilation := stage.CompilationResult{Success: true}
	test := &stage.TestResult{Passed: 10, Failed: 0}
	lint := &stage.LintResult{WarningCount: 0}
	components, overall := Score(compilation, test, lint, true)
	assert.Equal(t, 1.0, components.Compilation)
	assert.Equal(t, 1.0, components.Tests)
	assert.Equal(t, 1.0, components.Lint)
	assert.InDelta(t, 1.0, overall, 1e-9)
}

func TestScoreEmptyTestRunContributesZero(t *testing.T) {
	compilation := stage.CompilationResult{Success: true}
	test := &stage.TestResult{Passed: 0, Failed: 0}
	_, overall := Score(compilation, test, nil, true)
	// 0.4*1 + 0.5*0 + 0.1*1 (no lint stage) = 0.5
	assert.InDelta(t, 0.5, overall, 1e-9)
}

func TestScoreCompileSucceedsNoTestBinaryScoresAtMostHalf(t *testing.T) {
	compilation := stage.CompilationResult{Success: true}
	test := &stage.TestResult{Passed: 0, Failed: 0}
	lint := &stage.LintResult{WarningCount: 2}
	_, overall := Score(compilation, test, lint, true)
	assert.LessOrEqual(t, overall, 0.5)
}

func TestScoreLintPenalty(t *testing.T) {
	compilation := stage.CompilationResult{Success: true}
	lint := &stage.LintResult{WarningCount: 3}
	components, _ := Score(compilation, nil, lint, true)
	assert.InDelta(t, 0.7, components.Lint, 1e-9)
}

func TestScoreLintPenaltyFloorsAtZero(t *testing.T) {
	compilation := stage.CompilationResult{Success: true}
	lint := &stage.LintResult{WarningCount: 50}
	components, _ := Score(compilation, nil, lint, true)
	assert.Equal(t, 0.0, components.Lint)
}

func TestScoreNoTestsExpectedRenormalizes(t *testing.T) {
	compilation := stage.CompilationResult{Success: true}
	lint := &stage.LintResult{WarningCount: 0}
	_, overall := Score(compilation, nil, lint, false)
	assert.InDelta(t, 1.0, overall, 1e-9)
}

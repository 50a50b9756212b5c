// Package scorer computes the per-task weighted overall score from stage
// outcomes.
package scorer

import "github.com/codecrucible/codecrucible/internal/stage"

// Weights for the canonical case (tests expected); the three sum to 1.0.
// Compilation failure always drives overall to zero because Score returns
// 0 outright in that case, before any weight is applied.
const (
	weightCompilation = 0.4
	weightTests       = 0.5
	weightLint        = 0.1
)

// lintPenaltyPerWarning matches spec §4.6: lint = max(0, 1 - 0.1*warnings).
const lintPenaltyPerWarning = 0.1

// Components is the three per-stage scores the overall weighted sum is
// built from, each already normalized to [0,1].
type Components struct {
	Compilation float64
	Tests       float64
	Lint        float64
}

// Score computes a task's components and overall score from its stage
// results. test and lint are nil when that stage did not run, matching the
// engine's per-task state machine. expectsTests reflects the case's
// Expectations.ShouldPassTests.
func Score(compilation stage.CompilationResult, test *stage.TestResult, lint *stage.LintResult, expectsTests bool) (Components, float64) {
	c := Components{}

	if compilation.Success {
		c.Compilation = 1.0
	}

	if test != nil {
		total := test.Passed + test.Failed
		if total > 0 {
			c.Tests = float64(test.Passed) / float64(total)
		}
		// An all-zero test run (no cases present, or the test battery never
		// linked) contributes 0.0 rather than undefined.
	}

	if lint != nil {
		c.Lint = 1.0 - lintPenaltyPerWarning*float64(lint.WarningCount)
		if c.Lint < 0 {
			c.Lint = 0
		}
	} else {
		c.Lint = 1.0
	}

	if !compilation.Success {
		// Per §4.6: a failed compile always drives overall to exactly 0,
		// since the lint stage never runs after a failed compile and no
		// credit is banked for it.
		return c, 0
	}

	if !expectsTests {
		// Renormalize onto compile+lint only; the canonical weights above
		// still govern cases that do expect tests.
		overall := (weightCompilation*c.Compilation + weightLint*c.Lint) / (weightCompilation + weightLint)
		return c, overall
	}

	overall := weightCompilation*c.Compilation + weightTests*c.Tests + weightLint*c.Lint
	return c, overall
}

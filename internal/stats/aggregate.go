package stats

import (
	"github.com/codecrucible/codecrucible/internal/report"
)

// group is one (case, model) pair's accumulated results, the unit Pass@k is
// computed over.
type group struct {
	modelKey string
	results  []report.EvalResult
}

// isSuccess mirrors §4.7: a task counts toward Pass@k iff the scorer
// reported full compilation credit and an effectively-passing test score.
// Lint never factors into functional correctness.
func isSuccess(r report.EvalResult) bool {
	return r.Components.Compilation >= 1 && r.Components.Tests >= 0.99
}

// Aggregate rolls a flat result list into per-model and per-case stats.
// ks is the set of k values to estimate Pass@k for, typically derived from
// the run's configured sample_k values.
func Aggregate(results []report.EvalResult, ks []int) report.AggregateStats {
	groups := make(map[[2]string]*group) // [caseID, modelKey]

	for _, r := range results {
		if r.Skipped {
			continue
		}
		key := [2]string{r.CaseID, r.Model}
		g, ok := groups[key]
		if !ok {
			g = &group{modelKey: r.Model}
			groups[key] = g
		}
		g.results = append(g.results, r)
	}

	perModelGroups := make(map[string][]*group)
	perCaseGroups := make(map[string][]*group)
	for key, g := range groups {
		caseID, model := key[0], key[1]
		perModelGroups[model] = append(perModelGroups[model], g)
		perCaseGroups[caseID] = append(perCaseGroups[caseID], g)
	}

	perModel := make(map[string]report.ModelStats)
	for model, gs := range perModelGroups {
		perModel[model] = modelStatsFor(gs, ks)
	}

	perCase := make(map[string]report.CaseStats)
	for caseID, gs := range perCaseGroups {
		rates := make(map[string]float64)
		for _, g := range gs {
			n, c := len(g.results), countSuccesses(g.results)
			rates[g.modelKey] = passRate(n, c)
		}
		perCase[caseID] = report.CaseStats{PerModelPassRate: rates}
	}

	return report.AggregateStats{PerModel: perModel, PerCase: perCase}
}

func countSuccesses(results []report.EvalResult) int {
	c := 0
	for _, r := range results {
		if isSuccess(r) {
			c++
		}
	}
	return c
}

// passRate is the simple empirical pass rate used for per-case stats, which
// the spec defines directly as a rate rather than a Pass@k estimate.
func passRate(n, c int) float64 {
	if n == 0 {
		return 0
	}
	return float64(c) / float64(n)
}

func modelStatsFor(gs []*group, ks []int) report.ModelStats {
	passAtK := make(map[int]float64)
	for _, k := range ks {
		sum := 0.0
		for _, g := range gs {
			n, c := len(g.results), countSuccesses(g.results)
			sum += PassAtK(n, c, k)
		}
		if len(gs) > 0 {
			passAtK[k] = sum / float64(len(gs))
		}
	}

	var (
		totalTasks     int
		compileSuccess int
		testSum        float64
		testTasks      int
		lintSum        float64
		lintTasks      int
		totalTokens    int
		totalCost      float64
		latencySum     float64
	)

	for _, g := range gs {
		for _, r := range g.results {
			totalTasks++
			if r.Compilation.Success {
				compileSuccess++
			}
			if r.Test != nil {
				total := r.Test.Passed + r.Test.Failed
				if total > 0 {
					testSum += float64(r.Test.Passed) / float64(total)
				}
				testTasks++
			}
			if r.Lint != nil {
				lintSum += r.Components.Lint
				lintTasks++
			}
			totalTokens += r.Usage.TotalTokens
			totalCost += r.Usage.EstimatedCostUSD
			latencySum += float64(r.Timing.TotalMs)
		}
	}

	stats := report.ModelStats{PassAtK: passAtK, TotalTokens: totalTokens, TotalCostUSD: totalCost}
	if totalTasks > 0 {
		stats.AvgCompileRate = float64(compileSuccess) / float64(totalTasks)
		stats.AvgLatencyMs = latencySum / float64(totalTasks)
	}
	if testTasks > 0 {
		stats.AvgTestPassRate = testSum / float64(testTasks)
	}
	if lintTasks > 0 {
		stats.AvgLintScore = lintSum / float64(lintTasks)
	}
	return stats
}

package report

import (
	"fmt"
	"strings"
)

// Entry is one (case, model) pair's score delta against a baseline.
type Entry struct {
	CaseID        string
	Model         string
	BaselineScore float64
	CurrentScore  float64
	Delta         float64
}

// RegressionReport is the result of comparing two reports at a threshold.
type RegressionReport struct {
	Regressions  []Entry
	Improvements []Entry
	Unchanged    int
	NewCases     int
	RemovedCases int
}

// HasRegressions reports whether any (case, model) pair regressed.
func (r RegressionReport) HasRegressions() bool {
	return len(r.Regressions) > 0
}

// bestScores builds {(case_id, model) -> best overall score}, taking the
// maximum across attempts for the same pair.
func bestScores(r Report) map[[2]string]float64 {
	best := make(map[[2]string]float64)
	for _, res := range r.Results {
		if res.Skipped {
			continue
		}
		key := [2]string{res.CaseID, res.Model}
		if cur, ok := best[key]; !ok || res.Score > cur {
			best[key] = res.Score
		}
	}
	return best
}

// Compare diffs current against baseline at threshold tau >= 0. The
// threshold is compared against the signed delta, not its magnitude: a
// delta below -tau is a regression, above +tau an improvement, otherwise
// unchanged.
func Compare(baseline, current Report, tau float64) RegressionReport {
	baselineScores := bestScores(baseline)
	currentScores := bestScores(current)

	var rr RegressionReport
	for key, cur := range currentScores {
		base, ok := baselineScores[key]
		if !ok {
			rr.NewCases++
			continue
		}
		delta := cur - base
		entry := Entry{CaseID: key[0], Model: key[1], BaselineScore: base, CurrentScore: cur, Delta: delta}
		switch {
		case delta < -tau:
			rr.Regressions = append(rr.Regressions, entry)
		case delta > tau:
			rr.Improvements = append(rr.Improvements, entry)
		default:
			rr.Unchanged++
		}
	}

	for key := range baselineScores {
		if _, ok := currentScores[key]; !ok {
			rr.RemovedCases++
		}
	}

	return rr
}

// Markdown renders the regression/improvement tables the compare CLI
// subcommand prints, mirroring the original report's to_markdown layout.
func (r RegressionReport) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Summary:** %d regressions, %d improvements, %d unchanged\n\n",
		len(r.Regressions), len(r.Improvements), r.Unchanged)

	if len(r.Regressions) > 0 {
		b.WriteString("### Regressions\n\n")
		b.WriteString("| Case | Model | Baseline | Current | Delta |\n")
		b.WriteString("|------|-------|----------|---------|-------|\n")
		for _, e := range r.Regressions {
			fmt.Fprintf(&b, "| %s | %s | %.1f%% | %.1f%% | %.1f%% |\n",
				e.CaseID, e.Model, e.BaselineScore*100, e.CurrentScore*100, e.Delta*100)
		}
		b.WriteString("\n")
	}

	if len(r.Improvements) > 0 {
		b.WriteString("### Improvements\n\n")
		b.WriteString("| Case | Model | Baseline | Current | Delta |\n")
		b.WriteString("|------|-------|----------|---------|-------|\n")
		for _, e := range r.Improvements {
			fmt.Fprintf(&b, "| %s | %s | %.1f%% | %.1f%% | +%.1f%% |\n",
				e.CaseID, e.Model, e.BaselineScore*100, e.CurrentScore*100, e.Delta*100)
		}
		b.WriteString("\n")
	}

	if r.NewCases > 0 || r.RemovedCases > 0 {
		fmt.Fprintf(&b, "**New cases:** %d · **Removed cases:** %d\n", r.NewCases, r.RemovedCases)
	}

	return b.String()
}

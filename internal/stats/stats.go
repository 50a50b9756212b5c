// Package stats implements the unbiased Pass@k estimator and the
// per-model/per-case aggregate rollups computed once a run completes.
package stats

import "math"

// PassAtK is the unbiased Codex-paper estimator of the probability that at
// least one of k samples drawn (without replacement) from n attempts,
// c of which succeeded, is itself a success.
func PassAtK(n, c, k int) float64 {
	switch {
	case n == 0 || k == 0 || c == 0:
		return 0
	case k > n:
		v := float64(c) / float64(n)
		if v > 1 {
			return 1
		}
		return v
	case c >= n:
		return 1
	default:
		// 1 - C(n-c, k) / C(n, k), evaluated in log-space to avoid
		// overflow for large n.
		logNumerator := logBinomial(n-c, k)
		logDenominator := logBinomial(n, k)
		return 1 - math.Exp(logNumerator-logDenominator)
	}
}

// logBinomial returns log(C(a, b)), or negative infinity if b > a (the
// combination is zero, i.e. every sample must be a failure but there are
// fewer failures than k).
func logBinomial(a, b int) float64 {
	if b > a || b < 0 {
		return math.Inf(-1)
	}
	return lgammaFactorial(a) - lgammaFactorial(b) - lgammaFactorial(a-b)
}

// lgammaFactorial returns log(n!) via the lgamma function: log(n!) = lgamma(n+1).
func lgammaFactorial(n int) float64 {
	v, _ := math.Lgamma(float64(n) + 1)
	return v
}

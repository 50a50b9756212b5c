// Package engine implements the evaluation pipeline's scheduler: it expands
// a case set into (case, model, attempt) tasks, admits them under a bounded
// concurrency permit, retries transient provider failures with backoff, and
// drives each task through compile/test/lint to a scored EvalResult.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codecrucible/codecrucible/internal/eval"
	"github.com/codecrucible/codecrucible/internal/extractor"
	"github.com/codecrucible/codecrucible/internal/logutil"
	"github.com/codecrucible/codecrucible/internal/metrics"
	"github.com/codecrucible/codecrucible/internal/provider"
	"github.com/codecrucible/codecrucible/internal/ratelimit"
	"github.com/codecrucible/codecrucible/internal/report"
	"github.com/codecrucible/codecrucible/internal/runutil"
	"github.com/codecrucible/codecrucible/internal/sandbox"
	"github.com/codecrucible/codecrucible/internal/scorer"
	"github.com/codecrucible/codecrucible/internal/stage"
	"github.com/codecrucible/codecrucible/internal/stats"
)

// maxBackoff caps the exponential retry delay per §4.5.
const maxBackoff = 60 * time.Second

// Options configures one run.
type Options struct {
	Models            []eval.ModelSpec
	PassK             []int // sample counts to estimate Pass@k for; max(PassK) is the attempt count per task
	Parallelism       int
	MaxRetriesPerCase int
	RetryDelay        time.Duration
	StageTimeout      time.Duration
	SharedTargetDir   string
}

// Engine owns the provider registry and the admission semaphore shared by
// every in-flight task.
type Engine struct {
	providers map[string]provider.Provider
	limiter   *ratelimit.RateLimiter
	progress  logutil.ProgressOutput
	logger    logutil.LoggerInterface
	metrics   metrics.Collector
}

// New builds an Engine. providers is keyed by provider name (the same name
// a ModelSpec.Provider references). progress may be nil. Metrics collection
// is a no-op until SetMetrics is called.
func New(providers map[string]provider.Provider, parallelism int, progress logutil.ProgressOutput, logger logutil.LoggerInterface) *Engine {
	return &Engine{
		providers: providers,
		limiter:   ratelimit.NewRateLimiter(parallelism, 0),
		progress:  progress,
		logger:    logger,
		metrics:   metrics.NewNoopCollector(),
	}
}

// SetMetrics replaces the engine's metrics collector, e.g. with one backed
// by a JSON Lines exporter so a run's stage durations and retry counts can
// be inspected alongside its report.
func (e *Engine) SetMetrics(m metrics.Collector) {
	e.metrics = m
}

type task struct {
	caseIdx int
	c       eval.Case
	model   eval.ModelSpec
	attempt int
}

// Run expands the set into tasks, drives every task to completion, then
// rolls aggregate statistics. Tasks for a model whose provider was never
// registered are recorded as skipped rather than failing the run.
func (e *Engine) Run(ctx context.Context, set eval.Set, opts Options) (report.Report, error) {
	start := time.Now()
	runID := uuid.NewString()

	maxK := 1
	for _, k := range opts.PassK {
		if k > maxK {
			maxK = k
		}
	}

	var tasks []task
	for ci, c := range set.Cases {
		for _, m := range opts.Models {
			for attempt := 1; attempt <= maxK; attempt++ {
				tasks = append(tasks, task{caseIdx: ci, c: c, model: m, attempt: attempt})
			}
		}
	}

	results := make([]report.EvalResult, len(tasks))

	sem := ratelimit.NewSemaphore(opts.Parallelism)

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			results[i] = e.runTask(gctx, sem, runID, set, t, opts)
			return nil
		})
	}
	_ = g.Wait()

	completed, failed := 0, 0
	for _, r := range results {
		if r.Skipped {
			continue
		}
		if r.Error != "" {
			failed++
		} else {
			completed++
		}
	}
	total := len(results)
	if e.progress != nil {
		e.progress.SetComplete(total, completed, failed)
	}

	modelSummaries := dedupeModels(opts.Models)
	r := report.Report{
		ID:        runID,
		Name:      runutil.GenerateRunName(),
		CreatedAt: time.Now(),
		Set:       report.SetSummary{ID: set.ID, Name: set.Name, CaseCount: len(set.Cases)},
		Models:    modelSummaries,
		Results:   results,
		TotalMs:   time.Since(start).Milliseconds(),
	}
	r.Stats = stats.Aggregate(results, sortedKeys(opts.PassK))

	return r, nil
}

func dedupeModels(models []eval.ModelSpec) []report.ModelSummary {
	seen := make(map[string]bool)
	var out []report.ModelSummary
	for _, m := range models {
		if seen[m.String()] {
			continue
		}
		seen[m.String()] = true
		out = append(out, report.ModelSummary{Provider: m.Provider, Model: m.Model})
	}
	return out
}

func sortedKeys(ks []int) []int {
	out := append([]int(nil), ks...)
	sort.Ints(out)
	return out
}

// runTask drives a single (case, model, attempt) through the engine's state
// machine: AWAIT_PERMIT -> GENERATING (with retry) -> COMPILING -> TESTING?
// -> LINTING? -> DONE/FAILED.
func (e *Engine) runTask(ctx context.Context, sem *ratelimit.Semaphore, runID string, set eval.Set, t task, opts Options) report.EvalResult {
	result := report.EvalResult{
		CaseID:   t.c.ID,
		Model:    t.model.Model,
		Provider: t.model.Provider,
		Attempt:  t.attempt,
		RunID:    runID,
	}

	p, ok := e.providers[t.model.Provider]
	if !ok {
		if e.logger != nil {
			e.logger.Warn("engine: provider %q not registered, skipping %s/%s", t.model.Provider, t.c.ID, t.model.Model)
		}
		e.metrics.IncrCounter("tasks_skipped", "provider", t.model.Provider)
		result.Skipped = true
		return result
	}

	if e.progress != nil {
		e.progress.TaskStarted(t.c.ID, t.model.Model, t.attempt)
	}

	if err := sem.Acquire(ctx); err != nil {
		result.Error = err.Error()
		return result
	}
	defer sem.Release()

	taskStart := time.Now()

	resp, genMs, err := e.generateWithRetry(ctx, p, t, opts)
	result.Timing.LLMMs = genMs
	e.metrics.RecordDuration("generate_ms", time.Duration(genMs)*time.Millisecond, "provider", t.model.Provider)
	if err != nil {
		result.Error = err.Error()
		result.Timing.TotalMs = time.Since(taskStart).Milliseconds()
		e.metrics.IncrCounter("tasks_failed", "stage", "generate")
		if e.progress != nil {
			e.progress.TaskErrored(t.c.ID, t.model.Model, t.attempt, err.Error())
		}
		return result
	}

	result.Usage = resp.TokenUsage
	lang := t.c.ResolvedLanguage(set.DefaultLanguage)
	code := resp.ExtractedCode
	if resp.Content != "" {
		code = extractor.Extract(resp.Content, lang.String(), lang.ShortTag())
	}
	result.Source = code

	sb, err := sandbox.New(lang, stageTimeout(t.c, opts), opts.SharedTargetDir)
	if err != nil {
		result.Error = fmt.Sprintf("sandbox: %v", err)
		result.Timing.TotalMs = time.Since(taskStart).Milliseconds()
		return result
	}
	defer sb.Close()

	for _, dep := range t.c.Dependencies {
		if err := sb.AddDependency(dep); err != nil {
			result.Error = fmt.Sprintf("sandbox: %v", err)
			result.Timing.TotalMs = time.Since(taskStart).Milliseconds()
			return result
		}
	}
	if err := sb.WriteSource(code); err != nil {
		result.Error = fmt.Sprintf("sandbox: %v", err)
		result.Timing.TotalMs = time.Since(taskStart).Milliseconds()
		return result
	}
	if t.c.Expectations.HasTestSource() {
		if err := sb.WriteTest(t.c.Expectations.TestFile); err != nil {
			result.Error = fmt.Sprintf("sandbox: %v", err)
			result.Timing.TotalMs = time.Since(taskStart).Milliseconds()
			return result
		}
	}

	compileStart := time.Now()
	compilation, err := stage.Compile(ctx, sb)
	result.Timing.CompileMs = time.Since(compileStart).Milliseconds()
	e.metrics.RecordDuration("stage_compile_ms", time.Since(compileStart), "lang", lang.String())
	if err != nil {
		result.Error = err.Error()
		result.Timing.TotalMs = time.Since(taskStart).Milliseconds()
		e.metrics.IncrCounter("tasks_failed", "stage", "compile")
		return result
	}
	result.Compilation = compilation
	if !compilation.Success {
		e.metrics.IncrCounter("compile_failures", "lang", lang.String())
	}

	var testResult *stage.TestResult
	var lintResult *stage.LintResult

	if compilation.Success {
		if t.c.Expectations.ShouldPassTests && t.c.Expectations.HasTestSource() {
			testStart := time.Now()
			tr, err := stage.RunTests(ctx, sb)
			result.Timing.TestMs = time.Since(testStart).Milliseconds()
			e.metrics.RecordDuration("stage_test_ms", time.Since(testStart), "lang", lang.String())
			if err == nil {
				testResult = &tr
			}
		}

		lr, err := stage.RunLint(ctx, sb)
		if err == nil {
			lintResult = &lr
		}
	}

	result.Test = testResult
	result.Lint = lintResult

	components, overall := scorer.Score(compilation, testResult, lintResult, t.c.Expectations.ShouldPassTests)
	result.Components = components
	result.Score = overall
	totalElapsed := time.Since(taskStart)
	result.Timing.TotalMs = totalElapsed.Milliseconds()
	e.metrics.RecordDuration("task_total_ms", totalElapsed, "model", t.model.Model)
	e.metrics.IncrCounter("tasks_completed", "model", t.model.Model)

	if e.progress != nil {
		e.progress.TaskCompleted(t.c.ID, t.model.Model, t.attempt, overall)
	}

	return result
}

func stageTimeout(c eval.Case, opts Options) time.Duration {
	if c.TimeoutSecs > 0 {
		return time.Duration(c.TimeoutSecs) * time.Second
	}
	if opts.StageTimeout > 0 {
		return opts.StageTimeout
	}
	return 60 * time.Second
}

// generateWithRetry performs the generation call with the engine's retry
// policy: up to MaxRetriesPerCase attempts, doubling delay capped at
// maxBackoff, a rate-limit error's own retry_after_ms overriding the next
// delay, and permanent errors aborting immediately.
func (e *Engine) generateWithRetry(ctx context.Context, p provider.Provider, t task, opts Options) (provider.GenerateResponse, int64, error) {
	req := provider.GenerateRequest{
		Model:        t.model.Model,
		Prompt:       t.c.Prompt,
		ContextFiles: t.c.Context,
		MaxTokens:    t.c.MaxTokens,
	}

	delay := opts.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}

	maxRetries := opts.MaxRetriesPerCase
	if maxRetries <= 0 {
		maxRetries = 1
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := e.limiter.Acquire(ctx, t.model.Model); err != nil {
			return provider.GenerateResponse{}, time.Since(start).Milliseconds(), err
		}
		resp, err := p.Generate(ctx, req)
		e.limiter.Release()
		if err == nil {
			return resp, time.Since(start).Milliseconds(), nil
		}

		lastErr = err
		if provider.IsPermanent(err) {
			break
		}
		if attempt == maxRetries-1 {
			break
		}

		e.metrics.IncrCounter("generate_retries", "provider", t.model.Provider)

		nextDelay := delay
		if retryAfter, ok := provider.RetryAfterMS(err); ok {
			nextDelay = time.Duration(retryAfter) * time.Millisecond
		}
		if e.progress != nil {
			e.progress.TaskRateLimited(t.c.ID, t.model.Model, t.attempt, nextDelay.Milliseconds())
		}

		select {
		case <-time.After(nextDelay):
		case <-ctx.Done():
			return provider.GenerateResponse{}, time.Since(start).Milliseconds(), ctx.Err()
		}

		delay *= 2
		if delay > maxBackoff {
			delay = maxBackoff
		}
	}

	return provider.GenerateResponse{}, time.Since(start).Milliseconds(), lastErr
}

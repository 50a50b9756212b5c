package stage

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/codecrucible/codecrucible/internal/sandbox"
)

func run(ctx context.Context, sb *sandbox.Sandbox, argv []string) (stdout string, exitCode int, duration time.Duration, err error) {
	ctx, cancel := context.WithTimeout(ctx, sb.Timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = sb.WorkDir()
	cmd.Env = sb.BuildEnv()

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	start := time.Now()
	runErr := cmd.Run()
	duration = time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		return "", -1, duration, fmt.Errorf("timed out after %s", sb.Timeout())
	}
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			// Non-zero exit is an in-band stage outcome (compile/test/lint
			// failure), not an unrecoverable stage error. The caller decides
			// what a failing exit status means for that stage.
			return out.String() + "\n" + errBuf.String(), exitErr.ExitCode(), duration, nil
		}
		return "", -1, duration, fmt.Errorf("launch %s: %w", argv[0], runErr)
	}

	return out.String() + "\n" + errBuf.String(), 0, duration, nil
}

// Compile runs the language toolchain's build command inside the sandbox
// and parses its JSON diagnostics. Success requires process exit 0 and no
// error-level diagnostic in the parsed output.
func Compile(ctx context.Context, sb *sandbox.Sandbox) (CompilationResult, error) {
	tc, ok := toolchains[sb.Language()]
	if !ok {
		return CompilationResult{}, &Error{Stage: "compile", Cause: fmt.Errorf("unsupported language %s", sb.Language())}
	}

	out, exitCode, duration, err := run(ctx, sb, tc.compile)
	if err != nil {
		return CompilationResult{}, &Error{Stage: "compile", Cause: err}
	}

	errs, warnings := ParseCompilerJSON(out)

	// The toolchain's own exit status is authoritative: a non-zero exit with
	// no parseable compiler-message line (link failures, toolchains that
	// don't emit structured diagnostics) must still be reported as failure.
	return CompilationResult{
		Success:    exitCode == 0 && len(errs) == 0,
		Errors:     errs,
		Warnings:   warnings,
		DurationMS: duration.Milliseconds(),
	}, nil
}

// RunTests runs the language toolchain's test command and parses its
// human-readable output.
func RunTests(ctx context.Context, sb *sandbox.Sandbox) (TestResult, error) {
	tc, ok := toolchains[sb.Language()]
	if !ok {
		return TestResult{}, &Error{Stage: "test", Cause: fmt.Errorf("unsupported language %s", sb.Language())}
	}

	out, _, duration, err := run(ctx, sb, tc.test)
	if err != nil {
		return TestResult{}, &Error{Stage: "test", Cause: err}
	}

	return ParseTestOutput(out, duration.Milliseconds()), nil
}

// RunLint runs the language toolchain's linter at warning severity and
// keeps only diagnostics in the linter's own namespace.
func RunLint(ctx context.Context, sb *sandbox.Sandbox) (LintResult, error) {
	tc, ok := toolchains[sb.Language()]
	if !ok {
		return LintResult{}, &Error{Stage: "lint", Cause: fmt.Errorf("unsupported language %s", sb.Language())}
	}

	out, _, _, err := run(ctx, sb, tc.lint)
	if err != nil {
		return LintResult{}, &Error{Stage: "lint", Cause: err}
	}

	warnings := ParseLintJSON(out, tc.lintPrefix)
	return LintResult{
		Warnings:     warnings,
		WarningCount: len(warnings),
	}, nil
}

// Package stage runs the compile, test, and lint stages against code
// prepared in a sandbox and parses their toolchain output into typed
// diagnostics.
package stage

import "fmt"

// DiagnosticLevel is the severity a toolchain assigned to a diagnostic.
type DiagnosticLevel int

const (
	LevelNote DiagnosticLevel = iota
	LevelHelp
	LevelWarning
	LevelError
)

func (l DiagnosticLevel) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelHelp:
		return "help"
	default:
		return "note"
	}
}

// ParseDiagnosticLevel maps a toolchain's own level string onto DiagnosticLevel,
// defaulting to note for anything unrecognized (matching forgetest's compiler
// message parser).
func ParseDiagnosticLevel(s string) DiagnosticLevel {
	switch s {
	case "error":
		return LevelError
	case "warning":
		return LevelWarning
	case "help":
		return LevelHelp
	default:
		return LevelNote
	}
}

// Span is a source location attached to a Diagnostic. Spans with missing
// fields are dropped individually by the parser rather than invalidating
// the whole diagnostic.
type Span struct {
	File        string
	LineStart   int
	LineEnd     int
	ColumnStart int
	ColumnEnd   int
	Text        string
}

// Diagnostic is one structured message produced by a compiler or linter.
type Diagnostic struct {
	Level   DiagnosticLevel
	Message string
	Code    string
	Spans   []Span
}

func (d Diagnostic) String() string {
	if d.Code != "" {
		return fmt.Sprintf("[%s] %s (%s)", d.Level, d.Message, d.Code)
	}
	return fmt.Sprintf("[%s] %s", d.Level, d.Message)
}

// CompilationResult is the outcome of the compile stage.
type CompilationResult struct {
	Success    bool
	Errors     []Diagnostic
	Warnings   []Diagnostic
	DurationMS int64
}

// TestFailure records the observed output for one failing test.
type TestFailure struct {
	Name    string
	Message string
	Stdout  string
}

// TestResult is the outcome of the test stage.
type TestResult struct {
	Passed     int
	Failed     int
	Ignored    int
	DurationMS int64
	Failures   []TestFailure
}

// LintResult is the outcome of the lint stage.
type LintResult struct {
	Warnings      []Diagnostic
	WarningCount  int
}

// Error is raised for an unrecoverable stage failure: the language has no
// toolchain, the subprocess could not be launched, or the wall-clock timeout
// elapsed. Output that cannot be parsed does not raise it; the stage result
// then carries no diagnostics. It is distinct from an in-band "compilation failed" or
// "tests failed" outcome, which is represented in the stage result itself.
type Error struct {
	Stage string // "compile", "test", or "lint"
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

package stage

import (
	"bufio"
	"encoding/json"
	"strings"
)

// compilerMessage is the subset of a toolchain's JSON diagnostic line this
// parser cares about. Optional fields are pointers so that a missing value
// can be told apart from a zero one. Callers pass the toolchain's output
// through unchanged; lines in any other shape yield no diagnostics.
type compilerMessage struct {
	Reason  string `json:"reason"`
	Message *struct {
		Level   string `json:"level"`
		Message string `json:"message"`
		Code    *struct {
			Code string `json:"code"`
		} `json:"code"`
		Spans []struct {
			FileName    *string `json:"file_name"`
			LineStart   *int    `json:"line_start"`
			LineEnd     *int    `json:"line_end"`
			ColumnStart *int    `json:"column_start"`
			ColumnEnd   *int    `json:"column_end"`
			Text        []struct {
				Text string `json:"text"`
			} `json:"text"`
		} `json:"spans"`
	} `json:"message"`
}

// ParseCompilerJSON consumes line-delimited JSON compiler output, keeping
// only lines whose "reason" is "compiler-message", and splits the resulting
// diagnostics into errors and warnings. Notes and help-level diagnostics are
// parsed but not retained, matching the upstream toolchain's own triage.
//
// A line that isn't valid JSON, or doesn't carry a "compiler-message"
// reason, is skipped rather than treated as a parse failure. Output with no
// usable line at all yields no diagnostics; it is not reported as an error.
func ParseCompilerJSON(output string) (errs []Diagnostic, warnings []Diagnostic) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		var msg compilerMessage
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			continue
		}
		if msg.Reason != "compiler-message" || msg.Message == nil {
			continue
		}

		level := ParseDiagnosticLevel(msg.Message.Level)
		if level != LevelError && level != LevelWarning {
			continue
		}

		var code string
		if msg.Message.Code != nil {
			code = msg.Message.Code.Code
		}

		var spans []Span
		for _, s := range msg.Message.Spans {
			if s.FileName == nil || s.LineStart == nil || s.LineEnd == nil ||
				s.ColumnStart == nil || s.ColumnEnd == nil {
				continue
			}
			span := Span{
				File:        *s.FileName,
				LineStart:   *s.LineStart,
				LineEnd:     *s.LineEnd,
				ColumnStart: *s.ColumnStart,
				ColumnEnd:   *s.ColumnEnd,
			}
			if len(s.Text) > 0 {
				span.Text = s.Text[0].Text
			}
			spans = append(spans, span)
		}

		d := Diagnostic{
			Level:   level,
			Message: msg.Message.Message,
			Code:    code,
			Spans:   spans,
		}

		if level == LevelError {
			errs = append(errs, d)
		} else {
			warnings = append(warnings, d)
		}
	}

	return errs, warnings
}

// ParseLintJSON behaves like ParseCompilerJSON but retains only
// warning-level diagnostics whose structured code begins with the linter's
// own namespace prefix (e.g. "clippy::" for Rust, "RUF" for ruff), matching
// forgetest's clippy filter generalized to every supported language.
func ParseLintJSON(output string, codePrefix string) []Diagnostic {
	_, warnings := ParseCompilerJSON(output)
	if codePrefix == "" {
		return warnings
	}
	var kept []Diagnostic
	for _, w := range warnings {
		if strings.HasPrefix(w.Code, codePrefix) {
			kept = append(kept, w)
		}
	}
	return kept
}

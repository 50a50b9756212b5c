package stage

import (
	"strconv"
	"strings"
)

// ParseTestOutput parses a toolchain's human-readable test output.
//
// Per-test "test <name> ... ok/FAILED/ignored" lines are counted as a
// fallback baseline. Toolchains that run multiple test binaries (unit,
// integration, documentation) each emit their own "test result: ..."
// summary line; once any summary line is found, the per-line counts are
// discarded and every summary line's counts are added cumulatively, so a
// run spanning several binaries is not under-counted.
func ParseTestOutput(output string, durationMS int64) TestResult {
	var passed, failed, ignored int
	var failures []TestFailure

	lines := strings.Split(output, "\n")

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "test ") && strings.HasSuffix(trimmed, " ... ok"):
			passed++
		case strings.HasPrefix(trimmed, "test ") && strings.HasSuffix(trimmed, " ... FAILED"):
			failed++
			name := strings.TrimSuffix(strings.TrimPrefix(trimmed, "test "), " ... FAILED")
			failures = append(failures, TestFailure{Name: name})
		case strings.HasPrefix(trimmed, "test ") && strings.HasSuffix(trimmed, " ... ignored"):
			ignored++
		}
	}

	foundSummary := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "test result:") {
			continue
		}
		p, f, i, ok := parseSummaryLine(trimmed)
		if !ok {
			continue
		}
		if !foundSummary {
			passed, failed, ignored = 0, 0, 0
			foundSummary = true
		}
		passed += p
		failed += f
		ignored += i
	}

	failures = attachFailureMessages(output, failures)

	return TestResult{
		Passed:     passed,
		Failed:     failed,
		Ignored:    ignored,
		DurationMS: durationMS,
		Failures:   failures,
	}
}

// parseSummaryLine extracts the passed/failed/ignored counts from a line
// shaped like:
//
//	test result: ok. 3 passed; 0 failed; 1 ignored; 0 measured; 0 filtered out
func parseSummaryLine(line string) (passed, failed, ignored int, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return 0, 0, 0, false
	}
	afterColon := line[idx+1:]

	extract := func(label string) int {
		for _, segment := range strings.Split(afterColon, ";") {
			for _, part := range strings.Split(segment, ".") {
				part = strings.TrimSpace(part)
				if !strings.HasSuffix(part, label) {
					continue
				}
				numStr := strings.TrimSpace(strings.TrimSuffix(part, label))
				n, err := strconv.Atoi(numStr)
				if err == nil {
					return n
				}
			}
		}
		return 0
	}

	return extract("passed"), extract("failed"), extract("ignored"), true
}

// attachFailureMessages extracts the per-test stdout/panic text from the
// toolchain's "failures:" section and attaches it to the matching
// TestFailure by name. The section ends at the second "failures:" marker,
// which lists failing test names rather than their output.
func attachFailureMessages(output string, failures []TestFailure) []TestFailure {
	lines := strings.Split(output, "\n")

	inFailures := false
	currentName := ""
	var currentMsg strings.Builder

	commit := func() {
		if currentName == "" {
			return
		}
		for i := range failures {
			if failures[i].Name == currentName {
				failures[i].Message = strings.TrimSpace(currentMsg.String())
			}
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "failures:" {
			if inFailures {
				// Second "failures:" section: a list of names, stop collecting.
				commit()
				break
			}
			inFailures = true
			continue
		}
		if !inFailures {
			continue
		}
		if strings.HasPrefix(trimmed, "---- ") && strings.HasSuffix(trimmed, " stdout ----") {
			commit()
			currentName = strings.TrimSuffix(strings.TrimPrefix(trimmed, "---- "), " stdout ----")
			currentMsg.Reset()
			continue
		}
		if currentName != "" {
			if currentMsg.Len() > 0 {
				currentMsg.WriteByte('\n')
			}
			currentMsg.WriteString(trimmed)
		}
	}
	commit()

	return failures
}

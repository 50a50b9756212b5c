package evalset

import (
	"fmt"
	"strings"

	"github.com/codecrucible/codecrucible/internal/eval"
)

// ValidationWarning flags a common case-authoring mistake without failing
// the load: duplicate ids, should_pass_tests without a test file, empty
// prompts, and a custom_check that is recognized but never executed.
type ValidationWarning struct {
	CaseID  string // empty when the warning applies to the set as a whole
	Message string
}

func (w ValidationWarning) String() string {
	if w.CaseID == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.CaseID, w.Message)
}

// Validate checks a Set for authoring mistakes that would otherwise surface
// much later as a confusing compile/test failure.
func Validate(set eval.Set) []ValidationWarning {
	var warnings []ValidationWarning

	seen := make(map[string]bool)
	for _, c := range set.Cases {
		if seen[c.ID] {
			warnings = append(warnings, ValidationWarning{CaseID: c.ID, Message: "duplicate case ID"})
		}
		seen[c.ID] = true
	}

	for _, c := range set.Cases {
		if c.Expectations.ShouldPassTests && !c.Expectations.HasTestSource() {
			warnings = append(warnings, ValidationWarning{CaseID: c.ID, Message: "should_pass_tests is true but no test_file provided"})
		}
		if strings.TrimSpace(c.Prompt) == "" {
			warnings = append(warnings, ValidationWarning{CaseID: c.ID, Message: "prompt is empty"})
		}
		if c.Expectations.CustomCheck != "" {
			warnings = append(warnings, ValidationWarning{CaseID: c.ID, Message: "custom_check is recognized but not executed by this core and will be ignored"})
		}
	}

	return warnings
}

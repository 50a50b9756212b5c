// Package eval defines the data model for the evaluation harness: the cases
// submitted to language models, the sets that group them, and the
// per-attempt results produced by the engine.
package eval

import "fmt"

// Language identifies the target language of a case and, by extension,
// which sandbox and toolchain the stage executors use.
type Language int

const (
	LanguageUnspecified Language = iota
	LanguageRust
	LanguagePython
	LanguageTypeScript
	LanguageGo
)

// String renders the canonical lowercase name used in TOML files and reports.
func (l Language) String() string {
	switch l {
	case LanguageRust:
		return "rust"
	case LanguagePython:
		return "python"
	case LanguageTypeScript:
		return "typescript"
	case LanguageGo:
		return "go"
	default:
		return "unspecified"
	}
}

// ParseLanguage accepts the canonical name plus the conventional short tags
// used as fenced-code-block language hints ("ts", "golang").
func ParseLanguage(s string) (Language, error) {
	switch s {
	case "rust", "rs":
		return LanguageRust, nil
	case "python", "py":
		return LanguagePython, nil
	case "typescript", "ts":
		return LanguageTypeScript, nil
	case "go", "golang":
		return LanguageGo, nil
	default:
		return LanguageUnspecified, fmt.Errorf("eval: unknown language %q", s)
	}
}

// ShortTag returns the language tag expected on a fenced code block for this
// language, used by the code extractor to recognize target-tagged blocks.
func (l Language) ShortTag() string {
	switch l {
	case LanguageRust:
		return "rs"
	case LanguagePython:
		return "py"
	case LanguageTypeScript:
		return "ts"
	case LanguageGo:
		return "go"
	default:
		return ""
	}
}

// ContextFile is a piece of supporting source handed to the model alongside
// the prompt, and later prepended into the assembled user message.
type ContextFile struct {
	Path    string
	Content string
}

// Dependency names a package dependency to add to the sandbox's build
// manifest before compiling generated code.
type Dependency struct {
	Name     string
	Version  string
	Features []string
}

// Expectations describes what a passing attempt at a Case looks like.
type Expectations struct {
	ShouldCompile     bool
	ShouldPassTests   bool
	TestFile          string
	ExpectedFunctions []string
	ExpectedTypes     []string
	MaxLintWarnings   *int
	CustomCheck       string
}

// DefaultExpectations mirrors the common case: code that compiles and whose
// supplied test battery passes.
func DefaultExpectations() Expectations {
	return Expectations{
		ShouldCompile:   true,
		ShouldPassTests: true,
	}
}

// HasTestSource reports whether a test battery was supplied for this case.
func (e Expectations) HasTestSource() bool {
	return e.TestFile != ""
}

// Case is a single prompt+expectations pair: the unit of evaluation.
type Case struct {
	ID           string
	Name         string
	Description  string
	Prompt       string
	Language     Language // LanguageUnspecified defers to the Set's default
	Context      []ContextFile
	Expectations Expectations
	Tags         []string
	Dependencies []Dependency
	TimeoutSecs  int
	MaxTokens    int
}

// ResolvedLanguage returns the case's language, or the set default if unset.
func (c Case) ResolvedLanguage(setDefault Language) Language {
	if c.Language == LanguageUnspecified {
		return setDefault
	}
	return c.Language
}

// Set is an ordered collection of Cases sharing defaults.
type Set struct {
	ID              string
	Name            string
	DefaultLanguage Language
	DefaultTimeout  int
	Cases           []Case
}

// ModelSpec names a model on a specific provider.
type ModelSpec struct {
	Provider string
	Model    string
}

func (m ModelSpec) String() string {
	return fmt.Sprintf("%s/%s", m.Provider, m.Model)
}

// Package evalset loads case sets from TOML files and validates them for
// common authoring mistakes before a run starts.
package evalset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/codecrucible/codecrucible/internal/eval"
	"github.com/codecrucible/codecrucible/internal/logutil"
	"github.com/codecrucible/codecrucible/internal/prompt"
)

type tomlFile struct {
	EvalSet tomlHeader `toml:"eval_set"`
	Cases   []tomlCase `toml:"cases"`
}

type tomlHeader struct {
	ID                string `toml:"id"`
	Name              string `toml:"name"`
	Description       string `toml:"description"`
	DefaultLanguage    string `toml:"default_language"`
	DefaultTimeoutSecs int    `toml:"default_timeout_secs"`
}

type tomlCase struct {
	ID           string           `toml:"id"`
	Name         string           `toml:"name"`
	Description  string           `toml:"description"`
	Prompt       string           `toml:"prompt"`
	Language     string           `toml:"language"`
	Tags         []string         `toml:"tags"`
	Dependencies []tomlDependency `toml:"dependencies"`
	TimeoutSecs  int              `toml:"timeout_secs"`
	MaxTokens    int              `toml:"max_tokens"`
	Expectations *tomlExpectations `toml:"expectations"`
}

type tomlDependency struct {
	Name     string   `toml:"name"`
	Version  string   `toml:"version"`
	Features []string `toml:"features"`
}

type tomlExpectations struct {
	ShouldCompile     *bool    `toml:"should_compile"`
	ShouldPassTests   *bool    `toml:"should_pass_tests"`
	TestFile          string   `toml:"test_file"`
	ExpectedFunctions []string `toml:"expected_functions"`
	ExpectedTypes     []string `toml:"expected_types"`
	MaxLintWarnings   *int     `toml:"max_lint_warnings"`
	CustomCheck       string   `toml:"custom_check"`
}

// ParseString parses a single TOML document into a Set. sourcePath is used
// only for error messages.
func ParseString(content, sourcePath string) (eval.Set, error) {
	var parsed tomlFile
	if _, err := toml.Decode(content, &parsed); err != nil {
		return eval.Set{}, fmt.Errorf("evalset: parse %s: %w", sourcePath, err)
	}

	defaultLang := eval.LanguageRust
	if parsed.EvalSet.DefaultLanguage != "" {
		l, err := eval.ParseLanguage(parsed.EvalSet.DefaultLanguage)
		if err != nil {
			return eval.Set{}, fmt.Errorf("evalset: %s: %w", sourcePath, err)
		}
		defaultLang = l
	}

	defaultTimeout := parsed.EvalSet.DefaultTimeoutSecs
	if defaultTimeout == 0 {
		defaultTimeout = 60
	}

	cases := make([]eval.Case, 0, len(parsed.Cases))
	for _, c := range parsed.Cases {
		lang := eval.LanguageUnspecified
		if c.Language != "" {
			l, err := eval.ParseLanguage(c.Language)
			if err != nil {
				return eval.Set{}, fmt.Errorf("evalset: case %s: %w", c.ID, err)
			}
			lang = l
		}

		exp := eval.DefaultExpectations()
		if c.Expectations != nil {
			if c.Expectations.ShouldCompile != nil {
				exp.ShouldCompile = *c.Expectations.ShouldCompile
			}
			if c.Expectations.ShouldPassTests != nil {
				exp.ShouldPassTests = *c.Expectations.ShouldPassTests
			}
			exp.TestFile = c.Expectations.TestFile
			exp.ExpectedFunctions = c.Expectations.ExpectedFunctions
			exp.ExpectedTypes = c.Expectations.ExpectedTypes
			exp.MaxLintWarnings = c.Expectations.MaxLintWarnings
			exp.CustomCheck = c.Expectations.CustomCheck
		}

		deps := make([]eval.Dependency, 0, len(c.Dependencies))
		for _, d := range c.Dependencies {
			deps = append(deps, eval.Dependency{Name: d.Name, Version: d.Version, Features: d.Features})
		}

		renderedPrompt, err := prompt.RenderInline(c.Prompt, prompt.TemplateData{Task: c.Name, Context: c.Description})
		if err != nil {
			return eval.Set{}, fmt.Errorf("evalset: case %q: %w", c.ID, err)
		}

		cases = append(cases, eval.Case{
			ID:           c.ID,
			Name:         c.Name,
			Description:  c.Description,
			Prompt:       renderedPrompt,
			Language:     lang,
			Expectations: exp,
			Tags:         c.Tags,
			Dependencies: deps,
			TimeoutSecs:  c.TimeoutSecs,
			MaxTokens:    c.MaxTokens,
		})
	}

	return eval.Set{
		ID:              parsed.EvalSet.ID,
		Name:            parsed.EvalSet.Name,
		DefaultLanguage: defaultLang,
		DefaultTimeout:  defaultTimeout,
		Cases:           cases,
	}, nil
}

// ParseFile reads and parses a single case-set TOML file.
func ParseFile(path string) (eval.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return eval.Set{}, fmt.Errorf("evalset: read %s: %w", path, err)
	}
	return ParseString(string(data), path)
}

// LoadDirectory recursively loads every *.toml file under dir into a Set.
// A malformed file is skipped with a logged warning rather than failing the
// whole load.
func LoadDirectory(dir string, logger logutil.LoggerInterface) ([]eval.Set, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("evalset: not a directory: %s", dir)
	}

	var sets []eval.Set
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("evalset: read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			nested, err := LoadDirectory(path, logger)
			if err != nil {
				return nil, err
			}
			sets = append(sets, nested...)
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".toml") {
			continue
		}
		set, err := ParseFile(path)
		if err != nil {
			if logger != nil {
				logger.Warn("skipping %s: %v", path, err)
			}
			continue
		}
		sets = append(sets, set)
	}

	return sets, nil
}

// Package sandbox prepares isolated, per-attempt build roots for generated
// code: a minimal project manifest, the generated source, and (optionally)
// a test battery, plus a sanitized environment shared by the stage
// executors.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codecrucible/codecrucible/internal/eval"
)

// langProfile captures the per-language conventions a Sandbox needs: where
// the manifest and entry points live, and how the generated file is named
// depending on whether it declares an executable entry point.
type langProfile struct {
	manifestName    string
	manifestDefault string
	libEntry        string
	binEntry        string
	mainMarker      string // substring identifying a top-level executable entry point
	testSuffix      string // appended when tests are written to their own file, empty if tests share the lib file
}

var profiles = map[eval.Language]langProfile{
	eval.LanguageRust: {
		manifestName:    "Cargo.toml",
		manifestDefault: "[package]\nname = \"eval_target\"\nversion = \"0.1.0\"\nedition = \"2021\"\n\n[dependencies]\n",
		libEntry:        "src/lib.rs",
		binEntry:        "src/main.rs",
		mainMarker:      "fn main",
	},
	eval.LanguageGo: {
		manifestName:    "go.mod",
		manifestDefault: "module eval_target\n\ngo 1.23\n",
		libEntry:        "eval_target.go",
		binEntry:        "main.go",
		mainMarker:      "func main",
	},
	eval.LanguagePython: {
		manifestName:    "pyproject.toml",
		manifestDefault: "[project]\nname = \"eval_target\"\nversion = \"0.1.0\"\nrequires-python = \">=3.10\"\ndependencies = []\n",
		libEntry:        "eval_target.py",
		binEntry:        "eval_target.py",
		mainMarker:      "if __name__ == \"__main__\"",
		testSuffix:      "_test.py",
	},
	eval.LanguageTypeScript: {
		manifestName:    "package.json",
		manifestDefault: "{\n  \"name\": \"eval-target\",\n  \"version\": \"0.1.0\",\n  \"private\": true,\n  \"dependencies\": {}\n}\n",
		libEntry:        "eval_target.ts",
		binEntry:        "eval_target.ts",
		mainMarker:      "function main(",
	},
}

// sensitiveEnvVars is blanked from every sandbox's environment: SSH agent
// socket, cloud credentials, git/forge tokens, registry tokens,
// model-provider API keys, container/k8s configs, database URLs, and
// package-manager tokens.
var sensitiveEnvVars = []string{
	"SSH_AUTH_SOCK",
	"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN",
	"GITHUB_TOKEN", "GH_TOKEN", "GITLAB_TOKEN",
	"CARGO_REGISTRY_TOKEN", "NPM_TOKEN", "PYPI_TOKEN",
	"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY",
	"CODECRUCIBLE_ANTHROPIC_KEY", "CODECRUCIBLE_OPENAI_KEY", "CODECRUCIBLE_GEMINI_KEY",
	"DOCKER_HOST", "DOCKER_CONFIG", "KUBECONFIG",
	"DATABASE_URL",
}

// Sandbox owns one isolated working directory for a single task attempt.
// The shared target/cache directory outlives any one Sandbox and is never
// removed by it.
type Sandbox struct {
	workDir         string
	sharedTargetDir string
	timeout         time.Duration
	language        eval.Language
	profile         langProfile
}

// New creates a fresh working directory under os.TempDir, writes the
// language's minimal manifest and an empty entry-point file, and ensures
// the shared target directory exists.
func New(language eval.Language, timeout time.Duration, sharedTargetDir string) (*Sandbox, error) {
	profile, ok := profiles[language]
	if !ok {
		return nil, fmt.Errorf("sandbox: unsupported language %s", language)
	}

	workDir, err := os.MkdirTemp("", "codecrucible-sandbox-"+uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("sandbox: create work dir: %w", err)
	}

	if err := os.MkdirAll(sharedTargetDir, 0o755); err != nil {
		return nil, fmt.Errorf("sandbox: create shared target dir: %w", err)
	}

	sb := &Sandbox{
		workDir:         workDir,
		sharedTargetDir: sharedTargetDir,
		timeout:         timeout,
		language:        language,
		profile:         profile,
	}

	if err := os.WriteFile(filepath.Join(workDir, profile.manifestName), []byte(profile.manifestDefault), 0o644); err != nil {
		return nil, fmt.Errorf("sandbox: write manifest: %w", err)
	}
	if libDir := filepath.Dir(filepath.Join(workDir, profile.libEntry)); libDir != workDir {
		if err := os.MkdirAll(libDir, 0o755); err != nil {
			return nil, fmt.Errorf("sandbox: create source dir: %w", err)
		}
	}
	if err := os.WriteFile(filepath.Join(workDir, profile.libEntry), nil, 0o644); err != nil {
		return nil, fmt.Errorf("sandbox: write entry point: %w", err)
	}

	return sb, nil
}

func (s *Sandbox) WorkDir() string         { return s.workDir }
func (s *Sandbox) SharedTargetDir() string { return s.sharedTargetDir }
func (s *Sandbox) Timeout() time.Duration  { return s.timeout }
func (s *Sandbox) Language() eval.Language { return s.language }

// entryPath returns the path generated source is written to: the
// executable-binary entry point if the code declares a top-level main,
// otherwise the library entry point.
func (s *Sandbox) entryPath(code string) string {
	if strings.Contains(code, s.profile.mainMarker) {
		return s.profile.binEntry
	}
	return s.profile.libEntry
}

// WriteSource writes generated code to the executable entry point if it
// textually contains a top-level main definition, or the library entry
// point otherwise.
func (s *Sandbox) WriteSource(code string) error {
	return os.WriteFile(filepath.Join(s.workDir, s.entryPath(code)), []byte(code), 0o644)
}

// WriteTest adds the supplied test battery to the sandbox. A language whose
// profile has a test-file suffix gets the tests in their own file beside the
// library entry; otherwise they are appended to the library entry and share
// the module scope of the generated code.
func (s *Sandbox) WriteTest(testCode string) error {
	if s.profile.testSuffix != "" {
		path := filepath.Join(s.workDir, strings.TrimSuffix(s.profile.libEntry, filepath.Ext(s.profile.libEntry))+s.profile.testSuffix)
		return os.WriteFile(path, []byte(testCode), 0o644)
	}

	path := filepath.Join(s.workDir, s.profile.libEntry)
	existing, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("sandbox: read source for test append: %w", err)
	}
	combined := string(existing) + "\n\n" + testCode
	return os.WriteFile(path, []byte(combined), 0o644)
}

// AddDependency edits the manifest to add a dependency, preserving the
// rest of its contents. Each language profile knows its own manifest
// syntax.
func (s *Sandbox) AddDependency(dep eval.Dependency) error {
	manifestPath := filepath.Join(s.workDir, s.profile.manifestName)
	existing, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("sandbox: read manifest: %w", err)
	}

	var line string
	switch s.language {
	case eval.LanguageRust:
		if dep.Version != "" {
			line = fmt.Sprintf("%s = \"%s\"\n", dep.Name, dep.Version)
		} else {
			line = fmt.Sprintf("%s = \"*\"\n", dep.Name)
		}
		if len(dep.Features) > 0 {
			line = fmt.Sprintf("%s = { version = \"%s\", features = [%s] }\n",
				dep.Name, dep.Version, quoteList(dep.Features))
		}
		return os.WriteFile(manifestPath, append(existing, []byte(line)...), 0o644)
	case eval.LanguageGo:
		line = fmt.Sprintf("require %s %s\n", dep.Name, orLatest(dep.Version))
		return os.WriteFile(manifestPath, append(existing, []byte(line)...), 0o644)
	default:
		// Python/TypeScript manifests are JSON/TOML dependency tables; a
		// full structural edit is out of scope for this sandbox, which only
		// needs to support the dependency lists cases declare for Rust and
		// Go today. Unsupported languages silently accept the no-op so that
		// cases without dependencies keep working.
		return nil
	}
}

func quoteList(items []string) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprintf("%q", it))
	}
	return b.String()
}

func orLatest(version string) string {
	if version == "" {
		return "latest"
	}
	return version
}

// BuildEnv returns the environment a stage subprocess should run with: the
// shared compiler-cache pointer, plus every sensitive variable explicitly
// blanked.
func (s *Sandbox) BuildEnv() []string {
	env := os.Environ()
	blanked := make(map[string]bool, len(sensitiveEnvVars))
	for _, v := range sensitiveEnvVars {
		blanked[v] = true
	}

	filtered := make([]string, 0, len(env)+2)
	for _, kv := range env {
		name := kv
		if idx := strings.IndexByte(kv, '='); idx >= 0 {
			name = kv[:idx]
		}
		if blanked[name] {
			continue
		}
		filtered = append(filtered, kv)
	}
	for name := range blanked {
		filtered = append(filtered, name+"=")
	}

	filtered = append(filtered, "CARGO_TARGET_DIR="+s.sharedTargetDir)
	filtered = append(filtered, "GOCACHE="+filepath.Join(s.sharedTargetDir, "go-build"))
	filtered = append(filtered, "GOPATH="+filepath.Join(s.sharedTargetDir, "go-path"))
	return filtered
}

// Close removes the sandbox's working directory. The shared target
// directory is never touched.
func (s *Sandbox) Close() error {
	return os.RemoveAll(s.workDir)
}

package stage

import "github.com/codecrucible/codecrucible/internal/eval"

// toolchain names the subprocess argv for each stage, per language, plus the
// structured-diagnostic-code namespace prefix the lint stage retains.
type toolchain struct {
	compile    []string
	test       []string
	lint       []string
	lintPrefix string
}

var toolchains = map[eval.Language]toolchain{
	eval.LanguageRust: {
		compile:    []string{"cargo", "build", "--message-format=json"},
		test:       []string{"cargo", "test"},
		lint:       []string{"cargo", "clippy", "--message-format=json", "--", "-W", "clippy::all"},
		lintPrefix: "clippy::",
	},
	eval.LanguageGo: {
		compile:    []string{"go", "build", "-json", "./..."},
		test:       []string{"go", "test", "-v", "./..."},
		lint:       []string{"staticcheck", "-f", "json", "./..."},
		lintPrefix: "SA",
	},
	eval.LanguagePython: {
		compile:    []string{"python3", "-m", "py_compile", "eval_target.py"},
		test:       []string{"python3", "-m", "pytest", "-v"},
		lint:       []string{"ruff", "check", "--output-format=json", "."},
		lintPrefix: "RUF",
	},
	eval.LanguageTypeScript: {
		compile:    []string{"npx", "tsc", "--noEmit"},
		test:       []string{"npx", "jest"},
		lint:       []string{"npx", "eslint", "--format=json", "."},
		lintPrefix: "@typescript-eslint",
	},
}

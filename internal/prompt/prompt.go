// Package prompt renders case prompts written as Go text/template sources,
// so a case set can parameterize a shared prompt body (naming conventions,
// a common preamble) instead of repeating it verbatim across cases.
package prompt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/codecrucible/codecrucible/internal/logutil"
)

// TemplateData is passed into a rendered template.
type TemplateData struct {
	Task    string
	Context string
}

// ManagerInterface is the contract a case loader renders prompts through.
type ManagerInterface interface {
	LoadTemplate(name, source string) error
	BuildPrompt(templateName string, data TemplateData) (string, error)
	ListTemplates() []string
}

// Manager holds named in-memory templates.
type Manager struct {
	logger    logutil.LoggerInterface
	templates map[string]*template.Template
}

// NewManager creates an empty Manager.
func NewManager(logger logutil.LoggerInterface) *Manager {
	if logger == nil {
		logger = logutil.NewLogger(logutil.InfoLevel, nil, "[prompt] ")
	}
	return &Manager{logger: logger, templates: make(map[string]*template.Template)}
}

// LoadTemplate parses source and registers it under name.
func (m *Manager) LoadTemplate(name, source string) error {
	tmpl, err := template.New(name).Parse(source)
	if err != nil {
		return fmt.Errorf("prompt: parse template %q: %w", name, err)
	}
	m.templates[name] = tmpl
	return nil
}

// LoadTemplateFile reads path and registers it under its base filename.
func (m *Manager) LoadTemplateFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("prompt: read %s: %w", path, err)
	}
	return m.LoadTemplate(filepath.Base(path), string(content))
}

// BuildPrompt renders the named template against data.
func (m *Manager) BuildPrompt(templateName string, data TemplateData) (string, error) {
	tmpl, ok := m.templates[templateName]
	if !ok {
		return "", fmt.Errorf("prompt: template %q not loaded", templateName)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("prompt: execute template %q: %w", templateName, err)
	}
	return buf.String(), nil
}

// ListTemplates returns the names of every loaded template.
func (m *Manager) ListTemplates() []string {
	names := make([]string, 0, len(m.templates))
	for name := range m.templates {
		names = append(names, name)
	}
	return names
}

// RenderInline is a one-shot helper for a case prompt that embeds its own
// template source directly rather than referencing a named template.
func RenderInline(source string, data TemplateData) (string, error) {
	tmpl, err := template.New("inline").Parse(source)
	if err != nil {
		return "", fmt.Errorf("prompt: parse inline template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("prompt: execute inline template: %w", err)
	}
	return buf.String(), nil
}

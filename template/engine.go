package template

import (
	"fmt"
	"strings"
	"text/template"
)

// Engine renders section templates with variable substitution.
type Engine struct {
	funcs template.FuncMap
}

// NewEngine creates a new template engine with the built-in helpers.
func NewEngine() *Engine {
	return &Engine{
		funcs: defaultFuncs(),
	}
}

// Render executes the template with the given variables.
// An empty template renders to an empty string.
func (e *Engine) Render(tmpl string, variables map[string]any) (string, error) {
	if tmpl == "" || !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	required, _ := scanVariables(tmpl)
	if err := ValidateVariables(required, variables); err != nil {
		return "", err
	}

	t, err := template.New("section").Funcs(e.funcs).Parse(convertSyntax(tmpl))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrParse, err)
	}

	var buf strings.Builder
	if err := t.Execute(&buf, variables); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecute, err)
	}
	return buf.String(), nil
}

// Variables lists every variable the template references.
func (e *Engine) Variables(tmpl string) []string {
	required, optional := scanVariables(tmpl)
	return append(optional, required...)
}

// AddFunc adds a custom template function. Custom functions take Go template
// syntax arguments ({{double .name}}).
func (e *Engine) AddFunc(name string, fn any) {
	e.funcs[name] = fn
}

// ValidateVariables checks that all required variables are provided.
func ValidateVariables(required []string, provided map[string]any) error {
	for _, name := range required {
		if _, ok := provided[name]; !ok {
			return fmt.Errorf("%w: %s", ErrVariable, name)
		}
	}
	return nil
}

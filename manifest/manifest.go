package manifest

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/randalmurphal/ctxbudget/budget"
	"github.com/randalmurphal/ctxbudget/config"
	"github.com/randalmurphal/ctxbudget/template"
)

// Manifest is a decoded prompt description.
type Manifest struct {
	// Vars are the default template variables for every section.
	Vars map[string]any `json:"vars,omitempty" yaml:"vars,omitempty" toml:"vars,omitempty"`

	// Sections are assembled in this order.
	Sections []Section `json:"sections" yaml:"sections" toml:"sections"`

	dir string
}

// Section is one entry of a manifest. Exactly one of Content and File
// supplies the body; neither yields an empty section, which the allocator
// drops.
type Section struct {
	Key       string          `json:"key" yaml:"key" toml:"key"`
	Priority  budget.Priority `json:"priority" yaml:"priority" toml:"priority"`
	MaxTokens int             `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" toml:"max_tokens,omitempty"`
	Content   string          `json:"content,omitempty" yaml:"content,omitempty" toml:"content,omitempty"`
	File      string          `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
}

// Load reads and validates the manifest at path. Section files resolve
// against the manifest's directory.
func Load(path string) (*Manifest, error) {
	format, err := config.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes and validates a manifest. Section files resolve against the
// working directory.
func Parse(data []byte, format config.Format) (*Manifest, error) {
	var m Manifest
	if err := config.Decode(data, format, &m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks keys, priorities, caps and body sources.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Sections))
	for i, s := range m.Sections {
		if s.Key == "" {
			return fmt.Errorf("section %d: %w", i, ErrMissingKey)
		}
		if seen[s.Key] {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, s.Key)
		}
		seen[s.Key] = true

		if !s.Priority.Valid() {
			return fmt.Errorf("section %s: %w", s.Key, budget.ErrUnknownPriority)
		}
		if s.MaxTokens < 0 {
			return fmt.Errorf("section %s: %w", s.Key, budget.ErrNegativeMaxTokens)
		}
		if s.Content != "" && s.File != "" {
			return fmt.Errorf("%w: %s", ErrConflictingContent, s.Key)
		}
	}
	return nil
}

// BudgetSections reads and renders every body, returning allocator input in
// manifest order. vars override the manifest's own Vars. A nil engine uses
// template.NewEngine().
func (m *Manifest) BudgetSections(engine *template.Engine, vars map[string]any) ([]budget.Section, error) {
	if engine == nil {
		engine = template.NewEngine()
	}
	merged := make(map[string]any, len(m.Vars)+len(vars))
	maps.Copy(merged, m.Vars)
	maps.Copy(merged, vars)

	out := make([]budget.Section, 0, len(m.Sections))
	for _, s := range m.Sections {
		body, err := m.body(s)
		if err != nil {
			return nil, err
		}
		content, err := engine.Render(body, merged)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", s.Key, err)
		}
		out = append(out, budget.Section{
			Key:       s.Key,
			Content:   content,
			Priority:  s.Priority,
			MaxTokens: s.MaxTokens,
		})
	}
	return out, nil
}

func (m *Manifest) body(s Section) (string, error) {
	if s.File == "" {
		return s.Content, nil
	}
	path := s.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("section %s: %w", s.Key, err)
	}
	return string(data), nil
}

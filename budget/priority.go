package budget

import (
	"fmt"
	"strings"
)

// Priority is how aggressively a section may be shortened when the assembled
// context is over budget. The zero value is not a valid priority.
type Priority uint8

const (
	// Low sections are trimmed first and hardest.
	Low Priority = iota + 1

	// Medium sections are trimmed after Low.
	Medium

	// High sections are trimmed last among the trimmable tiers.
	High

	// Critical sections are never trimmed.
	Critical
)

var priorityNames = map[Priority]string{
	Low:      "low",
	Medium:   "medium",
	High:     "high",
	Critical: "critical",
}

// Priorities lists every valid tier from least to most protected.
func Priorities() []Priority {
	return []Priority{Low, Medium, High, Critical}
}

// ParsePriority converts a tier name ("low", "medium", "high", "critical")
// into a Priority. Matching is case-insensitive.
func ParsePriority(s string) (Priority, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for p, n := range priorityNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPriority, s)
}

// Valid reports whether p is one of the four known tiers.
func (p Priority) Valid() bool {
	_, ok := priorityNames[p]
	return ok
}

// String returns the tier name.
func (p Priority) String() string {
	if n, ok := priorityNames[p]; ok {
		return n
	}
	return fmt.Sprintf("Priority(%d)", uint8(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPriority, uint8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so JSON, YAML and TOML
// documents reject unknown tiers at decode time.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

package budget

import (
	"fmt"
	"maps"
)

// DefaultCeiling is the reference token budget for an assembled context.
const DefaultCeiling = 2000

// DefaultApproachingThreshold is the fraction of the ceiling at which
// IsApproachingLimit starts reporting true.
const DefaultApproachingThreshold = 0.8

// Weights maps a priority tier to the fraction of its tokens kept when the
// section is trimmed. Critical is never trimmed whatever its weight says.
type Weights map[Priority]float64

// DefaultWeights returns the standard retention table.
func DefaultWeights() Weights {
	return Weights{
		Critical: 1.0,
		High:     0.8,
		Medium:   0.5,
		Low:      0.3,
	}
}

// Config controls an Allocator.
type Config struct {
	// Ceiling is the target token total for the assembled context.
	// It is a soft limit: critical sections are kept whole even past it.
	Ceiling int

	// Weights is the retention fraction per tier. Nil uses DefaultWeights.
	Weights Weights

	// ApproachingThreshold is the default fraction of Ceiling used by
	// IsApproachingLimit. 0 uses DefaultApproachingThreshold.
	ApproachingThreshold float64
}

// DefaultConfig returns the reference configuration: a 2000 token ceiling,
// the default weights and a 0.8 approaching threshold.
func DefaultConfig() Config {
	return Config{
		Ceiling:              DefaultCeiling,
		Weights:              DefaultWeights(),
		ApproachingThreshold: DefaultApproachingThreshold,
	}
}

// withDefaults fills unset fields and copies the weights table so later
// changes by the caller cannot leak into an Allocator.
func (c Config) withDefaults() Config {
	w := DefaultWeights()
	maps.Copy(w, c.Weights)
	c.Weights = w
	if c.ApproachingThreshold == 0 {
		c.ApproachingThreshold = DefaultApproachingThreshold
	}
	return c
}

// Validate checks the ceiling, the threshold and every trimmable weight.
func (c Config) Validate() error {
	if c.Ceiling <= 0 {
		return fmt.Errorf("%w: ceiling must be positive, got %d", ErrInvalidConfig, c.Ceiling)
	}
	if c.ApproachingThreshold < 0 {
		return fmt.Errorf("%w: approaching threshold must not be negative, got %v",
			ErrInvalidConfig, c.ApproachingThreshold)
	}
	for p := range c.Weights {
		if !p.Valid() {
			return fmt.Errorf("%w: weight for %v: %w", ErrInvalidConfig, p, ErrUnknownPriority)
		}
	}
	for _, p := range []Priority{Low, Medium, High} {
		w, ok := c.Weights[p]
		if !ok {
			continue
		}
		if w <= 0 || w > 1 {
			return fmt.Errorf("%w: weight for %s must be in (0, 1], got %v", ErrInvalidConfig, p, w)
		}
	}
	return nil
}

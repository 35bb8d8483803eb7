package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/randalmurphal/ctxbudget/budget"
	"github.com/randalmurphal/ctxbudget/tokens"
	"github.com/randalmurphal/ctxbudget/truncate"
)

// Boundary sets accepted by File.Boundaries.
const (
	BoundariesDefault      = "default"
	BoundariesMultilingual = "multilingual"
)

// Environment variables read by Load.
const (
	EnvCeiling   = "CTXBUDGET_CEILING"
	EnvThreshold = "CTXBUDGET_THRESHOLD"
	EnvEncoding  = "CTXBUDGET_ENCODING"
)

// File is the on-disk allocator configuration.
type File struct {
	// Ceiling is the soft token ceiling for an assembled context.
	Ceiling int `json:"ceiling,omitempty" yaml:"ceiling,omitempty" toml:"ceiling,omitempty" jsonschema:"minimum=1,default=2000,description=Soft token ceiling for the assembled context"`

	// ApproachingThreshold is the fraction of Ceiling at which a context is
	// reported as approaching the limit. It must be positive: budget.Config
	// reads 0 as unset.
	ApproachingThreshold float64 `json:"approaching_threshold,omitempty" yaml:"approaching_threshold,omitempty" toml:"approaching_threshold,omitempty" jsonschema:"exclusiveMinimum=0,default=0.8,description=Fraction of the ceiling that counts as approaching the limit"`

	// Weights overrides retention fractions, keyed by tier name.
	Weights map[string]float64 `json:"weights,omitempty" yaml:"weights,omitempty" toml:"weights,omitempty" jsonschema:"description=Retention fraction per priority tier keyed by tier name"`

	// Encoding selects a tiktoken encoding. Empty uses the character estimate.
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty" toml:"encoding,omitempty" jsonschema:"description=Tiktoken encoding name such as cl100k_base; empty uses the character estimate"`

	// Boundaries selects the sentence break set used when truncating.
	Boundaries string `json:"boundaries,omitempty" yaml:"boundaries,omitempty" toml:"boundaries,omitempty" jsonschema:"enum=default,enum=multilingual,default=default"`

	// CharsPerToken is the character to token ratio of the estimate and of
	// the truncation budget.
	CharsPerToken int `json:"chars_per_token,omitempty" yaml:"chars_per_token,omitempty" toml:"chars_per_token,omitempty" jsonschema:"minimum=0,default=4"`
}

// Default returns the reference configuration.
func Default() *File {
	return &File{
		Ceiling:              budget.DefaultCeiling,
		ApproachingThreshold: budget.DefaultApproachingThreshold,
		Boundaries:           BoundariesDefault,
		CharsPerToken:        truncate.DefaultCharsPerToken,
	}
}

// Load reads path, decodes it over Default, applies environment overrides
// and validates the result. An empty path yields the defaults plus
// environment overrides.
func Load(path string) (*File, error) {
	f := Default()
	if path != "" {
		format, err := FormatFromPath(path)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := Decode(data, format, f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := f.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// ApplyEnv overrides fields from the environment variables that lookup
// reports as set.
func (f *File) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvCeiling); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvCeiling, err)
		}
		f.Ceiling = n
	}
	if v, ok := lookup(EnvThreshold); ok {
		t, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, EnvThreshold, err)
		}
		f.ApproachingThreshold = t
	}
	if v, ok := lookup(EnvEncoding); ok {
		f.Encoding = strings.TrimSpace(v)
	}
	return nil
}

// Validate checks every field without loading any encoding.
func (f *File) Validate() error {
	if f.ApproachingThreshold <= 0 {
		return fmt.Errorf("%w: approaching_threshold must be positive, got %v", ErrInvalid, f.ApproachingThreshold)
	}
	if f.CharsPerToken < 0 {
		return fmt.Errorf("%w: chars_per_token must not be negative, got %d", ErrInvalid, f.CharsPerToken)
	}
	if _, err := f.boundaries(); err != nil {
		return err
	}
	cfg, err := f.BudgetConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// BudgetConfig converts the file into an allocator config.
func (f *File) BudgetConfig() (budget.Config, error) {
	cfg := budget.Config{
		Ceiling:              f.Ceiling,
		ApproachingThreshold: f.ApproachingThreshold,
	}
	if len(f.Weights) > 0 {
		cfg.Weights = make(budget.Weights, len(f.Weights))
		for name, w := range f.Weights {
			p, err := budget.ParsePriority(name)
			if err != nil {
				return budget.Config{}, fmt.Errorf("%w: weights: %w", ErrInvalid, err)
			}
			cfg.Weights[p] = w
		}
	}
	return cfg, nil
}

// Counter returns the token counter the file selects.
func (f *File) Counter() (tokens.Counter, error) {
	if f.Encoding != "" {
		return tokens.NewTiktokenCounter(f.Encoding)
	}
	return tokens.NewEstimatingCounterWithRatio(float64(f.CharsPerToken)), nil
}

// Truncator returns a truncator using the file's boundary set and ratio.
func (f *File) Truncator() (*truncate.Truncator, error) {
	boundaries, err := f.boundaries()
	if err != nil {
		return nil, err
	}
	return truncate.New().
		WithBoundaries(boundaries).
		WithCharsPerToken(f.CharsPerToken), nil
}

// NewAllocator builds an allocator wired with the file's counter and
// truncator. A nil logger uses slog.Default().
func (f *File) NewAllocator(logger *slog.Logger) (*budget.Allocator, error) {
	cfg, err := f.BudgetConfig()
	if err != nil {
		return nil, err
	}
	counter, err := f.Counter()
	if err != nil {
		return nil, err
	}
	tr, err := f.Truncator()
	if err != nil {
		return nil, err
	}
	alloc, err := budget.NewAllocator(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return alloc.WithTruncator(tr).WithCounter(counter).WithLogger(logger), nil
}

func (f *File) boundaries() ([]string, error) {
	switch f.Boundaries {
	case "", BoundariesDefault:
		return truncate.DefaultBoundaries, nil
	case BoundariesMultilingual:
		return truncate.MultilingualBoundaries, nil
	default:
		return nil, fmt.Errorf("%w: unknown boundaries %q", ErrInvalid, f.Boundaries)
	}
}

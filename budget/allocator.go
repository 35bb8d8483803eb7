package budget

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/randalmurphal/ctxbudget/tokens"
	"github.com/randalmurphal/ctxbudget/truncate"
)

// Observer is notified after every successful allocation.
// It is called synchronously on the allocating goroutine.
type Observer interface {
	ObserveAllocation(res *Result)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(res *Result)

// ObserveAllocation calls f(res).
func (f ObserverFunc) ObserveAllocation(res *Result) {
	f(res)
}

// Allocator fits prioritized sections into a token budget.
// Configure it with the With* methods before sharing it; after that it holds
// no mutable state and is safe for concurrent use.
type Allocator struct {
	cfg       Config
	counter   tokens.Counter
	truncator *truncate.Truncator
	logger    *slog.Logger
	observer  Observer
}

// NewAllocator validates cfg and returns an allocator using the estimating
// counter and the default truncator.
func NewAllocator(cfg Config) (*Allocator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Allocator{
		cfg:       cfg.withDefaults(),
		counter:   tokens.NewEstimatingCounter(),
		truncator: truncate.New(),
		logger:    slog.Default(),
	}, nil
}

// WithCounter sets the counter used for section estimates. The allocator
// switches to a copy of its truncator using the same counter; a truncator
// passed to WithTruncator is never modified.
func (a *Allocator) WithCounter(counter tokens.Counter) *Allocator {
	a.counter = counter
	a.truncator = a.truncator.Clone().WithCounter(counter)
	return a
}

// WithTruncator replaces the section truncator. It keeps its own counter;
// call WithCounter afterwards to align the two.
func (a *Allocator) WithTruncator(tr *truncate.Truncator) *Allocator {
	a.truncator = tr
	return a
}

// WithLogger sets the logger. Nil restores slog.Default().
func (a *Allocator) WithLogger(logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	a.logger = logger
	return a
}

// WithObserver sets the allocation observer. Nil disables observation.
func (a *Allocator) WithObserver(o Observer) *Allocator {
	a.observer = o
	return a
}

// Config returns the effective configuration.
func (a *Allocator) Config() Config {
	return a.cfg
}

// Allocate fits sections into the ceiling.
//
// Empty sections are dropped. If the remaining total fits, every section is
// kept verbatim. Otherwise non-critical sections are trimmed from the least
// protected tier up, each to its tier's share of its own size (or its
// MaxTokens cap if smaller), stopping as soon as enough has been removed.
// Outcomes are always reported in input order.
func (a *Allocator) Allocate(sections []Section) (*Result, error) {
	outcomes := make([]Outcome, 0, len(sections))
	caps := make([]int, 0, len(sections))
	total := 0

	for _, s := range sections {
		if !s.Priority.Valid() {
			return nil, fmt.Errorf("%w: section %q has %v", ErrUnknownPriority, s.Key, s.Priority)
		}
		if s.MaxTokens < 0 {
			return nil, fmt.Errorf("%w: section %q has %d", ErrNegativeMaxTokens, s.Key, s.MaxTokens)
		}
		if s.Content == "" {
			continue
		}
		n := a.counter.Count(s.Content)
		outcomes = append(outcomes, Outcome{
			Key:            s.Key,
			Priority:       s.Priority,
			Content:        s.Content,
			OriginalTokens: n,
			FinalTokens:    n,
		})
		caps = append(caps, s.MaxTokens)
		total += n
	}

	res := &Result{
		Outcomes:    outcomes,
		TotalTokens: total,
		FinalTokens: total,
		Ceiling:     a.cfg.Ceiling,
	}

	if total > a.cfg.Ceiling {
		res.SlowPath = true
		a.trim(res, caps)
	}
	res.OverBudget = res.FinalTokens > res.Ceiling

	if res.OverBudget {
		a.logger.Warn("assembled context exceeds ceiling after trimming",
			slog.Int("final_tokens", res.FinalTokens),
			slog.Int("ceiling", res.Ceiling))
	}
	if a.observer != nil {
		a.observer.ObserveAllocation(res)
	}
	return res, nil
}

// trim shortens outcomes in place, lowest weight first.
func (a *Allocator) trim(res *Result, caps []int) {
	order := make([]int, 0, len(res.Outcomes))
	for i, o := range res.Outcomes {
		if o.Priority != Critical {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(x, y int) bool {
		return a.cfg.Weights[res.Outcomes[order[x]].Priority] < a.cfg.Weights[res.Outcomes[order[y]].Priority]
	})

	toTrim := res.TotalTokens - res.Ceiling
	a.logger.Debug("context over budget, trimming",
		slog.Int("total_tokens", res.TotalTokens),
		slog.Int("ceiling", res.Ceiling),
		slog.Int("to_trim", toTrim))

	for _, i := range order {
		if toTrim <= 0 {
			break
		}
		o := &res.Outcomes[i]

		keep := int(math.Floor(float64(o.OriginalTokens) * a.cfg.Weights[o.Priority]))
		if caps[i] > 0 && caps[i] < keep {
			keep = caps[i]
		}
		remove := o.OriginalTokens - keep
		if remove <= 0 {
			continue
		}

		o.Content, o.Truncated = a.truncator.Truncate(o.Content, keep)
		o.FinalTokens = a.counter.Count(o.Content)
		res.FinalTokens += o.FinalTokens - o.OriginalTokens
		toTrim -= remove

		a.logger.Debug("section truncated",
			slog.String("key", o.Key),
			slog.String("priority", o.Priority.String()),
			slog.Int("original_tokens", o.OriginalTokens),
			slog.Int("kept_tokens", keep))
	}
}

// Build allocates sections and returns the assembled context.
func (a *Allocator) Build(sections []Section) (string, error) {
	res, err := a.Allocate(sections)
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

// ApproachingLimit reports whether text uses at least threshold of the
// ceiling. A negative threshold is treated as 0, so it always reports true.
func (a *Allocator) ApproachingLimit(text string, threshold float64) bool {
	if threshold < 0 {
		threshold = 0
	}
	return float64(a.counter.Count(text)) >= float64(a.cfg.Ceiling)*threshold
}

// IsApproachingLimit is ApproachingLimit with the configured threshold.
func (a *Allocator) IsApproachingLimit(text string) bool {
	return a.ApproachingLimit(text, a.cfg.ApproachingThreshold)
}

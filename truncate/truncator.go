package truncate

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/randalmurphal/ctxbudget/tokens"
)

// DefaultSuffix marks content that was cut mid-thought.
const DefaultSuffix = "..."

// DefaultCharsPerToken converts a token ceiling into a character budget.
const DefaultCharsPerToken = 4

// DefaultMinBreakRatio is how far into the character budget a natural break
// must sit before it is used instead of a hard cut.
const DefaultMinBreakRatio = 0.6

// DefaultBoundaries are the natural break markers: end of sentence and end of line.
var DefaultBoundaries = []string{". ", "\n"}

// MultilingualBoundaries extends DefaultBoundaries with exclamation and
// question marks plus the CJK full-width terminators.
var MultilingualBoundaries = []string{". ", "! ", "? ", "\n", "。", "！", "？"}

// Truncator shrinks text to fit within a token ceiling, preferring to cut at
// a sentence or line boundary.
type Truncator struct {
	counter       tokens.Counter
	charsPerToken int
	suffix        string
	boundaries    []string
	minBreakRatio float64
}

// New creates a truncator with the default estimating counter, "..." suffix
// and sentence/newline boundaries.
func New() *Truncator {
	return &Truncator{
		counter:       tokens.NewEstimatingCounter(),
		charsPerToken: DefaultCharsPerToken,
		suffix:        DefaultSuffix,
		boundaries:    DefaultBoundaries,
		minBreakRatio: DefaultMinBreakRatio,
	}
}

// WithCounter sets a custom token counter used for the fits-already check.
func (t *Truncator) WithCounter(counter tokens.Counter) *Truncator {
	t.counter = counter
	return t
}

// WithSuffix sets the suffix appended after a hard cut.
func (t *Truncator) WithSuffix(suffix string) *Truncator {
	t.suffix = suffix
	return t
}

// WithBoundaries replaces the break markers. The first rune of a marker is
// kept in the output; the rest is discarded. An empty list disables natural
// breaks entirely.
func (t *Truncator) WithBoundaries(boundaries []string) *Truncator {
	t.boundaries = boundaries
	return t
}

// WithCharsPerToken sets the ratio used to turn maxTokens into a character
// budget. Values <= 0 are ignored.
func (t *Truncator) WithCharsPerToken(n int) *Truncator {
	if n > 0 {
		t.charsPerToken = n
	}
	return t
}

// Truncate reduces text to roughly maxTokens tokens.
// Returns the text and whether it was cut. Text that already fits is returned
// unchanged. Negative maxTokens is treated as 0.
func (t *Truncator) Truncate(text string, maxTokens int) (string, bool) {
	if text == "" {
		return "", false
	}
	if maxTokens < 0 {
		maxTokens = 0
	}
	if t.counter.FitsInLimit(text, maxTokens) {
		return text, false
	}

	prefix := runePrefix(text, t.charBudget(text, maxTokens))
	if cut := t.breakPoint(prefix); cut > 0 {
		return prefix[:cut], true
	}
	trimmed := strings.TrimSpace(prefix)
	if out := trimmed + t.suffix; t.counter.Count(out) <= t.counter.Count(text) {
		return out, true
	}
	return trimmed, true
}

// charBudget converts maxTokens into a rune count shorter than text. When
// charsPerToken would keep all of text, the counter rates it denser than that
// ratio, and the counter's own runes-per-token for text is used instead.
func (t *Truncator) charBudget(text string, maxTokens int) int {
	budget := maxTokens * t.charsPerToken
	runes := utf8.RuneCountInString(text)
	if budget < runes {
		return budget
	}
	count := t.counter.Count(text)
	if count <= maxTokens {
		return runes - 1
	}
	return maxTokens * runes / count
}

// breakPoint returns the byte offset just past the latest boundary rune in
// prefix, or -1 when no boundary sits at or beyond minBreakRatio of it.
func (t *Truncator) breakPoint(prefix string) int {
	best, bestLen := -1, 0
	for _, b := range t.boundaries {
		if b == "" {
			continue
		}
		if idx := strings.LastIndex(prefix, b); idx > best {
			_, size := utf8.DecodeRuneInString(b)
			best, bestLen = idx, size
		}
	}
	if best < 0 {
		return -1
	}

	runesBefore := utf8.RuneCountInString(prefix[:best])
	total := utf8.RuneCountInString(prefix)
	if float64(runesBefore) < t.minBreakRatio*float64(total) {
		return -1
	}
	return best + bestLen
}

// runePrefix returns the first n runes of s.
func runePrefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Clone returns a copy that can be reconfigured without affecting t.
func (t *Truncator) Clone() *Truncator {
	c := *t
	c.boundaries = slices.Clone(t.boundaries)
	return &c
}

// Suffix returns the truncator's suffix.
func (t *Truncator) Suffix() string {
	return t.suffix
}

// Boundaries returns the truncator's break markers.
func (t *Truncator) Boundaries() []string {
	return t.boundaries
}

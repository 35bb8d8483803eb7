package tokens

import (
	"math"
	"unicode/utf8"
)

// DefaultCharsPerToken is the default character-to-token ratio.
// Approximately 4 characters equals 1 token for English text.
const DefaultCharsPerToken = 4.0

// Counter estimates token counts for text.
type Counter interface {
	// Count estimates the number of tokens in the given text.
	Count(text string) int

	// FitsInLimit returns true if the text fits within the token limit.
	FitsInLimit(text string, limit int) bool
}

// EstimatingCounter uses a character-to-token ratio for estimation.
// It is an approximation, not a tokenizer: use it for over/under budget
// decisions, never for exact billing.
type EstimatingCounter struct {
	// CharsPerToken is the average characters per token.
	// Default is 4, which works well for English text.
	CharsPerToken float64
}

// NewEstimatingCounter creates a token counter with default settings.
func NewEstimatingCounter() *EstimatingCounter {
	return &EstimatingCounter{
		CharsPerToken: DefaultCharsPerToken,
	}
}

// NewEstimatingCounterWithRatio creates a token counter with a custom ratio.
// If charsPerToken is <= 0, the default ratio (4.0) is used.
func NewEstimatingCounterWithRatio(charsPerToken float64) *EstimatingCounter {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &EstimatingCounter{
		CharsPerToken: charsPerToken,
	}
}

// Count estimates the number of tokens in the given text as
// ceil(runes / CharsPerToken). Empty text is 0 tokens.
func (c *EstimatingCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	ratio := c.CharsPerToken
	if ratio <= 0 {
		ratio = DefaultCharsPerToken
	}

	// Runes, not bytes: "日本語" is three characters.
	runeCount := utf8.RuneCountInString(text)
	return int(math.Ceil(float64(runeCount) / ratio))
}

// FitsInLimit returns true if the text fits within the token limit.
func (c *EstimatingCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

var defaultCounter = NewEstimatingCounter()

// EstimateTokens is a convenience function using the default estimator.
func EstimateTokens(text string) int {
	return defaultCounter.Count(text)
}

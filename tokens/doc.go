// Package tokens provides token counting for LLM prompt budgeting.
//
// Token estimation is based on the rule-of-thumb that approximately 4 characters
// equals 1 token for English text. The estimate is ceil(runes / 4), so it is
// cheap, deterministic, and never zero for non-empty text.
//
// # Counter
//
// The Counter interface provides token counting methods:
//
//	counter := tokens.NewEstimatingCounter()
//	count := counter.Count("Hello, world!")     // 4 tokens
//	fits := counter.FitsInLimit("text", 1000)   // true if <= 1000 tokens
//
// For one-off counting, use the convenience function:
//
//	count := tokens.EstimateTokens("Hello, world!")
//
// # Exact Counting
//
// When an exact count for a specific encoding matters, TiktokenCounter wraps a
// BPE tokenizer behind the same interface:
//
//	counter, err := tokens.NewTiktokenCounter("cl100k_base")
//
// Estimates and BPE counts will differ; compare either against a budget, never
// against each other.
package tokens

// Package ctxbudget fits labeled, prioritized prompt sections into a token
// budget before they are sent to a language model.
//
// Each subpackage can be used independently:
//
//   - tokens: Token estimation (ceil(runes/4)) and exact tiktoken counts
//   - truncate: Sentence-aware truncation to a token ceiling
//   - budget: Priority tiers and the section allocator
//   - template: Section templates with {{variable}} syntax
//   - manifest: Ordered section lists loaded from YAML, JSON or TOML
//   - config: Allocator settings, env overrides and hot reload
//   - metrics: Prometheus collector for allocations
//
// # Quick Start
//
// Assemble a context:
//
//	import "github.com/randalmurphal/ctxbudget/budget"
//	text, err := budget.BuildContext([]budget.Section{
//	    {Key: "persona", Content: persona, Priority: budget.Critical},
//	    {Key: "history", Content: history, Priority: budget.Low},
//	})
//
// Check how close a prompt is to the ceiling:
//
//	if budget.IsApproachingLimit(text) {
//	    // summarize older history
//	}
//
// Token estimation:
//
//	import "github.com/randalmurphal/ctxbudget/tokens"
//	n := tokens.EstimateTokens("Hello, World!") // 4
//
// # Ceiling
//
// The ceiling is soft. Critical sections are never trimmed, so a context made
// mostly of critical content can end up over budget; Result.OverBudget
// reports that case.
//
// The ctxbudget command (cmd/ctxbudget) exposes the same operations on the
// command line.
package ctxbudget

package budget

import "strings"

// Separator joins sections in the assembled context.
const Separator = "\n\n"

// Section is one labeled, prioritized block of prompt text.
type Section struct {
	// Key labels the section in results and logs. It does not need to be
	// unique; outcomes are matched to sections by position.
	Key string `json:"key"`

	// Content is the text. Empty content drops the section entirely.
	Content string `json:"content"`

	// Priority decides how hard the section is trimmed when over budget.
	Priority Priority `json:"priority"`

	// MaxTokens optionally caps the section when it is trimmed.
	// 0 means no cap.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// Outcome is what happened to one non-empty section.
type Outcome struct {
	Key            string   `json:"key"`
	Priority       Priority `json:"priority"`
	Content        string   `json:"content"`
	OriginalTokens int      `json:"original_tokens"`
	FinalTokens    int      `json:"final_tokens"`
	Truncated      bool     `json:"truncated"`
}

// Result is the outcome of one allocation, in input order.
type Result struct {
	// Outcomes has one entry per non-empty input section, in input order.
	Outcomes []Outcome `json:"outcomes"`

	// TotalTokens is the estimate before any trimming.
	TotalTokens int `json:"total_tokens"`

	// FinalTokens is the sum of per-section estimates after trimming.
	FinalTokens int `json:"final_tokens"`

	// Ceiling is the budget the allocation targeted.
	Ceiling int `json:"ceiling"`

	// SlowPath is true when TotalTokens exceeded Ceiling and trimming ran.
	SlowPath bool `json:"slow_path"`

	// OverBudget is true when FinalTokens still exceeds Ceiling, which
	// happens when critical content alone is too large.
	OverBudget bool `json:"over_budget"`
}

// Text joins every outcome's content with a blank line.
func (r *Result) Text() string {
	if len(r.Outcomes) == 0 {
		return ""
	}
	parts := make([]string, len(r.Outcomes))
	for i, o := range r.Outcomes {
		parts[i] = o.Content
	}
	return strings.Join(parts, Separator)
}

// Truncated returns the keys of sections that were shortened, in input order.
func (r *Result) Truncated() []string {
	var keys []string
	for _, o := range r.Outcomes {
		if o.Truncated {
			keys = append(keys, o.Key)
		}
	}
	return keys
}

// TokensTrimmed is the estimated number of tokens removed by trimming.
func (r *Result) TokensTrimmed() int {
	return r.TotalTokens - r.FinalTokens
}

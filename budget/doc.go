// Package budget assembles prioritized prompt sections into a single context
// string that targets a token ceiling.
//
// Callers describe each block of the prompt as a Section with a priority
// tier. Critical sections (a system persona, say) are never shortened; High,
// Medium and Low sections keep 80%, 50% and 30% of their size respectively
// when the total is over budget. Trimming stops as soon as enough tokens have
// been removed, so less protected sections absorb the cut first.
//
// # Basic Usage
//
//	ctx, err := budget.BuildContext([]budget.Section{
//	    {Key: "persona", Content: persona, Priority: budget.Critical},
//	    {Key: "triggers", Content: triggers, Priority: budget.High},
//	    {Key: "history", Content: history, Priority: budget.Low, MaxTokens: 400},
//	})
//
// # Custom Ceiling
//
//	cfg := budget.DefaultConfig()
//	cfg.Ceiling = 8000
//	alloc, err := budget.NewAllocator(cfg)
//	res, err := alloc.Allocate(sections)
//	fmt.Println(res.Truncated(), res.FinalTokens)
//
// # Soft Ceiling
//
// The ceiling is a target. When critical content alone exceeds it the result
// is returned anyway with Result.OverBudget set.
package budget

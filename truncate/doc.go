// Package truncate shrinks a block of prompt text to fit a token ceiling.
//
// The token ceiling is turned into a character budget (4 characters per
// token) and the text is cut to that many characters. If the cut prefix
// contains a natural break (". " or a newline) in its last 40%, the text ends
// there. Otherwise the prefix is trimmed and "..." is appended so a reader
// knows the content stopped mid-thought.
//
// # Basic Usage
//
//	result := truncate.ToTokens(longText, 500)
//
// Or with a configured truncator:
//
//	tr := truncate.New().WithBoundaries(truncate.MultilingualBoundaries)
//	result, truncated := tr.Truncate(text, maxTokens)
//
// Text that already fits is returned unchanged, so truncating twice with the
// same limit is a no-op.
//
// # UTF-8 Support
//
// Budgets are counted in runes, never bytes, so multi-byte characters are not
// split.
package truncate

package truncate

var defaultTruncator = New()

// ToTokens truncates text to fit within the specified token limit using the
// default truncator.
func ToTokens(text string, maxTokens int) string {
	result, _ := defaultTruncator.Truncate(text, maxTokens)
	return result
}

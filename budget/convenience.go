package budget

var defaultAllocator = func() *Allocator {
	a, err := NewAllocator(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return a
}()

// BuildContext assembles sections with the default 2000 token ceiling.
func BuildContext(sections []Section) (string, error) {
	return defaultAllocator.Build(sections)
}

// IsApproachingLimit reports whether text uses at least 80% of the default
// ceiling.
func IsApproachingLimit(text string) bool {
	return defaultAllocator.IsApproachingLimit(text)
}

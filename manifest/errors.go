package manifest

import "errors"

var (
	// ErrMissingKey is returned for a section with no key.
	ErrMissingKey = errors.New("section key is required")

	// ErrDuplicateKey is returned when two sections share a key.
	ErrDuplicateKey = errors.New("duplicate section key")

	// ErrConflictingContent is returned when a section sets both content and file.
	ErrConflictingContent = errors.New("section sets both content and file")
)

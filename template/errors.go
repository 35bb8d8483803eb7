package template

import "errors"

// Sentinel errors for template operations.
var (
	// ErrParse is returned when the template fails to parse.
	ErrParse = errors.New("template parse error")

	// ErrExecute is returned when template execution fails.
	ErrExecute = errors.New("template execution error")

	// ErrVariable is returned when a referenced variable is missing.
	ErrVariable = errors.New("required variable missing")
)

package budget

import "errors"

// Sentinel errors for allocation.
var (
	// ErrUnknownPriority is returned for a priority outside the four known tiers.
	ErrUnknownPriority = errors.New("unknown priority")

	// ErrNegativeMaxTokens is returned when a section declares a negative cap.
	ErrNegativeMaxTokens = errors.New("negative max tokens")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid budget config")
)

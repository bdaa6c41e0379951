package random

import "errors"

var (
	// ErrUnconfigured is returned when bytes are requested before Initialize.
	ErrUnconfigured = errors.New("random generator is not initialized")
	// ErrEntropy is returned when the entropy source fails.
	ErrEntropy = errors.New("entropy source failed")
)

package trajectory

import "errors"

// Sentinel errors for the engine's failure taxonomy. Callers match with
// errors.Is and map to their own status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

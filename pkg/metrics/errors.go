package metrics

import "errors"

// Sentinel error kinds for this package.
var (
	ErrAlreadyInitialized = errors.New("metrics already initialized")
)

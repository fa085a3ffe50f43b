package snapshot

import "errors"

// Sentinel kinds for snapshot errors.
var (
	ErrUnknownVersion = errors.New("unknown snapshot schema version")
	ErrReadGoals      = errors.New("read goals failed")
	ErrPersist        = errors.New("persist snapshot failed")
)

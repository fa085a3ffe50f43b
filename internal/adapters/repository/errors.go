package repository

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	ErrOpenStore = errors.New("open snapshot store failed")
	ErrClosed    = errors.New("snapshot store closed")
)

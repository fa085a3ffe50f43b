package goalstore

import "errors"

// Sentinel kinds for goal store errors.
var (
	ErrOpenStore = errors.New("open goal store failed")
	ErrWatch     = errors.New("watch goal store failed")
)

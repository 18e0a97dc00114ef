package store

import "errors"

// Sentinel errors for report storage.
var (
	ErrNotFound  = errors.New("report not found")
	ErrMissingID = errors.New("report has no id")
)

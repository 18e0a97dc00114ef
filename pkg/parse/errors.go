package parse

import "errors"

// Sentinel errors for the JSON strategies.
var (
	ErrEmptyPayload = errors.New("empty payload")
	ErrNotJSON      = errors.New("payload is not JSON")
	ErrNoFence      = errors.New("no fenced code block")
	ErrNoRecords    = errors.New("no entity records found")
)

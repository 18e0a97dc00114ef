package coverage

import "errors"

// Sentinel errors for coverage operations.
var (
	ErrUnknownNode        = errors.New("unknown coverage node")
	ErrDuplicateNode      = errors.New("duplicate coverage node id")
	ErrIncompleteChildren = errors.New("coverage node has incomplete children")
	ErrInvalidPlan        = errors.New("invalid decomposition plan")
	ErrAlreadyApplied     = errors.New("decomposition plan already applied")
	ErrNegativeCount      = errors.New("entity count must not be negative")
)

package systems

import "errors"

// Rejections are never fatal: the offending operation is discarded and the
// grid is left untouched. Callers that care can check with errors.Is.
var (
	ErrNotFound    = errors.New("particle type not found")
	ErrOutOfBounds = errors.New("cell out of bounds")
	ErrInvalidRule = errors.New("invalid interaction rule")
)

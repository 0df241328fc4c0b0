package types

import "errors"

// Sentinel errors shared across the pipeline. Callers match them with
// errors.Is after any amount of wrapping.
var (
	// ErrDimensionMismatch indicates a probability grid whose data length
	// does not agree with its declared width and height.
	ErrDimensionMismatch = errors.New("grid dimension mismatch")

	// ErrInvalidExtent indicates a non-finite or non-positive image extent.
	ErrInvalidExtent = errors.New("invalid image extent")
)

package spv

import "github.com/pkg/errors"

// Sentinel errors of the spv package. Callers match them with errors.Is; functions
// in this package wrap them with the offending sizes or indices.
var (
	// ErrBadShape is returned for negative dimensions or arrays whose length does not
	// agree with the declared shape.
	ErrBadShape = errors.New("spv: invalid shape")

	// ErrMalformed signals compressed arrays that violate the CSR/CSC layout
	// (offsets not starting at zero, decreasing, or not ending at nnz).
	ErrMalformed = errors.New("spv: malformed compressed arrays")

	// ErrIndexOutOfRange signals a stored row or column index outside the matrix.
	ErrIndexOutOfRange = errors.New("spv: index out of range")

	// ErrUnsupportedDtype is returned when an npy file holds a dtype we cannot decode.
	ErrUnsupportedDtype = errors.New("spv: unsupported npy dtype")
)

package rsl

import "github.com/pkg/errors"

// Configuration errors. They are returned at call entry, before any work array is
// allocated, and never come with a result. Match them with errors.Is.
var (
	// ErrStepSize is returned when the step size is unset, non-positive or not finite.
	// There is no line search to fall back on.
	ErrStepSize = errors.New("rsl: step size must be set to a positive finite value")

	// ErrNegativePenalty is returned for a negative L1 or L2 weight.
	ErrNegativePenalty = errors.New("rsl: regularization weight must be non-negative")

	// ErrMaxIter is returned when the epoch budget is not positive.
	ErrMaxIter = errors.New("rsl: max_iter must be positive")

	// ErrTolerance is returned for a negative or NaN tolerance.
	ErrTolerance = errors.New("rsl: tolerance must be non-negative")

	// ErrDimensionMismatch is returned when b or X0 do not match the design matrix.
	ErrDimensionMismatch = errors.New("rsl: dimension mismatch")

	// ErrEmptyProblem is returned for a nil matrix or one without samples or features.
	ErrEmptyProblem = errors.New("rsl: empty problem")

	// ErrUnknownLoss is returned by NewLoss for an unrecognised loss name.
	ErrUnknownLoss = errors.New("rsl: unknown loss")

	// ErrUnknownAlgorithm is returned by Solve for an unrecognised algorithm name.
	ErrUnknownAlgorithm = errors.New("rsl: unknown algorithm")

	// ErrNoTrace is returned when a trace is requested from a result recorded without one.
	ErrNoTrace = errors.New("rsl: result has no trace")
)

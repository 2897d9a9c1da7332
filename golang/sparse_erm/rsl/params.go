package rsl

import (
	"math"

	"github.com/pkg/errors"
	"github.com/tarstars/sparse_erm/golang/sparse_erm/spv"
)

// Params holds the scalar configuration shared by the engines.
type Params struct {
	Alpha    float64   // L2 weight, applied as alpha*x[j] in the gradient
	Beta     float64   // L1 weight, applied through the proximal operator
	StepSize float64   // Required; zero means unset and is rejected
	MaxIter  int       // Maximum number of epochs
	Tol      float64   // Stop SAGA once Σ|x - x_prev| over an epoch is below Tol
	X0       []float64 // Starting point, zero vector when nil; never modified
	Seed     int64     // Seed of the engine-local generator that shuffles every epoch
	Trace    bool      // Record per-epoch objective values and timings
	Verbose  bool      // Log per-epoch progress
	Workers  int       // SAGA only: more than one selects the asynchronous variant

	// Callback, when set, is called after every epoch with the epoch index and the
	// current coefficients. The slice is owned by the engine and must not be retained.
	Callback func(epoch int, x []float64)
}

// NewDefaultParams returns the defaults of the SAGA solver. The step size is left
// unset on purpose: pick one with SAGAStepSize or BCDStepSize.
func NewDefaultParams() Params {
	return Params{
		MaxIter: 500,
		Tol:     1e-6,
		Seed:    1,
		Workers: 1,
	}
}

// validate checks everything that can be checked before allocating work arrays.
func (p Params) validate(a *spv.Matrix, b []float64) error {
	if a == nil || a.Rows == nil {
		return errors.Wrap(ErrEmptyProblem, "nil design matrix")
	}
	nSamples, nFeatures := a.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.Wrapf(ErrEmptyProblem, "design matrix is %dx%d", nSamples, nFeatures)
	}
	if p.StepSize == 0 {
		return errors.Wrap(ErrStepSize, "step size not provided")
	}
	if !(p.StepSize > 0) || math.IsInf(p.StepSize, 1) {
		return errors.Wrapf(ErrStepSize, "got %g", p.StepSize)
	}
	if p.Alpha < 0 || math.IsNaN(p.Alpha) {
		return errors.Wrapf(ErrNegativePenalty, "alpha = %g", p.Alpha)
	}
	if p.Beta < 0 || math.IsNaN(p.Beta) {
		return errors.Wrapf(ErrNegativePenalty, "beta = %g", p.Beta)
	}
	if p.MaxIter <= 0 {
		return errors.Wrapf(ErrMaxIter, "got %d", p.MaxIter)
	}
	if p.Tol < 0 || math.IsNaN(p.Tol) {
		return errors.Wrapf(ErrTolerance, "got %g", p.Tol)
	}
	if len(b) != nSamples {
		return errors.Wrapf(ErrDimensionMismatch, "%d labels for %d samples", len(b), nSamples)
	}
	if p.X0 != nil && len(p.X0) != nFeatures {
		return errors.Wrapf(ErrDimensionMismatch, "x0 has %d coefficients for %d features", len(p.X0), nFeatures)
	}
	return nil
}

// initialPoint returns a private copy of x0, or zeros.
func (p Params) initialPoint(nFeatures int) []float64 {
	x := make([]float64, nFeatures)
	copy(x, p.X0)
	return x
}

package rsl

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Regularizer is a separable penalty exposed through its proximal operator.
type Regularizer interface {
	// Prox returns argmin_u penalty(u)*step + 0.5*(u-v)² for one coordinate.
	Prox(v, step float64) float64
	// Value returns the penalty of a whole coefficient vector.
	Value(x []float64) float64
}

// ZeroPenalty is the absent penalty; its prox is the identity.
type ZeroPenalty struct{}

func (ZeroPenalty) Prox(v, _ float64) float64 {
	return v
}

func (ZeroPenalty) Value(_ []float64) float64 {
	return 0
}

// L1Penalty is Beta*‖x‖₁; its prox is the soft threshold at Beta*step.
type L1Penalty struct {
	Beta float64
}

func (p L1Penalty) Prox(v, step float64) float64 {
	t := p.Beta * step
	return math.Max(v-t, 0) - math.Max(-v-t, 0)
}

func (p L1Penalty) Value(x []float64) float64 {
	return p.Beta * floats.Norm(x, 1)
}

// NewPenalty selects the prox for an L1 weight: identity for zero, soft threshold
// for positive weights. A negative weight has no prox and is a configuration error.
func NewPenalty(beta float64) (Regularizer, error) {
	switch {
	case beta > 0:
		return L1Penalty{Beta: beta}, nil
	case beta == 0:
		return ZeroPenalty{}, nil
	}
	return nil, errors.Wrapf(ErrNegativePenalty, "beta = %g", beta)
}

// Package rsl solves regularized empirical risk minimization problems over sparse
// design matrices with SAGA and randomized coordinate descent.
package rsl

import (
	"github.com/pkg/errors"

	"github.com/tarstars/sparse_erm/golang/sparse_erm/spv"
)

// Algorithm names accepted by Solve.
const (
	AlgorithmSAGA = "saga"
	AlgorithmBCD  = "bcd"
)

// Solve runs the named engine with a loss known only through its interface. The
// built-in losses are unwrapped so the engine loop is compiled for the concrete type;
// any other implementation goes through the interface.
func Solve(algorithm string, a *spv.Matrix, b []float64, loss Loss, params Params) (*OptimizeResult, error) {
	switch l := loss.(type) {
	case SquaredLoss:
		return solveWith(algorithm, a, b, l, params)
	case LogLoss:
		return solveWith(algorithm, a, b, l, params)
	case HuberLoss:
		return solveWith(algorithm, a, b, l, params)
	case nil:
		return nil, errors.Wrap(ErrUnknownLoss, "nil loss")
	}
	return solveWith(algorithm, a, b, loss, params)
}

func solveWith[L Loss](algorithm string, a *spv.Matrix, b []float64, loss L, params Params) (*OptimizeResult, error) {
	switch algorithm {
	case AlgorithmSAGA:
		return MinimizeSAGA(a, b, loss, params)
	case AlgorithmBCD:
		return MinimizeBCD(a, b, loss, params)
	}
	return nil, errors.Wrapf(ErrUnknownAlgorithm, "%q", algorithm)
}

package rsl

import (
	"gonum.org/v1/gonum/floats"

	"github.com/tarstars/sparse_erm/golang/sparse_erm/spv"
)

// Objective evaluates (1/n)·Σ loss(A_i·x, b_i) + (alpha/2)·‖x‖² + penalty(x), the
// function whose gradient both engines follow.
func Objective[L Loss](a *spv.CSR, b, x []float64, loss L, alpha float64, penalty Regularizer) float64 {
	sum := 0.0
	for i := 0; i < a.NRows; i++ {
		sum += loss.Value(a.RowDot(i, x), b[i])
	}
	value := sum/float64(a.NRows) + 0.5*alpha*floats.Dot(x, x)
	if penalty != nil {
		value += penalty.Value(x)
	}
	return value
}

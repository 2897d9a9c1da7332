package rsl

import (
	"gonum.org/v1/gonum/floats"

	"github.com/tarstars/sparse_erm/golang/sparse_erm/spv"
)

// SAGAStepSize returns 1/(3L) with L = curvature·max_i ‖A_i‖² + alpha, the step
// for which SAGA is known to converge. It is a helper for callers; the engines never
// pick a step on their own.
func SAGAStepSize(a *spv.Matrix, loss Loss, alpha float64) float64 {
	lipschitz := loss.Curvature()*floats.Max(a.Rows.RowNormsSquared()) + alpha
	if lipschitz == 0 {
		return 1
	}
	return 1 / (3 * lipschitz)
}

// BCDStepSize returns 1/max_j L_j with L_j = curvature·‖A_{:,j}‖²/n + alpha, the
// largest step that keeps every coordinate update a descent step.
func BCDStepSize(a *spv.Matrix, loss Loss, alpha float64) float64 {
	nSamples, _ := a.Dims()
	lipschitz := loss.Curvature()*floats.Max(a.Cols.ColNormsSquared())/float64(nSamples) + alpha
	if lipschitz == 0 {
		return 1
	}
	return 1 / lipschitz
}

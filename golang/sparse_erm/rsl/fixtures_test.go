package rsl

import (
	"gonum.org/v1/gonum/mat"

	"github.com/tarstars/sparse_erm/golang/sparse_erm/spv"
)

// zeroLoss has a vanishing derivative everywhere, so no engine step may move x.
type zeroLoss struct{}

func (zeroLoss) Value(_, _ float64) float64 { return 0 }
func (zeroLoss) Deriv(_, _ float64) float64 { return 0 }
func (zeroLoss) Curvature() float64         { return 0 }

// ridgeProblem is a 6×3 sparse least-squares problem with full column rank.
func ridgeProblem() (*spv.Matrix, []float64) {
	a := spv.FromRows([][]float64{
		{1, 0, 2},
		{0, 1, 0},
		{3, 0, 0},
		{0, 2, 1},
		{1, 1, 0},
		{0, 0, 1},
	})
	return a, []float64{1, 2, 0.5, -1, 0, 3}
}

// smallProblem is the 5×3 least-squares problem used for the descent checks.
func smallProblem() (*spv.Matrix, []float64) {
	a := spv.FromRows([][]float64{
		{1, 0, 0},
		{0, 2, 1},
		{1, 0, 3},
		{0, 1, 0},
		{2, 0, 1},
	})
	return a, []float64{1, -1, 2, 0.5, 1}
}

// ridgeSolution returns the minimizer of (1/2n)‖Ax-b‖² + (alpha/2)‖x‖², that is
// (AᵀA + n·alpha·I)⁻¹Aᵀb.
func ridgeSolution(a *spv.Matrix, b []float64, alpha float64) []float64 {
	nSamples, nFeatures := a.Dims()
	dense := a.Dense()

	var gram mat.Dense
	gram.Mul(dense.T(), dense)
	for j := 0; j < nFeatures; j++ {
		gram.Set(j, j, gram.At(j, j)+float64(nSamples)*alpha)
	}

	var atb mat.VecDense
	atb.MulVec(dense.T(), mat.NewVecDense(nSamples, b))

	var x mat.VecDense
	if err := x.SolveVec(&gram, &atb); err != nil {
		panic(err)
	}
	return x.RawVector().Data
}

func solverParams(step float64) Params {
	params := NewDefaultParams()
	params.StepSize = step
	return params
}

package rsl

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/tarstars/sparse_erm/golang/sparse_erm/spv"
)

// MinimizeBCD minimizes the same objective as MinimizeSAGA by randomized coordinate
// descent. Each epoch visits every feature once in a fresh random order; the gradient of
// one coordinate is read from the cached predictions Ax over the CSC column, and Ax is
// patched after every coordinate step.
//
// Ax is recomputed from scratch through the CSR view once per epoch, right after the
// first coordinate of the pass, to stop rounding errors from accumulating.
//
// The engine always runs params.MaxIter epochs. params.Tol is validated but not
// consulted, so Success is always false and Certificate is nil.
func MinimizeBCD[L Loss](a *spv.Matrix, b []float64, loss L, params Params) (*OptimizeResult, error) {
	if err := params.validate(a, b); err != nil {
		return nil, err
	}
	if a.Cols == nil {
		return nil, errors.Wrap(ErrEmptyProblem, "design matrix has no column view")
	}
	penalty, err := NewPenalty(params.Beta)
	if err != nil {
		return nil, err
	}
	if l1, ok := penalty.(L1Penalty); ok {
		return newBCDSolver(a, b, loss, l1, params).run(), nil
	}
	return newBCDSolver(a, b, loss, ZeroPenalty{}, params).run(), nil
}

type bcdSolver[L Loss, R Regularizer] struct {
	rows    *spv.CSR
	cols    *spv.CSC
	b       []float64
	loss    L
	penalty R
	params  Params

	x    []float64
	ax   []float64
	step float64
}

func newBCDSolver[L Loss, R Regularizer](a *spv.Matrix, b []float64, loss L, penalty R, params Params) *bcdSolver[L, R] {
	nSamples, nFeatures := a.Dims()
	s := &bcdSolver[L, R]{
		rows:    a.Rows,
		cols:    a.Cols,
		b:       b,
		loss:    loss,
		penalty: penalty,
		params:  params,
		x:       params.initialPoint(nFeatures),
		ax:      make([]float64, nSamples),
		step:    params.StepSize,
	}
	s.rows.MulVec(s.ax, s.x)
	return s
}

// epoch performs one coordinate step per feature, in the given order.
func (s *bcdSolver[L, R]) epoch(order []int) {
	cols, x, ax := s.cols, s.x, s.ax
	n := float64(cols.NRows)
	alpha, step := s.params.Alpha, s.step

	for pos, j := range order {
		start, end := cols.Indptr[j], cols.Indptr[j+1]

		grad := 0.0
		for k := start; k < end; k++ {
			i := cols.Indices[k]
			grad += s.loss.Deriv(ax[i], s.b[i]) * cols.Data[k]
		}
		grad /= n

		xNew := s.penalty.Prox(x[j]-step*(grad+alpha*x[j]), step)
		if diff := xNew - x[j]; diff != 0 {
			for k := start; k < end; k++ {
				ax[cols.Indices[k]] += cols.Data[k] * diff
			}
		}
		x[j] = xNew

		if pos == 0 {
			s.rows.MulVec(ax, x)
		}
	}
}

func (s *bcdSolver[L, R]) run() *OptimizeResult {
	params := s.params
	rng := rand.New(rand.NewSource(params.Seed))
	order := identityPermutation(s.cols.NCols)

	var trace *Trace
	if params.Trace {
		trace = NewTrace(params.MaxIter, len(s.x))
	}

	if params.Verbose {
		log.Printf("BCD: %d samples, %d features, %d nonzeros, step %.3e\n", s.rows.NRows, s.rows.NCols, s.rows.Nnz(), s.step)
	}

	if trace != nil {
		trace.Start()
	}
	for epoch := 0; epoch < params.MaxIter; epoch++ {
		shuffle(rng, order)
		s.epoch(order)

		if trace != nil {
			trace.Record(s.x)
		}
		if params.Callback != nil {
			params.Callback(epoch, s.x)
		}
		if params.Verbose {
			log.Printf("BCD epoch %d done\n", epoch+1)
		}
	}

	res := &OptimizeResult{
		X:        s.x,
		Success:  false,
		Nit:      params.MaxIter,
		Message:  fmt.Sprintf("Ran the full budget of %d epochs; coordinate descent does not test the tolerance.", params.MaxIter),
		StepSize: s.step,
	}
	res.attachTrace(trace, func(x []float64) float64 {
		return Objective(s.rows, s.b, x, s.loss, params.Alpha, s.penalty)
	})
	return res
}

// Prediction returns A·x computed from scratch, the quantity BCD caches.
func Prediction(a *spv.Matrix, x []float64) []float64 {
	nSamples, _ := a.Dims()
	ax := make([]float64, nSamples)
	a.Rows.MulVec(ax, x)
	return ax
}

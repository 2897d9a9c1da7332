package rsl

import (
	"log"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/tarstars/sparse_erm/golang/sparse_erm/spv"
)

// MinimizeSAGA minimizes (1/n)·Σ loss(A_i·x, b_i) + (α/2)‖x‖² + β‖x‖₁ with the SAGA
// algorithm of Defazio et al. (2014), in the sparse form of Pedregosa et al. (2017):
// every step touches only the nonzero columns of the visited sample, and the dense
// gradient average is applied lazily through the per-feature scale n/nnz(column).
//
// Each epoch visits all samples in a fresh random order drawn from a generator seeded
// with params.Seed. The solve stops with Success once the summed absolute coefficient
// change over an epoch falls below params.Tol, otherwise after params.MaxIter epochs
// with Success false. Configuration errors are returned before any work starts.
//
// With params.Workers > 1 the epoch is split across goroutines; see MinimizeSAGAAsync.
func MinimizeSAGA[L Loss](a *spv.Matrix, b []float64, loss L, params Params) (*OptimizeResult, error) {
	if err := params.validate(a, b); err != nil {
		return nil, err
	}
	if params.Workers > 1 {
		return MinimizeSAGAAsync(a, b, loss, params)
	}
	penalty, err := NewPenalty(params.Beta)
	if err != nil {
		return nil, err
	}
	if l1, ok := penalty.(L1Penalty); ok {
		return newSAGASolver(a, b, loss, l1, params).run(), nil
	}
	return newSAGASolver(a, b, loss, ZeroPenalty{}, params).run(), nil
}

// sagaSolver owns every array mutated during a SAGA solve.
type sagaSolver[L Loss, R Regularizer] struct {
	a       *spv.CSR
	b       []float64
	loss    L
	penalty R
	params  Params

	x               []float64
	memoryGradient  []float64
	gradientAverage []float64
	scale           []float64
	step            float64
}

func newSAGASolver[L Loss, R Regularizer](a *spv.Matrix, b []float64, loss L, penalty R, params Params) *sagaSolver[L, R] {
	nSamples, nFeatures := a.Dims()
	return &sagaSolver[L, R]{
		a:               a.Rows,
		b:               b,
		loss:            loss,
		penalty:         penalty,
		params:          params,
		x:               params.initialPoint(nFeatures),
		memoryGradient:  make([]float64, nSamples),
		gradientAverage: make([]float64, nFeatures),
		scale:           scaleFactors(a.Rows),
		step:            params.StepSize,
	}
}

// scaleFactors returns n/nnz(column j), the inverse probability that a uniformly drawn
// sample touches feature j. Empty columns get zero: they are never visited.
func scaleFactors(a *spv.CSR) []float64 {
	n := float64(a.NRows)
	scale := make([]float64, a.NCols)
	for j, count := range a.ColumnCounts() {
		if count > 0 {
			scale[j] = n / float64(count)
		}
	}
	return scale
}

// epoch performs one SAGA step per sample, in the given order.
func (s *sagaSolver[L, R]) epoch(order []int) {
	a, x := s.a, s.x
	n := float64(a.NRows)
	alpha, step := s.params.Alpha, s.step

	for _, i := range order {
		start, end := a.Indptr[i], a.Indptr[i+1]

		p := 0.0
		for k := start; k < end; k++ {
			p += x[a.Indices[k]] * a.Data[k]
		}

		grad := s.loss.Deriv(p, s.b[i])
		oldGrad := s.memoryGradient[i]
		s.memoryGradient[i] = grad

		for k := start; k < end; k++ {
			j := a.Indices[k]
			delta := (grad - oldGrad) * a.Data[k]
			incr := delta + s.scale[j]*(s.gradientAverage[j]+alpha*x[j])
			x[j] = s.penalty.Prox(x[j]-step*incr, step*s.scale[j])
			s.gradientAverage[j] += delta / n
		}
	}
}

func (s *sagaSolver[L, R]) run() *OptimizeResult {
	params := s.params
	rng := rand.New(rand.NewSource(params.Seed))
	order := identityPermutation(s.a.NRows)
	xOld := make([]float64, len(s.x))

	var trace *Trace
	if params.Trace {
		trace = NewTrace(params.MaxIter, len(s.x))
	}

	if params.Verbose {
		log.Printf("SAGA: %d samples, %d features, %d nonzeros, step %.3e\n", s.a.NRows, s.a.NCols, s.a.Nnz(), s.step)
	}

	if trace != nil {
		trace.Start()
	}
	success := false
	nit := 0
	change := 0.0
	for epoch := 0; epoch < params.MaxIter; epoch++ {
		copy(xOld, s.x)
		shuffle(rng, order)
		s.epoch(order)
		nit = epoch + 1

		if trace != nil {
			trace.Record(s.x)
		}
		if params.Callback != nil {
			params.Callback(epoch, s.x)
		}

		change = floats.Distance(s.x, xOld, 1)
		if params.Verbose {
			log.Printf("SAGA epoch %d: coefficient change %.3e\n", nit, change)
		}
		if change < params.Tol {
			success = true
			break
		}
	}

	res := &OptimizeResult{
		X:           s.x,
		Success:     success,
		Nit:         nit,
		Certificate: &change,
		StepSize:    s.step,
	}
	if success {
		res.Message = convergedMessage(params.Tol, nit)
	} else {
		res.Message = exhaustedMessage(params.MaxIter, params.Tol, change)
	}
	res.attachTrace(trace, func(x []float64) float64 {
		return Objective(s.a, s.b, x, s.loss, params.Alpha, s.penalty)
	})
	return res
}

func identityPermutation(n int) []int {
	order := make([]int, n)
	for k := range order {
		order[k] = k
	}
	return order
}

// shuffle permutes order in place, starting from the previous epoch's order.
func shuffle(rng *rand.Rand, order []int) {
	rng.Shuffle(len(order), func(p, q int) {
		order[p], order[q] = order[q], order[p]
	})
}

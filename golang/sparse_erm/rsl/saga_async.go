package rsl

import (
	"log"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/tarstars/sparse_erm/golang/sparse_erm/spv"
)

// atomicVector is a float64 slice whose elements may be read and written by several
// goroutines at once. Reads can be stale but never torn.
type atomicVector []uint64

func newAtomicVector(x []float64) atomicVector {
	v := make(atomicVector, len(x))
	for j, xj := range x {
		v[j] = math.Float64bits(xj)
	}
	return v
}

func (v atomicVector) load(j int) float64 {
	return math.Float64frombits(atomic.LoadUint64(&v[j]))
}

func (v atomicVector) store(j int, val float64) {
	atomic.StoreUint64(&v[j], math.Float64bits(val))
}

// add performs v[j] += delta with a compare-and-swap loop.
func (v atomicVector) add(j int, delta float64) {
	for {
		old := atomic.LoadUint64(&v[j])
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(&v[j], old, next) {
			return
		}
	}
}

// copyTo decodes the vector into dst.
func (v atomicVector) copyTo(dst []float64) {
	for j := range v {
		dst[j] = v.load(j)
	}
}

// MinimizeSAGAAsync is the lock-free variant of MinimizeSAGA. Every epoch the shuffled
// sample order is cut into params.Workers contiguous chunks handled by separate
// goroutines that share x and the gradient average. Each sample belongs to exactly one
// chunk, so its memory slot has a single writer. Epochs end with a barrier: the
// convergence test, tracing and the callback see a quiescent x.
//
// The interleaving of updates depends on the scheduler, so two runs with the same seed
// generally return slightly different coefficients.
func MinimizeSAGAAsync[L Loss](a *spv.Matrix, b []float64, loss L, params Params) (*OptimizeResult, error) {
	if err := params.validate(a, b); err != nil {
		return nil, err
	}
	penalty, err := NewPenalty(params.Beta)
	if err != nil {
		return nil, err
	}
	if params.Workers < 1 {
		params.Workers = 1
	}
	if l1, ok := penalty.(L1Penalty); ok {
		return newAsyncSAGASolver(a, b, loss, l1, params).run(), nil
	}
	return newAsyncSAGASolver(a, b, loss, ZeroPenalty{}, params).run(), nil
}

type asyncSAGASolver[L Loss, R Regularizer] struct {
	a       *spv.CSR
	b       []float64
	loss    L
	penalty R
	params  Params

	x               atomicVector
	memoryGradient  []float64
	gradientAverage atomicVector
	scale           []float64
	step            float64
}

func newAsyncSAGASolver[L Loss, R Regularizer](a *spv.Matrix, b []float64, loss L, penalty R, params Params) *asyncSAGASolver[L, R] {
	nSamples, nFeatures := a.Dims()
	return &asyncSAGASolver[L, R]{
		a:               a.Rows,
		b:               b,
		loss:            loss,
		penalty:         penalty,
		params:          params,
		x:               newAtomicVector(params.initialPoint(nFeatures)),
		memoryGradient:  make([]float64, nSamples),
		gradientAverage: make(atomicVector, nFeatures),
		scale:           scaleFactors(a.Rows),
		step:            params.StepSize,
	}
}

// visit applies the SAGA update of every sample in chunk.
func (s *asyncSAGASolver[L, R]) visit(chunk []int) {
	a, x := s.a, s.x
	n := float64(a.NRows)
	alpha, step := s.params.Alpha, s.step

	for _, i := range chunk {
		start, end := a.Indptr[i], a.Indptr[i+1]

		p := 0.0
		for k := start; k < end; k++ {
			p += x.load(a.Indices[k]) * a.Data[k]
		}

		grad := s.loss.Deriv(p, s.b[i])
		oldGrad := s.memoryGradient[i]
		s.memoryGradient[i] = grad

		for k := start; k < end; k++ {
			j := a.Indices[k]
			xj := x.load(j)
			delta := (grad - oldGrad) * a.Data[k]
			incr := delta + s.scale[j]*(s.gradientAverage.load(j)+alpha*xj)
			x.store(j, s.penalty.Prox(xj-step*incr, step*s.scale[j]))
			s.gradientAverage.add(j, delta/n)
		}
	}
}

// epoch runs one pass over order with the configured number of goroutines.
func (s *asyncSAGASolver[L, R]) epoch(order []int) {
	n := len(order)
	chunkSize := (n + s.params.Workers - 1) / s.params.Workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(chunk []int) {
			defer wg.Done()
			s.visit(chunk)
		}(order[start:end])
	}
	wg.Wait()
}

func (s *asyncSAGASolver[L, R]) run() *OptimizeResult {
	params := s.params
	rng := rand.New(rand.NewSource(params.Seed))
	order := identityPermutation(s.a.NRows)
	nFeatures := len(s.x)
	xNow := make([]float64, nFeatures)
	xOld := make([]float64, nFeatures)
	s.x.copyTo(xNow)

	var trace *Trace
	if params.Trace {
		trace = NewTrace(params.MaxIter, nFeatures)
	}

	if params.Verbose {
		log.Printf("SAGA: %d samples, %d features, %d nonzeros, step %.3e, %d workers\n",
			s.a.NRows, s.a.NCols, s.a.Nnz(), s.step, params.Workers)
	}

	if trace != nil {
		trace.Start()
	}
	success := false
	nit := 0
	change := 0.0
	for epoch := 0; epoch < params.MaxIter; epoch++ {
		copy(xOld, xNow)
		shuffle(rng, order)
		s.epoch(order)
		s.x.copyTo(xNow)
		nit = epoch + 1

		if trace != nil {
			trace.Record(xNow)
		}
		if params.Callback != nil {
			params.Callback(epoch, xNow)
		}

		change = floats.Distance(xNow, xOld, 1)
		if params.Verbose {
			log.Printf("SAGA epoch %d: coefficient change %.3e\n", nit, change)
		}
		if change < params.Tol {
			success = true
			break
		}
	}

	res := &OptimizeResult{
		X:           xNow,
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

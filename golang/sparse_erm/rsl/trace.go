package rsl

import (
	"time"

	"gorgonia.org/tensor"
)

// Trace keeps one coefficient snapshot and one elapsed wall-clock reading per epoch.
// Objective values are computed from the snapshots after the solve, never inside
// an epoch. Memory is capacity × n_features floats, which is why tracing is opt-in.
type Trace struct {
	snapshots *tensor.Dense
	backing   []float64
	times     []float64
	nFeatures int
	start     time.Time
}

// NewTrace allocates room for capacity snapshots of nFeatures coefficients.
func NewTrace(capacity, nFeatures int) *Trace {
	backing := make([]float64, capacity*nFeatures)
	return &Trace{
		snapshots: tensor.New(tensor.WithShape(capacity, nFeatures), tensor.WithBacking(backing)),
		backing:   backing,
		times:     make([]float64, 0, capacity),
		nFeatures: nFeatures,
		start:     time.Now(),
	}
}

// Start resets the wall clock.
func (tr *Trace) Start() {
	tr.start = time.Now()
}

// Record appends a copy of x and the time elapsed since Start.
func (tr *Trace) Record(x []float64) {
	k := len(tr.times)
	if k >= tr.snapshots.Shape()[0] {
		panic("rsl: trace capacity exceeded")
	}
	copy(tr.row(k), x)
	tr.times = append(tr.times, time.Since(tr.start).Seconds())
}

// Len returns the number of recorded epochs.
func (tr *Trace) Len() int {
	return len(tr.times)
}

// Snapshot returns the coefficients recorded at epoch k. The slice aliases the trace.
func (tr *Trace) Snapshot(k int) []float64 {
	if k < 0 || k >= len(tr.times) {
		panic("rsl: snapshot index out of range")
	}
	return tr.row(k)
}

// Snapshots returns the recorded epochs as a Len × n_features tensor sharing
// memory with the trace, or nil before the first epoch.
func (tr *Trace) Snapshots() *tensor.Dense {
	n := len(tr.times)
	if n == 0 {
		return nil
	}
	return tensor.New(tensor.WithShape(n, tr.nFeatures), tensor.WithBacking(tr.backing[:n*tr.nFeatures]))
}

// Times returns the elapsed seconds of every recorded epoch.
func (tr *Trace) Times() []float64 {
	return append([]float64(nil), tr.times...)
}

// Evaluate applies f to every snapshot in order.
func (tr *Trace) Evaluate(f func(x []float64) float64) []float64 {
	values := make([]float64, len(tr.times))
	for k := range values {
		values[k] = f(tr.row(k))
	}
	return values
}

func (tr *Trace) row(k int) []float64 {
	return tr.backing[k*tr.nFeatures : (k+1)*tr.nFeatures]
}

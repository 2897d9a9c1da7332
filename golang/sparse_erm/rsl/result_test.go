package rsl

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarstars/sparse_erm/golang/sparse_erm/spv"
)

func TestTraceRecorder(t *testing.T) {
	trace := NewTrace(3, 2)
	assert.Nil(t, trace.Snapshots())
	assert.Equal(t, 0, trace.Len())

	trace.Start()
	x := []float64{1, 2}
	trace.Record(x)
	x[0] = 5
	trace.Record(x)
	trace.Record([]float64{-1, 0})
	assert.Panics(t, func() { trace.Record(x) })

	assert.Equal(t, 3, trace.Len())
	assert.Equal(t, []float64{1, 2}, trace.Snapshot(0))
	assert.Equal(t, []float64{5, 2}, trace.Snapshot(1))
	assert.Panics(t, func() { trace.Snapshot(3) })

	sums := trace.Evaluate(func(x []float64) float64 { return x[0] + x[1] })
	assert.Equal(t, []float64{3, 7, -1}, sums)
	assert.Len(t, trace.Times(), 3)

	snapshots := trace.Snapshots()
	require.NotNil(t, snapshots)
	assert.Equal(t, []int{3, 2}, []int(snapshots.Shape()))
	at, err := snapshots.At(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 5.0, at)
}

func TestResultSaveLoad(t *testing.T) {
	a, b := ridgeProblem()
	params := solverParams(SAGAStepSize(a, SquaredLoss{}, 0.1))
	params.Alpha = 0.1
	params.MaxIter = 15
	params.Trace = true

	res, err := MinimizeSAGA(a, b, SquaredLoss{}, params)
	require.NoError(t, err)

	dir := t.TempDir()
	fileName := filepath.Join(dir, "result.json")
	require.NoError(t, res.Save(fileName))

	loaded, err := LoadResult(fileName)
	require.NoError(t, err)
	assert.Equal(t, res.X, loaded.X)
	assert.Equal(t, res.Success, loaded.Success)
	assert.Equal(t, res.Nit, loaded.Nit)
	assert.Equal(t, res.Message, loaded.Message)
	assert.Equal(t, res.TraceFunc, loaded.TraceFunc)
	assert.Equal(t, res.TraceTime, loaded.TraceTime)
	assert.Equal(t, res.StepSize, loaded.StepSize)
	require.NotNil(t, loaded.Certificate)
	assert.Equal(t, *res.Certificate, *loaded.Certificate)
	assert.Nil(t, loaded.Trace())

	traceFile := filepath.Join(dir, "trace.npy")
	require.NoError(t, loaded.DumpTrace(traceFile))
	curves, err := spv.ReadNpy(traceFile)
	require.NoError(t, err)
	rows, cols := curves.Dims()
	assert.Equal(t, res.Nit, rows)
	assert.Equal(t, 2, cols)
	for k := 0; k < rows; k++ {
		assert.Equal(t, res.TraceTime[k], curves.At(k, 0))
		assert.Equal(t, res.TraceFunc[k], curves.At(k, 1))
	}

	_, err = LoadResult(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestDumpTraceWithoutTrace(t *testing.T) {
	res := &OptimizeResult{X: []float64{1}}
	_, err := res.TraceMatrix()
	assert.ErrorIs(t, err, ErrNoTrace)
	assert.ErrorIs(t, res.DumpTrace(filepath.Join(t.TempDir(), "t.npy")), ErrNoTrace)

	res.TraceFunc = []float64{1, 2}
	res.TraceTime = []float64{0.1}
	_, err = res.TraceMatrix()
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

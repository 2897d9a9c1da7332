package spv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func sampleDense() *mat.Dense {
	return mat.NewDense(4, 3, []float64{
		1, 0, 2,
		0, 0, 3,
		4, 5, 0,
		0, 0, 0,
	})
}

func TestCSRFromDense(t *testing.T) {
	csr := CSRFromDense(sampleDense())

	assert.Equal(t, []float64{1, 2, 3, 4, 5}, csr.Data)
	assert.Equal(t, []int{0, 2, 2, 0, 1}, csr.Indices)
	assert.Equal(t, []int{0, 2, 3, 5, 5}, csr.Indptr)
	assert.Equal(t, 5, csr.Nnz())
	assert.True(t, mat.Equal(sampleDense(), csr.ToDense()))
}

func TestCSRToCSCRoundTrip(t *testing.T) {
	csr := CSRFromDense(sampleDense())
	csc := csr.ToCSC()

	assert.Equal(t, []float64{1, 4, 5, 2, 3}, csc.Data)
	assert.Equal(t, []int{0, 2, 2, 0, 1}, csc.Indices)
	assert.Equal(t, []int{0, 2, 3, 5}, csc.Indptr)

	back := csc.ToCSR()
	assert.Equal(t, csr.Data, back.Data)
	assert.Equal(t, csr.Indices, back.Indices)
	assert.Equal(t, csr.Indptr, back.Indptr)

	assert.True(t, mat.Equal(csr, csc))
	assert.True(t, mat.Equal(csr.T(), mat.DenseCopyOf(sampleDense().T())))
}

func TestNewCSRValidation(t *testing.T) {
	_, err := NewCSR(2, 2, []float64{1}, []int{0}, []int{0, 1, 1})
	require.NoError(t, err)

	_, err = NewCSR(2, 2, []float64{1}, []int{0}, []int{0, 1})
	assert.True(t, errors.Is(err, ErrBadShape))

	_, err = NewCSR(2, 2, []float64{1}, []int{0}, []int{1, 1, 1})
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = NewCSR(2, 2, []float64{1, 2}, []int{0, 1}, []int{0, 2, 1})
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = NewCSR(2, 2, []float64{1}, []int{2}, []int{0, 1, 1})
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	_, err = NewCSC(2, 2, []float64{1}, []int{0}, []int{0, 1, 1})
	require.NoError(t, err)
}

func TestBuilderSumsDuplicates(t *testing.T) {
	b := NewBuilder(3, 4)
	b.Append(2, 3, 1.5)
	b.Append(0, 1, 2)
	b.Append(2, 0, -1)
	b.Append(0, 1, 3)
	b.Append(1, 2, 4)
	b.Append(1, 2, -4)

	csr := b.CSR()
	assert.Equal(t, []int{0, 1, 1, 3}, csr.Indptr)
	assert.Equal(t, []int{1, 0, 3}, csr.Indices)
	assert.Equal(t, []float64{5, -1, 1.5}, csr.Data)

	assert.Panics(t, func() { b.Append(3, 0, 1) })
	assert.Panics(t, func() { b.Append(0, -1, 1) })
}

func TestRowOperations(t *testing.T) {
	m := FromDense(sampleDense())
	x := []float64{1, -1, 0.5}

	dst := make([]float64, 4)
	m.Rows.MulVec(dst, x)

	var want mat.VecDense
	want.MulVec(sampleDense(), mat.NewVecDense(3, x))
	assert.InDeltaSlice(t, want.RawVector().Data, dst, 1e-12)

	assert.Equal(t, []int{2, 1, 2}, m.Rows.ColumnCounts())
	assert.Equal(t, []float64{5, 9, 41, 0}, m.Rows.RowNormsSquared())
	assert.Equal(t, []float64{17, 25, 13}, m.Cols.ColNormsSquared())

	rows, vals := m.Cols.Col(2)
	assert.Equal(t, []int{0, 1}, rows)
	assert.Equal(t, []float64{2, 3}, vals)

	nSamples, nFeatures := m.Dims()
	assert.Equal(t, 4, nSamples)
	assert.Equal(t, 3, nFeatures)
}

func TestFromRowsMatchesFromDense(t *testing.T) {
	a := FromRows([][]float64{{1, 0, 2}, {0, 0, 3}, {4, 5, 0}, {0, 0, 0}})
	b := FromDense(sampleDense())
	assert.Equal(t, b.Rows, a.Rows)
	assert.Equal(t, b.Cols, a.Cols)
}

func TestNpyRoundTrip(t *testing.T) {
	dir := t.TempDir()

	denseFile := filepath.Join(dir, "a.npy")
	require.NoError(t, WriteDense(denseFile, sampleDense()))
	m, err := ReadDenseNpy(denseFile)
	require.NoError(t, err)
	assert.True(t, mat.Equal(sampleDense(), m.Dense()))

	vecFile := filepath.Join(dir, "b.npy")
	require.NoError(t, WriteVector(vecFile, []float64{1, 2, 3}))
	vec, err := ReadVector(vecFile)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, vec)

	csr := CSRFromDense(sampleDense())
	writeNpy(t, filepath.Join(dir, "data.npy"), csr.Data)
	indices := make([]int32, len(csr.Indices))
	for k, v := range csr.Indices {
		indices[k] = int32(v)
	}
	writeNpy(t, filepath.Join(dir, "indices.npy"), indices)
	indptr := make([]int64, len(csr.Indptr))
	for k, v := range csr.Indptr {
		indptr[k] = int64(v)
	}
	writeNpy(t, filepath.Join(dir, "indptr.npy"), indptr)

	loaded, err := ReadCSRNpy(
		filepath.Join(dir, "data.npy"),
		filepath.Join(dir, "indices.npy"),
		filepath.Join(dir, "indptr.npy"),
		3,
	)
	require.NoError(t, err)
	assert.Equal(t, csr, loaded)

	writeNpy(t, filepath.Join(dir, "floats.npy"), []float64{0, 1})
	_, err = ReadCSRNpy(filepath.Join(dir, "data.npy"), filepath.Join(dir, "floats.npy"), filepath.Join(dir, "indptr.npy"), 3)
	assert.True(t, errors.Is(err, ErrUnsupportedDtype))
}

func TestRenderIncidenceRejectsUnknownFormat(t *testing.T) {
	csr := CSRFromDense(sampleDense())
	err := csr.RenderIncidence(2, "bmp", filepath.Join(t.TempDir(), "g.bmp"))
	assert.Error(t, err)
}

func writeNpy(t *testing.T, fileName string, val interface{}) {
	t.Helper()
	f, err := os.Create(fileName)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, npyio.Write(f, val))
}

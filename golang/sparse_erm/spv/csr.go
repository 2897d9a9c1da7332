// Package spv holds read-only compressed sparse views of a design matrix.
//
// A matrix is stored twice when an algorithm needs both traversals: CSR for
// row (sample) sweeps and CSC for column (feature) sweeps. Both views keep the
// three parallel arrays used by scipy.sparse (values, indices, offsets) so data
// produced in Python can be handed over without conversion.
package spv

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// CSR is a compressed-row matrix. The nonzeros of row i are
// Data[Indptr[i]:Indptr[i+1]] with column indices Indices[Indptr[i]:Indptr[i+1]].
type CSR struct {
	Data    []float64
	Indices []int
	Indptr  []int
	NRows   int
	NCols   int
}

var _ mat.Matrix = (*CSR)(nil)

// NewCSR validates the compressed arrays and wraps them without copying.
func NewCSR(nRows, nCols int, data []float64, indices, indptr []int) (*CSR, error) {
	if err := validateCompressed(nRows, nCols, data, indices, indptr); err != nil {
		return nil, errors.WithMessage(err, "csr")
	}
	return &CSR{Data: data, Indices: indices, Indptr: indptr, NRows: nRows, NCols: nCols}, nil
}

// validateCompressed checks one compressed layout: nMajor slices over a minor
// dimension of size nMinor.
func validateCompressed(nMajor, nMinor int, data []float64, indices, indptr []int) error {
	if nMajor < 0 || nMinor < 0 {
		return errors.Wrapf(ErrBadShape, "%dx%d", nMajor, nMinor)
	}
	if len(indptr) != nMajor+1 {
		return errors.Wrapf(ErrBadShape, "indptr has length %d, want %d", len(indptr), nMajor+1)
	}
	if len(data) != len(indices) {
		return errors.Wrapf(ErrBadShape, "data has length %d but indices %d", len(data), len(indices))
	}
	if indptr[0] != 0 {
		return errors.Wrapf(ErrMalformed, "indptr[0] = %d", indptr[0])
	}
	for k := 0; k < nMajor; k++ {
		if indptr[k+1] < indptr[k] {
			return errors.Wrapf(ErrMalformed, "indptr decreases at %d", k)
		}
	}
	if indptr[nMajor] != len(data) {
		return errors.Wrapf(ErrMalformed, "indptr ends at %d but nnz is %d", indptr[nMajor], len(data))
	}
	for k, idx := range indices {
		if idx < 0 || idx >= nMinor {
			return errors.Wrapf(ErrIndexOutOfRange, "index %d at position %d", idx, k)
		}
	}
	return nil
}

// Dims returns the number of rows and columns.
func (m *CSR) Dims() (r, c int) {
	return m.NRows, m.NCols
}

// At returns the element (i, j). It scans row i and is meant for tests and
// conversions, not for solver loops.
func (m *CSR) At(i, j int) float64 {
	if i < 0 || i >= m.NRows {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= m.NCols {
		panic(mat.ErrColAccess)
	}
	v := 0.0
	for k := m.Indptr[i]; k < m.Indptr[i+1]; k++ {
		if m.Indices[k] == j {
			v += m.Data[k]
		}
	}
	return v
}

// T returns the implicit transpose.
func (m *CSR) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// Nnz returns the number of stored entries.
func (m *CSR) Nnz() int {
	return len(m.Data)
}

// Row returns the column indices and values of row i. The slices alias the matrix.
func (m *CSR) Row(i int) (cols []int, vals []float64) {
	start, end := m.Indptr[i], m.Indptr[i+1]
	return m.Indices[start:end], m.Data[start:end]
}

// RowDot returns A_i·x.
func (m *CSR) RowDot(i int, x []float64) float64 {
	p := 0.0
	for k := m.Indptr[i]; k < m.Indptr[i+1]; k++ {
		p += x[m.Indices[k]] * m.Data[k]
	}
	return p
}

// MulVec stores A·x into dst.
func (m *CSR) MulVec(dst, x []float64) {
	if len(x) != m.NCols || len(dst) != m.NRows {
		panic(mat.ErrShape)
	}
	for i := 0; i < m.NRows; i++ {
		dst[i] = m.RowDot(i, x)
	}
}

// ColumnCounts returns, for every column, the number of rows that store an entry in it.
func (m *CSR) ColumnCounts() []int {
	counts := make([]int, m.NCols)
	for _, j := range m.Indices {
		counts[j]++
	}
	return counts
}

// RowNormsSquared returns ‖A_i‖² for every row.
func (m *CSR) RowNormsSquared() []float64 {
	norms := make([]float64, m.NRows)
	for i := 0; i < m.NRows; i++ {
		for k := m.Indptr[i]; k < m.Indptr[i+1]; k++ {
			norms[i] += m.Data[k] * m.Data[k]
		}
	}
	return norms
}

// ToCSC builds the compressed-column view of the same matrix. Entries inside a
// column keep ascending row order.
func (m *CSR) ToCSC() *CSC {
	data, indices, indptr := transpose(m.NRows, m.NCols, m.Data, m.Indices, m.Indptr)
	return &CSC{Data: data, Indices: indices, Indptr: indptr, NRows: m.NRows, NCols: m.NCols}
}

// ToDense expands the matrix.
func (m *CSR) ToDense() *mat.Dense {
	if m.NRows == 0 || m.NCols == 0 {
		return &mat.Dense{}
	}
	dense := mat.NewDense(m.NRows, m.NCols, nil)
	for i := 0; i < m.NRows; i++ {
		for k := m.Indptr[i]; k < m.Indptr[i+1]; k++ {
			j := m.Indices[k]
			dense.Set(i, j, dense.At(i, j)+m.Data[k])
		}
	}
	return dense
}

// transpose converts one compressed layout into the other with a counting sort
// over the minor indices.
func transpose(nMajor, nMinor int, data []float64, indices, indptr []int) ([]float64, []int, []int) {
	outPtr := make([]int, nMinor+1)
	for _, idx := range indices {
		outPtr[idx+1]++
	}
	for k := 0; k < nMinor; k++ {
		outPtr[k+1] += outPtr[k]
	}

	next := make([]int, nMinor)
	copy(next, outPtr[:nMinor])

	outData := make([]float64, len(data))
	outIndices := make([]int, len(indices))
	for major := 0; major < nMajor; major++ {
		for k := indptr[major]; k < indptr[major+1]; k++ {
			minor := indices[k]
			dest := next[minor]
			outData[dest] = data[k]
			outIndices[dest] = major
			next[minor]++
		}
	}
	return outData, outIndices, outPtr
}


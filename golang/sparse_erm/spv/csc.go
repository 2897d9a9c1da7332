package spv

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// CSC is a compressed-column matrix. The nonzeros of column j are
// Data[Indptr[j]:Indptr[j+1]] with row indices Indices[Indptr[j]:Indptr[j+1]].
type CSC struct {
	Data    []float64
	Indices []int
	Indptr  []int
	NRows   int
	NCols   int
}

var _ mat.Matrix = (*CSC)(nil)

// NewCSC validates the compressed arrays and wraps them without copying.
func NewCSC(nRows, nCols int, data []float64, indices, indptr []int) (*CSC, error) {
	if err := validateCompressed(nCols, nRows, data, indices, indptr); err != nil {
		return nil, errors.WithMessage(err, "csc")
	}
	return &CSC{Data: data, Indices: indices, Indptr: indptr, NRows: nRows, NCols: nCols}, nil
}

// Dims returns the number of rows and columns.
func (m *CSC) Dims() (r, c int) {
	return m.NRows, m.NCols
}

// At returns the element (i, j) by scanning column j.
func (m *CSC) At(i, j int) float64 {
	if i < 0 || i >= m.NRows {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= m.NCols {
		panic(mat.ErrColAccess)
	}
	v := 0.0
	for k := m.Indptr[j]; k < m.Indptr[j+1]; k++ {
		if m.Indices[k] == i {
			v += m.Data[k]
		}
	}
	return v
}

// T returns the implicit transpose.
func (m *CSC) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// Nnz returns the number of stored entries.
func (m *CSC) Nnz() int {
	return len(m.Data)
}

// Col returns the row indices and values of column j. The slices alias the matrix.
func (m *CSC) Col(j int) (rows []int, vals []float64) {
	start, end := m.Indptr[j], m.Indptr[j+1]
	return m.Indices[start:end], m.Data[start:end]
}

// ColNormsSquared returns ‖A_{:,j}‖² for every column.
func (m *CSC) ColNormsSquared() []float64 {
	norms := make([]float64, m.NCols)
	for j := 0; j < m.NCols; j++ {
		for k := m.Indptr[j]; k < m.Indptr[j+1]; k++ {
			norms[j] += m.Data[k] * m.Data[k]
		}
	}
	return norms
}

// ToCSR builds the compressed-row view of the same matrix.
func (m *CSC) ToCSR() *CSR {
	data, indices, indptr := transpose(m.NCols, m.NRows, m.Data, m.Indices, m.Indptr)
	return &CSR{Data: data, Indices: indices, Indptr: indptr, NRows: m.NRows, NCols: m.NCols}
}

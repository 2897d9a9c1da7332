package spv

import "gonum.org/v1/gonum/mat"

// Matrix bundles the row and column views of one immutable design matrix.
// Solvers borrow it for the duration of a solve and never write to it.
type Matrix struct {
	Rows *CSR
	Cols *CSC
}

// NewMatrix derives the column view from rows. The CSR arrays are shared, not copied.
func NewMatrix(rows *CSR) *Matrix {
	return &Matrix{Rows: rows, Cols: rows.ToCSC()}
}

// NewMatrixFromCSC derives the row view from cols.
func NewMatrixFromCSC(cols *CSC) *Matrix {
	return &Matrix{Rows: cols.ToCSR(), Cols: cols}
}

// Dims returns (n_samples, n_features).
func (m *Matrix) Dims() (nSamples, nFeatures int) {
	return m.Rows.NRows, m.Rows.NCols
}

// Dense expands the matrix, mostly for reference computations in tests.
func (m *Matrix) Dense() *mat.Dense {
	return m.Rows.ToDense()
}

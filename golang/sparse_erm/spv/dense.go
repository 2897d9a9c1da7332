package spv

import "gonum.org/v1/gonum/mat"

// CSRFromDense compresses any gonum matrix, skipping exact zeros.
func CSRFromDense(a mat.Matrix) *CSR {
	r, c := a.Dims()
	indptr := make([]int, r+1)
	var (
		data    []float64
		indices []int
	)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := a.At(i, j); v != 0 {
				data = append(data, v)
				indices = append(indices, j)
			}
		}
		indptr[i+1] = len(data)
	}
	return &CSR{Data: data, Indices: indices, Indptr: indptr, NRows: r, NCols: c}
}

// FromDense compresses a gonum matrix into both views.
func FromDense(a mat.Matrix) *Matrix {
	return NewMatrix(CSRFromDense(a))
}

// FromRows is a convenience constructor for literal row data, as used in tests and examples.
func FromRows(rows [][]float64) *Matrix {
	if len(rows) == 0 {
		return NewMatrix(&CSR{Indptr: []int{0}})
	}
	cols := len(rows[0])
	b := NewBuilder(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			panic("spv: ragged rows")
		}
		for j, v := range row {
			if v != 0 {
				b.Append(i, j, v)
			}
		}
	}
	return b.Matrix()
}

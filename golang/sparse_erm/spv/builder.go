package spv

import "sort"

type triplet struct {
	i, j int
	v    float64
}

// Builder accumulates (row, column, value) triplets and compresses them into a CSR.
type Builder struct {
	r, c int
	data []triplet
}

// NewBuilder returns an empty r×c builder.
func NewBuilder(r, c int) *Builder {
	if r < 0 || c < 0 {
		panic("spv: negative dimension")
	}
	return &Builder{r: r, c: c}
}

// Dims returns the declared shape.
func (b *Builder) Dims() (r, c int) {
	return b.r, b.c
}

// Append records A[i,j] += v.
func (b *Builder) Append(i, j int, v float64) {
	if i < 0 || b.r <= i {
		panic("spv: row index out of range")
	}
	if j < 0 || b.c <= j {
		panic("spv: column index out of range")
	}
	b.data = append(b.data, triplet{i, j, v})
}

// CSR compresses the triplets. Duplicate coordinates are summed, entries that
// sum to exactly zero are dropped and column indices ascend within each row.
func (b *Builder) CSR() *CSR {
	sorted := make([]triplet, len(b.data))
	copy(sorted, b.data)
	sort.SliceStable(sorted, func(p, q int) bool {
		if sorted[p].i != sorted[q].i {
			return sorted[p].i < sorted[q].i
		}
		return sorted[p].j < sorted[q].j
	})

	indptr := make([]int, b.r+1)
	data := make([]float64, 0, len(sorted))
	indices := make([]int, 0, len(sorted))
	for k := 0; k < len(sorted); {
		cur := sorted[k]
		sum := 0.0
		for ; k < len(sorted) && sorted[k].i == cur.i && sorted[k].j == cur.j; k++ {
			sum += sorted[k].v
		}
		if sum == 0 {
			continue
		}
		data = append(data, sum)
		indices = append(indices, cur.j)
		indptr[cur.i+1]++
	}
	for i := 0; i < b.r; i++ {
		indptr[i+1] += indptr[i]
	}
	return &CSR{Data: data, Indices: indices, Indptr: indptr, NRows: b.r, NCols: b.c}
}

// Matrix compresses the triplets into both views.
func (b *Builder) Matrix() *Matrix {
	return NewMatrix(b.CSR())
}

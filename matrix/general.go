package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Encoding identifies which of the three supervision forms a General holds
type Encoding int

const (
	EncodingDense Encoding = iota
	EncodingSparse
	EncodingCompressed
)

func (e Encoding) String() string {
	switch e {
	case EncodingDense:
		return "Dense"
	case EncodingSparse:
		return "Sparse"
	case EncodingCompressed:
		return "Compressed"
	default:
		return "Unknown"
	}
}

// General is a supervision matrix held in exactly one of three encodings:
// a full dense matrix, a sparse per-row posterior list, or a byte-quantized
// compressed matrix. Readers that need dense values call Materialize; the
// shape and entry-sum queries work on any encoding without inflating it.
type General struct {
	encoding   Encoding
	dense      *mat.Dense
	sparse     *Sparse
	compressed *Compressed
}

// FromDense wraps a dense matrix as a General supervision matrix
func FromDense(d *mat.Dense) (*General, error) {
	if d == nil {
		return nil, fmt.Errorf("nil dense matrix")
	}
	return &General{encoding: EncodingDense, dense: d}, nil
}

// FromSparse wraps a sparse posterior matrix as a General supervision matrix
func FromSparse(s *Sparse) (*General, error) {
	if s == nil {
		return nil, fmt.Errorf("nil sparse matrix")
	}
	return &General{encoding: EncodingSparse, sparse: s}, nil
}

// FromCompressed wraps a compressed matrix as a General supervision matrix
func FromCompressed(c *Compressed) (*General, error) {
	if c == nil {
		return nil, fmt.Errorf("nil compressed matrix")
	}
	return &General{encoding: EncodingCompressed, compressed: c}, nil
}

// Encoding reports which form this matrix is stored in
func (g *General) Encoding() Encoding {
	return g.encoding
}

// Dims returns the row and column counts of the logical matrix
func (g *General) Dims() (rows, cols int) {
	switch g.encoding {
	case EncodingSparse:
		return g.sparse.Dims()
	case EncodingCompressed:
		return g.compressed.Dims()
	default:
		return g.dense.Dims()
	}
}

// Sum returns the sum of all entries of the logical matrix. For the sparse
// encoding only stored entries contribute; absent entries are zero.
func (g *General) Sum() float64 {
	switch g.encoding {
	case EncodingSparse:
		return g.sparse.Sum()
	case EncodingCompressed:
		return DenseSum(g.compressed.Dense())
	default:
		return DenseSum(g.dense)
	}
}

// Materialize returns the logical matrix as a freshly allocated dense matrix.
// The caller owns the result; mutating it never affects the General. This is
// the single materialization path shared by the quadratic objective and the
// compressed linear objective.
func (g *General) Materialize() *mat.Dense {
	switch g.encoding {
	case EncodingSparse:
		return g.sparse.Dense()
	case EncodingCompressed:
		return g.compressed.Dense()
	default:
		return mat.DenseCopyOf(g.dense)
	}
}

// RawDense returns the underlying dense matrix, or nil if the encoding is
// not EncodingDense. The General retains ownership.
func (g *General) RawDense() *mat.Dense {
	return g.dense
}

// RawSparse returns the underlying sparse matrix, or nil if the encoding is
// not EncodingSparse
func (g *General) RawSparse() *Sparse {
	return g.sparse
}

// RawCompressed returns the underlying compressed matrix, or nil if the
// encoding is not EncodingCompressed
func (g *General) RawCompressed() *Compressed {
	return g.compressed
}

// DenseSum sums every entry of a dense matrix, row by row so the arithmetic
// stays stride-safe for submatrix views
func DenseSum(d *mat.Dense) float64 {
	rows, _ := d.Dims()
	var total float64
	for i := 0; i < rows; i++ {
		total += floats.Sum(d.RawRowView(i))
	}
	return total
}

// DenseDot computes the elementwise product sum of two dense matrices of the
// same shape (the trace of aᵀ·b). Shapes must already have been validated.
func DenseDot(a, b *mat.Dense) float64 {
	rows, _ := a.Dims()
	var total float64
	for i := 0; i < rows; i++ {
		total += floats.Dot(a.RawRowView(i), b.RawRowView(i))
	}
	return total
}

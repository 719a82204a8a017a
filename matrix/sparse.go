package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Entry is one stored value in a sparse matrix row
type Entry struct {
	Col   int
	Value float64
}

// Sparse is a row-major sparse matrix holding posterior-style supervision:
// each row stores only its nonzero (column, value) pairs. Values are
// non-negative; in the common case a row is a probability distribution over
// classes and sums to at most one, but that is not enforced.
type Sparse struct {
	rows [][]Entry
	cols int
}

// NewSparse builds a sparse matrix from per-row entry lists. Column indices
// must lie in [0, cols) and values must be non-negative.
func NewSparse(rows [][]Entry, cols int) (*Sparse, error) {
	if cols <= 0 {
		return nil, fmt.Errorf("invalid column count %d, must be positive", cols)
	}
	for i, row := range rows {
		for _, e := range row {
			if e.Col < 0 || e.Col >= cols {
				return nil, fmt.Errorf("row %d: column index %d out of range [0, %d)", i, e.Col, cols)
			}
			if e.Value < 0 {
				return nil, fmt.Errorf("row %d: negative posterior value %g at column %d", i, e.Value, e.Col)
			}
		}
	}
	return &Sparse{rows: rows, cols: cols}, nil
}

// Dims returns the row and column counts
func (s *Sparse) Dims() (rows, cols int) {
	return len(s.rows), s.cols
}

// NumRows returns the row count
func (s *Sparse) NumRows() int {
	return len(s.rows)
}

// Row returns the stored entries of row i. The Sparse retains ownership.
func (s *Sparse) Row(i int) []Entry {
	return s.rows[i]
}

// Sum returns the sum of all stored values
func (s *Sparse) Sum() float64 {
	var total float64
	for _, row := range s.rows {
		for _, e := range row {
			total += e.Value
		}
	}
	return total
}

// DotDense computes Σ value·d[row][col] over all stored entries, the
// sparse-dense dot product (trace of dᵀ times this matrix). The dense
// argument must have at least as many rows and columns as this matrix;
// shapes are validated by the caller.
func (s *Sparse) DotDense(d *mat.Dense) float64 {
	var total float64
	for i, row := range s.rows {
		for _, e := range row {
			total += e.Value * d.At(i, e.Col)
		}
	}
	return total
}

// Dense materializes the sparse matrix into a freshly allocated dense matrix
func (s *Sparse) Dense() *mat.Dense {
	d := mat.NewDense(len(s.rows), s.cols, nil)
	for i, row := range s.rows {
		for _, e := range row {
			d.Set(i, e.Col, e.Value)
		}
	}
	return d
}

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Compressed is a dense matrix packed to one byte per entry with per-column
// linear quantization: entry (r, c) is stored as round((v - colMin[c]) / colStep[c]).
// Constant columns have step zero and reconstruct exactly; other columns
// reconstruct within half a quantization step. One-hot matrices round-trip
// exactly because 0 and 1 land on quantization points.
type Compressed struct {
	rows, cols int
	colMin     []float64
	colStep    []float64
	data       []byte // row-major, rows*cols bytes
}

// Compress quantizes a dense matrix into a Compressed
func Compress(d *mat.Dense) *Compressed {
	rows, cols := d.Dims()
	c := &Compressed{
		rows:    rows,
		cols:    cols,
		colMin:  make([]float64, cols),
		colStep: make([]float64, cols),
		data:    make([]byte, rows*cols),
	}
	for j := 0; j < cols; j++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := 0; i < rows; i++ {
			v := d.At(i, j)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		c.colMin[j] = lo
		if hi > lo {
			c.colStep[j] = (hi - lo) / 255.0
		}
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			step := c.colStep[j]
			if step == 0 {
				continue
			}
			q := math.Round((d.At(i, j) - c.colMin[j]) / step)
			c.data[i*cols+j] = byte(q)
		}
	}
	return c
}

// NewCompressed rebuilds a Compressed from its stored parts, as read back
// from an example archive. The payload is retained, not copied.
func NewCompressed(rows, cols int, colMin, colStep []float64, data []byte) (*Compressed, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid shape %dx%d", rows, cols)
	}
	if len(colMin) != cols || len(colStep) != cols {
		return nil, fmt.Errorf("column parameter length %d/%d does not match %d columns",
			len(colMin), len(colStep), cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("payload length %d does not match shape %dx%d", len(data), rows, cols)
	}
	return &Compressed{rows: rows, cols: cols, colMin: colMin, colStep: colStep, data: data}, nil
}

// Dims returns the row and column counts
func (c *Compressed) Dims() (rows, cols int) {
	return c.rows, c.cols
}

// Params returns the per-column quantization minimum and step.
// The Compressed retains ownership of both slices.
func (c *Compressed) Params() (colMin, colStep []float64) {
	return c.colMin, c.colStep
}

// Payload returns the row-major quantized bytes. The Compressed retains ownership.
func (c *Compressed) Payload() []byte {
	return c.data
}

// Dense materializes the compressed matrix into a freshly allocated dense matrix
func (c *Compressed) Dense() *mat.Dense {
	d := mat.NewDense(c.rows, c.cols, nil)
	for i := 0; i < c.rows; i++ {
		for j := 0; j < c.cols; j++ {
			v := c.colMin[j] + float64(c.data[i*c.cols+j])*c.colStep[j]
			d.Set(i, j, v)
		}
	}
	return d
}

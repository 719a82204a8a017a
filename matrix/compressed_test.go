package matrix

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestCompressOneHotRoundTripsExactly(t *testing.T) {
	d := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 0,
	})
	c := Compress(d)
	got := c.Dense()
	if !mat.Equal(got, d) {
		t.Errorf("one-hot round trip not exact:\n%v\nwant\n%v", mat.Formatted(got), mat.Formatted(d))
	}
}

func TestCompressConstantColumnExact(t *testing.T) {
	d := mat.NewDense(4, 2, []float64{
		3.5, 0.1,
		3.5, 0.9,
		3.5, 0.4,
		3.5, 0.7,
	})
	c := Compress(d)
	got := c.Dense()
	for i := 0; i < 4; i++ {
		if got.At(i, 0) != 3.5 {
			t.Errorf("constant column entry (%d,0) = %g, want exactly 3.5", i, got.At(i, 0))
		}
	}
}

func TestCompressWithinHalfStep(t *testing.T) {
	d := mat.NewDense(3, 2, []float64{
		0.13, -1.7,
		0.87, 2.3,
		0.41, 0.05,
	})
	c := Compress(d)
	got := c.Dense()
	_, colStep := c.Params()
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			diff := math.Abs(got.At(i, j) - d.At(i, j))
			if diff > colStep[j]/2+1e-12 {
				t.Errorf("entry (%d,%d): error %g exceeds half step %g", i, j, diff, colStep[j]/2)
			}
		}
	}
}

func TestNewCompressedValidation(t *testing.T) {
	colMin := []float64{0, 0}
	colStep := []float64{0.1, 0.1}

	if _, err := NewCompressed(2, 2, colMin, colStep, make([]byte, 3)); err == nil {
		t.Error("expected error for payload length mismatch")
	}
	if _, err := NewCompressed(2, 2, colMin[:1], colStep, make([]byte, 4)); err == nil {
		t.Error("expected error for column parameter length mismatch")
	}
	if _, err := NewCompressed(0, 2, colMin, colStep, nil); err == nil {
		t.Error("expected error for zero rows")
	}
	if _, err := NewCompressed(2, 2, colMin, colStep, make([]byte, 4)); err != nil {
		t.Errorf("unexpected error for valid inputs: %v", err)
	}
}

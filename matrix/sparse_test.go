package matrix

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewSparseValidation(t *testing.T) {
	t.Run("ColumnOutOfRange", func(t *testing.T) {
		_, err := NewSparse([][]Entry{{{Col: 3, Value: 0.5}}}, 3)
		if err == nil {
			t.Fatal("expected error for column index 3 with 3 columns")
		}
	})

	t.Run("NegativeValue", func(t *testing.T) {
		_, err := NewSparse([][]Entry{{{Col: 0, Value: -0.1}}}, 3)
		if err == nil {
			t.Fatal("expected error for negative posterior value")
		}
	})

	t.Run("NonPositiveCols", func(t *testing.T) {
		_, err := NewSparse(nil, 0)
		if err == nil {
			t.Fatal("expected error for zero column count")
		}
	})

	t.Run("Valid", func(t *testing.T) {
		s, err := NewSparse([][]Entry{
			{{Col: 0, Value: 0.7}, {Col: 2, Value: 0.3}},
			{{Col: 1, Value: 1.0}},
		}, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rows, cols := s.Dims()
		if rows != 2 || cols != 3 {
			t.Errorf("Dims() = %dx%d, want 2x3", rows, cols)
		}
	})
}

func TestSparseSum(t *testing.T) {
	s, err := NewSparse([][]Entry{
		{{Col: 0, Value: 0.7}, {Col: 2, Value: 0.3}},
		{{Col: 1, Value: 1.0}},
		{}, // empty row contributes nothing
	}, 3)
	if err != nil {
		t.Fatalf("NewSparse failed: %v", err)
	}
	if got := s.Sum(); math.Abs(got-2.0) > 1e-12 {
		t.Errorf("Sum() = %g, want 2.0", got)
	}
}

func TestSparseDotDense(t *testing.T) {
	s, err := NewSparse([][]Entry{
		{{Col: 0, Value: 1.0}},
		{{Col: 1, Value: 1.0}},
	}, 2)
	if err != nil {
		t.Fatalf("NewSparse failed: %v", err)
	}
	d := mat.NewDense(2, 2, []float64{0.9, 0.1, 0.2, 0.8})

	// 1.0*0.9 + 1.0*0.8 = 1.7
	if got := s.DotDense(d); math.Abs(got-1.7) > 1e-12 {
		t.Errorf("DotDense() = %g, want 1.7", got)
	}
}

func TestSparseDense(t *testing.T) {
	s, err := NewSparse([][]Entry{
		{{Col: 0, Value: 0.25}, {Col: 2, Value: 0.75}},
		{},
	}, 3)
	if err != nil {
		t.Fatalf("NewSparse failed: %v", err)
	}
	d := s.Dense()
	want := mat.NewDense(2, 3, []float64{0.25, 0, 0.75, 0, 0, 0})
	if !mat.EqualApprox(d, want, 1e-12) {
		t.Errorf("Dense() =\n%v\nwant\n%v", mat.Formatted(d), mat.Formatted(want))
	}
}

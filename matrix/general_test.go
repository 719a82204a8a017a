package matrix

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// threeEncodings builds a General in each encoding all representing the same
// logical one-hot matrix [[1,0],[0,1]].
func threeEncodings(t *testing.T) map[Encoding]*General {
	t.Helper()
	dense := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	sparse, err := NewSparse([][]Entry{
		{{Col: 0, Value: 1}},
		{{Col: 1, Value: 1}},
	}, 2)
	if err != nil {
		t.Fatalf("NewSparse failed: %v", err)
	}

	gd, err := FromDense(dense)
	if err != nil {
		t.Fatalf("FromDense failed: %v", err)
	}
	gs, err := FromSparse(sparse)
	if err != nil {
		t.Fatalf("FromSparse failed: %v", err)
	}
	gc, err := FromCompressed(Compress(dense))
	if err != nil {
		t.Fatalf("FromCompressed failed: %v", err)
	}
	return map[Encoding]*General{
		EncodingDense:      gd,
		EncodingSparse:     gs,
		EncodingCompressed: gc,
	}
}

func TestGeneralNilConstructors(t *testing.T) {
	if _, err := FromDense(nil); err == nil {
		t.Error("FromDense(nil) should fail")
	}
	if _, err := FromSparse(nil); err == nil {
		t.Error("FromSparse(nil) should fail")
	}
	if _, err := FromCompressed(nil); err == nil {
		t.Error("FromCompressed(nil) should fail")
	}
}

func TestGeneralAgreesAcrossEncodings(t *testing.T) {
	want := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	for enc, g := range threeEncodings(t) {
		if g.Encoding() != enc {
			t.Errorf("%s: Encoding() = %s", enc, g.Encoding())
		}
		rows, cols := g.Dims()
		if rows != 2 || cols != 2 {
			t.Errorf("%s: Dims() = %dx%d, want 2x2", enc, rows, cols)
		}
		if got := g.Sum(); math.Abs(got-2.0) > 1e-9 {
			t.Errorf("%s: Sum() = %g, want 2", enc, got)
		}
		if got := g.Materialize(); !mat.EqualApprox(got, want, 1e-9) {
			t.Errorf("%s: Materialize() =\n%v\nwant\n%v", enc, mat.Formatted(got), mat.Formatted(want))
		}
	}
}

func TestMaterializeReturnsFreshCopy(t *testing.T) {
	dense := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	g, err := FromDense(dense)
	if err != nil {
		t.Fatalf("FromDense failed: %v", err)
	}
	m := g.Materialize()
	m.Set(0, 0, 99)
	if dense.At(0, 0) != 1 {
		t.Error("mutating a materialized copy leaked into the original")
	}
}

func TestDenseSumAndDot(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{0.9, 0.1, 0.2, 0.8})
	b := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	if got := DenseSum(b); math.Abs(got-2.0) > 1e-12 {
		t.Errorf("DenseSum = %g, want 2", got)
	}
	// 0.9*1 + 0.1*0 + 0.2*0 + 0.8*1 = 1.7
	if got := DenseDot(a, b); math.Abs(got-1.7) > 1e-12 {
		t.Errorf("DenseDot = %g, want 1.7", got)
	}
}

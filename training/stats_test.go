package training

import (
	"math"
	"testing"
)

func TestPhaseAccumulation(t *testing.T) {
	var s ObjectiveStats

	// Minibatches 0..9 all land in phase 0 with a phase size of 10.
	for i := 0; i < 10; i++ {
		s.UpdateStats("output", 10, i, 1.0, -0.5)
		if s.CurrentPhase != 0 {
			t.Fatalf("minibatch %d: phase = %d, want 0", i, s.CurrentPhase)
		}
	}
	if math.Abs(s.TotWeightThisPhase-10) > 1e-12 {
		t.Errorf("phase weight = %g, want 10", s.TotWeightThisPhase)
	}

	// Minibatch 10 crosses into phase 1 and resets the phase accumulators
	// before folding in.
	s.UpdateStats("output", 10, 10, 2.0, -1.0)
	if s.CurrentPhase != 1 {
		t.Errorf("phase = %d, want 1", s.CurrentPhase)
	}
	if math.Abs(s.TotWeightThisPhase-2.0) > 1e-12 {
		t.Errorf("phase weight after boundary = %g, want 2", s.TotWeightThisPhase)
	}
	if math.Abs(s.TotWeight-12.0) > 1e-12 {
		t.Errorf("all-time weight = %g, want 12", s.TotWeight)
	}
	if math.Abs(s.TotObjf-(-6.0)) > 1e-12 {
		t.Errorf("all-time objective = %g, want -6", s.TotObjf)
	}
}

func TestPhaseJumpPanics(t *testing.T) {
	var s ObjectiveStats
	s.UpdateStats("output", 10, 10, 1, 0) // phase 0 -> 1 is fine

	defer func() {
		if recover() == nil {
			t.Error("expected panic on phase jump from 1 to 3")
		}
	}()
	s.UpdateStats("output", 10, 35, 1, 0) // phase 3: skipped phase 2
}

func TestPhaseBackwardsPanics(t *testing.T) {
	var s ObjectiveStats
	s.UpdateStats("output", 10, 5, 1, 0)  // phase 0
	s.UpdateStats("output", 10, 15, 1, 0) // phase 1
	s.UpdateStats("output", 10, 25, 1, 0) // phase 2

	defer func() {
		if recover() == nil {
			t.Error("expected panic on counter going backwards")
		}
	}()
	s.UpdateStats("output", 10, 5, 1, 0)
}

func TestPrintTotalStats(t *testing.T) {
	t.Run("ZeroWeightReportsNoData", func(t *testing.T) {
		var s ObjectiveStats
		// NaN average must not crash, and the return value says "no data".
		if s.PrintTotalStats("output") {
			t.Error("PrintTotalStats with zero weight should return false")
		}
	})

	t.Run("NonzeroWeight", func(t *testing.T) {
		var s ObjectiveStats
		s.UpdateStats("output", 10, 0, 3.0, -1.5)
		if !s.PrintTotalStats("output") {
			t.Error("PrintTotalStats with nonzero weight should return true")
		}
	})
}

func TestZeroWeightPhaseReportDoesNotCrash(t *testing.T) {
	var s ObjectiveStats
	// A whole phase of zero-weight observations, then a boundary: the phase
	// report divides zero by zero and must simply log NaN.
	for i := 0; i < 10; i++ {
		s.UpdateStats("output", 10, i, 0, 0)
	}
	s.UpdateStats("output", 10, 10, 1, -1)
	if s.CurrentPhase != 1 {
		t.Errorf("phase = %d, want 1", s.CurrentPhase)
	}
}

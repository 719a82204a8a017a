package training

import (
	"fmt"
	"log"
)

// ObjectiveStats tracks objective function values for one output name,
// partitioned into phases of a fixed number of minibatches for periodic
// progress reporting. The zero value is ready to use.
type ObjectiveStats struct {
	CurrentPhase int

	TotWeight float64
	TotObjf   float64

	TotWeightThisPhase float64
	TotObjfThisPhase   float64
}

// UpdateStats folds one observation into the phase and all-time accumulators.
// The phase equals minibatchCounter / minibatchesPerPhase; when it advances,
// a progress line for the just-completed phase is logged first and the phase
// accumulators reset.
//
// The phase may only stay or advance by exactly one. Anything else means the
// caller's counter went backwards or skipped, which is a bug, so it panics.
func (s *ObjectiveStats) UpdateStats(outputName string, minibatchesPerPhase, minibatchCounter int,
	weight, objf float64) {

	phase := minibatchCounter / minibatchesPerPhase
	if phase != s.CurrentPhase {
		if phase != s.CurrentPhase+1 {
			panic(fmt.Sprintf("objective stats for %q: phase jumped from %d to %d (minibatch counter %d)",
				outputName, s.CurrentPhase, phase, minibatchCounter))
		}
		s.PrintStatsForThisPhase(outputName, minibatchesPerPhase)
		s.CurrentPhase = phase
		s.TotWeightThisPhase = 0
		s.TotObjfThisPhase = 0
	}
	s.TotWeightThisPhase += weight
	s.TotObjfThisPhase += objf
	s.TotWeight += weight
	s.TotObjf += objf
}

// PrintStatsForThisPhase logs the average objective over the current phase
// and the minibatch range it covers. A zero-weight phase reports NaN.
func (s *ObjectiveStats) PrintStatsForThisPhase(outputName string, minibatchesPerPhase int) {
	startMinibatch := s.CurrentPhase * minibatchesPerPhase
	endMinibatch := startMinibatch + minibatchesPerPhase - 1
	log.Printf("Average objective function for %q for minibatches %d-%d is %.6g over %g frames.",
		outputName, startMinibatch, endMinibatch,
		s.TotObjfThisPhase/s.TotWeightThisPhase, s.TotWeightThisPhase)
}

// PrintTotalStats logs the all-time average objective and returns whether
// any weight was ever observed. A zero-weight total reports NaN but still
// returns false rather than failing.
func (s *ObjectiveStats) PrintTotalStats(outputName string) bool {
	log.Printf("Overall average objective function for %q is %.6g over %g frames.",
		outputName, s.TotObjf/s.TotWeight, s.TotWeight)
	return s.TotWeight != 0
}

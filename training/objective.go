package training

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/workflow-demo-org/nnetcore/compute"
	"github.com/workflow-demo-org/nnetcore/matrix"
	"github.com/workflow-demo-org/nnetcore/nnet"
)

// DimensionMismatchError reports that a network output and the supervision
// for it disagree on the number of columns (classes). This is a
// configuration error: the example was built for a different network.
type DimensionMismatchError struct {
	OutputName      string
	OutputCols      int
	SupervisionCols int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("network versus example output dimension (num-classes) mismatch for %q: %d (network) vs. %d (example)",
		e.OutputName, e.OutputCols, e.SupervisionCols)
}

// ComputeObjective computes the objective function for one output of the
// current minibatch and returns its total weight and total value. Divide
// the value by the weight to get the normalized objective.
//
// For the linear objective the weight is the sum of the supervision entries
// and the value is the dot product of output and supervision; the network
// is expected to end in a log-softmax layer, so this is the cross-entropy
// of pre-normalized log-likelihoods. For the quadratic objective the weight
// is the supervision's row count and the value is -0.5 times the squared
// Frobenius norm of (supervision - output).
//
// When supplyDeriv is true the derivative of the objective with respect to
// the output is pushed into the executor via AcceptOutputDeriv, which takes
// ownership of the matrix. This side effect is the whole point of the call
// during training; the function itself keeps no state and may run
// concurrently for distinct output names.
func ComputeObjective(sup *matrix.General, kind nnet.ObjectiveKind, outputName string,
	supplyDeriv bool, exec compute.Executor) (totWeight, totObjf float64, err error) {

	output, err := exec.GetOutput(outputName)
	if err != nil {
		return 0, 0, fmt.Errorf("getting output %q: %w", outputName, err)
	}
	_, outCols := output.Dims()
	_, supCols := sup.Dims()
	if outCols != supCols {
		return 0, 0, &DimensionMismatchError{
			OutputName:      outputName,
			OutputCols:      outCols,
			SupervisionCols: supCols,
		}
	}

	switch kind {
	case nnet.ObjectiveLinear:
		var deriv *mat.Dense
		switch sup.Encoding() {
		case matrix.EncodingSparse:
			post := sup.RawSparse()
			totWeight = post.Sum()
			totObjf = post.DotDense(output)
			if supplyDeriv {
				// d(output·post)/d(output) = post
				deriv = post.Dense()
			}
		case matrix.EncodingDense:
			totWeight = matrix.DenseSum(sup.RawDense())
			totObjf = matrix.DenseDot(output, sup.RawDense())
			if supplyDeriv {
				// Copy: the executor consumes the buffer it is given, and
				// the caller still owns the supervision.
				deriv = mat.DenseCopyOf(sup.RawDense())
			}
		case matrix.EncodingCompressed:
			post := sup.Materialize()
			totWeight = matrix.DenseSum(post)
			totObjf = matrix.DenseDot(output, post)
			if supplyDeriv {
				deriv = post
			}
		default:
			return 0, 0, fmt.Errorf("output %q: unknown supervision encoding %d", outputName, sup.Encoding())
		}
		if deriv != nil {
			if err := exec.AcceptOutputDeriv(outputName, deriv); err != nil {
				return 0, 0, fmt.Errorf("supplying derivative for %q: %w", outputName, err)
			}
		}
		return totWeight, totObjf, nil

	case nnet.ObjectiveQuadratic:
		diff := sup.Materialize()
		diff.Sub(diff, output)
		rows, _ := diff.Dims()
		totWeight = float64(rows)
		totObjf = -0.5 * matrix.DenseDot(diff, diff)
		if supplyDeriv {
			// d(-0.5||sup-output||²)/d(output) = sup - output = diff
			if err := exec.AcceptOutputDeriv(outputName, diff); err != nil {
				return 0, 0, fmt.Errorf("supplying derivative for %q: %w", outputName, err)
			}
		}
		return totWeight, totObjf, nil

	default:
		return 0, 0, fmt.Errorf("output %q: objective kind %s not handled", outputName, kind)
	}
}

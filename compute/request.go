package compute

import (
	"fmt"
	"strings"

	"github.com/workflow-demo-org/nnetcore/nnet"
)

// IOSpec describes the shape of one input or output in a computation request
type IOSpec struct {
	Name string
	Rows int
	Cols int
	// HasDeriv is true when the computation must produce (for inputs) or
	// accept (for outputs) a derivative for this stream.
	HasDeriv bool
}

// Request describes the computation a trainer needs for one example shape:
// which streams go in, which come out, and whether the backward pass must
// compute model derivatives and component statistics.
type Request struct {
	Inputs              []IOSpec
	Outputs             []IOSpec
	NeedModelDerivative bool
	StoreComponentStats bool
}

// RequestFromExample derives a computation request from an example by
// partitioning its streams into inputs and outputs according to the
// network's node table. A stream that names no network node is an input
// validation error. Output streams are marked as needing a derivative
// because training always backpropagates through every output.
func RequestFromExample(net *nnet.Network, eg *nnet.Example, needModelDeriv, storeComponentStats bool) (*Request, error) {
	req := &Request{
		NeedModelDerivative: needModelDeriv,
		StoreComponentStats: storeComponentStats,
	}
	for _, io := range eg.IO {
		node, ok := net.NodeIndex(io.Name)
		if !ok {
			return nil, fmt.Errorf("example stream %q does not match any network node", io.Name)
		}
		if io.Features == nil {
			return nil, fmt.Errorf("example stream %q has nil features", io.Name)
		}
		rows, cols := io.Features.Dims()
		spec := IOSpec{Name: io.Name, Rows: rows, Cols: cols}
		if net.IsOutputNode(node) {
			spec.HasDeriv = true
			req.Outputs = append(req.Outputs, spec)
		} else {
			req.Inputs = append(req.Inputs, spec)
		}
	}
	if len(req.Inputs) == 0 {
		return nil, fmt.Errorf("example has no input streams")
	}
	if len(req.Outputs) == 0 {
		return nil, fmt.Errorf("example has no output streams")
	}
	return req, nil
}

// Fingerprint returns a canonical string key covering everything that
// affects compilation: stream names, shapes, derivative flags, and the
// request-level flags. Two requests with equal fingerprints may share a
// compiled plan.
func (r *Request) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "deriv=%t stats=%t", r.NeedModelDerivative, r.StoreComponentStats)
	b.WriteString(" in:")
	for _, s := range r.Inputs {
		fmt.Fprintf(&b, "%s/%dx%d/%t;", s.Name, s.Rows, s.Cols, s.HasDeriv)
	}
	b.WriteString(" out:")
	for _, s := range r.Outputs {
		fmt.Fprintf(&b, "%s/%dx%d/%t;", s.Name, s.Rows, s.Cols, s.HasDeriv)
	}
	return b.String()
}

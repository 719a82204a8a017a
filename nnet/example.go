package nnet

import (
	"fmt"

	"github.com/workflow-demo-org/nnetcore/matrix"
)

// IO is one named stream of a minibatch example. For input streams Features
// carries the input values; for output streams it carries the supervision.
type IO struct {
	Name     string
	Features *matrix.General
}

// Example is one minibatch: a collection of named input and output streams.
// Which streams are inputs and which are outputs is decided by the network's
// node table, not by the example itself.
type Example struct {
	IO []IO
}

// Check validates the example against a network: every stream must name a
// known node and carry a feature matrix whose column count matches the
// node's dimensionality. Row-count agreement across streams is the
// executor's concern.
func (eg *Example) Check(net *Network) error {
	if len(eg.IO) == 0 {
		return fmt.Errorf("example has no io streams")
	}
	for _, io := range eg.IO {
		node, ok := net.NodeIndex(io.Name)
		if !ok {
			return fmt.Errorf("example stream %q does not match any network node", io.Name)
		}
		if io.Features == nil {
			return fmt.Errorf("example stream %q has nil features", io.Name)
		}
		if _, cols := io.Features.Dims(); cols != net.NodeDim(node) {
			return fmt.Errorf("example stream %q has %d columns, node expects %d",
				io.Name, cols, net.NodeDim(node))
		}
	}
	return nil
}

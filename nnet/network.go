package nnet

import (
	"fmt"
	"sort"
)

// NodeKind distinguishes input nodes from output nodes
type NodeKind int

const (
	NodeInput NodeKind = iota
	NodeOutput
)

func (k NodeKind) String() string {
	switch k {
	case NodeInput:
		return "Input"
	case NodeOutput:
		return "Output"
	default:
		return "Unknown"
	}
}

// Node is one named endpoint of the network. Objective is meaningful only
// when Kind is NodeOutput.
type Node struct {
	Name      string
	Kind      NodeKind
	Dim       int
	Objective ObjectiveKind
}

// ComponentStats accumulates activation and derivative statistics for one
// nonlinear component, for diagnostics. Count is the number of rows folded
// in; ValueSum and DerivSum are per-dimension running totals.
type ComponentStats struct {
	Count    float64
	ValueSum []float64
	DerivSum []float64
}

// Network is the description of a network the trainer needs: its named
// input/output nodes with dimensions and objective kinds, plus per-component
// statistics accumulators. The executor owns the actual parameters; the
// trainer only queries the node table and (optionally) zeroes the stats.
type Network struct {
	nodes      []Node
	index      map[string]int
	components map[string]*ComponentStats
}

// NewNetwork creates an empty network description
func NewNetwork() *Network {
	return &Network{
		index:      make(map[string]int),
		components: make(map[string]*ComponentStats),
	}
}

func (n *Network) addNode(node Node) error {
	if node.Name == "" {
		return fmt.Errorf("node name must not be empty")
	}
	if _, exists := n.index[node.Name]; exists {
		return fmt.Errorf("duplicate node name %q", node.Name)
	}
	if node.Dim <= 0 {
		return fmt.Errorf("node %q: dimension %d must be positive", node.Name, node.Dim)
	}
	n.index[node.Name] = len(n.nodes)
	n.nodes = append(n.nodes, node)
	return nil
}

// AddInput adds an input node with the given dimensionality
func (n *Network) AddInput(name string, dim int) error {
	return n.addNode(Node{Name: name, Kind: NodeInput, Dim: dim})
}

// AddOutput adds an output node with the given dimensionality and objective kind
func (n *Network) AddOutput(name string, dim int, objective ObjectiveKind) error {
	return n.addNode(Node{Name: name, Kind: NodeOutput, Dim: dim, Objective: objective})
}

// NodeIndex looks up a node by name
func (n *Network) NodeIndex(name string) (int, bool) {
	i, ok := n.index[name]
	return i, ok
}

// IsOutputNode reports whether node i is an output node
func (n *Network) IsOutputNode(i int) bool {
	return n.nodes[i].Kind == NodeOutput
}

// ObjectiveKind returns the objective kind declared for node i
func (n *Network) ObjectiveKind(i int) ObjectiveKind {
	return n.nodes[i].Objective
}

// NodeName returns the name of node i
func (n *Network) NodeName(i int) string {
	return n.nodes[i].Name
}

// NodeDim returns the dimensionality of node i
func (n *Network) NodeDim(i int) int {
	return n.nodes[i].Dim
}

// NumNodes returns the number of nodes
func (n *Network) NumNodes() int {
	return len(n.nodes)
}

// OutputNames returns the names of all output nodes in sorted order
func (n *Network) OutputNames() []string {
	var names []string
	for _, node := range n.nodes {
		if node.Kind == NodeOutput {
			names = append(names, node.Name)
		}
	}
	sort.Strings(names)
	return names
}

// AddComponent registers a statistics accumulator for a nonlinear component
func (n *Network) AddComponent(name string, dim int) error {
	if name == "" {
		return fmt.Errorf("component name must not be empty")
	}
	if _, exists := n.components[name]; exists {
		return fmt.Errorf("duplicate component name %q", name)
	}
	if dim <= 0 {
		return fmt.Errorf("component %q: dimension %d must be positive", name, dim)
	}
	n.components[name] = &ComponentStats{
		ValueSum: make([]float64, dim),
		DerivSum: make([]float64, dim),
	}
	return nil
}

// AccumulateComponentStats folds one row of activations and derivatives into
// a component's accumulators. Executors call this during the forward and
// backward passes when the computation request asked for component stats.
func (n *Network) AccumulateComponentStats(name string, values, derivs []float64) error {
	stats, ok := n.components[name]
	if !ok {
		return fmt.Errorf("unknown component %q", name)
	}
	if len(values) != len(stats.ValueSum) || len(derivs) != len(stats.DerivSum) {
		return fmt.Errorf("component %q: got %d values and %d derivs, want %d",
			name, len(values), len(derivs), len(stats.ValueSum))
	}
	stats.Count++
	for i, v := range values {
		stats.ValueSum[i] += v
	}
	for i, v := range derivs {
		stats.DerivSum[i] += v
	}
	return nil
}

// ZeroComponentStats resets every component accumulator to zero
func (n *Network) ZeroComponentStats() {
	for _, stats := range n.components {
		stats.Count = 0
		for i := range stats.ValueSum {
			stats.ValueSum[i] = 0
		}
		for i := range stats.DerivSum {
			stats.DerivSum[i] = 0
		}
	}
}

// ComponentStatsFor returns the accumulator for a component, if registered.
// The Network retains ownership.
func (n *Network) ComponentStatsFor(name string) (*ComponentStats, bool) {
	stats, ok := n.components[name]
	return stats, ok
}

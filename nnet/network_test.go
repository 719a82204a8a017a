package nnet

import (
	"testing"
)

func buildNet(t *testing.T) *Network {
	t.Helper()
	net := NewNetwork()
	if err := net.AddInput("input", 4); err != nil {
		t.Fatalf("AddInput failed: %v", err)
	}
	if err := net.AddOutput("output", 2, ObjectiveLinear); err != nil {
		t.Fatalf("AddOutput failed: %v", err)
	}
	if err := net.AddOutput("output-xent", 2, ObjectiveQuadratic); err != nil {
		t.Fatalf("AddOutput failed: %v", err)
	}
	return net
}

func TestNetworkBuilder(t *testing.T) {
	net := buildNet(t)

	t.Run("DuplicateName", func(t *testing.T) {
		if err := net.AddInput("input", 4); err == nil {
			t.Error("expected error for duplicate node name")
		}
	})

	t.Run("NonPositiveDim", func(t *testing.T) {
		if err := net.AddInput("bad", 0); err == nil {
			t.Error("expected error for zero dimension")
		}
	})

	t.Run("EmptyName", func(t *testing.T) {
		if err := net.AddOutput("", 2, ObjectiveLinear); err == nil {
			t.Error("expected error for empty node name")
		}
	})
}

func TestNetworkQueries(t *testing.T) {
	net := buildNet(t)

	if net.NumNodes() != 3 {
		t.Errorf("NumNodes() = %d, want 3", net.NumNodes())
	}

	i, ok := net.NodeIndex("output")
	if !ok {
		t.Fatal("NodeIndex(output) not found")
	}
	if !net.IsOutputNode(i) {
		t.Error("output should be an output node")
	}
	if net.ObjectiveKind(i) != ObjectiveLinear {
		t.Errorf("ObjectiveKind = %s, want Linear", net.ObjectiveKind(i))
	}
	if net.NodeDim(i) != 2 {
		t.Errorf("NodeDim = %d, want 2", net.NodeDim(i))
	}
	if net.NodeName(i) != "output" {
		t.Errorf("NodeName = %q, want output", net.NodeName(i))
	}

	j, ok := net.NodeIndex("input")
	if !ok {
		t.Fatal("NodeIndex(input) not found")
	}
	if net.IsOutputNode(j) {
		t.Error("input should not be an output node")
	}

	if _, ok := net.NodeIndex("missing"); ok {
		t.Error("NodeIndex(missing) should not be found")
	}

	names := net.OutputNames()
	if len(names) != 2 || names[0] != "output" || names[1] != "output-xent" {
		t.Errorf("OutputNames() = %v, want sorted [output output-xent]", names)
	}
}

func TestComponentStats(t *testing.T) {
	net := NewNetwork()
	if err := net.AddComponent("relu1", 3); err != nil {
		t.Fatalf("AddComponent failed: %v", err)
	}
	if err := net.AddComponent("relu1", 3); err == nil {
		t.Error("expected error for duplicate component")
	}

	if err := net.AccumulateComponentStats("relu1", []float64{1, 2, 3}, []float64{0.1, 0.2, 0.3}); err != nil {
		t.Fatalf("AccumulateComponentStats failed: %v", err)
	}
	if err := net.AccumulateComponentStats("relu1", []float64{1, 1, 1}, []float64{0.1, 0.1, 0.1}); err != nil {
		t.Fatalf("AccumulateComponentStats failed: %v", err)
	}

	if err := net.AccumulateComponentStats("missing", nil, nil); err == nil {
		t.Error("expected error for unknown component")
	}
	if err := net.AccumulateComponentStats("relu1", []float64{1}, []float64{1}); err == nil {
		t.Error("expected error for dimension mismatch")
	}

	stats, ok := net.ComponentStatsFor("relu1")
	if !ok {
		t.Fatal("ComponentStatsFor(relu1) not found")
	}
	if stats.Count != 2 {
		t.Errorf("Count = %g, want 2", stats.Count)
	}
	if stats.ValueSum[2] != 4 {
		t.Errorf("ValueSum[2] = %g, want 4", stats.ValueSum[2])
	}

	net.ZeroComponentStats()
	if stats.Count != 0 || stats.ValueSum[0] != 0 || stats.DerivSum[2] != 0 {
		t.Error("ZeroComponentStats did not reset accumulators")
	}
}

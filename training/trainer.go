package training

import (
	"flag"
	"fmt"
	"sort"

	"github.com/workflow-demo-org/nnetcore/compute"
	"github.com/workflow-demo-org/nnetcore/nnet"
)

// Config holds trainer options
type Config struct {
	// StoreComponentStats asks the executor to accumulate activation and
	// derivative statistics for nonlinear components during training.
	StoreComponentStats bool

	// ZeroComponentStats zeroes the network's component statistics once at
	// trainer construction, but only if StoreComponentStats is also set.
	ZeroComponentStats bool

	// PrintInterval is the number of minibatches per reporting phase.
	PrintInterval int

	// PlanCacheSize bounds the compiled-plan cache; zero selects the default.
	PlanCacheSize int
}

// DefaultConfig returns the standard trainer options
func DefaultConfig() Config {
	return Config{
		StoreComponentStats: false,
		ZeroComponentStats:  true,
		PrintInterval:       100,
	}
}

// RegisterFlags exposes the config fields on a flag set, for binaries
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.StoreComponentStats, "store-component-stats", c.StoreComponentStats,
		"If true, store activations and derivatives for nonlinear components during training.")
	fs.BoolVar(&c.ZeroComponentStats, "zero-component-stats", c.ZeroComponentStats,
		"If both this and -store-component-stats are true, the component stats are zeroed before training.")
	fs.IntVar(&c.PrintInterval, "print-interval", c.PrintInterval,
		"Interval (measured in minibatches) after which the objective function is printed during training.")
	fs.IntVar(&c.PlanCacheSize, "plan-cache-size", c.PlanCacheSize,
		"Capacity of the compiled computation plan cache (0 selects the default).")
}

func validateConfig(c Config) error {
	if c.PrintInterval <= 0 {
		return fmt.Errorf("print interval %d must be positive", c.PrintInterval)
	}
	if c.PlanCacheSize < 0 {
		return fmt.Errorf("plan cache size %d must not be negative", c.PlanCacheSize)
	}
	return nil
}

// Trainer runs single-threaded minibatch training of a network against a
// compute backend, using the standard linear (cross-entropy) and quadratic
// objectives. It owns the plan cache, the minibatch counter, and the
// per-output objective statistics; two trainers must never share any of
// these, so construct one Trainer per training run.
type Trainer struct {
	config   Config
	net      *nnet.Network
	backend  compute.Backend
	compiler *compute.CachingCompiler

	// Incremented once per processed output stream, not once per Train
	// call. With multiple output nodes the phase arithmetic for each
	// output therefore sees the counter advance by the total number of
	// outputs between its own observations. Kept for compatibility with
	// existing training logs and tooling.
	numMinibatchesProcessed int

	objfInfo map[string]*ObjectiveStats
}

// NewTrainer creates a trainer for the given network and backend. If the
// config asks for component statistics and for zeroing them, the network's
// accumulated statistics are reset here, once.
func NewTrainer(config Config, net *nnet.Network, backend compute.Backend) (*Trainer, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid trainer config: %w", err)
	}
	if net == nil {
		return nil, fmt.Errorf("nil network")
	}
	if backend == nil {
		return nil, fmt.Errorf("nil backend")
	}
	compiler, err := compute.NewCachingCompiler(backend, config.PlanCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating plan cache: %w", err)
	}
	if config.StoreComponentStats && config.ZeroComponentStats {
		net.ZeroComponentStats()
	}
	return &Trainer{
		config:   config,
		net:      net,
		backend:  backend,
		compiler: compiler,
		objfInfo: make(map[string]*ObjectiveStats),
	}, nil
}

// Train runs one minibatch: compile (or fetch the cached plan), feed inputs,
// forward, process every output stream's objective, backward. Any error
// aborts the minibatch and propagates; the caller decides whether to go on
// with the next example.
func (t *Trainer) Train(eg *nnet.Example) error {
	needModelDerivative := true
	req, err := compute.RequestFromExample(t.net, eg, needModelDerivative, t.config.StoreComponentStats)
	if err != nil {
		return fmt.Errorf("deriving computation request: %w", err)
	}
	plan, err := t.compiler.Compile(req)
	if err != nil {
		return fmt.Errorf("compiling computation: %w", err)
	}
	exec, err := t.backend.NewExecutor(plan, t.net)
	if err != nil {
		return fmt.Errorf("creating executor: %w", err)
	}
	if err := exec.AcceptInputs(t.net, eg); err != nil {
		return fmt.Errorf("accepting inputs: %w", err)
	}
	if err := exec.Forward(); err != nil {
		return fmt.Errorf("forward pass: %w", err)
	}
	if err := t.processOutputs(eg, exec); err != nil {
		return err
	}
	if err := exec.Backward(); err != nil {
		return fmt.Errorf("backward pass: %w", err)
	}
	return nil
}

func (t *Trainer) processOutputs(eg *nnet.Example, exec compute.Executor) error {
	for _, io := range eg.IO {
		node, ok := t.net.NodeIndex(io.Name)
		if !ok {
			// RequestFromExample already validated the names.
			return fmt.Errorf("example stream %q does not match any network node", io.Name)
		}
		if !t.net.IsOutputNode(node) {
			continue
		}
		kind := t.net.ObjectiveKind(node)
		supplyDeriv := true
		totWeight, totObjf, err := ComputeObjective(io.Features, kind, io.Name, supplyDeriv, exec)
		if err != nil {
			return fmt.Errorf("computing objective for %q: %w", io.Name, err)
		}
		stats, ok := t.objfInfo[io.Name]
		if !ok {
			stats = &ObjectiveStats{}
			t.objfInfo[io.Name] = stats
		}
		stats.UpdateStats(io.Name, t.config.PrintInterval, t.numMinibatchesProcessed,
			totWeight, totObjf)
		t.numMinibatchesProcessed++
	}
	return nil
}

// PrintTotalStats logs the final objective summary for every output that was
// ever observed, in sorted name order, and reports whether any of them
// accumulated nonzero weight.
func (t *Trainer) PrintTotalStats() bool {
	ans := false
	for _, name := range sortedKeys(t.objfInfo) {
		if t.objfInfo[name].PrintTotalStats(name) {
			ans = true
		}
	}
	return ans
}

// PlanCacheStats exposes the compiled-plan cache counters, for diagnostics
func (t *Trainer) PlanCacheStats() compute.CacheStats {
	return t.compiler.Stats()
}

func sortedKeys(m map[string]*ObjectiveStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

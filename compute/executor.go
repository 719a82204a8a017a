package compute

import (
	"gonum.org/v1/gonum/mat"

	"github.com/workflow-demo-org/nnetcore/nnet"
)

// Plan is a compiled, executable computation. It is opaque to the trainer
// and owned by the compiler that produced it: callers must not mutate it,
// and may hold it only as long as the compiler lives.
type Plan interface{}

// Compiler turns a computation request into an executable plan. Compile is
// deterministic: structurally identical requests yield interchangeable plans.
type Compiler interface {
	Compile(req *Request) (Plan, error)
}

// Executor runs one compiled plan over one minibatch. Calls follow a strict
// order: AcceptInputs, Forward, any number of GetOutput/AcceptOutputDeriv
// pairs, Backward. AcceptOutputDeriv takes ownership of the matrix it is
// given; the caller must not read or write it afterwards.
type Executor interface {
	AcceptInputs(net *nnet.Network, eg *nnet.Example) error
	Forward() error
	Backward() error
	GetOutput(name string) (*mat.Dense, error)
	AcceptOutputDeriv(name string, deriv *mat.Dense) error
}

// Backend couples a compiler with an executor factory. The trainer holds a
// Backend and never constructs executors any other way.
type Backend interface {
	Compiler
	NewExecutor(plan Plan, net *nnet.Network) (Executor, error)
}

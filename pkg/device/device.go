package device

import (
	"github.com/jodafons/gomna/pkg/matrix"
)

// Method selects the companion-model integration rule.
type Method int

const (
	BE Method = iota + 1 // Backward Euler
	FE                   // Forward Euler (inductors only)
	TR                   // Trapezoidal
)

func (m Method) String() string {
	switch m {
	case BE:
		return "BE"
	case FE:
		return "FE"
	case TR:
		return "TR"
	}
	return "?"
}

// Context carries the state of the current time step into the stamps.
// X is the Newton iterate, Prev the last accepted solution; devices read
// both and write neither.
type Context struct {
	Time      float64
	Dt        float64
	DtPrev    float64
	BaseDt    float64 // nominal step, substitutes zero rise/fall times
	Step      int     // time step index, 0 is the first
	Iteration int     // Newton iteration within the step, reset on restart
	Method    Method
	X         []float64
	Prev      []float64
}

type Device interface {
	GetName() string
	GetType() string
	GetNodes() []int
	Stamp(sys *matrix.System, ctx *Context) error
}

// TimeDependent devices carry history across time steps. BeginStep runs
// once per step before the Newton loop and derives this step's history
// terms from the accepted past; it must be idempotent. UpdateState runs
// only after a step has been accepted.
type TimeDependent interface {
	BeginStep(ctx *Context)
	UpdateState(x []float64, ctx *Context)
}

// NonLinear marks devices whose stamps depend on the Newton iterate.
type NonLinear interface {
	NonLinear() bool
}

// BranchOwner devices allocate extra branch-current variables. The
// allocation pass assigns consecutive indices after the node voltages;
// BranchNames supplies one trace column name per variable.
type BranchOwner interface {
	BranchNames() []string
	SetBranches(idx []int)
}

type BaseDevice struct {
	Name  string
	Nodes []int
}

func (d *BaseDevice) GetName() string { return d.Name }

func (d *BaseDevice) GetNodes() []int { return d.Nodes }

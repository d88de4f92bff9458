package device

import (
	"github.com/jodafons/gomna/pkg/matrix"
)

// Inductor is the branch-current form: it owns one extra variable holding
// its current, which keeps it usable in inductive cutsets and lets mutual
// couplings reach the current directly.
type Inductor struct {
	BaseDevice
	Value  float64
	IC     float64
	branch int
	iPrev  float64
}

var _ TimeDependent = (*Inductor)(nil)
var _ BranchOwner = (*Inductor)(nil)

func NewInductor(name string, n1, n2 int, value, ic float64) *Inductor {
	return &Inductor{
		BaseDevice: BaseDevice{Name: name, Nodes: []int{n1, n2}},
		Value:      value,
		IC:         ic,
		branch:     -1,
	}
}

func (l *Inductor) GetType() string { return "L" }

func (l *Inductor) BranchNames() []string { return []string{"j" + l.Name} }

func (l *Inductor) SetBranches(idx []int) { l.branch = idx[0] }

func (l *Inductor) BranchIndex() int { return l.branch }

// HistoryCurrent is the accepted branch current entering this step.
// Mutual couplings borrow it for their history terms.
func (l *Inductor) HistoryCurrent(step int) float64 {
	if step == 0 {
		return l.IC
	}
	return l.iPrev
}

func (l *Inductor) Stamp(sys *matrix.System, ctx *Context) error {
	a, b, x := l.Nodes[0], l.Nodes[1], l.branch
	hist := l.HistoryCurrent(ctx.Step)

	sys.AddElement(a, x, 1)
	sys.AddElement(b, x, -1)

	switch ctx.Method {
	case FE:
		// L*(j(t0+dt)-j(t0))/dt = V(t0): the voltage of the known step
		// goes to the excitation and the node columns stay empty.
		g := l.Value / ctx.Dt
		sys.AddElement(x, x, g)
		sys.AddRHS(x, g*hist)
		if ctx.Step > 0 {
			sys.AddRHS(x, ctx.Prev[a]-ctx.Prev[b])
		}
	case TR:
		g := 2 * l.Value / ctx.Dt
		sys.AddElement(x, a, -1)
		sys.AddElement(x, b, 1)
		sys.AddElement(x, x, g)
		sys.AddRHS(x, g*hist)
		if ctx.Step > 0 {
			sys.AddRHS(x, ctx.Prev[a]-ctx.Prev[b])
		}
	default: // BE
		g := l.Value / ctx.Dt
		sys.AddElement(x, a, -1)
		sys.AddElement(x, b, 1)
		sys.AddElement(x, x, g)
		sys.AddRHS(x, g*hist)
	}
	return nil
}

func (l *Inductor) BeginStep(ctx *Context) {}

func (l *Inductor) UpdateState(x []float64, ctx *Context) {
	l.iPrev = x[l.branch]
}

// Current reports the accepted branch current.
func (l *Inductor) Current() float64 { return l.iPrev }

package device

import (
	"github.com/jodafons/gomna/pkg/matrix"
)

// NodalInductor is the companion form used in plain nodal analysis: no
// extra variable, just a conductance plus a history current that is
// integrated forward from the accepted node voltages. It cannot take part
// in mutual couplings.
type NodalInductor struct {
	BaseDevice
	Value    float64
	IC       float64
	hist     float64
	histStep float64
}

var _ TimeDependent = (*NodalInductor)(nil)

func NewNodalInductor(name string, n1, n2 int, value, ic float64) *NodalInductor {
	return &NodalInductor{
		BaseDevice: BaseDevice{Name: name, Nodes: []int{n1, n2}},
		Value:      value,
		IC:         ic,
	}
}

func (l *NodalInductor) GetType() string { return "X" }

func (l *NodalInductor) BeginStep(ctx *Context) {
	if ctx.Step == 0 {
		l.histStep = l.IC
		return
	}
	v := ctx.Prev[l.Nodes[0]] - ctx.Prev[l.Nodes[1]]
	switch ctx.Method {
	case FE:
		// Completes the previous step with the current dt.
		l.histStep = l.hist + ctx.Dt*v/l.Value
	case TR:
		// Completes the previous step with the old dt and advances half
		// the new one.
		l.histStep = l.hist + (ctx.DtPrev+ctx.Dt)*v/l.Value/2
	default: // BE
		l.histStep = l.hist + ctx.DtPrev*v/l.Value
	}
}

func (l *NodalInductor) Stamp(sys *matrix.System, ctx *Context) error {
	a, b := l.Nodes[0], l.Nodes[1]
	switch ctx.Method {
	case FE:
		// Pure history source: the new voltage does not appear.
	case TR:
		sys.Conductance(a, b, ctx.Dt/l.Value/2)
	default: // BE
		sys.Conductance(a, b, ctx.Dt/l.Value)
	}
	sys.CurrentSource(a, b, l.histStep)
	return nil
}

func (l *NodalInductor) UpdateState(x []float64, ctx *Context) {
	l.hist = l.histStep
}

// Current reports the history-current source of the last accepted step.
// The current through the companion conductance in that step is not
// included.
func (l *NodalInductor) Current() float64 { return l.hist }

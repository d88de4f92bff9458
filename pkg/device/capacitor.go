package device

import (
	"github.com/jodafons/gomna/pkg/matrix"
)

// capCompanion is the discretized capacitor shared by the Capacitor device
// and the logic-gate input model. vPrev is the accepted voltage across the
// element, vStar the trapezoidal equivalent-source voltage of the last
// accepted step, vStarStep the one in effect for the current step.
type capCompanion struct {
	c         float64
	ic        float64
	vPrev     float64
	vStar     float64
	vStarStep float64
}

func (cc *capCompanion) beginStep(ctx *Context) {
	if ctx.Method != TR {
		return
	}
	if ctx.Step == 0 {
		cc.vStarStep = cc.ic
		return
	}
	// Trapezoidal identity across a step change: the branch current of the
	// previous step uses the previous dt, the new source voltage the
	// current one.
	iPrev := 2 * cc.c / ctx.DtPrev * (cc.vPrev - cc.vStar)
	g := 2 * cc.c / ctx.Dt
	cc.vStarStep = cc.vPrev + iPrev/g
}

func (cc *capCompanion) stamp(sys *matrix.System, ctx *Context, a, b int) {
	if ctx.Method == TR {
		g := 2 * cc.c / ctx.Dt
		sys.Conductance(a, b, g)
		sys.CurrentSource(b, a, g*cc.vStarStep)
		return
	}
	// Backward Euler; FE has no capacitor form of its own and uses it too.
	g := cc.c / ctx.Dt
	sys.Conductance(a, b, g)
	hist := cc.vPrev
	if ctx.Step == 0 {
		hist = cc.ic
	}
	sys.CurrentSource(b, a, g*hist)
}

func (cc *capCompanion) update(v float64) {
	cc.vPrev = v
	cc.vStar = cc.vStarStep
}

type Capacitor struct {
	BaseDevice
	Value float64
	IC    float64
	comp  capCompanion
}

var _ TimeDependent = (*Capacitor)(nil)

func NewCapacitor(name string, n1, n2 int, value, ic float64) *Capacitor {
	return &Capacitor{
		BaseDevice: BaseDevice{Name: name, Nodes: []int{n1, n2}},
		Value:      value,
		IC:         ic,
		comp:       capCompanion{c: value, ic: ic},
	}
}

func (c *Capacitor) GetType() string { return "C" }

func (c *Capacitor) Stamp(sys *matrix.System, ctx *Context) error {
	c.comp.stamp(sys, ctx, c.Nodes[0], c.Nodes[1])
	return nil
}

func (c *Capacitor) BeginStep(ctx *Context) { c.comp.beginStep(ctx) }

func (c *Capacitor) UpdateState(x []float64, ctx *Context) {
	c.comp.update(x[c.Nodes[0]] - x[c.Nodes[1]])
}

// Voltage reports the accepted capacitor voltage.
func (c *Capacitor) Voltage() float64 { return c.comp.vPrev }

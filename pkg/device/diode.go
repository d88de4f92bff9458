package device

import (
	"math"

	"github.com/jodafons/gomna/internal/consts"
	"github.com/jodafons/gomna/pkg/matrix"
)

// stampJunction linearizes an exponential junction around the iterate and
// stamps the companion conductance and equivalent current from a to b.
// On the very first iteration of the run the junction is seeded at 0.6 V;
// afterwards the voltage is clamped at 0.9 V to keep the exponential in
// range. Returns (g, ieq) for the transistor models that reuse them.
func stampJunction(sys *matrix.System, ctx *Context, a, b int) (float64, float64) {
	var v float64
	if ctx.Step == 0 && ctx.Iteration == 0 {
		v = 0.6
	} else {
		v = ctx.X[a] - ctx.X[b]
		if v > 0.9 {
			v = 0.9
		}
	}
	ex := math.Exp(v / consts.ThermalVoltage)
	g := consts.SaturationCur / consts.ThermalVoltage * ex
	ieq := consts.SaturationCur*(ex-1) - g*v
	sys.Conductance(a, b, g)
	sys.CurrentSource(a, b, ieq)
	return g, ieq
}

type Diode struct {
	BaseDevice
}

var _ NonLinear = (*Diode)(nil)

func NewDiode(name string, n1, n2 int) *Diode {
	return &Diode{BaseDevice{Name: name, Nodes: []int{n1, n2}}}
}

func (d *Diode) GetType() string { return "D" }

func (d *Diode) NonLinear() bool { return true }

func (d *Diode) Stamp(sys *matrix.System, ctx *Context) error {
	stampJunction(sys, ctx, d.Nodes[0], d.Nodes[1])
	return nil
}

package device

import (
	"github.com/jodafons/gomna/pkg/matrix"
)

// NLResistor is the piecewise-linear resistor: four (V,I) breakpoints
// define three segments; the one holding the present iterate supplies the
// conductance and intercept current.
type NLResistor struct {
	BaseDevice
	V [4]float64
	I [4]float64
}

var _ NonLinear = (*NLResistor)(nil)

func NewNLResistor(name string, n1, n2 int, points [8]float64) *NLResistor {
	r := &NLResistor{BaseDevice: BaseDevice{Name: name, Nodes: []int{n1, n2}}}
	for i := 0; i < 4; i++ {
		r.V[i] = points[2*i]
		r.I[i] = points[2*i+1]
	}
	return r
}

func (r *NLResistor) GetType() string { return "N" }

func (r *NLResistor) NonLinear() bool { return true }

func (r *NLResistor) Stamp(sys *matrix.System, ctx *Context) error {
	a, b := r.Nodes[0], r.Nodes[1]
	v := ctx.X[a] - ctx.X[b]

	var g, ieq float64
	switch {
	case v > r.V[2]:
		g = (r.I[3] - r.I[2]) / (r.V[3] - r.V[2])
		ieq = r.I[3] - g*r.V[3]
	case v > r.V[1]:
		g = (r.I[2] - r.I[1]) / (r.V[2] - r.V[1])
		ieq = r.I[2] - g*r.V[2]
	default:
		g = (r.I[1] - r.I[0]) / (r.V[1] - r.V[0])
		ieq = r.I[1] - g*r.V[1]
	}

	sys.Conductance(a, b, g)
	sys.CurrentSource(a, b, ieq)
	return nil
}

package device

import (
	"github.com/jodafons/gomna/internal/consts"
	"github.com/jodafons/gomna/pkg/matrix"
)

type MosKind int

const (
	NMOS MosKind = iota
	PMOS
)

// Mosfet is the square-law model with channel-length modulation. Nodes are
// [drain, gate, source, bulk]; the bulk terminal only fixes the body
// potential and does not conduct. Drain and source are relabeled each
// iteration so the higher-potential terminal acts as the drain (the
// comparison and all signs invert for PMOS).
type Mosfet struct {
	BaseDevice
	Kind MosKind
	L    float64
	W    float64
}

var _ NonLinear = (*Mosfet)(nil)

func NewMosfet(name string, nd, ng, ns, nb int, kind MosKind, l, w float64) *Mosfet {
	return &Mosfet{BaseDevice{Name: name, Nodes: []int{nd, ng, ns, nb}}, kind, l, w}
}

func (m *Mosfet) GetType() string { return "M" }

func (m *Mosfet) NonLinear() bool { return true }

func (m *Mosfet) Stamp(sys *matrix.System, ctx *Context) error {
	x := ctx.X
	gate := m.Nodes[1]
	drain, source := m.Nodes[0], m.Nodes[2]

	sign := 1.0
	if m.Kind == PMOS {
		sign = -1.0
	}
	if sign*(x[drain]-x[source]) < 0 {
		drain, source = source, drain
	}

	// Seed the channel conducting on the very first iteration, otherwise
	// an all-zero initial guess leaves the device open forever.
	seed := ctx.Step == 0 && ctx.Iteration == 0
	vgs := 2.0
	if !seed {
		vgs = sign * (x[gate] - x[source])
	}
	if vgs <= consts.MosVt0 && !seed {
		return nil
	}

	vds := sign * (x[drain] - x[source])
	km := consts.MosK0 * m.W / m.L
	vov := vgs - consts.MosVt0

	var g, gds, id float64
	if vds > vov { // saturation
		g = 2 * km * vov * (1 + consts.MosLambda*vds)
		gds = km * vov * vov * consts.MosLambda
		id = km * vov * vov * (1 + consts.MosLambda*vds)
	} else { // triode
		g = 2 * km * vds * (1 + consts.MosLambda*vds)
		gds = km * (2*vov - 2*vds + 4*consts.MosLambda*vov*vds - 3*consts.MosLambda*vds*vds)
		id = km * (2*vov*vds - vds*vds) * (1 + consts.MosLambda*vds)
	}

	ieq := sign * (id - g*vgs - gds*vds)
	sys.Transconductance(drain, source, gate, source, g)
	sys.Conductance(drain, source, gds)
	sys.CurrentSource(drain, source, ieq)
	return nil
}

package device

import (
	"github.com/jodafons/gomna/pkg/matrix"
)

type GateKind int

const (
	NOT GateKind = iota
	AND
	NAND
	OR
	NOR
	XOR
	XNOR
)

var gateSymbols = map[byte]GateKind{
	'>': NOT, ')': AND, '(': NAND, '}': OR, '{': NOR, ']': XOR, '[': XNOR,
}

// GateKindFromSymbol maps the netlist symbol of a gate to its kind.
func GateKindFromSymbol(sym byte) (GateKind, bool) {
	k, ok := gateSymbols[sym]
	return k, ok
}

// Gate is the behavioral logic gate. Each input loads the driving node
// with a grounded capacitor C; the output is a Norton stage: a
// voltage-controlled current source with a three-segment transfer curve,
// an offset current and the output resistor R, all referenced to ground.
// V is the supply swing and A the transfer slope before saturation.
type Gate struct {
	BaseDevice
	Kind GateKind
	V    float64
	R    float64
	C    float64
	A    float64

	inA, inB, out int
	capA, capB    capCompanion
}

var _ TimeDependent = (*Gate)(nil)
var _ NonLinear = (*Gate)(nil)

func NewGate(name string, kind GateKind, inA, inB, out int, v, r, c, a float64) *Gate {
	nodes := []int{inA, inB, out}
	if kind == NOT {
		inB = -1
		nodes = []int{inA, out}
	}
	return &Gate{
		BaseDevice: BaseDevice{Name: name, Nodes: nodes},
		Kind:       kind,
		V:          v, R: r, C: c, A: a,
		inA: inA, inB: inB, out: out,
		capA: capCompanion{c: c},
		capB: capCompanion{c: c},
	}
}

func (g *Gate) GetType() string { return string([]byte{gateSymbol(g.Kind)}) }

func gateSymbol(k GateKind) byte {
	for sym, kind := range gateSymbols {
		if kind == k {
			return sym
		}
	}
	return '?'
}

func (g *Gate) NonLinear() bool { return true }

func (g *Gate) BeginStep(ctx *Context) {
	g.capA.beginStep(ctx)
	if g.inB >= 0 {
		g.capB.beginStep(ctx)
	}
}

func (g *Gate) UpdateState(x []float64, ctx *Context) {
	g.capA.update(x[g.inA])
	if g.inB >= 0 {
		g.capB.update(x[g.inB])
	}
}

// transfer picks the controlling input and the segment constants of the
// output curve for the present iterate: the node the transconductance
// acts on, the slope inside the linear band, and the saturated output
// levels below VIL and above VIH.
func (g *Gate) transfer(x []float64) (ctrl int, slope, lowLevel, highLevel float64) {
	va := x[g.inA]
	vb := va
	if g.inB >= 0 {
		vb = x[g.inB]
	}
	minIn, maxIn := g.inA, g.inA
	if g.inB >= 0 {
		if va > vb {
			minIn, maxIn = g.inB, g.inA
		} else {
			minIn, maxIn = g.inA, g.inB
		}
	}

	switch g.Kind {
	case NOT:
		return g.inA, -g.A, g.V, 0
	case AND:
		return minIn, g.A, 0, g.V
	case NAND:
		return minIn, -g.A, g.V, 0
	case OR:
		return maxIn, g.A, 0, g.V
	case NOR:
		return maxIn, -g.A, g.V, 0
	case XOR:
		if va+vb > g.V {
			return minIn, -g.A, g.V, 0
		}
		return maxIn, g.A, 0, g.V
	default: // XNOR
		if va+vb > g.V {
			return minIn, g.A, 0, g.V
		}
		return maxIn, -g.A, g.V, 0
	}
}

func (g *Gate) Stamp(sys *matrix.System, ctx *Context) error {
	g.capA.stamp(sys, ctx, g.inA, 0)
	if g.inB >= 0 {
		g.capB.stamp(sys, ctx, g.inB, 0)
	}

	vm := g.V / 2
	vih := vm + vm/g.A
	vil := vm - vm/g.A

	ctrl, slope, lowLevel, highLevel := g.transfer(ctx.X)

	var gain, level float64
	switch vc := ctx.X[ctrl]; {
	case vc > vih:
		gain, level = 0, highLevel
	case vc > vil:
		gain = slope
		level = vm - gain*vm
	default:
		gain, level = 0, lowLevel
	}

	sys.Transconductance(0, g.out, ctrl, 0, gain/g.R)
	sys.CurrentSource(0, g.out, level/g.R)
	sys.Conductance(g.out, 0, 1/g.R)
	return nil
}

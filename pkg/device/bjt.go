package device

import (
	"github.com/jodafons/gomna/internal/consts"
	"github.com/jodafons/gomna/pkg/matrix"
)

type BjtKind int

const (
	NPN BjtKind = iota
	PNP
)

// Bjt is the Ebers-Moll transistor: two coupled junctions plus the
// forward and reverse transfer sources. Nodes are [collector, base,
// emitter].
type Bjt struct {
	BaseDevice
	Kind BjtKind
}

var _ NonLinear = (*Bjt)(nil)

func NewBjt(name string, nc, nb, ne int, kind BjtKind) *Bjt {
	return &Bjt{BaseDevice{Name: name, Nodes: []int{nc, nb, ne}}, kind}
}

func (q *Bjt) GetType() string { return "Q" }

func (q *Bjt) NonLinear() bool { return true }

func (q *Bjt) Stamp(sys *matrix.System, ctx *Context) error {
	c, b, e := q.Nodes[0], q.Nodes[1], q.Nodes[2]

	if q.Kind == NPN {
		g, ieq := stampJunction(sys, ctx, b, e)
		sys.CurrentSource(c, b, consts.BjtAlpha*ieq)
		sys.Transconductance(c, b, b, e, consts.BjtAlpha*g)

		g, ieq = stampJunction(sys, ctx, b, c)
		sys.CurrentSource(e, b, consts.BjtAlphaR*ieq)
		sys.Transconductance(e, b, b, c, consts.BjtAlphaR*g)
		return nil
	}

	// PNP: junction polarities flip, the transconductances keep their rows.
	g, ieq := stampJunction(sys, ctx, e, b)
	sys.CurrentSource(b, c, consts.BjtAlpha*ieq)
	sys.Transconductance(c, b, b, e, consts.BjtAlpha*g)

	g, ieq = stampJunction(sys, ctx, c, b)
	sys.CurrentSource(b, e, consts.BjtAlphaR*ieq)
	sys.Transconductance(e, b, b, c, consts.BjtAlphaR*g)
	return nil
}

package device

import (
	"fmt"
	"math"

	"github.com/jodafons/gomna/pkg/matrix"
)

// Mutual couples two branch-form inductors. It owns no variables of its
// own: it borrows the branch indices of the inductors it references, which
// must therefore be declared before it.
type Mutual struct {
	BaseDevice
	K  float64
	L1 *Inductor
	L2 *Inductor
	M  float64
}

func NewMutual(name string, l1, l2 *Inductor, k float64) *Mutual {
	return &Mutual{
		BaseDevice: BaseDevice{Name: name},
		K:          k,
		L1:         l1,
		L2:         l2,
		M:          k * math.Sqrt(l1.Value*l2.Value),
	}
}

func (m *Mutual) GetType() string { return "K" }

func (m *Mutual) Stamp(sys *matrix.System, ctx *Context) error {
	if ctx.Method == FE {
		return fmt.Errorf("mutual coupling %s: not representable with forward Euler", m.Name)
	}

	g := m.M / ctx.Dt
	if ctx.Method == TR {
		g *= 2
	}

	x, y := m.L1.BranchIndex(), m.L2.BranchIndex()
	sys.AddElement(x, y, g)
	sys.AddElement(y, x, g)
	sys.AddRHS(x, g*m.L2.HistoryCurrent(ctx.Step))
	sys.AddRHS(y, g*m.L1.HistoryCurrent(ctx.Step))
	return nil
}

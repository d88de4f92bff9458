package device

import (
	"github.com/jodafons/gomna/pkg/matrix"
)

// The four linear controlled sources. Nodes are laid out as
// [out+, out-, ctrl+, ctrl-].

type VCCS struct {
	BaseDevice
	Gain float64
}

func NewVCCS(name string, n1, n2, nc1, nc2 int, gain float64) *VCCS {
	return &VCCS{BaseDevice{Name: name, Nodes: []int{n1, n2, nc1, nc2}}, gain}
}

func (g *VCCS) GetType() string { return "G" }

func (g *VCCS) Stamp(sys *matrix.System, ctx *Context) error {
	n := g.Nodes
	sys.Transconductance(n[0], n[1], n[2], n[3], g.Gain)
	return nil
}

type VCVS struct {
	BaseDevice
	Gain   float64
	branch int
}

var _ BranchOwner = (*VCVS)(nil)

func NewVCVS(name string, n1, n2, nc1, nc2 int, gain float64) *VCVS {
	return &VCVS{BaseDevice{Name: name, Nodes: []int{n1, n2, nc1, nc2}}, gain, -1}
}

func (e *VCVS) GetType() string { return "E" }

func (e *VCVS) BranchNames() []string { return []string{"j" + e.Name} }

func (e *VCVS) SetBranches(idx []int) { e.branch = idx[0] }

func (e *VCVS) Stamp(sys *matrix.System, ctx *Context) error {
	n, x := e.Nodes, e.branch
	sys.AddElement(n[0], x, 1)
	sys.AddElement(n[1], x, -1)
	// va - vb - gain*(vc - vd) = 0
	sys.AddElement(x, n[0], 1)
	sys.AddElement(x, n[1], -1)
	sys.AddElement(x, n[2], -e.Gain)
	sys.AddElement(x, n[3], e.Gain)
	return nil
}

// CCCS shorts its control branch and mirrors that branch current, scaled,
// into the output pair. The extra variable is the control current.
type CCCS struct {
	BaseDevice
	Gain   float64
	branch int
}

var _ BranchOwner = (*CCCS)(nil)

func NewCCCS(name string, n1, n2, nc1, nc2 int, gain float64) *CCCS {
	return &CCCS{BaseDevice{Name: name, Nodes: []int{n1, n2, nc1, nc2}}, gain, -1}
}

func (f *CCCS) GetType() string { return "F" }

func (f *CCCS) BranchNames() []string { return []string{"j" + f.Name} }

func (f *CCCS) SetBranches(idx []int) { f.branch = idx[0] }

func (f *CCCS) Stamp(sys *matrix.System, ctx *Context) error {
	n, x := f.Nodes, f.branch
	sys.AddElement(n[0], x, f.Gain)
	sys.AddElement(n[1], x, -f.Gain)
	sys.AddElement(n[2], x, 1)
	sys.AddElement(n[3], x, -1)
	// vc - vd = 0, the control branch is a short
	sys.AddElement(x, n[2], 1)
	sys.AddElement(x, n[3], -1)
	return nil
}

// CCVS needs two extra variables: the output branch current and the
// shorted control branch current the transresistance acts on.
type CCVS struct {
	BaseDevice
	Gain float64
	jx   int
	jy   int
}

var _ BranchOwner = (*CCVS)(nil)

func NewCCVS(name string, n1, n2, nc1, nc2 int, gain float64) *CCVS {
	return &CCVS{BaseDevice{Name: name, Nodes: []int{n1, n2, nc1, nc2}}, gain, -1, -1}
}

func (h *CCVS) GetType() string { return "H" }

func (h *CCVS) BranchNames() []string { return []string{"jx" + h.Name, "jy" + h.Name} }

func (h *CCVS) SetBranches(idx []int) { h.jx, h.jy = idx[0], idx[1] }

func (h *CCVS) Stamp(sys *matrix.System, ctx *Context) error {
	n := h.Nodes
	sys.AddElement(n[0], h.jx, 1)
	sys.AddElement(n[1], h.jx, -1)
	sys.AddElement(n[2], h.jy, 1)
	sys.AddElement(n[3], h.jy, -1)
	sys.AddElement(h.jx, n[0], 1)
	sys.AddElement(h.jx, n[1], -1)
	sys.AddElement(h.jy, n[2], 1)
	sys.AddElement(h.jy, n[3], -1)
	sys.AddElement(h.jx, h.jy, -h.Gain)
	return nil
}

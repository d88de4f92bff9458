package device

import (
	"github.com/jodafons/gomna/pkg/matrix"
)

// OpAmp is the ideal operational amplifier: infinite gain expressed as a
// nullor. The extra variable is the output branch current; its equation
// forces the input difference to zero. Nodes are [out+, out-, in+, in-].
type OpAmp struct {
	BaseDevice
	branch int
}

var _ BranchOwner = (*OpAmp)(nil)

func NewOpAmp(name string, n1, n2, nc1, nc2 int) *OpAmp {
	return &OpAmp{BaseDevice{Name: name, Nodes: []int{n1, n2, nc1, nc2}}, -1}
}

func (o *OpAmp) GetType() string { return "O" }

func (o *OpAmp) BranchNames() []string { return []string{"j" + o.Name} }

func (o *OpAmp) SetBranches(idx []int) { o.branch = idx[0] }

func (o *OpAmp) Stamp(sys *matrix.System, ctx *Context) error {
	n, x := o.Nodes, o.branch
	sys.AddElement(n[0], x, 1)
	sys.AddElement(n[1], x, -1)
	sys.AddElement(x, n[2], 1)
	sys.AddElement(x, n[3], -1)
	return nil
}

package device

import (
	"github.com/jodafons/gomna/pkg/matrix"
)

type Resistor struct {
	BaseDevice
	Value float64
}

func NewResistor(name string, n1, n2 int, value float64) *Resistor {
	return &Resistor{
		BaseDevice: BaseDevice{Name: name, Nodes: []int{n1, n2}},
		Value:      value,
	}
}

func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Stamp(sys *matrix.System, ctx *Context) error {
	sys.Conductance(r.Nodes[0], r.Nodes[1], 1/r.Value)
	return nil
}

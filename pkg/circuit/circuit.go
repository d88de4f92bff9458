package circuit

import (
	"fmt"

	"github.com/jodafons/gomna/pkg/device"
)

// TooManyVariablesError reports that node or branch allocation exceeded
// the configured bound.
type TooManyVariablesError struct {
	Limit int
}

func (e *TooManyVariablesError) Error() string {
	return fmt.Sprintf("too many unknowns: limit is %d variables", e.Limit)
}

// Circuit is the in-memory description the engine consumes: the node
// table, the device list and the variable layout. Node voltages occupy
// variables 1..NumNodes, branch currents follow. It is built once from a
// netlist and mutated only through device history during a run.
type Circuit struct {
	nodes       map[string]int
	nodeNames   []string
	devices     []device.Device
	branchNames []string
	numVars     int
	maxNodes    int
	maxVars     int
	nonlinear   bool
	allocated   bool
}

func New(maxNodes, maxVars int) *Circuit {
	return &Circuit{
		nodes:    map[string]int{"0": 0, "gnd": 0},
		maxNodes: maxNodes,
		maxVars:  maxVars,
	}
}

// Node resolves a node label to its index, creating it on first
// reference. Ground is "0" or "gnd".
func (c *Circuit) Node(name string) (int, error) {
	if idx, ok := c.nodes[name]; ok {
		return idx, nil
	}
	if len(c.nodeNames) >= c.maxNodes {
		return 0, &TooManyVariablesError{Limit: c.maxNodes}
	}
	c.nodeNames = append(c.nodeNames, name)
	idx := len(c.nodeNames)
	c.nodes[name] = idx
	return idx, nil
}

func (c *Circuit) AddDevice(d device.Device) {
	c.devices = append(c.devices, d)
	if nl, ok := d.(device.NonLinear); ok && nl.NonLinear() {
		c.nonlinear = true
	}
}

// AssignBranches runs the extra-variable allocation pass. Indices are
// assigned in device order after the node voltages and attached back to
// the owning devices, so references to them (mutual couplings, trace
// columns) stay stable.
func (c *Circuit) AssignBranches() error {
	if c.allocated {
		return nil
	}
	next := len(c.nodeNames) + 1
	for _, d := range c.devices {
		owner, ok := d.(device.BranchOwner)
		if !ok {
			continue
		}
		names := owner.BranchNames()
		idx := make([]int, len(names))
		for i, name := range names {
			if next > c.maxVars {
				return &TooManyVariablesError{Limit: c.maxVars}
			}
			idx[i] = next
			c.branchNames = append(c.branchNames, name)
			next++
		}
		owner.SetBranches(idx)
	}
	c.numVars = next - 1
	c.allocated = true
	return nil
}

func (c *Circuit) NumNodes() int { return len(c.nodeNames) }

func (c *Circuit) NumVars() int { return c.numVars }

func (c *Circuit) Devices() []device.Device { return c.devices }

func (c *Circuit) HasNonlinear() bool { return c.nonlinear }

// VariableNames lists the trace column names for variables 1..NumVars:
// the node labels followed by the generated branch-current names.
func (c *Circuit) VariableNames() []string {
	names := make([]string, 0, c.numVars)
	names = append(names, c.nodeNames...)
	names = append(names, c.branchNames...)
	return names
}

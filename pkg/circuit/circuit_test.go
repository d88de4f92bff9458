package circuit

import (
	"errors"
	"testing"

	"github.com/jodafons/gomna/pkg/device"
)

func TestNodeResolution(t *testing.T) {
	c := New(10, 100)

	for _, g := range []string{"0", "gnd"} {
		if idx, _ := c.Node(g); idx != 0 {
			t.Errorf("Node(%q) = %d, want 0", g, idx)
		}
	}

	a, _ := c.Node("in")
	b, _ := c.Node("out")
	again, _ := c.Node("in")
	if a != 1 || b != 2 || again != a {
		t.Errorf("got %d %d %d, want stable 1 2 1", a, b, again)
	}
	if c.NumNodes() != 2 {
		t.Errorf("NumNodes = %d, want 2", c.NumNodes())
	}
}

func TestBranchAllocationStable(t *testing.T) {
	c := New(10, 100)
	n1, _ := c.Node("1")
	n2, _ := c.Node("2")

	v := device.NewVoltageSource("V1", n1, 0, device.DCWave(1))
	l := device.NewInductor("L1", n1, n2, 1e-3, 0)
	h := device.NewCCVS("H1", n1, 0, n2, 0, 50)
	c.AddDevice(v)
	c.AddDevice(l)
	c.AddDevice(h)

	if err := c.AssignBranches(); err != nil {
		t.Fatal(err)
	}
	if got := v.BranchIndex(); got != 3 {
		t.Errorf("V branch = %d, want 3", got)
	}
	if got := l.BranchIndex(); got != 4 {
		t.Errorf("L branch = %d, want 4", got)
	}
	if c.NumVars() != 6 {
		t.Errorf("NumVars = %d, want 6 (2 nodes + 4 branches)", c.NumVars())
	}

	names := c.VariableNames()
	want := []string{"1", "2", "jV1", "jL1", "jxH1", "jyH1"}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("names[%d] = %q, want %q", i, names[i], n)
		}
	}

	// A second pass must not reallocate.
	if err := c.AssignBranches(); err != nil {
		t.Fatal(err)
	}
	if v.BranchIndex() != 3 || c.NumVars() != 6 {
		t.Error("reallocation moved branch indices")
	}
}

func TestVariableLimit(t *testing.T) {
	c := New(10, 3)
	n1, _ := c.Node("1")
	n2, _ := c.Node("2")
	c.AddDevice(device.NewVoltageSource("V1", n1, 0, device.DCWave(1)))
	c.AddDevice(device.NewInductor("L1", n1, n2, 1e-3, 0))

	err := c.AssignBranches()
	var toomany *TooManyVariablesError
	if !errors.As(err, &toomany) || toomany.Limit != 3 {
		t.Fatalf("expected TooManyVariablesError{3}, got %v", err)
	}
}

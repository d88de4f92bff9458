package device

import (
	"math"
	"testing"

	"github.com/jodafons/gomna/pkg/matrix"
)

func newCtx(nv int, method Method) *Context {
	return &Context{
		Dt:     1e-6,
		DtPrev: 1e-6,
		BaseDt: 1e-6,
		Method: method,
		X:      make([]float64, nv+1),
		Prev:   make([]float64, nv+1),
	}
}

func TestResistorStamp(t *testing.T) {
	sys := matrix.NewSystem(2)
	r := NewResistor("R1", 1, 2, 100)
	if err := r.Stamp(sys, newCtx(2, BE)); err != nil {
		t.Fatal(err)
	}
	g := 0.01
	if sys.At(1, 1) != g || sys.At(2, 2) != g || sys.At(1, 2) != -g || sys.At(2, 1) != -g {
		t.Errorf("unexpected stamp: %g %g %g %g",
			sys.At(1, 1), sys.At(2, 2), sys.At(1, 2), sys.At(2, 1))
	}
}

// The node submatrix of a passive network must stay symmetric under the
// trapezoidal rule.
func TestPassiveStampSymmetry(t *testing.T) {
	const nodes = 3
	sys := matrix.NewSystem(nodes)
	ctx := newCtx(nodes, TR)
	ctx.Step = 1

	devs := []Device{
		NewResistor("R1", 1, 2, 1e3),
		NewCapacitor("C1", 2, 3, 1e-6, 0),
		NewNodalInductor("X1", 3, 0, 1e-3, 0),
		NewResistor("R2", 1, 0, 2e3),
	}
	for _, d := range devs {
		if td, ok := d.(TimeDependent); ok {
			td.BeginStep(ctx)
		}
		if err := d.Stamp(sys, ctx); err != nil {
			t.Fatal(err)
		}
	}

	for i := 1; i <= nodes; i++ {
		for j := i + 1; j <= nodes; j++ {
			if sys.At(i, j) != sys.At(j, i) {
				t.Errorf("A[%d][%d]=%g != A[%d][%d]=%g",
					i, j, sys.At(i, j), j, i, sys.At(j, i))
			}
		}
	}
}

func TestCapacitorCompanionBE(t *testing.T) {
	sys := matrix.NewSystem(2)
	c := NewCapacitor("C1", 1, 2, 1e-6, 3)
	ctx := newCtx(2, BE)
	ctx.Dt = 1e-3

	c.BeginStep(ctx)
	if err := c.Stamp(sys, ctx); err != nil {
		t.Fatal(err)
	}

	g := 1e-3 // C/dt
	if math.Abs(sys.At(1, 1)-g) > 1e-18 {
		t.Errorf("conductance %g, want %g", sys.At(1, 1), g)
	}
	// History source g*IC flows from node 2 to node 1 on the first step.
	if math.Abs(sys.RHS(1)-g*3) > 1e-18 || math.Abs(sys.RHS(2)+g*3) > 1e-18 {
		t.Errorf("history source wrong: rhs = [%g %g]", sys.RHS(1), sys.RHS(2))
	}
}

func TestInductorStampBE(t *testing.T) {
	sys := matrix.NewSystem(3)
	l := NewInductor("L1", 1, 2, 1e-3, 0.5)
	l.SetBranches([]int{3})
	ctx := newCtx(3, BE)
	ctx.Dt = 1e-6

	if err := l.Stamp(sys, ctx); err != nil {
		t.Fatal(err)
	}

	if sys.At(1, 3) != 1 || sys.At(2, 3) != -1 || sys.At(3, 1) != -1 || sys.At(3, 2) != 1 {
		t.Error("branch coupling entries wrong")
	}
	g := 1e-3 / 1e-6
	if sys.At(3, 3) != g {
		t.Errorf("diagonal %g, want %g", sys.At(3, 3), g)
	}
	if sys.RHS(3) != g*0.5 {
		t.Errorf("history %g, want %g", sys.RHS(3), g*0.5)
	}
}

func TestForwardEulerInductorOmitsBackCoupling(t *testing.T) {
	sys := matrix.NewSystem(3)
	l := NewInductor("L1", 1, 2, 1e-3, 0)
	l.SetBranches([]int{3})
	ctx := newCtx(3, FE)
	ctx.Step = 1
	ctx.Prev[1] = 2 // V(t0) = 2 goes into the excitation instead

	if err := l.Stamp(sys, ctx); err != nil {
		t.Fatal(err)
	}
	if sys.At(3, 1) != 0 || sys.At(3, 2) != 0 {
		t.Error("FE must not couple the branch row back to the nodes")
	}
	if sys.RHS(3) != 2 {
		t.Errorf("excitation %g, want 2", sys.RHS(3))
	}
}

func TestNLResistorSegments(t *testing.T) {
	// Chua-style curve.
	r := NewNLResistor("N1", 1, 2, [8]float64{-2, 1.1, -1, 0.7, 1, -0.7, 2, -1.1})

	cases := []struct {
		v     float64
		slope float64
	}{
		{-1.5, -0.4}, // leftmost segment
		{0, -0.7},    // middle segment
		{1.5, -0.4},  // rightmost segment
	}
	for _, c := range cases {
		sys := matrix.NewSystem(2)
		ctx := newCtx(2, BE)
		ctx.X[1] = c.v
		if err := r.Stamp(sys, ctx); err != nil {
			t.Fatal(err)
		}
		if math.Abs(sys.At(1, 1)-c.slope) > 1e-12 {
			t.Errorf("v=%g: slope %g, want %g", c.v, sys.At(1, 1), c.slope)
		}
	}
}

func TestDiodeSeedAndClamp(t *testing.T) {
	d := NewDiode("D1", 1, 0)

	// First iteration of the first step linearizes around 0.6 V.
	sys := matrix.NewSystem(1)
	ctx := newCtx(1, BE)
	if err := d.Stamp(sys, ctx); err != nil {
		t.Fatal(err)
	}
	gSeed := 3.7751345e-14 / 25e-3 * math.Exp(0.6/25e-3)
	if math.Abs(sys.At(1, 1)-gSeed) > gSeed*1e-12 {
		t.Errorf("seed conductance %g, want %g", sys.At(1, 1), gSeed)
	}

	// A large iterate is clamped to 0.9 V to keep the exponential finite.
	sys = matrix.NewSystem(1)
	ctx.Iteration = 1
	ctx.X[1] = 5
	if err := d.Stamp(sys, ctx); err != nil {
		t.Fatal(err)
	}
	gClamp := 3.7751345e-14 / 25e-3 * math.Exp(0.9/25e-3)
	if math.Abs(sys.At(1, 1)-gClamp) > gClamp*1e-12 {
		t.Errorf("clamped conductance %g, want %g", sys.At(1, 1), gClamp)
	}
}

func TestGateTransferRegions(t *testing.T) {
	// V=5, A=10: VM=2.5, VIH=2.75, VIL=2.25.
	g := NewGate(">1", NOT, 1, -1, 2, 5, 100, 1e-9, 10)

	cases := []struct {
		vin   float64
		gain  float64
		level float64
	}{
		{5, 0, 0},        // input high, output saturated low
		{2.5, -10, 27.5}, // linear band: level = VM - slope*VM
		{0, 0, 5},        // input low, output saturated high
	}
	for _, c := range cases {
		sys := matrix.NewSystem(2)
		ctx := newCtx(2, BE)
		ctx.Step = 1
		ctx.X[1] = c.vin
		if err := g.Stamp(sys, ctx); err != nil {
			t.Fatal(err)
		}
		// The output carries the Norton pair: A[out][ctrl] holds
		// -gain/R, the excitation level/R flows into the output.
		wantCross := -c.gain / 100
		if math.Abs(sys.At(2, 1)-wantCross) > 1e-12 {
			t.Errorf("vin=%g: A[out][in]=%g, want %g", c.vin, sys.At(2, 1), wantCross)
		}
		if math.Abs(sys.RHS(2)-c.level/100) > 1e-12 {
			t.Errorf("vin=%g: rhs=%g, want %g", c.vin, sys.RHS(2), c.level/100)
		}
	}
}

func TestXorControlSelection(t *testing.T) {
	g := NewGate("]1", XOR, 1, 2, 3, 5, 100, 1e-9, 10)
	x := []float64{0, 5, 0, 0}

	// One input high, one low: control follows the larger input and the
	// output saturates high.
	ctrl, _, _, highLevel := g.transfer(x)
	if ctrl != 1 {
		t.Errorf("control node %d, want 1", ctrl)
	}
	if highLevel != 5 {
		t.Errorf("highLevel = %g, want 5", highLevel)
	}

	// Both high: the input sum exceeds V, control switches to the smaller
	// input and the saturated side drops low.
	x[2] = 5
	_, _, _, highLevel = g.transfer(x)
	if highLevel != 0 {
		t.Errorf("both-high highLevel = %g, want 0", highLevel)
	}
}

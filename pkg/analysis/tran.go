package analysis

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/jodafons/gomna/internal/consts"
	"github.com/jodafons/gomna/pkg/circuit"
	"github.com/jodafons/gomna/pkg/device"
	"github.com/jodafons/gomna/pkg/matrix"
	"github.com/jodafons/gomna/pkg/util"
)

// Sink receives the simulation trace: a header once, then one row per
// output time.
type Sink interface {
	Header(names []string) error
	Row(t float64, values []float64) error
}

// Config drives a transient run. Seed fixes the randomized Newton
// restarts; zero keeps them unseeded.
type Config struct {
	TotalTime float64
	Points    int
	Substeps  int
	Method    device.Method
	UIC       bool
	Seed      int64
	Solver    matrix.Solver
}

// Stats are run statistics mirrored from the solver loop.
type Stats struct {
	MaxIterations  int
	TMaxIterations float64
	MaxRestarts    int
	Randomizations int
	TLastRandom    float64
}

// Transient walks the circuit through time: for each step it drives the
// Newton-Raphson loop over assemble/solve, then commits device history
// and emits the accepted solution.
type Transient struct {
	ckt    *circuit.Circuit
	cfg    Config
	solver matrix.Solver
	rng    *rand.Rand
	stats  Stats

	sys  *matrix.System
	x    []float64
	xNew []float64
	prev []float64
}

func NewTransient(ckt *circuit.Circuit, cfg Config) *Transient {
	if cfg.Solver == nil {
		cfg.Solver = matrix.GaussJordan{}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	nv := ckt.NumVars()
	return &Transient{
		ckt:    ckt,
		cfg:    cfg,
		solver: cfg.Solver,
		rng:    rand.New(rand.NewSource(seed)),
		sys:    matrix.NewSystem(nv),
		x:      make([]float64, nv+1),
		xNew:   make([]float64, nv+1),
		prev:   make([]float64, nv+1),
	}
}

func (tr *Transient) Stats() Stats { return tr.stats }

// Run executes the whole transient and streams rows into sink. The first
// step is shrunk by three decades to soften the transient of the all-zero
// initial guess; every Substeps-th accepted step becomes a trace row.
func (tr *Transient) Run(sink Sink) error {
	if tr.cfg.TotalTime <= 0 || tr.cfg.Points <= 0 || tr.cfg.Substeps <= 0 {
		return fmt.Errorf("invalid transient parameters")
	}

	if err := sink.Header(tr.ckt.VariableNames()); err != nil {
		return err
	}

	total := tr.cfg.Points * tr.cfg.Substeps
	dtNominal := tr.cfg.TotalTime / float64(total)
	dt := dtNominal * consts.FirstStep
	dtPrev := dt
	t := 0.0

	for n := 0; n <= total; n++ {
		ctx := &device.Context{
			Time:   t,
			Dt:     dt,
			DtPrev: dtPrev,
			BaseDt: dtNominal,
			Step:   n,
			Method: tr.cfg.Method,
			X:      tr.x,
			Prev:   tr.prev,
		}

		for _, dev := range tr.ckt.Devices() {
			if td, ok := dev.(device.TimeDependent); ok {
				td.BeginStep(ctx)
			}
		}

		if err := tr.solveStep(ctx); err != nil {
			return err
		}

		for _, dev := range tr.ckt.Devices() {
			if td, ok := dev.(device.TimeDependent); ok {
				td.UpdateState(tr.x, ctx)
			}
		}
		copy(tr.prev, tr.x)

		if n%tr.cfg.Substeps == 0 {
			if err := sink.Row(t, tr.x[1:]); err != nil {
				return err
			}
		}

		dtPrev = dt
		dt = dtNominal
		t += dt
	}

	return nil
}

// solveStep resolves one time point. Linear circuits take a single
// assemble/solve; non-linear ones iterate until the largest variable
// change drops under tolerance, randomizing the iterate when the loop
// stalls and failing once restarts run out.
func (tr *Transient) solveStep(ctx *device.Context) error {
	nv := tr.sys.Size
	iter := 0
	restarts := 0

	for {
		ctx.Iteration = iter
		tr.sys.Clear()
		for _, dev := range tr.ckt.Devices() {
			if err := dev.Stamp(tr.sys, ctx); err != nil {
				return fmt.Errorf("stamping %s at t=%g: %w", dev.GetName(), ctx.Time, err)
			}
		}

		if err := tr.solver.Solve(tr.sys, tr.xNew); err != nil {
			var singular *matrix.SingularError
			if errors.As(err, &singular) {
				return &SingularSystemError{T: ctx.Time, Pivot: singular.Pivot}
			}
			return fmt.Errorf("solving at t=%g: %w", ctx.Time, err)
		}

		errMax := 0.0
		for i := 1; i <= nv; i++ {
			if diff := util.Abs(tr.xNew[i] - tr.x[i]); diff > errMax {
				errMax = diff
			}
			tr.x[i] = tr.xNew[i]
		}
		iter++

		if iter > tr.stats.MaxIterations {
			tr.stats.MaxIterations = iter
			tr.stats.TMaxIterations = ctx.Time
		}

		if !tr.ckt.HasNonlinear() || errMax <= consts.NewtonTol {
			return nil
		}
		if iter > consts.MaxNewton {
			return &NoConvergenceError{T: ctx.Time, Restarts: restarts}
		}
		if iter > consts.RestartAt && restarts <= consts.MaxRestart {
			restarts++
			for i := 1; i <= nv; i++ {
				tr.x[i] = tr.rng.Float64()*10 - 5
			}
			iter = 0
			tr.stats.Randomizations++
			tr.stats.TLastRandom = ctx.Time
			if restarts > tr.stats.MaxRestarts {
				tr.stats.MaxRestarts = restarts
			}
		}
	}
}

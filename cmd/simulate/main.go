package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jodafons/gomna/pkg/analysis"
	"github.com/jodafons/gomna/pkg/circuit"
	"github.com/jodafons/gomna/pkg/matrix"
	"github.com/jodafons/gomna/pkg/netlist"
	"github.com/jodafons/gomna/pkg/output"
	"github.com/jodafons/gomna/pkg/util"
)

const (
	exitOK = iota
	exitFileNotFound
	exitSingular
	exitNoConvergence
	exitTooManyVars
)

func main() {
	var (
		outPath    = flag.String("o", "", "output trace file (default: netlist name with .tab)")
		plotPath   = flag.String("plot", "", "render node voltages to an image file")
		solverName = flag.String("solver", "dense", "linear solver: dense or sparse")
		seed       = flag.Int64("seed", 0, "seed for randomized Newton restarts (0: unseeded)")
		maxVars    = flag.Int("maxvars", 1000, "variable count limit")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: simulate [flags] <netlist>")
		flag.PrintDefaults()
		os.Exit(exitFileNotFound)
	}
	netPath := flag.Arg(0)

	f, err := os.Open(netPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open %s: %v\n", netPath, err)
		os.Exit(exitFileNotFound)
	}
	ckt, tran, err := netlist.Parse(f, *maxVars)
	f.Close()
	if err != nil {
		fail(err)
	}

	fmt.Printf("circuit: %d nodes, %d variables, %d elements\n",
		ckt.NumNodes(), ckt.NumVars(), len(ckt.Devices()))
	fmt.Printf("transient: t=%s, %d points, %d substeps, method %s\n",
		util.FormatValueFactor(tran.TotalTime, "s"), tran.Points, tran.Substeps, tran.Method)

	var solver matrix.Solver
	switch *solverName {
	case "dense":
		solver = matrix.GaussJordan{}
	case "sparse":
		if solver, err = matrix.NewSparseLU(ckt.NumVars()); err != nil {
			fail(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown solver %q\n", *solverName)
		os.Exit(exitFileNotFound)
	}
	defer solver.Release()

	if *outPath == "" {
		*outPath = strings.TrimSuffix(netPath, ".net") + ".tab"
	}
	out, err := os.Create(*outPath)
	if err != nil {
		fail(err)
	}
	defer out.Close()

	var sink analysis.Sink
	writer := output.NewTraceWriter(out)
	mem := &output.MemoryTrace{}
	if *plotPath != "" {
		sink = output.Tee{writer, mem}
	} else {
		sink = writer
	}

	tr := analysis.NewTransient(ckt, analysis.Config{
		TotalTime: tran.TotalTime,
		Points:    tran.Points,
		Substeps:  tran.Substeps,
		Method:    tran.Method,
		UIC:       tran.UIC,
		Seed:      *seed,
		Solver:    solver,
	})
	if err := tr.Run(sink); err != nil {
		fail(err)
	}

	stats := tr.Stats()
	fmt.Printf("max iterations: %d at t=%g\n", stats.MaxIterations, stats.TMaxIterations)
	if stats.Randomizations > 0 {
		fmt.Printf("restarts: %d randomizations, last at t=%g\n",
			stats.Randomizations, stats.TLastRandom)
	}
	fmt.Printf("results saved to %s\n", *outPath)

	if *plotPath != "" {
		if err := output.Plot(mem, ckt.NumNodes(), *plotPath); err != nil {
			fail(err)
		}
		fmt.Printf("plot saved to %s\n", *plotPath)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)

	var singular *analysis.SingularSystemError
	var diverged *analysis.NoConvergenceError
	var toomany *circuit.TooManyVariablesError
	switch {
	case errors.As(err, &singular):
		os.Exit(exitSingular)
	case errors.As(err, &diverged):
		os.Exit(exitNoConvergence)
	case errors.As(err, &toomany):
		os.Exit(exitTooManyVars)
	}
	os.Exit(exitFileNotFound)
}

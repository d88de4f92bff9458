package matrix

import (
	"fmt"

	"github.com/jodafons/gomna/internal/consts"
	"github.com/jodafons/gomna/pkg/util"
)

// System is the dense augmented MNA system (A|b). Row and column 0 belong
// to the ground node: they are structurally present so stamps never need
// ground guards, but the solve only touches rows and columns 1..Size.
// Column Size+1 is the excitation vector b.
type System struct {
	Size int
	a    [][]float64
}

func NewSystem(size int) *System {
	s := &System{Size: size, a: make([][]float64, size+1)}
	for i := range s.a {
		s.a[i] = make([]float64, size+2)
	}
	return s
}

// Clear zeroes the system. Stamps are additive, so every rebuild starts here.
func (s *System) Clear() {
	for i := range s.a {
		for j := range s.a[i] {
			s.a[i][j] = 0
		}
	}
}

func (s *System) AddElement(i, j int, v float64) { s.a[i][j] += v }

func (s *System) AddRHS(i int, v float64) { s.a[i][s.Size+1] += v }

func (s *System) At(i, j int) float64 { return s.a[i][j] }

func (s *System) RHS(i int) float64 { return s.a[i][s.Size+1] }

// Transconductance stamps a current of g*(v_c - v_d) flowing from a to b.
func (s *System) Transconductance(a, b, c, d int, g float64) {
	s.a[a][c] += g
	s.a[b][d] += g
	s.a[a][d] -= g
	s.a[b][c] -= g
}

// Conductance stamps g between nodes a and b.
func (s *System) Conductance(a, b int, g float64) {
	s.Transconductance(a, b, a, b, g)
}

// CurrentSource stamps a current i flowing from node a to node b.
func (s *System) CurrentSource(a, b int, i float64) {
	s.a[a][s.Size+1] -= i
	s.a[b][s.Size+1] += i
}

// SingularError reports a pivot below the elimination threshold.
type SingularError struct {
	Pivot float64
	Index int
}

func (e *SingularError) Error() string {
	return fmt.Sprintf("singular system: pivot=%g at column %d", e.Pivot, e.Index)
}

// Solver turns an assembled System into a solution vector. x has length
// Size+1 and x[0] stays 0 (the ground reference).
type Solver interface {
	Solve(s *System, x []float64) error
	Release()
}

// GaussJordan is the reference solver: in-place Gauss-Jordan elimination
// with partial pivoting on the augmented array. The elimination consumes
// the stamped values, which is fine because assembly rebuilds them on
// every call.
type GaussJordan struct{}

func (GaussJordan) Solve(s *System, x []float64) error {
	nv := s.Size
	a := s.a
	for i := 1; i <= nv; i++ {
		pivot := 0.0
		row := i
		for l := i; l <= nv; l++ {
			if util.Abs(a[l][i]) > util.Abs(pivot) {
				row = l
				pivot = a[l][i]
			}
		}
		if row != i {
			a[i], a[row] = a[row], a[i]
		}
		if util.Abs(pivot) < consts.PivotTol {
			return &SingularError{Pivot: pivot, Index: i}
		}
		for j := nv + 1; j > i; j-- {
			a[i][j] /= pivot
			p := a[i][j]
			for l := 1; l <= nv; l++ {
				if l != i {
					a[l][j] -= a[l][i] * p
				}
			}
		}
	}
	x[0] = 0
	for i := 1; i <= nv; i++ {
		x[i] = a[i][nv+1]
	}
	return nil
}

func (GaussJordan) Release() {}

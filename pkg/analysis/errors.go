package analysis

import "fmt"

// SingularSystemError reports a vanishing pivot during elimination.
type SingularSystemError struct {
	T     float64
	Pivot float64
}

func (e *SingularSystemError) Error() string {
	return fmt.Sprintf("singular system: pivot=%g at t=%g", e.Pivot, e.T)
}

// NoConvergenceError reports that Newton-Raphson gave up on a time step.
type NoConvergenceError struct {
	T        float64
	Restarts int
}

func (e *NoConvergenceError) Error() string {
	return fmt.Sprintf("no convergence at t=%g after %d restarts", e.T, e.Restarts)
}

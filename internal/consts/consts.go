package consts

// Numerical tolerances of the transient engine.
const (
	PivotTol   = 1e-12 // Gauss-Jordan singularity threshold
	NewtonTol  = 1e-7  // Newton-Raphson convergence tolerance
	MaxNewton  = 100   // iterations before giving up on a time step
	RestartAt  = 20    // iterations before randomizing the iterate
	MaxRestart = 10    // restarts are taken while the count is at most this (11 per time step)
	FirstStep  = 1e-3  // first-step shrink factor for dt
)

// Semiconductor model constants.
const (
	ThermalVoltage = 25e-3         // Vt (V)
	SaturationCur  = 3.7751345e-14 // diode Is (A)
	MosK0          = 1e-4          // MOSFET transconductance parameter
	MosLambda      = 0.05          // channel-length modulation
	MosVt0         = 1.0           // threshold voltage magnitude (V)
	BjtAlpha       = 0.99          // forward common-base gain
	BjtAlphaR      = 0.5           // reverse common-base gain
)

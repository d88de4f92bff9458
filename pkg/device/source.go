package device

import (
	"math"

	"github.com/jodafons/gomna/pkg/matrix"
)

type WaveKind int

const (
	WaveDC WaveKind = iota
	WaveSIN
	WavePULSE
	WavePWL
)

// Waveform is the time law of an independent source.
type Waveform struct {
	Kind WaveKind

	// DC
	Level float64

	// SIN
	Offset    float64
	Amplitude float64
	Freq      float64
	Delay     float64
	Damping   float64
	PhaseDeg  float64
	Cycles    float64

	// PULSE
	V1      float64
	V2      float64
	Rise    float64
	Fall    float64
	On      float64
	Period  float64
	NPulses float64

	// PWL
	Times  []float64
	Values []float64
}

func DCWave(v float64) Waveform { return Waveform{Kind: WaveDC, Level: v} }

func SinWave(offset, amp, freq, delay, damping, phaseDeg, cycles float64) Waveform {
	return Waveform{
		Kind: WaveSIN, Offset: offset, Amplitude: amp, Freq: freq,
		Delay: delay, Damping: damping, PhaseDeg: phaseDeg, Cycles: cycles,
	}
}

func PulseWave(v1, v2, delay, rise, fall, on, period, cycles float64) Waveform {
	return Waveform{
		Kind: WavePULSE, V1: v1, V2: v2, Delay: delay,
		Rise: rise, Fall: fall, On: on, Period: period, NPulses: cycles,
	}
}

func PWLWave(times, values []float64) Waveform {
	return Waveform{Kind: WavePWL, Times: times, Values: values}
}

// At evaluates the waveform. baseDt substitutes zero rise and fall times
// of a pulse, so an idealized edge still spans one integration step.
func (w Waveform) At(t, baseDt float64) float64 {
	switch w.Kind {
	case WaveSIN:
		phase := math.Pi * w.PhaseDeg / 180
		if t < w.Delay || t > w.Delay+w.Cycles/w.Freq {
			return w.Offset + w.Amplitude*math.Sin(phase)
		}
		td := t - w.Delay
		return w.Offset + w.Amplitude*math.Exp(-w.Damping*td)*math.Sin(2*math.Pi*w.Freq*td+phase)

	case WavePULSE:
		rise, fall := w.Rise, w.Fall
		if rise == 0 {
			rise = baseDt
		}
		if fall == 0 {
			fall = baseDt
		}
		if t <= w.Delay || t > w.Period*w.NPulses+w.Delay {
			return w.V1
		}
		t -= w.Delay
		for t > w.Period {
			t -= w.Period
		}
		switch {
		case t < rise:
			return w.V1 + t*(w.V2-w.V1)/rise
		case t <= rise+w.On:
			return w.V2
		case t <= rise+w.On+fall:
			return w.V2 + (t-rise-w.On)*(w.V1-w.V2)/fall
		default:
			return w.V1
		}

	case WavePWL:
		if t <= w.Times[0] {
			return w.Values[0]
		}
		last := len(w.Times) - 1
		if t >= w.Times[last] {
			return w.Values[last]
		}
		for i := 1; i <= last; i++ {
			if t <= w.Times[i] {
				slope := (w.Values[i] - w.Values[i-1]) / (w.Times[i] - w.Times[i-1])
				return w.Values[i-1] + slope*(t-w.Times[i-1])
			}
		}
		return w.Values[last]

	default:
		return w.Level
	}
}

type CurrentSource struct {
	BaseDevice
	Wave Waveform
}

func NewCurrentSource(name string, n1, n2 int, w Waveform) *CurrentSource {
	return &CurrentSource{BaseDevice{Name: name, Nodes: []int{n1, n2}}, w}
}

func (s *CurrentSource) GetType() string { return "I" }

func (s *CurrentSource) Stamp(sys *matrix.System, ctx *Context) error {
	sys.CurrentSource(s.Nodes[0], s.Nodes[1], s.Wave.At(ctx.Time, ctx.BaseDt))
	return nil
}

type VoltageSource struct {
	BaseDevice
	Wave   Waveform
	branch int
}

var _ BranchOwner = (*VoltageSource)(nil)

func NewVoltageSource(name string, n1, n2 int, w Waveform) *VoltageSource {
	return &VoltageSource{BaseDevice{Name: name, Nodes: []int{n1, n2}}, w, -1}
}

func (s *VoltageSource) GetType() string { return "V" }

func (s *VoltageSource) BranchNames() []string { return []string{"j" + s.Name} }

func (s *VoltageSource) SetBranches(idx []int) { s.branch = idx[0] }

func (s *VoltageSource) BranchIndex() int { return s.branch }

func (s *VoltageSource) Stamp(sys *matrix.System, ctx *Context) error {
	a, b, x := s.Nodes[0], s.Nodes[1], s.branch
	sys.AddElement(a, x, 1)
	sys.AddElement(b, x, -1)
	sys.AddElement(x, a, 1)
	sys.AddElement(x, b, -1)
	sys.AddRHS(x, s.Wave.At(ctx.Time, ctx.BaseDt))
	return nil
}

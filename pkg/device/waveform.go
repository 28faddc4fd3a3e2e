package device

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/google/uuid"
)

// NoiseID identifies one statistically independent noise process.
type NoiseID string

// NewNoiseID returns a fresh identifier for a noise part declared without one.
func NewNoiseID() NoiseID {
	return NoiseID("n" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

type WaveformKind int

const (
	WaveDC WaveformKind = iota
	WaveAC
	WaveStep
	WaveTransient
	WaveNoise
	WaveArbitrary
)

func (k WaveformKind) String() string {
	switch k {
	case WaveDC:
		return "dc"
	case WaveAC:
		return "ac"
	case WaveStep:
		return "step"
	case WaveTransient:
		return "transient"
	case WaveNoise:
		return "noise"
	case WaveArbitrary:
		return "arbitrary"
	default:
		return fmt.Sprintf("waveform(%d)", int(k))
	}
}

// Waveform is one primitive part of an independent source. A source's
// excitation is the sum of its parts.
type Waveform struct {
	Kind  WaveformKind
	Value float64 // dc and step value, ac amplitude, noise density
	Omega float64 // ac angular frequency
	Phase float64 // ac phase (rad)
	Noise NoiseID
	// Causal parts are zero for t < 0.
	Causal bool
	// Transform is the unilateral Laplace transform (transient, arbitrary).
	Transform func(s complex128) complex128
	// Signal is the time function, nil when only Transform is known.
	Signal func(t float64) float64
	Text   string
}

func DC(v float64) Waveform {
	return Waveform{Kind: WaveDC, Value: v, Text: fmt.Sprintf("dc %g", v)}
}

// AC is amplitude·cos(ωt + phase).
func AC(amplitude, omega, phase float64) Waveform {
	return Waveform{
		Kind: WaveAC, Value: amplitude, Omega: omega, Phase: phase,
		Text: fmt.Sprintf("ac %g %g %gdeg", amplitude, omega, phase*180/math.Pi),
	}
}

func Step(v float64) Waveform {
	return Waveform{
		Kind: WaveStep, Value: v, Causal: true,
		Transform: func(s complex128) complex128 { return complex(v, 0) / s },
		Signal: func(t float64) float64 {
			if t < 0 {
				return 0
			}
			return v
		},
		Text: fmt.Sprintf("step %g", v),
	}
}

// Transient is a source known by its Laplace transform only.
func Transient(F func(s complex128) complex128, causal bool, text string) Waveform {
	return Waveform{Kind: WaveTransient, Transform: F, Causal: causal, Text: text}
}

// Arbitrary is a source whose pre-initial history is not known; F
// describes it for t >= 0.
func Arbitrary(F func(s complex128) complex128, causal bool, text string) Waveform {
	return Waveform{Kind: WaveArbitrary, Transform: F, Causal: causal, Text: text}
}

// WhiteNoise is a noise part with constant amplitude spectral density.
func WhiteNoise(density float64, nid NoiseID) Waveform {
	if nid == "" {
		nid = NewNoiseID()
	}
	return Waveform{Kind: WaveNoise, Value: density, Noise: nid, Text: fmt.Sprintf("noise %g nid=%s", density, nid)}
}

// Sin decomposes offset + amplitude·sin(2πft + phase) into dc and ac parts.
// phase is in degrees.
func Sin(offset, amplitude, freq, phase float64) []Waveform {
	parts := []Waveform{}
	if offset != 0 {
		parts = append(parts, DC(offset))
	}
	if amplitude != 0 {
		phaseRad := phase*math.Pi/180.0 - math.Pi/2
		parts = append(parts, AC(amplitude, 2*math.Pi*freq, phaseRad))
	}
	return parts
}

// HasSignal reports whether the part has a time-domain description.
func (w Waveform) HasSignal() bool {
	switch w.Kind {
	case WaveDC, WaveAC, WaveStep:
		return true
	case WaveTransient, WaveArbitrary:
		return w.Signal != nil
	default:
		return false
	}
}

// IsCausal reports whether the part is zero for t < 0.
func (w Waveform) IsCausal() bool {
	switch w.Kind {
	case WaveDC, WaveAC, WaveNoise:
		return w.Value == 0
	default:
		return w.Causal
	}
}

// At returns the time-domain value of the part.
func (w Waveform) At(t float64) float64 {
	switch w.Kind {
	case WaveDC:
		return w.Value
	case WaveAC:
		return w.Value * math.Cos(w.Omega*t+w.Phase)
	default:
		if w.Signal == nil {
			return math.NaN()
		}
		if t < 0 && w.Causal {
			return 0
		}
		return w.Signal(t)
	}
}

// Phasor returns the complex amplitude of an ac part.
func (w Waveform) Phasor() complex128 {
	return cmplx.Rect(w.Value, w.Phase)
}

// Laplace returns the unilateral transform of the part at s.
func (w Waveform) Laplace(s complex128) complex128 {
	switch w.Kind {
	case WaveDC:
		return complex(w.Value, 0) / s
	case WaveAC:
		a := complex(w.Value*math.Cos(w.Phase), 0)
		b := complex(w.Value*math.Sin(w.Phase), 0)
		om := complex(w.Omega, 0)
		return (a*s - b*om) / (s*s + om*om)
	case WaveNoise:
		return 0
	default:
		if w.Transform == nil {
			return 0
		}
		return w.Transform(s)
	}
}

// ValueIn returns the value the part contributes to a stamp in the mode
// described by status.
func (w Waveform) ValueIn(status *CircuitStatus) complex128 {
	switch status.Mode {
	case DCAnalysis:
		if w.Kind == WaveDC {
			return complex(w.Value, 0)
		}
	case PhasorAnalysis:
		if w.Kind == WaveAC && w.Omega == status.Omega {
			return w.Phasor()
		}
	case LaplaceAnalysis:
		return w.Laplace(status.S)
	case NoiseAnalysis:
		if w.Kind == WaveNoise && w.Noise == status.Noise {
			return complex(w.Value, 0)
		}
	case GainAnalysis:
		return 1
	}
	return 0
}

package device

import (
	"fmt"
	"math"
	"math/cmplx"
)

// pwl is a piecewise-linear signal. It holds values[0] before times[0] and
// the last value after the last point. Equal consecutive times are jumps.
type pwl struct {
	times  []float64
	values []float64
}

func newPWL(times, values []float64) (*pwl, error) {
	if len(times) == 0 || len(times) != len(values) {
		return nil, fmt.Errorf("PWL needs matching, non-empty time and value lists")
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return nil, fmt.Errorf("PWL time points must be non-decreasing")
		}
	}
	return &pwl{times: times, values: values}, nil
}

// at is right-continuous at jumps.
func (p *pwl) at(t float64) float64 {
	if t < p.times[0] {
		return p.values[0]
	}

	lastIdx := len(p.times) - 1
	if t >= p.times[lastIdx] {
		return p.values[lastIdx]
	}

	for i := 1; i < len(p.times); i++ {
		if t < p.times[i] {
			t1, t2 := p.times[i-1], p.times[i]
			v1, v2 := p.values[i-1], p.values[i]
			return v1 + (v2-v1)*(t-t1)/(t2-t1)
		}
	}

	return p.values[lastIdx]
}

// slopeAfter returns the slope on (t, t+ε).
func (p *pwl) slopeAfter(t float64) float64 {
	for i := 1; i < len(p.times); i++ {
		t1, t2 := p.times[i-1], p.times[i]
		if t >= t1 && t < t2 {
			return (p.values[i] - p.values[i-1]) / (t2 - t1)
		}
	}
	return 0
}

// constantBeforeZero reports whether the signal is constant for t < 0.
func (p *pwl) constantBeforeZero() bool {
	for i, t := range p.times {
		if t < 0 && p.values[i] != p.values[0] {
			return false
		}
	}
	return p.preInitial() == p.values[0]
}

// preInitial is the value at 0⁻.
func (p *pwl) preInitial() float64 {
	if p.times[0] >= 0 {
		return p.values[0]
	}
	return p.leftLimit(0)
}

func (p *pwl) leftLimit(t float64) float64 {
	for i := 1; i < len(p.times); i++ {
		t1, t2 := p.times[i-1], p.times[i]
		if t > t1 && t <= t2 && t2 > t1 {
			return p.values[i-1] + (p.values[i]-p.values[i-1])*(t-t1)/(t2-t1)
		}
	}
	return p.at(t)
}

// laplace returns the unilateral transform of p(t) - offset for t >= 0:
// (p(0⁺)-offset)/s + k₀/s² + Σ (jᵢ/s + Δkᵢ/s²)·e^{-sτᵢ}.
func (p *pwl) laplace(offset float64) func(s complex128) complex128 {
	f0 := p.at(0) - offset
	k0 := p.slopeAfter(0)

	type event struct{ tau, jump, dslope float64 }
	var events []event
	for i, tau := range p.times {
		if tau <= 0 || (i > 0 && p.times[i-1] == tau) {
			continue
		}
		jump := p.at(tau) - p.leftLimit(tau)
		dslope := p.slopeAfter(tau) - p.slopeBefore(tau)
		if jump != 0 || dslope != 0 {
			events = append(events, event{tau, jump, dslope})
		}
	}

	return func(s complex128) complex128 {
		s2 := s * s
		F := complex(f0, 0)/s + complex(k0, 0)/s2
		for _, e := range events {
			F += (complex(e.jump, 0)/s + complex(e.dslope, 0)/s2) * cmplx.Exp(-s*complex(e.tau, 0))
		}
		return F
	}
}

// slopeBefore returns the slope on (t-ε, t).
func (p *pwl) slopeBefore(t float64) float64 {
	for i := 1; i < len(p.times); i++ {
		t1, t2 := p.times[i-1], p.times[i]
		if t > t1 && t <= t2 {
			return (p.values[i] - p.values[i-1]) / (t2 - t1)
		}
	}
	return 0
}

// PWL decomposes a piecewise-linear source. When the signal is constant
// before t = 0 it becomes a dc part plus a causal transient; otherwise it is
// a single non-causal arbitrary part.
func PWL(times, values []float64) ([]Waveform, error) {
	p, err := newPWL(times, values)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("pwl %v %v", times, values)

	if !p.constantBeforeZero() {
		return []Waveform{{
			Kind:      WaveArbitrary,
			Transform: p.laplace(0),
			Signal:    p.at,
			Text:      text,
		}}, nil
	}

	v0 := p.preInitial()
	parts := []Waveform{}
	if v0 != 0 {
		parts = append(parts, DC(v0))
	}
	parts = append(parts, Waveform{
		Kind:      WaveTransient,
		Causal:    true,
		Transform: p.laplace(v0),
		Signal: func(t float64) float64 {
			if t < 0 {
				return 0
			}
			return p.at(t) - v0
		},
		Text: text,
	})
	return parts, nil
}

type pulse struct {
	v1, v2                            float64
	delay, rise, fall, pWidth, period float64
}

func (v *pulse) at(t float64) float64 {
	if t < v.delay {
		return v.v1
	}

	t = t - v.delay
	if v.period > 0 {
		t = math.Mod(t, v.period)
	}

	if t < v.rise {
		return v.v1 + (v.v2-v.v1)*t/v.rise
	}

	if t < v.rise+v.pWidth {
		return v.v2
	}

	fallStart := v.rise + v.pWidth
	if t < fallStart+v.fall {
		return v.v2 - (v.v2-v.v1)*(t-fallStart)/v.fall
	}

	return v.v1
}

// laplace returns the transform of pulse - v1, a train of single pulses
// starting at delay.
func (v *pulse) laplace() func(s complex128) complex128 {
	d := v.v2 - v.v1
	single := &pwl{
		times:  []float64{0, v.rise, v.rise + v.pWidth, v.rise + v.pWidth + v.fall},
		values: []float64{0, d, d, 0},
	}
	P := single.laplace(0)

	return func(s complex128) complex128 {
		F := cmplx.Exp(-s*complex(v.delay, 0)) * P(s)
		if v.period > 0 {
			F /= 1 - cmplx.Exp(-s*complex(v.period, 0))
		}
		return F
	}
}

// Pulse decomposes a SPICE pulse into a dc part at v1 and a causal
// transient.
func Pulse(v1, v2, delay, rise, fall, pWidth, period float64) ([]Waveform, error) {
	if delay < 0 || rise < 0 || fall < 0 || pWidth < 0 || period < 0 {
		return nil, fmt.Errorf("PULSE times must be non-negative")
	}
	if period > 0 && period < rise+pWidth+fall {
		return nil, fmt.Errorf("PULSE period %g shorter than rise+width+fall", period)
	}

	p := &pulse{v1: v1, v2: v2, delay: delay, rise: rise, fall: fall, pWidth: pWidth, period: period}
	parts := []Waveform{}
	if v1 != 0 {
		parts = append(parts, DC(v1))
	}
	parts = append(parts, Waveform{
		Kind:      WaveTransient,
		Causal:    true,
		Transform: p.laplace(),
		Signal: func(t float64) float64 {
			if t < 0 {
				return 0
			}
			return p.at(t) - v1
		},
		Text: fmt.Sprintf("pulse %g %g %g %g %g %g %g", v1, v2, delay, rise, fall, pWidth, period),
	})
	return parts, nil
}

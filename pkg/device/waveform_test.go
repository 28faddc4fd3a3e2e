package device

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestPWLConstantBeforeZero(t *testing.T) {
	parts, err := PWL([]float64{-1, 1, 2}, []float64{2, 2, 4})
	if err != nil {
		t.Fatalf("PWL() error = %v", err)
	}
	if len(parts) != 2 || parts[0].Kind != WaveDC || parts[1].Kind != WaveTransient {
		t.Fatalf("parts = %v, want dc + transient", parts)
	}
	if parts[0].Value != 2 {
		t.Errorf("dc part = %v, want 2", parts[0].Value)
	}

	tr := parts[1]
	if !tr.IsCausal() {
		t.Errorf("transient part is not causal")
	}
	for _, tt := range []struct{ t, want float64 }{{-5, 0}, {0.5, 0}, {1.5, 1}, {3, 2}} {
		if got := tr.At(tt.t); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("At(%g) = %v, want %v", tt.t, got, tt.want)
		}
	}

	// two ramps of slope ±2 starting at t = 1 and t = 2
	s := complex(1, 0)
	want := 2 * (cmplx.Exp(-s) - cmplx.Exp(-2*s)) / (s * s)
	if got := tr.Laplace(s); cmplx.Abs(got-want) > 1e-12 {
		t.Errorf("Laplace(1) = %v, want %v", got, want)
	}
}

func TestPWLNonCausal(t *testing.T) {
	parts, err := PWL([]float64{-1, 0, 1}, []float64{0, 1, 1})
	if err != nil {
		t.Fatalf("PWL() error = %v", err)
	}
	if len(parts) != 1 || parts[0].Kind != WaveArbitrary || parts[0].IsCausal() {
		t.Fatalf("parts = %v, want one non-causal arbitrary part", parts)
	}
	if got := parts[0].At(-0.5); got != 0.5 {
		t.Errorf("At(-0.5) = %v, want 0.5", got)
	}
}

func TestPWLInvalid(t *testing.T) {
	tests := []struct {
		name          string
		times, values []float64
	}{
		{"empty", nil, nil},
		{"length mismatch", []float64{0, 1}, []float64{0}},
		{"decreasing", []float64{1, 0}, []float64{0, 1}},
	}
	for _, tt := range tests {
		if _, err := PWL(tt.times, tt.values); err == nil {
			t.Errorf("%s: PWL() error = nil, want error", tt.name)
		}
	}
}

func TestPulse(t *testing.T) {
	parts, err := Pulse(0, 5, 1, 0, 0, 2, 0)
	if err != nil {
		t.Fatalf("Pulse() error = %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("len(parts) = %d, want 1 (v1 = 0 has no dc part)", len(parts))
	}
	p := parts[0]
	for _, tt := range []struct{ t, want float64 }{{0.5, 0}, {1.5, 5}, {2.9, 5}, {3.5, 0}} {
		if got := p.At(tt.t); got != tt.want {
			t.Errorf("At(%g) = %v, want %v", tt.t, got, tt.want)
		}
	}

	s := complex(1, 0)
	want := 5 * cmplx.Exp(-s) * (1 - cmplx.Exp(-2*s)) / s
	if got := p.Laplace(s); cmplx.Abs(got-want) > 1e-12 {
		t.Errorf("Laplace(1) = %v, want %v", got, want)
	}

	if _, err := Pulse(0, 1, 0, 1, 1, 1, 2); err == nil {
		t.Errorf("Pulse() with period shorter than the pulse: error = nil")
	}
}

func TestSin(t *testing.T) {
	parts := Sin(1, 2, 50, 0)
	if len(parts) != 2 || parts[0].Kind != WaveDC || parts[1].Kind != WaveAC {
		t.Fatalf("parts = %v, want dc + ac", parts)
	}
	if parts[1].Omega != 100*math.Pi {
		t.Errorf("ω = %v, want 100π", parts[1].Omega)
	}

	for _, tm := range []float64{0, 0.001, 0.005, 0.013} {
		var got float64
		for _, p := range parts {
			got += p.At(tm)
		}
		want := 1 + 2*math.Sin(100*math.Pi*tm)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("sin(%g) = %v, want %v", tm, got, want)
		}
	}
}

func TestValueIn(t *testing.T) {
	ac := AC(2, 10, math.Pi/2)
	noise := WhiteNoise(3, "n1")

	tests := []struct {
		name   string
		w      Waveform
		status *CircuitStatus
		want   complex128
	}{
		{"dc in dc", DC(4), NewStatus(DCAnalysis), 4},
		{"ac in dc", ac, NewStatus(DCAnalysis), 0},
		{"ac at its ω", ac, &CircuitStatus{Mode: PhasorAnalysis, Omega: 10}, 2i},
		{"ac at other ω", ac, &CircuitStatus{Mode: PhasorAnalysis, Omega: 20}, 0},
		{"noise own id", noise, &CircuitStatus{Mode: NoiseAnalysis, Noise: "n1"}, 3},
		{"noise other id", noise, &CircuitStatus{Mode: NoiseAnalysis, Noise: "n2"}, 0},
		{"step in laplace", Step(2), &CircuitStatus{Mode: LaplaceAnalysis, S: 4}, 0.5},
	}
	for _, tt := range tests {
		if got := tt.w.ValueIn(tt.status); cmplx.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s: ValueIn() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWhiteNoiseGeneratesID(t *testing.T) {
	a, b := WhiteNoise(1, ""), WhiteNoise(1, "")
	if a.Noise == "" || a.Noise == b.Noise {
		t.Errorf("generated ids %q, %q; want distinct non-empty", a.Noise, b.Noise)
	}
}

func TestSourceWithParts(t *testing.T) {
	v := NewVoltageSource("V1", []string{"1", "0"}, DC(1), Step(2))
	killed := v.WithParts(nil)

	if len(v.Parts()) != 2 {
		t.Errorf("original has %d parts, want 2", len(v.Parts()))
	}
	if got := SourceValue(killed, NewStatus(GainAnalysis)); got != 0 {
		t.Errorf("killed source gain = %v, want 0", got)
	}
	if got := SourceValue(v, NewStatus(GainAnalysis)); got != 1 {
		t.Errorf("source gain = %v, want 1", got)
	}
	if IsCausal(v) {
		t.Errorf("dc + step reported causal")
	}
}

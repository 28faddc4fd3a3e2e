package expr

import (
	"errors"
	"math"
	"testing"
)

func TestAddSameDomain(t *testing.T) {
	got, err := Add(Constant(2), Constant(3))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if real(got.Value()) != 5 {
		t.Errorf("Add() = %v, want 5", got)
	}

	p, err := Add(Phasor(1, 10), Phasor(1i, 10))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if p.Value() != 1+1i || p.Omega() != 10 {
		t.Errorf("Add() = %v, want 1+1i at ω=10", p)
	}
}

func TestAddRejectsMixedDomains(t *testing.T) {
	tests := []struct {
		name string
		a, b Expr
		want error
	}{
		{"dc+phasor", Constant(1), Phasor(1, 1), ErrKindMismatch},
		{"phasor frequencies", Phasor(1, 1), Phasor(1, 2), ErrFrequencyMismatch},
		{"noise ids", Noise("n1", func(float64) complex128 { return 1 }), Noise("n2", func(float64) complex128 { return 1 }), ErrIndependentNoise},
		{"density", Density(func(float64) float64 { return 1 }), Density(func(float64) float64 { return 1 }), ErrDensityNotAdditive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Add(tt.a, tt.b)
			if !errors.Is(err, tt.want) {
				t.Errorf("Add() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestZeroIsIdentity(t *testing.T) {
	n := Noise("n1", func(w float64) complex128 { return complex(w, 0) })
	got, err := Add(Zero(), n)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !Equal(got, n) {
		t.Errorf("0 + n != n")
	}

	d, err := Sub(n, n)
	if err != nil {
		t.Fatalf("Sub() error = %v", err)
	}
	if !d.IsZero() {
		t.Errorf("n - n is not zero")
	}
	if !Equal(d, Zero()) {
		t.Errorf("n - n != 0")
	}
}

func TestValidityJoin(t *testing.T) {
	tests := []struct {
		a, b, want Validity
	}{
		{AllTime, AllTime, AllTime},
		{AllTime, Causal, AllTime},
		{Causal, Causal, Causal},
		{Causal, PostInitial, PostInitial},
		{AllTime, PostInitial, PostInitial},
	}
	for _, tt := range tests {
		if got := tt.a.Join(tt.b); got != tt.want {
			t.Errorf("%v.Join(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTimeValidity(t *testing.T) {
	one := func(float64) float64 { return 1 }

	if _, err := Time(one, PostInitial).At(-1); !errors.Is(err, ErrUndefinedBeforeZero) {
		t.Errorf("At(-1) error = %v, want ErrUndefinedBeforeZero", err)
	}
	if v, err := Time(one, Causal).At(-1); err != nil || v != 0 {
		t.Errorf("causal At(-1) = %v, %v, want 0", v, err)
	}
	if v, err := Time(one, AllTime).At(-1); err != nil || v != 1 {
		t.Errorf("all-time At(-1) = %v, %v, want 1", v, err)
	}
}

func TestAddKeepsCausalZeroBeforeStart(t *testing.T) {
	step := Time(func(float64) float64 { return 10 }, Causal)
	dc := Time(func(float64) float64 { return 2 }, AllTime)

	sum, err := Add(dc, step)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if sum.Validity() != AllTime {
		t.Errorf("validity = %v, want %v", sum.Validity(), AllTime)
	}
	for _, tt := range []struct{ t, want float64 }{{-1, 2}, {0, 12}, {1, 12}} {
		if v, _ := sum.At(tt.t); v != tt.want {
			t.Errorf("At(%g) = %v, want %v", tt.t, v, tt.want)
		}
	}
}

func TestInverseLaplace(t *testing.T) {
	tests := []struct {
		name string
		F    func(s complex128) complex128
		f    func(t float64) float64
	}{
		{"step", func(s complex128) complex128 { return 5 / s }, func(float64) float64 { return 5 }},
		{"decay", func(s complex128) complex128 { return 1 / (s + 1) }, func(t float64) float64 { return math.Exp(-t) }},
		{"rc step", func(s complex128) complex128 { return 1 / (s * (1 + s)) }, func(t float64) float64 { return 1 - math.Exp(-t) }},
		{"ramp", func(s complex128) complex128 { return 1 / (s * s) }, func(t float64) float64 { return t }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ToTime(Laplace(tt.F, Causal))
			if err != nil {
				t.Fatalf("ToTime() error = %v", err)
			}
			for _, ts := range []float64{0.1, 0.5, 1, 2, 5} {
				got, err := e.At(ts)
				if err != nil {
					t.Fatalf("At(%g) error = %v", ts, err)
				}
				if want := tt.f(ts); math.Abs(got-want) > 1e-6 {
					t.Errorf("f(%g) = %v, want %v", ts, got, want)
				}
			}
		})
	}
}

func TestPhasorToTime(t *testing.T) {
	e, err := ToTime(Phasor(2i, 3))
	if err != nil {
		t.Fatalf("ToTime() error = %v", err)
	}
	// 2j·e^{j3t} -> -2 sin(3t)
	for _, ts := range []float64{-1, 0, 0.4, 2} {
		got, _ := e.At(ts)
		if want := -2 * math.Sin(3*ts); math.Abs(got-want) > 1e-12 {
			t.Errorf("f(%g) = %v, want %v", ts, got, want)
		}
	}
}

func TestConstantToLaplaceIsPostInitial(t *testing.T) {
	l, err := ToLaplace(Constant(4))
	if err != nil {
		t.Fatalf("ToLaplace() error = %v", err)
	}
	if l.Validity() != PostInitial {
		t.Errorf("validity = %v, want %v", l.Validity(), PostInitial)
	}
	v, _ := l.Eval(2)
	if v != 2 {
		t.Errorf("F(2) = %v, want 2", v)
	}
}

func TestToPhasor(t *testing.T) {
	p, err := ToPhasor(Phasor(1, 5), 7)
	if err != nil {
		t.Fatalf("ToPhasor() error = %v", err)
	}
	if !p.IsZero() {
		t.Errorf("phasor at another frequency = %v, want 0", p)
	}
	if _, err := ToPhasor(Laplace(func(s complex128) complex128 { return 1 / s }, Causal), 1); !errors.Is(err, ErrNotTransformable) {
		t.Errorf("ToPhasor(laplace) error = %v, want ErrNotTransformable", err)
	}
}

func TestQuadrature(t *testing.T) {
	n1 := Noise("n1", func(float64) complex128 { return 3 })
	n2 := Noise("n2", func(float64) complex128 { return 4i })

	d, err := Quadrature(n1, Zero(), n2)
	if err != nil {
		t.Fatalf("Quadrature() error = %v", err)
	}
	if d.Kind() != KindDensity {
		t.Fatalf("kind = %v, want %v", d.Kind(), KindDensity)
	}
	for _, w := range []float64{0, 1, 1e3} {
		v, _ := d.Eval(complex(w, 0))
		if math.Abs(real(v)-5) > 1e-12 {
			t.Errorf("density(%g) = %v, want 5", w, v)
		}
	}

	if _, err := Quadrature(Constant(1)); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("Quadrature(dc) error = %v, want ErrKindMismatch", err)
	}
}

func TestRMS(t *testing.T) {
	d := Density(func(float64) float64 { return 5 })
	got, err := RMS(d, 0, 100, 16)
	if err != nil {
		t.Fatalf("RMS() error = %v", err)
	}
	if math.Abs(got-50) > 1e-9 {
		t.Errorf("RMS() = %v, want 50", got)
	}

	if _, err := RMS(d, 10, 1, 16); err == nil {
		t.Errorf("RMS() with inverted band: expected error")
	}
}

func TestEqualWithin(t *testing.T) {
	inv := func(s complex128) complex128 { return 1 / (s + 1) }
	tests := []struct {
		name string
		a, b Expr
		want bool
	}{
		{"close constants", Constant(1), Constant(1 + 1e-12), true},
		{"distant constants", Constant(1), Constant(1.1), false},
		{"phasor imaginary part", Phasor(1+1i, 10), Phasor(1+1.5i, 10), false},
		{"same laplace", Laplace(inv, Causal), Laplace(inv, Causal), true},
		{"scaled laplace", Laplace(inv, Causal), Scale(Laplace(inv, Causal), 2), false},
		{"zero and zero constant", Zero(), Constant(0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EqualWithin(tt.a, tt.b, 1e-9, 1e-9); got != tt.want {
				t.Errorf("EqualWithin(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// Package expr is a small numeric expression algebra for circuit responses.
//
// An Expr is a value in exactly one domain: a DC constant, a phasor at one
// angular frequency, a Laplace-domain function F(s), a time-domain function
// f(t), a noise amplitude spectrum tagged with its noise identifier, or a
// combined noise density. Functional kinds are closures evaluated on demand.
package expr

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats/scalar"
)

var (
	ErrKindMismatch        = errors.New("expr: kind mismatch")
	ErrIndependentNoise    = errors.New("expr: independent noise components cannot be summed directly")
	ErrUndefinedBeforeZero = errors.New("expr: expression is only known for t >= 0")
	ErrNotTransformable    = errors.New("expr: no transform to requested domain")
	ErrFrequencyMismatch   = errors.New("expr: phasors at different angular frequencies")
	ErrDensityNotAdditive  = errors.New("expr: noise densities combine in quadrature only")
)

type Kind uint8

const (
	KindZero Kind = iota
	KindConstant
	KindPhasor
	KindLaplace
	KindTime
	KindNoise
	KindDensity
)

func (k Kind) String() string {
	switch k {
	case KindZero:
		return "zero"
	case KindConstant:
		return "dc"
	case KindPhasor:
		return "phasor"
	case KindLaplace:
		return "laplace"
	case KindTime:
		return "time"
	case KindNoise:
		return "noise"
	case KindDensity:
		return "density"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Validity is the time range over which an expression describes the signal.
type Validity uint8

const (
	// AllTime: valid for every t.
	AllTime Validity = iota
	// Causal: valid for every t and zero for t < 0.
	Causal
	// PostInitial: only known for t >= 0.
	PostInitial
)

func (v Validity) String() string {
	switch v {
	case AllTime:
		return "all-time"
	case Causal:
		return "causal"
	case PostInitial:
		return "t>=0"
	default:
		return fmt.Sprintf("validity(%d)", uint8(v))
	}
}

// Join returns the validity of a sum of two expressions.
func (v Validity) Join(o Validity) Validity {
	switch {
	case v == PostInitial || o == PostInitial:
		return PostInitial
	case v == Causal && o == Causal:
		return Causal
	default:
		return AllTime
	}
}

// Expr is an immutable expression value. The zero Expr is the additive
// identity of every domain.
type Expr struct {
	kind     Kind
	c        complex128
	omega    float64
	fn       func(complex128) complex128
	validity Validity
	nid      string
}

func Zero() Expr { return Expr{} }

func Constant(v float64) Expr {
	return Expr{kind: KindConstant, c: complex(v, 0)}
}

// Phasor returns x·e^{jωt}, i.e. the signal |x|·cos(ωt + arg x).
func Phasor(x complex128, omega float64) Expr {
	return Expr{kind: KindPhasor, c: x, omega: omega}
}

func Laplace(fn func(s complex128) complex128, v Validity) Expr {
	return Expr{kind: KindLaplace, fn: fn, validity: v}
}

func Time(fn func(t float64) float64, v Validity) Expr {
	return Expr{kind: KindTime, fn: func(x complex128) complex128 { return complex(fn(real(x)), 0) }, validity: v}
}

// Noise returns the amplitude spectrum of one noise identifier as a
// function of angular frequency.
func Noise(nid string, fn func(omega float64) complex128) Expr {
	return Expr{kind: KindNoise, fn: func(x complex128) complex128 { return fn(real(x)) }, nid: nid}
}

// Density returns a combined, non-negative noise amplitude density.
func Density(fn func(omega float64) float64) Expr {
	return Expr{kind: KindDensity, fn: func(x complex128) complex128 { return complex(fn(real(x)), 0) }}
}

func (e Expr) Kind() Kind { return e.kind }
func (e Expr) Validity() Validity { return e.validity }
func (e Expr) Omega() float64 { return e.omega }
func (e Expr) NoiseID() string { return e.nid }

// WithValidity returns a copy of e with its validity replaced. Constants and
// phasors are steady-state values and always valid for all time.
func (e Expr) WithValidity(v Validity) Expr {
	if e.kind == KindLaplace || e.kind == KindTime {
		e.validity = v
	}
	return e
}

// Value returns the value of a constant or phasor.
func (e Expr) Value() complex128 { return e.c }

// Eval substitutes x for the domain variable: s for Laplace, t for time,
// ω for noise spectra. Constants and phasors ignore x.
func (e Expr) Eval(x complex128) (complex128, error) {
	switch e.kind {
	case KindZero:
		return 0, nil
	case KindConstant, KindPhasor:
		return e.c, nil
	case KindTime:
		t := real(x)
		if t < 0 {
			switch e.validity {
			case PostInitial:
				return 0, fmt.Errorf("t=%g: %w", t, ErrUndefinedBeforeZero)
			case Causal:
				return 0, nil
			}
		}
		return e.fn(x), nil
	default:
		return e.fn(x), nil
	}
}

// At evaluates a time expression at t.
func (e Expr) At(t float64) (float64, error) {
	if e.kind != KindTime && e.kind != KindZero {
		return 0, fmt.Errorf("evaluating %s at t: %w", e.kind, ErrKindMismatch)
	}
	v, err := e.Eval(complex(t, 0))
	return real(v), err
}

func (e Expr) String() string {
	switch e.kind {
	case KindZero:
		return "0"
	case KindConstant:
		return fmt.Sprintf("%g", real(e.c))
	case KindPhasor:
		return fmt.Sprintf("%g∠%gdeg @ω=%g", cmplx.Abs(e.c), cmplx.Phase(e.c)*180/math.Pi, e.omega)
	case KindNoise:
		return fmt.Sprintf("noise[%s](ω)", e.nid)
	default:
		return fmt.Sprintf("%s(%s)", e.kind, e.validity)
	}
}

// Add returns a+b. Both operands must be in the same domain; the zero
// expression is accepted in any domain.
func Add(a, b Expr) (Expr, error) {
	if a.kind == KindZero {
		return b, nil
	}
	if b.kind == KindZero {
		return a, nil
	}
	if a.kind != b.kind {
		return Expr{}, fmt.Errorf("%s + %s: %w", a.kind, b.kind, ErrKindMismatch)
	}

	switch a.kind {
	case KindConstant:
		return Expr{kind: KindConstant, c: a.c + b.c}, nil
	case KindPhasor:
		if a.omega != b.omega {
			return Expr{}, fmt.Errorf("ω=%g and ω=%g: %w", a.omega, b.omega, ErrFrequencyMismatch)
		}
		return Expr{kind: KindPhasor, c: a.c + b.c, omega: a.omega}, nil
	case KindNoise:
		if a.nid != b.nid {
			return Expr{}, fmt.Errorf("%s and %s: %w", a.nid, b.nid, ErrIndependentNoise)
		}
	case KindDensity:
		return Expr{}, ErrDensityNotAdditive
	}

	fa, fb := a.fn, b.fn
	if a.kind == KindTime {
		fa, fb = a.masked(), b.masked()
	}
	return Expr{
		kind:     a.kind,
		fn:       func(x complex128) complex128 { return fa(x) + fb(x) },
		validity: a.validity.Join(b.validity),
		nid:      a.nid,
	}, nil
}

// masked returns the time function of e, forced to zero before t = 0 when e
// is causal.
func (e Expr) masked() func(complex128) complex128 {
	f := e.fn
	if e.validity != Causal {
		return f
	}
	return func(x complex128) complex128 {
		if real(x) < 0 {
			return 0
		}
		return f(x)
	}
}

// Scale returns k·e.
func Scale(e Expr, k complex128) Expr {
	switch e.kind {
	case KindZero:
		return e
	case KindConstant:
		e.c = complex(real(e.c)*real(k), 0)
		return e
	case KindPhasor:
		e.c *= k
		return e
	case KindDensity:
		f := e.fn
		m := complex(cmplx.Abs(k), 0)
		e.fn = func(x complex128) complex128 { return m * f(x) }
		return e
	default:
		f := e.fn
		e.fn = func(x complex128) complex128 { return k * f(x) }
		return e
	}
}

func Sub(a, b Expr) (Expr, error) {
	return Add(a, Scale(b, -1))
}

// Sum adds the expressions in order.
func Sum(es ...Expr) (Expr, error) {
	acc := Zero()
	for _, e := range es {
		var err error
		if acc, err = Add(acc, e); err != nil {
			return Expr{}, err
		}
	}
	return acc, nil
}

const (
	defaultAbsTol = 1e-9
	defaultRelTol = 1e-9
)

// samplePoints returns the points at which functional kinds are compared.
func samplePoints(k Kind) []complex128 {
	switch k {
	case KindLaplace:
		return []complex128{0.5, 1 + 1i, 3, 2 - 5i, 10i, 100 + 20i}
	case KindTime:
		return []complex128{0, 1e-3, 0.1, 0.5, 1, 3, 10}
	default:
		return []complex128{1, 10, 100, 1e3, 1e4}
	}
}

// IsZero reports whether e is numerically zero.
func (e Expr) IsZero() bool {
	return EqualWithin(e, Zero(), defaultAbsTol, defaultRelTol)
}

func Equal(a, b Expr) bool {
	return EqualWithin(a, b, defaultAbsTol, defaultRelTol)
}

// EqualWithin compares a and b in their common domain. Functional kinds are
// compared by sampling.
func EqualWithin(a, b Expr, absTol, relTol float64) bool {
	kind := a.kind
	if kind == KindZero {
		kind = b.kind
	}
	if a.kind != KindZero && b.kind != KindZero && a.kind != b.kind {
		return false
	}
	if kind == KindPhasor && a.kind == b.kind && a.omega != b.omega {
		return false
	}
	if kind == KindNoise && a.kind == b.kind && a.nid != b.nid {
		return false
	}

	points := []complex128{0}
	if a.fn != nil || b.fn != nil {
		points = samplePoints(kind)
	}
	for _, x := range points {
		va, errA := a.Eval(x)
		vb, errB := b.Eval(x)
		if errA != nil || errB != nil {
			return false
		}
		// both at a pole
		if !finite(va) && !finite(vb) {
			continue
		}
		if !scalar.EqualWithinAbsOrRel(real(va), real(vb), absTol, relTol) ||
			!scalar.EqualWithinAbsOrRel(imag(va), imag(vb), absTol, relTol) {
			return false
		}
	}
	return true
}

func finite(x complex128) bool {
	return !cmplx.IsNaN(x) && !cmplx.IsInf(x)
}

package expr

import (
	"fmt"
	"math"
	"math/cmplx"
)

// DefaultTalbotNodes is the number of contour nodes used by ToTime.
const DefaultTalbotNodes = 32

// tMin stands in for t = 0 when inverting; the inverse gives f(0+).
const tMin = 1e-12

// ToTime converts e to a time-domain expression.
func ToTime(e Expr) (Expr, error) {
	return InverseLaplace(e, DefaultTalbotNodes)
}

// InverseLaplace converts e to the time domain, inverting Laplace
// expressions numerically with the fixed Talbot method on m nodes.
func InverseLaplace(e Expr, m int) (Expr, error) {
	switch e.kind {
	case KindZero, KindTime:
		return e, nil
	case KindConstant:
		c := real(e.c)
		return Time(func(float64) float64 { return c }, AllTime), nil
	case KindPhasor:
		x, w := e.c, e.omega
		return Time(func(t float64) float64 {
			return real(x * cmplx.Exp(complex(0, w*t)))
		}, AllTime), nil
	case KindLaplace:
		if m < 4 {
			m = DefaultTalbotNodes
		}
		F := e.fn
		return Time(func(t float64) float64 { return talbot(F, t, m) }, e.validity), nil
	default:
		return Expr{}, fmt.Errorf("%s to time: %w", e.kind, ErrNotTransformable)
	}
}

// talbot evaluates f(t) from F(s) using the fixed Talbot contour
// s(θ) = rθ(cot θ + j), r = 2M/(5t).
func talbot(F func(complex128) complex128, t float64, m int) float64 {
	if t < tMin {
		t = tMin
	}
	r := 2 * float64(m) / (5 * t)

	sum := 0.5 * real(F(complex(r, 0))) * math.Exp(r*t)
	for k := 1; k < m; k++ {
		theta := float64(k) * math.Pi / float64(m)
		cot := 1 / math.Tan(theta)
		s := complex(r*theta*cot, r*theta)
		sigma := theta + (theta*cot-1)*cot
		sum += real(cmplx.Exp(complex(t, 0)*s) * F(s) * complex(1, sigma))
	}
	return r / float64(m) * sum
}

// ToLaplace converts e to the Laplace domain. Steady-state values give their
// unilateral transforms, which only describe t >= 0.
func ToLaplace(e Expr) (Expr, error) {
	switch e.kind {
	case KindZero, KindLaplace:
		return e, nil
	case KindConstant:
		c := e.c
		return Laplace(func(s complex128) complex128 { return c / s }, PostInitial), nil
	case KindPhasor:
		a, b, w := real(e.c), imag(e.c), complex(e.omega, 0)
		return Laplace(func(s complex128) complex128 {
			return (complex(a, 0)*s - complex(b, 0)*w) / (s*s + w*w)
		}, PostInitial), nil
	default:
		return Expr{}, fmt.Errorf("%s to laplace: %w", e.kind, ErrNotTransformable)
	}
}

// ToPhasor converts e to a phasor at omega. A constant is a phasor at ω = 0.
func ToPhasor(e Expr, omega float64) (Expr, error) {
	switch e.kind {
	case KindZero:
		return e, nil
	case KindConstant:
		if omega == 0 {
			return Phasor(e.c, 0), nil
		}
		return Zero(), nil
	case KindPhasor:
		if e.omega == omega {
			return e, nil
		}
		return Zero(), nil
	default:
		return Expr{}, fmt.Errorf("%s to phasor: %w", e.kind, ErrNotTransformable)
	}
}

// ToConstant converts e to its DC value.
func ToConstant(e Expr) (Expr, error) {
	switch e.kind {
	case KindZero, KindConstant:
		return e, nil
	case KindPhasor:
		if e.omega == 0 {
			return Constant(real(e.c)), nil
		}
		return Zero(), nil
	default:
		return Expr{}, fmt.Errorf("%s to dc: %w", e.kind, ErrNotTransformable)
	}
}

// Convert converts e to kind k. omega is used for phasors only.
func Convert(e Expr, k Kind, omega float64, talbotNodes int) (Expr, error) {
	switch k {
	case KindTime:
		return InverseLaplace(e, talbotNodes)
	case KindLaplace:
		return ToLaplace(e)
	case KindPhasor:
		return ToPhasor(e, omega)
	case KindConstant:
		return ToConstant(e)
	default:
		return Expr{}, fmt.Errorf("convert to %s: %w", k, ErrNotTransformable)
	}
}

package expr

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/integrate/quad"
)

// Quadrature combines independent noise components into the density
// sqrt(Σ|Nᵢ(ω)|²). Zero components are skipped.
func Quadrature(components ...Expr) (Expr, error) {
	fns := make([]func(complex128) complex128, 0, len(components))
	for _, c := range components {
		switch c.kind {
		case KindZero:
			continue
		case KindNoise:
			fns = append(fns, c.fn)
		default:
			return Expr{}, fmt.Errorf("quadrature of %s: %w", c.kind, ErrKindMismatch)
		}
	}

	return Density(func(omega float64) float64 {
		x := complex(omega, 0)
		var sum float64
		for _, fn := range fns {
			a := cmplx.Abs(fn(x))
			sum += a * a
		}
		return math.Sqrt(sum)
	}), nil
}

// RMS integrates a noise density over the band [fmin, fmax] in hertz and
// returns sqrt(∫|N(2πf)|² df). n is the number of Gauss-Legendre nodes.
func RMS(e Expr, fmin, fmax float64, n int) (float64, error) {
	if e.kind == KindZero {
		return 0, nil
	}
	if e.kind != KindNoise && e.kind != KindDensity {
		return 0, fmt.Errorf("rms of %s: %w", e.kind, ErrKindMismatch)
	}
	if fmax < fmin || fmin < 0 {
		return 0, fmt.Errorf("invalid band [%g, %g]", fmin, fmax)
	}
	if n <= 0 {
		n = 64
	}

	fn := e.fn
	power := quad.Fixed(func(f float64) float64 {
		a := cmplx.Abs(fn(complex(2*math.Pi*f, 0)))
		return a * a
	}, fmin, fmax, n, nil, 0)
	return math.Sqrt(power), nil
}

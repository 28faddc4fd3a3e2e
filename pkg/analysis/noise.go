package analysis

import (
	"fmt"

	"github.com/edp1096/toy-lti/pkg/circuit"
	"github.com/edp1096/toy-lti/pkg/device"
	"github.com/edp1096/toy-lti/pkg/expr"
)

// NoiseComponent returns the contribution of one noise identifier to q.
func (r *Result) NoiseComponent(q circuit.Quantity, nid device.NoiseID) (expr.Expr, error) {
	if !r.actx.hasNoiseID(nid) {
		return expr.Expr{}, fmt.Errorf("%w: %s", ErrUnknownNoise, nid)
	}
	pr, err := r.Partial(q)
	if err != nil {
		return expr.Expr{}, err
	}
	return pr.Get(Key{Category: CategoryNoise, Noise: nid}), nil
}

// NoiseMagnitude returns the amplitude density of the total noise at q,
// the quadrature sum of the independent components. Without noise it is
// the zero density.
func (r *Result) NoiseMagnitude(q circuit.Quantity) (expr.Expr, error) {
	pr, err := r.Partial(q)
	if err != nil {
		return expr.Expr{}, err
	}
	return quadrature(pr)
}

func quadrature(pr PartialResponse) (expr.Expr, error) {
	var comps []expr.Expr
	for _, k := range pr.Keys() {
		if k.IsNoise() {
			comps = append(comps, pr[k])
		}
	}
	return expr.Quadrature(comps...)
}

// NoiseRMS returns the RMS noise at q over the band [fmin, fmax] in hertz.
func (r *Result) NoiseRMS(q circuit.Quantity, fmin, fmax float64) (float64, error) {
	mag, err := r.NoiseMagnitude(q)
	if err != nil {
		return 0, err
	}
	rms, err := expr.RMS(mag, fmin, fmax, r.opts.noisePoints)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", q, err)
	}
	return rms, nil
}

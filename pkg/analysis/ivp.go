package analysis

import (
	"context"

	"github.com/edp1096/toy-lti/pkg/circuit"
	"github.com/edp1096/toy-lti/pkg/device"
	"github.com/edp1096/toy-lti/pkg/expr"
)

// InitialValue solves all deterministic sources together in the s-domain
// with the declared pre-initial conditions as forcing terms. Sources are
// taken as zero before t = 0, so the result holds for t >= 0 only. Noise
// is stationary and still solved per identifier.
type InitialValue struct {
	BaseAnalysis
	buckets []Bucket
}

func (a *InitialValue) Setup(actx *Context) error {
	var det, noise []Part
	for _, p := range actx.parts {
		if p.Category == CategoryNoise {
			noise = append(noise, p)
		} else {
			det = append(det, p)
		}
	}

	refs := make([]PartRef, len(det))
	for i, p := range det {
		refs[i] = p.PartRef
	}
	initial := Bucket{
		Key: Key{Initial: true},
		Circuit: a.Circuit.Reduce(func(_ string, _ int, w device.Waveform) bool {
			return w.Kind != device.WaveNoise
		}),
		Domain:   circuit.Domain{Kind: circuit.DomainLaplace, InitialConditions: true},
		Validity: expr.PostInitial,
		Parts:    refs,
	}

	noiseBuckets, err := Decompose(a.Circuit, noise)
	if err != nil {
		return err
	}

	a.buckets = append([]Bucket{initial}, noiseBuckets...)
	return checkPartition(actx.parts, a.buckets)
}

func (a *InitialValue) Execute(ctx context.Context) error {
	return a.solve(ctx, a.buckets)
}

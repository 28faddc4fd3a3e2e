package analysis

import (
	"context"

	"github.com/edp1096/toy-lti/pkg/circuit"
	"github.com/edp1096/toy-lti/pkg/device"
	"github.com/edp1096/toy-lti/pkg/expr"
)

// TimeDomain solves a network without storage elements. Every quantity is a
// fixed linear combination of the source signals, so one unit-gain solve
// per source gives the response for all t.
type TimeDomain struct {
	BaseAnalysis
	parts   []Part
	buckets []Bucket
}

func (a *TimeDomain) Setup(actx *Context) error {
	a.parts = actx.parts

	index := make(map[string]int)
	for _, p := range a.parts {
		i, ok := index[p.Source]
		if !ok {
			i = len(a.buckets)
			index[p.Source] = i
			src := p.Source
			a.buckets = append(a.buckets, Bucket{
				Key: p.Key(),
				Circuit: a.Circuit.Reduce(func(name string, _ int, _ device.Waveform) bool {
					return name == src
				}),
				Domain:   circuit.Domain{Kind: circuit.DomainGain},
				Validity: expr.AllTime,
				Source:   src,
			})
		}
		a.buckets[i].Parts = append(a.buckets[i].Parts, p.PartRef)
	}
	return checkPartition(a.parts, a.buckets)
}

type term struct {
	gain float64
	w    device.Waveform
}

func (a *TimeDomain) Execute(ctx context.Context) error {
	gains, err := solveBuckets(ctx, a.solver, a.buckets, a.workers, a.logger)
	if err != nil {
		return err
	}
	bySource := make(map[string]circuit.Solution, len(a.buckets))
	for i, b := range a.buckets {
		bySource[b.Source] = gains[i]
	}

	groups := make(map[Key][]Part)
	var keys []Key
	for _, p := range a.parts {
		k := p.Key()
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], p)
	}
	sortKeys(keys)

	quantities := a.Circuit.Quantities()
	for _, k := range keys {
		sol := make(circuit.Solution, len(quantities))
		for _, q := range quantities {
			var terms []term
			for _, p := range groups[k] {
				g := real(bySource[p.Source][q].Value())
				if g != 0 {
					terms = append(terms, term{gain: g, w: p.Waveform})
				}
			}
			sol[q] = timeResponse(terms)
		}
		a.storeResult(k, sol)
	}
	return nil
}

func timeResponse(terms []term) expr.Expr {
	if len(terms) == 0 {
		return expr.Zero()
	}
	return expr.Time(func(t float64) float64 {
		var v float64
		for _, tm := range terms {
			v += tm.gain * tm.w.At(t)
		}
		return v
	}, expr.AllTime)
}

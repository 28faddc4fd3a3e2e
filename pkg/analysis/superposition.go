package analysis

import (
	"context"
)

// Superposition solves each category bucket on its own and keeps the
// solutions apart until a query combines them.
type Superposition struct {
	BaseAnalysis
	buckets []Bucket
}

// Setup rejects non-causal arbitrary parts whose pre-initial state cannot
// be inferred: the circuit stores energy and not every storage element
// declares its initial condition.
func (a *Superposition) Setup(actx *Context) error {
	if actx.hasStorage && !allExplicit(a.Circuit.StorageElements()) {
		for _, p := range actx.parts {
			if p.Category == CategoryArbitrary && !p.Waveform.IsCausal() {
				return &AmbiguousInitialConditionError{Source: p.Source}
			}
		}
	}

	buckets, err := Decompose(a.Circuit, actx.parts)
	if err != nil {
		return err
	}
	a.buckets = buckets
	return nil
}

func (a *Superposition) Execute(ctx context.Context) error {
	return a.solve(ctx, a.buckets)
}

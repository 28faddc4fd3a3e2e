package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edp1096/toy-lti/pkg/circuit"
)

// Solver solves a circuit in one domain. Implementations must be safe for
// concurrent use; pkg/mna provides one.
type Solver interface {
	Solve(ctx context.Context, ckt *circuit.Circuit, d circuit.Domain) (circuit.Solution, error)
}

// floating is implemented by solver errors that name nodes without a DC
// path to ground.
type floating interface {
	Floating() []string
}

// solveBucket solves one bucket and stamps the bucket's validity on every
// Laplace and time expression.
func solveBucket(ctx context.Context, solver Solver, b Bucket) (circuit.Solution, error) {
	sol, err := solver.Solve(ctx, b.Circuit, b.Domain)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if b.Domain.Kind == circuit.DomainDC || b.Domain.Kind == circuit.DomainGain {
			ue := &UnsolvableCircuitError{Err: err}
			var f floating
			if errors.As(err, &f) && len(f.Floating()) > 0 {
				ue.Node = f.Floating()[0]
			}
			return nil, ue
		}
		return nil, fmt.Errorf("solving %s bucket in %s: %w", b, b.Domain, err)
	}

	out := make(circuit.Solution, len(sol))
	for q, e := range sol {
		out[q] = e.WithValidity(b.Validity)
	}
	return out, nil
}

// solveBuckets solves the buckets concurrently on at most workers
// goroutines. The first failure cancels the others and no solution is
// returned. Solutions are in bucket order.
func solveBuckets(ctx context.Context, solver Solver, buckets []Bucket, workers int, logger *slog.Logger) ([]circuit.Solution, error) {
	sols := make([]circuit.Solution, len(buckets))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, b := range buckets {
		g.Go(func() error {
			start := time.Now()
			sol, err := solveBucket(gctx, solver, b)
			if err != nil {
				return err
			}
			sols[i] = sol
			logger.Debug("bucket solved",
				"category", b.Key.Category.String(),
				"key", b.String(),
				"domain", b.Domain.String(),
				"parts", len(b.Parts),
				"elapsed", time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sols, nil
}

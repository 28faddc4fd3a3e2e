// Package analysis selects how a linear time-invariant circuit is solved,
// splits its sources into independently solvable buckets and superposes
// the partial solutions.
package analysis

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/edp1096/toy-lti/pkg/circuit"
	"github.com/edp1096/toy-lti/pkg/expr"
)

// Analysis is one strategy. Setup plans the solves from the context,
// Execute runs them and GetResults returns one solution per key.
type Analysis interface {
	Setup(actx *Context) error
	Execute(ctx context.Context) error
	GetResults() []Entry
}

// Entry is the solution of every quantity for one key.
type Entry struct {
	Key      Key
	Solution circuit.Solution
}

type BaseAnalysis struct {
	Circuit *circuit.Circuit
	solver  Solver
	logger  *slog.Logger
	workers int
	results []Entry
}

func newBaseAnalysis(ckt *circuit.Circuit, solver Solver, logger *slog.Logger, workers int) BaseAnalysis {
	return BaseAnalysis{Circuit: ckt, solver: solver, logger: logger, workers: workers}
}

func (a *BaseAnalysis) storeResult(k Key, sol circuit.Solution) {
	a.results = append(a.results, Entry{Key: k, Solution: sol})
}

// solve runs the buckets and stores one result per bucket key.
func (a *BaseAnalysis) solve(ctx context.Context, buckets []Bucket) error {
	sols, err := solveBuckets(ctx, a.solver, buckets, a.workers, a.logger)
	if err != nil {
		return err
	}
	for i, b := range buckets {
		a.storeResult(b.Key, sols[i])
	}
	return nil
}

func (a *BaseAnalysis) GetResults() []Entry {
	return a.results
}

type Option func(*Analyzer)

// WithLogger sets the logger; the default discards.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithWorkers bounds the number of concurrent bucket solves.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithTalbotNodes sets the contour nodes used to invert Laplace
// expressions for time-domain queries.
func WithTalbotNodes(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.talbotNodes = n
		}
	}
}

// WithStrict makes every query fail on contributions with different
// domains of validity instead of narrowing to t >= 0.
func WithStrict(strict bool) Option {
	return func(a *Analyzer) { a.strict = strict }
}

// WithNoisePoints sets the quadrature nodes for noise RMS integration.
func WithNoisePoints(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.noisePoints = n
		}
	}
}

// Analyzer runs analysis requests against one circuit. The circuit must
// have its nodes assigned and is not modified.
type Analyzer struct {
	ckt         *circuit.Circuit
	solver      Solver
	logger      *slog.Logger
	workers     int
	talbotNodes int
	strict      bool
	noisePoints int
}

func New(ckt *circuit.Circuit, solver Solver, opts ...Option) *Analyzer {
	a := &Analyzer{
		ckt:         ckt,
		solver:      solver,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers:     runtime.GOMAXPROCS(0),
		talbotNodes: expr.DefaultTalbotNodes,
		noisePoints: 64,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze classifies the sources, selects the mode and solves every
// bucket. Either every bucket is solved or an error is returned.
func (a *Analyzer) Analyze(ctx context.Context) (*Result, error) {
	start := time.Now()
	logger := a.logger.With("request", uuid.NewString(), "circuit", a.ckt.Name())

	actx, err := NewContext(a.ckt)
	if err != nil {
		return nil, err
	}

	base := newBaseAnalysis(a.ckt, a.solver, logger, a.workers)
	var an Analysis
	switch actx.Mode() {
	case ModeInitialValue:
		an = &InitialValue{BaseAnalysis: base}
	case ModeTimeDomain:
		an = &TimeDomain{BaseAnalysis: base}
	default:
		an = &Superposition{BaseAnalysis: base}
	}

	if err := an.Setup(actx); err != nil {
		return nil, err
	}
	if err := an.Execute(ctx); err != nil {
		return nil, err
	}

	entries := an.GetResults()
	logger.Info("analysis complete",
		"mode", actx.Mode().String(),
		"categories", len(actx.Categories()),
		"entries", len(entries),
		"elapsed", time.Since(start))

	return newResult(a.ckt, actx, entries, resultOptions{
		talbotNodes: a.talbotNodes,
		strict:      a.strict,
		noisePoints: a.noisePoints,
	}), nil
}

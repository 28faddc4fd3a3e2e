// Package mna solves a circuit by modified nodal analysis on a sparse
// matrix. One matrix is built per solve, so a Solver may be shared between
// goroutines.
package mna

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/cmplx"
	"strings"
	"sync"

	"github.com/edp1096/toy-lti/pkg/circuit"
	"github.com/edp1096/toy-lti/pkg/device"
	"github.com/edp1096/toy-lti/pkg/expr"
	"github.com/edp1096/toy-lti/pkg/matrix"
)

var (
	// ErrNoDCPath is returned when a node has no DC path to ground.
	ErrNoDCPath = errors.New("mna: no DC path to ground")
	// ErrSingular is returned when the system matrix cannot be factored.
	ErrSingular = errors.New("mna: singular system")
)

// FloatingNodeError names the node without a DC path to ground.
type FloatingNodeError struct {
	Nodes []string
}

func (e *FloatingNodeError) Error() string {
	return fmt.Sprintf("no DC path to ground from node(s) %s; check there is a DC path between all nodes", strings.Join(e.Nodes, ", "))
}

func (e *FloatingNodeError) Unwrap() error { return ErrNoDCPath }

// Floating returns the nodes without a DC path.
func (e *FloatingNodeError) Floating() []string { return e.Nodes }

// probe is the complex frequency used to validate Laplace systems eagerly.
const probe = complex(1, 1)

// cacheLimit bounds the per-solution memo of Laplace evaluations.
const cacheLimit = 4096

type Solver struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Solver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Solver{logger: logger}
}

// Solve returns the value of every quantity of ckt in the requested domain.
// DC and gain solutions are constants, phasor solutions are phasors at
// d.Omega, Laplace and noise solutions are functions evaluated lazily.
func (s *Solver) Solve(ctx context.Context, ckt *circuit.Circuit, d circuit.Domain) (circuit.Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch d.Kind {
	case circuit.DomainDC, circuit.DomainGain:
		if floating := ckt.FloatingNodes(); len(floating) > 0 {
			return nil, &FloatingNodeError{Nodes: floating}
		}
		status := s.status(ckt, d)
		x, err := s.solveAt(ckt, status)
		if err != nil {
			return nil, err
		}
		sol := make(circuit.Solution)
		for _, q := range ckt.Quantities() {
			sol[q] = expr.Constant(real(quantity(ckt, q, x, status)))
		}
		return sol, nil

	case circuit.DomainPhasor:
		status := s.status(ckt, d)
		status.S = complex(0, d.Omega)
		x, err := s.solveAt(ckt, status)
		if err != nil {
			return nil, err
		}
		sol := make(circuit.Solution)
		for _, q := range ckt.Quantities() {
			sol[q] = expr.Phasor(quantity(ckt, q, x, status), d.Omega)
		}
		return sol, nil

	case circuit.DomainLaplace:
		ev := &evaluator{solver: s, ckt: ckt, base: s.status(ckt, d), cache: make(map[complex128][]complex128)}
		if _, err := ev.at(probe); err != nil {
			return nil, err
		}
		sol := make(circuit.Solution)
		for _, q := range ckt.Quantities() {
			sol[q] = expr.Laplace(func(sv complex128) complex128 { return ev.quantity(q, sv) }, expr.Causal)
		}
		return sol, nil

	case circuit.DomainNoise:
		ev := &evaluator{solver: s, ckt: ckt, base: s.status(ckt, d), cache: make(map[complex128][]complex128)}
		if _, err := ev.at(probe); err != nil {
			return nil, err
		}
		nid := string(d.Noise)
		sol := make(circuit.Solution)
		for _, q := range ckt.Quantities() {
			sol[q] = expr.Noise(nid, func(omega float64) complex128 { return ev.quantity(q, complex(0, omega)) })
		}
		return sol, nil

	default:
		return nil, fmt.Errorf("mna: unsupported domain %s", d)
	}
}

func (s *Solver) status(ckt *circuit.Circuit, d circuit.Domain) *device.CircuitStatus {
	var mode device.AnalysisMode
	switch d.Kind {
	case circuit.DomainDC:
		mode = device.DCAnalysis
	case circuit.DomainPhasor:
		mode = device.PhasorAnalysis
	case circuit.DomainLaplace:
		mode = device.LaplaceAnalysis
	case circuit.DomainNoise:
		mode = device.NoiseAnalysis
	case circuit.DomainGain:
		mode = device.GainAnalysis
	}
	status := device.NewStatus(mode)
	status.Omega = d.Omega
	status.Noise = d.Noise
	status.Temp = ckt.Temp
	status.InitialConditions = d.InitialConditions && d.Kind == circuit.DomainLaplace
	return status
}

// solveAt stamps and solves one system. The returned vector is 1-based and
// indexed by node and branch number.
func (s *Solver) solveAt(ckt *circuit.Circuit, status *device.CircuitStatus) ([]complex128, error) {
	mat, err := matrix.NewMatrix(ckt.Size(), !status.IsReal())
	if err != nil {
		return nil, err
	}
	defer mat.Destroy()

	mat.SetupElements()
	if err := ckt.Stamp(mat, status); err != nil {
		return nil, err
	}

	if s.logger.Enabled(context.Background(), slog.LevelDebug-4) {
		var b strings.Builder
		mat.Dump(&b)
		s.logger.Log(context.Background(), slog.LevelDebug-4, "mna system", "mode", status.Mode.String(), "s", status.S, "equations", b.String())
	}

	if err := mat.Solve(); err != nil {
		return nil, fmt.Errorf("%w at %s s=%v: %v", ErrSingular, status.Mode, status.S, err)
	}

	x := make([]complex128, ckt.Size()+1)
	for i := 1; i <= ckt.Size(); i++ {
		x[i] = mat.ComplexSolution(i)
	}
	return x, nil
}

// quantity derives q from the solution vector x.
func quantity(ckt *circuit.Circuit, q circuit.Quantity, x []complex128, status *device.CircuitStatus) complex128 {
	if q.Kind == circuit.NodeVoltage {
		return x[ckt.GetNodeMap()[q.Name]]
	}

	dev := ckt.Device(q.Name)
	if dev == nil {
		return cmplx.NaN()
	}
	nodes := dev.GetNodes()
	vd := x[nodes[0]] - x[nodes[1]]

	switch d := dev.(type) {
	case device.BranchDevice:
		return x[d.BranchIndex()]
	case *device.Resistor:
		return vd * complex(d.Conductance(status.Temp), 0)
	case *device.Capacitor:
		return d.Current(vd, status)
	case *device.CurrentSource:
		// current leaves the source at n1
		return -device.SourceValue(d, status)
	case *device.VCCS:
		return d.Current(x[nodes[2]] - x[nodes[3]])
	case *device.CCCS:
		return complex(d.Gain(), 0) * x[d.ControlBranch()]
	default:
		return cmplx.NaN()
	}
}

// evaluator solves a circuit at arbitrary complex frequencies and memoizes
// the solution vectors.
type evaluator struct {
	solver *Solver
	ckt    *circuit.Circuit
	base   *device.CircuitStatus

	mu    sync.Mutex
	cache map[complex128][]complex128
}

func (e *evaluator) statusAt(sv complex128) *device.CircuitStatus {
	st := *e.base
	st.S = sv
	if st.Mode == device.NoiseAnalysis {
		st.Omega = imag(sv)
	}
	return &st
}

func (e *evaluator) at(sv complex128) ([]complex128, error) {
	e.mu.Lock()
	if x, ok := e.cache[sv]; ok {
		e.mu.Unlock()
		return x, nil
	}
	e.mu.Unlock()

	x, err := e.solver.solveAt(e.ckt, e.statusAt(sv))
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if len(e.cache) >= cacheLimit {
		e.cache = make(map[complex128][]complex128)
	}
	e.cache[sv] = x
	e.mu.Unlock()
	return x, nil
}

// quantity returns NaN where the system is singular, e.g. at a pole.
func (e *evaluator) quantity(q circuit.Quantity, sv complex128) complex128 {
	x, err := e.at(sv)
	if err != nil {
		return cmplx.NaN()
	}
	return quantity(e.ckt, q, x, e.statusAt(sv))
}

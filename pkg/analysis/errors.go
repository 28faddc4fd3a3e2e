package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/edp1096/toy-lti/pkg/expr"
)

var (
	ErrInconsistentInitialCondition = errors.New("analysis: inconsistent initial conditions")
	ErrUnsolvableCircuit            = errors.New("analysis: unsolvable circuit")
	ErrAmbiguousInitialCondition    = errors.New("analysis: pre-initial conditions required")
	ErrDomainMismatch               = errors.New("analysis: contributions have different domains of validity")
	ErrUnknownNoise                 = errors.New("analysis: unknown noise identifier")
	ErrUnknownQuantity              = errors.New("analysis: unknown quantity")
	ErrPartitionBroken              = errors.New("analysis: source partition is not complete and disjoint")
)

// InconsistentInitialConditionError reports a network asserted at rest that
// declares a non-zero initial condition or a non-causal source.
type InconsistentInitialConditionError struct {
	Element string // storage element, if any
	Source  string // source, if any
	Reason  string
}

func (e *InconsistentInitialConditionError) Error() string {
	name := e.Element
	if name == "" {
		name = e.Source
	}
	return fmt.Sprintf("%s: %s: %s", ErrInconsistentInitialCondition, name, e.Reason)
}

func (e *InconsistentInitialConditionError) Is(target error) bool {
	return target == ErrInconsistentInitialCondition
}

// UnsolvableCircuitError reports a DC operating point that does not exist.
// Node is the first node without a DC path to ground, when known.
type UnsolvableCircuitError struct {
	Node string
	Err  error
}

func (e *UnsolvableCircuitError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s: node %s has no DC path to ground: %v", ErrUnsolvableCircuit, e.Node, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrUnsolvableCircuit, e.Err)
}

func (e *UnsolvableCircuitError) Is(target error) bool {
	return target == ErrUnsolvableCircuit
}

func (e *UnsolvableCircuitError) Unwrap() error { return e.Err }

// AmbiguousInitialConditionError reports a non-causal source whose effect on
// the storage elements before t = 0 cannot be derived. Declare an ic= on
// every capacitor and inductor to resolve it.
type AmbiguousInitialConditionError struct {
	Source string
}

func (e *AmbiguousInitialConditionError) Error() string {
	return fmt.Sprintf("%s: source %s is not causal; declare initial conditions on all storage elements", ErrAmbiguousInitialCondition, e.Source)
}

func (e *AmbiguousInitialConditionError) Is(target error) bool {
	return target == ErrAmbiguousInitialCondition
}

// DomainMismatchError lists the contributions of a strict query and their
// domains of validity.
type DomainMismatchError struct {
	Keys     []Key
	Validity []expr.Validity
}

func (e *DomainMismatchError) Error() string {
	parts := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Validity[i])
	}
	return fmt.Sprintf("%s (%s)", ErrDomainMismatch, strings.Join(parts, ", "))
}

func (e *DomainMismatchError) Is(target error) bool {
	return target == ErrDomainMismatch
}

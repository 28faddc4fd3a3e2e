package circuit

import (
	"fmt"
	"strings"

	"github.com/edp1096/toy-lti/pkg/device"
	"github.com/edp1096/toy-lti/pkg/expr"
)

type QuantityKind int

const (
	NodeVoltage QuantityKind = iota
	BranchCurrent
)

// Quantity names a queryable network variable: V(node) or I(element).
// Element currents flow from the element's first node through it to the
// second node.
type Quantity struct {
	Kind QuantityKind
	Name string
}

func V(node string) Quantity { return Quantity{Kind: NodeVoltage, Name: node} }

func I(element string) Quantity { return Quantity{Kind: BranchCurrent, Name: element} }

func (q Quantity) String() string {
	if q.Kind == BranchCurrent {
		return fmt.Sprintf("I(%s)", q.Name)
	}
	return fmt.Sprintf("V(%s)", q.Name)
}

// ParseQuantity accepts "V(name)" and "I(name)", case-insensitive prefix.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if len(s) < 4 || s[1] != '(' || !strings.HasSuffix(s, ")") {
		return Quantity{}, fmt.Errorf("invalid quantity %q, want V(node) or I(element)", s)
	}

	name := strings.TrimSpace(s[2 : len(s)-1])
	if name == "" {
		return Quantity{}, fmt.Errorf("invalid quantity %q: empty name", s)
	}

	switch s[0] {
	case 'V', 'v':
		return V(name), nil
	case 'I', 'i':
		return I(name), nil
	default:
		return Quantity{}, fmt.Errorf("invalid quantity %q, want V(node) or I(element)", s)
	}
}

type DomainKind int

const (
	DomainDC DomainKind = iota
	DomainPhasor
	DomainLaplace
	DomainNoise
	// DomainGain solves a resistive network with each active source at unit
	// value.
	DomainGain
)

func (k DomainKind) String() string {
	switch k {
	case DomainDC:
		return "dc"
	case DomainPhasor:
		return "phasor"
	case DomainLaplace:
		return "laplace"
	case DomainNoise:
		return "noise"
	case DomainGain:
		return "gain"
	default:
		return "unknown"
	}
}

// Domain selects how a circuit is solved.
type Domain struct {
	Kind  DomainKind
	Omega float64        // DomainPhasor
	Noise device.NoiseID // DomainNoise
	// InitialConditions includes storage pre-initial conditions as forcing
	// terms (DomainLaplace only).
	InitialConditions bool
}

func (d Domain) String() string {
	switch d.Kind {
	case DomainPhasor:
		return fmt.Sprintf("phasor(ω=%g)", d.Omega)
	case DomainNoise:
		return fmt.Sprintf("noise(%s)", d.Noise)
	case DomainLaplace:
		if d.InitialConditions {
			return "laplace(ivp)"
		}
	}
	return d.Kind.String()
}

// Solution maps each quantity of a solved circuit to its value.
type Solution map[Quantity]expr.Expr

package device

import (
	"github.com/edp1096/toy-lti/internal/consts"
	"github.com/edp1096/toy-lti/pkg/matrix"
)

type Device interface {
	GetName() string
	GetType() string
	GetNodeNames() []string
	GetNodes() []int
	Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error
	GetValue() float64
	SetNodes(nodes []int)
}

// BranchDevice adds a current unknown to the system: voltage sources and
// inductors.
type BranchDevice interface {
	Device
	BranchIndex() int
	SetBranchIndex(idx int)
}

// Storage is an energy storage element with an optional pre-initial
// condition: capacitor voltage or inductor current.
type Storage interface {
	Device
	InitialCondition() (value float64, state ICState)
}

type ICState int

const (
	ICUnspecified ICState = iota
	ICZero
	ICNonZero
)

func (s ICState) String() string {
	switch s {
	case ICZero:
		return "zero"
	case ICNonZero:
		return "non-zero"
	default:
		return "unspecified"
	}
}

func icState(ic *float64) ICState {
	switch {
	case ic == nil:
		return ICUnspecified
	case *ic == 0:
		return ICZero
	default:
		return ICNonZero
	}
}

type BaseDevice struct {
	Name      string
	Nodes     []int
	Value     float64
	NodeNames []string
}

type AnalysisMode int

const (
	// DCAnalysis: s = 0, capacitors open, inductors shorted.
	DCAnalysis AnalysisMode = iota
	// PhasorAnalysis: s = jω, AC parts at ω only.
	PhasorAnalysis
	// LaplaceAnalysis: complex frequency s, unilateral source transforms.
	LaplaceAnalysis
	// NoiseAnalysis: s = jω, noise parts of one identifier only.
	NoiseAnalysis
	// GainAnalysis: resistive network, each active source at unit value.
	GainAnalysis
)

func (m AnalysisMode) String() string {
	switch m {
	case DCAnalysis:
		return "dc"
	case PhasorAnalysis:
		return "phasor"
	case LaplaceAnalysis:
		return "laplace"
	case NoiseAnalysis:
		return "noise"
	case GainAnalysis:
		return "gain"
	default:
		return "unknown"
	}
}

type CircuitStatus struct {
	Mode  AnalysisMode
	S     complex128 // complex frequency for Phasor, Laplace and Noise modes
	Omega float64    // Phasor and Noise modes
	Noise NoiseID    // Noise mode
	Temp  float64
	// InitialConditions stamps storage pre-initial conditions as sources.
	InitialConditions bool
}

// IsReal reports whether the mode stamps a real system.
func (s *CircuitStatus) IsReal() bool {
	return s.Mode == DCAnalysis || s.Mode == GainAnalysis
}

func NewStatus(mode AnalysisMode) *CircuitStatus {
	return &CircuitStatus{Mode: mode, Temp: consts.TNOM}
}

func (d *BaseDevice) GetName() string {
	return d.Name
}

func (d *BaseDevice) GetNodes() []int {
	return d.Nodes
}

func (d *BaseDevice) GetNodeNames() []string {
	return d.NodeNames
}

func (d *BaseDevice) GetValue() float64 {
	return d.Value
}

func (d *BaseDevice) SetNodes(nodes []int) {
	d.Nodes = nodes
}

func newBaseDevice(name string, nodeNames []string, value float64) BaseDevice {
	return BaseDevice{
		Name:      name,
		Value:     value,
		NodeNames: nodeNames,
		Nodes:     make([]int, len(nodeNames)),
	}
}

// stampAdmittance stamps y between n1 and n2, real in DC/gain modes.
func stampAdmittance(m matrix.DeviceMatrix, status *CircuitStatus, n1, n2 int, y complex128) {
	add := func(i, j int, v complex128) {
		if status.IsReal() {
			m.AddElement(i, j, real(v))
			return
		}
		m.AddComplexElement(i, j, real(v), imag(v))
	}

	if n1 != 0 {
		add(n1, n1, y)
		if n2 != 0 {
			add(n1, n2, -y)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			add(n2, n1, -y)
		}
		add(n2, n2, y)
	}
}

// stampBranch stamps the incidence of a branch current between n1 and n2.
func stampBranch(m matrix.DeviceMatrix, status *CircuitStatus, n1, n2, bIdx int) {
	add := func(i, j int, v float64) {
		if status.IsReal() {
			m.AddElement(i, j, v)
			return
		}
		m.AddComplexElement(i, j, v, 0)
	}

	if n1 != 0 {
		add(bIdx, n1, 1)
		add(n1, bIdx, 1)
	}
	if n2 != 0 {
		add(bIdx, n2, -1)
		add(n2, bIdx, -1)
	}
}

func addRHS(m matrix.DeviceMatrix, status *CircuitStatus, i int, v complex128) {
	if i == 0 || v == 0 {
		return
	}
	if status.IsReal() {
		m.AddRHS(i, real(v))
		return
	}
	m.AddComplexRHS(i, real(v), imag(v))
}

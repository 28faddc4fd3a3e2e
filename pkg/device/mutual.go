package device

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-lti/pkg/matrix"
)

type Mutual struct {
	BaseDevice
	inductors   []*Inductor
	names       []string
	coefficient float64
}

func NewMutual(name string, indNames []string, k float64) *Mutual {
	return &Mutual{
		BaseDevice:  BaseDevice{Name: name, Value: k},
		names:       indNames,
		coefficient: k,
		inductors:   make([]*Inductor, len(indNames)),
	}
}

func (m *Mutual) GetType() string { return "K" }

func (m *Mutual) SetInductor(index int, ind *Inductor) error {
	if index < 0 || index >= len(m.inductors) {
		return fmt.Errorf("invalid inductor index: %d", index)
	}
	m.inductors[index] = ind
	return nil
}

func (m *Mutual) GetInductors() []*Inductor {
	return m.inductors
}

func (m *Mutual) GetInductorNames() []string {
	return m.names
}

func (m *Mutual) GetCoefficient() float64 { return m.coefficient }

// Stamp couples every inductor pair with M = k·sqrt(L1·L2). Coupling has no
// effect at DC.
func (m *Mutual) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(m.inductors) < 2 {
		return fmt.Errorf("mutual coupling %s requires at least two inductors", m.Name)
	}
	for i, ind := range m.inductors {
		if ind == nil {
			return fmt.Errorf("mutual coupling %s: inductor %s not linked", m.Name, m.names[i])
		}
	}

	if status.IsReal() {
		return nil
	}

	for i := range m.inductors {
		for j := i + 1; j < len(m.inductors); j++ {
			li, lj := m.inductors[i], m.inductors[j]
			Mij := m.coefficient * math.Sqrt(li.Value*lj.Value) // M = k * sqrt(L1 * L2)
			z := status.S * complex(Mij, 0)

			// V1 = sL1·I1 + sM·I2, V2 = sL2·I2 + sM·I1
			matrix.AddComplexElement(li.BranchIndex(), lj.BranchIndex(), -real(z), -imag(z))
			matrix.AddComplexElement(lj.BranchIndex(), li.BranchIndex(), -real(z), -imag(z))

			if status.InitialConditions && status.Mode == LaplaceAnalysis {
				i0i, _ := li.InitialCondition()
				i0j, _ := lj.InitialCondition()
				addRHS(matrix, status, li.BranchIndex(), complex(-Mij*i0j, 0))
				addRHS(matrix, status, lj.BranchIndex(), complex(-Mij*i0i, 0))
			}
		}
	}

	return nil
}

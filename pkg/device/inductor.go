package device

import (
	"fmt"

	"github.com/edp1096/toy-lti/pkg/matrix"
)

type Inductor struct {
	BaseDevice
	ic        *float64 // pre-initial current i(0⁻)
	branchIdx int      // Branch index
}

var (
	_ Storage      = (*Inductor)(nil)
	_ BranchDevice = (*Inductor)(nil)
)

func NewInductor(name string, nodeNames []string, value float64) *Inductor {
	return &Inductor{BaseDevice: newBaseDevice(name, nodeNames, value)}
}

func (l *Inductor) GetType() string { return "L" }

func (l *Inductor) SetInitialCondition(i0 float64) {
	l.ic = &i0
}

func (l *Inductor) InitialCondition() (float64, ICState) {
	if l.ic == nil {
		return 0, ICUnspecified
	}
	return *l.ic, icState(l.ic)
}

// Stamp writes the branch equation v1 - v2 - sL·i = -L·i0. At DC the
// inductor is a short.
func (l *Inductor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(l.Nodes) != 2 {
		return fmt.Errorf("inductor %s: requires exactly 2 nodes", l.Name)
	}

	n1, n2 := l.Nodes[0], l.Nodes[1]
	bIdx := l.branchIdx

	stampBranch(matrix, status, n1, n2, bIdx)
	if status.IsReal() {
		return nil
	}

	z := status.S * complex(l.Value, 0)
	matrix.AddComplexElement(bIdx, bIdx, -real(z), -imag(z))

	if status.InitialConditions && status.Mode == LaplaceAnalysis {
		i0, _ := l.InitialCondition()
		addRHS(matrix, status, bIdx, complex(-l.Value*i0, 0))
	}

	return nil
}

// BranchIndex getter
func (l *Inductor) BranchIndex() int {
	return l.branchIdx
}

// BranchIndex setter
func (l *Inductor) SetBranchIndex(idx int) {
	l.branchIdx = idx
}

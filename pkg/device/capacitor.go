package device

import (
	"fmt"

	"github.com/edp1096/toy-lti/pkg/matrix"
)

type Capacitor struct {
	BaseDevice
	ic *float64 // pre-initial voltage v(0⁻)
}

var _ Storage = (*Capacitor)(nil)

func NewCapacitor(name string, nodeNames []string, value float64) *Capacitor {
	return &Capacitor{BaseDevice: newBaseDevice(name, nodeNames, value)}
}

func (c *Capacitor) GetType() string { return "C" }

// SetInitialCondition declares v(0⁻); an explicit zero is distinct from
// no declaration.
func (c *Capacitor) SetInitialCondition(v0 float64) {
	c.ic = &v0
}

func (c *Capacitor) InitialCondition() (float64, ICState) {
	if c.ic == nil {
		return 0, ICUnspecified
	}
	return *c.ic, icState(c.ic)
}

// Stamp models the capacitor as Y = sC in parallel with a current source
// C·v0 in IVP mode. At DC it is an open circuit.
func (c *Capacitor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(c.Nodes) != 2 {
		return fmt.Errorf("capacitor %s: requires exactly 2 nodes", c.Name)
	}

	if status.IsReal() {
		return nil
	}

	n1, n2 := c.Nodes[0], c.Nodes[1]
	stampAdmittance(matrix, status, n1, n2, status.S*complex(c.Value, 0))

	if status.InitialConditions && status.Mode == LaplaceAnalysis {
		v0, _ := c.InitialCondition()
		ieq := complex(c.Value*v0, 0)
		addRHS(matrix, status, n1, ieq)
		addRHS(matrix, status, n2, -ieq)
	}

	return nil
}

// Current returns the current from n1 to n2 through the capacitor for the
// branch voltage vd.
func (c *Capacitor) Current(vd complex128, status *CircuitStatus) complex128 {
	if status.IsReal() {
		return 0
	}
	i := status.S * complex(c.Value, 0) * vd
	if status.InitialConditions && status.Mode == LaplaceAnalysis {
		v0, _ := c.InitialCondition()
		i -= complex(c.Value*v0, 0)
	}
	return i
}

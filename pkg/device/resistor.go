package device

import (
	"fmt"

	"github.com/edp1096/toy-lti/internal/consts"
	"github.com/edp1096/toy-lti/pkg/matrix"
)

type Resistor struct {
	BaseDevice
	Tc1  float64
	Tc2  float64
	Tnom float64
}

func NewResistor(name string, nodeNames []string, value float64) *Resistor {
	return &Resistor{
		BaseDevice: newBaseDevice(name, nodeNames, value),
		Tc1:        0.0,
		Tc2:        0.0,
		Tnom:       consts.TNOM,
	}
}

func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(r.Nodes) != 2 {
		return fmt.Errorf("resistor %s: requires exactly 2 nodes", r.Name)
	}
	if r.Value == 0 {
		return fmt.Errorf("resistor %s: zero resistance", r.Name)
	}

	n1, n2 := r.Nodes[0], r.Nodes[1]
	stampAdmittance(matrix, status, n1, n2, complex(r.Conductance(status.Temp), 0))
	return nil
}

// Conductance returns G = 1/R at temp (K).
func (r *Resistor) Conductance(temp float64) float64 {
	return 1.0 / r.temperatureAdjustedValue(temp)
}

func (r *Resistor) temperatureAdjustedValue(temp float64) float64 {
	if temp == 0 {
		temp = r.Tnom
	}
	dt := temp - r.Tnom
	factor := 1.0 + r.Tc1*dt + r.Tc2*dt*dt
	return r.Value * factor
}

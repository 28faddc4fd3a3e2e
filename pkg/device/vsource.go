package device

import (
	"fmt"

	"github.com/edp1096/toy-lti/pkg/matrix"
)

type VoltageSource struct {
	BaseDevice
	parts []Waveform
	// Branch index for MNA
	branchIdx int
}

var _ Source = (*VoltageSource)(nil)

func NewVoltageSource(name string, nodeNames []string, parts ...Waveform) *VoltageSource {
	return &VoltageSource{
		BaseDevice: newBaseDevice(name, nodeNames, dcValue(parts)),
		parts:      parts,
	}
}

func NewDCVoltageSource(name string, nodeNames []string, value float64) *VoltageSource {
	return NewVoltageSource(name, nodeNames, DC(value))
}

func (v *VoltageSource) GetType() string { return "V" }

func (v *VoltageSource) Parts() []Waveform { return v.parts }

func (v *VoltageSource) WithParts(parts []Waveform) Source {
	c := *v
	c.parts = parts
	return &c
}

// Stamp kills the source to a short when it has no parts.
func (v *VoltageSource) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(v.Nodes) != 2 {
		return fmt.Errorf("voltage source %s: requires exactly 2 nodes", v.Name)
	}

	n1, n2 := v.Nodes[0], v.Nodes[1]
	bIdx := v.branchIdx

	// v1 - v2 = V
	stampBranch(matrix, status, n1, n2, bIdx)
	addRHS(matrix, status, bIdx, sourceValue(v.parts, status))
	return nil
}

func (v *VoltageSource) BranchIndex() int {
	return v.branchIdx
}

func (v *VoltageSource) SetBranchIndex(idx int) {
	v.branchIdx = idx
}

func dcValue(parts []Waveform) float64 {
	var sum float64
	for _, p := range parts {
		if p.Kind == WaveDC {
			sum += p.Value
		}
	}
	return sum
}

package device

import (
	"fmt"

	"github.com/edp1096/toy-lti/pkg/matrix"
)

type CurrentSource struct {
	BaseDevice
	parts []Waveform
}

var _ Source = (*CurrentSource)(nil)

func NewCurrentSource(name string, nodeNames []string, parts ...Waveform) *CurrentSource {
	return &CurrentSource{
		BaseDevice: newBaseDevice(name, nodeNames, dcValue(parts)),
		parts:      parts,
	}
}

func NewDCCurrentSource(name string, nodeNames []string, value float64) *CurrentSource {
	return NewCurrentSource(name, nodeNames, DC(value))
}

func (i *CurrentSource) GetType() string { return "I" }

func (i *CurrentSource) Parts() []Waveform { return i.parts }

func (i *CurrentSource) WithParts(parts []Waveform) Source {
	c := *i
	c.parts = parts
	return &c
}

// Stamp leaves the source open when it has no parts.
func (i *CurrentSource) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(i.Nodes) != 2 {
		return fmt.Errorf("current source %s: requires exactly 2 nodes", i.Name)
	}

	n1, n2 := i.Nodes[0], i.Nodes[1]
	current := sourceValue(i.parts, status)

	// By KCL, current flows into n1 and out of n2
	addRHS(matrix, status, n1, current)
	addRHS(matrix, status, n2, -current)

	return nil
}

package netlist

import (
	"fmt"

	"github.com/edp1096/toy-lti/internal/consts"
	"github.com/edp1096/toy-lti/pkg/circuit"
	"github.com/edp1096/toy-lti/pkg/device"
)

func CreateDevice(elem Element) (device.Device, error) {
	switch elem.Type {
	case "R":
		if elem.Value == 0 {
			return nil, fmt.Errorf("resistor %s has zero resistance", elem.Name)
		}
		r := device.NewResistor(elem.Name, elem.Nodes, elem.Value)
		for name, dst := range map[string]*float64{"tc1": &r.Tc1, "tc2": &r.Tc2, "tnom": &r.Tnom} {
			raw, ok := elem.Params[name]
			if !ok {
				continue
			}
			v, err := ParseValue(raw)
			if err != nil {
				return nil, fmt.Errorf("resistor %s: invalid %s: %w", elem.Name, name, err)
			}
			*dst = v
		}
		if _, ok := elem.Params["tnom"]; ok {
			r.Tnom += consts.KELVIN
		}
		return r, nil

	case "L":
		l := device.NewInductor(elem.Name, elem.Nodes, elem.Value)
		if elem.IC != nil {
			l.SetInitialCondition(*elem.IC)
		}
		return l, nil

	case "C":
		c := device.NewCapacitor(elem.Name, elem.Nodes, elem.Value)
		if elem.IC != nil {
			c.SetInitialCondition(*elem.IC)
		}
		return c, nil

	case "K":
		return device.NewMutual(elem.Name, elem.Inductors, elem.Value), nil

	case "E":
		return device.NewVCVS(elem.Name, elem.Nodes, elem.Value), nil

	case "G":
		return device.NewVCCS(elem.Name, elem.Nodes, elem.Value), nil

	case "F":
		return device.NewCCCS(elem.Name, elem.Nodes, elem.Control, elem.Value), nil

	case "H":
		return device.NewCCVS(elem.Name, elem.Nodes, elem.Control, elem.Value), nil

	case "V":
		return device.NewVoltageSource(elem.Name, elem.Nodes, elem.Waveforms...), nil

	case "I":
		return device.NewCurrentSource(elem.Name, elem.Nodes, elem.Waveforms...), nil
	}
	return nil, fmt.Errorf("unsupported device type: %s", elem.Type)
}

// Build creates the circuit described by data and numbers its unknowns.
// With .noisy every resistor gains a thermal noise source.
func Build(data *NetlistData) (*circuit.Circuit, error) {
	ckt := circuit.New(data.Title)
	if data.Temp > 0 {
		ckt.Temp = data.Temp
	}
	ckt.AssumeRest = data.AssumeRest

	for _, elem := range data.Elements {
		dev, err := CreateDevice(elem)
		if err != nil {
			return nil, err
		}
		if err := ckt.Add(dev); err != nil {
			return nil, err
		}
	}

	if err := ckt.AssignNodeBranchMaps(); err != nil {
		return nil, err
	}

	if data.Noisy {
		return circuit.Noisy(ckt, data.NoisyTemp)
	}
	return ckt, nil
}

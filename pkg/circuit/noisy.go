package circuit

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-lti/internal/consts"
	"github.com/edp1096/toy-lti/pkg/device"
)

// Noisy returns a copy of c in which every resistor R is followed by a
// series thermal noise voltage source of density sqrt(4kTR), each with its
// own noise identifier. temp is in kelvin; zero uses c.Temp.
func Noisy(c *Circuit, temp float64) (*Circuit, error) {
	if temp <= 0 {
		temp = c.Temp
	}

	n := New(c.name)
	n.Temp = temp
	n.AssumeRest = c.AssumeRest

	for _, dev := range c.devices {
		names := append([]string(nil), dev.GetNodeNames()...)

		var devs []device.Device
		switch d := dev.(type) {
		case *device.Resistor:
			mid := d.Name + "#n"
			r := device.NewResistor(d.Name, []string{names[0], mid}, d.Value)
			r.Tc1, r.Tc2, r.Tnom = d.Tc1, d.Tc2, d.Tnom

			density := math.Sqrt(4 * consts.BOLTZMANN * temp / r.Conductance(temp))
			vn := device.NewVoltageSource("Vn"+d.Name, []string{mid, names[1]}, device.WhiteNoise(density, ""))
			devs = append(devs, r, vn)

		case *device.Capacitor:
			cc := device.NewCapacitor(d.Name, names, d.Value)
			if v0, st := d.InitialCondition(); st != device.ICUnspecified {
				cc.SetInitialCondition(v0)
			}
			devs = append(devs, cc)

		case *device.Inductor:
			l := device.NewInductor(d.Name, names, d.Value)
			if i0, st := d.InitialCondition(); st != device.ICUnspecified {
				l.SetInitialCondition(i0)
			}
			devs = append(devs, l)

		case *device.Mutual:
			devs = append(devs, device.NewMutual(d.Name, d.GetInductorNames(), d.GetCoefficient()))

		case *device.VoltageSource:
			devs = append(devs, device.NewVoltageSource(d.Name, names, d.Parts()...))

		case *device.CurrentSource:
			devs = append(devs, device.NewCurrentSource(d.Name, names, d.Parts()...))

		case *device.VCVS:
			devs = append(devs, device.NewVCVS(d.Name, names, d.Gain()))

		case *device.VCCS:
			devs = append(devs, device.NewVCCS(d.Name, names, d.Gain()))

		case *device.CCCS:
			devs = append(devs, device.NewCCCS(d.Name, names, d.ControlName(), d.Gain()))

		case *device.CCVS:
			devs = append(devs, device.NewCCVS(d.Name, names, d.ControlName(), d.Gain()))

		default:
			return nil, fmt.Errorf("noisy: unsupported device %s (%s)", dev.GetName(), dev.GetType())
		}

		if err := n.Add(devs...); err != nil {
			return nil, err
		}
	}

	if err := n.AssignNodeBranchMaps(); err != nil {
		return nil, err
	}
	return n, nil
}

package circuit

import (
	"fmt"
	"sort"

	"github.com/edp1096/toy-lti/internal/consts"
	"github.com/edp1096/toy-lti/pkg/device"
	"github.com/edp1096/toy-lti/pkg/matrix"
)

// Circuit is an LTI network. After AssignNodeBranchMaps it is read-only;
// Reduce and Noisy return new circuits.
type Circuit struct {
	name      string
	nodeMap   map[string]int
	branchMap map[string]int
	devices   []device.Device
	numNodes  int
	Temp      float64
	// AssumeRest asserts that every source is causal and the network starts
	// from a zero state.
	AssumeRest bool
}

func New(name string) *Circuit {
	return &Circuit{
		name:      name,
		nodeMap:   make(map[string]int),
		branchMap: make(map[string]int),
		devices:   make([]device.Device, 0),
		Temp:      consts.TNOM,
	}
}

func isGround(node string) bool {
	return node == "0" || node == "gnd" || node == "GND"
}

// Add appends a device; names must be unique.
func (c *Circuit) Add(devs ...device.Device) error {
	for _, dev := range devs {
		if c.Device(dev.GetName()) != nil {
			return fmt.Errorf("duplicate device name %s", dev.GetName())
		}
		c.devices = append(c.devices, dev)
	}
	return nil
}

// AssignNodeBranchMaps numbers nodes from 1 in order of appearance, then
// appends one branch unknown per voltage source, inductor and controlled
// voltage source, and links mutual couplings and current-controlled sources
// to the elements they sense.
func (c *Circuit) AssignNodeBranchMaps() error {
	c.nodeMap = make(map[string]int)
	c.branchMap = make(map[string]int)

	for _, dev := range c.devices {
		for _, nodeName := range dev.GetNodeNames() {
			if isGround(nodeName) {
				continue
			}
			if _, exists := c.nodeMap[nodeName]; !exists {
				c.nodeMap[nodeName] = len(c.nodeMap) + 1
			}
		}
	}
	c.numNodes = len(c.nodeMap)

	branchStart := c.numNodes + 1
	for _, dev := range c.devices {
		if b, ok := dev.(device.BranchDevice); ok {
			c.branchMap[dev.GetName()] = branchStart
			b.SetBranchIndex(branchStart)
			branchStart++
		}
	}

	for _, dev := range c.devices {
		nodeIndices := make([]int, len(dev.GetNodeNames()))
		for i, nodeName := range dev.GetNodeNames() {
			if isGround(nodeName) {
				continue
			}
			nodeIndices[i] = c.nodeMap[nodeName]
		}
		dev.SetNodes(nodeIndices)

		if k, ok := dev.(*device.Mutual); ok {
			for i, name := range k.GetInductorNames() {
				ind, ok := c.Device(name).(*device.Inductor)
				if !ok {
					return fmt.Errorf("mutual coupling %s: %s is not an inductor", k.GetName(), name)
				}
				if err := k.SetInductor(i, ind); err != nil {
					return err
				}
			}
		}

		if cc, ok := dev.(device.CurrentControlled); ok {
			ctrl, ok := c.Device(cc.ControlName()).(device.BranchDevice)
			if !ok {
				return fmt.Errorf("%s: controlling element %s carries no branch current", cc.GetName(), cc.ControlName())
			}
			cc.SetControl(ctrl)
		}
	}

	if c.numNodes == 0 {
		return fmt.Errorf("circuit %s has no non-ground nodes", c.name)
	}
	return nil
}

// Size is the number of MNA unknowns.
func (c *Circuit) Size() int {
	return len(c.nodeMap) + len(c.branchMap)
}

func (c *Circuit) Stamp(m matrix.DeviceMatrix, status *device.CircuitStatus) error {
	for _, dev := range c.devices {
		if err := dev.Stamp(m, status); err != nil {
			return fmt.Errorf("stamping device %s: %w", dev.GetName(), err)
		}
	}
	return nil
}

func (c *Circuit) Name() string {
	return c.name
}

func (c *Circuit) GetNumNodes() int {
	return c.numNodes
}

func (c *Circuit) GetNodeMap() map[string]int {
	return c.nodeMap
}

func (c *Circuit) GetBranchMap() map[string]int {
	return c.branchMap
}

func (c *Circuit) GetDevices() []device.Device {
	return c.devices
}

// Device returns the named device or nil.
func (c *Circuit) Device(name string) device.Device {
	for _, dev := range c.devices {
		if dev.GetName() == name {
			return dev
		}
	}
	return nil
}

// NodeNames returns the non-ground node names sorted by index.
func (c *Circuit) NodeNames() []string {
	names := make([]string, 0, len(c.nodeMap))
	for name := range c.nodeMap {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return c.nodeMap[names[i]] < c.nodeMap[names[j]] })
	return names
}

// Sources returns the independent sources in declaration order.
func (c *Circuit) Sources() []device.Source {
	var srcs []device.Source
	for _, dev := range c.devices {
		if s, ok := dev.(device.Source); ok {
			srcs = append(srcs, s)
		}
	}
	return srcs
}

// StorageElements returns the capacitors and inductors.
func (c *Circuit) StorageElements() []device.Storage {
	var st []device.Storage
	for _, dev := range c.devices {
		if s, ok := dev.(device.Storage); ok {
			st = append(st, s)
		}
	}
	return st
}

// Quantities returns every node voltage followed by every element current.
func (c *Circuit) Quantities() []Quantity {
	qs := make([]Quantity, 0, len(c.nodeMap)+len(c.devices))
	for _, name := range c.NodeNames() {
		qs = append(qs, V(name))
	}
	for _, dev := range c.devices {
		if dev.GetType() == "K" {
			continue
		}
		qs = append(qs, I(dev.GetName()))
	}
	return qs
}

// HasQuantity reports whether q names a node or a two-terminal element.
func (c *Circuit) HasQuantity(q Quantity) bool {
	if q.Kind == NodeVoltage {
		_, ok := c.nodeMap[q.Name]
		return ok || isGround(q.Name)
	}
	dev := c.Device(q.Name)
	return dev != nil && dev.GetType() != "K"
}

// Reduce returns a copy of the circuit in which each independent source
// keeps only the parts for which keep returns true. Other devices, including
// controlled sources, are shared and stay active.
func (c *Circuit) Reduce(keep func(src string, index int, w device.Waveform) bool) *Circuit {
	r := *c
	r.devices = make([]device.Device, len(c.devices))
	for i, dev := range c.devices {
		s, ok := dev.(device.Source)
		if !ok {
			r.devices[i] = dev
			continue
		}
		var parts []device.Waveform
		for j, w := range s.Parts() {
			if keep(s.GetName(), j, w) {
				parts = append(parts, w)
			}
		}
		r.devices[i] = s.WithParts(parts)
	}
	return &r
}

// FloatingNodes returns the nodes with no DC path to ground. Resistors,
// inductors and voltage sources, controlled ones included, conduct at DC;
// capacitors, current sources and controlling terminals do not.
func (c *Circuit) FloatingNodes() []string {
	parent := make([]int, c.numNodes+1)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for _, dev := range c.devices {
		switch dev.GetType() {
		case "R", "L", "V", "E", "H":
			nodes := dev.GetNodes()
			a, b := find(nodes[0]), find(nodes[1])
			if a != b {
				parent[a] = b
			}
		}
	}

	var floating []string
	ground := find(0)
	for _, name := range c.NodeNames() {
		if find(c.nodeMap[name]) != ground {
			floating = append(floating, name)
		}
	}
	return floating
}

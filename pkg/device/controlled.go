package device

import (
	"fmt"

	"github.com/edp1096/toy-lti/pkg/matrix"
)

// Controlled is a linear dependent source. Its gain is frequency
// independent and it stays active in every source bucket: only independent
// sources are killed by decomposition.
type Controlled interface {
	Device
	Gain() float64
}

// CurrentControlled is a dependent source sensing the branch current of
// another element. The controlling element is linked by name when the
// circuit numbers its unknowns.
type CurrentControlled interface {
	Controlled
	ControlName() string
	SetControl(ctrl BranchDevice)
}

var (
	_ BranchDevice      = (*VCVS)(nil)
	_ BranchDevice      = (*CCVS)(nil)
	_ CurrentControlled = (*CCCS)(nil)
	_ CurrentControlled = (*CCVS)(nil)
	_ Controlled        = (*VCCS)(nil)
)

// addElement stamps a real coefficient, skipping ground rows and columns.
func addElement(m matrix.DeviceMatrix, status *CircuitStatus, i, j int, v float64) {
	if i == 0 || j == 0 {
		return
	}
	if status.IsReal() {
		m.AddElement(i, j, v)
		return
	}
	m.AddComplexElement(i, j, v, 0)
}

// VCVS is a voltage-controlled voltage source (E):
// v(n+) - v(n-) = gain·(v(nc+) - v(nc-)).
type VCVS struct {
	BaseDevice
	branchIdx int
}

// NewVCVS takes the nodes n+ n- nc+ nc-.
func NewVCVS(name string, nodeNames []string, gain float64) *VCVS {
	return &VCVS{BaseDevice: newBaseDevice(name, nodeNames, gain)}
}

func (e *VCVS) GetType() string { return "E" }

func (e *VCVS) Gain() float64 { return e.Value }

func (e *VCVS) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(e.Nodes) != 4 {
		return fmt.Errorf("vcvs %s: requires exactly 4 nodes", e.Name)
	}

	n1, n2, nc1, nc2 := e.Nodes[0], e.Nodes[1], e.Nodes[2], e.Nodes[3]
	stampBranch(matrix, status, n1, n2, e.branchIdx)
	addElement(matrix, status, e.branchIdx, nc1, -e.Value)
	addElement(matrix, status, e.branchIdx, nc2, e.Value)
	return nil
}

func (e *VCVS) BranchIndex() int       { return e.branchIdx }
func (e *VCVS) SetBranchIndex(idx int) { e.branchIdx = idx }

// VCCS is a voltage-controlled current source (G). The current
// gain·(v(nc+) - v(nc-)) flows from n+ through the source to n-.
type VCCS struct {
	BaseDevice
}

// NewVCCS takes the nodes n+ n- nc+ nc-.
func NewVCCS(name string, nodeNames []string, transconductance float64) *VCCS {
	return &VCCS{BaseDevice: newBaseDevice(name, nodeNames, transconductance)}
}

func (g *VCCS) GetType() string { return "G" }

func (g *VCCS) Gain() float64 { return g.Value }

func (g *VCCS) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(g.Nodes) != 4 {
		return fmt.Errorf("vccs %s: requires exactly 4 nodes", g.Name)
	}

	n1, n2, nc1, nc2 := g.Nodes[0], g.Nodes[1], g.Nodes[2], g.Nodes[3]
	addElement(matrix, status, n1, nc1, g.Value)
	addElement(matrix, status, n1, nc2, -g.Value)
	addElement(matrix, status, n2, nc1, -g.Value)
	addElement(matrix, status, n2, nc2, g.Value)
	return nil
}

// Current returns the source current for the control voltage vc.
func (g *VCCS) Current(vc complex128) complex128 {
	return complex(g.Value, 0) * vc
}

// CCCS is a current-controlled current source (F). The current
// gain·i(ctrl) flows from n+ through the source to n-.
type CCCS struct {
	BaseDevice
	control string
	ctrl    BranchDevice
}

func NewCCCS(name string, nodeNames []string, control string, gain float64) *CCCS {
	return &CCCS{BaseDevice: newBaseDevice(name, nodeNames, gain), control: control}
}

func (f *CCCS) GetType() string { return "F" }

func (f *CCCS) Gain() float64 { return f.Value }

func (f *CCCS) ControlName() string { return f.control }

func (f *CCCS) SetControl(ctrl BranchDevice) { f.ctrl = ctrl }

// ControlBranch is the unknown index of the controlling current.
func (f *CCCS) ControlBranch() int {
	if f.ctrl == nil {
		return 0
	}
	return f.ctrl.BranchIndex()
}

func (f *CCCS) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(f.Nodes) != 2 {
		return fmt.Errorf("cccs %s: requires exactly 2 nodes", f.Name)
	}
	if f.ctrl == nil {
		return fmt.Errorf("cccs %s: controlling element %s not linked", f.Name, f.control)
	}

	bc := f.ctrl.BranchIndex()
	addElement(matrix, status, f.Nodes[0], bc, f.Value)
	addElement(matrix, status, f.Nodes[1], bc, -f.Value)
	return nil
}

// CCVS is a current-controlled voltage source (H):
// v(n+) - v(n-) = gain·i(ctrl).
type CCVS struct {
	BaseDevice
	control   string
	ctrl      BranchDevice
	branchIdx int
}

func NewCCVS(name string, nodeNames []string, control string, transresistance float64) *CCVS {
	return &CCVS{BaseDevice: newBaseDevice(name, nodeNames, transresistance), control: control}
}

func (h *CCVS) GetType() string { return "H" }

func (h *CCVS) Gain() float64 { return h.Value }

func (h *CCVS) ControlName() string { return h.control }

func (h *CCVS) SetControl(ctrl BranchDevice) { h.ctrl = ctrl }

func (h *CCVS) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(h.Nodes) != 2 {
		return fmt.Errorf("ccvs %s: requires exactly 2 nodes", h.Name)
	}
	if h.ctrl == nil {
		return fmt.Errorf("ccvs %s: controlling element %s not linked", h.Name, h.control)
	}

	stampBranch(matrix, status, h.Nodes[0], h.Nodes[1], h.branchIdx)
	addElement(matrix, status, h.branchIdx, h.ctrl.BranchIndex(), -h.Value)
	return nil
}

func (h *CCVS) BranchIndex() int       { return h.branchIdx }
func (h *CCVS) SetBranchIndex(idx int) { h.branchIdx = idx }

package matrix

import (
	"fmt"
	"io"

	"github.com/edp1096/sparse"
)

type CircuitMatrix struct {
	Size         int
	matrix       *sparse.Matrix
	rhs          []float64
	rhsImag      []float64
	solution     []float64
	solutionImag []float64
	config       *sparse.Configuration
	err          error // first out-of-bounds access
}

var _ DeviceMatrix = (*CircuitMatrix)(nil)

func NewMatrix(size int, isComplex bool) (*CircuitMatrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("matrix size must be positive, got %d", size)
	}

	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 isComplex,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}

	vectorSize := size + 1 // rhs, solution size
	if isComplex {
		vectorSize *= 2 // interleaved real, imag
	}

	return &CircuitMatrix{
		Size:     size,
		matrix:   mat,
		rhs:      make([]float64, vectorSize), // 1-based indexing
		rhsImag:  make([]float64, 1),
		solution: make([]float64, vectorSize),
		config:   config,
	}, nil
}

func (m *CircuitMatrix) IsComplex() bool {
	return m.config.Complex
}

// SetupElements allocates every element so that the structure does not
// change between stamps.
func (m *CircuitMatrix) SetupElements() {
	for i := 1; i <= m.Size; i++ {
		for j := 1; j <= m.Size; j++ {
			m.matrix.GetElement(int64(i), int64(j))
		}
	}
}

func (m *CircuitMatrix) outOfBounds(i, j int) bool {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		if m.err == nil {
			m.err = fmt.Errorf("matrix index out of bounds (i=%d, j=%d, size=%d)", i, j, m.Size)
		}
		return true
	}
	return false
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) {
	if m.outOfBounds(i, j) {
		return
	}
	m.matrix.GetElement(int64(i), int64(j)).Real += value
}

func (m *CircuitMatrix) AddComplexElement(i, j int, real, imag float64) {
	if m.outOfBounds(i, j) {
		return
	}

	element := m.matrix.GetElement(int64(i), int64(j))
	element.Real += real
	element.Imag += imag
}

func (m *CircuitMatrix) AddComplexRHS(i int, real, imag float64) {
	if m.outOfBounds(i, 1) {
		return
	}

	if !m.config.Complex {
		m.rhs[i] += real
		return
	}
	m.rhs[2*i] += real
	m.rhs[2*i+1] += imag
}

func (m *CircuitMatrix) AddRHS(i int, value float64) {
	if m.outOfBounds(i, 1) {
		return
	}
	if m.config.Complex {
		m.rhs[2*i] += value
		return
	}
	m.rhs[i] += value
}

func (m *CircuitMatrix) Clear() {
	m.matrix.Clear()
	for i := range m.rhs {
		m.rhs[i] = 0
	}
	m.err = nil
}

func (m *CircuitMatrix) Solve() error {
	if m.err != nil {
		return m.err
	}

	if err := m.matrix.Factor(); err != nil {
		return fmt.Errorf("matrix factorization failed: %w", err)
	}

	var err error
	if m.config.Complex {
		m.solution, m.solutionImag, err = m.matrix.SolveComplex(m.rhs, m.rhsImag)
	} else {
		m.solution, err = m.matrix.Solve(m.rhs)
	}
	if err != nil {
		return fmt.Errorf("matrix solve failed: %w", err)
	}

	return nil
}

// Solution returns the real solution vector, 1-based.
func (m *CircuitMatrix) Solution() []float64 {
	return m.solution
}

// ComplexSolution returns unknown i; index 0 is ground.
func (m *CircuitMatrix) ComplexSolution(i int) complex128 {
	if i <= 0 || i > m.Size {
		return 0
	}
	if !m.config.Complex {
		return complex(m.solution[i], 0)
	}
	return complex(m.solution[2*i], m.solution[2*i+1])
}

// Dump writes the stamped equations, one row per unknown.
func (m *CircuitMatrix) Dump(w io.Writer) {
	fmt.Fprintf(w, "Circuit Equations (%dx%d):\n", m.Size, m.Size)

	for i := 1; i <= m.Size; i++ {
		fmt.Fprintf(w, "Equation %d:", i)
		for j := 1; j <= m.Size; j++ {
			element := m.matrix.GetElement(int64(i), int64(j))
			switch {
			case element.Real == 0 && element.Imag == 0:
			case element.Imag == 0:
				fmt.Fprintf(w, "  %+g*x%d", element.Real, j)
			default:
				fmt.Fprintf(w, "  (%g + j%g)*x%d", element.Real, element.Imag, j)
			}
		}
		if m.config.Complex {
			fmt.Fprintf(w, " = %g + j%g\n", m.rhs[2*i], m.rhs[2*i+1])
		} else {
			fmt.Fprintf(w, " = %g\n", m.rhs[i])
		}
	}
}

func (m *CircuitMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
	}
}

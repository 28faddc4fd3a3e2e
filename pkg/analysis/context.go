package analysis

import (
	"fmt"
	"sort"

	"github.com/edp1096/toy-lti/pkg/circuit"
	"github.com/edp1096/toy-lti/pkg/device"
)

// Mode is the top-level analysis strategy.
type Mode int

const (
	// ModeInitialValue solves once in the s-domain with pre-initial
	// conditions as forcing terms. Results hold for t >= 0 only.
	ModeInitialValue Mode = iota
	// ModeTimeDomain solves a resistive network directly in time.
	ModeTimeDomain
	// ModeSuperposition solves each source category separately.
	ModeSuperposition
)

func (m Mode) String() string {
	switch m {
	case ModeInitialValue:
		return "initial-value"
	case ModeTimeDomain:
		return "time-domain"
	case ModeSuperposition:
		return "superposition"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// SelectMode picks the analysis strategy. Initial conditions always win.
// hasSDomainOnly is set when some source part has no time-domain
// description, noise included.
func SelectMode(ivp, hasStorage, hasSDomainOnly bool) Mode {
	switch {
	case ivp:
		return ModeInitialValue
	case !hasStorage && !hasSDomainOnly:
		return ModeTimeDomain
	default:
		return ModeSuperposition
	}
}

// Context is the immutable description of one analysis request.
type Context struct {
	mode       Mode
	ivp        bool
	causal     bool
	hasStorage bool
	categories []Category
	noiseIDs   []device.NoiseID
	parts      []Part
}

// NewContext classifies the sources of ckt and selects the analysis mode.
func NewContext(ckt *circuit.Circuit) (*Context, error) {
	sources := ckt.Sources()
	storage := ckt.StorageElements()

	ivp, err := DetectInitialConditions(storage, sources, ckt.AssumeRest)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		ivp:        ivp,
		causal:     true,
		hasStorage: len(storage) > 0,
		parts:      ClassifySources(sources),
	}

	sOnly := false
	seenCat := make(map[Category]bool)
	seenNoise := make(map[device.NoiseID]bool)
	for _, p := range ctx.parts {
		if !p.Waveform.IsCausal() {
			ctx.causal = false
		}
		if !p.Waveform.HasSignal() {
			sOnly = true
		}
		if !seenCat[p.Category] {
			seenCat[p.Category] = true
			ctx.categories = append(ctx.categories, p.Category)
		}
		if p.Category == CategoryNoise && !seenNoise[p.Waveform.Noise] {
			seenNoise[p.Waveform.Noise] = true
			ctx.noiseIDs = append(ctx.noiseIDs, p.Waveform.Noise)
		}
	}
	sort.Slice(ctx.categories, func(i, j int) bool { return ctx.categories[i] < ctx.categories[j] })
	sort.Slice(ctx.noiseIDs, func(i, j int) bool { return ctx.noiseIDs[i] < ctx.noiseIDs[j] })

	ctx.mode = SelectMode(ivp, ctx.hasStorage, sOnly)
	return ctx, nil
}

func (c *Context) Mode() Mode { return c.mode }

// IsInitialValueProblem reports whether a storage element declares a
// non-zero pre-initial condition.
func (c *Context) IsInitialValueProblem() bool { return c.ivp }

// IsCausal reports whether every source part is zero for t < 0.
func (c *Context) IsCausal() bool { return c.causal }

// IsDC reports whether every source part is DC. A circuit without sources
// is not DC.
func (c *Context) IsDC() bool {
	return len(c.categories) == 1 && c.categories[0] == CategoryDC
}

// IsAC reports whether every source part is AC.
func (c *Context) IsAC() bool {
	return len(c.categories) == 1 && c.categories[0] == CategoryAC
}

func (c *Context) HasNoise() bool { return len(c.noiseIDs) > 0 }

func (c *Context) HasStorage() bool { return c.hasStorage }

// Categories returns the distinct categories present, sorted.
func (c *Context) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// NoiseIDs returns the distinct noise identifiers, sorted.
func (c *Context) NoiseIDs() []device.NoiseID {
	return append([]device.NoiseID(nil), c.noiseIDs...)
}

// Parts returns the classified source parts in declaration order.
func (c *Context) Parts() []Part {
	return append([]Part(nil), c.parts...)
}

func (c *Context) hasNoiseID(nid device.NoiseID) bool {
	for _, n := range c.noiseIDs {
		if n == nid {
			return true
		}
	}
	return false
}

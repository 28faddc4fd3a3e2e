package analysis

import (
	"fmt"
	"sort"

	"github.com/edp1096/toy-lti/pkg/device"
	"github.com/edp1096/toy-lti/pkg/expr"
)

// Category is the class of a source part. Parts of different categories
// are solved separately and superposed.
type Category uint8

const (
	CategoryDC Category = iota
	CategoryAC
	CategoryTransient
	CategoryNoise
	CategoryArbitrary
)

func (c Category) String() string {
	switch c {
	case CategoryDC:
		return "dc"
	case CategoryAC:
		return "ac"
	case CategoryTransient:
		return "transient"
	case CategoryNoise:
		return "noise"
	case CategoryArbitrary:
		return "arbitrary"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Classify returns the category of a single waveform part.
func Classify(w device.Waveform) Category {
	switch w.Kind {
	case device.WaveDC:
		return CategoryDC
	case device.WaveAC:
		return CategoryAC
	case device.WaveStep, device.WaveTransient:
		return CategoryTransient
	case device.WaveNoise:
		return CategoryNoise
	default:
		return CategoryArbitrary
	}
}

// PartRef names one part of one source.
type PartRef struct {
	Source string
	Index  int
}

func (r PartRef) String() string {
	return fmt.Sprintf("%s[%d]", r.Source, r.Index)
}

// Part is a classified source part.
type Part struct {
	PartRef
	Waveform device.Waveform
	Category Category
}

// Key returns the partial-response key the part contributes to.
func (p Part) Key() Key {
	k := Key{Category: p.Category}
	switch p.Category {
	case CategoryAC:
		k.Omega = p.Waveform.Omega
	case CategoryNoise:
		k.Noise = p.Waveform.Noise
	}
	return k
}

// Validity is where the part's response is known when it is solved on
// its own from a zero state.
func (p Part) Validity() expr.Validity {
	switch p.Category {
	case CategoryTransient, CategoryArbitrary:
		if p.Waveform.IsCausal() {
			return expr.Causal
		}
		return expr.PostInitial
	default:
		return expr.AllTime
	}
}

// ClassifySources splits every source into its parts and classifies them,
// in source declaration order.
func ClassifySources(srcs []device.Source) []Part {
	var parts []Part
	for _, s := range srcs {
		for i, w := range s.Parts() {
			parts = append(parts, Part{
				PartRef:  PartRef{Source: s.GetName(), Index: i},
				Waveform: w,
				Category: Classify(w),
			})
		}
	}
	return parts
}

// Key identifies one entry of a partial response. AC entries are keyed by
// angular frequency and noise entries by identifier. Initial marks the
// single solve of an initial-value problem.
type Key struct {
	Category Category
	Omega    float64
	Noise    device.NoiseID
	Initial  bool
}

func (k Key) String() string {
	switch {
	case k.Initial:
		return "ivp"
	case k.Category == CategoryAC:
		return fmt.Sprintf("ac(ω=%g)", k.Omega)
	case k.Category == CategoryNoise:
		return fmt.Sprintf("noise(%s)", k.Noise)
	default:
		return k.Category.String()
	}
}

// IsNoise reports whether the entry is a noise component.
func (k Key) IsNoise() bool {
	return !k.Initial && k.Category == CategoryNoise
}

// less is the canonical key order: initial-value entry first, then by
// category, angular frequency and noise identifier.
func (k Key) less(o Key) bool {
	if k.Initial != o.Initial {
		return k.Initial
	}
	if k.Category != o.Category {
		return k.Category < o.Category
	}
	if k.Omega != o.Omega {
		return k.Omega < o.Omega
	}
	return k.Noise < o.Noise
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })
}

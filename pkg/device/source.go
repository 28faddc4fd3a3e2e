package device

// Source is an independent voltage or current source. Its excitation is the
// sum of its waveform parts.
type Source interface {
	Device
	Parts() []Waveform
	// WithParts returns a copy of the source driven by parts only. A source
	// with no parts is killed.
	WithParts(parts []Waveform) Source
}

// IsCausal reports whether every part of s is zero for t < 0.
func IsCausal(s Source) bool {
	for _, p := range s.Parts() {
		if !p.IsCausal() {
			return false
		}
	}
	return true
}

func sourceValue(parts []Waveform, status *CircuitStatus) complex128 {
	if status.Mode == GainAnalysis {
		if len(parts) > 0 {
			return 1
		}
		return 0
	}

	var v complex128
	for _, p := range parts {
		v += p.ValueIn(status)
	}
	return v
}

// SourceValue returns the value s stamps in the mode described by status.
func SourceValue(s Source, status *CircuitStatus) complex128 {
	return sourceValue(s.Parts(), status)
}

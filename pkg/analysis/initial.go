package analysis

import (
	"fmt"

	"github.com/edp1096/toy-lti/pkg/device"
)

// DetectInitialConditions reports whether any storage element declares a
// non-zero pre-initial condition. Unspecified and explicitly zero
// conditions do not count. When assumeRest is set the network is asserted
// to start from rest with causal sources only, and any non-zero condition or
// non-causal source is an *InconsistentInitialConditionError.
func DetectInitialConditions(storage []device.Storage, sources []device.Source, assumeRest bool) (bool, error) {
	ivp := false
	for _, s := range storage {
		v, state := s.InitialCondition()
		if state != device.ICNonZero {
			continue
		}
		if assumeRest {
			return false, &InconsistentInitialConditionError{
				Element: s.GetName(),
				Reason:  fmt.Sprintf("initial condition %g declared on a network asserted at rest", v),
			}
		}
		ivp = true
	}

	if assumeRest {
		for _, src := range sources {
			if !device.IsCausal(src) {
				return false, &InconsistentInitialConditionError{
					Source: src.GetName(),
					Reason: "source is not zero for t < 0 on a network asserted at rest",
				}
			}
		}
	}
	return ivp, nil
}

// allExplicit reports whether every storage element declares an initial
// condition, zero or not.
func allExplicit(storage []device.Storage) bool {
	for _, s := range storage {
		if _, state := s.InitialCondition(); state == device.ICUnspecified {
			return false
		}
	}
	return true
}

package analysis

import (
	"fmt"

	"github.com/edp1096/toy-lti/pkg/circuit"
	"github.com/edp1096/toy-lti/pkg/device"
	"github.com/edp1096/toy-lti/pkg/expr"
)

// Bucket is one reduced problem: the circuit with every source part outside
// the bucket zeroed, and the domain it is solved in.
type Bucket struct {
	Key      Key
	Circuit  *circuit.Circuit
	Domain   circuit.Domain
	Validity expr.Validity
	Parts    []PartRef
	// Source is set on the unit-gain buckets of a time-domain analysis.
	Source string
}

func (b Bucket) String() string {
	if b.Source != "" {
		return "gain(" + b.Source + ")"
	}
	return b.Key.String()
}

// domainOf returns the solve domain for a key.
func domainOf(k Key) circuit.Domain {
	switch k.Category {
	case CategoryDC:
		return circuit.Domain{Kind: circuit.DomainDC}
	case CategoryAC:
		return circuit.Domain{Kind: circuit.DomainPhasor, Omega: k.Omega}
	case CategoryNoise:
		return circuit.Domain{Kind: circuit.DomainNoise, Noise: k.Noise}
	default:
		return circuit.Domain{Kind: circuit.DomainLaplace}
	}
}

// Decompose groups parts into one bucket per key: one per category, AC
// split by angular frequency and noise by identifier. Buckets are in
// canonical key order. Voltage sources left with no part are shorts and
// current sources opens.
func Decompose(ckt *circuit.Circuit, parts []Part) ([]Bucket, error) {
	groups := make(map[Key][]Part)
	var keys []Key
	for _, p := range parts {
		k := p.Key()
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], p)
	}
	sortKeys(keys)

	buckets := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		members := groups[k]
		active := make(map[PartRef]bool, len(members))
		validity := expr.AllTime
		refs := make([]PartRef, 0, len(members))
		for _, p := range members {
			active[p.PartRef] = true
			validity = validity.Join(p.Validity())
			refs = append(refs, p.PartRef)
		}

		buckets = append(buckets, Bucket{
			Key: k,
			Circuit: ckt.Reduce(func(src string, i int, _ device.Waveform) bool {
				return active[PartRef{Source: src, Index: i}]
			}),
			Domain:   domainOf(k),
			Validity: validity,
			Parts:    refs,
		})
	}

	if err := checkPartition(parts, buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// checkPartition verifies that every part is in exactly one bucket.
func checkPartition(parts []Part, buckets []Bucket) error {
	seen := make(map[PartRef]int, len(parts))
	for _, b := range buckets {
		for _, ref := range b.Parts {
			seen[ref]++
		}
	}
	for _, p := range parts {
		switch n := seen[p.PartRef]; n {
		case 1:
			delete(seen, p.PartRef)
		case 0:
			return fmt.Errorf("%w: %s is in no bucket", ErrPartitionBroken, p.PartRef)
		default:
			return fmt.Errorf("%w: %s is in %d buckets", ErrPartitionBroken, p.PartRef, n)
		}
	}
	for ref := range seen {
		return fmt.Errorf("%w: unknown part %s", ErrPartitionBroken, ref)
	}
	return nil
}

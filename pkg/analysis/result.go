package analysis

import (
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/edp1096/toy-lti/pkg/circuit"
	"github.com/edp1096/toy-lti/pkg/device"
	"github.com/edp1096/toy-lti/pkg/expr"
)

// PartialResponse holds the contributions to one quantity, one per key.
// A missing key is the zero expression.
type PartialResponse map[Key]expr.Expr

// CircuitResult holds the partial response of several quantities.
type CircuitResult map[circuit.Quantity]PartialResponse

// Keys returns the keys in canonical order.
func (p PartialResponse) Keys() []Key {
	keys := make([]Key, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// Get returns the entry for k, zero if absent.
func (p PartialResponse) Get(k Key) expr.Expr {
	if e, ok := p[k]; ok {
		return e
	}
	return expr.Zero()
}

// Merge combines a and b entry-wise over the union of their keys; a key
// missing on either side is the zero expression.
func Merge(a, b PartialResponse, op func(x, y expr.Expr) (expr.Expr, error)) (PartialResponse, error) {
	out := make(PartialResponse, len(a)+len(b))
	union := make(PartialResponse, len(a)+len(b))
	for k := range a {
		union[k] = expr.Zero()
	}
	for k := range b {
		union[k] = expr.Zero()
	}
	for _, k := range union.Keys() {
		e, err := op(a.Get(k), b.Get(k))
		if err != nil {
			return nil, fmt.Errorf("merging %s: %w", k, err)
		}
		out[k] = e
	}
	return out, nil
}

func (p PartialResponse) Add(o PartialResponse) (PartialResponse, error) {
	return Merge(p, o, expr.Add)
}

func (p PartialResponse) Sub(o PartialResponse) (PartialResponse, error) {
	return Merge(p, o, expr.Sub)
}

// Restrict returns the entries whose key satisfies keep.
func (p PartialResponse) Restrict(keep func(Key) bool) PartialResponse {
	out := make(PartialResponse)
	for k, e := range p {
		if keep(k) {
			out[k] = e
		}
	}
	return out
}

// RestrictNoise keeps only the noise components of the given identifiers.
func (p PartialResponse) RestrictNoise(nids ...device.NoiseID) PartialResponse {
	want := make(map[device.NoiseID]bool, len(nids))
	for _, n := range nids {
		want[n] = true
	}
	return p.Restrict(func(k Key) bool { return k.IsNoise() && want[k.Noise] })
}

// Quantities returns the quantities in name order.
func (c CircuitResult) Quantities() []circuit.Quantity {
	qs := make([]circuit.Quantity, 0, len(c))
	for q := range c {
		qs = append(qs, q)
	}
	sort.Slice(qs, func(i, j int) bool {
		if qs[i].Kind != qs[j].Kind {
			return qs[i].Kind < qs[j].Kind
		}
		return qs[i].Name < qs[j].Name
	})
	return qs
}

// MergeResults applies Merge per quantity over the union of quantities.
func MergeResults(a, b CircuitResult, op func(x, y expr.Expr) (expr.Expr, error)) (CircuitResult, error) {
	union := make(CircuitResult, len(a)+len(b))
	for q := range a {
		union[q] = nil
	}
	for q := range b {
		union[q] = nil
	}
	out := make(CircuitResult, len(union))
	for _, q := range union.Quantities() {
		pr, err := Merge(a[q], b[q], op)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", q, err)
		}
		out[q] = pr
	}
	return out, nil
}

func (c CircuitResult) Add(o CircuitResult) (CircuitResult, error) {
	return MergeResults(c, o, expr.Add)
}

func (c CircuitResult) Sub(o CircuitResult) (CircuitResult, error) {
	return MergeResults(c, o, expr.Sub)
}

// Restrict applies PartialResponse.Restrict to every quantity.
func (c CircuitResult) Restrict(keep func(Key) bool) CircuitResult {
	out := make(CircuitResult, len(c))
	for q, pr := range c {
		out[q] = pr.Restrict(keep)
	}
	return out
}

func (c CircuitResult) RestrictNoise(nids ...device.NoiseID) CircuitResult {
	out := make(CircuitResult, len(c))
	for q, pr := range c {
		out[q] = pr.RestrictNoise(nids...)
	}
	return out
}

type resultOptions struct {
	talbotNodes int
	strict      bool
	noisePoints int
}

// Result is the outcome of one analysis request. It is safe for
// concurrent queries.
type Result struct {
	ckt     *circuit.Circuit
	actx    *Context
	entries []Entry
	opts    resultOptions

	mu    sync.Mutex
	cache map[circuit.Quantity]PartialResponse
}

func newResult(ckt *circuit.Circuit, actx *Context, entries []Entry, opts resultOptions) *Result {
	sorted := append([]Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key.less(sorted[j].Key) })
	return &Result{
		ckt:     ckt,
		actx:    actx,
		entries: sorted,
		opts:    opts,
		cache:   make(map[circuit.Quantity]PartialResponse),
	}
}

func (r *Result) Context() *Context { return r.actx }

// Partial returns the contributions to q, one per key.
func (r *Result) Partial(q circuit.Quantity) (PartialResponse, error) {
	if !r.ckt.HasQuantity(q) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuantity, q)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if pr, ok := r.cache[q]; ok {
		return maps.Clone(pr), nil
	}

	pr := make(PartialResponse, len(r.entries))
	for _, e := range r.entries {
		pr[e.Key] = e.Solution[q]
	}
	r.cache[q] = pr
	return maps.Clone(pr), nil
}

// CircuitResult returns the partial responses of qs, or of every quantity
// of the circuit when qs is empty.
func (r *Result) CircuitResult(qs ...circuit.Quantity) (CircuitResult, error) {
	if len(qs) == 0 {
		qs = r.ckt.Quantities()
	}
	out := make(CircuitResult, len(qs))
	for _, q := range qs {
		pr, err := r.Partial(q)
		if err != nil {
			return nil, err
		}
		out[q] = pr
	}
	return out, nil
}

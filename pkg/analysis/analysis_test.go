package analysis

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/edp1096/toy-lti/pkg/circuit"
	"github.com/edp1096/toy-lti/pkg/device"
	"github.com/edp1096/toy-lti/pkg/expr"
)

// wireSolver answers every quantity with the sum of the active source
// excitations in the requested domain. It sleeps a random time so that
// buckets complete out of order.
type wireSolver struct {
	mu    sync.Mutex
	calls []circuit.Domain
	fail  map[circuit.DomainKind]error
}

func (f *wireSolver) Solve(ctx context.Context, ckt *circuit.Circuit, d circuit.Domain) (circuit.Solution, error) {
	time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)

	f.mu.Lock()
	f.calls = append(f.calls, d)
	err := f.fail[d.Kind]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var parts []device.Waveform
	for _, s := range ckt.Sources() {
		parts = append(parts, s.Parts()...)
	}

	var e expr.Expr
	switch d.Kind {
	case circuit.DomainDC:
		var v float64
		for _, w := range parts {
			if w.Kind == device.WaveDC {
				v += w.Value
			}
		}
		e = expr.Constant(v)
	case circuit.DomainPhasor:
		var x complex128
		for _, w := range parts {
			if w.Kind == device.WaveAC && w.Omega == d.Omega {
				x += w.Phasor()
			}
		}
		e = expr.Phasor(x, d.Omega)
	case circuit.DomainLaplace:
		e = expr.Laplace(func(s complex128) complex128 {
			var v complex128
			for _, w := range parts {
				v += w.Laplace(s)
			}
			return v
		}, expr.Causal)
	case circuit.DomainNoise:
		var v float64
		for _, w := range parts {
			if w.Kind == device.WaveNoise && w.Noise == d.Noise {
				v += w.Value
			}
		}
		e = expr.Noise(string(d.Noise), func(float64) complex128 { return complex(v, 0) })
	case circuit.DomainGain:
		e = expr.Constant(1)
	}

	sol := make(circuit.Solution)
	for _, q := range ckt.Quantities() {
		sol[q] = e
	}
	return sol, nil
}

func newCircuit(t *testing.T, devs ...device.Device) *circuit.Circuit {
	t.Helper()
	ckt := circuit.New("test")
	if err := ckt.Add(devs...); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := ckt.AssignNodeBranchMaps(); err != nil {
		t.Fatalf("AssignNodeBranchMaps() error = %v", err)
	}
	return ckt
}

// mixedCircuit has every category: V1 = dc 1 + ac 2@10 + noise 3 (n1),
// I1 = step 4 + noise 5 (n2) + ac 1@20.
func mixedCircuit(t *testing.T) *circuit.Circuit {
	return newCircuit(t,
		device.NewVoltageSource("V1", []string{"1", "0"},
			device.DC(1), device.AC(2, 10, 0), device.WhiteNoise(3, "n1")),
		device.NewCurrentSource("I1", []string{"2", "0"},
			device.Step(4), device.WhiteNoise(5, "n2"), device.AC(1, 20, 0)),
		device.NewResistor("R1", []string{"1", "2"}, 1000),
		device.NewCapacitor("C1", []string{"2", "0"}, 1e-6),
	)
}

func TestClassify(t *testing.T) {
	F := func(s complex128) complex128 { return 1 / s }
	tests := []struct {
		w    device.Waveform
		want Category
	}{
		{device.DC(1), CategoryDC},
		{device.AC(1, 10, 0), CategoryAC},
		{device.Step(1), CategoryTransient},
		{device.Transient(F, true, "s 1/s"), CategoryTransient},
		{device.WhiteNoise(1, "n1"), CategoryNoise},
		{device.Arbitrary(F, false, "arb 1/s"), CategoryArbitrary},
	}
	for _, tt := range tests {
		if got := Classify(tt.w); got != tt.want {
			t.Errorf("Classify(%s) = %v, want %v", tt.w.Text, got, tt.want)
		}
	}
}

func TestDecomposePartition(t *testing.T) {
	ckt := mixedCircuit(t)
	parts := ClassifySources(ckt.Sources())
	if len(parts) != 6 {
		t.Fatalf("len(parts) = %d, want 6", len(parts))
	}

	buckets, err := Decompose(ckt, parts)
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}

	wantKeys := []Key{
		{Category: CategoryDC},
		{Category: CategoryAC, Omega: 10},
		{Category: CategoryAC, Omega: 20},
		{Category: CategoryTransient},
		{Category: CategoryNoise, Noise: "n1"},
		{Category: CategoryNoise, Noise: "n2"},
	}
	if len(buckets) != len(wantKeys) {
		t.Fatalf("len(buckets) = %d, want %d", len(buckets), len(wantKeys))
	}

	seen := make(map[PartRef]int)
	for i, b := range buckets {
		if b.Key != wantKeys[i] {
			t.Errorf("bucket %d key = %v, want %v", i, b.Key, wantKeys[i])
		}
		for _, ref := range b.Parts {
			seen[ref]++
		}
		// every other part is zeroed in the reduced circuit
		active := 0
		for _, s := range b.Circuit.Sources() {
			active += len(s.Parts())
		}
		if active != len(b.Parts) {
			t.Errorf("bucket %v keeps %d parts, want %d", b.Key, active, len(b.Parts))
		}
	}
	for _, p := range parts {
		if seen[p.PartRef] != 1 {
			t.Errorf("part %v in %d buckets, want 1", p.PartRef, seen[p.PartRef])
		}
	}

	// the original circuit is untouched
	if n := len(ckt.Sources()[0].Parts()); n != 3 {
		t.Errorf("V1 has %d parts after Decompose, want 3", n)
	}
}

func TestCheckPartitionBroken(t *testing.T) {
	parts := []Part{{PartRef: PartRef{Source: "V1", Index: 0}}, {PartRef: PartRef{Source: "V1", Index: 1}}}

	tests := []struct {
		name    string
		buckets []Bucket
	}{
		{"missing", []Bucket{{Parts: []PartRef{{Source: "V1", Index: 0}}}}},
		{"twice", []Bucket{
			{Parts: []PartRef{{Source: "V1", Index: 0}, {Source: "V1", Index: 1}}},
			{Parts: []PartRef{{Source: "V1", Index: 1}}},
		}},
		{"unknown", []Bucket{{Parts: []PartRef{{Source: "V1", Index: 0}, {Source: "V1", Index: 1}, {Source: "V2", Index: 0}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := checkPartition(parts, tt.buckets); !errors.Is(err, ErrPartitionBroken) {
				t.Errorf("checkPartition() error = %v, want ErrPartitionBroken", err)
			}
		})
	}
}

func TestSelectMode(t *testing.T) {
	tests := []struct {
		ivp, storage, sOnly bool
		want                Mode
	}{
		{false, false, false, ModeTimeDomain},
		{false, true, false, ModeSuperposition},
		{false, false, true, ModeSuperposition},
		{false, true, true, ModeSuperposition},
		{true, false, false, ModeInitialValue},
		{true, true, false, ModeInitialValue},
		{true, false, true, ModeInitialValue},
		{true, true, true, ModeInitialValue},
	}
	for _, tt := range tests {
		if got := SelectMode(tt.ivp, tt.storage, tt.sOnly); got != tt.want {
			t.Errorf("SelectMode(%v, %v, %v) = %v, want %v", tt.ivp, tt.storage, tt.sOnly, got, tt.want)
		}
	}
}

func capacitor(name string, nodes []string, ic *float64) *device.Capacitor {
	c := device.NewCapacitor(name, nodes, 1e-6)
	if ic != nil {
		c.SetInitialCondition(*ic)
	}
	return c
}

func ptr(v float64) *float64 { return &v }

func TestDetectInitialConditions(t *testing.T) {
	step := device.NewVoltageSource("V1", []string{"1", "0"}, device.Step(1))
	dc := device.NewDCVoltageSource("V2", []string{"1", "0"}, 1)

	tests := []struct {
		name       string
		ic         *float64
		sources    []device.Source
		assumeRest bool
		want       bool
		wantErr    bool
	}{
		{"unspecified", nil, []device.Source{dc}, false, false, false},
		{"explicit zero", ptr(0), []device.Source{dc}, false, false, false},
		{"non-zero", ptr(2), []device.Source{dc}, false, true, false},
		{"rest and causal", ptr(0), []device.Source{step}, true, false, false},
		{"rest with non-zero ic", ptr(2), []device.Source{step}, true, false, true},
		{"rest with dc source", nil, []device.Source{dc}, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := []device.Storage{capacitor("C1", []string{"1", "0"}, tt.ic)}
			got, err := DetectInitialConditions(storage, tt.sources, tt.assumeRest)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInconsistentInitialCondition) {
				t.Errorf("error = %v, want ErrInconsistentInitialCondition", err)
			}
			if got != tt.want {
				t.Errorf("ivp = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInitialValuePrecedence(t *testing.T) {
	ckt := newCircuit(t,
		device.NewVoltageSource("V1", []string{"1", "0"}, device.DC(1), device.AC(1, 10, 0), device.WhiteNoise(1, "n1")),
		device.NewResistor("R1", []string{"1", "2"}, 1000),
		capacitor("C1", []string{"2", "0"}, ptr(1)),
	)

	solver := &wireSolver{}
	res, err := New(ckt, solver).Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	actx := res.Context()
	if actx.Mode() != ModeInitialValue || !actx.IsInitialValueProblem() {
		t.Fatalf("mode = %v, want %v", actx.Mode(), ModeInitialValue)
	}

	pr, err := res.Partial(circuit.V("2"))
	if err != nil {
		t.Fatalf("Partial() error = %v", err)
	}
	keys := pr.Keys()
	if len(keys) != 2 || !keys[0].Initial || !keys[1].IsNoise() {
		t.Fatalf("keys = %v, want [ivp noise(n1)]", keys)
	}
	if v := pr[keys[0]].Validity(); v != expr.PostInitial {
		t.Errorf("ivp validity = %v, want %v", v, expr.PostInitial)
	}

	for _, d := range solver.calls {
		if d.Kind == circuit.DomainLaplace && !d.InitialConditions {
			t.Errorf("Laplace solve without initial conditions")
		}
		if d.Kind == circuit.DomainDC || d.Kind == circuit.DomainPhasor {
			t.Errorf("unexpected %v solve in initial-value mode", d)
		}
	}
}

func TestContextIntrospection(t *testing.T) {
	tests := []struct {
		name                 string
		parts                []device.Waveform
		wantDC, wantAC, caus bool
	}{
		{"dc", []device.Waveform{device.DC(1)}, true, false, false},
		{"ac", []device.Waveform{device.AC(1, 5, 0)}, false, true, false},
		{"step", []device.Waveform{device.Step(1)}, false, false, true},
		{"dc and step", []device.Waveform{device.DC(1), device.Step(1)}, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ckt := newCircuit(t,
				device.NewVoltageSource("V1", []string{"1", "0"}, tt.parts...),
				device.NewResistor("R1", []string{"1", "0"}, 1),
			)
			actx, err := NewContext(ckt)
			if err != nil {
				t.Fatalf("NewContext() error = %v", err)
			}
			if actx.IsDC() != tt.wantDC || actx.IsAC() != tt.wantAC || actx.IsCausal() != tt.caus {
				t.Errorf("IsDC/IsAC/IsCausal = %v/%v/%v, want %v/%v/%v",
					actx.IsDC(), actx.IsAC(), actx.IsCausal(), tt.wantDC, tt.wantAC, tt.caus)
			}
			if actx.Mode() != ModeTimeDomain {
				t.Errorf("mode = %v, want %v", actx.Mode(), ModeTimeDomain)
			}
		})
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	ckt := mixedCircuit(t)

	first, err := New(ckt, &wireSolver{}, WithWorkers(3)).Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if first.Context().Mode() != ModeSuperposition {
		t.Fatalf("mode = %v, want %v", first.Context().Mode(), ModeSuperposition)
	}

	for i := 0; i < 5; i++ {
		again, err := New(ckt, &wireSolver{}, WithWorkers(3)).Analyze(context.Background())
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		a, _ := first.CircuitResult()
		b, _ := again.CircuitResult()
		if len(a) != len(b) {
			t.Fatalf("quantities %d != %d", len(a), len(b))
		}
		for q, pa := range a {
			pb := b[q]
			if len(pa) != len(pb) {
				t.Fatalf("%v: %d entries != %d", q, len(pa), len(pb))
			}
			for k, e := range pa {
				if !expr.Equal(e, pb[k]) {
					t.Errorf("run %d: %v %v = %v, want %v", i, q, k, pb[k], e)
				}
			}
		}
	}
}

func TestCombineOrderIndependent(t *testing.T) {
	ckt := mixedCircuit(t)
	res, err := New(ckt, &wireSolver{}).Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	reversed := make([]Entry, len(res.entries))
	for i, e := range res.entries {
		reversed[len(res.entries)-1-i] = e
	}
	shuffled := newResult(ckt, res.Context(), reversed, res.opts)

	q := circuit.V("1")
	want, err := res.Response(q, Query{Domain: expr.KindLaplace})
	if err != nil {
		t.Fatalf("Response() error = %v", err)
	}
	got, err := shuffled.Response(q, Query{Domain: expr.KindLaplace})
	if err != nil {
		t.Fatalf("Response() error = %v", err)
	}
	if !expr.Equal(got, want) {
		t.Errorf("reversed order Response = %v, want %v", got, want)
	}
}

func TestAnalyzeFailureReturnsNoResult(t *testing.T) {
	boom := errors.New("boom")
	solver := &wireSolver{fail: map[circuit.DomainKind]error{circuit.DomainPhasor: boom}}

	res, err := New(mixedCircuit(t), solver, WithWorkers(1)).Analyze(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Analyze() error = %v, want %v", err, boom)
	}
	if res != nil {
		t.Errorf("Analyze() result = %v, want nil", res)
	}
}

func TestDCFailureIsUnsolvable(t *testing.T) {
	solver := &wireSolver{fail: map[circuit.DomainKind]error{circuit.DomainDC: errors.New("singular")}}

	_, err := New(mixedCircuit(t), solver).Analyze(context.Background())
	if !errors.Is(err, ErrUnsolvableCircuit) {
		t.Fatalf("Analyze() error = %v, want ErrUnsolvableCircuit", err)
	}
}

func TestUnknownQuantityAndNoise(t *testing.T) {
	res, err := New(mixedCircuit(t), &wireSolver{}).Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if _, err := res.Partial(circuit.V("99")); !errors.Is(err, ErrUnknownQuantity) {
		t.Errorf("Partial(V(99)) error = %v, want ErrUnknownQuantity", err)
	}
	if _, err := res.NoiseComponent(circuit.V("1"), "n9"); !errors.Is(err, ErrUnknownNoise) {
		t.Errorf("NoiseComponent(n9) error = %v, want ErrUnknownNoise", err)
	}
}

func TestMerge(t *testing.T) {
	dc := Key{Category: CategoryDC}
	n1 := Key{Category: CategoryNoise, Noise: "n1"}
	n2 := Key{Category: CategoryNoise, Noise: "n2"}
	noise := func(nid string, v complex128) expr.Expr {
		return expr.Noise(nid, func(float64) complex128 { return v })
	}

	a := PartialResponse{dc: expr.Constant(2), n1: noise("n1", 3)}
	b := PartialResponse{n1: noise("n1", 1), n2: noise("n2", 4)}

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(sum) != 3 {
		t.Fatalf("len(sum) = %d, want 3", len(sum))
	}
	if !expr.Equal(sum[dc], expr.Constant(2)) {
		t.Errorf("dc = %v, want 2", sum[dc])
	}
	if !expr.Equal(sum[n1], noise("n1", 4)) {
		t.Errorf("n1 = %v, want 4", sum[n1])
	}
	if !expr.Equal(sum[n2], noise("n2", 4)) {
		t.Errorf("n2 = %v, want 4", sum[n2])
	}

	diff, err := sum.Sub(b)
	if err != nil {
		t.Fatalf("Sub() error = %v", err)
	}
	for k, e := range a {
		if !expr.Equal(diff[k], e) {
			t.Errorf("(a+b)-b [%v] = %v, want %v", k, diff[k], e)
		}
	}
	if !diff[n2].IsZero() {
		t.Errorf("(a+b)-b [n2] = %v, want 0", diff[n2])
	}
}

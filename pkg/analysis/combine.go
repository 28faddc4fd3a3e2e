package analysis

import (
	"fmt"

	"github.com/edp1096/toy-lti/pkg/circuit"
	"github.com/edp1096/toy-lti/pkg/expr"
)

// Query selects the domain of a combined response.
type Query struct {
	// Domain is expr.KindTime, KindLaplace, KindPhasor or KindConstant.
	Domain expr.Kind
	// Omega is the angular frequency of a phasor query.
	Omega float64
	// Strict rejects contributions that are known over different time
	// ranges instead of narrowing the result to t >= 0.
	Strict bool
}

// allTime reports whether a contribution is known for every t. Causal
// responses are known to be zero before t = 0.
func allTime(v expr.Validity) bool {
	return v != expr.PostInitial
}

// Response sums the non-noise contributions to q in the requested domain,
// in canonical key order. The validity of the sum is the join of the
// contributions' validities.
func (r *Result) Response(q circuit.Quantity, query Query) (expr.Expr, error) {
	pr, err := r.Partial(q)
	if err != nil {
		return expr.Expr{}, err
	}

	var keys []Key
	for _, k := range pr.Keys() {
		if !k.IsNoise() {
			keys = append(keys, k)
		}
	}

	if query.Strict || r.opts.strict {
		if err := checkDomains(pr, keys); err != nil {
			return expr.Expr{}, err
		}
	}

	sum := expr.Zero()
	for _, k := range keys {
		e, err := expr.Convert(pr[k], query.Domain, query.Omega, r.opts.talbotNodes)
		if err != nil {
			return expr.Expr{}, fmt.Errorf("%s: %s contribution: %w", q, k, err)
		}
		if sum, err = expr.Add(sum, e); err != nil {
			return expr.Expr{}, fmt.Errorf("%s: adding %s contribution: %w", q, k, err)
		}
	}
	return sum, nil
}

func checkDomains(pr PartialResponse, keys []Key) error {
	var full, post bool
	for _, k := range keys {
		if pr[k].Kind() == expr.KindZero {
			continue
		}
		if allTime(pr[k].Validity()) {
			full = true
		} else {
			post = true
		}
	}
	if !full || !post {
		return nil
	}

	e := &DomainMismatchError{}
	for _, k := range keys {
		if pr[k].Kind() == expr.KindZero {
			continue
		}
		e.Keys = append(e.Keys, k)
		e.Validity = append(e.Validity, pr[k].Validity())
	}
	return e
}

// At evaluates the time-domain response of q at t. Responses known for
// t >= 0 only fail for t < 0 with expr.ErrUndefinedBeforeZero.
func (r *Result) At(q circuit.Quantity, t float64) (float64, error) {
	e, err := r.Response(q, Query{Domain: expr.KindTime})
	if err != nil {
		return 0, err
	}
	return e.At(t)
}

package netlist

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/edp1096/toy-lti/pkg/device"
)

// ParseSource reads the part list of an independent source, e.g.
//
//	dc 5 ac 1 1000 90 step 2 noise 1n nid=vn
//	sin(0 1 1k) pulse(0 5 1m 0 0 2m 0) pwl(0 0 1 1)
//	s {1/(s+1)} arb {exp(-s)/s} causal
//
// A bare number is a dc part. The parts are returned in declaration order.
//
// sin takes offset, amplitude, frequency and an optional phase in degrees:
// sin(vo va f [phase]). The fourth argument is the phase, not the SPICE
// delay td, and delay or damping arguments are rejected since a delayed or
// damped sine has no dc plus ac decomposition.
func ParseSource(spec string) ([]device.Waveform, error) {
	toks, err := tokenize(spec)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty source specification")
	}

	p := &sourceParser{toks: toks}
	var parts []device.Waveform
	for !p.done() {
		tok := p.next()
		switch strings.ToLower(tok) {
		case "dc":
			v, err := p.value("dc value")
			if err != nil {
				return nil, err
			}
			parts = append(parts, device.DC(v))

		case "ac":
			amp, err := p.value("ac amplitude")
			if err != nil {
				return nil, err
			}
			omega, err := p.value("ac angular frequency")
			if err != nil {
				return nil, err
			}
			phase, _ := p.optionalValue()
			parts = append(parts, device.AC(amp, omega, phase*math.Pi/180))

		case "step":
			v, err := p.value("step value")
			if err != nil {
				return nil, err
			}
			parts = append(parts, device.Step(v))

		case "noise":
			density, err := p.value("noise density")
			if err != nil {
				return nil, err
			}
			if density < 0 {
				return nil, fmt.Errorf("noise density must be non-negative: %g", density)
			}
			var nid device.NoiseID
			if !p.done() && strings.HasPrefix(strings.ToLower(p.peek()), "nid=") {
				nid = device.NoiseID(p.next()[4:])
				if nid == "" {
					return nil, fmt.Errorf("empty noise identifier")
				}
			}
			parts = append(parts, device.WhiteNoise(density, nid))

		case "sin":
			args, err := p.group("SIN")
			if err != nil {
				return nil, err
			}
			offset, amplitude, freq, phase, err := parseSinParams(args)
			if err != nil {
				return nil, err
			}
			parts = append(parts, device.Sin(offset, amplitude, freq, phase)...)

		case "pulse":
			args, err := p.group("PULSE")
			if err != nil {
				return nil, err
			}
			v1, v2, delay, rise, fall, pWidth, period, err := parsePulseParams(args)
			if err != nil {
				return nil, err
			}
			ws, err := device.Pulse(v1, v2, delay, rise, fall, pWidth, period)
			if err != nil {
				return nil, err
			}
			parts = append(parts, ws...)

		case "pwl":
			args, err := p.group("PWL")
			if err != nil {
				return nil, err
			}
			times, values, err := parsePWLParams(args)
			if err != nil {
				return nil, err
			}
			ws, err := device.PWL(times, values)
			if err != nil {
				return nil, err
			}
			parts = append(parts, ws...)

		case "s":
			text, F, err := p.transform()
			if err != nil {
				return nil, err
			}
			parts = append(parts, device.Transient(F, true, "s "+text))

		case "arb":
			text, F, err := p.transform()
			if err != nil {
				return nil, err
			}
			causal := false
			if !p.done() && strings.EqualFold(p.peek(), "causal") {
				p.next()
				causal = true
			}
			parts = append(parts, device.Arbitrary(F, causal, "arb "+text))

		default:
			v, err := ParseValue(tok)
			if err != nil {
				return nil, fmt.Errorf("unknown source part %q", tok)
			}
			parts = append(parts, device.DC(v))
		}
	}
	return parts, nil
}

// tokenize splits on blanks and commas. Parentheses are tokens of their own
// and a braced expression is a single token.
func tokenize(spec string) ([]string, error) {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(spec); i++ {
		c := rune(spec[i])
		switch {
		case unicode.IsSpace(c) || c == ',':
			flush()
		case c == '(' || c == ')':
			flush()
			toks = append(toks, string(c))
		case c == '{':
			flush()
			end := strings.IndexByte(spec[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated expression: %s", spec[i:])
			}
			toks = append(toks, spec[i:i+end+1])
			i += end
		case c == '}':
			return nil, fmt.Errorf("unbalanced '}' in %q", spec)
		default:
			cur.WriteRune(c)
		}
	}
	flush()
	return toks, nil
}

type sourceParser struct {
	toks []string
	pos  int
}

func (p *sourceParser) done() bool   { return p.pos >= len(p.toks) }
func (p *sourceParser) peek() string { return p.toks[p.pos] }

func (p *sourceParser) next() string {
	tok := p.toks[p.pos]
	p.pos++
	return tok
}

func (p *sourceParser) value(what string) (float64, error) {
	if p.done() {
		return 0, fmt.Errorf("missing %s", what)
	}
	tok := p.next()
	v, err := ParseValue(tok)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", what, err)
	}
	return v, nil
}

// optionalValue consumes the next token only if it is a number.
func (p *sourceParser) optionalValue() (float64, bool) {
	if p.done() {
		return 0, false
	}
	v, err := ParseValue(p.peek())
	if err != nil {
		return 0, false
	}
	p.pos++
	return v, true
}

// group returns the tokens between a pair of parentheses.
func (p *sourceParser) group(name string) ([]string, error) {
	if p.done() || p.peek() != "(" {
		return nil, fmt.Errorf("%s parameters must be enclosed in parentheses", name)
	}
	p.pos++
	var args []string
	for !p.done() {
		tok := p.next()
		if tok == ")" {
			return args, nil
		}
		args = append(args, tok)
	}
	return nil, fmt.Errorf("missing ')' after %s parameters", name)
}

func (p *sourceParser) transform() (string, func(complex128) complex128, error) {
	if p.done() || !strings.HasPrefix(p.peek(), "{") {
		return "", nil, fmt.Errorf("expected {expression}")
	}
	tok := p.next()
	text := strings.TrimSpace(tok[1 : len(tok)-1])
	F, err := ParseSExpr(text)
	if err != nil {
		return "", nil, err
	}
	return tok, F, nil
}

func parseSinParams(sinParams []string) (offset, amplitude, freq, phase float64, err error) {
	if len(sinParams) < 3 {
		return 0, 0, 0, 0, fmt.Errorf("insufficient SIN parameters")
	}
	if len(sinParams) > 4 {
		return 0, 0, 0, 0, fmt.Errorf("too many SIN parameters: want sin(offset amplitude freq [phase]), got %d values", len(sinParams))
	}

	offset, err = ParseValue(sinParams[0])
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid SIN offset: %v", err)
	}

	amplitude, err = ParseValue(sinParams[1])
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid SIN amplitude: %v", err)
	}

	freq, err = ParseValue(sinParams[2])
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid SIN frequency: %v", err)
	}

	// Phase, degrees
	if len(sinParams) > 3 {
		phase, err = ParseValue(sinParams[3])
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("invalid SIN phase: %v", err)
		}
	}

	return offset, amplitude, freq, phase, nil
}

// parsePulseParams accepts v1 v2 delay rise fall width [period]; a missing
// or zero period is a single pulse.
func parsePulseParams(pulseParams []string) (v1, v2, delay, rise, fall, pWidth, period float64, err error) {
	if len(pulseParams) < 6 {
		return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("insufficient PULSE parameters")
	}

	names := []string{"V1", "V2", "delay", "rise", "fall", "width", "period"}
	vals := make([]float64, 7)
	for i, s := range pulseParams {
		if i >= len(vals) {
			return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("too many PULSE parameters")
		}
		vals[i], err = ParseValue(s)
		if err != nil {
			return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("invalid PULSE %s: %v", names[i], err)
		}
	}

	return vals[0], vals[1], vals[2], vals[3], vals[4], vals[5], vals[6], nil
}

func parsePWLParams(pwlParams []string) (times []float64, values []float64, err error) {
	if len(pwlParams) < 2 || len(pwlParams)%2 != 0 {
		return nil, nil, fmt.Errorf("insufficient or invalid PWL parameters, need pairs of time-value")
	}

	numPoints := len(pwlParams) / 2
	times = make([]float64, numPoints)
	values = make([]float64, numPoints)

	for i := 0; i < numPoints; i++ {
		times[i], err = ParseValue(pwlParams[2*i])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid PWL time[%d]: %v", i, err)
		}
		values[i], err = ParseValue(pwlParams[2*i+1])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid PWL value[%d]: %v", i, err)
		}

		// equal times are jumps
		if i > 0 && times[i] < times[i-1] {
			return nil, nil, fmt.Errorf("PWL time points must not decrease")
		}
	}

	return times, values, nil
}

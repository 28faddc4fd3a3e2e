// Package netlist reads SPICE-like circuit descriptions and builds
// circuits from them.
package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/edp1096/toy-lti/internal/consts"
	"github.com/edp1096/toy-lti/pkg/device"
)

type NetlistData struct {
	Title    string
	Elements []Element
	Nodes    map[string]int // node name and index of first appearance
	// Temp is the circuit temperature in kelvin, 0 for nominal.
	Temp float64
	// Noisy adds thermal noise sources to every resistor at NoisyTemp
	// kelvin, or at Temp when zero.
	Noisy      bool
	NoisyTemp  float64
	AssumeRest bool
}

type Element struct {
	Type      string   // R, L, C, K, V, I, E, F, G, H
	Name      string
	Nodes     []string // node names
	Value     float64  // component value, coupling coefficient or gain
	IC        *float64 // pre-initial condition, nil if not declared
	Params    map[string]string
	Waveforms []device.Waveform // source parts
	Inductors []string          // coupled inductors of K
	Control   string            // controlling element of F and H
}

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var (
	valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGMKkmunpf])?s?$`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Parse reads a netlist. The first line is the title. Lines starting with
// '*' are comments, ';' starts an inline comment and a line starting with
// '+' continues the previous one.
func Parse(input string) (*NetlistData, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	data := &NetlistData{
		Nodes: make(map[string]int),
	}

	if scanner.Scan() {
		data.Title = strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "*"))
	}

	var currentLine string
	lineNo, startNo := 1, 1
	flush := func() error {
		if currentLine == "" {
			return nil
		}
		err := parseLine(data, currentLine)
		currentLine = ""
		if err != nil {
			return fmt.Errorf("line %d: %w", startNo, err)
		}
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)

		if len(line) == 0 || strings.HasPrefix(line, "*") {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		if strings.HasPrefix(line, "+") {
			if currentLine != "" {
				currentLine += " " + strings.TrimSpace(line[1:])
			}
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		currentLine = line
		startNo = lineNo
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return data, nil
}

func parseLine(data *NetlistData, line string) error {
	line = spaceRe.ReplaceAllString(line, " ")

	if strings.HasPrefix(line, ".") {
		return parseDotOperator(data, line)
	}

	element, err := parseElement(line)
	if err != nil {
		return err
	}

	data.Elements = append(data.Elements, *element)
	for _, node := range element.Nodes {
		if _, exists := data.Nodes[node]; !exists {
			data.Nodes[node] = len(data.Nodes)
		}
	}
	return nil
}

// parseDotOperator handles .temp, .noisy, .rest and .end.
func parseDotOperator(data *NetlistData, line string) error {
	fields := strings.Fields(line)

	switch strings.ToLower(fields[0]) {
	case ".temp":
		if len(fields) < 2 {
			return fmt.Errorf(".temp needs a temperature in degC")
		}
		t, err := ParseValue(fields[1])
		if err != nil {
			return fmt.Errorf("invalid .temp: %w", err)
		}
		data.Temp = t + consts.KELVIN

	case ".noisy":
		data.Noisy = true
		if len(fields) > 1 {
			t, err := ParseValue(fields[1])
			if err != nil {
				return fmt.Errorf("invalid .noisy temperature: %w", err)
			}
			data.NoisyTemp = t + consts.KELVIN
		}

	case ".rest":
		data.AssumeRest = true

	case ".end":

	default:
		return fmt.Errorf("unsupported command: %s", fields[0])
	}
	return nil
}

func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, fmt.Errorf("invalid element format: %s", line)
	}

	elem := &Element{
		Name:   fields[0],
		Type:   strings.ToUpper(string(fields[0][0])),
		Params: make(map[string]string),
	}

	switch elem.Type {
	case "V", "I":
		if len(fields) < 4 {
			return nil, fmt.Errorf("%s: missing source specification", elem.Name)
		}
		elem.Nodes = fields[1:3]
		spec := strings.SplitN(strings.TrimSpace(line), " ", 4)[3]
		waves, err := ParseSource(spec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", elem.Name, err)
		}
		elem.Waveforms = waves
		return elem, nil

	case "K":
		if len(fields) < 4 {
			return nil, fmt.Errorf("insufficient mutual coupling parameters: need coupling name, inductors and coefficient")
		}
		coefficient, err := ParseValue(fields[len(fields)-1])
		if err != nil {
			return nil, fmt.Errorf("invalid coupling coefficient: %w", err)
		}
		if coefficient < -1 || coefficient > 1 {
			return nil, fmt.Errorf("coupling coefficient must be between -1 and 1: %g", coefficient)
		}
		elem.Inductors = fields[1 : len(fields)-1]
		if len(elem.Inductors) != 2 {
			return nil, fmt.Errorf("mutual coupling %s couples exactly two inductors", elem.Name)
		}
		elem.Value = coefficient
		return elem, nil

	case "E", "G":
		if len(fields) != 6 {
			return nil, fmt.Errorf("%s: want n+ n- nc+ nc- gain", elem.Name)
		}
		elem.Nodes = fields[1:5]
		gain, err := ParseValue(fields[5])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", elem.Name, err)
		}
		elem.Value = gain
		return elem, nil

	case "F", "H":
		if len(fields) != 5 {
			return nil, fmt.Errorf("%s: want n+ n- control gain", elem.Name)
		}
		elem.Nodes = fields[1:3]
		elem.Control = fields[3]
		gain, err := ParseValue(fields[4])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", elem.Name, err)
		}
		elem.Value = gain
		return elem, nil

	case "R", "L", "C":
		if len(fields) < 4 {
			return nil, fmt.Errorf("%s: missing value", elem.Name)
		}
		elem.Nodes = fields[1:3]
		value, err := ParseValue(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", elem.Name, err)
		}
		elem.Value = value

		for _, f := range fields[4:] {
			pair := strings.SplitN(f, "=", 2)
			if len(pair) != 2 {
				return nil, fmt.Errorf("%s: unexpected %q", elem.Name, f)
			}
			name := strings.ToLower(pair[0])
			elem.Params[name] = pair[1]
			if name == "ic" {
				ic, err := ParseValue(pair[1])
				if err != nil {
					return nil, fmt.Errorf("%s: invalid ic: %w", elem.Name, err)
				}
				elem.IC = &ic
			}
		}
		return elem, nil

	default:
		return nil, fmt.Errorf("unsupported element type: %s", elem.Type)
	}
}

// ParseValue - Parse value and factor. 1k -> 1000
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	if len(matches) > 2 && matches[2] != "" {
		if multiplier, ok := unitMap[matches[2]]; ok {
			num *= multiplier
		}
	}

	return num, nil
}

package netlist

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// tomlNetlist is the TOML form of a netlist:
//
//	title = "rc step"
//	temp = 27          # degC
//	assume_rest = true
//
//	[[element]]
//	name = "V1"
//	nodes = ["in", "0"]
//	value = "step 1"
//
//	[[element]]
//	name = "C1"
//	nodes = ["in", "0"]
//	value = "1u"
//	ic = 0
type tomlNetlist struct {
	Title      string        `toml:"title"`
	Temp       *float64      `toml:"temp"`
	Noisy      bool          `toml:"noisy"`
	NoisyTemp  *float64      `toml:"noisy_temp"`
	AssumeRest bool          `toml:"assume_rest"`
	Elements   []tomlElement `toml:"element"`
}

type tomlElement struct {
	Name      string   `toml:"name"`
	Nodes     []string `toml:"nodes"`
	Value     any      `toml:"value"` // number, SI string or source parts
	IC        any      `toml:"ic"`
	Inductors []string `toml:"inductors"`
	Control   string   `toml:"control"`
}

// LoadTOML reads a netlist from a TOML file.
func LoadTOML(path string) (*NetlistData, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read netlist: %w", err)
	}
	return ParseTOML(string(content))
}

// ParseTOML decodes a TOML netlist. Element values use the same syntax as
// the text form.
func ParseTOML(input string) (*NetlistData, error) {
	var doc tomlNetlist
	md, err := toml.Decode(input, &doc)
	if err != nil {
		return nil, fmt.Errorf("parse netlist: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse netlist: unknown keys %v", undecoded)
	}

	data := &NetlistData{
		Title:      doc.Title,
		Nodes:      make(map[string]int),
		Noisy:      doc.Noisy,
		AssumeRest: doc.AssumeRest,
	}
	if doc.Temp != nil {
		if err := parseDotOperator(data, fmt.Sprintf(".temp %g", *doc.Temp)); err != nil {
			return nil, err
		}
	}
	if doc.NoisyTemp != nil {
		if err := parseDotOperator(data, fmt.Sprintf(".noisy %g", *doc.NoisyTemp)); err != nil {
			return nil, err
		}
	}

	for i, e := range doc.Elements {
		line, err := e.line()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i+1, err)
		}
		if err := parseLine(data, line); err != nil {
			return nil, fmt.Errorf("element %s: %w", e.Name, err)
		}
	}
	return data, nil
}

// line renders the element in netlist syntax.
func (e tomlElement) line() (string, error) {
	if e.Name == "" {
		return "", fmt.Errorf("missing name")
	}
	if e.Value == nil {
		return "", fmt.Errorf("%s: missing value", e.Name)
	}

	fields := []string{e.Name}
	if strings.EqualFold(e.Name[:1], "K") {
		fields = append(fields, e.Inductors...)
	} else {
		fields = append(fields, e.Nodes...)
	}
	if e.Control != "" {
		fields = append(fields, e.Control)
	}
	fields = append(fields, fmt.Sprint(e.Value))
	if e.IC != nil {
		fields = append(fields, fmt.Sprintf("ic=%v", e.IC))
	}
	return strings.Join(fields, " "), nil
}

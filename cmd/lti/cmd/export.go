package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/edp1096/toy-lti/pkg/analysis"
	"github.com/edp1096/toy-lti/pkg/expr"
)

var (
	exportQuantities []string
	exportTimes      []string
	exportFormat     string
)

type exportDoc struct {
	Circuit    string           `yaml:"circuit" json:"circuit" toml:"circuit"`
	Mode       string           `yaml:"mode" json:"mode" toml:"mode"`
	IVP        bool             `yaml:"ivp" json:"ivp" toml:"ivp"`
	Causal     bool             `yaml:"causal" json:"causal" toml:"causal"`
	Noise      []string         `yaml:"noise,omitempty" json:"noise,omitempty" toml:"noise,omitempty"`
	Quantities []exportQuantity `yaml:"quantities" json:"quantities" toml:"quantity"`
}

type exportQuantity struct {
	Name     string          `yaml:"name" json:"name" toml:"name"`
	Partials []exportPartial `yaml:"partials" json:"partials" toml:"partial"`
	Samples  []exportSample  `yaml:"samples,omitempty" json:"samples,omitempty" toml:"sample,omitempty"`
}

type exportPartial struct {
	Key      string   `yaml:"key" json:"key" toml:"key"`
	Kind     string   `yaml:"kind" json:"kind" toml:"kind"`
	Validity string   `yaml:"validity,omitempty" json:"validity,omitempty" toml:"validity,omitempty"`
	Value    *float64 `yaml:"value,omitempty" json:"value,omitempty" toml:"value,omitempty"`
	Mag      *float64 `yaml:"magnitude,omitempty" json:"magnitude,omitempty" toml:"magnitude,omitempty"`
	PhaseDeg *float64 `yaml:"phaseDeg,omitempty" json:"phaseDeg,omitempty" toml:"phaseDeg,omitempty"`
	Omega    *float64 `yaml:"omega,omitempty" json:"omega,omitempty" toml:"omega,omitempty"`
}

type exportSample struct {
	T     float64  `yaml:"t" json:"t" toml:"t"`
	Value *float64 `yaml:"value,omitempty" json:"value,omitempty" toml:"value,omitempty"`
	Error string   `yaml:"error,omitempty" json:"error,omitempty" toml:"error,omitempty"`
}

var exportCmd = &cobra.Command{
	Use:   "export <netlist>",
	Short: "Export partial responses as YAML, JSON or TOML",
	Long: `Write every partial response of the selected quantities, keyed by source
category, with optional samples of the combined time response.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringSliceVarP(&exportQuantities, "quantity", "q", nil, "quantities (default all)")
	exportCmd.Flags().StringSliceVar(&exportTimes, "at", nil, "times at which to sample the combined response")
	exportCmd.Flags().StringVar(&exportFormat, "format", "yaml", "yaml, json or toml")
	rootCmd.AddCommand(exportCmd)
}

func ptr(v float64) *float64 { return &v }

func describe(k analysis.Key, e expr.Expr) exportPartial {
	p := exportPartial{Key: k.String(), Kind: e.Kind().String()}
	switch e.Kind() {
	case expr.KindConstant:
		p.Value = ptr(real(e.Value()))
	case expr.KindPhasor:
		p.Mag = ptr(cmplx.Abs(e.Value()))
		p.PhaseDeg = ptr(cmplx.Phase(e.Value()) * 180 / math.Pi)
		p.Omega = ptr(e.Omega())
	case expr.KindLaplace, expr.KindTime:
		p.Validity = e.Validity().String()
	}
	return p
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := analyze(cmd, args[0])
	if err != nil {
		return err
	}
	qs, err := s.quantities(exportQuantities)
	if err != nil {
		return err
	}
	times, err := parseValues(exportTimes)
	if err != nil {
		return err
	}

	cr, err := s.result.CircuitResult(qs...)
	if err != nil {
		return err
	}

	actx := s.result.Context()
	doc := exportDoc{
		Circuit: s.ckt.Name(),
		Mode:    actx.Mode().String(),
		IVP:     actx.IsInitialValueProblem(),
		Causal:  actx.IsCausal(),
	}
	for _, nid := range actx.NoiseIDs() {
		doc.Noise = append(doc.Noise, string(nid))
	}

	for _, q := range qs {
		pr := cr[q]
		eq := exportQuantity{Name: q.String()}
		for _, k := range pr.Keys() {
			eq.Partials = append(eq.Partials, describe(k, pr[k]))
		}

		if len(times) > 0 {
			total, err := s.result.Response(q, analysis.Query{Domain: expr.KindTime})
			if err != nil {
				return err
			}
			for _, t := range times {
				sample := exportSample{T: t}
				v, err := total.At(t)
				switch {
				case err != nil:
					sample.Error = err.Error()
				case math.IsNaN(v) || math.IsInf(v, 0):
					sample.Error = "not finite"
				default:
					sample.Value = ptr(v)
				}
				eq.Samples = append(eq.Samples, sample)
			}
		}
		doc.Quantities = append(doc.Quantities, eq)
	}

	return encode(cmd.OutOrStdout(), exportFormat, doc)
}

func encode(w io.Writer, format string, doc exportDoc) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "toml":
		return toml.NewEncoder(w).Encode(doc)
	default:
		return fmt.Errorf("unknown format %q, want yaml, json or toml", format)
	}
}

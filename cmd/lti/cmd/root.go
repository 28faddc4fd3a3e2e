// Package cmd implements the lti command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edp1096/toy-lti/internal/config"
	"github.com/edp1096/toy-lti/internal/consts"
	"github.com/edp1096/toy-lti/internal/logging"
	"github.com/edp1096/toy-lti/pkg/analysis"
	"github.com/edp1096/toy-lti/pkg/circuit"
	"github.com/edp1096/toy-lti/pkg/mna"
	"github.com/edp1096/toy-lti/pkg/netlist"
)

var (
	// Global flags
	configPath string
	verbosity  int
	quiet      bool
	workers    int
	strict     bool
)

var rootCmd = &cobra.Command{
	Use:   "lti",
	Short: "Linear time-invariant circuit analyzer",
	Long: `Analyze linear circuits driven by dc, ac, transient and noise sources.
Sources are split by category, each category is solved in its own domain and
the partial responses are combined by superposition.

Examples:
  lti mode rc.cir                            # Show the selected analysis mode
  lti response rc.cir -q 'V(2)' --at 1m,2m   # Time response at 1 ms and 2 ms
  lti response rc.cir -q 'V(2)' --domain phasor --omega 1k
  lti noise amp.cir -q 'V(out)' --band 0:20k # RMS noise over a band
  lti export rc.toml --format yaml           # Dump every partial response`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./lti.yaml or ./lti.toml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "log more, repeat for debug")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress all logging")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "concurrent bucket solves (default from config)")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "fail on contributions with different domains of validity")
}

// session is one analyzed netlist.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	ckt    *circuit.Circuit
	result *analysis.Result
}

// loadNetlist reads a text or TOML netlist.
func loadNetlist(path string) (*netlist.NetlistData, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return netlist.LoadTOML(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read netlist: %w", err)
	}
	data, err := netlist.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// analyze loads the configuration and netlist, then runs the analysis.
func analyze(cmd *cobra.Command, path string) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level := logging.LevelFromVerbosity(verbosity, quiet, logging.LevelFromString(cfg.Logging.Level))
	logger := logging.NewAt(cmd.ErrOrStderr(), cfg.Logging.Format, level)

	data, err := loadNetlist(path)
	if err != nil {
		return nil, err
	}
	if data.Temp == 0 {
		data.Temp = cfg.Analysis.Temperature + consts.KELVIN
	}
	ckt, err := netlist.Build(data)
	if err != nil {
		return nil, err
	}

	n := cfg.Analysis.Workers
	if workers > 0 {
		n = workers
	}
	an := analysis.New(ckt, mna.New(logger),
		analysis.WithLogger(logger),
		analysis.WithWorkers(n),
		analysis.WithTalbotNodes(cfg.Analysis.TalbotNodes),
		analysis.WithStrict(strict || cfg.Analysis.Strict),
		analysis.WithNoisePoints(cfg.Noise.Points),
	)
	res, err := an.Analyze(cmd.Context())
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, ckt: ckt, result: res}, nil
}

// quantities parses -q flags; none selects every quantity of the circuit.
func (s *session) quantities(names []string) ([]circuit.Quantity, error) {
	if len(names) == 0 {
		return s.ckt.Quantities(), nil
	}
	qs := make([]circuit.Quantity, 0, len(names))
	for _, name := range names {
		q, err := circuit.ParseQuantity(name)
		if err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	return qs, nil
}

func unit(q circuit.Quantity) string {
	if q.Kind == circuit.NodeVoltage {
		return "V"
	}
	return "A"
}

// parseValues reads a comma separated list of SI values.
func parseValues(list []string) ([]float64, error) {
	var vals []float64
	for _, item := range list {
		for _, f := range strings.Split(item, ",") {
			if f = strings.TrimSpace(f); f == "" {
				continue
			}
			v, err := netlist.ParseValue(f)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
	}
	return vals, nil
}

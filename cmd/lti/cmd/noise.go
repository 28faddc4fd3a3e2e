package cmd

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edp1096/toy-lti/pkg/device"
	"github.com/edp1096/toy-lti/pkg/netlist"
	"github.com/edp1096/toy-lti/pkg/util"
)

var (
	noiseQuantities []string
	noiseIDs        []string
	noiseFreqs      []string
	noiseBand       string
)

var noiseCmd = &cobra.Command{
	Use:   "noise <netlist>",
	Short: "Evaluate noise densities and RMS noise",
	Long: `Show the total noise amplitude density of each quantity, the quadrature
sum of its independent components. --nid selects single components and
--band fmin:fmax integrates the total density to an RMS value.`,
	Args: cobra.ExactArgs(1),
	RunE: runNoise,
}

func init() {
	noiseCmd.Flags().StringSliceVarP(&noiseQuantities, "quantity", "q", nil, "quantities (default all)")
	noiseCmd.Flags().StringSliceVar(&noiseIDs, "nid", nil, "noise identifiers to show separately")
	noiseCmd.Flags().StringSliceVar(&noiseFreqs, "freq", []string{"1k"}, "frequencies in Hz")
	noiseCmd.Flags().StringVar(&noiseBand, "band", "", "RMS band fmin:fmax in Hz")
	rootCmd.AddCommand(noiseCmd)
}

func parseBand(band string) (float64, float64, error) {
	lo, hi, ok := strings.Cut(band, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid band %q, want fmin:fmax", band)
	}
	fmin, err := netlist.ParseValue(lo)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid band start: %w", err)
	}
	fmax, err := netlist.ParseValue(hi)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid band end: %w", err)
	}
	return fmin, fmax, nil
}

func runNoise(cmd *cobra.Command, args []string) error {
	s, err := analyze(cmd, args[0])
	if err != nil {
		return err
	}
	qs, err := s.quantities(noiseQuantities)
	if err != nil {
		return err
	}
	freqs, err := parseValues(noiseFreqs)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	for _, q := range qs {
		mag, err := s.result.NoiseMagnitude(q)
		if err != nil {
			return err
		}
		for _, f := range freqs {
			w := complex(2*math.Pi*f, 0)
			v, err := mag.Eval(w)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s f=%s total %s\n", q, strings.TrimSpace(util.FormatFrequency(f)), util.FormatDensity(real(v), unit(q)))

			for _, nid := range noiseIDs {
				comp, err := s.result.NoiseComponent(q, device.NoiseID(nid))
				if err != nil {
					return err
				}
				cv, err := comp.Eval(w)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s f=%s %s %s\n", q, strings.TrimSpace(util.FormatFrequency(f)), nid, util.FormatDensity(cmplx.Abs(cv), unit(q)))
			}
		}

		if noiseBand != "" {
			fmin, fmax, err := parseBand(noiseBand)
			if err != nil {
				return err
			}
			rms, err := s.result.NoiseRMS(q, fmin, fmax)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s rms %s..%s %s\n", q, util.FormatValueFactor(fmin, "Hz"), util.FormatValueFactor(fmax, "Hz"), util.FormatValueFactor(rms, unit(q)))
		}
	}
	return nil
}

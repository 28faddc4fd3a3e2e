package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edp1096/toy-lti/pkg/analysis"
	"github.com/edp1096/toy-lti/pkg/expr"
	"github.com/edp1096/toy-lti/pkg/netlist"
	"github.com/edp1096/toy-lti/pkg/util"
)

var (
	responseQuantities []string
	responseDomain     string
	responseTimes      []string
	responseOmega      string
	responseS          []string
)

var responseCmd = &cobra.Command{
	Use:   "response <netlist>",
	Short: "Evaluate the combined response of circuit quantities",
	Long: `Sum the partial responses of each quantity in one domain.

Domains:
  time     value at each --at time (default)
  dc       steady-state dc value
  phasor   phasor at --omega rad/s
  laplace  transform at each --s point, e.g. --s 1+2i`,
	Args: cobra.ExactArgs(1),
	RunE: runResponse,
}

func init() {
	responseCmd.Flags().StringSliceVarP(&responseQuantities, "quantity", "q", nil, "quantities, e.g. 'V(2)' or 'I(R1)' (default all)")
	responseCmd.Flags().StringVar(&responseDomain, "domain", "time", "time, dc, phasor or laplace")
	responseCmd.Flags().StringSliceVar(&responseTimes, "at", []string{"0", "1m"}, "times in seconds")
	responseCmd.Flags().StringVar(&responseOmega, "omega", "0", "angular frequency for phasor responses")
	responseCmd.Flags().StringSliceVar(&responseS, "s", []string{"1"}, "complex frequencies for laplace responses")
	rootCmd.AddCommand(responseCmd)
}

func runResponse(cmd *cobra.Command, args []string) error {
	s, err := analyze(cmd, args[0])
	if err != nil {
		return err
	}
	qs, err := s.quantities(responseQuantities)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch strings.ToLower(responseDomain) {
	case "time":
		times, err := parseValues(responseTimes)
		if err != nil {
			return err
		}
		for _, q := range qs {
			e, err := s.result.Response(q, analysis.Query{Domain: expr.KindTime})
			if err != nil {
				return err
			}
			for _, t := range times {
				v, err := e.At(t)
				if err != nil {
					fmt.Fprintf(out, "%s t=%-12s undefined (%v)\n", q, util.FormatValueFactor(t, "s"), err)
					continue
				}
				fmt.Fprintf(out, "%s t=%-12s %s\n", q, util.FormatValueFactor(t, "s"), util.FormatValueFactor(v, unit(q)))
			}
		}

	case "dc":
		for _, q := range qs {
			e, err := s.result.Response(q, analysis.Query{Domain: expr.KindConstant})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s = %s\n", q, util.FormatValueFactor(real(e.Value()), unit(q)))
		}

	case "phasor":
		omega, err := netlist.ParseValue(responseOmega)
		if err != nil {
			return err
		}
		for _, q := range qs {
			e, err := s.result.Response(q, analysis.Query{Domain: expr.KindPhasor, Omega: omega})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "w=%g %s\n", omega, util.FormatPhasor(q.String(), e.Value()))
		}

	case "laplace":
		points := make([]complex128, 0, len(responseS))
		for _, p := range responseS {
			sv, err := strconv.ParseComplex(strings.TrimSpace(p), 128)
			if err != nil {
				return fmt.Errorf("invalid --s %q: %w", p, err)
			}
			points = append(points, sv)
		}
		for _, q := range qs {
			e, err := s.result.Response(q, analysis.Query{Domain: expr.KindLaplace})
			if err != nil {
				return err
			}
			for _, sv := range points {
				v, err := e.Eval(sv)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s s=%v %v\n", q, sv, v)
			}
		}

	default:
		return fmt.Errorf("unknown domain %q, want time, dc, phasor or laplace", responseDomain)
	}
	return nil
}

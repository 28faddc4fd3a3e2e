package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var modeCmd = &cobra.Command{
	Use:   "mode <netlist>",
	Short: "Show how a circuit is analyzed",
	Long: `Classify the sources of a circuit and show the selected analysis mode,
the source categories and the noise identifiers.`,
	Args: cobra.ExactArgs(1),
	RunE: runMode,
}

func init() {
	rootCmd.AddCommand(modeCmd)
}

func runMode(cmd *cobra.Command, args []string) error {
	s, err := analyze(cmd, args[0])
	if err != nil {
		return err
	}
	actx := s.result.Context()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Circuit: %s\n", s.ckt.Name())
	fmt.Fprintf(out, "Mode: %s\n", actx.Mode())
	fmt.Fprintf(out, "Initial value problem: %v\n", actx.IsInitialValueProblem())
	fmt.Fprintf(out, "Causal: %v\n", actx.IsCausal())
	fmt.Fprintf(out, "DC only: %v\n", actx.IsDC())

	cats := make([]string, 0, len(actx.Categories()))
	for _, c := range actx.Categories() {
		cats = append(cats, c.String())
	}
	fmt.Fprintf(out, "Categories: %s\n", strings.Join(cats, ", "))

	if actx.HasNoise() {
		ids := make([]string, 0, len(actx.NoiseIDs()))
		for _, nid := range actx.NoiseIDs() {
			ids = append(ids, string(nid))
		}
		fmt.Fprintf(out, "Noise: %s\n", strings.Join(ids, ", "))
	}

	fmt.Fprintln(out, "\nSource parts:")
	fmt.Fprintln(out, "-------------")
	for _, p := range actx.Parts() {
		fmt.Fprintf(out, "%-12s %-10s %-14s %s\n", p.PartRef, p.Category, p.Key(), p.Waveform.Text)
	}
	return nil
}

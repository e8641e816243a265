package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/sirddft/internal/analysis"
	"github.com/san-kum/sirddft/internal/storage"
)

func newPhaseCmd() *cobra.Command {
	var (
		xField string
		yField string
	)
	cmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase plot of two compartment totals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := args[0]
			st := storage.New(dataDir)
			meta, err := st.Load(runID)
			if err != nil {
				return err
			}
			_, frames, err := st.LoadFrames(runID)
			if err != nil {
				return err
			}
			p, err := analysis.NewPhasePortrait(frames, xField, yField)
			if err != nil {
				return err
			}

			fmt.Printf("phase space plot: %s\n", meta.ID)
			fmt.Printf("model: %s\n", meta.Model)
			fmt.Printf("x-axis: %s, y-axis: %s\n\n", xField, yField)

			minX, maxX, minY, maxY := p.Bounds()
			const width, height = 70, 20
			fmt.Printf("  %10.4g ┌%s┐\n", maxY, strings.Repeat("─", width))
			for _, line := range strings.Split(strings.TrimSuffix(p.ASCII(width, height), "\n"), "\n") {
				fmt.Printf("  %10s │%s│\n", "", line)
			}
			fmt.Printf("  %10.4g └%s┘\n", minY, strings.Repeat("─", width))
			fmt.Printf("  %10s  %-10.4g%*s%10.4g\n", "", minX, width-20, "", maxX)
			fmt.Printf("\nLegend: . = early, o = middle, ● = late\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&xField, "x", "S", "field on the x-axis")
	cmd.Flags().StringVar(&yField, "y", "I", "field on the y-axis")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var fraction float64
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "peak, final size and early growth of every compartment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := args[0]
			st := storage.New(dataDir)
			cfg, err := st.LoadConfig(runID)
			if err != nil {
				return err
			}
			fields, frames, err := st.LoadFrames(runID)
			if err != nil {
				return err
			}

			fmt.Printf("run: %s (%s)\n\n", runID, cfg.Model)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FIELD\tINITIAL\tPEAK\tPEAK T\tFINAL\tGROWTH\tDOUBLING")
			var infected *analysis.Summary
			for _, name := range fields {
				s, err := analysis.Summarize(frames, name, fraction)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%g\t%.6g\t%.4g\t%.4g\n",
					name, s.Initial, s.Peak, s.PeakTime, s.Final, s.GrowthRate, s.Doubling)
				if name == "I" {
					infected = &s
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if infected != nil && !math.IsNaN(infected.GrowthRate) {
				removal := cfg.SIR.RecoveryRate + cfg.SIR.MortalityRate
				fmt.Printf("\nR0 from early growth: %.4g\n", analysis.ReproductionNumber(infected.GrowthRate, removal))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&fraction, "fraction", 0.05, "fit the growth rate until this fraction of the peak")
	return cmd
}

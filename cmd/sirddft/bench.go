package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/sirddft/internal/config"
	"github.com/san-kum/sirddft/internal/experiment"
)

func newBenchCmd() *cobra.Command {
	var (
		preset  string
		sizes   []int
		threads []int
		frames  int
	)
	cmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "time a model over grid sizes and thread counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := args[0]
			base := config.GetPreset(model, preset)
			if base == nil {
				presets := config.ListPresets(model)
				if preset != "" || len(presets) == 0 {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, presets)
				}
				base = config.GetPreset(model, presets[0])
			}
			base.Frames = frames
			base.Stop = config.StopConfig{}
			if model == "sir" {
				sizes = []int{base.Grid.N}
			}

			registry := experiment.NewRegistry()
			fmt.Printf("benchmarking %s, %d frames of %g\n\n", model, frames, base.FrameDuration)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "N\tTHREADS\tSTEPS\tEVALS\tTIME\tEVALS/SEC")

			for _, n := range sizes {
				for _, th := range threads {
					cfg := base.Clone()
					cfg.Grid.N = n
					cfg.Grid.NY = 0
					cfg.Threads = th

					exp := experiment.New(cfg, registry, log)
					if err := exp.Setup(); err != nil {
						return err
					}
					start := time.Now()
					result, err := exp.Run(cmd.Context())
					if err != nil {
						return err
					}
					elapsed := time.Since(start)

					evals := result.Stats.Evaluations
					fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%v\t%.0f\n",
						n, th, result.Stats.Steps, evals, elapsed.Round(time.Microsecond), float64(evals)/elapsed.Seconds())
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "preset to start from (default: first preset of the model)")
	cmd.Flags().IntSliceVar(&sizes, "n", []int{32, 64, 128}, "grid points per axis")
	cmd.Flags().IntSliceVar(&threads, "threads", []int{1, 2, 4}, "thread counts")
	cmd.Flags().IntVar(&frames, "frames", 5, "frames per run")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var (
		preset string
		frames int
		dt     float64
	)
	cmd := &cobra.Command{
		Use:   "compare [model] [solver1] [solver2] ...",
		Short: "compare solvers on the same model",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, solvers := args[0], args[1:]
			base := config.DefaultConfig()
			base.Model = model
			if preset != "" {
				base = config.GetPreset(model, preset)
				if base == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
				}
			}
			if cmd.Flags().Changed("frames") {
				base.Frames = frames
			}

			registry := experiment.NewRegistry()
			fields, err := registry.Fields(model)
			if err != nil {
				return err
			}

			fmt.Printf("comparing solvers for %s (%d frames of %g)\n\n", model, base.Frames, base.FrameDuration)
			header := fmt.Sprintf("%-8s", "solver")
			for _, f := range fields {
				header += fmt.Sprintf("  %-12s", "final_"+f)
			}
			header += fmt.Sprintf("  %-8s  %-10s", "steps", "time_ms")
			fmt.Println(header)
			fmt.Println(strings.Repeat("-", len(header)))

			for _, name := range solvers {
				cfg := base.Clone()
				cfg.Solver = config.SolverConfig{Name: name, Dt: dt}

				start := time.Now()
				result, err := experiment.New(cfg, registry, log).Run(cmd.Context())
				elapsed := time.Since(start)
				if err != nil {
					fmt.Printf("%-8s  error: %v\n", name, err)
					continue
				}

				line := fmt.Sprintf("%-8s", name)
				final := result.Final()
				for _, f := range fields {
					line += fmt.Sprintf("  %12.6g", final.Totals[f])
				}
				line += fmt.Sprintf("  %8d  %10.2f", result.Stats.Steps, float64(elapsed.Microseconds())/1000)
				fmt.Println(line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "preset to start from")
	cmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "number of frames")
	cmd.Flags().Float64Var(&dt, "dt", 0, "initial or fixed step size (0 keeps each solver's default)")
	return cmd
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "list models and solvers",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := experiment.NewRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tFIELDS\tPRESETS")
			for _, m := range registry.ListModels() {
				fields, _ := registry.Fields(m)
				fmt.Fprintf(w, "%s\t%s\t%s\n", m, strings.Join(fields, ","), strings.Join(config.ListPresets(m), ","))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\nsolvers: %s\n", strings.Join(registry.ListSolvers(), ", "))
			return nil
		},
	}
}

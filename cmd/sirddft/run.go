package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/sirddft/internal/config"
	"github.com/san-kum/sirddft/internal/experiment"
	"github.com/san-kum/sirddft/internal/sim"
	"github.com/san-kum/sirddft/internal/storage"
	"github.com/san-kum/sirddft/internal/tui"
)

type runFlags struct {
	configFile    string
	preset        string
	frames        int
	frameDuration float64
	threads       int
	gridPoints    int
	solver        string
	eps0          float64
	dt            float64
	ninePoint     bool
	sets          []string
	live          bool
	noSave        bool
	saveConfig    string
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation",
		Long: `Run a simulation. The configuration starts from the defaults, a preset
(--preset) or a YAML file (--config); flags and --set overrides apply on top.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f, args)
			if err != nil {
				return err
			}
			return runSimulation(cmd.Context(), cfg, f)
		},
	}
	cmd.Flags().StringVar(&f.configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&f.preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&f.frames, "frames", config.DefaultFrames, "number of frames")
	cmd.Flags().Float64Var(&f.frameDuration, "frame-duration", config.DefaultFrameDuration, "simulated time per frame")
	cmd.Flags().IntVar(&f.threads, "threads", config.DefaultThreads, "worker threads for the spatial models")
	cmd.Flags().IntVar(&f.gridPoints, "n", config.DefaultGridPoints, "grid points per axis")
	cmd.Flags().StringVar(&f.solver, "solver", "rkf45", "solver (rkf45, rk4, euler)")
	cmd.Flags().Float64Var(&f.eps0, "eps0", 0, "rkf45 error tolerance (0 keeps the default)")
	cmd.Flags().Float64Var(&f.dt, "dt", 0, "initial or fixed step size (0 keeps the default)")
	cmd.Flags().BoolVar(&f.ninePoint, "nine-point", false, "use the nine-point Laplacian in 2D")
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "override a parameter, e.g. --set sir.recovery_rate=0.2")
	cmd.Flags().BoolVar(&f.live, "tui", false, "show live progress")
	cmd.Flags().BoolVar(&f.noSave, "no-save", false, "do not store the run")
	cmd.Flags().StringVar(&f.saveConfig, "save-config", "", "write the resolved config to this file and exit")
	return cmd
}

// resolveConfig layers config file or preset, then flags, then --set.
func resolveConfig(cmd *cobra.Command, f *runFlags, args []string) (*config.Config, error) {
	model := ""
	if len(args) == 1 {
		model = args[0]
	}

	var cfg *config.Config
	switch {
	case f.configFile != "":
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if model != "" {
			cfg.Model = model
		}
	case f.preset != "":
		if model == "" {
			return nil, fmt.Errorf("--preset needs a model")
		}
		cfg = config.GetPreset(model, f.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets(model))
		}
	default:
		cfg = config.DefaultConfig()
		if model != "" {
			cfg.Model = model
		}
	}

	flags := cmd.Flags()
	if flags.Changed("frames") {
		cfg.Frames = f.frames
	}
	if flags.Changed("frame-duration") {
		cfg.FrameDuration = f.frameDuration
	}
	if flags.Changed("threads") {
		cfg.Threads = f.threads
	}
	if flags.Changed("n") {
		cfg.Grid.N = f.gridPoints
		cfg.Grid.NY = 0
	}
	if flags.Changed("solver") {
		cfg.Solver.Name = f.solver
	}
	if flags.Changed("eps0") {
		cfg.Solver.Eps0 = f.eps0
	}
	if flags.Changed("dt") {
		cfg.Solver.Dt = f.dt
	}
	if flags.Changed("nine-point") {
		cfg.NinePoint = f.ninePoint
	}
	if err := applySets(cfg, f.sets); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func applySets(cfg *config.Config, sets []string) error {
	for _, kv := range sets {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--set %q: want key=value", kv)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("--set %q: %w", kv, err)
		}
		if err := cfg.Set(strings.TrimSpace(key), v); err != nil {
			return err
		}
	}
	return nil
}

func runSimulation(parent context.Context, cfg *config.Config, f *runFlags) error {
	if f.saveConfig != "" {
		if err := config.Save(f.saveConfig, cfg); err != nil {
			return err
		}
		fmt.Printf("config written to %s\n", f.saveConfig)
		return nil
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	if f.live && logFile == "" {
		if err := setupLogger(logLevel, filepath.Join(dataDir, "sirddft.log")); err != nil {
			return err
		}
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg, registry, log)
	if err := exp.Setup(); err != nil {
		return err
	}
	fields, err := registry.Fields(cfg.Model)
	if err != nil {
		return err
	}

	log.WithField("model", cfg.Model).Infof("running %d frames of %g", cfg.Frames, cfg.FrameDuration)
	start := time.Now()

	var result *sim.Result
	var runErr error
	if f.live {
		result, runErr = tui.Run(ctx, cfg.Model, fields, previewField(fields), exp.Simulator(), exp.SimConfig())
	} else {
		fmt.Printf("running %s simulation...\n", cfg.Model)
		result, runErr = exp.Run(ctx)
	}
	elapsed := time.Since(start)
	if result == nil {
		return runErr
	}

	runID := ""
	if !f.noSave {
		st := storage.New(dataDir)
		runID, err = st.Save(storage.Run{
			Config: cfg,
			Result: result,
			Final:  exp.Model().Snapshot(),
			Err:    runErr,
		})
		if err != nil {
			return err
		}
	}

	printSummary(cfg, result, fields, elapsed, runID)
	return runErr
}

// previewField picks the compartment shown in the live density map.
func previewField(fields []string) string {
	for _, name := range []string{"I", "Z"} {
		if slices.Contains(fields, name) {
			return name
		}
	}
	if len(fields) > 0 {
		return fields[0]
	}
	return ""
}

func printSummary(cfg *config.Config, result *sim.Result, fields []string, elapsed time.Duration, runID string) {
	final := result.Final()
	fmt.Printf("%s in %v (%s)\n", result.Reason, elapsed.Round(time.Millisecond), cfg.Solver.Name)
	if runID != "" {
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("frames: %d  t=%g  steps: %d  rejected: %d  evaluations: %d\n",
		len(result.Frames)-1, final.Time, result.Stats.Steps, result.Stats.Rejected, result.Stats.Evaluations)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nFIELD\tINITIAL\tFINAL")
	initial := result.Frames[0]
	for _, name := range fields {
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\n", name, initial.Totals[name], final.Totals[name])
	}
	w.Flush()

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/sirddft/internal/analysis"
	"github.com/san-kum/sirddft/internal/config"
	"github.com/san-kum/sirddft/internal/experiment"
	"github.com/san-kum/sirddft/internal/sim"
	"github.com/san-kum/sirddft/internal/storage"
)

func newScanCmd() *cobra.Command {
	var (
		file    string
		jobs    int
		threads int
		sets    []string
		noSave  bool
		dryRun  bool
		best    string
		most    bool
	)
	cmd := &cobra.Command{
		Use:   "scan [name]",
		Short: "run a parameter scan",
		Long: `Run every point of a parameter scan concurrently. The scan is either one of
the built-in scans (see "presets") or a YAML file given with --file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var scan *config.Scan
			switch {
			case file != "":
				loaded, err := config.LoadScan(file)
				if err != nil {
					return err
				}
				scan = loaded
			case len(args) == 1:
				s, ok := config.Scans[args[0]]
				if !ok {
					return fmt.Errorf("unknown scan: %s (available: %v)", args[0], config.ListScans())
				}
				scan = s
			default:
				return fmt.Errorf("need a scan name or --file")
			}

			base, err := scan.Base()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("threads") {
				base.Threads = threads
			}
			if err := applySets(base, sets); err != nil {
				return err
			}
			points, err := scan.Points(base)
			if err != nil {
				return err
			}

			limit := scan.Jobs
			if cmd.Flags().Changed("jobs") {
				limit = jobs
			}
			fmt.Printf("scan %s/%s: %d points, %d in flight\n", scan.Model, scan.Preset, len(points), limit)
			if dryRun {
				for _, p := range points {
					fmt.Println("  " + p.Name)
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			configs := make(map[string]*config.Config, len(points))
			for _, p := range points {
				configs[p.Name] = p.Config
			}
			name := scanName(scan, args, file)

			st := storage.New(dataDir)
			var (
				mu       sync.Mutex
				finished int
				saveErr  error
			)
			done := func(o sim.Outcome) {
				mu.Lock()
				defer mu.Unlock()
				finished++
				entry := log.WithField("job", o.Job)
				if o.Err != nil {
					entry.WithError(o.Err).Warn("scan: job failed")
				}
				status := "ok"
				if o.Err != nil {
					status = "failed"
				}
				fmt.Printf("[%d/%d] %s %s\n", finished, len(points), o.Job, status)
				if noSave || o.Result == nil {
					return
				}
				_, err := st.Save(storage.Run{
					Config: configs[o.Job],
					Result: o.Result,
					Final:  o.Final,
					Scan:   name,
					Params: o.Params,
					Err:    o.Err,
				})
				if err != nil && saveErr == nil {
					saveErr = err
				}
			}

			start := time.Now()
			outcomes, err := sim.Scan(ctx, experiment.JobsFor(points, experiment.NewRegistry(), log), limit, done)
			fmt.Printf("\nscan finished in %v\n", time.Since(start).Round(time.Millisecond))
			printOutcomes(scan, outcomes)
			if err != nil {
				return err
			}
			if best != "" {
				o, v, err := analysis.Best(outcomes, best, most)
				if err != nil {
					return err
				}
				fmt.Printf("\nbest %s = %.6g at %s\n", best, v, formatParams(o.Params))
			}
			return saveErr
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "scan definition (yaml)")
	cmd.Flags().IntVar(&jobs, "jobs", 0, "runs in flight (0 uses the number of CPUs)")
	cmd.Flags().IntVar(&threads, "threads", config.DefaultThreads, "worker threads per run")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "override a base parameter, e.g. --set grid.n=64")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only list the scan points")
	cmd.Flags().StringVar(&best, "best", "", "report the point minimising this metric, e.g. peak_I")
	cmd.Flags().BoolVar(&most, "maximize", false, "report the maximum of --best instead")
	return cmd
}

// scanName tags stored runs so that "list --scan" can find them.
func scanName(scan *config.Scan, args []string, file string) string {
	if len(args) == 1 {
		return args[0]
	}
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return fmt.Sprintf("%s-%s", base, time.Now().Format("20060102-150405"))
}

func printOutcomes(scan *config.Scan, outcomes []sim.Outcome) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := "JOB"
	for _, a := range scan.Axes {
		header += "\t" + a.Label()
	}
	fmt.Fprintln(w, header+"\tREASON\tFINAL T\tSTEPS")
	for _, o := range outcomes {
		if o.Job == "" {
			continue
		}
		line := o.Job
		for _, a := range scan.Axes {
			line += fmt.Sprintf("\t%g", o.Params[a.Label()])
		}
		if o.Result == nil {
			fmt.Fprintf(w, "%s\t%s\t-\t-\n", line, sim.Failed)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%d\n", line, o.Result.Reason, o.Result.Final().Time, o.Result.Stats.Steps)
	}
	w.Flush()
}

package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/sirddft/internal/storage"
	"github.com/san-kum/sirddft/internal/tui"
)

var plotColors = map[string]asciigraph.AnsiColor{
	"S": asciigraph.Green,
	"I": asciigraph.Red,
	"R": asciigraph.Blue,
	"Z": asciigraph.Magenta,
}

func newListCmd() *cobra.Command {
	var scan string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMODEL\tTIME\tFRAMES\tFINAL T\tSOLVER\tSTEPS\tREASON\tPARAMS")
			for _, run := range runs {
				if scan != "" && run.Scan != scan {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%s\t%d\t%s\t%s\n",
					run.ID,
					run.Model,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Frames,
					run.FinalTime,
					run.Solver,
					run.Stats.Steps,
					run.Reason,
					formatParams(run.Params),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&scan, "scan", "", "only list runs of this scan")
	return cmd
}

func formatParams(params map[string]float64) string {
	if len(params) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(params))
	for k, v := range params {
		parts = append(parts, fmt.Sprintf("%s=%g", k, v))
	}
	slices.Sort(parts)
	return strings.Join(parts, " ")
}

func newPlotCmd() *cobra.Command {
	var (
		height int
		width  int
		field  string
	)
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot compartment totals over time, or the final density of a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := args[0]
			st := storage.New(dataDir)
			meta, err := st.Load(runID)
			if err != nil {
				return err
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("model: %s\n", meta.Model)

			if field != "" {
				return plotField(st, runID, field)
			}

			fields, frames, err := st.LoadFrames(runID)
			if err != nil {
				return err
			}
			if len(frames) < 2 {
				return fmt.Errorf("no data to plot")
			}
			fmt.Printf("frames: %d  t=[%g, %g]\n\n", len(frames), frames[0].Time, frames[len(frames)-1].Time)

			series := make([][]float64, len(fields))
			colors := make([]asciigraph.AnsiColor, len(fields))
			for i, name := range fields {
				series[i] = make([]float64, len(frames))
				for j, fr := range frames {
					series[i][j] = fr.Totals[name]
				}
				colors[i] = plotColors[name]
			}

			graph := asciigraph.PlotMany(series,
				asciigraph.Height(height),
				asciigraph.Width(width),
				asciigraph.SeriesColors(colors...),
				asciigraph.SeriesLegends(fields...),
				asciigraph.Caption("compartment totals vs frame"),
			)
			fmt.Println(graph)
			return nil
		},
	}
	cmd.Flags().IntVar(&height, "height", 15, "graph height")
	cmd.Flags().IntVar(&width, "width", 80, "graph width")
	cmd.Flags().StringVar(&field, "field", "", "show the final density of this field instead")
	return cmd
}

func plotField(st *storage.Store, runID, field string) error {
	snap, err := st.LoadSnapshot(runID)
	if err != nil {
		return err
	}
	values, ok := snap.Field(field)
	if !ok {
		return fmt.Errorf("run %s has no field %q", runID, field)
	}
	fmt.Printf("field: %s  total: %.6g\n\n", field, snap.Totals()[field])

	switch len(snap.Shape) {
	case 2:
		rows, err := snap.Rows(field)
		if err != nil {
			return err
		}
		for _, line := range tui.Heatmap(tui.Downsample(rows, 64, 32)) {
			fmt.Println(tui.FieldStyle(field).Render(line))
		}
	case 1:
		fmt.Println(asciigraph.Plot(values,
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption(field+"(x)"),
		))
	default:
		fmt.Printf("%s = %.6g\n", field, values[0])
	}
	return nil
}

func newExportCmd() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data as JSON or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := storage.New(dataDir).Export(args[0])
			if err != nil {
				return err
			}

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			switch format {
			case "json":
				return storage.ExportJSON(out, data)
			case "csv":
				return storage.ExportCSV(out, data)
			default:
				return fmt.Errorf("unknown format %q (json, csv)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format (json, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

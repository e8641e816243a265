// Package metrics provides frame observers that summarise a run: field
// totals, peaks, population drift and positivity.
package metrics

import "github.com/san-kum/sirddft/internal/sim"

// Default returns the metrics recorded for every run of a model with the
// given field names.
func Default(fields []string) []sim.Metric {
	out := make([]sim.Metric, 0, 2*len(fields)+2)
	for _, f := range fields {
		out = append(out, NewTotal(f), NewPeak(f))
	}
	return append(out, NewDrift(), NewPositivity(1e-9))
}

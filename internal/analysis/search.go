package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/sirddft/internal/sim"
)

// Best returns the successful scan outcome with the smallest value of
// metric, or the largest when maximize is set. Failed outcomes are skipped.
func Best(outcomes []sim.Outcome, metric string, maximize bool) (sim.Outcome, float64, error) {
	best := math.Inf(1)
	if maximize {
		best = math.Inf(-1)
	}
	found := -1
	for i, o := range outcomes {
		if o.Err != nil || o.Result == nil {
			continue
		}
		val, ok := o.Result.Metrics[metric]
		if !ok || math.IsNaN(val) {
			continue
		}
		if (maximize && val > best) || (!maximize && val < best) {
			best, found = val, i
		}
	}
	if found < 0 {
		return sim.Outcome{}, 0, fmt.Errorf("analysis: no outcome reports metric %q", metric)
	}
	return outcomes[found], best, nil
}

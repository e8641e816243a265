package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sirddft/internal/sim"
)

// ErrNoGrowth indicates too few growing frames to fit a rate.
var ErrNoGrowth = errors.New("analysis: not enough frames in the growth phase")

// Summary describes the course of one compartment.
type Summary struct {
	Field    string  `json:"field"`
	Initial  float64 `json:"initial"`
	Final    float64 `json:"final"`
	Peak     float64 `json:"peak"`
	PeakTime float64 `json:"peak_time"`
	// GrowthRate is the exponential rate fitted over the early frames, NaN
	// if it could not be fitted.
	GrowthRate float64 `json:"growth_rate"`
	// Doubling is ln 2 / GrowthRate, +Inf for a declining compartment.
	Doubling float64 `json:"doubling"`
}

// Summarize describes field over frames. The growth rate is fitted over the
// frames until the total first reaches fraction of its peak.
func Summarize(frames []sim.Frame, field string, fraction float64) (Summary, error) {
	if len(frames) == 0 {
		return Summary{}, fmt.Errorf("analysis: no frames")
	}
	if _, ok := frames[0].Totals[field]; !ok {
		return Summary{}, fmt.Errorf("analysis: no field %q", field)
	}

	times := make([]float64, len(frames))
	values := make([]float64, len(frames))
	for i, f := range frames {
		times[i] = f.Time
		values[i] = f.Totals[field]
	}

	s := Summary{
		Field:    field,
		Initial:  values[0],
		Final:    values[len(values)-1],
		Peak:     values[0],
		PeakTime: times[0],
	}
	for i, v := range values {
		if v > s.Peak {
			s.Peak, s.PeakTime = v, times[i]
		}
	}

	rate, err := GrowthRate(times, values, fraction*s.Peak)
	switch {
	case err == nil:
		s.GrowthRate = rate
	case errors.Is(err, ErrNoGrowth):
		s.GrowthRate = math.NaN()
	default:
		return s, err
	}
	s.Doubling = math.Inf(1)
	if s.GrowthRate > 0 {
		s.Doubling = math.Ln2 / s.GrowthRate
	}
	return s, nil
}

// GrowthRate fits values ~ exp(rate * t) by least squares on the log over
// the leading positive values, up to and including the first one that
// reaches limit.
func GrowthRate(times, values []float64, limit float64) (float64, error) {
	if len(times) != len(values) {
		return 0, fmt.Errorf("analysis: %d times but %d values", len(times), len(values))
	}
	var ts, logs []float64
	for i, v := range values {
		if !(v > 0) {
			break
		}
		ts = append(ts, times[i])
		logs = append(logs, math.Log(v))
		if v >= limit {
			break
		}
	}
	if len(ts) < 3 {
		return 0, fmt.Errorf("%w: %d usable", ErrNoGrowth, len(ts))
	}
	_, beta := stat.LinearRegression(ts, logs, nil, false)
	return beta, nil
}

// ReproductionNumber is the basic reproduction number implied by an early
// growth rate when infected leave the compartment at rate removal (recovery
// plus mortality): R0 = 1 + rate/removal.
func ReproductionNumber(rate, removal float64) float64 {
	if removal <= 0 {
		return math.Inf(1)
	}
	return 1 + rate/removal
}

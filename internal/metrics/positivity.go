package metrics

import "github.com/san-kum/sirddft/internal/sir"

// Positivity is the fraction of frames in which every density stays above
// -tolerance. Explicit schemes can undershoot zero near steep fronts.
type Positivity struct {
	name       string
	tolerance  float64
	violations int
	samples    int
}

func NewPositivity(tolerance float64) *Positivity {
	return &Positivity{
		name:      "positivity",
		tolerance: tolerance,
	}
}

func (m *Positivity) Name() string { return m.name }

func (m *Positivity) Observe(t float64, snap sir.Snapshot) {
	m.samples++
	for _, f := range snap.Fields() {
		if hasNegative(f.Values, m.tolerance) {
			m.violations++
			return
		}
	}
}

func hasNegative(v []float64, tol float64) bool {
	for _, x := range v {
		if x < -tol {
			return true
		}
	}
	return false
}

func (m *Positivity) Value() float64 {
	if m.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(m.violations)/float64(m.samples)
}

func (m *Positivity) Reset() {
	m.violations = 0
	m.samples = 0
}

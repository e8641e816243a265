package metrics

import (
	"math"

	"github.com/san-kum/sirddft/internal/sir"
)

// Total records the integrated population of one field at the latest frame.
type Total struct {
	name  string
	field string
	value float64
}

func NewTotal(field string) *Total {
	return &Total{name: "total_" + field, field: field}
}

func (m *Total) Name() string { return m.name }

func (m *Total) Observe(t float64, snap sir.Snapshot) {
	if v, ok := sir.Totals(snap)[m.field]; ok {
		m.value = v
	}
}

func (m *Total) Value() float64 { return m.value }

func (m *Total) Reset() { m.value = 0 }

// Peak tracks the largest total a field reaches and when it happens.
type Peak struct {
	name    string
	field   string
	peak    float64
	at      float64
	samples int
}

func NewPeak(field string) *Peak {
	return &Peak{name: "peak_" + field, field: field}
}

func (m *Peak) Name() string { return m.name }

func (m *Peak) Observe(t float64, snap sir.Snapshot) {
	v, ok := sir.Totals(snap)[m.field]
	if !ok {
		return
	}
	if m.samples == 0 || v > m.peak {
		m.peak = v
		m.at = t
	}
	m.samples++
}

func (m *Peak) Value() float64 { return m.peak }

// Time returns the time of the peak.
func (m *Peak) Time() float64 { return m.at }

func (m *Peak) Reset() {
	m.peak = 0
	m.at = 0
	m.samples = 0
}

// Drift is the largest relative deviation of the total population from its
// value at the first observed frame. Without mortality every model conserves
// the population, so this measures integration error.
type Drift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift() *Drift {
	return &Drift{name: "population_drift"}
}

func (m *Drift) Name() string { return m.name }

func (m *Drift) Observe(t float64, snap sir.Snapshot) {
	p := sir.Population(snap)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++

	if m.initial != 0 {
		m.maxDrift = math.Max(m.maxDrift, math.Abs(p-m.initial)/math.Abs(m.initial))
	}
}

func (m *Drift) Value() float64 { return m.maxDrift }

func (m *Drift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}

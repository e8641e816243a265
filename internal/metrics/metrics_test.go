package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/sirddft/internal/grid"
	"github.com/san-kum/sirddft/internal/sir"
)

func TestTotalAndPeak(t *testing.T) {
	total := NewTotal("I")
	peak := NewPeak("I")

	frames := []struct {
		t float64
		s sir.State
	}{
		{0, sir.State{S: 0.9, I: 0.1}},
		{1, sir.State{S: 0.6, I: 0.3, R: 0.1}},
		{2, sir.State{S: 0.5, I: 0.2, R: 0.3}},
	}
	for _, f := range frames {
		total.Observe(f.t, f.s)
		peak.Observe(f.t, f.s)
	}

	if total.Name() != "total_I" || total.Value() != 0.2 {
		t.Errorf("%s = %v, want 0.2", total.Name(), total.Value())
	}
	if peak.Value() != 0.3 || peak.Time() != 1 {
		t.Errorf("peak = %v at t=%v, want 0.3 at t=1", peak.Value(), peak.Time())
	}

	peak.Reset()
	if peak.Value() != 0 || peak.Time() != 0 {
		t.Error("expected zero peak after reset")
	}
}

func TestPeakIgnoresUnknownField(t *testing.T) {
	peak := NewPeak("Z")
	peak.Observe(0, sir.State{S: 1})
	if peak.Value() != 0 {
		t.Errorf("peak of missing field = %v", peak.Value())
	}
}

func TestDrift(t *testing.T) {
	d := NewDrift()
	d.Observe(0, sir.State{S: 0.9, I: 0.1})
	d.Observe(1, sir.State{S: 0.5, I: 0.3, R: 0.2})
	if d.Value() > 1e-15 {
		t.Errorf("conserved population drifted by %v", d.Value())
	}

	d.Observe(2, sir.State{S: 0.5, I: 0.2, R: 0.2})
	if math.Abs(d.Value()-0.1) > 1e-12 {
		t.Errorf("drift = %v, want 0.1", d.Value())
	}

	d.Reset()
	if d.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestPositivity(t *testing.T) {
	g, _ := grid.NewEquidistant(0, 1, 4)
	ok := sir.NewSpatial1D(g, func(float64) (float64, float64, float64) { return 1, 0, 0 })
	bad := sir.NewSpatial1D(g, func(x float64) (float64, float64, float64) { return 1, -x, 0 })

	p := NewPositivity(1e-6)
	if p.Value() != 1 {
		t.Error("expected 1 without samples")
	}
	p.Observe(0, ok)
	p.Observe(1, bad)
	if p.Value() != 0.5 {
		t.Errorf("positivity = %v, want 0.5", p.Value())
	}
}

func TestDefault(t *testing.T) {
	ms := Default([]string{"S", "Z"})
	names := map[string]bool{}
	for _, m := range ms {
		names[m.Name()] = true
	}
	for _, want := range []string{"total_S", "peak_Z", "population_drift", "positivity"} {
		if !names[want] {
			t.Errorf("missing metric %s", want)
		}
	}
}

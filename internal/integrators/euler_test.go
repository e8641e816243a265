package integrators

import (
	"math"
	"testing"
)

func TestEulerDecay(t *testing.T) {
	p := newTestProblem(0, []float64{1}, 1, decay)
	stats, err := NewEuler().Integrate(p)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.t-1) > 1e-12 {
		t.Errorf("final time = %v, want 1", p.t)
	}
	if math.Abs(p.y[0]-math.Exp(-1)) > 1e-3 {
		t.Errorf("y(1) = %v, want %v", p.y[0], math.Exp(-1))
	}
	if stats.Steps < 1000 || stats.Steps > 1001 {
		t.Errorf("steps = %d, want about 1000", stats.Steps)
	}
	if stats.Evaluations != stats.Steps {
		t.Errorf("evaluations = %d, want %d", stats.Evaluations, stats.Steps)
	}
}

func TestEulerShortensLastStep(t *testing.T) {
	p := newTestProblem(0, []float64{1}, 0.25, decay)
	stats, err := NewEuler(WithDt(0.1)).Integrate(p)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Steps != 3 {
		t.Errorf("steps = %d, want 3", stats.Steps)
	}
	if math.Abs(stats.LastDt-0.05) > 1e-12 {
		t.Errorf("last dt = %v, want 0.05", stats.LastDt)
	}
	want := 0.9 * 0.9 * 0.95
	if math.Abs(p.y[0]-want) > 1e-12 {
		t.Errorf("y = %v, want %v", p.y[0], want)
	}
}

func TestRK4Accuracy(t *testing.T) {
	p := newTestProblem(0, []float64{1, 0}, 1, oscillator)
	if _, err := NewRK4().Integrate(p); err != nil {
		t.Fatal(err)
	}

	if math.Abs(p.y[0]-math.Cos(1)) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", p.y[0], math.Cos(1))
	}
	if math.Abs(p.y[1]+math.Sin(1)) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", p.y[1], -math.Sin(1))
	}
}

package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/sirddft/internal/integrators"
	"github.com/san-kum/sirddft/internal/models"
	"github.com/san-kum/sirddft/internal/sim"
	"github.com/san-kum/sirddft/internal/sir"
)

func series(field string, values ...float64) []sim.Frame {
	frames := make([]sim.Frame, len(values))
	for i, v := range values {
		frames[i] = sim.Frame{Index: i, Time: float64(i), Totals: map[string]float64{field: v, "S": 1 - v}}
	}
	return frames
}

func TestGrowthRateExact(t *testing.T) {
	times := []float64{0, 0.5, 1, 1.5, 2, 2.5}
	values := make([]float64, len(times))
	for i, tt := range times {
		values[i] = 1e-3 * math.Exp(0.7*tt)
	}

	got, err := GrowthRate(times, values, math.Inf(1))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-0.7) > 1e-12 {
		t.Errorf("GrowthRate = %v, want 0.7", got)
	}

	// the limit cuts the fit window
	if _, err := GrowthRate(times, values, values[1]); !errors.Is(err, ErrNoGrowth) {
		t.Errorf("expected ErrNoGrowth, got %v", err)
	}
	if _, err := GrowthRate(times, values[:2], 1); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestSummarize(t *testing.T) {
	frames := series("I", 0.1, 0.2, 0.4, 0.3, 0.1)
	s, err := Summarize(frames, "I", 1)
	if err != nil {
		t.Fatal(err)
	}
	if s.Peak != 0.4 || s.PeakTime != 2 || s.Initial != 0.1 || s.Final != 0.1 {
		t.Errorf("unexpected summary %+v", s)
	}
	if math.Abs(s.GrowthRate-math.Ln2) > 1e-12 || math.Abs(s.Doubling-1) > 1e-12 {
		t.Errorf("growth %v doubling %v, want ln2 and 1", s.GrowthRate, s.Doubling)
	}

	declining := series("I", 0.4, 0.3)
	s, err = Summarize(declining, "I", 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(s.GrowthRate) || !math.IsInf(s.Doubling, 1) {
		t.Errorf("declining series: growth %v doubling %v", s.GrowthRate, s.Doubling)
	}

	if _, err := Summarize(frames, "Z", 0.5); err == nil {
		t.Error("expected error for unknown field")
	}
	if _, err := Summarize(nil, "I", 0.5); err == nil {
		t.Error("expected error for no frames")
	}
}

func TestReproductionNumberFromSIRRun(t *testing.T) {
	params := sir.NewSIRParameters(1, 0.2)
	m, err := models.NewSIR(params, sir.State{S: 0.999, I: 0.001})
	if err != nil {
		t.Fatal(err)
	}
	result, err := sim.New(m, integrators.NewRKF45()).Run(context.Background(), sim.Config{Frames: 60, FrameDuration: 0.3})
	if err != nil {
		t.Fatal(err)
	}

	s, err := Summarize(result.Frames, "I", 0.05)
	if err != nil {
		t.Fatal(err)
	}
	r0 := ReproductionNumber(s.GrowthRate, params.RecoveryRate+params.MortalityRate)
	want := params.InfectionParameter / params.RecoveryRate
	if math.Abs(r0-want) > 0.3 {
		t.Errorf("R0 = %v, want about %v", r0, want)
	}

	if got := ReproductionNumber(1, 0); !math.IsInf(got, 1) {
		t.Errorf("ReproductionNumber without removal = %v", got)
	}
}

func TestPhasePortrait(t *testing.T) {
	frames := series("I", 0, 0.5, 1)
	p, err := NewPhasePortrait(frames, "S", "I")
	if err != nil {
		t.Fatal(err)
	}
	minX, maxX, minY, maxY := p.Bounds()
	if minX != 0 || maxX != 1 || minY != 0 || maxY != 1 {
		t.Errorf("bounds = %v %v %v %v", minX, maxX, minY, maxY)
	}

	lines := strings.Split(strings.TrimSuffix(p.ASCII(3, 3), "\n"), "\n")
	want := []string{
		"●  ",
		" o ",
		"  .",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, lines[i], want[i])
		}
	}

	if _, err := NewPhasePortrait(frames, "S", "Z"); err == nil {
		t.Error("expected error for unknown field")
	}
	if _, err := NewPhasePortrait(nil, "S", "I"); err == nil {
		t.Error("expected error for no frames")
	}
}

func TestBest(t *testing.T) {
	outcome := func(name string, peak float64) sim.Outcome {
		return sim.Outcome{Job: name, Result: &sim.Result{Metrics: map[string]float64{"peak_I": peak}}}
	}
	outcomes := []sim.Outcome{
		outcome("a", 0.3),
		outcome("b", 0.1),
		{Job: "failed", Err: errors.New("boom"), Result: &sim.Result{Metrics: map[string]float64{"peak_I": 0}}},
		outcome("c", math.NaN()),
		outcome("d", 0.5),
	}

	o, v, err := Best(outcomes, "peak_I", false)
	if err != nil || o.Job != "b" || v != 0.1 {
		t.Errorf("min: %s %v %v", o.Job, v, err)
	}
	o, v, err = Best(outcomes, "peak_I", true)
	if err != nil || o.Job != "d" || v != 0.5 {
		t.Errorf("max: %s %v %v", o.Job, v, err)
	}
	if _, _, err := Best(outcomes, "nope", false); err == nil {
		t.Error("expected error for unknown metric")
	}
}

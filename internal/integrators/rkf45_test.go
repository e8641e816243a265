package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/sirddft/internal/dynamo"
)

func TestRKF45Arctan(t *testing.T) {
	p := newTestProblem(0, []float64{0}, 10, func(t float64, y, dydt []float64) {
		dydt[0] = 1 / (1 + t*t)
	})

	stats, err := NewRKF45().Integrate(p)
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	if math.Abs(p.t-10) > 1e-12 {
		t.Errorf("final time = %v, want 10", p.t)
	}
	if got, want := p.y[0], math.Atan(10); math.Abs(got-want) > 1e-4 {
		t.Errorf("y(10) = %v, want %v", got, want)
	}
	if stats.Evaluations != 6*(stats.Steps+stats.Rejected) {
		t.Errorf("evaluations = %d, want 6 per attempt (%d steps, %d rejected)",
			stats.Evaluations, stats.Steps, stats.Rejected)
	}
}

func TestRKF45Decay(t *testing.T) {
	p := newTestProblem(0, []float64{1}, 5, decay)
	if _, err := NewRKF45().Integrate(p); err != nil {
		t.Fatal(err)
	}
	if math.Abs(p.y[0]-math.Exp(-5)) > 1e-5 {
		t.Errorf("y(5) = %v, want %v", p.y[0], math.Exp(-5))
	}
}

func TestRKF45RejectsWithTightTolerance(t *testing.T) {
	loose := newTestProblem(0, []float64{1, 0}, 2, oscillator)
	tight := newTestProblem(0, []float64{1, 0}, 2, oscillator)

	ls, err := NewRKF45().Integrate(loose)
	if err != nil {
		t.Fatal(err)
	}
	ts, err := NewRKF45(WithEps0(1e-12)).Integrate(tight)
	if err != nil {
		t.Fatal(err)
	}

	if ts.Rejected == 0 {
		t.Error("expected rejected steps with eps0=1e-12 and dt=0.1")
	}
	if ts.Steps <= ls.Steps {
		t.Errorf("tight tolerance took %d steps, loose %d", ts.Steps, ls.Steps)
	}
	if math.Abs(tight.y[0]-math.Cos(2)) > 1e-9 {
		t.Errorf("x(2) = %v, want %v", tight.y[0], math.Cos(2))
	}
}

func TestRKF45StepSizeAdapts(t *testing.T) {
	p := newTestProblem(0, []float64{1, 0}, 20, oscillator)
	if _, err := NewRKF45(WithDt(1e-3)).Integrate(p); err != nil {
		t.Fatal(err)
	}
	first := p.times[1] - p.times[0]
	second := p.times[2] - p.times[1]
	if second <= first {
		t.Errorf("step size did not grow from a small start: %v then %v", first, second)
	}
}

func TestRKF45ContinueUntilBoundary(t *testing.T) {
	p := newTestProblem(0, []float64{1}, 0.5, decay)
	s := NewRKF45(WithEps0(1e-9))

	if _, err := s.Integrate(p); err != nil {
		t.Fatal(err)
	}
	p.until(1.0)
	if _, err := s.Integrate(p); err != nil {
		t.Fatal(err)
	}

	if math.Abs(p.t-1) > 1e-12 {
		t.Errorf("t after two half-unit frames = %v, want 1", p.t)
	}
	if math.Abs(p.y[0]-math.Exp(-1)) > 1e-6 {
		t.Errorf("y(1) = %v, want %v", p.y[0], math.Exp(-1))
	}
	if p.finals != 2 {
		t.Errorf("FinalState called %d times, want 2", p.finals)
	}
}

func TestRKF45HandsBackBuffer(t *testing.T) {
	p := newTestProblem(0, []float64{1}, 1, decay)
	if _, err := NewRKF45().Integrate(p); err != nil {
		t.Fatal(err)
	}
	if p.finals != 1 {
		t.Errorf("FinalState called %d times, want 1", p.finals)
	}
	if &p.y[0] != p.handed {
		t.Error("FinalState returned a different buffer")
	}
}

func TestRKF45BoundInThePast(t *testing.T) {
	p := newTestProblem(3, []float64{1}, 1, decay)
	stats, err := NewRKF45().Integrate(p)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Steps != 0 || p.t != 3 || p.y[0] != 1 {
		t.Errorf("expected no progress, got steps=%d t=%v y=%v", stats.Steps, p.t, p.y[0])
	}
	if p.finals != 1 {
		t.Errorf("FinalState called %d times, want 1", p.finals)
	}
}

func TestRKF45Stop(t *testing.T) {
	p := newTestProblem(0, []float64{1}, 0, decay)
	p.stop = func(_ float64, calls int) dynamo.StopCondition {
		if calls >= 3 {
			return dynamo.Stop()
		}
		return dynamo.Continue()
	}
	stats, err := NewRKF45().Integrate(p)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Steps != 3 {
		t.Errorf("steps = %d, want 3", stats.Steps)
	}
}

func TestRKF45StepLimit(t *testing.T) {
	p := newTestProblem(0, []float64{1}, 0, decay)
	p.stop = func(float64, int) dynamo.StopCondition { return dynamo.Continue() }

	stats, err := NewRKF45(WithMaxSteps(10)).Integrate(p)
	if !errors.Is(err, dynamo.ErrStepLimit) {
		t.Fatalf("expected ErrStepLimit, got %v", err)
	}
	if stats.Steps+stats.Rejected != 10 {
		t.Errorf("attempts = %d, want 10", stats.Steps+stats.Rejected)
	}
	if p.finals != 1 || p.y == nil {
		t.Error("state not handed back after step limit")
	}
}

func TestRKF45ZeroErrorGrowth(t *testing.T) {
	p := newTestProblem(0, []float64{2}, 10, func(t float64, y, dydt []float64) {
		dydt[0] = 0
	})
	stats, err := NewRKF45().Integrate(p)
	if err != nil {
		t.Fatal(err)
	}
	// 0.1, 0.5, 2.5, then clamped to the bound
	if stats.Steps != 4 {
		t.Errorf("steps = %d, want 4", stats.Steps)
	}
	if p.y[0] != 2 {
		t.Errorf("constant solution changed to %v", p.y[0])
	}
}

func TestRKF45Defaults(t *testing.T) {
	s := NewRKF45()
	if s.Eps0() != 1e-5 || s.Beta() != 0.95 || s.Dt() != 0.1 {
		t.Errorf("defaults = (%v, %v, %v)", s.Eps0(), s.Beta(), s.Dt())
	}
	s = NewRKF45(WithEps0(-1), WithBeta(0), WithDt(0.2))
	if s.Eps0() != 1e-5 || s.Beta() != 0.95 || s.Dt() != 0.2 {
		t.Errorf("invalid options not ignored: (%v, %v, %v)", s.Eps0(), s.Beta(), s.Dt())
	}
}

func TestRKF45InvalidState(t *testing.T) {
	p := newTestProblem(0, []float64{1}, 1, func(t float64, y, dydt []float64) {
		dydt[0] = math.NaN()
	})
	_, err := NewRKF45().Integrate(p)
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
	if p.finals != 1 {
		t.Error("state not handed back")
	}
}

package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/san-kum/sirddft/internal/dynamo"
	"github.com/san-kum/sirddft/internal/integrators"
	"github.com/san-kum/sirddft/internal/models"
	"github.com/san-kum/sirddft/internal/sir"
)

func newDecay(t *testing.T, recovery float64) *models.SIR {
	t.Helper()
	m, err := models.NewSIR(sir.SIRParameters{RecoveryRate: recovery}, sir.State{S: 0.5, I: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSimulatorRun(t *testing.T) {
	sim := New(newDecay(t, 1), integrators.NewRKF45())

	result, err := sim.Run(context.Background(), Config{Frames: 10, FrameDuration: 0.5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Frames) != 11 {
		t.Fatalf("expected 11 frames, got %d", len(result.Frames))
	}
	if result.Reason != Completed {
		t.Errorf("reason = %s, want %s", result.Reason, Completed)
	}

	for i, f := range result.Frames {
		if f.Index != i {
			t.Errorf("frame %d has index %d", i, f.Index)
		}
		if math.Abs(f.Time-0.5*float64(i)) > 1e-9 {
			t.Errorf("frame %d at t=%v", i, f.Time)
		}
	}

	final := result.Final()
	if want := 0.5 * math.Exp(-5); math.Abs(final.Totals["I"]-want) > 1e-4 {
		t.Errorf("final I = %v, want %v", final.Totals["I"], want)
	}
	if result.Stats.Steps == 0 {
		t.Error("no solver steps accumulated")
	}

	times, values := result.Series("R")
	if len(times) != 11 || values[0] != 0 || values[10] <= values[5] {
		t.Errorf("unexpected R series %v", values)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(newDecay(t, 1), integrators.NewRKF45())

	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero frames", Config{Frames: 0, FrameDuration: 1}, ErrNoFrames},
		{"negative frames", Config{Frames: -3, FrameDuration: 1}, ErrNoFrames},
		{"zero duration", Config{Frames: 1, FrameDuration: 0}, ErrFrameDuration},
		{"NaN duration", Config{Frames: 1, FrameDuration: math.NaN()}, ErrFrameDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sim.Run(context.Background(), tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (m *testMetric) Name() string { return "test" }
func (m *testMetric) Observe(t float64, snap sir.Snapshot) {
	m.count++
	m.sum += sir.Totals(snap)["I"]
}
func (m *testMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *testMetric) Reset() {
	m.count = 0
	m.sum = 0
}

func TestSimulatorMetricsAndObservers(t *testing.T) {
	sim := New(newDecay(t, 1), integrators.NewRKF45())

	metric := &testMetric{count: 99}
	sim.AddMetric(metric)

	var seen []int
	sim.AddObserver(ObserverFunc(func(f Frame, snap sir.Snapshot) {
		seen = append(seen, f.Index)
	}))

	result, err := sim.Run(context.Background(), Config{Frames: 4, FrameDuration: 0.1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 5 {
		t.Errorf("expected 5 observations after reset, got %d", metric.count)
	}
	if len(seen) != 5 || seen[4] != 4 {
		t.Errorf("observer saw frames %v", seen)
	}
}

func TestSimulatorStopsOnExtinction(t *testing.T) {
	sim := New(newDecay(t, 1), integrators.NewRKF45())

	// I = 0.5 e^{-t} falls below 10% of the population after ln 5 ≈ 1.61
	result, err := sim.Run(context.Background(), Config{
		Frames:        100,
		FrameDuration: 0.25,
		Stop:          Extinction(0.1, 0, "I"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Reason != Stopped {
		t.Fatalf("reason = %s, want %s", result.Reason, Stopped)
	}
	if f := result.Final(); math.Abs(f.Time-1.75) > 1e-9 || f.Index != 7 {
		t.Errorf("stopped at frame %d t=%v, want frame 7 t=1.75", f.Index, f.Time)
	}
}

func TestExtinctionHonoursMinTime(t *testing.T) {
	stop := Extinction(0.5, 10, "Z")
	initial := Frame{Totals: map[string]float64{"S": 0.9, "Z": 0.1}}

	if stop(Frame{Time: 5, Totals: map[string]float64{"Z": 0}}, initial) {
		t.Error("stopped before the minimum time")
	}
	if !stop(Frame{Time: 10, Totals: map[string]float64{"Z": 0}}, initial) {
		t.Error("did not stop after the minimum time")
	}
	if stop(Frame{Time: 10, Totals: map[string]float64{"Z": 0.6}}, initial) {
		t.Error("stopped although Z is above threshold")
	}
}

func TestSimulatorCancelled(t *testing.T) {
	sim := New(newDecay(t, 1), integrators.NewRKF45())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, Config{Frames: 10, FrameDuration: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.Reason != Cancelled || len(result.Frames) != 1 {
		t.Errorf("reason = %s with %d frames, want cancelled with the initial frame", result.Reason, len(result.Frames))
	}
}

type failingSolver struct{}

func (failingSolver) Integrate(p dynamo.Problem) (dynamo.Stats, error) {
	t, y := p.InitialState()
	p.FinalState(t, y)
	return dynamo.Stats{}, &dynamo.SimulationError{Time: t, Wrapped: dynamo.ErrStepTooSmall}
}

func TestSimulatorIntegrationFailure(t *testing.T) {
	sim := New(newDecay(t, 1), failingSolver{})

	result, err := sim.Run(context.Background(), Config{Frames: 3, FrameDuration: 1})
	if !errors.Is(err, dynamo.ErrStepTooSmall) {
		t.Fatalf("expected ErrStepTooSmall, got %v", err)
	}
	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Error("SimulationError lost in wrapping")
	}
	if result.Reason != Failed {
		t.Errorf("reason = %s, want %s", result.Reason, Failed)
	}
}

func TestScan(t *testing.T) {
	rates := []float64{0.5, 1, 2, -1}
	jobs := make([]Job, len(rates))
	for i, w := range rates {
		jobs[i] = Job{
			Name:   fmt.Sprintf("w=%g", w),
			Params: map[string]float64{"recovery_rate": w},
			Setup: func() (*Simulator, error) {
				if w < 0 {
					return nil, errors.New("negative rate")
				}
				m, err := models.NewSIR(sir.SIRParameters{RecoveryRate: w}, sir.State{S: 0.5, I: 0.5})
				if err != nil {
					return nil, err
				}
				return New(m, integrators.NewRKF45()), nil
			},
			Config: Config{Frames: 4, FrameDuration: 0.5},
		}
	}

	var mu sync.Mutex
	done := 0
	out, err := Scan(context.Background(), jobs, 2, func(Outcome) {
		mu.Lock()
		done++
		mu.Unlock()
	})
	if err != nil {
		t.Fatal(err)
	}
	if done != len(jobs) {
		t.Errorf("done called %d times, want %d", done, len(jobs))
	}

	for i, w := range rates[:3] {
		o := out[i]
		if o.Err != nil {
			t.Fatalf("job %s failed: %v", o.Job, o.Err)
		}
		want := 0.5 * math.Exp(-2*w)
		if got := o.Result.Final().Totals["I"]; math.Abs(got-want) > 1e-4 {
			t.Errorf("job %s: I = %v, want %v", o.Job, got, want)
		}
		if o.Final == nil || sir.Totals(o.Final)["I"] != o.Result.Final().Totals["I"] {
			t.Errorf("job %s: final snapshot does not match the last frame", o.Job)
		}
	}
	if out[3].Err == nil || out[3].Final != nil {
		t.Error("failing setup did not report an error")
	}
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{{
		Name: "only",
		Setup: func() (*Simulator, error) {
			m, err := models.NewSIR(sir.SIRParameters{RecoveryRate: 1}, sir.State{S: 1})
			return New(m, integrators.NewRKF45()), err
		},
		Config: Config{Frames: 1, FrameDuration: 1},
	}}
	if _, err := Scan(ctx, jobs, 1, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

package integrators

import (
	"math"

	"github.com/san-kum/sirddft/internal/dynamo"
)

// Euler is the explicit Euler method with a fixed step size (default 0.001).
// The last step before a ContinueUntil bound is shortened to hit it.
type Euler struct {
	cfg  config
	dydt []float64
}

func NewEuler(opts ...Option) *Euler {
	return &Euler{cfg: newConfig(0.001, opts)}
}

func (e *Euler) Integrate(p dynamo.Problem) (dynamo.Stats, error) {
	return integrateFixed(e, p, e.cfg, 1, func(t, dt float64, y []float64) {
		if len(e.dydt) != len(y) {
			e.dydt = make([]float64, len(y))
		}
		p.RHS(t, y, e.dydt)
		for i := range y {
			y[i] += dt * e.dydt[i]
		}
	})
}

// integrateFixed drives a fixed-step method. step advances y in place from t
// to t+dt.
func integrateFixed(s dynamo.Solver, p dynamo.Problem, cfg config, evals int, step func(t, dt float64, y []float64)) (dynamo.Stats, error) {
	t, y := p.InitialState()

	var stats dynamo.Stats
	stop := p.EndStep(t, y, s)

	var err error
	for !stop.Reached(t) {
		dt := cfg.dt
		if stop.Kind == dynamo.KindContinueUntil {
			dt = math.Min(dt, stop.Until-t)
		}
		if cfg.maxSteps > 0 && stats.Steps >= cfg.maxSteps {
			err = &dynamo.SimulationError{Step: stats.Steps, Time: t, Wrapped: dynamo.ErrStepLimit}
			break
		}
		if t+dt == t {
			err = &dynamo.SimulationError{Step: stats.Steps, Time: t, Wrapped: dynamo.ErrStepTooSmall}
			break
		}

		step(t, dt, y)
		t += dt
		stats.Steps++
		stats.Evaluations += evals
		stats.LastDt = dt
		stop = p.EndStep(t, y, s)
	}

	stats.Time = t
	if err != nil {
		cfg.log.WithError(err).Debugf("fixed-step integration aborted after %d steps", stats.Steps)
	}
	p.FinalState(t, y)
	return stats, err
}

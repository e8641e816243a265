package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/sirddft/internal/dynamo"
)

// Runge-Kutta-Fehlberg 4(5) tableau.
var (
	fehlbergC = [6]float64{0, 1.0 / 4.0, 3.0 / 8.0, 12.0 / 13.0, 1, 1.0 / 2.0}

	fehlbergA = [6][5]float64{
		{},
		{1.0 / 4.0},
		{3.0 / 32.0, 9.0 / 32.0},
		{1932.0 / 2197.0, -7200.0 / 2197.0, 7296.0 / 2197.0},
		{439.0 / 216.0, -8.0, 3680.0 / 513.0, -845.0 / 4104.0},
		{-8.0 / 27.0, 2.0, -3544.0 / 2565.0, 1859.0 / 4104.0, -11.0 / 40.0},
	}

	// fourth order weights, only used for the error estimate
	fehlbergB4 = [6]float64{25.0 / 216.0, 0, 1408.0 / 2565.0, 2197.0 / 4104.0, -1.0 / 5.0, 0}

	// fifth order weights, used to advance
	fehlbergB5 = [6]float64{16.0 / 135.0, 0, 6656.0 / 12825.0, 28561.0 / 56430.0, -9.0 / 50.0, 2.0 / 55.0}
)

// maxGrowth caps the step size increase after a step with zero error.
const maxGrowth = 5.0

// RKF45 is the adaptive Runge-Kutta-Fehlberg solver. The solution advances
// with the fifth order weights; the step is accepted if dt·max|y4-y5| <= Eps0.
//
// An RKF45 reuses its stage buffers across steps and calls, so one instance
// must not integrate two problems concurrently.
type RKF45 struct {
	cfg config

	k       [6][]float64
	scratch []float64
}

// NewRKF45 returns a solver with Eps0 = 1e-5, Beta = 0.95 and an initial step
// of 0.1.
func NewRKF45(opts ...Option) *RKF45 {
	return &RKF45{cfg: newConfig(0.1, opts)}
}

// Eps0 returns the error threshold.
func (r *RKF45) Eps0() float64 { return r.cfg.eps0 }

// Beta returns the step size safety factor.
func (r *RKF45) Beta() float64 { return r.cfg.beta }

// Dt returns the initial step size.
func (r *RKF45) Dt() float64 { return r.cfg.dt }

func (r *RKF45) ensureScratch(n int) {
	if len(r.scratch) != n {
		for i := range r.k {
			r.k[i] = make([]float64, n)
		}
		r.scratch = make([]float64, n)
	}
}

// Integrate runs p until its stop condition is met. The state is always
// handed back through FinalState, also when an error is returned.
func (r *RKF45) Integrate(p dynamo.Problem) (dynamo.Stats, error) {
	t, y := p.InitialState()
	n := len(y)
	r.ensureScratch(n)

	var stats dynamo.Stats
	stop := p.EndStep(t, y, r)

	dt := r.cfg.dt
	if stop.Kind == dynamo.KindContinueUntil {
		dt = math.Min(dt, stop.Until-t)
	}

	var err error
	for !stop.Reached(t) {
		if stop.Kind == dynamo.KindContinueUntil {
			dt = math.Min(dt, stop.Until-t)
		}
		if r.cfg.maxSteps > 0 && stats.Steps+stats.Rejected >= r.cfg.maxSteps {
			err = &dynamo.SimulationError{Step: stats.Steps, Time: t, Wrapped: dynamo.ErrStepLimit}
			break
		}
		if !(dt > 0) || t+dt == t {
			err = &dynamo.SimulationError{Step: stats.Steps, Time: t,
				Wrapped: fmt.Errorf("%w: dt=%g", dynamo.ErrStepTooSmall, dt)}
			break
		}

		r.stages(p, t, dt, y)
		stats.Evaluations += 6

		e := dt * r.errorNorm(n)
		if math.IsNaN(e) {
			err = &dynamo.SimulationError{Step: stats.Steps, Time: t, Wrapped: dynamo.ErrInvalidState}
			break
		}

		if e <= r.cfg.eps0 {
			for i := 0; i < n; i++ {
				sum := 0.0
				for j := 0; j < 6; j++ {
					sum += fehlbergB5[j] * r.k[j][i]
				}
				y[i] += dt * sum
			}
			t += dt
			stats.Steps++
			stats.LastDt = dt

			if e == 0 {
				dt *= maxGrowth
			} else {
				dt = r.cfg.beta * dt * math.Pow(r.cfg.eps0/e, 1.0/5.0)
			}
			stop = p.EndStep(t, y, r)
		} else {
			stats.Rejected++
			dt = r.cfg.beta * dt * math.Pow(r.cfg.eps0/e, 1.0/4.0)
		}
	}

	stats.Time = t
	if err != nil {
		r.cfg.log.WithError(err).Debugf("rkf45: integration aborted after %d steps", stats.Steps)
	} else {
		r.cfg.log.Debugf("rkf45: t=%g steps=%d rejected=%d", t, stats.Steps, stats.Rejected)
	}
	p.FinalState(t, y)
	return stats, err
}

// stages fills r.k with the six Fehlberg stages at (t, y).
func (r *RKF45) stages(p dynamo.Problem, t, dt float64, y []float64) {
	tmp := r.scratch
	for s := 0; s < 6; s++ {
		for i := range tmp {
			sum := 0.0
			for j := 0; j < s; j++ {
				sum += fehlbergA[s][j] * r.k[j][i]
			}
			tmp[i] = y[i] + dt*sum
		}
		p.RHS(t+fehlbergC[s]*dt, tmp, r.k[s])
	}
}

// errorNorm returns max_i |Σ_j (b4_j - b5_j)·k_j[i]|.
func (r *RKF45) errorNorm(n int) float64 {
	m := 0.0
	for i := 0; i < n; i++ {
		y4, y5 := 0.0, 0.0
		for j := 0; j < 6; j++ {
			y4 += fehlbergB4[j] * r.k[j][i]
			y5 += fehlbergB5[j] * r.k[j][i]
		}
		d := math.Abs(y4 - y5)
		if d > m || math.IsNaN(d) {
			m = d
		}
	}
	return m
}

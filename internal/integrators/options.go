package integrators

import (
	"io"

	"github.com/sirupsen/logrus"
)

type config struct {
	eps0     float64
	beta     float64
	dt       float64
	maxSteps int
	log      logrus.FieldLogger
}

// Option configures a solver. Options that do not apply to a solver are
// ignored by it.
type Option func(*config)

// WithEps0 sets the RKF45 error threshold per step.
func WithEps0(eps0 float64) Option {
	return func(c *config) {
		if eps0 > 0 {
			c.eps0 = eps0
		}
	}
}

// WithBeta sets the RKF45 safety factor for step size updates.
func WithBeta(beta float64) Option {
	return func(c *config) {
		if beta > 0 {
			c.beta = beta
		}
	}
}

// WithDt sets the initial (RKF45) or fixed (Euler, RK4) step size.
func WithDt(dt float64) Option {
	return func(c *config) {
		if dt > 0 {
			c.dt = dt
		}
	}
}

// WithMaxSteps bounds the number of attempted steps per Integrate call.
// Zero means unlimited.
func WithMaxSteps(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxSteps = n
		}
	}
}

// WithLogger sets the logger. Solvers are silent by default.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

func newConfig(dt float64, opts []Option) config {
	c := config{
		eps0: 1e-5,
		beta: 0.95,
		dt:   dt,
		log:  discardLogger(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

package models

import (
	"fmt"
	"io"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/sirddft/internal/compute"
	"github.com/san-kum/sirddft/internal/dynamo"
	"github.com/san-kum/sirddft/internal/grid"
	"github.com/san-kum/sirddft/internal/sir"
)

// Model is the surface shared by all problems of this package.
type Model interface {
	dynamo.Problem
	AddTime(dt float64) error
	Integrate(s dynamo.Solver) (dynamo.Stats, error)
	Time() float64
	Snapshot() sir.Snapshot
	CloneState() []float64
	SetState(y []float64) error
}

// lifecycle holds the state buffer and the integration clock. The buffer is
// nil while a solver owns it.
type lifecycle struct {
	state    []float64
	dim      int
	time     float64
	duration float64
}

func newLifecycle(state []float64) lifecycle {
	return lifecycle{state: state, dim: len(state)}
}

// AddTime extends the integration horizon by dt.
func (l *lifecycle) AddTime(dt float64) error {
	if !(dt >= 0) {
		return fmt.Errorf("%w: %g", dynamo.ErrNegativeDuration, dt)
	}
	l.duration += dt
	return nil
}

// Time returns the time of the current state.
func (l *lifecycle) Time() float64 { return l.time }

// Horizon returns the accumulated integration target.
func (l *lifecycle) Horizon() float64 { return l.duration }

// Dim returns the length of the flat state.
func (l *lifecycle) Dim() int { return l.dim }

func (l *lifecycle) InitialState() (float64, []float64) {
	y := l.state
	l.state = nil
	return l.time, y
}

func (l *lifecycle) EndStep(float64, []float64, dynamo.Solver) dynamo.StopCondition {
	return dynamo.ContinueUntil(l.duration)
}

func (l *lifecycle) FinalState(t float64, y []float64) {
	l.state = y
	l.time = t
}

// CloneState copies the raw flat state.
func (l *lifecycle) CloneState() []float64 {
	if l.state == nil {
		return nil
	}
	return append([]float64(nil), l.state...)
}

// SetState overwrites the raw flat state.
func (l *lifecycle) SetState(y []float64) error {
	if l.state == nil {
		return dynamo.ErrIntegrating
	}
	if len(y) != len(l.state) {
		return fmt.Errorf("%w: got %d values, want %d", dynamo.ErrDimensionMismatch, len(y), len(l.state))
	}
	copy(l.state, y)
	return nil
}

type options struct {
	threads   int
	ninePoint bool
	log       logrus.FieldLogger
}

// Option configures a spatial model.
type Option func(*options)

// WithThreads sets the size of the model's worker pool. Values below 2 run
// single-threaded, which is also the default.
func WithThreads(n int) Option {
	return func(o *options) { o.threads = max(n, 1) }
}

// WithAllCPUs sizes the worker pool to the number of CPUs.
func WithAllCPUs() Option {
	return func(o *options) { o.threads = runtime.NumCPU() }
}

// WithNinePointLaplacian makes SIRDiffusion2D use the nine-point stencil,
// which requires dx == dy.
func WithNinePointLaplacian() Option {
	return func(o *options) { o.ninePoint = true }
}

// WithLogger sets the logger used during construction.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func newOptions(opts []Option) options {
	l := logrus.New()
	l.SetOutput(io.Discard)
	o := options{threads: 1, log: l}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) pool() *compute.Pool { return compute.NewPool(o.threads) }

func equidistant(g grid.Grid1D) (grid.Equidistant, error) {
	switch g := g.(type) {
	case grid.Equidistant:
		if g.N < 3 {
			return g, fmt.Errorf("%w: %d points, need at least 3", dynamo.ErrGridTooSmall, g.N)
		}
		return g, nil
	default:
		return grid.Equidistant{}, fmt.Errorf("%w: %T", dynamo.ErrUnsupportedGrid, g)
	}
}

func cartesian(g grid.Grid2D) (x, y grid.Equidistant, err error) {
	switch g := g.(type) {
	case grid.Cartesian:
		if x, err = equidistant(g.X); err != nil {
			return x, y, fmt.Errorf("x axis: %w", err)
		}
		if y, err = equidistant(g.Y); err != nil {
			return x, y, fmt.Errorf("y axis: %w", err)
		}
		return x, y, nil
	default:
		return x, y, fmt.Errorf("%w: %T", dynamo.ErrUnsupportedGrid, g)
	}
}

// squareCartesian validates the grid of the FFT models: n x n points with
// equal spacing.
func squareCartesian(g grid.Grid2D) (grid.Equidistant, error) {
	x, y, err := cartesian(g)
	if err != nil {
		return x, err
	}
	if x.N != y.N {
		return x, fmt.Errorf("%w: %d x %d", dynamo.ErrGridNotSquare, x.N, y.N)
	}
	if x.Delta() != y.Delta() {
		return x, fmt.Errorf("%w: dx=%g dy=%g", dynamo.ErrSpacingMismatch, x.Delta(), y.Delta())
	}
	return x, nil
}

func checkFields(n int, fields ...[]float64) error {
	for _, f := range fields {
		if len(f) != n {
			return fmt.Errorf("%w: field has %d values, grid has %d points", dynamo.ErrDimensionMismatch, len(f), n)
		}
	}
	return nil
}

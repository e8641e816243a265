// Package experiment turns run configurations into wired simulations: a
// model with its initial state, a solver, default metrics and the frame
// driver.
package experiment

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/sirddft/internal/config"
	"github.com/san-kum/sirddft/internal/integrators"
	"github.com/san-kum/sirddft/internal/metrics"
	"github.com/san-kum/sirddft/internal/models"
	"github.com/san-kum/sirddft/internal/sim"
)

type Experiment struct {
	cfg      *config.Config
	registry *Registry
	log      logrus.FieldLogger

	model     models.Model
	simulator *sim.Simulator
}

func New(cfg *config.Config, registry *Registry, log logrus.FieldLogger) *Experiment {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Experiment{cfg: cfg, registry: registry, log: log}
}

// Setup validates the config and builds the model, solver and simulator.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	fields, err := e.registry.Fields(e.cfg.Model)
	if err != nil {
		return err
	}

	log := e.log.WithField("model", e.cfg.Model)
	model, err := e.registry.GetModel(e.cfg, models.WithThreads(e.cfg.Threads), models.WithLogger(log))
	if err != nil {
		return err
	}
	solver, err := e.registry.GetSolver(e.cfg.Solver, integrators.WithLogger(log))
	if err != nil {
		return err
	}

	s := sim.New(model, solver)
	s.SetLogger(log)
	for _, m := range metrics.Default(fields) {
		s.AddMetric(m)
	}

	e.model = model
	e.simulator = s
	return nil
}

// SimConfig derives the frame driver settings from the run config.
func (e *Experiment) SimConfig() sim.Config {
	return SimConfig(e.cfg)
}

func SimConfig(cfg *config.Config) sim.Config {
	out := sim.Config{
		Frames:        cfg.Frames,
		FrameDuration: cfg.FrameDuration,
	}
	if cfg.Stop.Enabled() {
		out.Stop = sim.Extinction(cfg.Stop.Threshold, cfg.Stop.MinTime, cfg.Stop.Fields...)
	}
	return out
}

// Run sets the experiment up if needed and runs it to the end.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		if err := e.Setup(); err != nil {
			return nil, err
		}
	}
	return e.simulator.Run(ctx, e.SimConfig())
}

// Model returns the model, nil before Setup.
func (e *Experiment) Model() models.Model { return e.model }

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Config() *config.Config { return e.cfg }

// Points expands a scan into the configurations of its runs.
func Points(scan *config.Scan) ([]config.Point, error) {
	base, err := scan.Base()
	if err != nil {
		return nil, err
	}
	return scan.Points(base)
}

// Jobs expands a scan into simulation jobs.
func Jobs(scan *config.Scan, registry *Registry, log logrus.FieldLogger) ([]sim.Job, error) {
	points, err := Points(scan)
	if err != nil {
		return nil, err
	}
	return JobsFor(points, registry, log), nil
}

// JobsFor turns scan points into jobs. Each job builds its own experiment
// when it starts, so memory is only held for jobs in flight.
func JobsFor(points []config.Point, registry *Registry, log logrus.FieldLogger) []sim.Job {
	jobs := make([]sim.Job, len(points))
	for i, p := range points {
		jobs[i] = sim.Job{
			Name:   p.Name,
			Params: p.Params,
			Config: SimConfig(p.Config),
			Setup: func() (*sim.Simulator, error) {
				var jobLog logrus.FieldLogger
				if log != nil {
					jobLog = log.WithField("job", p.Name)
				}
				e := New(p.Config, registry, jobLog)
				if err := e.Setup(); err != nil {
					return nil, err
				}
				return e.Simulator(), nil
			},
		}
	}
	return jobs
}

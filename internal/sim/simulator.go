package sim

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/sirddft/internal/dynamo"
	"github.com/san-kum/sirddft/internal/sir"
)

var (
	ErrNoFrames      = errors.New("sim: frame count must be positive")
	ErrFrameDuration = errors.New("sim: frame duration must be positive")
)

type Simulator struct {
	model     Model
	solver    dynamo.Solver
	metrics   []Metric
	observers []Observer
	log       logrus.FieldLogger
}

func New(model Model, solver dynamo.Solver) *Simulator {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Simulator{
		model:  model,
		solver: solver,
		log:    l,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetLogger replaces the default discard logger.
func (s *Simulator) SetLogger(l logrus.FieldLogger) {
	if l != nil {
		s.log = l
	}
}

// Run records the initial frame and then advances the model by
// cfg.FrameDuration per frame until cfg.Frames frames are done, cfg.Stop
// fires, ctx is cancelled or integration fails. The result holds every frame
// recorded so far in all cases.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Frames:  make([]Frame, 0, cfg.Frames+1),
		Metrics: make(map[string]float64),
		Reason:  Completed,
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	initial := s.record(result, 0, dynamo.Stats{})
	log := s.log.WithField("frames", cfg.Frames)
	log.Debugf("sim: starting at t=%g", initial.Time)

	var runErr error
	for i := 1; i <= cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			result.Reason = Cancelled
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		if err := s.model.AddTime(cfg.FrameDuration); err != nil {
			result.Reason = Failed
			runErr = fmt.Errorf("frame %d: %w", i, err)
			break
		}
		stats, err := s.model.Integrate(s.solver)
		result.Stats.Add(stats)
		if err != nil {
			result.Reason = Failed
			runErr = fmt.Errorf("frame %d: %w", i, err)
			break
		}

		f := s.record(result, i, stats)
		log.WithFields(logrus.Fields{
			"frame": i,
			"steps": stats.Steps,
			"dt":    stats.LastDt,
		}).Debugf("sim: t=%g", f.Time)

		if cfg.Stop != nil && cfg.Stop(f, initial) {
			result.Reason = Stopped
			break
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	entry := log.WithFields(logrus.Fields{
		"reason":   result.Reason,
		"time":     s.model.Time(),
		"steps":    result.Stats.Steps,
		"rejected": result.Stats.Rejected,
	})
	if runErr != nil {
		entry.WithError(runErr).Warn("sim: run ended early")
	} else {
		entry.Info("sim: run finished")
	}
	return result, runErr
}

func (s *Simulator) record(result *Result, index int, stats dynamo.Stats) Frame {
	snap := s.model.Snapshot()
	f := Frame{
		Index:  index,
		Time:   s.model.Time(),
		Totals: sir.Totals(snap),
		Stats:  stats,
	}
	result.Frames = append(result.Frames, f)

	for _, m := range s.metrics {
		m.Observe(f.Time, snap)
	}
	for _, o := range s.observers {
		o.OnFrame(f, snap)
	}
	return f
}

func validateConfig(cfg Config) error {
	if cfg.Frames <= 0 {
		return fmt.Errorf("%w, got %d", ErrNoFrames, cfg.Frames)
	}
	if !(cfg.FrameDuration > 0) {
		return fmt.Errorf("%w, got %g", ErrFrameDuration, cfg.FrameDuration)
	}
	return nil
}

// Extinction stops a run once the time reaches minTime and the total of any
// of fields has dropped below threshold times the initial population.
func Extinction(threshold, minTime float64, fields ...string) StopFunc {
	return func(f, initial Frame) bool {
		if f.Time < minTime {
			return false
		}
		population := 0.0
		for _, v := range initial.Totals {
			population += v
		}
		if population == 0 {
			return false
		}
		for _, name := range fields {
			if f.Totals[name]/population < threshold {
				return true
			}
		}
		return false
	}
}

package sim

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/sirddft/internal/sir"
)

// Job is one point of a parameter scan. Setup builds a fresh simulator so
// that jobs share no state.
type Job struct {
	Name   string
	Params map[string]float64
	Setup  func() (*Simulator, error)
	Config Config
}

// Outcome is the result of one Job. Err is set when setup or integration
// failed; Result may still hold the frames recorded before the failure.
// Final is the model state the job ended with, nil if setup failed.
type Outcome struct {
	Job    string             `json:"job"`
	Params map[string]float64 `json:"params"`
	Result *Result            `json:"result,omitempty"`
	Final  sir.Snapshot       `json:"-"`
	Err    error              `json:"-"`
}

// Scan runs jobs with at most limit of them in flight. Outcomes keep the
// order of jobs. A failing job does not stop the others; only cancellation
// of ctx aborts the scan. done, if non-nil, is called after each job from
// the job's goroutine.
func Scan(parent context.Context, jobs []Job, limit int, done func(Outcome)) ([]Outcome, error) {
	if limit < 1 {
		limit = runtime.NumCPU()
	}
	out := make([]Outcome, len(jobs))

	g, ctx := errgroup.WithContext(parent)
	g.SetLimit(limit)
	for i, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			o := runJob(ctx, job)
			out[i] = o
			if done != nil {
				done(o)
			}
			if errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded) {
				return o.Err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, parent.Err()
}

func runJob(ctx context.Context, job Job) Outcome {
	o := Outcome{Job: job.Name, Params: job.Params}
	s, err := job.Setup()
	if err != nil {
		o.Err = fmt.Errorf("%s: setup: %w", job.Name, err)
		return o
	}
	o.Result, err = s.Run(ctx, job.Config)
	o.Final = s.model.Snapshot()
	if err != nil {
		o.Err = fmt.Errorf("%s: %w", job.Name, err)
	}
	return o
}

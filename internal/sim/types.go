// Package sim drives a model frame by frame: it extends the integration
// horizon, integrates, and hands each frame's snapshot to metrics and
// observers. It also runs parameter scans concurrently.
package sim

import (
	"github.com/san-kum/sirddft/internal/dynamo"
	"github.com/san-kum/sirddft/internal/sir"
)

// Model is the part of a model the driver needs.
type Model interface {
	AddTime(dt float64) error
	Integrate(s dynamo.Solver) (dynamo.Stats, error)
	Time() float64
	Snapshot() sir.Snapshot
}

// Metric summarises a run into a single value.
type Metric interface {
	Name() string
	Observe(t float64, snap sir.Snapshot)
	Value() float64
	Reset()
}

// Observer is notified after every frame, including the initial one.
type Observer interface {
	OnFrame(f Frame, snap sir.Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f Frame, snap sir.Snapshot)

func (fn ObserverFunc) OnFrame(f Frame, snap sir.Snapshot) { fn(f, snap) }

// StopFunc ends a run early when it returns true for a frame.
type StopFunc func(f Frame, initial Frame) bool

type Config struct {
	// Frames is the maximum number of frames after the initial one.
	Frames        int      `json:"frames"`
	FrameDuration float64  `json:"frame_duration"`
	Stop          StopFunc `json:"-"`
}

func DefaultConfig() Config {
	return Config{
		Frames:        100,
		FrameDuration: 0.1,
	}
}

// Frame is the state summary after a frame.
type Frame struct {
	Index  int                `json:"index"`
	Time   float64            `json:"time"`
	Totals map[string]float64 `json:"totals"`
	Stats  dynamo.Stats       `json:"stats"`
}

// Reason tells why a run ended.
type Reason string

const (
	Completed Reason = "completed"
	Stopped   Reason = "stopped"
	Cancelled Reason = "cancelled"
	Failed    Reason = "failed"
)

type Result struct {
	Frames  []Frame            `json:"frames"`
	Metrics map[string]float64 `json:"metrics"`
	Stats   dynamo.Stats       `json:"stats"`
	Reason  Reason             `json:"reason"`
}

// Final returns the last recorded frame.
func (r *Result) Final() Frame {
	if len(r.Frames) == 0 {
		return Frame{}
	}
	return r.Frames[len(r.Frames)-1]
}

// Series returns the total of field over all frames, and the frame times.
func (r *Result) Series(field string) (times, values []float64) {
	times = make([]float64, len(r.Frames))
	values = make([]float64, len(r.Frames))
	for i, f := range r.Frames {
		times[i] = f.Time
		values[i] = f.Totals[field]
	}
	return times, values
}

package dynamo

import (
	"fmt"
	"math"
)

// StopKind enumerates the StopCondition variants.
type StopKind int

const (
	// KindContinue integrates without an upper time bound.
	KindContinue StopKind = iota
	// KindContinueUntil integrates until t reaches Until.
	KindContinueUntil
	// KindStop ends integration immediately.
	KindStop
)

func (k StopKind) String() string {
	switch k {
	case KindContinue:
		return "continue"
	case KindContinueUntil:
		return "continue-until"
	case KindStop:
		return "stop"
	default:
		return fmt.Sprintf("StopKind(%d)", int(k))
	}
}

// StopCondition is returned by Problem.EndStep.
type StopCondition struct {
	Kind  StopKind
	Until float64
}

// Continue keeps integrating without bound.
func Continue() StopCondition { return StopCondition{Kind: KindContinue} }

// ContinueUntil keeps integrating until t1. A t1 in the past stops at once.
func ContinueUntil(t1 float64) StopCondition {
	return StopCondition{Kind: KindContinueUntil, Until: t1}
}

// Stop ends the integration.
func Stop() StopCondition { return StopCondition{Kind: KindStop} }

// Reached reports whether integration at time t is finished. ContinueUntil
// counts t1 as reached within one ulp-scale relative tolerance of t.
func (s StopCondition) Reached(t float64) bool {
	switch s.Kind {
	case KindStop:
		return true
	case KindContinueUntil:
		return t-s.Until >= -math.Abs(t)*epsilon
	default:
		return false
	}
}

// epsilon is the float64 machine epsilon.
const epsilon = 0x1p-52

func (s StopCondition) String() string {
	if s.Kind == KindContinueUntil {
		return fmt.Sprintf("continue-until(%g)", s.Until)
	}
	return s.Kind.String()
}

// Problem is an initial value problem y' = f(t, y).
type Problem interface {
	// RHS writes f(t, y) into dydt. len(dydt) == len(y).
	RHS(t float64, y, dydt []float64)
	// InitialState hands (t0, y0) to the solver, which owns y0 until
	// FinalState.
	InitialState() (float64, []float64)
	// EndStep is called once for t0 and after every accepted step.
	EndStep(t float64, y []float64, s Solver) StopCondition
	// FinalState returns the buffer taken in InitialState.
	FinalState(t float64, y []float64)
}

// Solver integrates a Problem.
type Solver interface {
	Integrate(p Problem) (Stats, error)
}

// Stats summarises one Integrate call.
type Stats struct {
	Steps       int     `json:"steps"`
	Rejected    int     `json:"rejected"`
	Evaluations int     `json:"evaluations"`
	LastDt      float64 `json:"last_dt"`
	Time        float64 `json:"time"`
}

// Add accumulates the counters of o into s and takes over its final time
// and step size.
func (s *Stats) Add(o Stats) {
	s.Steps += o.Steps
	s.Rejected += o.Rejected
	s.Evaluations += o.Evaluations
	s.LastDt = o.LastDt
	s.Time = o.Time
}

// IsFinite reports whether y contains neither NaN nor Inf.
func IsFinite(y []float64) bool {
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

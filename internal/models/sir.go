package models

import (
	"fmt"

	"github.com/san-kum/sirddft/internal/dynamo"
	"github.com/san-kum/sirddft/internal/sir"
)

// SIR is the lumped SIR model
//
//	S' = -c·S·I
//	I' =  c·S·I - w·I - m·I
//	R' =  w·I
//
// with infection parameter c, recovery rate w and mortality rate m.
type SIR struct {
	lifecycle
	params sir.SIRParameters
}

func NewSIR(params sir.SIRParameters, state sir.State) (*SIR, error) {
	y := state.Vector()
	if !dynamo.IsFinite(y) {
		return nil, fmt.Errorf("sir: %w", dynamo.ErrInvalidState)
	}
	return &SIR{lifecycle: newLifecycle(y), params: params}, nil
}

func (m *SIR) RHS(_ float64, y, dydt []float64) {
	c := m.params.InfectionParameter
	w := m.params.RecoveryRate
	mu := m.params.MortalityRate
	s, i := y[0], y[1]
	dydt[0] = -c * s * i
	dydt[1] = c*s*i - w*i - mu*i
	dydt[2] = w * i
}

func (m *SIR) Integrate(s dynamo.Solver) (dynamo.Stats, error) { return s.Integrate(m) }

// Result returns the current time and state.
func (m *SIR) Result() (float64, sir.State) {
	if m.state == nil {
		return m.time, sir.State{}
	}
	return m.time, sir.State{S: m.state[0], I: m.state[1], R: m.state[2]}
}

func (m *SIR) Snapshot() sir.Snapshot {
	_, s := m.Result()
	return s
}

func (m *SIR) Params() sir.SIRParameters { return m.params }

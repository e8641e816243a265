package integrators

import "github.com/san-kum/sirddft/internal/dynamo"

// testProblem is a minimal dynamo.Problem around a derivative function.
type testProblem struct {
	f    func(t float64, y, dydt []float64)
	t    float64
	y    []float64
	stop func(t float64, steps int) dynamo.StopCondition

	endSteps int
	finals   int
	times    []float64
	handed   *float64
}

func newTestProblem(t0 float64, y0 []float64, until float64, f func(t float64, y, dydt []float64)) *testProblem {
	return &testProblem{
		f: f,
		t: t0,
		y: y0,
		stop: func(float64, int) dynamo.StopCondition {
			return dynamo.ContinueUntil(until)
		},
	}
}

func (p *testProblem) RHS(t float64, y, dydt []float64) { p.f(t, y, dydt) }

func (p *testProblem) InitialState() (float64, []float64) {
	y := p.y
	p.y = nil
	if len(y) > 0 {
		p.handed = &y[0]
	}
	return p.t, y
}

func (p *testProblem) EndStep(t float64, y []float64, s dynamo.Solver) dynamo.StopCondition {
	p.times = append(p.times, t)
	c := p.stop(t, p.endSteps)
	p.endSteps++
	return c
}

func (p *testProblem) FinalState(t float64, y []float64) {
	p.finals++
	p.t = t
	p.y = y
}

func (p *testProblem) until(t1 float64) {
	p.stop = func(float64, int) dynamo.StopCondition { return dynamo.ContinueUntil(t1) }
}

func oscillator(t float64, y, dydt []float64) {
	dydt[0] = y[1]
	dydt[1] = -y[0]
}

func decay(t float64, y, dydt []float64) {
	dydt[0] = -y[0]
}

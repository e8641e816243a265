// Package dynamo defines the contract between initial value problems and
// the explicit solvers that integrate them.
//
// The core abstractions are:
//
//   - [Problem]: an ODE y' = f(t, y) with a lifecycle around each run
//   - [Solver]: an explicit integrator driving a Problem
//   - [StopCondition]: the Problem's verdict after every accepted step
//   - [Stats]: counters reported back by a Solver
//
// # Buffer ownership
//
// InitialState hands the state buffer to the solver, which mutates it in
// place and returns it through FinalState exactly once. In between, the
// Problem must not touch its copy. RHS receives scratch buffers owned by the
// solver and must not retain them.
//
// # Example
//
//	p, _ := models.NewSIR(params, state)
//	p.AddTime(10)
//	stats, err := p.Integrate(integrators.NewRKF45())
package dynamo

// Package models implements the SIR and SZ initial value problems.
//
// Every model owns a flat state buffer and satisfies [dynamo.Problem]. The
// usual cycle is
//
//	m.AddTime(0.1)
//	m.Integrate(solver)
//	t, view := m.Result()
//
// Spatial models are discretised by finite differences on periodic grids.
// The DDFT models add non-local interaction terms: direct circular
// convolutions in 1D, FFT convolutions in 2D. RHS evaluation of the spatial
// models is spread over a worker pool sized at construction (see
// [WithThreads]); results do not depend on the number of workers beyond
// floating point summation order.
package models

// Package sir defines the parameter bundles, spatially sampled states and
// zero-copy state views of the SIR and SZ population models.
//
// Spatial states keep one slice per field. During integration the fields are
// concatenated into a single flat buffer (S block, then I or Z, then R); the
// View types reinterpret such a buffer without copying.
package sir

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/sirddft/internal/grid"
)

// State is the state of the lumped (0D) SIR model.
type State struct {
	S, I, R float64
}

// Total returns S+I+R.
func (s State) Total() float64 { return s.S + s.I + s.R }

// Vector returns the state as a flat buffer.
func (s State) Vector() []float64 { return []float64{s.S, s.I, s.R} }

// Spatial1D holds S, I and R sampled on a 1D grid.
type Spatial1D struct {
	S, I, R []float64
	Grid    grid.Grid1D
}

// NewSpatial1D samples init once per grid point in grid order.
func NewSpatial1D(g grid.Grid1D, init func(x float64) (s, i, r float64)) Spatial1D {
	st := Spatial1D{
		S:    make([]float64, 0, g.Len()),
		I:    make([]float64, 0, g.Len()),
		R:    make([]float64, 0, g.Len()),
		Grid: g,
	}
	for x := range g.All() {
		s, i, r := init(x)
		st.S = append(st.S, s)
		st.I = append(st.I, i)
		st.R = append(st.R, r)
	}
	return st
}

// Flatten copies the fields into a new buffer of length 3n.
func (s Spatial1D) Flatten() []float64 {
	return concat(s.S, s.I, s.R)
}

// Spatial2D holds S, I and R sampled on a 2D grid, stored row-major with x
// as the fast index.
type Spatial2D struct {
	S, I, R []float64
	Grid    grid.Grid2D
}

// NewSpatial2D samples init once per grid point in grid order.
func NewSpatial2D(g grid.Grid2D, init func(x, y float64) (s, i, r float64)) Spatial2D {
	st := Spatial2D{
		S:    make([]float64, 0, g.Len()),
		I:    make([]float64, 0, g.Len()),
		R:    make([]float64, 0, g.Len()),
		Grid: g,
	}
	for x, y := range g.All() {
		s, i, r := init(x, y)
		st.S = append(st.S, s)
		st.I = append(st.I, i)
		st.R = append(st.R, r)
	}
	return st
}

func (s Spatial2D) Flatten() []float64 {
	return concat(s.S, s.I, s.R)
}

// SZSpatial2D holds susceptible humans S and zombies Z on a 2D grid.
type SZSpatial2D struct {
	S, Z []float64
	Grid grid.Grid2D
}

// NewSZSpatial2D samples init once per grid point in grid order.
func NewSZSpatial2D(g grid.Grid2D, init func(x, y float64) (s, z float64)) SZSpatial2D {
	st := SZSpatial2D{
		S:    make([]float64, 0, g.Len()),
		Z:    make([]float64, 0, g.Len()),
		Grid: g,
	}
	for x, y := range g.All() {
		s, z := init(x, y)
		st.S = append(st.S, s)
		st.Z = append(st.Z, z)
	}
	return st
}

func (s SZSpatial2D) Flatten() []float64 {
	return concat(s.S, s.Z)
}

func concat(fields ...[]float64) []float64 {
	n := 0
	for _, f := range fields {
		n += len(f)
	}
	out := make([]float64, 0, n)
	for _, f := range fields {
		out = append(out, f...)
	}
	return out
}

// Integrate returns the cell-weighted sum of field, i.e. its integral over
// the domain for the given cell size.
func Integrate(field []float64, cell float64) float64 {
	return floats.Sum(field) * cell
}

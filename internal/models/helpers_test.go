package models

import (
	"math"

	"github.com/san-kum/sirddft/internal/grid"
	"github.com/san-kum/sirddft/internal/sir"
)

func mustLine(lo, hi float64, n int) grid.Equidistant {
	g, err := grid.NewEquidistant(lo, hi, n)
	if err != nil {
		panic(err)
	}
	return g
}

func mustSquare(lo, hi float64, n int) grid.Cartesian {
	g, err := grid.NewSquare(lo, hi, n)
	if err != nil {
		panic(err)
	}
	return g
}

// ripple1D puts a smooth periodic bump on a background density. It is
// periodic in the grid index, so the ring closes without a kink.
func ripple1D(g grid.Equidistant, s, i float64) sir.Spatial1D {
	st := sir.NewSpatial1D(g, func(float64) (float64, float64, float64) { return 0, 0, 0 })
	for k := range st.S {
		w := math.Cos(2 * math.Pi * float64(k) / float64(g.N))
		st.S[k] = s * (1 + 0.5*w)
		st.I[k] = i * (1 + w)
	}
	return st
}

func ripple2D(g grid.Cartesian, s, i float64) sir.Spatial2D {
	nx, ny := g.Shape()
	st := sir.NewSpatial2D(g, func(float64, float64) (float64, float64, float64) { return 0, 0, 0 })
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			w := math.Cos(2*math.Pi*float64(ix)/float64(nx)) * math.Sin(2*math.Pi*float64(iy)/float64(ny))
			st.S[iy*nx+ix] = s * (1 + 0.5*w)
			st.I[iy*nx+ix] = i * (1 + w)
		}
	}
	return st
}

func rippleSZ(g grid.Cartesian, s, z float64) sir.SZSpatial2D {
	st := ripple2D(g, s, z)
	return sir.SZSpatial2D{S: st.S, Z: st.I, Grid: g}
}

func sum(v []float64) float64 {
	total := 0.0
	for _, x := range v {
		total += x
	}
	return total
}

func maxAbsDiff(a, b []float64) float64 {
	d := 0.0
	for i := range a {
		d = math.Max(d, math.Abs(a[i]-b[i]))
	}
	return d
}

func nan() float64 { return math.NaN() }

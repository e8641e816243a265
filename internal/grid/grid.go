// Package grid provides the spatial discretisations used by the spatial models.
//
// Only two variants exist today:
//
//   - [Equidistant]: evenly spaced 1D grid including both bounds
//   - [Cartesian]: Cartesian product of two 1D grids, x varying fastest
//
// [Grid1D] and [Grid2D] are closed sets: their marker methods are unexported,
// so consumers switch over the concrete types exhaustively.
package grid

import (
	"errors"
	"fmt"
	"iter"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrTooFewPoints indicates a grid with fewer than two points.
	ErrTooFewPoints = errors.New("grid: need at least 2 points")

	// ErrEmptyDomain indicates a grid whose bounds are not increasing.
	ErrEmptyDomain = errors.New("grid: upper bound must exceed lower bound")
)

// Grid1D is a one-dimensional grid.
type Grid1D interface {
	// Len returns the number of grid points.
	Len() int
	// All yields the grid coordinates in increasing order.
	All() iter.Seq[float64]
	// Points materialises All.
	Points() []float64
	grid1D()
}

// Grid2D is a two-dimensional grid.
type Grid2D interface {
	// Len returns the number of grid points.
	Len() int
	// All yields (x, y) pairs with x as the fast index.
	All() iter.Seq2[float64, float64]
	grid2D()
}

// Equidistant is a 1D grid of N points spanning [Lo, Hi].
type Equidistant struct {
	Lo, Hi float64
	N      int
}

// NewEquidistant returns an equidistant grid over [lo, hi] with n points.
func NewEquidistant(lo, hi float64, n int) (Equidistant, error) {
	if n < 2 {
		return Equidistant{}, fmt.Errorf("%w: got %d", ErrTooFewPoints, n)
	}
	if !(hi > lo) {
		return Equidistant{}, fmt.Errorf("%w: [%g, %g]", ErrEmptyDomain, lo, hi)
	}
	return Equidistant{Lo: lo, Hi: hi, N: n}, nil
}

func (Equidistant) grid1D() {}

func (g Equidistant) Len() int { return g.N }

// Delta returns the spacing between neighbouring points.
func (g Equidistant) Delta() float64 {
	return (g.Hi - g.Lo) / float64(g.N-1)
}

// Length returns the extent of the domain.
func (g Equidistant) Length() float64 {
	return g.Hi - g.Lo
}

// At returns the i-th coordinate. The last point is exactly Hi.
func (g Equidistant) At(i int) float64 {
	if i == g.N-1 {
		return g.Hi
	}
	return g.Lo + g.Delta()*float64(i)
}

func (g Equidistant) All() iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for i := 0; i < g.N; i++ {
			if !yield(g.At(i)) {
				return
			}
		}
	}
}

func (g Equidistant) Points() []float64 {
	if g.N < 2 {
		return nil
	}
	pts := floats.Span(make([]float64, g.N), g.Lo, g.Hi)
	pts[g.N-1] = g.Hi
	return pts
}

// Cartesian is the product grid of X and Y.
type Cartesian struct {
	X, Y Grid1D
}

// NewCartesian combines two 1D grids.
func NewCartesian(x, y Grid1D) Cartesian {
	return Cartesian{X: x, Y: y}
}

// NewSquare returns an n x n equidistant Cartesian grid over [lo, hi]².
func NewSquare(lo, hi float64, n int) (Cartesian, error) {
	g, err := NewEquidistant(lo, hi, n)
	if err != nil {
		return Cartesian{}, err
	}
	return NewCartesian(g, g), nil
}

func (Cartesian) grid2D() {}

func (g Cartesian) Len() int { return g.X.Len() * g.Y.Len() }

// Shape returns the number of points along x and y.
func (g Cartesian) Shape() (nx, ny int) { return g.X.Len(), g.Y.Len() }

func (g Cartesian) All() iter.Seq2[float64, float64] {
	return func(yield func(float64, float64) bool) {
		xs := g.X.Points()
		for y := range g.Y.All() {
			for _, x := range xs {
				if !yield(x, y) {
					return
				}
			}
		}
	}
}

// Points materialises All as parallel coordinate slices.
func (g Cartesian) Points() (xs, ys []float64) {
	xs = make([]float64, 0, g.Len())
	ys = make([]float64, 0, g.Len())
	for x, y := range g.All() {
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys
}

// Extent returns the bounds of g.
func Extent(g Grid1D) (lo, hi float64) {
	switch g := g.(type) {
	case Equidistant:
		return g.Lo, g.Hi
	default:
		panic(fmt.Sprintf("grid: unknown Grid1D variant %T", g))
	}
}

// Spacing returns the distance between neighbouring points of g.
func Spacing(g Grid1D) float64 {
	switch g := g.(type) {
	case Equidistant:
		return g.Delta()
	default:
		panic(fmt.Sprintf("grid: unknown Grid1D variant %T", g))
	}
}

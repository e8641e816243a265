// Package stencil holds the finite-difference and convolution building blocks
// shared by the spatial models. All operators assume periodic boundaries.
package stencil

// Indices returns the periodic neighbours of i in a ring of n points as
// [prevprev, prev, next, nextnext]. n must be at least 3.
func Indices(i, n int) [4]int {
	return [4]int{
		(i + n - 2) % n,
		(i + n - 1) % n,
		(i + 1) % n,
		(i + 2) % n,
	}
}

// Laplace1D is the three-point second derivative of y at i.
func Laplace1D(y []float64, prev, i, next int, dx float64) float64 {
	return (y[prev] + y[next] - 2*y[i]) / (dx * dx)
}

// Grad is the central difference of two values 2·dx apart.
func Grad(prev, next, dx float64) float64 {
	return (next - prev) / (2 * dx)
}

// Point2D addresses a grid point and its periodic neighbours in a row-major
// field with row length NX.
type Point2D struct {
	PrevX, X, NextX int
	PrevY, Y, NextY int
	NX              int
}

// At returns the flat index of (ix, iy).
func (p Point2D) At(ix, iy int) int { return ix + p.NX*iy }

// Laplace2D is the five-point Laplacian. It allows dx != dy.
func Laplace2D(y []float64, p Point2D, dx, dy float64) float64 {
	c := y[p.At(p.X, p.Y)]
	return (y[p.At(p.PrevX, p.Y)]+y[p.At(p.NextX, p.Y)]-2*c)/(dx*dx) +
		(y[p.At(p.X, p.PrevY)]+y[p.At(p.X, p.NextY)]-2*c)/(dy*dy)
}

// Laplace2D9 is the nine-point Laplacian. It is only valid for dx == dy.
func Laplace2D9(y []float64, p Point2D, dx float64) float64 {
	return (y[p.At(p.PrevX, p.PrevY)] + y[p.At(p.X, p.PrevY)] + y[p.At(p.NextX, p.PrevY)] +
		y[p.At(p.PrevX, p.Y)] - 8*y[p.At(p.X, p.Y)] + y[p.At(p.NextX, p.Y)] +
		y[p.At(p.PrevX, p.NextY)] + y[p.At(p.X, p.NextY)] + y[p.At(p.NextX, p.NextY)]) / (dx * dx)
}

// Transpose transposes the row-major n×n matrix v in place.
func Transpose[T any](v []T, n int) {
	for iy := 0; iy < n; iy++ {
		for ix := iy + 1; ix < n; ix++ {
			i1, i2 := iy*n+ix, ix*n+iy
			v[i1], v[i2] = v[i2], v[i1]
		}
	}
}

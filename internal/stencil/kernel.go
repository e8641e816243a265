package stencil

import "math"

// GaussianKernel1D returns exp(-rng·(i·dx)²) for i in [0, n). The amplitude
// is left to the caller.
func GaussianKernel1D(n int, dx, rng float64) []float64 {
	k := make([]float64, n)
	for i := range k {
		d := float64(i) * dx
		k[i] = math.Exp(-rng * d * d)
	}
	return k
}

// GaussianKernel2D returns amp·exp(-rng·r²) on a periodic n×n grid, where r
// is the distance from the origin to the nearest periodic image of each
// point.
func GaussianKernel2D(n int, dx, amp, rng float64) []float64 {
	k := make([]float64, n*n)
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			d2 := nearestImage2(ix, iy, n)
			k[iy*n+ix] = amp * math.Exp(-rng*float64(d2)*dx*dx)
		}
	}
	return k
}

func nearestImage2(ix, iy, n int) int {
	jx, jy := n-ix, n-iy
	return min(
		ix*ix+iy*iy,
		jx*jx+iy*iy,
		ix*ix+jy*jy,
		jx*jx+jy*jy,
	)
}

// CyclicConvolve1D computes out[i] = cell·Σ_d k[|d|]·f[i+d] over the
// circular distances d of a ring of len(f) points, visiting each distance
// once: 0, then ±1 … ±(n-1)/2, and the antipode once when n is even. k must
// hold at least n/2+1 values.
func CyclicConvolve1D(out, f, k []float64, cell float64) {
	for i := range out {
		out[i] = CyclicAt1D(f, k, i) * cell
	}
}

// CyclicAt1D returns the unscaled circular convolution of f and the symmetric
// kernel k at position i.
func CyclicAt1D(f, k []float64, i int) float64 {
	n := len(f)
	sum := k[0] * f[i]
	half := (n - 1) / 2
	for d := 1; d <= half; d++ {
		sum += k[d] * (f[(i+d)%n] + f[(i-d+n)%n])
	}
	if n%2 == 0 {
		sum += k[n/2] * f[(i+n/2)%n]
	}
	return sum
}

package stencil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/sirddft/internal/compute"
)

func TestIndices(t *testing.T) {
	tests := []struct {
		i, n int
		want [4]int
	}{
		{0, 5, [4]int{3, 4, 1, 2}},
		{1, 5, [4]int{4, 0, 2, 3}},
		{2, 5, [4]int{0, 1, 3, 4}},
		{4, 5, [4]int{2, 3, 0, 1}},
		{0, 3, [4]int{1, 2, 1, 2}},
	}
	for _, tt := range tests {
		if got := Indices(tt.i, tt.n); got != tt.want {
			t.Errorf("Indices(%d, %d) = %v, want %v", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestLaplace1DQuadratic(t *testing.T) {
	dx := 0.1
	y := make([]float64, 10)
	for i := range y {
		x := float64(i) * dx
		y[i] = 3 * x * x
	}
	// exact for quadratics away from the wrap
	for i := 1; i < 9; i++ {
		if got := Laplace1D(y, i-1, i, i+1, dx); math.Abs(got-6) > 1e-9 {
			t.Errorf("Laplace1D at %d = %v, want 6", i, got)
		}
	}
}

func TestGrad(t *testing.T) {
	if got := Grad(1, 3, 0.5); got != 2 {
		t.Errorf("Grad(1, 3, 0.5) = %v, want 2", got)
	}
}

func TestLaplace2DConstant(t *testing.T) {
	n := 4
	y := make([]float64, n*n)
	for i := range y {
		y[i] = 7
	}
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			ixs, iys := Indices(ix, n), Indices(iy, n)
			p := Point2D{ixs[1], ix, ixs[2], iys[1], iy, iys[2], n}
			if got := Laplace2D(y, p, 0.1, 0.2); got != 0 {
				t.Errorf("Laplace2D of constant = %v at (%d, %d)", got, ix, iy)
			}
			if got := Laplace2D9(y, p, 0.1); got != 0 {
				t.Errorf("Laplace2D9 of constant = %v at (%d, %d)", got, ix, iy)
			}
		}
	}
}

func TestLaplace2DPlaneWave(t *testing.T) {
	// sin(kx) on a periodic grid: discrete Laplacian is -(2-2cos(k dx))/dx² sin
	n := 16
	dx := 2 * math.Pi / float64(n)
	y := make([]float64, n*n)
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			y[iy*n+ix] = math.Sin(float64(ix) * dx)
		}
	}
	factor := -(2 - 2*math.Cos(dx)) / (dx * dx)
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			ixs, iys := Indices(ix, n), Indices(iy, n)
			p := Point2D{ixs[1], ix, ixs[2], iys[1], iy, iys[2], n}
			want := factor * y[iy*n+ix]
			if got := Laplace2D(y, p, dx, dx); math.Abs(got-want) > 1e-9 {
				t.Fatalf("Laplace2D at (%d, %d) = %v, want %v", ix, iy, got, want)
			}
		}
	}
}

func TestTranspose(t *testing.T) {
	v := []int{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}
	Transpose(v, 3)
	want := []int{
		1, 4, 7,
		2, 5, 8,
		3, 6, 9,
	}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("Transpose = %v, want %v", v, want)
		}
	}
}

func TestCyclicAt1DMatchesBruteForce(t *testing.T) {
	for _, n := range []int{7, 8} {
		f := make([]float64, n)
		for i := range f {
			f[i] = math.Cos(float64(i)) + 2
		}
		k := GaussianKernel1D(n, 0.3, 1.5)

		for i := 0; i < n; i++ {
			want := 0.0
			for j := 0; j < n; j++ {
				d := i - j
				if d < 0 {
					d = -d
				}
				d = min(d, n-d)
				want += k[d] * f[j]
			}
			if got := CyclicAt1D(f, k, i); math.Abs(got-want) > 1e-12 {
				t.Errorf("n=%d i=%d: CyclicAt1D = %v, want %v", n, i, got, want)
			}
		}
	}
}

func TestGaussianKernel2DSymmetric(t *testing.T) {
	n := 6
	k := GaussianKernel2D(n, 0.5, 2, 1)
	if k[0] != 2 {
		t.Errorf("origin value = %v, want amplitude 2", k[0])
	}
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			a := k[iy*n+ix]
			if b := k[((n-iy)%n)*n+(n-ix)%n]; a != b {
				t.Errorf("kernel not point symmetric at (%d, %d): %v != %v", ix, iy, a, b)
			}
			if b := k[ix*n+iy]; a != b {
				t.Errorf("kernel not transpose symmetric at (%d, %d)", ix, iy)
			}
		}
	}
}

func directConvolve2D(f, k []float64, n int, cell float64) []float64 {
	out := make([]float64, n*n)
	for iy := 0; iy < n; iy++ {
		for ix := 0; ix < n; ix++ {
			sum := 0.0
			for jy := 0; jy < n; jy++ {
				for jx := 0; jx < n; jx++ {
					kx := (ix - jx + n) % n
					ky := (iy - jy + n) % n
					sum += k[ky*n+kx] * f[jy*n+jx]
				}
			}
			out[iy*n+ix] = sum * cell
		}
	}
	return out
}

func TestConvolverMatchesDirectSum(t *testing.T) {
	for _, tt := range []struct {
		name    string
		n       int
		workers int
	}{
		{"serial power of two", 8, 1},
		{"parallel power of two", 8, 3},
		{"parallel odd size", 9, 4},
	} {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.n
			L := 2.0
			dx := L / float64(n)
			cell := dx * dx

			f := make([]float64, n*n)
			for i := range f {
				f[i] = 1 + math.Sin(float64(i)*0.7)*math.Cos(float64(i)*0.13)
			}
			kv := GaussianKernel2D(n, dx, -3, 4)

			c := NewConvolver(n, compute.NewPool(tt.workers))
			k, err := c.Kernel(kv, cell)
			if err != nil {
				t.Fatal(err)
			}

			got := make([]float64, n*n)
			c.Convolve(got, f, k)
			want := directConvolve2D(f, kv, n, cell)

			if !floats.EqualApprox(got, want, 1e-10) {
				t.Errorf("FFT convolution differs from direct sum\n got %v\nwant %v", got[:n], want[:n])
			}

			// accumulate variant
			c.ConvolveAdd(got, f, k)
			floats.Scale(2, want)
			if !floats.EqualApprox(got, want, 1e-10) {
				t.Error("ConvolveAdd did not accumulate")
			}
		})
	}
}

func TestConvolverKernelShape(t *testing.T) {
	c := NewConvolver(4, nil)
	if _, err := c.Kernel(make([]float64, 15), 1); err == nil {
		t.Error("expected shape error")
	}
}

func BenchmarkConvolve64(b *testing.B) {
	n := 64
	c := NewConvolver(n, compute.NewPool(0))
	k, _ := c.Kernel(GaussianKernel2D(n, 0.1, 1, 10), 0.01)
	f := make([]float64, n*n)
	out := make([]float64, n*n)
	for i := range f {
		f[i] = float64(i % 7)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Convolve(out, f, k)
	}
}

package stencil

import (
	"errors"
	"fmt"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/sirddft/internal/compute"
)

// ErrShape indicates buffers that do not match the convolver's n×n shape.
var ErrShape = errors.New("stencil: buffer does not match grid shape")

// Kernel is the Fourier transform of a periodic n×n convolution kernel with
// the cell area baked in.
type Kernel struct {
	n   int
	hat []complex128
}

// N returns the side length of the kernel.
func (k Kernel) N() int { return k.n }

// Convolver performs periodic 2D convolutions of n×n fields by FFT. Rows are
// transformed with go-dsp, the matrix transposed, and rows transformed again.
// Row passes are spread across the pool; transpose and the spectral product
// run serially. A Convolver owns scratch memory and must not be shared
// between goroutines.
type Convolver struct {
	n    int
	pool *compute.Pool
	buf  []complex128
}

// NewConvolver returns a convolver for n×n fields.
func NewConvolver(n int, pool *compute.Pool) *Convolver {
	return &Convolver{
		n:    n,
		pool: pool,
		buf:  make([]complex128, n*n),
	}
}

// Kernel transforms the real-space kernel values (row-major, n×n, origin at
// index 0). cell is the area element applied to every convolution.
func (c *Convolver) Kernel(values []float64, cell float64) (Kernel, error) {
	if len(values) != c.n*c.n {
		return Kernel{}, fmt.Errorf("%w: kernel has %d values, want %d", ErrShape, len(values), c.n*c.n)
	}
	hat := make([]complex128, len(values))
	for i, v := range values {
		hat[i] = complex(v, 0)
	}
	c.forward(hat)
	s := complex(cell, 0)
	for i := range hat {
		hat[i] *= s
	}
	return Kernel{n: c.n, hat: hat}, nil
}

// Convolve sets dst to the periodic convolution of src with k.
func (c *Convolver) Convolve(dst, src []float64, k Kernel) {
	c.run(src, k)
	for i, v := range c.buf {
		dst[i] = real(v)
	}
}

// ConvolveAdd adds the periodic convolution of src with k to dst.
func (c *Convolver) ConvolveAdd(dst, src []float64, k Kernel) {
	c.run(src, k)
	for i, v := range c.buf {
		dst[i] += real(v)
	}
}

func (c *Convolver) run(src []float64, k Kernel) {
	for i, v := range src {
		c.buf[i] = complex(v, 0)
	}
	c.forward(c.buf)
	for i := range c.buf {
		c.buf[i] *= k.hat[i]
	}
	c.inverse(c.buf)
}

func (c *Convolver) forward(data []complex128) {
	c.rows(data, fft.FFT)
	Transpose(data, c.n)
	c.rows(data, fft.FFT)
}

// inverse undoes forward including the transpose, so the result is back in
// the original row-major layout.
func (c *Convolver) inverse(data []complex128) {
	c.rows(data, fft.IFFT)
	Transpose(data, c.n)
	c.rows(data, fft.IFFT)
}

func (c *Convolver) rows(data []complex128, transform func([]complex128) []complex128) {
	n := c.n
	c.pool.Run(n, func(start, end int) {
		for r := start; r < end; r++ {
			row := data[r*n : (r+1)*n]
			copy(row, transform(row))
		}
	})
}

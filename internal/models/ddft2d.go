package models

import (
	"fmt"

	"github.com/san-kum/sirddft/internal/compute"
	"github.com/san-kum/sirddft/internal/dynamo"
	"github.com/san-kum/sirddft/internal/grid"
	"github.com/san-kum/sirddft/internal/sir"
	"github.com/san-kum/sirddft/internal/stencil"
)

// SIRDDFT2D is the SIR-DDFT model on a square periodic grid with equal
// spacing. Interaction potentials are FFT convolutions and diffusion uses
// the nine-point Laplacian.
type SIRDDFT2D struct {
	lifecycle
	grid grid.Cartesian
	n    int
	dx   float64
	sir  sir.SIRParameters
	diff sir.SIRDiffusionParameters
	ddft sir.SIRDDFTParameters
	pool *compute.Pool

	conv     *stencil.Convolver
	kernelSD stencil.Kernel
	kernelSI stencil.Kernel

	// potentials acting on S and R, and on I; tmp holds field sums
	convSR, convI, tmp []float64
}

func NewSIRDDFT2D(params sir.SIRParameters, diff sir.SIRDiffusionParameters, ddft sir.SIRDDFTParameters, state sir.Spatial2D, opts ...Option) (*SIRDDFT2D, error) {
	g, err := squareCartesian(state.Grid)
	if err != nil {
		return nil, fmt.Errorf("sir-ddft-2d: %w", err)
	}
	n := g.N
	if err := checkFields(n*n, state.S, state.I, state.R); err != nil {
		return nil, fmt.Errorf("sir-ddft-2d: %w", err)
	}
	o := newOptions(opts)
	pool := o.pool()

	dx := g.Delta()
	conv := stencil.NewConvolver(n, pool)
	cell := fftCell(g)
	kSD, err := conv.Kernel(stencil.GaussianKernel2D(n, dx, ddft.SocialDistancingAmplitude, ddft.SocialDistancingRange), cell)
	if err != nil {
		return nil, fmt.Errorf("sir-ddft-2d: social distancing kernel: %w", err)
	}
	kSI, err := conv.Kernel(stencil.GaussianKernel2D(n, dx, ddft.SelfIsolationAmplitude, ddft.SelfIsolationRange), cell)
	if err != nil {
		return nil, fmt.Errorf("sir-ddft-2d: self-isolation kernel: %w", err)
	}
	o.log.Debugf("sir-ddft-2d: %dx%d dx=%g threads=%d", n, n, dx, pool.Workers())

	return &SIRDDFT2D{
		lifecycle: newLifecycle(state.Flatten()),
		grid:      grid.NewCartesian(g, g),
		n:         n,
		dx:        dx,
		sir:       params,
		diff:      diff,
		ddft:      ddft,
		pool:      pool,
		conv:      conv,
		kernelSD:  kSD,
		kernelSI:  kSI,
		convSR:    make([]float64, n*n),
		convI:     make([]float64, n*n),
		tmp:       make([]float64, n*n),
	}, nil
}

// fftCell is the area element of the FFT convolution, (L/n)².
func fftCell(g grid.Equidistant) float64 {
	h := g.Length() / float64(g.N)
	return h * h
}

func (m *SIRDDFT2D) RHS(_ float64, y, dydt []float64) {
	n := m.n
	S, I, R := split3(y, n*n)
	dS, dI, dR := split3(dydt, n*n)

	for i := range m.tmp {
		m.tmp[i] = S[i] + R[i]
	}
	m.conv.Convolve(m.convSR, m.tmp, m.kernelSD)
	m.conv.ConvolveAdd(m.convSR, I, m.kernelSI)

	for i := range m.tmp {
		m.tmp[i] = S[i] + I[i] + R[i]
	}
	m.conv.Convolve(m.convI, m.tmp, m.kernelSI)

	c := m.sir.InfectionParameter
	w := m.sir.RecoveryRate
	mu := m.sir.MortalityRate
	dx := m.dx

	m.pool.Run(n, func(start, end int) {
		for iy := start; iy < end; iy++ {
			iys := stencil.Indices(iy, n)
			for ix := 0; ix < n; ix++ {
				p := neighbourhood(ix, iy, n, iys)
				i := p.At(ix, iy)
				inf := c * S[i] * I[i]
				dS[i] = m.diff.DiffusivityS*stencil.Laplace2D9(S, p.Point2D, dx) - inf -
					m.ddft.MobilityS*p.divergence(S, m.convSR, dx)
				dI[i] = m.diff.DiffusivityI*stencil.Laplace2D9(I, p.Point2D, dx) + inf - w*I[i] - mu*I[i] -
					m.ddft.MobilityI*p.divergence(I, m.convI, dx)
				dR[i] = m.diff.DiffusivityR*stencil.Laplace2D9(R, p.Point2D, dx) + w*I[i] -
					m.ddft.MobilityR*p.divergence(R, m.convSR, dx)
			}
		}
	})
}

func (m *SIRDDFT2D) Integrate(s dynamo.Solver) (dynamo.Stats, error) { return s.Integrate(m) }

func (m *SIRDDFT2D) Result() (float64, sir.View2D) {
	return m.time, sir.NewView2D(m.state, m.grid)
}

func (m *SIRDDFT2D) Snapshot() sir.Snapshot {
	_, v := m.Result()
	return v
}

func (m *SIRDDFT2D) Grid() grid.Grid2D { return m.grid }

// point is a grid point of a square periodic grid with its neighbours two
// steps out in each direction.
type point struct {
	stencil.Point2D
	PrevPrevX, NextNextX int
	PrevPrevY, NextNextY int
}

func neighbourhood(ix, iy, n int, iys [4]int) point {
	ixs := stencil.Indices(ix, n)
	return point{
		Point2D: stencil.Point2D{
			PrevX: ixs[1], X: ix, NextX: ixs[2],
			PrevY: iys[1], Y: iy, NextY: iys[2],
			NX: n,
		},
		PrevPrevX: ixs[0], NextNextX: ixs[3],
		PrevPrevY: iys[0], NextNextY: iys[3],
	}
}

// divergence is the central difference form of ∇·(f∇φ) at p.
func (p point) divergence(f, phi []float64, d float64) float64 {
	c := phi[p.At(p.X, p.Y)]
	x := stencil.Grad(
		f[p.At(p.PrevX, p.Y)]*stencil.Grad(phi[p.At(p.PrevPrevX, p.Y)], c, d),
		f[p.At(p.NextX, p.Y)]*stencil.Grad(c, phi[p.At(p.NextNextX, p.Y)], d),
		d)
	y := stencil.Grad(
		f[p.At(p.X, p.PrevY)]*stencil.Grad(phi[p.At(p.X, p.PrevPrevY)], c, d),
		f[p.At(p.X, p.NextY)]*stencil.Grad(c, phi[p.At(p.X, p.NextNextY)], d),
		d)
	return x + y
}

package models

import (
	"fmt"

	"github.com/san-kum/sirddft/internal/compute"
	"github.com/san-kum/sirddft/internal/dynamo"
	"github.com/san-kum/sirddft/internal/grid"
	"github.com/san-kum/sirddft/internal/sir"
	"github.com/san-kum/sirddft/internal/stencil"
)

// SZDDFT2D is the susceptible-zombie DDFT model on a square periodic grid:
//
//	S' = D_S ΔS - b·S·Z - μ_S ∇·(S∇Φ_S),  Φ_S = fear ⊛ Z
//	Z' = D_Z ΔZ + (b-k)·S·Z + μ_Z ∇·(Z∇Φ_Z),  Φ_Z = hunger ⊛ S
//
// with bite parameter b and kill parameter k. Negative fear amplitudes repel
// humans from zombies, negative hunger amplitudes draw zombies towards
// humans.
type SZDDFT2D struct {
	lifecycle
	grid grid.Cartesian
	n    int
	dx   float64
	sz   sir.SZParameters
	diff sir.SZDiffusionParameters
	ddft sir.SZDDFTParameters
	pool *compute.Pool

	conv         *stencil.Convolver
	kernelFear   stencil.Kernel
	kernelHunger stencil.Kernel

	phiS, phiZ []float64
}

func NewSZDDFT2D(params sir.SZParameters, diff sir.SZDiffusionParameters, ddft sir.SZDDFTParameters, state sir.SZSpatial2D, opts ...Option) (*SZDDFT2D, error) {
	g, err := squareCartesian(state.Grid)
	if err != nil {
		return nil, fmt.Errorf("sz-ddft-2d: %w", err)
	}
	n := g.N
	if err := checkFields(n*n, state.S, state.Z); err != nil {
		return nil, fmt.Errorf("sz-ddft-2d: %w", err)
	}
	o := newOptions(opts)
	pool := o.pool()

	dx := g.Delta()
	conv := stencil.NewConvolver(n, pool)
	cell := fftCell(g)
	kFear, err := conv.Kernel(stencil.GaussianKernel2D(n, dx, ddft.FearAmplitude, ddft.FearRange), cell)
	if err != nil {
		return nil, fmt.Errorf("sz-ddft-2d: fear kernel: %w", err)
	}
	kHunger, err := conv.Kernel(stencil.GaussianKernel2D(n, dx, ddft.HungerAmplitude, ddft.HungerRange), cell)
	if err != nil {
		return nil, fmt.Errorf("sz-ddft-2d: hunger kernel: %w", err)
	}
	o.log.Debugf("sz-ddft-2d: %dx%d dx=%g threads=%d", n, n, dx, pool.Workers())

	return &SZDDFT2D{
		lifecycle:    newLifecycle(state.Flatten()),
		grid:         grid.NewCartesian(g, g),
		n:            n,
		dx:           dx,
		sz:           params,
		diff:         diff,
		ddft:         ddft,
		pool:         pool,
		conv:         conv,
		kernelFear:   kFear,
		kernelHunger: kHunger,
		phiS:         make([]float64, n*n),
		phiZ:         make([]float64, n*n),
	}, nil
}

func (m *SZDDFT2D) RHS(_ float64, y, dydt []float64) {
	n := m.n
	S, Z := split2(y, n*n)
	dS, dZ := split2(dydt, n*n)

	m.conv.Convolve(m.phiS, Z, m.kernelFear)
	m.conv.Convolve(m.phiZ, S, m.kernelHunger)

	b := m.sz.BiteParameter
	k := m.sz.KillParameter
	dx := m.dx

	m.pool.Run(n, func(start, end int) {
		for iy := start; iy < end; iy++ {
			iys := stencil.Indices(iy, n)
			for ix := 0; ix < n; ix++ {
				p := neighbourhood(ix, iy, n, iys)
				i := p.At(ix, iy)
				sz := S[i] * Z[i]
				dS[i] = m.diff.DiffusivityS*stencil.Laplace2D9(S, p.Point2D, dx) - b*sz -
					m.ddft.MobilityS*p.divergence(S, m.phiS, dx)
				dZ[i] = m.diff.DiffusivityZ*stencil.Laplace2D9(Z, p.Point2D, dx) + (b-k)*sz +
					m.ddft.MobilityZ*p.divergence(Z, m.phiZ, dx)
			}
		}
	})
}

func (m *SZDDFT2D) Integrate(s dynamo.Solver) (dynamo.Stats, error) { return s.Integrate(m) }

func (m *SZDDFT2D) Result() (float64, sir.SZView2D) {
	return m.time, sir.NewSZView2D(m.state, m.grid)
}

func (m *SZDDFT2D) Snapshot() sir.Snapshot {
	_, v := m.Result()
	return v
}

func (m *SZDDFT2D) Grid() grid.Grid2D { return m.grid }

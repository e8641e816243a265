package models

import (
	"fmt"

	"github.com/san-kum/sirddft/internal/compute"
	"github.com/san-kum/sirddft/internal/dynamo"
	"github.com/san-kum/sirddft/internal/grid"
	"github.com/san-kum/sirddft/internal/sir"
	"github.com/san-kum/sirddft/internal/stencil"
)

// SIRDiffusion1D is the SIR model with diffusion of every field on a
// periodic 1D grid.
type SIRDiffusion1D struct {
	lifecycle
	grid  grid.Equidistant
	dx    float64
	sir   sir.SIRParameters
	diff  sir.SIRDiffusionParameters
	pool  *compute.Pool
	index [][4]int
}

func NewSIRDiffusion1D(params sir.SIRParameters, diff sir.SIRDiffusionParameters, state sir.Spatial1D, opts ...Option) (*SIRDiffusion1D, error) {
	g, err := equidistant(state.Grid)
	if err != nil {
		return nil, fmt.Errorf("sir-diffusion-1d: %w", err)
	}
	if err := checkFields(g.N, state.S, state.I, state.R); err != nil {
		return nil, fmt.Errorf("sir-diffusion-1d: %w", err)
	}
	o := newOptions(opts)
	o.log.Debugf("sir-diffusion-1d: n=%d dx=%g threads=%d", g.N, g.Delta(), o.threads)

	return &SIRDiffusion1D{
		lifecycle: newLifecycle(state.Flatten()),
		grid:      g,
		dx:        g.Delta(),
		sir:       params,
		diff:      diff,
		pool:      o.pool(),
		index:     ringIndices(g.N),
	}, nil
}

func (m *SIRDiffusion1D) RHS(_ float64, y, dydt []float64) {
	n := m.grid.N
	S, I, R := split3(y, n)
	dS, dI, dR := split3(dydt, n)

	c := m.sir.InfectionParameter
	w := m.sir.RecoveryRate
	mu := m.sir.MortalityRate
	dx := m.dx

	m.pool.Run(n, func(start, end int) {
		for i := start; i < end; i++ {
			prev, next := m.index[i][1], m.index[i][2]
			inf := c * S[i] * I[i]
			dS[i] = m.diff.DiffusivityS*stencil.Laplace1D(S, prev, i, next, dx) - inf
			dI[i] = m.diff.DiffusivityI*stencil.Laplace1D(I, prev, i, next, dx) + inf - w*I[i] - mu*I[i]
			dR[i] = m.diff.DiffusivityR*stencil.Laplace1D(R, prev, i, next, dx) + w*I[i]
		}
	})
}

func (m *SIRDiffusion1D) Integrate(s dynamo.Solver) (dynamo.Stats, error) { return s.Integrate(m) }

// Result returns the current time and a view into the state. The view is
// invalidated by the next integration.
func (m *SIRDiffusion1D) Result() (float64, sir.View1D) {
	return m.time, sir.NewView1D(m.state, m.grid)
}

func (m *SIRDiffusion1D) Snapshot() sir.Snapshot {
	_, v := m.Result()
	return v
}

func (m *SIRDiffusion1D) Grid() grid.Grid1D { return m.grid }

// SIRDiffusion2D is the SIR model with diffusion on a periodic Cartesian
// grid. The five-point Laplacian allows nx != ny and dx != dy.
type SIRDiffusion2D struct {
	lifecycle
	grid      grid.Cartesian
	nx, ny    int
	dx, dy    float64
	ninePoint bool
	sir       sir.SIRParameters
	diff      sir.SIRDiffusionParameters
	pool      *compute.Pool
}

func NewSIRDiffusion2D(params sir.SIRParameters, diff sir.SIRDiffusionParameters, state sir.Spatial2D, opts ...Option) (*SIRDiffusion2D, error) {
	gx, gy, err := cartesian(state.Grid)
	if err != nil {
		return nil, fmt.Errorf("sir-diffusion-2d: %w", err)
	}
	if err := checkFields(gx.N*gy.N, state.S, state.I, state.R); err != nil {
		return nil, fmt.Errorf("sir-diffusion-2d: %w", err)
	}
	o := newOptions(opts)
	if o.ninePoint && gx.Delta() != gy.Delta() {
		return nil, fmt.Errorf("sir-diffusion-2d: nine-point stencil: %w: dx=%g dy=%g",
			dynamo.ErrSpacingMismatch, gx.Delta(), gy.Delta())
	}
	o.log.Debugf("sir-diffusion-2d: %dx%d ninepoint=%t threads=%d", gx.N, gy.N, o.ninePoint, o.threads)

	return &SIRDiffusion2D{
		lifecycle: newLifecycle(state.Flatten()),
		grid:      grid.NewCartesian(gx, gy),
		nx:        gx.N,
		ny:        gy.N,
		dx:        gx.Delta(),
		dy:        gy.Delta(),
		ninePoint: o.ninePoint,
		sir:       params,
		diff:      diff,
		pool:      o.pool(),
	}, nil
}

func (m *SIRDiffusion2D) laplace(f []float64, p stencil.Point2D) float64 {
	if m.ninePoint {
		return stencil.Laplace2D9(f, p, m.dx)
	}
	return stencil.Laplace2D(f, p, m.dx, m.dy)
}

func (m *SIRDiffusion2D) RHS(_ float64, y, dydt []float64) {
	nx, ny := m.nx, m.ny
	S, I, R := split3(y, nx*ny)
	dS, dI, dR := split3(dydt, nx*ny)

	c := m.sir.InfectionParameter
	w := m.sir.RecoveryRate
	mu := m.sir.MortalityRate

	m.pool.Run(ny, func(start, end int) {
		for iy := start; iy < end; iy++ {
			iys := stencil.Indices(iy, ny)
			for ix := 0; ix < nx; ix++ {
				ixs := stencil.Indices(ix, nx)
				p := stencil.Point2D{
					PrevX: ixs[1], X: ix, NextX: ixs[2],
					PrevY: iys[1], Y: iy, NextY: iys[2],
					NX: nx,
				}
				i := p.At(ix, iy)
				inf := c * S[i] * I[i]
				dS[i] = m.diff.DiffusivityS*m.laplace(S, p) - inf
				dI[i] = m.diff.DiffusivityI*m.laplace(I, p) + inf - w*I[i] - mu*I[i]
				dR[i] = m.diff.DiffusivityR*m.laplace(R, p) + w*I[i]
			}
		}
	})
}

func (m *SIRDiffusion2D) Integrate(s dynamo.Solver) (dynamo.Stats, error) { return s.Integrate(m) }

func (m *SIRDiffusion2D) Result() (float64, sir.View2D) {
	return m.time, sir.NewView2D(m.state, m.grid)
}

func (m *SIRDiffusion2D) Snapshot() sir.Snapshot {
	_, v := m.Result()
	return v
}

func (m *SIRDiffusion2D) Grid() grid.Grid2D { return m.grid }

func split3(y []float64, n int) (a, b, c []float64) {
	return y[:n:n], y[n : 2*n : 2*n], y[2*n : 3*n : 3*n]
}

func split2(y []float64, n int) (a, b []float64) {
	return y[:n:n], y[n : 2*n : 2*n]
}

func ringIndices(n int) [][4]int {
	idx := make([][4]int, n)
	for i := range idx {
		idx[i] = stencil.Indices(i, n)
	}
	return idx
}

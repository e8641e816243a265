package models

import (
	"fmt"

	"github.com/san-kum/sirddft/internal/compute"
	"github.com/san-kum/sirddft/internal/dynamo"
	"github.com/san-kum/sirddft/internal/grid"
	"github.com/san-kum/sirddft/internal/sir"
	"github.com/san-kum/sirddft/internal/stencil"
)

// SIRDDFT1D is the SIR-DDFT model on a periodic 1D grid. The interaction
// potentials are direct circular convolutions with Gaussian kernels:
// social distancing acts on S and R and is sourced by S+R, self-isolation
// is sourced by I for S and R, and by S+I+R for I.
type SIRDDFT1D struct {
	lifecycle
	grid     grid.Equidistant
	dx       float64
	sir      sir.SIRParameters
	diff     sir.SIRDiffusionParameters
	ddft     sir.SIRDDFTParameters
	kernelSD []float64
	kernelSI []float64
	pool     *compute.Pool
}

func NewSIRDDFT1D(params sir.SIRParameters, diff sir.SIRDiffusionParameters, ddft sir.SIRDDFTParameters, state sir.Spatial1D, opts ...Option) (*SIRDDFT1D, error) {
	g, err := equidistant(state.Grid)
	if err != nil {
		return nil, fmt.Errorf("sir-ddft-1d: %w", err)
	}
	if err := checkFields(g.N, state.S, state.I, state.R); err != nil {
		return nil, fmt.Errorf("sir-ddft-1d: %w", err)
	}
	o := newOptions(opts)
	o.log.Debugf("sir-ddft-1d: n=%d dx=%g threads=%d", g.N, g.Delta(), o.threads)

	dx := g.Delta()
	return &SIRDDFT1D{
		lifecycle: newLifecycle(state.Flatten()),
		grid:      g,
		dx:        dx,
		sir:       params,
		diff:      diff,
		ddft:      ddft,
		kernelSD:  stencil.GaussianKernel1D(g.N, dx, ddft.SocialDistancingRange),
		kernelSI:  stencil.GaussianKernel1D(g.N, dx, ddft.SelfIsolationRange),
		pool:      o.pool(),
	}, nil
}

// potential holds the two interaction potentials at one grid point: the one
// acting on S and R, and the one acting on I.
type potential struct {
	sr, i float64
}

// potentialAt convolves the fields with both kernels around position i.
// Each circular distance is visited once; the antipode of an even ring is
// counted once.
func (m *SIRDDFT1D) potentialAt(S, I, R []float64, i int) potential {
	n := len(S)
	kSD, kSI := m.kernelSD, m.kernelSI

	convSR := kSD[0] * (S[i] + R[i])
	convI := kSI[0] * I[i]
	convAll := kSI[0] * (S[i] + I[i] + R[i])

	for d := 1; d <= (n-1)/2; d++ {
		l, r := (i-d+n)%n, (i+d)%n
		sr := S[l] + R[l] + S[r] + R[r]
		in := I[l] + I[r]
		convSR += kSD[d] * sr
		convI += kSI[d] * in
		convAll += kSI[d] * (sr + in)
	}
	if n%2 == 0 {
		a := (i + n/2) % n
		convSR += kSD[n/2] * (S[a] + R[a])
		convI += kSI[n/2] * I[a]
		convAll += kSI[n/2] * (S[a] + I[a] + R[a])
	}

	dx := m.dx
	return potential{
		sr: (convSR*m.ddft.SocialDistancingAmplitude + convI*m.ddft.SelfIsolationAmplitude) * dx,
		i:  convAll * m.ddft.SelfIsolationAmplitude * dx,
	}
}

func (m *SIRDDFT1D) RHS(_ float64, y, dydt []float64) {
	n := m.grid.N
	S, I, R := split3(y, n)
	dS, dI, dR := split3(dydt, n)

	m.pool.Run(n, func(start, end int) {
		m.rhsRange(S, I, R, dS, dI, dR, start, end)
	})
}

// rhsRange evaluates [start, end) with a sliding window of potentials so that
// every point's potential is computed once per chunk.
func (m *SIRDDFT1D) rhsRange(S, I, R, dS, dI, dR []float64, start, end int) {
	n := len(S)
	dx := m.dx
	c := m.sir.InfectionParameter
	w := m.sir.RecoveryRate
	mu := m.sir.MortalityRate

	idx := stencil.Indices(start, n)
	prevprev := m.potentialAt(S, I, R, idx[0])
	prev := m.potentialAt(S, I, R, idx[1])
	curr := m.potentialAt(S, I, R, start)
	next := m.potentialAt(S, I, R, idx[2])

	for i := start; i < end; i++ {
		idx := stencil.Indices(i, n)
		ip, in := idx[1], idx[2]
		nextnext := m.potentialAt(S, I, R, idx[3])

		gradSRPrev := stencil.Grad(prevprev.sr, curr.sr, dx)
		gradSRNext := stencil.Grad(curr.sr, nextnext.sr, dx)
		gradIPrev := stencil.Grad(prevprev.i, curr.i, dx)
		gradINext := stencil.Grad(curr.i, nextnext.i, dx)

		inf := c * S[i] * I[i]
		dS[i] = m.diff.DiffusivityS*stencil.Laplace1D(S, ip, i, in, dx) - inf -
			m.ddft.MobilityS*stencil.Grad(S[ip]*gradSRPrev, S[in]*gradSRNext, dx)
		dI[i] = m.diff.DiffusivityI*stencil.Laplace1D(I, ip, i, in, dx) + inf - w*I[i] - mu*I[i] -
			m.ddft.MobilityI*stencil.Grad(I[ip]*gradIPrev, I[in]*gradINext, dx)
		dR[i] = m.diff.DiffusivityR*stencil.Laplace1D(R, ip, i, in, dx) + w*I[i] -
			m.ddft.MobilityR*stencil.Grad(R[ip]*gradSRPrev, R[in]*gradSRNext, dx)

		prevprev, prev, curr, next = prev, curr, next, nextnext
	}
}

func (m *SIRDDFT1D) Integrate(s dynamo.Solver) (dynamo.Stats, error) { return s.Integrate(m) }

func (m *SIRDDFT1D) Result() (float64, sir.View1D) {
	return m.time, sir.NewView1D(m.state, m.grid)
}

func (m *SIRDDFT1D) Snapshot() sir.Snapshot {
	_, v := m.Result()
	return v
}

func (m *SIRDDFT1D) Grid() grid.Grid1D { return m.grid }

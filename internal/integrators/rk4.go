package integrators

import "github.com/san-kum/sirddft/internal/dynamo"

// RK4 is the classical fourth order Runge-Kutta method with a fixed step
// size (default 0.01).
type RK4 struct {
	cfg config

	k1, k2, k3, k4 []float64
	scratch        []float64
}

func NewRK4(opts ...Option) *RK4 {
	return &RK4{cfg: newConfig(0.01, opts)}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make([]float64, n)
		r.k2 = make([]float64, n)
		r.k3 = make([]float64, n)
		r.k4 = make([]float64, n)
		r.scratch = make([]float64, n)
	}
}

func (r *RK4) Integrate(p dynamo.Problem) (dynamo.Stats, error) {
	return integrateFixed(r, p, r.cfg, 4, func(t, dt float64, y []float64) {
		r.step(p, t, dt, y)
	})
}

func (r *RK4) step(p dynamo.Problem, t, dt float64, x []float64) {
	n := len(x)
	r.ensureScratch(n)

	p.RHS(t, x, r.k1)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	p.RHS(t+dt*0.5, r.scratch, r.k2)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	p.RHS(t+dt*0.5, r.scratch, r.k3)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	p.RHS(t+dt, r.scratch, r.k4)

	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		x[i] += dt6 * (r.k1[i] + 2*r.k2[i] + 2*r.k3[i] + r.k4[i])
	}
}

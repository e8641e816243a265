package sir

import (
	"math"

	"github.com/san-kum/sirddft/internal/grid"
)

// Gaussian is a population profile centred in the domain and normalised so
// that its mean density over the domain equals MeanDensity. A fraction Seed of
// the population starts out infected (or as zombies).
type Gaussian struct {
	// Width sets the variance to Length²/Width.
	Width       float64 `yaml:"width" json:"width"`
	MeanDensity float64 `yaml:"mean_density" json:"mean_density"`
	Seed        float64 `yaml:"seed" json:"seed"`
}

// DefaultGaussian is the outbreak profile used by the SIR examples.
func DefaultGaussian() Gaussian {
	return Gaussian{Width: 50, MeanDensity: 0.3543165399952919, Seed: 0.001}
}

// DefaultZombieGaussian is the outbreak profile used by the SZ examples.
func DefaultZombieGaussian() Gaussian {
	return Gaussian{Width: 75, MeanDensity: 0.25, Seed: 0.001}
}

func (p Gaussian) profile(length float64) func(r2 float64) float64 {
	variance := length * length / p.Width
	return func(r2 float64) float64 {
		return math.Exp(-r2 / (2 * variance))
	}
}

// Spatial1D samples the profile on g.
func (p Gaussian) Spatial1D(g grid.Grid1D) Spatial1D {
	lo, hi := grid.Extent(g)
	length := hi - lo
	mid := lo + length/2
	f := p.profile(length)

	mean := 0.0
	for x := range g.All() {
		mean += f((x - mid) * (x - mid))
	}
	mean *= grid.Spacing(g) / length

	return NewSpatial1D(g, func(x float64) (float64, float64, float64) {
		n := f((x-mid)*(x-mid)) / mean * p.MeanDensity
		return (1 - p.Seed) * n, p.Seed * n, 0
	})
}

// Spatial2D samples the profile on g. The variance follows the x extent.
func (p Gaussian) Spatial2D(g grid.Cartesian) Spatial2D {
	density := p.density2D(g)
	return NewSpatial2D(g, func(x, y float64) (float64, float64, float64) {
		n := density(x, y)
		return (1 - p.Seed) * n, p.Seed * n, 0
	})
}

// SZSpatial2D samples the profile on g, seeding zombies instead of infected.
func (p Gaussian) SZSpatial2D(g grid.Cartesian) SZSpatial2D {
	density := p.density2D(g)
	return NewSZSpatial2D(g, func(x, y float64) (float64, float64) {
		n := density(x, y)
		return (1 - p.Seed) * n, p.Seed * n
	})
}

func (p Gaussian) density2D(g grid.Cartesian) func(x, y float64) float64 {
	xlo, xhi := grid.Extent(g.X)
	ylo, yhi := grid.Extent(g.Y)
	lx, ly := xhi-xlo, yhi-ylo
	mx, my := xlo+lx/2, ylo+ly/2
	f := p.profile(lx)
	r2 := func(x, y float64) float64 {
		return (x-mx)*(x-mx) + (y-my)*(y-my)
	}

	mean := 0.0
	for x, y := range g.All() {
		mean += f(r2(x, y))
	}
	mean *= grid.Spacing(g.X) * grid.Spacing(g.Y) / (lx * ly)

	return func(x, y float64) float64 {
		return f(r2(x, y)) / mean * p.MeanDensity
	}
}

package experiment

import (
	"errors"
	"fmt"
	"slices"

	"github.com/san-kum/sirddft/internal/config"
	"github.com/san-kum/sirddft/internal/dynamo"
	"github.com/san-kum/sirddft/internal/grid"
	"github.com/san-kum/sirddft/internal/integrators"
	"github.com/san-kum/sirddft/internal/models"
	"github.com/san-kum/sirddft/internal/sir"
)

var (
	ErrUnknownModel  = errors.New("experiment: unknown model")
	ErrUnknownSolver = errors.New("experiment: unknown solver")
)

// ModelBuilder constructs a model with its initial state from a config.
type ModelBuilder func(cfg *config.Config, opts ...models.Option) (models.Model, error)

// SolverBuilder constructs a solver from solver settings.
type SolverBuilder func(cfg config.SolverConfig, opts ...integrators.Option) dynamo.Solver

type modelEntry struct {
	build  ModelBuilder
	fields []string
}

type Registry struct {
	models  map[string]modelEntry
	solvers map[string]SolverBuilder
}

var (
	sirFields = []string{"S", "I", "R"}
	szFields  = []string{"S", "Z"}
)

func NewRegistry() *Registry {
	r := &Registry{
		models:  make(map[string]modelEntry),
		solvers: make(map[string]SolverBuilder),
	}

	r.RegisterModel("sir", sirFields, func(cfg *config.Config, _ ...models.Option) (models.Model, error) {
		in := cfg.Initial
		return models.NewSIR(cfg.SIR, sir.State{S: in.S, I: in.I, R: in.R})
	})
	r.RegisterModel("sir-diffusion-1d", sirFields, func(cfg *config.Config, opts ...models.Option) (models.Model, error) {
		g, err := line(cfg.Grid)
		if err != nil {
			return nil, err
		}
		return models.NewSIRDiffusion1D(cfg.SIR, cfg.Diffusion, cfg.Initial.Gaussian.Spatial1D(g), opts...)
	})
	r.RegisterModel("sir-diffusion-2d", sirFields, func(cfg *config.Config, opts ...models.Option) (models.Model, error) {
		g, err := plane(cfg.Grid)
		if err != nil {
			return nil, err
		}
		if cfg.NinePoint {
			opts = append(opts, models.WithNinePointLaplacian())
		}
		return models.NewSIRDiffusion2D(cfg.SIR, cfg.Diffusion, cfg.Initial.Gaussian.Spatial2D(g), opts...)
	})
	r.RegisterModel("sir-ddft-1d", sirFields, func(cfg *config.Config, opts ...models.Option) (models.Model, error) {
		g, err := line(cfg.Grid)
		if err != nil {
			return nil, err
		}
		return models.NewSIRDDFT1D(cfg.SIR, cfg.Diffusion, cfg.DDFT, cfg.Initial.Gaussian.Spatial1D(g), opts...)
	})
	r.RegisterModel("sir-ddft-2d", sirFields, func(cfg *config.Config, opts ...models.Option) (models.Model, error) {
		g, err := plane(cfg.Grid)
		if err != nil {
			return nil, err
		}
		return models.NewSIRDDFT2D(cfg.SIR, cfg.Diffusion, cfg.DDFT, cfg.Initial.Gaussian.Spatial2D(g), opts...)
	})
	r.RegisterModel("sz-ddft-2d", szFields, func(cfg *config.Config, opts ...models.Option) (models.Model, error) {
		g, err := plane(cfg.Grid)
		if err != nil {
			return nil, err
		}
		return models.NewSZDDFT2D(cfg.SZ, cfg.SZDiffusion, cfg.SZDDFT, cfg.Initial.Gaussian.SZSpatial2D(g), opts...)
	})

	r.solvers["rkf45"] = func(cfg config.SolverConfig, opts ...integrators.Option) dynamo.Solver {
		return integrators.NewRKF45(append(solverOptions(cfg), opts...)...)
	}
	r.solvers["euler"] = func(cfg config.SolverConfig, opts ...integrators.Option) dynamo.Solver {
		return integrators.NewEuler(append(solverOptions(cfg), opts...)...)
	}
	r.solvers["rk4"] = func(cfg config.SolverConfig, opts ...integrators.Option) dynamo.Solver {
		return integrators.NewRK4(append(solverOptions(cfg), opts...)...)
	}

	return r
}

// RegisterModel adds or replaces a model. fields names the fields of its
// snapshots in order.
func (r *Registry) RegisterModel(name string, fields []string, build ModelBuilder) {
	r.models[name] = modelEntry{build: build, fields: fields}
}

func (r *Registry) GetModel(cfg *config.Config, opts ...models.Option) (models.Model, error) {
	e, ok := r.models[cfg.Model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, cfg.Model)
	}
	m, err := e.build(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Model, err)
	}
	return m, nil
}

func (r *Registry) GetSolver(cfg config.SolverConfig, opts ...integrators.Option) (dynamo.Solver, error) {
	fn, ok := r.solvers[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSolver, cfg.Name)
	}
	return fn(cfg, opts...), nil
}

// Fields returns the snapshot field names of model.
func (r *Registry) Fields(model string) ([]string, error) {
	e, ok := r.models[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	return e.fields, nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) ListSolvers() []string {
	names := make([]string, 0, len(r.solvers))
	for name := range r.solvers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func solverOptions(cfg config.SolverConfig) []integrators.Option {
	var opts []integrators.Option
	if cfg.Dt > 0 {
		opts = append(opts, integrators.WithDt(cfg.Dt))
	}
	if cfg.Eps0 > 0 {
		opts = append(opts, integrators.WithEps0(cfg.Eps0))
	}
	if cfg.Beta > 0 {
		opts = append(opts, integrators.WithBeta(cfg.Beta))
	}
	if cfg.MaxSteps > 0 {
		opts = append(opts, integrators.WithMaxSteps(cfg.MaxSteps))
	}
	return opts
}

func line(g config.GridConfig) (grid.Equidistant, error) {
	return grid.NewEquidistant(g.Lo, g.Hi, g.N)
}

func plane(g config.GridConfig) (grid.Cartesian, error) {
	x, err := line(g)
	if err != nil {
		return grid.Cartesian{}, err
	}
	if g.NY == 0 && g.HiY == 0 {
		return grid.NewCartesian(x, x), nil
	}
	ny, hiY := g.N, g.Hi
	if g.NY > 0 {
		ny = g.NY
	}
	if g.HiY != 0 {
		hiY = g.HiY
	}
	y, err := grid.NewEquidistant(g.Lo, hiY, ny)
	if err != nil {
		return grid.Cartesian{}, fmt.Errorf("y axis: %w", err)
	}
	return grid.NewCartesian(x, y), nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/sirddft/internal/sir"
)

const (
	DefaultFrames        = 100
	DefaultFrameDuration = 0.1
	DefaultLength        = 10.0
	DefaultGridPoints    = 128
	DefaultThreads       = 1
)

var (
	ErrInvalid          = errors.New("config: invalid value")
	ErrUnknownParameter = errors.New("config: unknown parameter")
)

// Config describes one run: which model, on which grid, with which
// parameters, integrated by which solver for how many frames.
type Config struct {
	Model         string  `yaml:"model"`
	Frames        int     `yaml:"frames"`
	FrameDuration float64 `yaml:"frame_duration"`
	Threads       int     `yaml:"threads"`
	NinePoint     bool    `yaml:"nine_point"`

	Grid    GridConfig    `yaml:"grid"`
	Solver  SolverConfig  `yaml:"solver"`
	Initial InitialConfig `yaml:"initial"`
	Stop    StopConfig    `yaml:"stop"`

	SIR       sir.SIRParameters          `yaml:"sir"`
	Diffusion sir.SIRDiffusionParameters `yaml:"diffusion"`
	DDFT      sir.SIRDDFTParameters      `yaml:"ddft"`

	SZ          sir.SZParameters          `yaml:"sz"`
	SZDiffusion sir.SZDiffusionParameters `yaml:"sz_diffusion"`
	SZDDFT      sir.SZDDFTParameters      `yaml:"sz_ddft"`
}

// GridConfig is an equidistant grid over [Lo, Hi] with N points per axis.
// NY, when set, gives the y axis its own point count and Hi its own upper
// bound (HiY); only the diffusion models accept such grids.
type GridConfig struct {
	Lo  float64 `yaml:"lo"`
	Hi  float64 `yaml:"hi"`
	N   int     `yaml:"n"`
	NY  int     `yaml:"ny"`
	HiY float64 `yaml:"hi_y"`
}

type SolverConfig struct {
	Name     string  `yaml:"name"`
	Dt       float64 `yaml:"dt"`
	Eps0     float64 `yaml:"eps0"`
	Beta     float64 `yaml:"beta"`
	MaxSteps int     `yaml:"max_steps"`
}

// InitialConfig is the initial condition: a lumped state for the SIR model
// and a normalised Gaussian for the spatial models.
type InitialConfig struct {
	S        float64      `yaml:"s"`
	I        float64      `yaml:"i"`
	R        float64      `yaml:"r"`
	Gaussian sir.Gaussian `yaml:"gaussian"`
}

// StopConfig ends a run early once any field in Fields falls below
// Threshold times the initial population, but not before MinTime.
type StopConfig struct {
	Fields    []string `yaml:"fields"`
	Threshold float64  `yaml:"threshold"`
	MinTime   float64  `yaml:"min_time"`
}

// Enabled reports whether an early stop rule is configured.
func (s StopConfig) Enabled() bool { return len(s.Fields) > 0 && s.Threshold > 0 }

func DefaultConfig() *Config {
	return &Config{
		Model:         "sir-ddft-2d",
		Frames:        DefaultFrames,
		FrameDuration: DefaultFrameDuration,
		Threads:       DefaultThreads,
		Grid:          GridConfig{Lo: 0, Hi: DefaultLength, N: DefaultGridPoints},
		Solver:        SolverConfig{Name: "rkf45"},
		Initial: InitialConfig{
			S:        0.999,
			I:        0.001,
			Gaussian: sir.DefaultGaussian(),
		},
		SIR:       sir.NewSIRParameters(1.0, 0.1),
		Diffusion: sir.SIRDiffusionParameters{DiffusivityS: 0.01, DiffusivityI: 0.01, DiffusivityR: 0.01},
		DDFT: sir.SIRDDFTParameters{
			MobilityS: 1, MobilityI: 1, MobilityR: 1,
			SocialDistancingAmplitude: -10, SocialDistancingRange: 100,
			SelfIsolationAmplitude: -30, SelfIsolationRange: 100,
		},
		SZ:          sir.SZParameters{BiteParameter: 5.5, KillParameter: 4.5},
		SZDiffusion: sir.SZDiffusionParameters{DiffusivityS: 0.01, DiffusivityZ: 0.005},
		SZDDFT: sir.SZDDFTParameters{
			MobilityS: 1, MobilityZ: 1,
			FearAmplitude: -300, FearRange: 100,
			HungerAmplitude: -100, HungerRange: 100,
		},
	}
}

// Load reads a YAML file on top of DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Stop.Fields = append([]string(nil), c.Stop.Fields...)
	return &out
}

// Validate checks the values that do not depend on the model.
func (c *Config) Validate() error {
	switch {
	case c.Frames <= 0:
		return fmt.Errorf("%w: frames must be positive, got %d", ErrInvalid, c.Frames)
	case !(c.FrameDuration > 0):
		return fmt.Errorf("%w: frame_duration must be positive, got %g", ErrInvalid, c.FrameDuration)
	case c.Solver.Dt < 0, c.Solver.Eps0 < 0, c.Solver.Beta < 0, c.Solver.MaxSteps < 0:
		return fmt.Errorf("%w: solver settings must not be negative", ErrInvalid)
	}
	return nil
}

// Set assigns value to the numeric parameter at a dotted YAML path such as
// "ddft.self_isolation_amplitude" or "grid.n".
func (c *Config) Set(path string, value float64) error {
	root, err := c.node()
	if err != nil {
		return err
	}
	node, err := lookup(root, path)
	if err != nil {
		return err
	}
	if node.Kind != yaml.ScalarNode || (node.Tag != "!!float" && node.Tag != "!!int") {
		return fmt.Errorf("%w: %s is not numeric", ErrUnknownParameter, path)
	}
	node.Tag = ""
	node.Value = strconv.FormatFloat(value, 'g', -1, 64)

	out, err := yaml.Marshal(root)
	if err != nil {
		return err
	}
	next := DefaultConfig()
	if err := yaml.Unmarshal(out, next); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	*c = *next
	return nil
}

// Get returns the numeric parameter at a dotted YAML path.
func (c *Config) Get(path string) (float64, error) {
	root, err := c.node()
	if err != nil {
		return 0, err
	}
	node, err := lookup(root, path)
	if err != nil {
		return 0, err
	}
	var v float64
	if err := node.Decode(&v); err != nil {
		return 0, fmt.Errorf("%w: %s is not numeric", ErrUnknownParameter, path)
	}
	return v, nil
}

func (c *Config) node() (*yaml.Node, error) {
	var doc yaml.Node
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Content[0], nil
}

func lookup(node *yaml.Node, path string) (*yaml.Node, error) {
	for _, key := range strings.Split(path, ".") {
		if node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, path)
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				next = node.Content[i+1]
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParameter, path)
		}
		node = next
	}
	return node, nil
}

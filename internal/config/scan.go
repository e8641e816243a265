package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// Axis is one scanned parameter. Values lists the points explicitly;
// otherwise Steps points are spread evenly over [From, To].
type Axis struct {
	Name      string    `yaml:"name"`
	Parameter string    `yaml:"parameter"`
	Values    []float64 `yaml:"values"`
	From      float64   `yaml:"from"`
	To        float64   `yaml:"to"`
	Steps     int       `yaml:"steps"`
	// Divide, when set, scans a ratio: Parameter becomes the value of the
	// Divide parameter over the axis value.
	Divide string `yaml:"divide"`
}

// Label names the axis in outcomes.
func (a Axis) Label() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Parameter
}

// Points returns the axis values.
func (a Axis) Points() ([]float64, error) {
	if len(a.Values) > 0 {
		return a.Values, nil
	}
	switch {
	case a.Steps == 1:
		return []float64{a.From}, nil
	case a.Steps > 1:
		return floats.Span(make([]float64, a.Steps), a.From, a.To), nil
	default:
		return nil, fmt.Errorf("%w: axis %s has no values", ErrInvalid, a.Label())
	}
}

// Scan is a grid of runs around a preset: the Cartesian product of all
// axes, executed with at most Jobs runs in flight.
type Scan struct {
	Model  string `yaml:"model"`
	Preset string `yaml:"preset"`
	Jobs   int    `yaml:"jobs"`
	Axes   []Axis `yaml:"axes"`
}

// Point is one run of a scan.
type Point struct {
	Name   string
	Params map[string]float64
	Config *Config
}

var Scans = map[string]*Scan{
	"sir-ddft-2d-distancing": {
		Model: "sir-ddft-2d", Preset: "scan", Jobs: 4,
		Axes: []Axis{
			{Name: "C_si", Parameter: "ddft.self_isolation_amplitude", From: -30, To: 0, Steps: 31},
			{Name: "C_si/C_sd", Parameter: "ddft.social_distancing_amplitude", Divide: "ddft.self_isolation_amplitude", From: 1, To: 3, Steps: 21},
		},
	},
	"sz-ddft-2d-phase-diagram": {
		Model: "sz-ddft-2d", Preset: "phase-diagram", Jobs: 4,
		Axes: []Axis{
			{Name: "kill", Parameter: "sz.kill_parameter", From: 3.5, To: 5.5, Steps: 21},
			{Name: "fear", Parameter: "sz_ddft.fear_amplitude", From: -400, To: 0, Steps: 21},
		},
	},
}

// ListScans returns the names of the built-in scans, sorted.
func ListScans() []string {
	names := make([]string, 0, len(Scans))
	for name := range Scans {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func LoadScan(path string) (*Scan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := &Scan{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

// Base returns the configuration every point starts from.
func (s *Scan) Base() (*Config, error) {
	cfg := GetPreset(s.Model, s.Preset)
	if cfg == nil {
		return nil, fmt.Errorf("%w: no preset %q for model %q", ErrInvalid, s.Preset, s.Model)
	}
	return cfg, nil
}

// Points expands the axes over base. Axes are applied in order, so a ratio
// axis sees the value set by an earlier axis.
func (s *Scan) Points(base *Config) ([]Point, error) {
	points := []Point{{Params: map[string]float64{}, Config: base.Clone()}}

	for _, axis := range s.Axes {
		values, err := axis.Points()
		if err != nil {
			return nil, err
		}
		next := make([]Point, 0, len(points)*len(values))
		for _, p := range points {
			for _, v := range values {
				cfg := p.Config.Clone()
				target := v
				if axis.Divide != "" {
					num, err := cfg.Get(axis.Divide)
					if err != nil {
						return nil, err
					}
					target = num / v
				}
				if err := cfg.Set(axis.Parameter, target); err != nil {
					return nil, err
				}
				params := make(map[string]float64, len(p.Params)+1)
				for k, x := range p.Params {
					params[k] = x
				}
				params[axis.Label()] = v
				next = append(next, Point{Params: params, Config: cfg})
			}
		}
		points = next
	}

	for i := range points {
		points[i].Name = pointName(i, s.Axes, points[i].Params)
	}
	return points, nil
}

func pointName(i int, axes []Axis, params map[string]float64) string {
	parts := make([]string, 0, len(axes)+1)
	parts = append(parts, fmt.Sprintf("%04d", i))
	for _, a := range axes {
		parts = append(parts, fmt.Sprintf("%s=%g", a.Label(), params[a.Label()]))
	}
	return strings.Join(parts, " ")
}

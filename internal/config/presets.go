package config

import (
	"slices"

	"github.com/san-kum/sirddft/internal/sir"
)

var (
	sirDDFTDistancing = sir.SIRDDFTParameters{
		MobilityS: 1, MobilityI: 1, MobilityR: 1,
		SocialDistancingAmplitude: -10, SocialDistancingRange: 100,
		SelfIsolationAmplitude: -30, SelfIsolationRange: 100,
	}
	szHorde = sir.SZDDFTParameters{
		MobilityS: 1, MobilityZ: 1,
		FearAmplitude: -300, FearRange: 100,
		HungerAmplitude: -100, HungerRange: 100,
	}
	narrowPeak = sir.Gaussian{Width: 2500, MeanDensity: 1, Seed: 0.001}
)

var Presets = map[string]map[string]*Config{
	"sir": {
		"outbreak": {
			Model: "sir", Frames: 100, FrameDuration: 0.3,
			SIR:     sir.NewSIRParameters(1.0, 0.2),
			Initial: InitialConfig{S: 0.999, I: 0.001},
		},
		"lethal": {
			Model: "sir", Frames: 100, FrameDuration: 0.3,
			SIR:     sir.SIRParameters{InfectionParameter: 1.0, RecoveryRate: 0.1, MortalityRate: 0.1},
			Initial: InitialConfig{S: 0.999, I: 0.001},
		},
	},
	"sir-diffusion-1d": {
		"spread": {
			Model: "sir-diffusion-1d", Frames: 400, FrameDuration: 0.25,
			Grid:      GridConfig{Lo: 0, Hi: 1, N: 256},
			SIR:       sir.NewSIRParameters(0.5, 0.1),
			Diffusion: sir.SIRDiffusionParameters{DiffusivityS: 0.01, DiffusivityI: 0.01, DiffusivityR: 0.01},
			Initial:   InitialConfig{Gaussian: narrowPeak},
		},
	},
	"sir-diffusion-2d": {
		"spread": {
			Model: "sir-diffusion-2d", Frames: 400, FrameDuration: 0.25,
			Grid:      GridConfig{Lo: 0, Hi: 1, N: 64},
			SIR:       sir.NewSIRParameters(0.5, 0.1),
			Diffusion: sir.SIRDiffusionParameters{DiffusivityS: 0.001, DiffusivityI: 0.001, DiffusivityR: 0.001},
			Initial:   InitialConfig{Gaussian: sir.Gaussian{Width: 50, MeanDensity: 1, Seed: 0.01}},
		},
	},
	"sir-ddft-1d": {
		"distancing": {
			Model: "sir-ddft-1d", Frames: 400, FrameDuration: 0.5,
			Grid:      GridConfig{Lo: 0, Hi: 1, N: 256},
			SIR:       sir.NewSIRParameters(0.5, 0.1),
			Diffusion: sir.SIRDiffusionParameters{DiffusivityS: 0.01, DiffusivityI: 0.01, DiffusivityR: 0.01},
			DDFT: sir.SIRDDFTParameters{
				MobilityS: 1, MobilityI: 1, MobilityR: 1,
				SocialDistancingAmplitude: -5, SocialDistancingRange: 100,
				SelfIsolationAmplitude: -10, SelfIsolationRange: 100,
			},
			Initial: InitialConfig{Gaussian: narrowPeak},
		},
	},
	"sir-ddft-2d": {
		"distancing": {
			Model: "sir-ddft-2d", Frames: 300, FrameDuration: 0.1,
			Grid:      GridConfig{Lo: 0, Hi: 10, N: 512},
			SIR:       sir.NewSIRParameters(1.0, 0.1),
			Diffusion: sir.SIRDiffusionParameters{DiffusivityS: 0.01, DiffusivityI: 0.01, DiffusivityR: 0.01},
			DDFT:      sirDDFTDistancing,
			Initial:   InitialConfig{Gaussian: sir.DefaultGaussian()},
		},
		"small": {
			Model: "sir-ddft-2d", Frames: 100, FrameDuration: 0.1,
			Grid:      GridConfig{Lo: 0, Hi: 10, N: 128},
			SIR:       sir.NewSIRParameters(1.0, 0.1),
			Diffusion: sir.SIRDiffusionParameters{DiffusivityS: 0.01, DiffusivityI: 0.01, DiffusivityR: 0.01},
			DDFT:      sirDDFTDistancing,
			Initial:   InitialConfig{Gaussian: sir.DefaultGaussian()},
		},
		"scan": {
			Model: "sir-ddft-2d", Frames: 4000, FrameDuration: 0.1,
			Grid:      GridConfig{Lo: 0, Hi: 10, N: 512},
			SIR:       sir.NewSIRParameters(1.0, 0.1),
			Diffusion: sir.SIRDiffusionParameters{DiffusivityS: 0.01, DiffusivityI: 0.01, DiffusivityR: 0.01},
			DDFT:      sirDDFTDistancing,
			Initial:   InitialConfig{Gaussian: sir.DefaultGaussian()},
			Stop:      StopConfig{Fields: []string{"I"}, Threshold: 1e-4, MinTime: 10},
		},
	},
	"sz-ddft-2d": {
		"horde": {
			Model: "sz-ddft-2d", Frames: 300, FrameDuration: 0.1,
			Grid:        GridConfig{Lo: 0, Hi: 10, N: 512},
			SZ:          sir.SZParameters{BiteParameter: 5.5, KillParameter: 4.5},
			SZDiffusion: sir.SZDiffusionParameters{DiffusivityS: 0.01, DiffusivityZ: 0.005},
			SZDDFT:      szHorde,
			Initial:     InitialConfig{Gaussian: sir.DefaultZombieGaussian()},
		},
		"phase-diagram": {
			Model: "sz-ddft-2d", Frames: 40000, FrameDuration: 0.05,
			Grid:        GridConfig{Lo: 0, Hi: 10, N: 256},
			SZ:          sir.SZParameters{BiteParameter: 5.5, KillParameter: 4.5},
			SZDiffusion: sir.SZDiffusionParameters{DiffusivityS: 0.01, DiffusivityZ: 0.005},
			SZDDFT:      szHorde,
			Initial:     InitialConfig{Gaussian: sir.DefaultZombieGaussian()},
			Stop:        StopConfig{Fields: []string{"S", "Z"}, Threshold: 5e-4, MinTime: 5},
		},
	},
}

// GetPreset returns a copy of the named preset with solver and thread
// defaults filled in, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	out := cfg.Clone()
	if out.Solver.Name == "" {
		out.Solver.Name = "rkf45"
	}
	if out.Threads == 0 {
		out.Threads = DefaultThreads
	}
	return out
}

// ListPresets returns the preset names of model in sorted order.
func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Models returns the models that have presets, sorted.
func Models() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

package sir

// SIRParameters holds the rates shared by all SIR models.
//
// InfectionParameter is an inverse time for the lumped model, a length per
// time in 1D and an area per time in 2D.
type SIRParameters struct {
	InfectionParameter float64 `yaml:"infection_parameter" json:"infection_parameter"`
	RecoveryRate       float64 `yaml:"recovery_rate" json:"recovery_rate"`
	MortalityRate      float64 `yaml:"mortality_rate" json:"mortality_rate"`
}

// NewSIRParameters returns SIR rates without mortality.
func NewSIRParameters(infection, recovery float64) SIRParameters {
	return SIRParameters{InfectionParameter: infection, RecoveryRate: recovery}
}

// SIRDiffusionParameters are the diffusion constants of the S, I and R fields.
type SIRDiffusionParameters struct {
	DiffusivityS float64 `yaml:"diffusivity_s" json:"diffusivity_s"`
	DiffusivityI float64 `yaml:"diffusivity_i" json:"diffusivity_i"`
	DiffusivityR float64 `yaml:"diffusivity_r" json:"diffusivity_r"`
}

// SIRDDFTParameters are the mobilities and the Gaussian interaction kernels
// of the SIR-DDFT model.
type SIRDDFTParameters struct {
	MobilityS float64 `yaml:"mobility_s" json:"mobility_s"`
	MobilityI float64 `yaml:"mobility_i" json:"mobility_i"`
	MobilityR float64 `yaml:"mobility_r" json:"mobility_r"`

	SocialDistancingAmplitude float64 `yaml:"social_distancing_amplitude" json:"social_distancing_amplitude"`
	SocialDistancingRange     float64 `yaml:"social_distancing_range" json:"social_distancing_range"`
	SelfIsolationAmplitude    float64 `yaml:"self_isolation_amplitude" json:"self_isolation_amplitude"`
	SelfIsolationRange        float64 `yaml:"self_isolation_range" json:"self_isolation_range"`
}

// SZParameters are the rates of the susceptible-zombie model.
type SZParameters struct {
	// BiteParameter controls how often a zombie bites (converts) a human.
	BiteParameter float64 `yaml:"bite_parameter" json:"bite_parameter"`
	// KillParameter controls how often a human kills a zombie.
	KillParameter float64 `yaml:"kill_parameter" json:"kill_parameter"`
}

// SZDiffusionParameters are the diffusion constants of the S and Z fields.
type SZDiffusionParameters struct {
	DiffusivityS float64 `yaml:"diffusivity_s" json:"diffusivity_s"`
	DiffusivityZ float64 `yaml:"diffusivity_z" json:"diffusivity_z"`
}

// SZDDFTParameters are the mobilities and interaction kernels of the SZ-DDFT
// model. Fear acts on humans and is sourced by zombies, hunger acts on zombies
// and is sourced by humans.
type SZDDFTParameters struct {
	MobilityS float64 `yaml:"mobility_s" json:"mobility_s"`
	MobilityZ float64 `yaml:"mobility_z" json:"mobility_z"`

	FearAmplitude   float64 `yaml:"fear_amplitude" json:"fear_amplitude"`
	FearRange       float64 `yaml:"fear_range" json:"fear_range"`
	HungerAmplitude float64 `yaml:"hunger_amplitude" json:"hunger_amplitude"`
	HungerRange     float64 `yaml:"hunger_range" json:"hunger_range"`
}

package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultG          = 1.0
	DefaultA0         = 1e-3
	DefaultSoftening  = 0.05
	DefaultDt         = 1e-3
	DefaultSteps      = 2000
	DefaultCadence    = 10
	DefaultN          = 128
	DefaultSeed       = 42
	DefaultLightSpeed = 100.0
)

// Config is one complete lab setup: force law, integration window,
// initial conditions and diagnostic tolerances. Zero values defer to
// the downstream defaults where those exist; Load starts from
// DefaultConfig so partial files stay runnable.
type Config struct {
	ForceModel  string  `yaml:"force_model"`
	G           float64 `yaml:"g"`
	A0          float64 `yaml:"a0"`
	Softening   float64 `yaml:"softening"`
	External    Vector  `yaml:"external_field"`
	Interaction string  `yaml:"interaction"`
	Workers     int     `yaml:"workers"`

	Dt      float64 `yaml:"timestep"`
	Steps   int     `yaml:"n_steps"`
	Cadence int     `yaml:"snapshot_cadence"`

	N            int           `yaml:"particle_count"`
	DiskMass     float64       `yaml:"disk_mass"`
	CentralMass  float64       `yaml:"central_mass"`
	Profile      ProfileConfig `yaml:"mass_profile"`
	Seed         int64         `yaml:"seed"`
	Perturb      float64       `yaml:"perturbation"`
	PerturbScale float64       `yaml:"perturbation_scale"`
	ZeroMomentum bool          `yaml:"zero_momentum"`

	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Cosmology   CosmologyConfig   `yaml:"cosmology"`
}

type Vector struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type ProfileConfig struct {
	Name   string             `yaml:"name"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// UnmarshalYAML replaces the params map wholesale rather than merging
// into whatever was already there: a file that sets a profile supplies
// that profile's params, not a patch on the default ones.
func (p *ProfileConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name   string             `yaml:"name"`
		Params map[string]float64 `yaml:"params"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Name != "" {
		p.Name = raw.Name
	}
	if raw.Params != nil {
		p.Params = raw.Params
	}
	return nil
}

type DiagnosticsConfig struct {
	EnergyTolerance   float64       `yaml:"energy_tolerance"`
	SigmaFraction     float64       `yaml:"sigma_fraction"`
	MinStableFraction float64       `yaml:"min_stable_fraction"`
	Lensing           LensingConfig `yaml:"lensing"`
}

type LensingConfig struct {
	LightSpeed float64   `yaml:"light_speed"`
	Impacts    []float64 `yaml:"impacts,flow,omitempty"`
	Bound      float64   `yaml:"bound,omitempty"`
	Samples    int       `yaml:"samples,omitempty"`
}

type CosmologyConfig struct {
	H0            float64 `yaml:"h0"`
	OmegaM        float64 `yaml:"omega_m"`
	OmegaL        float64 `yaml:"omega_l"`
	ReactiveCoeff float64 `yaml:"reactive_coeff,omitempty"`
	ReactiveIndex float64 `yaml:"reactive_index,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		ForceModel:  "newtonian",
		G:           DefaultG,
		A0:          DefaultA0,
		Softening:   DefaultSoftening,
		Interaction: "pairwise",
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		Cadence:     DefaultCadence,
		N:           DefaultN,
		DiskMass:    0.05,
		CentralMass: 1.0,
		Profile: ProfileConfig{
			Name:   "exponential",
			Params: map[string]float64{"scale": 2.0, "rmin": 0.5, "rmax": 8.0},
		},
		Seed:         DefaultSeed,
		PerturbScale: 4.0,
		ZeroMomentum: true,
		Diagnostics: DiagnosticsConfig{
			EnergyTolerance:   1e-4,
			SigmaFraction:     0.15,
			MinStableFraction: 0.5,
			Lensing: LensingConfig{
				LightSpeed: DefaultLightSpeed,
				Impacts:    []float64{2, 4, 6, 8, 12, 16, 24},
			},
		},
		Cosmology: CosmologyConfig{H0: 70, OmegaM: 0.3, OmegaL: 0.7},
	}
}

// Load reads a YAML config on top of the defaults, so files only need
// the keys they change.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

// Clone deep-copies, so callers can layer flag overrides onto a preset
// without touching the shared registry.
func (c *Config) Clone() *Config {
	out := *c
	if c.Profile.Params != nil {
		out.Profile.Params = make(map[string]float64, len(c.Profile.Params))
		for k, v := range c.Profile.Params {
			out.Profile.Params[k] = v
		}
	}
	out.Diagnostics.Lensing.Impacts = append([]float64(nil), c.Diagnostics.Lensing.Impacts...)
	return &out
}

package config

import "sort"

// Presets are the named lab setups the CLI ships with. Each one starts
// from DefaultConfig, so they are always complete and runnable.
var Presets = map[string]*Config{
	"disk":          diskPreset(),
	"entropic-disk": entropicDiskPreset(),
	"kepler":        keplerPreset(),
	"deep-orbit":    deepOrbitPreset(),
	"efe-disk":      efeDiskPreset(),
	"baryon-cosmos": baryonCosmosPreset(),
}

// self-gravitating newtonian disk around a dominant central mass
func diskPreset() *Config {
	cfg := DefaultConfig()
	cfg.N = 256
	cfg.Steps = 3000
	return cfg
}

// wide disk reaching well below a0, where the two force laws separate
func entropicDiskPreset() *Config {
	cfg := DefaultConfig()
	cfg.ForceModel = "entropic"
	cfg.Softening = 0.1
	cfg.N = 192
	cfg.Profile = ProfileConfig{
		Name:   "exponential",
		Params: map[string]float64{"scale": 4.0, "rmin": 1.0, "rmax": 30.0},
	}
	cfg.Dt = 0.05
	cfg.Steps = 4000
	cfg.Cadence = 20
	cfg.Perturb = 0.1
	cfg.PerturbScale = 6.0
	return cfg
}

// massless test ring on a unit circular orbit, one full period
func keplerPreset() *Config {
	cfg := DefaultConfig()
	cfg.Interaction = "central"
	cfg.Softening = 1e-4
	cfg.N = 8
	cfg.DiskMass = 1e-6
	cfg.Profile = ProfileConfig{
		Name:   "ring",
		Params: map[string]float64{"radius": 1.0, "width": 0.0},
	}
	cfg.Steps = 6283
	cfg.Cadence = 20
	cfg.Seed = 7
	cfg.ZeroMomentum = false
	return cfg
}

// orbits at a_N ~ 0.1*a0 around a light central body: the flat-curve
// regime where the boosted speed is nearly force-law independent of r
func deepOrbitPreset() *Config {
	cfg := DefaultConfig()
	cfg.ForceModel = "entropic"
	cfg.Interaction = "central"
	cfg.Softening = 1e-3
	cfg.N = 64
	cfg.DiskMass = 1e-8
	cfg.CentralMass = 0.01
	cfg.Profile = ProfileConfig{
		Name:   "ring",
		Params: map[string]float64{"radius": 10.0, "width": 2.0},
	}
	cfg.Dt = 0.5
	cfg.Steps = 8000
	cfg.Cadence = 20
	cfg.ZeroMomentum = false
	return cfg
}

// entropic disk inside a strong uniform field (external field effect)
func efeDiskPreset() *Config {
	cfg := DefaultConfig()
	cfg.ForceModel = "entropic"
	cfg.Softening = 0.1
	cfg.External = Vector{X: 0.01}
	cfg.N = 128
	cfg.DiskMass = 0.02
	cfg.CentralMass = 0.5
	cfg.Profile = ProfileConfig{
		Name:   "exponential",
		Params: map[string]float64{"scale": 3.0, "rmin": 1.0, "rmax": 15.0},
	}
	cfg.Dt = 0.02
	cfg.Steps = 3000
	return cfg
}

// pure-baryon background whose reactive term stands in for cold dark
// matter; the run half matches the kepler preset
func baryonCosmosPreset() *Config {
	cfg := keplerPreset()
	cfg.Cosmology = CosmologyConfig{
		H0:            70,
		OmegaM:        0.05,
		OmegaL:        0.7,
		ReactiveCoeff: 0.25,
		ReactiveIndex: 3,
	}
	return cfg
}

// GetPreset returns a deep copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names sorted.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

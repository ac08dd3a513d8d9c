package lab

import (
	"fmt"
	"sort"

	"github.com/aram-vel/gravlab/internal/body"
	"github.com/aram-vel/gravlab/internal/config"
	"github.com/aram-vel/gravlab/internal/cosmo"
	"github.com/aram-vel/gravlab/internal/diag"
	"github.com/aram-vel/gravlab/internal/disk"
	"github.com/aram-vel/gravlab/internal/force"
)

// diagContext carries everything a diagnostic builder may draw on: the
// run's config and its reloaded trajectory.
type diagContext struct {
	cfg  *config.Config
	traj *body.Trajectory
}

type diagBuilder func(diagContext) (diag.Diagnostic, error)

var diagBuilders = map[string]diagBuilder{
	"energy":  buildEnergy,
	"toomre":  buildToomre,
	"lensing": buildLensing,
	"cosmo":   buildCosmo,
}

// DiagnosticNames lists the diagnostics Diagnose accepts.
func DiagnosticNames() []string {
	names := make([]string, 0, len(diagBuilders))
	for n := range diagBuilders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func buildEnergy(c diagContext) (diag.Diagnostic, error) {
	model, err := BuildModel(c.cfg)
	if err != nil {
		return nil, err
	}
	return diag.EnergyAudit{
		Model:      model,
		Trajectory: c.traj,
		Tolerance:  c.cfg.Diagnostics.EnergyTolerance,
	}, nil
}

// buildToomre measures the rotation curve from the final snapshot, the
// disk as it actually evolved, and takes the surface density from the
// configured profile.
func buildToomre(c diagContext) (diag.Diagnostic, error) {
	profile, err := BuildProfile(c.cfg)
	if err != nil {
		return nil, err
	}
	last := c.traj.Last()
	if last == nil {
		return nil, &body.InputError{Diagnostic: "toomre", Reason: "trajectory is empty"}
	}

	radii, speeds := disk.MeasuredCurve(last, toomreBins(last.N()))
	sigma := make([]float64, len(radii))
	for i, r := range radii {
		sigma[i] = profile.SurfaceDensity(c.cfg.DiskMass, r)
	}
	return diag.ToomreAnalyzer{
		G:                 c.cfg.G,
		R:                 radii,
		V:                 speeds,
		Sigma:             sigma,
		SigmaFraction:     c.cfg.Diagnostics.SigmaFraction,
		MinStableFraction: c.cfg.Diagnostics.MinStableFraction,
	}, nil
}

// toomreBins aims for a handful of particles per bin without dropping
// below the analyzer's three-sample floor.
func toomreBins(n int) int {
	b := n / 8
	if b < 3 {
		b = 3
	}
	if b > 40 {
		b = 40
	}
	return b
}

// buildLensing shoots rays through the initial snapshot, the mass
// distribution the config describes before any relaxation.
func buildLensing(c diagContext) (diag.Diagnostic, error) {
	models, err := lensModels(c.cfg)
	if err != nil {
		return nil, err
	}
	first := c.traj.First()
	if first == nil {
		return nil, &body.InputError{Diagnostic: "lensing", Reason: "trajectory is empty"}
	}
	lens := c.cfg.Diagnostics.Lensing
	return diag.LensingTracer{
		Models:  models,
		Source:  first,
		Impacts: lens.Impacts,
		C:       lens.LightSpeed,
		Bound:   lens.Bound,
		Samples: lens.Samples,
	}, nil
}

// lensModels builds the comparison pair. Without an a0 there is no
// entropic half, so only Newton sweeps.
func lensModels(cfg *config.Config) ([]force.Model, error) {
	newton, err := force.New(force.Newtonian, modelParams(cfg))
	if err != nil {
		return nil, err
	}
	models := []force.Model{newton}
	if cfg.A0 > 0 {
		entropic, err := force.New(force.Entropic, modelParams(cfg))
		if err != nil {
			return nil, err
		}
		models = append(models, entropic)
	}
	return models, nil
}

func buildCosmo(c diagContext) (diag.Diagnostic, error) {
	return diag.CosmicExpansion{Params: cosmoParams(c.cfg)}, nil
}

func cosmoParams(cfg *config.Config) cosmo.Params {
	return cosmo.Params{
		H0:     cfg.Cosmology.H0,
		OmegaM: cfg.Cosmology.OmegaM,
		OmegaL: cfg.Cosmology.OmegaL,
		Reactive: cosmo.Reactive{
			Coeff: cfg.Cosmology.ReactiveCoeff,
			Index: cfg.Cosmology.ReactiveIndex,
		},
	}
}

// Diagnose runs the named diagnostics against a stored run and saves
// every produced report next to it. Empty names means every diagnostic
// the stored run can feed.
func (l *Lab) Diagnose(runID string, names []string) ([]diag.Outcome, error) {
	if l.store == nil {
		return nil, &body.ConfigError{Field: "store", Reason: "lab has no store"}
	}
	cfg, err := l.store.LoadConfig(runID)
	if err != nil {
		return nil, err
	}
	traj, err := l.store.LoadTrajectory(runID)
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		names = applicable(cfg, traj)
	}

	c := diagContext{cfg: cfg, traj: traj}
	diags := make([]diag.Diagnostic, 0, len(names))
	for _, name := range names {
		build, ok := diagBuilders[name]
		if !ok {
			return nil, fmt.Errorf("unknown diagnostic: %s", name)
		}
		d, err := build(c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		diags = append(diags, d)
	}

	outcomes := diag.RunAll(diags...)
	for _, o := range outcomes {
		if o.Report == nil {
			continue
		}
		if err := l.store.SaveReport(runID, o.Report); err != nil {
			return outcomes, err
		}
	}
	return outcomes, nil
}

// applicable picks the diagnostics a stored run can feed: the energy
// audit always, Toomre only when the final snapshot bins into a usable
// curve, lensing and cosmology only when the config carries them.
func applicable(cfg *config.Config, traj *body.Trajectory) []string {
	names := []string{"energy"}
	if last := traj.Last(); last != nil {
		if radii, _ := disk.MeasuredCurve(last, toomreBins(last.N())); len(radii) >= 3 {
			names = append(names, "toomre")
		}
	}
	if cfg.Diagnostics.Lensing.LightSpeed > 0 && len(cfg.Diagnostics.Lensing.Impacts) > 0 {
		names = append(names, "lensing")
	}
	if cfg.Cosmology.H0 > 0 {
		names = append(names, "cosmo")
	}
	return names
}

// LensReport sweeps the deflection comparison without a stored run;
// the source is the freshly built ensemble.
func LensReport(cfg *config.Config) (*diag.Report, error) {
	src, _, err := BuildEnsemble(cfg)
	if err != nil {
		return nil, err
	}
	models, err := lensModels(cfg)
	if err != nil {
		return nil, err
	}
	lens := cfg.Diagnostics.Lensing
	return diag.LensingTracer{
		Models:  models,
		Source:  src,
		Impacts: lens.Impacts,
		C:       lens.LightSpeed,
		Bound:   lens.Bound,
		Samples: lens.Samples,
	}.Run()
}

// CosmoReport integrates the configured background without a run.
func CosmoReport(cfg *config.Config) (*diag.Report, error) {
	return diag.CosmicExpansion{Params: cosmoParams(cfg)}.Run()
}

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aram-vel/gravlab/internal/config"
	"github.com/aram-vel/gravlab/internal/diag"
	"github.com/aram-vel/gravlab/internal/lab"
	"github.com/aram-vel/gravlab/internal/storage"
	"github.com/aram-vel/gravlab/internal/viz"
)

var (
	dataDir    string
	configFile string
	forceModel string
	particles  int
	steps      int
	dt         float64
	seed       int64
	a0         float64
	softening  float64
	workers    int
	runLabel   string

	diagNames string

	rmin   float64
	rmax   float64
	points int

	benchNs    string
	benchDts   string
	benchSteps int

	scale float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gravlab",
		Short: "gravitational n-body lab with swappable force laws",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravlab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "build initial conditions, integrate, and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSim,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&runLabel, "label", "", "label for the stored run")

	diagnoseCmd := &cobra.Command{
		Use:   "diagnose [run_id]",
		Short: "run diagnostics against a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  diagnoseRun,
	}
	diagnoseCmd.Flags().StringVar(&diagNames, "diag", "", "comma-separated diagnostics (default: all applicable)")

	lensCmd := &cobra.Command{
		Use:   "lens [preset]",
		Short: "sweep lensing deflection for both force laws",
		Args:  cobra.MaximumNArgs(1),
		RunE:  lensSweep,
	}
	addConfigFlags(lensCmd)

	cosmoCmd := &cobra.Command{
		Use:   "cosmo [preset]",
		Short: "check the configured expansion history",
		Args:  cobra.MaximumNArgs(1),
		RunE:  cosmoCheck,
	}
	addConfigFlags(cosmoCmd)

	curveCmd := &cobra.Command{
		Use:   "curve [preset]",
		Short: "compare rotation curves under both force laws",
		Args:  cobra.MaximumNArgs(1),
		RunE:  curveCompare,
	}
	addConfigFlags(curveCmd)
	curveCmd.Flags().Float64Var(&rmin, "rmin", 0.5, "innermost radius")
	curveCmd.Flags().Float64Var(&rmax, "rmax", 50, "outermost radius")
	curveCmd.Flags().IntVar(&points, "points", 40, "radii to sample")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run and its reports",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a run's snapshots as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a run, its trajectory, and its reports as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset]",
		Short: "integrate the same placement under both force laws",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareLaws,
	}
	addConfigFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "benchmark the force loop over a dt x n sweep",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchSweep,
	}
	addConfigFlags(benchCmd)
	benchCmd.Flags().StringVar(&benchNs, "bodies", "64,128,256", "comma-separated particle counts")
	benchCmd.Flags().StringVar(&benchDts, "dts", "0.001,0.01", "comma-separated timesteps")
	benchCmd.Flags().IntVar(&benchSteps, "bench-steps", 200, "steps per cell")

	suiteCmd := &cobra.Command{
		Use:   "suite [manifest.yaml]",
		Short: "run a scripted battery of runs and diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE:  runSuite,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list bundled configurations",
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch a run in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().Float64Var(&scale, "scale", 0, "canvas half-width in world units (0 = auto)")

	rootCmd.AddCommand(runCmd, diagnoseCmd, lensCmd, cosmoCmd, curveCmd, listCmd,
		plotCmd, exportCSVCmd, exportJSONCmd, compareCmd, benchCmd, suiteCmd,
		presetsCmd, liveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&forceModel, "model", "", "force model (newtonian, entropic)")
	cmd.Flags().IntVar(&particles, "n", 0, "particle count")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().Float64Var(&a0, "a0", 0, "entropic acceleration scale")
	cmd.Flags().Float64Var(&softening, "softening", 0, "force softening length")
	cmd.Flags().IntVar(&workers, "workers", 0, "force workers (0 = one per cpu)")
}

// resolveConfig builds the effective config: preset, then config file,
// then explicit flags, later sources winning.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %s)",
				args[0], strings.Join(config.ListPresets(), ", "))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("model") {
		cfg.ForceModel = forceModel
	}
	if cmd.Flags().Changed("n") {
		cfg.N = particles
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("a0") {
		cfg.A0 = a0
	}
	if cmd.Flags().Changed("softening") {
		cfg.Softening = softening
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	return cfg, nil
}

func runSim(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	label := runLabel
	if label == "" && len(args) > 0 {
		label = args[0]
	}

	fmt.Printf("running %s / %s: n=%d steps=%d dt=%g\n",
		cfg.ForceModel, cfg.Profile.Name, cfg.N, cfg.Steps, cfg.Dt)

	out, err := lab.New(st).Run(context.Background(), label, cfg)
	if err != nil {
		if out != nil && out.ID != "" {
			fmt.Printf("partial trajectory saved as %s\n", out.ID)
		}
		return err
	}

	res := out.Result
	fmt.Printf("completed in %v\n", res.Elapsed)
	fmt.Printf("run id: %s\n", out.ID)
	fmt.Printf("steps: %d, snapshots: %d\n", res.StepsTaken, res.Trajectory.Len())
	fmt.Printf("energy drift: %.3e\n", res.EnergyDrift)
	fmt.Println("\nstats:")
	for name, val := range out.Stats {
		fmt.Printf("  %s: %.3e\n", name, val)
	}
	return nil
}

func diagnoseRun(cmd *cobra.Command, args []string) error {
	var names []string
	for _, n := range strings.Split(diagNames, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	st := storage.New(dataDir)
	outcomes, err := lab.New(st).Diagnose(args[0], names)
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Printf("%s: %v\n\n", o.Name, o.Err)
			continue
		}
		fmt.Println(viz.RenderReport(o.Report))
		fmt.Println()
	}
	return nil
}

func lensSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	lens := cfg.Diagnostics.Lensing
	fmt.Printf("sweeping %d impact parameters (c=%g)\n\n", len(lens.Impacts), lens.LightSpeed)

	rep, err := lab.LensReport(cfg)
	if err != nil {
		return err
	}
	fmt.Println(viz.RenderReport(rep))

	var curves []diag.Series
	for _, s := range rep.Series {
		if s.Name != "entropic/newtonian" {
			curves = append(curves, s)
		}
	}
	if chart := viz.PlotTogether(curves, 80, 12, "deflection alpha(b)"); chart != "" {
		fmt.Println()
		fmt.Println(chart)
	}
	if ratio := rep.FindSeries("entropic/newtonian"); ratio != nil {
		if chart := viz.PlotSeries(ratio, 80, 10, "entropic/newtonian"); chart != "" {
			fmt.Println()
			fmt.Println(chart)
		}
	}
	return nil
}

func cosmoCheck(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	rep, err := lab.CosmoReport(cfg)
	if err != nil {
		return err
	}
	fmt.Println(viz.RenderReport(rep))

	for _, name := range []string{"H(z)", "a(t)"} {
		if s := rep.FindSeries(name); s != nil {
			if chart := viz.PlotSeries(s, 80, 10, name); chart != "" {
				fmt.Println()
				fmt.Println(chart)
			}
		}
	}
	return nil
}

func curveCompare(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	set, err := lab.Curves(cfg, rmin, rmax, points)
	if err != nil {
		return err
	}

	fmt.Printf("rotation curves for %s (n=%d, central mass %g)\n\n",
		cfg.Profile.Name, cfg.N, cfg.CentralMass)

	series := []diag.Series{{Name: "newtonian", X: set.Radii, Y: set.Newtonian}}
	if set.Entropic != nil {
		series = append(series, diag.Series{Name: "entropic", X: set.Radii, Y: set.Entropic})
	}
	if chart := viz.PlotTogether(series, 80, 14, "circular speed v(r)"); chart != "" {
		fmt.Println(chart)
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "R\tV_NEWTON\tV_ENTROPIC\tBOOST")
	for i, r := range set.Radii {
		if set.Entropic == nil {
			fmt.Fprintf(w, "%.3f\t%.5f\t-\t-\n", r, set.Newtonian[i])
			continue
		}
		boost := "-"
		if set.Newtonian[i] > 0 {
			boost = fmt.Sprintf("%.3f", set.Entropic[i]/set.Newtonian[i])
		}
		fmt.Fprintf(w, "%.3f\t%.5f\t%.5f\t%s\n", r, set.Newtonian[i], set.Entropic[i], boost)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tWHEN\tSTATUS\tN\tSTEPS\tDT\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.4g\t%.2e\n",
			run.ID,
			run.ForceModel,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Status,
			run.N,
			run.Steps,
			run.Dt,
			run.Drift,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s, n=%d, status: %s\n", meta.ForceModel, meta.N, meta.Status)
	fmt.Printf("snapshots: %d\n\n", tr.Len())

	times := tr.Times()
	n := meta.N
	if n > 4 {
		n = 4
	}
	for i := 0; i < n; i++ {
		s := diag.Series{X: times, Y: tr.Radii(i)}
		if chart := viz.PlotSeries(&s, 80, 10, fmt.Sprintf("radius of particle %d", i)); chart != "" {
			fmt.Println(chart)
			fmt.Println()
		}
	}

	reports, err := st.LoadReports(args[0])
	if err != nil {
		return err
	}
	for i := range reports {
		fmt.Println(viz.RenderReport(&reports[i]))
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportCSV(os.Stdout, args[0])
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportJSON(os.Stdout, args[0])
}

func compareLaws(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	fmt.Printf("comparing force laws (n=%d, steps=%d, dt=%g)\n\n", cfg.N, cfg.Steps, cfg.Dt)
	rows, runErr := lab.New(nil).Compare(context.Background(), cfg)

	if len(rows) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tSTATUS\tSTEPS\tDRIFT\tTIME")
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%s\t%d\t%.2e\t%v\n",
				row.Model, row.Status, row.Steps, row.Drift, row.Elapsed)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return runErr
}

func benchSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	ns, err := parseInts(benchNs)
	if err != nil {
		return err
	}
	dts, err := parseFloats(benchDts)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s forces\n\n", cfg.ForceModel)
	rows, runErr := lab.New(nil).Bench(context.Background(), cfg, ns, dts, benchSteps)

	if len(rows) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "N\tDT\tSTEPS\tTIME\tSTEPS/SEC")
		for _, row := range rows {
			fmt.Fprintf(w, "%d\t%.4g\t%d\t%v\t%.0f\n",
				row.N, row.Dt, row.Steps, row.Elapsed, row.StepsPerSec)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return runErr
}

func runSuite(cmd *cobra.Command, args []string) error {
	s, err := lab.LoadSuite(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if s.Description != "" {
		fmt.Printf("%s: %s\n", s.Name, s.Description)
	} else {
		fmt.Println(s.Name)
	}

	results, runErr := lab.New(st).RunSuite(context.Background(), s, os.Stdout)

	if len(results) > 0 {
		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STEP\tRUN\tSTATUS\tDRIFT\tDIAGNOSTICS\tRESULT")
		passed := 0
		for _, res := range results {
			good := 0
			for _, o := range res.Outcomes {
				if o.Err == nil && o.Report != nil && o.Report.Passed {
					good++
				}
			}
			verdict := "FAIL"
			if res.Passed() {
				verdict = "PASS"
				passed++
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2e\t%d/%d\t%s\n",
				res.Step, res.RunID, res.Status, res.Drift, good, len(res.Outcomes), verdict)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n%d/%d steps passed\n", passed, len(results))
	}
	return runErr
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODEL\tPROFILE\tN\tSTEPS\tDT")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%g\n",
			name, cfg.ForceModel, cfg.Profile.Name, cfg.N, cfg.Steps, cfg.Dt)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	title := "gravlab"
	if len(args) > 0 {
		title = args[0]
	}

	m, err := viz.NewLive(title, cfg.Steps, scale, lab.LiveStarter(cfg))
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return err
	}
	return nil
}

func parseInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad count %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloats(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad timestep %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

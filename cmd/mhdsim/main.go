package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mhdsim/internal/analysis"
	"github.com/san-kum/mhdsim/internal/automation"
	"github.com/san-kum/mhdsim/internal/config"
	"github.com/san-kum/mhdsim/internal/export"
	"github.com/san-kum/mhdsim/internal/logging"
	"github.com/san-kum/mhdsim/internal/metrics"
	"github.com/san-kum/mhdsim/internal/mhd"
	"github.com/san-kum/mhdsim/internal/problems"
	"github.com/san-kum/mhdsim/internal/sim"
	"github.com/san-kum/mhdsim/internal/storage"
	"github.com/san-kum/mhdsim/internal/viz"
)

var (
	dataDir   string
	logLevel  string
	logFormat string

	configFile string
	preset     string
	nx, ny     int
	tmax       float64
	cfl        float64
	fixDt      float64
	maxSteps   int
	method     string
	gamma      float64
	particles  int
	saveState  bool

	sweepParam  string
	sweepValues string
	parallel    int

	svgField string
	svgTheme string
	svgScale float64
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "mhdsim",
		Short:        "2D ideal MHD on a uniform grid",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mhdsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run [problem]",
		Short: "run a simulation to tmax and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&saveState, "save-state", true, "store the final state with the run")

	liveCmd := &cobra.Command{
		Use:   "live [problem]",
		Short: "run a simulation with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [problem]",
		Short: "run one simulation per value of a parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "driver.cfl", "dotted parameter name")
	sweepCmd.Flags().StringVar(&sweepValues, "values", "0.2,0.4,0.6", "comma separated values")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "maximum concurrent runs (0 = unlimited)")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run every simulation of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "plot the energy spectra of a stored final state",
		Args:  cobra.ExactArgs(1),
		RunE:  plotSpectrum,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [run_id] [output]",
		Short: "render a field of a stored final state as SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVar(&svgField, "field", "density", "field to draw")
	svgCmd.Flags().StringVar(&svgTheme, "theme", "inferno", "colormap ("+strings.Join(viz.ThemeNames(), ", ")+")")
	svgCmd.Flags().Float64Var(&svgScale, "scale", 4, "pixels per zone")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the timestep and metrics of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a run as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	problemsCmd := &cobra.Command{
		Use:   "problems",
		Short: "list the built-in problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range problems.Default().Names() {
				fmt.Printf("  %s %s\n", name, strings.Join(config.ListPresets(name), ", "))
			}
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [problem]",
		Short: "list presets of a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for %s\n", args[0])
				return nil
			}
			for _, name := range names {
				p := config.GetPreset(args[0], name)
				fmt.Printf("  %-12s %dx%d tmax=%g method=%s\n", name, p.Mesh.Nx, p.Mesh.Ny, p.Driver.TMax, p.MHD.TemporalMethod)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a configuration file for a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, nil)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	addConfigFlags(initCmd)

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, batchCmd, listCmd, plotCmd, spectrumCmd, svgCmd,
		exportJSONCmd, problemsCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&nx, "nx", config.DefaultN, "zones in x")
	cmd.Flags().IntVar(&ny, "ny", config.DefaultN, "zones in y")
	cmd.Flags().Float64Var(&tmax, "tmax", config.DefaultTMax, "end time")
	cmd.Flags().Float64Var(&cfl, "cfl", config.DefaultCFL, "CFL number")
	cmd.Flags().Float64Var(&fixDt, "fix-dt", -1, "fixed timestep bound (<= 0 disables)")
	cmd.Flags().IntVar(&maxSteps, "max-steps", config.DefaultMaxSteps, "step limit")
	cmd.Flags().StringVar(&method, "method", config.DefaultTemporalMethod, "time integrator (EULER, RK2, TVD2, RK3, TVD3, RK4)")
	cmd.Flags().Float64Var(&gamma, "gamma", config.DefaultGamma, "ratio of specific heats")
	cmd.Flags().IntVar(&particles, "particles", 0, "number of tracer particles")
}

// buildConfig layers defaults, the preset, the config file and finally
// the flags the user actually set.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Problem = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Problem, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Problem))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Problem = args[0]
		}
	}

	flags := cmd.Flags()
	if flags.Changed("nx") {
		cfg.Mesh.Nx = nx
	}
	if flags.Changed("ny") {
		cfg.Mesh.Ny = ny
	}
	if flags.Changed("tmax") {
		cfg.Driver.TMax = tmax
	}
	if flags.Changed("cfl") {
		cfg.Driver.CFL = cfl
	}
	if flags.Changed("fix-dt") {
		cfg.Driver.FixDt = fixDt
	}
	if flags.Changed("max-steps") {
		cfg.Driver.MaxSteps = maxSteps
	}
	if flags.Changed("method") {
		cfg.MHD.TemporalMethod = method
	}
	if flags.Changed("gamma") {
		cfg.EOS.Gamma = gamma
	}
	if flags.Changed("particles") {
		cfg.Particles.DoParticles = particles > 0
		cfg.Particles.NParticles = particles
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() (*slog.Logger, error) {
	return logging.New(logging.Config{Level: logLevel, Format: logFormat})
}

func newSimulator(cfg *config.Config, log *slog.Logger) *sim.Simulator {
	s := sim.New(cfg, log)
	for _, m := range metrics.Standard() {
		s.AddMetric(m)
	}
	return s
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := newSimulator(cfg, log)
	result, err := s.Run(ctx)
	if err != nil {
		return err
	}

	state := s.Simulation()
	if !saveState {
		state = nil
	}
	runID, err := st.Save(cfg, result, state)
	if err != nil {
		return err
	}

	printSummary(runID, cfg, result)
	fmt.Println(s.Simulation().Timers().Report())
	return nil
}

func printSummary(runID string, cfg *config.Config, result *sim.Result) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(strings.ToUpper(cfg.Problem)) + "\n")
	line := func(k, v string) { b.WriteString(keyStyle.Render(k) + v + "\n") }
	line("run id", runID)
	line("grid", fmt.Sprintf("%d x %d", cfg.Mesh.Nx, cfg.Mesh.Ny))
	line("method", cfg.MHD.TemporalMethod)
	line("steps", strconv.Itoa(result.Steps))
	line("t", fmt.Sprintf("%g", result.T))
	line("elapsed", result.Elapsed.String())

	names := make([]string, 0, len(result.Metrics))
	for k := range result.Metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		line(k, fmt.Sprintf("%.6g", result.Metrics[k]))
	}
	fmt.Println(boxStyle.Render(strings.TrimRight(b.String(), "\n")))
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	// the terminal belongs to the view, so only errors are logged
	log, err := logging.New(logging.Config{Level: "error", Format: logFormat})
	if err != nil {
		return err
	}

	s := newSimulator(cfg, log)
	if err := s.Initialize(); err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(s), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}

	var values []float64
	for _, f := range strings.Split(sweepValues, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return fmt.Errorf("bad value %q: %w", f, err)
		}
		values = append(values, v)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sweep := &automation.ParameterSweep{Base: base, Param: sweepParam, Values: values}
	cfgs, results, err := sweep.Run(ctx, parallel, log)
	if err != nil {
		return err
	}
	return storeBatch(sweepParam, values, cfgs, results)
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfgs, results, err := automation.RunScenario(ctx, sc, log)
	if err != nil {
		return err
	}
	return storeBatch("", nil, cfgs, results)
}

// storeBatch saves every run of a batch and prints one line per run.
func storeBatch(param string, values []float64, cfgs []*config.Config, results []*sim.Result) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	label := "PROBLEM"
	if param != "" {
		label = strings.ToUpper(param)
	}
	fmt.Fprintf(w, "%s\tMETHOD\tSTEPS\tT\tMASS_DRIFT\tMAX_DIVB\tRUN\n", label)
	for i, res := range results {
		runID, err := st.Save(cfgs[i], res, nil)
		if err != nil {
			return err
		}
		first := cfgs[i].Problem
		if param != "" {
			first = strconv.FormatFloat(values[i], 'g', -1, 64)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%.3e\t%.3e\t%s\n",
			first, cfgs[i].MHD.TemporalMethod, res.Steps, res.T,
			res.Metrics["mass_drift"], res.Metrics["max_divb"], runID)
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
	fmt.Fprintln(w, "ID\tPROBLEM\tTIME\tGRID\tMETHOD\tCFL\tSTEPS\tT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%s\t%g\t%d\t%g\n",
			run.ID,
			run.Problem,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Nx, run.Ny,
			run.Method,
			run.CFL,
			run.Steps,
			run.T,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	history, err := st.LoadHistory(runID)
	if err != nil {
		return err
	}
	if len(history) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("problem: %s\n", meta.Problem)
	fmt.Printf("steps: %d\n\n", meta.Steps)

	// step 0 carries no dt
	dts := make([]float64, 0, len(history)-1)
	for _, rec := range history[1:] {
		dts = append(dts, rec.Dt)
	}
	fmt.Println(asciigraph.Plot(dts, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("dt vs step")))
	fmt.Println()

	names := make([]string, 0, len(history[0].Metrics))
	for k := range history[0].Metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		data := make([]float64, len(history))
		for i, rec := range history {
			data[i] = rec.Metrics[name]
		}
		fmt.Println(asciigraph.Plot(data, asciigraph.Height(6), asciigraph.Width(60), asciigraph.Caption(name)))
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func plotSpectrum(cmd *cobra.Command, args []string) error {
	snap, err := storage.New(dataDir).LoadSnapshot(args[0])
	if err != nil {
		return err
	}
	cc, _, _, err := snap.Restore()
	if err != nil {
		return err
	}

	vel, err := cc.Derived("velocity")
	if err != nil {
		return err
	}
	bx, err := cc.Var(mhd.XMagField)
	if err != nil {
		return err
	}
	by, err := cc.Var(mhd.YMagField)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s  t = %g\n\n", args[0], cc.T)
	spectra := []struct {
		name string
		e    []float64
	}{
		{"kinetic", analysis.KineticSpectrum(cc.Grid, vel[0], vel[1])},
		{"magnetic", analysis.MagneticSpectrum(cc.Grid, bx, by)},
	}
	for _, s := range spectra {
		k, ek := analysis.Peak(s.e)
		// log10 E(k) from k=1 on; empty shells sit at the floor
		logE := make([]float64, 0, len(s.e)-1)
		for _, v := range s.e[1:] {
			logE = append(logE, math.Log10(math.Max(v, 1e-30)))
		}
		if len(logE) < 2 {
			continue
		}
		fmt.Println(asciigraph.Plot(logE, asciigraph.Height(8), asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("log10 E_%s(k), peak k=%d E=%.3e", s.name, k, ek))))
		fmt.Println()
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	snap, err := storage.New(dataDir).LoadSnapshot(args[0])
	if err != nil {
		return err
	}
	cc, _, _, err := snap.Restore()
	if err != nil {
		return err
	}
	planes, err := cc.Derived(svgField)
	if err != nil {
		return err
	}

	svg := export.FieldToSVG(cc.Grid, planes[0], viz.GetTheme(svgTheme), svgScale, nil)
	if err := os.WriteFile(args[1], []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[1])
	return nil
}

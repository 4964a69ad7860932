package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dropsim/internal/automation"
	"github.com/san-kum/dropsim/internal/config"
	"github.com/san-kum/dropsim/internal/dynamo"
	"github.com/san-kum/dropsim/internal/experiment"
	"github.com/san-kum/dropsim/internal/export"
	"github.com/san-kum/dropsim/internal/optim"
	"github.com/san-kum/dropsim/internal/plot"
	"github.com/san-kum/dropsim/internal/sim"
	"github.com/san-kum/dropsim/internal/storage"
	"github.com/san-kum/dropsim/internal/tui"
	"github.com/san-kum/dropsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	preset     string

	engine       string
	integrator   string
	seed         int64
	mass         float64
	height       float64
	gravity      float64
	lateral      float64
	surface      string
	maxFrames    int
	lockChildren bool

	live      bool
	frameRate int
	svgOut    string
	snapshot  string
	outFile   string
	record    string
	theme     string
	saveRuns  bool

	numSeeds  int
	paramName string
	paramMin  float64
	paramMax  float64
	numSteps  int
	jitter    float64

	grid     []string
	metric   string
	maximize bool
)

// main registers the commands and runs the interactive app when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:          "dropsim",
		Short:        "projectile drop and impact fragmentation demo",
		SilenceUsage: true,
		RunE:         runInteractive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset parameters")
	addParamFlags(rootCmd)
	rootCmd.Flags().StringVar(&record, "record", "dropsim.gif", "gif path used by the record key")
	rootCmd.Flags().StringVar(&theme, "theme", "", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one drop headless and plot it",
		Args:  cobra.NoArgs,
		RunE:  runDrop,
	}
	addParamFlags(runCmd)
	runCmd.Flags().BoolVar(&live, "live", false, "draw frames to the terminal while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --live")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "also write the velocity chart as SVG")
	runCmd.Flags().StringVar(&snapshot, "snapshot", "", "write the final frame as SVG")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the velocity chart of a run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available parameter presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every drop listed in a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&saveRuns, "save", false, "save every step to the data directory")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "repeat a drop over seeds, a parameter range or jittered inputs",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addParamFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&numSeeds, "seeds", 20, "number of seeds in the ensemble")
	sweepCmd.Flags().StringVar(&paramName, "param", "", "sweep a parameter instead ("+strings.Join(automation.ParamNames(), ", ")+")")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 0, "sweep start")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 0, "sweep end")
	sweepCmd.Flags().IntVar(&numSteps, "steps", 10, "sweep points")
	sweepCmd.Flags().Float64Var(&jitter, "jitter", 0, "relative mass and height perturbation for a Monte Carlo study")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "run the same drop with several integrators",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addParamFlags(compareCmd)

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search drop parameters for the best metric value",
		Args:  cobra.NoArgs,
		RunE:  searchGrid,
	}
	addParamFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&grid, "grid", nil, "axis as name=min:max:steps, repeatable")
	searchCmd.Flags().StringVar(&metric, "metric", "fragments", "metric to optimize")
	searchCmd.Flags().BoolVar(&maximize, "maximize", false, "look for the largest value instead of the smallest")
	_ = searchCmd.MarkFlagRequired("grid")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, scenarioCmd, sweepCmd, compareCmd, searchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&engine, "engine", config.DefaultEngine, "physics engine (native, chipmunk)")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator for the native engine")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for fragment offsets")
	cmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "ball mass")
	cmd.Flags().Float64Var(&height, "height", config.DefaultHeight, "drop height")
	cmd.Flags().Float64Var(&gravity, "gravity", config.DefaultGravity, "gravity")
	cmd.Flags().Float64Var(&lateral, "lateral", 0, "lateral wind velocity")
	cmd.Flags().StringVar(&surface, "surface", "land", "surface (land, water)")
	cmd.Flags().IntVar(&maxFrames, "max-frames", config.DefaultMaxFrames, "stop after this many frames (0 for no limit)")
	cmd.Flags().BoolVar(&lockChildren, "lock-children", false, "fragments never split again")
}

// loadConfig layers the config file, the preset and explicitly set flags,
// in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" {
		p, ok := config.GetPreset(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Params = p
	}

	flags := cmd.Flags()
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("engine") {
		cfg.Engine = engine
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("mass") {
		cfg.Params.Mass = mass
	}
	if flags.Changed("height") {
		cfg.Params.Height = height
	}
	if flags.Changed("gravity") {
		cfg.Params.Gravity = gravity
	}
	if flags.Changed("lateral") {
		cfg.Params.Lateral = lateral
	}
	if flags.Changed("surface") {
		cfg.Params.Surface = surface
	}
	if flags.Changed("max-frames") {
		cfg.World.MaxFrames = maxFrames
	}
	if flags.Changed("lock-children") {
		cfg.Fragment.LockChildren = lockChildren
	}

	return cfg, nil
}

func newLogger(level string, out io.Writer) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return log.NewWithOptions(out, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "dropsim",
	}), nil
}

func runInfo(cfg *config.Config) storage.RunInfo {
	return storage.RunInfo{
		Engine:     cfg.Engine,
		Integrator: cfg.Integrator,
		Seed:       cfg.Seed,
		Dt:         cfg.World.Dt,
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	params, err := cfg.SimParams()
	if err != nil {
		return err
	}
	if theme != "" {
		viz.SetTheme(theme)
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	// the alternate screen owns stdout, so logs go to a file
	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "dropsim.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()

	logger, err := newLogger(cfg.LogLevel, logFile)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	newEngine := func() (dynamo.Engine, error) {
		return registry.GetEngine(cfg.Engine, cfg.Integrator)
	}
	if _, err := newEngine(); err != nil {
		return err
	}

	return viz.RunApp(viz.AppOptions{
		Config:     cfg.SimConfig(),
		Params:     params,
		NewEngine:  newEngine,
		Logger:     logger,
		Store:      st,
		Info:       runInfo(cfg),
		RecordPath: record,
	})
}

func runDrop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	expCfg, err := experiment.FromConfig(cfg)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	var (
		screen *tui.LiveRenderer
		scene  *viz.Scene
	)
	if live {
		expCfg.Sim.Pace = true
		screen = tui.NewLiveRenderer(os.Stdout, expCfg.Sim.Width, expCfg.Sim.Height, frameRate)
		screen.Start()
		defer screen.Stop()
	}
	if snapshot != "" {
		scene = viz.NewScene(viz.NewCanvas(80, 30), expCfg.Sim.Width, expCfg.Sim.Height)
	}

	exp := experiment.New(expCfg, experiment.NewRegistry(), logger)
	exp.Observe(func(s *sim.Session) {
		if screen != nil {
			screen.Frame(s)
		}
		if scene != nil && s.State() == sim.Terminated {
			scene.Clear()
			s.Draw(scene)
		}
	})

	ctx, cancel := signalContext()
	defer cancel()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	runID, err := st.Save(runInfo(cfg), result)
	if err != nil {
		return err
	}

	chart, err := plot.Render(result.Samples, plot.DefaultOptions())
	if err != nil {
		fmt.Printf("no chart: %v\n", err)
	} else {
		fmt.Println(chart)
	}

	fmt.Printf("\nrun id: %s\n", runID)
	fmt.Printf("reason: %s\n", result.Reason)
	fmt.Printf("frames: %d\n", result.Frames)
	fmt.Printf("fragmentations: %d\n", result.Fragmentations)
	fmt.Println("\nmetrics:")
	printMetrics(os.Stdout, result.Metrics)

	if svgOut != "" {
		if err := writeSeriesSVG(svgOut, result.Samples); err != nil {
			return err
		}
	}
	if scene != nil {
		if err := os.WriteFile(snapshot, []byte(export.CanvasToSVG(scene.Canvas(), 4)), 0644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}

	return nil
}

func printMetrics(w io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, m[name])
	}
}

func writeSeriesSVG(path string, samples dynamo.SampleSeries) error {
	svg := export.SeriesToSVG(samples, 800, 400)
	if svg == "" {
		return plot.ErrNoSamples
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// openStore resolves the data directory the same way the run commands do.
func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tENGINE\tMASS\tHEIGHT\tGRAVITY\tSURFACE\tREASON\tDURATION\tSPLITS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%g\t%s\t%s\t%.2fs\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Engine,
			run.Params.Mass,
			run.Params.Height,
			run.Params.Gravity,
			run.Params.Surface,
			run.Reason,
			run.Duration,
			run.Fragmentations,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	chart, err := plot.Render(samples, plot.DefaultOptions())
	if err != nil {
		return err
	}

	fmt.Printf("run %s: mass=%g height=%g gravity=%g surface=%s\n\n",
		meta.ID, meta.Params.Mass, meta.Params.Height, meta.Params.Gravity, meta.Params.Surface)
	fmt.Println(chart)
	return nil
}

// output returns stdout, or the --out file when set.
func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	if err := st.ExportCSV(args[0], w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	if err := st.ExportJSON(args[0], w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if outFile != "" {
		return writeSeriesSVG(outFile, samples)
	}
	svg := export.SeriesToSVG(samples, 800, 400)
	if svg == "" {
		return plot.ErrNoSamples
	}
	fmt.Println(svg)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMASS\tHEIGHT\tGRAVITY\tLATERAL\tSURFACE")
	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%s\n", name, p.Mass, p.Height, p.Gravity, p.Lateral, p.Surface)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	base, err := experiment.FromConfig(cfg)
	if err != nil {
		return err
	}

	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if sc.Description != "" {
		fmt.Printf("%s: %s\n\n", sc.Name, sc.Description)
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunScenario(ctx, sc, base, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if saveRuns {
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tENGINE\tMASS\tHEIGHT\tSURFACE\tREASON\tDURATION\tSPLITS\tBODIES\tPEAK V\tRUN")
	for _, r := range results {
		runID := "-"
		if saveRuns {
			runID, err = st.Save(storage.RunInfo{
				Engine:     r.Config.Engine,
				Integrator: r.Config.Integrator,
				Seed:       r.Config.Sim.Seed,
				Dt:         r.Config.Sim.Dt,
			}, r.Result)
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%s\t%s\t%.2fs\t%d\t%g\t%.2f\t%s\n",
			r.Name,
			r.Config.Engine,
			r.Config.Params.Mass,
			r.Config.Params.DropHeight,
			r.Config.Params.Surface,
			r.Result.Reason,
			r.Result.Duration,
			r.Result.Fragmentations,
			r.Result.Metrics["fragments"],
			r.Result.Metrics["peak_velocity"],
			runID,
		)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	base, err := experiment.FromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	registry := experiment.NewRegistry()

	switch {
	case paramName != "":
		return parameterSweep(ctx, base, registry, logger)
	case jitter > 0:
		return monteCarlo(ctx, base, registry, logger)
	}

	fmt.Printf("running %d seeds from %d...\n", numSeeds, base.Sim.Seed)
	results, err := experiment.NewEnsemble(base, registry, logger, numSeeds, base.Sim.Seed).Run(ctx)
	if err != nil {
		return err
	}

	bodies := func(r *sim.Result) float64 { return r.Metrics["fragments"] }
	st := experiment.Summarize(results, bodies)
	fmt.Printf("bodies: min=%g max=%g mean=%.2f stddev=%.2f\n", st.Min, st.Max, st.Mean, st.StdDev)
	dur := experiment.Summarize(results, func(r *sim.Result) float64 { return r.Duration })
	fmt.Printf("duration: min=%.2fs max=%.2fs mean=%.2fs\n\n", dur.Min, dur.Max, dur.Mean)

	hist := experiment.Histogram(results, func(r *sim.Result) int { return int(bodies(r)) })
	counts := make([]int, 0, len(hist))
	for k := range hist {
		counts = append(counts, k)
	}
	sort.Ints(counts)
	for _, k := range counts {
		fmt.Printf("%4d bodies | %s %d\n", k, strings.Repeat("#", hist[k]), hist[k])
	}
	return nil
}

func parameterSweep(ctx context.Context, base experiment.Config, registry *experiment.Registry, logger *log.Logger) error {
	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      base,
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  numSteps,
	}, registry, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tREASON\tDURATION\tSPLITS\tBODIES\tPEAK V\n", strings.ToUpper(paramName))
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%g\t%v\n", r.ParamValue, r.Err)
			continue
		}
		fmt.Fprintf(w, "%g\t%s\t%.2fs\t%d\t%g\t%.2f\n",
			r.ParamValue, r.Reason, r.Duration, r.Fragmentations, r.Fragments, r.PeakVelocity)
	}
	return w.Flush()
}

func monteCarlo(ctx context.Context, base experiment.Config, registry *experiment.Registry, logger *log.Logger) error {
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         base,
		Perturbation: jitter,
		NumTrials:    numSeeds,
		Seed:         base.Sim.Seed,
	}, registry, logger)
	if err != nil {
		return err
	}

	shattered, intact := automation.MonteCarloStats(results)
	fmt.Printf("%d trials: %d shattered, %d intact\n", len(results), shattered, intact)
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	base, err := experiment.FromConfig(cfg)
	if err != nil {
		return err
	}
	base.Engine = "native"

	registry := experiment.NewRegistry()
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("comparing integrators (mass=%g height=%g gravity=%g)\n\n",
		base.Params.Mass, base.Params.DropHeight, base.Params.Gravity)
	fmt.Printf("%-12s  %-12s  %-8s  %-8s  %-8s  %-10s\n", "integrator", "reason", "frames", "splits", "bodies", "peak_v")
	fmt.Println(strings.Repeat("-", 66))

	for _, name := range args {
		c := base
		c.Integrator = name
		res, err := experiment.New(c, registry, logger).Run(ctx)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}
		fmt.Printf("%-12s  %-12s  %8d  %8d  %8g  %10.2f\n",
			name, res.Reason, res.Frames, res.Fragmentations, res.Metrics["fragments"], res.Metrics["peak_velocity"])
	}

	return nil
}

// parseAxis reads name=min:max:steps.
func parseAxis(axis string) (string, []float64, error) {
	name, rng, ok := strings.Cut(axis, "=")
	parts := strings.Split(rng, ":")
	if !ok || len(parts) != 3 {
		return "", nil, fmt.Errorf("bad grid axis %q (want name=min:max:steps)", axis)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %s min: %w", name, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("grid %s max: %w", name, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("grid %s steps: want a positive integer, got %q", name, parts[2])
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func searchGrid(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	base, err := experiment.FromConfig(cfg)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(grid))
	ranges := make([][]float64, 0, len(grid))
	for _, axis := range grid {
		name, values, err := parseAxis(axis)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	ctx, cancel := signalContext()
	defer cancel()

	g := optim.NewGridSearch(names, ranges)
	g.Maximize = maximize
	best, err := g.Search(ctx, base, experiment.NewRegistry(), logger, metric)
	if err != nil {
		return err
	}

	fmt.Printf("evaluated %d points (%d rejected)\n", best.Evaluated, best.Rejected)
	fmt.Printf("best %s: %g\n", metric, best.Value)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best.Params[name])
	}
	return nil
}

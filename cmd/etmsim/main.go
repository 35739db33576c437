package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/etmsim/internal/analysis"
	"github.com/san-kum/etmsim/internal/automation"
	"github.com/san-kum/etmsim/internal/config"
	"github.com/san-kum/etmsim/internal/diag"
	"github.com/san-kum/etmsim/internal/engine"
	"github.com/san-kum/etmsim/internal/export"
	"github.com/san-kum/etmsim/internal/lattice"
	"github.com/san-kum/etmsim/internal/logging"
	"github.com/san-kum/etmsim/internal/optim"
	"github.com/san-kum/etmsim/internal/storage"
	"github.com/san-kum/etmsim/internal/trial"
	"github.com/san-kum/etmsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	debug      bool
	preset     string
	configFile string
	ticks      int
	sampleRate int
	logEvery   int
	runName    string
	patternID  string
	// Projection axes for trajectory views
	xAxis int
	yAxis int
	// SVG output
	outFile   string
	svgWidth  int
	svgHeight int
	// Sweep axes
	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepSteps  int
	sweepParam2 string
	sweepMin2   float64
	sweepMax2   float64
	sweepSteps2 int
	sweepMetric string
	maximize    bool
	// Scatter study
	jitter int
	trials int
	seed   int64
)

// main registers commands and flags, launches the interactive preset picker
// when no subcommand is given, and executes the root command. It exits the
// process with status 1 if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "etmsim",
		Short: "lattice timing simulation lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the interactive picker when no command given
			return viz.RunPicker()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".etmsim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [family/preset]",
		Short: "run one trial",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTrial,
	}
	runCmd.Flags().StringVar(&preset, "preset", "", "preset as family/name")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().IntVar(&ticks, "ticks", 0, "tick budget override")
	runCmd.Flags().IntVar(&sampleRate, "sample", 0, "record every n ticks")
	runCmd.Flags().IntVar(&logEvery, "log-every", 0, "progress log interval in ticks")
	runCmd.Flags().StringVar(&runName, "name", "", "run name override")

	batchCmd := &cobra.Command{
		Use:   "batch [family]",
		Short: "run every preset in a family",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&ticks, "ticks", 0, "tick budget override")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot anchor and energy series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&patternID, "id", "", "pattern id (default first)")

	trajCmd := &cobra.Command{
		Use:   "traj [run_id]",
		Short: "braille trajectory projection",
		Args:  cobra.ExactArgs(1),
		RunE:  plotTrajectories,
	}
	trajCmd.Flags().IntVar(&xAxis, "x-axis", 0, "lattice axis for x (0..2)")
	trajCmd.Flags().IntVar(&yAxis, "y-axis", 1, "lattice axis for y (0..2)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export anchor records to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportCSV(args[0], os.Stdout)
		},
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export full run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(args[0], os.Stdout)
		},
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export trajectories as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&xAxis, "x-axis", 0, "lattice axis for x (0..2)")
	exportSVGCmd.Flags().IntVar(&yAxis, "y-axis", 1, "lattice axis for y (0..2)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 640, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 480, "image height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "recurrence frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&patternID, "id", "", "pattern id (default first)")
	analyzeCmd.Flags().IntVar(&xAxis, "axis", 0, "anchor axis to analyze (0..2)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid sweep over engine parameters",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&preset, "preset", "", "base preset as family/name")
	sweepCmd.Flags().StringVar(&configFile, "config", "", "base config file (yaml)")
	sweepCmd.Flags().IntVar(&ticks, "ticks", 0, "tick budget override")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "decay", "first parameter name")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.90, "first axis lower bound")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.99, "first axis upper bound")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "first axis sample count")
	sweepCmd.Flags().StringVar(&sweepParam2, "param2", "", "second parameter name")
	sweepCmd.Flags().Float64Var(&sweepMin2, "min2", 0, "second axis lower bound")
	sweepCmd.Flags().Float64Var(&sweepMax2, "max2", 0, "second axis upper bound")
	sweepCmd.Flags().IntVar(&sweepSteps2, "steps2", 3, "second axis sample count")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "energy_drift", "metric to rank by")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "prefer larger metric values")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	scatterCmd := &cobra.Command{
		Use:   "scatter",
		Short: "anchor jitter survival study",
		RunE:  runScatter,
	}
	scatterCmd.Flags().StringVar(&preset, "preset", "", "base preset as family/name")
	scatterCmd.Flags().StringVar(&configFile, "config", "", "base config file (yaml)")
	scatterCmd.Flags().IntVar(&ticks, "ticks", 0, "tick budget override")
	scatterCmd.Flags().IntVar(&jitter, "jitter", 1, "max per-axis anchor offset")
	scatterCmd.Flags().IntVar(&trials, "trials", 20, "number of perturbed trials")
	scatterCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time)")

	presetsCmd := &cobra.Command{
		Use:   "presets [family]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	constantsCmd := &cobra.Command{
		Use:   "constants",
		Short: "derive physical constants from attraction runs",
		RunE:  deriveConstants,
	}
	constantsCmd.Flags().IntVar(&ticks, "ticks", 200, "tick budget per attraction run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a trial with live visualization",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&preset, "preset", "", "preset as family/name")
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().IntVar(&ticks, "ticks", 0, "stop after this many ticks (0 = until quit)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark tick rate",
		RunE:  benchTickRate,
	}
	benchCmd.Flags().IntVar(&ticks, "ticks", 200, "ticks per configuration")

	rootCmd.AddCommand(runCmd, batchCmd, listCmd, plotCmd, trajCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, analyzeCmd, sweepCmd, scenarioCmd, scatterCmd, presetsCmd, constantsCmd, liveCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func parsePreset(ref string) (family, name string) {
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return ref, ""
}

func presetFamilies() []string {
	families := make([]string, 0, len(config.Presets))
	for f := range config.Presets {
		families = append(families, f)
	}
	sort.Strings(families)
	return families
}

// resolveConfig builds the trial configuration for commands that accept
// --preset and --config. A config file replaces the preset; flags override
// both.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config

	if preset != "" {
		family, name := parsePreset(preset)
		base := config.GetPreset(family, name)
		if base == nil {
			return nil, fmt.Errorf("unknown preset: %s (families: %v)", preset, presetFamilies())
		}
		cfg = base.Clone()
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cfg == nil {
		return nil, fmt.Errorf("either --preset or --config is required")
	}

	if cmd.Flags().Changed("ticks") {
		cfg.Ticks = ticks
	}
	if cmd.Flags().Changed("sample") {
		cfg.Sample = sampleRate
	}
	if cmd.Flags().Changed("log-every") {
		cfg.LogEvery = logEvery
	}
	if runName != "" {
		cfg.Name = runName
	}
	return cfg, nil
}

func runTrial(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		preset = args[0]
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logging.New(debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner := trial.NewRunner(cfg, log)
	runner.AddMetric(diag.NewEnergyDrift())

	fmt.Printf("running %s...\n", cfg.Name)
	start := time.Now()

	result, err := runner.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", len(result.Samples))

	if final := result.FinalSample(); final != nil {
		fmt.Printf("final energy: %.4f over %d patterns\n", final.TotalEnergy, len(final.Patterns))
	}

	if len(result.Events) > 0 {
		fmt.Println("\nevents:")
		for _, ev := range result.Events {
			fmt.Printf("  tick %d: %s at (%d,%d,%d)\n", ev.Tick, ev.Type, ev.At.X, ev.At.Y, ev.At.Z)
		}
	}

	if len(result.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for name, val := range result.Metrics {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}

	v := result.Validation
	if v.DriftExceeded {
		fmt.Printf("\nwarning: energy drift %.2e above tolerance %.2e\n", v.EnergyDrift, v.DriftTolerance)
	}
	if v.LostPatterns > 0 {
		fmt.Printf("warning: %d pattern(s) lost during the run\n", v.LostPatterns)
	}

	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	family := args[0]
	names := config.ListPresets(family)
	if len(names) == 0 {
		return fmt.Errorf("unknown preset family: %s (families: %v)", family, presetFamilies())
	}
	sort.Strings(names)

	cfgs := make([]*config.Config, 0, len(names))
	for _, name := range names {
		cfg := config.GetPreset(family, name).Clone()
		if cmd.Flags().Changed("ticks") {
			cfg.Ticks = ticks
		}
		cfgs = append(cfgs, cfg)
	}

	log, err := logging.New(debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %d %s presets...\n\n", len(cfgs), family)
	results, err := trial.RunBatch(context.Background(), cfgs, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRUN\tSAMPLES\tENERGY\tEVENTS")
	for _, res := range results {
		runID, err := st.Save(res)
		if err != nil {
			return err
		}
		energy := 0.0
		if final := res.FinalSample(); final != nil {
			energy = final.TotalEnergy
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.4f\t%d\n", res.Name, runID, len(res.Samples), energy, len(res.Events))
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tTICKS\tDIMS\tPATTERNS\tEVENTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%dx%dx%d\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Dims[0], run.Dims[1], run.Dims[2],
			run.Patterns,
			run.Events,
		)
	}

	return w.Flush()
}

// seriesForPattern collects one pattern's per-sample anchor path from the
// stored rows, preserving tick order.
func seriesForPattern(rows []storage.AnchorRow, id string) []lattice.Coord {
	var path []lattice.Coord
	for _, row := range rows {
		if row.ID == id {
			path = append(path, lattice.Coord{X: row.Anchor[0], Y: row.Anchor[1], Z: row.Anchor[2]})
		}
	}
	return path
}

func patternIDs(rows []storage.AnchorRow) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, row := range rows {
		if !seen[row.ID] {
			seen[row.ID] = true
			ids = append(ids, row.ID)
		}
	}
	return ids
}

func pickPattern(rows []storage.AnchorRow) (string, error) {
	ids := patternIDs(rows)
	if len(ids) == 0 {
		return "", fmt.Errorf("no pattern records in run")
	}
	if patternID == "" {
		return ids[0], nil
	}
	for _, id := range ids {
		if id == patternID {
			return id, nil
		}
	}
	return "", fmt.Errorf("pattern %s not in run (have %v)", patternID, ids)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadRows(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	id, err := pickPattern(rows)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("pattern: %s\n\n", id)

	path := seriesForPattern(rows, id)
	for axis := 0; axis < 3; axis++ {
		data := analysis.AxisSeries(path, axis)
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s anchor", viz.SliceSpec{Axis: axis}.AxisName())),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if ids := patternIDs(rows); len(ids) >= 2 {
		sep := separationSeries(seriesForPattern(rows, ids[0]), seriesForPattern(rows, ids[1]))
		graph := asciigraph.Plot(sep,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("separation %s / %s", ids[0], ids[1])),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	energy := energySeries(rows)
	graph := asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("total pattern energy"),
	)
	fmt.Println(graph)

	return nil
}

// separationSeries is the per-sample distance between two anchor paths,
// truncated to the shorter one.
func separationSeries(a, b []lattice.Coord) []float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		dx := float64(a[i].X - b[i].X)
		dy := float64(a[i].Y - b[i].Y)
		dz := float64(a[i].Z - b[i].Z)
		out[i] = math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return out
}

// energySeries sums pattern energy per sampled tick, in file order.
func energySeries(rows []storage.AnchorRow) []float64 {
	var out []float64
	lastTick := -1
	for _, row := range rows {
		if row.Tick != lastTick {
			out = append(out, 0)
			lastTick = row.Tick
		}
		out[len(out)-1] += row.Energy
	}
	return out
}

func plotTrajectories(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	anchors, err := st.LoadAnchors(runID)
	if err != nil {
		return err
	}
	if len(anchors) == 0 {
		return fmt.Errorf("no trajectories in run")
	}

	ids := make([]string, 0, len(anchors))
	for id := range anchors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	paths := make([][]lattice.Coord, 0, len(ids))
	for _, id := range ids {
		paths = append(paths, anchors[id])
	}

	canvas := viz.NewCanvas(70, 24)
	canvas.PlotTrajectories(paths, xAxis, yAxis)

	fmt.Printf("trajectories: %s (axes %s/%s)\n\n", runID,
		viz.SliceSpec{Axis: xAxis}.AxisName(), viz.SliceSpec{Axis: yAxis}.AxisName())
	fmt.Println(canvas.String())
	fmt.Printf("patterns: %s\n", strings.Join(ids, ", "))

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	anchors, err := st.LoadAnchors(runID)
	if err != nil {
		return err
	}
	if len(anchors) == 0 {
		return fmt.Errorf("no trajectories in run")
	}

	svg := export.TrajectoriesSVG(anchors, xAxis, yAxis, svgWidth, svgHeight)
	if outFile == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadRows(runID)
	if err != nil {
		return err
	}

	id, err := pickPattern(rows)
	if err != nil {
		return err
	}

	fmt.Printf("recurrence analysis: %s\n", meta.ID)
	fmt.Printf("pattern: %s axis: %s\n\n", id, viz.SliceSpec{Axis: xAxis}.AxisName())

	path := seriesForPattern(rows, id)
	data := analysis.AxisSeries(path, xAxis)

	ps := analysis.PowerSpectrum(data)
	plotData := ps
	if len(ps) > 4 {
		plotData = ps[:len(ps)/4]
	}

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	if period, ok := analysis.DominantPeriod(data); ok {
		fmt.Printf("dominant period: %.2f ticks\n", period)
	} else {
		fmt.Println("no dominant period found")
	}

	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	axes := []optim.Axis{{Param: sweepParam, Values: optim.Linspace(sweepMin, sweepMax, sweepSteps)}}
	if sweepParam2 != "" {
		axes = append(axes, optim.Axis{Param: sweepParam2, Values: optim.Linspace(sweepMin2, sweepMax2, sweepSteps2)})
	}
	sweep := optim.NewGridSweep(axes...)

	fmt.Printf("sweeping %d configurations of %s...\n\n", sweep.Size(), base.Name)

	points, err := sweep.Run(context.Background(), func(ctx context.Context, params map[string]float64) (map[string]float64, error) {
		cfg := base.Clone()
		for name, value := range params {
			if err := optim.ApplyParam(cfg, name, value); err != nil {
				return nil, err
			}
		}
		runner := trial.NewRunner(cfg, nil)
		runner.AddMetric(diag.NewEnergyDrift())
		res, err := runner.Run(ctx)
		if err != nil {
			return nil, err
		}
		metrics := make(map[string]float64, len(res.Metrics)+3)
		for k, v := range res.Metrics {
			metrics[k] = v
		}
		if final := res.FinalSample(); final != nil {
			metrics["final_energy"] = final.TotalEnergy
		}
		if echo := res.EchoSeries(); len(echo) > 0 {
			metrics["final_echo"] = echo[len(echo)-1]
		}
		metrics["events"] = float64(len(res.Events))
		return metrics, nil
	})
	if err != nil {
		return err
	}

	paramNames := []string{sweepParam}
	if sweepParam2 != "" {
		paramNames = append(paramNames, sweepParam2)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tEVENTS\n", strings.ToUpper(strings.Join(paramNames, "\t")), strings.ToUpper(sweepMetric))
	for _, pt := range points {
		for _, name := range paramNames {
			fmt.Fprintf(w, "%.4f\t", pt.Params[name])
		}
		if pt.Err != nil {
			fmt.Fprintf(w, "error: %v\t\n", pt.Err)
			continue
		}
		fmt.Fprintf(w, "%.6f\t%.0f\n", pt.Metrics[sweepMetric], pt.Metrics["events"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	best, ok := optim.Best(points, sweepMetric, maximize)
	if !ok {
		return fmt.Errorf("no successful sweep point carries metric %q", sweepMetric)
	}
	fmt.Printf("\nbest %s: %.6f at", sweepMetric, best.Metrics[sweepMetric])
	for _, name := range paramNames {
		fmt.Printf(" %s=%.4f", name, best.Params[name])
	}
	fmt.Println()

	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	log, err := logging.New(debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario: %s (%d steps)\n", scenario.Name, len(scenario.Steps))
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}
	fmt.Println()

	results, runErr := automation.NewRunner(st, log).Run(context.Background(), scenario)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN\tSAMPLES\tEVENTS")
	for _, sr := range results {
		runID := sr.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", sr.Step, runID, len(sr.Result.Samples), len(sr.Result.Events))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	return runErr
}

func runScatter(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logging.New(debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := &automation.ScatterConfig{
		Base:   base,
		Jitter: jitter,
		Trials: trials,
		Seed:   seed,
	}

	fmt.Printf("scattering %s: %d trials, jitter %d\n\n", base.Name, trials, jitter)
	results, err := automation.RunScatter(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tANCHORS\tSURVIVED\tENERGY")
	for _, r := range results {
		anchors := make([]string, len(r.Anchors))
		for i, a := range r.Anchors {
			anchors[i] = fmt.Sprintf("(%d,%d,%d)", a[0], a[1], a[2])
		}
		fmt.Fprintf(w, "%d\t%s\t%v\t%.4f\n", r.Trial, strings.Join(anchors, " "), r.Survived, r.FinalEnergy)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	survived, lost := automation.ScatterStats(results)
	fmt.Printf("\nsurvived %d/%d (%.0f%%)\n", survived, survived+lost, 100*float64(survived)/float64(len(results)))

	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		names := config.ListPresets(args[0])
		if len(names) == 0 {
			return fmt.Errorf("unknown preset family: %s (families: %v)", args[0], presetFamilies())
		}
		sort.Strings(names)
		fmt.Printf("presets for %s:\n", args[0])
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
		return nil
	}

	for _, family := range presetFamilies() {
		names := config.ListPresets(family)
		sort.Strings(names)
		fmt.Printf("%s:\n", family)
		for _, name := range names {
			fmt.Printf("  %s/%s\n", family, name)
		}
	}
	return nil
}

// deriveConstants runs the electron-proton attraction at several initial
// separations and fits the convergence data to effective constants.
func deriveConstants(cmd *cobra.Command, args []string) error {
	base := config.GetPreset("charge", "attraction")
	if base == nil {
		return fmt.Errorf("charge/attraction preset missing")
	}

	log, err := logging.New(debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	separations := []int{4, 6, 8}
	var runs []diag.ConvergenceRun

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEPARATION\tTICKS\tCONVERGED")

	for _, d := range separations {
		cfg := base.Clone()
		cfg.Name = fmt.Sprintf("attraction_d%d", d)
		cfg.Ticks = ticks
		proton := cfg.Patterns[1].Anchor
		cfg.Patterns[0].Anchor = [3]int{proton[0] - d, proton[1], proton[2]}

		res, err := trial.NewRunner(cfg, log).Run(context.Background())
		if err != nil {
			return err
		}
		if len(res.Samples) == 0 || len(res.Samples[0].Patterns) < 2 {
			continue
		}
		a := res.Trajectory(res.Samples[0].Patterns[0].ID)
		b := res.Trajectory(res.Samples[0].Patterns[1].ID)

		t, ok := diag.ConvergenceTime(a, b, 1.5)
		if ok {
			runs = append(runs, diag.ConvergenceRun{Separation: float64(d), Ticks: t})
			fmt.Fprintf(w, "%d\t%d\tyes\n", d, t)
		} else {
			fmt.Fprintf(w, "%d\t-\tno\n", d)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	dc, err := diag.DeriveConstants(runs, config.DefaultQuantum, 0.7)
	if err != nil {
		return fmt.Errorf("not enough converged runs: %w", err)
	}

	fmt.Printf("\ncoulomb constant: %.6f\n", dc.CoulombK)
	fmt.Printf("fine structure:   %.6f\n", dc.FineStructure)
	fmt.Printf("tick duration:    %.3e s\n", dc.TickSeconds)

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	setup, err := trial.BuildSetup(cfg)
	if err != nil {
		return err
	}
	eng, err := engine.New(setup)
	if err != nil {
		return err
	}

	maxTicks := 0
	if cmd.Flags().Changed("ticks") {
		maxTicks = ticks
	}
	return viz.Run(eng, cfg.Name, maxTicks)
}

func benchTickRate(cmd *cobra.Command, args []string) error {
	sizes := []int{16, 24, 32}
	connectivities := []int{6, 8, 12}

	fmt.Printf("benchmarking %d ticks per configuration\n\n", ticks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DIMS\tCONN\tTICKS\tTIME\tTICKS/SEC")

	for _, size := range sizes {
		for _, conn := range connectivities {
			cfg := config.DefaultConfig()
			cfg.Lattice.Size = [3]int{size, size, size}
			cfg.Lattice.Connectivity = conn
			cfg.Field = config.FieldConfig{
				Decay: config.DefaultDecay, Alpha: config.DefaultAlpha,
				HybridLocal: config.DefaultHybridLocal, HybridNeighbor: config.DefaultHybridNeighbor,
				Shape: "flat", Value: 40,
			}
			cfg.Patterns = []config.PatternConfig{
				{Species: "electron", Scale: 1, Anchor: [3]int{size / 2, size / 2, size / 2}},
			}

			setup, err := trial.BuildSetup(cfg)
			if err != nil {
				return err
			}
			eng, err := engine.New(setup)
			if err != nil {
				return err
			}

			start := time.Now()
			for i := 0; i < ticks; i++ {
				eng.Advance()
			}
			elapsed := time.Since(start)

			ticksPerSec := float64(ticks) / elapsed.Seconds()
			fmt.Fprintf(w, "%dx%dx%d\t%d\t%d\t%v\t%.0f\n",
				size, size, size, conn, ticks, elapsed, ticksPerSec)
		}
	}

	return w.Flush()
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/driftfield/internal/analysis"
	"github.com/san-kum/driftfield/internal/automation"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/experiment"
	"github.com/san-kum/driftfield/internal/export"
	"github.com/san-kum/driftfield/internal/gui"
	"github.com/san-kum/driftfield/internal/input"
	"github.com/san-kum/driftfield/internal/render"
	"github.com/san-kum/driftfield/internal/sim"
	"github.com/san-kum/driftfield/internal/storage"
	"github.com/san-kum/driftfield/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logger   *slog.Logger

	configFile string
	preset     string
	count      int
	seed       int64

	ticks    int
	scenario string
	width    float64
	height   float64
	logFile  string
	outPath  string
	series   string
	scale    float64
	settle   float64

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

func main() {
	rootCmd := &cobra.Command{
		Use:           "driftfield",
		Short:         "interactive particle field",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logLevel, os.Stderr)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		RunE: runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".driftfield", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	addConfigFlags(rootCmd)
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "write logs here while the terminal view runs")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the field in the terminal",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().StringVar(&logFile, "log-file", "", "write logs here while the terminal view runs")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "pick a preset in the terminal, then run it",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, closeLog, err := liveLogger()
			if err != nil {
				return err
			}
			defer closeLog()
			return viz.RunInteractive(l)
		},
	}
	tuiCmd.Flags().StringVar(&logFile, "log-file", "", "write logs here while the terminal view runs")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run the field in a window",
		RunE:  runGUI,
	}
	addConfigFlags(guiCmd)
	guiCmd.Flags().Float64Var(&width, "width", config.DefaultWidth, "window width")
	guiCmd.Flags().Float64Var(&height, "height", config.DefaultHeight, "window height")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run headless on a synthetic clock and store the run",
		RunE:  runHeadless,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().IntVar(&ticks, "ticks", 600, "frames to run")
	runCmd.Flags().StringVar(&scenario, "scenario", "", "scenario file (yaml)")

	replayCmd := &cobra.Command{
		Use:   "replay [scenario.yaml]",
		Short: "run a scenario twice and check both runs agree",
		Args:  cobra.ExactArgs(1),
		RunE:  replayScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario.yaml]",
		Short: "replay a scenario across values of one physics parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "damping", fmt.Sprintf("parameter %v", automation.Tunables()))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.8, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.98, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a per-tick series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&series, "series", "kinetic", "kinetic|overlap|escapes|shockwaves|shock|collision")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectrum and settling time of a run series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&series, "series", "kinetic", "series to analyse")
	analyzeCmd.Flags().Float64Var(&settle, "settle", 0.05, "settled once below this fraction of the peak")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render the final frame of a run to PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVar(&outPath, "out", "", "output file (default <run_id>.png)")
	exportPNGCmd.Flags().Float64Var(&scale, "scale", 1, "pixel ratio")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the final frame, or one series, of a run to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&outPath, "out", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().StringVar(&series, "series", "", "plot this series instead of the particles")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(liveCmd, tuiCmd, guiCmd, runCmd, replayCmd, sweepCmd, listCmd, plotCmd, analyzeCmd, exportCmd, exportPNGCmd, exportSVGCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&count, "count", config.DefaultCount, "particle count")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// liveLogger keeps logs off the terminal while a full-screen view owns it.
func liveLogger() (*slog.Logger, func(), error) {
	if logFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	l, err := newLogger(logLevel, f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return l, func() { f.Close() }, nil
}

// loadConfig resolves the preset, then the config file over it, then any
// flags the user set explicitly.
func loadConfig(cmd *cobra.Command, base func(string) *config.Config) (*config.Config, string, error) {
	name := preset
	if name == "" {
		name = "default"
	}
	if _, ok := config.Presets[name]; !ok {
		_, err := config.LoadPreset(name)
		return nil, "", err
	}
	cfg := base(name)

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if preset == "" {
			name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
		}
	}

	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("count") {
		cfg.Field.Count = count
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, viz.TerminalConfig)
	if err != nil {
		return err
	}
	l, closeLog, err := liveLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	m, err := viz.NewModel(cfg, name, sim.WithLogger(l))
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func runGUI(cmd *cobra.Command, args []string) error {
	if preset == "" && configFile == "" {
		return gui.RunInteractive(logger)
	}
	cfg, name, err := loadConfig(cmd, config.GetPreset)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("width") {
		cfg.Viewport.Width = width
	}
	if cmd.Flags().Changed("height") {
		cfg.Viewport.Height = height
	}
	return gui.Run(cfg, name, logger)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	expCfg := experiment.Config{Ticks: ticks}
	if scenario != "" {
		sc, err := automation.LoadScenario(scenario)
		if err != nil {
			return err
		}
		cfg, err := sc.Config()
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg)
		if !cmd.Flags().Changed("ticks") {
			expCfg.Ticks = sc.Ticks
		}
		expCfg.Sim, expCfg.Preset, expCfg.Scenario, expCfg.Script = cfg, sc.Preset, sc.Name, sc
	} else {
		cfg, name, err := loadConfig(cmd, config.GetPreset)
		if err != nil {
			return err
		}
		expCfg.Sim, expCfg.Preset = cfg, name
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(expCfg)
	if err := exp.Setup(sim.WithLogger(logger)); err != nil {
		return err
	}
	if err := exp.Record(st, time.Now()); err != nil {
		return err
	}

	logger.Info("running", "preset", expCfg.Preset, "scenario", expCfg.Scenario, "ticks", expCfg.Ticks)
	start := time.Now()
	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("run " + res.RunID))
	fmt.Printf("ticks: %d committed of %d (%v)\n", res.Committed, res.Ticks, time.Since(start).Round(time.Millisecond))
	fmt.Printf("particles: %d\n\n", len(res.Particles))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tLAST\tMEAN\tSTD\tMIN\tMAX\tP95")
	names := make([]string, 0, len(res.Summaries))
	for name := range res.Summaries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := res.Summaries[name]
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\n", name, s.Last, s.Mean, s.StdDev, s.Min, s.Max, s.P95)
	}
	return w.Flush()
}

func replayScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	d, err := automation.Replay(cmd.Context(), sc)
	if err != nil {
		return err
	}
	fmt.Printf("scenario: %s (%d ticks, %d events)\n", sc.Name, sc.Ticks, len(sc.Events))
	fmt.Printf("divergence: %g\n", d)
	if d != 0 {
		return errors.New("replays diverged")
	}
	fmt.Println("deterministic")
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Scenario:  sc,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	})
	if err != nil {
		return err
	}

	fmt.Printf("sweep %s over %s (%d ticks)\n\n", sweepParam, sc.Name, sc.Ticks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tKINETIC\tPEAK\tOVERLAP\tESCAPES")
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.4g\t%.4g\t%.4g\t%.0f\n", r.ParamValue, r.Kinetic, r.PeakKinetic, r.MaxOverlap, r.Escapes)
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
	fmt.Fprintln(w, "ID\tPRESET\tSCENARIO\tTIME\tTICKS\tCOUNT\tVIEWPORT\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.0fx%.0f\t%d\n",
			run.ID,
			run.Preset,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Count,
			run.Width,
			run.Height,
			run.Seed,
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
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}
	data, err := storage.Series(samples, series)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(samples))

	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(series+" per tick"),
	)
	fmt.Println(graph)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	data, err := storage.Series(samples, series)
	if err != nil {
		return err
	}
	if len(data) < 4 {
		return fmt.Errorf("not enough samples to analyse: %d", len(data))
	}

	fps := float64(meta.FPS)
	if fps <= 0 {
		fps = config.DefaultFPS
	}

	fmt.Println(titleStyle.Render("analysis: " + meta.ID))
	fmt.Printf("series: %s (%d samples at %.0f fps)\n\n", series, len(data), fps)

	ps := analysis.PowerSpectrum(data)
	graph := asciigraph.Plot(ps[:max(len(ps)/4, 2)],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+series+")"),
	)
	fmt.Println(graph)

	hz, _ := analysis.DominantFrequency(data, fps)
	if hz > 0 {
		fmt.Printf("\ndominant frequency: %.3f hz\n", hz)
		fmt.Printf("period: %.3f s\n", 1/hz)
	} else {
		fmt.Println("\nno oscillation")
	}

	if i := analysis.SettleIndex(data, settle); i < len(data) {
		fmt.Printf("settled at tick %d (%.2f s)\n", samples[i].Tick, float64(i)/fps)
	} else {
		fmt.Println("never settled")
	}
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

// finalScene loads the stored end state of a run and the style of its
// preset.
func finalScene(runID string) (*render.Scene, render.Style, *storage.RunMetadata, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, render.Style{}, nil, err
	}
	particles, err := st.LoadParticles(runID)
	if err != nil {
		return nil, render.Style{}, nil, err
	}

	style := meta.Style()
	scene := &render.Scene{
		Particles:  particles,
		Width:      meta.Width,
		Height:     meta.Height,
		PixelRatio: scale,
		PointerX:   input.OffCanvas,
		PointerY:   input.OffCanvas,
	}
	return scene, style, meta, nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	scene, style, meta, err := finalScene(args[0])
	if err != nil {
		return err
	}
	out := outPath
	if out == "" {
		out = meta.ID + ".png"
	}
	caption := fmt.Sprintf("%s  tick %d", meta.ID, meta.Ticks)
	if err := export.WritePNG(out, scene, style, caption); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	out := outPath
	if out == "" {
		out = runID + ".svg"
	}

	var svg string
	if series != "" {
		samples, err := storage.New(dataDir).LoadSamples(runID)
		if err != nil {
			return err
		}
		data, err := storage.Series(samples, series)
		if err != nil {
			return err
		}
		svg = export.SeriesToSVG(data, 800, 240, "#6366f1")
	} else {
		scene, style, _, err := finalScene(runID)
		if err != nil {
			return err
		}
		scene.PixelRatio = 1
		svg = export.ParticlesToSVG(scene, style)
	}

	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tCOUNT\tSPAWN\tVIEWPORT\tDAMPING")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%s\t%.0fx%.0f\t%.2f\n",
			name,
			cfg.Field.Count,
			cfg.Field.Spawn,
			cfg.Viewport.Width,
			cfg.Viewport.Height,
			cfg.Physics.Damping,
		)
	}
	return w.Flush()
}

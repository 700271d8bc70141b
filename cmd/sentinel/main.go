package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/san-kum/sentinel/internal/config"
	"github.com/san-kum/sentinel/internal/engine"
	"github.com/san-kum/sentinel/internal/export"
	"github.com/san-kum/sentinel/internal/feed"
	"github.com/san-kum/sentinel/internal/logging"
	"github.com/san-kum/sentinel/internal/metrics"
	"github.com/san-kum/sentinel/internal/storage"
	"github.com/san-kum/sentinel/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	tick       time.Duration
	fps        int
	logPath    string
	theme      string

	// sample
	ticks int
	save  bool

	// export
	svgOut string

	// record
	frames  int
	outFile string
	width   int
	height  int
)

var errNotTerminal = errors.New("live view needs an interactive terminal")

func main() {
	rootCmd := &cobra.Command{
		Use:           "sentinel",
		Short:         "a living view of system health",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".sentinel", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "metric preset")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	pf.DurationVar(&tick, "tick", 0, "metric sampling interval")
	pf.IntVar(&fps, "fps", 0, "frame rate")
	pf.StringVar(&logPath, "log", "", "write logs to this file")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the full-screen view",
		RunE:  runLive,
	}
	for _, c := range []*cobra.Command{rootCmd, liveCmd} {
		c.Flags().StringVar(&theme, "theme", "", "panel theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	}

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "print metric samples and their visual parameters",
		RunE:  runSample,
	}
	sampleCmd.Flags().IntVar(&ticks, "ticks", 10, "number of ticks")
	sampleCmd.Flags().BoolVar(&save, "save", false, "store the run in the data directory")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as json, or as an svg chart with --svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&svgOut, "svg", "", "write an svg chart to this path")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "render frames off-screen to an animated gif",
		RunE:  runRecord,
	}
	recordCmd.Flags().IntVar(&frames, "frames", 0, "number of frames")
	recordCmd.Flags().StringVar(&outFile, "out", "", "output gif path")
	recordCmd.Flags().IntVar(&width, "width", 0, "image width in pixels")
	recordCmd.Flags().IntVar(&height, "height", 0, "image height in pixels")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list metric presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(liveCmd, sampleCmd, recordCmd, presetsCmd, runsCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig layers the config file and command line flags over the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("preset") {
		cfg.Preset = preset
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("tick") {
		cfg.TickInterval = tick
	}
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("log") {
		cfg.Log.Path = logPath
	}
	if flags.Lookup("theme") != nil && flags.Changed("theme") {
		cfg.Theme = theme
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// pipeline builds the metric feed and the engine for cfg. The source and the
// engine draw from separate generators so a seed reproduces both.
func pipeline(cfg *config.Config, extra ...engine.Option) (*feed.Feed, *engine.Engine) {
	srcOpts := append(cfg.SourceOptions(), metrics.WithRand(rand.New(rand.NewSource(cfg.Seed))))
	src := metrics.NewSource(srcOpts...)
	f := feed.New(src, cfg.TickInterval)

	opts := []engine.Option{
		engine.WithRand(rand.New(rand.NewSource(cfg.Seed + 1))),
		engine.WithCounts(cfg.Engine.Particles, cfg.Engine.Waves, cfg.Engine.Helix),
	}
	eng := engine.New(append(opts, extra...)...)
	return f, eng
}

// progressEvery is how many frames pass between record progress log lines.
const progressEvery = 60

func runLive(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = logging.NewContext(ctx, logger)

	logger.Info("starting live view",
		zap.String("preset", cfg.Preset),
		zap.Int64("seed", cfg.Seed),
		zap.Int("fps", cfg.FPS),
	)

	f, eng := pipeline(cfg)
	go f.Run(ctx)

	err = viz.Run(eng, f, viz.Options{
		FrameInterval: cfg.FrameInterval(),
		Viewport:      cfg.Viewport,
		Theme:         cfg.Theme,
		Logger:        logger,
	})
	cancel()
	logger.Info("live view stopped", zap.Uint64("frames", eng.Frames()), zap.Uint64("ticks", f.Ticks()))
	return err
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if ticks <= 0 {
		return fmt.Errorf("--ticks must be positive, got %d", ticks)
	}

	f, _ := pipeline(cfg)
	samples := make([]metrics.Sample, 0, ticks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TICK\tCPU\tMEM\tERR\tNET\tSTATUS\tCOLOR\tPULSE\tBREATH\tTENSION\tFLOW")
	for i := 0; i < ticks; i++ {
		u := f.Step()
		s, p := u.Sample, u.Params
		samples = append(samples, s)
		fmt.Fprintf(w, "%d\t%.1f\t%.1f\t%d\t%.1f\t%s\t%s\t%.4f\t%.1f\t%.1f\t%.2f\n",
			u.Tick, s.CPU, s.Memory, s.Errors, s.Network,
			p.Status, p.Color.Hex(), p.PulseSpeed, p.BreathAmplitude, p.Tension, p.ParticleSpeed)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !save {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg.Preset, cfg.Seed, cfg.TickInterval, samples)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	fmt.Printf("\nsaved run %s\n", runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tTICKS\tMEAN CPU\tPEAK CPU\tCRITICAL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.1f\t%.1f\t%.0f\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Summary["mean_cpu"],
			run.Summary["peak_cpu"],
			run.Summary["critical_ticks"],
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
	if len(samples) < 2 {
		return fmt.Errorf("run %s: not enough samples to plot", runID)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(samples))

	for _, s := range export.MetricSeries(samples) {
		graph := asciigraph.Plot(s.Values,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(100),
			asciigraph.Caption(s.Name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	if svgOut == "" {
		return st.ExportJSON(os.Stdout, runID)
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	svg := export.SeriesToSVG(export.MetricSeries(samples), 800, 300)
	if svg == "" {
		return fmt.Errorf("run %s: not enough samples to chart", runID)
	}
	if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("frames") {
		cfg.Record.Frames = frames
	}
	if flags.Changed("out") {
		cfg.Record.Output = outFile
	}
	if flags.Changed("width") {
		cfg.Record.Width = width
	}
	if flags.Changed("height") {
		cfg.Record.Height = height
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	out, err := os.Create(cfg.Record.Output)
	if err != nil {
		return err
	}

	var rendered int
	f, eng := pipeline(cfg, engine.WithFrameHook(func(ts time.Duration) {
		rendered++
		if rendered%progressEvery == 0 {
			logger.Debug("recording", zap.Int("frame", rendered), zap.Int("of", cfg.Record.Frames), zap.Duration("ts", ts))
		}
	}))
	start := time.Now()
	res, err := viz.Record(out, eng, f, viz.RecordOptions{
		Width:         cfg.Record.Width,
		Height:        cfg.Record.Height,
		Viewport:      cfg.Viewport,
		Frames:        cfg.Record.Frames,
		FrameInterval: cfg.FrameInterval(),
		TickInterval:  cfg.TickInterval,
	})
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("record %s: %w", cfg.Record.Output, err)
	}

	logger.Info("recorded",
		zap.String("path", cfg.Record.Output),
		zap.Int("frames", res.Frames),
		zap.Uint64("rendered", eng.Frames()),
		zap.Duration("took", time.Since(start)),
	)
	fmt.Printf("wrote %d frames to %s (final status %s after %d ticks)\n",
		res.Frames, cfg.Record.Output, res.Last.Params.Status, res.Last.Tick)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTREND\tDESCRIPTION")
	for _, name := range metrics.PresetNames() {
		p, _ := metrics.GetPreset(name)
		fmt.Fprintf(w, "%s\t%+.1f\t%s\n", p.Name, p.Trend, p.Description)
	}
	return w.Flush()
}

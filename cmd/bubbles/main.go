package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/psmith94/gates-bubbles/internal/chart"
	"github.com/psmith94/gates-bubbles/internal/config"
	"github.com/psmith94/gates-bubbles/internal/dataset"
	"github.com/psmith94/gates-bubbles/internal/gui"
	"github.com/psmith94/gates-bubbles/internal/logging"
	"github.com/psmith94/gates-bubbles/internal/metrics"
	"github.com/psmith94/gates-bubbles/internal/render"
	"github.com/psmith94/gates-bubbles/internal/storage"
	"github.com/psmith94/gates-bubbles/internal/viz"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	storeDir    string
	configFile  string
	preset      string
	dataPath    string
	dataFormat  string
	seed        int64
	logLevel    string
	maxTicks    int
	modes       []string
	frameRate   int
	metricsAddr string
	svgOut      string
	outFile     string
	noSave      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "bubbles",
		Short:         "force-directed bubble chart of replacement values",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&storeDir, "store", "", "run store directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	chartFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&dataPath, "data", "", "dataset path (csv or json)")
		cmd.Flags().StringVar(&dataFormat, "format", "", "dataset format, detected from the extension when empty")
		cmd.Flags().Int64Var(&seed, "seed", 0, "seed for initial placement")
		cmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate")
		cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	}

	runCmd := &cobra.Command{
		Use:   "run [data]",
		Short: "settle the layout headless and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHeadless,
	}
	chartFlags(runCmd)
	runCmd.Flags().IntVar(&maxTicks, "max-ticks", 2000, "tick budget per mode")
	runCmd.Flags().StringSliceVar(&modes, "mode", nil, "modes to visit in order after the default one")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "also write the final layout as SVG")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [data]",
		Short: "run the chart in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	chartFlags(liveCmd)

	guiCmd := &cobra.Command{
		Use:   "gui [data]",
		Short: "run the chart in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}
	chartFlags(guiCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [data|run_id]",
		Short: "render a dataset or a stored layout as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	chartFlags(svgCmd)
	svgCmd.Flags().IntVar(&maxTicks, "max-ticks", 2000, "tick budget when settling a dataset")
	svgCmd.Flags().StringSliceVar(&modes, "mode", nil, "modes to visit in order after the default one")
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored layout as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			Good.Printf("wrote %s\n", args[0])
			return nil
		},
	})

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, listCmd, showCmd, svgCmd, exportJSONCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		Bad.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers preset, config file, environment and flags, in that
// order, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := config.LoadInto(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.Path = dataPath
	}
	if flags.Changed("format") {
		cfg.Data.Format = dataFormat
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if storeDir != "" {
		cfg.StoreDir = storeDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type session struct {
	cfg     *config.Config
	log     *slog.Logger
	prom    *metrics.Registry
	metrics *metrics.Set
	chart   *chart.Chart
	scene   *render.Scene
}

// newSession loads the dataset and initialises a chart drawing into a
// fresh scene.
func newSession(cmd *cobra.Command, args []string, logTo io.Writer) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Data.Path = args[0]
	}
	if cfg.Data.Path == "" {
		return nil, fmt.Errorf("no dataset: pass a path or set %s", config.EnvData)
	}
	log := logging.New(logTo, cfg.LogLevel, cfg.LogFormat)

	records, err := dataset.Load(cfg.Data.Path, cfg.Data.Format, cfg.Data.Fields)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:     cfg,
		log:     log,
		prom:    metrics.NewRegistry(),
		metrics: metrics.Standard(),
		scene:   render.NewScene(cfg.Canvas.Width, cfg.Canvas.Height),
	}
	s.chart = chart.New(cfg, s.scene, s.scene,
		chart.WithLogger(log),
		chart.WithMetrics(s.prom),
		chart.WithObserver(s.metrics),
	)
	if err := s.chart.Init(records); err != nil {
		return nil, err
	}
	for _, d := range s.chart.Dropped() {
		log.Debug("record skipped", slog.String("error", d.Error()))
	}
	return s, nil
}

// withMetrics runs fn, serving the registry on --metrics-addr alongside it
// when set. The server stops when fn returns.
func withMetrics(ctx context.Context, s *session, fn func(ctx context.Context) error) error {
	if metricsAddr == "" {
		return fn(ctx)
	}
	g, gctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(gctx)
	srv := &http.Server{Addr: metricsAddr, Handler: s.prom.Handler(), ReadHeaderTimeout: 5 * time.Second}

	g.Go(func() error {
		s.log.Info("serving metrics", slog.String("addr", metricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		defer cancel()
		return fn(ctx)
	})
	return g.Wait()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// settleModes settles the default mode, then each --mode in turn.
func (s *session) settleModes(ctx context.Context) error {
	settle := func() {
		n := s.chart.Settle(maxTicks)
		if !s.chart.Settled() {
			Warn.Fprintf(os.Stderr, "%s did not settle within %d ticks\n", s.chart.Mode().Key, maxTicks)
		}
		Subtle.Fprintf(os.Stderr, "settled %-8s %d ticks\n", s.chart.Mode().Key, n)
	}
	settle()
	for _, key := range modes {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.chart.ToggleView(key); err != nil {
			return err
		}
		settle()
	}
	return nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args, os.Stderr)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	if err := withMetrics(ctx, s, s.settleModes); err != nil {
		return err
	}

	dropped := s.chart.Dropped()
	fmt.Printf("%d bubbles, %d skipped, %d ticks in %v\n",
		len(s.chart.Nodes()), len(dropped), s.chart.Ticks(), time.Since(start).Round(time.Millisecond))
	for _, d := range dropped {
		Warn.Printf("  skipped: %v\n", d)
	}

	if svgOut != "" {
		if err := writeFile(svgOut, func(w io.Writer) error { return render.WriteSVG(w, s.scene) }); err != nil {
			return err
		}
		Good.Printf("wrote %s\n", svgOut)
	}
	if noSave {
		return nil
	}

	st := storage.New(s.cfg.StoreDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.Run{
		Source:  s.cfg.Data.Path,
		Seed:    s.cfg.Seed,
		Modes:   s.chart.ModeHistory(),
		Ticks:   s.chart.Ticks(),
		Dropped: len(dropped),
		Metrics: s.metrics.Values(),
		Alpha:   s.chart.AlphaTrace(),
		Layout: storage.Layout{
			Width:  s.cfg.Canvas.Width,
			Height: s.cfg.Canvas.Height,
			Mode:   s.chart.Mode().Key,
			Nodes:  s.chart.Nodes(),
			Labels: s.scene.Labels(),
		},
	})
	if err != nil {
		return err
	}
	fmt.Printf("run: %s\n", Brand.Sprint(runID))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	// The terminal belongs to the UI, so logs are dropped.
	s, err := newSession(cmd, args, io.Discard)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	return withMetrics(ctx, s, func(ctx context.Context) error {
		p := tea.NewProgram(viz.NewModel(s.chart, s.scene, s.cfg.FPS), tea.WithAltScreen(), tea.WithContext(ctx))
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
}

func runGUI(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args, os.Stderr)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	return withMetrics(ctx, s, func(ctx context.Context) error {
		gui.Run(s.chart, s.scene, s.cfg.FPS)
		return nil
	})
}

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.StoreDir), nil
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
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tMODE\tNODES\tSKIPPED\tTICKS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Nodes,
			run.Dropped,
			run.Ticks,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	alpha, err := st.LoadAlpha(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", Brand.Sprint("run"), meta.ID)
	fmt.Printf("  source   %s\n", meta.Source)
	fmt.Printf("  time     %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("  seed     %d\n", meta.Seed)
	fmt.Printf("  modes    %s\n", strings.Join(meta.Modes, " > "))
	fmt.Printf("  nodes    %d (%d skipped)\n", meta.Nodes, meta.Dropped)
	fmt.Printf("  canvas   %.0fx%.0f\n", meta.Width, meta.Height)
	for _, name := range sortedKeys(meta.Metrics) {
		fmt.Printf("  %-8s %.4g\n", name, meta.Metrics[name])
	}

	if len(alpha) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(alpha, asciigraph.Height(10), asciigraph.Width(70), asciigraph.Caption("alpha")))
	}
	return nil
}

// exportSVG settles a dataset when the argument is a file, otherwise it
// loads the stored run with that ID.
func exportSVG(cmd *cobra.Command, args []string) error {
	if fi, err := os.Stat(args[0]); err == nil && !fi.IsDir() {
		s, err := newSession(cmd, args, os.Stderr)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()
		if err := s.settleModes(ctx); err != nil {
			return err
		}
		return writeFile(outFile, func(w io.Writer) error { return render.WriteSVG(w, s.scene) })
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	l, err := st.LoadLayout(args[0])
	if err != nil {
		return err
	}
	return writeFile(outFile, func(w io.Writer) error { return render.WriteSVG(w, l.Scene()) })
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	l, err := st.LoadLayout(args[0])
	if err != nil {
		return err
	}
	return writeFile(outFile, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	})
}

// writeFile writes to path, or stdout when path is empty.
func writeFile(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

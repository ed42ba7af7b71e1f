package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/doxymd/internal/config"
	"git.home.luguber.info/inful/doxymd/internal/doxygen"
	"git.home.luguber.info/inful/doxymd/internal/errors"
	"git.home.luguber.info/inful/doxymd/internal/logfields"
	"git.home.luguber.info/inful/doxymd/internal/markdown"
	"git.home.luguber.info/inful/doxymd/internal/metrics"
	"git.home.luguber.info/inful/doxymd/internal/search"
	"git.home.luguber.info/inful/doxymd/internal/watch"
)

const version = "0.3.0"

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"doxymd.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Generate struct {
		Input  string `short:"i" help:"Doxygen XML input directory"`
		Output string `short:"o" help:"Output directory for generated Markdown"`
		Index  bool   `help:"Also build the full-text search index"`
	} `cmd:"" help:"Convert a Doxygen XML directory into Markdown pages"`

	Watch struct {
		Input  string `short:"i" help:"Doxygen XML input directory"`
		Output string `short:"o" help:"Output directory for generated Markdown"`
	} `cmd:"" help:"Regenerate output whenever the input directory changes"`

	Search struct {
		Query string `arg:"" help:"Query text"`
		Limit int    `short:"n" help:"Maximum number of results" default:"10"`
	} `cmd:"" help:"Search the indexed API surface"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Version struct{} `cmd:"" help:"Print the doxymd version"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	var err error
	switch ctx.Command() {
	case "generate":
		err = runGenerate(CLI.Generate.Input, CLI.Generate.Output, CLI.Generate.Index)
	case "watch":
		err = runWatch(CLI.Watch.Input, CLI.Watch.Output)
	case "search <query>":
		err = runSearch(CLI.Search.Query, CLI.Search.Limit)
	case "init":
		err = config.Init(CLI.Config, CLI.Init.Force)
	case "version":
		fmt.Printf("doxymd %s\n", version)
	}
	if err != nil {
		slog.Error("Command failed",
			slog.String("category", string(errors.GetCategory(err))),
			logfields.Error(err))
		os.Exit(1)
	}
}

// loadConfig reads the config file when present and applies flag overrides.
func loadConfig(inputDir, outputDir string) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(CLI.Config); err == nil {
		loaded, lerr := config.Load(CLI.Config)
		if lerr != nil {
			return nil, lerr
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if inputDir != "" {
		cfg.Input.Dir = inputDir
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if cfg.Input.Dir == "" {
		return nil, errors.Fatal(errors.CategoryConfig, "no input directory configured (use --input or the config file)")
	}
	return cfg, cfg.Validate()
}

func runGenerate(inputDir, outputDir string, buildIndex bool) error {
	cfg, err := loadConfig(inputDir, outputDir)
	if err != nil {
		return err
	}

	rec := metrics.NewPrometheusRecorder(nil)
	if err := convert(cfg, buildIndex, rec); err != nil {
		return err
	}
	logCounterTotals(rec)
	return nil
}

// convert runs the full pipeline once: ingest, render, optionally index.
func convert(cfg *config.Config, buildIndex bool, rec *metrics.PrometheusRecorder) error {
	runID := uuid.NewString()
	start := time.Now()
	slog.Info("Starting conversion",
		logfields.RunID(runID),
		logfields.Path(cfg.Input.Dir),
		slog.String("output", cfg.Output.Dir))

	if cfg.Output.Clean {
		if err := os.RemoveAll(cfg.Output.Dir); err != nil {
			return errors.WrapFatal(err, errors.CategoryIO, "failed to clean output directory").
				WithContext("path", cfg.Output.Dir)
		}
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o750); err != nil {
		return errors.WrapFatal(err, errors.CategoryIO, "failed to create output directory").
			WithContext("path", cfg.Output.Dir)
	}

	reg, err := doxygen.NewParser(rec).ParseDirectory(cfg.Input.Dir)
	if err != nil {
		return err
	}

	if err := markdown.NewGenerator(cfg.Output.Dir, cfg.Output.VerifyLinks, rec).Generate(reg); err != nil {
		return err
	}

	if buildIndex {
		if err := search.BuildIndex(reg, cfg.Search.IndexDir); err != nil {
			return err
		}
	}

	slog.Info("Conversion complete",
		logfields.RunID(runID),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return nil
}

func runWatch(inputDir, outputDir string) error {
	cfg, err := loadConfig(inputDir, outputDir)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// One recorder for the whole watch session, so counters accumulate
	// across rebuilds and the endpoint below sees every run.
	rec := metrics.NewPrometheusRecorder(nil)
	if cfg.Metrics.Enabled {
		stop := serveMetrics(cfg.Metrics, rec)
		defer stop()
	}

	// Initial conversion before entering the watch loop; a broken input at
	// startup is reported but does not prevent watching.
	if err := convert(cfg, false, rec); err != nil {
		slog.Error("Initial conversion failed", logfields.Error(err))
	}

	w := watch.New(time.Duration(cfg.Watch.DebounceMS) * time.Millisecond)
	return w.Run(ctx, cfg.Input.Dir, func() error {
		return convert(cfg, false, rec)
	})
}

// serveMetrics starts the Prometheus endpoint for watch mode and returns a
// function that shuts it down.
func serveMetrics(cfg config.MetricsConfig, rec *metrics.PrometheusRecorder) func() {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, metrics.HTTPHandler(rec.Registry()))

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		slog.Info("Serving metrics",
			slog.String("addr", cfg.Addr),
			slog.String("path", cfg.Path))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	return func() { _ = srv.Close() }
}

// logCounterTotals reports the gathered counters of a one-shot run.
func logCounterTotals(rec *metrics.PrometheusRecorder) {
	totals, err := rec.CounterTotals()
	if err != nil {
		slog.Warn("Failed to gather metrics", logfields.Error(err))
		return
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]any, 0, len(names))
	for _, name := range names {
		args = append(args, slog.Float64(name, totals[name]))
	}
	slog.Info("Run metrics", args...)
}

func runSearch(query string, limit int) error {
	cfg, err := loadConfig("", "")
	if err != nil {
		// Search needs no input directory; fall back to defaults.
		cfg = config.Default()
	}

	hits, err := search.Query(cfg.Search.IndexDir, query, limit)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, hit := range hits {
		fmt.Printf("%2d. [%s] %s (%s, score %.3f)\n", i+1, hit.Kind, hit.QualifiedName, hit.RefID, hit.Score)
	}
	return nil
}

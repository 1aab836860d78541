package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"metroflow/internal/config"
	apperrors "metroflow/internal/errors"
	"metroflow/internal/pipeline"
	"metroflow/internal/render"
)

func main() {
	inDir := flag.String("in", "", "input directory of tabular files (overrides config)")
	outDir := flag.String("out", "", "output directory for the chart and CSV exports (overrides config)")
	configPath := flag.String("config", "", "optional YAML config file")
	topN := flag.Int("top", 0, "ranking depth for top city pairs (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, friendlyMessage(err))
		os.Exit(1)
	}
	if *inDir != "" {
		cfg.Input.Dir = *inDir
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *topN > 0 {
		cfg.Analysis.TopN = *topN
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting analysis run",
		slog.String("input_dir", cfg.Input.Dir),
		slog.String("output_dir", cfg.Output.Dir),
		slog.Int("top_n", cfg.Analysis.TopN))

	opts := render.DefaultOptions()
	opts.WidthInches = cfg.Chart.WidthInches
	opts.HeightInches = cfg.Chart.HeightInches
	opts.DPI = cfg.Chart.DPI
	opts.TitleSize = cfg.Chart.TitleSize
	renderer := render.New(opts, logger)

	p := pipeline.New(cfg, logger, renderer, os.Stdout)
	if _, err := p.Run(); err != nil {
		logger.Error("pipeline failed", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, friendlyMessage(err))
		os.Exit(1)
	}
}

// friendlyMessage reduces a pipeline failure to one human-readable line,
// never a raw internal trace.
func friendlyMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return "metroflow: " + appErr.Message
	}
	return "metroflow: " + err.Error()
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

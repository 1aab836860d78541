// Package pipeline wires the stages together: load, profile, analyze,
// assemble, render, export. The flow is strictly linear and synchronous;
// every run is independent and a fatal error aborts it with a typed error
// and no partial-result salvage.
package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"metroflow/internal/analytics"
	"metroflow/internal/config"
	"metroflow/internal/dataset"
	apperrors "metroflow/internal/errors"
	"metroflow/internal/exporter"
	"metroflow/internal/profile"
)

// Renderer is the rendering collaborator boundary. The pipeline only ever
// hands it an assembled result and a target path.
type Renderer interface {
	Render(res *analytics.Result, path string) error
}

// Pipeline runs one full ingest-profile-analyze-render cycle.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	renderer Renderer
	out      io.Writer
}

// New creates a pipeline. out receives the diagnostic narrative; nil means
// stdout.
func New(cfg *config.Config, logger *slog.Logger, renderer Renderer, out io.Writer) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = os.Stdout
	}
	return &Pipeline{cfg: cfg, logger: logger, renderer: renderer, out: out}
}

// Run executes the pipeline and returns the assembled result bundle.
func (p *Pipeline) Run() (*analytics.Result, error) {
	tables, failures, err := dataset.LoadDirectory(p.cfg.Input.Dir, p.logger)
	if err != nil {
		return nil, err
	}

	flowTables, indicatorTable := profile.Partition(tables)
	profile.Report(p.out, flowTables, indicatorTable, failures)

	var flows []dataset.FlowRecord
	for _, t := range flowTables {
		records, err := dataset.FlowRecords(t)
		if err != nil {
			return nil, err
		}
		flows = append(flows, records...)
	}

	if indicatorTable == nil {
		return nil, apperrors.NewMissingPrimaryTableError()
	}
	indicators, err := dataset.IndicatorRecords(indicatorTable)
	if err != nil {
		return nil, err
	}

	opts, err := p.analysisOptions(indicatorTable)
	if err != nil {
		return nil, err
	}

	res, err := analytics.Assemble(flows, indicators, opts)
	if err != nil {
		return nil, err
	}
	p.writeNarrative(res)

	chartPath := filepath.Join(p.cfg.Output.Dir, p.cfg.Output.ChartFile)
	if err := p.renderer.Render(res, chartPath); err != nil {
		return nil, err
	}

	csvWriter := exporter.NewCSVWriter(p.cfg.Output.Dir, p.logger)
	if err := csvWriter.ExportResult(res); err != nil {
		return nil, err
	}

	p.logger.Info("pipeline complete",
		slog.Int("flow_records", len(flows)),
		slog.Int("indicator_records", len(indicators)),
		slog.String("chart", chartPath))
	return res, nil
}

// analysisOptions fills the unset analysis fields from the indicator-column
// categories: the cross-sectional projection takes the first matched column
// of each category, the bivariate extract pairs a data-industry column with
// an economic-development column.
func (p *Pipeline) analysisOptions(indicator *dataset.RawTable) (analytics.Options, error) {
	opts := analytics.Options{
		TopN:        p.cfg.Analysis.TopN,
		CoreCities:  p.cfg.Analysis.CoreCities,
		CrossFields: p.cfg.Analysis.CrossFields,
		SortField:   p.cfg.Analysis.SortField,
	}
	if len(p.cfg.Analysis.RelationFields) == 2 {
		opts.RelationFields = [2]string{p.cfg.Analysis.RelationFields[0], p.cfg.Analysis.RelationFields[1]}
	}

	categories := profile.Classify(indicator.Columns)
	firstOf := func(name string) string {
		for _, cat := range categories {
			if cat.Name == name && len(cat.MatchedColumns) > 0 {
				return cat.MatchedColumns[0]
			}
		}
		return ""
	}

	if len(opts.CrossFields) == 0 {
		for _, cat := range categories {
			if len(cat.MatchedColumns) > 0 {
				opts.CrossFields = append(opts.CrossFields, cat.MatchedColumns[0])
			}
		}
		if len(opts.CrossFields) > 3 {
			opts.CrossFields = opts.CrossFields[:3]
		}
	}
	if len(opts.CrossFields) == 0 {
		return opts, apperrors.NewMissingFieldError("categorized indicator columns", indicator.Name)
	}
	if opts.SortField == "" {
		opts.SortField = opts.CrossFields[0]
	}

	if opts.RelationFields == ([2]string{}) {
		a := firstOf("data-industry")
		b := firstOf("economic-development")
		if a == "" || b == "" {
			if len(opts.CrossFields) < 2 {
				return opts, apperrors.NewMissingFieldError("relationship fields", indicator.Name)
			}
			a, b = opts.CrossFields[0], opts.CrossFields[1]
		}
		opts.RelationFields = [2]string{a, b}
	}
	return opts, nil
}

// writeNarrative prints the analysis summary that accompanies the chart.
func (p *Pipeline) writeNarrative(res *analytics.Result) {
	fmt.Fprintf(p.out, "==== Analysis ====\n")
	fmt.Fprintf(p.out, "Years covered: %d-%d\n",
		res.YearlyTotals[0].Year, res.YearlyTotals[len(res.YearlyTotals)-1].Year)
	fmt.Fprintf(p.out, "Total transfer volume grew %.2f%% over the period\n", res.GrowthPct)
	fmt.Fprintf(p.out, "Top city pairs in %d:\n", res.LatestYear)
	for i, pair := range res.TopPairs {
		fmt.Fprintf(p.out, "  %2d. %s  %.2f\n", i+1, pair.Label, pair.Volume)
	}
	fmt.Fprintf(p.out, "Cross-sectional comparison (%d, %d cities, by %s)\n",
		res.IndicatorYear, len(res.CrossSection), res.SortField)
	fmt.Fprintf(p.out, "Relationship extract: %s vs %s, %d cities\n",
		res.RelationNames[0], res.RelationNames[1], len(res.Relationship))
}

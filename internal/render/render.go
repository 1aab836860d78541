// Package render draws the four-panel summary chart from an assembled
// analysis result. It is the rendering boundary of the pipeline: everything
// upstream treats it as an opaque collaborator behind a narrow interface.
package render

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"metroflow/internal/analytics"
	apperrors "metroflow/internal/errors"
)

// Options is the immutable rendering configuration. It is passed in
// explicitly; nothing here is process-global.
type Options struct {
	WidthInches  float64
	HeightInches float64
	DPI          int
	TitleSize    float64 // points
	LabelSize    float64 // points
	BarWidth     float64 // points
	MaxGroupCols int     // cap on grouped-bar metric count
}

// DefaultOptions returns the rendering defaults for the 2x2 layout.
func DefaultOptions() Options {
	return Options{
		WidthInches:  16,
		HeightInches: 12,
		DPI:          96,
		TitleSize:    14,
		LabelSize:    11,
		BarWidth:     16,
		MaxGroupCols: 3,
	}
}

// ChartRenderer renders the result bundle as a single PNG with four panels:
// yearly time series, top-N ranking bars, grouped cross-sectional bars, and
// a labeled scatter.
type ChartRenderer struct {
	opts   Options
	logger *slog.Logger
}

// New creates a chart renderer with the given options.
func New(opts Options, logger *slog.Logger) *ChartRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartRenderer{opts: opts, logger: logger}
}

// Render draws the 2x2 panel layout and writes it to path.
func (r *ChartRenderer) Render(res *analytics.Result, path string) error {
	timeSeries, err := r.timeSeriesPanel(res)
	if err != nil {
		return apperrors.NewRenderError("time-series panel", err)
	}
	ranking, err := r.rankingPanel(res)
	if err != nil {
		return apperrors.NewRenderError("ranking panel", err)
	}
	grouped, err := r.groupedPanel(res)
	if err != nil {
		return apperrors.NewRenderError("grouped comparison panel", err)
	}
	scatter, err := r.scatterPanel(res)
	if err != nil {
		return apperrors.NewRenderError("scatter panel", err)
	}

	plots := [][]*plot.Plot{
		{timeSeries, ranking},
		{grouped, scatter},
	}

	img := vgimg.NewWith(
		vgimg.UseWH(vg.Length(r.opts.WidthInches)*vg.Inch, vg.Length(r.opts.HeightInches)*vg.Inch),
		vgimg.UseDPI(r.opts.DPI),
	)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 2, Cols: 2,
		PadX: vg.Points(12), PadY: vg.Points(12),
		PadTop: vg.Points(8), PadBottom: vg.Points(8),
		PadLeft: vg.Points(8), PadRight: vg.Points(8),
	}

	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			plots[i][j].Draw(canvases[i][j])
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewRenderError("cannot create output directory", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewRenderError("cannot create chart file", err)
	}
	defer file.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(file); err != nil {
		return apperrors.NewRenderError("cannot encode chart image", err)
	}

	r.logger.Info("chart written",
		slog.String("path", path),
		slog.Int("panels", 4))
	return nil
}

func (r *ChartRenderer) newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(r.opts.TitleSize)
	p.X.Label.TextStyle.Font.Size = vg.Points(r.opts.LabelSize)
	p.Y.Label.TextStyle.Font.Size = vg.Points(r.opts.LabelSize)
	return p
}

func (r *ChartRenderer) timeSeriesPanel(res *analytics.Result) (*plot.Plot, error) {
	p := r.newPlot(fmt.Sprintf("Total inter-city transfer volume by year (growth %.1f%%)", res.GrowthPct))
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Transfer volume"

	pts := make(plotter.XYs, len(res.YearlyTotals))
	for i, yt := range res.YearlyTotals {
		pts[i].X = float64(yt.Year)
		pts[i].Y = yt.Total
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	line.Width = vg.Points(2)
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(3)

	p.Add(plotter.NewGrid(), line, points)
	return p, nil
}

func (r *ChartRenderer) rankingPanel(res *analytics.Result) (*plot.Plot, error) {
	p := r.newPlot(fmt.Sprintf("Top %d city pairs, %d", len(res.TopPairs), res.LatestYear))
	p.X.Label.Text = "Transfer volume"

	// reversed so rank 1 sits at the top of the axis
	n := len(res.TopPairs)
	values := make(plotter.Values, n)
	labels := make([]string, n)
	for i, pair := range res.TopPairs {
		values[n-1-i] = pair.Volume
		labels[n-1-i] = pair.Label
	}

	bars, err := plotter.NewBarChart(values, vg.Points(r.opts.BarWidth))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(0)

	p.Add(bars)
	p.NominalY(labels...)
	return p, nil
}

func (r *ChartRenderer) groupedPanel(res *analytics.Result) (*plot.Plot, error) {
	p := r.newPlot(fmt.Sprintf("Core-city indicator comparison, %d", res.IndicatorYear))
	p.Legend.Top = true

	fields := res.CrossFields
	if len(fields) > r.opts.MaxGroupCols {
		fields = fields[:r.opts.MaxGroupCols]
	}

	cities := make([]string, len(res.CrossSection))
	for i, row := range res.CrossSection {
		cities[i] = row.City
	}

	width := vg.Points(r.opts.BarWidth)
	for k, field := range fields {
		values := make(plotter.Values, len(res.CrossSection))
		for i, row := range res.CrossSection {
			values[i] = row.Values[field]
		}

		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return nil, err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(k)
		bars.Offset = width * vg.Length(k-len(fields)/2)

		p.Add(bars)
		p.Legend.Add(field, bars)
	}

	p.NominalX(cities...)
	return p, nil
}

func (r *ChartRenderer) scatterPanel(res *analytics.Result) (*plot.Plot, error) {
	p := r.newPlot(fmt.Sprintf("%s vs %s, %d", res.RelationNames[0], res.RelationNames[1], res.IndicatorYear))
	p.X.Label.Text = res.RelationNames[0]
	p.Y.Label.Text = res.RelationNames[1]

	pts := make(plotter.XYs, len(res.Relationship))
	labels := make([]string, len(res.Relationship))
	for i, point := range res.Relationship {
		pts[i].X = point.A
		pts[i].Y = point.B
		labels[i] = point.City
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(4)
	scatter.GlyphStyle.Color = plotutil.Color(1)

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
	if err != nil {
		return nil, err
	}

	p.Add(plotter.NewGrid(), scatter, names)
	return p, nil
}

package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metroflow/internal/analytics"
	"metroflow/internal/config"
	apperrors "metroflow/internal/errors"
)

// fakeRenderer records the render call instead of drawing.
type fakeRenderer struct {
	res  *analytics.Result
	path string
	err  error
}

func (f *fakeRenderer) Render(res *analytics.Result, path string) error {
	f.res = res
	f.path = path
	return f.err
}

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func testConfig(t *testing.T, inputDir string) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Input.Dir = inputDir
	cfg.Output.Dir = t.TempDir()
	cfg.Analysis.TopN = 2
	return cfg
}

func seedInput(t *testing.T, dir string) {
	writeFixture(t, dir, "data_flow_2019.csv",
		"year,origin,destination,volume\n2019,广州,深圳,100\n2019,佛山,东莞,40\n")
	writeFixture(t, dir, "data_flow_2023.csv",
		"year,origin,destination,volume\n2023,广州,深圳,200\n2023,佛山,东莞,90\n2023,珠海,澳门,10\n")
	writeFixture(t, dir, "digital_economy_indicators.csv",
		"year,city,GDP_亿元,数字经济核心产业增加值_亿元,专利授权量_件\n"+
			"2019,广州,23628,3500,80000\n"+
			"2023,广州,30355,5900,120000\n"+
			"2023,深圳,34606,9200,190000\n"+
			"2023,佛山,13276,1800,40000\n")
}

func TestPipelineRun(t *testing.T) {
	inputDir := t.TempDir()
	seedInput(t, inputDir)
	cfg := testConfig(t, inputDir)

	renderer := &fakeRenderer{}
	var console bytes.Buffer
	p := New(cfg, nil, renderer, &console)

	res, err := p.Run()
	require.NoError(t, err)
	require.NotNil(t, res)

	// yearly totals aggregate across both flow files
	assert.Equal(t, []analytics.YearTotal{{Year: 2019, Total: 140}, {Year: 2023, Total: 300}}, res.YearlyTotals)
	assert.InDelta(t, (300.0-140.0)/140.0*100, res.GrowthPct, 1e-9)
	assert.Equal(t, 2023, res.LatestYear)

	require.Len(t, res.TopPairs, 2)
	assert.Equal(t, "广州 → 深圳", res.TopPairs[0].Label)

	// fields derived from the indicator categories
	assert.Contains(t, res.CrossFields, "数字经济核心产业增加值_亿元")
	assert.Contains(t, res.CrossFields, "GDP_亿元")

	// renderer received the bundle and target path
	require.NotNil(t, renderer.res)
	assert.Equal(t, filepath.Join(cfg.Output.Dir, "overview.png"), renderer.path)

	// derived tables exported next to the chart
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "yearly_totals.csv"))
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "top_pairs.csv"))
	assert.FileExists(t, filepath.Join(cfg.Output.Dir, "cross_section.csv"))

	// diagnostic narrative on the console
	out := console.String()
	assert.Contains(t, out, "Input profile")
	assert.Contains(t, out, "data-industry")
	assert.Contains(t, out, "Analysis")
}

func TestPipelineEmptyDirectory(t *testing.T) {
	cfg := testConfig(t, t.TempDir())

	p := New(cfg, nil, &fakeRenderer{}, &bytes.Buffer{})
	_, err := p.Run()

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNoInputFiles))

	// no partial output
	entries, readErr := os.ReadDir(cfg.Output.Dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestPipelineMissingIndicatorTable(t *testing.T) {
	inputDir := t.TempDir()
	writeFixture(t, inputDir, "data_flow_2023.csv",
		"year,origin,destination,volume\n2023,广州,深圳,200\n")
	cfg := testConfig(t, inputDir)

	var console bytes.Buffer
	p := New(cfg, nil, &fakeRenderer{}, &console)
	_, err := p.Run()

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingPrimaryTable))
	// profiling still reported before the failure
	assert.Contains(t, console.String(), "none found")
}

func TestPipelineSkipsBrokenFile(t *testing.T) {
	inputDir := t.TempDir()
	seedInput(t, inputDir)
	writeFixture(t, inputDir, "corrupt_flow.xlsx", "not a real workbook")
	cfg := testConfig(t, inputDir)

	var console bytes.Buffer
	p := New(cfg, nil, &fakeRenderer{}, &console)

	res, err := p.Run()
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Contains(t, console.String(), "corrupt_flow.xlsx")
}

func TestPipelineRenderFailureIsTyped(t *testing.T) {
	inputDir := t.TempDir()
	seedInput(t, inputDir)
	cfg := testConfig(t, inputDir)

	renderer := &fakeRenderer{err: apperrors.NewRenderError("boom", nil)}
	p := New(cfg, nil, renderer, &bytes.Buffer{})

	_, err := p.Run()
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRender))
}

func TestPipelineConfiguredCoreCities(t *testing.T) {
	inputDir := t.TempDir()
	seedInput(t, inputDir)
	cfg := testConfig(t, inputDir)
	cfg.Analysis.CoreCities = []string{"广州", "深圳"}

	renderer := &fakeRenderer{}
	p := New(cfg, nil, renderer, &bytes.Buffer{})

	res, err := p.Run()
	require.NoError(t, err)
	require.Len(t, res.CrossSection, 2)
	for _, row := range res.CrossSection {
		assert.Contains(t, []string{"广州", "深圳"}, row.City)
	}
}

func TestPipelineConfiguredSortField(t *testing.T) {
	inputDir := t.TempDir()
	seedInput(t, inputDir)
	cfg := testConfig(t, inputDir)
	cfg.Analysis.CrossFields = []string{"GDP_亿元", "专利授权量_件"}
	cfg.Analysis.SortField = "专利授权量_件"

	renderer := &fakeRenderer{}
	var console bytes.Buffer
	p := New(cfg, nil, renderer, &console)

	res, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, "专利授权量_件", res.SortField)
	assert.Equal(t, "深圳", res.CrossSection[0].City)

	// the narrative names the configured sort key, not the first cross field
	assert.Contains(t, console.String(), "by 专利授权量_件")
	assert.NotContains(t, console.String(), "by GDP_亿元")
}

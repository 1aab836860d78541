package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "metroflow/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.Input.Dir)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "overview.png", cfg.Output.ChartFile)
	assert.Equal(t, 10, cfg.Analysis.TopN)
	assert.Equal(t, 96, cfg.Chart.DPI)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
input:
  dir: /srv/flows
output:
  chart_file: flows.png
analysis:
  top_n: 5
  core_cities: ["广州", "深圳"]
logging:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/flows", cfg.Input.Dir)
	assert.Equal(t, "flows.png", cfg.Output.ChartFile)
	assert.Equal(t, 5, cfg.Analysis.TopN)
	assert.Equal(t, []string{"广州", "深圳"}, cfg.Analysis.CoreCities)
	assert.Equal(t, "json", cfg.Logging.Format)
	// untouched fields keep defaults
	assert.Equal(t, "out", cfg.Output.Dir)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("METROFLOW_ANALYSIS_TOP_N", "3")
	t.Setenv("METROFLOW_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Analysis.TopN)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvBeatsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
analysis:
  top_n: 5
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("METROFLOW_ANALYSIS_TOP_N", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Analysis.TopN)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadValidation(t *testing.T) {
	t.Run("rejects non-positive top_n", func(t *testing.T) {
		t.Setenv("METROFLOW_ANALYSIS_TOP_N", "0")

		_, err := Load("")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	})

	t.Run("rejects unknown log level", func(t *testing.T) {
		t.Setenv("METROFLOW_LOGGING_LEVEL", "loud")

		_, err := Load("")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	})

	t.Run("rejects relation field list of wrong length", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		cfg.Analysis.RelationFields = []string{"only-one"}
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadMissingYAMLFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

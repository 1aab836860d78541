// Package config holds the runtime configuration: defaults, an optional
// YAML overlay, and METROFLOW_* environment overrides, validated before use.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "metroflow/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input    InputConfig    `yaml:"input" envconfig:"INPUT"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Chart    ChartConfig    `yaml:"chart" envconfig:"CHART"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// InputConfig locates the directory of tabular input files
type InputConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR" default:"data" validate:"required"`
}

// OutputConfig locates the chart and CSV export destination
type OutputConfig struct {
	Dir       string `yaml:"dir" envconfig:"DIR" default:"out" validate:"required"`
	ChartFile string `yaml:"chart_file" envconfig:"CHART_FILE" default:"overview.png" validate:"required"`
}

// AnalysisConfig tunes the derived metrics
type AnalysisConfig struct {
	TopN       int      `yaml:"top_n" envconfig:"TOP_N" default:"10" validate:"min=1"`
	CoreCities []string `yaml:"core_cities" envconfig:"CORE_CITIES"`
	// CrossFields, SortField, and RelationFields default to columns picked
	// from the indicator-column categories when left empty.
	CrossFields    []string `yaml:"cross_fields" envconfig:"CROSS_FIELDS"`
	SortField      string   `yaml:"sort_field" envconfig:"SORT_FIELD"`
	RelationFields []string `yaml:"relation_fields" envconfig:"RELATION_FIELDS" validate:"omitempty,len=2"`
}

// ChartConfig holds the immutable rendering options
type ChartConfig struct {
	WidthInches  float64 `yaml:"width_inches" envconfig:"WIDTH_INCHES" default:"16" validate:"gt=0"`
	HeightInches float64 `yaml:"height_inches" envconfig:"HEIGHT_INCHES" default:"12" validate:"gt=0"`
	DPI          int     `yaml:"dpi" envconfig:"DPI" default:"96" validate:"min=36"`
	TitleSize    float64 `yaml:"title_size" envconfig:"TITLE_SIZE" default:"14" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}

// Load builds the configuration: envconfig defaults first, the optional YAML
// file next, METROFLOW_* environment variables last. envconfig re-applies
// default tags on every pass, so it runs exactly once and the YAML values are
// merged in per field afterwards.
func Load(yamlPath string) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("METROFLOW", cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to apply defaults and environment", err)
	}

	if yamlPath != "" {
		fileCfg := &Config{}
		content, err := os.ReadFile(yamlPath)
		if err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read config file %s", yamlPath), err)
		}
		if err := yaml.Unmarshal(content, fileCfg); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to parse config file %s", yamlPath), err)
		}
		mergeFileConfig(cfg, fileCfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFileConfig copies values the YAML file actually set over the defaults,
// skipping fields pinned by a METROFLOW_* environment variable - environment
// takes precedence over the file.
func mergeFileConfig(cfg, file *Config) {
	setString(&cfg.Input.Dir, file.Input.Dir, "METROFLOW_INPUT_DIR")
	setString(&cfg.Output.Dir, file.Output.Dir, "METROFLOW_OUTPUT_DIR")
	setString(&cfg.Output.ChartFile, file.Output.ChartFile, "METROFLOW_OUTPUT_CHART_FILE")
	setInt(&cfg.Analysis.TopN, file.Analysis.TopN, "METROFLOW_ANALYSIS_TOP_N")
	setStrings(&cfg.Analysis.CoreCities, file.Analysis.CoreCities, "METROFLOW_ANALYSIS_CORE_CITIES")
	setStrings(&cfg.Analysis.CrossFields, file.Analysis.CrossFields, "METROFLOW_ANALYSIS_CROSS_FIELDS")
	setString(&cfg.Analysis.SortField, file.Analysis.SortField, "METROFLOW_ANALYSIS_SORT_FIELD")
	setStrings(&cfg.Analysis.RelationFields, file.Analysis.RelationFields, "METROFLOW_ANALYSIS_RELATION_FIELDS")
	setFloat(&cfg.Chart.WidthInches, file.Chart.WidthInches, "METROFLOW_CHART_WIDTH_INCHES")
	setFloat(&cfg.Chart.HeightInches, file.Chart.HeightInches, "METROFLOW_CHART_HEIGHT_INCHES")
	setInt(&cfg.Chart.DPI, file.Chart.DPI, "METROFLOW_CHART_DPI")
	setFloat(&cfg.Chart.TitleSize, file.Chart.TitleSize, "METROFLOW_CHART_TITLE_SIZE")
	setString(&cfg.Logging.Level, file.Logging.Level, "METROFLOW_LOGGING_LEVEL")
	setString(&cfg.Logging.Format, file.Logging.Format, "METROFLOW_LOGGING_FORMAT")
}

func setString(dst *string, v, envKey string) {
	if v != "" && !envSet(envKey) {
		*dst = v
	}
}

func setStrings(dst *[]string, v []string, envKey string) {
	if len(v) > 0 && !envSet(envKey) {
		*dst = v
	}
}

func setInt(dst *int, v int, envKey string) {
	if v != 0 && !envSet(envKey) {
		*dst = v
	}
}

func setFloat(dst *float64, v float64, envKey string) {
	if v != 0 && !envSet(envKey) {
		*dst = v
	}
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError("invalid configuration", err)
	}
	return nil
}

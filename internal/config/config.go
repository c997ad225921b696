package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "keibacli/internal/errors"
	"keibacli/internal/features"
	"keibacli/internal/validation"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console stderr file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	HistoryDB string `yaml:"history_db" envconfig:"HISTORY_DB"`
}

// PipelineConfig is the static configuration of the cleaning and feature stages
type PipelineConfig struct {
	HorseWeightMin float64 `yaml:"horse_weight_min" envconfig:"HORSE_WEIGHT_MIN" validate:"gte=0"`
	HorseWeightMax float64 `yaml:"horse_weight_max" envconfig:"HORSE_WEIGHT_MAX" validate:"gtefield=HorseWeightMin"`
	OddsMin        float64 `yaml:"odds_min" envconfig:"ODDS_MIN" validate:"gte=0"`
	OddsMax        float64 `yaml:"odds_max" envconfig:"ODDS_MAX" validate:"gtefield=OddsMin"`
	DistanceMin    float64 `yaml:"distance_min" envconfig:"DISTANCE_MIN" validate:"gte=0"`
	DistanceMax    float64 `yaml:"distance_max" envconfig:"DISTANCE_MAX" validate:"gtefield=DistanceMin"`

	RankFill    int    `yaml:"rank_fill" envconfig:"RANK_FILL" validate:"min=1,max=99"`
	GroupColumn string `yaml:"group_column" envconfig:"GROUP_COLUMN"`

	MaxConcurrency int           `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY" validate:"min=1,max=64"`
	BatchTimeout   time.Duration `yaml:"batch_timeout" envconfig:"BATCH_TIMEOUT" validate:"gt=0"`
	// Strict rejects a batch whose structural validation fails
	Strict bool `yaml:"strict" envconfig:"STRICT"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout"`
	// MetricsFile, when set, receives the Prometheus text exposition at exit
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, then the YAML file, then
// KEIBA_* environment variables, each overriding the last. An empty path
// looks for KEIBA_CONFIG and the standard locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).WithContext("path", path)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the keys present in a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// findConfigFile returns the first config file found, or ""
func findConfigFile() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	for _, location := range configLocations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Validate checks field ranges and cross-field ordering
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return apperrors.NewConfigError(
				fmt.Sprintf("invalid %s: failed %q check", first.Namespace(), first.Tag()), err).
				WithContext("field", first.Namespace())
		}
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// Rules converts the pipeline configuration to cleaning rules
func (c *Config) Rules() validation.Rules {
	rules := validation.DefaultRules()
	p := c.Pipeline
	rules.Bounds = []validation.Bound{
		{Column: validation.ColHorseWeight, Min: p.HorseWeightMin, Max: p.HorseWeightMax},
		{Column: validation.ColOdds, Min: p.OddsMin, Max: p.OddsMax},
		{Column: validation.ColDistance, Min: p.DistanceMin, Max: p.DistanceMax},
	}
	rules.RankFill = p.RankFill
	rules.GroupColumn = p.GroupColumn
	return rules
}

// Features converts the pipeline configuration to feature engineer settings
func (c *Config) Features() features.Config {
	cfg := features.DefaultConfig()
	cfg.GroupColumn = c.Pipeline.GroupColumn
	return cfg
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   "console",
			FilePath: "logs/keiba.log",
		},
		Paths: PathsConfig{
			DataDir:   DefaultDataDir,
			OutputDir: DefaultOutputDir,
			LogsDir:   DefaultLogsDir,
			HistoryDB: DefaultHistoryDB,
		},
		Pipeline: PipelineConfig{
			HorseWeightMin: 300,
			HorseWeightMax: 700,
			OddsMin:        1.0,
			OddsMax:        999.9,
			DistanceMin:    800,
			DistanceMax:    4000,
			RankFill:       validation.DefaultRankFill,
			GroupColumn:    validation.ColRaceID,
			MaxConcurrency: DefaultMaxConcurrency,
			BatchTimeout:   DefaultBatchTimeout,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   AppName,
			TraceExporter: "none",
		},
	}
}

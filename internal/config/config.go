package config

import (
	"os"
	"strings"

	"gomeasure/domain/validation"
	"gomeasure/internal/errors"
	"gomeasure/internal/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverFile     = "file"
)

var validate = validator.New()

// Config represents the complete application configuration
type Config struct {
	Validation ValidationConfig
	Bootstrap  BootstrapConfig
	Storage    StorageConfig
	Preflight  PreflightConfig
	Logging    LoggingConfig
	Metrics    MetricsConfig
}

// ValidationConfig holds the gate thresholds
type ValidationConfig struct {
	MinF1    float64 `validate:"gte=0,lte=1"`
	MinKappa float64 `validate:"gte=-1,lte=1"`
}

// BootstrapConfig holds confidence-interval settings
type BootstrapConfig struct {
	Resamples  int     `validate:"gte=1"`
	Confidence float64 `validate:"gt=0,lt=1"`
	Seed       int64
	Seeded     bool
	Workers    int `validate:"gte=0"`
}

// StorageConfig selects where validation records are appended
type StorageConfig struct {
	Driver      string `validate:"oneof=postgres sqlite file"`
	DatabaseURL string `validate:"required_unless=Driver file"`
	RecordDir   string `validate:"required_if=Driver file"`
}

// PreflightConfig describes the ground-truth file to audit
type PreflightConfig struct {
	GroundTruthFile   string
	Sheet             string
	MetadataSheet     string
	SampleColumn      string `validate:"required"`
	LabelColumn       string `validate:"required"`
	MeasureMethod     string
	GroundTruthMethod string
	ReportFile        string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `validate:"oneof=DEBUG INFO WARN ERROR"`
	Format string `validate:"oneof=text json"`
}

// MetricsConfig holds prometheus settings
type MetricsConfig struct {
	Enabled   bool
	Namespace string `validate:"required"`
	// Textfile receives the registry in exposition format on shutdown.
	Textfile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Validation: ValidationConfig{
			MinF1:    getEnvFloatOrDefault("MIN_F1", validation.DefaultThresholds.MinF1),
			MinKappa: getEnvFloatOrDefault("MIN_KAPPA", validation.DefaultThresholds.MinKappa),
		},
		Bootstrap: BootstrapConfig{
			Resamples:  getEnvIntOrDefault("BOOTSTRAP_RESAMPLES", metrics.DefaultResamples),
			Confidence: getEnvFloatOrDefault("BOOTSTRAP_CONFIDENCE", metrics.DefaultConfidence),
			Seed:       int64(getEnvIntOrDefault("BOOTSTRAP_SEED", 42)),
			Seeded:     getEnvBoolOrDefault("BOOTSTRAP_SEEDED", true),
			Workers:    getEnvIntOrDefault("BOOTSTRAP_WORKERS", 0),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", DriverFile)),
			DatabaseURL: getEnvOrDefault("DATABASE_URL", ""),
			RecordDir:   getEnvOrDefault("RECORD_DIR", "./validations"),
		},
		Preflight: PreflightConfig{
			GroundTruthFile:   getEnvOrDefault("GROUND_TRUTH_FILE", ""),
			Sheet:             getEnvOrDefault("GROUND_TRUTH_SHEET", "Sheet1"),
			MetadataSheet:     getEnvOrDefault("GROUND_TRUTH_METADATA_SHEET", "metadata"),
			SampleColumn:      getEnvOrDefault("SAMPLE_COLUMN", "text"),
			LabelColumn:       getEnvOrDefault("LABEL_COLUMN", "label"),
			MeasureMethod:     getEnvOrDefault("MEASURE_METHOD", ""),
			GroundTruthMethod: getEnvOrDefault("GROUND_TRUTH_METHOD", ""),
			ReportFile:        getEnvOrDefault("PREFLIGHT_REPORT", ""),
		},
		Logging: LoggingConfig{
			Level:  strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
			Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "text")),
		},
		Metrics: MetricsConfig{
			Enabled:   getEnvBoolOrDefault("METRICS_ENABLED", false),
			Namespace: getEnvOrDefault("METRICS_NAMESPACE", "gomeasure"),
			Textfile:  getEnvOrDefault("METRICS_TEXTFILE", ""),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Validate checks every section against its struct tags
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	return nil
}

// Thresholds returns the gate thresholds
func (c *Config) Thresholds() validation.Thresholds {
	return validation.Thresholds{MinF1: c.Validation.MinF1, MinKappa: c.Validation.MinKappa}
}

// BootstrapSettings converts the bootstrap section for the metrics package
func (c *Config) BootstrapSettings() metrics.BootstrapConfig {
	return metrics.BootstrapConfig{
		Resamples:  c.Bootstrap.Resamples,
		Confidence: c.Bootstrap.Confidence,
		Seed:       c.Bootstrap.Seed,
		Seeded:     c.Bootstrap.Seeded,
		Workers:    c.Bootstrap.Workers,
	}
}

// Helper functions for environment variable parsing. Unparseable values fall
// back to the default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := cast.ToIntE(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := cast.ToFloat64E(value); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := cast.ToBoolE(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

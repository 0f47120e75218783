// Package config provides centralized configuration management.
//
// Configuration is loaded from a YAML pipeline file with ${VAR}
// environment interpolation. Unresolved variables are left literal so a
// missing secret surfaces as an obvious value rather than an empty
// string.
//
// Example usage:
//
//	cfg, err := config.Load("reconflow.yaml")
//	if err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents one reconciliation pipeline configuration.
type Config struct {
	Version       string              `yaml:"version"`
	PipelineName  string              `yaml:"pipeline_name"`
	Source        CSVSource           `yaml:"source"`
	Target        CSVSource           `yaml:"target"`
	Matching      MatchingConfig      `yaml:"matching"`
	Quality       QualityConfig       `yaml:"quality"`
	Output        OutputConfig        `yaml:"output"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// CSVSource configures one tabular data source.
type CSVSource struct {
	Path           string `yaml:"path"`
	DateField      string `yaml:"date_field"`
	ReferenceField string `yaml:"reference_field"`
	AmountField    string `yaml:"amount_field"`
}

// MatchingConfig holds the matching parameters.
type MatchingConfig struct {
	Strategy           string  `yaml:"strategy"`
	AmountToleranceAbs float64 `yaml:"amount_tolerance_abs"`
	NormalizeReference bool    `yaml:"normalize_reference"`
	DecimalPrecision   int     `yaml:"decimal_precision"`
}

// QualityConfig holds data quality thresholds applied before matching.
type QualityConfig struct {
	MinRecordCount  int      `yaml:"min_record_count"`
	MaxDuplicatePct float64  `yaml:"max_duplicate_pct"`
	RequiredFields  []string `yaml:"required_fields"`
	Strict          bool     `yaml:"strict"`
}

// OutputConfig holds output settings.
type OutputConfig struct {
	RunDir string `yaml:"run_dir"`
	Format string `yaml:"format"`
}

// APIConfig holds the report server settings.
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration defaults; Load unmarshals on top of
// them so absent keys keep these values.
func Default() *Config {
	return &Config{
		Version:      "1",
		PipelineName: "default",
		Source: CSVSource{
			DateField:      "date",
			ReferenceField: "reference",
			AmountField:    "amount",
		},
		Target: CSVSource{
			DateField:      "date",
			ReferenceField: "reference",
			AmountField:    "amount",
		},
		Matching: MatchingConfig{
			Strategy:           "exact_reference",
			AmountToleranceAbs: 0.01,
			NormalizeReference: true,
			DecimalPrecision:   2,
		},
		Quality: QualityConfig{
			MinRecordCount:  0,
			MaxDuplicatePct: 0.01,
			RequiredFields:  []string{"date", "reference", "amount"},
		},
		Output: OutputConfig{
			RunDir: ".reconflow/runs",
			Format: "csv",
		},
		API: APIConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateEnv replaces ${VAR} with the environment value, keeping the
// literal ${VAR} when the variable is unset.
func interpolateEnv(data string) string {
	return envVarPattern.ReplaceAllStringFunc(data, func(m string) string {
		name := m[2 : len(m)-1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return m
	})
}

// Load reads and parses a pipeline configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	expanded := interpolateEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration values that are fatal to a run.
// Strategy names are validated against the registry at match time.
func (c *Config) Validate() error {
	if c.PipelineName == "" {
		return fmt.Errorf("pipeline_name must not be empty")
	}
	if c.Source.Path == "" {
		return fmt.Errorf("source.path must not be empty")
	}
	if c.Target.Path == "" {
		return fmt.Errorf("target.path must not be empty")
	}
	if c.Matching.AmountToleranceAbs < 0 {
		return fmt.Errorf("matching.amount_tolerance_abs must not be negative, got %v", c.Matching.AmountToleranceAbs)
	}
	if c.Matching.DecimalPrecision < 0 {
		return fmt.Errorf("matching.decimal_precision must not be negative, got %d", c.Matching.DecimalPrecision)
	}
	if c.Output.RunDir == "" {
		return fmt.Errorf("output.run_dir must not be empty")
	}
	return nil
}

// getEnv returns an environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Package config loads the YAML run configuration of the sarimaxsearch command.
package config

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/sartorproj/gosarimax/gridsearch"
	"github.com/sartorproj/gosarimax/sarimax"
	"github.com/sartorproj/gosarimax/timeseries"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfigYAML parses a Config from YAML bytes, fills in defaults and validates it.
func ParseConfigYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// ParseConfigYAMLString parses a Config from a YAML string.
func ParseConfigYAMLString(yamlText string) (*Config, error) {
	return ParseConfigYAML([]byte(yamlText))
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}
	if cfg.Data.Delimiter == "" {
		cfg.Data.Delimiter = ","
	}
	if cfg.Search.Criterion == "" {
		cfg.Search.Criterion = gridsearch.CriterionAIC
	}
	if cfg.Search.Strategy == "" {
		cfg.Search.Strategy = gridsearch.StrategyGrid
	}
	if cfg.Search.Verbose == nil {
		verbose := true
		cfg.Search.Verbose = &verbose
	}
	if cfg.Forecast.Confidence == 0 {
		cfg.Forecast.Confidence = 0.95
	}
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("invalid log_format: %s (must be json or console)", cfg.LogFormat)
	}

	if cfg.Data.Path == "" {
		return fmt.Errorf("data.path is required")
	}
	if cfg.Data.TargetColumn == "" {
		return fmt.Errorf("data.target_column is required")
	}
	if utf8.RuneCountInString(cfg.Data.Delimiter) != 1 {
		return fmt.Errorf("data.delimiter must be a single character, got %q", cfg.Data.Delimiter)
	}
	seen := map[string]bool{cfg.Data.TargetColumn: true}
	for _, name := range cfg.Data.ExogColumns {
		if name == "" {
			return fmt.Errorf("data.exog_columns: column name cannot be empty")
		}
		if seen[name] {
			return fmt.Errorf("data.exog_columns: duplicate column %s", name)
		}
		seen[name] = true
	}

	if cfg.Search.Seasonal != nil && cfg.Search.SeasonalOrder != nil {
		return fmt.Errorf("search.seasonal and search.seasonal_order are mutually exclusive")
	}
	if err := cfg.GridConfig().Validate(); err != nil {
		return fmt.Errorf("search validation failed: %w", err)
	}

	if cfg.Forecast.Horizon < 0 {
		return fmt.Errorf("forecast.horizon cannot be negative")
	}
	if cfg.Forecast.Confidence <= 0 || cfg.Forecast.Confidence >= 1 {
		return fmt.Errorf("forecast.confidence must be between 0 and 1, got %v", cfg.Forecast.Confidence)
	}
	if cfg.Forecast.Horizon > 0 && len(cfg.Data.ExogColumns) > 0 && !cfg.Forecast.Holdout {
		return fmt.Errorf("forecast.holdout is required to forecast with exog_columns")
	}

	return nil
}

// GridConfig converts the search section into a gridsearch configuration. Output, Fitter
// and Logger are left for the caller.
func (c *Config) GridConfig() *gridsearch.Config {
	gc := &gridsearch.Config{
		P:         c.Search.P,
		D:         c.Search.D,
		Q:         c.Search.Q,
		Criterion: c.Search.Criterion,
		Strategy:  c.Search.Strategy,
		Verbose:   c.Search.Verbose == nil || *c.Search.Verbose,
	}
	if s := c.Search.Seasonal; s != nil {
		gc.SeasonalSearch = true
		gc.SP, gc.SD, gc.SQ, gc.S = s.P, s.D, s.Q, s.S
	}
	if so := c.Search.SeasonalOrder; so != nil {
		gc.SeasonalOrder = &sarimax.SeasonalOrder{P: so.P, D: so.D, Q: so.Q, S: so.S}
	}
	return gc
}

// TableOptions converts the data section into CSV loading options.
func (c *Config) TableOptions() *timeseries.TableOptions {
	delim, _ := utf8.DecodeRuneInString(c.Data.Delimiter)
	return &timeseries.TableOptions{
		DateColumn:   c.Data.DateColumn,
		TargetColumn: c.Data.TargetColumn,
		ExogColumns:  c.Data.ExogColumns,
		DateFormat:   c.Data.DateFormat,
		Delimiter:    delim,
	}
}

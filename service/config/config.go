package config

import (
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"

	sm "github.com/labib-r/portfolio-risk/service/models"
)

// Config represents the application configuration.
type Config struct {
	Analysis     AnalysisConfig     `toml:"analysis"`
	Loader       LoaderConfig       `toml:"loader"`
	Server       ServerConfig       `toml:"server"`
	Storage      StorageConfig      `toml:"storage"`
	AlphaVantage AlphaVantageConfig `toml:"alpha_vantage"`
	Logging      LoggingConfig      `toml:"logging"`
}

// AnalysisConfig controls annualization, weight normalization and size bounds.
type AnalysisConfig struct {
	Frequency       string  `toml:"frequency"`
	WeightTolerance float64 `toml:"weight_tolerance"`
	MinObservations int     `toml:"min_observations"`
	MaxObservations int     `toml:"max_observations"`
	MaxAssets       int     `toml:"max_assets"`
}

// LoaderConfig describes the delimited price file.
type LoaderConfig struct {
	Path      string `toml:"path"`
	Delimiter string `toml:"delimiter"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// StorageConfig contains the run history database settings. An empty url disables history.
type StorageConfig struct {
	DatabaseURL string `toml:"database_url"`
}

// AlphaVantageConfig contains price fetcher settings.
type AlphaVantageConfig struct {
	APIKey         string `toml:"api_key"`
	Series         string `toml:"series"`
	Concurrency    int    `toml:"concurrency"`
	Lookback       int    `toml:"lookback"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies DATABASE_URL, ALPHAVANTAGE_API_KEY and PORTFOLIO_RISK_* overrides.
func applyEnvOverrides(config *Config) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.Storage.DatabaseURL = url
	}
	if key := os.Getenv("ALPHAVANTAGE_API_KEY"); key != "" {
		config.AlphaVantage.APIKey = key
	}
	if frequency := os.Getenv("PORTFOLIO_RISK_FREQUENCY"); frequency != "" {
		config.Analysis.Frequency = frequency
	}
	if delimiter := os.Getenv("PORTFOLIO_RISK_DELIMITER"); delimiter != "" {
		config.Loader.Delimiter = delimiter
	}
	if port := os.Getenv("PORTFOLIO_RISK_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("PORTFOLIO_RISK_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if level := os.Getenv("PORTFOLIO_RISK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("PORTFOLIO_RISK_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	if _, err := sm.ParseFrequency(c.Analysis.Frequency); err != nil {
		return fmt.Errorf("analysis.frequency: %w", err)
	}
	if c.Analysis.WeightTolerance < 0 {
		return fmt.Errorf("analysis.weight_tolerance must not be negative, got %v", c.Analysis.WeightTolerance)
	}
	if c.Analysis.MinObservations < 3 {
		return fmt.Errorf("analysis.min_observations must be at least 3, got %d", c.Analysis.MinObservations)
	}
	if c.Analysis.MaxObservations < 0 || c.Analysis.MaxAssets < 0 {
		return fmt.Errorf("analysis bounds must not be negative")
	}
	if c.Analysis.MaxObservations > 0 && c.Analysis.MaxObservations < c.Analysis.MinObservations {
		return fmt.Errorf("analysis.max_observations (%d) is below min_observations (%d)", c.Analysis.MaxObservations, c.Analysis.MinObservations)
	}
	if utf8.RuneCountInString(c.Loader.Delimiter) != 1 {
		return fmt.Errorf("loader.delimiter must be a single character, got %q", c.Loader.Delimiter)
	}
	if c.AlphaVantage.Concurrency < 1 {
		return fmt.Errorf("alpha_vantage.concurrency must be at least 1, got %d", c.AlphaVantage.Concurrency)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// Settings converts the analysis section into the settings a run consumes.
func (c *Config) Settings() sm.AnalysisSettings {
	factor, _ := sm.ParseFrequency(c.Analysis.Frequency)
	return sm.AnalysisSettings{
		AnnualizationFactor: factor,
		WeightTolerance:     c.Analysis.WeightTolerance,
		MinObservations:     c.Analysis.MinObservations,
		MaxObservations:     c.Analysis.MaxObservations,
		MaxAssets:           c.Analysis.MaxAssets,
	}
}

// Delimiter is the loader delimiter as a rune.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.Loader.Delimiter)
	return r
}

// Addr is the listen address of the http server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, frequency, logLevel string) {
	if frequency != "" {
		config.Analysis.Frequency = frequency
	}
	if logLevel != "" {
		config.Logging.Level = logLevel
	}
}

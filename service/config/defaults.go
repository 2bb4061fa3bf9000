package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Frequency:       "daily",
			WeightTolerance: 0.0001,
			MinObservations: 3,
		},
		Loader: LoaderConfig{
			Path:      "prices.csv",
			Delimiter: ",",
		},
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		AlphaVantage: AlphaVantageConfig{
			Series:         "daily",
			Concurrency:    2,
			Lookback:       253,
			TimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

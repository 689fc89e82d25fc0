package config

// Config is the run configuration of the sarimaxsearch command.
type Config struct {
	LogLevel  string `yaml:"log_level"`  // debug, info, warn or error
	LogFormat string `yaml:"log_format"` // json or console

	Data     DataConfig     `yaml:"data"`
	Search   SearchConfig   `yaml:"search"`
	Forecast ForecastConfig `yaml:"forecast"`

	// Report is the path of the JSON report. Empty disables it.
	Report string `yaml:"report"`
}

// DataConfig locates the input table and its columns.
type DataConfig struct {
	Path         string   `yaml:"path"` // CSV file, optionally gzipped
	DateColumn   string   `yaml:"date_column"`
	TargetColumn string   `yaml:"target_column"`
	ExogColumns  []string `yaml:"exog_columns"`
	DateFormat   string   `yaml:"date_format"`
	Delimiter    string   `yaml:"delimiter"` // Single character, default ","
}

// SearchConfig holds the candidate lists.
type SearchConfig struct {
	P []int `yaml:"p"`
	D []int `yaml:"d"`
	Q []int `yaml:"q"`

	// Seasonal enables the seasonal search over its lists.
	Seasonal *SeasonalSearch `yaml:"seasonal"`
	// SeasonalOrder is a fixed (P, D, Q, s) applied to every candidate.
	SeasonalOrder *SeasonalOrder `yaml:"seasonal_order"`

	Criterion string `yaml:"criterion"` // aic, aicc or bic
	Strategy  string `yaml:"strategy"`  // grid or stepwise
	Verbose   *bool  `yaml:"verbose"`   // Default true
}

// SeasonalSearch lists the seasonal candidate values.
type SeasonalSearch struct {
	P []int `yaml:"p"`
	D []int `yaml:"d"`
	Q []int `yaml:"q"`
	S []int `yaml:"s"`
}

// SeasonalOrder is one seasonal order.
type SeasonalOrder struct {
	P int `yaml:"p"`
	D int `yaml:"d"`
	Q int `yaml:"q"`
	S int `yaml:"s"`
}

// ForecastConfig controls the forecast made with the selected model.
type ForecastConfig struct {
	// Horizon is the number of steps to forecast. Zero disables forecasting.
	Horizon int `yaml:"horizon"`
	// Holdout keeps the last Horizon rows out of the search and scores the forecast
	// against them. Required when the model has regressors, whose future values are
	// taken from the held-out rows.
	Holdout    bool    `yaml:"holdout"`
	Confidence float64 `yaml:"confidence"` // Interval level, default 0.95
	// Output is an optional CSV path for the point forecasts.
	Output string `yaml:"output"`
}

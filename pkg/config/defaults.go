package config

// Default values for configuration fields.
const (
	// Dataset defaults
	DefaultDataDir    = "data"
	DefaultAllowWrite = true
	DefaultHashsize   = 4096

	// Telemetry defaults
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultMetricsEnabled = true

	// maxHashsize bounds the hash table size hint to something that still
	// fits a uint32 after rounding.
	maxHashsize = 1 << 28
)

// ApplyDefaults fills in default values for any unset configuration fields.
// It modifies the configuration in place.
func ApplyDefaults(cfg *Config) {
	if cfg.Datasets.DataDir == "" {
		cfg.Datasets.DataDir = DefaultDataDir
	}
	if cfg.Datasets.Rules.AllowWrite == nil {
		v := DefaultAllowWrite
		cfg.Datasets.Rules.AllowWrite = &v
	}
	if cfg.Telemetry.LogLevel == "" {
		cfg.Telemetry.LogLevel = DefaultLogLevel
	}
	if cfg.Telemetry.LogFormat == "" {
		cfg.Telemetry.LogFormat = DefaultLogFormat
	}
	if cfg.Telemetry.MetricsEnabled == nil {
		v := DefaultMetricsEnabled
		cfg.Telemetry.MetricsEnabled = &v
	}
}

// NewDefault returns a configuration populated entirely with default values.
func NewDefault() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

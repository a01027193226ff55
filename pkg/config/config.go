package config

import "github.com/dustin/go-humanize"

// Config is the root configuration structure for the Veles detection engine.
type Config struct {
	// RuleDirs is the list of directories searched when a relative rule or
	// dataset path cannot be resolved against the loading rule file.
	RuleDirs []string `yaml:"rule_dirs"`

	// Datasets contains configuration for named dataset handling: the data
	// directory, write policies for rule-declared datasets, memory defaults,
	// and persistence scheduling.
	Datasets DatasetsConfig `yaml:"datasets"`

	// Telemetry contains observability settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// DatasetsConfig contains configuration for named datasets.
type DatasetsConfig struct {
	// DataDir is the directory where rule-declared dataset save files are
	// written. Relative save paths are joined against this directory.
	// Default: "data"
	DataDir string `yaml:"data_dir"`

	// DefaultMemcap is the per-dataset memory cap applied when a rule does
	// not set one. Accepts size strings such as "64mb" or plain byte counts.
	// Empty or "0" means unlimited.
	DefaultMemcap string `yaml:"default_memcap"`

	// DefaultHashsize is the per-dataset hash table size hint applied when a
	// rule does not set one. Accepts size strings. Default: "4096"
	DefaultHashsize string `yaml:"default_hashsize"`

	// SaveSchedule is an optional cron expression for periodic persistence
	// of datasets that carry a save path (e.g. "*/5 * * * *"). Empty
	// disables scheduled saves; datasets are still saved at shutdown.
	SaveSchedule string `yaml:"save_schedule"`

	// Watch enables hot reload of dataset load files when they change on
	// disk. Default: false
	Watch bool `yaml:"watch"`

	// Rules contains policies for datasets declared by rules.
	Rules DatasetRulesConfig `yaml:"rules"`
}

// DatasetRulesConfig contains security policies for rule-declared datasets.
type DatasetRulesConfig struct {
	// AllowWrite permits rules to declare datasets with 'save' or 'state'
	// options. When false, such rules are rejected at load time.
	// Default: true
	AllowWrite *bool `yaml:"allow_write"`

	// AllowAbsoluteFilenames permits rules to use absolute paths in 'save'
	// or 'state' options. Directory traversal is rejected regardless of
	// this setting. Default: false
	AllowAbsoluteFilenames bool `yaml:"allow_absolute_filenames"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	// LogLevel is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat is the log output format ("json", "text"). Default: "text"
	LogFormat string `yaml:"log_format"`

	// MetricsEnabled registers Prometheus collectors for dataset operations.
	// Default: true
	MetricsEnabled *bool `yaml:"metrics_enabled"`
}

// AllowWrite reports whether rules may declare save/state datasets.
func (c *DatasetsConfig) AllowWrite() bool {
	if c.Rules.AllowWrite == nil {
		return DefaultAllowWrite
	}
	return *c.Rules.AllowWrite
}

// AllowAbsoluteFilenames reports whether rules may use absolute dataset
// save paths.
func (c *DatasetsConfig) AllowAbsoluteFilenames() bool {
	return c.Rules.AllowAbsoluteFilenames
}

// DefaultMemcapBytes returns the configured default memcap in bytes.
// An unset or unparseable value returns 0 (unlimited); parse errors are
// reported by Validate, not here.
func (c *DatasetsConfig) DefaultMemcapBytes() uint64 {
	if c.DefaultMemcap == "" {
		return 0
	}
	n, err := humanize.ParseBytes(c.DefaultMemcap)
	if err != nil {
		return 0
	}
	return n
}

// DefaultHashsizeValue returns the configured default hash table size hint.
func (c *DatasetsConfig) DefaultHashsizeValue() uint32 {
	if c.DefaultHashsize == "" {
		return DefaultHashsize
	}
	n, err := humanize.ParseBytes(c.DefaultHashsize)
	if err != nil || n > maxHashsize {
		return DefaultHashsize
	}
	return uint32(n)
}

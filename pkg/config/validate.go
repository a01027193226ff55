package config

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "datasets.default_memcap").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All errors are collected and returned
// together.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.Datasets.DataDir == "" {
		errs = append(errs, FieldError{
			Field:   "datasets.data_dir",
			Message: "must not be empty",
		})
	}

	if cfg.Datasets.DefaultMemcap != "" {
		if _, err := humanize.ParseBytes(cfg.Datasets.DefaultMemcap); err != nil {
			errs = append(errs, FieldError{
				Field:   "datasets.default_memcap",
				Message: fmt.Sprintf("invalid size string %q", cfg.Datasets.DefaultMemcap),
			})
		}
	}

	if cfg.Datasets.DefaultHashsize != "" {
		n, err := humanize.ParseBytes(cfg.Datasets.DefaultHashsize)
		if err != nil {
			errs = append(errs, FieldError{
				Field:   "datasets.default_hashsize",
				Message: fmt.Sprintf("invalid size string %q", cfg.Datasets.DefaultHashsize),
			})
		} else if n > maxHashsize {
			errs = append(errs, FieldError{
				Field:   "datasets.default_hashsize",
				Message: fmt.Sprintf("exceeds maximum %d", maxHashsize),
			})
		}
	}

	if cfg.Datasets.SaveSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Datasets.SaveSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "datasets.save_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Datasets.SaveSchedule, err),
			})
		}
	}

	switch cfg.Telemetry.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.log_level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error (got %q)", cfg.Telemetry.LogLevel),
		})
	}

	switch cfg.Telemetry.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.log_format",
			Message: fmt.Sprintf("must be one of json, text (got %q)", cfg.Telemetry.LogFormat),
		})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

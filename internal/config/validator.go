package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // The config field path (e.g., "thresholds.stop_block_limit")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all
// validation errors found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Paths.BaseDir == "" {
		errs = append(errs, ValidationError{
			Field:   "paths.base_dir",
			Value:   c.Paths.BaseDir,
			Message: "must not be empty",
		})
	}
	if c.Paths.ScratchDir == "" {
		errs = append(errs, ValidationError{
			Field:   "paths.scratch_dir",
			Value:   c.Paths.ScratchDir,
			Message: "must not be empty",
		})
	}

	positive := []struct {
		field string
		value int
	}{
		{"thresholds.stop_block_limit", c.Thresholds.StopBlockLimit},
		{"thresholds.stale_limit", c.Thresholds.StaleLimit},
		{"thresholds.deny_limit", c.Thresholds.DenyLimit},
		{"thresholds.completion_limit", c.Thresholds.CompletionLimit},
		{"validator.timeout_seconds", c.Validator.TimeoutSeconds},
		{"statusline.cache_ttl_seconds", c.Statusline.CacheTTLSeconds},
		{"cleanup.max_age_hours", c.Cleanup.MaxAgeHours},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, ValidationError{
				Field:   p.field,
				Value:   p.value,
				Message: "must be positive",
			})
		}
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if c.Logging.MaxSizeMB < 1 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be at least 1",
		})
	}
	if c.Logging.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must not be negative",
		})
	}

	return errs
}

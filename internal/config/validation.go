package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every section and returns ValidationErrors when any fail.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if err := c.KeyBindings().Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "bindings", Message: err.Error()})
	}

	if c.Display.IntervalMs < 1 || c.Display.IntervalMs > 1000 {
		errs = append(errs, ValidationError{
			Field:   "display.interval_ms",
			Message: fmt.Sprintf("must be between 1 and 1000, got %d", c.Display.IntervalMs),
		})
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level),
		})
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format: %s (valid: text, json)", c.Logging.Format),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

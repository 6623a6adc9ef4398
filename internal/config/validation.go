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

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
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
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for valid values. Schema and sample
// paths are checked by the commands that need them, since either may arrive
// via flags instead of the config file.
func (c *Config) Validate() error {
	var errors ValidationErrors

	if err := c.validateRun(); err != nil {
		errors = append(errors, err...)
	}

	if err := c.validateValidation(); err != nil {
		errors = append(errors, err...)
	}

	if err := c.validateLogging(); err != nil {
		errors = append(errors, err...)
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateRun() ValidationErrors {
	var errors ValidationErrors

	if c.Run.Iterations < 0 {
		errors = append(errors, ValidationError{
			Field:   "run.iterations",
			Message: "iterations cannot be negative",
		})
	}

	if c.Run.GenerationWeight < 0 || c.Run.GenerationWeight > 1 {
		errors = append(errors, ValidationError{
			Field:   "run.generation_weight",
			Message: "generation_weight must be between 0 and 1",
		})
	}

	if c.Run.ViolationProbability < 0 || c.Run.ViolationProbability > 1 {
		errors = append(errors, ValidationError{
			Field:   "run.violation_probability",
			Message: "violation_probability must be between 0 and 1",
		})
	}

	if c.Run.Workers < 1 {
		errors = append(errors, ValidationError{
			Field:   "run.workers",
			Message: "workers must be at least 1",
		})
	}

	if c.Run.QueueSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "run.queue_size",
			Message: "queue_size must be at least 1",
		})
	}

	return errors
}

func (c *Config) validateValidation() ValidationErrors {
	var errors ValidationErrors

	validModes := map[string]bool{"strict": true, "warn": true, "": true}
	if !validModes[c.Validation.Mode] {
		errors = append(errors, ValidationError{
			Field:   "validation.mode",
			Message: "mode must be 'strict' or 'warn'",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}

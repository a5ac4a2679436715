package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConfigValidator provides a fluent interface for validating
// configuration values. It collects all validation errors rather than
// failing on the first one.
type ConfigValidator struct {
	errors []error
	name   string // config struct name for error messages
}

// NewConfigValidator creates a new config validator with the given config name.
func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{
		name:   configName,
		errors: make([]error, 0),
	}
}

// Required validates that a string field is not empty.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: required field is empty", cv.name, field))
	}
	return cv
}

// RangeInt validates that an int field is within the specified range.
func (cv *ConfigValidator) RangeInt(field string, value, min, max int) *ConfigValidator {
	if value < min || value > max {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: value %d is outside range [%d, %d]", cv.name, field, value, min, max))
	}
	return cv
}

// Positive validates that an int field is positive (> 0).
func (cv *ConfigValidator) Positive(field string, value int) *ConfigValidator {
	if value <= 0 {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: value %d must be positive", cv.name, field, value))
	}
	return cv
}

// MinDuration validates that a duration is at least the minimum.
func (cv *ConfigValidator) MinDuration(field string, value, min time.Duration) *ConfigValidator {
	if value < min {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: duration %v is below minimum %v", cv.name, field, value, min))
	}
	return cv
}

// OneOf validates that a string field takes one of the allowed values.
func (cv *ConfigValidator) OneOf(field, value string, allowed ...string) *ConfigValidator {
	for _, a := range allowed {
		if value == a {
			return cv
		}
	}
	cv.errors = append(cv.errors, fmt.Errorf("%s.%s: value %q must be one of [%s]", cv.name, field, value, strings.Join(allowed, ", ")))
	return cv
}

// Err returns the collected validation errors joined together, or nil
// if every check passed.
func (cv *ConfigValidator) Err() error {
	if len(cv.errors) == 0 {
		return nil
	}
	return errors.Join(cv.errors...)
}

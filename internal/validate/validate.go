// Package validate checks raw questionnaire input. It performs no I/O.
package validate

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rmacdonaldsmith/planflow-go/pkg/plan"
)

// FormErrorMessage is set on every failing ValidationResult.
const FormErrorMessage = "Please fix the highlighted fields."

var (
	// ErrInvalidAgeRange is returned when MinAge exceeds MaxAge
	ErrInvalidAgeRange = errors.New("min age cannot exceed max age")
	// ErrInvalidConcernRange is returned when the concern length bounds are inverted or negative
	ErrInvalidConcernRange = errors.New("concern length bounds are invalid")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Config holds the inclusive bounds applied by the Validator.
type Config struct {
	MinAge        float64
	MaxAge        float64
	MinConcernLen int
	MaxConcernLen int
}

// DefaultConfig returns the bounds used by the questionnaire.
func DefaultConfig() Config {
	return Config{
		MinAge:        0,
		MaxAge:        60,
		MinConcernLen: 3,
		MaxConcernLen: 200,
	}
}

// Validate checks the bounds themselves.
func (c Config) Validate() error {
	if c.MinAge > c.MaxAge || math.IsNaN(c.MinAge) || math.IsNaN(c.MaxAge) {
		return ErrInvalidAgeRange
	}
	if c.MinConcernLen < 0 || c.MinConcernLen > c.MaxConcernLen {
		return ErrInvalidConcernRange
	}
	return nil
}

// Validator is a pure function over Input with fixed bounds.
type Validator struct {
	config Config
}

// New creates a Validator.
func New(config Config) (*Validator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid validator config: %w", err)
	}
	return &Validator{config: config}, nil
}

// Config returns the bounds in use.
func (v *Validator) Config() Config {
	return v.config
}

// Validate returns one message per invalid field.
func (v *Validator) Validate(in plan.Input) plan.ValidationResult {
	_, result := v.Payload(in)
	return result
}

// Payload validates in and, when it passes, builds the request payload.
// The payload is the zero value when the result is not OK.
func (v *Validator) Payload(in plan.Input) (plan.Payload, plan.ValidationResult) {
	fieldErrors := make(map[plan.Field]string)

	age, msg := v.checkAge(in.Age)
	if msg != "" {
		fieldErrors[plan.FieldAge] = msg
	}

	concern := strings.TrimSpace(in.Concern)
	if msg := v.checkConcern(concern); msg != "" {
		fieldErrors[plan.FieldConcern] = msg
	}

	email := strings.TrimSpace(in.Email)
	if email != "" && !emailPattern.MatchString(email) {
		fieldErrors[plan.FieldEmail] = "Enter a valid email address, like name@example.com."
	}

	if len(fieldErrors) > 0 {
		return plan.Payload{}, plan.ValidationResult{
			OK:          false,
			FormError:   FormErrorMessage,
			FieldErrors: fieldErrors,
		}
	}

	return plan.Payload{AgeMonths: age, Concern: concern, Email: email},
		plan.ValidationResult{OK: true}
}

func (v *Validator) checkAge(raw string) (float64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "Age is required."
	}
	age, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(age) || math.IsInf(age, 0) {
		return 0, "Age must be a number."
	}
	if age < v.config.MinAge || age > v.config.MaxAge {
		return 0, fmt.Sprintf("Age must be between %s and %s months.", formatBound(v.config.MinAge), formatBound(v.config.MaxAge))
	}
	return age, ""
}

func (v *Validator) checkConcern(concern string) string {
	if concern == "" {
		return "Tell us what you need help with."
	}
	n := utf8.RuneCountInString(concern)
	if n < v.config.MinConcernLen || n > v.config.MaxConcernLen {
		return fmt.Sprintf("Concern must be between %d and %d characters.", v.config.MinConcernLen, v.config.MaxConcernLen)
	}
	return ""
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

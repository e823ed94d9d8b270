package pay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned by the strict calculation path.
var ErrInvalidInput = errors.New("invalid pay input")

// Problem is one rejected field.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in a PayInput.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.Field + ": " + p.Message
	}
	return fmt.Sprintf("invalid pay input: %s", strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Validate checks the input without computing anything. Under the
// inclusive twins convention the weekend portion may not exceed the total.
func (c *Calculator) Validate(in PayInput) error {
	var problems []Problem
	if !in.BaseRate.IsPositive() {
		problems = append(problems, Problem{Field: "base_rate", Message: "must be greater than zero"})
	}
	for _, cat := range Categories {
		if in.Get(cat).IsNegative() {
			problems = append(problems, Problem{Field: string(cat) + "_hours", Message: "must not be negative"})
		}
	}
	if c.Convention == TwinsInclusive && in.TwinsWeekendHours.GreaterThan(in.TwinsHours) {
		problems = append(problems, Problem{
			Field:   "twins_weekend_hours",
			Message: "exceeds twins_hours under the inclusive convention",
		})
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Validate checks in against the default calculator.
func Validate(in PayInput) error {
	return defaultCalculator.Validate(in)
}

// mustNotBeNegative reports a problem for a negative table entry.
func mustNotBeNegative(field string, d decimal.Decimal) *Problem {
	if d.IsNegative() {
		return &Problem{Field: field, Message: "must not be negative"}
	}
	return nil
}

// ValidateTables rejects negative differentials or deductions.
func ValidateTables(r RateTable, d DeductionTable) error {
	var problems []Problem
	checks := []struct {
		field string
		value decimal.Decimal
	}{
		{"weekend_differential", r.WeekendDifferential},
		{"holiday_differential", r.HolidayDifferential},
		{"twins_differential", r.TwinsDifferential},
		{"insurance", d.Insurance},
		{"background_check", d.BackgroundCheck},
	}
	for _, c := range checks {
		if p := mustNotBeNegative(c.field, c.value); p != nil {
			problems = append(problems, *p)
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

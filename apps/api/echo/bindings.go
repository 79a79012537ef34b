package echoapi

import (
	"time"

	"github.com/trezcool/internat/core"
)

const dayLayout = "2006-01-02"

// parseDay parses a "YYYY-MM-DD" request value. An empty value yields the zero
// time so callers can apply their own default day.
func parseDay(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	day, err := time.Parse(dayLayout, value)
	if err != nil {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: field, Error: "invalid date, expected YYYY-MM-DD"})
	}
	return day, nil
}

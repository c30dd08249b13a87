package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/daytrack/internal/constants"
	"github.com/julianstephens/daytrack/internal/models"
)

// Error is returned for input rejected before it reaches storage.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func invalid(field, format string, args ...interface{}) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ActivityCode normalizes code and checks it against the legend. An empty
// code is valid and clears the hour.
func ActivityCode(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "", nil
	}
	if utf8.RuneCountInString(code) > constants.MaxActivityCodeLen {
		return "", invalid("code", "please enter only one or two characters")
	}
	if !models.IsLegendCode(code) {
		return "", invalid("code", "invalid activity code, use codes from the legend")
	}
	return code, nil
}

func Hour(hour int) error {
	if hour < 0 || hour >= constants.HoursPerDay {
		return invalid("hour", "hour must be between 0 and %d, got %d", constants.HoursPerDay-1, hour)
	}
	return nil
}

// TaskText returns text with surrounding whitespace removed.
func TaskText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", invalid("text", "task text cannot be empty")
	}
	return text, nil
}

// HabitName returns name with surrounding whitespace removed.
func HabitName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "habit name cannot be empty")
	}
	return name, nil
}

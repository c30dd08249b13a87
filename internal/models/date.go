package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/daytrack/internal/constants"
)

// Date is a calendar day with no time of day and no location.
// The zero value is not a valid date; use IsZero to check.
type Date struct {
	t time.Time
}

// NewDate builds a Date, normalising out-of-range values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate accepts the storage key form (DD-MM-YYYY) or ISO (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{constants.DateKeyFormat, constants.DateFormat} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q (expected DD-MM-YYYY or YYYY-MM-DD)", s)
}

// ParseDateKey parses a value read back from storage.
func ParseDateKey(key string) (Date, error) {
	t, err := time.Parse(constants.DateKeyFormat, key)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return DateOf(t), nil
}

// Key is the DD-MM-YYYY text stored in every date column.
func (d Date) Key() string {
	return d.t.Format(constants.DateKeyFormat)
}

// ISO returns the YYYY-MM-DD form.
func (d Date) ISO() string {
	return d.t.Format(constants.DateFormat)
}

func (d Date) String() string {
	return d.Key()
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

func (d Date) Weekday() time.Weekday {
	return d.t.Weekday()
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return d.t
}

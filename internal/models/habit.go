package models

import (
	"strings"
	"time"
	"unicode"
)

// LegacyHabitTablePrefix names the per-habit tables of older databases.
const LegacyHabitTablePrefix = "habit_"

// Habit represents a named daily practice to track
type Habit struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// HabitStatus is the completion flag of one habit on one day
type HabitStatus struct {
	HabitName string `json:"habit_name"`
	Date      Date   `json:"date"`
	Completed bool   `json:"completed"`
}

// SanitizeHabitName strips every character that is not a letter, digit or
// underscore. Older databases addressed habit tables by this form; distinct
// names can sanitize to the same value.
func SanitizeHabitName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' || (r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LegacyHabitTable returns the table an older database used for name.
func LegacyHabitTable(name string) string {
	return LegacyHabitTablePrefix + SanitizeHabitName(name)
}

package models

import "strings"

// Activity is the code recorded for one hour of one day.
// An empty Code means the hour was cleared.
type Activity struct {
	Date Date   `json:"date"`
	Hour int    `json:"hour"`
	Code string `json:"code"`
}

type legendEntry struct {
	Code  string
	Label string
}

// legend is the closed set of activity codes, in display order.
var legend = []legendEntry{
	{"1", "sleep"},
	{"2", "neutral"},
	{"3", "productive"},
	{"4", "waste"},
	{"5", "exercise"},
	{"6", "university"},
	{"7", "social"},
	{"8", "reading"},
	{"9", "study"},
	{"10", "transit"},
	{"11", "work"},
}

// LegendCodes returns the activity codes in display order.
func LegendCodes() []string {
	codes := make([]string, len(legend))
	for i, e := range legend {
		codes[i] = e.Code
	}
	return codes
}

// LegendName returns the lower-case name of a code ("3" -> "productive").
func LegendName(code string) (string, bool) {
	for _, e := range legend {
		if e.Code == code {
			return e.Label, true
		}
	}
	return "", false
}

// LegendLabel returns the capitalised category label used in stats ("3" -> "Productive").
func LegendLabel(code string) (string, bool) {
	name, ok := LegendName(code)
	if !ok {
		return "", false
	}
	return strings.ToUpper(name[:1]) + name[1:], true
}

// IsLegendCode reports whether code belongs to the legend.
func IsLegendCode(code string) bool {
	_, ok := LegendName(code)
	return ok
}

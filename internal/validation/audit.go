package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/julianstephens/daytrack/internal/models"
	"github.com/julianstephens/daytrack/internal/storage"
)

// ConflictType represents the kind of problem found in stored data
type ConflictType string

const (
	ConflictUnknownActivityCode ConflictType = "unknown_activity_code"
	ConflictHourOutOfRange      ConflictType = "hour_out_of_range"
	ConflictBlankTask           ConflictType = "blank_task"
	ConflictUnregisteredHabit   ConflictType = "unregistered_habit"
	ConflictMalformedDate       ConflictType = "malformed_date"
)

// Conflict is a stored record that the boundary checks would have rejected
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string // DD-MM-YYYY, when the record has one
	Items       []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// Count returns how many conflicts of type t were found.
func (vr *ValidationResult) Count(t ConflictType) int {
	n := 0
	for _, c := range vr.Conflicts {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Validator audits records that were written without boundary checks, for
// example by an older version or by hand.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) ValidateActivities(activities []models.Activity) ValidationResult {
	var result ValidationResult
	for _, a := range activities {
		if Hour(a.Hour) != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictHourOutOfRange,
				Description: fmt.Sprintf("Activity on %s has hour %d outside 0-23", a.Date, a.Hour),
				Date:        a.Date.Key(),
				Items:       []string{strconv.Itoa(a.Hour)},
			})
		}
		if a.Code != "" && !models.IsLegendCode(a.Code) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictUnknownActivityCode,
				Description: fmt.Sprintf("Activity on %s at hour %d has unknown code %q", a.Date, a.Hour, a.Code),
				Date:        a.Date.Key(),
				Items:       []string{a.Code},
			})
		}
	}
	return result
}

func (v *Validator) ValidateTasks(tasks []models.Task) ValidationResult {
	var result ValidationResult
	for _, t := range tasks {
		if strings.TrimSpace(t.Text) == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictBlankTask,
				Description: fmt.Sprintf("Task %d on %s has no text", t.ID, t.Date),
				Date:        t.Date.Key(),
				Items:       []string{strconv.FormatInt(t.ID, 10)},
			})
		}
	}
	return result
}

// ValidateHabitStatuses reports statuses whose habit is missing from the
// registry. One conflict is produced per habit name.
func (v *Validator) ValidateHabitStatuses(habits []models.Habit, statuses []models.HabitStatus) ValidationResult {
	known := make(map[string]bool, len(habits))
	for _, h := range habits {
		known[h.Name] = true
	}

	orphans := make(map[string]int)
	for _, st := range statuses {
		if !known[st.HabitName] {
			orphans[st.HabitName]++
		}
	}

	names := make([]string, 0, len(orphans))
	for name := range orphans {
		names = append(names, name)
	}
	sort.Strings(names)

	var result ValidationResult
	for _, name := range names {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictUnregisteredHabit,
			Description: fmt.Sprintf("Habit %q has %d status records but is not registered", name, orphans[name]),
			Items:       []string{name},
		})
	}
	return result
}

// ValidateDateKeys reports stored date keys that are not DD-MM-YYYY. The
// bulk readers skip such rows, so this is the only place they surface.
func (v *Validator) ValidateDateKeys(keys []storage.DateKeyCount) ValidationResult {
	var result ValidationResult
	for _, k := range keys {
		if k.Valid() {
			continue
		}
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictMalformedDate,
			Description: fmt.Sprintf("%d row(s) in %s have malformed date %q", k.Rows, k.Table, k.Key),
			Items:       []string{k.Table, k.Key},
		})
	}
	return result
}

// Audit runs every check over the full contents of p.
func (v *Validator) Audit(p storage.Provider) (ValidationResult, error) {
	var result ValidationResult

	keys, err := p.ListDateKeys()
	if err != nil {
		return result, fmt.Errorf("failed to read date keys: %w", err)
	}
	activities, err := p.GetAllActivities()
	if err != nil {
		return result, fmt.Errorf("failed to read activities: %w", err)
	}
	tasks, err := p.GetAllTasks()
	if err != nil {
		return result, fmt.Errorf("failed to read tasks: %w", err)
	}
	habits, err := p.GetAllHabits()
	if err != nil {
		return result, fmt.Errorf("failed to read habits: %w", err)
	}
	statuses, err := p.GetAllHabitStatuses()
	if err != nil {
		return result, fmt.Errorf("failed to read habit statuses: %w", err)
	}

	for _, part := range []ValidationResult{
		v.ValidateDateKeys(keys),
		v.ValidateActivities(activities),
		v.ValidateTasks(tasks),
		v.ValidateHabitStatuses(habits, statuses),
	} {
		result.Conflicts = append(result.Conflicts, part.Conflicts...)
	}
	return result, nil
}

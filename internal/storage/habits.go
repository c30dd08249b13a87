package storage

import (
	"fmt"

	"github.com/julianstephens/daytrack/internal/logger"
	"github.com/julianstephens/daytrack/internal/models"
)

// LoadHabits returns the known habit names. When none are known yet the
// defaults are provisioned and returned instead.
func LoadHabits(p Provider, defaults []string) ([]string, error) {
	names, err := p.ListHabitNames()
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	if len(names) > 0 {
		return names, nil
	}

	logger.Info("No habits known, provisioning defaults", "count", len(defaults))
	for _, name := range defaults {
		if err := p.EnsureHabit(name); err != nil {
			return nil, fmt.Errorf("failed to provision habit %q: %w", name, err)
		}
	}
	return append([]string(nil), defaults...), nil
}

// EnsureInitializedForDate writes completed=false for every habit in names
// that has no status on date yet. Existing statuses are left untouched.
//
// Each write is its own transaction; a failure part way leaves the earlier
// habits initialized.
func EnsureInitializedForDate(p Provider, names []string, date models.Date) error {
	for _, name := range names {
		_, found, err := p.GetHabitStatus(name, date)
		if err != nil {
			return fmt.Errorf("failed to read status of %q on %s: %w", name, date, err)
		}
		if found {
			continue
		}
		if err := p.SetHabitStatus(name, date, false); err != nil {
			return fmt.Errorf("failed to initialize %q on %s: %w", name, date, err)
		}
	}
	return nil
}

// HabitDay pairs a habit with its status on one day.
type HabitDay struct {
	Name      string
	Completed bool
}

// HabitsForDate loads (or provisions) the habits, materializes their status
// for date and returns them in the order ListHabitNames produced.
func HabitsForDate(p Provider, defaults []string, date models.Date) ([]HabitDay, error) {
	names, err := LoadHabits(p, defaults)
	if err != nil {
		return nil, err
	}
	if err := EnsureInitializedForDate(p, names, date); err != nil {
		return nil, err
	}

	days := make([]HabitDay, 0, len(names))
	for _, name := range names {
		completed, _, err := p.GetHabitStatus(name, date)
		if err != nil {
			return nil, err
		}
		days = append(days, HabitDay{Name: name, Completed: completed})
	}
	return days, nil
}

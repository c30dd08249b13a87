package storage

import (
	"errors"

	"github.com/julianstephens/daytrack/internal/models"
)

var (
	// ErrNotFound is returned by point reads whose target does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMalformedDate marks a stored date key that is not DD-MM-YYYY.
	ErrMalformedDate = errors.New("malformed date key")
)

// Provider is the persistence contract shared by every backend.
//
// Mutating calls each run in their own transaction and either commit fully
// or roll back and return the error. Updates and deletes addressed to a
// missing id are no-ops, not errors.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Activities
	SetActivity(date models.Date, hour int, code string) error
	// GetActivity reports found=false when the hour was never written.
	GetActivity(date models.Date, hour int) (code string, found bool, err error)
	// ListActivities returns every row for date ordered by numeric hour.
	ListActivities(date models.Date) ([]models.Activity, error)
	// ListActivitiesBetween returns the rows dated start..end inclusive.
	// Callers must not rely on order.
	ListActivitiesBetween(start, end models.Date) ([]models.Activity, error)

	// Habits
	EnsureHabit(name string) error
	// ListHabitNames returns the known habits. Callers must not rely on order.
	ListHabitNames() ([]string, error)
	GetAllHabits() ([]models.Habit, error)
	SetHabitStatus(name string, date models.Date, completed bool) error
	GetHabitStatus(name string, date models.Date) (completed bool, found bool, err error)
	// CountCompletedHabits counts known habits marked completed on date.
	CountCompletedHabits(date models.Date) (int, error)
	// ListHabitStatusesBetween returns the statuses dated start..end inclusive.
	ListHabitStatusesBetween(start, end models.Date) ([]models.HabitStatus, error)

	// Tasks
	AddTask(date models.Date, text string, completed bool) (int64, error)
	GetTask(id int64) (models.Task, error)
	ListTasks(date models.Date) ([]models.Task, error)
	SetTaskCompleted(id int64, completed bool) error
	SetTaskText(id int64, text string) error
	DeleteTask(id int64) error
	TaskStats(date models.Date) (completed int, total int, err error)

	// Bulk Retrieval for Migration. Rows with a malformed date key are
	// skipped with a warning; ListDateKeys reports them.
	GetAllActivities() ([]models.Activity, error)
	GetAllHabitStatuses() ([]models.HabitStatus, error)
	GetAllTasks() ([]models.Task, error)
	// ImportTask stores a task keeping its creation time.
	ImportTask(task models.Task) error

	// ListDateKeys counts the rows of every distinct stored date key per
	// table, malformed keys included.
	ListDateKeys() ([]DateKeyCount, error)

	// Utils
	GetConfigPath() string
}

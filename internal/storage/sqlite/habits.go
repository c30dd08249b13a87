package sqlite

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/julianstephens/daytrack/internal/logger"
	"github.com/julianstephens/daytrack/internal/models"
	"github.com/julianstephens/daytrack/internal/storage"
)

const insertHabit = `
	INSERT INTO habits (id, name, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT(name) DO NOTHING`

func (s *Store) EnsureHabit(name string) error {
	return s.withTx("add habit", func(tx *sql.Tx) error {
		_, err := tx.Exec(insertHabit, uuid.New().String(), name, storage.FormatTimestamp(s.now()))
		return err
	})
}

func (s *Store) ListHabitNames() ([]string, error) {
	habits, err := s.GetAllHabits()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(habits))
	for i, h := range habits {
		names[i] = h.Name
	}
	return names, nil
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}
	rows, err := s.db.Query(`SELECT id, name, created_at FROM habits ORDER BY created_at, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		var h models.Habit
		var createdAt storage.Timestamp
		if err := rows.Scan(&h.ID, &h.Name, &createdAt); err != nil {
			return nil, err
		}
		h.CreatedAt = createdAt.Time
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// SetHabitStatus upserts the status and registers the habit if it is new.
func (s *Store) SetHabitStatus(name string, date models.Date, completed bool) error {
	return s.withTx("save habit status", func(tx *sql.Tx) error {
		if _, err := tx.Exec(insertHabit, uuid.New().String(), name, storage.FormatTimestamp(s.now())); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO habit_status (habit_name, date, completed)
			VALUES (?, ?, ?)
			ON CONFLICT(habit_name, date) DO UPDATE SET
				completed = excluded.completed`,
			name, date.Key(), completed)
		return err
	})
}

func (s *Store) GetHabitStatus(name string, date models.Date) (bool, bool, error) {
	if s.db == nil {
		return false, false, errNotLoaded
	}
	var completed bool
	err := s.db.QueryRow(`
		SELECT completed FROM habit_status WHERE habit_name = ? AND date = ?`,
		name, date.Key()).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return completed, true, nil
}

func (s *Store) CountCompletedHabits(date models.Date) (int, error) {
	if s.db == nil {
		return 0, errNotLoaded
	}
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM habit_status hs
		JOIN habits h ON h.name = hs.habit_name
		WHERE hs.date = ? AND hs.completed = 1`, date.Key()).Scan(&count)
	return count, err
}

func (s *Store) ListHabitStatusesBetween(start, end models.Date) ([]models.HabitStatus, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}
	keys := storage.KeysBetween(start, end)
	if len(keys) == 0 {
		return nil, nil
	}
	in, args := inClause(keys)
	return s.queryHabitStatuses(`
		SELECT habit_name, date, completed FROM habit_status
		WHERE date IN (`+in+`)`, args...)
}

func (s *Store) GetAllHabitStatuses() ([]models.HabitStatus, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}
	return s.queryHabitStatuses(`SELECT habit_name, date, completed FROM habit_status ORDER BY habit_name, date`)
}

func (s *Store) queryHabitStatuses(query string, args ...any) ([]models.HabitStatus, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []models.HabitStatus
	for rows.Next() {
		var st models.HabitStatus
		var dateKey string
		if err := rows.Scan(&st.HabitName, &dateKey, &st.Completed); err != nil {
			return nil, err
		}
		if st.Date, err = storage.ParseKey(dateKey); err != nil {
			logger.Warn("Skipping habit status with malformed date", "habit", st.HabitName, "date", dateKey)
			continue
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	pq "github.com/lib/pq"

	"github.com/julianstephens/daytrack/internal/logger"
	"github.com/julianstephens/daytrack/internal/models"
	"github.com/julianstephens/daytrack/internal/storage"
)

func (s *Store) SetActivity(date models.Date, hour int, code string) error {
	return s.withTx("save activity", func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO activities (date, hour, activity)
			VALUES ($1, $2, $3)
			ON CONFLICT (date, hour) DO UPDATE SET
				activity = EXCLUDED.activity`,
			date.Key(), strconv.Itoa(hour), code)
		return err
	})
}

func (s *Store) GetActivity(date models.Date, hour int) (string, bool, error) {
	if s.db == nil {
		return "", false, errNotLoaded
	}
	var code string
	err := s.db.QueryRow(`SELECT activity FROM activities WHERE date = $1 AND hour = $2`,
		date.Key(), strconv.Itoa(hour)).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

func (s *Store) ListActivities(date models.Date) ([]models.Activity, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}
	return s.queryActivities(`
		SELECT date, hour, activity FROM activities
		WHERE date = $1
		ORDER BY CAST(hour AS INTEGER)`, date.Key())
}

// ListActivitiesBetween matches the exact keys of the window, so rows with
// malformed dates never take part.
func (s *Store) ListActivitiesBetween(start, end models.Date) ([]models.Activity, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}
	keys := storage.KeysBetween(start, end)
	if len(keys) == 0 {
		return nil, nil
	}
	return s.queryActivities(`
		SELECT date, hour, activity FROM activities
		WHERE date = ANY($1)`, pq.Array(keys))
}

func (s *Store) GetAllActivities() ([]models.Activity, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}
	return s.queryActivities(`
		SELECT date, hour, activity FROM activities
		ORDER BY date, CAST(hour AS INTEGER)`)
}

func (s *Store) queryActivities(query string, args ...any) ([]models.Activity, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var dateKey, hourText, code string
		if err := rows.Scan(&dateKey, &hourText, &code); err != nil {
			return nil, err
		}
		date, err := storage.ParseKey(dateKey)
		if err != nil {
			logger.Warn("Skipping activity with malformed date", "date", dateKey, "hour", hourText)
			continue
		}
		hour, err := strconv.Atoi(hourText)
		if err != nil {
			return nil, fmt.Errorf("invalid hour %q on %s: %w", hourText, dateKey, err)
		}
		activities = append(activities, models.Activity{Date: date, Hour: hour, Code: code})
	}
	return activities, rows.Err()
}

const insertHabit = `
	INSERT INTO habits (id, name, created_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (name) DO NOTHING`

func (s *Store) EnsureHabit(name string) error {
	return s.withTx("add habit", func(tx *sql.Tx) error {
		_, err := tx.Exec(insertHabit, uuid.New().String(), name, s.now().UTC())
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
		if err := rows.Scan(&h.ID, &h.Name, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.CreatedAt = h.CreatedAt.UTC()
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) SetHabitStatus(name string, date models.Date, completed bool) error {
	return s.withTx("save habit status", func(tx *sql.Tx) error {
		if _, err := tx.Exec(insertHabit, uuid.New().String(), name, s.now().UTC()); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO habit_status (habit_name, date, completed)
			VALUES ($1, $2, $3)
			ON CONFLICT (habit_name, date) DO UPDATE SET
				completed = EXCLUDED.completed`,
			name, date.Key(), completed)
		return err
	})
}

func (s *Store) GetHabitStatus(name string, date models.Date) (bool, bool, error) {
	if s.db == nil {
		return false, false, errNotLoaded
	}
	var completed bool
	err := s.db.QueryRow(`SELECT completed FROM habit_status WHERE habit_name = $1 AND date = $2`,
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
		WHERE hs.date = $1 AND hs.completed`, date.Key()).Scan(&count)
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
	return s.queryHabitStatuses(`
		SELECT habit_name, date, completed FROM habit_status
		WHERE date = ANY($1)`, pq.Array(keys))
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

func (s *Store) ListDateKeys() ([]storage.DateKeyCount, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}
	return storage.QueryDateKeys(s.db)
}

const taskColumns = `id, date, task, completed, created_at`

func (s *Store) AddTask(date models.Date, text string, completed bool) (int64, error) {
	var id int64
	err := s.withTx("add task", func(tx *sql.Tx) error {
		return tx.QueryRow(`
			INSERT INTO todo (date, task, completed, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			date.Key(), text, completed, s.now().UTC()).Scan(&id)
	})
	return id, err
}

func (s *Store) ImportTask(task models.Task) error {
	createdAt := task.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	return s.withTx("import task", func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO todo (id, date, task, completed, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				date = EXCLUDED.date,
				task = EXCLUDED.task,
				completed = EXCLUDED.completed,
				created_at = EXCLUDED.created_at`,
			task.ID, task.Date.Key(), task.Text, task.Completed, createdAt.UTC())
		if err != nil {
			return err
		}
		// Explicit ids bypass the sequence; move it past them.
		_, err = tx.Exec(`SELECT setval(pg_get_serial_sequence('todo', 'id'), (SELECT MAX(id) FROM todo))`)
		return err
	})
}

func (s *Store) GetTask(id int64) (models.Task, error) {
	if s.db == nil {
		return models.Task{}, errNotLoaded
	}
	task, err := scanTask(s.db.QueryRow(`SELECT `+taskColumns+` FROM todo WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %d: %w", id, storage.ErrNotFound)
	}
	return task, err
}

func (s *Store) ListTasks(date models.Date) ([]models.Task, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}
	return s.queryTasks(`SELECT `+taskColumns+` FROM todo WHERE date = $1 ORDER BY created_at, id`, date.Key())
}

func (s *Store) GetAllTasks() ([]models.Task, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}
	return s.queryTasks(`SELECT ` + taskColumns + ` FROM todo ORDER BY id`)
}

func (s *Store) SetTaskCompleted(id int64, completed bool) error {
	return s.withTx("update task status", func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE todo SET completed = $1 WHERE id = $2`, completed, id)
		return err
	})
}

func (s *Store) SetTaskText(id int64, text string) error {
	return s.withTx("update task text", func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE todo SET task = $1 WHERE id = $2`, text, id)
		return err
	})
}

func (s *Store) DeleteTask(id int64) error {
	return s.withTx("delete task", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM todo WHERE id = $1`, id)
		return err
	})
}

func (s *Store) TaskStats(date models.Date) (int, int, error) {
	if s.db == nil {
		return 0, 0, errNotLoaded
	}
	var completed, total int
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0), COUNT(*)
		FROM todo WHERE date = $1`, date.Key()).Scan(&completed, &total)
	return completed, total, err
}

func (s *Store) queryTasks(query string, args ...any) ([]models.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if errors.Is(err, storage.ErrMalformedDate) {
			logger.Warn("Skipping task with malformed date", "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func scanTask(row interface{ Scan(dest ...any) error }) (models.Task, error) {
	var t models.Task
	var dateKey string
	var createdAt storage.Timestamp
	if err := row.Scan(&t.ID, &dateKey, &t.Text, &t.Completed, &createdAt); err != nil {
		return models.Task{}, err
	}
	date, err := storage.ParseKey(dateKey)
	if err != nil {
		return models.Task{}, fmt.Errorf("task %d: %w", t.ID, err)
	}
	t.Date = date
	t.CreatedAt = createdAt.Time.UTC()
	return t, nil
}

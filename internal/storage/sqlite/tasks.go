package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/daytrack/internal/logger"
	"github.com/julianstephens/daytrack/internal/models"
	"github.com/julianstephens/daytrack/internal/storage"
)

const taskColumns = `id, date, task, completed, created_at`

func (s *Store) AddTask(date models.Date, text string, completed bool) (int64, error) {
	var id int64
	err := s.withTx("add task", func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO todo (date, task, completed, created_at)
			VALUES (?, ?, ?, ?)`,
			date.Key(), text, completed, storage.FormatTimestamp(s.now()))
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
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
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				date = excluded.date,
				task = excluded.task,
				completed = excluded.completed,
				created_at = excluded.created_at`,
			task.ID, task.Date.Key(), task.Text, task.Completed, storage.FormatTimestamp(createdAt))
		return err
	})
}

func (s *Store) GetTask(id int64) (models.Task, error) {
	if s.db == nil {
		return models.Task{}, errNotLoaded
	}
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM todo WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %d: %w", id, storage.ErrNotFound)
	}
	return task, err
}

func (s *Store) ListTasks(date models.Date) ([]models.Task, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}
	return s.queryTasks(`SELECT `+taskColumns+` FROM todo WHERE date = ? ORDER BY created_at, id`, date.Key())
}

func (s *Store) GetAllTasks() ([]models.Task, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}
	return s.queryTasks(`SELECT ` + taskColumns + ` FROM todo ORDER BY id`)
}

func (s *Store) SetTaskCompleted(id int64, completed bool) error {
	return s.withTx("update task status", func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE todo SET completed = ? WHERE id = ?`, completed, id)
		return err
	})
}

func (s *Store) SetTaskText(id int64, text string) error {
	return s.withTx("update task text", func(tx *sql.Tx) error {
		_, err := tx.Exec(`UPDATE todo SET task = ? WHERE id = ?`, text, id)
		return err
	})
}

func (s *Store) DeleteTask(id int64) error {
	return s.withTx("delete task", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM todo WHERE id = ?`, id)
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
		FROM todo WHERE date = ?`, date.Key()).Scan(&completed, &total)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
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
	t.CreatedAt = createdAt.Time
	return t, nil
}

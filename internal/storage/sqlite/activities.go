package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/daytrack/internal/logger"
	"github.com/julianstephens/daytrack/internal/models"
	"github.com/julianstephens/daytrack/internal/storage"
)

func (s *Store) SetActivity(date models.Date, hour int, code string) error {
	return s.withTx("save activity", func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO activities (date, hour, activity)
			VALUES (?, ?, ?)
			ON CONFLICT(date, hour) DO UPDATE SET
				activity = excluded.activity`,
			date.Key(), strconv.Itoa(hour), code)
		return err
	})
}

func (s *Store) GetActivity(date models.Date, hour int) (string, bool, error) {
	if s.db == nil {
		return "", false, errNotLoaded
	}
	var code string
	err := s.db.QueryRow(`
		SELECT activity FROM activities WHERE date = ? AND hour = ?`,
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
	rows, err := s.db.Query(`
		SELECT hour, activity FROM activities
		WHERE date = ?
		ORDER BY CAST(hour AS INTEGER)`, date.Key())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var hourText, code string
		if err := rows.Scan(&hourText, &code); err != nil {
			return nil, err
		}
		hour, err := strconv.Atoi(hourText)
		if err != nil {
			return nil, fmt.Errorf("invalid hour %q on %s: %w", hourText, date, err)
		}
		activities = append(activities, models.Activity{Date: date, Hour: hour, Code: code})
	}
	return activities, rows.Err()
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
	in, args := inClause(keys)
	return s.queryActivities(`
		SELECT date, hour, activity FROM activities
		WHERE date IN (`+in+`)`, args...)
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

// inClause expands keys into a placeholder list and its arguments.
func inClause(keys []string) (string, []any) {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(keys)), ","), args
}

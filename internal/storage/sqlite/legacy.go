package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/daytrack/internal/logger"
	"github.com/julianstephens/daytrack/internal/models"
	"github.com/julianstephens/daytrack/internal/storage"
)

// legacyStatusTable holds the per-habit table of a habit named "status",
// whose legacy name collides with the normalised habit_status table.
const legacyStatusTable = "legacy_habit_status"

const createHabitStatus = `
	CREATE TABLE IF NOT EXISTS habit_status (
		habit_name TEXT NOT NULL,
		date TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT 0,
		PRIMARY KEY (habit_name, date)
	);
	CREATE INDEX IF NOT EXISTS idx_habit_status_date ON habit_status(date);`

type legacyTable struct {
	table string
	habit string
}

// isLegacyHabitTable reports whether table has the (date, completed) shape
// of the per-habit layout and none of the normalised columns.
func (s *Store) isLegacyHabitTable(table string) (bool, error) {
	for _, col := range []string{"date", "completed"} {
		ok, err := s.columnExists(table, col)
		if err != nil || !ok {
			return false, err
		}
	}
	normalised, err := s.columnExists(table, "habit_name")
	if err != nil {
		return false, err
	}
	return !normalised, nil
}

// moveLegacyStatusTable renames a per-habit habit_status table out of the
// way so the normalised table can take its name. It runs before migrations.
func (s *Store) moveLegacyStatusTable() error {
	exists, err := s.tableExists("habit_status")
	if err != nil || !exists {
		return err
	}
	legacy, err := s.isLegacyHabitTable("habit_status")
	if err != nil || !legacy {
		return err
	}
	taken, err := s.tableExists(legacyStatusTable)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("cannot move legacy habit_status table: %s already exists", legacyStatusTable)
	}

	logger.Info("Moving legacy habit table", "from", "habit_status", "to", legacyStatusTable)
	return s.withTx("move legacy habit_status", func(tx *sql.Tx) error {
		// The index follows the renamed table and would shadow the new one.
		if _, err := tx.Exec(`DROP INDEX IF EXISTS idx_habit_status_date`); err != nil {
			return err
		}
		if _, err := tx.Exec(`ALTER TABLE habit_status RENAME TO ` + legacyStatusTable); err != nil {
			return err
		}
		// Databases already at the latest version will not rerun the migration.
		_, err := tx.Exec(createHabitStatus)
		return err
	})
}

// legacyHabitTables lists per-habit tables whose name is the one an older
// database would have used for the habit it encodes.
func (s *Store) legacyHabitTables() ([]legacyTable, error) {
	rows, err := s.db.Query(`
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND (name LIKE 'habit\_%' ESCAPE '\' OR name = ?)
		ORDER BY name`, legacyStatusTable)
	if err != nil {
		return nil, err
	}
	var candidates []legacyTable
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		habit := strings.TrimPrefix(name, models.LegacyHabitTablePrefix)
		if name == legacyStatusTable {
			habit = "status"
		}
		candidates = append(candidates, legacyTable{table: name, habit: habit})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var tables []legacyTable
	for _, c := range candidates {
		if c.habit == "" || models.LegacyHabitTable(c.habit) != models.LegacyHabitTablePrefix+c.habit {
			continue
		}
		ok, err := s.isLegacyHabitTable(c.table)
		if err != nil {
			return nil, err
		}
		if ok {
			tables = append(tables, c)
		}
	}
	return tables, nil
}

// importLegacyHabits copies every legacy per-habit table into habit_status.
// Rows already present in habit_status win; legacy tables are left in place.
func (s *Store) importLegacyHabits() error {
	tables, err := s.legacyHabitTables()
	if err != nil {
		return err
	}

	for _, lt := range tables {
		err := s.withTx("import "+lt.table, func(tx *sql.Tx) error {
			if _, err := tx.Exec(insertHabit, uuid.New().String(), lt.habit, storage.FormatTimestamp(s.now())); err != nil {
				return err
			}
			_, err := tx.Exec(`
				INSERT OR IGNORE INTO habit_status (habit_name, date, completed)
				SELECT ?, date, COALESCE(completed, 0) FROM `+quoteIdent(lt.table), lt.habit)
			return err
		})
		if err != nil {
			return err
		}
		logger.Debug("Imported legacy habit table", "table", lt.table, "habit", lt.habit)
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

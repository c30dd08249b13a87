package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/daytrack/internal/logger"
	"github.com/julianstephens/daytrack/internal/migration"
	"github.com/julianstephens/daytrack/internal/storage"
	"github.com/julianstephens/daytrack/migrations"
)

var _ storage.Provider = (*Store)(nil)

var errNotLoaded = errors.New("storage not loaded")

type Store struct {
	path string
	db   *sql.DB
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
		now:  time.Now,
	}
}

// Init creates the database file if needed and brings the schema up to date.
func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		db, err := sql.Open("sqlite", s.path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		s.db = db
	}

	return s.EnsureSchema(nil)
}

// Open connects to an existing database file without touching the schema.
func (s *Store) Open() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'daytrack init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

// Load opens an existing database and applies any pending schema changes.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if err := s.Open(); err != nil {
		return err
	}
	if err := s.validateSchemaVersion(); err != nil {
		return err
	}
	return s.EnsureSchema(nil)
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// EnsureSchema is idempotent. It moves a legacy habit_status table aside,
// applies pending migrations, adds the todo.created_at column to databases
// that predate it and imports legacy per-habit tables. logFn receives migration progress; nil sends it to the
// debug log.
func (s *Store) EnsureSchema(logFn func(string)) error {
	if s.db == nil {
		return errNotLoaded
	}
	if logFn == nil {
		logFn = func(msg string) { logger.Debug(msg) }
	}

	if err := s.moveLegacyStatusTable(); err != nil {
		return err
	}
	if _, err := s.newRunner().ApplyMigrations(logFn); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := s.ensureTodoCreatedAt(); err != nil {
		return err
	}
	if err := s.importLegacyHabits(); err != nil {
		return fmt.Errorf("failed to import legacy habits: %w", err)
	}
	return nil
}

func (s *Store) ensureTodoCreatedAt() error {
	exists, err := s.columnExists("todo", "created_at")
	if err != nil {
		return fmt.Errorf("failed to inspect todo table: %w", err)
	}
	if exists {
		return nil
	}

	logger.Info("Adding created_at column to todo table")
	return s.withTx("add todo.created_at", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`ALTER TABLE todo ADD COLUMN created_at TIMESTAMP`); err != nil {
			return err
		}
		_, err := tx.Exec(`UPDATE todo SET created_at = ? WHERE created_at IS NULL`,
			storage.FormatTimestamp(s.now()))
		return err
	})
}

func (s *Store) newRunner() *migration.Runner {
	// The sub-directory is embedded at build time, so Sub cannot fail.
	subFS, _ := fs.Sub(migrations.FS, "sqlite")
	return migration.NewRunner(s.db, subFS, migration.DialectSQLite)
}

func (s *Store) validateSchemaVersion() error {
	return s.newRunner().ValidateVersion()
}

// SchemaVersion returns the applied and the newest known schema versions.
func (s *Store) SchemaVersion() (current, latest int, err error) {
	if s.db == nil {
		return 0, 0, errNotLoaded
	}
	runner := s.newRunner()
	if current, err = runner.GetCurrentVersion(); err != nil {
		return 0, 0, err
	}
	latest, err = runner.GetLatestVersion()
	return current, latest, err
}

// PendingMigrations counts the embedded migrations not yet applied.
func (s *Store) PendingMigrations() (int, error) {
	if s.db == nil {
		return 0, errNotLoaded
	}
	return s.newRunner().Pending()
}

// withTx runs fn in a transaction, rolling back and wrapping the error on
// failure.
func (s *Store) withTx(op string, fn func(tx *sql.Tx) error) error {
	if s.db == nil {
		return errNotLoaded
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin %s: %w", op, err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Warn("Rollback failed", "op", op, "error", rbErr)
		}
		logger.Debug("Transaction rolled back", "op", op, "error", err)
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", op, err)
	}
	return nil
}

// tableExists checks if a table exists in the SQLite database.
// The check is case-insensitive to match SQLite's behavior.
func (s *Store) tableExists(tableName string) (bool, error) {
	if s.db == nil {
		return false, errNotLoaded
	}
	var count int
	row := s.db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name COLLATE NOCASE = ?", tableName)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) columnExists(table, column string) (bool, error) {
	if s.db == nil {
		return false, errNotLoaded
	}
	var count int
	row := s.db.QueryRow("SELECT count(*) FROM pragma_table_info(?) WHERE name = ?", table, column)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// IntegrityCheck runs PRAGMA integrity_check and returns its first line.
func (s *Store) IntegrityCheck() (string, error) {
	if s.db == nil {
		return "", errNotLoaded
	}
	var result string
	if err := s.db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return "", err
	}
	return result, nil
}

func (s *Store) ListDateKeys() ([]storage.DateKeyCount, error) {
	if s.db == nil {
		return nil, errNotLoaded
	}
	return storage.QueryDateKeys(s.db)
}

func (s *Store) GetConfigPath() string {
	return s.path
}

package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/daytrack/internal/constants"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "daytrack.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE todo (id INTEGER PRIMARY KEY, date TEXT, task TEXT, completed BOOLEAN)`,
		`INSERT INTO todo (date, task, completed) VALUES ('05-03-2024', 'first', 0)`,
		`INSERT INTO todo (date, task, completed) VALUES ('05-03-2024', 'second', 1)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to prepare test database: %v", err)
		}
	}
	return dbPath
}

// newTestManager returns a manager whose clock advances one minute per backup.
func newTestManager(dbPath string) *Manager {
	mgr := NewManager(dbPath)
	ts := time.Date(2024, 3, 5, 8, 0, 0, 0, time.Local)
	mgr.now = func() time.Time {
		ts = ts.Add(time.Minute)
		return ts
	}
	return mgr
}

func countTodos(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM todo").Scan(&count); err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return count
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if filepath.Dir(backupPath) != mgr.Dir() {
		t.Errorf("backup written to %s, want %s", filepath.Dir(backupPath), mgr.Dir())
	}
	if got := filepath.Base(backupPath); got != "daytrack-20240305-080100.db" {
		t.Errorf("backup name = %s", got)
	}
	if n := countTodos(t, backupPath); n != 2 {
		t.Errorf("expected 2 rows in backup, got %d", n)
	}
}

func TestCreateMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "absent.db"))
	if _, err := mgr.Create(); err == nil {
		t.Error("Create() expected error for missing database")
	}
}

func TestCreateSameSecondAddsCounter(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2024, 3, 5, 8, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	first, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	second, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if filepath.Base(second) != "daytrack-20240305-080000-1.db" {
		t.Errorf("second backup = %s", filepath.Base(second))
	}

	backups, _ := mgr.List()
	if len(backups) != 2 || backups[0].Path != second || backups[1].Path != first {
		t.Errorf("List() = %+v, want counter backup first", backups)
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)

	for i := 0; i < constants.MaxBackups+5; i++ {
		if _, err := mgr.Create(); err != nil {
			t.Fatalf("Create() #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Errorf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups are not sorted newest first at %d", i)
		}
	}
}

func TestList(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)

	backups, err := mgr.List()
	if err != nil || len(backups) != 0 {
		t.Fatalf("List() before any backup = %v, %v", backups, err)
	}

	for i := 0; i < 3; i++ {
		if _, err := mgr.Create(); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}
	// Unrelated files are ignored.
	_ = os.WriteFile(filepath.Join(mgr.Dir(), "notes.txt"), []byte("x"), 0600)
	_ = os.WriteFile(filepath.Join(mgr.Dir(), "daytrack-garbage.db"), []byte("x"), 0600)

	backups, err = mgr.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	for _, b := range backups {
		if b.Size == 0 || b.Timestamp.IsZero() {
			t.Errorf("incomplete backup info: %+v", b)
		}
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name    string
		ok      bool
		wantSeq int
	}{
		{"daytrack-20240305-080000.db", true, 0},
		{"daytrack-20240305-080000-7.db", true, 7},
		{"daytrack-20240305-0800.db", false, 0},
		{"daytrack-20240305-080000x.db", false, 0},
		{"other-20240305-080000.db", false, 0},
		{"daytrack-20240305-080000.sqlite", false, 0},
	}
	for _, tt := range tests {
		_, seq, ok := parseName(tt.name)
		if ok != tt.ok || seq != tt.wantSeq {
			t.Errorf("parseName(%q) = seq %d, ok %v; want %d, %v", tt.name, seq, ok, tt.wantSeq, tt.ok)
		}
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)

	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec("DELETE FROM todo"); err != nil {
		t.Fatalf("failed to modify database: %v", err)
	}
	db.Close()

	saved, err := mgr.Restore(backupPath)
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if n := countTodos(t, dbPath); n != 2 {
		t.Errorf("expected 2 rows after restore, got %d", n)
	}
	if saved == "" {
		t.Fatal("Restore() did not save the current database")
	}
	if n := countTodos(t, saved); n != 0 {
		t.Errorf("pre-restore backup has %d rows, want 0", n)
	}
}

func TestRestoreInvalidBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)

	if _, err := mgr.Restore(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("Restore() expected error for missing file")
	}

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("not a database at all, just some text padding it out"), 0600); err != nil {
		t.Fatalf("failed to write bogus file: %v", err)
	}
	if _, err := mgr.Restore(bogus); err == nil {
		t.Error("Restore() expected error for corrupt file")
	}
	if n := countTodos(t, dbPath); n != 2 {
		t.Errorf("database changed after failed restore: %d rows", n)
	}
}

func TestResolve(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)
	backupPath, _ := mgr.Create()

	if got := mgr.Resolve(filepath.Base(backupPath)); got != backupPath {
		t.Errorf("Resolve(base name) = %s, want %s", got, backupPath)
	}
	if got := mgr.Resolve("/elsewhere/x.db"); got != "/elsewhere/x.db" {
		t.Errorf("Resolve(abs path) = %s", got)
	}
}

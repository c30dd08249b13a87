package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// execAll runs statements against a raw connection to build fixtures.
func execAll(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to run %s: %v", stmt, err)
		}
	}
}

// createLegacyDatabase writes the layout of databases that predate the
// habit registry: todo without created_at and one table per habit.
func createLegacyDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open legacy database: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE activities (date TEXT, hour TEXT, activity TEXT)`,
		`CREATE TABLE todo (id INTEGER PRIMARY KEY AUTOINCREMENT, date TEXT, task TEXT, completed BOOLEAN)`,
		`CREATE TABLE habit_study (date TEXT PRIMARY KEY, completed BOOLEAN)`,
		`CREATE TABLE habit_go_to_bed_22 (date TEXT PRIMARY KEY, completed BOOLEAN)`,
		`INSERT INTO activities VALUES ('05-03-2024', '9', '3')`,
		`INSERT INTO todo (date, task, completed) VALUES ('05-03-2024', 'old task', 0)`,
		`INSERT INTO todo (date, task, completed) VALUES ('05-03-2024', 'older task', 1)`,
		`INSERT INTO habit_study VALUES ('05-03-2024', 1)`,
		`INSERT INTO habit_study VALUES ('06-03-2024', 0)`,
		`INSERT INTO habit_go_to_bed_22 VALUES ('05-03-2024', 1)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to build legacy database: %s: %v", stmt, err)
		}
	}
	return path
}

func TestInitMigratesLegacyTodo(t *testing.T) {
	store := NewStore(createLegacyDatabase(t))
	store.now = tickingClock()
	if err := store.Init(); err != nil {
		t.Fatalf("Init() on legacy database error = %v", err)
	}
	defer store.Close()

	exists, err := store.columnExists("todo", "created_at")
	if err != nil || !exists {
		t.Fatalf("created_at column missing after Init: %v, %v", exists, err)
	}

	tasks, err := store.ListTasks(testDay)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("ListTasks() = %+v, want 2 legacy tasks", tasks)
	}
	for _, task := range tasks {
		if task.CreatedAt.IsZero() {
			t.Errorf("task %d has no created_at after backfill", task.ID)
		}
	}
	if tasks[0].Text != "old task" {
		t.Errorf("backfilled tasks should keep id order, got %q first", tasks[0].Text)
	}

	code, found, err := store.GetActivity(testDay, 9)
	if err != nil || !found || code != "3" {
		t.Errorf("legacy activity lost: %q, %v, %v", code, found, err)
	}
}

func TestInitImportsLegacyHabitTables(t *testing.T) {
	store := NewStore(createLegacyDatabase(t))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer store.Close()

	names, err := store.ListHabitNames()
	if err != nil {
		t.Fatalf("ListHabitNames() error = %v", err)
	}
	got := map[string]bool{}
	for _, n := range names {
		got[n] = true
	}
	if len(names) != 2 || !got["study"] || !got["go_to_bed_22"] {
		t.Errorf("ListHabitNames() = %v, want study and go_to_bed_22", names)
	}

	completed, found, _ := store.GetHabitStatus("study", testDay)
	if !found || !completed {
		t.Errorf("study on %s = %v (found %v), want true", testDay, completed, found)
	}
	completed, found, _ = store.GetHabitStatus("study", testDay.AddDays(1))
	if !found || completed {
		t.Errorf("study on next day = %v (found %v), want false", completed, found)
	}
}

func TestLegacyImportDoesNotOverwriteNewerStatus(t *testing.T) {
	store := NewStore(createLegacyDatabase(t))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer store.Close()

	if err := store.SetHabitStatus("study", testDay, false); err != nil {
		t.Fatalf("SetHabitStatus() error = %v", err)
	}
	// A second start re-runs the import over the same legacy rows.
	if err := store.EnsureSchema(nil); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}

	completed, _, _ := store.GetHabitStatus("study", testDay)
	if completed {
		t.Error("legacy import overwrote a status written after migration")
	}
}

func TestLegacyHabitTablesIgnoresOtherShapes(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.db.Exec(`CREATE TABLE habit_notes (body TEXT)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := store.db.Exec(`CREATE TABLE habitual (date TEXT, completed BOOLEAN)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	tables, err := store.legacyHabitTables()
	if err != nil {
		t.Fatalf("legacyHabitTables() error = %v", err)
	}
	if len(tables) != 0 {
		t.Errorf("legacyHabitTables() = %v, want none", tables)
	}
}

// assertStatusHabitUsable checks that habit_status is the normalised table and
// that the per-habit "status" rows were carried over.
func assertStatusHabitUsable(t *testing.T, store *Store) {
	t.Helper()
	if err := store.SetHabitStatus("study", testDay, true); err != nil {
		t.Fatalf("SetHabitStatus() error = %v", err)
	}
	completed, found, err := store.GetHabitStatus("study", testDay)
	if err != nil || !found || !completed {
		t.Fatalf("GetHabitStatus(study) = %v, %v, %v", completed, found, err)
	}

	completed, found, err = store.GetHabitStatus("status", testDay)
	if err != nil || !found || !completed {
		t.Errorf("imported status habit = %v (found %v), err %v", completed, found, err)
	}
	names, err := store.ListHabitNames()
	if err != nil {
		t.Fatalf("ListHabitNames() error = %v", err)
	}
	registered := false
	for _, n := range names {
		registered = registered || n == "status"
	}
	if !registered {
		t.Errorf("ListHabitNames() = %v, want status registered", names)
	}

	kept, err := store.tableExists(legacyStatusTable)
	if err != nil || !kept {
		t.Errorf("%s missing after Init: %v, %v", legacyStatusTable, kept, err)
	}
}

func TestInitMovesLegacyStatusTable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) *Store
	}{
		{
			name: "before first migration",
			setup: func(t *testing.T) *Store {
				path := filepath.Join(t.TempDir(), "legacy.db")
				db, err := sql.Open("sqlite", path)
				if err != nil {
					t.Fatalf("failed to open database: %v", err)
				}
				defer db.Close()
				execAll(t, db,
					`CREATE TABLE habit_status (date TEXT PRIMARY KEY, completed BOOLEAN)`,
					`INSERT INTO habit_status VALUES ('05-03-2024', 1)`,
				)
				store := NewStore(path)
				if err := store.Init(); err != nil {
					t.Fatalf("Init() error = %v", err)
				}
				return store
			},
		},
		{
			name: "after migrations already ran",
			setup: func(t *testing.T) *Store {
				store := setupTestStore(t)
				execAll(t, store.db,
					`DROP TABLE habit_status`,
					`CREATE TABLE habit_status (date TEXT PRIMARY KEY, completed BOOLEAN)`,
					`INSERT INTO habit_status VALUES ('05-03-2024', 1)`,
				)
				if err := store.EnsureSchema(nil); err != nil {
					t.Fatalf("EnsureSchema() error = %v", err)
				}
				return store
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := tt.setup(t)
			defer store.Close()
			assertStatusHabitUsable(t, store)

			// A later start leaves the moved table alone.
			if err := store.EnsureSchema(nil); err != nil {
				t.Fatalf("second EnsureSchema() error = %v", err)
			}
		})
	}
}

func TestMoveLegacyStatusTableRefusesToOverwrite(t *testing.T) {
	store := setupTestStore(t)
	execAll(t, store.db,
		`DROP TABLE habit_status`,
		`CREATE TABLE habit_status (date TEXT PRIMARY KEY, completed BOOLEAN)`,
		`CREATE TABLE legacy_habit_status (date TEXT PRIMARY KEY, completed BOOLEAN)`,
	)
	if err := store.EnsureSchema(nil); err == nil {
		t.Error("EnsureSchema() should fail when legacy_habit_status is taken")
	}
}

func TestLegacyHabitTablesNameFilter(t *testing.T) {
	tests := []struct {
		table string
		want  bool
	}{
		{"habit_study", true},
		{"habit_go_to_bed_22", true},
		{"habit_my-habit", false},
		{"habit_café", false},
		{"habit_", false},
	}

	store := setupTestStore(t)
	for _, tt := range tests {
		execAll(t, store.db, `CREATE TABLE `+quoteIdent(tt.table)+` (date TEXT PRIMARY KEY, completed BOOLEAN)`)
	}

	tables, err := store.legacyHabitTables()
	if err != nil {
		t.Fatalf("legacyHabitTables() error = %v", err)
	}
	got := map[string]bool{}
	for _, lt := range tables {
		got[lt.table] = true
	}
	for _, tt := range tests {
		if got[tt.table] != tt.want {
			t.Errorf("legacyHabitTables() includes %q = %v, want %v", tt.table, got[tt.table], tt.want)
		}
	}
}

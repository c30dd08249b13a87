package sqlite

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/daytrack/internal/models"
	"github.com/julianstephens/daytrack/internal/storage"
)

var testDay = models.NewDate(2024, 3, 5)

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	t := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "daytrack.db"))
	store.now = tickingClock()
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// setupMinimalTestStore opens a database without running migrations
func setupMinimalTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "daytrack.db"))
	db, err := sql.Open("sqlite", store.path)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	store.db = db
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInitIsIdempotent(t *testing.T) {
	store := setupTestStore(t)

	if err := store.SetActivity(testDay, 9, "3"); err != nil {
		t.Fatalf("SetActivity() error = %v", err)
	}
	if err := store.EnsureSchema(nil); err != nil {
		t.Fatalf("second EnsureSchema() error = %v", err)
	}

	code, found, err := store.GetActivity(testDay, 9)
	if err != nil || !found || code != "3" {
		t.Errorf("data lost after re-running schema setup: %q, %v, %v", code, found, err)
	}

	current, latest, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if current != latest || current == 0 {
		t.Errorf("SchemaVersion() = %d, %d; want equal and non-zero", current, latest)
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "absent.db"))
		err := store.Load()
		if err == nil || !strings.Contains(err.Error(), "daytrack init") {
			t.Errorf("Load() error = %v, want hint to run init", err)
		}
	})

	t.Run("existing database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "daytrack.db")
		first := NewStore(path)
		if err := first.Init(); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if _, err := first.AddTask(testDay, "carry over", false); err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
		first.Close()

		second := NewStore(path)
		if err := second.Load(); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		defer second.Close()

		tasks, err := second.ListTasks(testDay)
		if err != nil || len(tasks) != 1 {
			t.Errorf("ListTasks() after Load = %v, %v", tasks, err)
		}
	})

	t.Run("newer schema is rejected", func(t *testing.T) {
		store := setupTestStore(t)
		if _, err := store.db.Exec("UPDATE schema_version SET version = 999"); err != nil {
			t.Fatalf("failed to bump version: %v", err)
		}
		path := store.path
		store.Close()

		reopened := NewStore(path)
		defer reopened.Close()
		err := reopened.Load()
		if err == nil || !strings.Contains(err.Error(), "newer than supported") {
			t.Errorf("Load() error = %v, want newer schema error", err)
		}
	})
}

func TestOperationsBeforeLoad(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "daytrack.db"))

	if err := store.SetActivity(testDay, 1, "1"); !errors.Is(err, errNotLoaded) {
		t.Errorf("SetActivity() error = %v, want errNotLoaded", err)
	}
	if _, err := store.ListTasks(testDay); !errors.Is(err, errNotLoaded) {
		t.Errorf("ListTasks() error = %v, want errNotLoaded", err)
	}
}

func TestActivities(t *testing.T) {
	t.Run("set then get returns the code", func(t *testing.T) {
		store := setupTestStore(t)
		for _, code := range []string{"1", "11", ""} {
			if err := store.SetActivity(testDay, 7, code); err != nil {
				t.Fatalf("SetActivity(%q) error = %v", code, err)
			}
			got, found, err := store.GetActivity(testDay, 7)
			if err != nil || !found || got != code {
				t.Errorf("GetActivity() = %q, %v, %v; want %q, true", got, found, err, code)
			}
		}
	})

	t.Run("never set is not found", func(t *testing.T) {
		store := setupTestStore(t)
		_, found, err := store.GetActivity(testDay, 3)
		if err != nil || found {
			t.Errorf("GetActivity() found = %v, err = %v; want false, nil", found, err)
		}
	})

	t.Run("latest write wins", func(t *testing.T) {
		store := setupTestStore(t)
		_ = store.SetActivity(testDay, 14, "3")
		_ = store.SetActivity(testDay, 14, "4")

		list, err := store.ListActivities(testDay)
		if err != nil {
			t.Fatalf("ListActivities() error = %v", err)
		}
		if len(list) != 1 || list[0].Code != "4" {
			t.Errorf("ListActivities() = %+v, want one row with code 4", list)
		}
	})

	t.Run("numeric hour order", func(t *testing.T) {
		store := setupTestStore(t)
		for _, h := range []int{10, 9, 23, 0} {
			if err := store.SetActivity(testDay, h, "2"); err != nil {
				t.Fatalf("SetActivity() error = %v", err)
			}
		}
		_ = store.SetActivity(testDay.AddDays(1), 5, "2")

		list, err := store.ListActivities(testDay)
		if err != nil {
			t.Fatalf("ListActivities() error = %v", err)
		}
		var hours []int
		for _, a := range list {
			hours = append(hours, a.Hour)
		}
		want := []int{0, 9, 10, 23}
		if len(hours) != len(want) {
			t.Fatalf("hours = %v, want %v", hours, want)
		}
		for i := range want {
			if hours[i] != want[i] {
				t.Errorf("hours = %v, want %v", hours, want)
				break
			}
		}
	})

	t.Run("bulk read", func(t *testing.T) {
		store := setupTestStore(t)
		_ = store.SetActivity(testDay, 9, "3")
		_ = store.SetActivity(testDay.AddDays(-1), 22, "1")

		all, err := store.GetAllActivities()
		if err != nil || len(all) != 2 {
			t.Errorf("GetAllActivities() = %v, %v", all, err)
		}
	})
}

func TestHabits(t *testing.T) {
	t.Run("ensure habit is idempotent", func(t *testing.T) {
		store := setupTestStore(t)
		for i := 0; i < 2; i++ {
			if err := store.EnsureHabit("reading"); err != nil {
				t.Fatalf("EnsureHabit() error = %v", err)
			}
		}
		habits, err := store.GetAllHabits()
		if err != nil || len(habits) != 1 {
			t.Fatalf("GetAllHabits() = %v, %v; want one habit", habits, err)
		}
		if habits[0].ID == "" || habits[0].CreatedAt.IsZero() {
			t.Errorf("habit missing id or created_at: %+v", habits[0])
		}
	})

	t.Run("status upsert keeps last write", func(t *testing.T) {
		store := setupTestStore(t)
		_ = store.SetHabitStatus("study", testDay, true)
		_ = store.SetHabitStatus("study", testDay, false)

		completed, found, err := store.GetHabitStatus("study", testDay)
		if err != nil || !found || completed {
			t.Errorf("GetHabitStatus() = %v, %v, %v; want false, true", completed, found, err)
		}
	})

	t.Run("status provisions the habit", func(t *testing.T) {
		store := setupTestStore(t)
		_ = store.SetHabitStatus("journal", testDay, true)

		names, err := store.ListHabitNames()
		if err != nil || len(names) != 1 || names[0] != "journal" {
			t.Errorf("ListHabitNames() = %v, %v", names, err)
		}
	})

	t.Run("names are not sanitized", func(t *testing.T) {
		store := setupTestStore(t)
		_ = store.SetHabitStatus("a!b", testDay, true)
		_ = store.SetHabitStatus("ab", testDay, false)

		bang, _, _ := store.GetHabitStatus("a!b", testDay)
		plain, _, _ := store.GetHabitStatus("ab", testDay)
		if !bang || plain {
			t.Errorf("statuses = a!b:%v ab:%v, want true and false", bang, plain)
		}

		names, _ := store.ListHabitNames()
		if len(names) != 2 {
			t.Errorf("ListHabitNames() = %v, want two distinct habits", names)
		}
	})

	t.Run("count completed", func(t *testing.T) {
		store := setupTestStore(t)
		_ = store.SetHabitStatus("a", testDay, true)
		_ = store.SetHabitStatus("b", testDay, true)
		_ = store.SetHabitStatus("c", testDay, false)
		_ = store.SetHabitStatus("a", testDay.AddDays(1), true)

		count, err := store.CountCompletedHabits(testDay)
		if err != nil || count != 2 {
			t.Errorf("CountCompletedHabits() = %d, %v; want 2", count, err)
		}

		all, err := store.GetAllHabitStatuses()
		if err != nil || len(all) != 4 {
			t.Errorf("GetAllHabitStatuses() = %d rows, %v; want 4", len(all), err)
		}
	})
}

func TestTasks(t *testing.T) {
	t.Run("add then list", func(t *testing.T) {
		store := setupTestStore(t)
		first, err := store.AddTask(testDay, "first", false)
		if err != nil {
			t.Fatalf("AddTask() error = %v", err)
		}
		second, _ := store.AddTask(testDay, "second", false)
		_, _ = store.AddTask(testDay.AddDays(1), "tomorrow", false)

		tasks, err := store.ListTasks(testDay)
		if err != nil {
			t.Fatalf("ListTasks() error = %v", err)
		}
		if len(tasks) != 2 {
			t.Fatalf("ListTasks() = %+v, want 2 tasks", tasks)
		}
		if tasks[0].ID != first || tasks[1].ID != second {
			t.Errorf("ListTasks() order = [%d %d], want [%d %d]", tasks[0].ID, tasks[1].ID, first, second)
		}
		if tasks[0].Completed || tasks[0].Text != "first" || !tasks[0].Date.Equal(testDay) {
			t.Errorf("ListTasks()[0] = %+v", tasks[0])
		}
		if !tasks[0].CreatedAt.Before(tasks[1].CreatedAt) {
			t.Errorf("created_at not increasing: %v, %v", tasks[0].CreatedAt, tasks[1].CreatedAt)
		}
	})

	t.Run("point mutations", func(t *testing.T) {
		store := setupTestStore(t)
		id, _ := store.AddTask(testDay, "draft", false)

		if err := store.SetTaskCompleted(id, true); err != nil {
			t.Fatalf("SetTaskCompleted() error = %v", err)
		}
		if err := store.SetTaskText(id, "final"); err != nil {
			t.Fatalf("SetTaskText() error = %v", err)
		}

		task, err := store.GetTask(id)
		if err != nil {
			t.Fatalf("GetTask() error = %v", err)
		}
		if !task.Completed || task.Text != "final" {
			t.Errorf("GetTask() = %+v", task)
		}

		if err := store.DeleteTask(id); err != nil {
			t.Fatalf("DeleteTask() error = %v", err)
		}
		if _, err := store.GetTask(id); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetTask() after delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing ids are no-ops", func(t *testing.T) {
		store := setupTestStore(t)
		id, _ := store.AddTask(testDay, "keep", false)

		for name, op := range map[string]func() error{
			"delete":   func() error { return store.DeleteTask(id + 100) },
			"complete": func() error { return store.SetTaskCompleted(id+100, true) },
			"edit":     func() error { return store.SetTaskText(id+100, "x") },
		} {
			if err := op(); err != nil {
				t.Errorf("%s of missing id error = %v", name, err)
			}
		}

		tasks, _ := store.ListTasks(testDay)
		if len(tasks) != 1 || tasks[0].Text != "keep" || tasks[0].Completed {
			t.Errorf("rows changed: %+v", tasks)
		}
	})

	t.Run("stats", func(t *testing.T) {
		store := setupTestStore(t)
		for i := 0; i < 3; i++ {
			_, _ = store.AddTask(testDay, "done", true)
		}
		for i := 0; i < 2; i++ {
			_, _ = store.AddTask(testDay, "open", false)
		}

		completed, total, err := store.TaskStats(testDay)
		if err != nil || completed != 3 || total != 5 {
			t.Errorf("TaskStats() = %d, %d, %v; want 3, 5", completed, total, err)
		}

		completed, total, err = store.TaskStats(testDay.AddDays(3))
		if err != nil || completed != 0 || total != 0 {
			t.Errorf("TaskStats(empty day) = %d, %d, %v; want 0, 0", completed, total, err)
		}
	})

	t.Run("import keeps id and creation time", func(t *testing.T) {
		store := setupTestStore(t)
		created := time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)
		if err := store.ImportTask(models.Task{ID: 42, Date: testDay, Text: "old", Completed: true, CreatedAt: created}); err != nil {
			t.Fatalf("ImportTask() error = %v", err)
		}

		task, err := store.GetTask(42)
		if err != nil {
			t.Fatalf("GetTask() error = %v", err)
		}
		if !task.CreatedAt.Equal(created) || !task.Completed {
			t.Errorf("GetTask() = %+v", task)
		}

		next, _ := store.AddTask(testDay, "new", false)
		if next <= 42 {
			t.Errorf("AddTask() after import = %d, want > 42", next)
		}

		all, err := store.GetAllTasks()
		if err != nil || len(all) != 2 {
			t.Errorf("GetAllTasks() = %v, %v", all, err)
		}
	})
}

func TestTableExists(t *testing.T) {
	store := setupMinimalTestStore(t)

	if _, err := store.db.Exec("CREATE TABLE test_table (id INTEGER PRIMARY KEY, name TEXT)"); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}

	tests := []struct {
		table string
		want  bool
	}{
		{"test_table", true},
		{"TEST_TABLE", true},
		{"nonexistent_table", false},
	}
	for _, tt := range tests {
		exists, err := store.tableExists(tt.table)
		if err != nil {
			t.Errorf("tableExists(%q) error = %v", tt.table, err)
		}
		if exists != tt.want {
			t.Errorf("tableExists(%q) = %v, want %v", tt.table, exists, tt.want)
		}
	}
}

func TestIntegrityCheck(t *testing.T) {
	store := setupTestStore(t)

	result, err := store.IntegrityCheck()
	if err != nil || result != "ok" {
		t.Errorf("IntegrityCheck() = %q, %v; want ok", result, err)
	}
}

func TestInitCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "daytrack.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
	if store.GetConfigPath() != path {
		t.Errorf("GetConfigPath() = %q, want %q", store.GetConfigPath(), path)
	}
}

func TestMalformedDateKeys(t *testing.T) {
	store := setupTestStore(t)
	_ = store.SetActivity(testDay, 9, "3")
	_ = store.SetActivity(testDay.AddDays(-40), 9, "4")
	_ = store.SetHabitStatus("study", testDay, true)
	if _, err := store.AddTask(testDay, "kept", false); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	execAll(t, store.db,
		`INSERT INTO activities (date, hour, activity) VALUES ('2023-01-05', '9', '4')`,
		`INSERT INTO habit_status (habit_name, date, completed) VALUES ('study', '5/3/2024', 1)`,
		`INSERT INTO todo (date, task, completed) VALUES ('yesterday', 'dropped', 0)`,
	)

	t.Run("bulk reads skip bad rows", func(t *testing.T) {
		activities, err := store.GetAllActivities()
		if err != nil || len(activities) != 2 {
			t.Errorf("GetAllActivities() = %+v, %v; want 2 rows", activities, err)
		}
		statuses, err := store.GetAllHabitStatuses()
		if err != nil || len(statuses) != 1 {
			t.Errorf("GetAllHabitStatuses() = %+v, %v; want 1 row", statuses, err)
		}
		tasks, err := store.GetAllTasks()
		if err != nil || len(tasks) != 1 || tasks[0].Text != "kept" {
			t.Errorf("GetAllTasks() = %+v, %v; want the kept task", tasks, err)
		}
	})

	t.Run("windowed reads", func(t *testing.T) {
		activities, err := store.ListActivitiesBetween(testDay.AddDays(-29), testDay)
		if err != nil || len(activities) != 1 || activities[0].Code != "3" {
			t.Errorf("ListActivitiesBetween() = %+v, %v; want today's row", activities, err)
		}
		statuses, err := store.ListHabitStatusesBetween(testDay.AddDays(-6), testDay)
		if err != nil || len(statuses) != 1 || statuses[0].Date != testDay {
			t.Errorf("ListHabitStatusesBetween() = %+v, %v", statuses, err)
		}
		empty, err := store.ListActivitiesBetween(testDay, testDay.AddDays(-1))
		if err != nil || len(empty) != 0 {
			t.Errorf("empty window = %+v, %v", empty, err)
		}
	})

	t.Run("date keys report bad rows", func(t *testing.T) {
		keys, err := store.ListDateKeys()
		if err != nil {
			t.Fatalf("ListDateKeys() error = %v", err)
		}
		bad := map[string]string{}
		for _, k := range keys {
			if !k.Valid() {
				bad[k.Table] = k.Key
			}
		}
		want := map[string]string{"activities": "2023-01-05", "habit_status": "5/3/2024", "todo": "yesterday"}
		if len(bad) != len(want) {
			t.Fatalf("malformed keys = %v, want %v", bad, want)
		}
		for table, key := range want {
			if bad[table] != key {
				t.Errorf("malformed key in %s = %q, want %q", table, bad[table], key)
			}
		}
	})
}

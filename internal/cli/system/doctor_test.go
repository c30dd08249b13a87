package system

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/julianstephens/daytrack/internal/cli"
	"github.com/julianstephens/daytrack/internal/storage/sqlite"
)

func TestDoctorCmd_HealthyDatabase(t *testing.T) {
	ctx, _, out := setupTestInitDB(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	out.Reset()

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor failed: %v\n%s", err, out.String())
	}

	for _, want := range []string{
		"✓ Database reachable: OK",
		"✓ Schema version: OK",
		"✓ Migrations complete: OK",
		"✓ Database integrity: OK",
		"⚠ Backups present: WARNING",
		"✓ Data validation: OK",
		"All checks passed!",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestDoctorCmd_MissingDatabase(t *testing.T) {
	ctx, _, out := setupTestInitDB(t)

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Fatal("doctor should fail without a database")
	}
	if !strings.Contains(out.String(), "❌ Database reachable: FAIL") {
		t.Errorf("output = %s", out.String())
	}
	if !strings.Contains(out.String(), "⊘ Schema version: SKIPPED (database not reachable)") {
		t.Errorf("output = %s", out.String())
	}
}

// execRaw writes to the database behind the store's back.
func execRaw(t *testing.T, dbPath string, stmts ...string) {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to run %s: %v", stmt, err)
		}
	}
}

func TestDoctorCmd_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, ctx *cli.Context, dbPath string)
		want  []string
	}{
		{
			name: "invalid activity code",
			setup: func(t *testing.T, _ *cli.Context, dbPath string) {
				execRaw(t, dbPath, `INSERT INTO activities (date, hour, activity) VALUES ('06-03-2024', '7', 'zz')`)
			},
			want: []string{"❌ Data validation: FAIL"},
		},
		{
			name: "malformed date keys",
			setup: func(t *testing.T, _ *cli.Context, dbPath string) {
				execRaw(t, dbPath,
					`INSERT INTO activities (date, hour, activity) VALUES ('2023-01-05', '9', '3')`,
					`INSERT INTO habit_status (habit_name, date, completed) VALUES ('study', '5/3/2024', 1)`,
				)
			},
			want: []string{
				"❌ Data validation: FAIL",
				`1 row(s) in activities have malformed date "2023-01-05"`,
				`1 row(s) in habit_status have malformed date "5/3/2024"`,
			},
		},
		{
			name: "pending migration",
			setup: func(t *testing.T, _ *cli.Context, dbPath string) {
				execRaw(t, dbPath, `UPDATE schema_version SET version = 1`)
			},
			want: []string{
				"❌ Migrations complete: FAIL",
				"1 pending migration(s), run 'daytrack migrate'",
			},
		},
		{
			name: "unknown timezone",
			setup: func(_ *testing.T, ctx *cli.Context, _ string) {
				ctx.Settings.Timezone = "Mars/Base"
			},
			want: []string{"❌ Clock/timezone: FAIL", `invalid timezone "Mars/Base"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, dbPath, out := setupTestInitDB(t)
			if err := (&InitCmd{}).Run(ctx); err != nil {
				t.Fatalf("init failed: %v", err)
			}
			tt.setup(t, ctx, dbPath)
			out.Reset()

			if err := (&DoctorCmd{}).Run(ctx); err == nil {
				t.Fatalf("doctor should fail:\n%s", out.String())
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, _, out := setupTestInitDB(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	out.Reset()

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "Database schema is up to date") {
		t.Errorf("output = %s", out.String())
	}
}

func TestMigrateCmd_AppliesPending(t *testing.T) {
	ctx, dbPath, out := setupTestInitDB(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	execRaw(t, dbPath, `UPDATE schema_version SET version = 1`)
	out.Reset()

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	for _, want := range []string{
		"Current schema version: 1 (1 pending)",
		"Migrated schema from version 1 to 2",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestMigrateCmd_MissingDatabase(t *testing.T) {
	ctx, _, _ := setupTestInitDB(t)
	ctx.Store = sqlite.NewStore(ctx.SettingsPath + ".missing.db")

	err := (&MigrateCmd{}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "daytrack init") {
		t.Errorf("Run() error = %v, want hint to run init", err)
	}
}

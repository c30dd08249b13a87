package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/daytrack/internal/backup"
	"github.com/julianstephens/daytrack/internal/cli"
	"github.com/julianstephens/daytrack/internal/validation"
)

var errSkipped = errors.New("skipped")

type DoctorCmd struct{}

type check struct {
	name string
	// warnOnly checks never fail the command
	warnOnly bool
	run      func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	reachable := checkDBReachable(ctx) == nil
	needsDB := func(fn func(*cli.Context) error) func(*cli.Context) error {
		return func(ctx *cli.Context) error {
			if !reachable {
				return fmt.Errorf("%w (database not reachable)", errSkipped)
			}
			return fn(ctx)
		}
	}

	checks := []check{
		{name: "Database reachable", run: checkDBReachable},
		{name: "Schema version", run: needsDB(checkSchemaVersion)},
		{name: "Migrations complete", run: needsDB(checkMigrationsComplete)},
		{name: "Database integrity", run: needsDB(checkIntegrity)},
		{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
		{name: "Data validation", run: needsDB(checkValidation)},
		{name: "Clock/timezone", run: checkClockTimezone},
	}

	hasError := false
	for _, c := range checks {
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkipped):
			ctx.Printf("⊘ %s: SKIPPED %s\n", c.name, trimSkipped(err))
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Some checks failed. Please review the errors above.")
		return errors.New("health checks failed")
	}
	ctx.Println("All checks passed!")
	return nil
}

func trimSkipped(err error) string {
	msg := err.Error()
	if len(msg) > len(errSkipped.Error())+1 {
		return msg[len(errSkipped.Error())+1:]
	}
	return ""
}

func checkDBReachable(ctx *cli.Context) error {
	if m, ok := ctx.Store.(schemaManager); ok {
		return m.Open()
	}
	return ctx.Store.Load()
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(schemaManager)
	if !ok {
		return fmt.Errorf("%w (backend has no schema versioning)", errSkipped)
	}
	current, latest, err := m.SchemaVersion()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(schemaManager)
	if !ok {
		return fmt.Errorf("%w (backend has no schema versioning)", errSkipped)
	}
	pending, err := m.PendingMigrations()
	if err != nil {
		return err
	}
	if pending > 0 {
		return fmt.Errorf("%d pending migration(s), run 'daytrack migrate'", pending)
	}
	return nil
}

func checkIntegrity(ctx *cli.Context) error {
	s, ok := ctx.SQLiteStore()
	if !ok {
		return fmt.Errorf("%w (not a SQLite database)", errSkipped)
	}
	result, err := s.IntegrityCheck()
	if err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check reported: %s", result)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	s, ok := ctx.SQLiteStore()
	if !ok {
		return fmt.Errorf("%w (not a SQLite database)", errSkipped)
	}
	mgr := backup.NewManager(s.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s, run 'daytrack backup create'", mgr.Dir())
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	result, err := validation.New().Audit(ctx.Store)
	if err != nil {
		return err
	}
	if result.HasConflicts() {
		return fmt.Errorf("%d problem(s) found\n%s", len(result.Conflicts), result.FormatReport())
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Now
	if now == nil {
		now = time.Now
	}
	t := now()
	if t.Year() < 2000 {
		return fmt.Errorf("system clock looks wrong: %s", t.Format(time.RFC3339))
	}
	if ctx.Settings != nil {
		if _, err := time.LoadLocation(ctx.Settings.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", ctx.Settings.Timezone, err)
		}
	}
	return nil
}

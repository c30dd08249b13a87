package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/daytrack/internal/cli"
	"github.com/julianstephens/daytrack/internal/config"
	"github.com/julianstephens/daytrack/internal/storage"
	"github.com/julianstephens/daytrack/internal/storage/postgres"
	"github.com/julianstephens/daytrack/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing SQLite database before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized daytrack storage at: %s\n", ctx.Store.GetConfigPath())

	if ctx.SettingsPath != "" && ctx.Settings != nil {
		if err := ctx.Settings.Write(ctx.SettingsPath, false); err != nil {
			return fmt.Errorf("failed to write settings: %w", err)
		}
	}

	if c.Source != "" {
		ctx.Printf("Migrating data from: %s\n", c.Source)
		if err := c.migrateData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}

	names, err := storage.LoadHabits(ctx.Store, ctx.DefaultHabits())
	if err != nil {
		return err
	}
	ctx.Printf("Tracking %d habits\n", len(names))
	return nil
}

// reset removes the SQLite database file. PostgreSQL databases are never
// dropped.
func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.SQLiteStore(); !ok {
		return errors.New("--force is only supported for SQLite storage")
	}

	dbPath := ctx.Store.GetConfigPath()
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	if c.Source != "" {
		if abs, err := filepath.Abs(c.Source); err == nil && abs == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func openSource(source string) (storage.Provider, error) {
	if postgres.IsConnString(source) {
		if err := postgres.ValidateConnString(source); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, errors.New("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return nil, err
		}
		return postgres.New(source), nil
	}
	path, err := config.ExpandPath(source)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

// migrateData copies every record of source into the context store. Records
// already present in the destination are overwritten.
func (c *InitCmd) migrateData(ctx *cli.Context, source string) error {
	src, err := openSource(source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	dst := ctx.Store

	ctx.Println("  Migrating habits...")
	habits, err := src.GetAllHabits()
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	for _, h := range habits {
		if err := dst.EnsureHabit(h.Name); err != nil {
			return fmt.Errorf("failed to add habit %q: %w", h.Name, err)
		}
	}
	ctx.Printf("    Migrated %d habits\n", len(habits))

	ctx.Println("  Migrating habit statuses...")
	statuses, err := src.GetAllHabitStatuses()
	if err != nil {
		return fmt.Errorf("failed to get habit statuses from source: %w", err)
	}
	for _, st := range statuses {
		if err := dst.SetHabitStatus(st.HabitName, st.Date, st.Completed); err != nil {
			return fmt.Errorf("failed to set status of %q on %s: %w", st.HabitName, st.Date, err)
		}
	}
	ctx.Printf("    Migrated %d habit statuses\n", len(statuses))

	ctx.Println("  Migrating activities...")
	activities, err := src.GetAllActivities()
	if err != nil {
		return fmt.Errorf("failed to get activities from source: %w", err)
	}
	for _, a := range activities {
		if err := dst.SetActivity(a.Date, a.Hour, a.Code); err != nil {
			return fmt.Errorf("failed to set activity %s %02d:00: %w", a.Date, a.Hour, err)
		}
	}
	ctx.Printf("    Migrated %d activities\n", len(activities))

	ctx.Println("  Migrating tasks...")
	tasks, err := src.GetAllTasks()
	if err != nil {
		return fmt.Errorf("failed to get tasks from source: %w", err)
	}
	for _, task := range tasks {
		if err := dst.ImportTask(task); err != nil {
			return fmt.Errorf("failed to import task %d: %w", task.ID, err)
		}
	}
	ctx.Printf("    Migrated %d tasks\n", len(tasks))

	return nil
}

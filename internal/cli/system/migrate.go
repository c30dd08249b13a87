package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/daytrack/internal/cli"
)

// schemaManager is implemented by every store that runs migrations.
type schemaManager interface {
	Open() error
	EnsureSchema(logFn func(string)) error
	SchemaVersion() (current, latest int, err error)
	PendingMigrations() (int, error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	store, ok := ctx.Store.(schemaManager)
	if !ok {
		return errors.New("migrations are not supported for this storage backend")
	}

	ctx.PerformAutomaticBackup()

	if err := store.Open(); err != nil {
		return err
	}
	before, latest, err := store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if before > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d) - please upgrade the application", before, latest)
	}

	pending, err := store.PendingMigrations()
	if err != nil {
		return fmt.Errorf("failed to count pending migrations: %w", err)
	}
	ctx.Printf("Current schema version: %d (%d pending)\n", before, pending)
	err = store.EnsureSchema(func(msg string) {
		ctx.Printf("  %s\n", msg)
	})
	if err != nil {
		return err
	}

	after, _, err := store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if after == before {
		ctx.Printf("✓ Database schema is up to date (version %d)\n", after)
		return nil
	}
	ctx.Printf("✓ Migrated schema from version %d to %d\n", before, after)
	return nil
}

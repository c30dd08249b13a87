package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/daytrack/internal/backup"
	"github.com/julianstephens/daytrack/internal/config"
	"github.com/julianstephens/daytrack/internal/keyring"
	"github.com/julianstephens/daytrack/internal/logger"
	"github.com/julianstephens/daytrack/internal/models"
	"github.com/julianstephens/daytrack/internal/stats"
	"github.com/julianstephens/daytrack/internal/storage"
	"github.com/julianstephens/daytrack/internal/storage/postgres"
	"github.com/julianstephens/daytrack/internal/storage/sqlite"
)

type Context struct {
	Store        storage.Provider
	Settings     *config.Settings
	SettingsPath string
	Out          io.Writer
	Now          func() time.Time

	// Confirm answers yes/no prompts. Nil asks on the terminal.
	Confirm func(title string) (bool, error)
}

// NewContext fills in defaults for any field the caller left empty.
func NewContext(store storage.Provider, settings *config.Settings) *Context {
	if settings == nil {
		settings = config.Defaults()
	}
	return &Context{
		Store:    store,
		Settings: settings,
		Out:      os.Stdout,
		Now:      time.Now,
	}
}

// OpenStore picks the backend for the --db value. PostgreSQL URLs get their
// password from the environment or the OS keyring; anything else is a SQLite
// path.
func OpenStore(db string) (storage.Provider, error) {
	if postgres.IsConnString(db) {
		if err := postgres.ValidateConnString(db); err != nil {
			return nil, err
		}
		connStr, source, err := keyring.ResolveConnectionString(db)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve connection string: %w", err)
		}
		logger.Debug("Using PostgreSQL storage", "source", source)
		return postgres.New(connStr), nil
	}

	path, err := config.ExpandPath(db)
	if err != nil {
		return nil, err
	}
	logger.Debug("Using SQLite storage", "path", path)
	return sqlite.NewStore(path), nil
}

func (c *Context) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Context) settings() *config.Settings {
	if c.Settings == nil {
		return config.Defaults()
	}
	return c.Settings
}

// Today is the current day in the configured timezone.
func (c *Context) Today() models.Date {
	return c.settings().Today(c.now())
}

// ResolveDate parses a --date value; empty means today.
func (c *Context) ResolveDate(value string) (models.Date, error) {
	if value == "" {
		return c.Today(), nil
	}
	return models.ParseDate(value)
}

// DefaultHabits are provisioned when the store knows no habit yet.
func (c *Context) DefaultHabits() []string {
	return c.settings().DefaultHabits
}

func (c *Context) StatsWindow() int {
	return c.settings().StatsWindowDays
}

// Stats returns a stats service whose "today" follows the settings timezone.
func (c *Context) Stats() *stats.Service {
	loc := c.settings().Location()
	return stats.New(c.Store, func() time.Time { return c.now().In(loc) })
}

// Ask shows a yes/no prompt.
func (c *Context) Ask(title string) (bool, error) {
	if c.Confirm != nil {
		return c.Confirm(title)
	}

	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("interactive form error: %w", err)
	}
	return ok, nil
}

// SQLiteStore returns the store when it is file backed.
func (c *Context) SQLiteStore() (*sqlite.Store, bool) {
	s, ok := c.Store.(*sqlite.Store)
	return s, ok
}

// PerformAutomaticBackup backs up a SQLite database before a destructive
// command. Failures are logged and do not stop the command.
func (c *Context) PerformAutomaticBackup() {
	s, ok := c.SQLiteStore()
	if !ok {
		return
	}
	if _, err := os.Stat(s.GetConfigPath()); err != nil {
		return
	}
	if _, err := backup.NewManager(s.GetConfigPath()).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.output(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.output(), args...)
}

func (c *Context) output() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

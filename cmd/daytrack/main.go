package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/daytrack/internal/cli"
	"github.com/julianstephens/daytrack/internal/cli/activities"
	"github.com/julianstephens/daytrack/internal/cli/backups"
	"github.com/julianstephens/daytrack/internal/cli/habits"
	"github.com/julianstephens/daytrack/internal/cli/reports"
	"github.com/julianstephens/daytrack/internal/cli/system"
	"github.com/julianstephens/daytrack/internal/cli/tasks"
	"github.com/julianstephens/daytrack/internal/config"
	"github.com/julianstephens/daytrack/internal/constants"
	apperrors "github.com/julianstephens/daytrack/internal/errors"
	"github.com/julianstephens/daytrack/internal/logger"
)

type CLI struct {
	Version  kong.VersionFlag
	DB       string `name:"db" help:"SQLite database path or PostgreSQL connection URL. PostgreSQL passwords must NOT be embedded; use ${env}, the OS keyring or .pgpass instead." default:"${db}"`
	Settings string `help:"Settings file (TOML)." default:"${settings}"`
	Debug    bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd         `cmd:"" help:"Initialize daytrack storage."`
	Migrate  system.MigrateCmd      `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd       `cmd:"" help:"Run health checks and diagnostics."`
	Day      reports.DayCmd         `cmd:"" help:"Show activities, habits and tasks for a day."`
	Activity activities.ActivityCmd `cmd:"" help:"Record hourly activities."`
	Habit    habits.HabitCmd        `cmd:"" help:"Manage habits and habit tracking."`
	Task     tasks.TaskCmd          `cmd:"" help:"Manage tasks."`
	Stats    reports.StatsCmd       `cmd:"" help:"Habit and activity statistics."`
	Backup   backups.BackupCmd      `cmd:"" help:"Manage database backups."`
	Keyring  system.KeyringCmd      `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	os.Exit(run())
}

func run() int {
	var args CLI
	parser, err := kong.New(&args,
		kong.Name(constants.AppName),
		kong.Description("Daily tracker for hourly activities, habits and tasks"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":  constants.Version,
			"db":       constants.DefaultConfigPath,
			"settings": constants.DefaultSettings,
			"env":      constants.ConnectionEnvVar,
		},
	)
	if err != nil {
		apperrors.Report(os.Stderr, err)
		return 1
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		apperrors.Report(os.Stderr, err)
		return 1
	}

	settingsPath, err := config.ExpandPath(args.Settings)
	if err != nil {
		apperrors.Report(os.Stderr, err)
		return 1
	}
	settings, err := config.Load(settingsPath)
	if err != nil {
		apperrors.Report(os.Stderr, err)
		return 1
	}

	if err := logger.Init(logger.Config{
		Debug:     args.Debug || settings.Debug,
		ConfigDir: filepath.Dir(settingsPath),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	defer logger.Close()
	logger.Debug("Starting", "command", kctx.Command(), "version", constants.Version)
	for _, key := range settings.UnknownKeys() {
		logger.Warn("Ignoring unknown settings key", "key", key)
	}

	store, err := cli.OpenStore(args.DB)
	if err != nil {
		apperrors.Report(os.Stderr, err)
		return 1
	}
	defer store.Close()

	appCtx := cli.NewContext(store, settings)
	appCtx.SettingsPath = settingsPath

	if err := kctx.Run(appCtx); err != nil {
		apperrors.Report(os.Stderr, err)
		return 1
	}
	return 0
}

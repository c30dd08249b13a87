package constants

const (
	AppName            = "daytrack"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/daytrack/daytrack.db"
	DefaultSettings    = "~/.config/daytrack/settings.toml"
	Version            = "v0.3.0"

	// ConnectionEnvVar overrides the PostgreSQL connection string
	ConnectionEnvVar = "DAYTRACK_DB_CONNECTION"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "daytrack-"
	BackupFileSuffix = ".db"
)

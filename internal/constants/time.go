package constants

const (
	// DateKeyFormat is the storage key for every date-keyed row (DD-MM-YYYY).
	// Existing databases depend on it byte for byte.
	DateKeyFormat = "02-01-2006"

	// DateFormat is the ISO form accepted on the command line (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat is used for created_at columns
	TimestampFormat = "2006-01-02 15:04:05.000000"

	HoursPerDay = 24
)

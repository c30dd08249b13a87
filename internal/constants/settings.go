package constants

const (
	// Stats windows
	DefaultStatsWindowDays = 30
	HeatmapWindowDays      = 365

	// Activity codes are one or two characters
	MaxActivityCodeLen = 2

	DefaultTimezone = "Local"

	// Habit completion bands for progress output
	RateBandHigh   = 0.70
	RateBandMedium = 0.50
)

// DefaultHabits is provisioned when no habit is known yet.
var DefaultHabits = []string{
	"wake_up_7",
	"study",
	"project",
	"github",
	"exercise",
	"productive_day",
	"journal",
	"reading",
	"plan_tomorrow",
	"go_to_bed_22",
}

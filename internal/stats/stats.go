// Package stats derives read-only summaries from stored tracker data.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/daytrack/internal/constants"
	"github.com/julianstephens/daytrack/internal/models"
	"github.com/julianstephens/daytrack/internal/storage"
)

type Service struct {
	store storage.Provider
	clock func() time.Time
}

// New returns a Service reading from store. clock supplies "now"; the calendar
// day is taken in the clock's own location.
func New(store storage.Provider, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{store: store, clock: clock}
}

func (s *Service) today() models.Date {
	return models.DateOf(s.clock())
}

// DailyHabitRatio is the share of known habits completed on date. The
// denominator is the current habit set, also for past dates. With no habits
// the ratio is 0.
func (s *Service) DailyHabitRatio(date models.Date) (float64, error) {
	names, err := s.store.ListHabitNames()
	if err != nil {
		return 0, fmt.Errorf("failed to list habits: %w", err)
	}
	if len(names) == 0 {
		return 0, nil
	}
	completed, err := s.store.CountCompletedHabits(date)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed habits: %w", err)
	}
	return float64(completed) / float64(len(names)), nil
}

// CategoryCount is the number of coded hours of one legend category.
type CategoryCount struct {
	Label string
	Count int
}

// window returns the first day of the trailing window of n days ending today.
func (s *Service) window(days int) (models.Date, models.Date, error) {
	if days <= 0 {
		return models.Date{}, models.Date{}, fmt.Errorf("window must be at least one day, got %d", days)
	}
	end := s.today()
	return end.AddDays(-(days - 1)), end, nil
}

// ActivityTally counts coded hours per legend category over the trailing
// window. Empty and unknown codes are skipped. Results are ordered by count,
// highest first, then by label.
func (s *Service) ActivityTally(days int) ([]CategoryCount, error) {
	start, end, err := s.window(days)
	if err != nil {
		return nil, err
	}
	activities, err := s.store.ListActivitiesBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}

	counts := make(map[string]int)
	for _, a := range activities {
		label, ok := models.LegendLabel(a.Code)
		if !ok {
			continue
		}
		counts[label]++
	}

	tally := make([]CategoryCount, 0, len(counts))
	for label, n := range counts {
		tally = append(tally, CategoryCount{Label: label, Count: n})
	}
	sort.Slice(tally, func(i, j int) bool {
		if tally[i].Count != tally[j].Count {
			return tally[i].Count > tally[j].Count
		}
		return tally[i].Label < tally[j].Label
	})
	return tally, nil
}

// HabitRate summarizes one habit over a window.
type HabitRate struct {
	Name      string
	Recorded  int
	Completed int
	Rate      float64
}

// Band is the completion band of Rate.
func (r HabitRate) Band() string {
	return RateBand(r.Rate)
}

// HabitRates reports per-habit completion over the trailing window, in the
// order of ListHabitNames. Habits with no record in the window are omitted.
func (s *Service) HabitRates(days int) ([]HabitRate, error) {
	start, end, err := s.window(days)
	if err != nil {
		return nil, err
	}
	names, err := s.store.ListHabitNames()
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	statuses, err := s.store.ListHabitStatusesBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to read habit statuses: %w", err)
	}

	byName := make(map[string]*HabitRate, len(names))
	for _, name := range names {
		byName[name] = &HabitRate{Name: name}
	}
	for _, st := range statuses {
		r, ok := byName[st.HabitName]
		if !ok {
			continue
		}
		r.Recorded++
		if st.Completed {
			r.Completed++
		}
	}

	var rates []HabitRate
	for _, name := range names {
		r := byName[name]
		if r.Recorded == 0 {
			continue
		}
		r.Rate = float64(r.Completed) / float64(r.Recorded)
		rates = append(rates, *r)
	}
	return rates, nil
}

const (
	BandHigh   = "high"
	BandMedium = "medium"
	BandLow    = "low"
)

// RateBand buckets a completion rate for display.
func RateBand(rate float64) string {
	switch {
	case rate >= constants.RateBandHigh:
		return BandHigh
	case rate >= constants.RateBandMedium:
		return BandMedium
	default:
		return BandLow
	}
}

package stats

import (
	"fmt"
	"time"

	"github.com/julianstephens/daytrack/internal/constants"
	"github.com/julianstephens/daytrack/internal/models"
)

// FutureScore marks days after today. It is distinct from a real score of 0.
const FutureScore = -1.0

// Cell is one day of the heatmap.
type Cell struct {
	Date   models.Date
	Score  float64
	Future bool
}

// Heatmap holds one cell per day, oldest first. The last cell is the
// Saturday on or after today.
type Heatmap struct {
	Cells []Cell
	Today models.Date
}

func (h Heatmap) Empty() bool {
	return len(h.Cells) == 0
}

// Weeks lays the cells out in Sunday-first columns. Slots before the first
// cell are nil.
func (h Heatmap) Weeks() [][7]*Cell {
	if h.Empty() {
		return nil
	}
	var weeks [][7]*Cell
	var week [7]*Cell
	for i := range h.Cells {
		c := &h.Cells[i]
		wd := c.Date.Weekday()
		if wd == time.Sunday && i > 0 {
			weeks = append(weeks, week)
			week = [7]*Cell{}
		}
		week[wd] = c
	}
	return append(weeks, week)
}

// WeekEnd returns the Saturday on or after d.
func WeekEnd(d models.Date) models.Date {
	return d.AddDays((int(time.Saturday) - int(d.Weekday()) + 7) % 7)
}

// Heatmap scores every day of the window ending on the Saturday on or after
// today: completed habits over the current habit count. With no habits the
// heatmap is empty.
func (s *Service) Heatmap() (Heatmap, error) {
	today := s.today()
	names, err := s.store.ListHabitNames()
	if err != nil {
		return Heatmap{}, fmt.Errorf("failed to list habits: %w", err)
	}
	if len(names) == 0 {
		return Heatmap{Today: today}, nil
	}

	end := WeekEnd(today)
	start := end.AddDays(-constants.HeatmapWindowDays)

	statuses, err := s.store.ListHabitStatusesBetween(start, today)
	if err != nil {
		return Heatmap{}, fmt.Errorf("failed to read habit statuses: %w", err)
	}
	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[name] = true
	}
	completed := make(map[models.Date]int)
	for _, st := range statuses {
		if st.Completed && known[st.HabitName] {
			completed[st.Date]++
		}
	}

	cells := make([]Cell, 0, constants.HeatmapWindowDays+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		if d.After(today) {
			cells = append(cells, Cell{Date: d, Score: FutureScore, Future: true})
			continue
		}
		cells = append(cells, Cell{Date: d, Score: float64(completed[d]) / float64(len(names))})
	}
	return Heatmap{Cells: cells, Today: today}, nil
}

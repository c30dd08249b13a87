package reports

import (
	"errors"
	"fmt"

	"github.com/julianstephens/daytrack/internal/cli"
	"github.com/julianstephens/daytrack/internal/stats"
)

type StatsCmd struct {
	Ratio      StatsRatioCmd      `cmd:"" help:"Share of habits completed on a day."`
	Heatmap    StatsHeatmapCmd    `cmd:"" help:"Habit completion heatmap for the last year."`
	Activities StatsActivitiesCmd `cmd:"" help:"Hours per activity over a trailing window."`
	Habits     StatsHabitsCmd     `cmd:"" help:"Completion rate per habit over a trailing window."`
}

type StatsRatioCmd struct {
	Date string `help:"Date in YYYY-MM-DD or DD-MM-YYYY format (default: today)." default:""`
}

func (c *StatsRatioCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	ratio, err := ctx.Stats().DailyHabitRatio(date)
	if err != nil {
		return err
	}
	ctx.Printf("%s  %s %s\n", date, cli.ProgressBar(ratio, 20),
		cli.BandStyle(stats.RateBand(ratio)).Render(cli.Percent(ratio)))
	return nil
}

type StatsHeatmapCmd struct{}

func (c *StatsHeatmapCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	h, err := ctx.Stats().Heatmap()
	if err != nil {
		return err
	}
	if h.Empty() {
		ctx.Println("No habits to chart.")
		return nil
	}

	first := h.Cells[0].Date
	ctx.Println(cli.HeaderStyle.Render(fmt.Sprintf("Habit completion %s to %s", first.ISO(), h.Today.ISO())))
	ctx.Printf("%s", cli.RenderHeatmap(h))
	return nil
}

// WindowFlag is shared by the windowed stats commands. Zero means the
// configured default.
type WindowFlag struct {
	Days int `help:"Trailing window in days, ending today (default: stats_window_days setting)." default:"0"`
}

func (w *WindowFlag) Validate() error {
	if w.Days < 0 {
		return errors.New("--days must be positive")
	}
	return nil
}

func (w *WindowFlag) days(ctx *cli.Context) int {
	if w.Days > 0 {
		return w.Days
	}
	return ctx.StatsWindow()
}

type StatsActivitiesCmd struct {
	WindowFlag `embed:""`
}

func (c *StatsActivitiesCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	days := c.days(ctx)

	tally, err := ctx.Stats().ActivityTally(days)
	if err != nil {
		return err
	}
	if len(tally) == 0 {
		ctx.Printf("No activities recorded in the last %d days.\n", days)
		return nil
	}

	total := 0
	for _, cc := range tally {
		total += cc.Count
	}

	ctx.Println(cli.HeaderStyle.Render(fmt.Sprintf("Activities, last %d days", days)))
	tbl := cli.NewTable()
	tbl.AddRow("ACTIVITY", "HOURS", "SHARE", "")
	for _, cc := range tally {
		share := float64(cc.Count) / float64(total)
		tbl.AddRow(cc.Label, cc.Count, cli.Percent(share), cli.ProgressBar(share, 20))
	}
	ctx.Println(tbl)
	return nil
}

type StatsHabitsCmd struct {
	WindowFlag `embed:""`
}

func (c *StatsHabitsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	days := c.days(ctx)

	rates, err := ctx.Stats().HabitRates(days)
	if err != nil {
		return err
	}
	if len(rates) == 0 {
		ctx.Printf("No habit records in the last %d days.\n", days)
		return nil
	}

	ctx.Println(cli.HeaderStyle.Render(fmt.Sprintf("Habits, last %d days", days)))
	tbl := cli.NewTable()
	tbl.AddRow("HABIT", "DONE", "RATE", "")
	for _, r := range rates {
		tbl.AddRow(r.Name,
			fmt.Sprintf("%d/%d", r.Completed, r.Recorded),
			cli.BandStyle(r.Band()).Render(cli.Percent(r.Rate)),
			cli.ProgressBar(r.Rate, 20))
	}
	ctx.Println(tbl)
	return nil
}

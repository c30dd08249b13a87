package reports

import (
	"github.com/julianstephens/daytrack/internal/cli"
	"github.com/julianstephens/daytrack/internal/cli/activities"
	"github.com/julianstephens/daytrack/internal/cli/habits"
	"github.com/julianstephens/daytrack/internal/cli/tasks"
	"github.com/julianstephens/daytrack/internal/storage"
)

// DayCmd shows everything recorded for one day.
type DayCmd struct {
	Date string `help:"Date in YYYY-MM-DD or DD-MM-YYYY format (default: today)." default:""`
}

func (c *DayCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	ctx.Println(cli.HeaderStyle.Render(date.String() + " (" + date.Weekday().String() + ")"))
	ctx.Println()

	ctx.Println(cli.HeaderStyle.Render("Activities"))
	acts, err := ctx.Store.ListActivities(date)
	if err != nil {
		return err
	}
	if len(acts) == 0 {
		ctx.Println(cli.MutedStyle.Render("  none recorded"))
	} else {
		ctx.Println(activities.Table(acts))
	}
	ctx.Println()

	days, err := storage.HabitsForDate(ctx.Store, ctx.DefaultHabits(), date)
	if err != nil {
		return err
	}
	ratio, err := ctx.Stats().DailyHabitRatio(date)
	if err != nil {
		return err
	}
	ctx.Printf("%s %s\n", cli.HeaderStyle.Render("Habits"), cli.Percent(ratio))
	ctx.Println(habits.Table(days))
	ctx.Println()

	ctx.Println(cli.HeaderStyle.Render("Tasks"))
	list, err := ctx.Store.ListTasks(date)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ctx.Println(cli.MutedStyle.Render("  none"))
		return nil
	}
	ctx.Println(tasks.Table(list))
	completed, total, err := ctx.Store.TaskStats(date)
	if err != nil {
		return err
	}
	ctx.Printf("%d/%d completed\n", completed, total)
	return nil
}

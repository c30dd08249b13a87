package habits

import (
	"fmt"

	"github.com/julianstephens/daytrack/internal/cli"
	"github.com/julianstephens/daytrack/internal/storage"
	"github.com/julianstephens/daytrack/internal/validation"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Status HabitStatusCmd `cmd:"" help:"Show habit status for a day."`
	Mark   HabitMarkCmd   `cmd:"" help:"Mark a habit as done for a day."`
}

type HabitAddCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *HabitAddCmd) Validate() error {
	name, err := validation.HabitName(c.Name)
	if err != nil {
		return err
	}
	c.Name = name
	return nil
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	if err := ctx.Store.EnsureHabit(c.Name); err != nil {
		return err
	}
	ctx.Printf("Added habit: %s\n", c.Name)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	tbl := cli.NewTable()
	tbl.AddRow("NAME", "SINCE")
	for _, h := range habits {
		tbl.AddRow(h.Name, h.CreatedAt.Local().Format("2006-01-02"))
	}
	ctx.Println(tbl)
	return nil
}

type HabitStatusCmd struct {
	Date string `help:"Date in YYYY-MM-DD or DD-MM-YYYY format (default: today)." default:""`
}

func (c *HabitStatusCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	days, err := storage.HabitsForDate(ctx.Store, ctx.DefaultHabits(), date)
	if err != nil {
		return err
	}

	ctx.Println(cli.HeaderStyle.Render("Habits for " + date.String()))
	ctx.Println(Table(days))

	done := 0
	for _, d := range days {
		if d.Completed {
			done++
		}
	}
	ctx.Printf("%d/%d completed\n", done, len(days))
	return nil
}

// Table renders habit completion as a checklist.
func Table(days []storage.HabitDay) fmt.Stringer {
	tbl := cli.NewTable()
	for _, d := range days {
		tbl.AddRow(cli.Checkbox(d.Completed), d.Name)
	}
	return tbl
}

type HabitMarkCmd struct {
	Name string `arg:"" help:"Habit name."`
	Date string `help:"Date in YYYY-MM-DD or DD-MM-YYYY format (default: today)." default:""`
	Undo bool   `help:"Mark the habit as not done."`
}

func (c *HabitMarkCmd) Validate() error {
	name, err := validation.HabitName(c.Name)
	if err != nil {
		return err
	}
	c.Name = name
	return nil
}

func (c *HabitMarkCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	names, err := storage.LoadHabits(ctx.Store, ctx.DefaultHabits())
	if err != nil {
		return err
	}
	known := false
	for _, n := range names {
		if n == c.Name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("habit %q not found, add it with 'daytrack habit add'", c.Name)
	}

	if err := ctx.Store.SetHabitStatus(c.Name, date, !c.Undo); err != nil {
		return err
	}

	if c.Undo {
		ctx.Printf("Unmarked habit %q for %s\n", c.Name, date)
	} else {
		ctx.Printf("Marked habit %q for %s\n", c.Name, date)
	}
	return nil
}

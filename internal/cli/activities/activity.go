package activities

import (
	"fmt"

	"github.com/julianstephens/daytrack/internal/cli"
	"github.com/julianstephens/daytrack/internal/models"
	"github.com/julianstephens/daytrack/internal/validation"
)

type ActivityCmd struct {
	Set    ActivitySetCmd    `cmd:"" help:"Record the activity code for an hour."`
	Get    ActivityGetCmd    `cmd:"" help:"Show the activity code of an hour."`
	List   ActivityListCmd   `cmd:"" help:"List the recorded hours of a day."`
	Legend ActivityLegendCmd `cmd:"" help:"Show the activity codes."`
}

type ActivitySetCmd struct {
	Hour int    `arg:"" help:"Hour of the day (0-23)."`
	Code string `arg:"" optional:"" help:"Activity code from the legend. Omit to clear the hour."`
	Date string `help:"Date in YYYY-MM-DD or DD-MM-YYYY format (default: today)." default:""`
}

func (c *ActivitySetCmd) Validate() error {
	if err := validation.Hour(c.Hour); err != nil {
		return err
	}
	code, err := validation.ActivityCode(c.Code)
	if err != nil {
		return err
	}
	c.Code = code
	return nil
}

func (c *ActivitySetCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	if err := ctx.Store.SetActivity(date, c.Hour, c.Code); err != nil {
		return err
	}

	if c.Code == "" {
		ctx.Printf("Cleared %s %02d:00\n", date, c.Hour)
		return nil
	}
	name, _ := models.LegendName(c.Code)
	ctx.Printf("Set %s %02d:00 to %s (%s)\n", date, c.Hour, c.Code, name)
	return nil
}

type ActivityGetCmd struct {
	Hour int    `arg:"" help:"Hour of the day (0-23)."`
	Date string `help:"Date in YYYY-MM-DD or DD-MM-YYYY format (default: today)." default:""`
}

func (c *ActivityGetCmd) Validate() error {
	return validation.Hour(c.Hour)
}

func (c *ActivityGetCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	code, found, err := ctx.Store.GetActivity(date, c.Hour)
	if err != nil {
		return err
	}
	if !found || code == "" {
		ctx.Printf("%s %02d:00 -\n", date, c.Hour)
		return nil
	}
	ctx.Printf("%s %02d:00 %s\n", date, c.Hour, describe(code))
	return nil
}

type ActivityListCmd struct {
	Date string `help:"Date in YYYY-MM-DD or DD-MM-YYYY format (default: today)." default:""`
}

func (c *ActivityListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	acts, err := ctx.Store.ListActivities(date)
	if err != nil {
		return err
	}
	if len(acts) == 0 {
		ctx.Printf("No activities recorded for %s.\n", date)
		return nil
	}

	ctx.Println(cli.HeaderStyle.Render("Activities for " + date.String()))
	ctx.Println(Table(acts))
	return nil
}

type ActivityLegendCmd struct{}

func (c *ActivityLegendCmd) Run(ctx *cli.Context) error {
	tbl := cli.NewTable()
	tbl.AddRow("CODE", "ACTIVITY")
	for _, code := range models.LegendCodes() {
		name, _ := models.LegendName(code)
		tbl.AddRow(code, name)
	}
	ctx.Println(tbl)
	return nil
}

// Table renders one row per hour. Cleared hours show a dash.
func Table(acts []models.Activity) fmt.Stringer {
	tbl := cli.NewTable()
	tbl.AddRow("HOUR", "CODE", "ACTIVITY")
	for _, a := range acts {
		if a.Code == "" {
			tbl.AddRow(fmt.Sprintf("%02d:00", a.Hour), "-", "")
			continue
		}
		name, ok := models.LegendName(a.Code)
		if !ok {
			name = "unknown"
		}
		tbl.AddRow(fmt.Sprintf("%02d:00", a.Hour), a.Code, name)
	}
	return tbl
}

func describe(code string) string {
	if name, ok := models.LegendName(code); ok {
		return fmt.Sprintf("%s (%s)", code, name)
	}
	return code
}

package tasks

import (
	"fmt"

	"github.com/julianstephens/daytrack/internal/cli"
	"github.com/julianstephens/daytrack/internal/models"
	"github.com/julianstephens/daytrack/internal/validation"
)

type TaskCmd struct {
	Add    TaskAddCmd    `cmd:"" help:"Add a new task."`
	List   TaskListCmd   `cmd:"" help:"List the tasks of a day."`
	Done   TaskDoneCmd   `cmd:"" help:"Mark a task as completed."`
	Undone TaskUndoneCmd `cmd:"" help:"Mark a task as not completed."`
	Edit   TaskEditCmd   `cmd:"" help:"Change the text of a task."`
	Delete TaskDeleteCmd `cmd:"" help:"Delete a task."`
	Stats  TaskStatsCmd  `cmd:"" help:"Show completed and total tasks of a day."`
}

type TaskAddCmd struct {
	Text string `arg:"" help:"Task description."`
	Date string `help:"Date in YYYY-MM-DD or DD-MM-YYYY format (default: today)." default:""`
}

func (c *TaskAddCmd) Validate() error {
	text, err := validation.TaskText(c.Text)
	if err != nil {
		return err
	}
	c.Text = text
	return nil
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	id, err := ctx.Store.AddTask(date, c.Text, false)
	if err != nil {
		return err
	}
	ctx.Printf("Added task %d for %s: %s\n", id, date, c.Text)
	return nil
}

type TaskListCmd struct {
	Date string `help:"Date in YYYY-MM-DD or DD-MM-YYYY format (default: today)." default:""`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	tasks, err := ctx.Store.ListTasks(date)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		ctx.Printf("No tasks for %s.\n", date)
		return nil
	}

	ctx.Println(cli.HeaderStyle.Render("Tasks for " + date.String()))
	ctx.Println(Table(tasks))
	return nil
}

// Table renders tasks in creation order.
func Table(tasks []models.Task) fmt.Stringer {
	tbl := cli.NewTable()
	tbl.AddRow("ID", "", "TASK")
	for _, t := range tasks {
		tbl.AddRow(t.ID, cli.Checkbox(t.Completed), t.Text)
	}
	return tbl
}

// lookup loads the store and fetches the task. Point mutations on a missing
// id are no-ops in storage, so the CLI reports them here instead.
func lookup(ctx *cli.Context, id int64) (models.Task, error) {
	if err := ctx.Store.Load(); err != nil {
		return models.Task{}, err
	}
	return ctx.Store.GetTask(id)
}

type TaskDoneCmd struct {
	ID int64 `arg:"" help:"Task ID."`
}

func (c *TaskDoneCmd) Run(ctx *cli.Context) error {
	task, err := lookup(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Store.SetTaskCompleted(task.ID, true); err != nil {
		return err
	}
	ctx.Printf("Completed task %d: %s\n", task.ID, task.Text)
	return nil
}

type TaskUndoneCmd struct {
	ID int64 `arg:"" help:"Task ID."`
}

func (c *TaskUndoneCmd) Run(ctx *cli.Context) error {
	task, err := lookup(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Store.SetTaskCompleted(task.ID, false); err != nil {
		return err
	}
	ctx.Printf("Reopened task %d: %s\n", task.ID, task.Text)
	return nil
}

type TaskEditCmd struct {
	ID   int64  `arg:"" help:"Task ID."`
	Text string `arg:"" help:"New task description."`
}

func (c *TaskEditCmd) Validate() error {
	text, err := validation.TaskText(c.Text)
	if err != nil {
		return err
	}
	c.Text = text
	return nil
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	task, err := lookup(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Store.SetTaskText(task.ID, c.Text); err != nil {
		return err
	}
	ctx.Printf("Updated task %d: %s\n", task.ID, c.Text)
	return nil
}

type TaskDeleteCmd struct {
	ID  int64 `arg:"" help:"Task ID."`
	Yes bool  `short:"y" help:"Do not ask for confirmation."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	task, err := lookup(ctx, c.ID)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.Ask(fmt.Sprintf("Delete task %d (%s)?", task.ID, task.Text))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.Store.DeleteTask(task.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted task %d: %s\n", task.ID, task.Text)
	return nil
}

type TaskStatsCmd struct {
	Date string `help:"Date in YYYY-MM-DD or DD-MM-YYYY format (default: today)." default:""`
}

func (c *TaskStatsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}

	completed, total, err := ctx.Store.TaskStats(date)
	if err != nil {
		return err
	}
	ratio := 0.0
	if total > 0 {
		ratio = float64(completed) / float64(total)
	}
	ctx.Printf("%s  %d/%d tasks completed  %s %s\n", date, completed, total, cli.ProgressBar(ratio, 20), cli.Percent(ratio))
	return nil
}

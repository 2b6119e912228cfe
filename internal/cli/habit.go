package cli

import (
	"fmt"
	"time"

	"github.com/jmorrow/cognitrack/internal/constants"
	"github.com/jmorrow/cognitrack/internal/models"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits with streaks."`
	Toggle HabitToggleCmd `cmd:"" help:"Toggle a habit's completion for a day."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its history."`
}

type HabitAddCmd struct {
	Name  string `arg:"" help:"Habit name."`
	Color string `help:"Color tag (emerald, blue, violet, cyan, amber, rose, slate)." default:"emerald"`
	Icon  string `help:"Optional icon name." default:""`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	habit, err := ctx.Engine.AddHabit(c.Name, models.Color(c.Color), c.Icon)
	if err != nil {
		return err
	}
	fmt.Printf("Added habit: %s (%s)\n", habit.Name, habit.ID)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *Context) error {
	habits := ctx.Engine.Habits()
	if len(habits) == 0 {
		fmt.Println("No habits yet. Add one with 'cognitrack habit add'.")
		return nil
	}

	today := ctx.Today()
	done := map[string]bool{}
	for _, comp := range ctx.Engine.Completions() {
		if comp.Date == today && comp.Completed {
			done[comp.HabitID] = true
		}
	}

	for _, h := range habits {
		mark := " "
		if done[h.ID] {
			mark = "x"
		}
		streak := ctx.Engine.Streak(h.ID)
		fmt.Printf("[%s] %-24s %-8s streak: %d\n", mark, h.Name, h.Color, streak)
	}
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `help:"Day to toggle (YYYY-MM-DD, default today)." default:""`
}

func (c *HabitToggleCmd) Run(ctx *Context) error {
	habit, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	day := c.Date
	if day == "" {
		day = ctx.Today()
	} else if _, err := time.Parse(constants.DateFormat, day); err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", day)
	}

	comp := ctx.Engine.ToggleCompletion(habit.ID, day)
	if comp.Completed {
		fmt.Printf("Completed %q for %s\n", habit.Name, day)
	} else {
		fmt.Printf("Unmarked %q for %s\n", habit.Name, day)
	}
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	habit, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	ctx.Engine.DeleteHabit(habit.ID)
	fmt.Printf("Deleted habit %q and its history\n", habit.Name)
	return nil
}

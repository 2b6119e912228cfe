package cli

import (
	"fmt"
	"sort"
)

type SlotCmd struct {
	Set   SlotSetCmd   `cmd:"" help:"Plan a habit into a time slot."`
	Clear SlotClearCmd `cmd:"" help:"Clear a planned time slot."`
	List  SlotListCmd  `cmd:"" help:"Show planned slots for a day."`
}

type SlotSetCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Time  string `arg:"" help:"Time of day (HH:MM)."`
	Date  string `help:"Day to plan (YYYY-MM-DD, default today)." default:""`
}

func (c *SlotSetCmd) Run(ctx *Context) error {
	habit, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	day := c.Date
	if day == "" {
		day = ctx.Today()
	}
	if err := ctx.Planner.Assign(day, c.Time, habit.ID); err != nil {
		return err
	}
	fmt.Printf("Planned %q at %s on %s\n", habit.Name, c.Time, day)
	return nil
}

type SlotClearCmd struct {
	Time string `arg:"" help:"Time of day (HH:MM)."`
	Date string `help:"Day to clear (YYYY-MM-DD, default today)." default:""`
}

func (c *SlotClearCmd) Run(ctx *Context) error {
	day := c.Date
	if day == "" {
		day = ctx.Today()
	}
	if err := ctx.Planner.Clear(day, c.Time); err != nil {
		return err
	}
	fmt.Printf("Cleared %s on %s\n", c.Time, day)
	return nil
}

type SlotListCmd struct {
	Date string `help:"Day to show (YYYY-MM-DD, default today)." default:""`
}

func (c *SlotListCmd) Run(ctx *Context) error {
	day := c.Date
	if day == "" {
		day = ctx.Today()
	}
	slots, err := ctx.Planner.Day(day)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		fmt.Printf("Nothing planned for %s.\n", day)
		return nil
	}

	names := map[string]string{}
	for _, h := range ctx.Engine.Habits() {
		names[h.ID] = h.Name
	}

	times := make([]string, 0, len(slots))
	for tod := range slots {
		times = append(times, tod)
	}
	sort.Strings(times)

	for _, tod := range times {
		name, ok := names[slots[tod]]
		if !ok {
			name = slots[tod]
		}
		fmt.Printf("%s  %s\n", tod, name)
	}
	return nil
}

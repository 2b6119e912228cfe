package cli

import "fmt"

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *Context) error {
	habits := ctx.Engine.Habits()
	if len(habits) == 0 {
		fmt.Println("No habits to report on.")
		return nil
	}

	for _, h := range habits {
		fmt.Printf("%-24s streak: %d\n", h.Name, ctx.Engine.Streak(h.ID))
	}
	fmt.Printf("\nBest streak: %d days\n", ctx.Engine.BestStreak())
	return nil
}

type WeekCmd struct{}

func (c *WeekCmd) Run(ctx *Context) error {
	for _, day := range ctx.Engine.WeeklyCompletionData() {
		bar := ""
		for i := 0; i < day.Completed; i++ {
			bar += "#"
		}
		fmt.Printf("%s %s  %2d/%-2d %s\n", day.Day, day.Date, day.Completed, day.Total, bar)
	}
	return nil
}

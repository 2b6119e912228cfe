package cli

import (
	"context"
	"fmt"

	"github.com/jmorrow/cognitrack/internal/insight"
)

type InsightCmd struct {
	Model string `help:"Override the analysis model." default:""`
}

func (c *InsightCmd) Run(ctx *Context) error {
	key, err := insight.ResolveKey(ctx.Cache)
	if err != nil {
		return err
	}

	var opts []insight.Option
	if c.Model != "" {
		opts = append(opts, insight.WithModel(c.Model))
	}
	analyzer := insight.New(key, opts...)

	fmt.Println("Analyzing your week...")
	resp, err := analyzer.Analyze(context.Background(), ctx.Engine.Habits(), ctx.Engine.Completions())
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n\nPatterns:\n", resp.Summary)
	for _, p := range resp.Patterns {
		fmt.Printf("  - %s\n", p)
	}
	fmt.Println("\nTips:")
	for _, t := range resp.Tips {
		fmt.Printf("  - %s\n", t)
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmorrow/cognitrack/internal/insight"
)

type ApikeyCmd struct {
	Set   ApikeySetCmd   `cmd:"" help:"Store the insight-service API key."`
	Show  ApikeyShowCmd  `cmd:"" help:"Show whether an API key is configured."`
	Clear ApikeyClearCmd `cmd:"" help:"Remove the stored API key."`
}

type ApikeySetCmd struct {
	Key string `arg:"" help:"Insight-service API key."`
}

func (c *ApikeySetCmd) Run(ctx *Context) error {
	if strings.TrimSpace(c.Key) == "" {
		return errors.New("api key cannot be empty")
	}
	if err := insight.StoreKey(ctx.Cache, c.Key); err != nil {
		return err
	}
	fmt.Println("API key stored.")
	return nil
}

type ApikeyShowCmd struct{}

func (c *ApikeyShowCmd) Run(ctx *Context) error {
	key, err := insight.ResolveKey(ctx.Cache)
	if err != nil {
		if errors.Is(err, insight.ErrNoCredential) {
			fmt.Println("No API key configured.")
			return nil
		}
		return err
	}
	fmt.Printf("API key configured (%s...%s)\n", key[:min(4, len(key))], key[max(0, len(key)-4):])
	return nil
}

type ApikeyClearCmd struct{}

func (c *ApikeyClearCmd) Run(ctx *Context) error {
	if err := insight.ClearKey(ctx.Cache); err != nil {
		return err
	}
	fmt.Println("API key removed.")
	return nil
}

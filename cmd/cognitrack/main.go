package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/jmorrow/cognitrack/internal/auth"
	"github.com/jmorrow/cognitrack/internal/cache"
	"github.com/jmorrow/cognitrack/internal/cli"
	"github.com/jmorrow/cognitrack/internal/constants"
	apperrors "github.com/jmorrow/cognitrack/internal/errors"
	"github.com/jmorrow/cognitrack/internal/logger"
	"github.com/jmorrow/cognitrack/internal/planner"
	"github.com/jmorrow/cognitrack/internal/remote"
	"github.com/jmorrow/cognitrack/internal/remote/postgres"
	"github.com/jmorrow/cognitrack/internal/sync"
)

var CLI struct {
	Version kong.VersionFlag
	Cache   string `help:"Cache file path. A .db extension selects the SQLite provider." default:"${cache_path}" env:"COGNITRACK_CACHE"`
	Remote  string `help:"PostgreSQL connection string for the remote sync store." env:"COGNITRACK_REMOTE" default:""`
	AuthURL string `help:"Identity provider base URL." env:"COGNITRACK_AUTH_URL" default:""`
	AuthKey string `help:"Identity provider API key." env:"COGNITRACK_AUTH_KEY" default:""`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Habit         cli.HabitCmd         `cmd:"" help:"Manage habits."`
	Stats         cli.StatsCmd         `cmd:"" help:"Show per-habit streaks."`
	Week          cli.WeekCmd          `cmd:"" help:"Show the last 7 days of completions."`
	Slot          cli.SlotCmd          `cmd:"" help:"Plan habits into time slots."`
	Insight       cli.InsightCmd       `cmd:"" help:"Generate an AI analysis of your week."`
	Login         cli.LoginCmd         `cmd:"" help:"Sign in and sync habits to your account."`
	Signup        cli.SignupCmd        `cmd:"" help:"Create an account."`
	Logout        cli.LogoutCmd        `cmd:"" help:"Sign out and return to local-only mode."`
	ResetPassword cli.ResetPasswordCmd `cmd:"" name:"reset-password" help:"Request a password reset email."`
	Whoami        cli.WhoamiCmd        `cmd:"" help:"Show the current session."`
	Apikey        cli.ApikeyCmd        `cmd:"" help:"Manage the insight-service API key."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with local-first storage and optional account sync"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":    constants.Version,
			"cache_path": constants.DefaultCachePath,
		},
	)

	cachePath := expandHome(CLI.Cache)
	configDir := filepath.Dir(cachePath)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir}); err != nil {
		apperrors.Fatal(err)
	}

	var store cache.Store
	if strings.HasSuffix(cachePath, ".db") {
		store = cache.NewSQLiteStore(cachePath)
	} else {
		store = cache.NewJSONStore(cachePath)
	}
	if err := store.Init(); err != nil {
		apperrors.Fatal(err)
	}

	var remoteStore remote.Store
	if CLI.Remote != "" {
		pg := postgres.New(CLI.Remote)
		if err := pg.Init(); err != nil {
			apperrors.Fatal(err)
		}
		remoteStore = pg
	}

	engine := sync.New(store, remoteStore)
	if err := engine.Start(); err != nil {
		apperrors.Fatal(err)
	}
	defer engine.Stop()

	var authClient *auth.Client
	if CLI.AuthURL != "" && remoteStore != nil {
		authClient = auth.New(CLI.AuthURL, CLI.AuthKey, remoteStore)
	}

	appCtx := &cli.Context{
		Engine:    engine,
		Planner:   planner.New(store),
		Cache:     store,
		Remote:    remoteStore,
		Auth:      authClient,
		ConfigDir: configDir,
	}

	// Restore the persisted session so successive invocations stay signed in.
	if remoteStore != nil {
		if cmd := ctx.Selected(); cmd == nil || (cmd.Name != "login" && cmd.Name != "signup") {
			if user, err := auth.LoadSession(configDir); err != nil {
				logger.Warn("failed to restore session", "error", err)
			} else if user != nil {
				if err := engine.SignIn(context.Background(), *user); err != nil {
					logger.Warn("failed to resume remote session", "error", err)
				}
			}
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		engine.Stop()
		apperrors.Fatal(err)
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jmorrow/cognitrack/internal/auth"
	"github.com/jmorrow/cognitrack/internal/models"
)

type LoginCmd struct {
	Email    string `arg:"" optional:"" help:"Account email."`
	Password string `help:"Account password (prompted when omitted)." default:""`
	Provider string `help:"Federated provider id (e.g. google.com)." default:""`
	Token    string `help:"OAuth access token for --provider." default:""`
}

func (c *LoginCmd) Run(ctx *Context) error {
	if err := ctx.RequireAuth(); err != nil {
		return err
	}

	var (
		user *models.User
		err  error
	)
	if c.Provider != "" {
		user, err = ctx.Auth.SignInWithProvider(context.Background(), c.Provider, c.Token)
	} else {
		if c.Email == "" {
			return errors.New("email is required unless --provider is given")
		}
		var password string
		password, err = resolvePassword(c.Password)
		if err != nil {
			return err
		}
		user, err = ctx.Auth.SignIn(context.Background(), c.Email, password)
	}
	if err != nil {
		return err
	}

	if err := ctx.Engine.SignIn(context.Background(), *user); err != nil {
		return err
	}
	if err := auth.SaveSession(ctx.ConfigDir, *user); err != nil {
		return err
	}

	fmt.Printf("Signed in as %s\n", displayName(user.DisplayName, user.Email))
	return nil
}

type SignupCmd struct {
	Email    string `arg:"" help:"Account email."`
	Name     string `help:"Display name." required:""`
	Password string `help:"Account password (prompted when omitted)." default:""`
}

func (c *SignupCmd) Run(ctx *Context) error {
	if err := ctx.RequireAuth(); err != nil {
		return err
	}

	password, err := resolvePassword(c.Password)
	if err != nil {
		return err
	}

	user, err := ctx.Auth.SignUp(context.Background(), c.Email, password, c.Name)
	if err != nil {
		return err
	}

	if err := ctx.Engine.SignIn(context.Background(), *user); err != nil {
		return err
	}
	if err := auth.SaveSession(ctx.ConfigDir, *user); err != nil {
		return err
	}

	fmt.Printf("Welcome, %s! Your local habits were migrated to your account.\n", c.Name)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	ctx.Engine.SignOut()
	if err := auth.ClearSession(ctx.ConfigDir); err != nil {
		return err
	}
	fmt.Println("Signed out. Your habits remain available locally.")
	return nil
}

type ResetPasswordCmd struct {
	Email string `arg:"" help:"Account email."`
}

func (c *ResetPasswordCmd) Run(ctx *Context) error {
	if err := ctx.RequireAuth(); err != nil {
		return err
	}
	if err := ctx.Auth.RequestPasswordReset(context.Background(), c.Email); err != nil {
		return err
	}
	fmt.Printf("Password reset email sent to %s\n", c.Email)
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *Context) error {
	user := ctx.Engine.User()
	if user == nil {
		fmt.Println("Not signed in (local-only mode).")
		return nil
	}
	fmt.Printf("%s <%s> [%s]\n", displayName(user.DisplayName, user.Email), user.Email, ctx.Engine.State())
	return nil
}

func resolvePassword(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return email
}

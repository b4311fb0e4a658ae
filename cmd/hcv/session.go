package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/ahmed-kaif/hcv-frontend/internal/auth"
	"github.com/ahmed-kaif/hcv-frontend/internal/models"
	"github.com/ahmed-kaif/hcv-frontend/internal/views"
)

func runLogin(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Password (optional, will prompt if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.prompt.fill(
		field{label: "Email", value: email},
		field{label: "Password", value: password, secret: true},
	); err != nil {
		return err
	}

	if err := c.app.Manager.Login(ctx, *email, *password); err != nil {
		return errors.New(models.Message(err, auth.MsgLoginFailed))
	}
	fmt.Fprintf(c.stdout, "Signed in as %s\n", c.subject())
	return nil
}

func runRegister(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	name := fs.String("name", "", "Full name")
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Password (optional, will prompt if omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.prompt.fill(
		field{label: "Name", value: name},
		field{label: "Email", value: email},
		field{label: "Password", value: password, secret: true},
	); err != nil {
		return err
	}

	if err := c.app.Manager.Register(ctx, *name, *email, *password); err != nil {
		if d := models.Detail(err); d != "" {
			return fmt.Errorf("registration failed: %s", d)
		}
		return fmt.Errorf("registration failed: %w", err)
	}
	fmt.Fprintf(c.stdout, "Account created. Signed in as %s\n", c.subject())
	return nil
}

func runLogout(ctx context.Context, c *cli, args []string) error {
	c.app.Manager.Logout(ctx)
	fmt.Fprintln(c.stdout, "Signed out.")
	return nil
}

func runStatus(ctx context.Context, c *cli, args []string) error {
	m := c.app.Manager
	session := m.Session()
	views.Status(c.stdout, m.Loading(), session)
	if !session.Authenticated {
		return nil
	}
	if session.Identity != nil && auth.Expired(*session.Identity, time.Now()) {
		fmt.Fprintln(c.stdout, "Token expired, the backend will reject it. Run `hcv login` again.")
	}
	if exp, err := c.app.Store.ExpiresAt(ctx); err == nil {
		fmt.Fprintf(c.stdout, "Stored until: %s\n", views.Date(models.Timestamp{Time: exp}))
	}
	fmt.Fprintf(c.stdout, "Backend: %s\n", c.app.Client.BaseURL())
	return nil
}

func (c *cli) subject() string {
	s := c.app.Manager.Session()
	if s.Identity != nil && s.Identity.Subject != "" {
		return s.Identity.Subject
	}
	return "unknown user"
}

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/ahmed-kaif/hcv-frontend/internal/account"
	"github.com/ahmed-kaif/hcv-frontend/internal/models"
	"github.com/ahmed-kaif/hcv-frontend/internal/ui"
	"github.com/ahmed-kaif/hcv-frontend/internal/views"
)

func runProfile(ctx context.Context, c *cli, args []string) error {
	if len(args) == 0 {
		p := c.app.Profile(c.prompt)
		u, err := p.Load(ctx)
		if err != nil {
			return err
		}
		views.Profile(c.stdout, u)
		return nil
	}

	switch args[0] {
	case "update":
		return runProfileUpdate(ctx, c, args[1:])
	case "delete":
		fs := flag.NewFlagSet("profile delete", flag.ContinueOnError)
		fs.SetOutput(c.stderr)
		yes := fs.Bool("yes", false, "Do not ask for confirmation")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := c.app.Profile(c.confirmer(*yes)).DeleteAccount(ctx); err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, "Account deleted. Signed out.")
		return nil
	}
	return fmt.Errorf("unknown profile command %q", args[0])
}

func runProfileUpdate(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("profile update", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	name := fs.String("name", "", "New name")
	email := fs.String("email", "", "New email")
	changePassword := fs.Bool("password", false, "Prompt for a new password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	upd := models.UserUpdate{Name: *name, Email: *email}
	if *changePassword {
		if err := c.prompt.fill(field{label: "New password", value: &upd.Password, secret: true}); err != nil {
			return err
		}
	}
	if upd == (models.UserUpdate{}) {
		return fmt.Errorf("nothing to update, pass -name, -email or -password")
	}

	u, err := c.app.Profile(c.prompt).Update(ctx, upd)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Profile updated.")
	views.Profile(c.stdout, u)
	return nil
}

func runUsers(ctx context.Context, c *cli, args []string) error {
	sub := ""
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	fs := flag.NewFlagSet("users "+sub, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	yes := fs.Bool("yes", false, "Do not ask for confirmation")

	// Flags are parsed per subcommand below, so read -yes when asked.
	p := c.app.Profile(ui.ConfirmFunc(func(question string) bool {
		return *yes || c.prompt.Confirm(question)
	}))
	load := func() error {
		u, err := p.Load(ctx)
		if err != nil {
			return err
		}
		if !u.IsAdmin {
			return account.ErrNotAdmin
		}
		return nil
	}

	switch sub {
	case "", "list":
		if err := load(); err != nil {
			return err
		}
		views.Users(c.stdout, p.Users())
		return nil
	case "show":
		id, err := parseWithID(fs, args)
		if err != nil {
			return err
		}
		if err := load(); err != nil {
			return err
		}
		u, err := p.ViewUser(ctx, id)
		if err != nil {
			return err
		}
		views.User(c.stdout, u)
		return nil
	case "delete":
		id, err := parseWithID(fs, args)
		if err != nil {
			return err
		}
		if err := load(); err != nil {
			return err
		}
		if err := p.DeleteUser(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "User #%d deleted.\n", id)
		views.Users(c.stdout, p.Users())
		return nil
	}
	return fmt.Errorf("unknown users command %q", sub)
}

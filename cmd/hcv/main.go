package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/ahmed-kaif/hcv-frontend/internal/app"
	"github.com/ahmed-kaif/hcv-frontend/internal/auth"
	"github.com/ahmed-kaif/hcv-frontend/internal/config"
	"github.com/ahmed-kaif/hcv-frontend/internal/ui"
)

const usage = `Usage: hcv [-api URL] [-state DIR] [-v] <command> [flags]

Commands:
  login            sign in with email and password
  register         create an account and sign in
  google-login     sign in through the browser
  logout           sign out
  status           show the current session
  predict          submit lab values for a prediction
  history          list past predictions
  show <id>        show one prediction
  delete <id>      delete one prediction (-list shows the rest)
  print <id>       write a printable report
  profile          show, update or delete your account
  users            list, show or delete accounts (admin)
`

// browser opens authorization pages; tests replace it.
var browser ui.Browser = ui.SystemBrowser

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	app    *app.App
	nav    *ui.Recorder
	prompt *prompter
	stdout io.Writer
	stderr io.Writer
}

type command func(ctx context.Context, c *cli, args []string) error

var commands = map[string]struct {
	run       command
	protected bool
}{
	"login":        {runLogin, false},
	"register":     {runRegister, false},
	"google-login": {runGoogleLogin, false},
	"logout":       {runLogout, false},
	"status":       {runStatus, false},
	"predict":      {runPredict, true},
	"history":      {runHistory, true},
	"show":         {runShow, true},
	"delete":       {runDelete, true},
	"print":        {runPrint, true},
	"profile":      {runProfile, true},
	"users":        {runUsers, true},
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("hcv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	apiURL := fs.String("api", "", "Backend base URL (default $HCV_API_URL)")
	stateDir := fs.String("state", "", "State directory (default $HCV_STATE_DIR)")
	verbose := fs.Bool("v", false, "Verbose logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("missing command")
	}
	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("unknown command %q", name)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *apiURL != "" {
		cfg.APIURL = strings.TrimRight(*apiURL, "/")
	}
	if *stateDir != "" {
		cfg.SetStateDir(*stateDir)
	}
	level := cfg.LogLevel
	if os.Getenv("HCV_LOG_LEVEL") == "" {
		level = slog.LevelWarn
	}
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(config.NewLogger(stderr, level))

	nav := ui.NewRecorder(8)
	open := ui.BrowserFunc(func(target string) error {
		fmt.Fprintf(stdout, "Open this page to continue:\n  %s\n", target)
		if !cfg.OpenBrowser {
			return nil
		}
		return browser.Open(target)
	})
	a, err := app.New(ctx, cfg, nav, open)
	if err != nil {
		return err
	}
	defer a.Close()
	a.Manager.Initialize(ctx)

	c := &cli{app: a, nav: nav, prompt: newPrompter(stdin, stdout), stdout: stdout, stderr: stderr}
	rest := fs.Args()[1:]
	if !cmd.protected {
		return cmd.run(ctx, c, rest)
	}

	view := a.Guard(nil).Protect(func(ctx context.Context) error {
		return cmd.run(ctx, c, rest)
	})
	if err := view(ctx); err != nil {
		if errors.Is(err, auth.ErrLoginRequired) {
			return fmt.Errorf("not signed in, run `hcv login` or `hcv google-login` first")
		}
		return err
	}
	return nil
}

// parseWithID parses flags around a single positional id, accepting both
// "cmd 5 -yes" and "cmd -yes 5".
func parseWithID(fs *flag.FlagSet, args []string) (int64, error) {
	var raw string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		raw, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if raw == "" {
		raw = fs.Arg(0)
	}
	if raw == "" {
		return 0, fmt.Errorf("missing id")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func (c *cli) confirmer(yes bool) ui.Confirmer {
	if yes {
		return ui.AlwaysConfirm
	}
	return c.prompt
}

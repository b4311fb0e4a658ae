package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ahmed-kaif/hcv-frontend/internal/handlers"
	"github.com/ahmed-kaif/hcv-frontend/internal/models"
	"github.com/ahmed-kaif/hcv-frontend/internal/ui"
)

// callbackGrace keeps the landing page server up after the browser reached
// it so the browser can load the page it was sent to.
var callbackGrace = 3 * time.Second

func runGoogleLogin(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("google-login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	timeout := fs.Duration("timeout", 5*time.Minute, "How long to wait for the browser")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// One completer for the whole run: a reloaded landing page must not
	// exchange the code twice.
	completer := c.app.Completer()
	h, err := handlers.NewHandlers(c.app.Manager, c.app.Client, func() handlers.Completer { return completer })
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("GET /static/", h.Static())
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("GET /dashboard", h.Done)

	addr := c.app.Config.ListenAddr
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{Handler: h.CrossOriginGuard(mux), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("landing page server failed", "error", err)
		}
	}()
	navigated := false
	defer func() {
		if navigated {
			time.Sleep(callbackGrace)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := c.app.Manager.RedirectLogin(ctx); err != nil {
		return fmt.Errorf("could not start Google sign-in: %s", models.Message(err, err.Error()))
	}
	fmt.Fprintln(c.stdout, "Waiting for the browser to finish signing in...")

	waitCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	for {
		select {
		case route := <-c.nav.C():
			navigated = true
			switch {
			case route.Path() == string(ui.RouteDashboard):
				fmt.Fprintf(c.stdout, "Signed in as %s\n", c.subject())
				return nil
			case route.ErrorCode() == ui.ErrorAuthFailed:
				if reason := completer.Complete(ctx, nil).Reason(); reason != "" {
					return fmt.Errorf("%s (%s)", handlers.MsgAuthFailed, reason)
				}
				return errors.New(handlers.MsgAuthFailed)
			}
		case <-waitCtx.Done():
			return fmt.Errorf("timed out waiting for sign-in")
		}
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmed-kaif/hcv-frontend/internal/app"
	"github.com/ahmed-kaif/hcv-frontend/internal/config"
	"github.com/ahmed-kaif/hcv-frontend/internal/handlers"
	"github.com/ahmed-kaif/hcv-frontend/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", "", "Listen address (default $HCV_LISTEN_ADDR)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	slog.SetDefault(config.NewLogger(stderr, cfg.LogLevel))

	nav := ui.NavigatorFunc(func(to ui.Route) { slog.Debug("navigate", "route", string(to)) })
	a, err := app.New(ctx, cfg, nav, ui.SystemBrowser)
	if err != nil {
		return err
	}
	defer a.Close()

	h, err := handlers.NewHandlers(a.Manager, a.Client,
		func() handlers.Completer { return a.Completer() },
		handlers.WithPublisher(a.Publisher))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           setupRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Protected pages answer "loading" until the stored session is read.
	go a.Manager.Initialize(ctx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.ListenAddr, "api", cfg.APIURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	slog.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func setupRouter(h *handlers.Handlers) http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.Handle("GET /static/", h.Static())
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /login/google", h.GoogleLogin)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /logout", h.Logout)

	// Protected routes
	protected := func(f http.HandlerFunc) http.Handler { return h.AuthMiddleware(f) }
	mux.Handle("GET /dashboard", protected(h.Dashboard))
	mux.Handle("GET /predict", protected(h.PredictForm))
	mux.Handle("POST /predict", protected(h.Predict))
	mux.Handle("POST /predict/reset", protected(h.ResetPrediction))
	mux.Handle("POST /predictions/close", protected(h.CloseDetail))
	mux.Handle("GET /predictions/{id}", protected(h.Detail))
	mux.Handle("POST /predictions/{id}/delete", protected(h.Delete))
	mux.Handle("GET /predictions/{id}/print", protected(h.Print))
	mux.Handle("GET /statistics", protected(h.Statistics))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, string(ui.RouteDashboard), http.StatusFound)
	})

	// Every state-changing route must come from the UI's own pages.
	return h.CrossOriginGuard(mux)
}

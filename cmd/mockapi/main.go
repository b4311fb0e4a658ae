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

	"github.com/ahmed-kaif/hcv-frontend/internal/config"
	"github.com/ahmed-kaif/hcv-frontend/internal/mockapi"
	"github.com/ahmed-kaif/hcv-frontend/internal/models"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// demoUser is created by -seed.
type demoUser struct {
	name, email, password string
	admin                 bool
}

var demoUsers = []demoUser{
	{"Admin", "admin@example.com", "admin123", true},
	{"Demo User", "user@example.com", "password123", false},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("mockapi", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", "127.0.0.1:8000", "Listen address")
	frontend := fs.String("frontend", "http://"+config.DefaultListenAddr, "Client URL the fake provider redirects back to")
	secret := fs.String("secret", "", "Token signing key (random if empty)")
	ttl := fs.Duration("ttl", time.Hour, "Access token lifetime")
	seed := fs.Bool("seed", true, "Create demo accounts and predictions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	slog.SetDefault(config.NewLogger(stderr, slog.LevelInfo))
	s := newServer(*frontend, *secret, *ttl)
	if *seed {
		if err := seedDemo(s); err != nil {
			return err
		}
		for _, u := range demoUsers {
			fmt.Fprintf(stdout, "demo account %s / %s (admin: %t)\n", u.email, u.password, u.admin)
		}
	}

	srv := &http.Server{Addr: *addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("mock backend listening", "addr", *addr, "frontend", *frontend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newServer(frontend, secret string, ttl time.Duration) *mockapi.Server {
	opts := []mockapi.Option{mockapi.WithFrontendURL(frontend), mockapi.WithTokenTTL(ttl)}
	if secret != "" {
		opts = append(opts, mockapi.WithSecret(secret))
	}
	return mockapi.New(opts...)
}

func seedDemo(s *mockapi.Server) error {
	for _, u := range demoUsers {
		if _, err := s.AddUser(u.name, u.email, u.password, u.admin); err != nil {
			return fmt.Errorf("failed to seed %s: %w", u.email, err)
		}
	}
	samples := []struct {
		req    models.PredictionRequest
		result int
	}{
		{models.PredictionRequest{ALB: 47, ALP: 37.9, AST: 7.1, CHE: 6.6, CGT: 12.1, Age: 34, Sex: models.SexMale}, 0},
		{models.PredictionRequest{ALB: 38.5, ALP: 52.5, AST: 45.2, CHE: 7.3, CGT: 33.8, ALT: 72, Age: 47, Sex: models.SexFemale}, 1},
		{models.PredictionRequest{ALB: 32, ALP: 101.5, AST: 110.6, CHE: 4.1, CGT: 190.3, ALT: 35, Age: 61, Sex: models.SexMale}, 3},
	}
	for _, sample := range samples {
		if _, err := s.SeedPrediction(demoUsers[1].email, sample.req, sample.result); err != nil {
			return err
		}
	}
	return nil
}

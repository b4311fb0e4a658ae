// Package auth owns the client session: the Manager that logs in and out,
// the Guard that keeps protected views away from anonymous users, and the
// Completer that finishes a redirect login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"
	"github.com/ahmed-kaif/hcv-frontend/internal/storage"
	"github.com/ahmed-kaif/hcv-frontend/internal/ui"
)

// MsgLoginFailed is shown when a login fails without a backend detail.
const MsgLoginFailed = "Invalid email or password"

// TokenStore persists the bearer credential between runs. Read reports an
// empty store with storage.ErrNoCredential.
type TokenStore interface {
	Save(ctx context.Context, token string) error
	Read(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Authenticator is the part of the backend that issues tokens.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) error
	GoogleLoginURL(ctx context.Context) (string, error)
}

// Manager holds the process-wide session. Construct one per process with
// NewManager and call Initialize before consulting it.
type Manager struct {
	store   TokenStore
	authn   Authenticator
	nav     ui.Navigator
	browser ui.Browser

	mu      sync.RWMutex
	session models.Session
	loading bool
}

// NewManager returns a Manager in the loading state.
func NewManager(store TokenStore, authn Authenticator, nav ui.Navigator, browser ui.Browser) *Manager {
	return &Manager{
		store:   store,
		authn:   authn,
		nav:     nav,
		browser: browser,
		loading: true,
	}
}

// Initialize derives the session from the token store. A store failure is
// logged and treated as no session. Loading is cleared in every case.
func (m *Manager) Initialize(ctx context.Context) {
	var session models.Session
	token, err := m.store.Read(ctx)
	switch {
	case err == nil && token != "":
		session = authenticated(token)
	case err != nil && !errors.Is(err, storage.ErrNoCredential):
		slog.Warn("token store unreadable, starting without a session", "error", err)
	}

	m.mu.Lock()
	m.session = session
	m.loading = false
	m.mu.Unlock()

	if session.Authenticated {
		slog.Debug("session restored", "subject", session.Identity.Subject)
	}
}

// Loading reports whether Initialize has not finished yet.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Session returns a copy of the current session.
func (m *Manager) Session() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.session
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	return s
}

// AccessToken returns the current token, or "" without a session.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session.Identity == nil {
		return ""
	}
	return m.session.Identity.Token
}

// Read returns the session's token for outgoing requests, or
// storage.ErrNoCredential without a session. The API client uses the
// Manager as its token source so requests follow the session, not the
// persisted copy.
func (m *Manager) Read(ctx context.Context) (string, error) {
	if token := m.AccessToken(); token != "" {
		return token, nil
	}
	return "", storage.ErrNoCredential
}

// Login exchanges credentials for a token, stores it and navigates to the
// dashboard. On failure the error is returned as is and the session is
// left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	token, err := m.authn.Login(ctx, email, password)
	if err != nil {
		slog.Info("login failed", "email", email, "error", err)
		return err
	}
	m.Establish(ctx, token)
	slog.Info("login succeeded", "email", email)
	m.nav.Navigate(ui.RouteDashboard)
	return nil
}

// Register creates an account and then logs in with the same credentials.
// If the account is created but the login fails, the login error is
// returned and the session stays anonymous.
func (m *Manager) Register(ctx context.Context, name, email, password string) error {
	if err := m.authn.Register(ctx, name, email, password); err != nil {
		slog.Info("registration failed", "email", email, "error", err)
		return err
	}
	if err := m.Login(ctx, email, password); err != nil {
		return fmt.Errorf("account created but login failed: %w", err)
	}
	return nil
}

// RedirectLogin fetches the provider's authorization URL and opens it. The
// session does not change; the Completer finishes the flow.
func (m *Manager) RedirectLogin(ctx context.Context) error {
	target, err := m.authn.GoogleLoginURL(ctx)
	if err != nil {
		slog.Warn("redirect login unavailable", "error", err)
		return err
	}
	if err := m.browser.Open(target); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}

// Logout clears the stored token and the session and navigates to the
// login view. It is safe without a session.
func (m *Manager) Logout(ctx context.Context) {
	m.Invalidate(ctx)
	m.nav.Navigate(ui.RouteLogin)
}

// Establish stores token and marks the session authenticated. Persisting
// is best-effort: a store failure is logged and the in-memory session is
// still set.
func (m *Manager) Establish(ctx context.Context, token string) {
	if err := m.store.Save(ctx, token); err != nil {
		slog.Warn("could not persist token", "error", err)
	}
	s := authenticated(token)
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()
}

// Invalidate clears the stored token and the session without navigating.
func (m *Manager) Invalidate(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		slog.Warn("could not clear token store", "error", err)
	}
	m.mu.Lock()
	m.session = models.Session{}
	m.mu.Unlock()
}

func authenticated(token string) models.Session {
	id := ParseIdentity(token)
	return models.Session{Authenticated: true, Identity: &id}
}

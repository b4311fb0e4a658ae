package auth

import (
	"context"
	"errors"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"
	"github.com/ahmed-kaif/hcv-frontend/internal/ui"
)

// ErrLoginRequired is returned by a protected view when there is no
// session. The user has already been sent to the login view.
var ErrLoginRequired = errors.New("login required")

// Decision is the Guard's verdict for a protected view.
type Decision int

const (
	// Pending means the session is still loading; show a neutral placeholder.
	Pending Decision = iota
	// Redirect means there is no session; go to the login view.
	Redirect
	// Allow means the protected view may render.
	Allow
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	case Allow:
		return "allow"
	}
	return "unknown"
}

// SessionState is what the Guard needs from the Manager.
type SessionState interface {
	Loading() bool
	Session() models.Session
}

// View renders one screen.
type View func(ctx context.Context) error

// Guard keeps protected views from rendering without a session.
type Guard struct {
	sessions SessionState
	nav      ui.Navigator
	pending  View
}

// NewGuard returns a Guard that consults sessions and redirects through
// nav. pending is rendered while the session loads; nil renders nothing.
func NewGuard(sessions SessionState, nav ui.Navigator, pending View) *Guard {
	return &Guard{sessions: sessions, nav: nav, pending: pending}
}

// Decide reports what a protected view should do right now.
func (g *Guard) Decide() Decision {
	if g.sessions.Loading() {
		return Pending
	}
	if !g.sessions.Session().Authenticated {
		return Redirect
	}
	return Allow
}

// Protect wraps view so it only runs with a session. The decision is made
// before view is called, so nothing of it is rendered otherwise.
func (g *Guard) Protect(view View) View {
	return func(ctx context.Context) error {
		switch g.Decide() {
		case Pending:
			if g.pending != nil {
				return g.pending(ctx)
			}
			return nil
		case Redirect:
			g.nav.Navigate(ui.RouteLogin)
			return ErrLoginRequired
		}
		return view(ctx)
	}
}

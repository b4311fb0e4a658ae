package auth

import (
	"context"
	"testing"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"
	"github.com/ahmed-kaif/hcv-frontend/internal/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct {
	loading bool
	authed  bool
}

func (s stubSessions) Loading() bool { return s.loading }

func (s stubSessions) Session() models.Session {
	if !s.authed {
		return models.Session{}
	}
	return models.Session{Authenticated: true, Identity: &models.Identity{Token: "t"}}
}

func TestGuardDecide(t *testing.T) {
	tests := []struct {
		name     string
		sessions stubSessions
		want     Decision
	}{
		{"loading", stubSessions{loading: true}, Pending},
		{"loading with stale auth", stubSessions{loading: true, authed: true}, Pending},
		{"anonymous", stubSessions{}, Redirect},
		{"authenticated", stubSessions{authed: true}, Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(tt.sessions, ui.NewRecorder(1), nil)
			assert.Equal(t, tt.want, g.Decide())
		})
	}
}

func TestGuardProtect(t *testing.T) {
	tests := []struct {
		name        string
		sessions    stubSessions
		wantErr     error
		wantRender  bool
		wantPending bool
		wantRoute   ui.Route
	}{
		{"loading renders only the placeholder", stubSessions{loading: true}, nil, false, true, ""},
		{"anonymous is redirected", stubSessions{}, ErrLoginRequired, false, false, ui.RouteLogin},
		{"authenticated renders", stubSessions{authed: true}, nil, true, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := ui.NewRecorder(1)
			rendered, pending := false, false
			g := NewGuard(tt.sessions, nav, func(context.Context) error {
				pending = true
				return nil
			})

			err := g.Protect(func(context.Context) error {
				rendered = true
				return nil
			})(context.Background())

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantRender, rendered, "protected view rendered")
			assert.Equal(t, tt.wantPending, pending, "pending view rendered")
			assert.Equal(t, tt.wantRoute, nav.Last())
		})
	}
}

func TestGuardFollowsManager(t *testing.T) {
	store := &memStore{}
	m := NewManager(store, &fakeAuthn{token: "tok"}, ui.NewRecorder(4), ui.BrowserFunc(func(string) error { return nil }))
	g := NewGuard(m, ui.NewRecorder(4), nil)

	assert.Equal(t, Pending, g.Decide())
	m.Initialize(context.Background())
	assert.Equal(t, Redirect, g.Decide())
	require.NoError(t, m.Login(context.Background(), "a@example.com", "pw"))
	assert.Equal(t, Allow, g.Decide())
	m.Logout(context.Background())
	assert.Equal(t, Redirect, g.Decide())
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "redirect", Redirect.String())
	assert.Equal(t, "allow", Allow.String())
}

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"
	"github.com/ahmed-kaif/hcv-frontend/internal/ui"
)

// FailureRedirectDelay is how long a failed redirect login stays on screen
// before the user is sent back to the login view.
const FailureRedirectDelay = 2 * time.Second

// Failure reasons reported by the Completer.
var (
	ErrMissingCode = errors.New("missing code")
	ErrNoToken     = errors.New("no access token in response")
)

// CallbackState is the stage of a redirect login completion.
type CallbackState int

// Completion stages.
const (
	CallbackPending CallbackState = iota
	CallbackSuccess
	CallbackFailure
)

func (s CallbackState) String() string {
	switch s {
	case CallbackPending:
		return "pending"
	case CallbackSuccess:
		return "success"
	case CallbackFailure:
		return "failure"
	}
	return "unknown"
}

// CallbackResult is the outcome of Complete.
type CallbackResult struct {
	State CallbackState
	// Err is set on failure: ErrMissingCode, ErrNoToken or the exchange error.
	Err error
}

// Reason describes a failure for display; it is empty otherwise.
func (r CallbackResult) Reason() string {
	if r.State != CallbackFailure || r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// CodeExchanger trades a one-time authorization code for a token.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
}

// SessionWriter is what the Completer needs from the Manager.
type SessionWriter interface {
	Establish(ctx context.Context, token string)
	Invalidate(ctx context.Context)
}

// Completer finishes one redirect login. It runs at most once; later calls
// return the first result.
type Completer struct {
	exchanger CodeExchanger
	sessions  SessionWriter
	nav       ui.Navigator
	afterFunc func(d time.Duration, f func())

	mu     sync.Mutex
	state  CallbackState
	result *CallbackResult
}

// NewCompleter returns a Completer in the pending state.
func NewCompleter(exchanger CodeExchanger, sessions SessionWriter, nav ui.Navigator) *Completer {
	return &Completer{
		exchanger: exchanger,
		sessions:  sessions,
		nav:       nav,
		afterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// State returns the current stage.
func (c *Completer) State() CallbackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Complete reads the code from query, exchanges it and updates the
// session. Success navigates to the dashboard right away; failure clears
// the session and navigates to the login view, with an error indicator,
// after FailureRedirectDelay. The exchange is never retried.
func (c *Completer) Complete(ctx context.Context, query url.Values) CallbackResult {
	c.mu.Lock()
	if c.result != nil {
		res := *c.result
		c.mu.Unlock()
		return res
	}
	// Claim the run before unlocking so concurrent calls cannot start a
	// second exchange.
	c.result = &CallbackResult{State: CallbackPending}
	c.mu.Unlock()

	code := query.Get("code")
	if code == "" {
		slog.Warn("redirect login returned without a code")
		return c.finish(CallbackResult{State: CallbackFailure, Err: ErrMissingCode})
	}

	token, err := c.exchanger.ExchangeCode(ctx, code)
	if err == nil && token == "" {
		err = ErrNoToken
	}
	if err != nil {
		slog.Warn("authorization code exchange failed", "error", err, "kind", errorKind(err))
		c.sessions.Invalidate(ctx)
		return c.finish(CallbackResult{State: CallbackFailure, Err: err})
	}

	c.sessions.Establish(ctx, token)
	slog.Info("redirect login succeeded")
	return c.finish(CallbackResult{State: CallbackSuccess})
}

func (c *Completer) finish(res CallbackResult) CallbackResult {
	c.mu.Lock()
	c.state = res.State
	c.result = &res
	c.mu.Unlock()

	if res.State == CallbackSuccess {
		c.nav.Navigate(ui.RouteDashboard)
	} else {
		c.afterFunc(FailureRedirectDelay, func() {
			c.nav.Navigate(ui.LoginWithError(ui.ErrorAuthFailed))
		})
	}
	return res
}

func errorKind(err error) string {
	for _, k := range []error{models.ErrAuth, models.ErrNetwork, models.ErrNotFound, models.ErrServer} {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return "unknown"
}

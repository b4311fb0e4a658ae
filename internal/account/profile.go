// Package account manages the signed-in user's own account and, for
// administrators, the accounts of everyone else.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"
	"github.com/ahmed-kaif/hcv-frontend/internal/ui"
)

const (
	MsgLoadFailed       = "Failed to load user data"
	MsgUpdateFailed     = "Failed to update profile"
	MsgDeleteFailed     = "Failed to delete account"
	MsgUserFailed       = "Failed to fetch user details"
	MsgDeleteUserFailed = "Failed to delete user"
)

// ConfirmDeleteAccount is asked before the user deletes their own account.
const ConfirmDeleteAccount = "Are you sure you want to delete your account? This action cannot be undone."

var (
	ErrNotAdmin  = errors.New("administrator access required")
	ErrCancelled = errors.New("cancelled")
	ErrNotLoaded = errors.New("profile not loaded")
)

// ConfirmDeleteUser is asked before an administrator deletes another
// account.
func ConfirmDeleteUser(name string) string {
	return fmt.Sprintf("Are you sure you want to delete user %s? This action cannot be undone.", name)
}

// Error carries the text to display and the backend cause.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// Service is the /users part of the backend.
type Service interface {
	Me(ctx context.Context) (*models.User, error)
	UpdateMe(ctx context.Context, upd models.UserUpdate) (*models.User, error)
	DeleteMe(ctx context.Context) error
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Session is what Profile needs from the session manager.
type Session interface {
	Logout(ctx context.Context)
}

// Profile is the state behind the profile screen.
type Profile struct {
	svc     Service
	session Session
	confirm ui.Confirmer

	mu       sync.Mutex
	user     *models.User
	users    []models.User
	selected *models.User
}

func NewProfile(svc Service, session Session, confirm ui.Confirmer) *Profile {
	return &Profile{svc: svc, session: session, confirm: confirm}
}

// Load fetches the current account and, for an administrator, the list of
// all accounts.
func (p *Profile) Load(ctx context.Context) (*models.User, error) {
	u, err := p.svc.Me(ctx)
	if err != nil {
		slog.Warn("loading profile failed", "error", err)
		return nil, &Error{Msg: MsgLoadFailed, Err: err}
	}

	var users []models.User
	if u.IsAdmin {
		if users, err = p.svc.ListUsers(ctx); err != nil {
			slog.Warn("listing users failed", "error", err)
			return nil, &Error{Msg: MsgLoadFailed, Err: err}
		}
	}

	p.mu.Lock()
	p.user = u
	p.users = users
	p.mu.Unlock()
	return u, nil
}

// User returns the loaded account, or nil.
func (p *Profile) User() *models.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user
}

// Users returns the loaded account list. It is empty for non-admins.
func (p *Profile) Users() []models.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.User(nil), p.users...)
}

// Update changes name, email and, when non-empty, the password.
func (p *Profile) Update(ctx context.Context, upd models.UserUpdate) (*models.User, error) {
	u, err := p.svc.UpdateMe(ctx, upd)
	if err != nil {
		slog.Warn("updating profile failed", "error", err)
		return nil, &Error{Msg: MsgUpdateFailed, Err: err}
	}
	p.mu.Lock()
	p.user = u
	p.mu.Unlock()
	return u, nil
}

// DeleteAccount deletes the current account after confirmation and logs
// out.
func (p *Profile) DeleteAccount(ctx context.Context) error {
	if !p.confirm.Confirm(ConfirmDeleteAccount) {
		return ErrCancelled
	}
	if err := p.svc.DeleteMe(ctx); err != nil {
		slog.Warn("deleting account failed", "error", err)
		return &Error{Msg: MsgDeleteFailed, Err: err}
	}
	p.mu.Lock()
	p.user, p.users, p.selected = nil, nil, nil
	p.mu.Unlock()
	slog.Info("account deleted")
	p.session.Logout(ctx)
	return nil
}

// ViewUser loads one account for the detail view. Admin only.
func (p *Profile) ViewUser(ctx context.Context, id int64) (*models.User, error) {
	if err := p.requireAdmin(); err != nil {
		return nil, err
	}
	u, err := p.svc.GetUser(ctx, id)
	if err != nil {
		slog.Warn("loading user failed", "id", id, "error", err)
		return nil, &Error{Msg: MsgUserFailed, Err: err}
	}
	p.mu.Lock()
	p.selected = u
	p.mu.Unlock()
	return u, nil
}

// Selected returns the account shown in the detail view, or nil.
func (p *Profile) Selected() *models.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// DeleteUser deletes another account after confirmation and reloads the
// account list. Admin only.
func (p *Profile) DeleteUser(ctx context.Context, id int64) error {
	if err := p.requireAdmin(); err != nil {
		return err
	}
	if !p.confirm.Confirm(ConfirmDeleteUser(p.nameOf(id))) {
		return ErrCancelled
	}
	if err := p.svc.DeleteUser(ctx, id); err != nil {
		slog.Warn("deleting user failed", "id", id, "error", err)
		return &Error{Msg: MsgDeleteUserFailed, Err: err}
	}
	users, err := p.svc.ListUsers(ctx)
	if err != nil {
		slog.Warn("reloading users failed", "error", err)
		return &Error{Msg: MsgDeleteUserFailed, Err: err}
	}

	p.mu.Lock()
	p.users = users
	if p.selected != nil && p.selected.ID == id {
		p.selected = nil
	}
	p.mu.Unlock()
	slog.Info("user deleted", "id", id)
	return nil
}

func (p *Profile) requireAdmin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.user == nil:
		return ErrNotLoaded
	case !p.user.IsAdmin:
		return ErrNotAdmin
	}
	return nil
}

func (p *Profile) nameOf(id int64) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range p.users {
		if u.ID == id {
			return u.Name
		}
	}
	return fmt.Sprintf("#%d", id)
}

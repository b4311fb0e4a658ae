package models

import "time"

// Identity is the credential behind an authenticated session along with the
// claims decoded from it. Claims are informational only; the backend is the
// authority on whether the token is valid.
type Identity struct {
	Token     string    `json:"-"`
	Subject   string    `json:"subject,omitempty"`
	IsAdmin   bool      `json:"is_admin,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Session is the client's view of the authentication state.
type Session struct {
	Authenticated bool      `json:"authenticated"`
	Identity      *Identity `json:"identity,omitempty"`
}

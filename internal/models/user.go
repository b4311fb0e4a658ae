package models

import "encoding/json"

// DefaultAuthProvider is shown when the backend omits auth_provider.
const DefaultAuthProvider = "Email"

// User is an account as returned by the /users endpoints.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"is_admin"`
	IsActive     bool      `json:"is_active"`
	AuthProvider string    `json:"auth_provider,omitempty"`
	CreatedAt    Timestamp `json:"created_at"`
}

// UserUpdate is the body of PUT /users/me. Empty fields are left unchanged.
type UserUpdate struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// UnmarshalJSON decodes a user and folds the legacy admin indicators into
// IsAdmin.
// TODO: drop the admin/role fallbacks once /users/me always returns is_admin.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var raw struct {
		plain
		Admin *bool  `json:"admin"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.plain)
	if raw.Admin != nil && *raw.Admin {
		u.IsAdmin = true
	}
	if raw.Role == "admin" {
		u.IsAdmin = true
	}
	return nil
}

// Provider returns the auth provider, defaulting to DefaultAuthProvider.
func (u User) Provider() string {
	if u.AuthProvider == "" {
		return DefaultAuthProvider
	}
	return u.AuthProvider
}

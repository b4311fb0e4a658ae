package auth

import (
	"time"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// ParseIdentity decodes the claims of a JWT access token without
// verifying its signature; only the backend can do that. Tokens that are
// not JWTs yield an Identity carrying just the token.
func ParseIdentity(token string) models.Identity {
	id := models.Identity{Token: token}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return id
	}
	if sub, err := claims.GetSubject(); err == nil {
		id.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	switch v := claims["is_admin"].(type) {
	case bool:
		id.IsAdmin = v
	}
	if role, _ := claims["role"].(string); role == "admin" {
		id.IsAdmin = true
	}
	return id
}

// Expired reports whether the identity's token carries an expiry that has
// passed at now.
func Expired(id models.Identity, now time.Time) bool {
	return !id.ExpiresAt.IsZero() && !now.Before(id.ExpiresAt)
}

package api

import (
	"context"
	"net/http"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"
)

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateMe changes the current account.
func (c *Client) UpdateMe(ctx context.Context, upd models.UserUpdate) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodPut, "/users/me", upd, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteMe deletes the current account.
func (c *Client) DeleteMe(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/users/me", nil, nil)
}

// ListUsers returns all accounts. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns one account. Admin only.
func (c *Client) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, pathID("/users/", id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser deletes one account. Admin only.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, pathID("/users/", id), nil, nil)
}

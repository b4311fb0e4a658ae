package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges email and password for an access token using the OAuth2
// password grant (form-encoded, the email is sent as username).
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {email},
		"password":   {password},
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/login",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return "", err
	}
	var out tokenResponse
	if err := c.do(req, &out); err != nil {
		return "", asAuthError(err)
	}
	if out.AccessToken == "" {
		return "", &models.APIError{Kind: models.ErrAuth, Status: http.StatusOK, Detail: "no access token in response"}
	}
	return out.AccessToken, nil
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/register", registerRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, nil)
}

// GoogleLoginURL asks the backend where to send the browser for the
// third-party login.
func (c *Client) GoogleLoginURL(ctx context.Context) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/auth/google-login", nil, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", &models.APIError{Kind: models.ErrServer, Status: http.StatusOK, Detail: "no authorization url in response"}
	}
	return out.URL, nil
}

// ExchangeCode trades a one-time authorization code for an access token.
// A successful response without a token returns "" and no error; the
// caller decides what that means.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	var out tokenResponse
	path := "/auth/callback?" + url.Values{"code": {code}}.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return "", asAuthError(err)
	}
	return out.AccessToken, nil
}

// asAuthError reclassifies a 4xx rejection of a token request as an auth
// failure. Network and 5xx errors keep their kind.
func asAuthError(err error) error {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) && apiErr.Kind == models.ErrServer && apiErr.Status >= 400 && apiErr.Status < 500 {
		return &models.APIError{Kind: models.ErrAuth, Status: apiErr.Status, Detail: apiErr.Detail}
	}
	return err
}

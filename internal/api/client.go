// Package api is the HTTP client for the prediction backend.
//
// Every method maps a failed call onto the error kinds in the models
// package: 401/403 become models.ErrAuth, 404 models.ErrNotFound,
// transport failures models.ErrNetwork, anything else models.ErrServer.
// The backend's "detail" message, when present, is kept on the
// returned *models.APIError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"

	"github.com/google/uuid"
)

// TokenSource yields the bearer token to attach to requests. An error
// means the request is sent without Authorization.
type TokenSource interface {
	Read(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

// Read calls f.
func (f TokenSourceFunc) Read(ctx context.Context) (string, error) { return f(ctx) }

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithTokenSource attaches the token from ts to every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New returns a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token, err := c.tokens.Read(ctx); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("api request failed", "method", req.Method, "path", req.URL.Path,
			"request_id", req.Header.Get("X-Request-ID"), "error", err)
		return &models.APIError{Kind: models.ErrNetwork}
	}
	defer resp.Body.Close()

	slog.Debug("api request", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-ID"), "duration", time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &models.APIError{Kind: models.ErrNetwork, Status: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &models.APIError{Kind: kindFor(resp.StatusCode), Status: resp.StatusCode, Detail: parseDetail(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &models.APIError{Kind: models.ErrServer, Status: resp.StatusCode, Detail: fmt.Sprintf("malformed response: %v", err)}
	}
	return nil
}

func kindFor(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return models.ErrAuth
	case http.StatusNotFound:
		return models.ErrNotFound
	}
	return models.ErrServer
}

// parseDetail extracts a human readable message from an error body. The
// backend sends {"detail": "..."} or, for schema errors, {"detail": [{"msg": ...}]}.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return payload.Error
}

func pathID(prefix string, id int64) string {
	return prefix + url.PathEscape(fmt.Sprint(id))
}

package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDemo(t *testing.T) {
	s := newServer("http://127.0.0.1:3000", "test-secret", time.Minute)
	require.NoError(t, seedDemo(s))

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.PostForm(srv.URL+"/auth/login", url.Values{
		"grant_type": {"password"}, "username": {"user@example.com"}, "password": {"password123"},
	})
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "access_token")

	assert.Error(t, seedDemo(s), "accounts already exist")
}

func TestRunRejectsBadFlag(t *testing.T) {
	err := run(context.Background(), []string{"-ttl", "soon"}, io.Discard, io.Discard)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid value"))
}

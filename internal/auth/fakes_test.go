package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"
	"github.com/ahmed-kaif/hcv-frontend/internal/storage"
)

type memStore struct {
	mu      sync.Mutex
	token   string
	readErr error
	saveErr error
	saves   int
	clears  int
}

func (s *memStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.token = token
	return nil
}

func (s *memStore) Read(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return "", s.readErr
	}
	if s.token == "" {
		return "", storage.ErrNoCredential
	}
	return s.token, nil
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	s.token = ""
	return nil
}

func (s *memStore) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

type fakeAuthn struct {
	token       string
	loginErr    error
	registerErr error
	url         string
	urlErr      error

	logins    int
	registers int
}

func (f *fakeAuthn) Login(context.Context, string, string) (string, error) {
	f.logins++
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func (f *fakeAuthn) Register(context.Context, string, string, string) error {
	f.registers++
	return f.registerErr
}

func (f *fakeAuthn) GoogleLoginURL(context.Context) (string, error) {
	return f.url, f.urlErr
}

type fakeExchanger struct {
	mu    sync.Mutex
	token string
	err   error
	calls int
	block chan struct{}
}

func (f *fakeExchanger) ExchangeCode(ctx context.Context, code string) (string, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.token, f.err
}

func (f *fakeExchanger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var errBadCredentials = &models.APIError{Kind: models.ErrAuth, Status: 401, Detail: "Incorrect email or password"}

var errBoom = errors.New("boom")

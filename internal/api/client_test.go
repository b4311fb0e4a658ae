package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ahmed-kaif/hcv-frontend/internal/mockapi"
	"github.com/ahmed-kaif/hcv-frontend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type staticToken string

func (s staticToken) Read(context.Context) (string, error) {
	if s == "" {
		return "", errors.New("no token")
	}
	return string(s), nil
}

// ClientTestSuite runs the client against the mock backend
type ClientTestSuite struct {
	suite.Suite
	backend *mockapi.Server
	srv     *httptest.Server
	ctx     context.Context
}

func (suite *ClientTestSuite) SetupTest() {
	suite.backend = mockapi.New()
	suite.srv = httptest.NewServer(suite.backend.Handler())
	suite.ctx = context.Background()

	_, err := suite.backend.AddUser("Alice", "alice@example.com", "secret", false)
	require.NoError(suite.T(), err)
}

func (suite *ClientTestSuite) TearDownTest() {
	suite.srv.Close()
}

func (suite *ClientTestSuite) authedClient() *Client {
	token, err := suite.backend.Token("alice@example.com")
	require.NoError(suite.T(), err)
	return New(suite.srv.URL, WithTokenSource(staticToken(token)))
}

func (suite *ClientTestSuite) TestLogin() {
	c := New(suite.srv.URL)
	token, err := c.Login(suite.ctx, "alice@example.com", "secret")
	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), token)
	assert.Equal(suite.T(), 1, suite.backend.Calls("POST /auth/login"))
}

func (suite *ClientTestSuite) TestLoginBadPassword() {
	c := New(suite.srv.URL)
	_, err := c.Login(suite.ctx, "alice@example.com", "wrong")
	require.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, models.ErrAuth)
	assert.Equal(suite.T(), "Incorrect email or password", models.Detail(err))
}

func (suite *ClientTestSuite) TestRegisterDuplicate() {
	c := New(suite.srv.URL)
	require.NoError(suite.T(), c.Register(suite.ctx, "Bob", "bob@example.com", "pw"))

	err := c.Register(suite.ctx, "Bob", "bob@example.com", "pw")
	require.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, models.ErrServer)
	assert.Equal(suite.T(), "Email already registered", err.Error())
}

func (suite *ClientTestSuite) TestGoogleLoginURLAndExchange() {
	c := New(suite.srv.URL)
	u, err := c.GoogleLoginURL(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), u, "/oauth/authorize?redirect_uri=")

	code := suite.backend.IssueCode("carol@example.com")
	token, err := c.ExchangeCode(suite.ctx, code)
	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), token)

	// Codes are one-time.
	_, err = c.ExchangeCode(suite.ctx, code)
	assert.ErrorIs(suite.T(), err, models.ErrAuth)
	assert.Equal(suite.T(), "Invalid authorization code", models.Detail(err))
}

func (suite *ClientTestSuite) TestPredictionLifecycle() {
	c := suite.authedClient()

	rec, err := c.CreatePrediction(suite.ctx, models.PredictionRequest{ALB: 47, ALP: 37.9, AST: 7.1, CHE: 6.6, CGT: 12.1, Sex: models.SexMale})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, rec.ResultID)
	assert.False(suite.T(), rec.CreatedAt.IsZero())

	list, err := c.ListPredictions(suite.ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), list, 1)
	assert.Equal(suite.T(), rec.ID, list[0].ID)

	got, err := c.GetPrediction(suite.ctx, rec.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 47.0, got.ALB)

	require.NoError(suite.T(), c.DeletePrediction(suite.ctx, rec.ID))
	_, err = c.GetPrediction(suite.ctx, rec.ID)
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
	assert.Equal(suite.T(), "Prediction not found", models.Detail(err))
}

func (suite *ClientTestSuite) TestUnauthenticated() {
	c := New(suite.srv.URL)
	_, err := c.ListPredictions(suite.ctx)
	assert.ErrorIs(suite.T(), err, models.ErrAuth)
}

func (suite *ClientTestSuite) TestUsersAdminGate() {
	c := suite.authedClient()
	me, err := c.Me(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Alice", me.Name)
	assert.False(suite.T(), me.IsAdmin)

	_, err = c.ListUsers(suite.ctx)
	assert.ErrorIs(suite.T(), err, models.ErrAuth)

	_, err = suite.backend.AddUser("Root", "root@example.com", "pw", true)
	require.NoError(suite.T(), err)
	token, err := suite.backend.Token("root@example.com")
	require.NoError(suite.T(), err)
	admin := New(suite.srv.URL, WithTokenSource(staticToken(token)))

	users, err := admin.ListUsers(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), users, 2)

	u, err := admin.GetUser(suite.ctx, me.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "alice@example.com", u.Email)

	require.NoError(suite.T(), admin.DeleteUser(suite.ctx, me.ID))
	_, err = admin.GetUser(suite.ctx, me.ID)
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
}

func (suite *ClientTestSuite) TestUpdateAndDeleteMe() {
	c := suite.authedClient()
	u, err := c.UpdateMe(suite.ctx, models.UserUpdate{Name: "Alice B"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Alice B", u.Name)
	assert.Equal(suite.T(), "alice@example.com", u.Email)

	require.NoError(suite.T(), c.DeleteMe(suite.ctx))
	_, err = c.Me(suite.ctx)
	assert.ErrorIs(suite.T(), err, models.ErrAuth)
}

func (suite *ClientTestSuite) TestNetworkError() {
	url := suite.srv.URL
	suite.srv.Close()

	_, err := New(url).ListPredictions(suite.ctx)
	assert.ErrorIs(suite.T(), err, models.ErrNetwork)
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail":"Nope"}`, "Nope"},
		{"validation list", `{"detail":[{"msg":"field required"},{"msg":"value is not a number"}]}`, "field required; value is not a number"},
		{"error key", `{"error":"bad"}`, "bad"},
		{"not json", `<html>`, ""},
		{"empty", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDetail([]byte(tt.body)))
		})
	}
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := New(srv.URL+"/", WithTokenSource(staticToken("abc"))).ListPredictions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got.Get("Authorization"))
	assert.Len(t, got.Get("X-Request-ID"), 36)

	_, err = New(srv.URL, WithTokenSource(staticToken(""))).ListPredictions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"))
}

func TestLoginWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), "a@b.c", "pw")
	assert.ErrorIs(t, err, models.ErrAuth)
}

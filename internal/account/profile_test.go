package account

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ahmed-kaif/hcv-frontend/internal/api"
	"github.com/ahmed-kaif/hcv-frontend/internal/mockapi"
	"github.com/ahmed-kaif/hcv-frontend/internal/models"
	"github.com/ahmed-kaif/hcv-frontend/internal/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type staticToken string

func (t staticToken) Read(context.Context) (string, error) { return string(t), nil }

type fakeSession struct{ logouts int }

func (s *fakeSession) Logout(context.Context) { s.logouts++ }

// ProfileTestSuite runs Profile against the in-memory backend
type ProfileTestSuite struct {
	suite.Suite
	backend *mockapi.Server
	srv     *httptest.Server
	session *fakeSession
	answer  bool
	prompts []string
	admin   models.User
	member  models.User
}

func (suite *ProfileTestSuite) SetupTest() {
	suite.backend = mockapi.New()
	suite.srv = httptest.NewServer(suite.backend.Handler())
	suite.session = &fakeSession{}
	suite.answer = true
	suite.prompts = nil

	var err error
	suite.admin, err = suite.backend.AddUser("Ada Admin", "ada@example.com", "secret", true)
	require.NoError(suite.T(), err)
	suite.member, err = suite.backend.AddUser("Max Member", "max@example.com", "secret", false)
	require.NoError(suite.T(), err)
}

func (suite *ProfileTestSuite) TearDownTest() {
	suite.srv.Close()
}

func (suite *ProfileTestSuite) profileFor(email string) *Profile {
	token, err := suite.backend.Token(email)
	require.NoError(suite.T(), err)
	client := api.New(suite.srv.URL, api.WithTokenSource(staticToken(token)))
	confirm := ui.ConfirmFunc(func(prompt string) bool {
		suite.prompts = append(suite.prompts, prompt)
		return suite.answer
	})
	return NewProfile(client, suite.session, confirm)
}

func (suite *ProfileTestSuite) TestLoadMember() {
	p := suite.profileFor("max@example.com")
	u, err := p.Load(context.Background())
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Max Member", u.Name)
	assert.False(suite.T(), u.IsAdmin)
	assert.Empty(suite.T(), p.Users())
	assert.Equal(suite.T(), 0, suite.backend.Calls("GET /users/"))
}

func (suite *ProfileTestSuite) TestLoadAdminListsUsers() {
	p := suite.profileFor("ada@example.com")
	u, err := p.Load(context.Background())
	require.NoError(suite.T(), err)
	assert.True(suite.T(), u.IsAdmin)
	assert.Len(suite.T(), p.Users(), 2)
}

func (suite *ProfileTestSuite) TestLoadFailure() {
	p := suite.profileFor("max@example.com")
	suite.backend.FailNext("GET /users/me", http.StatusInternalServerError, "boom")

	_, err := p.Load(context.Background())
	require.Error(suite.T(), err)
	assert.Equal(suite.T(), "Failed to load user data", err.Error())
	assert.ErrorIs(suite.T(), err, models.ErrServer)
	assert.Nil(suite.T(), p.User())
}

func (suite *ProfileTestSuite) TestUpdate() {
	p := suite.profileFor("max@example.com")
	u, err := p.Update(context.Background(), models.UserUpdate{Name: "Maxine"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Maxine", u.Name)
	assert.Equal(suite.T(), "max@example.com", u.Email)
	assert.Equal(suite.T(), u, p.User())
}

func (suite *ProfileTestSuite) TestUpdateTakenEmail() {
	p := suite.profileFor("max@example.com")
	_, err := p.Update(context.Background(), models.UserUpdate{Email: "ada@example.com"})
	require.Error(suite.T(), err)
	assert.Equal(suite.T(), "Failed to update profile", err.Error())
}

func (suite *ProfileTestSuite) TestDeleteAccountLogsOut() {
	p := suite.profileFor("max@example.com")
	require.NoError(suite.T(), p.DeleteAccount(context.Background()))
	assert.Equal(suite.T(), []string{ConfirmDeleteAccount}, suite.prompts)
	assert.Equal(suite.T(), 1, suite.session.logouts)
	assert.Equal(suite.T(), 1, suite.backend.Calls("DELETE /users/me"))
}

func (suite *ProfileTestSuite) TestDeleteAccountDeclined() {
	p := suite.profileFor("max@example.com")
	suite.answer = false
	assert.ErrorIs(suite.T(), p.DeleteAccount(context.Background()), ErrCancelled)
	assert.Equal(suite.T(), 0, suite.session.logouts)
	assert.Equal(suite.T(), 0, suite.backend.Calls("DELETE /users/me"))
}

func (suite *ProfileTestSuite) TestDeleteAccountFailureKeepsSession() {
	p := suite.profileFor("max@example.com")
	suite.backend.FailNext("DELETE /users/me", http.StatusInternalServerError, "boom")
	err := p.DeleteAccount(context.Background())
	require.Error(suite.T(), err)
	assert.Equal(suite.T(), "Failed to delete account", err.Error())
	assert.Equal(suite.T(), 0, suite.session.logouts)
}

func (suite *ProfileTestSuite) TestAdminOperationsNeedAdmin() {
	p := suite.profileFor("max@example.com")
	_, err := p.ViewUser(context.Background(), suite.admin.ID)
	assert.ErrorIs(suite.T(), err, ErrNotLoaded)

	_, err = p.Load(context.Background())
	require.NoError(suite.T(), err)
	_, err = p.ViewUser(context.Background(), suite.admin.ID)
	assert.ErrorIs(suite.T(), err, ErrNotAdmin)
	assert.ErrorIs(suite.T(), p.DeleteUser(context.Background(), suite.admin.ID), ErrNotAdmin)
	assert.Equal(suite.T(), 0, suite.backend.Calls("GET /users/:id"))
}

func (suite *ProfileTestSuite) TestViewUser() {
	p := suite.profileFor("ada@example.com")
	_, err := p.Load(context.Background())
	require.NoError(suite.T(), err)

	u, err := p.ViewUser(context.Background(), suite.member.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "max@example.com", u.Email)
	assert.Equal(suite.T(), u, p.Selected())

	_, err = p.ViewUser(context.Background(), 999)
	require.Error(suite.T(), err)
	assert.Equal(suite.T(), "Failed to fetch user details", err.Error())
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
}

func (suite *ProfileTestSuite) TestDeleteUserRefetches() {
	p := suite.profileFor("ada@example.com")
	_, err := p.Load(context.Background())
	require.NoError(suite.T(), err)
	_, err = p.ViewUser(context.Background(), suite.member.ID)
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), p.DeleteUser(context.Background(), suite.member.ID))
	assert.Equal(suite.T(), []string{ConfirmDeleteUser("Max Member")}, suite.prompts)
	require.Len(suite.T(), p.Users(), 1)
	assert.Equal(suite.T(), suite.admin.ID, p.Users()[0].ID)
	assert.Nil(suite.T(), p.Selected())
	assert.Equal(suite.T(), 2, suite.backend.Calls("GET /users/"))
}

func (suite *ProfileTestSuite) TestDeleteUserFailure() {
	p := suite.profileFor("ada@example.com")
	_, err := p.Load(context.Background())
	require.NoError(suite.T(), err)

	err = p.DeleteUser(context.Background(), 999)
	require.Error(suite.T(), err)
	assert.Equal(suite.T(), "Failed to delete user", err.Error())
	assert.Len(suite.T(), p.Users(), 2)
}

func TestProfileSuite(t *testing.T) {
	suite.Run(t, new(ProfileTestSuite))
}

func TestConfirmDeleteUser(t *testing.T) {
	assert.Equal(t, "Are you sure you want to delete user Bob? This action cannot be undone.", ConfirmDeleteUser("Bob"))
}

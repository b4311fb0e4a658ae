package mockapi

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// GoogleUserEmail is the account the fake authorization page signs in.
const GoogleUserEmail = "google.user@example.com"

// AddUser creates an account directly, bypassing /auth/register.
func (s *Server) AddUser(name, email, password string, admin bool) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(email)
	if _, exists := s.byEmail[key]; exists {
		return models.User{}, fmt.Errorf("user %s already exists", email)
	}
	a := s.addAccountLocked(name, email, hash, models.DefaultAuthProvider)
	a.IsAdmin = admin
	return a.User, nil
}

// Token mints an access token for an existing account.
func (s *Server) Token(email string) (string, error) {
	s.mu.Lock()
	id, ok := s.byEmail[strings.ToLower(email)]
	a := s.users[id]
	s.mu.Unlock()
	if !ok || a == nil {
		return "", fmt.Errorf("no user %s", email)
	}
	return s.issueToken(a)
}

// IssueCode returns a one-time authorization code for email, creating a
// Google account for it if needed.
func (s *Server) IssueCode(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(email)
	if _, ok := s.byEmail[key]; !ok {
		s.addAccountLocked(strings.Split(email, "@")[0], email, nil, "Google")
	}
	code := uuid.NewString()
	s.codes[code] = key
	return code
}

// SeedPrediction stores a record owned by email with the given result.
func (s *Server) SeedPrediction(email string, req models.PredictionRequest, resultID int) (models.PredictionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return models.PredictionRecord{}, fmt.Errorf("no user %s", email)
	}
	return s.storePredictionLocked(id, req, resultID), nil
}

func (s *Server) addAccountLocked(name, email string, hash []byte, provider string) *account {
	s.nextUserID++
	a := &account{
		User: models.User{
			ID:           s.nextUserID,
			Name:         name,
			Email:        email,
			IsActive:     true,
			AuthProvider: provider,
			CreatedAt:    models.Timestamp{Time: s.now().UTC()},
		},
		passwordHash: hash,
	}
	s.users[a.ID] = a
	s.byEmail[strings.ToLower(email)] = a.ID
	return a
}

func (s *Server) storePredictionLocked(owner int64, req models.PredictionRequest, resultID int) models.PredictionRecord {
	s.nextPredID++
	uid := owner
	rec := models.PredictionRecord{
		ID:                s.nextPredID,
		UserID:            &uid,
		ResultID:          resultID,
		CreatedAt:         models.Timestamp{Time: s.now().UTC()},
		PredictionRequest: req,
	}
	s.predictions[rec.ID] = &ownedPrediction{owner: owner, rec: rec}
	return rec
}

func (s *Server) login(c echo.Context) error {
	if c.FormValue("grant_type") != "password" {
		return echo.NewHTTPError(http.StatusBadRequest, "Unsupported grant type")
	}
	email := strings.ToLower(strings.TrimSpace(c.FormValue("username")))
	password := c.FormValue("password")

	s.mu.Lock()
	a := s.users[s.byEmail[email]]
	s.mu.Unlock()

	if a == nil || a.passwordHash == nil || bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect email or password")
	}
	token, err := s.issueToken(a)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": token, "token_type": "bearer"})
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid request body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "name, email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[strings.ToLower(req.Email)]; exists {
		return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
	}
	a := s.addAccountLocked(req.Name, req.Email, hash, models.DefaultAuthProvider)
	return c.JSON(http.StatusCreated, a.User)
}

func (s *Server) googleLogin(c echo.Context) error {
	self := c.Scheme() + "://" + c.Request().Host
	redirect := s.frontendURL + "/auth/callback"
	target := self + "/oauth/authorize?" + url.Values{"redirect_uri": {redirect}}.Encode()
	return c.JSON(http.StatusOK, echo.Map{"url": target})
}

// authorize plays the provider: it signs in GoogleUserEmail and sends the
// browser back with a fresh code.
func (s *Server) authorize(c echo.Context) error {
	redirect := c.QueryParam("redirect_uri")
	if redirect == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "redirect_uri is required")
	}
	code := s.IssueCode(GoogleUserEmail)
	sep := "?"
	if strings.Contains(redirect, "?") {
		sep = "&"
	}
	return c.Redirect(http.StatusFound, redirect+sep+url.Values{"code": {code}}.Encode())
}

func (s *Server) callback(c echo.Context) error {
	code := c.QueryParam("code")
	s.mu.Lock()
	email, ok := s.codes[code]
	delete(s.codes, code)
	var a *account
	if ok {
		a = s.users[s.byEmail[email]]
	}
	s.mu.Unlock()

	if a == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid authorization code")
	}
	token, err := s.issueToken(a)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": token, "token_type": "bearer"})
}

func (s *Server) createPrediction(c echo.Context) error {
	var req models.PredictionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid request body")
	}
	if req.ALB == 0 || req.ALP == 0 || req.AST == 0 || req.CHE == 0 || req.CGT == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "ALB, ALP, AST, CHE and CGT are required")
	}
	if req.Sex == "" {
		req.Sex = models.SexMale
	}
	owner := c.Get("user_id").(int64)

	s.mu.Lock()
	rec := s.storePredictionLocked(owner, req, s.classify(req))
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, rec)
}

func (s *Server) listPredictions(c echo.Context) error {
	owner := c.Get("user_id").(int64)
	s.mu.Lock()
	recs := make([]models.PredictionRecord, 0)
	for _, p := range s.predictions {
		if p.owner == owner {
			recs = append(recs, p.rec)
		}
	}
	s.mu.Unlock()
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID > recs[j].ID })
	return c.JSON(http.StatusOK, recs)
}

func (s *Server) ownedPredictionID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid prediction id")
	}
	owner := c.Get("user_id").(int64)
	s.mu.Lock()
	p, ok := s.predictions[id]
	s.mu.Unlock()
	if !ok || p.owner != owner {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Prediction not found")
	}
	return id, nil
}

func (s *Server) getPrediction(c echo.Context) error {
	id, err := s.ownedPredictionID(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	rec := s.predictions[id].rec
	s.mu.Unlock()
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) deletePrediction(c echo.Context) error {
	id, err := s.ownedPredictionID(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.predictions, id)
	s.mu.Unlock()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) currentAccount(c echo.Context) *account {
	id := c.Get("user_id").(int64)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *Server) me(c echo.Context) error {
	a := s.currentAccount(c)
	if a == nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, a.User)
}

func (s *Server) updateMe(c echo.Context) error {
	var upd models.UserUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid request body")
	}
	var hash []byte
	if upd.Password != "" {
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(upd.Password), bcrypt.MinCost); err != nil {
			return err
		}
	}

	id := c.Get("user_id").(int64)
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.users[id]
	if a == nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if upd.Email != "" && !strings.EqualFold(upd.Email, a.Email) {
		if _, taken := s.byEmail[strings.ToLower(upd.Email)]; taken {
			return echo.NewHTTPError(http.StatusBadRequest, "Email already registered")
		}
		delete(s.byEmail, strings.ToLower(a.Email))
		a.Email = upd.Email
		s.byEmail[strings.ToLower(a.Email)] = a.ID
	}
	if upd.Name != "" {
		a.Name = upd.Name
	}
	if hash != nil {
		a.passwordHash = hash
	}
	return c.JSON(http.StatusOK, a.User)
}

func (s *Server) deleteMe(c echo.Context) error {
	id := c.Get("user_id").(int64)
	s.mu.Lock()
	s.removeAccountLocked(id)
	s.mu.Unlock()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) removeAccountLocked(id int64) bool {
	a, ok := s.users[id]
	if !ok {
		return false
	}
	delete(s.users, id)
	delete(s.byEmail, strings.ToLower(a.Email))
	for pid, p := range s.predictions {
		if p.owner == id {
			delete(s.predictions, pid)
		}
	}
	return true
}

func (s *Server) listUsers(c echo.Context) error {
	s.mu.Lock()
	users := make([]models.User, 0, len(s.users))
	for _, a := range s.users {
		users = append(users, a.User)
	}
	s.mu.Unlock()
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return c.JSON(http.StatusOK, users)
}

func (s *Server) getUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid user id")
	}
	s.mu.Lock()
	a := s.users[id]
	s.mu.Unlock()
	if a == nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, a.User)
}

func (s *Server) deleteUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Invalid user id")
	}
	s.mu.Lock()
	removed := s.removeAccountLocked(id)
	s.mu.Unlock()
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// Package mockapi is an in-memory stand-in for the prediction backend. It
// implements the REST surface the client consumes, including a fake
// third-party authorization page, and is used by tests and for local
// development without the real service.
package mockapi

import (
	"crypto/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type account struct {
	models.User
	passwordHash []byte
}

type failure struct {
	status int
	detail string
}

// Server is the mock backend. The zero value is not usable; call New.
type Server struct {
	e *echo.Echo

	mu          sync.Mutex
	users       map[int64]*account
	byEmail     map[string]int64
	predictions map[int64]*ownedPrediction
	codes       map[string]string
	nextUserID  int64
	nextPredID  int64
	calls       map[string]int
	failNext    map[string]failure
	delay       map[string]time.Duration

	secret      []byte
	tokenTTL    time.Duration
	frontendURL string
	classify    func(models.PredictionRequest) int
	now         func() time.Time
}

type ownedPrediction struct {
	owner int64
	rec   models.PredictionRecord
}

// Option configures a Server.
type Option func(*Server)

// WithFrontendURL sets where the fake authorization page sends the
// browser back to (the client's /auth/callback lives under it).
func WithFrontendURL(u string) Option {
	return func(s *Server) { s.frontendURL = strings.TrimRight(u, "/") }
}

// WithClassifier replaces the rule that assigns result codes.
func WithClassifier(f func(models.PredictionRequest) int) Option {
	return func(s *Server) { s.classify = f }
}

// WithSecret sets the HS256 signing key.
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

// WithTokenTTL sets the lifetime of issued access tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// New returns a mock backend with no accounts.
func New(opts ...Option) *Server {
	s := &Server{
		users:       make(map[int64]*account),
		byEmail:     make(map[string]int64),
		predictions: make(map[int64]*ownedPrediction),
		codes:       make(map[string]string),
		calls:       make(map[string]int),
		failNext:    make(map[string]failure),
		delay:       make(map[string]time.Duration),
		tokenTTL:    time.Hour,
		frontendURL: "http://127.0.0.1:3000",
		classify:    DefaultClassifier,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		rand.Read(s.secret)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler
	e.Use(s.record)

	e.POST("/auth/login", s.login)
	e.POST("/auth/register", s.register)
	e.GET("/auth/google-login", s.googleLogin)
	e.GET("/auth/callback", s.callback)
	e.GET("/oauth/authorize", s.authorize)

	p := e.Group("/predictions", s.requireAuth)
	p.POST("/", s.createPrediction)
	p.GET("/", s.listPredictions)
	p.GET("/:id", s.getPrediction)
	p.DELETE("/:id", s.deletePrediction)

	u := e.Group("/users", s.requireAuth)
	u.GET("/me", s.me)
	u.PUT("/me", s.updateMe)
	u.DELETE("/me", s.deleteMe)
	u.GET("/", s.listUsers, s.requireAdmin)
	u.GET("/:id", s.getUser, s.requireAdmin)
	u.DELETE("/:id", s.deleteUser, s.requireAdmin)

	s.e = e
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start serves on addr until the server fails.
func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// Calls returns how many requests reached route, written as
// "METHOD /path" with echo parameters, e.g. "DELETE /predictions/:id".
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls returns the number of requests served.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// FailNext makes the next request to route answer with status and detail.
func (s *Server) FailNext(route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[route] = failure{status: status, detail: detail}
}

// Delay holds every request to route for d before handling it.
func (s *Server) Delay(route string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay[route] = d
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		route := c.Request().Method + " " + c.Path()
		s.mu.Lock()
		s.calls[route]++
		f, failing := s.failNext[route]
		delete(s.failNext, route)
		d := s.delay[route]
		s.mu.Unlock()

		if d > 0 {
			select {
			case <-time.After(d):
			case <-c.Request().Context().Done():
				return c.Request().Context().Err()
			}
		}
		if failing {
			return c.JSON(f.status, echo.Map{"detail": f.detail})
		}
		return next(c)
	}
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	detail := err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			detail = msg
		}
	}
	c.JSON(status, echo.Map{"detail": detail})
}

func (s *Server) issueToken(a *account) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      a.Email,
		"uid":      a.ID,
		"is_admin": a.IsAdmin,
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
		}
		raw := strings.TrimPrefix(header, "Bearer ")
		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
		if err != nil || !tok.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		}
		sub, err := tok.Claims.GetSubject()
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		}

		s.mu.Lock()
		id, ok := s.byEmail[strings.ToLower(sub)]
		var acct *account
		if ok {
			acct = s.users[id]
		}
		s.mu.Unlock()
		if acct == nil || !acct.IsActive {
			return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
		}
		c.Set("user_id", acct.ID)
		return next(c)
	}
}

func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, _ := c.Get("user_id").(int64)
		s.mu.Lock()
		acct := s.users[id]
		s.mu.Unlock()
		if acct == nil || !acct.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Not enough permissions")
		}
		return next(c)
	}
}

// DefaultClassifier assigns result codes from AST, ALT and CHE. It has no
// clinical meaning; it only makes every code reachable.
func DefaultClassifier(req models.PredictionRequest) int {
	switch {
	case req.AST >= 100 && req.CHE < 5:
		return 3
	case req.AST >= 60:
		return 2
	case req.AST >= 40 || req.ALT >= 60:
		return 1
	}
	return 0
}

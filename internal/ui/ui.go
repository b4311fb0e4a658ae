// Package ui holds the seams between the client's state machines and the
// views that present them: routes, navigation, confirmation prompts and
// the system browser.
package ui

import (
	"net/url"
	"os/exec"
	"runtime"
	"sync"
)

// Route names a view.
type Route string

// Views known to the client.
const (
	RouteLogin      Route = "/login"
	RouteRegister   Route = "/register"
	RouteDashboard  Route = "/dashboard"
	RoutePredict    Route = "/predict"
	RouteProfile    Route = "/profile"
	RouteStatistics Route = "/statistics"
)

// ErrorAuthFailed is the login view's error indicator after a failed
// redirect login.
const ErrorAuthFailed = "auth_failed"

// LoginWithError returns the login route carrying an error indicator.
func LoginWithError(code string) Route {
	return Route(string(RouteLogin) + "?error=" + url.QueryEscape(code))
}

// Path returns the route without its query.
func (r Route) Path() string {
	u, err := url.Parse(string(r))
	if err != nil {
		return string(r)
	}
	return u.Path
}

// ErrorCode returns the error indicator carried by the route, if any.
func (r Route) ErrorCode() string {
	u, err := url.Parse(string(r))
	if err != nil {
		return ""
	}
	return u.Query().Get("error")
}

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(to Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(to Route)

// Navigate calls f(to).
func (f NavigatorFunc) Navigate(to Route) { f(to) }

// Confirmer asks the user an explicit yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f(prompt).
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm answers yes without asking.
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })

// Browser opens an external URL.
type Browser interface {
	Open(rawURL string) error
}

// BrowserFunc adapts a function to Browser.
type BrowserFunc func(rawURL string) error

// Open calls f(rawURL).
func (f BrowserFunc) Open(rawURL string) error { return f(rawURL) }

// SystemBrowser opens URLs with the platform's default handler.
var SystemBrowser = BrowserFunc(func(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	return cmd.Start()
})

// Recorder is a Navigator that remembers every route it was sent to.
type Recorder struct {
	mu     sync.Mutex
	routes []Route
	notify chan Route
}

// NewRecorder returns a Recorder that also delivers each route on a
// channel with the given buffer size. A full channel drops the route
// from the channel but not from the history.
func NewRecorder(buffer int) *Recorder {
	return &Recorder{notify: make(chan Route, buffer)}
}

// Navigate records the route.
func (r *Recorder) Navigate(to Route) {
	r.mu.Lock()
	r.routes = append(r.routes, to)
	r.mu.Unlock()
	select {
	case r.notify <- to:
	default:
	}
}

// Routes returns the routes navigated to so far.
func (r *Recorder) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.routes...)
}

// Last returns the most recent route, or "" if none.
func (r *Recorder) Last() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}

// C delivers routes as they are navigated to.
func (r *Recorder) C() <-chan Route {
	return r.notify
}

// Package handlers serves the local web UI: the login pages, the redirect
// login landing page and the protected prediction views.
package handlers

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ahmed-kaif/hcv-frontend/internal/auth"
	"github.com/ahmed-kaif/hcv-frontend/internal/events"
	"github.com/ahmed-kaif/hcv-frontend/internal/models"
	"github.com/ahmed-kaif/hcv-frontend/internal/prediction"
	"github.com/ahmed-kaif/hcv-frontend/internal/ui"
	"github.com/ahmed-kaif/hcv-frontend/internal/views"
)

//go:embed templates static
var assets embed.FS

// MsgAuthFailed is shown on the login page after a failed redirect login.
const MsgAuthFailed = "Google authentication failed. Please try again."

// PendingRetryAfter is sent with the loading page while the session is
// being restored.
const PendingRetryAfter = 1

var pageNames = []string{
	"login.html", "loading.html", "callback.html", "done.html",
	"dashboard.html", "detail.html", "predict.html", "stats.html",
}

// Sessions is the part of the session manager the web UI drives.
type Sessions interface {
	auth.SessionState
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context)
}

// Backend is the part of the API client the web UI calls directly.
type Backend interface {
	prediction.Service
	GoogleLoginURL(ctx context.Context) (string, error)
}

// Completer finishes a redirect login.
type Completer interface {
	Complete(ctx context.Context, query url.Values) auth.CallbackResult
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	sessions  Sessions
	backend   Backend
	guard     *auth.Guard
	callbacks func() Completer
	publisher events.Publisher
	origins   *http.CrossOriginProtection
	pages     map[string]*template.Template

	mu sync.Mutex
	wf *prediction.Workflow
}

// Option configures Handlers.
type Option func(*Handlers)

// WithPublisher sends prediction events from the web views to p.
func WithPublisher(p events.Publisher) Option {
	return func(h *Handlers) { h.publisher = p }
}

// NewHandlers parses the embedded templates and returns the handlers.
// callbacks is asked for a Completer on every /auth/callback request; a
// factory that returns the same Completer makes the landing page complete
// at most once for the life of the process.
func NewHandlers(sessions Sessions, backend Backend, callbacks func() Completer, opts ...Option) (*Handlers, error) {
	h := &Handlers{
		sessions:  sessions,
		backend:   backend,
		guard:     auth.NewGuard(sessions, ui.NavigatorFunc(func(ui.Route) {}), nil),
		callbacks: callbacks,
		publisher: events.Noop{},
		origins:   http.NewCrossOriginProtection(),
		pages:     make(map[string]*template.Template, len(pageNames)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.origins.SetDenyHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Warn("cross-origin request rejected", "method", r.Method, "path", r.URL.Path,
			"origin", r.Header.Get("Origin"), "sec_fetch_site", r.Header.Get("Sec-Fetch-Site"))
		http.Error(w, "Cross-origin request rejected", http.StatusForbidden)
	}))
	h.wf = h.newWorkflow()
	for _, name := range pageNames {
		t, err := template.ParseFS(assets, "templates/base.html", "templates/summary.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		h.pages[name] = t
	}
	return h, nil
}

// Static serves the embedded stylesheet under /static/.
func (h *Handlers) Static() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

// Layout is embedded in every view model for the navigation bar.
type Layout struct {
	Nav NavInfo
}

// NavInfo describes the session for the navigation bar.
type NavInfo struct {
	Authenticated bool
	Subject       string
}

func (h *Handlers) layout() Layout {
	s := h.sessions.Session()
	nav := NavInfo{Authenticated: s.Authenticated}
	if s.Identity != nil {
		nav.Subject = s.Identity.Subject
	}
	return Layout{Nav: nav}
}

// CrossOriginGuard rejects unsafe requests (POST and the like) sent by
// another site's page, so no other origin can log in, log out, submit or
// delete through the local UI. Safe methods and same-origin requests pass.
func (h *Handlers) CrossOriginGuard(next http.Handler) http.Handler {
	return h.origins.Handler(next)
}

// AuthMiddleware lets a request through only with a session. While the
// session loads it answers with a retryable loading page; without a
// session it redirects to the login page.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch h.guard.Decide() {
		case auth.Pending:
			w.Header().Set("Retry-After", strconv.Itoa(PendingRetryAfter))
			h.renderStatus(w, r, http.StatusServiceUnavailable, "loading.html", h.layout())
			return
		case auth.Redirect:
			http.Redirect(w, r, string(ui.RouteLogin), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Healthz reports that the server is up.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// LoginViewModel holds data for the login page.
type LoginViewModel struct {
	Layout
	Error string
	Email string
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	// If already logged in, go to the dashboard
	if !h.sessions.Loading() && h.sessions.Session().Authenticated {
		http.Redirect(w, r, string(ui.RouteDashboard), http.StatusFound)
		return
	}
	vm := LoginViewModel{Layout: h.layout()}
	if r.URL.Query().Get("error") == ui.ErrorAuthFailed {
		vm.Error = MsgAuthFailed
	}
	h.render(w, r, "login.html", vm)
}

// Login handles the login form submission.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login.html", LoginViewModel{Layout: h.layout(), Error: "Invalid form submission"})
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		h.render(w, r, "login.html", LoginViewModel{Layout: h.layout(), Error: "Email and password are required", Email: email})
		return
	}

	if err := h.sessions.Login(r.Context(), email, password); err != nil {
		h.render(w, r, "login.html", LoginViewModel{
			Layout: h.layout(),
			Error:  models.Message(err, auth.MsgLoginFailed),
			Email:  email,
		})
		return
	}
	h.resetWorkflow()
	http.Redirect(w, r, string(ui.RouteDashboard), http.StatusFound)
}

// GoogleLogin sends the browser to the provider's authorization page.
func (h *Handlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	target, err := h.backend.GoogleLoginURL(r.Context())
	if err != nil {
		slog.Warn("redirect login unavailable", "error", err)
		h.render(w, r, "login.html", LoginViewModel{Layout: h.layout(), Error: MsgAuthFailed})
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Logout ends the session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context())
	h.resetWorkflow()
	http.Redirect(w, r, string(ui.RouteLogin), http.StatusFound)
}

// CallbackViewModel holds data for the redirect login landing page.
type CallbackViewModel struct {
	Layout
	Failed         bool
	Reason         string
	RefreshSeconds int
	RefreshURL     string
}

// Callback completes a redirect login. Success goes straight to the
// dashboard; a failure is shown for auth.FailureRedirectDelay and then
// the page moves to the login view with an error indicator.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	// The exchange runs once; a closed tab must not abort it.
	ctx := context.WithoutCancel(r.Context())
	res := h.callbacks().Complete(ctx, r.URL.Query())

	switch res.State {
	case auth.CallbackSuccess:
		h.resetWorkflow()
		http.Redirect(w, r, string(ui.RouteDashboard), http.StatusFound)
	case auth.CallbackFailure:
		h.render(w, r, "callback.html", CallbackViewModel{
			Layout:         h.layout(),
			Failed:         true,
			Reason:         res.Reason(),
			RefreshSeconds: int(auth.FailureRedirectDelay / time.Second),
			RefreshURL:     string(ui.LoginWithError(ui.ErrorAuthFailed)),
		})
	default:
		h.render(w, r, "callback.html", CallbackViewModel{
			Layout:         h.layout(),
			RefreshSeconds: 1,
			RefreshURL:     r.URL.RequestURI(),
		})
	}
}

// Done tells the user a terminal-initiated login has finished.
func (h *Handlers) Done(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "done.html", h.layout())
}

// Row is one record in the history table.
type Row struct {
	ID       int64
	Date     string
	Info     models.ResultInfo
	Deleting bool
	Selected bool
}

// DashboardViewModel is the data passed to the history view.
type DashboardViewModel struct {
	Layout
	Rows           []Row
	Summary        []prediction.LabelCount
	Error          string
	ConfirmPrompt  string
	DetailsLoading bool
}

func (h *Handlers) newWorkflow() *prediction.Workflow {
	// The browser asks for confirmation before posting a delete.
	return prediction.NewWorkflow(h.backend, ui.AlwaysConfirm, prediction.WithPublisher(h.publisher))
}

// workflow returns the prediction state shared by every page of the UI.
func (h *Handlers) workflow() *prediction.Workflow {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.wf
}

// resetWorkflow drops the previous session's records and form.
func (h *Handlers) resetWorkflow() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wf = h.newWorkflow()
}

// Dashboard loads and renders the prediction history.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	wf := h.workflow()
	var flash string
	if err := wf.ListAll(r.Context()); err != nil {
		flash = err.Error()
	}
	h.renderDashboard(w, r, wf, flash)
}

// renderDashboard shows the records the workflow holds, without loading
// them again.
func (h *Handlers) renderDashboard(w http.ResponseWriter, r *http.Request, wf *prediction.Workflow, flash string) {
	vm := DashboardViewModel{
		Layout:         h.layout(),
		ConfirmPrompt:  prediction.ConfirmDeletePrompt,
		Error:          flash,
		DetailsLoading: wf.DetailsLoading(),
	}
	var selected int64
	if sel := wf.Selected(); sel != nil {
		selected = sel.ID
	}
	recs := wf.Predictions()
	for _, rec := range recs {
		vm.Rows = append(vm.Rows, Row{
			ID:       rec.ID,
			Date:     views.Date(rec.CreatedAt),
			Info:     rec.Result(),
			Deleting: wf.Deleting(rec.ID),
			Selected: rec.ID == selected,
		})
	}
	vm.Summary = prediction.Summarize(recs)
	h.render(w, r, "dashboard.html", vm)
}

// DetailViewModel is the data passed to the detail view.
type DetailViewModel struct {
	Layout
	views.ReportData
}

// Detail renders one record.
func (h *Handlers) Detail(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.fetch(w, r)
	if !ok {
		return
	}
	h.render(w, r, "detail.html", DetailViewModel{Layout: h.layout(), ReportData: views.NewReportData(rec)})
}

// CloseDetail clears the selected record and returns to the history.
func (h *Handlers) CloseDetail(w http.ResponseWriter, r *http.Request) {
	h.workflow().CloseDetail()
	http.Redirect(w, r, string(ui.RouteDashboard), http.StatusSeeOther)
}

// Print renders the standalone printable report of one record.
func (h *Handlers) Print(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.fetch(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.ReportHTML(w, rec, true); err != nil {
		slog.Error("report rendering failed", "id", rec.ID, "error", err)
	}
}

// Delete removes one record and shows the remaining history. The list is
// the one last loaded minus the deleted record; it is only fetched here
// when nothing has been loaded yet.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Prediction not found", http.StatusNotFound)
		return
	}
	wf := h.workflow()
	if !wf.Loaded() {
		if err := wf.ListAll(r.Context()); err != nil {
			h.renderDashboard(w, r, wf, err.Error())
			return
		}
	}
	var flash string
	if err := wf.Delete(r.Context(), id); err != nil {
		flash = err.Error()
		if errors.Is(err, prediction.ErrDeleteInProgress) {
			flash = "Deleting..."
		}
	}
	h.renderDashboard(w, r, wf, flash)
}

func (h *Handlers) fetch(w http.ResponseWriter, r *http.Request) (*models.PredictionRecord, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Prediction not found", http.StatusNotFound)
		return nil, false
	}
	rec, err := h.workflow().FetchDetail(r.Context(), id)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, models.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return nil, false
	}
	return rec, true
}

// FieldInput is one numeric input of the prediction form.
type FieldInput struct {
	Name     string
	Value    string
	Required bool
}

// ResultView is a fresh prediction with its advice.
type ResultView struct {
	ID       int64
	Info     models.ResultInfo
	Guidance views.Guidance
}

// PredictViewModel is the data passed to the prediction form.
type PredictViewModel struct {
	Layout
	Fields     []FieldInput
	Sex        string
	Error      string
	Result     *ResultView
	Submitting bool
}

// predictView renders the workflow's current form and active result.
func (h *Handlers) predictView(wf *prediction.Workflow) PredictViewModel {
	form := wf.Form()
	values := form.Values()
	vm := PredictViewModel{Layout: h.layout(), Sex: string(form.Sex), Submitting: wf.Submitting()}
	for _, name := range prediction.RequiredFields {
		vm.Fields = append(vm.Fields, FieldInput{Name: name, Value: values.Get(name), Required: true})
	}
	for _, name := range prediction.OptionalFields {
		vm.Fields = append(vm.Fields, FieldInput{Name: name, Value: values.Get(name)})
	}
	if rec := wf.Result(); rec != nil {
		info := rec.Result()
		vm.Result = &ResultView{ID: rec.ID, Info: info, Guidance: views.GuidanceFor(info.Label)}
	}
	return vm
}

// PredictForm renders the prediction form with the last input and result.
func (h *Handlers) PredictForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "predict.html", h.predictView(h.workflow()))
}

// Predict submits the prediction form.
func (h *Handlers) Predict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	wf := h.workflow()
	if wf.Submitting() {
		vm := h.predictView(wf)
		vm.Error = "A prediction is already being processed"
		h.render(w, r, "predict.html", vm)
		return
	}
	form, err := prediction.FormFromValues(r.PostForm)
	if err != nil {
		vm := h.predictView(wf)
		vm.Error = err.Error()
		h.render(w, r, "predict.html", vm)
		return
	}

	_, err = wf.Submit(r.Context(), form)
	vm := h.predictView(wf)
	if err != nil {
		vm.Error = err.Error()
	}
	h.render(w, r, "predict.html", vm)
}

// ResetPrediction clears the form and the active result.
func (h *Handlers) ResetPrediction(w http.ResponseWriter, r *http.Request) {
	h.workflow().Reset()
	http.Redirect(w, r, "/predict", http.StatusSeeOther)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, viewName string, data any) {
	h.renderStatus(w, r, http.StatusOK, viewName, data)
}

func (h *Handlers) renderStatus(w http.ResponseWriter, r *http.Request, status int, viewName string, data any) {
	tmpl, ok := h.pages[viewName]
	if !ok {
		slog.Error("unknown template", "view", viewName)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	target := "base.html"
	if r.Header.Get("HX-Request") == "true" {
		target = "content"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, target, data); err != nil {
		slog.Error("template execution failed", "view", viewName, "error", err)
	}
}

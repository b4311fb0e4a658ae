// Package app wires the client together: one token store, one API client
// and one session manager per process, shared by every view.
package app

import (
	"context"
	"log/slog"

	"github.com/ahmed-kaif/hcv-frontend/internal/account"
	"github.com/ahmed-kaif/hcv-frontend/internal/api"
	"github.com/ahmed-kaif/hcv-frontend/internal/auth"
	"github.com/ahmed-kaif/hcv-frontend/internal/config"
	"github.com/ahmed-kaif/hcv-frontend/internal/events"
	"github.com/ahmed-kaif/hcv-frontend/internal/prediction"
	"github.com/ahmed-kaif/hcv-frontend/internal/storage"
	"github.com/ahmed-kaif/hcv-frontend/internal/ui"
)

// App is the process-wide client state.
type App struct {
	Config    *config.Config
	Store     storage.Store
	Client    *api.Client
	Manager   *auth.Manager
	Publisher events.Publisher
	Nav       ui.Navigator
}

// New opens the token store and builds the client and session manager.
// The manager is still loading; call Manager.Initialize.
func New(ctx context.Context, cfg *config.Config, nav ui.Navigator, browser ui.Browser) (*App, error) {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Requests carry the session's token. The manager needs the client to
	// log in, so the source looks it up on each call.
	var manager *auth.Manager
	session := api.TokenSourceFunc(func(ctx context.Context) (string, error) {
		return manager.Read(ctx)
	})
	client := api.New(cfg.APIURL, api.WithTimeout(cfg.HTTPTimeout), api.WithTokenSource(session))
	manager = auth.NewManager(store, client, nav, browser)

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		publisher = events.NewAMQPPublisher(cfg.AMQPURL, cfg.EventsQueue)
		slog.Debug("publishing prediction events", "queue", cfg.EventsQueue)
	}

	return &App{
		Config:    cfg,
		Store:     store,
		Client:    client,
		Manager:   manager,
		Publisher: publisher,
		Nav:       nav,
	}, nil
}

// Completer returns a fresh redirect login completion handler.
func (a *App) Completer() *auth.Completer {
	return auth.NewCompleter(a.Client, a.Manager, a.Nav)
}

// Workflow returns a prediction workflow that confirms deletions with
// confirm.
func (a *App) Workflow(confirm ui.Confirmer) *prediction.Workflow {
	return prediction.NewWorkflow(a.Client, confirm, prediction.WithPublisher(a.Publisher))
}

// Profile returns the account screen state.
func (a *App) Profile(confirm ui.Confirmer) *account.Profile {
	return account.NewProfile(a.Client, a.Manager, confirm)
}

// Guard returns a route guard over the session manager. pending is shown
// while the session loads.
func (a *App) Guard(pending auth.View) *auth.Guard {
	return auth.NewGuard(a.Manager, a.Nav, pending)
}

// Close releases the token store.
func (a *App) Close() error {
	return a.Store.Close()
}

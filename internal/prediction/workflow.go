// Package prediction drives the prediction screens: submitting lab values,
// showing the result, and listing, inspecting and deleting past records.
package prediction

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ahmed-kaif/hcv-frontend/internal/events"
	"github.com/ahmed-kaif/hcv-frontend/internal/models"
	"github.com/ahmed-kaif/hcv-frontend/internal/ui"
)

// Messages shown when a backend call fails.
const (
	MsgSubmitFailed = "Prediction failed. Please try again."
	MsgLoadFailed   = "Failed to load prediction history"
	MsgDetailFailed = "Failed to load prediction details"
	MsgDeleteFailed = "Failed to delete prediction"
)

// ConfirmDeletePrompt is the question asked before deleting a record.
const ConfirmDeletePrompt = "Are you sure you want to delete this prediction?"

var (
	// ErrDeleteCancelled is returned when the user declines the deletion.
	ErrDeleteCancelled = errors.New("deletion cancelled")
	// ErrDeleteInProgress is returned when the same record is already
	// being deleted.
	ErrDeleteInProgress = errors.New("deletion already in progress")
)

// Error is a failed workflow operation. Error() is the text to display;
// the cause is kept for errors.Is.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// Service is the backend surface the workflow uses.
type Service interface {
	CreatePrediction(ctx context.Context, req models.PredictionRequest) (*models.PredictionRecord, error)
	ListPredictions(ctx context.Context) ([]models.PredictionRecord, error)
	GetPrediction(ctx context.Context, id int64) (*models.PredictionRecord, error)
	DeletePrediction(ctx context.Context, id int64) error
}

// Workflow is the state behind the prediction screens. It is safe for
// concurrent use; when operations overlap, the last response to arrive
// wins for shared display state.
type Workflow struct {
	svc       Service
	confirm   ui.Confirmer
	publisher events.Publisher

	mu             sync.Mutex
	form           Form
	result         *models.PredictionRecord
	submitting     bool
	predictions    []models.PredictionRecord
	loaded         bool
	selected       *models.PredictionRecord
	detailsLoading int
	deleting       map[int64]bool
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithPublisher sends create and delete events to p.
func WithPublisher(p events.Publisher) Option {
	return func(w *Workflow) { w.publisher = p }
}

// NewWorkflow returns a workflow with a default form and no records.
func NewWorkflow(svc Service, confirm ui.Confirmer, opts ...Option) *Workflow {
	w := &Workflow{
		svc:       svc,
		confirm:   confirm,
		publisher: events.Noop{},
		form:      DefaultForm(),
		deleting:  make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Submit validates form and, if it is complete, asks the backend for a
// classification. The active result is cleared first and only set again
// on success. A validation failure never reaches the network.
func (w *Workflow) Submit(ctx context.Context, form Form) (*models.PredictionRecord, error) {
	w.mu.Lock()
	w.form = form
	w.result = nil
	w.mu.Unlock()

	req, err := form.Request()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.submitting = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	rec, err := w.svc.CreatePrediction(ctx, req)
	if err != nil {
		slog.Warn("prediction request failed", "error", err)
		return nil, &Error{Msg: models.Message(err, MsgSubmitFailed), Err: err}
	}

	w.mu.Lock()
	w.result = rec
	w.mu.Unlock()

	info := rec.Result()
	slog.Info("prediction received", "id", rec.ID, "result_id", rec.ResultID, "label", info.Label)
	w.publish(ctx, events.PredictionCreated(*rec))
	return rec, nil
}

// Result returns the active submitted result, or nil.
func (w *Workflow) Result() *models.PredictionRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Submitting reports whether a submission is in flight.
func (w *Workflow) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// Form returns the current form input.
func (w *Workflow) Form() Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// Reset returns the form to its defaults and drops the active result.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form = DefaultForm()
	w.result = nil
}

// ListAll loads every record of the session. On failure the list is left
// empty.
func (w *Workflow) ListAll(ctx context.Context) error {
	recs, err := w.svc.ListPredictions(ctx)
	if err != nil {
		slog.Warn("listing predictions failed", "error", err)
		w.mu.Lock()
		w.predictions = nil
		w.loaded = false
		w.mu.Unlock()
		return &Error{Msg: MsgLoadFailed, Err: err}
	}

	w.mu.Lock()
	w.predictions = recs
	w.loaded = true
	w.mu.Unlock()
	return nil
}

// Loaded reports whether the last ListAll succeeded, i.e. whether
// Predictions reflects the backend apart from local deletions.
func (w *Workflow) Loaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loaded
}

// Predictions returns a copy of the loaded records.
func (w *Workflow) Predictions() []models.PredictionRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.PredictionRecord(nil), w.predictions...)
}

// FetchDetail loads one record and makes it the selected one. Fetches are
// independent; whichever response arrives last is selected.
func (w *Workflow) FetchDetail(ctx context.Context, id int64) (*models.PredictionRecord, error) {
	w.mu.Lock()
	w.detailsLoading++
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.detailsLoading--
		w.mu.Unlock()
	}()

	rec, err := w.svc.GetPrediction(ctx, id)
	if err != nil {
		slog.Warn("loading prediction failed", "id", id, "error", err)
		return nil, &Error{Msg: MsgDetailFailed, Err: err}
	}

	w.mu.Lock()
	w.selected = rec
	w.mu.Unlock()
	return rec, nil
}

// Selected returns the record shown in the detail view, or nil.
func (w *Workflow) Selected() *models.PredictionRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selected
}

// CloseDetail clears the selection.
func (w *Workflow) CloseDetail() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = nil
}

// DetailsLoading reports whether any detail fetch is in flight.
func (w *Workflow) DetailsLoading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.detailsLoading > 0
}

// Delete asks for confirmation and deletes the record. On success the
// record is removed from the loaded list without a refetch; on failure the
// list is untouched. Different records may be deleted concurrently.
func (w *Workflow) Delete(ctx context.Context, id int64) error {
	if !w.confirm.Confirm(ConfirmDeletePrompt) {
		return ErrDeleteCancelled
	}

	w.mu.Lock()
	if w.deleting[id] {
		w.mu.Unlock()
		return ErrDeleteInProgress
	}
	w.deleting[id] = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		delete(w.deleting, id)
		w.mu.Unlock()
	}()

	if err := w.svc.DeletePrediction(ctx, id); err != nil {
		slog.Warn("deleting prediction failed", "id", id, "error", err)
		return &Error{Msg: MsgDeleteFailed, Err: err}
	}

	w.mu.Lock()
	kept := make([]models.PredictionRecord, 0, len(w.predictions))
	for _, p := range w.predictions {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	w.predictions = kept
	if w.selected != nil && w.selected.ID == id {
		w.selected = nil
	}
	w.mu.Unlock()

	slog.Info("prediction deleted", "id", id)
	w.publish(ctx, events.PredictionDeleted(id))
	return nil
}

// Deleting reports whether a delete of id is in flight.
func (w *Workflow) Deleting(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.deleting[id]
}

func (w *Workflow) publish(ctx context.Context, ev events.Event) {
	if err := w.publisher.Publish(ctx, ev); err != nil {
		slog.Warn("publishing event failed", "type", ev.Type, "prediction_id", ev.PredictionID, "error", err)
	}
}

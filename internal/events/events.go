// Package events publishes prediction lifecycle events for downstream
// consumers. Publishing is best-effort: callers log failures and carry on.
package events

import (
	"context"
	"time"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"
)

// Event types.
const (
	TypePredictionCreated = "prediction.created"
	TypePredictionDeleted = "prediction.deleted"
)

// Event describes a change to a prediction record.
type Event struct {
	Type         string          `json:"type"`
	PredictionID int64           `json:"prediction_id"`
	ResultID     int             `json:"result_id"`
	Label        string          `json:"label,omitempty"`
	Severity     models.Severity `json:"severity,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// PredictionCreated builds the event for a newly stored record.
func PredictionCreated(rec models.PredictionRecord) Event {
	info := rec.Result()
	return Event{
		Type:         TypePredictionCreated,
		PredictionID: rec.ID,
		ResultID:     rec.ResultID,
		Label:        info.Label,
		Severity:     info.Severity,
		OccurredAt:   time.Now().UTC(),
	}
}

// PredictionDeleted builds the event for a removed record.
func PredictionDeleted(id int64) Event {
	return Event{
		Type:         TypePredictionDeleted,
		PredictionID: id,
		OccurredAt:   time.Now().UTC(),
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Noop discards events.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, Event) error { return nil }

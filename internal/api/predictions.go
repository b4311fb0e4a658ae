package api

import (
	"context"
	"net/http"

	"github.com/ahmed-kaif/hcv-frontend/internal/models"
)

// CreatePrediction submits lab values and returns the stored record.
func (c *Client) CreatePrediction(ctx context.Context, req models.PredictionRequest) (*models.PredictionRecord, error) {
	var rec models.PredictionRecord
	if err := c.doJSON(ctx, http.MethodPost, "/predictions/", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListPredictions returns every record owned by the session.
func (c *Client) ListPredictions(ctx context.Context) ([]models.PredictionRecord, error) {
	var recs []models.PredictionRecord
	if err := c.doJSON(ctx, http.MethodGet, "/predictions/", nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// GetPrediction returns one record.
func (c *Client) GetPrediction(ctx context.Context, id int64) (*models.PredictionRecord, error) {
	var rec models.PredictionRecord
	if err := c.doJSON(ctx, http.MethodGet, pathID("/predictions/", id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeletePrediction deletes one record.
func (c *Client) DeletePrediction(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, pathID("/predictions/", id), nil, nil)
}

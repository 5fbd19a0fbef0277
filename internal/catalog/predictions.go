package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Batch outcome reported back to the submitting client.
const (
	PredictionsStored  = "stored_ok"
	PredictionsPartial = "partial_success"
)

const (
	maxPredictionBatch   = 1000
	defaultPredictionTop = 100
)

// Prediction is one model output submitted by a client.
type Prediction struct {
	ID             string          `json:"id"`
	PredictedPrice float64         `json:"predicted_price"`
	InputFeatures  json.RawMessage `json:"input_features"`
	ModelVersion   string          `json:"model_version,omitempty"`
	SubmittedBy    string          `json:"submitted_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PredictionStore persists submitted predictions.
type PredictionStore interface {
	SavePredictions(ctx context.Context, predictions []Prediction) error
	// ListPredictions returns up to limit predictions, newest first.
	ListPredictions(ctx context.Context, limit int) ([]Prediction, error)
}

// PredictionBatch reports how much of a submission was stored.
type PredictionBatch struct {
	Received int    `json:"received"`
	Stored   int    `json:"stored"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// PredictionService validates and records prediction batches.
type PredictionService struct {
	store PredictionStore
	clock Clock
	ids   IDGenerator
}

// NewPredictionService constructs a PredictionService.
func NewPredictionService(store PredictionStore, clock Clock, ids IDGenerator) *PredictionService {
	return &PredictionService{store: store, clock: clock, ids: ids}
}

type predictionItem struct {
	PredictedPrice json.RawMessage `json:"predicted_price"`
	InputFeatures  json.RawMessage `json:"input_features"`
	ModelVersion   json.RawMessage `json:"model_version"`
}

// Record stores every item of items that carries a numeric predicted_price.
// Items without one are skipped and reported as a partial success. An item
// that is not a JSON object rejects the whole batch.
func (s *PredictionService) Record(ctx context.Context, subject string, items []json.RawMessage) (PredictionBatch, error) {
	if len(items) > maxPredictionBatch {
		return PredictionBatch{}, fmt.Errorf("%w: at most %d predictions per batch", ErrInvalidQuery, maxPredictionBatch)
	}
	now := s.clock.Now().UTC()
	keep := make([]Prediction, 0, len(items))
	for i, raw := range items {
		item, err := decodePredictionItem(raw)
		if err != nil {
			return PredictionBatch{}, fmt.Errorf("%w: prediction %d: %v", ErrInvalidQuery, i, err)
		}
		price, ok := numericPrice(item.PredictedPrice)
		if !ok {
			continue
		}
		id, err := s.ids.NewID()
		if err != nil {
			return PredictionBatch{}, fmt.Errorf("prediction id: %w", err)
		}
		features := item.InputFeatures
		if len(features) == 0 || string(features) == "null" {
			features = json.RawMessage(`{}`)
		}
		keep = append(keep, Prediction{
			ID:             id,
			PredictedPrice: price,
			InputFeatures:  features,
			ModelVersion:   modelVersion(item.ModelVersion),
			SubmittedBy:    subject,
			CreatedAt:      now,
		})
	}
	if len(keep) > 0 {
		if err := s.store.SavePredictions(ctx, keep); err != nil {
			return PredictionBatch{}, fmt.Errorf("save predictions: %w", err)
		}
	}

	out := PredictionBatch{Received: len(items), Stored: len(keep), Status: PredictionsStored}
	out.Message = fmt.Sprintf("stored %d of %d predictions", out.Stored, out.Received)
	if out.Stored != out.Received {
		out.Status = PredictionsPartial
	}
	return out, nil
}

// Recent lists stored predictions, newest first. A zero limit means 100.
func (s *PredictionService) Recent(ctx context.Context, limit int) ([]Prediction, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be >= 0", ErrInvalidQuery)
	}
	if limit == 0 {
		limit = defaultPredictionTop
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	out, err := s.store.ListPredictions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return out, nil
}

func decodePredictionItem(raw json.RawMessage) (predictionItem, error) {
	var item predictionItem
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return item, errors.New("must be a JSON object")
	}
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return item, err
	}
	return item, nil
}

func numericPrice(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var price float64
	if err := json.Unmarshal(raw, &price); err != nil {
		return 0, false
	}
	return price, true
}

// modelVersion keeps a string version as-is and any other JSON value in its
// literal form.
func modelVersion(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var v string
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return string(raw)
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/JakeFAU/books-catalog-api/internal/catalog"
)

// PredictionStore keeps submitted predictions in memory.
type PredictionStore struct {
	mu          sync.RWMutex
	predictions []catalog.Prediction
}

// NewPredictionStore constructs an empty PredictionStore.
func NewPredictionStore() *PredictionStore {
	return &PredictionStore{}
}

// SavePredictions appends predictions.
func (s *PredictionStore) SavePredictions(_ context.Context, predictions []catalog.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predictions = append(s.predictions, predictions...)
	return nil
}

// ListPredictions returns up to limit predictions, newest first. A
// non-positive limit returns all of them.
func (s *PredictionStore) ListPredictions(_ context.Context, limit int) ([]catalog.Prediction, error) {
	s.mu.RLock()
	out := make([]catalog.Prediction, len(s.predictions))
	copy(out, s.predictions)
	s.mu.RUnlock()

	// Reverse insertion order first so equal timestamps keep newest-first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

package catalog

import (
	"context"
	"fmt"
)

// FeatureRow is one book flattened for model input.
type FeatureRow struct {
	Title    string  `json:"titulo"`
	Rating   float64 `json:"rating"`
	Price    float64 `json:"preco"`
	Category string  `json:"categoria"`
	Stock    int     `json:"disponibilidade"`
}

// TrainingSample pairs the encoded inputs of a book with its price.
type TrainingSample struct {
	Rating   float64 `json:"X_rating"`
	Category []int   `json:"X_categoria_ohe"`
	Price    float64 `json:"Y_preco"`
}

// TrainingSet is the one-hot encoded dataset. Categories[i] names the
// category set in position i of every sample's Category vector.
type TrainingSet struct {
	Samples    []TrainingSample `json:"training_data"`
	Total      int              `json:"total_samples"`
	Categories []string         `json:"one_hot_encoding_map"`
}

// Features returns every book with a readable rating as a feature row,
// ordered by title.
func (s *Service) Features(ctx context.Context) ([]FeatureRow, error) {
	books, err := s.store.ListBooks(ctx, BookFilter{})
	if err != nil {
		return nil, fmt.Errorf("ml features: %w", err)
	}
	out := make([]FeatureRow, 0, len(books))
	for _, b := range books {
		if !validRating(b.Rating) {
			continue
		}
		out = append(out, FeatureRow{
			Title:    b.Title,
			Rating:   float64(b.Rating),
			Price:    b.Price,
			Category: b.Category,
			Stock:    b.Stock,
		})
	}
	return out, nil
}

// TrainingData one-hot encodes the category of every categorized book with
// a readable rating. The vocabulary is every non-empty category in the
// store, sorted, so vectors keep their width across stock changes.
func (s *Service) TrainingData(ctx context.Context) (TrainingSet, error) {
	vocabulary, err := s.store.ListCategories(ctx, CategoryFilter{})
	if err != nil {
		return TrainingSet{}, fmt.Errorf("training vocabulary: %w", err)
	}
	index := make(map[string]int, len(vocabulary))
	for i, c := range vocabulary {
		index[c] = i
	}

	books, err := s.store.ListBooks(ctx, BookFilter{})
	if err != nil {
		return TrainingSet{}, fmt.Errorf("training data: %w", err)
	}
	samples := make([]TrainingSample, 0, len(books))
	for _, b := range books {
		if b.Category == "" || !validRating(b.Rating) {
			continue
		}
		vec := make([]int, len(vocabulary))
		if i, ok := index[b.Category]; ok {
			vec[i] = 1
		}
		samples = append(samples, TrainingSample{
			Rating:   float64(b.Rating),
			Category: vec,
			Price:    b.Price,
		})
	}
	return TrainingSet{Samples: samples, Total: len(samples), Categories: vocabulary}, nil
}

func validRating(r int) bool {
	return r >= minRating && r <= maxRating
}

package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/books-catalog-api/internal/catalog"
	"github.com/JakeFAU/books-catalog-api/internal/storage/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqIDs struct{ n int }

func (g *seqIDs) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("pred-%d", g.n), nil
}

func rawItems(t *testing.T, body string) []json.RawMessage {
	t.Helper()
	var items []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &items))
	return items
}

func TestRecordStoresNumericPredictions(t *testing.T) {
	t.Parallel()
	store := memory.NewPredictionStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := catalog.NewPredictionService(store, fixedClock{now: now}, &seqIDs{})
	ctx := context.Background()

	batch, err := svc.Record(ctx, "alice", rawItems(t, `[
		{"predicted_price": 42.5, "input_features": {"rating": 4}, "model_version": "lr-v1"},
		{"predicted_price": 12, "model_version": 3},
		{"predicted_price": null},
		{"predicted_price": "12.5"},
		{"predicted_price": true}
	]`))
	require.NoError(t, err)
	require.Equal(t, catalog.PredictionBatch{
		Received: 5,
		Stored:   2,
		Status:   catalog.PredictionsPartial,
		Message:  "stored 2 of 5 predictions",
	}, batch)

	stored, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, "pred-2", stored[0].ID)
	require.Equal(t, "3", stored[0].ModelVersion)
	require.JSONEq(t, `{}`, string(stored[0].InputFeatures))
	require.Equal(t, catalog.Prediction{
		ID:             "pred-1",
		PredictedPrice: 42.5,
		InputFeatures:  json.RawMessage(`{"rating": 4}`),
		ModelVersion:   "lr-v1",
		SubmittedBy:    "alice",
		CreatedAt:      now,
	}, stored[1])
}

func TestRecordFullBatchIsStoredOK(t *testing.T) {
	t.Parallel()
	svc := catalog.NewPredictionService(memory.NewPredictionStore(), fixedClock{}, &seqIDs{})

	batch, err := svc.Record(context.Background(), "bob", rawItems(t, `[{"predicted_price": 1}, {"predicted_price": 2.25}]`))
	require.NoError(t, err)
	require.Equal(t, catalog.PredictionsStored, batch.Status)
	require.Equal(t, 2, batch.Stored)

	empty, err := svc.Record(context.Background(), "bob", []json.RawMessage{})
	require.NoError(t, err)
	require.Equal(t, catalog.PredictionsStored, empty.Status)
	require.Zero(t, empty.Received)
}

func TestRecordRejectsNonObjects(t *testing.T) {
	t.Parallel()
	store := memory.NewPredictionStore()
	svc := catalog.NewPredictionService(store, fixedClock{}, &seqIDs{})

	_, err := svc.Record(context.Background(), "bob", rawItems(t, `[{"predicted_price": 1}, "oops"]`))
	require.ErrorIs(t, err, catalog.ErrInvalidQuery)

	stored, err := store.ListPredictions(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, stored, "a rejected batch stores nothing")

	_, err = svc.Recent(context.Background(), -1)
	require.ErrorIs(t, err, catalog.ErrInvalidQuery)
}

type failingPredictionStore struct{ catalog.PredictionStore }

func (failingPredictionStore) SavePredictions(context.Context, []catalog.Prediction) error {
	return errors.New("disk full")
}

func TestRecordSurfacesStoreErrors(t *testing.T) {
	t.Parallel()
	svc := catalog.NewPredictionService(failingPredictionStore{}, fixedClock{}, &seqIDs{})

	_, err := svc.Record(context.Background(), "bob", rawItems(t, `[{"predicted_price": 1}]`))
	require.ErrorContains(t, err, "save predictions")
	require.NotErrorIs(t, err, catalog.ErrInvalidQuery)
}

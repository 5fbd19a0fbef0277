package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JakeFAU/books-catalog-api/internal/catalog"
)

// PredictionStore is a Postgres-backed catalog.PredictionStore.
type PredictionStore struct {
	pool  Pool
	table string
}

// NewPredictionStore builds a PredictionStore on pool. An empty table
// defaults to "ml_predictions".
func NewPredictionStore(pool Pool, table string) (*PredictionStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table, "ml_predictions")
	if err != nil {
		return nil, err
	}
	return &PredictionStore{pool: pool, table: name}, nil
}

// EnsureSchema creates the predictions table if it does not exist.
func (s *PredictionStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id              TEXT PRIMARY KEY,
	predicted_price DOUBLE PRECISION NOT NULL,
	input_features  JSONB NOT NULL,
	model_version   TEXT NOT NULL,
	submitted_by    TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS %[1]s_created_idx ON %[1]s (created_at DESC)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s table: %w", s.table, err)
	}
	return nil
}

// SavePredictions inserts predictions in one transaction.
func (s *PredictionStore) SavePredictions(ctx context.Context, predictions []catalog.Prediction) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	if err := s.insertInTx(ctx, tx, predictions); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit predictions: %w", err)
	}
	return nil
}

func (s *PredictionStore) insertInTx(ctx context.Context, tx pgx.Tx, predictions []catalog.Prediction) error {
	query := fmt.Sprintf(`
INSERT INTO %s (id, predicted_price, input_features, model_version, submitted_by, created_at)
VALUES ($1, $2, $3::jsonb, $4, $5, $6)`, s.table)
	for _, p := range predictions {
		if _, err := tx.Exec(ctx, query,
			p.ID, p.PredictedPrice, string(p.InputFeatures), p.ModelVersion, p.SubmittedBy, p.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert prediction %s: %w", p.ID, err)
		}
	}
	return nil
}

// ListPredictions returns up to limit predictions, newest first.
func (s *PredictionStore) ListPredictions(ctx context.Context, limit int) ([]catalog.Prediction, error) {
	query := fmt.Sprintf(`
SELECT id, predicted_price, input_features::text, model_version, submitted_by, created_at
FROM %s ORDER BY created_at DESC, id DESC`, s.table)
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	out := make([]catalog.Prediction, 0)
	for rows.Next() {
		var (
			p        catalog.Prediction
			features string
		)
		if err := rows.Scan(&p.ID, &p.PredictedPrice, &features, &p.ModelVersion, &p.SubmittedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		p.InputFeatures = json.RawMessage(features)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return out, nil
}

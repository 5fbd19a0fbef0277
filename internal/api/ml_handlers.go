package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/books-catalog-api/internal/auth"
	"github.com/JakeFAU/books-catalog-api/internal/catalog"
)

// maxPredictionBody caps POST /api/v1/ml/predictions bodies.
const maxPredictionBody = 4 << 20

type featuresResponse struct {
	Features []catalog.FeatureRow `json:"features_data"`
	Total    int                  `json:"total_registros"`
}

func (s *Server) mlFeatures(w http.ResponseWriter, r *http.Request) {
	rows, err := s.catalog.Features(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, featuresResponse{Features: rows, Total: len(rows)})
}

func (s *Server) mlTrainingData(w http.ResponseWriter, r *http.Request) {
	set, err := s.catalog.TrainingData(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) recordPredictions(w http.ResponseWriter, r *http.Request) {
	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		auth.RejectUnauthorized(w)
		return
	}
	var items []json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPredictionBody)).Decode(&items); err != nil || items == nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON array of objects")
		return
	}
	batch, err := s.predictions.Record(r.Context(), subject, items)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.logger.Info("predictions recorded",
		zap.String("subject", subject),
		zap.Int("received", batch.Received),
		zap.Int("stored", batch.Stored),
	)
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) listPredictions(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit")
	if !ok {
		return
	}
	predictions, err := s.predictions.Recent(r.Context(), limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/books-catalog-api/internal/auth"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type triggerResponse struct {
	Status  string `json:"status"`
	Usuario string `json:"usuario"`
	JobID   string `json:"job_id"`
	Joined  bool   `json:"joined,omitempty"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	identity, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, registerResponse{Message: "user created", Username: identity.Username})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	token, err := s.auth.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTokenResponse(token))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	token, err := s.auth.Refresh(r.Header.Get("Authorization"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTokenResponse(token))
}

func (s *Server) triggerScrape(w http.ResponseWriter, r *http.Request) {
	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		auth.RejectUnauthorized(w)
		return
	}
	accepted, err := s.scraper.Trigger(r.Context(), subject)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.logger.Info("scrape triggered",
		zap.String("subject", subject),
		zap.String("job_id", accepted.Job.ID),
		zap.Bool("joined", accepted.Joined),
	)
	writeJSON(w, http.StatusOK, triggerResponse{
		Status:  "accepted",
		Usuario: subject,
		JobID:   accepted.Job.ID,
		Joined:  accepted.Joined,
	})
}

func newTokenResponse(token auth.Token) tokenResponse {
	return tokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(token.ExpiresAt.Sub(token.IssuedAt) / time.Second),
	}
}

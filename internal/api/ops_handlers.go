package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type healthResponse struct {
	Status      string `json:"status"`
	TotalLivros int    `json:"total_livros"`
}

// endpoint is one routed path and the methods it answers.
type endpoint struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	n, err := s.catalog.Count(r.Context())
	if err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"detail": "book store unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", TotalLivros: n})
}

func (s *Server) listEndpoints(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.endpoints)
}

// walkEndpoints lists every registered route, sorted by path, with the
// methods of each path merged.
func walkEndpoints(routes chi.Routes) ([]endpoint, error) {
	byPath := make(map[string][]string)
	err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}
		byPath[route] = append(byPath[route], method)
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]endpoint, 0, len(byPath))
	for path, methods := range byPath {
		sort.Strings(methods)
		out = append(out, endpoint{Path: path, Methods: methods})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobs.Jobs(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Job(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

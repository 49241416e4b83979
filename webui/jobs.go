package webui

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"paintserver/db"
)

type jobsResponse struct {
	Jobs  []db.Job `json:"jobs"`
	Count int      `json:"count"`
}

// handleJobs lists recent jobs, newest first. ?limit=N caps the list.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if s.deps.Jobs == nil {
		writeJSONError(w, http.StatusNotFound, "Job history is disabled")
		return
	}

	limit := db.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	jobs, err := s.deps.Jobs.ListRecentJobs(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list jobs", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	if jobs == nil {
		jobs = []db.Job{}
	}
	writeJSON(w, http.StatusOK, jobsResponse{Jobs: jobs, Count: len(jobs)})
}

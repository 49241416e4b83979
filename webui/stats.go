package webui

import (
	"net/http"
	"strconv"

	"paintserver/metrics"
)

const defaultRecentStats = 10

// handleStats reports task aggregates, slot occupancy and the last few
// tasks. ?recent=N changes how many tasks are listed (0 lists none).
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.Stats == nil {
		writeJSONError(w, http.StatusNotFound, "Statistics are disabled")
		return
	}

	recent := defaultRecentStats
	if raw := r.URL.Query().Get("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, "recent must be a non-negative integer")
			return
		}
		recent = n
	}

	var pool *metrics.PoolStatus
	if s.deps.Pool != nil {
		p := s.deps.Pool()
		pool = &p
	}
	writeJSON(w, http.StatusOK, s.deps.Stats.Snapshot(recent, pool))
}

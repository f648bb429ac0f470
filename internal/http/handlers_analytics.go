package http

import (
	"log/slog"
	"net/http"
)

// handleAnalytics computes order statistics for the requested window and
// returns them in one payload for the dashboard.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := s.stats.Compute(r.Context(), from, to)
	if err != nil {
		slog.ErrorContext(r.Context(), "Analytics computation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

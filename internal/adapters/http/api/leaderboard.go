package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleLeaderboard returns the current standings snapshot for the room.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.deps.Leaderboard(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

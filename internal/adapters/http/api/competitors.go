package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ringsidehq/ringside/internal/domain/model"
)

type createCompetitorRequest struct {
	HandlerName      string `json:"handlerName" validate:"required"`
	DogName          string `json:"dogName" validate:"required"`
	DogBreed         string `json:"dogBreed"`
	CompetitorNumber int    `json:"competitorNumber" validate:"required,min=1"`
	TestID           string `json:"testId"`
	PhotoRef         string `json:"photoRef"`
}

// handleCreateCompetitor registers a handler/dog pair in the room.
func (s *Server) handleCreateCompetitor(w http.ResponseWriter, r *http.Request) {
	var req createCompetitorRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	competitor, err := s.deps.CreateCompetitor(r.Context(), model.Competitor{
		RoomID:           chi.URLParam(r, "roomID"),
		HandlerName:      req.HandlerName,
		DogName:          req.DogName,
		DogBreed:         req.DogBreed,
		CompetitorNumber: req.CompetitorNumber,
		TestID:           req.TestID,
		PhotoRef:         req.PhotoRef,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, competitor)
}

// handleListCompetitors lists the room's competitors in creation order.
func (s *Server) handleListCompetitors(w http.ResponseWriter, r *http.Request) {
	competitors, err := s.deps.ListCompetitors(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, competitors)
}

// handleDeleteCompetitor removes a competitor registration.
func (s *Server) handleDeleteCompetitor(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DeleteCompetitor(r.Context(), chi.URLParam(r, "competitorID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

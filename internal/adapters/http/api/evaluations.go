package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	service "github.com/ringsidehq/ringside/internal/app"
	"github.com/ringsidehq/ringside/internal/auth"
)

type submitEvaluationRequest struct {
	TestID       string             `json:"testId" validate:"required"`
	CompetitorID string             `json:"competitorId" validate:"required"`
	Scores       map[string]float64 `json:"scores" validate:"required"`
	PenaltyIDs   []string           `json:"penaltyIds"`
	Notes        string             `json:"notes"`
}

type didNotParticipateRequest struct {
	TestID       string `json:"testId" validate:"required"`
	CompetitorID string `json:"competitorId" validate:"required"`
	Notes        string `json:"notes"`
}

// handleSubmitEvaluation records a judge's scores for one competitor and
// test. The final score in the response is the server-side computation.
func (s *Server) handleSubmitEvaluation(w http.ResponseWriter, r *http.Request) {
	var req submitEvaluationRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	ev, err := s.deps.RecordEvaluation(r.Context(), p, service.EvaluationSubmission{
		RoomID:       chi.URLParam(r, "roomID"),
		TestID:       req.TestID,
		CompetitorID: req.CompetitorID,
		Scores:       req.Scores,
		PenaltyIDs:   req.PenaltyIDs,
		Notes:        req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// handleDidNotParticipate records a no-show for one competitor and test.
func (s *Server) handleDidNotParticipate(w http.ResponseWriter, r *http.Request) {
	var req didNotParticipateRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	ev, err := s.deps.RecordDidNotParticipate(r.Context(), p,
		chi.URLParam(r, "roomID"), req.TestID, req.CompetitorID, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// handleListEvaluations lists the room's evaluations, optionally narrowed
// to one competitor via the competitorId query parameter.
func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	evs, err := s.deps.ListEvaluations(r.Context(),
		chi.URLParam(r, "roomID"), r.URL.Query().Get("competitorId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

// handleDeleteEvaluation removes an evaluation record.
func (s *Server) handleDeleteEvaluation(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DeleteEvaluation(r.Context(), chi.URLParam(r, "evaluationID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

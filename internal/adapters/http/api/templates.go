package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ringsidehq/ringside/internal/domain/model"
)

type templateRequest struct {
	Modality    string                `json:"modality"`
	Title       string                `json:"title" validate:"required"`
	Description string                `json:"description"`
	MaxScore    float64               `json:"maxScore" validate:"min=0"`
	Groups      []model.ScoreGroup    `json:"groups" validate:"required,min=1"`
	Penalties   []model.PenaltyOption `json:"penalties"`
}

func (req templateRequest) toModel(roomID, id string) model.TestTemplate {
	return model.TestTemplate{
		ID:          id,
		RoomID:      roomID,
		Modality:    model.Modality(req.Modality),
		Title:       req.Title,
		Description: req.Description,
		MaxScore:    req.MaxScore,
		Groups:      req.Groups,
		Penalties:   req.Penalties,
	}
}

// handleCreateTemplate creates a scoring template in the room.
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	tpl, err := s.deps.CreateTemplate(r.Context(), req.toModel(chi.URLParam(r, "roomID"), ""))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

// handleGetTemplate fetches one template.
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.deps.GetTemplate(r.Context(), chi.URLParam(r, "testID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// handleListTemplates lists the room's templates.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	tpls, err := s.deps.ListTemplates(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpls)
}

// handleUpdateTemplate replaces a template in place. Already-recorded
// evaluations keep their stored scores.
func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	tpl := req.toModel(chi.URLParam(r, "roomID"), chi.URLParam(r, "testID"))
	if tpl.MaxScore == 0 {
		tpl.MaxScore = tpl.ComputedMaxScore()
	}
	if err := s.deps.UpdateTemplate(r.Context(), tpl); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// handleDeleteTemplate removes a template.
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DeleteTemplate(r.Context(), chi.URLParam(r, "testID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

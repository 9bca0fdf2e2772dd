package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ringsidehq/ringside/internal/auth"
)

type createRoomRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	JudgeIDs    []string `json:"judgeIds"`
}

type updateRoomRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Active      *bool    `json:"active"`
	JudgeIDs    []string `json:"judgeIds"`
}

// handleCreateRoom creates a room owned by the acting admin.
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	p, _ := auth.PrincipalFrom(r.Context())
	room, err := s.deps.CreateRoom(r.Context(), p, req.Name, req.Description, req.JudgeIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// handleListRooms lists rooms visible to the caller: admins see the rooms
// they created, judges the rooms they are assigned to.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())

	var err error
	var rooms any
	if p.IsAdmin() {
		rooms, err = s.deps.ListRooms(r.Context(), p.UID)
	} else {
		rooms, err = s.deps.ListRoomsForJudge(r.Context(), p.UID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

// handleGetRoom fetches one room.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.deps.GetRoom(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// handleUpdateRoom replaces a room's editable fields; ownership and
// creation metadata are preserved server-side.
func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req updateRoomRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	room, err := s.deps.GetRoom(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	room.Name = req.Name
	room.Description = req.Description
	room.JudgeIDs = req.JudgeIDs
	if req.Active != nil {
		room.Active = *req.Active
	}
	if err := s.deps.UpdateRoom(r.Context(), room); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

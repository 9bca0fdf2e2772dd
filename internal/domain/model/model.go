// Package model contains domain models passed between layers.
package model

import "time"

// Role identifies what a logged-in principal is allowed to do.
type Role string

// Known roles.
const (
	RoleAdmin Role = "admin"
	RoleJudge Role = "judge"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleJudge
}

// Modality is a fixed tournament discipline.
type Modality string

// Tournament disciplines.
const (
	ModalityObedience Modality = "obedience"
	ModalityAgility   Modality = "agility"
	ModalityRally     Modality = "rally"
	ModalityProtect   Modality = "protection"
	ModalityTracking  Modality = "tracking"
)

// Modalities lists every known discipline, in display order.
func Modalities() []Modality {
	return []Modality{
		ModalityObedience,
		ModalityAgility,
		ModalityRally,
		ModalityProtect,
		ModalityTracking,
	}
}

// Valid reports whether the modality is a known discipline.
func (m Modality) Valid() bool {
	for _, known := range Modalities() {
		if m == known {
			return true
		}
	}
	return false
}

// User is an identity record resolved for a logged-in principal. UID maps
// to the store's document id.
type User struct {
	UID          string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

// Room is a tournament event instance scoping competitors, templates and
// evaluations.
type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedBy   string    `json:"createdBy"`
	JudgeIDs    []string  `json:"judgeIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasJudge reports whether uid is assigned to the room.
func (r *Room) HasJudge(uid string) bool {
	for _, id := range r.JudgeIDs {
		if id == uid {
			return true
		}
	}
	return false
}

// Competitor is a handler/dog pair registered in a room. A competitor is
// assigned to at most one active test at a time via TestID.
type Competitor struct {
	ID               string `json:"id"`
	RoomID           string `json:"roomId"`
	HandlerName      string `json:"handlerName"`
	DogName          string `json:"dogName"`
	DogBreed         string `json:"dogBreed"`
	CompetitorNumber int    `json:"competitorNumber"`
	TestID           string `json:"testId,omitempty"`
	PhotoRef         string `json:"photoRef,omitempty"`
}

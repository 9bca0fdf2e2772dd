package model

import "time"

// EvaluationStatus marks the outcome kind of a submission.
type EvaluationStatus string

// Evaluation statuses.
const (
	// StatusNormal is a regular scored submission.
	StatusNormal EvaluationStatus = "normal"
	// StatusDidNotParticipate forces a test score of 0 for the competitor
	// regardless of other judges' submissions for the same test.
	StatusDidNotParticipate EvaluationStatus = "did_not_participate"
)

// AppliedPenalty is one penalty entry attached to an evaluation. Value is
// copied from the template's PenaltyOption at submission time.
type AppliedPenalty struct {
	PenaltyID string  `json:"penaltyId"`
	Value     float64 `json:"value"`
}

// Evaluation is one judge's scored submission for one competitor on one
// test. It is written once at submission and never mutated; deletion exists
// only as an administrative escape hatch.
type Evaluation struct {
	ID           string             `json:"id"`
	RoomID       string             `json:"roomId"`
	TestID       string             `json:"testId"`
	CompetitorID string             `json:"competitorId"`
	JudgeID      string             `json:"judgeId"`
	Scores       map[string]float64 `json:"scores"`
	Penalties    []AppliedPenalty   `json:"penaltiesApplied"`
	FinalScore   float64            `json:"finalScore"`
	Status       EvaluationStatus   `json:"status,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// DidNotParticipate reports whether the evaluation is a DNS record.
func (e *Evaluation) DidNotParticipate() bool {
	return e.Status == StatusDidNotParticipate
}

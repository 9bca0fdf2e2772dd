package model

// ScoreOption is a leaf scoring criterion worth up to MaxPoints.
type ScoreOption struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	MaxPoints float64 `json:"maxPoints"`
}

// ScoreGroup is a named, ordered grouping of scoring criteria. It carries
// no numeric semantics of its own.
type ScoreGroup struct {
	Name    string        `json:"name"`
	Options []ScoreOption `json:"options"`
}

// PenaltyOption is a signed adjustment not tied to any criterion. Value is
// conventionally non-positive.
type PenaltyOption struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// TestTemplate is a weighted rubric for one discipline: ordered groups of
// scored criteria plus penalty definitions.
//
// MaxScore should equal the sum of all option MaxPoints across groups. The
// creator maintains that invariant; the system does not re-enforce it after
// in-place edits, so readers needing the true ceiling should call
// ComputedMaxScore.
type TestTemplate struct {
	ID          string          `json:"id"`
	RoomID      string          `json:"roomId,omitempty"`
	Modality    Modality        `json:"modality,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	MaxScore    float64         `json:"maxScore"`
	Groups      []ScoreGroup    `json:"groups"`
	Penalties   []PenaltyOption `json:"penalties"`
}

// ComputedMaxScore sums MaxPoints over every option in every group.
func (t *TestTemplate) ComputedMaxScore() float64 {
	var total float64
	for _, g := range t.Groups {
		for _, o := range g.Options {
			total += o.MaxPoints
		}
	}
	return total
}

// Option returns the score option with the given id, or false if the
// template does not declare it.
func (t *TestTemplate) Option(id string) (ScoreOption, bool) {
	for _, g := range t.Groups {
		for _, o := range g.Options {
			if o.ID == id {
				return o, true
			}
		}
	}
	return ScoreOption{}, false
}

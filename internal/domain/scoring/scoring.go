// Package scoring computes final scores for judge submissions against a
// test template.
package scoring

import (
	"github.com/ringsidehq/ringside/internal/domain/model"
)

// FinalScore computes the final score for one submission.
//
// The template is the sole source of truth for which criterion ids count:
// submitted ids the template does not declare are ignored. Each declared
// criterion contributes its submitted value clamped into [0, MaxPoints],
// with 0 for missing entries. Applied penalty values are added as-is
// (penalties are conventionally negative). The result never goes below 0.
//
// Pure and deterministic; callers persist the returned value redundantly
// on the evaluation and never trust a client-supplied total.
func FinalScore(tpl *model.TestTemplate, scores map[string]float64, penalties []model.AppliedPenalty) float64 {
	var total float64
	for _, group := range tpl.Groups {
		for _, opt := range group.Options {
			total += clamp(scores[opt.ID], 0, opt.MaxPoints)
		}
	}
	for _, p := range penalties {
		total += p.Value
	}
	if total < 0 {
		total = 0
	}
	return total
}

// clamp bounds v into [lo, hi]. Negative submissions are only prevented at
// the UI layer, so the floor is applied here as well.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

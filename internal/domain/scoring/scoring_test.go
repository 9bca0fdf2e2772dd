package scoring_test

import (
	"testing"

	"github.com/ringsidehq/ringside/internal/domain/model"
	scoring "github.com/ringsidehq/ringside/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func obedienceTemplate() *model.TestTemplate {
	return &model.TestTemplate{
		ID:       "tpl-obedience",
		Title:    "Obedience A",
		Modality: model.ModalityObedience,
		MaxScore: 60,
		Groups: []model.ScoreGroup{
			{
				Name: "Heelwork",
				Options: []model.ScoreOption{
					{ID: "heel-on-leash", Label: "Heeling on leash", MaxPoints: 20},
					{ID: "heel-off-leash", Label: "Heeling off leash", MaxPoints: 20},
				},
			},
			{
				Name: "Recall",
				Options: []model.ScoreOption{
					{ID: "recall", Label: "Recall", MaxPoints: 20},
				},
			},
		},
		Penalties: []model.PenaltyOption{
			{ID: "handler-error", Label: "Handler error", Value: -5},
			{ID: "double-command", Label: "Double command", Value: -2},
		},
	}
}

func TestFinalScore(t *testing.T) {
	Convey("Given an obedience template", t, func() {
		tpl := obedienceTemplate()

		Convey("When every criterion is submitted in range", func() {
			scores := map[string]float64{
				"heel-on-leash":  18,
				"heel-off-leash": 15.5,
				"recall":         20,
			}

			Convey("Then the total is the plain sum", func() {
				So(scoring.FinalScore(tpl, scores, nil), ShouldEqual, 53.5)
			})
		})

		Convey("When a criterion is missing from the submission", func() {
			scores := map[string]float64{"recall": 12}

			Convey("Then the missing criteria count as zero", func() {
				So(scoring.FinalScore(tpl, scores, nil), ShouldEqual, 12)
			})
		})

		Convey("When a submitted value exceeds the criterion maximum", func() {
			scores := map[string]float64{"recall": 27}

			Convey("Then it contributes exactly MaxPoints", func() {
				So(scoring.FinalScore(tpl, scores, nil), ShouldEqual, 20)
			})
		})

		Convey("When a submitted value is negative", func() {
			scores := map[string]float64{"recall": -8, "heel-on-leash": 10}

			Convey("Then it is floored at zero", func() {
				So(scoring.FinalScore(tpl, scores, nil), ShouldEqual, 10)
			})
		})

		Convey("When the submission contains undeclared criterion ids", func() {
			scores := map[string]float64{
				"recall":      10,
				"made-up":     40,
				"another-one": 99,
			}

			Convey("Then undeclared ids are ignored", func() {
				So(scoring.FinalScore(tpl, scores, nil), ShouldEqual, 10)
			})
		})

		Convey("When penalties are applied", func() {
			scores := map[string]float64{"recall": 20}
			penalties := []model.AppliedPenalty{
				{PenaltyID: "handler-error", Value: -5},
				{PenaltyID: "double-command", Value: -2},
			}

			Convey("Then their signed values are added", func() {
				So(scoring.FinalScore(tpl, scores, penalties), ShouldEqual, 13)
			})
		})

		Convey("When penalties push the total below zero", func() {
			scores := map[string]float64{"recall": 3}
			penalties := []model.AppliedPenalty{
				{PenaltyID: "handler-error", Value: -5},
			}

			Convey("Then the final score is clamped at zero", func() {
				So(scoring.FinalScore(tpl, scores, penalties), ShouldEqual, 0)
			})
		})

		Convey("When the submission is empty", func() {
			Convey("Then the final score is zero", func() {
				So(scoring.FinalScore(tpl, nil, nil), ShouldEqual, 0)
			})
		})
	})

	Convey("Given an empty template", t, func() {
		tpl := &model.TestTemplate{ID: "tpl-empty"}

		Convey("Then any submission scores zero", func() {
			So(scoring.FinalScore(tpl, map[string]float64{"anything": 50}, nil), ShouldEqual, 0)
		})
	})
}

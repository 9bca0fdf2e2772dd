package model_test

import (
	"testing"

	model "github.com/ringsidehq/ringside/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestTemplateComputedMaxScore(t *testing.T) {
	convey.Convey("Given a template with two groups", t, func() {
		tpl := model.TestTemplate{
			Title: "IGP Obedience",
			Groups: []model.ScoreGroup{
				{
					Name: "Heeling",
					Options: []model.ScoreOption{
						{ID: "heel-on-leash", Label: "Heeling on leash", MaxPoints: 10},
						{ID: "heel-off-leash", Label: "Heeling off leash", MaxPoints: 15},
					},
				},
				{
					Name: "Retrieve",
					Options: []model.ScoreOption{
						{ID: "retrieve-flat", Label: "Retrieve on flat", MaxPoints: 10},
					},
				},
			},
		}

		convey.Convey("Then ComputedMaxScore sums every option", func() {
			convey.So(tpl.ComputedMaxScore(), convey.ShouldEqual, 35)
		})

		convey.Convey("Then Option finds declared criteria", func() {
			opt, ok := tpl.Option("retrieve-flat")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(opt.MaxPoints, convey.ShouldEqual, 10)
		})

		convey.Convey("Then Option rejects undeclared criteria", func() {
			_, ok := tpl.Option("made-up")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given an empty template", t, func() {
		tpl := model.TestTemplate{}

		convey.Convey("Then ComputedMaxScore is zero", func() {
			convey.So(tpl.ComputedMaxScore(), convey.ShouldEqual, 0)
		})
	})
}

func TestRoomHasJudge(t *testing.T) {
	convey.Convey("Given a room with assigned judges", t, func() {
		room := model.Room{
			Name:     "Spring Trial",
			JudgeIDs: []string{"judge-1", "judge-2"},
		}

		convey.Convey("Then assigned judges are found", func() {
			convey.So(room.HasJudge("judge-2"), convey.ShouldBeTrue)
		})

		convey.Convey("Then unknown ids are not", func() {
			convey.So(room.HasJudge("judge-9"), convey.ShouldBeFalse)
		})
	})
}

func TestRoleAndModality(t *testing.T) {
	convey.Convey("Given the known roles", t, func() {
		convey.So(model.RoleAdmin.Valid(), convey.ShouldBeTrue)
		convey.So(model.RoleJudge.Valid(), convey.ShouldBeTrue)
		convey.So(model.Role("steward").Valid(), convey.ShouldBeFalse)
	})

	convey.Convey("Given the known modalities", t, func() {
		for _, m := range model.Modalities() {
			convey.So(m.Valid(), convey.ShouldBeTrue)
		}
		convey.So(model.Modality("freestyle").Valid(), convey.ShouldBeFalse)
	})
}

func TestEvaluationStatus(t *testing.T) {
	convey.Convey("Given a DNS evaluation", t, func() {
		ev := model.Evaluation{Status: model.StatusDidNotParticipate}
		convey.So(ev.DidNotParticipate(), convey.ShouldBeTrue)
	})

	convey.Convey("Given a normal evaluation", t, func() {
		ev := model.Evaluation{Status: model.StatusNormal}
		convey.So(ev.DidNotParticipate(), convey.ShouldBeFalse)
	})

	convey.Convey("Given an evaluation with no status", t, func() {
		ev := model.Evaluation{}
		convey.So(ev.DidNotParticipate(), convey.ShouldBeFalse)
	})
}

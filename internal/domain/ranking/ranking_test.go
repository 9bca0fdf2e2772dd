package ranking_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/ringsidehq/ringside/internal/domain/model"
	ranking "github.com/ringsidehq/ringside/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func eval(competitorID, testID string, final float64, minute int) model.Evaluation {
	return model.Evaluation{
		ID:           competitorID + "-" + testID + "-" + strconv.Itoa(minute),
		RoomID:       "room-1",
		TestID:       testID,
		CompetitorID: competitorID,
		JudgeID:      "judge",
		FinalScore:   final,
		Status:       model.StatusNormal,
		CreatedAt:    time.Date(2026, 5, 10, 9, minute, 0, 0, time.UTC),
	}
}

func TestBuildLeaderboard(t *testing.T) {
	Convey("Given a competitor with five evaluations for one test", t, func() {
		comp := model.Competitor{ID: "c1", RoomID: "room-1", CompetitorNumber: 7}
		evs := []model.Evaluation{
			eval("c1", "t1", 10, 1),
			eval("c1", "t1", 20, 2),
			eval("c1", "t1", 30, 3),
			eval("c1", "t1", 40, 4),
			eval("c1", "t1", 50, 5),
		}

		Convey("Then the test score is the mean of the first three by arrival", func() {
			board := ranking.BuildLeaderboard([]model.Competitor{comp}, evs)
			So(board, ShouldHaveLength, 1)
			So(board[0].TestScores["t1"], ShouldEqual, 20)
			So(board[0].TotalScore, ShouldEqual, 20)
		})

		Convey("And arrival order wins even when the input is shuffled", func() {
			shuffled := []model.Evaluation{evs[4], evs[1], evs[3], evs[0], evs[2]}
			board := ranking.BuildLeaderboard([]model.Competitor{comp}, shuffled)
			So(board[0].TestScores["t1"], ShouldEqual, 20)
		})
	})

	Convey("Given a competitor with a did_not_participate record", t, func() {
		comp := model.Competitor{ID: "c1", RoomID: "room-1", CompetitorNumber: 1}
		dns := eval("c1", "t1", 0, 4)
		dns.Status = model.StatusDidNotParticipate
		evs := []model.Evaluation{
			eval("c1", "t1", 95, 1),
			eval("c1", "t1", 88, 2),
			dns,
		}

		Convey("Then the DNS overrides every other judge's score", func() {
			board := ranking.BuildLeaderboard([]model.Competitor{comp}, evs)
			So(board[0].TestScores["t1"], ShouldEqual, 0)
			So(board[0].TotalScore, ShouldEqual, 0)
		})
	})

	Convey("Given a competitor evaluated on several tests", t, func() {
		comp := model.Competitor{ID: "c1", RoomID: "room-1", CompetitorNumber: 3}
		evs := []model.Evaluation{
			eval("c1", "t1", 30, 1),
			eval("c1", "t1", 40, 2),
			eval("c1", "t2", 50, 3),
		}

		Convey("Then the total sums the per-test means", func() {
			board := ranking.BuildLeaderboard([]model.Competitor{comp}, evs)
			So(board[0].TestScores["t1"], ShouldEqual, 35)
			So(board[0].TestScores["t2"], ShouldEqual, 50)
			So(board[0].TotalScore, ShouldEqual, 85)
			So(board[0].TestCount, ShouldEqual, 2)
		})
	})

	Convey("Given a competitor with no evaluations", t, func() {
		comp := model.Competitor{ID: "c-empty", RoomID: "room-1", CompetitorNumber: 12}

		Convey("Then it still appears with total 0 and an empty map", func() {
			board := ranking.BuildLeaderboard([]model.Competitor{comp}, nil)
			So(board, ShouldHaveLength, 1)
			So(board[0].TotalScore, ShouldEqual, 0)
			So(board[0].TestScores, ShouldBeEmpty)
			So(board[0].TestCount, ShouldEqual, 0)
		})
	})

	Convey("Given competitors with distinct totals", t, func() {
		a := model.Competitor{ID: "a", RoomID: "room-1", CompetitorNumber: 9}
		b := model.Competitor{ID: "b", RoomID: "room-1", CompetitorNumber: 2}
		evs := []model.Evaluation{
			eval("a", "t1", 57, 1),
			eval("b", "t1", 42, 2),
		}

		Convey("Then ordering is strictly descending by total", func() {
			board := ranking.BuildLeaderboard([]model.Competitor{b, a}, evs)
			So(board[0].Competitor.ID, ShouldEqual, "a")
			So(board[0].Rank, ShouldEqual, 1)
			So(board[1].Competitor.ID, ShouldEqual, "b")
			So(board[1].Rank, ShouldEqual, 2)
		})
	})

	Convey("Given competitors tied on total score", t, func() {
		first := model.Competitor{ID: "x", RoomID: "room-1", CompetitorNumber: 21}
		second := model.Competitor{ID: "y", RoomID: "room-1", CompetitorNumber: 4}
		evs := []model.Evaluation{
			eval("x", "t1", 60, 1),
			eval("y", "t1", 60, 2),
		}

		Convey("Then the lower competitor number ranks first", func() {
			board := ranking.BuildLeaderboard([]model.Competitor{first, second}, evs)
			So(board[0].Competitor.ID, ShouldEqual, "y")
			So(board[1].Competitor.ID, ShouldEqual, "x")
		})
	})

	Convey("Given an evaluation for a competitor missing from the snapshot", t, func() {
		comp := model.Competitor{ID: "c1", RoomID: "room-1", CompetitorNumber: 1}
		evs := []model.Evaluation{
			eval("c1", "t1", 80, 1),
			eval("ghost", "t1", 99, 2),
		}

		Convey("Then the stale evaluation is skipped", func() {
			board := ranking.BuildLeaderboard([]model.Competitor{comp}, evs)
			So(board, ShouldHaveLength, 1)
			So(board[0].Competitor.ID, ShouldEqual, "c1")
		})
	})

	Convey("Given timestamp collisions between judges", t, func() {
		comp := model.Competitor{ID: "c1", RoomID: "room-1", CompetitorNumber: 1}
		e1 := eval("c1", "t1", 10, 5)
		e2 := eval("c1", "t1", 20, 5)
		e3 := eval("c1", "t1", 30, 5)
		e4 := eval("c1", "t1", 90, 5)

		Convey("Then stable input order breaks the tie", func() {
			board := ranking.BuildLeaderboard([]model.Competitor{comp}, []model.Evaluation{e1, e2, e3, e4})
			So(board[0].TestScores["t1"], ShouldEqual, 20)
		})
	})
}

// Package ranking builds room leaderboards from persisted evaluations.
package ranking

import (
	"sort"

	"github.com/ringsidehq/ringside/internal/domain/model"
)

// TopJudgesPerTest bounds how many evaluations count toward a test score.
// The rule is "first three judges by arrival", not "best three scores".
const TopJudgesPerTest = 3

// Standing is one competitor's row in a leaderboard: the aggregate total
// plus enough breakdown for a UI to show per-test detail.
type Standing struct {
	Rank        int                `json:"rank"`
	Competitor  model.Competitor   `json:"competitor"`
	TotalScore  float64            `json:"totalScore"`
	TestCount   int                `json:"testCount"`
	TestScores  map[string]float64 `json:"testScores"`
	Evaluations []model.Evaluation `json:"evaluations"`
}

// BuildLeaderboard aggregates all evaluations for a room into a ranked list
// of competitors.
//
// Per (competitor, test): a single did_not_participate record forces the
// test score to 0 regardless of other judges; otherwise the evaluations are
// ordered by creation time ascending (stable on timestamp ties) and the
// test score is the arithmetic mean of the first TopJudgesPerTest final
// scores. A competitor's total is the sum over tests it has evaluations
// for; tests without evaluations are absent from the map, not zero-summed.
// Competitors with no evaluations still appear with total 0.
//
// Ordering is descending by total, ties broken by ascending competitor
// number, then stable input order. Evaluations referencing a competitor
// absent from the snapshot are skipped; the snapshots are only eventually
// consistent.
//
// Pure function of its inputs; safe to re-run from scratch on every change
// notification.
func BuildLeaderboard(competitors []model.Competitor, evaluations []model.Evaluation) []Standing {
	byCompetitor := make(map[string][]model.Evaluation, len(competitors))
	for _, ev := range evaluations {
		byCompetitor[ev.CompetitorID] = append(byCompetitor[ev.CompetitorID], ev)
	}

	standings := make([]Standing, 0, len(competitors))
	for _, c := range competitors {
		evs := byCompetitor[c.ID]

		byTest := make(map[string][]model.Evaluation)
		for _, ev := range evs {
			byTest[ev.TestID] = append(byTest[ev.TestID], ev)
		}

		testScores := make(map[string]float64, len(byTest))
		var total float64
		for testID, group := range byTest {
			score := testScore(group)
			testScores[testID] = score
			total += score
		}

		standings = append(standings, Standing{
			Competitor:  c,
			TotalScore:  total,
			TestCount:   len(testScores),
			TestScores:  testScores,
			Evaluations: evs,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].TotalScore != standings[j].TotalScore {
			return standings[i].TotalScore > standings[j].TotalScore
		}
		return standings[i].Competitor.CompetitorNumber < standings[j].Competitor.CompetitorNumber
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

// testScore reduces one (competitor, test) group to a single score.
func testScore(group []model.Evaluation) float64 {
	for _, ev := range group {
		if ev.DidNotParticipate() {
			return 0
		}
	}

	ordered := make([]model.Evaluation, len(group))
	copy(ordered, group)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	if len(ordered) > TopJudgesPerTest {
		ordered = ordered[:TopJudgesPerTest]
	}

	var sum float64
	for _, ev := range ordered {
		sum += ev.FinalScore
	}
	return sum / float64(len(ordered))
}

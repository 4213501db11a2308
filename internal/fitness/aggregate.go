// Package fitness reduces a batch of match results into per-candidate
// scores: side scoring, Wilson lower bound, and mirrored-pair aggregation.
package fitness

import "math"

// Outcome is the tri-state a side can land in for one match.
type Outcome int

const (
	Loss Outcome = 0
	Tie  Outcome = 1
	Win  Outcome = 2
)

// ScoreForSide converts a side's outcome and gas-worth delta into its raw
// score: O*1_000_000 + gasWorthDelta.
func ScoreForSide(outcome Outcome, gasWorthDelta int) int64 {
	return int64(outcome)*1_000_000 + int64(gasWorthDelta)
}

// ResultLike is the minimal shape aggregate needs from a match result,
// satisfied by match.Result without this package importing match (keeping
// the dependency direction orchestrator → fitness → match, not the reverse).
type ResultLike interface {
	SideWin(side string) bool
	SideTie(side string) bool
	SideGasWorthDelta(side string) int
	SideScore(side string) int64
}

// Aggregate is the reduced outcome of a batch of matches for one candidate.
type Aggregate struct {
	Games            int
	Wins             int
	Ties             int
	Losses           int
	AvgGasWorthDelta float64
	Score            float64
}

// CandidateSideFn resolves which side (at index i) the fitness-tracked
// candidate played, since training pairs a candidate as both player and
// enemy within the same batch.
type CandidateSideFn func(i int) string

// AggregateResults reduces results into an Aggregate, selecting each
// result's candidate side via candidateSide(i).
func AggregateResults(results []ResultLike, candidateSide CandidateSideFn) Aggregate {
	var agg Aggregate
	var gasSum int
	var scoreSum float64

	for i, r := range results {
		side := candidateSide(i)
		agg.Games++
		gasSum += r.SideGasWorthDelta(side)
		scoreSum += float64(r.SideScore(side))

		switch {
		case r.SideTie(side):
			agg.Ties++
		case r.SideWin(side):
			agg.Wins++
		default:
			agg.Losses++
		}
	}

	if agg.Games > 0 {
		agg.AvgGasWorthDelta = float64(gasSum) / float64(agg.Games)
		agg.Score = scoreSum / float64(agg.Games)
	}
	return agg
}

// WilsonLowerBound is the one-sided Wilson score confidence lower bound on
// win probability for the caller-supplied z (1.96 at every call site).
// Returns 0 when games <= 0.
func WilsonLowerBound(wins, games int, z float64) float64 {
	if games <= 0 {
		return 0
	}
	n := float64(games)
	phat := float64(wins) / n
	z2 := z * z
	denom := 1 + z2/n
	center := phat + z2/(2*n)
	spread := z * math.Sqrt((phat*(1-phat)+z2/(4*n))/n)
	lb := (center - spread) / denom
	if lb < 0 {
		lb = 0
	}
	return lb
}

package training

import "math"

// applyEloStep advances eloScore by one game's result against an opponent
// rated opponentScore, outcome ∈ {0, 0.5, 1}. The K-factor widens with the
// rating gap (capped) and the expected score comes from the standard
// logistic curve on a base-80 scale.
func applyEloStep(eloScore, opponentScore, outcome float64) float64 {
	gap := math.Abs(eloScore - opponentScore)
	k := 14 + math.Min(48, gap*0.2)
	expected := 1 / (1 + math.Pow(10, (opponentScore-eloScore)/80))
	return eloScore + k*(outcome-expected)
}

func outcomeFor(win, tie bool) float64 {
	switch {
	case tie:
		return 0.5
	case win:
		return 1
	default:
		return 0
	}
}

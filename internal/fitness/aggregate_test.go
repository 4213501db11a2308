package fitness

import (
	"math"
	"testing"
)

func TestScoreForSide(t *testing.T) {
	cases := []struct {
		outcome Outcome
		delta   int
		want    int64
	}{
		{Loss, 5, 5},
		{Tie, -3, 1_000_000 - 3},
		{Win, 10, 2_000_010},
	}
	for _, c := range cases {
		if got := ScoreForSide(c.outcome, c.delta); got != c.want {
			t.Errorf("ScoreForSide(%v, %d) = %d, want %d", c.outcome, c.delta, got, c.want)
		}
	}
}

type fakeResult struct {
	win, tie bool
	gasDelta int
	score    int64
}

func (r fakeResult) SideWin(side string) bool         { return r.win }
func (r fakeResult) SideTie(side string) bool         { return r.tie }
func (r fakeResult) SideGasWorthDelta(side string) int { return r.gasDelta }
func (r fakeResult) SideScore(side string) int64       { return r.score }

func TestAggregateResultsCounts(t *testing.T) {
	results := []ResultLike{
		fakeResult{win: true, gasDelta: 10, score: 2_000_010},
		fakeResult{tie: true, gasDelta: 0, score: 1_000_000},
		fakeResult{win: false, tie: false, gasDelta: -5, score: -5},
	}
	agg := AggregateResults(results, func(i int) string { return "player" })

	if agg.Games != 3 {
		t.Fatalf("expected 3 games, got %d", agg.Games)
	}
	if agg.Wins != 1 || agg.Ties != 1 || agg.Losses != 1 {
		t.Fatalf("expected 1 win/1 tie/1 loss, got %+v", agg)
	}
	wantAvgGas := float64(10+0-5) / 3
	if math.Abs(agg.AvgGasWorthDelta-wantAvgGas) > 1e-9 {
		t.Fatalf("expected avg gas delta %v, got %v", wantAvgGas, agg.AvgGasWorthDelta)
	}
}

func TestAggregateResultsEmptyBatch(t *testing.T) {
	agg := AggregateResults(nil, func(i int) string { return "player" })
	if agg.Games != 0 || agg.Score != 0 || agg.AvgGasWorthDelta != 0 {
		t.Fatalf("expected zero-value aggregate for empty batch, got %+v", agg)
	}
}

func TestWilsonLowerBoundZeroGames(t *testing.T) {
	if v := WilsonLowerBound(0, 0, 1.96); v != 0 {
		t.Fatalf("expected 0 for zero games, got %v", v)
	}
}

func TestWilsonLowerBoundAllWins(t *testing.T) {
	v := WilsonLowerBound(10, 10, 1.96)
	if v <= 0 || v >= 1 {
		t.Fatalf("expected a bound strictly within (0,1) for 10/10 wins, got %v", v)
	}
	// more games at the same ratio should tighten (raise) the lower bound
	v2 := WilsonLowerBound(100, 100, 1.96)
	if v2 <= v {
		t.Fatalf("expected more samples at 100%% win rate to raise the lower bound: %v vs %v", v, v2)
	}
}

func TestWilsonLowerBoundKnownValues(t *testing.T) {
	cases := []struct {
		wins, games int
		want        float64
	}{
		{10, 10, 0.7225},
		{18, 20, 0.6990},
	}
	for _, c := range cases {
		got := WilsonLowerBound(c.wins, c.games, 1.96)
		if math.Abs(got-c.want) > 1e-3 {
			t.Errorf("WilsonLowerBound(%d, %d) = %v, want %v ± 1e-3", c.wins, c.games, got, c.want)
		}
	}
}

func TestWilsonLowerBoundNeverExceedsWinRate(t *testing.T) {
	cases := []struct{ wins, games int }{{0, 10}, {3, 10}, {7, 10}, {10, 10}}
	for _, c := range cases {
		got := WilsonLowerBound(c.wins, c.games, 1.96)
		rate := float64(c.wins) / float64(c.games)
		if got < 0 || got > rate {
			t.Errorf("WilsonLowerBound(%d, %d) = %v, want within [0, %v]", c.wins, c.games, got, rate)
		}
	}
	if WilsonLowerBound(0, 10, 1.96) != 0 {
		t.Error("expected a zero lower bound for zero wins")
	}
}

func TestWilsonLowerBoundMonotonicInWinRate(t *testing.T) {
	low := WilsonLowerBound(3, 10, 1.96)
	high := WilsonLowerBound(8, 10, 1.96)
	if high <= low {
		t.Fatalf("expected higher win rate to produce a higher lower bound: low=%v high=%v", low, high)
	}
}

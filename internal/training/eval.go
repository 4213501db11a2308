package training

import (
	"context"
	"fmt"

	"github.com/clawforge/skirmish/internal/fitness"
	"github.com/clawforge/skirmish/internal/genetics"
	"github.com/clawforge/skirmish/internal/leaderboard"
	"github.com/clawforge/skirmish/internal/match"
	"github.com/clawforge/skirmish/internal/sim/ai"
	"github.com/clawforge/skirmish/internal/worker"
)

// candidate is one population member's params plus its evaluated fitness.
type candidate struct {
	Params genetics.Params
	WL     float64
	Score  float64
	Elo    float64
}

// evalJob is the per-spec bookkeeping the aggregator and Elo updater need
// alongside the raw MatchResult: which side the candidate played, and (Elo
// phase only) that game's opponent rating.
type evalJob struct {
	spec          match.Spec
	candidateSide string
	opponentScore float64
}

// evaluateCandidate builds the mirrored-pair (and, in the Elo phase,
// opponent-fanned) batch for one candidate's params, runs it through the
// pool, and reduces it to a fitness.Aggregate plus (Elo phase) an updated
// Elo rating.
func evaluateCandidate(pool *worker.Pool, base ai.CompositeSpec, kind ModuleKind, familyID string, params genetics.Params, ph phase, seeds []int32, matchDefaults match.Spec, lb *leaderboard.Store, eloK int, referenceElo float64) (candidate, error) {
	candidateComposite := withModuleSlot(base, kind, ai.ModuleSpec{FamilyID: familyID, Params: params})

	var jobs []evalJob
	if ph.Elo {
		if lb == nil {
			return candidate{}, fmt.Errorf("training: phase %s requires a leaderboard store", ph.ID)
		}
		opponents := lb.Nearest(referenceElo, eloK)
		if len(opponents) == 0 {
			return candidate{}, fmt.Errorf("training: phase %s found no leaderboard opponents", ph.ID)
		}
		for _, opp := range opponents {
			for _, seed := range seeds {
				m := matchDefaults
				m.Scenario = ph.scenario()
				jobs = append(jobs,
					evalJob{spec: withSides(m, seed, candidateComposite, opp.Composite), candidateSide: "player", opponentScore: opp.Score},
					evalJob{spec: withSides(m, seed, opp.Composite, candidateComposite), candidateSide: "enemy", opponentScore: opp.Score},
				)
			}
		}
	} else {
		for _, seed := range seeds {
			m := matchDefaults
			m.Scenario = ph.scenario()
			jobs = append(jobs,
				evalJob{spec: withSides(m, seed, candidateComposite, base), candidateSide: "player"},
				evalJob{spec: withSides(m, seed, base, candidateComposite), candidateSide: "enemy"},
			)
		}
	}

	specs := make([]match.Spec, len(jobs))
	for i, j := range jobs {
		specs[i] = j.spec
	}

	results, errs := pool.RunBatch(context.Background(), specs)
	for _, err := range errs {
		if err != nil {
			return candidate{}, fmt.Errorf("training: worker failure evaluating candidate: %w", err)
		}
	}

	resultLikes := make([]fitness.ResultLike, len(results))
	for i, r := range results {
		resultLikes[i] = r
	}
	candidateSide := func(i int) string { return jobs[i].candidateSide }
	agg := fitness.AggregateResults(resultLikes, candidateSide)

	c := candidate{
		Params: params,
		WL:     fitness.WilsonLowerBound(agg.Wins, agg.Games, 1.96),
		Score:  agg.Score,
	}

	if ph.Elo {
		elo := referenceElo
		for i, r := range results {
			side := jobs[i].candidateSide
			outcome := outcomeFor(r.SideWin(side), r.SideTie(side))
			elo = applyEloStep(elo, jobs[i].opponentScore, outcome)
		}
		c.Elo = elo
	}

	return c, nil
}

func withSides(spec match.Spec, seed int32, player, enemy ai.CompositeSpec) match.Spec {
	spec.Seed = seed
	spec.AIPlayer = player
	spec.AIEnemy = enemy
	return spec
}

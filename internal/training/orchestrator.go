package training

import (
	"fmt"
	"math"
	"time"

	"github.com/clawforge/skirmish/internal/genetics"
	"github.com/clawforge/skirmish/internal/sim"
	"github.com/clawforge/skirmish/internal/sim/ai"
)

// moduleTracker holds the running "best so far" metric for one module's
// training, carried across every phase in its curriculum. Non-Elo and Elo
// phases score on different scales (Wilson bound vs. Elo rating), so each
// gets its own sentinel-initialized tracker; a generation only overwrites
// best[module] when it strictly improves the tracker matching its phase
// kind, never a tracker from the other scale.
type moduleTracker struct {
	haveNonElo     bool
	bestWL         float64
	bestScore      float64
	haveElo        bool
	bestElo        float64
	bestEloWL      float64
	bestEloScore   float64
}

func newModuleTracker() *moduleTracker {
	return &moduleTracker{bestWL: math.Inf(-1), bestScore: math.Inf(-1), bestElo: math.Inf(-1)}
}

// improvesNonElo reports whether top strictly beats the tracked non-Elo best
// under (wl desc, score desc), then updates the tracker.
func (t *moduleTracker) improvesNonElo(top candidate) bool {
	better := !t.haveNonElo || top.WL > t.bestWL || (top.WL == t.bestWL && top.Score > t.bestScore)
	if better {
		t.haveNonElo = true
		t.bestWL, t.bestScore = top.WL, top.Score
	}
	return better
}

func (t *moduleTracker) improvesElo(top candidate) bool {
	better := !t.haveElo || top.Elo > t.bestElo ||
		(top.Elo == t.bestElo && top.WL > t.bestEloWL) ||
		(top.Elo == t.bestElo && top.WL == t.bestEloWL && top.Score > t.bestEloScore)
	if better {
		t.haveElo = true
		t.bestElo, t.bestEloWL, t.bestEloScore = top.Elo, top.WL, top.Score
	}
	return better
}

// RunCompositeTraining runs the phased coordinate-descent search configured
// by opts: for each module in the requested scope order, for each phase in
// that module's curriculum, evolve a population against the frozen
// reference composite (or, in the leaderboard phase, against sampled
// ladder opponents), freezing the module's best params before moving to the
// next phase. It writes the on-disk artifact layout as it goes and returns
// the final trained CompositeSpec.
func RunCompositeTraining(opts Options) (ai.CompositeSpec, error) {
	genRng := sim.NewStream(opts.Seed0 ^ 0x5AFE)

	best := ai.BaselineComposite()
	for _, kind := range opts.scopeOrder() {
		source, artifactPath := sourceFor(kind, opts)
		mod, err := initModule(kind, source, artifactPath, genRng)
		if err != nil {
			return ai.CompositeSpec{}, err
		}
		best = withModuleSlot(best, kind, mod)
	}

	runID := opts.RunID
	if runID == "" {
		runID = newRunID(best, time.Now())
	}
	writer := newRunArtifactWriter(opts.DataRoot, runID)
	matchDefaults := opts.matchDefaults()

	eloEnabled := opts.EloOpponents > 0 && opts.Leaderboard != nil

	for _, kind := range opts.scopeOrder() {
		schema := schemaFor(kind)
		familyID := dtFamilyID(kind)
		currentModule := moduleSlot(best, kind)
		if currentModule.FamilyID == baselineFamilyID(kind) {
			// Training a baseline-sourced module still searches the DT
			// family's parameter space; its current params seed from the
			// schema defaults rather than an undefined baseline Params map.
			currentModule = ai.ModuleSpec{FamilyID: familyID, Params: genetics.DefaultParams(schema)}
		}

		tracker := newModuleTracker()

		for _, ph := range phasesFor(kind, eloEnabled) {
			seeds := make([]int32, opts.phaseSeedCount())
			for i := range seeds {
				seeds[i] = opts.Seed0 + int32(i)*sim.SeedStride
			}

			population := make([]genetics.Params, opts.populationSize())
			population[0] = currentModule.Params
			for i := 1; i < len(population); i++ {
				population[i] = genetics.RandomParams(schema, genRng)
			}

			var reference float64 = 1000
			if ph.Elo {
				if r, ok := opts.Leaderboard.Score(runID); ok {
					reference = r
				}
			}

			for gen := 0; gen < opts.generationCount(); gen++ {
				evaluated := make([]candidate, len(population))
				for i, params := range population {
					c, err := evaluateCandidate(opts.Pool, best, kind, familyID, params, ph, seeds, matchDefaults, opts.Leaderboard, opts.EloOpponents, reference)
					if err != nil {
						return ai.CompositeSpec{}, fmt.Errorf("training: module %s phase %s generation %d: %w", kind, ph.ID, gen, err)
					}
					evaluated[i] = c
				}

				if ph.Elo {
					rankElo(evaluated)
				} else {
					rankNonElo(evaluated)
				}
				top := evaluated[0]

				improved := false
				if ph.Elo {
					improved = tracker.improvesElo(top)
				} else {
					improved = tracker.improvesNonElo(top)
				}
				if improved {
					currentModule = ai.ModuleSpec{FamilyID: familyID, Params: top.Params}
					best = withModuleSlot(best, kind, currentModule)
				}

				snap := bestCandidate{FamilyID: familyID, Params: top.Params, WL: top.WL, Score: top.Score, Elo: top.Elo}
				if err := writer.writeGeneration(kind, ph.ID, gen, snap); err != nil {
					return ai.CompositeSpec{}, err
				}
				if err := writer.writeBestModule(kind, ph.ID, currentModule); err != nil {
					return ai.CompositeSpec{}, err
				}

				if ph.Elo {
					opts.logf("module=%s phase=%s gen=%d bestLB=%.4f bestScore=%.1f bestElo=%.1f", kind, ph.ID, gen, top.WL, top.Score, top.Elo)
				} else {
					opts.logf("module=%s phase=%s gen=%d bestLB=%.4f bestScore=%.1f", kind, ph.ID, gen, top.WL, top.Score)
				}

				if gen+1 < opts.generationCount() {
					population = nextGeneration(schema, evaluated, genRng)
				}
			}

			if ph.Elo && opts.Leaderboard != nil {
				if err := opts.Leaderboard.SaveScore(runID, tracker.bestElo); err != nil {
					return ai.CompositeSpec{}, fmt.Errorf("training: saving leaderboard score: %w", err)
				}
			}
		}
	}

	if err := writer.writeBestComposite(best); err != nil {
		return ai.CompositeSpec{}, err
	}
	return best, nil
}

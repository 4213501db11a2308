package training

import (
	"sort"

	"github.com/clawforge/skirmish/internal/genetics"
	"github.com/clawforge/skirmish/internal/sim"
)

// rankNonElo orders candidates best-first by (wl desc, score desc).
func rankNonElo(pop []candidate) {
	sort.SliceStable(pop, func(i, j int) bool {
		if pop[i].WL != pop[j].WL {
			return pop[i].WL > pop[j].WL
		}
		return pop[i].Score > pop[j].Score
	})
}

// rankElo orders candidates best-first by (elo desc, wl desc, score desc).
func rankElo(pop []candidate) {
	sort.SliceStable(pop, func(i, j int) bool {
		if pop[i].Elo != pop[j].Elo {
			return pop[i].Elo > pop[j].Elo
		}
		if pop[i].WL != pop[j].WL {
			return pop[i].WL > pop[j].WL
		}
		return pop[i].Score > pop[j].Score
	})
}

// eliteCount is max(2, floor(P*0.2)).
func eliteCount(populationSize int) int {
	n := populationSize * 20 / 100
	if n < 2 {
		n = 2
	}
	if n > populationSize {
		n = populationSize
	}
	return n
}

// nextGeneration keeps pop's first eliteCount(len(pop)) entries (pop must
// already be ranked best-first) and fills the remainder with
// mutate(crossover(eliteA, eliteB)) over uniformly sampled elite parents.
func nextGeneration(schema genetics.Schema, pop []candidate, rng *sim.Stream) []genetics.Params {
	elites := eliteCount(len(pop))
	if elites > len(pop) {
		elites = len(pop)
	}
	out := make([]genetics.Params, 0, len(pop))
	for i := 0; i < elites; i++ {
		out = append(out, pop[i].Params)
	}
	for len(out) < len(pop) {
		a := pop[rng.IntRange(0, elites-1)].Params
		b := pop[rng.IntRange(0, elites-1)].Params
		child := genetics.Crossover(schema, a, b, rng)
		out = append(out, genetics.Mutate(schema, child, rng))
	}
	return out
}

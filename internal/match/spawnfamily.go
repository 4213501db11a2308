package match

import (
	"fmt"

	"github.com/clawforge/skirmish/internal/sim"
)

// SpawnFamily picks the next template to deploy and how long to wait before
// asking again, for one side, during spawnMode="ai". It mirrors the
// family-by-string-id pattern the AI module registry uses (ai.BuildTarget
// et al.): a side names a family in MatchSpec.SpawnPlayer/SpawnEnemy, and an
// unrecognized id is a config error at job construction, never a
// simulation-time failure.
type SpawnFamily interface {
	NextSpawn(bs *sim.BattleState, side string, templates map[string]*sim.UnitTemplate) (templateID string, intervalS float64)
}

// Spawn family ids.
const (
	SpawnFamilyDefault    = "default"
	SpawnFamilyAggressive = "aggressive"
	SpawnFamilyEconomical = "economical"
)

// defaultSpawnFamily picks from the fixed roster preference indexed by the
// side's alive-unit count, at a steady 3s interval. It uses the same roster
// mirrored-random draws from at random.
type defaultSpawnFamily struct{}

func (defaultSpawnFamily) NextSpawn(bs *sim.BattleState, side string, templates map[string]*sim.UnitTemplate) (string, float64) {
	n := len(bs.AliveUnitsForSide(side))
	return sim.RosterPreference[n%len(sim.RosterPreference)], 3.0
}

// aggressiveSpawnFamily favors the roster's priciest (heaviest-hitting)
// template and asks again sooner, pressuring the opponent with volume.
type aggressiveSpawnFamily struct{}

func (aggressiveSpawnFamily) NextSpawn(bs *sim.BattleState, side string, templates map[string]*sim.UnitTemplate) (string, float64) {
	best := sim.RosterPreference[0]
	bestCost := -1
	for _, id := range sim.RosterPreference {
		if t, ok := templates[id]; ok && t.GasCost > bestCost {
			bestCost = t.GasCost
			best = id
		}
	}
	return best, 1.5
}

// economicalSpawnFamily favors the roster's cheapest template and spaces
// spawns out further, trading board presence for gas efficiency.
type economicalSpawnFamily struct{}

func (economicalSpawnFamily) NextSpawn(bs *sim.BattleState, side string, templates map[string]*sim.UnitTemplate) (string, float64) {
	best := sim.RosterPreference[0]
	bestCost := -1
	for _, id := range sim.RosterPreference {
		t, ok := templates[id]
		if !ok {
			continue
		}
		if bestCost < 0 || t.GasCost < bestCost {
			bestCost = t.GasCost
			best = id
		}
	}
	return best, 5.5
}

// BuildSpawnFamily resolves a spawn family id to its implementation. An
// empty id resolves to the default family so spawnPlayer/spawnEnemy can be
// omitted even when spawnMode is "ai".
func BuildSpawnFamily(id string) (SpawnFamily, error) {
	switch id {
	case SpawnFamilyDefault, "":
		return defaultSpawnFamily{}, nil
	case SpawnFamilyAggressive:
		return aggressiveSpawnFamily{}, nil
	case SpawnFamilyEconomical:
		return economicalSpawnFamily{}, nil
	default:
		return nil, fmt.Errorf("match: unsupported spawn family %q", id)
	}
}

// clampInterval restricts an AI-reported spawn interval to [0.5, 6.0]
// seconds before it replaces the loop's running spawnIntervalS.
func clampInterval(s float64) float64 {
	if s < 0.5 {
		return 0.5
	}
	if s > 6.0 {
		return 6.0
	}
	return s
}

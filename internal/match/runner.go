package match

import (
	"fmt"
	"math"
	"strings"

	"github.com/clawforge/skirmish/internal/sim"
	"github.com/clawforge/skirmish/internal/sim/ai"
)

// Run builds a BattleState from spec, advances it to completion, and
// returns the computed MatchResult. It is a pure function of spec (given
// identical template data): the determinism invariant the whole pipeline
// relies on.
func Run(spec Spec) (Result, error) {
	playerComposite, err := ai.BuildComposite(spec.AIPlayer)
	if err != nil {
		return Result{}, fmt.Errorf("match: player composite: %w", err)
	}
	enemyComposite, err := ai.BuildComposite(spec.AIEnemy)
	if err != nil {
		return Result{}, fmt.Errorf("match: enemy composite: %w", err)
	}

	playerSpawnFamily, err := BuildSpawnFamily(spec.SpawnPlayer)
	if err != nil {
		return Result{}, fmt.Errorf("match: player spawn family: %w", err)
	}
	enemySpawnFamily, err := BuildSpawnFamily(spec.SpawnEnemy)
	if err != nil {
		return Result{}, fmt.Errorf("match: enemy spawn family: %w", err)
	}

	templates := sim.DefaultTemplates()

	bs := sim.NewBattleState(spec.Seed, spec.MaxSimSeconds, spec.NodeDefense)
	bs.EnemyGas = spec.EnemyGas
	if spec.BaseHP > 0 {
		bs.PlayerBase = sim.Base{HP: spec.BaseHP, MaxHP: spec.BaseHP}
		bs.EnemyBase = sim.Base{HP: spec.BaseHP, MaxHP: spec.BaseHP}
	}

	w := spec.Battlefield.W
	if w <= 0 {
		w = sim.BattlefieldDefaultWidth
	}
	h := spec.Battlefield.H
	if h <= 0 {
		h = sim.BattlefieldDefaultHeight
	}
	if spec.Scenario.WithBase {
		bs.PlayerBase.Rect = sim.Rect{X: 0, Y: 0, W: 60, H: h}
		bs.EnemyBase.Rect = sim.Rect{X: w - 60, Y: 0, W: 60, H: h}
		if bs.PlayerBase.MaxHP == 0 {
			bs.PlayerBase = sim.Base{HP: 1000, MaxHP: 1000, Rect: bs.PlayerBase.Rect}
			bs.EnemyBase = sim.Base{HP: 1000, MaxHP: 1000, Rect: bs.EnemyBase.Rect}
		}
	}

	playerGas, enemyGas := spec.PlayerGas, spec.EnemyGas

	n := spec.Scenario.InitialUnitsPerSide
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		tmplID := sim.RosterPreference[i%len(sim.RosterPreference)]
		tmpl := templates[tmplID]
		py := 220.0 + float64(i)*40
		if u := sim.Instantiate(tmpl, 0, "player", 120, py); u != nil {
			u.DeploymentGasCost = tmpl.GasCost
			bs.AddUnit(u)
		}
		if u := sim.Instantiate(tmpl, 0, "enemy", w-120, py); u != nil {
			u.DeploymentGasCost = tmpl.GasCost
			bs.AddUnit(u)
		}
	}

	spawnIntervalS := 4.0
	spawnElapsed := 0.0

	startGasValuePlayer := onFieldGasValue(bs, "player")
	startGasValueEnemy := onFieldGasValue(bs, "enemy")

	decide := buildDecideFn(playerComposite, enemyComposite, templates, w)

	dt := sim.TickDt
	simTime := 0.0
	for bs.Active && simTime < spec.MaxSimSeconds {
		spawnElapsed += dt
		if spawnElapsed >= spawnIntervalS {
			spawnElapsed = 0
			interval := stepSpawn(bs, spec, templates, w, &playerGas, &enemyGas, playerSpawnFamily, enemySpawnFamily)
			if interval > 0 {
				spawnIntervalS = interval
			}
		}
		bs.Tick(dt, decide)
		simTime += dt
	}

	endGasValuePlayer := onFieldGasValue(bs, "player")
	endGasValueEnemy := onFieldGasValue(bs, "enemy")

	result := Result{Spec: spec, SimSecondsElapsed: simTime}
	result.Outcome = OutcomeSummary{PlayerVictory: bs.Outcome.Victory, Reason: bs.Outcome.Reason}

	tie := strings.Contains(strings.ToLower(bs.Outcome.Reason), "deadline")

	playerGasDelta := (playerGas + endGasValuePlayer) - (spec.PlayerGas + startGasValuePlayer)
	enemyGasDelta := (enemyGas + endGasValueEnemy) - (spec.EnemyGas + startGasValueEnemy)

	result.Sides.Player = sideOutcome(tie, bs.Outcome.Victory, true, playerGasDelta, spec.PlayerGas, playerGas, startGasValuePlayer, endGasValuePlayer)
	result.Sides.Enemy = sideOutcome(tie, bs.Outcome.Victory, false, enemyGasDelta, spec.EnemyGas, enemyGas, startGasValueEnemy, endGasValueEnemy)

	return result, nil
}

func sideOutcome(tie, playerVictory, isPlayer bool, gasDelta, gasStart, gasEnd, onFieldStart, onFieldEnd int) SideOutcome {
	var win bool
	if tie {
		win = false
	} else if isPlayer {
		win = playerVictory
	} else {
		win = !playerVictory
	}

	o := 0
	switch {
	case tie:
		o = 1
	case win:
		o = 2
	}

	return SideOutcome{
		Win:                  win && !tie,
		Tie:                  tie,
		GasStart:             gasStart,
		GasEnd:               gasEnd,
		OnFieldGasValueStart: onFieldStart,
		OnFieldGasValueEnd:   onFieldEnd,
		GasWorthDelta:        gasDelta,
		Score:                int64(o)*1_000_000 + int64(gasDelta),
	}
}

// onFieldGasValue sums floor(deploymentGasCost * BattleSalvageRefundFactor)
// over a side's alive units.
func onFieldGasValue(bs *sim.BattleState, side string) int {
	total := 0
	for _, u := range bs.AliveUnitsForSide(side) {
		total += int(math.Floor(float64(u.DeploymentGasCost) * sim.BattleSalvageRefundFactor))
	}
	return total
}

// stepSpawn runs the spawn loop's two modes, returning a new spawn interval
// when the caller should adopt it (0 means "keep current"). mirrored-random
// draws one template from the spawn stream and deploys it to both sides
// only when both can pay, preserving the mirror invariant; ai asks each
// side's own spawn family for its next template and interval, deploying
// independently per side and adapting the shared interval to whichever
// side asked for the shorter wait.
func stepSpawn(bs *sim.BattleState, spec Spec, templates map[string]*sim.UnitTemplate, w float64, playerGas, enemyGas *int, playerFamily, enemyFamily SpawnFamily) float64 {
	cap := spec.SpawnMaxActive
	if cap <= 0 {
		cap = 6
	}

	switch spec.SpawnMode {
	case SpawnAI:
		playerTmplID, playerIntervalS := playerFamily.NextSpawn(bs, "player", templates)
		enemyTmplID, enemyIntervalS := enemyFamily.NextSpawn(bs, "enemy", templates)

		if playerTmpl := templates[playerTmplID]; playerTmpl != nil &&
			*playerGas >= playerTmpl.GasCost &&
			len(bs.AliveUnitsForSide("player")) < cap {
			y := bs.SpawnRNG().Range(220, 480)
			if u := sim.Instantiate(playerTmpl, 0, "player", 120, y); u != nil {
				u.DeploymentGasCost = playerTmpl.GasCost
				bs.AddUnit(u)
				*playerGas -= playerTmpl.GasCost
			}
		}
		if enemyTmpl := templates[enemyTmplID]; enemyTmpl != nil &&
			(bs.EnemyInfiniteGas || *enemyGas >= enemyTmpl.GasCost) &&
			len(bs.AliveUnitsForSide("enemy")) < cap {
			y := bs.SpawnRNG().Range(220, 480)
			if u := sim.Instantiate(enemyTmpl, 0, "enemy", w-120, y); u != nil {
				u.DeploymentGasCost = enemyTmpl.GasCost
				bs.AddUnit(u)
				if !bs.EnemyInfiniteGas {
					*enemyGas -= enemyTmpl.GasCost
				}
			}
		}

		return clampInterval(math.Min(playerIntervalS, enemyIntervalS))
	default:
		rng := bs.SpawnRNG()
		tmplID := sim.RosterPreference[rng.IntRange(0, len(sim.RosterPreference)-1)]
		tmpl := templates[tmplID]
		y := rng.Range(220, 480)

		if *playerGas < tmpl.GasCost || (*enemyGas < tmpl.GasCost && !bs.EnemyInfiniteGas) {
			return 0
		}
		if len(bs.AliveUnitsForSide("player")) >= cap || len(bs.AliveUnitsForSide("enemy")) >= cap {
			return 0
		}

		if u := sim.Instantiate(tmpl, 0, "player", 120, y); u != nil {
			u.DeploymentGasCost = tmpl.GasCost
			bs.AddUnit(u)
			*playerGas -= tmpl.GasCost
		}
		if u := sim.Instantiate(tmpl, 0, "enemy", w-120, y); u != nil {
			u.DeploymentGasCost = tmpl.GasCost
			bs.AddUnit(u)
			if !bs.EnemyInfiniteGas {
				*enemyGas -= tmpl.GasCost
			}
		}
		return 0
	}
}

// Package training is the coordinate-descent orchestrator: phased evolution
// over a composite controller's three modules, evaluated through the worker
// pool and fitness aggregator, with optional leaderboard-Elo opponent
// sampling. It follows the population → evolve → elite-select generational
// loop with a pluggable fitness function, run separately per module phase.
package training

import (
	"log"

	"github.com/clawforge/skirmish/internal/leaderboard"
	"github.com/clawforge/skirmish/internal/match"
	"github.com/clawforge/skirmish/internal/sim/ai"
	"github.com/clawforge/skirmish/internal/worker"
)

// ModuleKind names one of the three trainable composite slots.
type ModuleKind string

const (
	ModuleTarget   ModuleKind = "target"
	ModuleMovement ModuleKind = "movement"
	ModuleShoot    ModuleKind = "shoot"
)

// Source selects how a module slot is initialized before training starts.
type Source string

const (
	SourceBaseline Source = "baseline"
	SourceNew      Source = "new"
	SourceTrained  Source = "trained"
)

// Options configures one RunCompositeTraining invocation.
type Options struct {
	Scope ModuleKind // target|movement|shoot, or "" for all three in shoot,movement,target order

	Generations int
	Population  int
	PhaseSeeds  int
	Seed0       int32

	EloOpponents int // K; 0 disables the leaderboard-Elo phase

	TargetSource, MovementSource, ShootSource             Source
	TargetArtifactPath, MovementArtifactPath, ShootArtifactPath string

	DataRoot    string
	Leaderboard *leaderboard.Store // nil disables the Elo phase regardless of EloOpponents

	Pool *worker.Pool

	PlayerGas, EnemyGas int
	MaxSimSeconds       float64
	NodeDefense         float64

	RunID string // overrides the generated run id when non-empty

	Logf func(format string, args ...interface{})
}

// scopeOrder returns the module training order for opts.Scope, defaulting to
// the "all" order (shoot, movement, target) when Scope is unset.
func (o Options) scopeOrder() []ModuleKind {
	if o.Scope == "" || o.Scope == "all" {
		return []ModuleKind{ModuleShoot, ModuleMovement, ModuleTarget}
	}
	return []ModuleKind{o.Scope}
}

func (o Options) logf(format string, args ...interface{}) {
	if o.Logf != nil {
		o.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (o Options) populationSize() int {
	if o.Population < 2 {
		return 8
	}
	return o.Population
}

func (o Options) generationCount() int {
	if o.Generations < 1 {
		return 1
	}
	return o.Generations
}

func (o Options) phaseSeedCount() int {
	if o.PhaseSeeds < 1 {
		return 1
	}
	return o.PhaseSeeds
}

func (o Options) matchDefaults() match.Spec {
	sim := match.Spec{
		PlayerGas:     o.PlayerGas,
		EnemyGas:      o.EnemyGas,
		MaxSimSeconds: o.MaxSimSeconds,
		NodeDefense:   o.NodeDefense,
	}
	if sim.PlayerGas <= 0 {
		sim.PlayerGas = 20000
	}
	if sim.EnemyGas <= 0 {
		sim.EnemyGas = 20000
	}
	if sim.MaxSimSeconds <= 0 {
		sim.MaxSimSeconds = 25
	}
	if sim.NodeDefense <= 0 {
		sim.NodeDefense = 1.0
	}
	return sim
}

func sourceFor(kind ModuleKind, o Options) (Source, string) {
	switch kind {
	case ModuleTarget:
		return o.TargetSource, o.TargetArtifactPath
	case ModuleMovement:
		return o.MovementSource, o.MovementArtifactPath
	default:
		return o.ShootSource, o.ShootArtifactPath
	}
}

func moduleSlot(c ai.CompositeSpec, kind ModuleKind) ai.ModuleSpec {
	switch kind {
	case ModuleTarget:
		return c.Target
	case ModuleMovement:
		return c.Movement
	default:
		return c.Shoot
	}
}

func withModuleSlot(c ai.CompositeSpec, kind ModuleKind, m ai.ModuleSpec) ai.CompositeSpec {
	switch kind {
	case ModuleTarget:
		c.Target = m
	case ModuleMovement:
		c.Movement = m
	default:
		c.Shoot = m
	}
	return c
}

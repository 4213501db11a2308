// Package match wraps a battle session with scenario and spawn policy and
// computes side outcomes.
package match

import "github.com/clawforge/skirmish/internal/sim/ai"

// SpawnMode selects how the spawn loop picks templates during a match.
type SpawnMode string

const (
	SpawnMirroredRandom SpawnMode = "mirrored-random"
	SpawnAI             SpawnMode = "ai"
)

// Scenario controls starter unit placement.
type Scenario struct {
	WithBase            bool `json:"withBase"`
	InitialUnitsPerSide int  `json:"initialUnitsPerSide"`
}

// Battlefield overrides the default arena dimensions.
type Battlefield struct {
	W            float64 `json:"w"`
	H            float64 `json:"h"`
	GroundHeight float64 `json:"groundHeight,omitempty"`
}

// Spec is the MatchSpec described in the external interface contract: the
// complete, self-contained description of one reproducible battle. Field
// names are stable JSON across every transport (training artifacts, worker
// IPC, an eventual HTTP bridge); unknown extra fields are ignored on ingest
// since json.Unmarshal already does that for unrecognized keys.
type Spec struct {
	Seed           int32   `json:"seed"`
	MaxSimSeconds  float64 `json:"maxSimSeconds"`
	NodeDefense    float64 `json:"nodeDefense"`
	BaseHP         float64 `json:"baseHp,omitempty"`
	PlayerGas      int     `json:"playerGas"`
	EnemyGas       int     `json:"enemyGas"`
	SpawnBurst     int     `json:"spawnBurst,omitempty"`
	SpawnMaxActive int     `json:"spawnMaxActive,omitempty"`

	AIPlayer ai.CompositeSpec `json:"aiPlayer"`
	AIEnemy  ai.CompositeSpec `json:"aiEnemy"`

	Scenario      Scenario `json:"scenario"`
	TemplateNames []string `json:"templateNames,omitempty"`

	Battlefield Battlefield `json:"battlefield,omitempty"`

	SpawnMode   SpawnMode `json:"spawnMode,omitempty"`
	SpawnPlayer string    `json:"spawnPlayer,omitempty"`
	SpawnEnemy  string    `json:"spawnEnemy,omitempty"`
}

// SideOutcome is one side's result within a MatchResult.
type SideOutcome struct {
	Win bool `json:"win"`
	Tie bool `json:"tie"`

	GasStart             int `json:"gasStart"`
	GasEnd               int `json:"gasEnd"`
	OnFieldGasValueStart int `json:"onFieldGasValueStart"`
	OnFieldGasValueEnd   int `json:"onFieldGasValueEnd"`
	GasWorthDelta        int `json:"gasWorthDelta"`

	Score int64 `json:"score"`
}

// OutcomeSummary mirrors sim.Outcome in the external JSON shape.
type OutcomeSummary struct {
	PlayerVictory bool   `json:"playerVictory"`
	Reason        string `json:"reason"`
}

// Sides holds both sides' outcomes for a MatchResult.
type Sides struct {
	Player SideOutcome `json:"player"`
	Enemy  SideOutcome `json:"enemy"`
}

// Result is the MatchResult described in the external interface contract.
type Result struct {
	Spec              Spec           `json:"spec"`
	SimSecondsElapsed float64        `json:"simSecondsElapsed"`
	Outcome           OutcomeSummary `json:"outcome"`
	Sides             Sides          `json:"sides"`
}

func (r Result) side(side string) SideOutcome {
	if side == "enemy" {
		return r.Sides.Enemy
	}
	return r.Sides.Player
}

// SideWin, SideTie, SideGasWorthDelta, and SideScore satisfy
// fitness.ResultLike without this package importing fitness.
func (r Result) SideWin(side string) bool          { return r.side(side).Win }
func (r Result) SideTie(side string) bool          { return r.side(side).Tie }
func (r Result) SideGasWorthDelta(side string) int { return r.side(side).GasWorthDelta }
func (r Result) SideScore(side string) int64       { return r.side(side).Score }

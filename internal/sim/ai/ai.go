// Package ai implements the composite controller: target, movement, and
// shoot modules dispatched in sequence against a read-only view of battle
// state. It replaces the source idiom of anonymous prototype objects
// returned by factory functions with a small closed sum type per module
// (baseline | decisionTree) behind a capability interface, composed by a
// single Composite product type.
package ai

import (
	"fmt"
	"math"

	"github.com/clawforge/skirmish/internal/sim"
)

// AIState is the per-unit engage/evade state machine driven by the
// movement module's ShouldEvade output.
type AIState string

const (
	StateEngage AIState = "engage"
	StateEvade  AIState = "evade"
)

// UnitView is the read-only snapshot a controller decides from. Battle
// state is never mutated during AI-decide; all mutation happens in the
// executor phase that follows.
type UnitView struct {
	ID       int
	Side     string
	X, Y     float64
	VX, VY   float64
	Facing   int
	Radius   float64
	Kind     sim.UnitKind
	Integrity float64 // fraction of total structure HP remaining, [0,1]

	AIStateTimer float64
}

// EnemyView is a read-only view of a potential target.
type EnemyView struct {
	ID          int
	X, Y        float64
	HP          float64
	MaxHP       float64
	WeaponCount int
	Speed       float64
	Kind        sim.UnitKind
}

// ProjectileThreat is a read-only view of an incoming opposing projectile,
// used by the movement module's evasion scan.
type ProjectileThreat struct {
	X, Y   float64
	VX, VY float64
}

// WeaponOption is one candidate weapon slot the shoot module may select.
type WeaponOption struct {
	SlotIndex    int
	Ready        bool
	Range        float64
	Damage       float64
	ProjectileV  float64
	Gravity      float64
	IsGround     bool // weapon is mounted on a ground-type shooter
	ShootAngleDeg float64
}

// Input is everything a composite controller needs for one decision.
type Input struct {
	Unit            UnitView
	Enemies         []EnemyView
	Threats         []ProjectileThreat
	Dt              float64
	DesiredRange    float64
	BaseTargetX     float64
	BaseTargetY     float64
	FriendlyBaseX   float64
	FriendlyBaseY   float64
	Weapons         []WeaponOption
	RNG             *sim.Stream
}

// FirePlan is the shoot module's output: which weapon, where to aim, and
// why it didn't fire if it couldn't.
type FirePlan struct {
	SlotIndex         int
	HasPlan           bool
	AimX, AimY        float64
	IntendedTargetID  int
	IntendedTargetY   float64
	AngleRad          float64
	LeadTimeS         float64
	EffectiveRange    float64
	BlockedReason     string
}

// MovementIntent is the movement module's output.
type MovementIntent struct {
	AX, AY      float64
	ShouldEvade bool
}

// CombatDecision is the composite controller's full output for one tick.
type CombatDecision struct {
	Facing       int
	State        AIState
	Movement     MovementIntent
	FirePlan     FirePlan
	DecisionPath string
}

// TargetModule ranks enemies and picks an attack point.
type TargetModule interface {
	DecideTarget(in Input) (attackX, attackY float64, targetID int, hasTarget bool, tag string)
}

// MovementModule computes acceleration intent given the chosen target.
type MovementModule interface {
	DecideMovement(in Input, attackX, attackY float64) (MovementIntent, string)
}

// ShootModule picks a weapon slot and aim solution.
type ShootModule interface {
	DecideShoot(in Input, targetID int, targetX, targetY float64) (FirePlan, string)
}

// Composite dispatches target → movement → shoot in sequence, exactly the
// order the design requires; decisionPath concatenates each module's tag.
type Composite struct {
	Target   TargetModule
	Movement MovementModule
	Shoot    ShootModule
}

// Decide runs the full three-stage pipeline.
func (c *Composite) Decide(in Input) CombatDecision {
	attackX, attackY, targetID, hasTarget, targetTag := c.Target.DecideTarget(in)
	if !hasTarget {
		attackX, attackY = in.BaseTargetX, in.BaseTargetY
	}

	facing := -1
	if attackX >= in.Unit.X {
		facing = 1
	}

	movement, moveTag := c.Movement.DecideMovement(in, attackX, attackY)

	state := StateEngage
	if movement.ShouldEvade {
		state = StateEvade
	}

	plan, shootTag := c.Shoot.DecideShoot(in, targetID, attackX, attackY)

	return CombatDecision{
		Facing:       facing,
		State:        state,
		Movement:     movement,
		FirePlan:     plan,
		DecisionPath: fmt.Sprintf("%s > %s > %s", targetTag, moveTag, shootTag),
	}
}

func normalize(dx, dy float64) (float64, float64) {
	d := math.Hypot(dx, dy)
	if d < 1e-9 {
		return 0, 0
	}
	return dx / d, dy / d
}

// targetKind looks up a candidate target's platform kind among the known
// enemies, so the shoot module can apply the ground-shooter/air-target axis
// rule without the caller threading an extra parameter through.
func targetKind(in Input, targetID int) (sim.UnitKind, bool) {
	for _, e := range in.Enemies {
		if e.ID == targetID {
			return e.Kind, true
		}
	}
	return "", false
}

// axisMismatch reports whether a ground-mounted weapon is blocked from
// engaging targetY: a ground shooter can't elevate enough to hit a non-air
// target more than GroundFireYTolerance above or below it.
func axisMismatch(w WeaponOption, in Input, targetID int, dy float64) bool {
	if !w.IsGround {
		return false
	}
	kind, ok := targetKind(in, targetID)
	if ok && kind == sim.KindAir {
		return false
	}
	return math.Abs(dy) > sim.GroundFireYTolerance
}

package ai

import (
	"strings"
	"testing"

	"github.com/clawforge/skirmish/internal/sim"
)

func TestBaselineTargetPicksLowestScoreEnemy(t *testing.T) {
	in := Input{
		Unit: UnitView{X: 0, Y: 0},
		Enemies: []EnemyView{
			{ID: 1, X: 500, Y: 500, Speed: 0},
			{ID: 2, X: 50, Y: 0, Speed: 0},
		},
	}
	x, y, id, has, tag := BaselineTarget{}.DecideTarget(in)
	if !has {
		t.Fatal("expected a target to be found")
	}
	if id != 2 {
		t.Fatalf("expected the closer enemy (id 2) to win, got id %d at (%v,%v)", id, x, y)
	}
	if tag != "baseline-target" {
		t.Fatalf("unexpected tag %q", tag)
	}
}

func TestBaselineTargetNoEnemies(t *testing.T) {
	_, _, _, has, _ := BaselineTarget{}.DecideTarget(Input{})
	if has {
		t.Fatal("expected hasTarget=false with no enemies")
	}
}

func TestBaselineMovementEvadesUnderThreat(t *testing.T) {
	in := Input{
		Unit: UnitView{X: 0, Y: 0},
		Threats: []ProjectileThreat{
			{X: 10, Y: 0, VX: -100, VY: 0}, // incoming straight at the unit
		},
		RNG: sim.NewStream(1),
	}
	intent, tag := BaselineMovement{}.DecideMovement(in, 500, 0)
	if !intent.ShouldEvade {
		t.Fatal("expected evasion under an immediate threat")
	}
	if tag != "baseline-movement" {
		t.Fatalf("unexpected tag %q", tag)
	}
}

func TestBaselineMovementAdvancesWhenFar(t *testing.T) {
	in := Input{Unit: UnitView{X: 0, Y: 0}, DesiredRange: 100}
	intent, _ := BaselineMovement{}.DecideMovement(in, 1000, 0)
	if intent.ShouldEvade {
		t.Fatal("expected no evasion with no threats present")
	}
	if intent.AX <= 0 {
		t.Fatalf("expected a positive-x acceleration advancing toward a far target, got %v", intent.AX)
	}
}

func TestBaselineShootNoWeaponsBlocked(t *testing.T) {
	plan, _ := BaselineShoot{}.DecideShoot(Input{Enemies: []EnemyView{{ID: 1}}}, 1, 100, 0)
	if plan.HasPlan {
		t.Fatal("expected no fire plan with zero weapon options")
	}
	if plan.BlockedReason == "" {
		t.Fatal("expected a populated blocked reason")
	}
}

func TestBaselineShootPicksReadyWeaponInRange(t *testing.T) {
	in := Input{
		Unit: UnitView{X: 0, Y: 0, Facing: 1},
		Weapons: []WeaponOption{
			{SlotIndex: 0, Ready: true, Range: 300, Damage: 10, ProjectileV: 260, Gravity: 95},
		},
	}
	plan, _ := BaselineShoot{}.DecideShoot(in, 1, 200, 0)
	if !plan.HasPlan {
		t.Fatalf("expected a fire plan for an in-range ready weapon, got %+v", plan)
	}
	if plan.SlotIndex != 0 {
		t.Fatalf("expected slot 0 selected, got %d", plan.SlotIndex)
	}
}

func TestCompositeDecideConcatenatesTags(t *testing.T) {
	c, err := BuildComposite(BaselineComposite())
	if err != nil {
		t.Fatalf("BuildComposite: %v", err)
	}
	in := Input{
		Unit:    UnitView{X: 0, Y: 0, Facing: 1},
		Enemies: []EnemyView{{ID: 1, X: 200, Y: 0}},
		Weapons: []WeaponOption{{SlotIndex: 0, Ready: true, Range: 300, Damage: 10, ProjectileV: 260, Gravity: 95}},
	}
	decision := c.Decide(in)
	parts := strings.Split(decision.DecisionPath, " > ")
	if len(parts) != 3 {
		t.Fatalf("expected 3 tags joined by ' > ', got %q", decision.DecisionPath)
	}
	if parts[0] != "baseline-target" || parts[1] != "baseline-movement" || parts[2] != "baseline-shoot" {
		t.Fatalf("unexpected decision path %q", decision.DecisionPath)
	}
}

func TestCompositeDecideFacingFollowsAttackDirection(t *testing.T) {
	c, _ := BuildComposite(BaselineComposite())
	in := Input{
		Unit:    UnitView{X: 500, Y: 0, Facing: 1},
		Enemies: []EnemyView{{ID: 1, X: 0, Y: 0}}, // enemy to the left
	}
	decision := c.Decide(in)
	if decision.Facing != -1 {
		t.Fatalf("expected facing -1 toward an enemy to the left, got %d", decision.Facing)
	}
}

package match

import (
	"math"

	"github.com/clawforge/skirmish/internal/sim"
	"github.com/clawforge/skirmish/internal/sim/ai"
)

// buildDecideFn closes over both sides' composites and returns the function
// BattleState.Tick calls during its AI-decide phase. It also performs
// command execution (facing, movement, fire requests) in the same pass,
// since both happen before integration and neither reads the other side's
// not-yet-applied mutation within a tick.
func buildDecideFn(playerComposite, enemyComposite *ai.Composite, templates map[string]*sim.UnitTemplate, worldW float64) func(bs *sim.BattleState, dt float64) {
	return func(bs *sim.BattleState, dt float64) {
		playerEnemies := bs.AliveUnitsForSide("enemy")
		enemyEnemies := bs.AliveUnitsForSide("player")

		for _, u := range bs.Units {
			if !u.Operable() {
				continue
			}

			if len(aliveWeapons(u)) == 0 && u.Kind == sim.KindAir {
				u.AirDropActive = true
			}

			if u.AirDropActive {
				var enemies []*sim.UnitInstance
				if u.Side == "player" {
					enemies = playerEnemies
				} else {
					enemies = enemyEnemies
				}
				runAirDrop(bs, u, enemies, dt, worldW)
				continue
			}

			if len(aliveWeapons(u)) == 0 {
				runGroundRetreat(u, dt, worldW)
				continue
			}

			var composite *ai.Composite
			var enemies []*sim.UnitInstance
			var opposingSide string
			if u.Side == "player" {
				composite = playerComposite
				enemies = playerEnemies
				opposingSide = "enemy"
			} else {
				composite = enemyComposite
				enemies = enemyEnemies
				opposingSide = "player"
			}

			input := buildInput(u, enemies, bs, dt, opposingSide, worldW)
			decision := composite.Decide(input)

			u.Debug.DecisionPath = decision.DecisionPath
			u.AIState = string(decision.State)
			u.Facing = decision.Facing

			applyMovement(u, decision.Movement, dt)
			if decision.FirePlan.HasPlan {
				fireWeaponSlot(bs, u, correctForGravityFeedback(u, decision.FirePlan))
			} else {
				u.Debug.FireBlockedReason = decision.FirePlan.BlockedReason
			}
		}
	}
}

// correctForGravityFeedback offsets a fire plan's aim point by the shooter's
// accumulated AimCorrectionY and recomputes the firing angle to match,
// folding in the drop learned from the shooter's past misses.
func correctForGravityFeedback(u *sim.UnitInstance, plan ai.FirePlan) ai.FirePlan {
	if !plan.HasPlan || u.Debug.AimCorrectionY == 0 {
		return plan
	}
	plan.AimY += u.Debug.AimCorrectionY
	plan.AngleRad = math.Atan2(plan.AimY-u.Y, plan.AimX-u.X)
	return plan
}

// runGroundRetreat is the fallback command for a weaponless ground unit:
// drive back toward its own base and stay out of the fight.
func runGroundRetreat(u *sim.UnitInstance, dt, worldW float64) {
	homeX := 0.0
	if u.Side == "enemy" {
		homeX = worldW
	}
	dir := 1.0
	if u.X > homeX {
		dir = -1.0
	}
	u.VX += dir * u.AccelCap * dt
}

// runAirDrop is the terminal return-to-base command for an air unit that has
// lost lift or all weapons: drive horizontally toward its own base with a
// 50/50 thrust split between descent and horizontal travel, firing
// opportunistically at the nearest enemy if any weapon remains alive.
func runAirDrop(bs *sim.BattleState, u *sim.UnitInstance, enemies []*sim.UnitInstance, dt, worldW float64) {
	homeX := 0.0
	if u.Side == "enemy" {
		homeX = worldW
	}
	dirX := 1.0
	if u.X > homeX {
		dirX = -1.0
	}

	u.VX += dirX * u.AccelCap * dt * 0.5
	u.VY += sim.AirDropGravity * dt * 0.5

	weapons := aliveWeapons(u)
	if len(weapons) == 0 {
		return
	}
	nearestID, nearestX, nearestY, ok := nearestEnemyPosition(u, enemies)
	if !ok {
		return
	}
	w := &u.Weapons[weapons[0]]
	att := u.Attachments[w.AttachmentIdx].Template
	if att.Range <= 0 || w.Cooldown > 0 || w.ReadyCharges <= 0 {
		return
	}
	dist := math.Hypot(nearestX-u.X, nearestY-u.Y)
	if dist > att.Range*sim.GlobalWeaponRangeMultiplier {
		return
	}
	angle := math.Atan2(nearestY-u.Y, nearestX-u.X)
	fireWeaponSlot(bs, u, ai.FirePlan{
		SlotIndex:        weapons[0],
		HasPlan:          true,
		AimX:             nearestX,
		AimY:             nearestY,
		IntendedTargetID: nearestID,
		IntendedTargetY:  nearestY,
		AngleRad:         angle,
		EffectiveRange:   att.Range,
	})
}

func nearestEnemyPosition(u *sim.UnitInstance, enemies []*sim.UnitInstance) (id int, x, y float64, ok bool) {
	bestD := math.Inf(1)
	for _, e := range enemies {
		d := math.Hypot(e.X-u.X, e.Y-u.Y)
		if d < bestD {
			bestD = d
			id, x, y, ok = e.ID, e.X, e.Y, true
		}
	}
	return
}

func aliveWeapons(u *sim.UnitInstance) []int {
	var out []int
	for i, w := range u.Weapons {
		if w.AttachmentIdx < len(u.Attachments) && u.Attachments[w.AttachmentIdx].Alive {
			out = append(out, i)
		}
	}
	return out
}

func buildInput(u *sim.UnitInstance, enemies []*sim.UnitInstance, bs *sim.BattleState, dt float64, opposingSide string, worldW float64) ai.Input {
	views := make([]ai.EnemyView, 0, len(enemies))
	for _, e := range enemies {
		views = append(views, ai.EnemyView{
			ID: e.ID, X: e.X, Y: e.Y,
			HP: totalHP(e), MaxHP: totalMaxHP(e),
			WeaponCount: len(aliveWeapons(e)),
			Speed:       math.Hypot(e.VX, e.VY),
			Kind:        e.Kind,
		})
	}

	var threats []ai.ProjectileThreat
	for _, p := range bs.Projectiles {
		if p.Side != opposingSide {
			continue
		}
		threats = append(threats, ai.ProjectileThreat{X: p.X, Y: p.Y, VX: p.VX, VY: p.VY})
	}

	weapons := make([]ai.WeaponOption, 0, len(u.Weapons))
	for i, w := range u.Weapons {
		att := u.Attachments[w.AttachmentIdx]
		ready := att.Alive && w.Cooldown <= 0 && w.ReadyCharges > 0
		weapons = append(weapons, ai.WeaponOption{
			SlotIndex:     i,
			Ready:         ready,
			Range:         att.Template.Range,
			Damage:        (att.Template.MinDamage + att.Template.MaxDamage) / 2,
			ProjectileV:   sim.ProjectileSpeed,
			Gravity:       sim.ProjectileGravity,
			IsGround:      u.Kind == sim.KindGround,
			ShootAngleDeg: 60,
		})
	}

	baseX, baseY := worldW, 500.0
	friendlyX, friendlyY := 0.0, 500.0
	if u.Side == "enemy" {
		baseX, baseY = 0, 500
		friendlyX = worldW
	}

	desired := computeDesiredRange(u)

	return ai.Input{
		Unit: ai.UnitView{
			ID: u.ID, Side: u.Side, X: u.X, Y: u.Y, VX: u.VX, VY: u.VY,
			Facing: u.Facing, Radius: u.Radius, Kind: u.Kind,
			Integrity:    integrityOf(u),
			AIStateTimer: u.Debug.AIStateTimer,
		},
		Enemies:       views,
		Threats:       threats,
		Dt:            dt,
		DesiredRange:  desired,
		BaseTargetX:   baseX,
		BaseTargetY:   baseY,
		FriendlyBaseX: friendlyX,
		FriendlyBaseY: friendlyY,
		Weapons:       weapons,
		RNG:           bs.RNG(),
	}
}

func totalHP(u *sim.UnitInstance) float64 {
	total := 0.0
	for _, c := range u.Structure {
		if !c.Destroyed {
			total += c.Material.HP - c.Strain
		}
	}
	return total
}

func totalMaxHP(u *sim.UnitInstance) float64 {
	total := 0.0
	for _, c := range u.Structure {
		total += c.Material.HP
	}
	return total
}

func integrityOf(u *sim.UnitInstance) float64 {
	maxHP := totalMaxHP(u)
	if maxHP <= 0 {
		return 0
	}
	return clampF(totalHP(u)/maxHP, 0, 1)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// computeDesiredRange derives desired engagement range from alive weapons'
// ranges: the longest alive weapon range times a fixed 0.57 for every unit,
// clamped to [90, 420]; 220 when no weapon is alive.
func computeDesiredRange(u *sim.UnitInstance) float64 {
	maxRange := 0.0
	for i, w := range u.Weapons {
		if w.AttachmentIdx >= len(u.Attachments) || !u.Attachments[w.AttachmentIdx].Alive {
			continue
		}
		r := u.Attachments[u.Weapons[i].AttachmentIdx].Template.Range
		if r > maxRange {
			maxRange = r
		}
	}
	if maxRange == 0 {
		return 220
	}
	scale := 0.57
	return clampF(maxRange*scale, 90, 420)
}

// applyMovement executes the ground/air thrust model. A unit under control
// impair loses that fraction of its steering authority until the timer runs
// out.
func applyMovement(u *sim.UnitInstance, intent ai.MovementIntent, dt float64) {
	authority := clampF(1-u.ControlImpair, 0, 1)
	if u.Kind == sim.KindGround {
		u.VX += intent.AX * u.AccelCap * dt * authority
		return
	}

	lift := u.AirLift()
	spareLiftRatio := clampF(1-sim.AirHoldGravity/math.Max(0.01, lift), 0, 1)
	u.VX += intent.AX * u.AccelCap * dt * (0.5 + spareLiftRatio*0.5) * authority
	u.VY += intent.AY * u.AccelCap * dt * 0.5 * spareLiftRatio * authority

	if lift <= 1 {
		u.AirDropActive = true
	}
}

// fireWeaponSlot spawns a projectile at the shooter's position, applies
// recoil, and consumes a charge or starts the weapon's cooldown.
func fireWeaponSlot(bs *sim.BattleState, u *sim.UnitInstance, plan ai.FirePlan) {
	if plan.SlotIndex < 0 || plan.SlotIndex >= len(u.Weapons) {
		return
	}
	w := &u.Weapons[plan.SlotIndex]
	att := u.Attachments[w.AttachmentIdx].Template

	p := sim.NewProjectile()
	p.X, p.Y = u.X, u.Y
	p.PrevX, p.PrevY = u.X, u.Y
	speed := sim.ProjectileSpeed
	p.VX = math.Cos(plan.AngleRad) * speed
	p.VY = math.Sin(plan.AngleRad) * speed
	p.Gravity = sim.ProjectileGravity
	p.InitialVY = p.VY
	p.FireOriginY = u.Y
	p.TTL = 4.0
	p.MaxDistance = att.Range * sim.GlobalWeaponRangeMultiplier
	p.Side = u.Side
	p.SourceID = u.ID
	p.SourceIsGround = u.Kind == sim.KindGround
	p.WeaponClass = att.WeaponClass
	p.Damage = (att.MinDamage + att.MaxDamage) / 2
	p.HitImpulse = 40
	p.Radius = 4
	p.Intended = sim.IntendedTarget{ID: plan.IntendedTargetID, X: plan.AimX, Y: plan.IntendedTargetY}

	if att.WeaponClass == sim.WeaponTracking {
		p.Homing = &sim.Homing{TargetID: plan.IntendedTargetID, HasTarget: plan.IntendedTargetID != 0, AimX: plan.AimX, AimY: plan.IntendedTargetY, TurnRateDegPerSec: 90}
	}
	if att.WeaponClass == sim.WeaponExplosive {
		p.Explosive = &sim.Explosive{Radius: 70, Damage: p.Damage, FalloffPower: 1.4, Fuse: sim.FuseImpact}
	}
	if att.WeaponClass == sim.WeaponControl {
		p.Impair = &sim.ControlImpairEffect{Factor: 0.6, Duration: 1.2}
	}

	bs.Projectiles = append(bs.Projectiles, p)

	recoil := 6.0
	u.VX -= float64(u.Facing) * recoil / u.Mass

	if att.WeaponClass == sim.WeaponRapid {
		w.Cooldown = att.Cooldown
	} else {
		w.ReadyCharges--
		w.Cooldown = 0.2
	}
	w.FireCycle++
}

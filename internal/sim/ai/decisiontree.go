package ai

import (
	"math"

	"github.com/clawforge/skirmish/internal/genetics"
)

func paramF(p genetics.Params, key string, fallback float64) float64 {
	if v, ok := p[key]; ok {
		return v.Float()
	}
	return fallback
}

func paramBool(p genetics.Params, key string, fallback bool) bool {
	if v, ok := p[key]; ok {
		return v.Bool
	}
	return fallback
}

func paramInt(p genetics.Params, key string, fallback int) int {
	if v, ok := p[key]; ok {
		return int(v.Float())
	}
	return fallback
}

// DTTarget adds weighted terms for hp (targeting weak units), weapon count
// (avoiding threats), and distance-to-friendly-base (pressure), on top of
// the baseline distance score.
type DTTarget struct {
	Params genetics.Params
}

func (d DTTarget) DecideTarget(in Input) (float64, float64, int, bool, string) {
	hpW := paramF(d.Params, "hpWeight", 0.3)
	weaponW := paramF(d.Params, "weaponWeight", 0.2)
	baseW := paramF(d.Params, "basePressureW", 0.1)

	best := -1
	bestScore := math.Inf(1)
	var bx, by float64
	for _, e := range in.Enemies {
		dx := e.X - in.Unit.X
		dy := e.Y - in.Unit.Y
		dist := math.Hypot(dx, dy)
		speedTerm := math.Max(0, 40-e.Speed)

		hpFrac := 1.0
		if e.MaxHP > 0 {
			hpFrac = e.HP / e.MaxHP
		}
		hpTerm := hpFrac * hpW * 40
		weaponTerm := float64(e.WeaponCount) * weaponW * 10
		baseDist := math.Hypot(in.FriendlyBaseX-e.X, in.FriendlyBaseY-e.Y)
		pressureTerm := -baseW * (1000 - math.Min(1000, baseDist)) * 0.02

		score := dist + math.Abs(dy)*0.7 + speedTerm*0.2 + hpTerm + weaponTerm + pressureTerm
		if score < bestScore {
			bestScore = score
			best = e.ID
			bx, by = e.X, e.Y
		}
	}
	if best < 0 {
		return 0, 0, 0, false, "dt-target"
	}
	return bx, by, best, true, "dt-target"
}

// DTMovement overrides the desired range via desiredRangeFactor, biases
// toward retreat when integrity drops below evadeThreshold, and pushes
// harder when healthy via pushBoost.
type DTMovement struct {
	Params genetics.Params
}

func (d DTMovement) DecideMovement(in Input, attackX, attackY float64) (MovementIntent, string) {
	rangeFactor := paramF(d.Params, "desiredRangeFactor", 0.62)
	retreatBoost := paramF(d.Params, "retreatBoost", 0.5)
	pushBoost := paramF(d.Params, "pushBoost", 0.3)
	evadeThreshold := paramF(d.Params, "evadeThreshold", 0.4)

	base := in.DesiredRange
	if base <= 0 {
		base = 220
	}
	desired := base * rangeFactor

	dirX, dirY := normalize(attackX-in.Unit.X, attackY-in.Unit.Y)

	if in.Unit.Integrity <= 0.7 {
		// Forced-retreat strategy: move directly away from the target.
		return MovementIntent{AX: -dirX * (1 + retreatBoost), AY: -dirY * (1 + retreatBoost), ShouldEvade: in.Unit.Integrity <= evadeThreshold}, "dt-movement"
	}

	evadeX, evadeY, threatLevel := scanThreats(in)
	if threatLevel > 0 {
		jink := 0.0
		if in.RNG != nil {
			jink = in.RNG.Range(-0.25, 0.25)
		}
		return MovementIntent{AX: evadeX + jink, AY: evadeY, ShouldEvade: true}, "dt-movement"
	}

	dist := math.Hypot(attackX-in.Unit.X, attackY-in.Unit.Y)
	var ax, ay float64
	switch {
	case dist > desired*1.1:
		ax, ay = dirX*(1+pushBoost), dirY*(1+pushBoost)
	case dist < desired*0.74:
		ax, ay = -dirX*(1+retreatBoost)*0.4, -dirY*(1+retreatBoost)*0.4
	default:
		sign := 1.0
		if math.Mod(in.Unit.AIStateTimer, 4.0) >= 2.0 {
			sign = -1.0
		}
		ax, ay = -dirY*sign, dirX*sign
	}

	evade := in.Unit.Integrity <= evadeThreshold
	return MovementIntent{AX: ax, AY: ay, ShouldEvade: evade}, "dt-movement"
}

// DTShoot biases weapon scoring via rangeBias/leadWeight and, when
// aggressiveFire is set, relaxes the angle-lock tolerance.
type DTShoot struct {
	Params genetics.Params
}

func (d DTShoot) DecideShoot(in Input, targetID int, targetX, targetY float64) (FirePlan, string) {
	rangeBias := paramF(d.Params, "rangeBias", 0.72)
	leadWeight := paramF(d.Params, "leadWeight", 1.0)
	aggressive := paramBool(d.Params, "aggressiveFire", false)

	best := FirePlan{BlockedReason: "no-weapon"}
	bestScore := math.Inf(-1)

	for _, w := range in.Weapons {
		if !w.Ready {
			continue
		}
		dx := targetX - in.Unit.X
		dy := targetY - in.Unit.Y
		dist := math.Hypot(dx, dy)

		if axisMismatch(w, in, targetID, dy) {
			continue
		}

		effRange := w.Range
		if effRange <= 0 {
			continue
		}
		if dist > effRange*1.05 {
			continue
		}

		angle := math.Atan2(dy, dx)
		facingAngle := 0.0
		if in.Unit.Facing < 0 {
			facingAngle = math.Pi
		}
		angleDiff := normalizeAngleLocal(angle - facingAngle)
		halfCone := w.ShootAngleDeg / 2 * math.Pi / 180
		if aggressive {
			halfCone *= 1.4
		}
		if halfCone > 0 && math.Abs(angleDiff) > halfCone {
			continue
		}

		leadTime, solved := solveLeadBisect(dist, w.ProjectileV, w.Gravity)
		leadBonus := 0.62
		if solved {
			leadBonus = 1.15
		}

		score := w.Damage*1.2 + (1-math.Abs(dist-effRange*rangeBias)/effRange)*25 + leadBonus*18*leadWeight
		if score > bestScore {
			bestScore = score
			best = FirePlan{
				SlotIndex:        w.SlotIndex,
				HasPlan:          true,
				AimX:             targetX,
				AimY:             targetY,
				IntendedTargetID: targetID,
				IntendedTargetY:  targetY,
				AngleRad:         angle,
				LeadTimeS:        leadTime,
				EffectiveRange:   effRange,
			}
		}
	}

	return best, "dt-shoot"
}

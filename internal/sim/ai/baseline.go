package ai

import "math"

// BaselineTarget scores candidates by distance + |dy|*0.7 +
// max(0, 40-speed)*0.2, lowest wins, exactly the formula in the design.
type BaselineTarget struct{}

func (BaselineTarget) DecideTarget(in Input) (float64, float64, int, bool, string) {
	best := -1
	bestScore := math.Inf(1)
	var bx, by float64
	for _, e := range in.Enemies {
		dx := e.X - in.Unit.X
		dy := e.Y - in.Unit.Y
		dist := math.Hypot(dx, dy)
		speedTerm := 40 - e.Speed
		if speedTerm < 0 {
			speedTerm = 0
		}
		score := dist + math.Abs(dy)*0.7 + speedTerm*0.2
		if score < bestScore {
			bestScore = score
			best = e.ID
			bx, by = e.X, e.Y
		}
	}
	if best < 0 {
		return 0, 0, 0, false, "baseline-target"
	}
	return bx, by, best, true, "baseline-target"
}

// BaselineMovement implements the threat-response movement baseline: evade
// incoming projectiles first, else advance/brake/strafe relative to
// desired range.
type BaselineMovement struct{}

func (BaselineMovement) DecideMovement(in Input, attackX, attackY float64) (MovementIntent, string) {
	dirX, dirY := normalize(attackX-in.Unit.X, attackY-in.Unit.Y)

	evadeX, evadeY, threatLevel := scanThreats(in)
	if threatLevel > 0 {
		jink := 0.0
		if in.RNG != nil {
			jink = in.RNG.Range(-0.25, 0.25)
		}
		return MovementIntent{
			AX:          evadeX + jink,
			AY:          evadeY,
			ShouldEvade: true,
		}, "baseline-movement"
	}

	dist := math.Hypot(attackX-in.Unit.X, attackY-in.Unit.Y)
	desired := in.DesiredRange
	if desired <= 0 {
		desired = 220
	}

	var ax, ay float64
	switch {
	case dist > desired*1.1:
		ax, ay = dirX, dirY
	case dist < desired*0.74:
		ax, ay = -dirX*0.4, -dirY*0.4
	default:
		sign := 1.0
		if math.Mod(in.Unit.AIStateTimer, 4.0) >= 2.0 {
			sign = -1.0
		}
		ax, ay = -dirY*sign, dirX*sign
	}

	return MovementIntent{AX: ax, AY: ay, ShouldEvade: false}, "baseline-movement"
}

// scanThreats finds the most dangerous incoming projectile using
// closest-approach time clamped to [0, 0.75], per the design's formula
// t = clamp((r·pv)/|pv|², 0, 0.75).
func scanThreats(in Input) (evadeX, evadeY, level float64) {
	bestThreat := 0.0
	for _, p := range in.Threats {
		rx := in.Unit.X - p.X
		ry := in.Unit.Y - p.Y
		pvx, pvy := p.VX, p.VY
		pv2 := pvx*pvx + pvy*pvy
		if pv2 < 1e-6 {
			continue
		}
		t := (rx*pvx + ry*pvy) / pv2
		t = clampF(t, 0, 0.75)
		closestX := rx - pvx*t
		closestY := ry - pvy*t
		miss := math.Hypot(closestX, closestY)
		threat := 1 / math.Max(22, miss)
		if threat > bestThreat {
			bestThreat = threat
			sign := 1.0
			if (rx*pvy - ry*pvx) < 0 {
				sign = -1.0
			}
			ex, ey := normalize(-pvy, pvx)
			evadeX, evadeY = ex*sign, ey*sign
		}
	}
	return evadeX, evadeY, bestThreat
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

// BaselineShoot solves ballistic lead by bisection and scores weapons by
// damage, range fit, and whether a lead solution was found.
type BaselineShoot struct{}

func (BaselineShoot) DecideShoot(in Input, targetID int, targetX, targetY float64) (FirePlan, string) {
	if targetID == 0 && len(in.Enemies) == 0 {
		return FirePlan{BlockedReason: "no-target"}, "baseline-shoot"
	}

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
		if halfCone > 0 && math.Abs(angleDiff) > halfCone {
			continue
		}

		leadTime, solved := solveLeadBisect(dist, w.ProjectileV, w.Gravity)
		leadBonus := 0.62
		if solved {
			leadBonus = 1.15
		}

		score := w.Damage*1.2 + (1-math.Abs(dist-effRange*0.72)/effRange)*25 + leadBonus*18
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

	return best, "baseline-shoot"
}

func normalizeAngleLocal(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// solveLeadBisect bisects the stationary-target form f(t) =
// (|(dist, ½g t²)|/t)² − v_proj² over t ∈ [0.08, min(2.0, 1.12·dist/v_proj)]
// for up to 26 iterations. The target's velocity does not enter it.
func solveLeadBisect(dist, vProj, gravity float64) (float64, bool) {
	if vProj <= 0 {
		return 0, false
	}
	upper := 1.12 * dist / vProj
	if upper > 2.0 {
		upper = 2.0
	}
	lo, hi := 0.08, upper
	if lo >= hi {
		return 0, false
	}

	f := func(t float64) float64 {
		drop := 0.5 * gravity * t * t
		travel := math.Hypot(dist, drop)
		return (travel/t)*(travel/t) - vProj*vProj
	}

	flo, fhi := f(lo), f(hi)
	if (flo > 0) == (fhi > 0) {
		return (lo + hi) / 2, false
	}

	for i := 0; i < 26; i++ {
		mid := (lo + hi) / 2
		fm := f(mid)
		if (fm > 0) == (flo > 0) {
			lo = mid
			flo = fm
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}

package sim

import "math"

// FuseMode names when an explosive detonates.
type FuseMode string

const (
	FuseImpact FuseMode = "impact"
	FuseTimed  FuseMode = "timed"
)

// Explosive is the blast configuration of an explosive-class projectile.
type Explosive struct {
	Radius       float64
	Damage       float64
	FalloffPower float64
	Fuse         FuseMode
	FuseTime     float64
}

// Homing is the tracking configuration for a homing projectile.
type Homing struct {
	TargetID         int
	HasTarget        bool
	AimX, AimY       float64
	TurnRateDegPerSec float64
}

// ControlImpairEffect is applied to a struck unit on hit.
type ControlImpairEffect struct {
	Factor   float64
	Duration float64
}

// IntendedTarget records what the shooter was aiming at, used for AI shot
// feedback regardless of what actually got hit.
type IntendedTarget struct {
	ID   int
	X, Y float64
}

// Projectile is one live projectile. Position is advanced as a swept
// segment from (PrevX,PrevY) to (X,Y) so narrow-phase hit tests never miss a
// fast-moving shot tunneling through a thin cell.
type Projectile struct {
	X, Y         float64
	PrevX, PrevY float64
	VX, VY       float64
	Gravity      float64
	TTL          float64

	Side           string
	SourceID       int
	SourceIsGround bool

	FireOriginY      float64
	InitialVY        float64
	TraveledDistance float64
	MaxDistance      float64

	WeaponClass WeaponClass
	Damage      float64
	HitImpulse  float64
	Radius      float64
	Pierce      bool

	Explosive *Explosive
	Homing    *Homing
	Impair    *ControlImpairEffect

	HitUnitIDs     map[int]bool
	Intended       IntendedTarget
	HitIntended    bool

	Dead bool
}

// NewProjectile builds a projectile with its hit-tracking set initialized.
func NewProjectile() *Projectile {
	return &Projectile{HitUnitIDs: make(map[int]bool)}
}

// AliveCellLookup resolves alive cells of enemy units for hit testing and
// is supplied by the battle loop, which owns unit storage.
type AliveCellLookup func(side string) []*UnitInstance

// Step advances one tick of a projectile. enemies lists the units
// the projectile can hit (opposing side, operable-aware outcome logic
// applied by the caller for base damage), reacquire resolves a new homing
// target by nearest-to-aim-point when the original dies, and detonate
// applies an explosive blast (used for both timed and impact fuses).
func (p *Projectile) Step(dt float64, enemies []*UnitInstance, rng *Stream, reacquire func(aimX, aimY float64) (targetID int, ok bool), detonate func(p *Projectile, enemies []*UnitInstance)) {
	p.TTL -= dt
	p.PrevX, p.PrevY = p.X, p.Y

	if p.Homing != nil {
		p.stepHoming(dt, enemies, reacquire)
	}

	p.VY += p.Gravity * dt
	dx := p.VX * dt
	dy := p.VY * dt
	p.X += dx
	p.Y += dy
	p.TraveledDistance += math.Hypot(dx, dy)

	if p.MaxDistance > 0 && p.TraveledDistance >= p.MaxDistance {
		p.Dead = true
		return
	}

	if p.SourceIsGround && p.Homing == nil && p.InitialVY < 0 &&
		p.Y-p.FireOriginY > GroundProjectileMaxDropBelowFireY {
		if p.Explosive != nil {
			detonate(p, enemies)
		}
		p.Dead = true
		return
	}

	if p.TTL <= 0 {
		if p.Explosive != nil && p.Explosive.Fuse == FuseTimed && p.Explosive.Radius > 0 {
			detonate(p, enemies)
		}
		p.Dead = true
		return
	}

	hitUnit, cell, _ := p.sweepHit(enemies)
	if hitUnit != nil {
		p.HitUnitIDs[hitUnit.ID] = true
		if hitUnit.ID == p.Intended.ID {
			p.HitIntended = true
		}
		ApplyHit(hitUnit, cell, p.Damage, p.HitImpulse, p.VX, rng)
		if p.Impair != nil {
			applyControlImpair(hitUnit, p.Impair.Factor, p.Impair.Duration)
		}
		if !p.canPierce(hitUnit) {
			p.TTL = -1
		}
		if p.Explosive != nil && p.Explosive.Fuse == FuseImpact {
			detonate(p, enemies)
			p.Dead = true
		}
	}
}

// canPierce implements the ground-to-ground pierce rule: only ground-source
// projectiles pierce through air targets.
func (p *Projectile) canPierce(target *UnitInstance) bool {
	if !p.Pierce {
		return false
	}
	return p.SourceIsGround && target.Kind == KindAir
}

func (p *Projectile) stepHoming(dt float64, enemies []*UnitInstance, reacquire func(float64, float64) (int, bool)) {
	h := p.Homing
	targetAlive := false
	var tx, ty float64
	if h.HasTarget {
		for _, u := range enemies {
			if u.ID == h.TargetID && u.Operable() {
				targetAlive = true
				tx, ty = u.X, u.Y
				break
			}
		}
	}
	if !targetAlive {
		if id, ok := reacquire(h.AimX, h.AimY); ok {
			h.TargetID = id
			h.HasTarget = true
			for _, u := range enemies {
				if u.ID == id {
					tx, ty = u.X, u.Y
					targetAlive = true
				}
			}
		}
	}
	if !targetAlive {
		return
	}

	speed := math.Hypot(p.VX, p.VY)
	curAngle := math.Atan2(p.VY, p.VX)
	wantAngle := math.Atan2(ty-p.Y, tx-p.X)
	maxTurn := h.TurnRateDegPerSec * math.Pi / 180 * dt
	delta := normalizeAngle(wantAngle - curAngle)
	if delta > maxTurn {
		delta = maxTurn
	} else if delta < -maxTurn {
		delta = -maxTurn
	}
	newAngle := curAngle + delta
	p.VX = math.Cos(newAngle) * speed
	p.VY = math.Sin(newAngle) * speed
}

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// sweepHit performs a swept-segment vs. AABB test against every alive cell
// of every alive enemy unit, returning the earliest-entry hit.
func (p *Projectile) sweepHit(enemies []*UnitInstance) (*UnitInstance, *StructureCell, float64) {
	var bestUnit *UnitInstance
	var bestCell *StructureCell
	bestT := math.Inf(1)

	for _, u := range enemies {
		if u.Side == p.Side || p.HitUnitIDs[u.ID] {
			continue
		}
		if u.Kind == KindAir {
			tol := airTargetTolerance + p.Radius
			if math.Abs(u.Y-p.Y) > tol {
				continue
			}
		}
		for i := range u.Structure {
			c := &u.Structure[i]
			if c.Destroyed {
				continue
			}
			t, hit := sweptAABBEntry(p.PrevX, p.PrevY, p.X, p.Y, p.Radius, u.X+c.X, u.Y+c.Y, c.W, c.H)
			if hit && t < bestT {
				bestT = t
				bestUnit = u
				bestCell = c
			}
		}
	}
	return bestUnit, bestCell, bestT
}

const airTargetTolerance = 36.0

// sweptAABBEntry tests a radius-inflated segment against an axis-aligned
// box, returning the entry fraction t ∈ [0,1] of the earliest intersection.
func sweptAABBEntry(x0, y0, x1, y1, radius, bx, by, bw, bh float64) (float64, bool) {
	minX, maxX := bx-radius, bx+bw+radius
	minY, maxY := by-radius, by+bh+radius

	dx := x1 - x0
	dy := y1 - y0

	tEnter, tExit := 0.0, 1.0

	if dx == 0 {
		if x0 < minX || x0 > maxX {
			return 0, false
		}
	} else {
		t1 := (minX - x0) / dx
		t2 := (maxX - x0) / dx
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tEnter = math.Max(tEnter, t1)
		tExit = math.Min(tExit, t2)
	}

	if dy == 0 {
		if y0 < minY || y0 > maxY {
			return 0, false
		}
	} else {
		t1 := (minY - y0) / dy
		t2 := (maxY - y0) / dy
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tEnter = math.Max(tEnter, t1)
		tExit = math.Min(tExit, t2)
	}

	if tEnter > tExit || tEnter > 1 || tExit < 0 {
		return 0, false
	}
	return tEnter, true
}

// Detonate applies explosive splash to every other enemy unit within
// radius.
func Detonate(p *Projectile, enemies []*UnitInstance, rng *Stream) {
	if p.Explosive == nil {
		return
	}
	ex := p.Explosive
	for _, u := range enemies {
		if u.Side == p.Side {
			continue
		}
		d := math.Hypot(u.X-p.X, u.Y-p.Y)
		if d > ex.Radius {
			continue
		}
		falloff := math.Pow(1-d/ex.Radius, ex.FalloffPower)
		splash := ex.Damage * falloff
		if splash <= 0.25 {
			continue
		}
		ApplyHit(u, nil, splash, p.HitImpulse*0.45, p.VX, rng)
		if p.Impair != nil {
			applyControlImpair(u, p.Impair.Factor*0.8, p.Impair.Duration)
		}
	}
}

func applyControlImpair(u *UnitInstance, factor, duration float64) {
	u.ControlImpair = factor
	u.ControlImpairT = duration
}

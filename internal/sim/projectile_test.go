package sim

import "testing"

func enemyUnit(id int, x, y float64) *UnitInstance {
	u := Instantiate(groundTemplate(), id, "enemy", x, y)
	return u
}

func noReacquire(aimX, aimY float64) (int, bool) { return 0, false }

func TestProjectileStepExpiresOnTTL(t *testing.T) {
	p := NewProjectile()
	p.Side = "player"
	p.TTL = 0.01
	p.VX = 100

	var detonated bool
	detonate := func(p *Projectile, enemies []*UnitInstance) { detonated = true }

	p.Step(0.1, nil, NewStream(1), noReacquire, detonate)
	if !p.Dead {
		t.Fatal("expected the projectile to die once its TTL expires")
	}
	if detonated {
		t.Fatal("expected no detonation for a non-explosive projectile")
	}
}

func TestProjectileStepDetonatesTimedFuseOnExpiry(t *testing.T) {
	p := NewProjectile()
	p.Side = "player"
	p.TTL = 0.01
	p.Explosive = &Explosive{Radius: 50, Damage: 20, FalloffPower: 1, Fuse: FuseTimed}

	var detonated bool
	detonate := func(p *Projectile, enemies []*UnitInstance) { detonated = true }
	p.Step(0.1, nil, NewStream(1), noReacquire, detonate)

	if !detonated {
		t.Fatal("expected a timed-fuse explosive to detonate on TTL expiry")
	}
	if !p.Dead {
		t.Fatal("expected the projectile to die after detonating")
	}
}

func TestProjectileStepMaxDistanceKillsProjectile(t *testing.T) {
	p := NewProjectile()
	p.Side = "player"
	p.TTL = 100
	p.VX = 1000
	p.MaxDistance = 1

	p.Step(1, nil, NewStream(1), noReacquire, func(*Projectile, []*UnitInstance) {})
	if !p.Dead {
		t.Fatal("expected the projectile to die once it exceeds its max travel distance")
	}
}

func TestProjectileStepHitsEnemyCellAndAppliesDamage(t *testing.T) {
	target := enemyUnit(1, 100, 0)

	p := NewProjectile()
	p.Side = "player"
	p.TTL = 10
	p.X, p.Y = 0, 0
	p.VX = 1000 // crosses the whole gap in one tick
	p.Radius = 5
	p.Damage = target.Structure[0].BreakThreshold // force a destroy to see state change
	p.HitImpulse = 10

	p.Step(0.2, []*UnitInstance{target}, NewStream(1), noReacquire, func(*Projectile, []*UnitInstance) {})

	if !p.HitUnitIDs[1] {
		t.Fatal("expected the target's id to be recorded as hit")
	}
	if target.Structure[0].Strain <= 0 {
		t.Fatalf("expected the struck cell to accumulate strain, got %v", target.Structure[0].Strain)
	}
}

func TestProjectileCanPierceOnlyGroundSourceVsAir(t *testing.T) {
	airTarget := Instantiate(groundTemplate(), 1, "enemy", 0, 0)
	airTarget.Kind = KindAir

	groundSource := &Projectile{Pierce: true, SourceIsGround: true}
	if !groundSource.canPierce(airTarget) {
		t.Fatal("expected a ground-sourced pierce projectile to pierce an air target")
	}

	airSource := &Projectile{Pierce: true, SourceIsGround: false}
	if airSource.canPierce(airTarget) {
		t.Fatal("expected a non-ground-sourced projectile to never pierce")
	}

	groundSourceVsGround := &Projectile{Pierce: true, SourceIsGround: true}
	groundTarget := Instantiate(groundTemplate(), 2, "enemy", 0, 0)
	if groundSourceVsGround.canPierce(groundTarget) {
		t.Fatal("expected ground-vs-ground to never pierce even with Pierce set")
	}
}

func TestDetonateAppliesFalloffDamageWithinRadius(t *testing.T) {
	near := enemyUnit(1, 10, 0)
	far := enemyUnit(2, 1000, 0)

	p := &Projectile{
		Side: "player",
		X:    0, Y: 0,
		Explosive: &Explosive{Radius: 100, Damage: 100, FalloffPower: 1},
	}
	Detonate(p, []*UnitInstance{near, far}, NewStream(1))

	if near.Structure[0].Strain <= 0 {
		t.Fatal("expected the nearby unit to take splash damage")
	}
	if far.Structure[0].Strain != 0 {
		t.Fatal("expected the far-away unit (outside radius) to take no splash damage")
	}
}

func TestDetonateSkipsSameSideUnits(t *testing.T) {
	ally := Instantiate(groundTemplate(), 1, "player", 10, 0)
	p := &Projectile{Side: "player", X: 0, Y: 0, Explosive: &Explosive{Radius: 100, Damage: 100, FalloffPower: 1}}
	Detonate(p, []*UnitInstance{ally}, NewStream(1))
	if ally.Structure[0].Strain != 0 {
		t.Fatal("expected a same-side unit to be excluded from splash damage")
	}
}

func TestDetonateAppliesControlImpair(t *testing.T) {
	victim := enemyUnit(1, 10, 0)
	p := &Projectile{
		Side: "player",
		X:    0, Y: 0,
		Explosive: &Explosive{Radius: 100, Damage: 100, FalloffPower: 1},
		Impair:    &ControlImpairEffect{Factor: 0.5, Duration: 2},
	}
	Detonate(p, []*UnitInstance{victim}, NewStream(1))
	if victim.ControlImpair == 0 || victim.ControlImpairT == 0 {
		t.Fatalf("expected control impair to be applied, got factor=%v duration=%v", victim.ControlImpair, victim.ControlImpairT)
	}
}

func TestSweptAABBEntryDetectsHeadOnHit(t *testing.T) {
	t_, hit := sweptAABBEntry(0, 0, 100, 0, 1, 50, -5, 10, 10)
	if !hit {
		t.Fatal("expected a hit for a segment crossing the box")
	}
	if t_ < 0 || t_ > 1 {
		t.Fatalf("expected entry fraction in [0,1], got %v", t_)
	}
}

func TestSweptAABBEntryMissesParallelSegment(t *testing.T) {
	_, hit := sweptAABBEntry(0, 100, 100, 100, 1, 50, -5, 10, 10)
	if hit {
		t.Fatal("expected no hit for a segment that never enters the box's Y range")
	}
}

func TestNormalizeAngleWrapsToPiRange(t *testing.T) {
	got := normalizeAngle(4.0) // > pi
	if got > 3.15 || got < -3.15 {
		t.Fatalf("expected wrapped angle within [-pi,pi], got %v", got)
	}
}

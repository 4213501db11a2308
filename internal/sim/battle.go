package sim

import (
	"math"

	"github.com/clawforge/skirmish/internal/spatial"
)

// Outcome records whether and why a battle ended. The match runner treats
// any Reason containing "deadline" (case-insensitive), such as "Arena
// deadline reached", as a tie.
type Outcome struct {
	Set      bool
	Victory  bool
	Reason   string
}

// Rect is an axis-aligned rectangle, used for base hitboxes.
type Rect struct {
	X, Y, W, H float64
}

// Base is a side's defended structure; projectiles that cross into it once
// the owning side has no operable weaponed unit left subtract hp.
type Base struct {
	HP    float64
	MaxHP float64
	Rect  Rect
}

// BattleState is the tick-mutated arena. Units own their own storage by
// value-indexed slices; controllers are only ever given read-only access
// during the AI-decide phase, and every mutation happens inside Execute.
type BattleState struct {
	Active bool
	NodeID string

	Units       []*UnitInstance
	Projectiles []*Projectile

	PlayerBase Base
	EnemyBase  Base

	EnemyGas         int
	EnemyInfiniteGas bool
	EnemyCap         int
	EnemyMinActive   int
	EnemySpawnTimer  float64

	Outcome Outcome

	simSeconds float64
	maxSeconds float64

	nextUnitID int

	rng      *Stream
	spawnRng *Stream

	playerGrid *spatial.Grid
	enemyGrid  *spatial.Grid
}

// NewBattleState builds an empty arena seeded from spec.Seed; the spawn
// stream is derived by XOR-ing in SpawnSeedXOR so spawn rolls and combat
// rolls never share a stream.
func NewBattleState(seed int32, maxSimSeconds float64, nodeDefense float64) *BattleState {
	bs := &BattleState{
		Active:     true,
		rng:        NewStream(seed),
		spawnRng:   NewStream(seed ^ SpawnSeedXOR),
		maxSeconds: maxSimSeconds,
		nextUnitID: 1,
	}
	bs.EnemyCap = enemyCapFor(nodeDefense, 0)
	bs.playerGrid = spatial.NewGrid(BattlefieldDefaultWidth, BattlefieldDefaultHeight, 120, 64)
	bs.enemyGrid = spatial.NewGrid(BattlefieldDefaultWidth, BattlefieldDefaultHeight, 120, 64)
	return bs
}

func enemyCapFor(nodeDefense float64, minActive int) int {
	cap := int(math.Ceil(nodeDefense*3.2 + 1))
	if cap < 3 {
		cap = 3
	}
	if minActive > cap {
		cap = minActive
	}
	return cap
}

// RNG exposes the match stream for callers (AI modules, spawn policy) that
// must consume the same deterministic sequence the battle loop uses.
func (bs *BattleState) RNG() *Stream { return bs.rng }

// SpawnRNG exposes the derived spawn stream.
func (bs *BattleState) SpawnRNG() *Stream { return bs.spawnRng }

// AddUnit appends a freshly instantiated unit, overwriting its ID with the
// next battle-assigned id (ids start at 1; 0 means "no unit").
func (bs *BattleState) AddUnit(u *UnitInstance) {
	u.ID = bs.nextUnitID
	bs.nextUnitID++
	bs.Units = append(bs.Units, u)
}

// AliveUnitsForSide returns operable units (structure-wise alive, not
// necessarily weaponed) on the given side.
func (bs *BattleState) AliveUnitsForSide(side string) []*UnitInstance {
	var out []*UnitInstance
	for _, u := range bs.Units {
		if u.Side == side && u.Operable() {
			out = append(out, u)
		}
	}
	return out
}

func (bs *BattleState) opposingSide(side string) string {
	if side == "player" {
		return "enemy"
	}
	return "player"
}

func (bs *BattleState) hasOperableWeaponedUnit(side string) bool {
	for _, u := range bs.Units {
		if u.Side != side || !u.Operable() {
			continue
		}
		for _, w := range u.Weapons {
			if w.AttachmentIdx < len(u.Attachments) && u.Attachments[w.AttachmentIdx].Alive {
				return true
			}
		}
	}
	return false
}

// Tick advances the battle by one fixed step (1/60s), running the phases in
// the mandated order: spawn, AI decide, command execute, integrate,
// projectile step, outcome check. Reordering these breaks determinism.
func (bs *BattleState) Tick(dt float64, decide func(bs *BattleState, dt float64)) {
	if !bs.Active {
		return
	}
	bs.simSeconds += dt

	bs.stepSpawnTimer(dt)

	if decide != nil {
		decide(bs, dt)
	}

	for _, u := range bs.Units {
		if !u.Operable() {
			continue
		}
		u.refreshMobility()
		u.Debug.AIStateTimer += dt
		if u.ControlImpairT > 0 {
			u.ControlImpairT -= dt
			if u.ControlImpairT <= 0 {
				u.ControlImpairT = 0
				u.ControlImpair = 0
			}
		}
	}

	bs.integrate(dt)
	bs.stepProjectiles(dt)
	bs.pruneDeadAndCheckOutcome()
}

func (bs *BattleState) stepSpawnTimer(dt float64) {
	if bs.EnemySpawnTimer > 0 {
		bs.EnemySpawnTimer -= dt
	}
}

// integrate applies velocity clamps, drag, and bounds, then structure
// recovery.
func (bs *BattleState) integrate(dt float64) {
	for _, u := range bs.Units {
		if !u.Operable() {
			continue
		}
		cap := u.MaxSpeed
		if u.AirDropActive {
			cap = AirDropSpeedCap
		}
		u.VX = clamp(u.VX, -cap, cap)

		u.X += u.VX * dt
		u.Y += u.VY * dt

		if u.Kind == KindGround {
			drag := u.TurnDrag
			if drag <= 0 {
				drag = 0.8
			}
			u.VX *= 1 - (1-drag)*dt*60
		}

		u.X = clamp(u.X, 44, BattlefieldDefaultWidth-44)

		for i := range u.Weapons {
			w := &u.Weapons[i]
			if w.Cooldown > 0 {
				w.Cooldown -= dt
			}
		}
		stepLoaders(u, dt)
		u.ApplyStructureRecovery(dt)
	}
}

func stepLoaders(u *UnitInstance, dt float64) {
	for i := range u.Weapons {
		w := &u.Weapons[i]
		if w.ReadyCharges >= w.ChargeCapacity {
			continue
		}
		w.LoaderTimer -= dt
		if w.LoaderTimer <= 0 {
			w.ReadyCharges++
			w.LoaderTimer = loadDuration(u, w)
		}
	}
}

func loadDuration(u *UnitInstance, w *WeaponSlot) float64 {
	att := u.Attachments[w.AttachmentIdx].Template
	minLoad := 0.6
	mult := 1.0
	fast := false
	for _, a := range u.Attachments {
		if a.Template.Kind == AttachLoader {
			minLoad = a.Template.MinLoadTime
			mult = a.Template.LoadMultiplier
			fast = a.Template.FastOperation
			break
		}
	}
	scale := 1.08
	if fast {
		scale = 0.82
	}
	d := att.Cooldown * mult * scale
	if d < minLoad {
		d = minLoad
	}
	return d
}

// stepProjectiles advances every live projectile, then drops dead ones and
// applies base damage once a side has no operable weaponed unit left.
func (bs *BattleState) stepProjectiles(dt float64) {
	playerUnits := bs.AliveUnitsForSide("player")
	enemyUnits := bs.AliveUnitsForSide("enemy")
	bs.rebuildGrid(bs.playerGrid, playerUnits)
	bs.rebuildGrid(bs.enemyGrid, enemyUnits)

	alive := make([]*Projectile, 0, len(bs.Projectiles))
	for _, p := range bs.Projectiles {
		var full []*UnitInstance
		var grid *spatial.Grid
		if p.Side == "player" {
			full = enemyUnits
			grid = bs.enemyGrid
		} else {
			full = playerUnits
			grid = bs.playerGrid
		}
		candidates := broadPhaseCandidates(grid, full, p)

		reacquire := func(aimX, aimY float64) (int, bool) {
			return bs.nearestEnemyTo(full, aimX, aimY)
		}
		detonate := func(proj *Projectile, enemies []*UnitInstance) {
			Detonate(proj, full, bs.rng)
		}
		p.Step(dt, candidates, bs.rng, reacquire, detonate)
		bs.applyBaseDamage(p)
		if p.Dead {
			bs.applyAIShotFeedback(p)
		} else {
			alive = append(alive, p)
		}
	}
	bs.Projectiles = alive
}

// findUnit looks up a unit by id among the still-alive roster.
func (bs *BattleState) findUnit(id int) *UnitInstance {
	for _, u := range bs.Units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// applyAIShotFeedback: when a dead projectile missed its intended target
// vertically by more than AIMissVerticalTolerance, nudge
// the shooter's AimCorrectionY by ±AIGravityCorrectionStep, clamped to
// ±AIGravityCorrectionClamp, so the next shot compensates for systematic
// gravity misjudgment.
func (bs *BattleState) applyAIShotFeedback(p *Projectile) {
	if p.HitIntended || p.Intended.ID == 0 {
		return
	}
	shooter := bs.findUnit(p.SourceID)
	if shooter == nil {
		return
	}
	missY := p.Intended.Y - p.Y
	if target := bs.findUnit(p.Intended.ID); target != nil {
		missY = target.Y - p.Y
	}
	if math.Abs(missY) <= AIMissVerticalTolerance {
		return
	}
	step := AIGravityCorrectionStep
	if missY < 0 {
		step = -step
	}
	shooter.Debug.AimCorrectionY = clamp(shooter.Debug.AimCorrectionY+step, -AIGravityCorrectionClamp, AIGravityCorrectionClamp)
}

// rebuildGrid reindexes the broad-phase grid for one side's units, keyed by
// position in the passed slice so query results map straight back to units.
func (bs *BattleState) rebuildGrid(grid *spatial.Grid, units []*UnitInstance) {
	grid.Clear()
	for i, u := range units {
		grid.Insert(i, u.X, u.Y)
	}
}

// broadPhaseCandidates narrows a projectile's swept-segment test down to the
// units whose grid cells overlap the segment's bounding radius, avoiding an
// O(units) scan against every projectile every tick. The returned slice is
// a deterministic subset of full (order preserved, duplicates removed);
// narrow-phase sweepHit still performs the exact AABB test.
func broadPhaseCandidates(grid *spatial.Grid, full []*UnitInstance, p *Projectile) []*UnitInstance {
	midX := (p.PrevX + p.X) / 2
	midY := (p.PrevY + p.Y) / 2
	radius := math.Hypot(p.X-p.PrevX, p.Y-p.PrevY)/2 + p.Radius + 80
	idx := grid.QueryRadius(midX, midY, radius)
	if len(idx) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(idx))
	out := make([]*UnitInstance, 0, len(idx))
	for _, i := range idx {
		if i < 0 || i >= len(full) || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, full[i])
	}
	return out
}

func (bs *BattleState) nearestEnemyTo(enemies []*UnitInstance, x, y float64) (int, bool) {
	best := -1
	bestD := math.Inf(1)
	for _, u := range enemies {
		d := math.Hypot(u.X-x, u.Y-y)
		if d < bestD {
			bestD = d
			best = u.ID
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// applyBaseDamage: once the opposing side has no operable weaponed unit,
// a projectile crossing into that side's base
// rectangle subtracts damage * 0.5 from base hp.
func (bs *BattleState) applyBaseDamage(p *Projectile) {
	if p.Dead {
		return
	}
	targetSide := bs.opposingSide(p.Side)
	if bs.hasOperableWeaponedUnit(targetSide) {
		return
	}
	var base *Base
	if targetSide == "player" {
		base = &bs.PlayerBase
	} else {
		base = &bs.EnemyBase
	}
	if base.Rect.W == 0 {
		return
	}
	if pointInRect(p.X, p.Y, base.Rect) {
		base.HP -= p.Damage * 0.5
		p.Dead = true
	}
}

func pointInRect(x, y float64, r Rect) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// pruneDeadAndCheckOutcome drops destroyed units, then decides whether the
// battle has ended: base destruction, or the simulated time deadline.
func (bs *BattleState) pruneDeadAndCheckOutcome() {
	alive := bs.Units[:0]
	for _, u := range bs.Units {
		if isUnitDead(u) {
			continue
		}
		alive = append(alive, u)
	}
	bs.Units = alive

	if bs.Outcome.Set {
		return
	}

	if bs.PlayerBase.Rect.W > 0 && bs.PlayerBase.HP <= 0 {
		bs.Outcome = Outcome{Set: true, Victory: false, Reason: "Base destroyed"}
		bs.Active = false
		return
	}
	if bs.EnemyBase.Rect.W > 0 && bs.EnemyBase.HP <= 0 {
		bs.Outcome = Outcome{Set: true, Victory: true, Reason: "Base destroyed"}
		bs.Active = false
		return
	}
	if bs.simSeconds >= bs.maxSeconds {
		victory := bs.EnemyBase.HP <= bs.PlayerBase.HP
		bs.Outcome = Outcome{Set: true, Victory: victory, Reason: "Arena deadline reached"}
		bs.Active = false
	}
}

func isUnitDead(u *UnitInstance) bool {
	if !u.Operable() {
		return true
	}
	allDestroyed := true
	for _, c := range u.Structure {
		if !c.Destroyed {
			allDestroyed = false
			break
		}
	}
	if allDestroyed {
		return true
	}
	if u.AirDropActive && u.Y >= airDropImpactY {
		return true
	}
	return false
}

const airDropImpactY = BattlefieldDefaultHeight * BattlefieldGroundHeightRatio

package sim

// HitResult carries the cell that absorbed a hit, for callers (projectile
// step, debug logging) that need to know what broke.
type HitResult struct {
	CellID     int
	Destroyed  bool
}

// pickImpactedCell chooses the impacted cell by earliest swept-entry time;
// if none was resolved by the caller's sweep, falls back to the
// leftmost/rightmost alive cell depending on impactSide = sign(vx).
func pickImpactedCell(u *UnitInstance, swept *StructureCell, impactSide float64) *StructureCell {
	if swept != nil && !swept.Destroyed {
		return swept
	}
	var candidates []*StructureCell
	for i := range u.Structure {
		if !u.Structure[i].Destroyed {
			candidates = append(candidates, &u.Structure[i])
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	ImpactedCellSort(candidates)
	if impactSide < 0 {
		return candidates[len(candidates)-1]
	}
	return candidates[0]
}

// ApplyHit runs the damage path: stress accumulation, knockback,
// break-threshold destruction cascade, and attachment fragility. damage and
// impulse come from the projectile or melee source; shotVX is the
// projectile's own x-velocity (its sign is the impact side, not the struck
// unit's current velocity — a unit drifting one way can still be hit and
// knocked back by a shot travelling the other); rng is the match stream
// (never a package-global).
func ApplyHit(u *UnitInstance, swept *StructureCell, damage, impulse, shotVX float64, rng *Stream) HitResult {
	impactSide := signOf(shotVX)
	cell := pickImpactedCell(u, swept, impactSide)
	if cell == nil {
		return HitResult{}
	}

	armor := cell.Material.Armor
	if armor < 0.7 {
		armor = 0.7
	}
	stress := damage/armor + impulse*ImpulseDamageStressFactor
	cell.Strain += stress

	dv := impulseToDeltaV(impulse, u.Mass)
	u.VX += impactSide * dv

	destroyed := false
	if cell.Strain >= cell.BreakThreshold {
		u.DestroyCell(cell.ID, rng)
		destroyed = true
	}

	applyAttachmentFragility(u, cell.ID, damage, rng)

	return HitResult{CellID: cell.ID, Destroyed: destroyed}
}

func signOf(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// applyAttachmentFragility rolls a chance of killing one attachment
// overlapping the impacted cell, scaled by the damage that just landed.
func applyAttachmentFragility(u *UnitInstance, cellID int, damage float64, rng *Stream) {
	chance := 0.22 + damage/180
	if chance > 0.75 {
		chance = 0.75
	}
	if !rng.Bool(chance) {
		return
	}

	var local []*Attachment
	for i := range u.Attachments {
		a := &u.Attachments[i]
		if a.Alive && a.Template.CellID == cellID {
			local = append(local, a)
		}
	}
	if len(local) == 0 {
		return
	}
	pick := local[rng.IntRange(0, len(local)-1)]

	hpMul := 1.0
	killChance := chance * clamp(1/maxFloat(0.35, hpMul), 1, 2.4)
	if killChance > 0.98 {
		killChance = 0.98
	}
	if rng.Bool(killChance) {
		pick.Alive = false
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

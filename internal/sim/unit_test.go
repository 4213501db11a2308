package sim

import "testing"

func groundTemplate() *UnitTemplate {
	return &UnitTemplate{
		ID:   "t-ground",
		Name: "test-ground",
		Type: KindGround,
		Structure: []CellTemplate{
			{ID: 1, X: 0, Y: 0, W: 10, H: 10, Material: Material{Armor: 1, HP: 50, Mass: 20}},
		},
		Attachments: []AttachmentTemplate{
			{ID: 1, CellID: 1, Kind: AttachControl},
			{ID: 2, CellID: 1, Kind: AttachEngine, Power: 50},
			{ID: 3, CellID: 1, Kind: AttachWeapon, WeaponClass: WeaponRapid, Power: 10, Range: 300, Cooldown: 0.5},
		},
	}
}

func TestInstantiateRejectsMissingControl(t *testing.T) {
	tmpl := groundTemplate()
	tmpl.Attachments = tmpl.Attachments[1:] // drop the control attachment
	if u := Instantiate(tmpl, 1, "player", 0, 0); u != nil {
		t.Fatal("expected nil instance with no control attachment")
	}
}

func TestInstantiateRejectsMultipleControl(t *testing.T) {
	tmpl := groundTemplate()
	tmpl.Attachments = append(tmpl.Attachments, AttachmentTemplate{ID: 4, CellID: 1, Kind: AttachControl})
	if u := Instantiate(tmpl, 1, "player", 0, 0); u != nil {
		t.Fatal("expected nil instance with two control attachments")
	}
}

func TestInstantiateGroundOperable(t *testing.T) {
	u := Instantiate(groundTemplate(), 1, "player", 100, 200)
	if u == nil {
		t.Fatal("expected a valid ground instance")
	}
	if !u.Operable() {
		t.Fatal("expected freshly instantiated unit to be operable")
	}
	if u.Mass != 20 {
		t.Fatalf("expected mass 20, got %v", u.Mass)
	}
	if len(u.Weapons) != 1 {
		t.Fatalf("expected 1 weapon slot, got %d", len(u.Weapons))
	}
}

func TestInstantiateAirRejectsInsufficientLift(t *testing.T) {
	tmpl := groundTemplate()
	tmpl.Type = KindAir
	tmpl.Attachments[1].Power = 0.0001 // engine far too weak to lift
	tmpl.Attachments[1].AirPlatform = true
	if u := Instantiate(tmpl, 1, "player", 0, 0); u != nil {
		t.Fatal("expected nil instance when air lift is below AirHoldGravity")
	}
}

func TestInstantiateAirAcceptsSufficientLift(t *testing.T) {
	tmpl := groundTemplate()
	tmpl.Type = KindAir
	tmpl.Attachments[1].Power = 1000
	tmpl.Attachments[1].AirPlatform = true
	tmpl.Attachments[1].ConeScale = 1
	u := Instantiate(tmpl, 1, "player", 0, 0)
	if u == nil {
		t.Fatal("expected non-nil air instance with strong engine")
	}
	if u.AirLift() < AirHoldGravity {
		t.Fatalf("expected lift >= %v, got %v", AirHoldGravity, u.AirLift())
	}
}

func TestRecalcMassFloorsAtFourteen(t *testing.T) {
	tmpl := groundTemplate()
	tmpl.Structure[0].Material.Mass = 1
	u := Instantiate(tmpl, 1, "player", 0, 0)
	if u == nil {
		t.Fatal("expected valid instance")
	}
	if u.Mass != 14 {
		t.Fatalf("expected mass floor of 14, got %v", u.Mass)
	}
}

func TestDestroyCellDetachesAttachments(t *testing.T) {
	u := Instantiate(groundTemplate(), 1, "player", 0, 0)
	rng := NewStream(1)
	u.DestroyCell(1, rng)

	if !u.Structure[0].Destroyed {
		t.Fatal("expected cell marked destroyed")
	}
	for _, a := range u.Attachments {
		if a.Alive {
			t.Fatal("expected every attachment on the destroyed cell to be detached")
		}
	}
	if u.Operable() {
		t.Fatal("expected unit to lose operability once its only control is detached")
	}
}

func TestImpactedCellSortOrder(t *testing.T) {
	cells := []*StructureCell{
		{ID: 3, X: 5, Y: 1},
		{ID: 1, X: 1, Y: 9},
		{ID: 2, X: 1, Y: 2},
	}
	ImpactedCellSort(cells)
	if cells[0].ID != 2 || cells[1].ID != 1 || cells[2].ID != 3 {
		t.Fatalf("unexpected sort order: %+v", cells)
	}
}

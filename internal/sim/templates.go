package sim

// DefaultTemplates returns the built-in unit roster used when a MatchSpec
// doesn't name an override set. Templates and the part catalog are
// read-only after load, shared safely across concurrently running matches.
func DefaultTemplates() map[string]*UnitTemplate {
	out := make(map[string]*UnitTemplate)
	for _, t := range builtinTemplates {
		cp := t
		out[t.ID] = &cp
	}
	return out
}

// MergeTemplates overlays user overrides onto the defaults, keyed by id.
func MergeTemplates(overrides map[string]*UnitTemplate) map[string]*UnitTemplate {
	out := DefaultTemplates()
	for id, t := range overrides {
		out[id] = t
	}
	return out
}

var builtinTemplates = []UnitTemplate{
	{
		ID:      "grunt",
		Name:    "Grunt",
		Type:    KindGround,
		GasCost: 40,
		Structure: []CellTemplate{
			{ID: 0, X: 0, Y: 0, W: 30, H: 30, Material: Material{Armor: 1.0, HP: 60, RecoverPerSecond: 1.5, Mass: 40}},
		},
		Attachments: []AttachmentTemplate{
			{ID: 0, CellID: 0, Kind: AttachControl},
			{ID: 1, CellID: 0, Kind: AttachEngine, Power: 30},
			{ID: 2, CellID: 0, Kind: AttachWeapon, WeaponClass: WeaponRapid, Power: 1, Range: 220, Cooldown: 0.5, MinDamage: 4, MaxDamage: 8},
		},
	},
	{
		ID:      "artillery",
		Name:    "Artillery",
		Type:    KindGround,
		GasCost: 90,
		Structure: []CellTemplate{
			{ID: 0, X: 0, Y: 0, W: 40, H: 30, Material: Material{Armor: 1.4, HP: 100, RecoverPerSecond: 1.0, Mass: 90}},
			{ID: 1, X: 0, Y: -10, W: 20, H: 20, Material: Material{Armor: 0.8, HP: 40, RecoverPerSecond: 0.5, Mass: 20}},
		},
		Attachments: []AttachmentTemplate{
			{ID: 0, CellID: 0, Kind: AttachControl},
			{ID: 1, CellID: 0, Kind: AttachEngine, Power: 20},
			{ID: 2, CellID: 1, Kind: AttachWeapon, WeaponClass: WeaponExplosive, Power: 1, Range: 380, Cooldown: 2.2, MinDamage: 30, MaxDamage: 55},
			{ID: 3, CellID: 0, Kind: AttachLoader, StoreCapacity: 2, MinLoadTime: 1.4, LoadMultiplier: 1.0},
			{ID: 4, CellID: 0, Kind: AttachAmmo},
		},
	},
	{
		ID:      "interceptor",
		Name:    "Interceptor",
		Type:    KindAir,
		GasCost: 70,
		Structure: []CellTemplate{
			{ID: 0, X: 0, Y: 0, W: 26, H: 20, Material: Material{Armor: 0.6, HP: 35, RecoverPerSecond: 1.2, Mass: 24}},
		},
		Attachments: []AttachmentTemplate{
			{ID: 0, CellID: 0, Kind: AttachControl},
			{ID: 1, CellID: 0, Kind: AttachEngine, Power: 28, AirPlatform: true, ConeScale: 1.0},
			{ID: 2, CellID: 0, Kind: AttachWeapon, WeaponClass: WeaponTracking, Power: 1, Range: 260, Cooldown: 1.1, MinDamage: 10, MaxDamage: 18},
			{ID: 3, CellID: 0, Kind: AttachLoader, StoreCapacity: 1, MinLoadTime: 0.8, LoadMultiplier: 0.9},
		},
	},
}

// RosterPreference is the fixed spawn-preference order for mirrored-random
// spawning. It is not ordered by gas cost (grunt 40, artillery 90,
// interceptor 70).
var RosterPreference = []string{"grunt", "artillery", "interceptor"}

package sim

import (
	"math"
	"sort"
)

// UnitKind is the platform class of a unit: it determines whether lift
// feasibility is checked on instantiation and whether airDrop behavior
// applies.
type UnitKind string

const (
	KindGround UnitKind = "ground"
	KindAir    UnitKind = "air"
)

// AttachmentKind names the component slot an attachment fills.
type AttachmentKind string

const (
	AttachControl   AttachmentKind = "control"
	AttachEngine    AttachmentKind = "engine"
	AttachWeapon    AttachmentKind = "weapon"
	AttachLoader    AttachmentKind = "loader"
	AttachAmmo      AttachmentKind = "ammo"
)

// WeaponClass is the ballistic family of a weapon attachment.
type WeaponClass string

const (
	WeaponRapid     WeaponClass = "rapid"
	WeaponHeavy     WeaponClass = "heavy"
	WeaponExplosive WeaponClass = "explosive"
	WeaponTracking  WeaponClass = "tracking"
	WeaponBeam      WeaponClass = "beam"
	WeaponControl   WeaponClass = "control"
)

// Material describes the structural properties of a UnitTemplate cell.
type Material struct {
	Armor            float64
	HP               float64
	RecoverPerSecond float64
	Mass             float64
}

// CellTemplate is one structure cell in a UnitTemplate.
type CellTemplate struct {
	ID       int
	X, Y     float64
	W, H     float64
	Material Material
}

// AttachmentTemplate binds a component to a structure cell.
type AttachmentTemplate struct {
	ID          int
	CellID      int
	Kind        AttachmentKind
	WeaponClass WeaponClass // only meaningful when Kind == AttachWeapon
	Power       float64     // engine thrust power, or weapon base damage scale
	Range       float64     // weapon range
	Cooldown    float64     // weapon cooldown seconds
	MinDamage   float64
	MaxDamage   float64
	StoreCapacity int       // loader extra charge capacity
	MinLoadTime   float64
	LoadMultiplier float64
	FastOperation  bool
	AirPlatform    bool // engine is usable for air lift
	ConeScale      float64
	SpeedCap       float64 // engine's own governed top speed; 0 means ungoverned
}

// UnitTemplate is the immutable blueprint a UnitInstance is instantiated
// from. Templates and the part catalog are read-only after load, per the
// concurrency model: many matches running in parallel share them safely.
type UnitTemplate struct {
	ID          string
	Name        string
	Type        UnitKind
	GasCost     int
	Structure   []CellTemplate
	Attachments []AttachmentTemplate
}

// StructureCell is a live, mutable structure cell on a UnitInstance.
type StructureCell struct {
	ID             int
	X, Y           float64
	W, H           float64
	Material       Material
	Strain         float64
	BreakThreshold float64
	Destroyed      bool
}

// Attachment is a live, mutable attachment on a UnitInstance.
type Attachment struct {
	Template AttachmentTemplate
	Alive    bool
}

// WeaponSlot tracks per-weapon fire state: cooldown, ready charges, and the
// loader timer feeding it.
type WeaponSlot struct {
	AttachmentIdx  int
	AutoFire       bool
	ManualControl  bool
	Cooldown       float64
	ReadyCharges   int
	ChargeCapacity int
	LoaderTimer    float64
	FireCycle      int
}

// AIDebugState carries the last decision's diagnostics for offline
// inspection; it never feeds back into simulation state.
type AIDebugState struct {
	DecisionPath        string
	FireBlockedReason    string
	AimCorrectionY       float64
	AIStateTimer         float64
}

// UnitInstance is a live unit mutated only inside the battle tick.
type UnitInstance struct {
	ID         int
	Side       string
	TemplateID string
	Kind       UnitKind
	Facing     int
	X, Y       float64
	VX, VY     float64
	AccelCap   float64
	MaxSpeed   float64
	TurnDrag   float64
	Radius     float64
	Mass       float64

	Structure   []StructureCell
	Attachments []Attachment
	Weapons     []WeaponSlot

	AIState          string // "engage" | "evade"
	AirDropActive    bool
	AirDropTargetY   float64
	ControlImpair    float64
	ControlImpairT   float64

	Debug AIDebugState

	DeploymentGasCost int
}

// Operable reports whether the unit has exactly one alive control
// attachment, the precondition for it to act at all.
func (u *UnitInstance) Operable() bool {
	return u.aliveControlCount() == 1
}

func (u *UnitInstance) aliveControlCount() int {
	n := 0
	for i := range u.Attachments {
		a := &u.Attachments[i]
		if a.Alive && a.Template.Kind == AttachControl {
			n++
		}
	}
	return n
}

// Instantiate builds a UnitInstance from a template, validating control and
// air-lift feasibility. Returns nil (never an error) on validation failure,
// per the instantiation-failure error kind: invalid spawns are skipped, not
// fatal.
func Instantiate(tmpl *UnitTemplate, id int, side string, x, y float64) *UnitInstance {
	controlCount := 0
	for _, a := range tmpl.Attachments {
		if a.Kind == AttachControl {
			controlCount++
		}
	}
	if controlCount != 1 {
		return nil
	}

	u := &UnitInstance{
		ID:         id,
		Side:       side,
		TemplateID: tmpl.ID,
		Kind:       tmpl.Type,
		Facing:     1,
		X:          x,
		Y:          y,
		Radius:     28,
		AIState:    "engage",
	}

	for _, c := range tmpl.Structure {
		u.Structure = append(u.Structure, StructureCell{
			ID:             c.ID,
			X:              c.X,
			Y:              c.Y,
			W:              c.W,
			H:              c.H,
			Material:       c.Material,
			BreakThreshold: breakThresholdFor(c.Material),
		})
	}
	for _, a := range tmpl.Attachments {
		u.Attachments = append(u.Attachments, Attachment{Template: a, Alive: true})
		if a.Kind == AttachWeapon {
			cap := 1
			if a.WeaponClass != WeaponRapid {
				cap = capacityForWeapon(tmpl, a)
			}
			u.Weapons = append(u.Weapons, WeaponSlot{
				AttachmentIdx:  len(u.Attachments) - 1,
				AutoFire:       true,
				ChargeCapacity: cap,
				ReadyCharges:   cap,
			})
		}
	}

	u.recalcMass()
	u.refreshMobility()

	if tmpl.Type == KindAir {
		if u.AirLift() < AirHoldGravity {
			return nil
		}
	}

	return u
}

func breakThresholdFor(m Material) float64 {
	return m.HP
}

// capacityForWeapon sums 1 + storeCapacity across compatible alive loaders
// for heavy/explosive/tracking weapon classes.
func capacityForWeapon(tmpl *UnitTemplate, weapon AttachmentTemplate) int {
	total := 0
	for _, a := range tmpl.Attachments {
		if a.Kind == AttachLoader {
			total += 1 + a.StoreCapacity
		}
	}
	if total == 0 {
		total = 1
	}
	return total
}

// AirLift computes summed air-engine lift acceleration:
// lift = Σ (power/mass) × AirThrustAccelScale × coneScale. It is recomputed
// from current alive-engine state, never cached, so a unit that loses an
// engine mid-battle sees its lift drop on the very next call.
func (u *UnitInstance) AirLift() float64 {
	if u.Mass <= 0 {
		return 0
	}
	total := 0.0
	for i := range u.Attachments {
		a := &u.Attachments[i]
		if a.Alive && a.Template.Kind == AttachEngine && a.Template.AirPlatform {
			cone := a.Template.ConeScale
			if cone <= 0 {
				cone = 1
			}
			total += (a.Template.Power / u.Mass) * AirThrustAccelScale * cone
		}
	}
	return total
}

// recalcMass sums material mass over non-destroyed structure cells, clamped
// to a minimum of 14 so a nearly-destroyed hulk doesn't go weightless.
func (u *UnitInstance) recalcMass() {
	total := 0.0
	for _, c := range u.Structure {
		if !c.Destroyed {
			total += c.Material.Mass
		}
	}
	if total < 14 {
		total = 14
	}
	u.Mass = total
}

// refreshMobility recomputes max speed, acceleration, and turn drag from
// alive engine power every tick. The speed cap is the power-weighted average
// of SpeedCap over alive governed engines (SpeedCap > 0); ungoverned engines
// add power but do not enter that average, and with no governed engine alive
// the cap is 320.
func (u *UnitInstance) refreshMobility() {
	enginePower := 0.0
	capWeightedSum := 0.0
	capWeight := 0.0
	alive := false
	for i := range u.Attachments {
		a := &u.Attachments[i]
		if a.Alive && a.Template.Kind == AttachEngine {
			enginePower += a.Template.Power
			alive = true
			if a.Template.SpeedCap > 0 {
				capWeightedSum += a.Template.SpeedCap * a.Template.Power
				capWeight += a.Template.Power
			}
		}
	}
	if !alive || u.Mass <= 0 {
		u.MaxSpeed = 0
		u.AccelCap = 0
		u.TurnDrag = 0.8
		return
	}

	speedScale := 74.0
	if u.Kind == KindAir {
		speedScale = 82.0
	}
	cap := 320.0
	if capWeight > 0 {
		cap = capWeightedSum / capWeight
	}
	u.MaxSpeed = clamp(enginePower/u.Mass*speedScale, 0, cap)
	u.AccelCap = clamp(u.MaxSpeed*1.6, 0, cap*1.6)

	speedRatio := 0.0
	if u.MaxSpeed > 0 {
		speedRatio = clamp(math.Hypot(u.VX, u.VY)/u.MaxSpeed, 0, 1)
	}
	u.TurnDrag = 0.8 + speedRatio*0.14
}

// ApplyStructureRecovery heals strain on non-destroyed cells each tick, for
// operable units only.
func (u *UnitInstance) ApplyStructureRecovery(dt float64) {
	if !u.Operable() {
		return
	}
	for i := range u.Structure {
		c := &u.Structure[i]
		if c.Destroyed {
			continue
		}
		c.Strain -= c.Material.RecoverPerSecond * dt
		if c.Strain < 0 {
			c.Strain = 0
		}
	}
}

// DestroyCell marks a cell destroyed, detaches everything mounted on it, and
// rolls a 30% chance of an ammo-cell chain reaction adding 18 strain to every
// surviving cell.
func (u *UnitInstance) DestroyCell(cellID int, rng *Stream) {
	for i := range u.Structure {
		if u.Structure[i].ID == cellID {
			u.Structure[i].Destroyed = true
			break
		}
	}
	u.DetachCellAttachments(cellID)
	u.recalcMass()

	hasAmmo := false
	for i := range u.Attachments {
		a := &u.Attachments[i]
		if a.Template.CellID == cellID && a.Template.Kind == AttachAmmo {
			hasAmmo = true
		}
	}
	if hasAmmo && rng.Bool(0.30) {
		for i := range u.Structure {
			c := &u.Structure[i]
			if !c.Destroyed {
				c.Strain += 18
			}
		}
	}
}

// DetachCellAttachments kills every attachment mapped to the given cell.
func (u *UnitInstance) DetachCellAttachments(cellID int) {
	for i := range u.Attachments {
		if u.Attachments[i].Template.CellID == cellID {
			u.Attachments[i].Alive = false
		}
	}
}

// ImpactedCellSort breaks ties between cells hit in the same swept test by
// (x asc, y asc, id asc), keeping cell selection deterministic.
func ImpactedCellSort(cells []*StructureCell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].X != cells[j].X {
			return cells[i].X < cells[j].X
		}
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].ID < cells[j].ID
	})
}

package ai

import (
	"fmt"

	"github.com/clawforge/skirmish/internal/genetics"
)

// Family ids, exactly as named in the external interface contract.
const (
	FamilyBaselineTarget   = "baseline-target"
	FamilyBaselineMovement = "baseline-movement"
	FamilyBaselineShoot    = "baseline-shoot"
	FamilyDTTarget         = "dt-target"
	FamilyDTMovement       = "dt-movement"
	FamilyDTShoot          = "dt-shoot"
)

// ModuleSpec names a family and its parameter values.
type ModuleSpec struct {
	FamilyID string          `json:"familyId"`
	Params   genetics.Params `json:"params,omitempty"`
}

// CompositeSpec is the full three-module configuration for one side.
type CompositeSpec struct {
	Target   ModuleSpec `json:"target"`
	Movement ModuleSpec `json:"movement"`
	Shoot    ModuleSpec `json:"shoot"`
}

// BaselineComposite is the fixed reference opponent every training phase
// measures a candidate against.
func BaselineComposite() CompositeSpec {
	return CompositeSpec{
		Target:   ModuleSpec{FamilyID: FamilyBaselineTarget},
		Movement: ModuleSpec{FamilyID: FamilyBaselineMovement},
		Shoot:    ModuleSpec{FamilyID: FamilyBaselineShoot},
	}
}

// TargetSchema, MovementSchema, and ShootSchema describe the DT family's
// tunable weighted factors and strategy switch. Unsupported family ids are
// a config error (fatal at job construction, never a simulation-time
// failure).
func TargetSchema() genetics.Schema {
	return genetics.Schema{
		"strategy":       {Kind: genetics.KindInt, IntMin: 0, IntMax: 2, IntStep: 1, IntDefault: 0, MutateRate: 0.3},
		"hpWeight":       {Kind: genetics.KindNumber, Min: 0, Max: 2, Default: 0.3, Sigma: 0.15},
		"weaponWeight":   {Kind: genetics.KindNumber, Min: 0, Max: 2, Default: 0.2, Sigma: 0.15},
		"basePressureW":  {Kind: genetics.KindNumber, Min: 0, Max: 2, Default: 0.1, Sigma: 0.1},
	}
}

func MovementSchema() genetics.Schema {
	return genetics.Schema{
		"strategy":          {Kind: genetics.KindInt, IntMin: 0, IntMax: 2, IntStep: 1, IntDefault: 0, MutateRate: 0.3},
		"desiredRangeFactor": {Kind: genetics.KindNumber, Min: 0.3, Max: 1.3, Default: 0.62, Sigma: 0.1},
		"retreatBoost":       {Kind: genetics.KindNumber, Min: 0, Max: 2, Default: 0.5, Sigma: 0.15},
		"pushBoost":          {Kind: genetics.KindNumber, Min: 0, Max: 2, Default: 0.3, Sigma: 0.15},
		"evadeThreshold":     {Kind: genetics.KindNumber, Min: 0, Max: 1, Default: 0.4, Sigma: 0.1},
	}
}

func ShootSchema() genetics.Schema {
	return genetics.Schema{
		"strategy":       {Kind: genetics.KindInt, IntMin: 0, IntMax: 2, IntStep: 1, IntDefault: 0, MutateRate: 0.3},
		"rangeBias":      {Kind: genetics.KindNumber, Min: 0, Max: 2, Default: 0.72, Sigma: 0.15},
		"leadWeight":     {Kind: genetics.KindNumber, Min: 0, Max: 2, Default: 1.0, Sigma: 0.2},
		"aggressiveFire": {Kind: genetics.KindBoolean, BoolDefault: false, MutateRate: 0.1},
	}
}

// BuildTarget resolves a ModuleSpec into its TargetModule implementation.
func BuildTarget(spec ModuleSpec) (TargetModule, error) {
	switch spec.FamilyID {
	case FamilyBaselineTarget, "":
		return BaselineTarget{}, nil
	case FamilyDTTarget:
		return DTTarget{Params: spec.Params}, nil
	default:
		return nil, fmt.Errorf("ai: unsupported target family %q", spec.FamilyID)
	}
}

// BuildMovement resolves a ModuleSpec into its MovementModule implementation.
func BuildMovement(spec ModuleSpec) (MovementModule, error) {
	switch spec.FamilyID {
	case FamilyBaselineMovement, "":
		return BaselineMovement{}, nil
	case FamilyDTMovement:
		return DTMovement{Params: spec.Params}, nil
	default:
		return nil, fmt.Errorf("ai: unsupported movement family %q", spec.FamilyID)
	}
}

// BuildShoot resolves a ModuleSpec into its ShootModule implementation.
func BuildShoot(spec ModuleSpec) (ShootModule, error) {
	switch spec.FamilyID {
	case FamilyBaselineShoot, "":
		return BaselineShoot{}, nil
	case FamilyDTShoot:
		return DTShoot{Params: spec.Params}, nil
	default:
		return nil, fmt.Errorf("ai: unsupported shoot family %q", spec.FamilyID)
	}
}

// BuildComposite resolves a full CompositeSpec into a dispatchable
// Composite, failing fast (config error, not retryable) on any unsupported
// family id.
func BuildComposite(spec CompositeSpec) (*Composite, error) {
	t, err := BuildTarget(spec.Target)
	if err != nil {
		return nil, err
	}
	m, err := BuildMovement(spec.Movement)
	if err != nil {
		return nil, err
	}
	sh, err := BuildShoot(spec.Shoot)
	if err != nil {
		return nil, err
	}
	return &Composite{Target: t, Movement: m, Shoot: sh}, nil
}

package training

import (
	"fmt"

	"github.com/clawforge/skirmish/internal/genetics"
	"github.com/clawforge/skirmish/internal/sim"
	"github.com/clawforge/skirmish/internal/sim/ai"
)

func dtFamilyID(kind ModuleKind) string {
	switch kind {
	case ModuleTarget:
		return ai.FamilyDTTarget
	case ModuleMovement:
		return ai.FamilyDTMovement
	default:
		return ai.FamilyDTShoot
	}
}

func baselineFamilyID(kind ModuleKind) string {
	switch kind {
	case ModuleTarget:
		return ai.FamilyBaselineTarget
	case ModuleMovement:
		return ai.FamilyBaselineMovement
	default:
		return ai.FamilyBaselineShoot
	}
}

func schemaFor(kind ModuleKind) genetics.Schema {
	switch kind {
	case ModuleTarget:
		return ai.TargetSchema()
	case ModuleMovement:
		return ai.MovementSchema()
	default:
		return ai.ShootSchema()
	}
}

// initModule resolves a module's starting ModuleSpec from its Source flag:
// baseline, a fresh randomParams-seeded DT module, or a module loaded from a
// trained composite artifact on disk.
func initModule(kind ModuleKind, source Source, artifactPath string, rng *sim.Stream) (ai.ModuleSpec, error) {
	switch source {
	case SourceNew:
		return ai.ModuleSpec{FamilyID: dtFamilyID(kind), Params: genetics.RandomParams(schemaFor(kind), rng)}, nil
	case SourceTrained:
		spec, err := loadCompositeArtifact(artifactPath)
		if err != nil {
			return ai.ModuleSpec{}, fmt.Errorf("training: loading trained %s module: %w", kind, err)
		}
		return moduleSlot(spec, kind), nil
	default:
		return ai.ModuleSpec{FamilyID: baselineFamilyID(kind)}, nil
	}
}

package ai

import (
	"encoding/json"
	"fmt"
)

// CompositeArtifact is the on-disk envelope for a trained composite:
// {familyId:"composite", composite:{target,movement,shoot}}.
type CompositeArtifact struct {
	FamilyID  string        `json:"familyId"`
	Composite CompositeSpec `json:"composite"`
}

// MarshalCompositeArtifact wraps spec in the {familyId:"composite", ...}
// envelope and serializes it, the shape every new artifact on disk uses.
func MarshalCompositeArtifact(spec CompositeSpec) ([]byte, error) {
	return json.MarshalIndent(CompositeArtifact{FamilyID: "composite", Composite: spec}, "", "  ")
}

// ParseCompositeSpec normalizes the two on-disk artifact shapes named in the
// external interface contract: the new {familyId:"composite", composite:{...}}
// envelope and the legacy bare {target,movement,shoot} shape. It fails fast
// (config error, not retryable) on malformed input rather than guessing.
func ParseCompositeSpec(data []byte) (CompositeSpec, error) {
	var envelope struct {
		FamilyID  string          `json:"familyId"`
		Composite json.RawMessage `json:"composite"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return CompositeSpec{}, fmt.Errorf("ai: malformed composite artifact: %w", err)
	}

	if envelope.Composite != nil {
		var spec CompositeSpec
		if err := json.Unmarshal(envelope.Composite, &spec); err != nil {
			return CompositeSpec{}, fmt.Errorf("ai: malformed composite envelope body: %w", err)
		}
		return validateCompositeSpec(spec)
	}

	// Legacy shape: {target, movement, shoot} with no envelope.
	var legacy CompositeSpec
	if err := json.Unmarshal(data, &legacy); err != nil {
		return CompositeSpec{}, fmt.Errorf("ai: malformed legacy composite spec: %w", err)
	}
	if legacy.Target.FamilyID == "" && legacy.Movement.FamilyID == "" && legacy.Shoot.FamilyID == "" {
		return CompositeSpec{}, fmt.Errorf("ai: composite spec has neither a composite envelope nor target/movement/shoot fields")
	}
	return validateCompositeSpec(legacy)
}

// validateCompositeSpec fails fast if any module names a family id this
// build doesn't register.
func validateCompositeSpec(spec CompositeSpec) (CompositeSpec, error) {
	if _, err := BuildTarget(spec.Target); err != nil {
		return CompositeSpec{}, err
	}
	if _, err := BuildMovement(spec.Movement); err != nil {
		return CompositeSpec{}, err
	}
	if _, err := BuildShoot(spec.Shoot); err != nil {
		return CompositeSpec{}, err
	}
	return spec, nil
}

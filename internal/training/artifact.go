package training

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/clawforge/skirmish/internal/genetics"
	"github.com/clawforge/skirmish/internal/sim/ai"
)

func loadCompositeArtifact(path string) (ai.CompositeSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ai.CompositeSpec{}, err
	}
	return ai.ParseCompositeSpec(data)
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// newRunID builds "<targetFam>-<movementFam>-<shootFam>-<iso-ts>" with
// non-alphanumeric runs in each family id collapsed to a single hyphen, so
// the directory name doubles as a human-readable composite summary.
func newRunID(composite ai.CompositeSpec, now time.Time) string {
	norm := func(s string) string {
		s = nonAlphanumeric.ReplaceAllString(s, "-")
		return strings.Trim(s, "-")
	}
	ts := now.UTC().Format("20060102T150405Z")
	return fmt.Sprintf("%s-%s-%s-%s",
		norm(composite.Target.FamilyID),
		norm(composite.Movement.FamilyID),
		norm(composite.Shoot.FamilyID),
		ts,
	)
}

// genSnapshot is one generation's persisted best candidate for one module's
// phase, {module, phase, generation, best}.
type genSnapshot struct {
	Module     string           `json:"module"`
	Phase      string           `json:"phase"`
	Generation int              `json:"generation"`
	Best       bestCandidate    `json:"best"`
}

type bestCandidate struct {
	FamilyID string          `json:"familyId"`
	Params   genetics.Params `json:"params"`
	WL       float64         `json:"wl"`
	Score    float64         `json:"score"`
	Elo      float64         `json:"elo,omitempty"`
}

// runArtifactWriter persists gen-N.json / best-module.json / best-composite.json
// under <dataRoot>/runs/<runId>/.
type runArtifactWriter struct {
	root string
}

func newRunArtifactWriter(dataRoot, runID string) runArtifactWriter {
	return runArtifactWriter{root: filepath.Join(dataRoot, "runs", runID)}
}

func (w runArtifactWriter) phaseDir(module ModuleKind, phase string) string {
	return filepath.Join(w.root, string(module), phase)
}

func (w runArtifactWriter) writeGeneration(module ModuleKind, phase string, generation int, best bestCandidate) error {
	dir := w.phaseDir(module, phase)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	snap := genSnapshot{Module: string(module), Phase: phase, Generation: generation, Best: best}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("training: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("gen-%d.json", generation))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	return nil
}

func (w runArtifactWriter) writeBestModule(module ModuleKind, phase string, mod ai.ModuleSpec) error {
	dir := w.phaseDir(module, phase)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	data, err := json.MarshalIndent(mod, "", "  ")
	if err != nil {
		return fmt.Errorf("training: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "best-module.json"), data, 0o644); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	return nil
}

func (w runArtifactWriter) writeBestComposite(composite ai.CompositeSpec) error {
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	data, err := ai.MarshalCompositeArtifact(composite)
	if err != nil {
		return fmt.Errorf("training: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.root, "best-composite.json"), data, 0o644); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	return nil
}

package leaderboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFreshDataRootHasBaselineAnchor(t *testing.T) {
	st, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	score, ok := st.Score(BaselineRunID)
	if !ok || score != BaselineScore {
		t.Fatalf("expected baseline anchor at %v, got %v ok=%v", BaselineScore, score, ok)
	}
	if len(st.All()) != 1 {
		t.Fatalf("expected exactly the baseline entry on a fresh data root, got %d", len(st.All()))
	}
}

func TestSaveScorePersistsAndReloads(t *testing.T) {
	root := t.TempDir()
	st, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := st.SaveScore("run-a", 1200); err != nil {
		t.Fatalf("SaveScore: %v", err)
	}

	st2, err := Load(root)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	// run-a has no on-disk best-composite.json, so it won't be re-enumerated
	// into entries on reload (per load's "enumerate runs with an artifact"
	// contract); only its rating file entry matters for that guarantee.
	_ = st2

	score, ok := st.Score("run-a")
	if !ok || score != 1200 {
		t.Fatalf("expected run-a score 1200 in the live store, got %v ok=%v", score, ok)
	}

	data, err := os.ReadFile(filepath.Join(root, "leaderboard", "composite-elo.json"))
	if err != nil {
		t.Fatalf("read ratings file: %v", err)
	}
	var rf ratingsFile
	if err := json.Unmarshal(data, &rf); err != nil {
		t.Fatalf("decode ratings file: %v", err)
	}
	if rf.Ratings["run-a"].Score != 1200 {
		t.Fatalf("expected run-a score 1200 persisted in the ratings file, got %+v", rf.Ratings)
	}
}

func TestNearestOrdersByDistanceToReference(t *testing.T) {
	st, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	st.SaveScore("low", 10)
	// Load seeds the baseline anchor at BaselineScore (100), so mid sits
	// closer to 105 than the anchor does.
	st.SaveScore("mid", 104)
	st.SaveScore("high", 1000)

	nearest := st.Nearest(105, 1)
	if len(nearest) != 1 || nearest[0].RunID != "mid" {
		t.Fatalf("expected mid as the nearest entry to 105, got %+v", nearest)
	}
}

func TestScoreUnknownRun(t *testing.T) {
	st, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := st.Score("does-not-exist"); ok {
		t.Fatal("expected ok=false for an unknown run id")
	}
}

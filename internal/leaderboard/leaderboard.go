// Package leaderboard is a single Elo-ratings snapshot plus the on-disk
// best-composite artifacts it references, exposing nearest-by-score
// opponent queries for the Elo training phase via the shared skip-list
// index.
package leaderboard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/clawforge/skirmish/internal/sim/ai"
	"github.com/clawforge/skirmish/internal/spatial"
)

// BaselineRunID anchors the ladder at a fixed score so a fresh dataRoot with
// no trained runs yet still has one opponent to evaluate against.
const BaselineRunID = "baseline-composite"

// BaselineScore is the anchor's fixed Elo rating.
const BaselineScore = 100

// Entry is one ladder opponent: its run id, rating, and composite.
type Entry struct {
	RunID     string
	Score     float64
	Composite ai.CompositeSpec
}

type ratingsFile struct {
	Ratings map[string]struct {
		Score float64 `json:"score"`
	} `json:"ratings"`
}

// Store holds the loaded ladder and an EloSkipList index over it for
// nearest-by-score queries.
type Store struct {
	dataRoot string
	entries  map[string]Entry
	index    *spatial.EloSkipList
}

// Load reads <dataRoot>/leaderboard/composite-elo.json and enumerates
// runs/<runId>/best-composite.json for every rated run. Missing or malformed
// files are ignored silently — they just shrink the opponent pool. A
// synthetic baseline-composite anchor at BaselineScore is always present.
func Load(dataRoot string) (*Store, error) {
	st := &Store{
		dataRoot: dataRoot,
		entries:  make(map[string]Entry),
		index:    spatial.NewEloSkipList(),
	}
	st.add(Entry{RunID: BaselineRunID, Score: BaselineScore, Composite: ai.BaselineComposite()})

	ratingsPath := filepath.Join(dataRoot, "leaderboard", "composite-elo.json")
	data, err := os.ReadFile(ratingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, nil // malformed/unreadable snapshot: ignore, ladder keeps only the anchor
	}

	var rf ratingsFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return st, nil
	}

	for runID, rating := range rf.Ratings {
		compositePath := filepath.Join(dataRoot, "runs", runID, "best-composite.json")
		raw, err := os.ReadFile(compositePath)
		if err != nil {
			continue
		}
		spec, err := ai.ParseCompositeSpec(raw)
		if err != nil {
			continue
		}
		st.add(Entry{RunID: runID, Score: rating.Score, Composite: spec})
	}
	return st, nil
}

func (s *Store) add(e Entry) {
	s.entries[e.RunID] = e
	s.index.Insert(e.RunID, e.Score)
}

// All returns every ladder entry; order is unspecified.
func (s *Store) All() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out
}

// Nearest returns the k entries whose score is closest to reference, used
// to pick Elo-phase opponents.
func (s *Store) Nearest(reference float64, k int) []Entry {
	ranked := s.index.NearestByScore(reference, k)
	out := make([]Entry, 0, len(ranked))
	for _, r := range ranked {
		if e, ok := s.entries[r.Key]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Score reports a run's current rating, if known.
func (s *Store) Score(runID string) (float64, bool) {
	v, ok := s.entries[runID]
	return v.Score, ok
}

// SaveScore upserts runID's rating in both the index and the on-disk
// snapshot, called by the orchestrator at Elo-phase boundaries (writes are
// serialized by the orchestrator, never concurrent with this call).
func (s *Store) SaveScore(runID string, score float64) error {
	if e, ok := s.entries[runID]; ok {
		e.Score = score
		s.entries[runID] = e
	} else {
		s.entries[runID] = Entry{RunID: runID, Score: score}
	}
	s.index.Insert(runID, score)
	return s.persist()
}

func (s *Store) persist() error {
	dir := filepath.Join(s.dataRoot, "leaderboard")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	rf := ratingsFile{Ratings: make(map[string]struct {
		Score float64 `json:"score"`
	})}
	for runID, e := range s.entries {
		if runID == BaselineRunID {
			continue
		}
		rf.Ratings[runID] = struct {
			Score float64 `json:"score"`
		}{Score: e.Score}
	}
	data, err := json.MarshalIndent(rf, "", "  ")
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "composite-elo.json"), data, 0o644)
}

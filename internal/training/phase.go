package training

import "github.com/clawforge/skirmish/internal/match"

// phase is one entry in a module's training curriculum: a scenario shape
// plus whether it draws opponents from the leaderboard instead of the
// frozen reference composite.
type phase struct {
	ID                  string
	WithBase            bool
	InitialUnitsPerSide int
	Elo                 bool
}

// phasesFor returns the module's phase list: the target module omits
// p1-no-base-1v1 (a lone target has nothing to rank), and the leaderboard
// phase only runs when Elo opponent sampling is enabled.
func phasesFor(kind ModuleKind, eloEnabled bool) []phase {
	var phases []phase
	if kind != ModuleTarget {
		phases = append(phases, phase{ID: "p1-no-base-1v1", InitialUnitsPerSide: 1})
	}
	phases = append(phases,
		phase{ID: "p2-no-base-nvn", InitialUnitsPerSide: 3},
		phase{ID: "p3-battlefield-base", WithBase: true, InitialUnitsPerSide: 3},
	)
	if eloEnabled {
		phases = append(phases, phase{ID: "p4-leaderboard", WithBase: true, InitialUnitsPerSide: 3, Elo: true})
	}
	return phases
}

func (p phase) scenario() match.Scenario {
	return match.Scenario{WithBase: p.WithBase, InitialUnitsPerSide: p.InitialUnitsPerSide}
}

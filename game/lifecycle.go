package game

import (
	"log/slog"

	"github.com/flatball-sim/flatball/match"
)

// Kickoff starts the opening point. Entities are already in formation from
// construction; this arms the pull timers.
func (g *Game) Kickoff() {
	if g.state.Phase != match.PhasePregame {
		return
	}
	g.state.BeginPull()
	slog.Info("kickoff",
		"pulling", g.state.PullingTeam().String(),
		"receiving", g.state.Possession.String(),
	)
}

// ResumeSecondHalf restarts play after the halftime break with a fresh
// pull. No-ops outside the halftime phase.
func (g *Game) ResumeSecondHalf() {
	if g.state.Phase != match.PhaseHalftime {
		return
	}
	g.state.ResumeFromHalftime()
	g.initializeEntities()
	slog.Info("second half", "pulling", g.state.PullingTeam().String())
}

// Restart tears the match down to a fresh pregame and kicks off again.
// The teardown is atomic with respect to the tick: entities, phase state,
// stall state, and all timing accumulators reset together so nothing
// references stale ids.
func (g *Game) Restart() {
	g.clearEntities()
	g.state.Reset(g.cfg)
	g.collector.Reset()
	g.tick = 0
	g.initializeEntities()
	g.Kickoff()
}

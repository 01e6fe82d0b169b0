package game

import (
	"github.com/flatball-sim/flatball/components"
)

// PlayerView is the read-only per-player state exposed to renderers.
type PlayerView struct {
	Team     components.Team
	Number   int
	Role     components.Role
	HasDisc  bool
	State    components.AIState
	Position components.Position
	Velocity components.Velocity
}

// DiscView is the read-only disc state exposed to renderers. Target is
// meaningful only when HasTarget is set (landing-indicator visualization).
type DiscView struct {
	Position  components.Position
	Velocity  components.Velocity
	InFlight  bool
	Target    components.Position
	HasTarget bool
}

// Snapshot is a one-way observation of the simulation for the rendering
// and UI layers. The simulation is authoritative; consumers must never
// write back through it.
type Snapshot struct {
	Phase      string
	HomeScore  int
	AwayScore  int
	Possession components.Team
	Half       int
	Clock      float64

	StallCount  int
	StallActive bool

	Disc    DiscView
	Players []PlayerView

	// LastEvent keys one-shot effects (camera shake, announcer lines).
	LastEvent string
}

// Snapshot captures the current frame's observable state.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:      g.state.Phase.String(),
		HomeScore:  g.state.HomeScore,
		AwayScore:  g.state.AwayScore,
		Possession: g.state.Possession,
		Half:       g.state.Half,
		Clock:      g.state.Clock,
		LastEvent:  g.state.LastEvent.Kind.String(),
	}

	if g.hasDisc && g.world.Alive(g.disc) {
		if d := g.discMap.Get(g.disc); d != nil {
			snap.Disc.InFlight = d.InFlight
			snap.Disc.Target = d.Target
			snap.Disc.HasTarget = d.HasTarget
		}
		if pos := g.posMap.Get(g.disc); pos != nil {
			snap.Disc.Position = *pos
		}
		if vel := g.velMap.Get(g.disc); vel != nil {
			snap.Disc.Velocity = *vel
		}
		if stall := g.stallMap.Get(g.disc); stall != nil {
			snap.StallCount = stall.Count
			snap.StallActive = stall.Active
		}
	}

	query := g.playerFilter.Query()
	for query.Next() {
		pos, vel, pl, ai := query.Get()
		snap.Players = append(snap.Players, PlayerView{
			Team:     pl.Team,
			Number:   pl.Number,
			Role:     pl.Role,
			HasDisc:  pl.HasDisc,
			State:    ai.State,
			Position: *pos,
			Velocity: *vel,
		})
	}
	return snap
}

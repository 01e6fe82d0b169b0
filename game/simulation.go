package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/flatball-sim/flatball/components"
	"github.com/flatball-sim/flatball/field"
	"github.com/flatball-sim/flatball/match"
)

// Step advances the simulation by one frame of delta seconds. The per-tick
// order is fixed: phase timers, then disc physics (or holder-follow), then
// AI, then stall and pickup resolution — later stages read state mutated by
// earlier ones within the same tick. A paused game changes nothing.
func (g *Game) Step(delta float64) {
	if g.state.Paused || delta <= 0 || g.state.Over() {
		return
	}
	dt := float32(delta * g.state.Speed)

	g.state.Clock += float64(dt)
	g.collector.Tick(float64(dt))

	g.advancePhase(dt)
	g.flight.Update(g.disc, g.state, dt)
	g.ai.Update(g.disc, g.state, dt)
	g.stall.Update(g.disc, g.state, dt)
	g.flight.TryPickup(g.disc, g.state)

	g.tick++
}

// Update advances one tick at the configured fixed timestep. Hosts with a
// render loop call this once per frame.
func (g *Game) Update() {
	g.Step(g.cfg.Timing.DT)
}

// advancePhase drives the accumulator-based waits: pull setup and windup,
// and the post-score celebration.
func (g *Game) advancePhase(dt float32) {
	switch g.state.Phase {
	case match.PhasePull:
		g.state.AdvancePullClock(dt)
		if g.state.PullReleaseDue() {
			g.executePull()
		}
	case match.PhaseScore:
		if g.state.AdvanceCelebration(dt) {
			if g.state.FinishCelebration() == match.PhasePull {
				g.initializeEntities()
			}
		}
	}
}

// executePull solves and releases the opening throw toward a random point
// in the receiving team's end zone, and designates the closest receiving
// player to chase it down.
func (g *Game) executePull() {
	holder, ok := g.flight.Holder()
	if !ok {
		// Nobody to pull; skip straight to open play with a grounded disc.
		g.state.DiscReleased()
		g.state.PullLanded()
		return
	}
	holderPos := g.posMap.Get(holder)
	if holderPos == nil {
		return
	}

	targetDir := g.state.AttackDirection(g.state.PullingTeam())
	target := g.pull.PickTarget(targetDir)
	vy := g.pull.PickVerticalSpeed()

	release := components.Position{
		X: holderPos.X,
		Y: holderPos.Y + float32(g.cfg.Flight.ReleaseHeight),
		Z: holderPos.Z,
	}
	vx, vz := g.pull.Solve(release, target, vy)

	receiver, hasReceiver := g.closestReceiverTo(target)

	vel := components.Velocity{X: vx, Y: vy, Z: vz}
	if !g.flight.Throw(g.disc, vel, target, receiver, hasReceiver) {
		return
	}
	if d := g.discMap.Get(g.disc); d != nil {
		d.Pull = true
	}
	g.state.DiscReleased()

	slog.Info("pull released",
		"team", g.state.PullingTeam().String(),
		"target_x", target.X,
		"target_z", target.Z,
		"vx", vx, "vy", vy, "vz", vz,
	)
}

// closestReceiverTo returns the receiving-team player nearest the pull's
// landing point. Only this player chases the pull; the rest set up.
func (g *Game) closestReceiverTo(target components.Position) (ecs.Entity, bool) {
	var closest ecs.Entity
	best := float32(0)
	found := false

	query := g.playerFilter.Query()
	for query.Next() {
		pos, _, pl, _ := query.Get()
		if pl.Team != g.state.Possession {
			continue
		}
		dist := field.HorizontalDistance(*pos, target)
		if !found || dist < best {
			best = dist
			closest = query.Entity()
			found = true
		}
	}
	return closest, found
}

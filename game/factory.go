package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/flatball-sim/flatball/components"
	"github.com/flatball-sim/flatball/field"
)

// lateral spacing between players on the line, meters
const lineSpacing = 4.5

// createPlayer spawns one player entity at the given pitch coordinates.
func (g *Game) createPlayer(team components.Team, number int, role components.Role, x, z float32) ecs.Entity {
	pos := components.Position{X: x, Z: z}
	vel := components.Velocity{}
	pl := components.Player{Team: team, Number: number, Role: role}
	ai := components.AI{
		State: components.StateIdle,
		// Desync first decisions across the roster
		Decision: g.rng.Float32() * float32(g.cfg.AI.DecisionInterval),
	}
	return g.playerMapper.NewEntity(&pos, &vel, &pl, &ai)
}

// createDisc spawns the disc entity.
func (g *Game) createDisc(x, y, z float32) ecs.Entity {
	pos := components.Position{X: x, Y: y, Z: z}
	vel := components.Velocity{}
	disc := components.Disc{}
	stall := components.Stall{}
	return g.discMapper.NewEntity(&pos, &vel, &disc, &stall)
}

// initializeEntities clears the world and recreates both rosters and the
// disc in kickoff formation: each team lines up on its own goal line, the
// disc with the pulling team's first handler. Invalidates all prior ids.
func (g *Game) initializeEntities() {
	g.clearEntities()

	perSide := g.cfg.Rules.PlayersPerSide
	handlers := perSide / 2

	for _, team := range []components.Team{components.TeamHome, components.TeamAway} {
		// Goal line of the end zone this team defends.
		lineZ := -g.state.AttackDirection(team) * field.EndZoneLine
		for i := 0; i < perSide; i++ {
			role := components.RoleCutter
			if i < handlers {
				role = components.RoleHandler
			}
			x := (float32(i) - float32(perSide-1)/2) * lineSpacing
			g.createPlayer(team, i+1, role, x, lineZ)
		}
	}

	g.disc = g.createDisc(0, float32(g.cfg.Flight.GroundHeight), 0)
	g.hasDisc = true

	if puller, ok := g.puller(); ok {
		g.flight.Give(g.disc, puller)
		if ai := g.aiMap.Get(puller); ai != nil {
			ai.State = components.StatePulling
		}
	}
}

// clearEntities removes every entity. All entity ids become invalid.
func (g *Game) clearEntities() {
	var players []ecs.Entity
	query := g.playerFilter.Query()
	for query.Next() {
		players = append(players, query.Entity())
	}
	for _, e := range players {
		g.playerMapper.Remove(e)
	}

	if g.hasDisc && g.world.Alive(g.disc) {
		g.discMapper.Remove(g.disc)
	}
	g.hasDisc = false
	g.disc = ecs.Entity{}
}

// puller returns the pulling team's first handler.
func (g *Game) puller() (ecs.Entity, bool) {
	team := g.state.PullingTeam()
	var puller ecs.Entity
	found := false
	query := g.playerFilter.Query()
	for query.Next() {
		_, _, pl, _ := query.Get()
		if !found && pl.Team == team && pl.Role == components.RoleHandler {
			puller = query.Entity()
			found = true
		}
	}
	return puller, found
}

// Players returns the entities of the given team, in store order.
func (g *Game) Players(team components.Team) []ecs.Entity {
	var out []ecs.Entity
	query := g.playerFilter.Query()
	for query.Next() {
		_, _, pl, _ := query.Get()
		if pl.Team == team {
			out = append(out, query.Entity())
		}
	}
	return out
}

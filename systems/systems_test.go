package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/flatball-sim/flatball/components"
	"github.com/flatball-sim/flatball/config"
	"github.com/flatball-sim/flatball/match"
)

// rig bundles a world, systems, and mappers for system tests.
type rig struct {
	world  *ecs.World
	cfg    *config.Config
	rng    *rand.Rand
	flight *Flight
	stall  *StallEngine
	ai     *AI

	players *ecs.Map4[components.Position, components.Velocity, components.Player, components.AI]
	discs   *ecs.Map4[components.Position, components.Velocity, components.Disc, components.Stall]

	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	playerMap *ecs.Map1[components.Player]
	aiMap     *ecs.Map1[components.AI]
	discMap   *ecs.Map1[components.Disc]
	stallMap  *ecs.Map1[components.Stall]
}

func newRig(t *testing.T) *rig {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}

	w := ecs.NewWorld()
	rng := rand.New(rand.NewSource(42))
	flight := NewFlight(w, cfg, rng)

	return &rig{
		world:  w,
		cfg:    cfg,
		rng:    rng,
		flight: flight,
		stall:  NewStallEngine(w, cfg, flight),
		ai:     NewAI(w, cfg, rng, flight),
		players: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Player,
			components.AI,
		](w),
		discs: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Disc,
			components.Stall,
		](w),
		posMap:    ecs.NewMap1[components.Position](w),
		velMap:    ecs.NewMap1[components.Velocity](w),
		playerMap: ecs.NewMap1[components.Player](w),
		aiMap:     ecs.NewMap1[components.AI](w),
		discMap:   ecs.NewMap1[components.Disc](w),
		stallMap:  ecs.NewMap1[components.Stall](w),
	}
}

func (r *rig) addPlayer(team components.Team, number int, x, z float32, hasDisc bool) ecs.Entity {
	pos := components.Position{X: x, Z: z}
	vel := components.Velocity{}
	pl := components.Player{Team: team, Number: number, Role: components.RoleHandler, HasDisc: hasDisc}
	ai := components.AI{State: components.StateIdle}
	return r.players.NewEntity(&pos, &vel, &pl, &ai)
}

func (r *rig) addDisc(x, y, z float32) ecs.Entity {
	pos := components.Position{X: x, Y: y, Z: z}
	vel := components.Velocity{}
	disc := components.Disc{}
	stall := components.Stall{}
	return r.discs.NewEntity(&pos, &vel, &disc, &stall)
}

// playingState returns match state in open play with home on offense.
func (r *rig) playingState() *match.State {
	st := match.NewState(r.cfg)
	st.Phase = match.PhasePlaying
	return st
}

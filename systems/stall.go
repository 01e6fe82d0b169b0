package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/flatball-sim/flatball/components"
	"github.com/flatball-sim/flatball/config"
	"github.com/flatball-sim/flatball/field"
	"github.com/flatball-sim/flatball/match"
)

// StallEngine enforces the stall count: while a defender marks the disc
// holder inside marking distance, the count rises once per interval;
// reaching the maximum forces a turnover. When the marker steps out of
// range the count pauses but keeps its value.
type StallEngine struct {
	cfg *config.Config

	world *ecs.World

	stallMap *ecs.Map1[components.Stall]
	posMap   *ecs.Map1[components.Position]

	playerFilter *ecs.Filter2[components.Position, components.Player]

	flight *Flight
}

// NewStallEngine creates the stall rule engine.
func NewStallEngine(w *ecs.World, cfg *config.Config, flight *Flight) *StallEngine {
	return &StallEngine{
		cfg:          cfg,
		world:        w,
		stallMap:     ecs.NewMap1[components.Stall](w),
		posMap:       ecs.NewMap1[components.Position](w),
		playerFilter: ecs.NewFilter2[components.Position, components.Player](w),
		flight:       flight,
	}
}

// Update advances the stall count by one tick. Runs only in open play with
// the disc held; dt arrives already speed-scaled so count-up stretches and
// compresses with the simulation speed, carrying fractional remainders.
func (e *StallEngine) Update(disc ecs.Entity, st *match.State, dt float32) {
	if st.Phase != match.PhasePlaying || !e.world.Alive(disc) {
		return
	}
	stall := e.stallMap.Get(disc)
	if stall == nil {
		return
	}

	holder, ok := e.flight.Holder()
	if !ok {
		stall.Reset()
		return
	}
	holderPos := e.posMap.Get(holder)
	if holderPos == nil {
		stall.Reset()
		return
	}
	holderTeam := st.Possession

	marker, found := e.closestMarker(holder, *holderPos, holderTeam)
	if !found {
		stall.ClearMarker()
		return
	}

	stall.SetMarker(marker)
	stall.TimeSinceCount += dt
	interval := float32(e.cfg.Stall.Interval)
	for stall.TimeSinceCount >= interval {
		stall.TimeSinceCount -= interval
		stall.Count++
		if stall.Count >= e.cfg.Stall.MaxCount {
			e.stallOut(disc, stall, st)
			return
		}
	}
}

// closestMarker returns the nearest opposing player within marking distance
// of the holder.
func (e *StallEngine) closestMarker(holder ecs.Entity, holderPos components.Position, holderTeam components.Team) (ecs.Entity, bool) {
	var marker ecs.Entity
	best := e.cfg.Derived.MarkingDistSq
	found := false

	query := e.playerFilter.Query()
	for query.Next() {
		pp, pl := query.Get()
		entity := query.Entity()
		if entity == holder || pl.Team == holderTeam {
			continue
		}
		distSq := field.DistanceSq(holderPos, components.Position{X: pp.X, Y: holderPos.Y, Z: pp.Z})
		if distSq <= best {
			best = distSq
			marker = entity
			found = true
		}
	}
	return marker, found
}

// stallOut drops the disc at the holder's feet and forces the turnover.
func (e *StallEngine) stallOut(disc ecs.Entity, stall *components.Stall, st *match.State) {
	e.flight.Drop(disc)
	stall.Reset()
	st.Turnover(match.EventStallOut)
}

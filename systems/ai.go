package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/flatball-sim/flatball/components"
	"github.com/flatball-sim/flatball/config"
	"github.com/flatball-sim/flatball/field"
	"github.com/flatball-sim/flatball/match"
)

// playerInfo is a per-tick snapshot of one player, collected before the
// decision pass so scoring heuristics can scan the whole roster without
// holding a live query open.
type playerInfo struct {
	entity ecs.Entity
	pos    components.Position
	team   components.Team
	number int
	has    bool
}

// AI drives every player's behavior state machine: cutting, throwing,
// catching, defending. Decisions re-evaluate on a jittered countdown;
// movement toward the current target executes every frame.
type AI struct {
	cfg *config.Config
	rng *rand.Rand

	world *ecs.World

	discMap  *ecs.Map1[components.Disc]
	stallMap *ecs.Map1[components.Stall]
	posMap   *ecs.Map1[components.Position]
	aiMap    *ecs.Map1[components.AI]

	playerFilter *ecs.Filter4[components.Position, components.Velocity, components.Player, components.AI]

	flight *Flight

	// scratch roster rebuilt each tick
	roster []playerInfo
}

// NewAI creates the decision system.
func NewAI(w *ecs.World, cfg *config.Config, rng *rand.Rand, flight *Flight) *AI {
	return &AI{
		cfg:      cfg,
		rng:      rng,
		world:    w,
		discMap:  ecs.NewMap1[components.Disc](w),
		stallMap: ecs.NewMap1[components.Stall](w),
		posMap:   ecs.NewMap1[components.Position](w),
		aiMap:    ecs.NewMap1[components.AI](w),
		playerFilter: ecs.NewFilter4[
			components.Position,
			components.Velocity,
			components.Player,
			components.AI,
		](w),
		flight: flight,
	}
}

// Update runs decisions and movement for all players. Players are frozen
// during the pull phase until the disc is released.
func (a *AI) Update(disc ecs.Entity, st *match.State, dt float32) {
	if st.Phase == match.PhasePull || st.Phase == match.PhaseScore ||
		st.Phase == match.PhaseHalftime || st.Phase == match.PhaseEndgame ||
		st.Phase == match.PhasePregame {
		return
	}
	if !a.world.Alive(disc) {
		return
	}
	d := a.discMap.Get(disc)
	discPos := a.posMap.Get(disc)
	stall := a.stallMap.Get(disc)
	if d == nil || discPos == nil {
		return
	}

	a.collectRoster()

	// Decision pass: mutates only AI components, reading the roster
	// snapshot taken above.
	query := a.playerFilter.Query()
	for query.Next() {
		_, _, pl, ai := query.Get()
		entity := query.Entity()

		ai.Decision -= dt
		if ai.Decision <= 0 {
			jitter := (a.rng.Float32()*2 - 1) * float32(a.cfg.AI.DecisionJitter)
			ai.Decision = float32(a.cfg.AI.DecisionInterval) + jitter
			a.decide(entity, pl, ai, d, *discPos, stall, st)
		}
	}

	// Throw resolution for the holder, if any.
	a.resolveThrow(disc, d, stall, st, dt)

	// Movement pass.
	query = a.playerFilter.Query()
	for query.Next() {
		pos, vel, pl, ai := query.Get()
		a.move(pos, vel, pl, ai, dt)
	}
}

// collectRoster snapshots every player's position and team.
func (a *AI) collectRoster() {
	a.roster = a.roster[:0]
	query := a.playerFilter.Query()
	for query.Next() {
		pos, _, pl, _ := query.Get()
		a.roster = append(a.roster, playerInfo{
			entity: query.Entity(),
			pos:    *pos,
			team:   pl.Team,
			number: pl.Number,
			has:    pl.HasDisc,
		})
	}
}

// decide re-evaluates one player's role.
func (a *AI) decide(entity ecs.Entity, pl *components.Player, ai *components.AI, d *components.Disc, discPos components.Position, stall *components.Stall, st *match.State) {
	myPos := a.posMap.Get(entity)
	if myPos == nil {
		return
	}

	if pl.Team != st.Possession {
		a.defend(entity, pl, ai, st)
		return
	}

	switch {
	case pl.HasDisc:
		if ai.State != components.StateThrowing {
			ai.State = components.StateThrowing
			ai.ReactionTime = a.throwWindup(stall)
		}
		ai.HasTarget = false

	case d.InFlight && d.HasTarget && (!d.HasReceiver || d.Receiver == entity):
		ai.State = components.StateCatching
		ai.Target = d.Target
		ai.HasTarget = true

	case d.InFlight:
		ai.State = components.StateCutting
		ai.Target = a.findOpenSpace(entity, *myPos, pl.Team, st)
		ai.HasTarget = true

	case st.Phase == match.PhaseTurnover:
		if a.closestToDisc(pl.Team, discPos) == entity {
			ai.State = components.StateCatching
			ai.Target = components.Position{X: discPos.X, Z: discPos.Z}
			ai.HasTarget = true
		} else {
			ai.State = components.StateCutting
			ai.Target = a.findOpenSpace(entity, *myPos, pl.Team, st)
			ai.HasTarget = true
		}

	default:
		ai.State = components.StateCutting
		ai.Target = a.findOpenSpace(entity, *myPos, pl.Team, st)
		ai.HasTarget = true
	}
}

// throwWindup returns the release delay for a fresh throwing state. Urgency
// rises with the stall count; at the urgent count the throw goes off
// immediately.
func (a *AI) throwWindup(stall *components.Stall) float32 {
	base := float32(a.cfg.AI.ReactionTime)
	if stall == nil {
		return base
	}
	if stall.Count >= a.cfg.Stall.UrgentCount {
		return 0
	}
	frac := 1 - float32(stall.Count)/float32(a.cfg.Stall.MaxCount)
	return base * frac
}

// defend marks the offensive player with the matching number: the defender
// stands goal-side, between the attacker and the end zone they attack,
// offset toward the defended goal.
func (a *AI) defend(entity ecs.Entity, pl *components.Player, ai *components.AI, st *match.State) {
	attackerTeam := pl.Team.Opponent()
	attackDir := st.AttackDirection(attackerTeam)

	for _, info := range a.roster {
		if info.team != attackerTeam || info.number != pl.Number {
			continue
		}
		target := components.Position{
			X: info.pos.X,
			Z: info.pos.Z + float32(a.cfg.AI.DefendOffset)*attackDir,
		}
		ai.State = components.StateDefending
		ai.Target = field.Clamp(target)
		ai.HasTarget = true
		return
	}

	ai.State = components.StateIdle
	ai.HasTarget = false
}

// closestToDisc returns the team's player nearest the grounded disc.
func (a *AI) closestToDisc(team components.Team, discPos components.Position) ecs.Entity {
	var closest ecs.Entity
	best := float32(math.MaxFloat32)
	for _, info := range a.roster {
		if info.team != team {
			continue
		}
		distSq := field.DistanceSq(info.pos, components.Position{X: discPos.X, Y: info.pos.Y, Z: discPos.Z})
		if distSq < best {
			best = distSq
			closest = info.entity
		}
	}
	return closest
}

// findOpenSpace samples candidate points in a ring around the player with a
// forward bias and scores them: progress toward the attacking end zone is
// rewarded, proximity to opponents and teammate bunching penalized.
// Candidates that land near the end zone resample their lateral coordinate
// across the full field width so receivers spread out instead of clustering.
func (a *AI) findOpenSpace(entity ecs.Entity, myPos components.Position, team components.Team, st *match.State) components.Position {
	attackDir := st.AttackDirection(team)
	cfg := &a.cfg.AI

	best := myPos
	bestScore := float32(math.Inf(-1))

	for i := 0; i < cfg.CutCandidates; i++ {
		angle := a.rng.Float64() * 2 * math.Pi
		radius := lerp(float32(cfg.CutRadiusMin), float32(cfg.CutRadiusMax), a.rng.Float32())

		cand := components.Position{
			X: myPos.X + float32(math.Cos(angle))*radius,
			Z: myPos.Z + float32(math.Sin(angle))*radius + attackDir*float32(cfg.CutForwardBias),
		}
		if cand.Z*attackDir >= field.EndZoneLine-float32(cfg.CutRadiusMin)/2 {
			// Deep cut: spread across the end zone width.
			cand.X = (a.rng.Float32()*2 - 1) * field.HalfWidth
		}
		cand = field.Clamp(cand)

		score := cand.Z * attackDir * float32(cfg.EndZonePreferenceWeight)
		for _, info := range a.roster {
			if info.entity == entity {
				continue
			}
			dist := field.HorizontalDistance(cand, info.pos)
			if info.team != team {
				if dist < float32(cfg.MediumRange) {
					score -= (float32(cfg.MediumRange) - dist) * float32(cfg.OpponentProximityWeight)
				}
			} else if dist < float32(cfg.WideRange) {
				score -= (float32(cfg.WideRange) - dist) * float32(cfg.TeammateBunchingWeight)
			}
		}

		if score > bestScore {
			bestScore = score
			best = cand
		}
	}
	return best
}

// findBestReceiver scores teammates inside throw range: forward progress
// rewarded, distance and defender coverage penalized, with a bonus for a
// receiver already in the scoring end zone. Returns false when nobody is
// worth throwing to.
func (a *AI) findBestReceiver(thrower ecs.Entity, throwerPos components.Position, team components.Team, st *match.State) (ecs.Entity, components.Position, bool) {
	attackDir := st.AttackDirection(team)
	cfg := &a.cfg.AI

	var bestEntity ecs.Entity
	var bestPos components.Position
	bestScore := float32(math.Inf(-1))
	found := false

	for _, info := range a.roster {
		if info.team != team || info.entity == thrower || info.has {
			continue
		}
		dist := field.HorizontalDistance(throwerPos, info.pos)
		if dist > float32(cfg.ThrowRange) || dist < 0.01 {
			continue
		}

		score := (info.pos.Z - throwerPos.Z) * attackDir * float32(cfg.ForwardPassWeight)
		score -= dist * float32(cfg.PassDistancePenalty)

		// Nearest defender determines coverage.
		defenderDist := float32(math.MaxFloat32)
		for _, other := range a.roster {
			if other.team == team {
				continue
			}
			dd := field.HorizontalDistance(info.pos, other.pos)
			if dd < defenderDist {
				defenderDist = dd
			}
		}
		if defenderDist < float32(cfg.DefenderCoverageClose) {
			score -= float32(cfg.CoverageClosePenalty)
		} else if defenderDist < float32(cfg.DefenderCoverageMedium) {
			score -= float32(cfg.CoverageMediumPenalty)
		}

		if field.InEndZone(info.pos, attackDir) {
			score += float32(cfg.EndZoneBonus)
		}

		if score > bestScore {
			bestScore = score
			bestEntity = info.entity
			bestPos = info.pos
			found = true
		}
	}
	return bestEntity, bestPos, found
}

// resolveThrow counts down the holder's windup and releases the throw.
func (a *AI) resolveThrow(disc ecs.Entity, d *components.Disc, stall *components.Stall, st *match.State, dt float32) {
	if d.InFlight || st.Phase != match.PhasePlaying {
		return
	}
	holder, ok := a.flight.Holder()
	if !ok {
		return
	}
	ai := a.aiMap.Get(holder)
	holderPos := a.posMap.Get(holder)
	if ai == nil || holderPos == nil || ai.State != components.StateThrowing {
		return
	}

	ai.ReactionTime -= dt
	urgent := stall != nil && stall.Count >= a.cfg.Stall.UrgentCount
	if ai.ReactionTime > 0 && !urgent {
		return
	}

	team := st.Possession
	receiver, receiverPos, ok := a.findBestReceiver(holder, *holderPos, team, st)
	if !ok {
		return // nobody open; try again next tick
	}

	vel, ok := a.ThrowVelocity(*holderPos, receiverPos)
	if !ok {
		return
	}
	target := components.Position{X: receiverPos.X, Z: receiverPos.Z}
	if a.flight.Throw(disc, vel, target, receiver, true) {
		ai.State = components.StateCutting
		ai.Target = a.findOpenSpace(holder, *holderPos, team, st)
		ai.HasTarget = true
	}
}

// ThrowVelocity computes the launch velocity for a pass: throw speed scales
// linearly with distance, and the vertical component is solved analytically
// from projectile motion under an effective gravity discounted for lift, so
// the disc arrives near catch height at the computed flight time.
func (a *AI) ThrowVelocity(from, to components.Position) (components.Velocity, bool) {
	cfg := &a.cfg.AI
	dx := to.X - from.X
	dz := to.Z - from.Z
	dist := float32(math.Sqrt(float64(dx*dx + dz*dz)))
	if dist < 0.01 {
		return components.Velocity{}, false // degenerate throw, skip
	}

	speed := lerp(float32(cfg.ThrowSpeedMin), float32(cfg.ThrowSpeedMax),
		clamp01(dist/float32(cfg.ThrowRange)))
	flightTime := dist / speed

	gravity := float32(a.cfg.Flight.Gravity)
	effGravity := gravity * (1 - float32(cfg.LiftDiscount))
	y0 := float32(a.cfg.Flight.ReleaseHeight)
	y1 := float32(a.cfg.Flight.CatchHeight)
	vy := (y1 - y0 - 0.5*effGravity*flightTime*flightTime) / flightTime

	return components.Velocity{
		X: dx / dist * speed,
		Y: vy,
		Z: dz / dist * speed,
	}, true
}

// move steps a player toward its AI target, updating velocity for the
// animation layer. The holder pivots in place.
func (a *AI) move(pos *components.Position, vel *components.Velocity, pl *components.Player, ai *components.AI, dt float32) {
	if pl.HasDisc || !ai.HasTarget {
		*vel = components.Velocity{}
		return
	}

	speed := float32(a.cfg.AI.PlayerSpeed)
	if ai.State == components.StateCutting {
		speed = float32(a.cfg.AI.CuttingSpeed)
	}

	dx := ai.Target.X - pos.X
	dz := ai.Target.Z - pos.Z
	dist := float32(math.Sqrt(float64(dx*dx + dz*dz)))
	if dist <= float32(a.cfg.AI.ArriveRadius) {
		*vel = components.Velocity{}
		return
	}

	step := speed * dt
	if step > dist {
		step = dist
	}
	pos.X += dx / dist * step
	pos.Z += dz / dist * step
	clamped := field.Clamp(components.Position{X: pos.X, Z: pos.Z})
	pos.X = clamped.X
	pos.Z = clamped.Z

	vel.X = dx / dist * speed
	vel.Y = 0
	vel.Z = dz / dist * speed
}

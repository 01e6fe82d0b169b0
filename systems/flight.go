// Package systems contains the gameplay systems: disc flight, the stall
// engine, player AI, and the pull trajectory solver.
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

// ThrowRecorder receives throw notifications for telemetry.
type ThrowRecorder interface {
	RecordThrow(team components.Team, distance float64)
}

// StepFlight advances disc position and velocity by one integration step.
// The model is a simplified lift/drag approximation: gravity, aerodynamic
// lift proportional to horizontal speed above a threshold, and exponential
// drag normalized to a 60fps-equivalent decay regardless of step size.
// Shared by the in-game flight update and the pull solver's rollouts.
func StepFlight(pos *components.Position, vel *components.Velocity, dt float32, f *config.FlightConfig) {
	horizontal := float32(math.Sqrt(float64(vel.X*vel.X + vel.Z*vel.Z)))

	vel.Y += float32(f.Gravity) * dt
	if horizontal > float32(f.LiftMinSpeed) {
		vel.Y += horizontal * float32(f.LiftCoefficient) * dt
	}

	decay := float32(math.Pow(f.AirResistance, float64(dt)*60))
	vel.X *= decay
	vel.Z *= decay

	pos.X += vel.X * dt
	pos.Y += vel.Y * dt
	pos.Z += vel.Z * dt
}

// Flight integrates the disc while it is in the air, resolves catches and
// ground contact, and owns the disc-possession transfers (throw, give,
// drop). The disc follows its holder when not in flight.
type Flight struct {
	cfg *config.Config
	rng *rand.Rand

	world *ecs.World

	discMap   *ecs.Map1[components.Disc]
	stallMap  *ecs.Map1[components.Stall]
	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	playerMap *ecs.Map1[components.Player]

	playerFilter *ecs.Filter2[components.Position, components.Player]

	recorder ThrowRecorder
}

// NewFlight creates the flight system.
func NewFlight(w *ecs.World, cfg *config.Config, rng *rand.Rand) *Flight {
	return &Flight{
		cfg:          cfg,
		rng:          rng,
		world:        w,
		discMap:      ecs.NewMap1[components.Disc](w),
		stallMap:     ecs.NewMap1[components.Stall](w),
		posMap:       ecs.NewMap1[components.Position](w),
		velMap:       ecs.NewMap1[components.Velocity](w),
		playerMap:    ecs.NewMap1[components.Player](w),
		playerFilter: ecs.NewFilter2[components.Position, components.Player](w),
	}
}

// SetRecorder wires a telemetry recorder for throw events.
func (f *Flight) SetRecorder(r ThrowRecorder) { f.recorder = r }

// Holder returns the player entity currently holding the disc.
func (f *Flight) Holder() (ecs.Entity, bool) {
	var holder ecs.Entity
	found := false
	query := f.playerFilter.Query()
	for query.Next() {
		_, pl := query.Get()
		if pl.HasDisc && !found {
			holder = query.Entity()
			found = true
		}
	}
	return holder, found
}

// Update advances the disc for one tick. In flight it integrates physics
// and checks catches and ground contact; otherwise it snaps the disc to
// its holder.
func (f *Flight) Update(disc ecs.Entity, st *match.State, dt float32) {
	if !f.world.Alive(disc) {
		return
	}
	d := f.discMap.Get(disc)
	pos := f.posMap.Get(disc)
	vel := f.velMap.Get(disc)
	if d == nil || pos == nil || vel == nil {
		return
	}

	if !d.InFlight {
		f.followHolder(pos, vel)
		return
	}

	StepFlight(pos, vel, dt, &f.cfg.Flight)
	d.FlightTime += dt

	// The pull must hit the ground (or be picked up after landing); no
	// mid-air catches on the opening throw.
	if !d.Pull && f.tryCatch(disc, d, pos, st) {
		return
	}

	if pos.Y <= float32(f.cfg.Flight.GroundHeight) {
		f.ground(disc, d, pos, vel, st)
	}
}

// followHolder snaps the held disc to chest height at the holder's position.
func (f *Flight) followHolder(pos *components.Position, vel *components.Velocity) {
	holder, ok := f.Holder()
	if !ok {
		return
	}
	hp := f.posMap.Get(holder)
	if hp == nil {
		return
	}
	pos.X = hp.X
	pos.Y = hp.Y + float32(f.cfg.Flight.CatchHeight)
	pos.Z = hp.Z
	*vel = components.Velocity{}
}

// tryCatch scans players for an in-range catcher. The first in-range
// candidate in store order rolls for the catch; on a miss the disc flies on
// with no second roll that frame. Returns true if the disc was caught.
func (f *Flight) tryCatch(disc ecs.Entity, d *components.Disc, discPos *components.Position, st *match.State) bool {
	catchHeight := float32(f.cfg.Flight.CatchHeight)
	radiusSq := f.cfg.Derived.CatchRadiusSq

	var catcher ecs.Entity
	caught := false
	checked := false

	query := f.playerFilter.Query()
	for query.Next() {
		pp, _ := query.Get()
		entity := query.Entity()
		if checked {
			continue // consume the query; one candidate per frame
		}
		if d.HasThrower && entity == d.Thrower {
			continue
		}
		chest := components.Position{X: pp.X, Y: pp.Y + catchHeight, Z: pp.Z}
		if field.DistanceSq(*discPos, chest) > radiusSq {
			continue
		}
		checked = true
		if f.rng.Float64() < f.cfg.Flight.CatchSuccessRate {
			caught = true
			catcher = entity
		}
	}

	if !caught {
		return false
	}
	f.resolveCatch(disc, d, catcher, st)
	return true
}

// resolveCatch attaches the disc to the catcher and applies the rulebook:
// stall reset, possession bookkeeping, then the end-zone scoring check
// against possession as it stood before the catch, so an interception can
// never score directly.
func (f *Flight) resolveCatch(disc ecs.Entity, d *components.Disc, catcher ecs.Entity, st *match.State) {
	wasPossession := st.Possession

	d.ClearFlight()
	f.setHolder(catcher)

	catcherPos := f.posMap.Get(catcher)
	pos := f.posMap.Get(disc)
	vel := f.velMap.Get(disc)
	if catcherPos != nil && pos != nil {
		pos.X = catcherPos.X
		pos.Y = catcherPos.Y + float32(f.cfg.Flight.CatchHeight)
		pos.Z = catcherPos.Z
	}
	if vel != nil {
		*vel = components.Velocity{}
	}

	if stall := f.stallMap.Get(disc); stall != nil {
		stall.Reset()
	}

	pl := f.playerMap.Get(catcher)
	if pl == nil {
		return
	}
	st.CatchDisc(pl.Team)

	if pl.Team == wasPossession && catcherPos != nil &&
		field.InEndZone(*catcherPos, st.AttackDirection(pl.Team)) {
		st.RecordScore(pl.Team, f.cfg)
	}
}

// ground stops the disc where it landed. An uncaught landing in open play
// is a turnover; a landed pull keeps possession with the receiving team,
// who pick it up where it stopped.
func (f *Flight) ground(disc ecs.Entity, d *components.Disc, pos *components.Position, vel *components.Velocity, st *match.State) {
	wasPull := d.Pull
	pos.Y = float32(f.cfg.Flight.GroundHeight)
	*vel = components.Velocity{}
	d.ClearFlight()

	if stall := f.stallMap.Get(disc); stall != nil {
		stall.Reset()
	}

	if wasPull {
		st.PullLanded()
		return
	}
	st.Turnover(match.EventDrop)
}

// Throw releases the disc from the current holder with the given velocity.
// No-ops if nobody holds the disc or the throw has no direction.
func (f *Flight) Throw(disc ecs.Entity, vel components.Velocity, target components.Position, receiver ecs.Entity, hasReceiver bool) bool {
	if vel.X == 0 && vel.Y == 0 && vel.Z == 0 {
		return false
	}
	holder, ok := f.Holder()
	if !ok || !f.world.Alive(disc) {
		return false
	}

	d := f.discMap.Get(disc)
	pos := f.posMap.Get(disc)
	dv := f.velMap.Get(disc)
	hp := f.posMap.Get(holder)
	if d == nil || pos == nil || dv == nil || hp == nil {
		return false
	}

	if pl := f.playerMap.Get(holder); pl != nil {
		pl.HasDisc = false
	}

	pos.X = hp.X
	pos.Y = hp.Y + float32(f.cfg.Flight.ReleaseHeight)
	pos.Z = hp.Z
	*dv = vel

	d.InFlight = true
	d.FlightTime = 0
	d.Thrower = holder
	d.HasThrower = true
	d.Target = target
	d.HasTarget = true
	d.Receiver = receiver
	d.HasReceiver = hasReceiver

	if stall := f.stallMap.Get(disc); stall != nil {
		stall.Reset()
	}

	if f.recorder != nil {
		if pl := f.playerMap.Get(holder); pl != nil {
			f.recorder.RecordThrow(pl.Team, float64(field.HorizontalDistance(*hp, target)))
		}
	}
	return true
}

// Give performs an administrative disc assignment (kickoff, turnover
// pickup): clears every holder, hands the disc to the named player, and
// wipes flight state.
func (f *Flight) Give(disc ecs.Entity, player ecs.Entity) {
	if !f.world.Alive(disc) || !f.world.Alive(player) {
		return
	}
	d := f.discMap.Get(disc)
	if d == nil {
		return
	}
	d.ClearFlight()
	f.setHolder(player)

	if pp := f.posMap.Get(player); pp != nil {
		if pos := f.posMap.Get(disc); pos != nil {
			pos.X = pp.X
			pos.Y = pp.Y + float32(f.cfg.Flight.CatchHeight)
			pos.Z = pp.Z
		}
	}
	if vel := f.velMap.Get(disc); vel != nil {
		*vel = components.Velocity{}
	}
	if stall := f.stallMap.Get(disc); stall != nil {
		stall.Reset()
	}
}

// Drop grounds the disc at the holder's feet (stall-out). The caller is
// responsible for the turnover transition.
func (f *Flight) Drop(disc ecs.Entity) {
	holder, ok := f.Holder()
	if !ok || !f.world.Alive(disc) {
		return
	}
	if pl := f.playerMap.Get(holder); pl != nil {
		pl.HasDisc = false
	}
	d := f.discMap.Get(disc)
	if d != nil {
		d.ClearFlight()
	}
	if hp := f.posMap.Get(holder); hp != nil {
		if pos := f.posMap.Get(disc); pos != nil {
			pos.X = hp.X
			pos.Y = float32(f.cfg.Flight.GroundHeight)
			pos.Z = hp.Z
		}
	}
	if vel := f.velMap.Get(disc); vel != nil {
		*vel = components.Velocity{}
	}
}

// TryPickup hands a grounded disc to the closest on-possession player
// within pickup range during the turnover phase. Returns true on pickup.
func (f *Flight) TryPickup(disc ecs.Entity, st *match.State) bool {
	if st.Phase != match.PhaseTurnover || !f.world.Alive(disc) {
		return false
	}
	d := f.discMap.Get(disc)
	discPos := f.posMap.Get(disc)
	if d == nil || d.InFlight || discPos == nil {
		return false
	}

	var closest ecs.Entity
	best := f.cfg.Derived.PickupRadiusSq
	found := false

	query := f.playerFilter.Query()
	for query.Next() {
		pp, pl := query.Get()
		if pl.Team != st.Possession {
			continue
		}
		distSq := field.DistanceSq(*discPos, components.Position{X: pp.X, Y: discPos.Y, Z: pp.Z})
		if distSq <= best {
			best = distSq
			closest = query.Entity()
			found = true
		}
	}

	if !found {
		return false
	}
	f.Give(disc, closest)
	st.DiscPickedUp()
	return true
}

// setHolder clears HasDisc on every player, then sets it on the target.
func (f *Flight) setHolder(target ecs.Entity) {
	query := f.playerFilter.Query()
	for query.Next() {
		_, pl := query.Get()
		pl.HasDisc = query.Entity() == target
	}
}

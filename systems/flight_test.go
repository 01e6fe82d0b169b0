package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/flatball-sim/flatball/components"
	"github.com/flatball-sim/flatball/match"
)

const testDT = float32(1.0 / 60.0)

func TestStepFlightGravity(t *testing.T) {
	r := newRig(t)
	pos := components.Position{Y: 2}
	vel := components.Velocity{} // no horizontal speed, no lift

	StepFlight(&pos, &vel, testDT, &r.cfg.Flight)

	want := float32(r.cfg.Flight.Gravity) * testDT
	if math.Abs(float64(vel.Y-want)) > 1e-5 {
		t.Errorf("vy after one step = %v, want %v", vel.Y, want)
	}
	if pos.Y >= 2 {
		t.Error("disc should fall")
	}
}

func TestStepFlightLiftAboveThreshold(t *testing.T) {
	r := newRig(t)

	slow := components.Velocity{Z: float32(r.cfg.Flight.LiftMinSpeed) - 1}
	slowPos := components.Position{Y: 2}
	StepFlight(&slowPos, &slow, testDT, &r.cfg.Flight)

	fast := components.Velocity{Z: float32(r.cfg.Flight.LiftMinSpeed) + 10}
	fastPos := components.Position{Y: 2}
	StepFlight(&fastPos, &fast, testDT, &r.cfg.Flight)

	if fast.Y <= slow.Y {
		t.Errorf("lift should slow the fall: fast vy %v, slow vy %v", fast.Y, slow.Y)
	}
}

func TestStepFlightDrag(t *testing.T) {
	r := newRig(t)
	pos := components.Position{Y: 2}
	vel := components.Velocity{X: 10, Z: 20}

	StepFlight(&pos, &vel, testDT, &r.cfg.Flight)

	decay := float32(math.Pow(r.cfg.Flight.AirResistance, float64(testDT)*60))
	if math.Abs(float64(vel.X-10*decay)) > 1e-4 {
		t.Errorf("vx = %v, want %v", vel.X, 10*decay)
	}
	if math.Abs(float64(vel.Z-20*decay)) > 1e-4 {
		t.Errorf("vz = %v, want %v", vel.Z, 20*decay)
	}
}

func TestStepFlightDragStepSizeInvariant(t *testing.T) {
	r := newRig(t)

	// One big step and two half steps should decay horizontal speed the same.
	vOne := components.Velocity{Z: 20}
	pOne := components.Position{Y: 10}
	StepFlight(&pOne, &vOne, testDT, &r.cfg.Flight)

	vTwo := components.Velocity{Z: 20}
	pTwo := components.Position{Y: 10}
	StepFlight(&pTwo, &vTwo, testDT/2, &r.cfg.Flight)
	StepFlight(&pTwo, &vTwo, testDT/2, &r.cfg.Flight)

	if math.Abs(float64(vOne.Z-vTwo.Z)) > 0.01 {
		t.Errorf("drag decay depends on step size: %v vs %v", vOne.Z, vTwo.Z)
	}
}

func TestHolder(t *testing.T) {
	r := newRig(t)

	if _, ok := r.flight.Holder(); ok {
		t.Error("empty world must have no holder")
	}

	r.addPlayer(components.TeamHome, 1, 0, 0, false)
	holder := r.addPlayer(components.TeamHome, 2, 1, 0, true)

	got, ok := r.flight.Holder()
	if !ok || got != holder {
		t.Errorf("Holder() = %v, %v, want %v, true", got, ok, holder)
	}
}

func TestHeldDiscFollowsHolder(t *testing.T) {
	r := newRig(t)
	st := r.playingState()
	r.addPlayer(components.TeamHome, 1, 5, -10, true)
	disc := r.addDisc(0, 0, 0)

	r.flight.Update(disc, st, testDT)

	pos := r.posMap.Get(disc)
	if pos.X != 5 || pos.Z != -10 {
		t.Errorf("disc at (%v, %v), want holder position (5, -10)", pos.X, pos.Z)
	}
	wantY := float32(r.cfg.Flight.CatchHeight)
	if math.Abs(float64(pos.Y-wantY)) > 1e-5 {
		t.Errorf("disc height = %v, want chest height %v", pos.Y, wantY)
	}
}

func TestThrowReleasesDisc(t *testing.T) {
	r := newRig(t)
	thrower := r.addPlayer(components.TeamHome, 1, 0, 0, true)
	receiver := r.addPlayer(components.TeamHome, 2, 0, 15, false)
	disc := r.addDisc(0, 1, 0)

	stall := r.stallMap.Get(disc)
	stall.Count = 5

	target := components.Position{Z: 15}
	ok := r.flight.Throw(disc, components.Velocity{Y: 3, Z: 18}, target, receiver, true)
	if !ok {
		t.Fatal("throw refused")
	}

	d := r.discMap.Get(disc)
	if !d.InFlight {
		t.Error("disc must be in flight after the throw")
	}
	if !d.HasThrower || d.Thrower != thrower {
		t.Error("thrower not recorded")
	}
	if !d.HasReceiver || d.Receiver != receiver {
		t.Error("receiver not recorded")
	}
	if r.playerMap.Get(thrower).HasDisc {
		t.Error("thrower must release the disc")
	}
	if stall.Count != 0 {
		t.Errorf("stall count = %d, want reset on throw", stall.Count)
	}
	pos := r.posMap.Get(disc)
	wantY := float32(r.cfg.Flight.ReleaseHeight)
	if math.Abs(float64(pos.Y-wantY)) > 1e-5 {
		t.Errorf("release height = %v, want %v", pos.Y, wantY)
	}
}

func TestThrowZeroVelocityRefused(t *testing.T) {
	r := newRig(t)
	r.addPlayer(components.TeamHome, 1, 0, 0, true)
	disc := r.addDisc(0, 1, 0)

	if r.flight.Throw(disc, components.Velocity{}, components.Position{}, ecs.Entity{}, false) {
		t.Error("zero-velocity throw must be refused")
	}
	if r.discMap.Get(disc).InFlight {
		t.Error("disc must stay held")
	}
}

func TestGuaranteedCatchTransfersDisc(t *testing.T) {
	r := newRig(t)
	r.cfg.Flight.CatchSuccessRate = 1.0
	st := r.playingState()

	thrower := r.addPlayer(components.TeamHome, 1, 0, 0, false)
	receiver := r.addPlayer(components.TeamHome, 2, 0, 15, false)
	disc := r.addDisc(0, float32(r.cfg.Flight.CatchHeight), 14.8)

	d := r.discMap.Get(disc)
	d.InFlight = true
	d.Thrower = thrower
	d.HasThrower = true
	vel := r.velMap.Get(disc)
	vel.Z = 12

	r.flight.Update(disc, st, testDT)

	if d.InFlight {
		t.Fatal("disc should have been caught")
	}
	if !r.playerMap.Get(receiver).HasDisc {
		t.Error("receiver must hold the disc")
	}
	if st.Possession != components.TeamHome {
		t.Errorf("possession = %v, want home retained", st.Possession)
	}
	if st.Phase != match.PhasePlaying {
		t.Errorf("phase = %v, want playing", st.Phase)
	}
}

func TestThrowerCannotCatchOwnThrow(t *testing.T) {
	r := newRig(t)
	r.cfg.Flight.CatchSuccessRate = 1.0
	st := r.playingState()

	// The only player in range is the thrower.
	thrower := r.addPlayer(components.TeamHome, 1, 0, 0, false)
	disc := r.addDisc(0, float32(r.cfg.Flight.CatchHeight), 0.5)

	d := r.discMap.Get(disc)
	d.InFlight = true
	d.Thrower = thrower
	d.HasThrower = true
	r.velMap.Get(disc).Z = 5

	r.flight.Update(disc, st, testDT)

	if !d.InFlight {
		t.Error("thrower must not catch their own throw")
	}
}

func TestEndZoneCatchScores(t *testing.T) {
	r := newRig(t)
	r.cfg.Flight.CatchSuccessRate = 1.0
	st := r.playingState()
	dir := st.AttackDirection(components.TeamHome)

	thrower := r.addPlayer(components.TeamHome, 1, 0, dir*20, false)
	r.addPlayer(components.TeamHome, 2, 0, dir*40, false)
	disc := r.addDisc(0, float32(r.cfg.Flight.CatchHeight), dir*39.8)

	d := r.discMap.Get(disc)
	d.InFlight = true
	d.Thrower = thrower
	d.HasThrower = true
	r.velMap.Get(disc).Z = dir * 12

	r.flight.Update(disc, st, testDT)

	if st.Score(components.TeamHome) != 1 {
		t.Errorf("home score = %d, want 1", st.Score(components.TeamHome))
	}
	if st.Phase != match.PhaseScore {
		t.Errorf("phase = %v, want score", st.Phase)
	}
}

func TestInterceptionNeverScoresDirectly(t *testing.T) {
	r := newRig(t)
	r.cfg.Flight.CatchSuccessRate = 1.0
	st := r.playingState() // home on offense
	awayDir := st.AttackDirection(components.TeamAway)

	thrower := r.addPlayer(components.TeamHome, 1, 0, 0, false)
	// Defender waiting in the end zone they attack.
	defender := r.addPlayer(components.TeamAway, 1, 0, awayDir*40, false)
	disc := r.addDisc(0, float32(r.cfg.Flight.CatchHeight), awayDir*39.8)

	d := r.discMap.Get(disc)
	d.InFlight = true
	d.Thrower = thrower
	d.HasThrower = true
	r.velMap.Get(disc).Z = awayDir * 12

	r.flight.Update(disc, st, testDT)

	if st.Possession != components.TeamAway {
		t.Errorf("possession = %v, want away after interception", st.Possession)
	}
	if !r.playerMap.Get(defender).HasDisc {
		t.Error("interceptor must hold the disc")
	}
	if st.Score(components.TeamAway) != 0 {
		t.Error("an interception must not score directly")
	}
	if st.Phase != match.PhasePlaying {
		t.Errorf("phase = %v, play continues after an interception", st.Phase)
	}
}

func TestGroundedThrowIsTurnover(t *testing.T) {
	r := newRig(t)
	st := r.playingState()
	r.addPlayer(components.TeamHome, 1, 0, -20, false)
	disc := r.addDisc(0, float32(r.cfg.Flight.GroundHeight)+0.01, 10)

	d := r.discMap.Get(disc)
	d.InFlight = true
	vel := r.velMap.Get(disc)
	vel.Y = -5

	r.flight.Update(disc, st, testDT)

	if d.InFlight {
		t.Fatal("disc should have landed")
	}
	if st.Phase != match.PhaseTurnover {
		t.Errorf("phase = %v, want turnover", st.Phase)
	}
	if st.Possession != components.TeamAway {
		t.Errorf("possession = %v, want away", st.Possession)
	}
	pos := r.posMap.Get(disc)
	if pos.Y != float32(r.cfg.Flight.GroundHeight) {
		t.Errorf("grounded disc height = %v, want %v", pos.Y, r.cfg.Flight.GroundHeight)
	}
}

func TestPullLandsWithoutCatchOrTurnover(t *testing.T) {
	r := newRig(t)
	r.cfg.Flight.CatchSuccessRate = 1.0
	st := r.playingState() // pull released, home receiving

	// Receiver standing right at the landing point: still no mid-air catch.
	r.addPlayer(components.TeamHome, 1, 0, 40, false)
	disc := r.addDisc(0, float32(r.cfg.Flight.CatchHeight), 39.9)

	d := r.discMap.Get(disc)
	d.InFlight = true
	d.Pull = true
	vel := r.velMap.Get(disc)
	vel.Y = -3
	vel.Z = 8

	for i := 0; i < 120 && d.InFlight; i++ {
		r.flight.Update(disc, st, testDT)
	}

	if d.InFlight {
		t.Fatal("pull never landed")
	}
	if r.playerMap.Get(r.mustPlayer(t)).HasDisc {
		t.Error("the pull must not be caught in the air")
	}
	if st.Possession != components.TeamHome {
		t.Errorf("possession = %v, a landed pull must not flip it", st.Possession)
	}
	if st.Phase != match.PhaseTurnover {
		t.Errorf("phase = %v, want turnover (pickup flow)", st.Phase)
	}
	if d.Pull {
		t.Error("pull flag must clear on landing")
	}
}

// mustPlayer returns the single player entity in the world.
func (r *rig) mustPlayer(t *testing.T) (e ecs.Entity) {
	t.Helper()
	query := r.flight.playerFilter.Query()
	count := 0
	for query.Next() {
		if count == 0 {
			e = query.Entity()
		}
		count++
	}
	if count != 1 {
		t.Fatalf("expected exactly one player, found %d", count)
	}
	return e
}

func TestTryPickupByPossessionTeam(t *testing.T) {
	r := newRig(t)
	st := r.playingState()
	st.Phase = match.PhaseTurnover
	st.Possession = components.TeamAway

	wrongTeam := r.addPlayer(components.TeamHome, 1, 0.5, 0, false)
	rightTeam := r.addPlayer(components.TeamAway, 1, 1, 0, false)
	disc := r.addDisc(0, float32(r.cfg.Flight.GroundHeight), 0)

	if !r.flight.TryPickup(disc, st) {
		t.Fatal("pickup should succeed")
	}
	if !r.playerMap.Get(rightTeam).HasDisc {
		t.Error("possession team player must pick up the disc")
	}
	if r.playerMap.Get(wrongTeam).HasDisc {
		t.Error("off-possession player must not pick up the disc")
	}
	if st.Phase != match.PhasePlaying {
		t.Errorf("phase after pickup = %v, want playing", st.Phase)
	}
}

func TestTryPickupOutOfRange(t *testing.T) {
	r := newRig(t)
	st := r.playingState()
	st.Phase = match.PhaseTurnover
	st.Possession = components.TeamAway

	r.addPlayer(components.TeamAway, 1, 0, 10, false)
	disc := r.addDisc(0, float32(r.cfg.Flight.GroundHeight), 0)

	if r.flight.TryPickup(disc, st) {
		t.Error("pickup must fail outside the pickup radius")
	}
	if st.Phase != match.PhaseTurnover {
		t.Errorf("phase = %v, want still turnover", st.Phase)
	}
}

func TestGiveMovesDiscBetweenPlayers(t *testing.T) {
	r := newRig(t)
	first := r.addPlayer(components.TeamHome, 1, 0, 0, true)
	second := r.addPlayer(components.TeamAway, 1, 10, 10, false)
	disc := r.addDisc(0, 1, 0)

	r.flight.Give(disc, second)

	if r.playerMap.Get(first).HasDisc {
		t.Error("previous holder must lose the disc")
	}
	if !r.playerMap.Get(second).HasDisc {
		t.Error("new holder must have the disc")
	}
	pos := r.posMap.Get(disc)
	if pos.X != 10 || pos.Z != 10 {
		t.Errorf("disc at (%v, %v), want new holder position (10, 10)", pos.X, pos.Z)
	}
}

func TestDropGroundsAtHolderFeet(t *testing.T) {
	r := newRig(t)
	holder := r.addPlayer(components.TeamHome, 1, 3, 7, true)
	disc := r.addDisc(3, 1, 7)

	r.flight.Drop(disc)

	if r.playerMap.Get(holder).HasDisc {
		t.Error("holder must lose the disc on a drop")
	}
	pos := r.posMap.Get(disc)
	if pos.X != 3 || pos.Z != 7 {
		t.Errorf("disc at (%v, %v), want holder position (3, 7)", pos.X, pos.Z)
	}
	if pos.Y != float32(r.cfg.Flight.GroundHeight) {
		t.Errorf("disc height = %v, want ground", pos.Y)
	}
}

package components

import "github.com/mlange-42/ark/ecs"

// Disc holds flight state for the disc entity.
// Exactly one of three conditions holds at a time: a player holds the disc,
// the disc is in flight, or the disc is grounded awaiting pickup.
type Disc struct {
	InFlight   bool
	FlightTime float32

	// Pull marks the current flight as the opening throw. Catch detection
	// is skipped and the landing is not a turnover: the receiving team
	// keeps possession and picks the disc up where it stops.
	Pull bool

	// Intended landing point of the current throw, for receiver AI and
	// landing-indicator visualization.
	Target    Position
	HasTarget bool

	// Thrower is excluded from catch detection while the disc is in flight.
	Thrower    ecs.Entity
	HasThrower bool

	// Receiver is the player designated to chase this throw. Set by the
	// pull solver (closest receiving player to the landing point) and by
	// regular throws (the chosen receiver); other teammates keep cutting.
	Receiver    ecs.Entity
	HasReceiver bool
}

// ClearFlight resets all flight and targeting state.
func (d *Disc) ClearFlight() {
	d.InFlight = false
	d.Pull = false
	d.FlightTime = 0
	d.HasTarget = false
	d.Target = Position{}
	d.HasThrower = false
	d.Thrower = ecs.Entity{}
	d.HasReceiver = false
	d.Receiver = ecs.Entity{}
}

// Stall tracks the marker and count-up toward a stall-out turnover.
// Lives on the disc entity. Active is true exactly when a marker is set.
type Stall struct {
	Count          int
	TimeSinceCount float32
	Marker         ecs.Entity
	HasMarker      bool
	Active         bool
}

// Reset zeroes the stall state. Called on throw, catch, or possession change.
func (s *Stall) Reset() {
	s.Count = 0
	s.TimeSinceCount = 0
	s.Marker = ecs.Entity{}
	s.HasMarker = false
	s.Active = false
}

// SetMarker records the marking defender and activates the count.
func (s *Stall) SetMarker(marker ecs.Entity) {
	s.Marker = marker
	s.HasMarker = true
	s.Active = true
}

// ClearMarker pauses the count without resetting it. The count resumes
// from its current value when a marker steps back into range.
func (s *Stall) ClearMarker() {
	s.Marker = ecs.Entity{}
	s.HasMarker = false
	s.Active = false
}

package components

// AIState is the current behavior of a player's state machine.
type AIState uint8

const (
	StateIdle AIState = iota
	StateCutting
	StateDefending
	StateThrowing
	StateCatching
	StatePulling
)

// String returns the state name for logs and the inspector snapshot.
func (s AIState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCutting:
		return "cutting"
	case StateDefending:
		return "defending"
	case StateThrowing:
		return "throwing"
	case StateCatching:
		return "catching"
	case StatePulling:
		return "pulling"
	}
	return "unknown"
}

// AI holds per-player decision state.
type AI struct {
	State     AIState
	Target    Position
	HasTarget bool

	// Decision counts down to the next re-evaluation; reset to the
	// configured interval plus jitter each time it expires.
	Decision float32

	// ReactionTime delays the release once a player enters the throwing
	// state. Shrinks as the stall count rises.
	ReactionTime float32
}

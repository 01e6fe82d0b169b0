package match

import "github.com/flatball-sim/flatball/components"

// EventKind identifies a notable moment in play. Renderers key camera
// shake and announcer lines off these; telemetry counts them.
type EventKind uint8

const (
	EventPull EventKind = iota
	EventCatch
	EventDrop
	EventInterception
	EventStallOut
	EventPickup
	EventScore
	EventHalftime
	EventGameOver
)

// String returns the event name for logs and CSV output.
func (k EventKind) String() string {
	switch k {
	case EventPull:
		return "pull"
	case EventCatch:
		return "catch"
	case EventDrop:
		return "drop"
	case EventInterception:
		return "interception"
	case EventStallOut:
		return "stall_out"
	case EventPickup:
		return "pickup"
	case EventScore:
		return "score"
	case EventHalftime:
		return "halftime"
	case EventGameOver:
		return "game_over"
	}
	return "unknown"
}

// Event carries the kind and the team it credits.
type Event struct {
	Kind EventKind
	Team components.Team
}

// Listener receives match events as they happen.
type Listener interface {
	HandleMatchEvent(Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Event)

// HandleMatchEvent calls f(e).
func (f ListenerFunc) HandleMatchEvent(e Event) { f(e) }

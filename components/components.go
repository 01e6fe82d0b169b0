// Package components defines ECS components for the simulation.
package components

// Team identifies one of the two sides.
type Team uint8

const (
	TeamHome Team = iota
	TeamAway
)

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamHome {
		return TeamAway
	}
	return TeamHome
}

// String returns the team name for logs and CSV output.
func (t Team) String() string {
	if t == TeamHome {
		return "home"
	}
	return "away"
}

// Role determines a player's offensive positioning bias.
type Role uint8

const (
	RoleHandler Role = iota
	RoleCutter
)

// Position represents an entity's world position in meters.
// Y is up; Z runs along the length of the pitch.
type Position struct {
	X, Y, Z float32
}

// Velocity represents an entity's velocity in meters per second.
type Velocity struct {
	X, Y, Z float32
}

// Player holds per-player game state.
// At most one player entity has HasDisc set at any instant.
type Player struct {
	Team    Team
	Number  int
	Role    Role
	HasDisc bool
}

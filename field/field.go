// Package field provides pure pitch geometry for the simulation.
//
// The pitch is axis-aligned: X runs across the width, Z along the length,
// Y is up. The central field spans z in [-EndZoneLine, EndZoneLine]; the
// end zones extend from the end-zone lines to the back lines at +-HalfLength.
package field

import (
	"math"

	"github.com/flatball-sim/flatball/components"
)

// Pitch dimensions in meters.
const (
	HalfLength  = 50.0 // back line, z = +-50
	HalfWidth   = 18.5 // sideline, x = +-18.5
	EndZoneLine = 32.0 // front of each end zone, z = +-32
)

// Clamp limits a position to the playing field, including end zones.
func Clamp(p components.Position) components.Position {
	p.X = clamp(p.X, -HalfWidth, HalfWidth)
	p.Z = clamp(p.Z, -HalfLength, HalfLength)
	return p
}

// InBounds reports whether the position is on the pitch.
func InBounds(p components.Position) bool {
	return p.X >= -HalfWidth && p.X <= HalfWidth &&
		p.Z >= -HalfLength && p.Z <= HalfLength
}

// InEndZone reports whether the position is inside the end zone in the
// given attack direction (+1 or -1 along Z).
func InEndZone(p components.Position, attackDir float32) bool {
	if !InBounds(p) {
		return false
	}
	return p.Z*attackDir >= EndZoneLine
}

// EndZoneCenter returns the midpoint of the end zone in the given
// attack direction.
func EndZoneCenter(attackDir float32) components.Position {
	return components.Position{Z: attackDir * (EndZoneLine + HalfLength) / 2}
}

// Distance returns the Euclidean distance between two positions.
func Distance(a, b components.Position) float32 {
	return float32(math.Sqrt(float64(DistanceSq(a, b))))
}

// DistanceSq returns the squared distance between two positions.
func DistanceSq(a, b components.Position) float32 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return dx*dx + dy*dy + dz*dz
}

// HorizontalDistance returns the ground-plane distance between two positions.
func HorizontalDistance(a, b components.Position) float32 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return float32(math.Sqrt(float64(dx*dx + dz*dz)))
}

// Lerp interpolates linearly between a and b by t in [0, 1].
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

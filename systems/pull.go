package systems

import (
	"math/rand"

	"github.com/flatball-sim/flatball/components"
	"github.com/flatball-sim/flatball/config"
	"github.com/flatball-sim/flatball/field"
)

// Pull solver search bounds and budgets. The solver always terminates in a
// fixed number of forward rollouts; an unreachable target yields the
// closest best-effort velocity rather than an error.
const (
	pullVZMin = 10.0
	pullVZMax = 100.0
	pullVXMin = -30.0
	pullVXMax = 30.0

	pullVZIterations     = 20
	pullVXIterations     = 20
	pullRefineIterations = 10
	pullRefineWindow     = 10.0

	pullSimStep    = 1.0 / 60.0
	pullSimMaxTime = 10.0
)

// PullSolver computes launch velocities that land the pull at a chosen
// point. Lift and drag couple the axes, so there is no closed form: the
// solver nests bisections over full forward simulations of the same flight
// model the disc uses in play, then re-refines the downfield component
// because crossfield speed changes lift and with it the carry.
type PullSolver struct {
	cfg *config.Config
	rng *rand.Rand
}

// NewPullSolver creates the solver.
func NewPullSolver(cfg *config.Config, rng *rand.Rand) *PullSolver {
	return &PullSolver{cfg: cfg, rng: rng}
}

// PickTarget chooses a random landing point inside the end zone in the
// given attack direction, padded away from the lines.
func (s *PullSolver) PickTarget(attackDir float32) components.Position {
	pad := float32(s.cfg.Pull.TargetPadding)
	x := -field.HalfWidth + pad + s.rng.Float32()*2*(field.HalfWidth-pad)
	depth := field.EndZoneLine + pad + s.rng.Float32()*(field.HalfLength-field.EndZoneLine-2*pad)
	return components.Position{X: x, Z: attackDir * depth}
}

// PickVerticalSpeed chooses a launch vy giving the pull a high arc.
func (s *PullSolver) PickVerticalSpeed() float32 {
	return lerp(float32(s.cfg.Pull.VerticalSpeedMin), float32(s.cfg.Pull.VerticalSpeedMax), s.rng.Float32())
}

// Solve finds (vx, vz) such that a disc released at release with vertical
// speed vy lands at the target X and Z.
func (s *PullSolver) Solve(release, target components.Position, vy float32) (float32, float32) {
	dir := float32(1)
	if target.Z < release.Z {
		dir = -1
	}

	// Downfield component first, no crossfield motion.
	vzMag := s.solveVZ(release, target, vy, 0, dir, pullVZMin, pullVZMax, pullVZIterations)

	// Crossfield component with the downfield estimate held fixed.
	vx := s.solveVX(release, target, vy, dir*vzMag)

	// Crossfield speed added lift; re-refine the downfield component in a
	// window around the first estimate.
	lo := clampFloat(vzMag-pullRefineWindow, pullVZMin, pullVZMax)
	hi := clampFloat(vzMag+pullRefineWindow, pullVZMin, pullVZMax)
	vzMag = s.solveVZ(release, target, vy, vx, dir, lo, hi, pullRefineIterations)

	return vx, dir * vzMag
}

// solveVZ bisects the downfield speed magnitude: a faster release carries
// farther, so landing distance is monotone in vz.
func (s *PullSolver) solveVZ(release, target components.Position, vy, vx, dir float32, lo, hi float32, iterations int) float32 {
	targetDist := (target.Z - release.Z) * dir

	mid := (lo + hi) / 2
	for i := 0; i < iterations; i++ {
		mid = (lo + hi) / 2
		land := s.simulate(release, components.Velocity{X: vx, Y: vy, Z: dir * mid})
		landDist := (land.Z - release.Z) * dir
		if landDist > targetDist {
			hi = mid
		} else {
			lo = mid
		}
	}
	return mid
}

// solveVX bisects the crossfield speed: landing X is monotone in vx.
func (s *PullSolver) solveVX(release, target components.Position, vy, vz float32) float32 {
	lo := float32(pullVXMin)
	hi := float32(pullVXMax)

	mid := (lo + hi) / 2
	for i := 0; i < pullVXIterations; i++ {
		mid = (lo + hi) / 2
		land := s.simulate(release, components.Velocity{X: mid, Y: vy, Z: vz})
		if land.X > target.X {
			hi = mid
		} else {
			lo = mid
		}
	}
	return mid
}

// simulate runs the flight model forward at a fixed step until the disc
// reaches the ground or the time budget runs out, and returns the landing
// position.
func (s *PullSolver) simulate(release components.Position, vel components.Velocity) components.Position {
	pos := release
	ground := float32(s.cfg.Flight.GroundHeight)
	steps := int(pullSimMaxTime / pullSimStep)

	for i := 0; i < steps; i++ {
		StepFlight(&pos, &vel, float32(pullSimStep), &s.cfg.Flight)
		if pos.Y <= ground {
			break
		}
	}
	return pos
}

// Package game wires the entity store, systems, and match state into a
// frame-stepped simulation driver.
package game

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/flatball-sim/flatball/components"
	"github.com/flatball-sim/flatball/config"
	"github.com/flatball-sim/flatball/match"
	"github.com/flatball-sim/flatball/systems"
	"github.com/flatball-sim/flatball/telemetry"
)

// Options configures a new game.
type Options struct {
	Seed      int64
	OutputDir string

	// Config overrides the global configuration; nil uses config.Cfg().
	Config *config.Config
}

// Game holds the complete simulation state for one match. All mutation
// happens synchronously inside Step; a multi-threaded host must serialize
// calls to it.
type Game struct {
	world *ecs.World
	rng   *rand.Rand
	cfg   *config.Config

	playerMapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Player,
		components.AI,
	]
	playerFilter *ecs.Filter4[
		components.Position,
		components.Velocity,
		components.Player,
		components.AI,
	]
	discMapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Disc,
		components.Stall,
	]

	// Individual component mappers for lookups
	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	playerMap *ecs.Map1[components.Player]
	aiMap     *ecs.Map1[components.AI]
	discMap   *ecs.Map1[components.Disc]
	stallMap  *ecs.Map1[components.Stall]

	state *match.State

	flight *systems.Flight
	stall  *systems.StallEngine
	ai     *systems.AI
	pull   *systems.PullSolver

	collector *telemetry.Collector
	output    *telemetry.OutputManager

	disc    ecs.Entity
	hasDisc bool

	tick int64
}

// NewGame creates a game instance with entities ready for the opening pull.
func NewGame(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	world := ecs.NewWorld()

	g := &Game{
		world: world,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		cfg:   cfg,
		playerMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Player,
			components.AI,
		](world),
		playerFilter: ecs.NewFilter4[
			components.Position,
			components.Velocity,
			components.Player,
			components.AI,
		](world),
		discMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Disc,
			components.Stall,
		](world),
		posMap:    ecs.NewMap1[components.Position](world),
		velMap:    ecs.NewMap1[components.Velocity](world),
		playerMap: ecs.NewMap1[components.Player](world),
		aiMap:     ecs.NewMap1[components.AI](world),
		discMap:   ecs.NewMap1[components.Disc](world),
		stallMap:  ecs.NewMap1[components.Stall](world),
	}

	g.state = match.NewState(cfg)
	g.flight = systems.NewFlight(world, cfg, g.rng)
	g.stall = systems.NewStallEngine(world, cfg, g.flight)
	g.ai = systems.NewAI(world, cfg, g.rng, g.flight)
	g.pull = systems.NewPullSolver(cfg, g.rng)

	g.collector = telemetry.NewCollector()
	g.state.AddListener(g.collector)
	g.flight.SetRecorder(g.collector)

	if opts.OutputDir != "" && cfg.Telemetry.Enabled {
		output, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, err
		}
		g.output = output
		if err := output.WriteConfig(cfg); err != nil {
			return nil, err
		}
	}

	g.initializeEntities()

	return g, nil
}

// State exposes the match state for hosts and tests.
func (g *Game) State() *match.State { return g.state }

// Collector exposes the telemetry collector.
func (g *Game) Collector() *telemetry.Collector { return g.collector }

// Tick returns the number of simulation steps taken.
func (g *Game) Tick() int64 { return g.tick }

// Disc returns the disc entity.
func (g *Game) Disc() ecs.Entity { return g.disc }

// SetPaused pauses or resumes the simulation.
func (g *Game) SetPaused(paused bool) { g.state.Paused = paused }

// SetSpeed sets the simulation speed multiplier.
func (g *Game) SetSpeed(speed float64) {
	if speed > 0 {
		g.state.Speed = speed
	}
}

// Close flushes telemetry output.
func (g *Game) Close() error {
	if g.output == nil {
		return nil
	}
	stats := telemetry.ComputeMatchStats(g.collector.Points(), g.collector.ThrowDistances())
	if err := g.output.WriteSummary(stats); err != nil {
		return err
	}
	return g.output.Close()
}

// FlushPoints writes any completed point records to the output.
func (g *Game) FlushPoints() error {
	if g.output == nil {
		return nil
	}
	for _, rec := range g.collector.DrainUnwritten() {
		if err := g.output.WritePoint(rec); err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/flatball-sim/flatball/config"
	"github.com/flatball-sim/flatball/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	speed := flag.Float64("speed", 1, "Simulation speed multiplier")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	maxPoints := flag.Int("max-points", 0, "Stop after N points (0 = play to win)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	g, err := game.NewGame(game.Options{
		Seed:      rngSeed,
		OutputDir: *outputDir,
	})
	if err != nil {
		slog.Error("failed to create game", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	g.SetSpeed(*speed)
	g.Kickoff()

	slog.Info("starting headless match",
		"seed", rngSeed,
		"speed", *speed,
		"max_ticks", *maxTicks,
		"max_points", *maxPoints,
	)

	for !g.State().Over() {
		g.Update()

		// Halftime needs an external resume; headless runs take it
		// immediately.
		g.ResumeSecondHalf()

		if err := g.FlushPoints(); err != nil {
			slog.Error("failed to write point records", "error", err)
			os.Exit(1)
		}

		if *maxTicks > 0 && g.Tick() >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
		if *maxPoints > 0 && len(g.Collector().Points()) >= *maxPoints {
			slog.Info("max points reached", "points", *maxPoints)
			break
		}
	}

	st := g.State()
	slog.Info("match finished",
		"phase", st.Phase.String(),
		"home", st.HomeScore,
		"away", st.AwayScore,
		"ticks", g.Tick(),
		"sim_seconds", st.Clock,
	)
}

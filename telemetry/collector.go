// Package telemetry accumulates match events and writes per-point CSV
// records plus an end-of-match summary.
package telemetry

import (
	"github.com/flatball-sim/flatball/components"
	"github.com/flatball-sim/flatball/match"
)

// PointRecord is one completed point, written as a CSV row.
type PointRecord struct {
	Point         int     `csv:"point"`
	ScoringTeam   string  `csv:"scoring_team"`
	HomeScore     int     `csv:"home_score"`
	AwayScore     int     `csv:"away_score"`
	DurationSec   float64 `csv:"duration_sec"`
	Throws        int     `csv:"throws"`
	Catches       int     `csv:"catches"`
	Drops         int     `csv:"drops"`
	Interceptions int     `csv:"interceptions"`
	StallOuts     int     `csv:"stall_outs"`
}

// Collector accumulates events between scores and produces PointRecords.
// It subscribes to match events and receives throw notifications from the
// flight system.
type Collector struct {
	clock      float64
	pointStart float64

	homeScore int
	awayScore int

	// Per-point counters, reset at each score
	throws        int
	catches       int
	drops         int
	interceptions int
	stallOuts     int

	distances []float64
	points    []PointRecord
	written   int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Tick advances the collector's simulation clock.
func (c *Collector) Tick(dt float64) {
	c.clock += dt
}

// RecordThrow records a released throw and its intended distance.
func (c *Collector) RecordThrow(team components.Team, distance float64) {
	c.throws++
	c.distances = append(c.distances, distance)
}

// HandleMatchEvent implements match.Listener.
func (c *Collector) HandleMatchEvent(e match.Event) {
	switch e.Kind {
	case match.EventCatch:
		c.catches++
	case match.EventDrop:
		c.drops++
	case match.EventInterception:
		c.interceptions++
	case match.EventStallOut:
		c.stallOuts++
	case match.EventScore:
		c.closePoint(e.Team)
	}
}

// closePoint finalizes the current point's record.
func (c *Collector) closePoint(scorer components.Team) {
	if scorer == components.TeamHome {
		c.homeScore++
	} else {
		c.awayScore++
	}

	c.points = append(c.points, PointRecord{
		Point:         len(c.points) + 1,
		ScoringTeam:   scorer.String(),
		HomeScore:     c.homeScore,
		AwayScore:     c.awayScore,
		DurationSec:   c.clock - c.pointStart,
		Throws:        c.throws,
		Catches:       c.catches,
		Drops:         c.drops,
		Interceptions: c.interceptions,
		StallOuts:     c.stallOuts,
	})

	c.pointStart = c.clock
	c.throws = 0
	c.catches = 0
	c.drops = 0
	c.interceptions = 0
	c.stallOuts = 0
}

// Points returns all completed point records.
func (c *Collector) Points() []PointRecord {
	return c.points
}

// ThrowDistances returns every recorded throw distance.
func (c *Collector) ThrowDistances() []float64 {
	return c.distances
}

// DrainUnwritten returns point records not yet handed to the output.
func (c *Collector) DrainUnwritten() []PointRecord {
	recs := c.points[c.written:]
	c.written = len(c.points)
	return recs
}

// Reset clears all collected state for a match restart.
func (c *Collector) Reset() {
	*c = Collector{}
}

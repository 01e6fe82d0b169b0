package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// MatchStats is the end-of-match summary, written as a single CSV row.
type MatchStats struct {
	Points    int `csv:"points"`
	HomeScore int `csv:"home_score"`
	AwayScore int `csv:"away_score"`

	MeanPointDuration float64 `csv:"point_duration_mean"`
	P50PointDuration  float64 `csv:"point_duration_p50"`
	P90PointDuration  float64 `csv:"point_duration_p90"`

	MeanThrowsPerPoint float64 `csv:"throws_per_point_mean"`
	CompletionRate     float64 `csv:"completion_rate"`

	MeanThrowDistance float64 `csv:"throw_distance_mean"`
	StdThrowDistance  float64 `csv:"throw_distance_std"`
	P90ThrowDistance  float64 `csv:"throw_distance_p90"`
}

// ComputeMatchStats aggregates point records and throw distances.
func ComputeMatchStats(points []PointRecord, distances []float64) MatchStats {
	s := MatchStats{Points: len(points)}
	if len(points) > 0 {
		last := points[len(points)-1]
		s.HomeScore = last.HomeScore
		s.AwayScore = last.AwayScore
	}

	durations := make([]float64, 0, len(points))
	throws := 0
	catches := 0
	for _, p := range points {
		durations = append(durations, p.DurationSec)
		throws += p.Throws
		catches += p.Catches
	}

	if len(durations) > 0 {
		sort.Float64s(durations)
		s.MeanPointDuration = stat.Mean(durations, nil)
		s.P50PointDuration = stat.Quantile(0.5, stat.Empirical, durations, nil)
		s.P90PointDuration = stat.Quantile(0.9, stat.Empirical, durations, nil)
		s.MeanThrowsPerPoint = float64(throws) / float64(len(points))
	}
	if throws > 0 {
		s.CompletionRate = float64(catches) / float64(throws)
	}

	if len(distances) > 0 {
		sorted := make([]float64, len(distances))
		copy(sorted, distances)
		sort.Float64s(sorted)
		s.MeanThrowDistance = stat.Mean(sorted, nil)
		s.StdThrowDistance = stat.StdDev(sorted, nil)
		s.P90ThrowDistance = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	}
	return s
}

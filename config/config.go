// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation tuning parameters.
type Config struct {
	Rules     RulesConfig     `yaml:"rules"`
	Flight    FlightConfig    `yaml:"flight"`
	Stall     StallConfig     `yaml:"stall"`
	AI        AIConfig        `yaml:"ai"`
	Pull      PullConfig      `yaml:"pull"`
	Timing    TimingConfig    `yaml:"timing"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// RulesConfig holds scoring and roster rules.
type RulesConfig struct {
	PlayersPerSide int `yaml:"players_per_side"`
	PointsToWin    int `yaml:"points_to_win"`
	HalftimeAt     int `yaml:"halftime_at"`
}

// FlightConfig holds disc flight and catch parameters.
type FlightConfig struct {
	Gravity          float64 `yaml:"gravity"`            // m/s^2, negative is down
	LiftCoefficient  float64 `yaml:"lift_coefficient"`   // vertical lift per m/s of horizontal speed
	LiftMinSpeed     float64 `yaml:"lift_min_speed"`     // horizontal speed below which lift cuts out
	AirResistance    float64 `yaml:"air_resistance"`     // per-frame decay at 60fps equivalent
	CatchRadius      float64 `yaml:"catch_radius"`       // meters from chest height
	CatchSuccessRate float64 `yaml:"catch_success_rate"` // probability per in-range frame
	CatchHeight      float64 `yaml:"catch_height"`       // chest height offset for catch checks
	ReleaseHeight    float64 `yaml:"release_height"`     // disc height at release
	GroundHeight     float64 `yaml:"ground_height"`      // disc rest height on the ground
	PickupRadius     float64 `yaml:"pickup_radius"`      // distance to pick up a grounded disc
}

// StallConfig holds stall-count rule parameters.
type StallConfig struct {
	MarkingDistance float64 `yaml:"marking_distance"` // marker must be within this of the holder
	Interval        float64 `yaml:"interval"`         // seconds per count
	MaxCount        int     `yaml:"max_count"`        // reaching this forces a turnover
	UrgentCount     int     `yaml:"urgent_count"`     // holder throws immediately at this count
}

// AIConfig holds decision and movement parameters.
type AIConfig struct {
	DecisionInterval float64 `yaml:"decision_interval"`
	DecisionJitter   float64 `yaml:"decision_jitter"`
	ReactionTime     float64 `yaml:"reaction_time"` // throw windup at stall count zero
	PlayerSpeed      float64 `yaml:"player_speed"`
	CuttingSpeed     float64 `yaml:"cutting_speed"`
	ArriveRadius     float64 `yaml:"arrive_radius"`

	ThrowRange    float64 `yaml:"throw_range"`
	ThrowSpeedMin float64 `yaml:"throw_speed_min"`
	ThrowSpeedMax float64 `yaml:"throw_speed_max"`
	LiftDiscount  float64 `yaml:"lift_discount"` // fraction of gravity cancelled by lift

	CutCandidates  int     `yaml:"cut_candidates"`
	CutRadiusMin   float64 `yaml:"cut_radius_min"`
	CutRadiusMax   float64 `yaml:"cut_radius_max"`
	CutForwardBias float64 `yaml:"cut_forward_bias"`

	EndZonePreferenceWeight float64 `yaml:"end_zone_preference_weight"`
	OpponentProximityWeight float64 `yaml:"opponent_proximity_weight"`
	TeammateBunchingWeight  float64 `yaml:"teammate_bunching_weight"`
	MediumRange             float64 `yaml:"medium_range"`
	WideRange               float64 `yaml:"wide_range"`

	ForwardPassWeight      float64 `yaml:"forward_pass_weight"`
	PassDistancePenalty    float64 `yaml:"pass_distance_penalty"`
	DefenderCoverageClose  float64 `yaml:"defender_coverage_close"`
	DefenderCoverageMedium float64 `yaml:"defender_coverage_medium"`
	CoverageClosePenalty   float64 `yaml:"coverage_close_penalty"`
	CoverageMediumPenalty  float64 `yaml:"coverage_medium_penalty"`
	EndZoneBonus           float64 `yaml:"end_zone_bonus"`

	DefendOffset float64 `yaml:"defend_offset"` // meters goal-side of the matched attacker
}

// PullConfig holds opening-throw parameters.
type PullConfig struct {
	VerticalSpeedMin float64 `yaml:"vertical_speed_min"`
	VerticalSpeedMax float64 `yaml:"vertical_speed_max"`
	TargetPadding    float64 `yaml:"target_padding"` // keep the target off the lines
	SetupDelay       float64 `yaml:"setup_delay"`    // seconds before the windup starts
	WindupDelay      float64 `yaml:"windup_delay"`   // seconds from windup to release
}

// TimingConfig holds tick and celebration timing.
type TimingConfig struct {
	DT                  float64 `yaml:"dt"` // seconds per simulation tick
	Celebration         float64 `yaml:"celebration"`
	HalftimeCelebration float64 `yaml:"halftime_celebration"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	DT32           float32
	CatchRadiusSq  float32
	MarkingDistSq  float32
	PickupRadiusSq float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Timing.DT)
	c.Derived.CatchRadiusSq = float32(c.Flight.CatchRadius * c.Flight.CatchRadius)
	c.Derived.MarkingDistSq = float32(c.Stall.MarkingDistance * c.Stall.MarkingDistance)
	c.Derived.PickupRadiusSq = float32(c.Flight.PickupRadius * c.Flight.PickupRadius)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

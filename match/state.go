// Package match holds the phase state machine for a game.
//
// State is a plain injectable struct owned by the game driver; all waiting
// (pull setup, windup, celebration) is expressed as accumulators advanced
// from the per-frame tick, never wall-clock timers, so pausing or scaling
// simulation speed stretches every in-progress delay uniformly.
package match

import (
	"log/slog"

	"github.com/flatball-sim/flatball/components"
	"github.com/flatball-sim/flatball/config"
)

// Phase is the current stage of a point.
type Phase uint8

const (
	PhasePregame Phase = iota
	PhasePull
	PhasePlaying
	PhaseScore
	PhaseTurnover
	PhaseHalftime
	PhaseEndgame
)

// String returns the phase name for logs and UI text.
func (p Phase) String() string {
	switch p {
	case PhasePregame:
		return "pregame"
	case PhasePull:
		return "pull"
	case PhasePlaying:
		return "playing"
	case PhaseScore:
		return "score"
	case PhaseTurnover:
		return "turnover"
	case PhaseHalftime:
		return "halftime"
	case PhaseEndgame:
		return "endgame"
	}
	return "unknown"
}

// State holds phase, score, possession, and timing for one game.
type State struct {
	Phase      Phase
	HomeScore  int
	AwayScore  int
	Possession components.Team // team on offense (receiving team during a pull)
	Half       int
	Clock      float64 // elapsed simulation seconds

	Paused bool
	Speed  float64 // simulation speed multiplier

	PointsToWin int
	HalftimeAt  int

	// homeAttack is +1 or -1 along Z; away always attacks the other way.
	homeAttack float32

	// Pull timing: setup delay, then windup, then release.
	pullElapsed float32
	pullSetup   float32
	pullWindup  float32

	// Score celebration countdown and the phase it resolves into.
	celebration float32
	afterScore  Phase
	lastScorer  components.Team

	listeners []Listener
	LastEvent Event
}

// NewState creates game state for a fresh match. The home team receives
// the opening pull.
func NewState(cfg *config.Config) *State {
	return &State{
		Phase:       PhasePregame,
		Possession:  components.TeamHome,
		Half:        1,
		Speed:       1,
		PointsToWin: cfg.Rules.PointsToWin,
		HalftimeAt:  cfg.Rules.HalftimeAt,
		homeAttack:  1,
		pullSetup:   float32(cfg.Pull.SetupDelay),
		pullWindup:  float32(cfg.Pull.WindupDelay),
	}
}

// AddListener subscribes a listener to match events.
func (s *State) AddListener(l Listener) {
	s.listeners = append(s.listeners, l)
}

func (s *State) emit(e Event) {
	s.LastEvent = e
	for _, l := range s.listeners {
		l.HandleMatchEvent(e)
	}
}

// AttackDirection returns the +-1 direction along Z the team scores in.
func (s *State) AttackDirection(team components.Team) float32 {
	if team == components.TeamHome {
		return s.homeAttack
	}
	return -s.homeAttack
}

// Score returns the given team's score.
func (s *State) Score(team components.Team) int {
	if team == components.TeamHome {
		return s.HomeScore
	}
	return s.AwayScore
}

// PullingTeam returns the team throwing the pull (the defense).
func (s *State) PullingTeam() components.Team {
	return s.Possession.Opponent()
}

// BeginPull transitions pregame or a finished celebration into the pull
// phase and restarts the pull timers. Entities must already be in kickoff
// formation; players stay frozen until the disc is released.
func (s *State) BeginPull() {
	s.Phase = PhasePull
	s.pullElapsed = 0
}

// AdvancePullClock accumulates pull time. Only meaningful during PhasePull.
func (s *State) AdvancePullClock(dt float32) {
	s.pullElapsed += dt
}

// PullWindupStarted reports whether the setup delay has elapsed and the
// puller is in their windup animation.
func (s *State) PullWindupStarted() bool {
	return s.pullElapsed >= s.pullSetup
}

// PullReleaseDue reports whether the pull throw should be released.
func (s *State) PullReleaseDue() bool {
	return s.pullElapsed >= s.pullSetup+s.pullWindup
}

// DiscReleased moves pull into open play once the pull is in flight.
func (s *State) DiscReleased() {
	if s.Phase != PhasePull {
		return
	}
	s.Phase = PhasePlaying
	s.emit(Event{Kind: EventPull, Team: s.PullingTeam()})
}

// CatchDisc records a completed catch by the given team and returns true
// if it was an interception. An interception moves possession to the
// catching team and play continues; it never scores directly because the
// scoring check upstream uses possession as it stood before the catch.
func (s *State) CatchDisc(team components.Team) bool {
	if team == s.Possession {
		s.emit(Event{Kind: EventCatch, Team: team})
		return false
	}
	s.Possession = team
	s.emit(Event{Kind: EventInterception, Team: team})
	return true
}

// Turnover flips possession and moves play into the turnover phase, where
// the disc sits grounded until the new offense picks it up.
func (s *State) Turnover(reason EventKind) {
	if s.Phase != PhasePlaying && s.Phase != PhasePull {
		return
	}
	s.Possession = s.Possession.Opponent()
	s.Phase = PhaseTurnover
	s.emit(Event{Kind: reason, Team: s.Possession})
	slog.Info("turnover", "reason", reason.String(), "possession", s.Possession.String())
}

// PullLanded moves a landed pull into the pickup flow without flipping
// possession: the receiving team was already on offense.
func (s *State) PullLanded() {
	if s.Phase != PhasePlaying {
		return
	}
	s.Phase = PhaseTurnover
}

// DiscPickedUp resumes play once the new offense collects the grounded disc.
func (s *State) DiscPickedUp() {
	if s.Phase != PhaseTurnover {
		return
	}
	s.Phase = PhasePlaying
	s.emit(Event{Kind: EventPickup, Team: s.Possession})
}

// RecordScore credits a goal, flips both attack directions, and starts the
// celebration countdown. The phase the celebration resolves into is decided
// here so a halftime break gets its longer celebration.
func (s *State) RecordScore(team components.Team, cfg *config.Config) {
	if team == components.TeamHome {
		s.HomeScore++
	} else {
		s.AwayScore++
	}
	s.lastScorer = team
	s.homeAttack = -s.homeAttack
	s.Phase = PhaseScore

	switch {
	case s.Score(team) >= s.PointsToWin:
		s.afterScore = PhaseEndgame
		s.celebration = float32(cfg.Timing.Celebration)
	case s.Half == 1 && s.Score(team) == s.HalftimeAt:
		s.afterScore = PhaseHalftime
		s.celebration = float32(cfg.Timing.HalftimeCelebration)
	default:
		s.afterScore = PhasePull
		s.celebration = float32(cfg.Timing.Celebration)
	}

	s.emit(Event{Kind: EventScore, Team: team})
	slog.Info("score", "team", team.String(), "home", s.HomeScore, "away", s.AwayScore)
}

// AdvanceCelebration counts down the post-score celebration and returns
// true once it has elapsed.
func (s *State) AdvanceCelebration(dt float32) bool {
	if s.Phase != PhaseScore {
		return false
	}
	s.celebration -= dt
	return s.celebration <= 0
}

// FinishCelebration resolves the score phase into endgame, halftime, or the
// next pull (with possession handed to the team that conceded). Returns the
// new phase; the caller re-initializes entities when it returns PhasePull.
func (s *State) FinishCelebration() Phase {
	switch s.afterScore {
	case PhaseEndgame:
		s.Phase = PhaseEndgame
		s.emit(Event{Kind: EventGameOver, Team: s.lastScorer})
	case PhaseHalftime:
		s.Phase = PhaseHalftime
		s.Half = 2
		s.emit(Event{Kind: EventHalftime, Team: s.lastScorer})
	default:
		s.Possession = s.lastScorer.Opponent()
		s.BeginPull()
	}
	return s.Phase
}

// ResumeFromHalftime starts the second half with a fresh pull. The team
// that scored the halftime point pulls to open the half.
func (s *State) ResumeFromHalftime() {
	if s.Phase != PhaseHalftime {
		return
	}
	s.Possession = s.lastScorer.Opponent()
	s.BeginPull()
}

// Over reports whether the match has ended.
func (s *State) Over() bool {
	return s.Phase == PhaseEndgame
}

// Reset returns the state to a fresh pregame, keeping listeners.
func (s *State) Reset(cfg *config.Config) {
	listeners := s.listeners
	*s = *NewState(cfg)
	s.listeners = listeners
}

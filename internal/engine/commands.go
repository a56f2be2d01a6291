// Package engine is the pure reducer: a deterministic function
// (State, Command) -> (State', Effects) with no I/O. Every mutation the
// dispatcher (internal/dispatch) applies to a room goes through here, and
// every output is data — narrative strings, wire events to publish — never
// a side effect performed in place.
package engine

import "github.com/sairajesh711/mafia-lite/internal/roomstate"

// CommandKind discriminates the small set of pure mutations the dispatcher
// can ask the reducer to apply.
type CommandKind string

const (
	CommandSubmitNightAction CommandKind = "submit_night_action"
	CommandCastVote          CommandKind = "cast_vote"
	CommandResolveNight      CommandKind = "resolve_night"
	CommandResolveVoting     CommandKind = "resolve_voting"
	CommandAdvancePhase      CommandKind = "advance_phase"
	CommandStartGame         CommandKind = "start_game"
)

// SubmitNightAction appends or replaces a night action for PlayerID.
type SubmitNightAction struct {
	ActionID string
	PlayerID string
	Type     string // roles.ActionType, kept as string to avoid an import cycle with policy-side validation
	TargetID string
	Now      int64
}

// CastVote upserts PlayerID's vote, removing any prior vote by the same
// player before inserting the new one (the dispatcher is responsible for
// calling this instead of a raw insert).
type CastVote struct {
	ActionID string
	PlayerID string
	TargetID string // empty means abstain
	Now      int64
}

// Effect is a declarative output of a reduction: something the dispatcher
// should publish after a successful commit. The reducer never performs
// the publish itself.
type Effect struct {
	Kind    string
	Payload any
}

const (
	EffectNightResult   = "night_result"
	EffectLynchResult   = "lynch_result"
	EffectPhaseChange   = "phase_change"
	EffectVictory       = "victory"
)

// NightResultPayload mirrors the night.publicResult wire event.
type NightResultPayload struct {
	DeathPlayerID string
	Narrative     string
}

// LynchResultPayload mirrors the lynch.result wire event.
type LynchResultPayload struct {
	TargetID  string
	Narrative string
}

// PhaseChangePayload mirrors the phase.change wire event.
type PhaseChangePayload struct {
	Phase roomstate.Phase
	Timer *roomstate.Timer
	Night bool
}

// Package policy is the pre-reducer legality gate: every command is
// checked here before internal/engine ever sees it, so the reducer itself
// can stay a pure function that assumes a legal input.
package policy

import (
	"github.com/sairajesh711/mafia-lite/internal/roles"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
	"github.com/sairajesh711/mafia-lite/internal/wire"
)

// Violation is a rejected command's reason, carrying the wire error kind
// the dispatcher reports back to the caller plus whether retrying the same
// command could ever succeed.
type Violation struct {
	Code      wire.ErrorCode
	Message   string
	Retryable bool
}

func (v *Violation) Error() string { return v.Message }

func violation(code wire.ErrorCode, retryable bool, msg string) *Violation {
	return &Violation{Code: code, Message: msg, Retryable: retryable}
}

// CheckNightAction validates a submit_night_action command against room
// state and the actor's role before the reducer applies it.
func CheckNightAction(r *roomstate.Room, playerID, actionType, targetID string) *Violation {
	if r.Phase != roomstate.PhaseNight {
		return violation(wire.ErrorWrongPhase, false, "night actions are only legal during the night phase")
	}

	actor, ok := r.Players[playerID]
	if !ok {
		return violation(wire.ErrorUnauthorized, false, "unknown player")
	}
	if actor.Status != roomstate.StatusAlive {
		return violation(wire.ErrorDeadPlayer, false, "actor is not alive")
	}

	role, ok := roles.Get(actor.RoleID)
	if !ok || role.Night == nil {
		return violation(wire.ErrorUnauthorized, false, "actor's role has no night action")
	}
	if string(role.Night.Type) != actionType {
		return violation(wire.ErrorUnauthorized, false, "action type does not match actor's role")
	}

	target, ok := r.Players[targetID]
	if !ok {
		return violation(wire.ErrorInvalidTarget, true, "target does not exist")
	}
	if err := checkTargetRules(role.Targets, actor, target); err != nil {
		return err
	}
	return nil
}

func checkTargetRules(rules roles.TargetRules, actor, target *roomstate.Player) *Violation {
	if target.ID == actor.ID && !rules.AllowSelf {
		return violation(wire.ErrorInvalidTarget, true, "role may not target itself")
	}
	switch target.Status {
	case roomstate.StatusAlive:
		if !rules.AllowAlive {
			return violation(wire.ErrorInvalidTarget, true, "role may not target an alive player")
		}
	case roomstate.StatusDead:
		if !rules.AllowDead {
			return violation(wire.ErrorInvalidTarget, true, "role may not target a dead player")
		}
	default:
		return violation(wire.ErrorInvalidTarget, true, "role may not target a disconnected player")
	}
	switch rules.Filter {
	case roles.FilterNonMafia:
		if target.Alignment == roles.AlignmentMafia {
			return violation(wire.ErrorInvalidTarget, true, "mafia may not target another mafia member")
		}
	case roles.FilterAnyAlive, roles.FilterNone:
		// no additional restriction
	}
	return nil
}

// CheckVote validates a cast_vote command.
func CheckVote(r *roomstate.Room, playerID, targetID string) *Violation {
	if r.Phase != roomstate.PhaseDayVoting {
		return violation(wire.ErrorWrongPhase, false, "votes are only legal during the day_voting phase")
	}
	voter, ok := r.Players[playerID]
	if !ok {
		return violation(wire.ErrorUnauthorized, false, "unknown player")
	}
	if voter.Status != roomstate.StatusAlive {
		return violation(wire.ErrorDeadPlayer, false, "voter is not alive")
	}
	if targetID == "" {
		return nil // abstain always legal
	}
	target, ok := r.Players[targetID]
	if !ok || target.Status != roomstate.StatusAlive {
		return violation(wire.ErrorInvalidTarget, true, "vote target does not exist or is not alive")
	}
	return nil
}

// CheckHostAction validates a start/kick/mute/nudge command, all of which
// require the caller to be the room's host.
func CheckHostAction(r *roomstate.Room, callerID string) *Violation {
	if callerID != r.HostID {
		return violation(wire.ErrorUnauthorized, false, "only the host may perform this action")
	}
	return nil
}

// CheckHostActionTarget validates the targetId a kick/mute/nudge command
// names, after CheckHostAction has already confirmed the caller is host.
// start carries no targetId and never calls this.
func CheckHostActionTarget(r *roomstate.Room, targetID string) *Violation {
	if _, ok := r.Players[targetID]; !ok {
		return violation(wire.ErrorInvalidTarget, false, "target does not exist")
	}
	return nil
}

// CheckStartGame validates a start_game command.
func CheckStartGame(r *roomstate.Room, callerID string) *Violation {
	if v := CheckHostAction(r, callerID); v != nil {
		return v
	}
	if r.Phase != roomstate.PhaseLobby {
		return violation(wire.ErrorWrongPhase, false, "the game has already started")
	}
	if len(r.Players) < r.Settings.MinPlayers {
		return violation(wire.ErrorWrongPhase, false, "not enough players to start")
	}
	return nil
}

// CheckChat validates a chat.message command: who may speak on which
// channel given the room's current phase and the sender's life/alignment
// state. Per the wire contract this is "accepted or dropped silently," so
// CheckChat's result is used by the dispatcher to decide whether to
// broadcast, not to report an error back to the sender.
func CheckChat(r *roomstate.Room, playerID string, channel wire.ChatChannel) *Violation {
	sender, ok := r.Players[playerID]
	if !ok {
		return violation(wire.ErrorUnauthorized, false, "unknown player")
	}
	if sender.Muted {
		return violation(wire.ErrorUnauthorized, false, "player is muted by the host")
	}
	switch channel {
	case wire.ChatLobby:
		if r.Phase != roomstate.PhaseLobby {
			return violation(wire.ErrorWrongPhase, false, "lobby chat is only open before the game starts")
		}
	case wire.ChatDay:
		if r.Phase == roomstate.PhaseLobby || r.Phase == roomstate.PhaseEnded {
			return violation(wire.ErrorWrongPhase, false, "day chat is only open during a day phase")
		}
		if sender.Status != roomstate.StatusAlive {
			return violation(wire.ErrorDeadPlayer, false, "only the living may speak in day chat")
		}
	case wire.ChatNightMafia:
		if r.Phase != roomstate.PhaseNight {
			return violation(wire.ErrorWrongPhase, false, "the mafia channel is only open at night")
		}
		if sender.Status != roomstate.StatusAlive || sender.Alignment != roles.AlignmentMafia {
			return violation(wire.ErrorUnauthorized, false, "only living mafia may use this channel")
		}
	case wire.ChatDead:
		if sender.Status == roomstate.StatusAlive {
			return violation(wire.ErrorUnauthorized, false, "only the deceased may use the dead channel")
		}
	default:
		return violation(wire.ErrorUnauthorized, false, "unknown chat channel")
	}
	return nil
}

// CheckJoin validates a room.join command.
func CheckJoin(r *roomstate.Room) *Violation {
	if r.Phase != roomstate.PhaseLobby {
		return violation(wire.ErrorWrongPhase, false, "the room is no longer in lobby")
	}
	if len(r.Players) >= r.Settings.MaxPlayers {
		return violation(wire.ErrorRoomFull, false, "the room is full")
	}
	return nil
}

package engine

import (
	"fmt"
	"math/rand"

	"github.com/sairajesh711/mafia-lite/internal/roomstate"
)

// Command is the sum type the dispatcher feeds into Reduce. Exactly one
// field is populated per CommandKind.
type Command struct {
	Kind            CommandKind
	SubmitNight     SubmitNightAction
	CastVote        CastVote
	Now             int64
	RNG             *rand.Rand // only consulted by CommandStartGame
}

// Reduce is the single entry point the dispatcher calls: it mutates a
// working copy of the room (the caller is responsible for cloning via
// Room.Clone before calling, and for discarding the clone on error) and
// returns whatever effects resulted. No I/O happens here and nothing here
// decides whether the command is legal — internal/policy does that before
// Reduce is ever called.
func Reduce(r *roomstate.Room, cmd Command) ([]Effect, error) {
	switch cmd.Kind {
	case CommandSubmitNightAction:
		ApplySubmitNightAction(r, cmd.SubmitNight)
		return nil, nil

	case CommandCastVote:
		ApplyCastVote(r, cmd.CastVote)
		return nil, nil

	case CommandResolveNight:
		eff := ResolveNight(r)
		effects := []Effect{eff}
		if v := CheckVictory(r); v != roomstate.VictoryNone {
			effects = append(effects, Effect{Kind: EffectVictory, Payload: v})
			return effects, nil
		}
		effects = append(effects, AdvancePhase(r, cmd.Now))
		return effects, nil

	case CommandResolveVoting:
		eff := ResolveVoting(r)
		effects := []Effect{eff}
		if v := CheckVictory(r); v != roomstate.VictoryNone {
			effects = append(effects, Effect{Kind: EffectVictory, Payload: v})
			return effects, nil
		}
		effects = append(effects, AdvancePhase(r, cmd.Now))
		return effects, nil

	case CommandAdvancePhase:
		return []Effect{AdvancePhase(r, cmd.Now)}, nil

	case CommandStartGame:
		if cmd.RNG == nil {
			return nil, fmt.Errorf("engine: start_game requires an RNG")
		}
		eff, err := StartGame(r, cmd.Now, cmd.RNG)
		if err != nil {
			return nil, err
		}
		return []Effect{eff}, nil

	default:
		return nil, fmt.Errorf("engine: unknown command kind %q", cmd.Kind)
	}
}

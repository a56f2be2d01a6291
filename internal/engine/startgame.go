package engine

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sairajesh711/mafia-lite/internal/roles"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
)

// StartGame assigns each player a role exactly once per the distribution
// rule, moves the room out of lobby via AdvancePhase, and returns the
// resulting phase.change effect. rng is caller-supplied so tests can seed
// it and the dispatcher can derive it from the actionId instead of
// depending on global state.
func StartGame(r *roomstate.Room, now int64, rng *rand.Rand) (Effect, error) {
	if r.Phase != roomstate.PhaseLobby {
		return Effect{}, fmt.Errorf("engine: start_game called outside lobby phase")
	}

	ids := make([]string, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids) // deterministic base order before shuffling
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	dist := roles.Distribution(len(ids))
	assignment := make([]roles.ID, 0, len(ids))
	for _, roleID := range []roles.ID{roles.Mafia, roles.Detective, roles.Doctor, roles.Townsperson} {
		for i := 0; i < dist[roleID]; i++ {
			assignment = append(assignment, roleID)
		}
	}

	for i, playerID := range ids {
		role, ok := roles.Get(assignment[i])
		if !ok {
			return Effect{}, fmt.Errorf("engine: unknown role %q in distribution", assignment[i])
		}
		p := r.Players[playerID]
		p.RoleID = role.ID
		p.Alignment = role.Alignment
	}

	return AdvancePhase(r, now), nil
}

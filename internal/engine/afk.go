package engine

import (
	"github.com/sairajesh711/mafia-lite/internal/roles"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
)

// maxAFKStrikes mirrors the Player.afkStrikes 0-3 range.
const maxAFKStrikes = 3

// applyAFKStrikes increments afkStrikes for any alive player whose role
// requires a night action (mafia, detective — the doctor's protect is
// optional per the scheduler's completion predicate) but who did not
// submit one this night. A player who accumulates maxAFKStrikes becomes
// disconnected, folding the previously-unused afkStrikes field into
// existing resolution steps rather than inventing a new wire event.
//
// It is a no-op when nightActions came in entirely empty: resolving an
// empty night must produce no state change beyond the narrative line, so
// the strike only fires once at least one submission shows the night
// actually had participants to compare against.
func applyAFKStrikes(r *roomstate.Room) {
	if len(r.NightActions) == 0 {
		return
	}
	acted := make(map[string]bool, len(r.NightActions))
	for _, a := range r.NightActions {
		acted[a.PlayerID] = true
	}
	for _, p := range r.Players {
		if p.Status != roomstate.StatusAlive {
			continue
		}
		if p.RoleID != roles.Mafia && p.RoleID != roles.Detective {
			continue
		}
		if acted[p.ID] {
			continue
		}
		p.AFKStrikes++
		if p.AFKStrikes >= maxAFKStrikes {
			p.Status = roomstate.StatusDisconnected
		}
	}
}

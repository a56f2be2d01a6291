package engine

import (
	"github.com/sairajesh711/mafia-lite/internal/roles"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
)

// CheckVictory implements victory condition: mafia wins once they
// equal or outnumber the rest of the living room, town wins once no
// mafia remain alive, otherwise the game continues. It mutates
// r.VictoryCondition and returns the decided value, VictoryNone if play
// continues.
func CheckVictory(r *roomstate.Room) roomstate.Victory {
	var aliveMafia, aliveTown, aliveNeutral int
	for _, p := range r.AlivePlayers() {
		switch p.Alignment {
		case roles.AlignmentMafia:
			aliveMafia++
		case roles.Neutral:
			aliveNeutral++
		default:
			aliveTown++
		}
	}

	var v roomstate.Victory
	switch {
	case aliveMafia >= aliveTown+aliveNeutral:
		v = roomstate.VictoryMafia
	case aliveMafia == 0:
		v = roomstate.VictoryTown
	default:
		v = roomstate.VictoryNone
	}

	r.VictoryCondition = v
	if v != roomstate.VictoryNone {
		r.Phase = roomstate.PhaseEnded
		r.Timer = nil
	}
	return v
}

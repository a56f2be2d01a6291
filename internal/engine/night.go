package engine

import (
	"fmt"
	"sort"

	"github.com/sairajesh711/mafia-lite/internal/roles"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
)

// ApplySubmitNightAction records cmd on r, keyed by the caller's player id
// so a resubmission under the same actionId (or a fresh one — the policy
// gate decides which is legal) replaces any action that player already
// has queued this phase. The policy gate has already validated legality;
// this function only performs the mutation.
func ApplySubmitNightAction(r *roomstate.Room, cmd SubmitNightAction) {
	actionType := roles.ActionType(cmd.Type)
	na := &roomstate.NightAction{
		ID:          cmd.ActionID,
		ActionID:    cmd.ActionID,
		PlayerID:    cmd.PlayerID,
		Type:        actionType,
		TargetID:    cmd.TargetID,
		SubmittedAt: cmd.Now,
		Priority:    actionType.Priority(),
	}
	for id, existing := range r.NightActions {
		if existing.PlayerID == cmd.PlayerID {
			delete(r.NightActions, id)
		}
	}
	r.NightActions[na.ActionID] = na
}

// ResolveNight implements night resolution algorithm: sort actions
// deterministically, apply kill/protect/investigate in a single pass,
// commit at most one kill, append the narrative line, and clear
// nightActions. It returns the narrative-bearing effect so the dispatcher
// can publish night.publicResult.
func ResolveNight(r *roomstate.Room) Effect {
	actions := make([]*roomstate.NightAction, 0, len(r.NightActions))
	for _, a := range r.NightActions {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool {
		a, b := actions[i], actions[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.SubmittedAt != b.SubmittedAt {
			return a.SubmittedAt < b.SubmittedAt
		}
		return a.ActionID < b.ActionID
	})

	var queuedKillTarget string
	for _, a := range actions {
		actor, ok := r.Players[a.PlayerID]
		if !ok || actor.Status != roomstate.StatusAlive {
			continue
		}
		switch a.Type {
		case roles.ActionKill:
			if actor.RoleID != roles.Mafia {
				continue
			}
			target, ok := r.Players[a.TargetID]
			if !ok || target.Status != roomstate.StatusAlive || target.Alignment == roles.AlignmentMafia {
				continue
			}
			queuedKillTarget = a.TargetID

		case roles.ActionProtect:
			if actor.RoleID != roles.Doctor {
				continue
			}
			target, ok := r.Players[a.TargetID]
			if !ok || target.Status != roomstate.StatusAlive {
				continue
			}
			if queuedKillTarget == a.TargetID {
				queuedKillTarget = ""
			}

		case roles.ActionInvestigate:
			if actor.RoleID != roles.Detective {
				continue
			}
			target, ok := r.Players[a.TargetID]
			if !ok || target.Status != roomstate.StatusAlive {
				continue
			}
			r.InvestigationResults = append(r.InvestigationResults, roomstate.InvestigationResult{
				InvestigatorID: a.PlayerID,
				TargetID:       a.TargetID,
				IsMafia:        target.Alignment == roles.AlignmentMafia,
			})
		}
	}

	applyAFKStrikes(r)

	var narrative string
	var deathID string
	if queuedKillTarget != "" {
		victim := r.Players[queuedKillTarget]
		victim.Status = roomstate.StatusDead
		narrative = fmt.Sprintf("%s was eliminated during the night.", victim.Name)
		deathID = victim.ID
	} else {
		narrative = "No one died during the night."
	}
	r.PublicNarrative = append(r.PublicNarrative, narrative)

	r.NightActions = map[string]*roomstate.NightAction{}

	return Effect{
		Kind: EffectNightResult,
		Payload: NightResultPayload{
			DeathPlayerID: deathID,
			Narrative:     narrative,
		},
	}
}

package engine

import (
	"fmt"
	"sort"

	"github.com/sairajesh711/mafia-lite/internal/roles"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
)

// ApplyCastVote upserts cmd's vote: any prior vote record for the same
// player is deleted first, so the tally always holds at most one vote per
// alive player and the latest submission wins. TargetID == "" means abstain.
func ApplyCastVote(r *roomstate.Room, cmd CastVote) {
	for id, existing := range r.Votes {
		if existing.PlayerID == cmd.PlayerID {
			delete(r.Votes, id)
		}
	}
	r.Votes[cmd.ActionID] = &roomstate.Vote{
		ID:          cmd.ActionID,
		ActionID:    cmd.ActionID,
		PlayerID:    cmd.PlayerID,
		TargetID:    cmd.TargetID,
		SubmittedAt: cmd.Now,
	}
}

// ResolveVoting implements voting resolution: tally weighted votes
// against alive players, select a lynch target per the room's voting
// mode, mark them dead (optionally revealing their role), append the
// narrative, clear votes, and apply AFK strikes to non-voters. It returns
// the narrative-bearing effect for lynch.result.
func ResolveVoting(r *roomstate.Room) Effect {
	tally, voted := BuildVoteTally(r)

	applyAbstainAFKStrikes(r, voted)

	aliveCount := len(tally)
	target, lynched := selectLynchTarget(r.Settings.VotingMode, tally, aliveCount)

	var narrative string
	if lynched {
		victim := r.Players[target]
		victim.Status = roomstate.StatusDead
		narrative = fmt.Sprintf("%s was lynched with %d votes.", victim.Name, tally[target])
		if r.Settings.RevealRolesOnDeath {
			narrative += fmt.Sprintf(" They were a %s.", victim.RoleID)
		}
	} else {
		target = ""
		narrative = "No one was lynched. The town could not reach a decision."
	}
	r.PublicNarrative = append(r.PublicNarrative, narrative)
	r.Votes = map[string]*roomstate.Vote{}

	return Effect{
		Kind: EffectLynchResult,
		Payload: LynchResultPayload{
			TargetID:  target,
			Narrative: narrative,
		},
	}
}

// BuildVoteTally weighs every current vote against the alive roster the
// same way ResolveVoting does, so a live vote.update and the eventual
// resolution always agree on the count. voted reports who has cast a
// vote or explicit abstain at all, for the AFK-strike gate.
func BuildVoteTally(r *roomstate.Room) (tally map[string]int, voted map[string]bool) {
	tally = map[string]int{}
	for _, p := range r.AlivePlayers() {
		tally[p.ID] = 0
	}

	voted = make(map[string]bool, len(r.Votes))
	for _, v := range r.Votes {
		voted[v.PlayerID] = true
		if v.TargetID == "" {
			continue
		}
		target, ok := r.Players[v.TargetID]
		if !ok || target.Status != roomstate.StatusAlive {
			continue
		}
		weight := 1
		if voter, ok := r.Players[v.PlayerID]; ok {
			if role, ok := roles.Get(voter.RoleID); ok && role.Voting.Weight > 0 {
				weight = role.Voting.Weight
			}
		}
		tally[v.TargetID] += weight
	}
	return tally, voted
}

// selectLynchTarget picks the lynched player id (if any) from tally per
// mode, breaking ties as "no lynch" in both modes.
func selectLynchTarget(mode roomstate.VotingMode, tally map[string]int, aliveCount int) (string, bool) {
	ids := make([]string, 0, len(tally))
	for id := range tally {
		ids = append(ids, id)
	}
	sort.Strings(ids) // deterministic iteration for tie detection

	var best string
	bestCount := -1
	tiedAtBest := false
	for _, id := range ids {
		c := tally[id]
		if c > bestCount {
			bestCount = c
			best = id
			tiedAtBest = false
		} else if c == bestCount {
			tiedAtBest = true
		}
	}

	if bestCount <= 0 || tiedAtBest {
		return "", false
	}

	switch mode {
	case roomstate.VotingPlurality:
		return best, true
	default: // majority
		threshold := aliveCount/2 + 1
		if bestCount >= threshold {
			return best, true
		}
		return "", false
	}
}

// applyAbstainAFKStrikes increments afkStrikes for alive players who cast
// neither a vote nor an explicit abstain this round, the voting-phase
// counterpart of applyAFKStrikes in night.go. A no-op when votes came in
// entirely empty, for the same no-side-effect-on-empty-input reason.
func applyAbstainAFKStrikes(r *roomstate.Room, voted map[string]bool) {
	if len(voted) == 0 {
		return
	}
	for _, p := range r.AlivePlayers() {
		if voted[p.ID] {
			continue
		}
		p.AFKStrikes++
		if p.AFKStrikes >= maxAFKStrikes {
			p.Status = roomstate.StatusDisconnected
		}
	}
}

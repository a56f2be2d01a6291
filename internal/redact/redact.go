// Package redact builds the per-player view of a room: the projection of
// authoritative state that a given viewer is allowed to see. Every view
// is checked by a self-test before it leaves this package; a violation
// is a programming error in the reducer or here, not a client mistake,
// and is treated as fatal.
package redact

import (
	"fmt"

	"github.com/sairajesh711/mafia-lite/internal/roles"
	"github.com/sairajesh711/mafia-lite/internal/roomstate"
)

// PlayerView is one entry in View.Players: the subset of a Player every
// viewer, including strangers, is allowed to see.
type PlayerView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    roomstate.Status `json:"status"`
	Connected bool           `json:"connected"`
	RoleID    roles.ID       `json:"roleId,omitempty"`
}

// SelfRole is the viewer's own role, included only in their own view.
type SelfRole struct {
	RoleID     roles.ID        `json:"roleId"`
	Alignment  roles.Alignment `json:"alignment"`
	Teammates  []string        `json:"teammates,omitempty"`
}

// LockedAction summarizes the viewer's own already-submitted night
// action, without exposing anyone else's.
type LockedAction struct {
	Type     roles.ActionType `json:"type"`
	TargetID string           `json:"targetId"`
}

// View is the redacted projection of a Room for exactly one viewer.
type View struct {
	RoomID               string                          `json:"roomId"`
	Code                 string                          `json:"code"`
	Phase                roomstate.Phase                 `json:"phase"`
	Timer                *roomstate.Timer                `json:"timer"`
	Settings             roomstate.Settings              `json:"settings"`
	HostID               string                          `json:"hostId"`
	IsHost               bool                            `json:"isHost"`
	PublicNarrative      []string                        `json:"publicNarrative"`
	VictoryCondition     roomstate.Victory               `json:"victoryCondition"`
	ProtocolVersion      int                             `json:"protocolVersion"`
	Players              map[string]PlayerView           `json:"players"`
	SelfRole             *SelfRole                       `json:"selfRole,omitempty"`
	Votes                map[string]roomstate.Vote        `json:"votes,omitempty"`
	InvestigationResults []roomstate.InvestigationResult `json:"investigationResults,omitempty"`
	LockedAction         *LockedAction                   `json:"lockedAction,omitempty"`
}

// BuildView produces viewerID's view of r. It returns an error if the
// result ever fails the safety check (MustBuildView panics instead) —
// that indicates a bug in this function, not bad client input.
func BuildView(r *roomstate.Room, viewerID string) (View, error) {
	viewer, viewerKnown := r.Players[viewerID]

	v := View{
		RoomID:           r.ID,
		Code:             r.Code,
		Phase:            r.Phase,
		Timer:            r.Timer,
		Settings:         r.Settings,
		HostID:           r.HostID,
		IsHost:           viewerID == r.HostID,
		PublicNarrative:  append([]string(nil), r.PublicNarrative...),
		VictoryCondition: r.VictoryCondition,
		ProtocolVersion:  r.ProtocolVersion,
		Players:          make(map[string]PlayerView, len(r.Players)),
	}

	for id, p := range r.Players {
		pv := PlayerView{ID: p.ID, Name: p.Name, Status: p.Status, Connected: p.Connected}
		revealRole := id == viewerID ||
			(r.Settings.RevealRolesOnDeath && p.Status == roomstate.StatusDead) ||
			r.Phase == roomstate.PhaseEnded
		if revealRole {
			pv.RoleID = p.RoleID
		}
		v.Players[id] = pv
	}

	if viewerKnown && viewer.RoleID != "" {
		self := &SelfRole{RoleID: viewer.RoleID, Alignment: viewer.Alignment}
		if viewer.Alignment == roles.AlignmentMafia {
			for id, p := range r.Players {
				if id == viewerID {
					continue
				}
				if p.Alignment == roles.AlignmentMafia {
					self.Teammates = append(self.Teammates, id)
				}
			}
		}
		v.SelfRole = self
	}

	votesVisible := (r.Phase == roomstate.PhaseDayVoting && !r.Settings.AnonymousVoting) ||
		((r.Phase == roomstate.PhaseDayAnnouncement || r.Phase == roomstate.PhaseDayDiscussion) && len(r.Votes) > 0) ||
		r.Phase == roomstate.PhaseEnded
	if votesVisible {
		v.Votes = make(map[string]roomstate.Vote, len(r.Votes))
		for id, vote := range r.Votes {
			v.Votes[id] = *vote
		}
	}

	if viewerKnown && viewer.RoleID == roles.Detective {
		for _, res := range r.InvestigationResults {
			if res.InvestigatorID == viewerID {
				v.InvestigationResults = append(v.InvestigationResults, res)
			}
		}
	}

	if viewerKnown && r.Phase == roomstate.PhaseNight {
		for _, a := range r.NightActions {
			if a.PlayerID == viewerID {
				v.LockedAction = &LockedAction{Type: a.Type, TargetID: a.TargetID}
				break
			}
		}
	}

	if err := checkSafety(r, viewerID, v); err != nil {
		return View{}, err
	}
	return v, nil
}

// checkSafety implements the redaction self-test: every assertion a
// produced view must satisfy regardless of how BuildView constructed it.
func checkSafety(r *roomstate.Room, viewerID string, v View) error {
	for id, pv := range v.Players {
		if pv.RoleID == "" {
			continue
		}
		if id == viewerID {
			continue
		}
		p := r.Players[id]
		revealedByDeath := r.Settings.RevealRolesOnDeath && p.Status == roomstate.StatusDead
		revealedByEnd := r.Phase == roomstate.PhaseEnded
		if !revealedByDeath && !revealedByEnd {
			return fmt.Errorf("redact: safety check failed: roleId leaked for player %q to viewer %q", id, viewerID)
		}
	}
	for _, res := range v.InvestigationResults {
		if res.InvestigatorID != viewerID {
			return fmt.Errorf("redact: safety check failed: investigationResults leaked investigator %q to viewer %q", res.InvestigatorID, viewerID)
		}
	}
	if v.SelfRole != nil && len(v.SelfRole.Teammates) > 0 && v.SelfRole.Alignment != roles.AlignmentMafia {
		return fmt.Errorf("redact: safety check failed: teammates present for non-mafia viewer %q", viewerID)
	}
	return nil
}

// MustBuildView is BuildView for callers that treat a safety-check
// failure as an unrecoverable internal error, per the dispatcher's
// contract: a bad view must never reach a socket.
func MustBuildView(r *roomstate.Room, viewerID string) View {
	v, err := BuildView(r, viewerID)
	if err != nil {
		panic(err)
	}
	return v
}

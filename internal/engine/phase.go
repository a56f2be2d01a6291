package engine

import "github.com/sairajesh711/mafia-lite/internal/roomstate"

// AdvancePhase implements linear phase progression:
//
//	lobby -> night -> day_announcement -> day_discussion -> day_voting -> night -> ...
//
// Victory is re-checked before every advance; a decided game short-circuits
// into PhaseEnded regardless of where it was in the cycle. now is the
// caller-supplied wall clock (ms) used to seed the new phase's Timer.
func AdvancePhase(r *roomstate.Room, now int64) Effect {
	if v := CheckVictory(r); v != roomstate.VictoryNone {
		return Effect{Kind: EffectVictory, Payload: v}
	}

	next := nextPhase(r.Phase)
	r.Phase = next
	r.Timer = newTimer(r, next, now)
	r.LastSnapshot = now

	return Effect{
		Kind: EffectPhaseChange,
		Payload: PhaseChangePayload{
			Phase: next,
			Timer: r.Timer,
			Night: next == roomstate.PhaseNight,
		},
	}
}

func nextPhase(current roomstate.Phase) roomstate.Phase {
	switch current {
	case roomstate.PhaseLobby:
		return roomstate.PhaseNight
	case roomstate.PhaseNight:
		return roomstate.PhaseDayAnnouncement
	case roomstate.PhaseDayAnnouncement:
		return roomstate.PhaseDayDiscussion
	case roomstate.PhaseDayDiscussion:
		return roomstate.PhaseDayVoting
	case roomstate.PhaseDayVoting:
		return roomstate.PhaseNight
	default:
		return roomstate.PhaseEnded
	}
}

func newTimer(r *roomstate.Room, phase roomstate.Phase, now int64) *roomstate.Timer {
	var durationMs int64
	switch phase {
	case roomstate.PhaseNight:
		durationMs = r.Settings.NightDurationMs
	case roomstate.PhaseDayAnnouncement:
		durationMs = roomstate.DayAnnouncementDuration
	case roomstate.PhaseDayDiscussion:
		durationMs = r.Settings.DayDurationMs
	case roomstate.PhaseDayVoting:
		durationMs = r.Settings.VoteDurationMs
	default:
		return nil
	}
	return &roomstate.Timer{
		Phase:     phase,
		StartedAt: now,
		EndsAt:    now + durationMs,
	}
}
